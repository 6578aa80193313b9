package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"jobnest/config"
	"jobnest/services/booking"

	"github.com/hibiken/asynq"
)

const TypeExpireSweep = "booking:expire_sweep"

// InitExpirySweep runs the periodic expiry sweep in the background. Every
// SWEEP_INTERVAL_MIN it enqueues one sweep task; the handler applies EXPIRE,
// as the system actor, to pending bookings past schedule plus grace.
func InitExpirySweep(svc booking.BookingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpireSweep, handleExpireSweep(svc))

	go func() {
		log.Println("[ExpirySweep] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpirySweep] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpirySweep] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go func() {
		scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
		interval := fmt.Sprintf("@every %dm", config.AppConfig.SweepIntervalMin)
		if _, err := scheduler.Register(interval, asynq.NewTask(TypeExpireSweep, nil)); err != nil {
			log.Printf("[ExpirySweep] failed to register schedule: %v", err)
			return
		}
		if err := scheduler.Run(); err != nil {
			log.Printf("[ExpirySweep] scheduler stopped: %v", err)
		}
	}()
}

func handleExpireSweep(svc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		expired, err := svc.ExpireDue(ctx)
		if err != nil {
			log.Printf("[ExpirySweep] sweep failed: %v", err)
			return err
		}
		if expired > 0 {
			log.Printf("[ExpirySweep] expired %d overdue pending bookings", expired)
		}
		return nil
	}
}
