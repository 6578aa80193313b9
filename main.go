// File: jobnest/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobnest/config"
	"jobnest/cron"
	"jobnest/database"
	bookingRepoPkg "jobnest/database/repository/booking"
	providerRepoPkg "jobnest/database/repository/provider"
	"jobnest/handlers"
	"jobnest/middleware"
	"jobnest/routes"
	"jobnest/services/admin"
	"jobnest/services/booking"
	"jobnest/services/notification"
	"jobnest/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookRepo := bookingRepoPkg.NewMongoBookingRepo()
	provRepo := providerRepoPkg.NewMongoProviderRepo()

	// domain event bus; the logging consumer stands in for the external
	// notification dispatcher.
	notifier := notification.NewDefaultNotificationService(logger)
	if err := notifier.StartLoggingConsumer(context.Background()); err != nil {
		logger.Sugar().Fatalf("main: failed to start event consumer: %v", err)
	}

	// services.
	policy := booking.Policy{
		ChallengeTTL:    config.CompletionCodeTTL(),
		MaxCodeAttempts: config.AppConfig.CompletionCodeMaxAttempts,
		ExpiryGrace:     config.BookingExpiryGrace(),
	}
	bookingService := &booking.DefaultBookingService{
		Repo:            bookRepo,
		ProviderRepo:    provRepo,
		Machine:         booking.NewMachine(policy, logger),
		Clock:           booking.RealClock{},
		CacheClient:     utils.GetProviderCacheClient(),
		Notifier:        notifier,
		Logger:          logger,
		TaxRate:         config.AppConfig.TaxRate,
		PlatformFeeRate: config.AppConfig.PlatformFeeRate,
	}

	moderationService := &admin.DefaultModerationService{
		Repo:        provRepo,
		CacheClient: utils.GetProviderCacheClient(),
		Notifier:    notifier,
		Logger:      logger,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	adminHandler := handlers.NewAdminHandler(moderationService, logger)

	// Register routes.
	routes.RegisterRoutes(router, bookingHandler, adminHandler)

	// Background workers and monitors.
	cron.InitExpirySweep(bookingService)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetProviderCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if err := notifier.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close event bus: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
