package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// Publisher hands domain events to the notification dispatcher. Delivery is
// the dispatcher's concern; a publish failure must never roll back the
// transition that produced the event, so callers log and continue.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// DefaultNotificationService publishes events on an in-process watermill bus.
// The external dispatcher subscribes to the same bus (or a broker-backed
// replacement wired in its place).
type DefaultNotificationService struct {
	pubSub *gochannel.GoChannel
	logger *zap.Logger
}

func NewDefaultNotificationService(logger *zap.Logger) *DefaultNotificationService {
	wmLogger := watermill.NopLogger{}
	return &DefaultNotificationService{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, wmLogger),
		logger: logger,
	}
}

func (s *DefaultNotificationService) Publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := s.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}
	return nil
}

// StartLoggingConsumer drains every topic and logs the events. It stands in
// for the push/email dispatcher, which is outside this core.
func (s *DefaultNotificationService) StartLoggingConsumer(ctx context.Context) error {
	topics := []string{
		TopicBookingCreated,
		TopicBookingAccepted,
		TopicBookingRejected,
		TopicBookingCancelled,
		TopicBookingStarted,
		TopicCompletionChallengeIssued,
		TopicBookingCompleted,
		TopicBookingExpired,
		TopicProviderSuspended,
		TopicProviderReinstated,
	}
	for _, topic := range topics {
		messages, err := s.pubSub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		go func(topic string, messages <-chan *message.Message) {
			for msg := range messages {
				s.logger.Info("domain event",
					zap.String("topic", topic),
					zap.String("messageId", msg.UUID),
					zap.ByteString("payload", msg.Payload),
				)
				msg.Ack()
			}
		}(topic, messages)
	}
	return nil
}

// Close shuts down the bus.
func (s *DefaultNotificationService) Close() error {
	return s.pubSub.Close()
}
