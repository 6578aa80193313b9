package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobnest/database/repository/booking"
	"jobnest/database/repository/provider"
	"jobnest/models"
	"jobnest/services/notification"
	"jobnest/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultBookingService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// CreateBooking validates the input and persists a new PENDING booking.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, actor models.Actor, input CreateBookingInput) (*models.Booking, error) {
	if actor.Role != models.RoleCustomer {
		return nil, NewUnauthorizedError("only customers create bookings")
	}
	if input.ProviderID == "" || input.ServiceID == "" {
		return nil, NewInvariantViolationError("providerId and serviceId are required")
	}
	if input.BaseAmount <= 0 {
		return nil, NewInvariantViolationError("baseAmount must be positive")
	}
	now := s.Clock.Now()
	if !input.ScheduledAt.After(now) {
		return nil, NewInvariantViolationError("scheduledAt must be in the future")
	}
	if _, err := s.getProvider(ctx, input.ProviderID); err != nil {
		return nil, err
	}

	b := models.Booking{
		ID:          uuid.New().String(),
		CustomerID:  actor.UserID,
		ProviderID:  input.ProviderID,
		ServiceID:   input.ServiceID,
		Status:      models.BookingStatusPending,
		BaseAmount:  Round2(input.BaseAmount),
		ScheduledAt: input.ScheduledAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(&b); err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.publish(ctx, notification.TopicBookingCreated, notification.NewBookingEvent(b, actor.UserID))
	return &b, nil
}

// GetBooking returns a snapshot visible to the actor.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	b, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, *b) {
		return nil, NewUnauthorizedError("booking not visible to this actor")
	}
	return b, nil
}

// PermittedActions derives the actor's action set for UI gating.
func (s *DefaultBookingService) PermittedActions(ctx context.Context, actor models.Actor, id string) ([]Action, error) {
	b, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, *b) {
		return nil, NewUnauthorizedError("booking not visible to this actor")
	}
	provider := s.providerSnapshot(ctx, b.ProviderID)
	set := s.Machine.Guard.PermittedActions(actor, *b, provider, s.Clock.Now())
	return set.List(), nil
}

// Act applies one transition through the state machine and persists the result
// with a compare-and-swap on the prior status.
func (s *DefaultBookingService) Act(ctx context.Context, actor models.Actor, id string, action Action, payload Payload) (*models.Booking, error) {
	b, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	provider := s.providerSnapshot(ctx, b.ProviderID)
	now := s.Clock.Now()

	result, applyErr := s.Machine.Apply(*b, actor, provider, action, payload, now)
	if applyErr != nil {
		// Challenge failures still mutate the booking (attempt counter,
		// cleared expired code); persist so retries are bounded.
		switch ErrorCode(applyErr) {
		case CodeChallengeMismatch, CodeChallengeExpired:
			if err := s.persist(result.Booking, b.Status); err != nil {
				s.log().Error("failed to persist challenge bookkeeping",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}
		return nil, applyErr
	}

	if err := s.persist(result.Booking, b.Status); err != nil {
		return nil, err
	}

	s.publishForAction(ctx, actor, action, result, now)
	updated := result.Booking
	return &updated, nil
}

// ProjectInvoice projects the billing breakdown of a completed booking using
// the current configured rates.
func (s *DefaultBookingService) ProjectInvoice(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error) {
	b, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, *b) {
		return nil, NewUnauthorizedError("booking not visible to this actor")
	}
	invoice, err := Project(*b, s.TaxRate, s.PlatformFeeRate)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ExpireDue applies EXPIRE to every PENDING booking past schedule plus grace.
// Races with concurrent actor transitions are expected; the CAS write makes
// them lose quietly.
func (s *DefaultBookingService) ExpireDue(ctx context.Context) (int, error) {
	now := s.Clock.Now()
	cutoff := now.Add(-s.Machine.Policy.ExpiryGrace)
	due, err := s.Repo.ListDuePending(cutoff, 500)
	if err != nil {
		return 0, fmt.Errorf("failed to list due bookings: %w", err)
	}

	expired := 0
	for _, b := range due {
		result, err := s.Machine.Apply(b, models.SystemActor, models.Provider{}, ActionExpire, Payload{}, now)
		if err != nil {
			s.log().Warn("expiry sweep skipped booking",
				zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		if err := s.persist(result.Booking, b.Status); err != nil {
			if ErrorCode(err) == CodeConflict {
				continue // An actor got there first.
			}
			s.log().Error("expiry sweep failed to persist",
				zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		s.publish(ctx, notification.TopicBookingExpired, notification.NewBookingEvent(result.Booking, models.SystemActor.UserID))
		expired++
	}
	return expired, nil
}

func (s *DefaultBookingService) loadBooking(id string) (*models.Booking, error) {
	if id == "" {
		return nil, NewInvariantViolationError("booking id is required")
	}
	b, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError("booking not found")
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return b, nil
}

func (s *DefaultBookingService) persist(b models.Booking, expected models.BookingStatus) error {
	err := s.Repo.ReplaceWithStatus(&b, expected)
	if err == nil {
		return nil
	}
	if errors.Is(err, bookingRepo.ErrStaleStatus) {
		return NewConflictError("booking was modified concurrently, retry")
	}
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return NewNotFoundError("booking not found")
	}
	return fmt.Errorf("failed to persist booking: %w", err)
}

// getProvider fetches a provider, consulting the redis snapshot cache first.
func (s *DefaultBookingService) getProvider(ctx context.Context, id string) (*models.Provider, error) {
	if s.CacheClient != nil {
		key := utils.ProviderCachePrefix + id
		if data, err := s.CacheClient.Get(ctx, key).Result(); err == nil {
			var p models.Provider
			if err := json.Unmarshal([]byte(data), &p); err == nil {
				return &p, nil
			}
		}
	}

	p, err := s.ProviderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, NewNotFoundError("provider not found")
		}
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}

	if s.CacheClient != nil {
		if data, err := json.Marshal(p); err == nil {
			if err := s.CacheClient.Set(ctx, utils.ProviderCachePrefix+id, data, utils.ProviderCacheTTL).Err(); err != nil {
				s.log().Warn("failed to cache provider snapshot", zap.String("providerId", id), zap.Error(err))
			}
		}
	}
	return p, nil
}

// providerSnapshot returns the provider or a zero value when it cannot be
// loaded. The guard treats a zero provider as ineligible for provider-side
// actions, which is the safe default; customer-side actions do not consult it.
func (s *DefaultBookingService) providerSnapshot(ctx context.Context, id string) models.Provider {
	p, err := s.getProvider(ctx, id)
	if err != nil {
		s.log().Warn("provider snapshot unavailable", zap.String("providerId", id), zap.Error(err))
		return models.Provider{}
	}
	return *p
}

func (s *DefaultBookingService) publish(ctx context.Context, topic string, event any) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Publish(ctx, topic, event); err != nil {
		// Delivery failure never rolls back a transition.
		s.log().Warn("failed to publish domain event", zap.String("topic", topic), zap.Error(err))
	}
}

func (s *DefaultBookingService) publishForAction(ctx context.Context, actor models.Actor, action Action, result ApplyResult, now time.Time) {
	b := result.Booking
	ev := notification.NewBookingEvent(b, actor.UserID)
	switch action {
	case ActionAccept:
		s.publish(ctx, notification.TopicBookingAccepted, ev)
	case ActionReject:
		s.publish(ctx, notification.TopicBookingRejected, ev)
	case ActionCancel:
		s.publish(ctx, notification.TopicBookingCancelled, ev)
	case ActionStart:
		s.publish(ctx, notification.TopicBookingStarted, ev)
	case ActionInitiateCompletion:
		s.publish(ctx, notification.TopicCompletionChallengeIssued, notification.CompletionChallengeIssued{
			Header:     notification.NewHeader(),
			BookingID:  b.ID,
			CustomerID: b.CustomerID,
			Code:       result.IssuedCode,
			ExpiresAt:  now.Add(s.Machine.Policy.ChallengeTTL),
		})
	case ActionVerifyCompletion:
		s.publish(ctx, notification.TopicBookingCompleted, ev)
	}
}

func canView(actor models.Actor, b models.Booking) bool {
	switch actor.Role {
	case models.RoleAdmin, models.RoleSystem:
		return true
	case models.RoleCustomer:
		return actor.UserID == b.CustomerID
	case models.RoleProvider:
		return actor.ProviderID == b.ProviderID
	}
	return false
}
