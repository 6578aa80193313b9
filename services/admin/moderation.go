package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobnest/database/repository/provider"
	"jobnest/models"
	"jobnest/services/booking"
	"jobnest/services/notification"
	"jobnest/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// moderationEdges is the closed set of legal provider status changes.
// APPROVED and SUSPENDED swap freely; PENDING resolves to APPROVED or
// REJECTED; REJECTED and SUSPENDED return to PENDING through an approved
// appeal, which calls this gate on resolution.
var moderationEdges = map[models.ProviderStatus][]models.ProviderStatus{
	models.ProviderStatusPending:   {models.ProviderStatusApproved, models.ProviderStatusRejected},
	models.ProviderStatusApproved:  {models.ProviderStatusSuspended},
	models.ProviderStatusSuspended: {models.ProviderStatusApproved, models.ProviderStatusPending},
	models.ProviderStatusRejected:  {models.ProviderStatusPending},
}

func edgeAllowed(from, to models.ProviderStatus) bool {
	for _, dest := range moderationEdges[from] {
		if dest == to {
			return true
		}
	}
	return false
}

func (s *DefaultModerationService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// SetProviderStatus applies one moderation transition and appends an audit
// record. Suspension does not touch in-flight bookings; it only removes
// provider-side actions from future permitted sets until restored.
func (s *DefaultModerationService) SetProviderStatus(ctx context.Context, actor models.Actor, providerID string, newStatus models.ProviderStatus, reason string) (*models.Provider, error) {
	if actor.Role != models.RoleAdmin {
		return nil, booking.NewUnauthorizedError("moderation requires an admin actor")
	}
	if reason == "" {
		return nil, booking.NewInvariantViolationError("moderation requires a reason")
	}
	switch newStatus {
	case models.ProviderStatusPending, models.ProviderStatusApproved,
		models.ProviderStatusRejected, models.ProviderStatusSuspended:
	default:
		return nil, booking.NewInvariantViolationError(fmt.Sprintf("unknown provider status %q", newStatus))
	}

	current, err := s.Repo.GetByID(providerID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, booking.NewNotFoundError("provider not found")
		}
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	if current.Status == newStatus {
		return nil, booking.NewInvalidStateError("provider already has that status")
	}
	if !edgeAllowed(current.Status, newStatus) {
		return nil, booking.NewInvalidStateError(
			fmt.Sprintf("cannot move provider from %s to %s", current.Status, newStatus))
	}

	updated, err := s.Repo.UpdateStatus(providerID, current.Status, newStatus)
	if err != nil {
		if errors.Is(err, providerRepo.ErrStaleStatus) {
			return nil, booking.NewConflictError("provider was moderated concurrently, retry")
		}
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, booking.NewNotFoundError("provider not found")
		}
		return nil, fmt.Errorf("failed to update provider status: %w", err)
	}

	audit := models.ProviderAudit{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		Actor:      actor.UserID,
		OldStatus:  current.Status,
		NewStatus:  newStatus,
		Reason:     reason,
		At:         time.Now().UTC(),
	}
	if err := s.Repo.AppendAudit(&audit); err != nil {
		// The status change already happened; losing the audit row is logged
		// loudly but not unwound.
		s.log().Error("failed to append moderation audit record",
			zap.String("providerId", providerID), zap.Error(err))
	}

	s.invalidateSnapshot(ctx, providerID)
	s.publishChange(ctx, actor, audit)

	return updated, nil
}

func (s *DefaultModerationService) GetProvider(ctx context.Context, actor models.Actor, providerID string) (*models.Provider, error) {
	if actor.Role != models.RoleAdmin {
		return nil, booking.NewUnauthorizedError("moderation requires an admin actor")
	}
	p, err := s.Repo.GetByID(providerID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			return nil, booking.NewNotFoundError("provider not found")
		}
		return nil, fmt.Errorf("failed to load provider: %w", err)
	}
	return p, nil
}

func (s *DefaultModerationService) ListAudit(ctx context.Context, actor models.Actor, providerID string) ([]models.ProviderAudit, error) {
	if actor.Role != models.RoleAdmin {
		return nil, booking.NewUnauthorizedError("moderation requires an admin actor")
	}
	records, err := s.Repo.ListAudit(providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}

// invalidateSnapshot drops the cached provider snapshot so the guard sees the
// new moderation status on the next booking action, not after the cache TTL.
func (s *DefaultModerationService) invalidateSnapshot(ctx context.Context, providerID string) {
	if s.CacheClient == nil {
		return
	}
	if err := s.CacheClient.Del(ctx, utils.ProviderCachePrefix+providerID).Err(); err != nil {
		s.log().Warn("failed to invalidate provider snapshot cache",
			zap.String("providerId", providerID), zap.Error(err))
	}
}

func (s *DefaultModerationService) publishChange(ctx context.Context, actor models.Actor, audit models.ProviderAudit) {
	if s.Notifier == nil {
		return
	}
	event := notification.ProviderModerationEvent{
		Header:     notification.NewHeader(),
		ProviderID: audit.ProviderID,
		OldStatus:  audit.OldStatus,
		NewStatus:  audit.NewStatus,
		Reason:     audit.Reason,
		ActorID:    actor.UserID,
	}
	topic := notification.TopicProviderReinstated
	if audit.NewStatus == models.ProviderStatusSuspended || audit.NewStatus == models.ProviderStatusRejected {
		topic = notification.TopicProviderSuspended
	}
	if err := s.Notifier.Publish(ctx, topic, event); err != nil {
		s.log().Warn("failed to publish moderation event",
			zap.String("providerId", audit.ProviderID), zap.Error(err))
	}
}
