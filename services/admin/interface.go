package admin

import (
	"context"

	"jobnest/database/repository/provider"
	"jobnest/models"
	"jobnest/services/notification"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ModerationService is the moderation gate: it owns provider eligibility
// independent of booking state. Admin actions never touch a booking directly;
// they change provider status, which the authorization guard consults on the
// next booking action.
type ModerationService interface {
	SetProviderStatus(ctx context.Context, actor models.Actor, providerID string, newStatus models.ProviderStatus, reason string) (*models.Provider, error)
	GetProvider(ctx context.Context, actor models.Actor, providerID string) (*models.Provider, error)
	ListAudit(ctx context.Context, actor models.Actor, providerID string) ([]models.ProviderAudit, error)
}

// DefaultModerationService implements ModerationService.
type DefaultModerationService struct {
	Repo        providerRepo.ProviderRepository
	CacheClient *redis.Client // Provider snapshot cache to invalidate on change.
	Notifier    notification.Publisher
	Logger      *zap.Logger
}
