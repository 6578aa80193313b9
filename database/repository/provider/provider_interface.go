package providerRepo

import "jobnest/models"

// ProviderRepository defines the interface for provider moderation data access.
type ProviderRepository interface {
	Create(provider *models.Provider) error
	GetByID(id string) (*models.Provider, error)
	// UpdateStatus writes the new status only if the stored document still
	// holds the old one, so concurrent moderation actions cannot interleave.
	UpdateStatus(id string, oldStatus, newStatus models.ProviderStatus) (*models.Provider, error)
	AppendAudit(record *models.ProviderAudit) error
	ListAudit(providerID string) ([]models.ProviderAudit, error)
}
