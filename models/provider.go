package models

import "time"

// ProviderStatus enumerates the moderation states of a provider.
type ProviderStatus string

const (
	ProviderStatusPending   ProviderStatus = "PENDING"
	ProviderStatusApproved  ProviderStatus = "APPROVED"
	ProviderStatusRejected  ProviderStatus = "REJECTED"
	ProviderStatusSuspended ProviderStatus = "SUSPENDED"
)

// Provider is the moderation subject consulted by the authorization guard.
// Catalog data (profile, services, pricing) lives in the catalog system; this
// core only tracks eligibility.
type Provider struct {
	ID        string         `bson:"id" json:"id"`
	UserID    string         `bson:"userId" json:"userId"` // Account the provider acts under.
	Status    ProviderStatus `bson:"status" json:"status"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// ProviderAudit is an append-only record of a moderation status change.
type ProviderAudit struct {
	ID         string         `bson:"id" json:"id"`
	ProviderID string         `bson:"providerId" json:"providerId"`
	Actor      string         `bson:"actor" json:"actor"` // Admin user ID.
	OldStatus  ProviderStatus `bson:"oldStatus" json:"oldStatus"`
	NewStatus  ProviderStatus `bson:"newStatus" json:"newStatus"`
	Reason     string         `bson:"reason" json:"reason"`
	At         time.Time      `bson:"at" json:"at"`
}
