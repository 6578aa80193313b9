package models

// Role identifies the kind of caller attempting a booking action.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
	// RoleSystem is reserved for non-interactive transitions (the expiry sweep).
	// It is never minted into a session token.
	RoleSystem Role = "SYSTEM"
)

// Actor is the authenticated caller context resolved by the identity layer.
// This core trusts the caller to have authenticated it.
type Actor struct {
	UserID     string `json:"userId"`
	Role       Role   `json:"role"`
	ProviderID string `json:"providerId,omitempty"` // Set only for provider actors.
}

// SystemActor is the fixed actor used by the expiry sweep.
var SystemActor = Actor{UserID: "system", Role: RoleSystem}
