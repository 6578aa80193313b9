package models

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
	BookingStatusRejected   BookingStatus = "REJECTED"
	BookingStatusExpired    BookingStatus = "EXPIRED"
)

// IsTerminal reports whether the status has no outgoing transitions.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected, BookingStatusExpired:
		return true
	}
	return false
}

// CompletionChallenge is the one-time code gating completion confirmation.
// Only the SHA-256 hash of the code is stored; the plaintext leaves the system
// once, on issue, for delivery to the customer.
type CompletionChallenge struct {
	CodeHash string    `bson:"codeHash" json:"-"`
	IssuedAt time.Time `bson:"issuedAt" json:"issuedAt"`
	Attempts int       `bson:"attempts" json:"attempts"` // Failed verify attempts against this code.
}

// Cancellation records who cancelled a booking and why.
type Cancellation struct {
	CancelledBy string    `bson:"cancelledBy" json:"cancelledBy"` // User ID of the cancelling actor, or "system".
	Reason      string    `bson:"reason" json:"reason"`
	At          time.Time `bson:"at" json:"at"`
}

// Rejection records a provider's refusal of a pending booking.
type Rejection struct {
	Reason string    `bson:"reason" json:"reason"`
	At     time.Time `bson:"at" json:"at"`
}

// Booking is the aggregate root owned by the booking state machine.
// It is mutated only through transitions; all other components see snapshots.
type Booking struct {
	ID           string               `bson:"id" json:"id"`
	CustomerID   string               `bson:"customerId" json:"customerId"`
	ProviderID   string               `bson:"providerId" json:"providerId"`
	ServiceID    string               `bson:"serviceId" json:"serviceId"`
	Status       BookingStatus        `bson:"status" json:"status"`
	BaseAmount   float64              `bson:"baseAmount" json:"baseAmount"` // Fixed at creation, never recomputed.
	ScheduledAt  time.Time            `bson:"scheduledAt" json:"scheduledAt"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
	Challenge    *CompletionChallenge `bson:"challenge,omitempty" json:"challenge,omitempty"`
	Cancellation *Cancellation        `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Rejection    *Rejection           `bson:"rejection,omitempty" json:"rejection,omitempty"`
}

// Clone returns a deep copy of the booking. Transitions operate on copies so
// the caller's snapshot is never mutated.
func (b Booking) Clone() Booking {
	out := b
	if b.Challenge != nil {
		c := *b.Challenge
		out.Challenge = &c
	}
	if b.Cancellation != nil {
		c := *b.Cancellation
		out.Cancellation = &c
	}
	if b.Rejection != nil {
		r := *b.Rejection
		out.Rejection = &r
	}
	return out
}
