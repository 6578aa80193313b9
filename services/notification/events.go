package notification

import (
	"time"

	"jobnest/models"

	"github.com/ThreeDotsLabs/watermill"
)

// Topics consumed by the external notification dispatcher.
const (
	TopicBookingCreated            = "BookingCreated"
	TopicBookingAccepted           = "BookingAccepted"
	TopicBookingRejected           = "BookingRejected"
	TopicBookingCancelled          = "BookingCancelled"
	TopicBookingStarted            = "BookingStarted"
	TopicCompletionChallengeIssued = "CompletionChallengeIssued"
	TopicBookingCompleted          = "BookingCompleted"
	TopicBookingExpired            = "BookingExpired"
	TopicProviderSuspended         = "ProviderSuspended"
	TopicProviderReinstated        = "ProviderReinstated"
)

type Header struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewHeader() Header {
	return Header{
		ID:          watermill.NewUUID(),
		PublishedAt: time.Now().UTC(),
	}
}

// BookingEvent is published for every successful booking transition.
type BookingEvent struct {
	Header     Header               `json:"header"`
	BookingID  string               `json:"booking_id"`
	CustomerID string               `json:"customer_id"`
	ProviderID string               `json:"provider_id"`
	Status     models.BookingStatus `json:"status"`
	ActorID    string               `json:"actor_id"`
}

func NewBookingEvent(b models.Booking, actorID string) BookingEvent {
	return BookingEvent{
		Header:     NewHeader(),
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		ProviderID: b.ProviderID,
		Status:     b.Status,
		ActorID:    actorID,
	}
}

// CompletionChallengeIssued carries the plaintext completion code for delivery
// to the customer. This is the only place the code exists outside the issuing
// call; the booking itself stores a hash.
type CompletionChallengeIssued struct {
	Header     Header    `json:"header"`
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id"`
	Code       string    `json:"code"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ProviderModerationEvent is published on every moderation status change.
type ProviderModerationEvent struct {
	Header     Header                `json:"header"`
	ProviderID string                `json:"provider_id"`
	OldStatus  models.ProviderStatus `json:"old_status"`
	NewStatus  models.ProviderStatus `json:"new_status"`
	Reason     string                `json:"reason"`
	ActorID    string                `json:"actor_id"`
}
