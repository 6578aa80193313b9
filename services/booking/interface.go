package booking

import (
	"context"
	"time"

	"jobnest/database/repository/booking"
	"jobnest/database/repository/provider"
	"jobnest/models"
	"jobnest/services/notification"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CreateBookingInput carries the fields fixed at booking creation. The
// customer is always the authenticated caller, never an input field.
// BaseAmount comes from the catalog quote and is never recomputed afterwards.
type CreateBookingInput struct {
	ProviderID  string    `json:"providerId"`
	ServiceID   string    `json:"serviceId"`
	BaseAmount  float64   `json:"baseAmount"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// BookingService is the transport-facing surface of the booking core.
type BookingService interface {
	CreateBooking(ctx context.Context, actor models.Actor, input CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, actor models.Actor, id string) (*models.Booking, error)
	// PermittedActions returns the actor's legal intents on the booking, for
	// UI gating. It never errs on authorization: an empty slice is the answer.
	PermittedActions(ctx context.Context, actor models.Actor, id string) ([]Action, error)
	// Act applies one transition. The returned booking is the post-transition
	// snapshot; completion codes are never returned here, they travel to the
	// customer through the notification dispatcher.
	Act(ctx context.Context, actor models.Actor, id string, action Action, payload Payload) (*models.Booking, error)
	ProjectInvoice(ctx context.Context, actor models.Actor, id string) (*models.Invoice, error)
	// ExpireDue sweeps PENDING bookings past schedule plus grace, applying
	// EXPIRE as the system actor. Returns the number of bookings expired.
	ExpireDue(ctx context.Context) (int, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	ProviderRepo providerRepo.ProviderRepository
	Machine      *Machine
	Clock        Clock
	CacheClient  *redis.Client // Provider snapshot cache.
	Notifier     notification.Publisher
	Logger       *zap.Logger

	TaxRate         float64
	PlatformFeeRate float64
}
