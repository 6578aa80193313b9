package bookingRepo

import (
	"time"

	"jobnest/models"
)

// BookingRepository defines the interface for booking data access.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	// ReplaceWithStatus persists the booking only if the stored document still
	// holds the expected status. It returns ErrStaleStatus when another
	// transition won the race, guaranteeing at most one successful transition
	// per booking per logical moment.
	ReplaceWithStatus(booking *models.Booking, expected models.BookingStatus) error
	// ListDuePending returns PENDING bookings scheduled before the cutoff,
	// the candidates for the expiry sweep.
	ListDuePending(cutoff time.Time, limit int64) ([]models.Booking, error)
}
