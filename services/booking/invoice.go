package booking

import (
	"math"

	"jobnest/models"
)

// Round2 rounds to two decimal places, the resolution of all billed amounts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Project derives the billing breakdown of a completed booking. It is a pure
// function of the booking and the supplied rates: no clock, no lookups, so two
// calls over the same inputs produce identical invoices.
//
// The platform fee is withheld from the provider payout and never charged to
// the customer, so it is excluded from the total.
func Project(b models.Booking, taxRate, platformFeeRate float64) (models.Invoice, error) {
	if b.Status != models.BookingStatusCompleted {
		return models.Invoice{}, NewInvalidStateError("invoice requires a completed booking")
	}
	if taxRate < 0 || platformFeeRate < 0 {
		return models.Invoice{}, NewInvariantViolationError("billing rates must be non-negative")
	}

	subtotal := Round2(b.BaseAmount)
	tax := Round2(subtotal * taxRate)
	fee := Round2(subtotal * platformFeeRate)

	return models.Invoice{
		BookingID:   b.ID,
		Subtotal:    subtotal,
		Tax:         tax,
		PlatformFee: fee,
		Total:       Round2(subtotal + tax),
		TaxRate:     taxRate,
		FeeRate:     platformFeeRate,
	}, nil
}
