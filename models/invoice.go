package models

// Invoice is the billing breakdown projected from a completed booking.
// PlatformFee is informational for provider payout and excluded from the
// customer total.
type Invoice struct {
	BookingID   string  `bson:"bookingId" json:"bookingId"`
	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	Tax         float64 `bson:"tax" json:"tax"`
	PlatformFee float64 `bson:"platformFee" json:"platformFee"`
	Total       float64 `bson:"total" json:"total"`
	TaxRate     float64 `bson:"taxRate" json:"taxRate"`
	FeeRate     float64 `bson:"feeRate" json:"feeRate"`
}
