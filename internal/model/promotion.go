package model

import "time"

// Promotion policy types recorded on an applied promotion.
const (
	PolicyPercentOff   = "PERCENT_OFF"
	PolicyBuyNGetMFree = "BUY_N_GET_M_FREE"
)

// AppliedPromotion is an immutable record of the promotion chosen for a
// booking and the discount it produced.  It exists for audit and
// dispute resolution; the saga never recomputes it.
//
// Fields:
//  ID            – primary key identifier.
//  BookingID     – owning booking.
//  PromotionID   – promotion-service identifier of the promotion.
//  Code          – promotion code as entered by the customer.
//  PolicyType    – PERCENT_OFF or BUY_N_GET_M_FREE.
//  Percent       – percent value for PERCENT_OFF policies (0 otherwise).
//  MaxOffCents   – discount cap for PERCENT_OFF policies (nullable).
//  DiscountCents – resulting discount amount in cents.
//  CreatedAt     – creation timestamp.
type AppliedPromotion struct {
	ID            uint64    // applied_promotions.id
	BookingID     uint64    // applied_promotions.booking_id
	PromotionID   uint64    // applied_promotions.promotion_id
	Code          string    // applied_promotions.code
	PolicyType    string    // applied_promotions.policy_type
	Percent       float64   // applied_promotions.percent
	MaxOffCents   *int64    // applied_promotions.max_off_cents (nullable)
	DiscountCents int64     // applied_promotions.discount_cents
	CreatedAt     time.Time // applied_promotions.created_at
}

// PricingSnapshot freezes the factors that produced one seat's price so
// a later dispute can be resolved against what was actually quoted.
//
// Fields:
//  ID              – primary key identifier.
//  BookingID       – owning booking.
//  SeatNo          – seat number (normalized).
//  BaseFareCents   – trip base fare in cents.
//  VehicleFactor   – vehicle type multiplier.
//  FloorFactor     – floor multiplier.
//  SeatFactor      – per-seat multiplier.
//  FinalPriceCents – resulting per-seat price in cents.
//  CreatedAt       – creation timestamp.
type PricingSnapshot struct {
	ID              uint64    // pricing_snapshots.id
	BookingID       uint64    // pricing_snapshots.booking_id
	SeatNo          string    // pricing_snapshots.seat_no
	BaseFareCents   int64     // pricing_snapshots.base_fare_cents
	VehicleFactor   float64   // pricing_snapshots.vehicle_factor
	FloorFactor     float64   // pricing_snapshots.floor_factor
	SeatFactor      float64   // pricing_snapshots.seat_factor
	FinalPriceCents int64     // pricing_snapshots.final_price_cents
	CreatedAt       time.Time // pricing_snapshots.created_at
}
