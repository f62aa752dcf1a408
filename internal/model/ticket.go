package model

import "time"

// Ticket is issued for exactly one purchased seat once the payment is
// confirmed.  After creation only the checked-in flag and the
// soft-delete marker may change.
//
// Fields:
//  ID         – primary key identifier.
//  Code       – unique ticket code (e.g. TKT-XXXXXX).
//  BookingID  – owning booking.
//  PriceCents – price allocated to this seat in cents.
//  QRPayload  – opaque payload encoded into the ticket QR (nullable).
//  TripID     – inventory-side trip identifier.
//  RouteID    – inventory-side route identifier.
//  SeatID     – inventory-side seat identifier.
//  SeatNo     – human-readable seat number (normalized).
//  ValidFrom  – start of validity window (trip departure).
//  ValidTo    – end of validity window (trip arrival).
//  CheckedIn  – whether the ticket was used for boarding.
//  CreatedAt  – creation timestamp.
//  DeletedAt  – soft-delete marker (nullable).
type Ticket struct {
	ID         uint64     // tickets.id
	Code       string     // tickets.code
	BookingID  uint64     // tickets.booking_id
	PriceCents int64      // tickets.price_cents
	QRPayload  *string    // tickets.qr_payload (nullable)
	TripID     uint64     // tickets.trip_id
	RouteID    uint64     // tickets.route_id
	SeatID     uint64     // tickets.seat_id
	SeatNo     string     // tickets.seat_no
	ValidFrom  time.Time  // tickets.valid_from
	ValidTo    time.Time  // tickets.valid_to
	CheckedIn  bool       // tickets.checked_in
	CreatedAt  time.Time  // tickets.created_at
	DeletedAt  *time.Time // tickets.deleted_at (nullable)
}
