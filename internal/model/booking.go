package model

import "time"

// Booking statuses.  A booking is created in AWAITING_PAYMENT by the
// upstream seat-hold step and is moved to one of the terminal states
// only by the webhook processor, never independently of its payment
// transaction.
const (
	BookingAwaitingPayment = "AWAITING_PAYMENT"
	BookingConfirmed       = "CONFIRMED"
	BookingCanceled        = "CANCELED"
	BookingRefunded        = "REFUNDED"
)

// Booking records a customer's intent to purchase one or more seats on
// a trip.  It aggregates the held seats, the payment transaction and
// the tickets issued after a confirmed payment.  Relations to tickets,
// pricing snapshots and applied promotions are reconstructed via
// explicit foreign-key queries; there are no back-references here.
//
// Fields:
//  ID               – primary key identifier.
//  Code             – unique human-readable booking code (e.g. BK-XXXXXX).
//  Status           – lifecycle state, see constants above.
//  TripID           – inventory-side trip identifier.
//  Quantity         – number of seats held for this booking.
//  TotalAmountCents – total payable amount in cents.
//  CustomerID       – customer who owns the booking.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
//  DeletedAt        – soft-delete marker (nullable); bookings are never
//                     hard-deleted.
type Booking struct {
	ID               uint64     // bookings.id
	Code             string     // bookings.code
	Status           string     // bookings.status
	TripID           uint64     // bookings.trip_id
	Quantity         int        // bookings.quantity
	TotalAmountCents int64      // bookings.total_amount_cents
	CustomerID       uint64     // bookings.customer_id
	CreatedAt        time.Time  // bookings.created_at
	UpdatedAt        time.Time  // bookings.updated_at
	DeletedAt        *time.Time // bookings.deleted_at (nullable)
}

// BookingSeat links a booking to a held seat number.  Rows are written
// by the upstream seat-hold step; the saga only reads them to know
// which seats to ticket and to confirm with the inventory service.
type BookingSeat struct {
	ID        uint64    // booking_seats.id
	BookingID uint64    // booking_seats.booking_id
	SeatNo    string    // booking_seats.seat_no
	CreatedAt time.Time // booking_seats.created_at
}
