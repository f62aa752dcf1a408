// Package queue carries the booking.confirmed domain event over
// RabbitMQ: a publisher invoked from the payment saga and a background
// consumer that appends a human-readable audit line per confirmation.
package queue

// BookingConfirmedEvent is published when the payment saga completes
// successfully.  It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	BookingCode      string   `json:"booking_code"`
	TripID           uint64   `json:"trip_id"`
	SeatNumbers      []string `json:"seats"`
	TicketCodes      []string `json:"tickets"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}
