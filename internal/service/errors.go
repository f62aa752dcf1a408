// Package service implements the payment orchestration saga: payment
// initiation, webhook-driven state transitions with idempotency and
// compensation, and ticket issuance.
package service

import "errors"

// ErrInvalidBookingState is returned when an operation is attempted in
// the wrong lifecycle stage, e.g. initiating a payment for a booking
// that is not awaiting payment.  Handlers should translate this into
// an HTTP 409 response.
var ErrInvalidBookingState = errors.New("booking is not in a valid state for this operation")

// ErrSeatUnresolvable is returned when a held seat number cannot be
// matched to an inventory-side seat during ticket issuance.  This
// aborts issuance for the whole booking.
var ErrSeatUnresolvable = errors.New("held seat cannot be resolved on the trip")
