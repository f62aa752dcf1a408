// Package pricing computes seat prices and evaluates promotions for a
// trip.  It has no side effects: everything is derived from the trip
// and promotion data fetched from the collaborators.
package pricing

import "errors"

// ErrEmptySeatSelection is returned when a quote is requested with no
// seat numbers.  Handlers should translate this into an HTTP 400.
var ErrEmptySeatSelection = errors.New("no seats selected")

// ErrUnknownSeat is returned when a requested seat number does not
// exist on the trip.  Handlers should translate this into an HTTP 400.
var ErrUnknownSeat = errors.New("unknown seat for trip")

// ErrSeatUnavailable is returned when a requested seat currently has a
// HELD or COMMITTED lock.  Pricing never proceeds past this check, so
// no promotion logic runs for an unavailable selection.  Handlers
// should translate this into an HTTP 409.
var ErrSeatUnavailable = errors.New("seat already taken")
