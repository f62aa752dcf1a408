// Package client contains the HTTP clients for the external
// collaborators this service depends on: the seat-inventory service and
// the promotion service.  Both are plain request/response clients with
// bounded timeouts; the callers decide how their failures propagate.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

// Floor describes a vehicle floor with its price multiplier.
type Floor struct {
	ID     uint64  `json:"id"`
	Factor float64 `json:"factor"`
}

// TripSeat describes a single seat of a trip as the inventory service
// reports it.
type TripSeat struct {
	ID          uint64  `json:"id"`
	SeatNo      string  `json:"seat_no"`
	FloorID     uint64  `json:"floor_id"`
	PriceFactor float64 `json:"price_factor"`
}

// SeatLock reports the lock state of one seat.  Status is FREE, HELD or
// COMMITTED.
type SeatLock struct {
	SeatNo string `json:"seat_no"`
	Status string `json:"status"`
}

// TripDetail is the inventory service's full view of a trip: fare
// factors, the seat map and the current lock states.
type TripDetail struct {
	TripID        uint64     `json:"trip_id"`
	RouteID       uint64     `json:"route_id"`
	BaseFareCents int64      `json:"base_fare_cents"`
	VehicleFactor float64    `json:"vehicle_factor"`
	Floors        []Floor    `json:"floors"`
	Seats         []TripSeat `json:"seats"`
	SeatLocks     []SeatLock `json:"seat_locks"`
	DepartureAt   time.Time  `json:"departure_at"`
	ArrivalAt     time.Time  `json:"arrival_at"`
}

// SeatLockRequest identifies the seat holds of a booking for a
// confirm or cancel call.
type SeatLockRequest struct {
	BookingID   uint64   `json:"booking_id"`
	TripID      uint64   `json:"trip_id"`
	SeatNumbers []string `json:"seat_numbers"`
}

// SeatLockResult is the inventory service's answer to a confirm or
// cancel call.  Status "OK" means the operation succeeded.
type SeatLockResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// InventoryClient talks to the seat-inventory service.  Trip detail
// reads go through a circuit breaker so that a dead inventory service
// fails fast on the quote path instead of stacking up blocked requests.
// Confirm/cancel calls bypass the breaker: the saga has its own
// compensation semantics for those and must observe each failure
// individually.
type InventoryClient struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

// NewInventoryClient builds a client for the inventory service at
// baseURL with the given request timeout.
func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	return &InventoryClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetRetryCount(0),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "inventory-trip-detail",
			Interval: 15 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && ratio >= 0.6
			},
		}),
	}
}

// GetTripDetail fetches the full trip detail (fares, seats, locks).
func (c *InventoryClient) GetTripDetail(ctx context.Context, tripID uint64) (*TripDetail, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		var detail TripDetail
		resp, err := c.http.R().
			SetContext(ctx).
			SetResult(&detail).
			Get(fmt.Sprintf("/v1/trips/%d", tripID))
		if err != nil {
			return nil, err
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("inventory: get trip detail: status %d", resp.StatusCode())
		}
		return &detail, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*TripDetail), nil
}

// ConfirmSeatLocks asks the inventory service to finalize the seat
// holds of a booking.  A transport error or non-2xx response is
// returned as an error; a 2xx response with a non-OK status is returned
// to the caller for interpretation.
func (c *InventoryClient) ConfirmSeatLocks(ctx context.Context, req SeatLockRequest) (*SeatLockResult, error) {
	return c.seatLockCall(ctx, "/v1/seat-locks/confirm", req)
}

// CancelSeatLocks asks the inventory service to release the seat holds
// of a booking.
func (c *InventoryClient) CancelSeatLocks(ctx context.Context, req SeatLockRequest) (*SeatLockResult, error) {
	return c.seatLockCall(ctx, "/v1/seat-locks/cancel", req)
}

func (c *InventoryClient) seatLockCall(ctx context.Context, path string, req SeatLockRequest) (*SeatLockResult, error) {
	var result SeatLockResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post(path)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("inventory: %s: status %d", path, resp.StatusCode())
	}
	return &result, nil
}
