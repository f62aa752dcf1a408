package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/transit-ticket-booking/internal/client"
	"github.com/iliyamo/transit-ticket-booking/internal/model"
	"github.com/iliyamo/transit-ticket-booking/internal/pricing"
	"github.com/iliyamo/transit-ticket-booking/internal/repository"
)

// InventoryAPI is the slice of the inventory client the saga needs.
type InventoryAPI interface {
	GetTripDetail(ctx context.Context, tripID uint64) (*client.TripDetail, error)
	ConfirmSeatLocks(ctx context.Context, req client.SeatLockRequest) (*client.SeatLockResult, error)
	CancelSeatLocks(ctx context.Context, req client.SeatLockRequest) (*client.SeatLockResult, error)
}

// TicketIssuer allocates ticket records for a confirmed booking, one
// per held seat.  It is invoked only from the success path of the
// webhook processor, inside the saga's local transaction.
type TicketIssuer struct {
	Inventory InventoryAPI
	Tickets   *repository.TicketRepo
}

// NewTicketIssuer constructs a TicketIssuer.  All dependencies must be
// non-nil.
func NewTicketIssuer(inventory InventoryAPI, tickets *repository.TicketRepo) *TicketIssuer {
	if inventory == nil || tickets == nil {
		panic("nil dependency passed to NewTicketIssuer")
	}
	return &TicketIssuer{Inventory: inventory, Tickets: tickets}
}

// splitAmount divides a total equally across n tickets, rounding
// half-up, and pushes the remainder cents onto the last ticket so the
// ticket prices always sum to exactly the amount charged.
func splitAmount(totalCents int64, n int) []int64 {
	per := pricing.RoundCents(float64(totalCents) / float64(n))
	out := make([]int64, n)
	sum := int64(0)
	for i := 0; i < n-1; i++ {
		out[i] = per
		sum += per
	}
	out[n-1] = totalCents - sum
	return out
}

// IssueTicketsTx creates one ticket per held seat within the provided
// transaction.  Trip detail is re-read from the inventory service
// because time has passed since quoting; route id and the validity
// window come from this fresh read.  The per-seat price is an equal
// split of the booking's total, so ticket pricing reconciles to the
// amount actually charged rather than the original per-seat quote.  An
// unresolvable seat number fails the whole issuance with
// ErrSeatUnresolvable.
func (s *TicketIssuer) IssueTicketsTx(ctx context.Context, tx *sql.Tx, booking *model.Booking, seatNumbers []string) ([]model.Ticket, error) {
	if len(seatNumbers) == 0 {
		return nil, fmt.Errorf("%w: booking %s has no held seats", ErrSeatUnresolvable, booking.Code)
	}
	trip, err := s.Inventory.GetTripDetail(ctx, booking.TripID)
	if err != nil {
		return nil, fmt.Errorf("fetch trip detail: %w", err)
	}
	seatIndex := make(map[string]client.TripSeat, len(trip.Seats))
	for _, seat := range trip.Seats {
		seatIndex[pricing.NormalizeSeatNo(seat.SeatNo)] = seat
	}

	prices := splitAmount(booking.TotalAmountCents, len(seatNumbers))
	tickets := make([]model.Ticket, 0, len(seatNumbers))
	for i, raw := range seatNumbers {
		no := pricing.NormalizeSeatNo(raw)
		seat, ok := seatIndex[no]
		if !ok {
			return nil, fmt.Errorf("%w: seat %s on trip %d", ErrSeatUnresolvable, no, booking.TripID)
		}
		qr := uuid.NewString()
		tickets = append(tickets, model.Ticket{
			Code:       "TKT-" + uuid.NewString(),
			BookingID:  booking.ID,
			PriceCents: prices[i],
			QRPayload:  &qr,
			TripID:     booking.TripID,
			RouteID:    trip.RouteID,
			SeatID:     seat.ID,
			SeatNo:     no,
			ValidFrom:  trip.DepartureAt,
			ValidTo:    trip.ArrivalAt,
		})
	}
	if err := s.Tickets.CreateBulkTx(ctx, tx, tickets); err != nil {
		return nil, fmt.Errorf("create tickets: %w", err)
	}
	return tickets, nil
}
