package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// TicketRepo provides data access to the tickets table.  Tickets are
// created in bulk by the ticket issuer inside the saga's success
// transaction and are only ever soft-deleted afterwards.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the provided database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// CreateBulkTx inserts multiple tickets within the provided
// transaction.  The caller must commit or roll back.  Passing an empty
// slice has no effect and returns nil.
func (r *TicketRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (code, booking_id, price_cents, qr_payload, trip_id, route_id, seat_id, seat_no, valid_from, valid_to) VALUES `
	args := make([]interface{}, 0, len(tickets)*10)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, t.Code, t.BookingID, t.PriceCents, t.QRPayload,
			t.TripID, t.RouteID, t.SeatID, t.SeatNo,
			t.ValidFrom.UTC().Format("2006-01-02 15:04:05"),
			t.ValidTo.UTC().Format("2006-01-02 15:04:05"))
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CountByBooking returns the number of live (not soft-deleted) tickets
// for a booking.
func (r *TicketRepo) CountByBooking(ctx context.Context, bookingID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE booking_id = ? AND deleted_at IS NULL`, bookingID).Scan(&n)
	return n, err
}

// SoftDeleteByBookingTx marks all live tickets of a booking as deleted
// within the provided transaction.  Used by the saga's compensation
// path: tickets issued in a failed confirmation attempt must not
// survive, or a later distinct delivery would double-issue.
func (r *TicketRepo) SoftDeleteByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE tickets SET deleted_at = UTC_TIMESTAMP() WHERE booking_id = ? AND deleted_at IS NULL`, bookingID)
	return err
}
