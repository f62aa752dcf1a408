package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// BookingRepo provides data access to the bookings and booking_seats
// tables.  Soft-deleted rows are excluded from every query.  Status
// updates are offered only as ...Tx variants because booking status
// must always advance together with the payment transaction status
// inside one transaction.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions
// spanning several repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, code, status, trip_id, quantity, total_amount_cents, customer_id, created_at, updated_at, deleted_at`

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.Code, &b.Status, &b.TripID, &b.Quantity,
		&b.TotalAmountCents, &b.CustomerID, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID fetches a booking by primary key.  Returns ErrBookingNotFound
// when the booking does not exist or has been soft-deleted.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND deleted_at IS NULL`, id)
	return scanBooking(row)
}

// GetByCode fetches a booking by its unique human-readable code.
// Returns ErrBookingNotFound when no matching row exists.
func (r *BookingRepo) GetByCode(ctx context.Context, code string) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE code = ? AND deleted_at IS NULL`, code)
	return scanBooking(row)
}

// SeatNumbers returns the seat numbers held for a booking, in insertion
// order.  The rows are written by the upstream seat-hold step; the saga
// only reads them.
func (r *BookingRepo) SeatNumbers(ctx context.Context, bookingID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_no FROM booking_seats WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// UpdateStatusTx moves a booking to the given status within the
// provided transaction.  The caller must commit or roll back.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`, status, bookingID)
	return err
}
