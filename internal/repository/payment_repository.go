package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// PaymentRepo provides data access to the payment_transactions table.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTransaction inserts a new payment transaction and fills in the
// generated ID.  The amount must already be copied from the booking;
// this method performs no validation beyond the unique constraint on
// gateway_ref.
func (r *PaymentRepo) CreateTransaction(ctx context.Context, t *model.PaymentTransaction) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_transactions (gateway_ref, order_ref, booking_id, method, status, amount_cents)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.GatewayRef, t.OrderRef, t.BookingID, t.Method, t.Status, t.AmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByGatewayRef fetches a payment transaction by the gateway
// transaction id carried in webhook payloads.  Returns
// ErrTransactionNotFound when no matching row exists.
func (r *PaymentRepo) GetByGatewayRef(ctx context.Context, gatewayRef string) (*model.PaymentTransaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, gateway_ref, order_ref, booking_id, method, status, amount_cents, gateway_note, paid_at, created_at, updated_at
		 FROM payment_transactions WHERE gateway_ref = ?`, gatewayRef)
	var t model.PaymentTransaction
	err := row.Scan(&t.ID, &t.GatewayRef, &t.OrderRef, &t.BookingID, &t.Method, &t.Status,
		&t.AmountCents, &t.GatewayNote, &t.PaidAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatusTx moves a payment transaction to the given status within
// the provided transaction, recording an optional gateway note and
// completion time.  Nil note/paidAt leave the stored values untouched.
// The caller must commit or roll back.
func (r *PaymentRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, note *string, paidAt *time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE payment_transactions
		 SET status = ?, gateway_note = COALESCE(?, gateway_note), paid_at = COALESCE(?, paid_at), updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		status, note, paidAt, id)
	return err
}
