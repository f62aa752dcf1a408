package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// mysqlDupEntry is the MySQL error number for a unique-key violation.
const mysqlDupEntry = 1062

// WebhookLogRepo provides data access to the payment_webhook_logs
// table.  The table is append-only apart from the status column, which
// is finalized once per row when processing completes.
type WebhookLogRepo struct {
	db *sql.DB
}

// NewWebhookLogRepo returns a new WebhookLogRepo bound to the provided database.
func NewWebhookLogRepo(db *sql.DB) *WebhookLogRepo { return &WebhookLogRepo{db: db} }

// FindByHash looks up a webhook log row by payload hash.  It returns
// (nil, nil) when no row exists, so callers can distinguish "never
// seen" from a database failure.
func (r *WebhookLogRepo) FindByHash(ctx context.Context, hash string) (*model.PaymentWebhookLog, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, provider, payload_hash, status, transaction_id, received_at
		 FROM payment_webhook_logs WHERE payload_hash = ?`, hash)
	var l model.PaymentWebhookLog
	err := row.Scan(&l.ID, &l.Provider, &l.PayloadHash, &l.Status, &l.TransactionID, &l.ReceivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Insert appends a webhook log row outside any transaction and fills in
// the generated ID.  The insert is committed immediately so that a
// concurrent caller holding the same payload hash observes the row.
// When the payload hash already exists, ErrDuplicateWebhook is
// returned: the caller lost the claim race.
func (r *WebhookLogRepo) Insert(ctx context.Context, l *model.PaymentWebhookLog) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_webhook_logs (provider, payload_hash, status, transaction_id)
		 VALUES (?, ?, ?, ?)`,
		l.Provider, l.PayloadHash, l.Status, l.TransactionID)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDupEntry {
			return ErrDuplicateWebhook
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// FinalizeStatus stores the terminal outcome of a claimed webhook log
// row.  Replays of the same payload will return this status verbatim.
func (r *WebhookLogRepo) FinalizeStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payment_webhook_logs SET status = ? WHERE id = ?`, status, id)
	return err
}
