package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

func TestWebhookLogInsertFillsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO payment_webhook_logs").
		WithArgs("VNPAY", "abc123", "PROCESSING", nil).
		WillReturnResult(sqlmock.NewResult(77, 1))

	rec := &model.PaymentWebhookLog{Provider: "VNPAY", PayloadHash: "abc123", Status: "PROCESSING"}
	require.NoError(t, NewWebhookLogRepo(db).Insert(context.Background(), rec))
	assert.Equal(t, uint64(77), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookLogInsertDuplicateHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO payment_webhook_logs").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'abc123' for key 'uq_payload_hash'"})

	rec := &model.PaymentWebhookLog{Provider: "VNPAY", PayloadHash: "abc123", Status: "PROCESSING"}
	err = NewWebhookLogRepo(db).Insert(context.Background(), rec)
	assert.ErrorIs(t, err, ErrDuplicateWebhook)
}

func TestWebhookLogInsertOtherErrorPassesThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO payment_webhook_logs").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"})

	err = NewWebhookLogRepo(db).Insert(context.Background(), &model.PaymentWebhookLog{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateWebhook))
}

func TestWebhookLogFindByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewWebhookLogRepo(db)

	// never seen: (nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM payment_webhook_logs WHERE payload_hash").
		WithArgs("unseen").
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider", "payload_hash", "status", "transaction_id", "received_at"}))
	rec, err := repo.FindByHash(context.Background(), "unseen")
	require.NoError(t, err)
	assert.Nil(t, rec)

	// existing row
	mock.ExpectQuery("SELECT (.+) FROM payment_webhook_logs WHERE payload_hash").
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider", "payload_hash", "status", "transaction_id", "received_at"}).
			AddRow(77, "VNPAY", "abc123", "SUCCESS", 5, time.Now().UTC()))
	rec, err = repo.FindByHash(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "SUCCESS", rec.Status)
	require.NotNil(t, rec.TransactionID)
	assert.Equal(t, uint64(5), *rec.TransactionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
