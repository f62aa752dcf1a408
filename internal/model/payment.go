package model

import "time"

// Payment transaction statuses.  INITIATED and PROCESSING are
// non-terminal; SUCCESS, FAILED and REFUNDED are terminal and a
// transaction never leaves them under normal processing.
const (
	TxnInitiated  = "INITIATED"
	TxnProcessing = "PROCESSING"
	TxnSuccess    = "SUCCESS"
	TxnFailed     = "FAILED"
	TxnRefunded   = "REFUNDED"
)

// TxnStatusTerminal reports whether a payment transaction status is
// terminal.  The webhook processor uses this as its already-final
// guard before mutating any state.
func TxnStatusTerminal(status string) bool {
	switch status {
	case TxnSuccess, TxnFailed, TxnRefunded:
		return true
	}
	return false
}

// PaymentTransaction is the gateway-facing record of a payment attempt
// for a booking.  Exactly one non-terminal transaction exists per
// booking at a time; its amount is copied from the booking at
// initiation and never changes afterwards.
//
// Fields:
//  ID          – primary key identifier.
//  GatewayRef  – unique transaction id sent to the payment gateway.
//  OrderRef    – order reference presented to the payer (= booking code).
//  BookingID   – owning booking.
//  Method      – payment method name (e.g. VNPAY), selects the redirect
//                URL builder.
//  Status      – lifecycle state, see constants above.
//  AmountCents – charged amount in cents, copied from the booking.
//  GatewayNote – free-text note from the gateway (nullable).
//  PaidAt      – gateway-reported completion time (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type PaymentTransaction struct {
	ID          uint64     // payment_transactions.id
	GatewayRef  string     // payment_transactions.gateway_ref
	OrderRef    string     // payment_transactions.order_ref
	BookingID   uint64     // payment_transactions.booking_id
	Method      string     // payment_transactions.method
	Status      string     // payment_transactions.status
	AmountCents int64      // payment_transactions.amount_cents
	GatewayNote *string    // payment_transactions.gateway_note (nullable)
	PaidAt      *time.Time // payment_transactions.paid_at (nullable)
	CreatedAt   time.Time  // payment_transactions.created_at
	UpdatedAt   time.Time  // payment_transactions.updated_at
}

// PaymentWebhookLog is the append-only audit trail of gateway
// notifications.  PayloadHash is the SHA-256 hex of the raw payload and
// carries a unique index: inserting a row for an already-seen hash
// fails, which is the mutual-exclusion primitive that makes concurrent
// duplicate deliveries safe.  Status stores the final outcome code so a
// replayed payload can short-circuit to the same answer.
//
// Fields:
//  ID            – primary key identifier.
//  Provider      – gateway provider name (e.g. VNPAY).
//  PayloadHash   – SHA-256 hex of the raw payload, unique.
//  Status        – processing status / stored outcome code.
//  TransactionID – resolved payment transaction, if any (nullable).
//  ReceivedAt    – when the notification arrived.
type PaymentWebhookLog struct {
	ID            uint64    // payment_webhook_logs.id
	Provider      string    // payment_webhook_logs.provider
	PayloadHash   string    // payment_webhook_logs.payload_hash
	Status        string    // payment_webhook_logs.status
	TransactionID *uint64   // payment_webhook_logs.transaction_id (nullable)
	ReceivedAt    time.Time // payment_webhook_logs.received_at
}
