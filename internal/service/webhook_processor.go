package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/transit-ticket-booking/internal/cache"
	"github.com/iliyamo/transit-ticket-booking/internal/client"
	"github.com/iliyamo/transit-ticket-booking/internal/gateway"
	"github.com/iliyamo/transit-ticket-booking/internal/model"
	"github.com/iliyamo/transit-ticket-booking/internal/queue"
	"github.com/iliyamo/transit-ticket-booking/internal/repository"
)

// Outcome is the string code a webhook call resolves to.  The gateway
// treats any 2xx response carrying one of these codes as received and
// retries on ERROR per its own policy.
type Outcome string

// Webhook outcome codes.
const (
	OutcomeInvalidSignature    Outcome = "INVALID_SIGNATURE"
	OutcomeTransactionNotFound Outcome = "TRANSACTION_NOT_FOUND"
	OutcomeAlreadyFinal        Outcome = "ALREADY_FINAL"
	OutcomeDuplicateProcessing Outcome = "DUPLICATE_PROCESSING"
	OutcomeSuccess             Outcome = "SUCCESS"
	OutcomeFailed              Outcome = "FAILED"
	OutcomeRefunded            Outcome = "REFUNDED"
	OutcomeSeatConfirmFailed   Outcome = "SEAT_CONFIRM_FAILED"
	OutcomeProcessed           Outcome = "PROCESSED"
	OutcomeError               Outcome = "ERROR"
)

// WebhookProcessor drives the booking/payment state machine from
// asynchronous gateway notifications.  It is safe to call arbitrarily
// many times with the same payload, sequentially or concurrently: the
// unique payload hash in payment_webhook_logs is the only concurrency
// primitive, and a caller that loses the claim race performs no
// business effects.
type WebhookProcessor struct {
	DB        *sql.DB
	Bookings  *repository.BookingRepo
	Payments  *repository.PaymentRepo
	Logs      *repository.WebhookLogRepo
	Tickets   *repository.TicketRepo
	Issuer    *TicketIssuer
	Inventory InventoryAPI
	Gateways  *gateway.Registry
	Cache     cache.Store

	// PublishConfirmed, when set, publishes the booking-confirmed
	// domain event after a successful saga.  Publish failures are
	// logged and ignored.
	PublishConfirmed func(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// ProcessWebhook validates, deduplicates and applies one gateway
// notification, returning the outcome code to answer the gateway with.
// Errors never escape to the transport layer; unexpected failures map
// to OutcomeError so the gateway retries.
func (p *WebhookProcessor) ProcessWebhook(ctx context.Context, provider string, rawPayload []byte, signature string) Outcome {
	prov := p.Gateways.ProviderFor(provider)

	// 1. authenticate before any side effect
	if !prov.Verify(rawPayload, signature) {
		return OutcomeInvalidSignature
	}

	// 2. idempotency: a previously seen payload short-circuits to its
	// stored outcome without re-executing business effects
	sum := sha256.Sum256(rawPayload)
	hash := hex.EncodeToString(sum[:])
	existing, err := p.Logs.FindByHash(ctx, hash)
	if err != nil {
		log.Printf("webhook: lookup payload hash: %v", err)
		return OutcomeError
	}
	if existing != nil {
		if existing.Status == model.TxnProcessing {
			// the first delivery is still in flight
			return OutcomeDuplicateProcessing
		}
		return Outcome(existing.Status)
	}

	// 3. provider-specific parse
	notif, err := prov.Parse(rawPayload)
	if err != nil {
		log.Printf("webhook: parse %s payload: %v", prov.Name(), err)
		p.appendLog(ctx, prov.Name(), hash, string(OutcomeError), nil)
		return OutcomeError
	}

	// 4. resolve the transaction; an unresolvable payload is logged so
	// its replays short-circuit too
	txn, err := p.Payments.GetByGatewayRef(ctx, notif.TransactionID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		p.appendLog(ctx, prov.Name(), hash, string(OutcomeTransactionNotFound), nil)
		return OutcomeTransactionNotFound
	}
	if err != nil {
		log.Printf("webhook: resolve transaction %s: %v", notif.TransactionID, err)
		return OutcomeError
	}

	// 5. terminal-state guard: the saga already completed through a
	// different payload
	if model.TxnStatusTerminal(txn.Status) {
		p.appendLog(ctx, prov.Name(), hash, string(OutcomeAlreadyFinal), &txn.ID)
		return OutcomeAlreadyFinal
	}

	// 6. claim the payload before any business mutation; losing the
	// insert race means a concurrent duplicate got there first
	claim := &model.PaymentWebhookLog{
		Provider:      prov.Name(),
		PayloadHash:   hash,
		Status:        model.TxnProcessing,
		TransactionID: &txn.ID,
	}
	if err := p.Logs.Insert(ctx, claim); err != nil {
		if errors.Is(err, repository.ErrDuplicateWebhook) {
			return OutcomeDuplicateProcessing
		}
		log.Printf("webhook: claim payload %s: %v", hash, err)
		return OutcomeError
	}

	// 7.–8. map the gateway vocabulary and dispatch
	switch prov.MapStatus(notif.Status) {
	case model.TxnSuccess:
		return p.handleSuccess(ctx, txn, claim.ID, notif)
	case model.TxnFailed:
		return p.handleFailedOrRefunded(ctx, txn, claim.ID, notif, model.TxnFailed, model.BookingCanceled)
	case model.TxnRefunded:
		return p.handleFailedOrRefunded(ctx, txn, claim.ID, notif, model.TxnRefunded, model.BookingRefunded)
	default:
		// non-terminal gateway state: acknowledge without touching
		// booking or transaction
		p.finalizeLog(ctx, claim.ID, OutcomeProcessed)
		return OutcomeProcessed
	}
}

// appendLog writes an audit row for payloads that never reach the
// claim step (parse errors, unknown transactions, already-final
// replays).  Failures only log: the audit trail must not break the
// delivery contract.
func (p *WebhookProcessor) appendLog(ctx context.Context, provider, hash, status string, txnID *uint64) {
	rec := &model.PaymentWebhookLog{
		Provider:      provider,
		PayloadHash:   hash,
		Status:        status,
		TransactionID: txnID,
	}
	if err := p.Logs.Insert(ctx, rec); err != nil && !errors.Is(err, repository.ErrDuplicateWebhook) {
		log.Printf("webhook: append %s log row: %v", status, err)
	}
}

func (p *WebhookProcessor) finalizeLog(ctx context.Context, logID uint64, outcome Outcome) {
	if err := p.Logs.FinalizeStatus(ctx, logID, string(outcome)); err != nil {
		log.Printf("webhook: finalize log %d as %s: %v", logID, outcome, err)
	}
}

// handleSuccess runs the success path of the saga: mark the pair
// confirmed, issue tickets, commit locally, then confirm the seat
// holds with the inventory service.  The external confirm must stay
// the last step; when it fails the local state is compensated and the
// booking is flagged for manual review instead of being retried,
// since the confirm might have partially succeeded server-side.
func (p *WebhookProcessor) handleSuccess(ctx context.Context, txn *model.PaymentTransaction, logID uint64, notif *gateway.Notification) Outcome {
	booking, seats, tickets, err := p.confirmLocally(ctx, txn, notif)
	if err != nil {
		// nothing external has been mutated yet; the transaction
		// rollback restored the previous local state
		log.Printf("webhook: success path for %s: %v", txn.GatewayRef, err)
		p.finalizeLog(ctx, logID, OutcomeFailed)
		return OutcomeFailed
	}

	res, err := p.Inventory.ConfirmSeatLocks(ctx, clientSeatLockRequest(booking, seats))
	if err != nil || res.Status != "OK" {
		reason := "seat confirm call failed"
		if err != nil {
			reason = fmt.Sprintf("seat confirm call failed: %v", err)
		} else if res.Message != "" {
			reason = fmt.Sprintf("seat confirm rejected: %s", res.Message)
		}
		p.compensate(ctx, txn, booking, reason)
		p.finalizeLog(ctx, logID, OutcomeSeatConfirmFailed)
		return OutcomeSeatConfirmFailed
	}

	if err := p.Cache.Set(ctx, cache.ConfirmedKey(booking.Code), "1", cache.ConfirmedTTL); err != nil {
		log.Printf("webhook: set confirmed marker for %s: %v", booking.Code, err)
	}
	p.publishConfirmed(ctx, booking, seats, tickets)
	p.finalizeLog(ctx, logID, OutcomeSuccess)
	return OutcomeSuccess
}

// confirmLocally performs the local half of the success path in one
// transaction: transaction SUCCESS, booking CONFIRMED, tickets issued.
func (p *WebhookProcessor) confirmLocally(ctx context.Context, txn *model.PaymentTransaction, notif *gateway.Notification) (*model.Booking, []string, []model.Ticket, error) {
	booking, err := p.Bookings.GetByCode(ctx, txn.OrderRef)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve booking %s: %w", txn.OrderRef, err)
	}
	seats, err := p.Bookings.SeatNumbers(ctx, booking.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load held seats: %w", err)
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	note := "gateway status " + notif.Status
	if err := p.Payments.UpdateStatusTx(ctx, tx, txn.ID, model.TxnSuccess, &note, &now); err != nil {
		return nil, nil, nil, fmt.Errorf("mark transaction success: %w", err)
	}
	if err := p.Bookings.UpdateStatusTx(ctx, tx, booking.ID, model.BookingConfirmed); err != nil {
		return nil, nil, nil, fmt.Errorf("mark booking confirmed: %w", err)
	}
	tickets, err := p.Issuer.IssueTicketsTx(ctx, tx, booking, seats)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("issue tickets: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return booking, seats, tickets, nil
}

// compensate reverts the locally committed success state after a
// failed seat confirmation and flags the booking for operator review.
// The booking is now stuck pending human intervention; it is not
// auto-retried.
func (p *WebhookProcessor) compensate(ctx context.Context, txn *model.PaymentTransaction, booking *model.Booking, reason string) {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("webhook: begin compensation for %s: %v", booking.Code, err)
		return
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := p.Payments.UpdateStatusTx(ctx, tx, txn.ID, model.TxnProcessing, &reason, nil); err != nil {
		log.Printf("webhook: revert transaction %s: %v", txn.GatewayRef, err)
		return
	}
	if err := p.Bookings.UpdateStatusTx(ctx, tx, booking.ID, model.BookingAwaitingPayment); err != nil {
		log.Printf("webhook: revert booking %s: %v", booking.Code, err)
		return
	}
	if err := p.Tickets.SoftDeleteByBookingTx(ctx, tx, booking.ID); err != nil {
		log.Printf("webhook: revoke tickets for %s: %v", booking.Code, err)
		return
	}
	if err := tx.Commit(); err != nil {
		log.Printf("webhook: commit compensation for %s: %v", booking.Code, err)
		return
	}
	committed = true

	note := cache.ReviewNote{BookingCode: booking.Code, Reason: reason, FlaggedAt: time.Now().UTC()}
	if err := p.Cache.Set(ctx, cache.ReviewKey(booking.Code), note.Encode(), cache.ReviewTTL); err != nil {
		log.Printf("webhook: flag %s for review: %v", booking.Code, err)
	}
}

// handleFailedOrRefunded runs the failure/refund path: move the pair to
// their terminal statuses, release the seat holds best-effort and clear
// any cached session state.
func (p *WebhookProcessor) handleFailedOrRefunded(ctx context.Context, txn *model.PaymentTransaction, logID uint64, notif *gateway.Notification, txnStatus, bookingStatus string) Outcome {
	booking, err := p.Bookings.GetByCode(ctx, txn.OrderRef)
	if err != nil {
		log.Printf("webhook: resolve booking %s: %v", txn.OrderRef, err)
		p.finalizeLog(ctx, logID, OutcomeError)
		return OutcomeError
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("webhook: begin failure path for %s: %v", booking.Code, err)
		p.finalizeLog(ctx, logID, OutcomeError)
		return OutcomeError
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	note := "gateway status " + notif.Status
	if err := p.Payments.UpdateStatusTx(ctx, tx, txn.ID, txnStatus, &note, nil); err != nil {
		log.Printf("webhook: mark transaction %s %s: %v", txn.GatewayRef, txnStatus, err)
		p.finalizeLog(ctx, logID, OutcomeError)
		return OutcomeError
	}
	if err := p.Bookings.UpdateStatusTx(ctx, tx, booking.ID, bookingStatus); err != nil {
		log.Printf("webhook: mark booking %s %s: %v", booking.Code, bookingStatus, err)
		p.finalizeLog(ctx, logID, OutcomeError)
		return OutcomeError
	}
	if err := tx.Commit(); err != nil {
		log.Printf("webhook: commit failure path for %s: %v", booking.Code, err)
		p.finalizeLog(ctx, logID, OutcomeError)
		return OutcomeError
	}
	committed = true

	// releasing seats is best-effort once payment definitively failed:
	// holding them longer only affects availability, not money
	seats, err := p.Bookings.SeatNumbers(ctx, booking.ID)
	if err != nil {
		log.Printf("webhook: load seats to release for %s: %v", booking.Code, err)
	} else if res, err := p.Inventory.CancelSeatLocks(ctx, clientSeatLockRequest(booking, seats)); err != nil {
		log.Printf("webhook: cancel seat locks for %s: %v", booking.Code, err)
	} else if res.Status != "OK" {
		log.Printf("webhook: cancel seat locks for %s rejected: %s", booking.Code, res.Message)
	}

	if err := p.Cache.Delete(ctx, cache.ConfirmedKey(booking.Code)); err != nil {
		log.Printf("webhook: clear session state for %s: %v", booking.Code, err)
	}
	p.finalizeLog(ctx, logID, Outcome(txnStatus))
	return Outcome(txnStatus)
}

func clientSeatLockRequest(b *model.Booking, seats []string) client.SeatLockRequest {
	return client.SeatLockRequest{BookingID: b.ID, TripID: b.TripID, SeatNumbers: seats}
}

func (p *WebhookProcessor) publishConfirmed(ctx context.Context, booking *model.Booking, seats []string, tickets []model.Ticket) {
	if p.PublishConfirmed == nil {
		return
	}
	codes := make([]string, 0, len(tickets))
	for _, t := range tickets {
		codes = append(codes, t.Code)
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        booking.ID,
		BookingCode:      booking.Code,
		TripID:           booking.TripID,
		SeatNumbers:      seats,
		TicketCodes:      codes,
		TotalAmountCents: booking.TotalAmountCents,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.PublishConfirmed(ctx, ev); err != nil {
		log.Printf("webhook: publish booking.confirmed for %s: %v", booking.Code, err)
	}
}
