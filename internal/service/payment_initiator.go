package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/iliyamo/transit-ticket-booking/internal/gateway"
	"github.com/iliyamo/transit-ticket-booking/internal/model"
	"github.com/iliyamo/transit-ticket-booking/internal/repository"
)

// PaymentInitiator opens a payment transaction for a booking and builds
// the gateway redirect URL.  It never changes the booking status: the
// booking stays in AWAITING_PAYMENT until the webhook processor moves
// it.
type PaymentInitiator struct {
	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo
	Gateways *gateway.Registry
}

// NewPaymentInitiator constructs a PaymentInitiator.  All dependencies
// must be non-nil.
func NewPaymentInitiator(bookings *repository.BookingRepo, payments *repository.PaymentRepo, gateways *gateway.Registry) *PaymentInitiator {
	if bookings == nil || payments == nil || gateways == nil {
		panic("nil dependency passed to NewPaymentInitiator")
	}
	return &PaymentInitiator{Bookings: bookings, Payments: payments, Gateways: gateways}
}

// Initiation is the result of opening a payment transaction.
type Initiation struct {
	RedirectURL   string `json:"redirect_url"`
	TransactionID string `json:"transaction_id"`
	OrderRef      string `json:"order_ref"`
}

// randomRef generates a random hexadecimal suffix of n bytes for
// gateway references.  The contract is global uniqueness, not the
// exact alphabet; crypto/rand makes collisions negligible and the
// unique index on gateway_ref backstops them.
func randomRef(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// InitiatePayment creates an INITIATED payment transaction for the
// booking with the amount copied from the booking, and returns the
// gateway redirect URL for the chosen method.  The booking must exist
// and be AWAITING_PAYMENT; otherwise repository.ErrBookingNotFound or
// ErrInvalidBookingState is returned and no state is created.
func (s *PaymentInitiator) InitiatePayment(ctx context.Context, bookingID uint64, method, returnURL, clientIP string) (*Initiation, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingAwaitingPayment {
		return nil, fmt.Errorf("%w: booking %s is %s", ErrInvalidBookingState, booking.Code, booking.Status)
	}

	suffix, err := randomRef(8)
	if err != nil {
		return nil, fmt.Errorf("generate gateway ref: %w", err)
	}
	txn := &model.PaymentTransaction{
		GatewayRef:  "PAY-" + suffix,
		OrderRef:    booking.Code,
		BookingID:   booking.ID,
		Method:      method,
		Status:      model.TxnInitiated,
		AmountCents: booking.TotalAmountCents,
	}
	if err := s.Payments.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("create payment transaction: %w", err)
	}

	redirect := s.Gateways.BuilderFor(method).BuildRedirectURL(gateway.RedirectParams{
		OrderRef:    txn.OrderRef,
		GatewayRef:  txn.GatewayRef,
		AmountCents: txn.AmountCents,
		ReturnURL:   returnURL,
		ClientIP:    clientIP,
	})
	return &Initiation{
		RedirectURL:   redirect,
		TransactionID: txn.GatewayRef,
		OrderRef:      txn.OrderRef,
	}, nil
}
