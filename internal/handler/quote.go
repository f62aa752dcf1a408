package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/transit-ticket-booking/internal/pricing"
	"github.com/iliyamo/transit-ticket-booking/internal/repository"
)

// QuoteHandler exposes the price quote engine.  When the request names
// an existing booking, the quote's pricing snapshots and the applied
// promotion are persisted under that booking for audit and dispute
// resolution; without a booking the quote is a pure preview.
type QuoteHandler struct {
	Quoter   *pricing.Quoter
	Bookings *repository.BookingRepo
	Pricing  *repository.PricingRepo
}

// NewQuoteHandler constructs a QuoteHandler.  Quoter must be non-nil;
// the repositories may be nil only in preview-only deployments.
func NewQuoteHandler(quoter *pricing.Quoter, bookings *repository.BookingRepo, pricingRepo *repository.PricingRepo) *QuoteHandler {
	if quoter == nil {
		panic("nil quoter passed to NewQuoteHandler")
	}
	return &QuoteHandler{Quoter: quoter, Bookings: bookings, Pricing: pricingRepo}
}

// ComputeQuote handles POST /v1/quotes.  The body carries the trip id,
// the selected seat numbers, an optional promo code and an optional
// booking id to record the quote against.
func (h *QuoteHandler) ComputeQuote(c echo.Context) error {
	var body struct {
		TripID    uint64   `json:"trip_id"`
		Seats     []string `json:"seats"`
		PromoCode string   `json:"promo_code"`
		BookingID uint64   `json:"booking_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "trip_id is required"})
	}

	ctx := c.Request().Context()
	quote, err := h.Quoter.ComputeQuote(ctx, body.TripID, body.Seats, body.PromoCode)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrEmptySeatSelection), errors.Is(err, pricing.ErrUnknownSeat):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, pricing.ErrSeatUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		default:
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to fetch trip data"})
		}
	}

	if body.BookingID != 0 && h.Bookings != nil && h.Pricing != nil {
		if err := h.recordQuote(ctx, body.BookingID, quote); err != nil {
			if errors.Is(err, repository.ErrBookingNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record quote"})
		}
	}
	return c.JSON(http.StatusOK, quote)
}

// recordQuote persists the audit records of a quote under a booking in
// one transaction.
func (h *QuoteHandler) recordQuote(ctx context.Context, bookingID uint64, quote *pricing.Quote) error {
	booking, err := h.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	tx, err := h.Pricing.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	snaps := quote.Snapshots
	for i := range snaps {
		snaps[i].BookingID = booking.ID
	}
	if err := h.Pricing.CreateSnapshotsTx(ctx, tx, snaps); err != nil {
		return fmt.Errorf("record pricing snapshots: %w", err)
	}
	if quote.Promotion != nil {
		quote.Promotion.BookingID = booking.ID
		if err := h.Pricing.CreateAppliedPromotionTx(ctx, tx, quote.Promotion); err != nil {
			return fmt.Errorf("record applied promotion: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
