package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/transit-ticket-booking/internal/cache"
	"github.com/iliyamo/transit-ticket-booking/internal/repository"
)

// BookingHandler exposes read-only booking status lookups.  The
// confirmed-booking cache marker serves as a fast path; the relational
// record stays authoritative and is consulted whenever the marker is
// absent.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Cache    cache.Store
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies
// must be non-nil.
func NewBookingHandler(bookings *repository.BookingRepo, store cache.Store) *BookingHandler {
	if bookings == nil || store == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Cache: store}
}

// GetStatus handles GET /v1/bookings/:code/status.  It returns the
// booking status plus any pending manual-review note so operators see
// bookings stuck after a failed seat confirmation.
func (h *BookingHandler) GetStatus(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking code"})
	}
	ctx := c.Request().Context()

	// fast path: recently confirmed bookings skip the database read
	if v, err := h.Cache.Get(ctx, cache.ConfirmedKey(code)); err == nil && v != "" {
		return c.JSON(http.StatusOK, echo.Map{
			"code":   code,
			"status": "CONFIRMED",
			"cached": true,
		})
	}

	booking, err := h.Bookings.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	resp := echo.Map{
		"code":   booking.Code,
		"status": booking.Status,
		"cached": false,
	}
	if note, err := h.Cache.Get(ctx, cache.ReviewKey(code)); err == nil && note != "" {
		resp["review"] = note
	}
	return c.JSON(http.StatusOK, resp)
}
