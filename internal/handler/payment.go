package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/transit-ticket-booking/internal/repository"
	"github.com/iliyamo/transit-ticket-booking/internal/service"
)

// PaymentHandler exposes payment initiation and the gateway webhook
// endpoint.  The webhook endpoint always answers 2xx with an outcome
// code once the request reaches the processor: the gateway's delivery
// contract requires the HTTP call to complete normally even when the
// saga inside it failed.
type PaymentHandler struct {
	Initiator *service.PaymentInitiator
	Processor *service.WebhookProcessor
}

// NewPaymentHandler constructs a PaymentHandler with the provided
// services.  Both dependencies must be non-nil.
func NewPaymentHandler(initiator *service.PaymentInitiator, processor *service.WebhookProcessor) *PaymentHandler {
	if initiator == nil || processor == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Initiator: initiator, Processor: processor}
}

// InitiatePayment handles POST /v1/bookings/:id/payment.  The request
// body carries the payment method and the URL the gateway should send
// the payer back to.  On success it returns 201 with the redirect URL,
// gateway transaction id and order reference.  The booking keeps its
// AWAITING_PAYMENT status.
func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Method    string `json:"method"`
		ReturnURL string `json:"return_url"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Initiator.InitiatePayment(c.Request().Context(), bookingID, body.Method, body.ReturnURL, c.RealIP())
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, service.ErrInvalidBookingState) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not awaiting payment"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to initiate payment"})
	}
	return c.JSON(http.StatusCreated, res)
}

// HandleWebhook handles POST /v1/payments/webhook/:provider.  The raw
// body is passed untouched to the processor together with the
// X-Signature header (providers whose signature travels inside the
// payload ignore the header).  The response is always 200 with the
// outcome code; the gateway retries on ERROR per its own policy.
func (h *PaymentHandler) HandleWebhook(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"outcome": service.OutcomeError})
	}
	outcome := h.Processor.ProcessWebhook(
		c.Request().Context(),
		c.Param("provider"),
		raw,
		c.Request().Header.Get("X-Signature"),
	)
	return c.JSON(http.StatusOK, echo.Map{"outcome": outcome})
}
