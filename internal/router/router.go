package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/transit-ticket-booking/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not depend on application state
// on the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterPayments registers the payment initiation and gateway webhook
// endpoints.  The webhook route takes extra middleware (typically the
// token-bucket rate limiter) because gateways retry deliveries in bursts
// and the endpoint is reachable without authentication.
func RegisterPayments(e *echo.Echo, p *handler.PaymentHandler, webhookMW ...echo.MiddlewareFunc) {
	g := e.Group("/v1")
	// Start a payment for a booking.  The response carries the gateway
	// redirect URL the client should send the customer to.
	g.POST("/bookings/:id/payment", p.InitiatePayment)
	// Gateway-facing webhook.  The :provider segment selects the payload
	// format; the response is always 200 with an outcome code so gateways
	// do not retry deliveries that were consumed.
	g.POST("/payments/webhook/:provider", p.HandleWebhook, webhookMW...)
}

// RegisterQuotes registers the price quote endpoint.  Quotes are
// stateless unless the request names a booking to attach the pricing
// snapshot to.
func RegisterQuotes(e *echo.Echo, q *handler.QuoteHandler) {
	e.POST("/v1/quotes", q.ComputeQuote)
}

// RegisterBookings registers the booking status endpoint used by clients
// polling for the result of a payment.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler) {
	e.GET("/v1/bookings/:code/status", b.GetStatus)
}
