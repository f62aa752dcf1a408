package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/transit-ticket-booking/internal/cache"      // Redis-backed booking markers
	"github.com/iliyamo/transit-ticket-booking/internal/client"     // Collaborator service clients
	"github.com/iliyamo/transit-ticket-booking/internal/config"     // Internal config loader
	"github.com/iliyamo/transit-ticket-booking/internal/database"   // MySQL connection helper
	"github.com/iliyamo/transit-ticket-booking/internal/gateway"    // Payment gateway strategies
	"github.com/iliyamo/transit-ticket-booking/internal/handler"    // HTTP handlers
	"github.com/iliyamo/transit-ticket-booking/internal/middleware" // Rate limiting middleware
	"github.com/iliyamo/transit-ticket-booking/internal/pricing"    // Quote engine
	"github.com/iliyamo/transit-ticket-booking/internal/queue"      // RabbitMQ publisher and consumer
	"github.com/iliyamo/transit-ticket-booking/internal/repository" // Data access layer
	"github.com/iliyamo/transit-ticket-booking/internal/router"     // Route registration
	"github.com/iliyamo/transit-ticket-booking/internal/service"    // Payment saga services
)

func main() {
	// Load a .env file when present; real deployments set variables
	// directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		log.Println("[BOOT] no .env file found, using environment")
	}

	cfg := config.Load() // Load environment config

	// MySQL is required; the process cannot serve anything without it.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("[BOOT] database connection failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: markers and rate limiting degrade to no-ops
	// when the client is nil.
	rdb := config.NewRedisClient()
	store := cache.NewRedisStore(rdb)

	// Collaborator clients. The inventory client carries a circuit
	// breaker around trip-detail reads; seat-lock calls bypass it.
	inventory := client.NewInventoryClient(cfg.InventoryBaseURL, cfg.CollaboratorTimeout)
	promotions := client.NewPromotionClient(cfg.PromotionBaseURL, cfg.CollaboratorTimeout)

	// Gateway registry. The mock gateway doubles as the fallback for
	// unknown providers and payment methods.
	mock := &gateway.Mock{Secret: cfg.MockGatewaySecret, PayURL: cfg.MockPayURL}
	gateways := gateway.NewRegistry(mock, mock)
	if cfg.VNPHashSecret != "" {
		vnp := &gateway.VNPay{TmnCode: cfg.VNPTmnCode, HashSecret: cfg.VNPHashSecret, PayURL: cfg.VNPPayURL}
		gateways.RegisterProvider(vnp)
		gateways.RegisterBuilder("VNPAY", vnp)
	} else {
		log.Println("[BOOT] VNP_HASH_SECRET not set, VNPAY gateway disabled")
	}

	// Repositories
	bookings := repository.NewBookingRepo(db)
	payments := repository.NewPaymentRepo(db)
	logs := repository.NewWebhookLogRepo(db)
	tickets := repository.NewTicketRepo(db)
	pricingRepo := repository.NewPricingRepo(db)

	// Services
	initiator := service.NewPaymentInitiator(bookings, payments, gateways)
	issuer := service.NewTicketIssuer(inventory, tickets)
	processor := &service.WebhookProcessor{
		DB:               db,
		Bookings:         bookings,
		Payments:         payments,
		Logs:             logs,
		Tickets:          tickets,
		Issuer:           issuer,
		Inventory:        inventory,
		Gateways:         gateways,
		Cache:            store,
		PublishConfirmed: queue.PublishBookingConfirmed,
	}
	quoter := pricing.NewQuoter(inventory, promotions)

	// Handlers
	paymentH := handler.NewPaymentHandler(initiator, processor)
	quoteH := handler.NewQuoteHandler(quoter, bookings, pricingRepo)
	bookingH := handler.NewBookingHandler(bookings, store)

	// Consume booking.confirmed events in the background; the consumer
	// reconnects on its own when the broker drops.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("[QUEUE] booking consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)

	// The webhook endpoint is unauthenticated and gateways retry in
	// bursts, so it gets the token-bucket limiter.
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterPayments(e, paymentH, limiter)
	router.RegisterQuotes(e, quoteH)
	router.RegisterBookings(e, bookingH)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
