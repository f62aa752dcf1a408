package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// network timeouts.
type Config struct {
	Env                 string        // application environment (e.g. "dev", "prod")
	Port                string        // HTTP port to listen on
	DBUser              string        // database username
	DBPass              string        // database password (optional)
	DBHost              string        // database host address
	DBPort              string        // database port number
	DBName              string        // database name
	InventoryBaseURL    string        // base URL of the seat-inventory service
	PromotionBaseURL    string        // base URL of the promotion service
	CollaboratorTimeout time.Duration // request timeout for collaborator calls
	VNPTmnCode          string        // VNPAY merchant terminal code
	VNPHashSecret       string        // VNPAY HMAC-SHA512 secret
	VNPPayURL           string        // VNPAY payment page base URL
	MockGatewaySecret   string        // mock gateway HMAC secret (empty disables verification)
	MockPayURL          string        // mock gateway payment page base URL
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Gateway and
// collaborator settings have development defaults so a local instance
// starts without a full environment.
func Load() Config {
	return Config{
		Env:                 must("APP_ENV"),  // environment (dev/test/prod)
		Port:                must("APP_PORT"), // port to bind the HTTP server
		DBUser:              must("DB_USER"),  // database user
		DBPass:              os.Getenv("DB_PASS"),
		DBHost:              must("DB_HOST"),
		DBPort:              must("DB_PORT"),
		DBName:              must("DB_NAME"),
		InventoryBaseURL:    envStr("INVENTORY_BASE_URL", "http://localhost:8081"),
		PromotionBaseURL:    envStr("PROMOTION_BASE_URL", "http://localhost:8082"),
		CollaboratorTimeout: envDur("COLLABORATOR_TIMEOUT", 5*time.Second),
		VNPTmnCode:          os.Getenv("VNP_TMN_CODE"),
		VNPHashSecret:       os.Getenv("VNP_HASH_SECRET"),
		VNPPayURL:           envStr("VNP_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
		MockGatewaySecret:   os.Getenv("MOCK_GATEWAY_SECRET"),
		MockPayURL:          envStr("MOCK_PAY_URL", "http://localhost:8090"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
