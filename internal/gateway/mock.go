package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/iliyamo/transit-ticket-booking/internal/model"
)

// Mock is the default gateway strategy used for unknown providers and
// payment methods, and in local development.  Payloads are JSON and
// are signed with HMAC-SHA256 over the raw body.
type Mock struct {
	Secret string // HMAC-SHA256 key; empty disables verification
	PayURL string // base URL of the mock payment page
}

// mockPayload is the JSON body of a mock gateway notification.
type mockPayload struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amount_cents"`
}

// Name returns "MOCK".
func (m *Mock) Name() string { return "MOCK" }

// Verify checks the HMAC-SHA256 hex signature of the raw body.  With no
// secret configured every payload is accepted, which keeps local
// development friction-free.
func (m *Mock) Verify(raw []byte, signature string) bool {
	if m.Secret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(m.Secret))
	mac.Write(raw)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(want))
}

// Sign produces the signature Verify expects for a raw body.  Exposed
// for tests and for the mock gateway binary.
func (m *Mock) Sign(raw []byte) string {
	mac := hmac.New(sha256.New, []byte(m.Secret))
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}

// Parse decodes the JSON notification body.
func (m *Mock) Parse(raw []byte) (*Notification, error) {
	var p mockPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("mock: parse payload: %w", err)
	}
	if p.TransactionID == "" {
		return nil, fmt.Errorf("mock: payload missing transaction_id")
	}
	return &Notification{
		TransactionID: p.TransactionID,
		Status:        p.Status,
		AmountCents:   p.AmountCents,
	}, nil
}

// MapStatus passes through the internal vocabulary; anything else is
// treated as non-terminal.
func (m *Mock) MapStatus(gatewayStatus string) string {
	switch gatewayStatus {
	case model.TxnSuccess, model.TxnFailed, model.TxnRefunded:
		return gatewayStatus
	}
	return model.TxnProcessing
}

// BuildRedirectURL constructs a generic mock payment page URL.
func (m *Mock) BuildRedirectURL(p RedirectParams) string {
	values := url.Values{}
	values.Set("ref", p.GatewayRef)
	values.Set("order", p.OrderRef)
	values.Set("amount", strconv.FormatInt(p.AmountCents, 10))
	values.Set("return_url", p.ReturnURL)
	return m.PayURL + "/pay?" + values.Encode()
}
