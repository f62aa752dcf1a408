// Package gateway contains the payment-gateway strategies: one
// Provider per webhook wire format and one URL builder per payment
// method.  Both sets are open for extension via the Registry; callers
// never branch on provider names themselves.
package gateway

import "strings"

// Notification is the provider-independent content of a gateway
// webhook: which transaction it concerns, the gateway's own status
// vocabulary, and the reported amount.
type Notification struct {
	TransactionID string
	Status        string
	AmountCents   int64
}

// Provider parses and authenticates webhook payloads of one gateway.
type Provider interface {
	// Name returns the canonical provider name.
	Name() string
	// Verify authenticates a raw payload against its signature.  A
	// failed verification must have no side effects.
	Verify(raw []byte, signature string) bool
	// Parse extracts the notification content from a raw payload.
	Parse(raw []byte) (*Notification, error)
	// MapStatus translates the gateway status vocabulary into the
	// internal transaction statuses (SUCCESS, FAILED, REFUNDED,
	// PROCESSING).  Unrecognized values map to PROCESSING.
	MapStatus(gatewayStatus string) string
}

// RedirectParams carries everything a URL builder needs to construct a
// gateway redirect for a freshly initiated payment.
type RedirectParams struct {
	OrderRef    string
	GatewayRef  string
	AmountCents int64
	ReturnURL   string
	ClientIP    string
}

// URLBuilder constructs the gateway redirect URL for one payment
// method.
type URLBuilder interface {
	BuildRedirectURL(p RedirectParams) string
}

// Registry maps provider names to Providers and payment method names to
// URLBuilders.  Lookups are case-insensitive; unknown names fall back
// to the registered default (the mock gateway).
type Registry struct {
	providers       map[string]Provider
	builders        map[string]URLBuilder
	defaultProvider Provider
	defaultBuilder  URLBuilder
}

// NewRegistry builds a registry with the given default provider and
// URL builder.  The defaults must be non-nil.
func NewRegistry(defaultProvider Provider, defaultBuilder URLBuilder) *Registry {
	if defaultProvider == nil || defaultBuilder == nil {
		panic("nil default passed to gateway.NewRegistry")
	}
	return &Registry{
		providers:       map[string]Provider{},
		builders:        map[string]URLBuilder{},
		defaultProvider: defaultProvider,
		defaultBuilder:  defaultBuilder,
	}
}

// RegisterProvider adds a webhook provider under its canonical name.
func (r *Registry) RegisterProvider(p Provider) {
	r.providers[strings.ToUpper(p.Name())] = p
}

// RegisterBuilder adds a redirect URL builder for a payment method.
func (r *Registry) RegisterBuilder(method string, b URLBuilder) {
	r.builders[strings.ToUpper(method)] = b
}

// ProviderFor returns the provider registered under name, or the
// default when the name is unknown or empty.
func (r *Registry) ProviderFor(name string) Provider {
	if p, ok := r.providers[strings.ToUpper(name)]; ok {
		return p
	}
	return r.defaultProvider
}

// BuilderFor returns the URL builder for a payment method, or the
// default when the method is unknown or unset.
func (r *Registry) BuilderFor(method string) URLBuilder {
	if b, ok := r.builders[strings.ToUpper(method)]; ok {
		return b
	}
	return r.defaultBuilder
}
