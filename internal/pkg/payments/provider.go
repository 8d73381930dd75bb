package payments

import (
	"errors"
	"strconv"

	"github.com/zhandosm/baraholka/app/models"
)

var (
	ErrUnknownProvider  = errors.New("unknown payment provider")
	ErrBadSignature     = errors.New("webhook signature mismatch")
	ErrMissingReference = errors.New("webhook missing transaction reference")
)

// CreateRequest carries everything a provider needs to start a payment.
type CreateRequest struct {
	TransactionID uint
	Amount        int64
	Currency      string
	Description   string
	ReturnURL     string
}

// CreateResponse is what the client needs to complete the payment.
type CreateResponse struct {
	ExternalID string
	PaymentURL string
}

// WebhookEvent is the normalized result of a verified provider callback.
type WebhookEvent struct {
	ExternalTransactionID string
	TransactionID         uint
	Success               bool
	Amount                int64
	Raw                   map[string]string
}

// Provider is one payment gateway. Signature verification happens before
// any state is read from the payload.
type Provider interface {
	Name() string
	CreatePayment(req CreateRequest) (*CreateResponse, error)
	VerifyWebhook(values map[string]string) error
	ParseWebhook(values map[string]string) (*WebhookEvent, error)
}

// Registry maps provider names to instances.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds the registry with all configured providers.
func NewRegistry() *Registry {
	r := &Registry{providers: map[string]Provider{}}
	r.register(NewKaspiProvider())
	r.register(NewHalykProvider())
	r.register(NewPayBoxProvider())
	return r
}

func (r *Registry) register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// IsKnown reports whether name is a configured provider.
func (r *Registry) IsKnown(name string) bool {
	_, ok := r.providers[name]
	return ok
}

func parseAmount(raw string) int64 {
	// providers send amounts as decimal strings; fractional parts are
	// dropped since prices are whole KZT
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseTransactionID(raw string) uint {
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return uint(n)
	}
	return 0
}

// knownProviders guards against typos in route params.
var knownProviders = map[string]bool{
	models.PAYMENT_PROVIDER_KASPI:  true,
	models.PAYMENT_PROVIDER_HALYK:  true,
	models.PAYMENT_PROVIDER_PAYBOX: true,
}

// IsValidProviderName reports whether name matches a supported provider.
func IsValidProviderName(name string) bool {
	return knownProviders[name]
}
