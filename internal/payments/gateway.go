package payments

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// Customer is the payer shown to the gateway.
type Customer struct {
	Name  string
	Phone string
	Email string
}

// PaymentIntent is built once per checkout attempt and never modified.
type PaymentIntent struct {
	Kind        TransactionKind
	Amount      int64 // minor units
	Currency    string
	Description string
	Reference   string
	CallbackURL string // server-to-server notification
	ReturnURL   string // browser redirect after success
	CancelURL   string // browser redirect after cancellation
	Customer    Customer
}

// MajorAmount returns the intent amount in major units.
func (p PaymentIntent) MajorAmount() decimal.Decimal {
	return FromMinorUnits(p.Amount)
}

// CheckoutSession is what a gateway hands back for a new intent.
type CheckoutSession struct {
	URL string
	// URLField is the response key the frontend expects for URL
	// ("checkoutUrl" for Hubtel, "authorization_url" for Paystack).
	URLField   string
	ProviderID string
}

// WebhookEvent is one inbound notification, normalised across providers.
type WebhookEvent struct {
	Provider              string
	RawBody               []byte
	Signature             string
	Status                string
	Success               bool
	Amount                decimal.Decimal // major units
	ProviderTransactionID string
	Reference             string
}

// Gateway adapts one external payment provider.
type Gateway interface {
	Name() string
	// Initiate creates a hosted checkout for the intent. Failures reported
	// by the provider are returned as *GatewayError; missing credentials
	// as ErrConfiguration.
	Initiate(ctx context.Context, intent PaymentIntent) (*CheckoutSession, error)
	// VerifyWebhook checks the authenticity of a raw webhook body. It
	// returns an error wrapping ErrAuthentication on failure.
	VerifyWebhook(header http.Header, body []byte) error
	// ParseWebhook extracts the event from a raw body already verified.
	ParseWebhook(header http.Header, body []byte) (*WebhookEvent, error)
}
