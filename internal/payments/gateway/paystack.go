package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
)

const (
	defaultPaystackBaseURL = "https://api.paystack.co"

	PaystackSignatureHeader = "x-paystack-signature"
	paystackChargeSuccess   = "charge.success"
)

// Paystack initializes transactions with the secret key as bearer token
// and verifies webhooks by HMAC-SHA512 over the raw body.
type Paystack struct {
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

func NewPaystack(cfg config.PaystackConfig) *Paystack {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultPaystackBaseURL
	}
	return &Paystack{
		SecretKey:  strings.TrimSpace(cfg.SecretKey),
		BaseURL:    base,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *Paystack) Name() string { return config.GatewayPaystack }

type paystackInitializeRequest struct {
	Email       string           `json:"email"`
	Amount      int64            `json:"amount"`
	Currency    string           `json:"currency,omitempty"`
	Reference   string           `json:"reference"`
	CallbackURL string           `json:"callback_url,omitempty"`
	Metadata    paystackMetadata `json:"metadata"`
}

type paystackMetadata struct {
	CancelAction  string `json:"cancel_action,omitempty"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	Description   string `json:"description,omitempty"`
	Kind          string `json:"kind"`
}

type paystackInitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initiate calls /transaction/initialize. The amount is already in
// pesewas, as Paystack expects. Paystack's callback_url is the browser
// return URL; webhooks are configured on the dashboard.
func (p *Paystack) Initiate(ctx context.Context, intent payments.PaymentIntent) (*payments.CheckoutSession, error) {
	if p.SecretKey == "" {
		return nil, fmt.Errorf("%w: PAYSTACK_SECRET_KEY is not set", payments.ErrConfiguration)
	}

	body, err := json.Marshal(paystackInitializeRequest{
		Email:       intent.Customer.Email,
		Amount:      intent.Amount,
		Currency:    intent.Currency,
		Reference:   intent.Reference,
		CallbackURL: intent.ReturnURL,
		Metadata: paystackMetadata{
			CancelAction:  intent.CancelURL,
			CustomerName:  intent.Customer.Name,
			CustomerPhone: intent.Customer.Phone,
			Description:   intent.Description,
			Kind:          string(intent.Kind),
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, &payments.GatewayError{Gateway: p.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out paystackInitializeResponse
	decodeErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Message
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return nil, &payments.GatewayError{Gateway: p.Name(), StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &payments.GatewayError{Gateway: p.Name(), StatusCode: resp.StatusCode, Message: "unreadable initialize response"}
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		msg := out.Message
		if msg == "" {
			msg = "transaction initialize was not successful"
		}
		return nil, &payments.GatewayError{Gateway: p.Name(), StatusCode: resp.StatusCode, Message: msg}
	}

	return &payments.CheckoutSession{
		URL:        out.Data.AuthorizationURL,
		URLField:   "authorization_url",
		ProviderID: out.Data.AccessCode,
	}, nil
}

func (p *Paystack) VerifyWebhook(header http.Header, body []byte) error {
	if p.SecretKey == "" {
		return fmt.Errorf("%w: PAYSTACK_SECRET_KEY is not set, cannot verify webhook", payments.ErrAuthentication)
	}
	if !VerifyPaystackSignature(body, header.Get(PaystackSignatureHeader), p.SecretKey) {
		return fmt.Errorf("%w: invalid %s", payments.ErrAuthentication, PaystackSignatureHeader)
	}
	return nil
}

type paystackWebhook struct {
	Event string `json:"event"`
	Data  struct {
		ID        json.Number `json:"id"`
		Reference string      `json:"reference"`
		Amount    json.Number `json:"amount"`
		Status    string      `json:"status"`
		Currency  string      `json:"currency"`
	} `json:"data"`
}

// ParseWebhook reads {event, data{reference, amount, id}}. Amounts arrive
// in pesewas and are converted back to cedis exactly.
func (p *Paystack) ParseWebhook(header http.Header, body []byte) (*payments.WebhookEvent, error) {
	var raw paystackWebhook
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", payments.ErrMalformedWebhook, err)
	}
	if raw.Event == "" {
		return nil, fmt.Errorf("%w: missing event", payments.ErrMalformedWebhook)
	}

	ev := &payments.WebhookEvent{
		Status:                raw.Event,
		Signature:             header.Get(PaystackSignatureHeader),
		Reference:             strings.TrimSpace(raw.Data.Reference),
		ProviderTransactionID: raw.Data.ID.String(),
		Success: raw.Event == paystackChargeSuccess &&
			(raw.Data.Status == "" || strings.EqualFold(raw.Data.Status, "success")),
	}
	if raw.Data.Amount != "" {
		minor, err := raw.Data.Amount.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: amount %q", payments.ErrMalformedWebhook, raw.Data.Amount)
		}
		ev.Amount = payments.FromMinorUnits(minor)
	}
	return ev, nil
}
