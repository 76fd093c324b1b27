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
	"github.com/shopspring/decimal"
)

const (
	defaultHubtelBaseURL = "https://payproxyapi.hubtel.com"

	hubtelSuccessCode = "0000"
)

// Hubtel initiates online checkouts with basic auth. Its callbacks carry no
// signature: the engine trusts the delivery structurally and only checks
// that the body is a well-formed payment notification.
type Hubtel struct {
	ClientID        string
	ClientSecret    string
	MerchantAccount string
	BaseURL         string
	HTTPClient      *http.Client
}

func NewHubtel(cfg config.HubtelConfig) *Hubtel {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultHubtelBaseURL
	}
	return &Hubtel{
		ClientID:        strings.TrimSpace(cfg.ClientID),
		ClientSecret:    strings.TrimSpace(cfg.ClientSecret),
		MerchantAccount: strings.TrimSpace(cfg.MerchantAccount),
		BaseURL:         base,
		HTTPClient:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *Hubtel) Name() string { return config.GatewayHubtel }

type hubtelInitiateRequest struct {
	TotalAmount           json.Number `json:"totalAmount"`
	Description           string      `json:"description"`
	CallbackURL           string      `json:"callbackUrl"`
	ReturnURL             string      `json:"returnUrl"`
	CancellationURL       string      `json:"cancellationUrl"`
	MerchantAccountNumber string      `json:"merchantAccountNumber"`
	ClientReference       string      `json:"clientReference"`
	PayeeName             string      `json:"payeeName,omitempty"`
	PayeeMobileNumber     string      `json:"payeeMobileNumber,omitempty"`
	PayeeEmail            string      `json:"payeeEmail,omitempty"`
}

type hubtelInitiateResponse struct {
	ResponseCode string `json:"responseCode"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	Data         struct {
		CheckoutURL       string `json:"checkoutUrl"`
		CheckoutID        string `json:"checkoutId"`
		ClientReference   string `json:"clientReference"`
		CheckoutDirectURL string `json:"checkoutDirectUrl"`
	} `json:"data"`
}

// Initiate posts to /items/initiate. Hubtel prices in cedis, so the
// pesewa amount is rendered as an exact two-place decimal.
func (h *Hubtel) Initiate(ctx context.Context, intent payments.PaymentIntent) (*payments.CheckoutSession, error) {
	if h.ClientID == "" || h.ClientSecret == "" || h.MerchantAccount == "" {
		return nil, fmt.Errorf("%w: HUBTEL_CLIENT_ID/HUBTEL_CLIENT_SECRET/HUBTEL_MERCHANT_ACCOUNT are not set", payments.ErrConfiguration)
	}

	body, err := json.Marshal(hubtelInitiateRequest{
		TotalAmount:           json.Number(intent.MajorAmount().StringFixed(2)),
		Description:           intent.Description,
		CallbackURL:           intent.CallbackURL,
		ReturnURL:             intent.ReturnURL,
		CancellationURL:       intent.CancelURL,
		MerchantAccountNumber: h.MerchantAccount,
		ClientReference:       intent.Reference,
		PayeeName:             intent.Customer.Name,
		PayeeMobileNumber:     intent.Customer.Phone,
		PayeeEmail:            intent.Customer.Email,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/items/initiate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(h.ClientID, h.ClientSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		return nil, &payments.GatewayError{Gateway: h.Name(), Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var out hubtelInitiateResponse
	decodeErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Message
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return nil, &payments.GatewayError{Gateway: h.Name(), StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &payments.GatewayError{Gateway: h.Name(), StatusCode: resp.StatusCode, Message: "unreadable initiate response"}
	}
	if out.ResponseCode != hubtelSuccessCode || out.Data.CheckoutURL == "" {
		msg := out.Message
		if msg == "" {
			msg = fmt.Sprintf("initiate returned response code %q", out.ResponseCode)
		}
		return nil, &payments.GatewayError{Gateway: h.Name(), StatusCode: resp.StatusCode, Message: msg}
	}

	return &payments.CheckoutSession{
		URL:        out.Data.CheckoutURL,
		URLField:   "checkoutUrl",
		ProviderID: out.Data.CheckoutID,
	}, nil
}

// VerifyWebhook accepts every delivery. Hubtel callbacks are unsigned, so
// trust rests on the provider's dispatch infrastructure and on the
// reference having been issued by us.
func (h *Hubtel) VerifyWebhook(http.Header, []byte) error {
	return nil
}

// ParseWebhook reads a callback whose fields may sit at the top level or
// under "Data". See hubtelFields for the lookup order.
func (h *Hubtel) ParseWebhook(_ http.Header, body []byte) (*payments.WebhookEvent, error) {
	fields, err := parseHubtelFields(body)
	if err != nil {
		return nil, err
	}

	ev := &payments.WebhookEvent{
		Reference:             fields.str("ClientReference"),
		ProviderTransactionID: fields.str("TransactionId", "CheckoutId", "SalesInvoiceId"),
	}
	if ev.Reference == "" {
		return nil, fmt.Errorf("%w: missing ClientReference", payments.ErrMalformedWebhook)
	}

	if status := fields.str("Status"); status != "" {
		ev.Status = status
		ev.Success = isHubtelSuccessStatus(status)
	} else {
		ev.Status = fields.str("ResponseCode")
		ev.Success = ev.Status == hubtelSuccessCode
	}

	if amount := fields.str("Amount"); amount != "" {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: amount %q", payments.ErrMalformedWebhook, amount)
		}
		ev.Amount = d
	}
	return ev, nil
}

func isHubtelSuccessStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "successful", "paid":
		return true
	default:
		return false
	}
}

// hubtelFields resolves a field by trying each name in order, and for each
// name the top level before the nested "Data" object.
type hubtelFields struct {
	top    map[string]json.RawMessage
	nested map[string]json.RawMessage
}

func parseHubtelFields(body []byte) (*hubtelFields, error) {
	f := &hubtelFields{}
	if err := json.Unmarshal(body, &f.top); err != nil {
		return nil, fmt.Errorf("%w: %v", payments.ErrMalformedWebhook, err)
	}
	if data, ok := f.top["Data"]; ok && len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &f.nested); err != nil {
			return nil, fmt.Errorf("%w: Data: %v", payments.ErrMalformedWebhook, err)
		}
	}
	return f, nil
}

func (f *hubtelFields) str(names ...string) string {
	for _, name := range names {
		if v := scalar(f.top[name]); v != "" {
			return v
		}
		if v := scalar(f.nested[name]); v != "" {
			return v
		}
	}
	return ""
}

// scalar renders a JSON string or number as text; anything else is empty.
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	default:
		return ""
	}
}
