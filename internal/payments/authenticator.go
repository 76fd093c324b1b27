package payments

import (
	"fmt"
	"net/http"
)

// Authenticator moves a received webhook to Authenticated or Rejected.
// Verification always runs on the raw bytes, before any parsing.
type Authenticator struct {
	gateways map[string]Gateway
}

func NewAuthenticator(gateways ...Gateway) *Authenticator {
	a := &Authenticator{gateways: make(map[string]Gateway, len(gateways))}
	for _, g := range gateways {
		a.gateways[g.Name()] = g
	}
	return a
}

// Authenticate returns the parsed event, an error wrapping
// ErrAuthentication when the body is not authentic, or an error wrapping
// ErrMalformedWebhook when it is authentic but unusable.
func (a *Authenticator) Authenticate(provider string, header http.Header, body []byte) (*WebhookEvent, error) {
	gw, ok := a.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrAuthentication, provider)
	}
	if err := gw.VerifyWebhook(header, body); err != nil {
		return nil, err
	}
	ev, err := gw.ParseWebhook(header, body)
	if err != nil {
		return nil, err
	}
	ev.Provider = gw.Name()
	ev.RawBody = body
	return ev, nil
}
