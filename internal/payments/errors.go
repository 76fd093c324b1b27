package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication covers a missing caller identity and a webhook whose
	// signature does not verify.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization means the caller does not own the referenced record.
	ErrAuthorization = errors.New("not authorized for this record")
	// ErrPreconditionFailed means the record is already paid or not in the
	// state a payment can start from.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrConfiguration means the gateway is missing credentials or URLs.
	ErrConfiguration = errors.New("payment gateway is not configured")

	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidAmount  = errors.New("invalid amount")

	// ErrMalformedWebhook is returned for webhook bodies that cannot be
	// parsed into an event. Callers acknowledge these.
	ErrMalformedWebhook = errors.New("malformed webhook payload")
	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// GatewayError is a non-success answer from a gateway's initiate call.
type GatewayError struct {
	Gateway    string
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Gateway, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Gateway, e.Message)
}
