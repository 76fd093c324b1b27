package payments

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	a := NewAuthenticator(&recordingGateway{})
	signed := http.Header{"X-Test-Signature": []string{"ok"}}

	ev, err := a.Authenticate("paystack", signed, []byte("rent_P"))
	require.NoError(t, err)
	assert.Equal(t, "paystack", ev.Provider)
	assert.Equal(t, []byte("rent_P"), ev.RawBody)
	assert.Equal(t, "rent_P", ev.Reference)

	_, err = a.Authenticate("paystack", http.Header{}, []byte("rent_P"))
	assert.ErrorIs(t, err, ErrAuthentication)

	// Verification runs before parsing: an unsigned unparseable body is
	// an authentication failure, not a malformed one.
	_, err = a.Authenticate("paystack", http.Header{}, nil)
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = a.Authenticate("paystack", signed, nil)
	assert.ErrorIs(t, err, ErrMalformedWebhook)

	_, err = a.Authenticate("stripe", signed, []byte("rent_P"))
	assert.ErrorIs(t, err, ErrAuthentication)
}
