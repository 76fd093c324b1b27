package gateway

import (
	"testing"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActive(t *testing.T) {
	cfg := &config.Config{}
	all := All(cfg)
	require.Len(t, all, 2)

	cfg.Payments.Gateway = config.GatewayHubtel
	gw, err := Active(cfg, all)
	require.NoError(t, err)
	assert.Equal(t, "hubtel", gw.Name())

	cfg.Payments.Gateway = config.GatewayPaystack
	gw, err = Active(cfg, all)
	require.NoError(t, err)
	assert.Equal(t, "paystack", gw.Name())

	cfg.Payments.Gateway = "momo"
	_, err = Active(cfg, all)
	assert.ErrorIs(t, err, payments.ErrConfiguration)
}

func TestSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := SignPaystackPayload(body, "secret")
	assert.Len(t, sig, 128)
	assert.True(t, VerifyPaystackSignature(body, sig, "secret"))
	assert.True(t, VerifyPaystackSignature(body, " "+sig+" ", "secret"))
	assert.False(t, VerifyPaystackSignature(body, sig, "other"))
	assert.False(t, VerifyPaystackSignature(body, "", "secret"))
	assert.False(t, VerifyPaystackSignature(body, sig[:64], "secret"))
}
