// Package gateway holds the provider adapters behind payments.Gateway.
package gateway

import (
	"fmt"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
)

// All returns every adapter. Webhooks are accepted from all of them even
// though only one is used for new checkouts.
func All(cfg *config.Config) []payments.Gateway {
	return []payments.Gateway{
		NewHubtel(cfg.Hubtel),
		NewPaystack(cfg.Paystack),
	}
}

// Active returns the adapter named by PAYMENT_GATEWAY.
func Active(cfg *config.Config, all []payments.Gateway) (payments.Gateway, error) {
	for _, g := range all {
		if g.Name() == cfg.Payments.Gateway {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown payment gateway %q", payments.ErrConfiguration, cfg.Payments.Gateway)
}
