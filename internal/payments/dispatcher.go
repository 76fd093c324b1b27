package payments

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Outcome is the result of reconciling one webhook event. Every outcome is
// acknowledged to the gateway.
type Outcome string

const (
	OutcomeApplied        Outcome = "applied"
	OutcomeAlreadyApplied Outcome = "already_applied"
	OutcomeIgnored        Outcome = "ignored"
	OutcomeUnrecognized   Outcome = "unrecognized_reference"
	OutcomeStorageFailed  Outcome = "storage_failed"
)

type applyFunc func(ctx context.Context, c Confirmation) (bool, error)

// Dispatcher routes authenticated payment events to the update for their
// transaction kind.
type Dispatcher struct {
	routes  map[TransactionKind]applyFunc
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewDispatcher builds the dispatch table. It panics if a kind has no
// route, so a kind added without an update fails at start-up.
func NewDispatcher(store LedgerStore, log *zap.Logger, timeout time.Duration) *Dispatcher {
	d := &Dispatcher{
		routes: map[TransactionKind]applyFunc{
			KindRentTax:              store.ConfirmRentPayment,
			KindBulkRentTax:          store.ConfirmBulkRentPayment,
			KindTenantRegistration:   store.ConfirmTenantRegistration,
			KindLandlordRegistration: store.ConfirmLandlordRegistration,
			KindComplaintFee:         store.ConfirmComplaintFee,
			KindListingFee:           store.ConfirmListingFee,
			KindViewingFee:           store.ConfirmViewingFee,
		},
		log:     log,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, k := range AllKinds {
		if d.routes[k] == nil {
			panic(fmt.Sprintf("payments: no reconciliation route for %s", k))
		}
	}
	return d
}

// Reconcile applies ev at most once. Failures are logged, never returned:
// the gateway must always be acknowledged.
func (d *Dispatcher) Reconcile(ctx context.Context, ev *WebhookEvent) Outcome {
	log := d.log.With(
		zap.String("provider", ev.Provider),
		zap.String("reference", ev.Reference),
		zap.String("provider_txn_id", ev.ProviderTransactionID),
	)

	if !ev.Success {
		log.Info("ignoring non-success payment event", zap.String("status", ev.Status))
		return OutcomeIgnored
	}

	// A prefix followed by something that is not a record id can never
	// match a row.
	ref, ok := DecodeReference(ev.Reference)
	if !ok || !ValidBusinessID(ref.BusinessID) {
		log.Warn("unrecognized reference")
		return OutcomeUnrecognized
	}

	log = log.With(zap.String("kind", string(ref.Kind)), zap.String("business_id", ref.BusinessID))

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	applied, err := d.routes[ref.Kind](ctx, Confirmation{
		Reference:             ref,
		Provider:              ev.Provider,
		ProviderTransactionID: ev.ProviderTransactionID,
		Amount:                ev.Amount,
		ConfirmedAt:           d.now(),
	})
	if err != nil {
		log.Error("reconciliation write failed, event acknowledged without effect",
			zap.String("amount", ev.Amount.String()),
			zap.ByteString("raw_event", ev.RawBody),
			zap.Error(err),
		)
		return OutcomeStorageFailed
	}
	if !applied {
		log.Info("payment already reconciled")
		return OutcomeAlreadyApplied
	}

	log.Info("payment reconciled", zap.String("amount", ev.Amount.String()))
	return OutcomeApplied
}
