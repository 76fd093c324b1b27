package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutRequest is a caller asking to pay for one business record.
type CheckoutRequest struct {
	CallerID   string
	Kind       TransactionKind
	BusinessID string
}

type CheckoutResult struct {
	URL       string
	URLField  string
	Reference string
	Gateway   string
}

// plan is what a kind-specific planner decides before any gateway call.
type plan struct {
	businessID  string
	amount      decimal.Decimal
	description string
}

type planFunc func(ctx context.Context, req CheckoutRequest, now time.Time) (*plan, error)

// Initiator validates checkout requests and opens a session on the active
// gateway.
type Initiator struct {
	store    CheckoutStore
	gateway  Gateway
	cfg      config.PaymentsConfig
	log      *zap.Logger
	now      func() time.Time
	planners map[TransactionKind]planFunc
}

// NewInitiator returns an Initiator. gw may be nil, in which case every
// checkout fails with ErrConfiguration.
func NewInitiator(store CheckoutStore, gw Gateway, cfg config.PaymentsConfig, log *zap.Logger) *Initiator {
	in := &Initiator{
		store:   store,
		gateway: gw,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
	in.planners = map[TransactionKind]planFunc{
		KindRentTax:              in.planRentTax,
		KindBulkRentTax:          in.planBulkRentTax,
		KindTenantRegistration:   in.registrationPlanner(models.RoleTenant, "Tenant", cfg.Fees.TenantRegistration),
		KindLandlordRegistration: in.registrationPlanner(models.RoleLandlord, "Landlord", cfg.Fees.LandlordRegistration),
		KindComplaintFee:         in.planComplaintFee,
		KindListingFee:           in.fixedFeePlanner("Marketplace Listing Fee", cfg.Fees.Listing),
		KindViewingFee:           in.fixedFeePlanner("Viewing Request Fee", cfg.Fees.Viewing),
	}
	for _, k := range AllKinds {
		if in.planners[k] == nil {
			panic(fmt.Sprintf("payments: no checkout planner for %s", k))
		}
	}
	return in
}

// Checkout validates req and, only if every precondition holds, calls the
// gateway.
func (in *Initiator) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.CallerID == "" {
		return nil, fmt.Errorf("%w: no caller", ErrAuthentication)
	}
	planner, ok := in.planners[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown payment type %q", ErrInvalidRequest, req.Kind)
	}
	if req.BusinessID != "" && !ValidBusinessID(req.BusinessID) {
		return nil, fmt.Errorf("%w: malformed record id %q", ErrInvalidRequest, req.BusinessID)
	}
	if in.gateway == nil {
		return nil, fmt.Errorf("%w: no active gateway", ErrConfiguration)
	}
	if in.cfg.CallbackBaseURL == "" {
		return nil, fmt.Errorf("%w: PAYMENT_CALLBACK_BASE_URL is not set", ErrConfiguration)
	}

	// Millisecond precision so the bulk cutoff survives the reference nonce.
	now := in.now().UTC().Truncate(time.Millisecond)
	p, err := planner(ctx, req, now)
	if err != nil {
		return nil, err
	}

	amount, err := ToMinorUnits(p.amount)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, fmt.Errorf("%w: nothing to pay for %s", ErrPreconditionFailed, req.Kind)
	}

	customer, err := in.store.GetCustomer(ctx, req.CallerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown caller", ErrAuthentication)
		}
		return nil, err
	}

	reference := EncodeReference(req.Kind, p.businessID, now)
	intent := PaymentIntent{
		Kind:        req.Kind,
		Amount:      amount,
		Currency:    in.cfg.Currency,
		Description: p.description,
		Reference:   reference,
		CallbackURL: in.cfg.CallbackBaseURL + "/api/v1/payments/webhooks/" + in.gateway.Name(),
		ReturnURL:   withReference(in.cfg.ReturnURL, reference),
		CancelURL:   withReference(in.cfg.CancelURL, reference),
		Customer: Customer{
			Name:  customer.FullName,
			Phone: customer.Phone,
			Email: customer.Email,
		},
	}

	session, err := in.gateway.Initiate(ctx, intent)
	if err != nil {
		in.log.Warn("checkout initiation failed",
			zap.String("gateway", in.gateway.Name()),
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, err
	}

	in.log.Info("checkout initiated",
		zap.String("gateway", in.gateway.Name()),
		zap.String("kind", string(req.Kind)),
		zap.String("reference", reference),
		zap.Int64("amount_minor", amount),
	)

	return &CheckoutResult{
		URL:       session.URL,
		URLField:  session.URLField,
		Reference: reference,
		Gateway:   in.gateway.Name(),
	}, nil
}

func (in *Initiator) planRentTax(ctx context.Context, req CheckoutRequest, _ time.Time) (*plan, error) {
	if req.BusinessID == "" {
		return nil, fmt.Errorf("%w: rent payment id is required", ErrInvalidRequest)
	}
	rp, err := in.store.GetRentPayment(ctx, req.BusinessID)
	if err != nil {
		return nil, ownershipErr(err)
	}
	if rp.TenantUserID != req.CallerID {
		return nil, ErrAuthorization
	}
	if rp.TenantMarkedPaid {
		return nil, fmt.Errorf("%w: rent tax for %s is already paid", ErrPreconditionFailed, rp.Period.Format("January 2006"))
	}
	return &plan{
		businessID:  rp.ID,
		amount:      rp.TaxAmount,
		description: fmt.Sprintf("Rent tax for %s – %s", rp.Period.Format("January 2006"), rp.TenancyCode),
	}, nil
}

func (in *Initiator) planBulkRentTax(ctx context.Context, req CheckoutRequest, now time.Time) (*plan, error) {
	if req.BusinessID == "" {
		return nil, fmt.Errorf("%w: tenancy id is required", ErrInvalidRequest)
	}
	arrears, err := in.store.GetTenancyArrears(ctx, req.BusinessID, now)
	if err != nil {
		return nil, ownershipErr(err)
	}
	if arrears.TenantUserID != req.CallerID {
		return nil, ErrAuthorization
	}
	if arrears.UnpaidCount == 0 {
		return nil, fmt.Errorf("%w: no unpaid rent tax on this tenancy", ErrPreconditionFailed)
	}
	return &plan{
		businessID:  arrears.TenancyID,
		amount:      arrears.UnpaidTotal,
		description: fmt.Sprintf("Advance rent tax (%d months) – %s", arrears.UnpaidCount, arrears.TenancyCode),
	}, nil
}

func (in *Initiator) registrationPlanner(role, label string, fee decimal.Decimal) planFunc {
	return func(ctx context.Context, req CheckoutRequest, now time.Time) (*plan, error) {
		// Registrations are always paid by and for the caller.
		if req.BusinessID != "" && req.BusinessID != req.CallerID {
			return nil, ErrAuthorization
		}
		reg, err := in.store.GetRegistration(ctx, role, req.CallerID)
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s profile for this account", ErrPreconditionFailed, role)
		}
		if err != nil {
			return nil, err
		}
		if reg.Current(now) {
			return nil, fmt.Errorf("%w: %s registration fee already paid", ErrPreconditionFailed, role)
		}
		return &plan{
			businessID:  req.CallerID,
			amount:      fee,
			description: label + " ID Registration – Annual Fee",
		}, nil
	}
}

func (in *Initiator) planComplaintFee(ctx context.Context, req CheckoutRequest, _ time.Time) (*plan, error) {
	if req.BusinessID == "" {
		return nil, fmt.Errorf("%w: complaint id is required", ErrInvalidRequest)
	}
	complaint, err := in.store.GetComplaint(ctx, req.BusinessID)
	if err != nil {
		return nil, ownershipErr(err)
	}
	if complaint.ComplainantUserID != req.CallerID {
		return nil, ErrAuthorization
	}
	if complaint.Status != models.ComplaintStatusPendingPayment {
		return nil, fmt.Errorf("%w: complaint is %s", ErrPreconditionFailed, complaint.Status)
	}
	return &plan{
		businessID:  complaint.ID,
		amount:      in.cfg.Fees.Complaint,
		description: "Complaint Filing Fee",
	}, nil
}

func (in *Initiator) fixedFeePlanner(description string, fee decimal.Decimal) planFunc {
	return func(_ context.Context, req CheckoutRequest, _ time.Time) (*plan, error) {
		if req.BusinessID == "" {
			return nil, fmt.Errorf("%w: id is required", ErrInvalidRequest)
		}
		return &plan{businessID: req.BusinessID, amount: fee, description: description}, nil
	}
}

// ownershipErr hides whether a record the caller cannot see exists.
func ownershipErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrAuthorization
	}
	return err
}

func withReference(raw, reference string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("reference", reference)
	u.RawQuery = q.Encode()
	return u.String()
}
