package payments

import (
	"context"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
	"github.com/shopspring/decimal"
)

// Confirmation carries what a successful payment event establishes.
type Confirmation struct {
	Reference             Reference
	Provider              string
	ProviderTransactionID string
	Amount                decimal.Decimal
	ConfirmedAt           time.Time
}

// CheckoutStore reads the records checkout validates against. Missing
// records are reported as ErrNotFound.
type CheckoutStore interface {
	GetCustomer(ctx context.Context, userID string) (*models.User, error)
	GetRentPayment(ctx context.Context, id string) (*models.RentPayment, error)
	GetTenancyArrears(ctx context.Context, tenancyID string, asOf time.Time) (*models.TenancyArrears, error)
	GetRegistration(ctx context.Context, role, userID string) (*models.Registration, error)
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
}

// LedgerStore applies confirmations. Each method is a single conditional
// write guarded by the record's pre-state; it reports applied=false with a
// nil error when the record was already confirmed or does not match.
type LedgerStore interface {
	ConfirmRentPayment(ctx context.Context, c Confirmation) (bool, error)
	ConfirmBulkRentPayment(ctx context.Context, c Confirmation) (bool, error)
	ConfirmTenantRegistration(ctx context.Context, c Confirmation) (bool, error)
	ConfirmLandlordRegistration(ctx context.Context, c Confirmation) (bool, error)
	ConfirmComplaintFee(ctx context.Context, c Confirmation) (bool, error)
	ConfirmListingFee(ctx context.Context, c Confirmation) (bool, error)
	ConfirmViewingFee(ctx context.Context, c Confirmation) (bool, error)
}
