package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
	"github.com/shopspring/decimal"
)

// PaymentService is the SQL side of checkout and reconciliation. Reads
// back the checkout preconditions; writes are single conditional UPDATEs
// so a replayed confirmation affects zero rows.
//
// Placeholders are numbered in order of first use and timestamps are
// passed from Go, so the statements run unchanged on SQLite in tests.
type PaymentService struct {
	DB *database.Database
}

var (
	_ payments.CheckoutStore = (*PaymentService)(nil)
	_ payments.LedgerStore   = (*PaymentService)(nil)
)

func NewPaymentService(db *database.Database) *PaymentService {
	return &PaymentService{DB: db}
}

// --- Checkout reads ---

func (s *PaymentService) GetCustomer(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	var phone sql.NullString
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, email, full_name, phone, role
		FROM users
		WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Email, &u.FullName, &phone, &u.Role)
	if err != nil {
		return nil, notFound(err, "user")
	}
	u.Phone = phone.String
	return &u, nil
}

func (s *PaymentService) GetRentPayment(ctx context.Context, id string) (*models.RentPayment, error) {
	var rp models.RentPayment
	err := s.DB.QueryRowContext(ctx, `
		SELECT rp.id, rp.tenancy_id, rp.period, rp.tax_amount, rp.tenant_marked_paid,
		       rp.status, rp.created_at, t.tenancy_code, t.tenant_user_id
		FROM rent_payments rp
		JOIN tenancies t ON t.id = rp.tenancy_id
		WHERE rp.id = $1`,
		id,
	).Scan(&rp.ID, &rp.TenancyID, &rp.Period, &rp.TaxAmount, &rp.TenantMarkedPaid,
		&rp.Status, &rp.CreatedAt, &rp.TenancyCode, &rp.TenantUserID)
	if err != nil {
		return nil, notFound(err, "rent payment")
	}
	return &rp, nil
}

// GetTenancyArrears sums the unpaid rent payments created at or before asOf.
func (s *PaymentService) GetTenancyArrears(ctx context.Context, tenancyID string, asOf time.Time) (*models.TenancyArrears, error) {
	a := models.TenancyArrears{TenancyID: tenancyID}
	err := s.DB.QueryRowContext(ctx, `
		SELECT tenancy_code, tenant_user_id
		FROM tenancies
		WHERE id = $1`,
		tenancyID,
	).Scan(&a.TenancyCode, &a.TenantUserID)
	if err != nil {
		return nil, notFound(err, "tenancy")
	}

	var total decimal.NullDecimal
	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(tax_amount)
		FROM rent_payments
		WHERE tenancy_id = $1
		  AND tenant_marked_paid = false
		  AND created_at <= $2`,
		tenancyID, asOf,
	).Scan(&a.UnpaidCount, &total)
	if err != nil {
		return nil, err
	}
	if total.Valid {
		a.UnpaidTotal = total.Decimal
	}
	return &a, nil
}

func (s *PaymentService) GetRegistration(ctx context.Context, role, userID string) (*models.Registration, error) {
	table, err := registrationTable(role)
	if err != nil {
		return nil, err
	}

	r := models.Registration{UserID: userID, Role: role}
	var regDate, expiry sql.NullTime
	err = s.DB.QueryRowContext(ctx,
		`SELECT registration_fee_paid, registration_date, expiry_date FROM `+table+` WHERE user_id = $1`,
		userID,
	).Scan(&r.RegistrationFeePaid, &regDate, &expiry)
	if err != nil {
		return nil, notFound(err, role)
	}
	if regDate.Valid {
		r.RegistrationDate = &regDate.Time
	}
	if expiry.Valid {
		r.ExpiryDate = &expiry.Time
	}
	return &r, nil
}

func (s *PaymentService) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, complainant_user_id, status, created_at
		FROM complaints
		WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ComplainantUserID, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, notFound(err, "complaint")
	}
	return &c, nil
}

// --- Confirmation writes ---

func (s *PaymentService) ConfirmRentPayment(ctx context.Context, c payments.Confirmation) (bool, error) {
	return s.execApplied(ctx, `
		UPDATE rent_payments
		SET tenant_marked_paid = true,
		    status = $1,
		    paid_date = $2,
		    payment_method = $3,
		    amount_paid = $4,
		    receiver = $5
		WHERE id = $6 AND tenant_marked_paid = false`,
		models.RentStatusTenantPaid, c.ConfirmedAt, c.Provider, c.Amount,
		models.ReceiverRentControl, c.Reference.BusinessID,
	)
}

// ConfirmBulkRentPayment settles every unpaid row of the tenancy that
// existed when the checkout was opened. A reference without a nonce covers
// rows up to the confirmation time.
func (s *PaymentService) ConfirmBulkRentPayment(ctx context.Context, c payments.Confirmation) (bool, error) {
	cutoff, ok := c.Reference.NonceTime()
	if !ok {
		cutoff = c.ConfirmedAt
	}
	return s.execApplied(ctx, `
		UPDATE rent_payments
		SET tenant_marked_paid = true,
		    status = $1,
		    paid_date = $2,
		    payment_method = $3,
		    amount_paid = tax_amount,
		    receiver = $4
		WHERE tenancy_id = $5
		  AND tenant_marked_paid = false
		  AND created_at <= $6`,
		models.RentStatusTenantPaid, c.ConfirmedAt, c.Provider,
		models.ReceiverRentControl, c.Reference.BusinessID, cutoff,
	)
}

func (s *PaymentService) ConfirmTenantRegistration(ctx context.Context, c payments.Confirmation) (bool, error) {
	return s.confirmRegistration(ctx, "tenants", c)
}

func (s *PaymentService) ConfirmLandlordRegistration(ctx context.Context, c payments.Confirmation) (bool, error) {
	return s.confirmRegistration(ctx, "landlords", c)
}

// confirmRegistration renews an unpaid or expired registration for a year.
func (s *PaymentService) confirmRegistration(ctx context.Context, table string, c payments.Confirmation) (bool, error) {
	return s.execApplied(ctx, `
		UPDATE `+table+`
		SET registration_fee_paid = true,
		    registration_date = $1,
		    expiry_date = $2
		WHERE user_id = $3
		  AND (registration_fee_paid = false OR expiry_date IS NULL OR expiry_date < $1)`,
		c.ConfirmedAt, c.ConfirmedAt.Add(models.RegistrationValidity), c.Reference.BusinessID,
	)
}

func (s *PaymentService) ConfirmComplaintFee(ctx context.Context, c payments.Confirmation) (bool, error) {
	return s.execApplied(ctx, `
		UPDATE complaints
		SET status = $1
		WHERE id = $2 AND status = $3`,
		models.ComplaintStatusSubmitted, c.Reference.BusinessID, models.ComplaintStatusPendingPayment,
	)
}

func (s *PaymentService) ConfirmListingFee(ctx context.Context, c payments.Confirmation) (bool, error) {
	return s.execApplied(ctx, `
		UPDATE properties
		SET listed_on_marketplace = true,
		    listed_at = $1
		WHERE id = $2 AND listed_on_marketplace = false`,
		c.ConfirmedAt, c.Reference.BusinessID,
	)
}

func (s *PaymentService) ConfirmViewingFee(ctx context.Context, c payments.Confirmation) (bool, error) {
	return s.execApplied(ctx, `
		UPDATE viewing_requests
		SET status = $1
		WHERE id = $2 AND status = $3`,
		models.ViewingStatusPending, c.Reference.BusinessID, models.ViewingStatusPendingPayment,
	)
}

// execApplied runs a conditional write. Zero rows affected means the record
// was already in its post-state or does not exist; both are a no-op.
func (s *PaymentService) execApplied(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func registrationTable(role string) (string, error) {
	switch role {
	case models.RoleTenant:
		return "tenants", nil
	case models.RoleLandlord:
		return "landlords", nil
	default:
		return "", fmt.Errorf("no registration table for role %q", role)
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, payments.ErrNotFound)
	}
	return err
}
