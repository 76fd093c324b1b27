package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status values written by the reconciliation engine.
const (
	RentStatusPending    = "pending"
	RentStatusTenantPaid = "tenant_paid"

	ComplaintStatusPendingPayment = "pending_payment"
	ComplaintStatusSubmitted      = "submitted"

	ViewingStatusPendingPayment = "pending_payment"
	ViewingStatusPending        = "pending" // awaiting landlord response

	ReceiverRentControl = "rent_control"
)

// Registration roles, one table each.
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)

// RegistrationValidity is how long a paid registration stays current.
const RegistrationValidity = 365 * 24 * time.Hour

// RentPayment is one month of rent tax owed on a tenancy.
type RentPayment struct {
	ID               string              `json:"id"`
	TenancyID        string              `json:"tenancy_id"`
	Period           time.Time           `json:"period"`
	TaxAmount        decimal.Decimal     `json:"tax_amount"`
	TenantMarkedPaid bool                `json:"tenant_marked_paid"`
	Status           string              `json:"status"`
	PaidDate         *time.Time          `json:"paid_date"`
	PaymentMethod    *string             `json:"payment_method"`
	AmountPaid       decimal.NullDecimal `json:"amount_paid"`
	Receiver         *string             `json:"receiver"`
	CreatedAt        time.Time           `json:"created_at"`

	// joined from tenancies
	TenancyCode  string `json:"tenancy_code"`
	TenantUserID string `json:"tenant_user_id"`
}

type Tenancy struct {
	ID             string    `json:"id"`
	TenancyCode    string    `json:"tenancy_code"`
	TenantUserID   string    `json:"tenant_user_id"`
	LandlordUserID string    `json:"landlord_user_id"`
	PropertyID     string    `json:"property_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// TenancyArrears summarises the unpaid rent payments of a tenancy, used to
// price a bulk advance payment.
type TenancyArrears struct {
	TenancyID    string
	TenancyCode  string
	TenantUserID string
	UnpaidCount  int
	UnpaidTotal  decimal.Decimal
}

// Registration is the annual ID registration of a tenant or landlord.
type Registration struct {
	UserID              string     `json:"user_id"`
	Role                string     `json:"role"`
	RegistrationFeePaid bool       `json:"registration_fee_paid"`
	RegistrationDate    *time.Time `json:"registration_date"`
	ExpiryDate          *time.Time `json:"expiry_date"`
}

// Current reports whether the registration fee is paid and not expired.
func (r *Registration) Current(now time.Time) bool {
	if !r.RegistrationFeePaid {
		return false
	}
	return r.ExpiryDate == nil || !r.ExpiryDate.Before(now)
}

type Complaint struct {
	ID                string    `json:"id"`
	ComplainantUserID string    `json:"complainant_user_id"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

type Property struct {
	ID                  string     `json:"id"`
	OwnerUserID         string     `json:"owner_user_id"`
	ListedOnMarketplace bool       `json:"listed_on_marketplace"`
	ListedAt            *time.Time `json:"listed_at"`
}

type ViewingRequest struct {
	ID              string `json:"id"`
	PropertyID      string `json:"property_id"`
	RequesterUserID string `json:"requester_user_id"`
	Status          string `json:"status"`
}
