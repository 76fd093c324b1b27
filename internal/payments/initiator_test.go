package payments

import (
	"context"
	"testing"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, time.March, 10, 9, 15, 30, 123_456_789, time.UTC)

const (
	tenantOne   = "6b0f3c1e-2d4a-4c6e-9a10-1f2e3d4c5b6a"
	tenantTwo   = "7c1a4d2f-3e5b-4d7f-8b21-2a3f4e5d6c7b"
	rentID      = "0d3e5f70-8192-4a3b-9c4d-5e6f7a8b9c0d"
	paidRentID  = "1e4f6071-9203-4b4c-8d5e-6f7a8b9c0d1e"
	tenancyID   = "2f507182-a314-4c5d-9e6f-7a8b9c0d1e2f"
	complaintID = "30618293-b425-4d6e-8f70-8b9c0d1e2f30"
	viewingID   = "417293a4-c536-4e7f-9081-9c0d1e2f3041"
	listingID   = "5283a4b5-d647-4f80-a192-0d1e2f304152"
	missingID   = "63940000-0000-4000-8000-000000000000"
)

func testPaymentsConfig() config.PaymentsConfig {
	return config.PaymentsConfig{
		Gateway:         "paystack",
		Currency:        "GHS",
		CallbackBaseURL: "https://api.rentfair.example",
		ReturnURL:       "https://app.rentfair.example/payments/done",
		CancelURL:       "https://app.rentfair.example/payments/cancelled?from=checkout",
		WebhookTimeout:  5 * time.Second,
		Fees: config.FeeSchedule{
			TenantRegistration:   decimal.RequireFromString("50"),
			LandlordRegistration: decimal.RequireFromString("100"),
			Complaint:            decimal.RequireFromString("20"),
			Listing:              decimal.RequireFromString("30"),
			Viewing:              decimal.RequireFromString("2.00"),
		},
	}
}

type initiatorFixture struct {
	store *memoryCheckoutStore
	gw    *recordingGateway
	in    *Initiator
}

func newInitiatorFixture(t *testing.T) *initiatorFixture {
	t.Helper()
	store := newMemoryCheckoutStore()
	store.users[tenantOne] = &models.User{ID: tenantOne, Email: "ama@example.com", FullName: "Ama Mensah", Phone: "0244000000"}
	store.users[tenantTwo] = &models.User{ID: tenantTwo, Email: "kofi@example.com"}
	store.rentPayments[rentID] = &models.RentPayment{
		ID: rentID, TenancyID: tenancyID, TenancyCode: "TN-0001", TenantUserID: tenantOne,
		Period: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), TaxAmount: decimal.RequireFromString("50"),
	}
	store.rentPayments[paidRentID] = &models.RentPayment{
		ID: paidRentID, TenancyID: tenancyID, TenancyCode: "TN-0001", TenantUserID: tenantOne,
		Period: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), TaxAmount: decimal.RequireFromString("50"),
		TenantMarkedPaid: true,
	}

	gw := &recordingGateway{}
	in := NewInitiator(store, gw, testPaymentsConfig(), zap.NewNop())
	in.now = func() time.Time { return testNow }
	return &initiatorFixture{store: store, gw: gw, in: in}
}

func TestCheckout_RentTax(t *testing.T) {
	f := newInitiatorFixture(t)

	res, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindRentTax, BusinessID: rentID})
	require.NoError(t, err)
	assert.Equal(t, "rent_"+rentID, res.Reference)
	assert.Equal(t, "paystack", res.Gateway)
	assert.Equal(t, "authorization_url", res.URLField)
	assert.Equal(t, "https://checkout.example/rent_"+rentID, res.URL)

	require.Len(t, f.gw.intents, 1)
	intent := f.gw.intents[0]
	assert.Equal(t, int64(5000), intent.Amount)
	assert.Equal(t, "GHS", intent.Currency)
	assert.Equal(t, "Rent tax for January 2026 – TN-0001", intent.Description)
	assert.Equal(t, "https://api.rentfair.example/api/v1/payments/webhooks/paystack", intent.CallbackURL)
	assert.Equal(t, "https://app.rentfair.example/payments/done?reference=rent_"+rentID, intent.ReturnURL)
	assert.Equal(t, "https://app.rentfair.example/payments/cancelled?from=checkout&reference=rent_"+rentID, intent.CancelURL)
	assert.Equal(t, Customer{Name: "Ama Mensah", Phone: "0244000000", Email: "ama@example.com"}, intent.Customer)
}

func TestCheckout_AlreadyPaidMakesNoGatewayCall(t *testing.T) {
	f := newInitiatorFixture(t)

	_, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindRentTax, BusinessID: paidRentID})
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Empty(t, f.gw.intents)
}

func TestCheckout_NotOwner(t *testing.T) {
	f := newInitiatorFixture(t)
	f.store.complaints[complaintID] = &models.Complaint{ID: complaintID, ComplainantUserID: tenantOne, Status: models.ComplaintStatusPendingPayment}
	f.store.arrears[tenancyID] = &models.TenancyArrears{TenancyID: tenancyID, TenantUserID: tenantOne, UnpaidCount: 1, UnpaidTotal: decimal.RequireFromString("50")}

	for _, req := range []CheckoutRequest{
		{CallerID: tenantTwo, Kind: KindRentTax, BusinessID: rentID},
		{CallerID: tenantTwo, Kind: KindRentTax, BusinessID: missingID},
		{CallerID: tenantTwo, Kind: KindBulkRentTax, BusinessID: tenancyID},
		{CallerID: tenantTwo, Kind: KindComplaintFee, BusinessID: complaintID},
		{CallerID: tenantTwo, Kind: KindTenantRegistration, BusinessID: tenantOne},
	} {
		_, err := f.in.Checkout(context.Background(), req)
		assert.ErrorIs(t, err, ErrAuthorization, "%+v", req)
	}
	assert.Empty(t, f.gw.intents)
}

func TestCheckout_BulkRentTax(t *testing.T) {
	f := newInitiatorFixture(t)
	f.store.arrears[tenancyID] = &models.TenancyArrears{
		TenancyID: tenancyID, TenancyCode: "TN-0001", TenantUserID: tenantOne,
		UnpaidCount: 3, UnpaidTotal: decimal.RequireFromString("150.75"),
	}

	res, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindBulkRentTax, BusinessID: tenancyID})
	require.NoError(t, err)
	require.Len(t, f.gw.intents, 1)
	assert.Equal(t, int64(15075), f.gw.intents[0].Amount)
	assert.Equal(t, "Advance rent tax (3 months) – TN-0001", f.gw.intents[0].Description)

	ref, ok := DecodeReference(res.Reference)
	require.True(t, ok)
	assert.Equal(t, KindBulkRentTax, ref.Kind)
	at, ok := ref.NonceTime()
	require.True(t, ok)
	assert.True(t, testNow.Truncate(time.Millisecond).Equal(at))

	f.store.arrears[tenancyID].UnpaidCount = 0
	f.store.arrears[tenancyID].UnpaidTotal = decimal.Zero
	_, err = f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindBulkRentTax, BusinessID: tenancyID})
	assert.ErrorIs(t, err, ErrPreconditionFailed)
	assert.Len(t, f.gw.intents, 1)
}

func TestCheckout_Registration(t *testing.T) {
	f := newInitiatorFixture(t)
	expired := testNow.Add(-time.Hour)
	current := testNow.Add(time.Hour)

	_, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindTenantRegistration})
	assert.ErrorIs(t, err, ErrPreconditionFailed, "no tenant profile")

	f.store.registrations["tenant:"+tenantOne] = &models.Registration{UserID: tenantOne, Role: models.RoleTenant, RegistrationFeePaid: true, ExpiryDate: &current}
	_, err = f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindTenantRegistration})
	assert.ErrorIs(t, err, ErrPreconditionFailed, "already current")
	assert.Empty(t, f.gw.intents)

	f.store.registrations["tenant:"+tenantOne].ExpiryDate = &expired
	res, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindTenantRegistration})
	require.NoError(t, err)
	assert.Equal(t, EncodeReference(KindTenantRegistration, tenantOne, testNow), res.Reference)
	require.Len(t, f.gw.intents, 1)
	assert.Equal(t, int64(5000), f.gw.intents[0].Amount)
	assert.Equal(t, "Tenant ID Registration – Annual Fee", f.gw.intents[0].Description)
}

func TestCheckout_ComplaintStatus(t *testing.T) {
	f := newInitiatorFixture(t)
	f.store.complaints[complaintID] = &models.Complaint{ID: complaintID, ComplainantUserID: tenantOne, Status: models.ComplaintStatusSubmitted}

	_, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindComplaintFee, BusinessID: complaintID})
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	f.store.complaints[complaintID].Status = models.ComplaintStatusPendingPayment
	res, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindComplaintFee, BusinessID: complaintID})
	require.NoError(t, err)
	assert.Equal(t, "comp_"+complaintID, res.Reference)
}

func TestCheckout_ViewingFeeExactMinorUnits(t *testing.T) {
	f := newInitiatorFixture(t)

	res, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindViewingFee, BusinessID: viewingID})
	require.NoError(t, err)
	assert.Equal(t, "view_"+viewingID, res.Reference)
	require.Len(t, f.gw.intents, 1)
	assert.Equal(t, int64(200), f.gw.intents[0].Amount)
}

func TestCheckout_Configuration(t *testing.T) {
	f := newInitiatorFixture(t)

	noGateway := NewInitiator(f.store, nil, testPaymentsConfig(), zap.NewNop())
	_, err := noGateway.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindRentTax, BusinessID: rentID})
	assert.ErrorIs(t, err, ErrConfiguration)

	cfg := testPaymentsConfig()
	cfg.CallbackBaseURL = ""
	noCallback := NewInitiator(f.store, f.gw, cfg, zap.NewNop())
	_, err = noCallback.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindRentTax, BusinessID: rentID})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Empty(t, f.gw.intents)
}

func TestCheckout_GatewayError(t *testing.T) {
	f := newInitiatorFixture(t)
	f.gw.err = &GatewayError{Gateway: "paystack", StatusCode: 400, Message: "Invalid email address"}

	_, err := f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindRentTax, BusinessID: rentID})
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "Invalid email address", gwErr.Message)
}

func TestCheckout_BadRequests(t *testing.T) {
	f := newInitiatorFixture(t)

	_, err := f.in.Checkout(context.Background(), CheckoutRequest{Kind: KindRentTax, BusinessID: rentID})
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: "parking_fee", BusinessID: rentID})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.in.Checkout(context.Background(), CheckoutRequest{CallerID: tenantOne, Kind: KindListingFee})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.in.Checkout(context.Background(), CheckoutRequest{CallerID: "ghost", Kind: KindListingFee, BusinessID: listingID})
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Empty(t, f.gw.intents)
}

func TestCheckout_MalformedIDMakesNoLookup(t *testing.T) {
	f := newInitiatorFixture(t)

	for _, req := range []CheckoutRequest{
		{CallerID: tenantOne, Kind: KindRentTax, BusinessID: "abc"},
		{CallerID: tenantOne, Kind: KindBulkRentTax, BusinessID: "1 OR 1=1"},
		{CallerID: tenantOne, Kind: KindComplaintFee, BusinessID: "{" + complaintID + "}"},
		{CallerID: tenantOne, Kind: KindListingFee, BusinessID: "urn:uuid:" + listingID},
		{CallerID: tenantOne, Kind: KindViewingFee, BusinessID: "view-1"},
	} {
		_, err := f.in.Checkout(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}
	assert.Empty(t, f.gw.intents)
}
