package payments

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
)

// memoryLedger keeps confirmed business ids per kind and counts writes.
type memoryLedger struct {
	mu        sync.Mutex
	confirmed map[TransactionKind]map[string]Confirmation
	calls     int
	err       error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{confirmed: make(map[TransactionKind]map[string]Confirmation)}
}

func (m *memoryLedger) apply(kind TransactionKind, c Confirmation) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	if m.confirmed[kind] == nil {
		m.confirmed[kind] = make(map[string]Confirmation)
	}
	if _, done := m.confirmed[kind][c.Reference.BusinessID]; done {
		return false, nil
	}
	m.confirmed[kind][c.Reference.BusinessID] = c
	return true, nil
}

func (m *memoryLedger) ConfirmRentPayment(_ context.Context, c Confirmation) (bool, error) {
	return m.apply(KindRentTax, c)
}
func (m *memoryLedger) ConfirmBulkRentPayment(_ context.Context, c Confirmation) (bool, error) {
	return m.apply(KindBulkRentTax, c)
}
func (m *memoryLedger) ConfirmTenantRegistration(_ context.Context, c Confirmation) (bool, error) {
	return m.apply(KindTenantRegistration, c)
}
func (m *memoryLedger) ConfirmLandlordRegistration(_ context.Context, c Confirmation) (bool, error) {
	return m.apply(KindLandlordRegistration, c)
}
func (m *memoryLedger) ConfirmComplaintFee(_ context.Context, c Confirmation) (bool, error) {
	return m.apply(KindComplaintFee, c)
}
func (m *memoryLedger) ConfirmListingFee(_ context.Context, c Confirmation) (bool, error) {
	return m.apply(KindListingFee, c)
}
func (m *memoryLedger) ConfirmViewingFee(_ context.Context, c Confirmation) (bool, error) {
	return m.apply(KindViewingFee, c)
}

// memoryCheckoutStore serves fixed records keyed by id.
type memoryCheckoutStore struct {
	users         map[string]*models.User
	rentPayments  map[string]*models.RentPayment
	arrears       map[string]*models.TenancyArrears
	registrations map[string]*models.Registration // role + ":" + user id
	complaints    map[string]*models.Complaint
}

func newMemoryCheckoutStore() *memoryCheckoutStore {
	return &memoryCheckoutStore{
		users:         make(map[string]*models.User),
		rentPayments:  make(map[string]*models.RentPayment),
		arrears:       make(map[string]*models.TenancyArrears),
		registrations: make(map[string]*models.Registration),
		complaints:    make(map[string]*models.Complaint),
	}
}

func lookup[T any](m map[string]*T, key string) (*T, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (s *memoryCheckoutStore) GetCustomer(_ context.Context, id string) (*models.User, error) {
	return lookup(s.users, id)
}
func (s *memoryCheckoutStore) GetRentPayment(_ context.Context, id string) (*models.RentPayment, error) {
	return lookup(s.rentPayments, id)
}
func (s *memoryCheckoutStore) GetTenancyArrears(_ context.Context, id string, _ time.Time) (*models.TenancyArrears, error) {
	return lookup(s.arrears, id)
}
func (s *memoryCheckoutStore) GetRegistration(_ context.Context, role, userID string) (*models.Registration, error) {
	return lookup(s.registrations, role+":"+userID)
}
func (s *memoryCheckoutStore) GetComplaint(_ context.Context, id string) (*models.Complaint, error) {
	return lookup(s.complaints, id)
}

// recordingGateway records intents and returns a canned session or error.
type recordingGateway struct {
	intents []PaymentIntent
	err     error
}

func (g *recordingGateway) Name() string { return "paystack" }

func (g *recordingGateway) Initiate(_ context.Context, intent PaymentIntent) (*CheckoutSession, error) {
	g.intents = append(g.intents, intent)
	if g.err != nil {
		return nil, g.err
	}
	return &CheckoutSession{URL: "https://checkout.example/" + intent.Reference, URLField: "authorization_url"}, nil
}

func (g *recordingGateway) VerifyWebhook(header http.Header, _ []byte) error {
	if header.Get("X-Test-Signature") != "ok" {
		return ErrAuthentication
	}
	return nil
}

func (g *recordingGateway) ParseWebhook(_ http.Header, body []byte) (*WebhookEvent, error) {
	if len(body) == 0 {
		return nil, ErrMalformedWebhook
	}
	return &WebhookEvent{Success: true, Reference: string(body)}, nil
}

var errDatabaseDown = errors.New("database is down")
