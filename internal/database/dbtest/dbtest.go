// Package dbtest opens throwaway SQLite databases with the payment schema,
// for tests of code written against database.Database.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// schema mirrors migrations/0001_init.up.sql in SQLite types.
const schema = `
CREATE TABLE users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name     TEXT NOT NULL DEFAULT '',
	phone         TEXT,
	role          TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE tenants (
	user_id               TEXT PRIMARY KEY REFERENCES users(id),
	registration_fee_paid BOOLEAN NOT NULL DEFAULT false,
	registration_date     TIMESTAMP,
	expiry_date           TIMESTAMP
);
CREATE TABLE landlords (
	user_id               TEXT PRIMARY KEY REFERENCES users(id),
	registration_fee_paid BOOLEAN NOT NULL DEFAULT false,
	registration_date     TIMESTAMP,
	expiry_date           TIMESTAMP
);
CREATE TABLE properties (
	id                    TEXT PRIMARY KEY,
	owner_user_id         TEXT NOT NULL,
	listed_on_marketplace BOOLEAN NOT NULL DEFAULT false,
	listed_at             TIMESTAMP
);
CREATE TABLE tenancies (
	id               TEXT PRIMARY KEY,
	tenancy_code     TEXT NOT NULL UNIQUE,
	tenant_user_id   TEXT NOT NULL,
	landlord_user_id TEXT NOT NULL,
	property_id      TEXT
);
CREATE TABLE rent_payments (
	id                 TEXT PRIMARY KEY,
	tenancy_id         TEXT NOT NULL,
	period             DATE NOT NULL,
	tax_amount         NUMERIC NOT NULL,
	tenant_marked_paid BOOLEAN NOT NULL DEFAULT false,
	status             TEXT NOT NULL DEFAULT 'pending',
	paid_date          TIMESTAMP,
	payment_method     TEXT,
	amount_paid        NUMERIC,
	receiver           TEXT,
	created_at         TIMESTAMP NOT NULL
);
CREATE TABLE complaints (
	id                  TEXT PRIMARY KEY,
	complainant_user_id TEXT NOT NULL,
	status              TEXT NOT NULL DEFAULT 'pending_payment',
	created_at          TIMESTAMP NOT NULL
);
CREATE TABLE viewing_requests (
	id                TEXT PRIMARY KEY,
	property_id       TEXT NOT NULL,
	requester_user_id TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'pending_payment'
);
`

// Open returns an empty database in a temp dir, closed at test cleanup.
func Open(t testing.TB) *database.Database {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return &database.Database{DB: db}
}

// Fixed is the reference instant the seed helpers stamp rows with.
var Fixed = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// User inserts a user with the given role and password hash and returns
// its id. Tenants and landlords also get an unpaid registration row.
func User(t testing.TB, db *database.Database, email, role, passwordHash string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash, full_name, phone, role) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, email, passwordHash, "Ama Mensah", "0244000000", role)
	require.NoError(t, err)
	switch role {
	case "tenant":
		_, err = db.Exec(`INSERT INTO tenants (user_id) VALUES ($1)`, id)
	case "landlord":
		_, err = db.Exec(`INSERT INTO landlords (user_id) VALUES ($1)`, id)
	}
	require.NoError(t, err)
	return id
}

func Tenancy(t testing.TB, db *database.Database, code, tenantID, landlordID string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO tenancies (id, tenancy_code, tenant_user_id, landlord_user_id) VALUES ($1, $2, $3, $4)`,
		id, code, tenantID, landlordID)
	require.NoError(t, err)
	return id
}

// RentPayment inserts an unpaid rent payment for period.
func RentPayment(t testing.TB, db *database.Database, tenancyID string, period time.Time, tax string, createdAt time.Time) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO rent_payments (id, tenancy_id, period, tax_amount, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, tenancyID, period, decimal.RequireFromString(tax), createdAt)
	require.NoError(t, err)
	return id
}

func Complaint(t testing.TB, db *database.Database, complainantID, status string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO complaints (id, complainant_user_id, status, created_at) VALUES ($1, $2, $3, $4)`,
		id, complainantID, status, Fixed)
	require.NoError(t, err)
	return id
}

func Property(t testing.TB, db *database.Database, ownerID string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO properties (id, owner_user_id) VALUES ($1, $2)`, id, ownerID)
	require.NoError(t, err)
	return id
}

func ViewingRequest(t testing.TB, db *database.Database, propertyID, requesterID string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.Exec(`INSERT INTO viewing_requests (id, property_id, requester_user_id) VALUES ($1, $2, $3)`,
		id, propertyID, requesterID)
	require.NoError(t, err)
	return id
}
