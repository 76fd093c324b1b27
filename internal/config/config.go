package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server struct {
		Port           string
		Host           string
		ReadTimeout    time.Duration
		WriteTimeout   time.Duration
		AllowedOrigins []string
	}
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	JWT struct {
		Secret        string
		TokenExpiry   time.Duration
		RefreshExpiry time.Duration
	}
	RateLimit struct {
		RPS   float64
		Burst int
	}
	Payments    PaymentsConfig
	Hubtel      HubtelConfig
	Paystack    PaystackConfig
	Environment string
}

// PaymentsConfig holds everything the checkout and reconciliation code
// needs. It is built once at start-up and handed to the payments package.
type PaymentsConfig struct {
	// Gateway is the provider used for new checkouts ("hubtel" or "paystack").
	// Webhooks from both providers are accepted regardless.
	Gateway         string
	Currency        string
	CallbackBaseURL string
	ReturnURL       string
	CancelURL       string
	WebhookTimeout  time.Duration
	Fees            FeeSchedule
}

// FeeSchedule holds the fixed fees in major currency units.
type FeeSchedule struct {
	TenantRegistration   decimal.Decimal
	LandlordRegistration decimal.Decimal
	Complaint            decimal.Decimal
	Listing              decimal.Decimal
	Viewing              decimal.Decimal
}

type HubtelConfig struct {
	ClientID        string
	ClientSecret    string
	MerchantAccount string
	BaseURL         string
}

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

const (
	GatewayHubtel   = "hubtel"
	GatewayPaystack = "paystack"
)

func Load() (*Config, error) {
	godotenv.Load() //Load .env if exists

	cfg := &Config{}

	//Server config
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.ReadTimeout = getDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	cfg.Server.WriteTimeout = getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second)
	cfg.Server.AllowedOrigins = getList("CORS_ALLOWED_ORIGINS")

	//Database config
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnv("DB_PORT", "5432")
	cfg.Database.User = getEnv("DB_USER", "rentfair")
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.DBName = getEnv("DB_NAME", "rentfair")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	//JWT config
	cfg.JWT.Secret = getEnv("JWT_SECRET", "")
	cfg.JWT.TokenExpiry = time.Hour * 24    //24 hours
	cfg.JWT.RefreshExpiry = time.Hour * 168 //7 days

	cfg.RateLimit.RPS = getFloat("RATE_LIMIT_RPS", 2)
	cfg.RateLimit.Burst = getInt("RATE_LIMIT_BURST", 5)

	//Payments
	cfg.Payments.Gateway = strings.ToLower(getEnv("PAYMENT_GATEWAY", GatewayPaystack))
	cfg.Payments.Currency = getEnv("PAYMENT_CURRENCY", "GHS")
	cfg.Payments.CallbackBaseURL = strings.TrimRight(getEnv("PAYMENT_CALLBACK_BASE_URL", ""), "/")
	cfg.Payments.ReturnURL = getEnv("PAYMENT_RETURN_URL", "")
	cfg.Payments.CancelURL = getEnv("PAYMENT_CANCEL_URL", "")
	cfg.Payments.WebhookTimeout = getDuration("PAYMENT_WEBHOOK_TIMEOUT", 5*time.Second)

	var err error
	fees := &cfg.Payments.Fees
	if fees.TenantRegistration, err = getDecimal("FEE_TENANT_REGISTRATION", "50.00"); err != nil {
		return nil, err
	}
	if fees.LandlordRegistration, err = getDecimal("FEE_LANDLORD_REGISTRATION", "100.00"); err != nil {
		return nil, err
	}
	if fees.Complaint, err = getDecimal("FEE_COMPLAINT", "20.00"); err != nil {
		return nil, err
	}
	if fees.Listing, err = getDecimal("FEE_LISTING", "30.00"); err != nil {
		return nil, err
	}
	if fees.Viewing, err = getDecimal("FEE_VIEWING", "10.00"); err != nil {
		return nil, err
	}

	cfg.Hubtel.ClientID = getEnv("HUBTEL_CLIENT_ID", "")
	cfg.Hubtel.ClientSecret = getEnv("HUBTEL_CLIENT_SECRET", "")
	cfg.Hubtel.MerchantAccount = getEnv("HUBTEL_MERCHANT_ACCOUNT", "")
	cfg.Hubtel.BaseURL = getEnv("HUBTEL_BASE_URL", "")

	cfg.Paystack.SecretKey = getEnv("PAYSTACK_SECRET_KEY", "")
	cfg.Paystack.BaseURL = getEnv("PAYSTACK_BASE_URL", "")

	cfg.Environment = getEnv("ENV", "development")
	return cfg, nil
}

// Validate fails fast on settings the process cannot run without. Missing
// gateway credentials are not fatal: checkout reports them per request.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Payments.Gateway {
	case GatewayHubtel, GatewayPaystack:
	default:
		return fmt.Errorf("PAYMENT_GATEWAY must be %q or %q, got %q", GatewayHubtel, GatewayPaystack, c.Payments.Gateway)
	}
	if c.Payments.WebhookTimeout <= 0 {
		return errors.New("PAYMENT_WEBHOOK_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getDecimal(key, defaultValue string) (decimal.Decimal, error) {
	raw := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q: %w", key, raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: amount must not be negative", key)
	}
	return d, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
