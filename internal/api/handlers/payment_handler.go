package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/api/middleware"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxWebhookBody bounds how much of a webhook body is read.
const maxWebhookBody = 1 << 20

type Checkouter interface {
	Checkout(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutResult, error)
}

type WebhookAuthenticator interface {
	Authenticate(provider string, header http.Header, body []byte) (*payments.WebhookEvent, error)
}

type Reconciler interface {
	Reconcile(ctx context.Context, ev *payments.WebhookEvent) payments.Outcome
}

type PaymentHandler struct {
	checkout Checkouter
	auth     WebhookAuthenticator
	recon    Reconciler
	log      *zap.Logger
}

func NewPaymentHandler(checkout Checkouter, auth WebhookAuthenticator, recon Reconciler, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, auth: auth, recon: recon, log: log}
}

type CheckoutRequest struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id"`
}

// Checkout opens a hosted payment page for one business record owned by
// the caller.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	callerID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body CheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkout request"})
		return
	}

	kind, err := payments.ParseKind(body.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.checkout.Checkout(c.Request.Context(), payments.CheckoutRequest{
		CallerID:   callerID,
		Kind:       kind,
		BusinessID: body.ID,
	})
	if err != nil {
		status, msg := checkoutError(err)
		if status >= http.StatusInternalServerError {
			log.Error("checkout failed", zap.String("kind", string(kind)), zap.Error(err))
			c.JSON(status, gin.H{"error": msg, "trace_id": c.GetString("request_id")})
			return
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		res.URLField: res.URL,
		"reference":  res.Reference,
		"gateway":    res.Gateway,
	})
}

// checkoutError maps a checkout failure to a status and a message safe to
// show the caller.
func checkoutError(err error) (int, string) {
	var gwErr *payments.GatewayError
	switch {
	case errors.Is(err, payments.ErrAuthentication):
		return http.StatusUnauthorized, "User not authenticated"
	case errors.Is(err, payments.ErrAuthorization):
		return http.StatusBadRequest, "You are not allowed to pay for this record"
	case errors.Is(err, payments.ErrPreconditionFailed),
		errors.Is(err, payments.ErrInvalidRequest),
		errors.Is(err, payments.ErrInvalidAmount),
		errors.Is(err, payments.ErrConfiguration):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &gwErr):
		return http.StatusBadRequest, gwErr.Message
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// Webhook receives notifications from one provider. Everything except a
// failed signature is acknowledged with 200 so the provider stops
// retrying; failures past authentication are logged instead.
func (h *PaymentHandler) Webhook(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := middleware.Logger(c, h.log).With(zap.String("provider", provider))

		if c.Request.Method != http.MethodPost {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			log.Warn("webhook body unreadable", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		ev, err := h.auth.Authenticate(provider, c.Request.Header, body)
		if errors.Is(err, payments.ErrAuthentication) {
			log.Warn("webhook rejected", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		if err != nil {
			log.Warn("webhook unparseable", zap.ByteString("raw_event", body), zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		// The provider may hang up once it has its answer; the write must
		// still complete.
		h.recon.Reconcile(context.WithoutCancel(c.Request.Context()), ev)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

type ManualReconcileRequest struct {
	Reference             string          `json:"reference" binding:"required"`
	Amount                decimal.Decimal `json:"amount"`
	Provider              string          `json:"provider"`
	ProviderTransactionID string          `json:"provider_transaction_id"`
}

// AdminReconcile replays a confirmed payment by hand, for events whose
// webhook write failed. It runs through the same idempotent path.
func (h *PaymentHandler) AdminReconcile(c *gin.Context) {
	var body ManualReconcileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reconcile request"})
		return
	}
	if body.Provider == "" {
		body.Provider = "manual"
	}

	raw, _ := json.Marshal(body)
	adminID, _ := middleware.GetUserID(c)
	middleware.Logger(c, h.log).Info("manual reconcile requested",
		zap.String("admin_id", adminID),
		zap.String("reference", body.Reference),
	)

	outcome := h.recon.Reconcile(c.Request.Context(), &payments.WebhookEvent{
		Provider:              body.Provider,
		RawBody:               raw,
		Status:                "manual",
		Success:               true,
		Amount:                body.Amount,
		ProviderTransactionID: body.ProviderTransactionID,
		Reference:             body.Reference,
	})

	switch outcome {
	case payments.OutcomeUnrecognized:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unrecognized reference", "outcome": outcome})
	case payments.OutcomeStorageFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation write failed", "outcome": outcome})
	default:
		c.JSON(http.StatusOK, gin.H{"outcome": outcome})
	}
}
