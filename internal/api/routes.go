package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/api/handlers"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/api/middleware"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/payments/gateway"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/services"
	"go.uber.org/zap"
)

func SetupRoutes(
	r *gin.Engine,
	db *database.Database,
	cfg *config.Config,
	log *zap.Logger,
) {
	// Global middleware
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.RequestID())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "rentfair-payments",
			"env":     cfg.Environment,
		})
	})

	store := services.NewPaymentService(db)
	gateways := gateway.All(cfg)
	active, err := gateway.Active(cfg, gateways)
	if err != nil {
		// Checkout reports ErrConfiguration; webhooks keep working.
		log.Error("no active payment gateway", zap.Error(err))
	}

	paymentHandler := handlers.NewPaymentHandler(
		payments.NewInitiator(store, active, cfg.Payments, log),
		payments.NewAuthenticator(gateways...),
		payments.NewDispatcher(store, log, cfg.Payments.WebhookTimeout),
		log,
	)
	authHandler := handlers.NewAuthHandler(db, []byte(cfg.JWT.Secret), cfg.JWT.TokenExpiry, log)
	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	auth := middleware.AuthMiddleware([]byte(cfg.JWT.Secret))

	api := r.Group("/api/v1")

	// Public routes
	api.POST("/login", middleware.RateLimiter(limiter), authHandler.Login)

	// Gateway callbacks. Any method is accepted so probes get a 200.
	for _, g := range gateways {
		api.Any("/payments/webhooks/"+g.Name(), paymentHandler.Webhook(g.Name()))
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(auth)
	{
		protected.GET("/profile", authHandler.Profile)
		protected.POST("/refresh-token", authHandler.RefreshToken)
		protected.POST("/logout", authHandler.Logout)
		protected.POST("/payments/checkout", middleware.RateLimiter(limiter), paymentHandler.Checkout)
		protected.GET("/tenancies/:tenancyId/rent-payments", handlers.ListRentPayments(db, log))
	}

	// Admin routes
	admin := api.Group("/sudo")
	admin.Use(auth, middleware.RequireRole(db, models.RoleAdmin))
	{
		admin.POST("/register", authHandler.Register)
		admin.POST("/payments/reconcile", paymentHandler.AdminReconcile)
	}
}
