package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/api"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Fail fast if required vars are missing
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed:", err)
	}

	zlog := logger.Must(cfg.Environment)
	defer zlog.Sync()

	db, err := database.NewDatabase(cfg.GetDSN())
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.DB.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	api.SetupRoutes(r, db, cfg, zlog)

	serverAddr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("server starting",
			zap.String("addr", serverAddr),
			zap.String("env", cfg.Environment),
			zap.String("gateway", cfg.Payments.Gateway),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// In-flight webhook writes get the same budget they run under.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Payments.WebhookTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
	zlog.Info("server stopped")
}
