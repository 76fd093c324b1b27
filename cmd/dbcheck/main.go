package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
)

// Columns the reconciliation engine reads or writes, per table.
var required = map[string][]string{
	"users":            {"id", "email", "password_hash", "full_name", "phone", "role"},
	"tenancies":        {"id", "tenancy_code", "tenant_user_id"},
	"rent_payments":    {"id", "tenancy_id", "period", "tax_amount", "tenant_marked_paid", "status", "paid_date", "payment_method", "amount_paid", "receiver", "created_at"},
	"tenants":          {"user_id", "registration_fee_paid", "registration_date", "expiry_date"},
	"landlords":        {"user_id", "registration_fee_paid", "registration_date", "expiry_date"},
	"complaints":       {"id", "complainant_user_id", "status"},
	"properties":       {"id", "listed_on_marketplace", "listed_at"},
	"viewing_requests": {"id", "status"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	fmt.Printf("Connecting to %s:%s/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	db, err := database.NewDatabase(cfg.GetDSN())
	if err != nil {
		fmt.Println("connect err:", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	missing := 0
	for table, cols := range required {
		for _, col := range cols {
			var exists bool
			err := db.QueryRowContext(ctx, `
				SELECT EXISTS(
					SELECT 1 FROM information_schema.columns
					WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
				)`, table, col).Scan(&exists)
			if err != nil {
				fmt.Println("query err:", err)
				os.Exit(1)
			}
			if !exists {
				fmt.Printf("missing column %s.%s\n", table, col)
				missing++
			}
		}
	}

	if missing > 0 {
		fmt.Printf("%d columns missing, run cmd/migrate\n", missing)
		os.Exit(1)
	}
	fmt.Println("schema ok")
}
