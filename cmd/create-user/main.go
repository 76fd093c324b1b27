package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/config"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/utils"
)

// create-user seeds an account, typically the first admin. Re-running it
// for the same email resets the password and profile.
func main() {
	email := flag.String("email", "admin@rentfair.local", "login email")
	password := flag.String("password", "", "plain text password (required)")
	fullName := flag.String("name", "Rent Control Admin", "full name")
	phone := flag.String("phone", "", "phone number")
	role := flag.String("role", models.RoleAdmin, "tenant, landlord or admin")
	flag.Parse()

	reg := models.UserRegister{Email: *email, Password: *password, FullName: *fullName, Phone: *phone, Role: *role}
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := utils.ValidatePassword(reg.Password); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.NewDatabase(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.DB.Close()

	hashedPassword, err := utils.HashPassword(reg.Password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var userID string
	err = db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    full_name = EXCLUDED.full_name,
		    phone = EXCLUDED.phone,
		    role = EXCLUDED.role,
		    updated_at = NOW()
		RETURNING id`,
		uuid.NewString(), reg.Email, hashedPassword, reg.FullName, reg.Phone, reg.Role,
	).Scan(&userID)
	if err != nil {
		log.Fatal("Failed to create user:", err)
	}

	var table string
	switch reg.Role {
	case models.RoleTenant:
		table = "tenants"
	case models.RoleLandlord:
		table = "landlords"
	}
	if table != "" {
		_, err = db.ExecContext(ctx, `INSERT INTO `+table+` (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
		if err != nil {
			log.Fatal("Failed to create registration row:", err)
		}
	}

	fmt.Printf("User created/updated\n")
	fmt.Printf("   ID: %s\n", userID)
	fmt.Printf("   Email: %s\n", reg.Email)
	fmt.Printf("   Role: %s\n", reg.Role)
}
