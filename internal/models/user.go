package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// User is an account. Phone and email double as the payee details sent to
// the gateways at checkout.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserLogin struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Normalize lowercases the email so logins match however it was typed.
func (u *UserLogin) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// UserRegister is the admin registration request. Tenant and landlord
// accounts get an unpaid registration row.
type UserRegister struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
}

var (
	emailRegexp = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	// Ghana mobile numbers, local (0XXXXXXXXX) or international (233XXXXXXXXX).
	ghanaMobileRegexp = regexp.MustCompile(`^(?:0|233)([235][0-9]{8})$`)
)

var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInvalidPhone = errors.New("phone must be a Ghana mobile number, e.g. 0244000000")
	ErrInvalidRole  = errors.New("role must be tenant, landlord or admin")
)

// Normalize lowercases the email and rewrites the phone to the local
// 0XXXXXXXXX form Hubtel expects for payeeMobileNumber.
func (u *UserRegister) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FullName = strings.TrimSpace(u.FullName)
	if phone, ok := NormalizePhone(u.Phone); ok {
		u.Phone = phone
	}
}

// Validate checks the fields the payment flows rely on. Phone is optional
// for admins only: tenants and landlords pay by mobile money.
func (u *UserRegister) Validate() error {
	if !emailRegexp.MatchString(u.Email) {
		return ErrInvalidEmail
	}
	switch u.Role {
	case RoleTenant, RoleLandlord:
		if _, ok := NormalizePhone(u.Phone); !ok {
			return ErrInvalidPhone
		}
	case RoleAdmin:
		if u.Phone != "" {
			if _, ok := NormalizePhone(u.Phone); !ok {
				return ErrInvalidPhone
			}
		}
	default:
		return ErrInvalidRole
	}
	return nil
}

// NormalizePhone accepts a Ghana mobile number with optional spaces,
// dashes or a leading + and returns it as 0XXXXXXXXX.
func NormalizePhone(raw string) (string, bool) {
	digits := strings.NewReplacer(" ", "", "-", "", "+", "").Replace(strings.TrimSpace(raw))
	m := ghanaMobileRegexp.FindStringSubmatch(digits)
	if m == nil {
		return "", false
	}
	return "0" + m[1], true
}
