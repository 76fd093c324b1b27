package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/api/middleware"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/models"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/utils"
	"go.uber.org/zap"
)

type AuthHandler struct {
	db              *database.Database
	jwtSecret       []byte
	tokenExpiration time.Duration
	log             *zap.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(db *database.Database, jwtSecret []byte, tokenExpiration time.Duration, log *zap.Logger) *AuthHandler {
	if tokenExpiration <= 0 {
		tokenExpiration = 24 * time.Hour
	}
	return &AuthHandler{
		db:              db,
		jwtSecret:       jwtSecret,
		tokenExpiration: tokenExpiration,
		log:             log,
	}
}

// Register creates an account. Tenant and landlord accounts get an unpaid
// registration row so they can pay their annual fee.
func (h *AuthHandler) Register(c *gin.Context) {
	log := middleware.Logger(c, h.log)

	var user models.UserRegister
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input format",
			"details": err.Error(),
		})
		return
	}
	user.Normalize()
	if err := user.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidatePassword(user.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var exists bool
	err := h.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", user.Email).Scan(&exists)
	if err != nil {
		log.Error("register: select exists", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Database error",
			"trace_id": c.GetString("request_id"),
		})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := utils.HashPassword(user.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Password processing failed"})
		return
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction start failed"})
		return
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, user.Email, hashedPassword, user.FullName, user.Phone, user.Role,
	)
	if err == nil {
		switch user.Role {
		case models.RoleTenant:
			_, err = tx.ExecContext(ctx, "INSERT INTO tenants (user_id) VALUES ($1)", id)
		case models.RoleLandlord:
			_, err = tx.ExecContext(ctx, "INSERT INTO landlords (user_id) VALUES ($1)", id)
		}
	}
	if err != nil {
		log.Error("register: insert user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "User creation failed",
			"trace_id": c.GetString("request_id"),
		})
		return
	}

	if err = tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": id,
	})
}

// Login handles user authentication and JWT generation
func (h *AuthHandler) Login(c *gin.Context) {
	var login models.UserLogin
	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login data"})
		return
	}
	login.Normalize()

	var user models.User
	err := h.db.QueryRowContext(c.Request.Context(), `
		SELECT id, email, password_hash, role
		FROM users
		WHERE email = $1`,
		login.Email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role)

	if errors.Is(err, sql.ErrNoRows) {
		// Don't say whether the email or the password was wrong
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		middleware.Logger(c, h.log).Error("login: db error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Internal server error",
			"trace_id": c.GetString("request_id"),
		})
		return
	}

	if !utils.CheckPasswordHash(login.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.issueToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      tokenString,
		"expires_in": h.tokenExpiration.Seconds(),
		"token_type": "Bearer",
		"role":       user.Role,
	})
}

// RefreshToken generates a new token for valid users
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	tokenString, err := h.issueToken(userID, c.GetString("email"), c.GetString("role"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      tokenString,
		"expires_in": h.tokenExpiration.Seconds(),
		"token_type": "Bearer",
	})
}

// Logout is stateless; the client drops its token.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully logged out",
		"instructions": "Please remove the token from your client storage",
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": c.GetString("user_id"),
		"email":   c.GetString("email"),
		"role":    c.GetString("role"),
	})
}

func (h *AuthHandler) issueToken(userID, email, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(h.tokenExpiration).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}
