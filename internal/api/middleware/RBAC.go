package middleware

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
)

// RequireRole checks the caller's role against the users table, not the
// token, so a demoted admin loses access before the token expires.
func RequireRole(db *database.Database, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: user id not found in context",
			})
			return
		}

		var role string
		err = db.DB.QueryRowContext(
			c.Request.Context(),
			`SELECT role FROM users WHERE id = $1`,
			userID,
		).Scan(&role)

		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "user not found",
			})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "database error",
			})
			return
		}

		if role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "forbidden: insufficient permissions",
			})
			return
		}

		c.Set("role", role)
		c.Next()
	}
}
