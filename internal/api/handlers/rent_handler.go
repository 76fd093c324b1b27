package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/api/middleware"
	"github.com/nkwame271-ops/rnt-fair-now-sub001/internal/database"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListRentPayments returns the rent tax ledger of a tenancy to its tenant
// or landlord, newest period first. Unpaid rows are what the tenant can
// check out individually or in bulk.
func ListRentPayments(db *database.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		tenancyID := c.Param("tenancyId")

		var tenancyCode string
		err = db.QueryRowContext(ctx, `
			SELECT tenancy_code FROM tenancies
			WHERE id = $1 AND (tenant_user_id = $2 OR landlord_user_id = $2)`,
			tenancyID, userID,
		).Scan(&tenancyCode)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tenancy not found or unauthorized"})
			return
		}
		if err != nil {
			middleware.Logger(c, log).Error("list rent payments: tenancy lookup", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tenancy"})
			return
		}

		rows, err := db.QueryContext(ctx, `
			SELECT id, period, tax_amount, tenant_marked_paid, status, paid_date, payment_method, amount_paid
			FROM rent_payments
			WHERE tenancy_id = $1
			ORDER BY period DESC`,
			tenancyID,
		)
		if err != nil {
			middleware.Logger(c, log).Error("list rent payments: query", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rent payments"})
			return
		}
		defer rows.Close()

		ledger := []gin.H{}
		unpaid := decimal.Zero
		for rows.Next() {
			var p struct {
				ID         string
				Period     time.Time
				TaxAmount  decimal.Decimal
				Paid       bool
				Status     string
				PaidDate   sql.NullTime
				Method     sql.NullString
				AmountPaid decimal.NullDecimal
			}
			if err := rows.Scan(&p.ID, &p.Period, &p.TaxAmount, &p.Paid, &p.Status, &p.PaidDate, &p.Method, &p.AmountPaid); err != nil {
				middleware.Logger(c, log).Warn("list rent payments: scan", zap.Error(err))
				continue
			}
			if !p.Paid {
				unpaid = unpaid.Add(p.TaxAmount)
			}
			row := gin.H{
				"id":                 p.ID,
				"period":             p.Period.Format("2006-01"),
				"tax_amount":         p.TaxAmount.StringFixed(2),
				"tenant_marked_paid": p.Paid,
				"status":             p.Status,
				"payment_method":     p.Method.String,
			}
			if p.PaidDate.Valid {
				row["paid_date"] = p.PaidDate.Time
			}
			if p.AmountPaid.Valid {
				row["amount_paid"] = p.AmountPaid.Decimal.StringFixed(2)
			}
			ledger = append(ledger, row)
		}
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rent payments"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tenancy_code": tenancyCode,
			"unpaid_total": unpaid.StringFixed(2),
			"data":         ledger,
		})
	}
}
