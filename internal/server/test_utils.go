package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type testCleanupRequest struct {
	Prefix string `json:"prefix"`
}

// TestCleanup removes tenants whose email starts with the given prefix,
// together with everything they own. Only routed outside production.
func (s *Server) TestCleanup(c *gin.Context) {
	if s.cfg.IsProduction() {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req testCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" {
		AbortWithError(c, newValidationError("prefix", "required", "prefix is required"))
		return
	}

	ctx := c.Request.Context()
	tenantIDs, err := s.loadTenantIDsByPrefix(ctx, prefix)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.deleteTenantData(ctx, tenantIDs); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) loadTenantIDsByPrefix(ctx context.Context, prefix string) ([]int64, error) {
	like := strings.TrimSpace(prefix) + "%"
	var tenantIDs []int64
	if err := s.db.WithContext(ctx).
		Table("tenants").
		Where("email LIKE ?", like).
		Pluck("id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

func (s *Server) deleteTenantData(ctx context.Context, tenantIDs []int64) error {
	if len(tenantIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM invoice_items
			 WHERE invoice_id IN (SELECT id FROM invoices WHERE tenant_id IN ?)`,
			tenantIDs,
		).Error; err != nil {
			return err
		}

		tables := []string{
			"invoice_events",
			"invoices",
			"customers",
			"sessions",
			"promo_redemptions",
			"licenses",
			"audit_logs",
			"tenant_settings",
		}
		for _, table := range tables {
			if err := tx.Exec(`DELETE FROM `+table+` WHERE tenant_id IN ?`, tenantIDs).Error; err != nil {
				return err
			}
		}

		return tx.Exec(`DELETE FROM tenants WHERE id IN ?`, tenantIDs).Error
	})
}
