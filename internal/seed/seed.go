package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/auth/password"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@simpleinvoice.app"
	demoPassword = "demo-password"
	demoDisplay  = "Demo Owner"
	demoCompany  = "Demo Company"
)

// EnsureDemoTenant seeds a demo tenant with default settings so a fresh
// development database is usable right away. Production never calls this.
func EnsureDemoTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&tenantdomain.Tenant{}).Where("email = ?", demoEmail).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := password.Hash(demoPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		tenant := tenantdomain.Tenant{
			ID:           node.Generate(),
			Email:        demoEmail,
			PasswordHash: hash,
			DisplayName:  demoDisplay,
			CompanyName:  demoCompany,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		settings := tenantdomain.TenantSettings{
			TenantID:          tenant.ID,
			InvoicePrefix:     "INV",
			NextInvoiceNumber: 1,
			DefaultTaxRate:    decimal.Zero,
			Currency:          "USD",
			UpdatedAt:         now,
		}
		return tx.Create(&settings).Error
	})
}
