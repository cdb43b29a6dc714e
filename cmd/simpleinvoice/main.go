package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/audit"
	"github.com/firsttechlabs/simpleinvoice-be/internal/auth"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	"github.com/firsttechlabs/simpleinvoice-be/internal/customer"
	"github.com/firsttechlabs/simpleinvoice-be/internal/dashboard"
	"github.com/firsttechlabs/simpleinvoice-be/internal/events"
	"github.com/firsttechlabs/simpleinvoice-be/internal/invoice"
	"github.com/firsttechlabs/simpleinvoice-be/internal/license"
	"github.com/firsttechlabs/simpleinvoice-be/internal/mailer"
	"github.com/firsttechlabs/simpleinvoice-be/internal/migration"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/logger"
	"github.com/firsttechlabs/simpleinvoice-be/internal/overdue"
	"github.com/firsttechlabs/simpleinvoice-be/internal/seed"
	"github.com/firsttechlabs/simpleinvoice-be/internal/server"
	"github.com/firsttechlabs/simpleinvoice-be/internal/storage"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenant"
	"github.com/firsttechlabs/simpleinvoice-be/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		fx.Provide(config.Load),
		logger.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		clock.Module,
		db.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if !cfg.IsProduction() && cfg.Bootstrap.EnsureDemoTenant {
				return seed.EnsureDemoTenant(conn)
			}
			return nil
		}),
		observability.Module,
		events.Module,
		mailer.Module,
		storage.Module,
		audit.Module,
		tenant.Module,
		auth.Module,
		customer.Module,
		invoice.Module,
		dashboard.Module,
		license.Module,
		overdue.Module,
		server.Module,
	)
	app.Run()
}
