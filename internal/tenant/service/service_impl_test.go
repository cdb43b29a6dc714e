package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/cache"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/firsttechlabs/simpleinvoice-be/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestRegisterCreatesSettingsRow(t *testing.T) {
	svc, db := newTestService(t, "register")

	tenant, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:       "Owner@Acme.Test",
		Password:    "hunter2hunter2",
		DisplayName: "Owner",
		CompanyName: "Acme Corp",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if tenant.Email != "owner@acme.test" {
		t.Fatalf("expected lowercased email, got %s", tenant.Email)
	}
	if tenant.PasswordHash == "hunter2hunter2" {
		t.Fatal("expected password to be hashed")
	}

	var settings domain.TenantSettings
	if err := db.Where("tenant_id = ?", tenant.ID).First(&settings).Error; err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.InvoicePrefix != "INV" || settings.NextInvoiceNumber != 1 {
		t.Fatalf("expected defaults INV/1, got %s/%d", settings.InvoicePrefix, settings.NextInvoiceNumber)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, "register_dup")

	req := domain.RegisterRequest{
		Email:    "owner@acme.test",
		Password: "hunter2hunter2",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, "register_invalid")

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "not-an-email", Password: "hunter2hunter2"})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	_, err = svc.Register(context.Background(), domain.RegisterRequest{Email: "owner@acme.test", Password: "short"})
	if !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := newTestService(t, "update_password")

	tenant, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "owner@acme.test",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := tenantcontext.WithTenantID(context.Background(), tenant.ID)

	err = svc.UpdatePassword(ctx, domain.UpdatePasswordRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "replacement-pass",
	})
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	err = svc.UpdatePassword(ctx, domain.UpdatePasswordRequest{
		CurrentPassword: "hunter2hunter2",
		NewPassword:     "replacement-pass",
	})
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
}

func TestUpdateSettingsValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, "update_settings")

	tenant, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "owner@acme.test",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := tenantcontext.WithTenantID(context.Background(), tenant.ID)

	badPrefix := "inv lower"
	if _, err := svc.UpdateSettings(ctx, domain.UpdateSettingsRequest{InvoicePrefix: &badPrefix}); !errors.Is(err, domain.ErrInvalidPrefix) {
		t.Fatalf("expected invalid prefix, got %v", err)
	}

	badRate := decimal.NewFromInt(-1)
	if _, err := svc.UpdateSettings(ctx, domain.UpdateSettingsRequest{DefaultTaxRate: &badRate}); !errors.Is(err, domain.ErrInvalidTaxRate) {
		t.Fatalf("expected invalid tax rate, got %v", err)
	}

	badCurrency := "DOLLARS"
	if _, err := svc.UpdateSettings(ctx, domain.UpdateSettingsRequest{Currency: &badCurrency}); !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Fatalf("expected invalid currency, got %v", err)
	}

	prefix := "ACME-"
	rate := decimal.RequireFromString("7.5")
	currency := "eur"
	settings, err := svc.UpdateSettings(ctx, domain.UpdateSettingsRequest{
		InvoicePrefix:  &prefix,
		DefaultTaxRate: &rate,
		Currency:       &currency,
	})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if settings.InvoicePrefix != "ACME-" || settings.Currency != "EUR" {
		t.Fatalf("expected ACME-/EUR, got %s/%s", settings.InvoicePrefix, settings.Currency)
	}
	if !settings.DefaultTaxRate.Equal(rate) {
		t.Fatalf("expected tax rate 7.5, got %s", settings.DefaultTaxRate)
	}
	if settings.NextInvoiceNumber != 1 {
		t.Fatalf("expected counter untouched, got %d", settings.NextInvoiceNumber)
	}
}

func newTestService(t *testing.T, name string) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:tenant_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Tenant{}, &domain.TenantSettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	svc := &Service{
		db:            db,
		log:           zap.NewNop(),
		genID:         node,
		clock:         clock.Fixed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		tenants:       repository.ProvideStore[domain.Tenant](db),
		settingsCache: cache.NewTTLCache[snowflake.ID, domain.TenantSettings](),
	}
	return svc, db
}
