package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/license/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func TestRedeemGrantsLicense(t *testing.T) {
	svc, db := newTestService(t, "redeem")
	seedPromo(t, db, 100, "LAUNCH30", "pro", 30, 0, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), 1)

	license, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "launch30"})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if license.Plan != "pro" {
		t.Fatalf("expected plan pro, got %s", license.Plan)
	}
	want := testNow.AddDate(0, 0, 30)
	if license.ValidUntil == nil || !license.ValidUntil.Equal(want) {
		t.Fatalf("expected valid until %v, got %v", want, license.ValidUntil)
	}
}

func TestRedeemStacksOnActiveLicense(t *testing.T) {
	svc, db := newTestService(t, "redeem_stack")
	seedPromo(t, db, 100, "FIRST", "pro", 30, 0, nil)
	seedPromo(t, db, 101, "SECOND", "pro", 15, 0, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), 1)

	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "FIRST"}); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	license, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "SECOND"})
	if err != nil {
		t.Fatalf("second redeem: %v", err)
	}
	want := testNow.AddDate(0, 0, 45)
	if license.ValidUntil == nil || !license.ValidUntil.Equal(want) {
		t.Fatalf("expected stacked expiry %v, got %v", want, license.ValidUntil)
	}
}

func TestRedeemGuards(t *testing.T) {
	svc, db := newTestService(t, "redeem_guards")
	expired := testNow.AddDate(0, 0, -1)
	seedPromo(t, db, 100, "GONE", "pro", 30, 0, &expired)
	seedPromo(t, db, 101, "ONCE", "pro", 30, 1, nil)
	ctx := tenantcontext.WithTenantID(context.Background(), 1)

	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "NOPE"}); !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "GONE"}); !errors.Is(err, domain.ErrCodeExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: ""}); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected invalid code, got %v", err)
	}

	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "ONCE"}); err != nil {
		t.Fatalf("redeem once: %v", err)
	}
	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "ONCE"}); !errors.Is(err, domain.ErrAlreadyRedeemed) {
		t.Fatalf("expected already redeemed, got %v", err)
	}

	other := tenantcontext.WithTenantID(context.Background(), 2)
	if _, err := svc.Redeem(other, domain.RedeemRequest{Code: "ONCE"}); !errors.Is(err, domain.ErrCodeExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
}

func TestCurrentDefaultsToFree(t *testing.T) {
	svc, _ := newTestService(t, "current_free")
	ctx := tenantcontext.WithTenantID(context.Background(), 1)

	license, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if license.Plan != "free" || license.ValidUntil != nil {
		t.Fatalf("expected free plan without expiry, got %+v", license)
	}
}

func newTestService(t *testing.T, name string) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:license_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.PromoCode{}, &domain.Redemption{}, &domain.License{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	svc := &Service{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: clock.Fixed(testNow),
	}
	return svc, db
}

func seedPromo(t *testing.T, db *gorm.DB, id snowflake.ID, code, plan string, grantDays, maxRedeems int, expiresAt *time.Time) {
	t.Helper()
	promo := domain.PromoCode{
		ID:         id,
		Code:       code,
		Plan:       plan,
		GrantDays:  grantDays,
		MaxRedeems: maxRedeems,
		ExpiresAt:  expiresAt,
		CreatedAt:  testNow,
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("seed promo %s: %v", code, err)
	}
}
