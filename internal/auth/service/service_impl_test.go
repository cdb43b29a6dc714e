package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/auth/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/auth/password"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestLoginIssuesSession(t *testing.T) {
	svc, db := newTestService(t, "login")
	ctx := context.Background()

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "Owner@Acme.test", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}

	var count int64
	if err := db.Model(&domain.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 session, got %d", count)
	}

	identity, err := svc.Resolve(ctx, resp.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity.TenantID.String() != resp.TenantID {
		t.Fatalf("expected tenant %s, got %s", resp.TenantID, identity.TenantID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t, "badcreds")
	ctx := context.Background()

	cases := []domain.LoginRequest{
		{Email: "owner@acme.test", Password: "wrong"},
		{Email: "nobody@acme.test", Password: "correct horse"},
		{Email: "", Password: "correct horse"},
		{Email: "owner@acme.test", Password: ""},
	}
	for _, req := range cases {
		if _, err := svc.Login(ctx, req); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials for %q, got %v", req.Email, err)
		}
	}
}

func TestResolveRejectsExpiredSession(t *testing.T) {
	svc, _ := newTestService(t, "expired")
	ctx := context.Background()

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "owner@acme.test", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.clock = clock.Fixed(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	if _, err := svc.Resolve(ctx, resp.Token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t, "logout")
	ctx := context.Background()

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "owner@acme.test", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, resp.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Resolve(ctx, resp.Token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token after logout, got %v", err)
	}
}

func TestResolveRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestService(t, "garbage")
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, "sit_not_a_real_token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token for empty input, got %v", err)
	}
}

func newTestService(t *testing.T, name string) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&tenantdomain.Tenant{}, &domain.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	hash, err := password.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	tenant := tenantdomain.Tenant{
		ID:           node.Generate(),
		Email:        "owner@acme.test",
		PasswordHash: hash,
		CompanyName:  "Acme Co",
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}

	svc := &Service{
		db:         db,
		log:        zap.NewNop(),
		genID:      node,
		clock:      clock.Fixed(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
		sessionTTL: 24 * time.Hour,
	}
	return svc, db
}
