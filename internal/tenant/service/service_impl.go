package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/auth/password"
	"github.com/firsttechlabs/simpleinvoice-be/internal/cache"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/firsttechlabs/simpleinvoice-be/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	maxPrefixLength   = 12
	settingsCacheTTL  = 30 * time.Second
)

var maxTaxRate = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Tenants repository.Repository[domain.Tenant]
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	tenants       repository.Repository[domain.Tenant]
	settingsCache *cache.TTLCache[snowflake.ID, domain.TenantSettings]
}

func NewService(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("tenant.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		tenants:       p.Tenants,
		settingsCache: cache.NewTTLCache[snowflake.ID, domain.TenantSettings](),
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Tenant, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tenant := domain.Tenant{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The tenant row and its settings row are born together; every
	// tenant always has a numbering sequence from the first request on.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&domain.Tenant{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrEmailTaken
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		settings := domain.TenantSettings{
			TenantID:          tenant.ID,
			InvoicePrefix:     "INV",
			NextInvoiceNumber: 1,
			DefaultTaxRate:    decimal.Zero,
			Currency:          "USD",
			UpdatedAt:         now,
		}
		return tx.Create(&settings).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tenant registered", zap.String("tenant_id", tenant.ID.String()))
	return &tenant, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidTenant
	}
	return s.load(ctx, tenantID)
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.Tenant, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}
	tenant, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		tenant.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.CompanyName != nil {
		tenant.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.CompanyAddr != nil {
		tenant.CompanyAddr = strings.TrimSpace(*req.CompanyAddr)
	}
	tenant.UpdatedAt = s.clock.Now()

	if err := s.db.WithContext(ctx).Save(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *Service) UpdatePassword(ctx context.Context, req domain.UpdatePasswordRequest) error {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidTenant
	}
	tenant, err := s.load(ctx, tenantID)
	if err != nil {
		return err
	}

	if !password.Verify(req.CurrentPassword, tenant.PasswordHash) {
		return domain.ErrPasswordMismatch
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("id = ?", tenantID).
		Updates(map[string]any{
			"password_hash": hash,
			"updated_at":    s.clock.Now(),
		}).Error
}

func (s *Service) GetSettings(ctx context.Context) (*domain.TenantSettings, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}
	if cached, ok := s.settingsCache.Get(tenantID); ok {
		return &cached, nil
	}

	var settings domain.TenantSettings
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}

	s.settingsCache.Set(tenantID, settings, settingsCacheTTL)
	return &settings, nil
}

// UpdateSettings changes prefix, default tax rate and currency. The
// numbering counter is not writable from the outside; it only moves
// through invoice creation.
func (s *Service) UpdateSettings(ctx context.Context, req domain.UpdateSettingsRequest) (*domain.TenantSettings, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	updates := map[string]any{}
	if req.InvoicePrefix != nil {
		prefix := strings.TrimSpace(*req.InvoicePrefix)
		if !validPrefix(prefix) {
			return nil, domain.ErrInvalidPrefix
		}
		updates["invoice_prefix"] = prefix
	}
	if req.DefaultTaxRate != nil {
		if req.DefaultTaxRate.IsNegative() || req.DefaultTaxRate.GreaterThan(maxTaxRate) {
			return nil, domain.ErrInvalidTaxRate
		}
		updates["default_tax_rate"] = *req.DefaultTaxRate
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if !validCurrency(currency) {
			return nil, domain.ErrInvalidCurrency
		}
		updates["currency"] = currency
	}

	if len(updates) > 0 {
		updates["updated_at"] = s.clock.Now()
		result := s.db.WithContext(ctx).
			Model(&domain.TenantSettings{}).
			Where("tenant_id = ?", tenantID).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, domain.ErrTenantNotFound
		}
	}

	s.settingsCache.Delete(tenantID)
	return s.GetSettings(ctx)
}

func (s *Service) load(ctx context.Context, tenantID snowflake.ID) (*domain.Tenant, error) {
	tenant, err := s.tenants.First(ctx, "id = ?", tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

func validatePassword(raw string) error {
	if len(raw) < minPasswordLength {
		return domain.ErrInvalidPassword
	}
	return nil
}

func validPrefix(prefix string) bool {
	if prefix == "" || len(prefix) > maxPrefixLength {
		return false
	}
	for _, r := range prefix {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}

func validCurrency(currency string) bool {
	if len(currency) != 3 {
		return false
	}
	for _, r := range currency {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
