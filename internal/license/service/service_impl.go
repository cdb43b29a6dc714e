package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/license/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("license.service"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) Redeem(ctx context.Context, req domain.RedeemRequest) (*domain.License, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	now := s.clock.Now()
	var license domain.License
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var promo domain.PromoCode
		err := tx.Where("code = ?", code).First(&promo).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCodeNotFound
			}
			return err
		}
		if promo.ExpiresAt != nil && now.After(*promo.ExpiresAt) {
			return domain.ErrCodeExpired
		}

		var redeemed int64
		if err := tx.Model(&domain.Redemption{}).Where("promo_id = ?", promo.ID).Count(&redeemed).Error; err != nil {
			return err
		}
		if promo.MaxRedeems > 0 && redeemed >= int64(promo.MaxRedeems) {
			return domain.ErrCodeExhausted
		}

		var mine int64
		err = tx.Model(&domain.Redemption{}).
			Where("tenant_id = ? AND promo_id = ?", tenantID, promo.ID).
			Count(&mine).Error
		if err != nil {
			return err
		}
		if mine > 0 {
			return domain.ErrAlreadyRedeemed
		}

		redemption := domain.Redemption{
			ID:         s.genID.Generate(),
			TenantID:   tenantID,
			PromoID:    promo.ID,
			RedeemedAt: now,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return err
		}

		// Extend from the current expiry when still valid, else from now.
		if err := tx.Where("tenant_id = ?", tenantID).First(&license).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			license = domain.License{TenantID: tenantID, Plan: "free"}
		}
		base := now
		if license.ValidUntil != nil && license.ValidUntil.After(now) {
			base = *license.ValidUntil
		}
		validUntil := base.AddDate(0, 0, promo.GrantDays)
		license.Plan = promo.Plan
		license.ValidUntil = &validUntil
		license.UpdatedAt = now

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "valid_until", "updated_at"}),
		}).Create(&license).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("promo code redeemed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("code", code),
	)
	return &license, nil
}

func (s *Service) Current(ctx context.Context) (*domain.License, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidTenant
	}

	var license domain.License
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&license).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.License{TenantID: tenantID, Plan: "free"}, nil
		}
		return nil, err
	}
	return &license, nil
}
