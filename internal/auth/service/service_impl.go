package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/firsttechlabs/simpleinvoice-be/internal/auth/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/auth/password"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cfg   config.Config
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	sessionTTL time.Duration
}

func NewService(p Params) authdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("auth.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		sessionTTL: p.Cfg.SessionTTL,
	}
}

func (s *Service) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, authdomain.ErrInvalidCredentials
	}

	var tenant tenantdomain.Tenant
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authdomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Password, tenant.PasswordHash) {
		return nil, authdomain.ErrInvalidCredentials
	}

	token, err := authdomain.NewToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := authdomain.Session{
		ID:         s.genID.Generate(),
		TenantID:   tenant.ID,
		TokenHash:  authdomain.HashToken(token),
		ExpiresAt:  now.Add(s.sessionTTL),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}

	return &authdomain.LoginResponse{
		Token:     token,
		TenantID:  tenant.ID.String(),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return authdomain.ErrInvalidToken
	}
	return s.db.WithContext(ctx).
		Where("token_hash = ?", authdomain.HashToken(rawToken)).
		Delete(&authdomain.Session{}).Error
}

func (s *Service) Resolve(ctx context.Context, rawToken string) (authdomain.Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return authdomain.Identity{}, authdomain.ErrInvalidToken
	}

	var session authdomain.Session
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", authdomain.HashToken(rawToken)).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authdomain.Identity{}, authdomain.ErrInvalidToken
		}
		return authdomain.Identity{}, err
	}

	now := s.clock.Now()
	if session.ExpiresAt.Before(now) {
		return authdomain.Identity{}, authdomain.ErrSessionExpired
	}

	// Best effort; a stale last_seen_at never fails the request.
	if err := s.db.WithContext(ctx).Model(&authdomain.Session{}).
		Where("id = ?", session.ID).
		Update("last_seen_at", now).Error; err != nil {
		s.log.Warn("session touch failed", zap.Error(err))
	}

	return authdomain.Identity{
		TenantID:  session.TenantID,
		SessionID: session.ID,
	}, nil
}
