package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/firsttechlabs/simpleinvoice-be/internal/audit/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/logger"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		ActorType:  string(auditdomain.ActorTypeSystem),
		Action:     action,
		TargetType: strings.TrimSpace(targetType),
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  time.Now().UTC(),
	}

	if tenantID, ok := tenantcontext.TenantIDFromContext(ctx); ok {
		entry.TenantID = &tenantID
		entry.ActorType = string(auditdomain.ActorTypeTenant)
		actor := tenantID.String()
		entry.ActorID = &actor
	}

	for key, value := range metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		entry.Metadata[key] = value
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("audit insert failed",
			zap.String("action", action),
			zap.Any("metadata", logger.MaskJSON(entry.Metadata)),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	if filter.TenantID == 0 {
		if tenantID, ok := tenantcontext.TenantIDFromContext(ctx); ok {
			filter.TenantID = tenantID
		}
	}
	return s.repo.List(ctx, s.db, filter)
}
