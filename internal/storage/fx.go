package storage

import (
	"context"
	"strings"

	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(func(cfg config.Config, log *zap.Logger) (ObjectStore, error) {
		switch strings.ToLower(strings.TrimSpace(cfg.Storage.Provider)) {
		case "gcs":
			return NewGCSStore(context.Background(), cfg)
		default:
			log.Info("using local object store", zap.String("dir", cfg.Storage.LocalDir))
			return NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicURL)
		}
	}),
)
