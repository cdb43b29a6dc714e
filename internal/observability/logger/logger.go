package logger

import (
	"context"
	"strings"

	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	obscontext "github.com/firsttechlabs/simpleinvoice-be/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the process logger and replaces zap globals.
var Module = fx.Module("logger",
	fx.Provide(New),
	fx.Invoke(func(log *zap.Logger) {
		zap.ReplaceGlobals(log)
	}),
)

// New builds the process logger for the configured environment.
func New(cfg config.Config) (*zap.Logger, error) {
	if strings.EqualFold(cfg.Environment, "development") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// FromContext returns the global logger enriched with request, tenant
// and trace identifiers carried by ctx.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	fields := make([]zap.Field, 0, 4)
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if tenantID := obscontext.TenantIDFromContext(ctx); tenantID != "" {
		fields = append(fields, zap.String("tenant_id", tenantID))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}
