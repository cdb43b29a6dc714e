package observability

import (
	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/metrics"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module wires tracing and metrics from the process configuration.
var Module = fx.Module("observability",
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.Telemetry.Enabled,
			ServiceName:      cfg.Telemetry.ServiceName,
			ServiceVersion:   cfg.Telemetry.ServiceVersion,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.Telemetry.ExporterEndpoint,
			ExporterProtocol: cfg.Telemetry.ExporterProtocol,
			SamplingRatio:    cfg.Telemetry.SamplingRatio,
		}
	}),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(tracing.NewProvider),
	fx.Invoke(func(_ *sdktrace.TracerProvider) {}),
	fx.Provide(func() metric.MeterProvider {
		return otel.GetMeterProvider()
	}),
	fx.Provide(metrics.NewHTTPMetrics),
	fx.Provide(metrics.InvoiceWithConfig),
)
