package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	auditdomain "github.com/firsttechlabs/simpleinvoice-be/internal/audit/domain"
	authdomain "github.com/firsttechlabs/simpleinvoice-be/internal/auth/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/config"
	customerdomain "github.com/firsttechlabs/simpleinvoice-be/internal/customer/domain"
	dashboarddomain "github.com/firsttechlabs/simpleinvoice-be/internal/dashboard/domain"
	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/invoice/render"
	licensedomain "github.com/firsttechlabs/simpleinvoice-be/internal/license/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/logger"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/metrics"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/tracing"
	"github.com/firsttechlabs/simpleinvoice-be/internal/storage"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Cfg          config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	TenantSvc    tenantdomain.Service
	AuthSvc      authdomain.Service
	CustomerSvc  customerdomain.Service
	InvoiceSvc   invoicedomain.Service
	DashboardSvc dashboarddomain.Service
	LicenseSvc   licensedomain.Service
	AuditSvc     auditdomain.Service `optional:"true"`
	Store        storage.ObjectStore
	Renderer     render.Renderer
}

type Server struct {
	cfg          config.Config
	log          *zap.Logger
	db           *gorm.DB
	tenantSvc    tenantdomain.Service
	authSvc      authdomain.Service
	customerSvc  customerdomain.Service
	invoiceSvc   invoicedomain.Service
	dashboardSvc dashboarddomain.Service
	licenseSvc   licensedomain.Service
	auditSvc     auditdomain.Service
	store        storage.ObjectStore
	renderer     render.Renderer
	loginLimiter *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		db:           p.DB,
		tenantSvc:    p.TenantSvc,
		authSvc:      p.AuthSvc,
		customerSvc:  p.CustomerSvc,
		invoiceSvc:   p.InvoiceSvc,
		dashboardSvc: p.DashboardSvc,
		licenseSvc:   p.LicenseSvc,
		auditSvc:     p.AuditSvc,
		store:        p.Store,
		renderer:     p.Renderer,
		loginLimiter: newRateLimiter(10, time.Minute),
	}
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/readyz", "/metrics"},
	}))
	engine.Use(tracing.GinMiddleware(cfg.Telemetry.ServiceName, "/healthz", "/readyz", "/metrics"))
	if httpMetrics != nil {
		engine.Use(metrics.GinMiddleware(httpMetrics))
	}
	return engine
}

func RegisterRoutes(engine *gin.Engine, s *Server) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/readyz", s.Readyz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	v1.POST("/auth/register", s.Register)
	v1.POST("/auth/login", s.Login)

	authed := v1.Group("")
	authed.Use(s.SessionRequired())
	{
		authed.POST("/auth/logout", s.Logout)
		authed.GET("/me", s.GetProfile)
		authed.PATCH("/me", s.UpdateProfile)
		authed.PUT("/me/password", s.UpdatePassword)
		authed.GET("/settings", s.GetSettings)
		authed.PATCH("/settings", s.UpdateSettings)

		authed.POST("/customers", s.CreateCustomer)
		authed.GET("/customers", s.ListCustomers)
		authed.GET("/customers/:id", s.GetCustomerByID)
		authed.PATCH("/customers/:id", s.UpdateCustomer)
		authed.DELETE("/customers/:id", s.DeleteCustomer)

		authed.POST("/invoices", s.CreateInvoice)
		authed.GET("/invoices", s.ListInvoices)
		authed.GET("/invoices/:id", s.GetInvoiceByID)
		authed.PATCH("/invoices/:id", s.UpdateInvoice)
		authed.DELETE("/invoices/:id", s.DeleteInvoice)
		authed.POST("/invoices/:id/payment-proof", s.UploadPaymentProof)
		authed.GET("/invoices/:id/html", s.RenderInvoiceHTML)

		authed.GET("/dashboard/summary", s.GetDashboardSummary)
		authed.GET("/dashboard/revenue", s.GetRevenueSeries)
		authed.GET("/dashboard/activity", s.ListActivity)

		authed.GET("/license", s.GetLicense)
		authed.POST("/license/redeem", s.RedeemPromoCode)
	}

	if !s.cfg.IsProduction() {
		engine.POST("/internal/test/cleanup", s.TestCleanup)
	}
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func (s *Server) audit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	var target *string
	if targetID != "" {
		target = &targetID
	}
	_ = s.auditSvc.AuditLog(c.Request.Context(), action, targetType, target, metadata)
}

func parseOptionalTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	ts = ts.UTC()
	if endOfDay {
		ts = ts.Add(24*time.Hour - time.Nanosecond)
	}
	return &ts, nil
}
