package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/dashboard/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/events"
	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSeriesMonths = 12
	maxSeriesMonths     = 36
	defaultActivity     = 20
	maxActivity         = 100
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

func (s *Service) GetSummary(ctx context.Context) (domain.Summary, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return domain.Summary{}, domain.ErrInvalidTenant
	}

	type statusRow struct {
		Status string
		Count  int64
		Total  decimal.Decimal
	}
	var rows []statusRow
	err := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		Outstanding: "0.00",
		Collected:   "0.00",
	}
	outstanding := decimal.Zero
	collected := decimal.Zero
	for _, row := range rows {
		summary.ByStatus = append(summary.ByStatus, domain.StatusBreakdown{
			Status: row.Status,
			Count:  row.Count,
			Total:  row.Total.StringFixed(2),
		})
		switch invoicedomain.Status(row.Status) {
		case invoicedomain.StatusUnpaid:
			summary.DraftedCount = row.Count
			outstanding = outstanding.Add(row.Total)
		case invoicedomain.StatusOverdue:
			summary.OverdueCount = row.Count
			outstanding = outstanding.Add(row.Total)
		case invoicedomain.StatusPaid:
			collected = collected.Add(row.Total)
		}
	}
	sort.Slice(summary.ByStatus, func(i, j int) bool {
		return summary.ByStatus[i].Status < summary.ByStatus[j].Status
	})
	summary.Outstanding = outstanding.StringFixed(2)
	summary.Collected = collected.StringFixed(2)

	err = s.db.WithContext(ctx).
		Table("customers").
		Where("tenant_id = ?", tenantID).
		Count(&summary.CustomerCount).Error
	if err != nil {
		return domain.Summary{}, err
	}

	var settings tenantdomain.TenantSettings
	err = s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Summary{}, err
	}
	summary.Currency = settings.Currency

	return summary, nil
}

func (s *Service) GetRevenueSeries(ctx context.Context, months int) (domain.RevenueSeriesResponse, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return domain.RevenueSeriesResponse{}, domain.ErrInvalidTenant
	}
	if months <= 0 {
		months = defaultSeriesMonths
	}
	if months > maxSeriesMonths {
		months = maxSeriesMonths
	}

	now := s.clock.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(months - 1), 0)

	type paidRow struct {
		PaidAt time.Time
		Total  decimal.Decimal
	}
	var rows []paidRow
	err := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("paid_at, total").
		Where("tenant_id = ? AND status = ? AND paid_at >= ?", tenantID, invoicedomain.StatusPaid, start).
		Scan(&rows).Error
	if err != nil {
		return domain.RevenueSeriesResponse{}, err
	}

	// Bucket in Go so the query stays portable across drivers.
	type bucket struct {
		revenue decimal.Decimal
		count   int64
	}
	buckets := map[string]*bucket{}
	for _, row := range rows {
		key := row.PaidAt.UTC().Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{revenue: decimal.Zero}
			buckets[key] = b
		}
		b.revenue = b.revenue.Add(row.Total)
		b.count++
	}

	resp := domain.RevenueSeriesResponse{Points: make([]domain.RevenuePoint, 0, months)}
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		point := domain.RevenuePoint{Month: month, Revenue: "0.00"}
		if b, ok := buckets[month]; ok {
			point.Revenue = b.revenue.StringFixed(2)
			point.Count = b.count
		}
		resp.Points = append(resp.Points, point)
	}

	var settings tenantdomain.TenantSettings
	err = s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RevenueSeriesResponse{}, err
	}
	resp.Currency = settings.Currency

	return resp, nil
}

func (s *Service) ListActivity(ctx context.Context, limit int) (domain.ActivityResponse, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return domain.ActivityResponse{}, domain.ErrInvalidTenant
	}
	if limit <= 0 {
		limit = defaultActivity
	}
	if limit > maxActivity {
		limit = maxActivity
	}

	type eventRow struct {
		EventType string
		Payload   string
		CreatedAt time.Time
	}
	var rows []eventRow
	err := s.db.WithContext(ctx).
		Table("invoice_events").
		Select("event_type, payload, created_at").
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return domain.ActivityResponse{}, err
	}

	resp := domain.ActivityResponse{Activity: make([]domain.ActivityEntry, 0, len(rows))}
	for _, row := range rows {
		resp.Activity = append(resp.Activity, domain.ActivityEntry{
			Message:    activityMessage(row.EventType),
			OccurredAt: row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func activityMessage(eventType string) string {
	switch eventType {
	case events.EventInvoiceCreated:
		return "Invoice created"
	case events.EventInvoicePaid:
		return "Invoice marked paid"
	case events.EventInvoiceOverdue:
		return "Invoice went overdue"
	case events.EventInvoiceCancelled:
		return "Invoice cancelled"
	case events.EventProofAttached:
		return "Payment proof attached"
	default:
		return fmt.Sprintf("Event %s", eventType)
	}
}
