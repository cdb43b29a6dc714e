package overdue

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	"github.com/firsttechlabs/simpleinvoice-be/internal/events"
	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	Outbox  *events.Outbox
	Config  Config                  `optional:"true"`
	Metrics *metrics.InvoiceMetrics `optional:"true"`
}

// Worker flips unpaid invoices past their due date to OVERDUE.
type Worker struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	outbox  *events.Outbox
	cfg     Config
	metrics *metrics.InvoiceMetrics
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:      p.DB,
		log:     p.Log.Named("overdue.worker"),
		clock:   p.Clock,
		outbox:  p.Outbox,
		cfg:     p.Config.withDefaults(),
		metrics: p.Metrics,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("overdue sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce sweeps one batch and reports how many invoices were flipped.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	now := w.clock.Now()
	swept := 0

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type candidate struct {
			ID       snowflake.ID
			TenantID snowflake.ID
			Number   string
			DueDate  time.Time
		}

		query := `SELECT id, tenant_id, number, due_date
			 FROM invoices
			 WHERE status = ? AND due_date < ?
			 ORDER BY due_date ASC
			 LIMIT ?`
		// Row locks keep concurrent sweepers from double-flipping;
		// sqlite has no row locks and serializes writers anyway.
		if tx.Dialector.Name() == "postgres" {
			query += " FOR UPDATE SKIP LOCKED"
		}

		var candidates []candidate
		err := tx.Raw(query, invoicedomain.StatusUnpaid, now, w.cfg.BatchSize).
			Scan(&candidates).Error
		if err != nil {
			return err
		}

		for _, row := range candidates {
			result := tx.Model(&invoicedomain.Invoice{}).
				Where("id = ? AND status = ?", row.ID, invoicedomain.StatusUnpaid).
				Updates(map[string]any{
					"status":     invoicedomain.StatusOverdue,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}

			err := w.outbox.PublishTx(ctx, tx, events.Event{
				TenantID: row.TenantID,
				Type:     events.EventInvoiceOverdue,
				Payload: events.InvoicePayload{
					InvoiceID: row.ID.String(),
					Number:    row.Number,
					Status:    string(invoicedomain.StatusOverdue),
				}.ToMap(),
				DedupeKey: events.EventInvoiceOverdue + ":" + row.ID.String(),
			})
			if err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return swept, err
	}

	w.report(ctx, now, swept)
	return swept, nil
}

func (w *Worker) report(ctx context.Context, now time.Time, swept int) {
	if swept > 0 {
		w.log.Info("overdue sweep completed", zap.Int("swept", swept))
	}
	if w.metrics == nil {
		return
	}
	w.metrics.IncOverdueSwept("success", swept)

	var backlog int64
	err := w.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("status = ?", invoicedomain.StatusOverdue).
		Count(&backlog).Error
	if err != nil {
		return
	}
	w.metrics.SetOverdueBacklog(int(backlog))

	var oldest time.Time
	err = w.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("COALESCE(MIN(due_date), ?)", now).
		Where("status = ?", invoicedomain.StatusOverdue).
		Scan(&oldest).Error
	if err != nil {
		return
	}
	w.metrics.SetOverdueBacklogOldest(now.Sub(oldest))
}
