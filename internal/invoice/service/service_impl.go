package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	customerdomain "github.com/firsttechlabs/simpleinvoice-be/internal/customer/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/events"
	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/mailer"
	"github.com/firsttechlabs/simpleinvoice-be/internal/money"
	"github.com/firsttechlabs/simpleinvoice-be/internal/observability/metrics"
	"github.com/firsttechlabs/simpleinvoice-be/internal/sequence"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/firsttechlabs/simpleinvoice-be/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Outbox   *events.Outbox
	Notifier mailer.Notifier
	Metrics  *metrics.InvoiceMetrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	outbox   *events.Outbox
	notifier mailer.Notifier
	metrics  *metrics.InvoiceMetrics
}

func NewService(p Params) invoicedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		outbox:   p.Outbox,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (*invoicedomain.Invoice, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidTenant
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return nil, invoicedomain.ErrInvalidCustomer
	}

	var customer customerdomain.Customer
	err = s.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrInvalidCustomer
		}
		return nil, err
	}

	now := s.clock.Now()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}
	dueDate := req.DueDate
	if dueDate.IsZero() || dueDate.Before(issueDate) {
		return nil, invoicedomain.ErrInvalidDates
	}

	taxRate := req.TaxRate
	if taxRate == nil {
		var settings tenantdomain.TenantSettings
		err := s.db.WithContext(ctx).
			Where("tenant_id = ?", tenantID).
			First(&settings).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, sequence.ErrSequenceMissing
			}
			return nil, err
		}
		taxRate = &settings.DefaultTaxRate
	}

	lines := make([]money.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, money.LineInput{
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	totals, err := money.Compute(lines, *taxRate)
	if err != nil {
		s.incCreated("invalid")
		return nil, err
	}

	invoice := invoicedomain.Invoice{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		CustomerID: customerID,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Status:     invoicedomain.StatusUnpaid,
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Total:      totals.Total,
		TaxRate:    *taxRate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		invoice.Notes = &notes
	}
	for i, item := range req.Items {
		invoice.Items = append(invoice.Items, invoicedomain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			Price:       item.Price,
			Amount:      totals.ItemAmounts[i],
			CreatedAt:   now,
		})
	}

	// Number allocation and the invoice insert share one transaction:
	// neither a consumed number without an invoice nor the reverse can
	// ever be observed.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alloc, err := sequence.Allocate(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		invoice.Number = alloc.Number

		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID: tenantID,
			Type:     events.EventInvoiceCreated,
			Payload: events.InvoicePayload{
				InvoiceID:  invoice.ID.String(),
				Number:     invoice.Number,
				CustomerID: customerID.String(),
				Status:     string(invoice.Status),
				Total:      invoice.Total.StringFixed(2),
			}.ToMap(),
			DedupeKey: "invoice.created:" + invoice.ID.String(),
		})
	})
	if err != nil {
		s.incCreated("failed")
		return nil, err
	}
	s.incCreated("success")

	s.notifyCreated(invoice, customer)

	return &invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidTenant
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidInvoiceID
	}
	return s.load(ctx, s.db, tenantID, invoiceID)
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidTenant
	}

	query := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("tenant_id = ?", tenantID)
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, ok := invoicedomain.ParseStatus(raw)
		if !ok {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidCustomer
		}
		query = query.Where("customer_id = ?", customerID)
	}
	if req.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *req.IssuedFrom)
	}
	if req.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *req.IssuedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	offset := pagination.DecodeToken(req.PageToken)
	size := pagination.NormalizeSize(req.PageSize)

	var records []invoicedomain.Invoice
	if err := query.Preload("Items").
		Order("issue_date DESC, id DESC").
		Offset(offset).
		Limit(size).
		Find(&records).Error; err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	resp := invoicedomain.ListInvoiceResponse{Invoices: records}
	resp.TotalCount = total
	if offset+len(records) < int(total) {
		resp.NextPageToken = pagination.EncodeToken(offset + len(records))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req invoicedomain.UpdateInvoiceRequest) (*invoicedomain.Invoice, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidTenant
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, invoicedomain.ErrInvalidInvoiceID
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		// payment_note is an alias for notes; when both appear the
		// alias wins.
		notes := req.Notes
		if req.PaymentNote != nil {
			notes = req.PaymentNote
		}
		hasFieldChanges := notes != nil || req.DueDate != nil

		// Field mutations are checked against the state the invoice is
		// in now: PAID and CANCELLED invoices only accept the
		// cancellation transition, nothing else.
		if hasFieldChanges && !invoicedomain.FieldsMutable(invoice.Status) {
			return invoicedomain.ErrInvoiceImmutable
		}

		previous := invoice.Status
		if req.Status != nil {
			if err := invoicedomain.ApplyStatus(invoice, *req.Status, s.clock.Now()); err != nil {
				s.incTransition(string(*req.Status), "rejected")
				return err
			}
		}

		if notes != nil {
			trimmed := strings.TrimSpace(*notes)
			if trimmed == "" {
				invoice.Notes = nil
			} else {
				invoice.Notes = &trimmed
			}
		}
		if req.DueDate != nil {
			if req.DueDate.Before(invoice.IssueDate) {
				return invoicedomain.ErrInvalidDates
			}
			invoice.DueDate = *req.DueDate
		}
		invoice.UpdatedAt = s.clock.Now()

		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}

		if req.Status != nil && invoice.Status != previous {
			s.incTransition(string(invoice.Status), "applied")
			s.observeTransition(invoice)
			if eventType := transitionEvent(invoice.Status); eventType != "" {
				if err := s.outbox.PublishTx(ctx, tx, events.Event{
					TenantID: tenantID,
					Type:     eventType,
					Payload: events.InvoicePayload{
						InvoiceID: invoice.ID.String(),
						Number:    invoice.Number,
						Status:    string(invoice.Status),
					}.ToMap(),
					DedupeKey: eventType + ":" + invoice.ID.String(),
				}); err != nil {
					return err
				}
			}
		}

		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return invoicedomain.ErrInvalidTenant
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return invoicedomain.ErrInvalidInvoiceID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		// Paid and overdue invoices carry legal weight; they can be
		// cancelled but never removed. The consumed number is never
		// reused either way.
		if invoice.Status == invoicedomain.StatusPaid || invoice.Status == invoicedomain.StatusOverdue {
			return invoicedomain.ErrInvoiceNotDeletable
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&invoicedomain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", tenantID, invoice.ID).
			Delete(&invoicedomain.Invoice{}).Error
	})
}

func (s *Service) AttachPaymentProof(ctx context.Context, id string, proofURL string) (*invoicedomain.Invoice, error) {
	tenantID, ok := tenantcontext.TenantIDFromContext(ctx)
	if !ok {
		return nil, invoicedomain.ErrInvalidTenant
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidInvoiceID
	}
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return nil, invoicedomain.ErrInvalidProof
	}

	var updated *invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.load(ctx, tx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !invoicedomain.FieldsMutable(invoice.Status) {
			return invoicedomain.ErrInvoiceImmutable
		}

		invoice.PaymentProof = &proofURL
		invoice.UpdatedAt = s.clock.Now()
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			TenantID: tenantID,
			Type:     events.EventProofAttached,
			Payload: events.InvoicePayload{
				InvoiceID: invoice.ID.String(),
				Number:    invoice.Number,
			}.ToMap(),
			DedupeKey: events.EventProofAttached + ":" + invoice.ID.String(),
		}); err != nil {
			return err
		}

		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) load(ctx context.Context, db *gorm.DB, tenantID, invoiceID snowflake.ID) (*invoicedomain.Invoice, error) {
	var invoice invoicedomain.Invoice
	err := db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, invoiceID).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicedomain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *Service) notifyCreated(invoice invoicedomain.Invoice, customer customerdomain.Customer) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var tenant tenantdomain.Tenant
		companyName := ""
		if err := s.db.WithContext(ctx).
			Where("id = ?", invoice.TenantID).
			First(&tenant).Error; err == nil {
			companyName = tenant.CompanyName
		}

		err := s.notifier.SendInvoice(ctx, mailer.InvoiceNotification{
			RecipientName:  customer.Name,
			RecipientEmail: customer.Email,
			CompanyName:    companyName,
			Invoice:        &invoice,
		})
		if err != nil {
			s.log.Warn("invoice notification failed",
				zap.String("invoice_number", invoice.Number),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) incCreated(result string) {
	if s.metrics != nil {
		s.metrics.IncInvoiceCreated(result)
	}
}

func (s *Service) incTransition(toStatus, result string) {
	if s.metrics != nil {
		s.metrics.IncStatusTransition(toStatus, result)
	}
}

func (s *Service) observeTransition(invoice *invoicedomain.Invoice) {
	if s.metrics == nil {
		return
	}
	if invoice.Status == invoicedomain.StatusPaid && invoice.PaidAt != nil {
		s.metrics.ObservePaymentLag(invoice.PaidAt.Sub(invoice.IssueDate))
	}
}

func transitionEvent(status invoicedomain.Status) string {
	switch status {
	case invoicedomain.StatusPaid:
		return events.EventInvoicePaid
	case invoicedomain.StatusOverdue:
		return events.EventInvoiceOverdue
	case invoicedomain.StatusCancelled:
		return events.EventInvoiceCancelled
	default:
		return ""
	}
}
