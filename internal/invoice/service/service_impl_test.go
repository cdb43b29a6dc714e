package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/firsttechlabs/simpleinvoice-be/internal/clock"
	customerdomain "github.com/firsttechlabs/simpleinvoice-be/internal/customer/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/events"
	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	"github.com/firsttechlabs/simpleinvoice-be/internal/mailer"
	"github.com/firsttechlabs/simpleinvoice-be/internal/money"
	"github.com/firsttechlabs/simpleinvoice-be/internal/tenantcontext"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testTenantID snowflake.ID = 1

func TestCreateInvoiceAllocatesNumberAndTotals(t *testing.T) {
	svc, db := newTestService(t, "create_invoice")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)

	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customerID.String(),
		IssueDate:  issue,
		DueDate:    issue.AddDate(0, 0, 14),
		Items: []invoicedomain.CreateItemRequest{
			{Description: "Design work", Quantity: 2, Price: decimal.NewFromInt(100)},
			{Description: "Hosting", Quantity: 1, Price: decimal.NewFromInt(50)},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if invoice.Number != "INV00007" {
		t.Fatalf("expected number INV00007, got %s", invoice.Number)
	}
	if invoice.Status != invoicedomain.StatusUnpaid {
		t.Fatalf("expected status UNPAID, got %s", invoice.Status)
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected subtotal 250, got %s", invoice.Subtotal)
	}
	if !invoice.Tax.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected tax 25, got %s", invoice.Tax)
	}
	if !invoice.Total.Equal(decimal.NewFromInt(275)) {
		t.Fatalf("expected total 275, got %s", invoice.Total)
	}
	if len(invoice.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(invoice.Items))
	}

	var settings tenantdomain.TenantSettings
	if err := db.Where("tenant_id = ?", testTenantID).First(&settings).Error; err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.NextInvoiceNumber != 8 {
		t.Fatalf("expected counter 8, got %d", settings.NextInvoiceNumber)
	}

	var eventCount int64
	err = db.Table("invoice_events").
		Where("tenant_id = ? AND event_type = ?", testTenantID, events.EventInvoiceCreated).
		Count(&eventCount).Error
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected 1 created event, got %d", eventCount)
	}
}

func TestCreateInvoiceUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t, "create_unknown_customer")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)

	_, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: "999",
		DueDate:    time.Now().UTC().AddDate(0, 0, 7),
		Items: []invoicedomain.CreateItemRequest{
			{Description: "Work", Quantity: 1, Price: decimal.NewFromInt(10)},
		},
	})
	if !errors.Is(err, invoicedomain.ErrInvalidCustomer) {
		t.Fatalf("expected invalid customer, got %v", err)
	}
}

func TestCreateInvoiceDueBeforeIssue(t *testing.T) {
	svc, db := newTestService(t, "create_bad_dates")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)

	issue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customerID.String(),
		IssueDate:  issue,
		DueDate:    issue.AddDate(0, 0, -1),
		Items: []invoicedomain.CreateItemRequest{
			{Description: "Work", Quantity: 1, Price: decimal.NewFromInt(10)},
		},
	})
	if !errors.Is(err, invoicedomain.ErrInvalidDates) {
		t.Fatalf("expected invalid dates, got %v", err)
	}
}

func TestCreateInvoiceRejectsBadItemsBeforeAllocation(t *testing.T) {
	svc, db := newTestService(t, "create_bad_items")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)

	_, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customerID.String(),
		DueDate:    time.Now().UTC().AddDate(0, 0, 7),
		Items: []invoicedomain.CreateItemRequest{
			{Description: "Work", Quantity: 0, Price: decimal.NewFromInt(10)},
		},
	})
	if !errors.Is(err, money.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}

	var settings tenantdomain.TenantSettings
	if err := db.Where("tenant_id = ?", testTenantID).First(&settings).Error; err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.NextInvoiceNumber != 7 {
		t.Fatalf("expected counter untouched at 7, got %d", settings.NextInvoiceNumber)
	}
}

func TestUpdateStatusToPaidStampsPaidAtOnce(t *testing.T) {
	svc, db := newTestService(t, "update_paid")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)
	invoice := seedInvoice(t, svc, ctx, customerID)

	firstPaid := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	svc.clock = clock.Fixed(firstPaid)
	paid := invoicedomain.StatusPaid
	updated, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Status: &paid})
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(firstPaid) {
		t.Fatalf("expected paid_at %v, got %v", firstPaid, updated.PaidAt)
	}

	svc.clock = clock.Fixed(firstPaid.Add(48 * time.Hour))
	again, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Status: &paid})
	if err != nil {
		t.Fatalf("repeat mark paid: %v", err)
	}
	if again.PaidAt == nil || !again.PaidAt.Equal(firstPaid) {
		t.Fatalf("expected original paid_at preserved, got %v", again.PaidAt)
	}

	var eventCount int64
	err = db.Table("invoice_events").
		Where("tenant_id = ? AND event_type = ?", testTenantID, events.EventInvoicePaid).
		Count(&eventCount).Error
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != 1 {
		t.Fatalf("expected a single paid event, got %d", eventCount)
	}
}

func TestUpdateFieldsOnPaidRejected(t *testing.T) {
	svc, db := newTestService(t, "update_paid_fields")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)
	invoice := seedInvoice(t, svc, ctx, customerID)

	paid := invoicedomain.StatusPaid
	if _, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Status: &paid}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	notes := "late payment"
	_, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Notes: &notes})
	if !errors.Is(err, invoicedomain.ErrInvoiceImmutable) {
		t.Fatalf("expected immutable, got %v", err)
	}
}

func TestUpdateCancelledIsTerminal(t *testing.T) {
	svc, db := newTestService(t, "update_cancelled")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)
	invoice := seedInvoice(t, svc, ctx, customerID)

	cancelled := invoicedomain.StatusCancelled
	if _, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Status: &cancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	for _, target := range []invoicedomain.Status{
		invoicedomain.StatusUnpaid,
		invoicedomain.StatusPaid,
		invoicedomain.StatusOverdue,
		invoicedomain.StatusCancelled,
	} {
		target := target
		_, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Status: &target})
		if !errors.Is(err, invoicedomain.ErrInvalidTransition) {
			t.Fatalf("expected invalid transition from CANCELLED to %s, got %v", target, err)
		}
	}

	notes := "reopening"
	_, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Notes: &notes})
	if !errors.Is(err, invoicedomain.ErrInvoiceImmutable) {
		t.Fatalf("expected immutable, got %v", err)
	}
}

func TestUpdatePaymentNoteAliasWins(t *testing.T) {
	svc, db := newTestService(t, "update_alias")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)
	invoice := seedInvoice(t, svc, ctx, customerID)

	notes := "from notes"
	paymentNote := "from payment_note"
	updated, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{
		ID:          invoice.ID.String(),
		Notes:       &notes,
		PaymentNote: &paymentNote,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != paymentNote {
		t.Fatalf("expected payment_note to win, got %v", updated.Notes)
	}
}

func TestDeleteOnlyBeforePayment(t *testing.T) {
	svc, db := newTestService(t, "delete_rules")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)

	unpaid := seedInvoice(t, svc, ctx, customerID)
	if err := svc.Delete(ctx, unpaid.ID.String()); err != nil {
		t.Fatalf("delete unpaid: %v", err)
	}
	var itemCount int64
	if err := db.Model(&invoicedomain.InvoiceItem{}).Where("invoice_id = ?", unpaid.ID).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("expected items removed, got %d", itemCount)
	}

	paidInvoice := seedInvoice(t, svc, ctx, customerID)
	paid := invoicedomain.StatusPaid
	if _, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: paidInvoice.ID.String(), Status: &paid}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	err := svc.Delete(ctx, paidInvoice.ID.String())
	if !errors.Is(err, invoicedomain.ErrInvoiceNotDeletable) {
		t.Fatalf("expected not deletable, got %v", err)
	}
}

func TestAttachPaymentProof(t *testing.T) {
	svc, db := newTestService(t, "attach_proof")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)
	invoice := seedInvoice(t, svc, ctx, customerID)

	if _, err := svc.AttachPaymentProof(ctx, invoice.ID.String(), ""); !errors.Is(err, invoicedomain.ErrInvalidProof) {
		t.Fatalf("expected invalid proof, got %v", err)
	}

	updated, err := svc.AttachPaymentProof(ctx, invoice.ID.String(), "uploads/1/proof.png")
	if err != nil {
		t.Fatalf("attach proof: %v", err)
	}
	if updated.PaymentProof == nil || *updated.PaymentProof != "uploads/1/proof.png" {
		t.Fatalf("expected proof stored, got %v", updated.PaymentProof)
	}

	paid := invoicedomain.StatusPaid
	if _, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: invoice.ID.String(), Status: &paid}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	_, err = svc.AttachPaymentProof(ctx, invoice.ID.String(), "uploads/1/other.png")
	if !errors.Is(err, invoicedomain.ErrInvoiceImmutable) {
		t.Fatalf("expected immutable, got %v", err)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, db := newTestService(t, "list_invoices")
	customerID := seedCustomer(t, db, "Acme Corp", "billing@acme.test")
	ctx := tenantcontext.WithTenantID(context.Background(), testTenantID)

	first := seedInvoice(t, svc, ctx, customerID)
	seedInvoice(t, svc, ctx, customerID)
	seedInvoice(t, svc, ctx, customerID)

	paid := invoicedomain.StatusPaid
	if _, err := svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: first.ID.String(), Status: &paid}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	resp, err := svc.List(ctx, invoicedomain.ListInvoiceRequest{Status: "PAID"})
	if err != nil {
		t.Fatalf("list paid: %v", err)
	}
	if resp.TotalCount != 1 || len(resp.Invoices) != 1 {
		t.Fatalf("expected 1 paid invoice, got total=%d len=%d", resp.TotalCount, len(resp.Invoices))
	}

	page, err := svc.List(ctx, invoicedomain.ListInvoiceRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(page.Invoices) != 2 || page.NextPageToken == "" {
		t.Fatalf("expected 2 invoices and a next token, got len=%d token=%q", len(page.Invoices), page.NextPageToken)
	}

	rest, err := svc.List(ctx, invoicedomain.ListInvoiceRequest{PageSize: 2, PageToken: page.NextPageToken})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(rest.Invoices) != 1 || rest.NextPageToken != "" {
		t.Fatalf("expected final page of 1, got len=%d token=%q", len(rest.Invoices), rest.NextPageToken)
	}

	if _, err := svc.List(ctx, invoicedomain.ListInvoiceRequest{Status: "SHIPPED"}); !errors.Is(err, invoicedomain.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func newTestService(t *testing.T, name string) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:invoice_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&tenantdomain.Tenant{},
		&tenantdomain.TenantSettings{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS invoice_events (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT,
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create invoice_events: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_invoice_events_dedupe
		 ON invoice_events (tenant_id, dedupe_key)`,
	).Error; err != nil {
		t.Fatalf("create dedupe index: %v", err)
	}

	tenant := tenantdomain.Tenant{
		ID:           testTenantID,
		Email:        "owner@acme.test",
		PasswordHash: "unused",
		DisplayName:  "Owner",
		CompanyName:  "Acme Corp",
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	settings := tenantdomain.TenantSettings{
		TenantID:          testTenantID,
		InvoicePrefix:     "INV",
		NextInvoiceNumber: 7,
		DefaultTaxRate:    decimal.NewFromInt(10),
		Currency:          "USD",
		UpdatedAt:         time.Now().UTC(),
	}
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	svc := &Service{
		db:       db,
		log:      zap.NewNop(),
		genID:    node,
		clock:    clock.SystemClock{},
		outbox:   events.NewOutbox(db, node),
		notifier: mailer.NoopNotifier{},
	}
	return svc, db
}

func seedCustomer(t *testing.T, db *gorm.DB, name, email string) snowflake.ID {
	t.Helper()
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	customer := customerdomain.Customer{
		ID:       node.Generate(),
		TenantID: testTenantID,
		Name:     name,
		Email:    email,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer.ID
}

func seedInvoice(t *testing.T, svc *Service, ctx context.Context, customerID snowflake.ID) *invoicedomain.Invoice {
	t.Helper()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	invoice, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customerID.String(),
		IssueDate:  issue,
		DueDate:    issue.AddDate(0, 0, 14),
		Items: []invoicedomain.CreateItemRequest{
			{Description: "Work", Quantity: 1, Price: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return invoice
}
