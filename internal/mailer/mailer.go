package mailer

import (
	"context"
	"fmt"
	"strings"

	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
)

// InvoiceNotification is the data the mailer needs to announce an invoice.
type InvoiceNotification struct {
	RecipientName  string
	RecipientEmail string
	CompanyName    string
	Invoice        *invoicedomain.Invoice
}

// Notifier delivers invoice notifications. Delivery failure is never
// fatal to the invoice lifecycle; callers log and move on.
type Notifier interface {
	SendInvoice(ctx context.Context, notification InvoiceNotification) error
}

// renderSubject and renderBody produce the plain-text representation.
// Rich template rendering is out of scope here.
func renderSubject(n InvoiceNotification) string {
	company := strings.TrimSpace(n.CompanyName)
	if company == "" {
		company = "SimpleInvoice"
	}
	return fmt.Sprintf("Invoice %s from %s", n.Invoice.Number, company)
}

func renderBody(n InvoiceNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", strings.TrimSpace(n.RecipientName))
	fmt.Fprintf(&b, "Invoice %s has been issued on %s.\n", n.Invoice.Number, n.Invoice.IssueDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Amount due: %s (due %s).\n\n", n.Invoice.Total.StringFixed(2), n.Invoice.DueDate.Format("2006-01-02"))
	for _, item := range n.Invoice.Items {
		fmt.Fprintf(&b, "  %s x%d — %s\n", item.Description, item.Quantity, item.Amount.StringFixed(2))
	}
	b.WriteString("\nThank you.\n")
	return b.String()
}

// NoopNotifier drops notifications; used when no API key is configured.
type NoopNotifier struct{}

func (NoopNotifier) SendInvoice(ctx context.Context, notification InvoiceNotification) error {
	return nil
}
