package render

import (
	"time"

	customerdomain "github.com/firsttechlabs/simpleinvoice-be/internal/customer/domain"
	invoicedomain "github.com/firsttechlabs/simpleinvoice-be/internal/invoice/domain"
	tenantdomain "github.com/firsttechlabs/simpleinvoice-be/internal/tenant/domain"
)

// RenderInput is the deterministic input used for invoice rendering.
type RenderInput struct {
	Company  CompanyView
	Invoice  InvoiceView
	Customer CustomerView
	Items    []LineItemView
}

type CompanyView struct {
	Name    string
	Address string
	Email   string
}

type InvoiceView struct {
	Number    string
	Status    string
	IssueDate *time.Time
	DueDate   *time.Time
	Subtotal  string
	Tax       string
	TaxRate   string
	Total     string
	Currency  string
	Notes     string
}

type CustomerView struct {
	Name    string
	Email   string
	Address string
}

type LineItemView struct {
	Description string
	Quantity    int64
	Price       string
	Amount      string
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}

// BuildInput flattens domain records into the render view.
func BuildInput(
	invoice *invoicedomain.Invoice,
	customer *customerdomain.Customer,
	tenant *tenantdomain.Tenant,
	settings *tenantdomain.TenantSettings,
) RenderInput {
	input := RenderInput{
		Invoice: InvoiceView{
			Number:   invoice.Number,
			Status:   string(invoice.Status),
			Subtotal: invoice.Subtotal.StringFixed(2),
			Tax:      invoice.Tax.StringFixed(2),
			TaxRate:  invoice.TaxRate.String(),
			Total:    invoice.Total.StringFixed(2),
		},
	}
	issue := invoice.IssueDate
	due := invoice.DueDate
	input.Invoice.IssueDate = &issue
	input.Invoice.DueDate = &due
	if invoice.Notes != nil {
		input.Invoice.Notes = *invoice.Notes
	}
	if settings != nil {
		input.Invoice.Currency = settings.Currency
	}
	if tenant != nil {
		input.Company = CompanyView{
			Name:    tenant.CompanyName,
			Address: tenant.CompanyAddr,
			Email:   tenant.Email,
		}
	}
	if customer != nil {
		input.Customer = CustomerView{
			Name:    customer.Name,
			Email:   customer.Email,
			Address: customer.Address,
		}
	}
	for _, item := range invoice.Items {
		input.Items = append(input.Items, LineItemView{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
			Amount:      item.Amount.StringFixed(2),
		})
	}
	return input
}
