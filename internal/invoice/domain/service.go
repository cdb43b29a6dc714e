package domain

import (
	"context"
	"errors"
	"time"

	"github.com/firsttechlabs/simpleinvoice-be/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateItemRequest struct {
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type CreateInvoiceRequest struct {
	CustomerID string              `json:"customer_id"`
	IssueDate  time.Time           `json:"issue_date"`
	DueDate    time.Time           `json:"due_date"`
	TaxRate    *decimal.Decimal    `json:"tax_rate"`
	Notes      string              `json:"notes"`
	Items      []CreateItemRequest `json:"items"`
}

// UpdateInvoiceRequest carries a status change and/or field mutations.
// PaymentNote is an alias for Notes kept for older clients; when both
// are present PaymentNote wins.
type UpdateInvoiceRequest struct {
	ID          string
	Status      *Status    `json:"status"`
	Notes       *string    `json:"notes"`
	PaymentNote *string    `json:"payment_note"`
	DueDate     *time.Time `json:"due_date"`
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int32
	Status     string
	CustomerID string
	IssuedFrom *time.Time
	IssuedTo   *time.Time
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (*Invoice, error)
	Delete(ctx context.Context, id string) error
	AttachPaymentProof(ctx context.Context, id string, proofURL string) (*Invoice, error)
}

var (
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidInvoiceID    = errors.New("invalid_invoice_id")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidDates        = errors.New("invalid_dates")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidProof        = errors.New("invalid_payment_proof")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrInvoiceImmutable    = errors.New("invoice_immutable")
	ErrInvoiceNotDeletable = errors.New("invoice_not_deletable")
)
