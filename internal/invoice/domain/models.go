package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Invoice is the persisted invoice record. Number is the tenant-scoped
// human-readable identifier; ID is the internal one. Monetary columns
// are decimals, never floats.
type Invoice struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_invoices_tenant_number,priority:1" json:"tenant_id"`
	CustomerID   snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Number       string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_tenant_number,priority:2" json:"number"`
	IssueDate    time.Time       `gorm:"not null" json:"issue_date"`
	DueDate      time.Time       `gorm:"not null" json:"due_date"`
	Status       Status          `gorm:"type:text;not null;default:'UNPAID';index" json:"status"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"subtotal"`
	Tax          decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"tax"`
	Total        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total"`
	TaxRate      decimal.Decimal `gorm:"type:numeric(6,3);not null" json:"tax_rate"`
	Notes        *string         `gorm:"type:text" json:"notes,omitempty"`
	PaymentProof *string         `gorm:"type:text" json:"payment_proof,omitempty"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	Items        []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line of its parent invoice, created atomically
// with it. Amount is always quantity times price.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"-"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"price"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,4);not null" json:"amount"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
