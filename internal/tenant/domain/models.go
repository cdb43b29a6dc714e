package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tenant is a user account and the unit of data isolation. Every
// customer, invoice and sequence row hangs off a tenant id.
type Tenant struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	DisplayName  string       `gorm:"type:text;not null" json:"display_name"`
	CompanyName  string       `gorm:"type:text" json:"company_name"`
	CompanyAddr  string       `gorm:"column:company_address;type:text" json:"company_address"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// TenantSettings holds per-tenant invoicing defaults and the invoice
// number sequence. The counter is only ever advanced by the sequencer,
// inside the transaction that inserts the invoice.
type TenantSettings struct {
	TenantID          snowflake.ID    `gorm:"primaryKey" json:"tenant_id"`
	InvoicePrefix     string          `gorm:"type:text;not null;default:'INV'" json:"invoice_prefix"`
	NextInvoiceNumber int64           `gorm:"not null;default:1" json:"next_invoice_number"`
	DefaultTaxRate    decimal.Decimal `gorm:"type:numeric(6,3);not null;default:0" json:"default_tax_rate"`
	Currency          string          `gorm:"type:text;not null;default:'USD'" json:"currency"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (TenantSettings) TableName() string { return "tenant_settings" }
