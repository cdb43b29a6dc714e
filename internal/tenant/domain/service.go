package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	CompanyName string `json:"company_name"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	CompanyName *string `json:"company_name"`
	CompanyAddr *string `json:"company_address"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type UpdateSettingsRequest struct {
	InvoicePrefix  *string          `json:"invoice_prefix"`
	DefaultTaxRate *decimal.Decimal `json:"default_tax_rate"`
	Currency       *string          `json:"currency"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Tenant, error)
	GetByID(ctx context.Context, id string) (*Tenant, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Tenant, error)
	UpdatePassword(ctx context.Context, req UpdatePasswordRequest) error
	GetSettings(ctx context.Context) (*TenantSettings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*TenantSettings, error)
}

var (
	ErrInvalidTenant    = errors.New("invalid_tenant")
	ErrTenantNotFound   = errors.New("tenant_not_found")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrEmailTaken       = errors.New("email_taken")
	ErrInvalidPassword  = errors.New("invalid_password")
	ErrPasswordMismatch = errors.New("password_mismatch")
	ErrInvalidPrefix    = errors.New("invalid_invoice_prefix")
	ErrInvalidTaxRate   = errors.New("invalid_tax_rate")
	ErrInvalidCurrency  = errors.New("invalid_currency")
)
