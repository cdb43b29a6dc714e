package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PromoCode is a redeemable code granting extra licensed time.
type PromoCode struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Code       string       `gorm:"type:text;not null;uniqueIndex:ux_promo_codes_code" json:"code"`
	Plan       string       `gorm:"type:text;not null;default:'pro'" json:"plan"`
	GrantDays  int          `gorm:"not null" json:"grant_days"`
	MaxRedeems int          `gorm:"not null;default:0" json:"max_redeems"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PromoCode) TableName() string { return "promo_codes" }

// Redemption records a tenant redeeming a promo code. Each tenant can
// redeem a given code at most once.
type Redemption struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;uniqueIndex:ux_redemptions_tenant_code,priority:1" json:"tenant_id"`
	PromoID    snowflake.ID `gorm:"not null;uniqueIndex:ux_redemptions_tenant_code,priority:2" json:"promo_id"`
	RedeemedAt time.Time    `gorm:"not null" json:"redeemed_at"`
}

// TableName sets the database table name.
func (Redemption) TableName() string { return "promo_redemptions" }

// License is the bookkeeping record of a tenant's current plan. It
// never gates invoice creation.
type License struct {
	TenantID   snowflake.ID `gorm:"primaryKey" json:"tenant_id"`
	Plan       string       `gorm:"type:text;not null;default:'free'" json:"plan"`
	ValidUntil *time.Time   `json:"valid_until,omitempty"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (License) TableName() string { return "licenses" }
