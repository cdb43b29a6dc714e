package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrSequenceMissing = errors.New("tenant_sequence_missing")

// Allocation is one reserved invoice number.
type Allocation struct {
	// Number is the formatted invoice number, e.g. INV00007.
	Number string
	// Value is the raw counter value that was consumed.
	Value int64
}

// Allocate reserves the next invoice number for a tenant. The atomic
// increment-and-read row-locks the settings row, so concurrent
// allocations for the same tenant serialize and never return the same
// number. It must run inside the transaction that inserts the invoice:
// the consumed number commits or rolls back together with the row.
func Allocate(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID) (Allocation, error) {
	if tenantID == 0 {
		return Allocation{}, ErrSequenceMissing
	}

	var row struct {
		InvoicePrefix     string `gorm:"column:invoice_prefix"`
		NextInvoiceNumber int64  `gorm:"column:next_invoice_number"`
	}
	result := tx.WithContext(ctx).Raw(
		`UPDATE tenant_settings
		 SET next_invoice_number = next_invoice_number + 1,
		     updated_at = ?
		 WHERE tenant_id = ?
		 RETURNING invoice_prefix, next_invoice_number`,
		time.Now().UTC(),
		tenantID,
	).Scan(&row)
	if result.Error != nil {
		return Allocation{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Allocation{}, ErrSequenceMissing
	}

	// RETURNING reports the post-increment counter.
	allocated := row.NextInvoiceNumber - 1
	return Allocation{
		Number: Format(row.InvoicePrefix, allocated),
		Value:  allocated,
	}, nil
}

// Format renders a counter value as a zero-padded invoice number.
func Format(prefix string, value int64) string {
	return fmt.Sprintf("%s%05d", prefix, value)
}
