package domain

import (
	"strings"
	"time"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusUnpaid    Status = "UNPAID"
	StatusPaid      Status = "PAID"
	StatusOverdue   Status = "OVERDUE"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the single source of truth for legal status changes.
// Every mutation path consults it; no handler carries its own guards.
var transitions = map[Status]map[Status]bool{
	StatusUnpaid: {
		StatusPaid:      true,
		StatusOverdue:   true,
		StatusCancelled: true,
	},
	StatusOverdue: {
		StatusPaid:      true,
		StatusCancelled: true,
	},
	StatusPaid: {
		StatusCancelled: true,
	},
	StatusCancelled: {},
}

// ParseStatus normalizes a raw status string.
func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case StatusUnpaid, StatusPaid, StatusOverdue, StatusCancelled:
		return status, true
	default:
		return "", false
	}
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// FieldsMutable reports whether non-status fields may change while the
// invoice is in status. PAID and CANCELLED invoices are frozen; their
// only legal mutation is the CANCELLED transition.
func FieldsMutable(status Status) bool {
	return status == StatusUnpaid || status == StatusOverdue
}

// ApplyStatus validates and applies a status change on inv. Requesting
// the current status again is a no-op for non-terminal states and for
// PAID, so a repeated PAID request never re-stamps paid_at. Moving to
// PAID stamps paid_at with now only when it was never set.
func ApplyStatus(inv *Invoice, to Status, now time.Time) error {
	if inv == nil {
		return ErrInvoiceNotFound
	}

	if inv.Status == StatusCancelled {
		return ErrInvalidTransition
	}
	if to == inv.Status {
		return nil
	}
	if !CanTransition(inv.Status, to) {
		return ErrInvalidTransition
	}

	inv.Status = to
	if to == StatusPaid && inv.PaidAt == nil {
		stamped := now
		inv.PaidAt = &stamped
	}
	return nil
}
