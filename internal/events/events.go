package events

// Invoice lifecycle event types written to the outbox.
const (
	EventInvoiceCreated   = "invoice.created"
	EventInvoicePaid      = "invoice.paid"
	EventInvoiceOverdue   = "invoice.overdue"
	EventInvoiceCancelled = "invoice.cancelled"
	EventProofAttached    = "invoice.proof_attached"
)

// InvoicePayload captures the minimal data consumers need to follow up
// on an invoice event.
type InvoicePayload struct {
	InvoiceID  string `json:"invoice_id"`
	Number     string `json:"number"`
	CustomerID string `json:"customer_id,omitempty"`
	Status     string `json:"status,omitempty"`
	Total      string `json:"total,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p InvoicePayload) ToMap() map[string]any {
	payload := map[string]any{
		"invoice_id": p.InvoiceID,
		"number":     p.Number,
	}
	if p.CustomerID != "" {
		payload["customer_id"] = p.CustomerID
	}
	if p.Status != "" {
		payload["status"] = p.Status
	}
	if p.Total != "" {
		payload["total"] = p.Total
	}
	return payload
}
