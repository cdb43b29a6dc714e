package domain

// StatusBreakdown counts invoices and sums totals per lifecycle status.
type StatusBreakdown struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Total  string `json:"total"`
}

// Summary is the headline view of a tenant's invoicing position.
type Summary struct {
	Currency      string            `json:"currency"`
	Outstanding   string            `json:"outstanding"`
	Collected     string            `json:"collected"`
	OverdueCount  int64             `json:"overdue_count"`
	DraftedCount  int64             `json:"drafted_count"`
	ByStatus      []StatusBreakdown `json:"by_status"`
	CustomerCount int64             `json:"customer_count"`
}

// RevenuePoint is one month of collected revenue.
type RevenuePoint struct {
	Month   string `json:"month"`
	Revenue string `json:"revenue"`
	Count   int64  `json:"count"`
}

// RevenueSeriesResponse is the API response for the revenue chart.
type RevenueSeriesResponse struct {
	Currency string         `json:"currency"`
	Points   []RevenuePoint `json:"points"`
}

// ActivityEntry is a human-readable line in the recent activity feed.
type ActivityEntry struct {
	Message    string `json:"message"`
	OccurredAt string `json:"occurred_at"`
}

// ActivityResponse is the API response for recent activity.
type ActivityResponse struct {
	Activity []ActivityEntry `json:"activity"`
}
