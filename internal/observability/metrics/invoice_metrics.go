package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InvoiceMetrics tracks invoice lifecycle throughput and overdue health.
type InvoiceMetrics struct {
	invoicesCreated    *prometheus.CounterVec
	statusTransitions  *prometheus.CounterVec
	paymentLag         prometheus.Histogram
	overdueBacklog     prometheus.Gauge
	overdueSweepCount  *prometheus.CounterVec
	overdueSweepOldest prometheus.Gauge
}

var (
	invoiceMetricsOnce sync.Once
	invoiceMetrics     *InvoiceMetrics
)

func Invoice() *InvoiceMetrics {
	return InvoiceWithConfig(Config{})
}

func InvoiceWithConfig(cfg Config) *InvoiceMetrics {
	invoiceMetricsOnce.Do(func() {
		invoiceMetrics = newInvoiceMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return invoiceMetrics
}

func ResetInvoiceMetricsForTest() {
	invoiceMetricsOnce = sync.Once{}
	invoiceMetrics = nil
}

func newInvoiceMetrics(registerer prometheus.Registerer, cfg Config) *InvoiceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "simpleinvoice"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	invoicesCreated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "simpleinvoice_invoices_created_total",
			Help:        "Total invoices created.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | invalid | failed
	)

	statusTransitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "simpleinvoice_invoice_status_transitions_total",
			Help:        "Total invoice status transitions by target status.",
			ConstLabels: constLabels,
		},
		[]string{"to_status", "result"}, // result: applied | rejected
	)

	paymentLag := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "simpleinvoice_invoice_payment_lag_seconds",
			Help: "Time between invoice issue date and paid_at.",
			Buckets: []float64{
				3600,    // 1h
				86400,   // 1d
				259200,  // 3d
				604800,  // 7d
				1209600, // 14d
				2592000, // 30d
				5184000, // 60d
			},
			ConstLabels: constLabels,
		},
	)

	overdueBacklog := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "simpleinvoice_overdue_backlog_total",
			Help:        "Number of unpaid invoices past their due date awaiting sweep.",
			ConstLabels: constLabels,
		},
	)

	overdueSweepCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "simpleinvoice_overdue_swept_total",
			Help:        "Total invoices transitioned to overdue by the sweeper.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | failed
	)

	overdueSweepOldest := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "simpleinvoice_overdue_backlog_oldest_seconds",
			Help:        "Age past due date of the oldest unswept invoice.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		invoicesCreated,
		statusTransitions,
		paymentLag,
		overdueBacklog,
		overdueSweepCount,
		overdueSweepOldest,
	)

	return &InvoiceMetrics{
		invoicesCreated:    invoicesCreated,
		statusTransitions:  statusTransitions,
		paymentLag:         paymentLag,
		overdueBacklog:     overdueBacklog,
		overdueSweepCount:  overdueSweepCount,
		overdueSweepOldest: overdueSweepOldest,
	}
}

func (m *InvoiceMetrics) IncInvoiceCreated(result string) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(result).Inc()
}

func (m *InvoiceMetrics) IncStatusTransition(toStatus, result string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(toStatus, result).Inc()
}

func (m *InvoiceMetrics) ObservePaymentLag(lag time.Duration) {
	if m == nil {
		return
	}
	seconds := lag.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.paymentLag.Observe(seconds)
}

func (m *InvoiceMetrics) SetOverdueBacklog(value int) {
	if m == nil {
		return
	}
	m.overdueBacklog.Set(float64(value))
}

func (m *InvoiceMetrics) IncOverdueSwept(result string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.overdueSweepCount.WithLabelValues(result).Add(float64(count))
}

func (m *InvoiceMetrics) SetOverdueBacklogOldest(age time.Duration) {
	if m == nil {
		return
	}
	seconds := age.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.overdueSweepOldest.Set(seconds)
}
