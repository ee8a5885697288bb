package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes Prometheus observability primitives for the cancellation
// pipeline.
type Metrics struct {
	cancellationsProcessed *prometheus.CounterVec
	addonsCancelled        prometheus.Counter
	invoicesCancelled      prometheus.Counter
	invoicesSplit          prometheus.Counter
	splitInconsistencies   prometheus.Counter
	gatewayCancellations   *prometheus.CounterVec
}

// NewMetrics registers and returns Prometheus metrics for telemetry.
func NewMetrics() *Metrics {
	cancellationsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sunset_cancellations_processed_total",
		Help: "Counts service cancellation triggers by outcome.",
	}, []string{"outcome"})

	addonsCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sunset_addons_cancelled_total",
		Help: "Counts addons cancelled by the cascade.",
	})

	invoicesCancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sunset_invoices_cancelled_total",
		Help: "Counts unpaid invoices cancelled during cascades.",
	})

	invoicesSplit := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sunset_invoices_split_total",
		Help: "Counts invoices split because they carried unrelated items.",
	})

	splitInconsistencies := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sunset_invoice_split_inconsistencies_total",
		Help: "Counts splits where not every unrelated item could be moved.",
	})

	gatewayCancellations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sunset_gateway_cancellations_total",
		Help: "Counts subscription cancellations at payment gateways by status.",
	}, []string{"status"})

	prometheus.MustRegister(
		cancellationsProcessed,
		addonsCancelled,
		invoicesCancelled,
		invoicesSplit,
		splitInconsistencies,
		gatewayCancellations,
	)

	return &Metrics{
		cancellationsProcessed: cancellationsProcessed,
		addonsCancelled:        addonsCancelled,
		invoicesCancelled:      invoicesCancelled,
		invoicesSplit:          invoicesSplit,
		splitInconsistencies:   splitInconsistencies,
		gatewayCancellations:   gatewayCancellations,
	}
}

func (m *Metrics) CancellationProcessed(outcome string) {
	if m == nil {
		return
	}
	m.cancellationsProcessed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddonCancelled() {
	if m == nil {
		return
	}
	m.addonsCancelled.Inc()
}

func (m *Metrics) InvoiceCancelled() {
	if m == nil {
		return
	}
	m.invoicesCancelled.Inc()
}

func (m *Metrics) InvoiceSplit() {
	if m == nil {
		return
	}
	m.invoicesSplit.Inc()
}

func (m *Metrics) SplitInconsistency() {
	if m == nil {
		return
	}
	m.splitInconsistencies.Inc()
}

func (m *Metrics) GatewayCancellation(status string) {
	if m == nil {
		return
	}
	m.gatewayCancellations.WithLabelValues(status).Inc()
}

// Module provides the metrics registry.
var Module = fx.Module("telemetry",
	fx.Provide(NewMetrics),
)
