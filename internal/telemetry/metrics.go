package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the enrichment pipeline. Each
// instance owns its registry so tests never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline counters
	ItemsProcessed prometheus.Counter
	ItemsSkipped   *prometheus.CounterVec
	UpsertRetries  prometheus.Counter

	// Step duration metrics
	StepDuration *prometheus.HistogramVec

	// Run state
	ActiveRuns prometheus.Gauge
	TotalRuns  prometheus.Counter
}

// Skip reason labels.
const (
	SkipReasonNoPrice      = "no_price"
	SkipReasonPersistError = "persist_error"
)

// NewMetrics creates and registers all cellarsight metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ItemsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cellarsight_items_processed_total",
				Help: "Total catalog items enriched and persisted",
			},
		),

		ItemsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cellarsight_items_skipped_total",
				Help: "Total catalog items skipped by reason",
			},
			[]string{"reason"},
		),

		UpsertRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cellarsight_upsert_retries_total",
				Help: "Total retried persistence writes",
			},
		),

		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cellarsight_step_duration_seconds",
				Help:    "Duration of each pipeline step in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"step"},
		),

		ActiveRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cellarsight_active_runs",
				Help: "Number of enrichment runs currently in flight",
			},
		),

		TotalRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cellarsight_runs_total",
				Help: "Total enrichment runs started",
			},
		),
	}

	m.registry.MustRegister(
		m.ItemsProcessed,
		m.ItemsSkipped,
		m.UpsertRetries,
		m.StepDuration,
		m.ActiveRuns,
		m.TotalRuns,
	)

	return m
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler for the monitor server.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
