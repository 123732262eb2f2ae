// Package metrics provides Prometheus metrics for pincode lookups and widget instances.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all pincode metrics.
type Metrics struct {
	LookupsTotal          *prometheus.CounterVec // Lookups by outcome (success, api_error, transport_error)
	LookupDurationSeconds prometheus.Histogram
	ValidationsTotal      *prometheus.CounterVec // Validations by verdict (valid, invalid)

	WidgetsActive       prometheus.Gauge
	WidgetsEvictedTotal prometheus.Counter
	StaleResultsTotal   prometheus.Counter // Lookup completions dropped because a newer submission exists
}

// New creates metrics registered on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates metrics registered on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pincheck_lookups_total",
			Help: "Total number of pincode lookups by outcome",
		}, []string{"outcome"}),

		LookupDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pincheck_lookup_duration_seconds",
			Help:    "Duration of upstream pincode lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pincheck_validations_total",
			Help: "Total number of pincode validations by verdict",
		}, []string{"verdict"}),

		WidgetsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pincheck_widgets_active",
			Help: "Current number of live widget instances",
		}),

		WidgetsEvictedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pincheck_widgets_evicted_total",
			Help: "Total number of widget instances evicted for idleness or capacity",
		}),

		StaleResultsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pincheck_stale_results_total",
			Help: "Total number of lookup results discarded because a newer submission was made",
		}),
	}
}

// RecordLookup records the outcome and latency of one lookup.
func (m *Metrics) RecordLookup(outcome string, durationSeconds float64) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
	m.LookupDurationSeconds.Observe(durationSeconds)
}

func (m *Metrics) RecordValidation(valid bool) {
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	m.ValidationsTotal.WithLabelValues(verdict).Inc()
}

func (m *Metrics) SetWidgetsActive(n int) {
	m.WidgetsActive.Set(float64(n))
}

func (m *Metrics) AddWidgetsEvicted(n int) {
	m.WidgetsEvictedTotal.Add(float64(n))
}

func (m *Metrics) IncrementStaleResults() {
	m.StaleResultsTotal.Inc()
}
