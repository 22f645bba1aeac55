// Package metrics exposes Prometheus collectors for cycle calculations and calendar mutations.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics is safe to use through a nil pointer; every observation is then dropped.
type Metrics struct {
	Calculations        *prometheus.CounterVec
	CalculationDuration prometheus.Histogram
	CalculatedEntries   prometheus.Gauge
	CacheHits           prometheus.Counter
	Mutations           *prometheus.CounterVec

	registry *prometheus.Registry
}

func New(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("register periodical metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.Calculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "periodical_calculations_total",
			Help: "Total number of full cycle recalculations partitioned by status.",
		},
		[]string{"status"},
	)
	m.CalculationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "periodical_calculation_duration_seconds",
			Help:    "Time taken to load records and recalculate the calendar.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)
	m.CalculatedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "periodical_calculated_entries",
			Help: "Number of day entries produced by the most recent calculation.",
		},
	)
	m.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "periodical_calculation_cache_hits_total",
			Help: "Number of calendar reads served from the calculation cache.",
		},
	)
	m.Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "periodical_mutations_total",
			Help: "Number of calendar mutations partitioned by operation and status.",
		},
		[]string{"operation", "status"},
	)
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Calculations.Describe(ch)
	m.CalculationDuration.Describe(ch)
	m.CalculatedEntries.Describe(ch)
	m.CacheHits.Describe(ch)
	m.Mutations.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Calculations.Collect(ch)
	m.CalculationDuration.Collect(ch)
	m.CalculatedEntries.Collect(ch)
	m.CacheHits.Collect(ch)
	m.Mutations.Collect(ch)
}

func (m *Metrics) ObserveCalculation(duration time.Duration, entries int, err error) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(statusOf(err)).Inc()
	if err != nil {
		return
	}
	m.CalculationDuration.Observe(duration.Seconds())
	m.CalculatedEntries.Set(float64(entries))
}

func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) ObserveMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation, statusOf(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
