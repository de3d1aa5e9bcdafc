// Package prometheus exposes engine activity as Prometheus metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "medreg"
	subsystem = "engine"
)

// EngineMetrics implements the engine metrics port.
type EngineMetrics struct {
	registry         *prometheus.Registry
	analysisDuration *prometheus.HistogramVec
	verdictTotal     *prometheus.CounterVec
	snapshotSize     prometheus.Gauge
}

// NewEngineMetrics registers the engine collectors on a fresh registry.
func NewEngineMetrics() *EngineMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &EngineMetrics{
		registry: registry,
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of analysis operations by operation name.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"operation"}),
		verdictTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "verdicts_total",
			Help:      "Approval verdicts issued by review level.",
		}, []string{"review_level"}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_records",
			Help:      "Record count of the last corpus snapshot.",
		}),
	}
	registry.MustRegister(m.analysisDuration, m.verdictTotal, m.snapshotSize)
	return m
}

// ObserveAnalysis records the duration of one analysis operation.
func (m *EngineMetrics) ObserveAnalysis(operation string, duration time.Duration) {
	m.analysisDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// CountVerdict increments the verdict counter for a review level.
func (m *EngineMetrics) CountVerdict(level string) {
	m.verdictTotal.WithLabelValues(level).Inc()
}

// SetSnapshotSize reports the size of the most recent corpus snapshot.
func (m *EngineMetrics) SetSnapshotSize(n int) {
	m.snapshotSize.Set(float64(n))
}

// Handler serves the scrape endpoint for this registry.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for additional collectors.
func (m *EngineMetrics) Registry() *prometheus.Registry {
	return m.registry
}
