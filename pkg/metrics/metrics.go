// Package metrics exposes Prometheus instrumentation for the insight engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors on a private registry so
// tests can create instances without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	CacheInvalidations prometheus.Counter
	AnalysisDuration   *prometheus.HistogramVec
	AlertsGenerated    *prometheus.CounterVec
}

// New creates and registers the engine's collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Number of analysis cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Number of analysis cache misses.",
		}),
		CacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Number of cache entries removed by invalidation.",
		}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "insight",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Time spent computing analysis results on cache misses.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		AlertsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insight",
			Subsystem: "alerts",
			Name:      "generated_total",
			Help:      "Number of trigger alerts generated, by type.",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CacheInvalidations,
		m.AnalysisDuration,
		m.AlertsGenerated,
	)
	return m
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
