// Package observability wires metrics and tracing for the query layer.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements the query layer's Metrics interface on a
// dedicated registry, exposed at /metrics.
type PrometheusMetrics struct {
	registry      *prometheus.Registry
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	invalidated   *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates and registers the query metrics.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "query_cache_hits_total",
			Help: "Query results served from the cache.",
		}, []string{"collection"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "query_cache_misses_total",
			Help: "Query results fetched from the document store.",
		}, []string{"collection"}),
		invalidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "query_cache_invalidated_entries_total",
			Help: "Cache entries removed by post-write invalidation.",
		}, []string{"collection"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "query_store_duration_seconds",
			Help:    "Document store round-trip latency for cache misses.",
			Buckets: prometheus.DefBuckets,
		}, []string{"collection", "outcome"}),
	}
	m.registry.MustRegister(m.cacheHits, m.cacheMisses, m.invalidated, m.queryDuration)
	return m
}

func (m *PrometheusMetrics) CacheHit(collection string) {
	m.cacheHits.WithLabelValues(collection).Inc()
}

func (m *PrometheusMetrics) CacheMiss(collection string) {
	m.cacheMisses.WithLabelValues(collection).Inc()
}

func (m *PrometheusMetrics) Invalidated(collection string, entries int) {
	m.invalidated.WithLabelValues(collection).Add(float64(entries))
}

func (m *PrometheusMetrics) QueryDuration(collection string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.queryDuration.WithLabelValues(collection, outcome).Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
