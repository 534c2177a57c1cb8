// Package metrics defines the Prometheus collectors for the search service
// and exposes the scrape handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector used by the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	SearchQueriesTotal *prometheus.CounterVec
	SearchLatency      *prometheus.HistogramVec
	SearchResultsCount prometheus.Histogram

	DocsIngestedTotal prometheus.Counter
	DocsRemovedTotal  prometheus.Counter
	IndexDocCount     prometheus.Gauge
	DictionaryTerms   prometheus.Gauge

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// New creates and registers all collectors with the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry to
// avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by mode (fulltext, prefix).",
			},
			[]string{"mode"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search latency in seconds by cache status.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Hits returned per search page.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		DocsIngestedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "documents_ingested_total",
				Help: "Total documents accepted for indexing.",
			},
		),
		DocsRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "documents_removed_total",
				Help: "Total documents removed from the index.",
			},
		),
		IndexDocCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_document_count",
				Help: "Distinct documents currently in the index.",
			},
		),
		DictionaryTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dictionary_terms",
				Help: "Live terms in the autocomplete dictionary.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Search cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Search cache misses.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.DocsIngestedTotal,
		m.DocsRemovedTotal,
		m.IndexDocCount,
		m.DictionaryTerms,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)
	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
