package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Response cache metrics
	APICacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_hits_total",
			Help: "Total number of API cache hits",
		},
		[]string{"endpoint"},
	)

	APICacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_misses_total",
			Help: "Total number of API cache misses",
		},
		[]string{"endpoint"},
	)

	APICacheStores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_stores_total",
			Help: "Total number of responses written to the API cache",
		},
		[]string{"endpoint"},
	)

	APICacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_invalidations_total",
			Help: "Total number of cache invalidations",
		},
		[]string{"mode"}, // mode: full, pattern, fallback
	)

	APICacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_cache_size_bytes",
			Help: "Current size of API cache in bytes",
		},
	)

	APICacheItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_cache_items",
			Help: "Current number of entries in the API cache, unswept expired entries included",
		},
	)

	APICacheEvictions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_cache_evictions",
			Help: "Expired entries removed from the API cache since start",
		},
	)

	// Rate limiting metrics
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"scope"}, // scope: global, client
	)

	RateLimitTrackedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limit_tracked_clients",
			Help: "Number of client identifiers held by the sliding-window limiter",
		},
	)

	// API request metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_request_timeouts_total",
			Help: "Total number of requests answered with 408 by the timeout middleware",
		},
		[]string{"endpoint"},
	)

	APIPanicsRecovered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_panics_recovered_total",
			Help: "Total number of handler panics converted to 500 responses",
		},
	)

	// Metrics collection error tracking
	MetricsCollectionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrics_collection_errors_total",
			Help: "Total number of errors during metrics collection",
		},
		[]string{"collector"},
	)
)
