// Package metrics holds the prometheus collectors exported at /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CarpoolOperationsTotal counts service operations by outcome.  result
	// is "ok" or the error kind.
	CarpoolOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carpool_operations_total",
			Help: "Carpool service operations by result.",
		},
		[]string{"operation", "result"},
	)

	CacheResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_cache_results_total",
			Help: "Response cache lookups by route and result (hit, miss, error).",
		},
		[]string{"path", "result"},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		},
	)
)

var registerOnce sync.Once

// MustRegister registers every collector with the default registry.  It is
// safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			CarpoolOperationsTotal,
			CacheResultsTotal,
			RateLimitedTotal,
		)
	})
}
