package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK              = "ok"
	OutcomeNotFound        = "not_found"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeStoreFailure    = "store_failure"
)

var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "film_catalog_operations_total",
			Help: "Total number of catalog operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "film_catalog_operation_duration_seconds",
			Help:    "Duration of catalog operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RecommendedFilms = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "film_catalog_recommended_films",
			Help:    "Number of films returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"strategy"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "film_catalog_cache_hits_total",
			Help: "Total number of Redis cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "film_catalog_cache_misses_total",
			Help: "Total number of Redis cache misses",
		},
	)

	CacheBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "film_catalog_cache_breaker_open",
			Help: "1 when the cache circuit breaker is open",
		},
	)
)

// ObserveOperation records one finished operation.
func ObserveOperation(operation, outcome string, start time.Time) {
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
