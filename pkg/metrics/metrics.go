package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spareparts_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spareparts_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// QueryResults observes how many records matched each catalog query before pagination.
	QueryResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spareparts_query_results",
			Help:    "Number of records matching a catalog query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
	// CacheLookups counts query cache lookups by outcome (hit, miss).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spareparts_query_cache_lookups_total",
			Help: "Total number of query cache lookups",
		},
		[]string{"outcome"},
	)
	// CatalogRecords is the size of the loaded catalog.
	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spareparts_catalog_records",
			Help: "Number of records in the loaded catalog",
		},
	)
)

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
