// Package observability provides Prometheus metrics and logging setup.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pool API metrics
	PoolFetchesTotal  *prometheus.CounterVec
	PoolFetchLatency  prometheus.Histogram
	PoolRecordsLoaded prometheus.Counter

	// Cache metrics
	CacheEntries       prometheus.Gauge
	CacheEvents        *prometheus.CounterVec
	RevalidationsTotal *prometheus.CounterVec

	// Stream metrics
	StreamSubscribers prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	SnapshotsStored prometheus.Counter
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "gravex_pools"
	}
	factory := promauto.With(reg)

	return &Metrics{
		PoolFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poolapi",
			Name:      "fetches_total",
			Help:      "Total number of pool page requests by status",
		}, []string{"status"}),
		PoolFetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poolapi",
			Name:      "fetch_latency_seconds",
			Help:      "Pool page request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PoolRecordsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poolapi",
			Name:      "records_loaded_total",
			Help:      "Total number of pool records received",
		}),

		CacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of live collections",
		}),
		CacheEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache events (dedup hits, shared in-flight requests, throttled focus)",
		}, []string{"event"}),
		RevalidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "revalidations_total",
			Help:      "Revalidations that issued requests, by trigger",
		}, []string{"trigger"}),

		StreamSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "subscribers",
			Help:      "Number of connected websocket subscribers",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		SnapshotsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "snapshots_stored_total",
			Help:      "Total number of pool snapshots stored",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordPoolFetch records one pool page request.
func RecordPoolFetch(status string, seconds float64, records int) {
	DefaultMetrics.PoolFetchesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PoolFetchLatency.Observe(seconds)
	DefaultMetrics.PoolRecordsLoaded.Add(float64(records))
}

// SetCacheEntries updates the live collection gauge.
func SetCacheEntries(n int) {
	DefaultMetrics.CacheEntries.Set(float64(n))
}

// RecordCacheEvent increments a cache event counter.
func RecordCacheEvent(event string) {
	DefaultMetrics.CacheEvents.WithLabelValues(event).Inc()
}

// RecordRevalidation records a revalidation by trigger (mount, focus, interval, mutate, manual).
func RecordRevalidation(trigger string) {
	DefaultMetrics.RevalidationsTotal.WithLabelValues(trigger).Inc()
}

// AddStreamSubscribers adjusts the websocket subscriber gauge.
func AddStreamSubscribers(delta int) {
	DefaultMetrics.StreamSubscribers.Add(float64(delta))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordSnapshotsStored increments the stored snapshot counter.
func RecordSnapshotsStored(n int) {
	DefaultMetrics.SnapshotsStored.Add(float64(n))
}
