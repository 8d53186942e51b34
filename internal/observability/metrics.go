// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Reconciliation metrics
	ReconcileRunsTotal     *prometheus.CounterVec
	ReconcileDuration      *prometheus.HistogramVec
	CampaignsReconciled    prometheus.Counter
	ReconcileItemErrors    *prometheus.CounterVec
	ProgressPointsAppended prometheus.Counter

	// Ledger metrics
	LedgerFetchesTotal  *prometheus.CounterVec
	LedgerFetchLatency  prometheus.Histogram
	LedgerUnavailable   prometheus.Counter
	ZeroFeeSnapshots    prometheus.Counter

	// Market data metrics
	MarketFetchesTotal *prometheus.CounterVec
	MarketFetchLatency prometheus.Histogram
	MarketPoolsFound   prometheus.Counter

	// Watcher metrics
	PoolCreationsSeen   prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	WatcherReconnects   prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "curvefund"
	}

	return &Metrics{
		// Reconciliation metrics
		ReconcileRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Total number of reconciliation runs by kind and status",
		}, []string{"kind", "status"}),
		ReconcileDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "duration_seconds",
			Help:      "Reconciliation run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		CampaignsReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "campaigns_total",
			Help:      "Total number of campaigns reconciled",
		}),
		ReconcileItemErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "item_errors_total",
			Help:      "Total number of per-campaign reconciliation errors by source",
		}, []string{"source"}),
		ProgressPointsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "progress_points_appended_total",
			Help:      "Total number of progress history points written",
		}),

		// Ledger metrics
		LedgerFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "fetches_total",
			Help:      "Total number of ledger fee fetches by outcome",
		}, []string{"outcome"}),
		LedgerFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "fetch_latency_seconds",
			Help:      "Ledger fee fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LedgerUnavailable: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "unavailable_total",
			Help:      "Total number of ledger fetches that failed as unavailable",
		}),
		ZeroFeeSnapshots: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "zero_fee_snapshots_total",
			Help:      "Total number of fee fetches that resolved to a zero snapshot",
		}),

		// Market data metrics
		MarketFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "fetches_total",
			Help:      "Total number of market data fetches by outcome",
		}, []string{"outcome"}),
		MarketFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "fetch_latency_seconds",
			Help:      "Market data fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		MarketPoolsFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "pools_found_total",
			Help:      "Total number of pools returned by the market data service",
		}),

		// Watcher metrics
		PoolCreationsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "pool_creations_seen_total",
			Help:      "Total number of pool creation events observed",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "status_transitions_total",
			Help:      "Total number of campaign status transitions by target status",
		}, []string{"status"}),
		WatcherReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "reconnects_total",
			Help:      "Total number of websocket reconnects",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordLedgerFetch records the outcome and latency of a ledger fee fetch.
func RecordLedgerFetch(outcome string, seconds float64) {
	DefaultMetrics.LedgerFetchesTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.LedgerFetchLatency.Observe(seconds)
	if outcome == "unavailable" {
		DefaultMetrics.LedgerUnavailable.Inc()
	}
}

// RecordMarketFetch records the outcome of a market data batch fetch.
func RecordMarketFetch(outcome string, pools int, seconds float64) {
	DefaultMetrics.MarketFetchesTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.MarketFetchLatency.Observe(seconds)
	DefaultMetrics.MarketPoolsFound.Add(float64(pools))
}

// RecordReconcileRun records a reconciliation run.
func RecordReconcileRun(kind, status string, durationSeconds float64) {
	DefaultMetrics.ReconcileRunsTotal.WithLabelValues(kind, status).Inc()
	DefaultMetrics.ReconcileDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordStatusTransition records a campaign status transition.
func RecordStatusTransition(status string) {
	DefaultMetrics.PoolCreationsSeen.Inc()
	DefaultMetrics.StatusTransitions.WithLabelValues(status).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
