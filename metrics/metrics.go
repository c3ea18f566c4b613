// Package metrics exposes Prometheus collectors for remote scans and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal counts remote query setups by dialect and outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remotetable_queries_total",
			Help: "Total number of remote queries started",
		},
		[]string{"db_type", "status"},
	)
	// QuerySetupDuration is the time from first pull to the remote stream being ready.
	QuerySetupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remotetable_query_setup_seconds",
			Help:    "Remote query setup latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"db_type"},
	)
	// BatchesTotal counts record batches delivered to the host engine.
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remotetable_batches_total",
			Help: "Total number of record batches delivered",
		},
		[]string{"db_type"},
	)
	// LimitPushdownTotal counts pushdown policy decisions for scans carrying a limit.
	LimitPushdownTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remotetable_limit_pushdown_total",
			Help: "Limit pushdown decisions",
		},
		[]string{"allowed"},
	)
	// RequestTotal counts HTTP requests by route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remotetable_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remotetable_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
