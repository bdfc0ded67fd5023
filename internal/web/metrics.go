package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resultsTotal counts rendered results by section and classified kind.
	resultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqldesk_results_total",
			Help: "Results rendered, by section and result kind",
		},
		[]string{"section", "kind"},
	)

	// upstreamErrorsTotal counts requests that ended in an error.
	upstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqldesk_upstream_errors_total",
			Help: "Requests to the query service that failed, by section",
		},
		[]string{"section"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqldesk_http_request_duration_seconds",
			Help:    "Latency of web UI requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)
