// Package metrics provides Prometheus metrics for the Flowgrid backend
// (HTTP RED + gate decisions + identity store). Scrapeable at /metrics;
// dashboards and alerts can rely on these names.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "flowgrid"

var (
	// HTTPRequestTotal counts requests by method, path, status (RED: rate).
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, path, and status.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDurationSeconds is request latency histogram (RED: duration).
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10), // 1ms to ~9.3s
		},
		[]string{"method", "path"},
	)

	// GateDecisionsTotal counts terminal gate decisions by outcome. Outcomes:
	// allow_anonymous, allow_identity, allow_key, deny_path, deny_license,
	// deny_key, deny_credential, deny_store.
	GateDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Total number of authorization gate decisions by outcome.",
		},
		[]string{"outcome"},
	)

	// IdentityResolutionsTotal counts resolve-or-provision calls by result
	// (ok, error). First-time provisions are visible in the auth_events table.
	IdentityResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolutions_total",
			Help:      "Total number of identity store resolutions by result.",
		},
		[]string{"result"},
	)

	// APIKeyValidationsTotal counts bearer-credential validations by result.
	APIKeyValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_key_validations_total",
			Help:      "Total number of API key validations by result.",
		},
		[]string{"result"},
	)

	// DBQueryDurationSeconds is repository query latency by operation.
	DBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2.5, 10),
		},
		[]string{"operation"},
	)
)
