// Package metrics defines the custom Prometheus metrics of the Voyage API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default Prometheus registry on import and are
// exposed by the router on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voyage"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served requests.
// Labels:
//   - method: HTTP method
//   - route: the matched route template (e.g. "/api/yachts/:id"), never the raw path
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency by method and route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts auth service outcomes.
// Labels:
//   - event: "register", "login", "refresh", "change_password", "reset_password"
//   - result: "success" or a short failure reason (e.g. "invalid_credentials")
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events, by event and result.",
	},
	[]string{"event", "result"},
)

// ── Middleware metrics ────────────────────────────────────────────────────────

// RateLimitRejectedTotal counts requests rejected with 429.
var RateLimitRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejected_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// ── Data store metrics ────────────────────────────────────────────────────────

// DataStoreRequestDuration measures calls to the backing store.
// Labels:
//   - driver: "supabase" or "mongo"
//   - operation: "find_many", "find_unique", "create", "update", "delete", "count", "execute_raw", "ping"
var DataStoreRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "datastore_request_duration_seconds",
		Help:      "Duration of calls to the backing data store.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"driver", "operation"},
)

// DataStoreErrorsTotal counts failed calls to the backing store.
var DataStoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datastore_errors_total",
		Help:      "Total number of failed data store calls, by driver and operation.",
	},
	[]string{"driver", "operation"},
)

// DataStoreTransactionsAbortedTotal counts transactions stopped by a failing step.
var DataStoreTransactionsAbortedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datastore_transactions_aborted_total",
		Help:      "Total number of data store transactions aborted by a failing operation.",
	},
	[]string{"driver"},
)
