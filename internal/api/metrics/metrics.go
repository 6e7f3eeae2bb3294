// Package metrics defines and registers all custom Prometheus metrics for the
// library server. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed on the ops listener under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Connection metrics ────────────────────────────────────────────────────────

// ConnectionsTotal counts accepted connections on the public listener.
var ConnectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_total",
		Help:      "Total number of accepted connections.",
	},
)

// ConnectionsActive tracks connections currently being served.
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Number of connections currently being served.",
	},
)

// ConnectionErrorsTotal counts socket failures.
// Label:
//   - stage: "accept", "read" or "write"
var ConnectionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connection_errors_total",
		Help:      "Total number of socket errors, by stage.",
	},
	[]string{"stage"},
)

// ── Request metrics ───────────────────────────────────────────────────────────

// RequestsTotal counts served requests.
// Labels:
//   - method: GET, POST, PUT, DELETE or "other"
//   - route: matched route path, "static" or "other"
//   - status: numeric status code
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of requests served, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// RequestDuration measures time from decode to encoded response.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of request handling, by route.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route"},
)

// ── Domain metrics ────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login outcomes.
// Labels:
//   - role: requested role
//   - result: "success", "invalid_credentials", "role_mismatch", "not_found" or "rejected"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by requested role and result.",
	},
	[]string{"role", "result"},
)

// CirculationTotal counts completed borrows and returns.
// Label:
//   - action: "borrow" or "return"
var CirculationTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circulation_total",
		Help:      "Total number of completed borrow and return operations.",
	},
	[]string{"action"},
)

// BookCacheTotal counts book cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var BookCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "book_cache_total",
		Help:      "Total number of book cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// LedgerQueueDepth tracks the number of events waiting in each worker channel.
var LedgerQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ledger_queue_depth",
		Help:      "Current number of ledger events pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// LedgerEventsTotal counts ledger events by outcome.
// Label:
//   - result: "stored", "failed" or "dropped"
var LedgerEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_events_total",
		Help:      "Total number of ledger events, by outcome.",
	},
	[]string{"result"},
)
