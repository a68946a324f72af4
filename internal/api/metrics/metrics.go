// Package metrics defines and registers all custom Prometheus metrics for the
// mobile API. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mobile_api"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRequestsTotal counts auth operations by outcome.
// Labels:
//   - operation: guest, login, register, refresh, logout
//   - outcome: "success" or the error code returned to the client
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of auth operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ── Checkout metrics ──────────────────────────────────────────────────────────

// CheckoutStepsTotal counts successful checkout transitions.
// Label:
//   - step: the step reached (e.g. "billing_set")
var CheckoutStepsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_steps_total",
		Help:      "Total number of checkout transitions, by resulting step.",
	},
	[]string{"step"},
)

// OrdersPlacedTotal counts placed orders.
// Label:
//   - user_type: guest or registered
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed, by user type.",
	},
	[]string{"user_type"},
)

// OrderTotalAmount observes order totals in the store currency.
var OrderTotalAmount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_total_amount",
		Help:      "Distribution of placed order totals.",
		Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
	},
)

// ── Registration event metrics ────────────────────────────────────────────────

// RegistrationEventsTotal counts dispatcher decisions for registration events.
// Label:
//   - result: "delivered", "failed", "duplicate" or "dropped"
var RegistrationEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_events_total",
		Help:      "Total number of customer registered events, by dispatch result.",
	},
	[]string{"result"},
)

// RegistrationQueueDepth tracks pending events in each dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RegistrationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registration_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ListenerDuration measures how long a listener takes per event.
// Label:
//   - listener: listener name (e.g. "redis_pubsub")
var ListenerDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "registration_listener_duration_seconds",
		Help:      "Duration of a single registration listener call.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"listener"},
)
