package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus counters for client-side activity. The
// registry is caller-supplied so tests and embedders stay isolated.
type Metrics struct {
	// Guest cart
	GuestCartMutations *prometheus.CounterVec
	GuestCartCleared   prometheus.Counter

	// Login-time reconciliation
	MergeRuns     prometheus.Counter
	MergeItems    prometheus.Counter
	MergeFailures prometheus.Counter

	// Session
	Logins        prometheus.Counter
	LoginFailures prometheus.Counter

	// Authenticated cart
	CartRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all client metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	namespace := "storefront"
	subsystem := "client"

	return &Metrics{
		GuestCartMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "guest_cart_mutations_total",
				Help:      "Guest cart mutations by operation",
			},
			[]string{"op"}, // op: set, add, update, increment, remove, enrich
		),
		GuestCartCleared: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "guest_cart_cleared_total",
				Help:      "Guest cart clear operations",
			},
		),
		MergeRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_merge_runs_total",
				Help:      "Login-time guest cart merge attempts",
			},
		),
		MergeItems: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_merge_items_total",
				Help:      "Guest cart lines folded into the server cart",
			},
		),
		MergeFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_merge_failures_total",
				Help:      "Merge runs aborted by a failed add-to-cart call",
			},
		),
		Logins: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "logins_total",
				Help:      "Successful logins",
			},
		),
		LoginFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "login_failures_total",
				Help:      "Failed login or profile fetch attempts",
			},
		),
		CartRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_requests_total",
				Help:      "Authenticated cart API calls by operation",
			},
			[]string{"op"}, // op: fetch, add, remove, clear
		),
	}
}
