// Package metrics defines the custom Prometheus metrics of the user directory
// API. HTTP request metrics come from echoprometheus; the collectors here
// describe outcomes of the directory operations.
//
// Collectors are registered on the registerer handed to New, the same one the
// router exposes on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "user_directory"

// Result label values shared by the operation counters.
const (
	ResultOK           = "ok"
	ResultUnauthorized = "unauthorized"
	ResultInvalid      = "invalid"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

// Rate limit decision label values.
const (
	DecisionAllowed  = "allowed"
	DecisionRejected = "rejected"
	DecisionBypassed = "bypassed"
)

type Metrics struct {
	// OperationsTotal counts directory operations by outcome.
	// Labels:
	//   - operation: "register", "login" or "lookup"
	//   - result: one of the Result* constants
	OperationsTotal *prometheus.CounterVec

	// ProfilesUpsertedTotal counts profile writes, including overwrites on
	// repeated registration.
	ProfilesUpsertedTotal prometheus.Counter

	// RateLimitDecisionsTotal counts rate limiter decisions.
	// Label:
	//   - decision: "allowed", "rejected" or "bypassed" (store unavailable)
	RateLimitDecisionsTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg uses the
// Prometheus default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of directory operations, by operation and result.",
			},
			[]string{"operation", "result"},
		),
		ProfilesUpsertedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profiles_upserted_total",
				Help:      "Total number of user profiles written to the directory store.",
			},
		),
		RateLimitDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_decisions_total",
				Help:      "Total number of rate limit decisions, by decision.",
			},
			[]string{"decision"},
		),
	}
}

// ObserveOperation records the outcome of a directory operation.
func (m *Metrics) ObserveOperation(operation, result string) {
	m.OperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveRateLimit records a rate limiter decision.
func (m *Metrics) ObserveRateLimit(decision string) {
	m.RateLimitDecisionsTotal.WithLabelValues(decision).Inc()
}
