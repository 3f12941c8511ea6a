// Package metrics provides Prometheus metrics for the similarity engine and its upstream stores.
//
// Usage:
//
//	metrics.RecordRequest(metrics.OutcomeOK, 12*time.Millisecond, 180)
//	metrics.RecordFactorFaults(2)
//	metrics.SetBreakerState("postgres", 0)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes
const (
	OutcomeOK           = "ok"
	OutcomeEmpty        = "empty"
	OutcomeInvalidInput = "invalid_input"
	OutcomeNotFound     = "not_found"
	OutcomeUpstream     = "upstream_failure"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

var (
	// RequestsTotal counts similar-jobs requests by outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobsim_requests_total",
			Help: "Total number of similar-jobs requests by outcome",
		},
		[]string{"outcome"},
	)

	// RequestDuration tracks end-to-end engine latency.
	RequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobsim_request_duration_seconds",
			Help:    "Duration of similar-jobs requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// CandidatesConsidered tracks candidate pool sizes.
	CandidatesConsidered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobsim_candidates_considered",
			Help:    "Number of candidates scored per request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
	)

	// FactorFaultsTotal counts factor values coerced because they were non-finite or out of range.
	FactorFaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobsim_factor_faults_total",
			Help: "Total number of factor values coerced to a safe default",
		},
	)

	// BreakerState reports upstream circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobsim_upstream_breaker_state",
			Help: "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// RecordRequest records one finished request.
func RecordRequest(outcome string, elapsed time.Duration, considered int) {
	RequestsTotal.WithLabelValues(outcome).Inc()
	RequestDuration.Observe(elapsed.Seconds())
	if considered >= 0 {
		CandidatesConsidered.Observe(float64(considered))
	}
}

// RecordFactorFaults adds n coerced factor values.
func RecordFactorFaults(n int) {
	if n > 0 {
		FactorFaultsTotal.Add(float64(n))
	}
}

// SetBreakerState publishes the state of the named breaker.
func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}
