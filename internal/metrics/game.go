package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Guess outcomes.
const (
	OutcomeCorrect      = "correct"
	OutcomeIncorrect    = "incorrect"
	OutcomeRejected     = "rejected"
	OutcomeUpstream     = "upstream_unavailable"
	OutcomeStorageError = "storage_error"
)

// Oracle results.
const (
	OracleHit         = "cache_hit"
	OracleFetched     = "fetched"
	OracleFailed      = "failed"
	OracleCircuitOpen = "circuit_open"
)

var (
	guessesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Guess submissions by outcome.",
		},
		[]string{"outcome"},
	)

	oracleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Cast lookups by result.",
		},
		[]string{"result"},
	)

	oracleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Latency of upstream cast lookups.",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)
)

// ObserveGuess counts one submission.
func ObserveGuess(outcome string) { guessesTotal.WithLabelValues(outcome).Inc() }

// ObserveOracle counts one cast lookup.
func ObserveOracle(result string) { oracleRequests.WithLabelValues(result).Inc() }

// ObserveOracleLatency records the duration of one upstream call.
func ObserveOracleLatency(d time.Duration) { oracleDuration.Observe(d.Seconds()) }
