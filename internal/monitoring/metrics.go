// Package monitoring - metrics.go defines the Prometheus collectors.
//
// DESIGN: The wire protocol has no room for a third state, so the
// both-days-failed condition is surfaced here instead: a FALSE verdict with
// blind_evaluations_total incremented is an outage, not a confirmed zero.
package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	// VerdictsTotal counts evaluations by verdict.
	VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spendwatch",
			Name:      "verdicts_total",
			Help:      "Total evaluations by verdict",
		},
		[]string{"verdict"},
	)

	// FetchErrorsTotal counts usage fetch failures by classified reason.
	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spendwatch",
			Name:      "fetch_errors_total",
			Help:      "Total usage fetch failures by reason",
		},
		[]string{"reason"},
	)

	// BlindEvaluationsTotal counts evaluations where both daily fetches
	// failed. The client still sees FALSE; this distinguishes "no evidence
	// of cost" from "confirmed no cost".
	BlindEvaluationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "spendwatch",
			Name:      "blind_evaluations_total",
			Help:      "Evaluations where both daily usage fetches failed",
		},
	)

	// EvaluationDuration observes end-to-end evaluation latency.
	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "spendwatch",
			Name:      "evaluation_seconds",
			Help:      "Evaluation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// CommandsTotal counts inbound protocol commands by outcome.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "spendwatch",
			Name:      "commands_total",
			Help:      "Total inbound commands by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(VerdictsTotal)
	prometheus.MustRegister(FetchErrorsTotal)
	prometheus.MustRegister(BlindEvaluationsTotal)
	prometheus.MustRegister(EvaluationDuration)
	prometheus.MustRegister(CommandsTotal)
}
