// Package breaker decides whether billable cost has been incurred recently.
//
// DESIGN: Every evaluation is a fresh, independent attempt: fetch usage for
// today and yesterday (UTC), trip if either day shows cost strictly greater
// than zero. Nothing is cached or retried.
//
// Resolution policy under partial failure: a failed fetch is treated as "no
// evidence of cost", so failure + confirmed zero answers FALSE. This trades
// false negatives for availability: the breaker must not trip automation off
// just because the billing source is unreachable. When BOTH days fail the
// answer is still FALSE, but the condition is logged and counted separately
// (blind evaluation) because it is an outage, not a confirmed no-cost state.
// The wire protocol has no room for a third state.
package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spendwatch/spendwatch/internal/billing"
	"github.com/spendwatch/spendwatch/internal/monitoring"
)

// Fetcher retrieves cumulative cost in cents for one UTC calendar day.
type Fetcher interface {
	Usage(ctx context.Context, day time.Time, credential string) (float64, error)
}

// Evaluator produces the cost-incurred verdict.
type Evaluator struct {
	fetcher      Fetcher
	credential   string
	fetchTimeout time.Duration
	telemetry    *monitoring.Telemetry

	now func() time.Time // test seam
}

// New creates an evaluator. The credential is read-only and shared by all
// concurrent evaluations. telemetry may be nil.
func New(fetcher Fetcher, credential string, fetchTimeout time.Duration, telemetry *monitoring.Telemetry) *Evaluator {
	return &Evaluator{
		fetcher:      fetcher,
		credential:   credential,
		fetchTimeout: fetchTimeout,
		telemetry:    telemetry,
		now:          time.Now,
	}
}

// Evaluate reports whether either today or yesterday (UTC) shows non-zero
// cost. connID tags logs and telemetry; pass "" outside a connection.
// Never returns an error: fetch failures resolve to false per the policy
// documented in the package comment.
func (e *Evaluator) Evaluate(ctx context.Context, connID string) bool {
	start := time.Now()
	now := e.now().UTC()
	today := now
	yesterday := now.AddDate(0, 0, -1)

	// Both fetches run in parallel; a failure in one never cancels the other.
	var todayRes, yesterdayRes dayResult
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		todayRes = e.fetchDay(ctx, today)
	}()
	go func() {
		defer wg.Done()
		yesterdayRes = e.fetchDay(ctx, yesterday)
	}()
	wg.Wait()

	verdict := todayRes.tripped() || yesterdayRes.tripped()
	blind := todayRes.err != nil && yesterdayRes.err != nil
	elapsed := time.Since(start)

	monitoring.VerdictsTotal.WithLabelValues(verdictLabel(verdict)).Inc()
	monitoring.EvaluationDuration.Observe(elapsed.Seconds())
	if blind {
		monitoring.BlindEvaluationsTotal.Inc()
		log.Warn().
			Str("conn_id", connID).
			Str("today", todayRes.day).
			Str("yesterday", yesterdayRes.day).
			Msg("breaker: both daily fetches failed, answering FALSE without evidence")
	} else {
		log.Info().
			Str("conn_id", connID).
			Bool("verdict", verdict).
			Str("today", string(todayRes.outcome())).
			Str("yesterday", string(yesterdayRes.outcome())).
			Dur("elapsed", elapsed).
			Msg("breaker: evaluation complete")
	}

	e.telemetry.RecordEvaluation(monitoring.EvaluationEvent{
		Timestamp:  now,
		ConnID:     connID,
		Verdict:    verdict,
		Today:      todayRes.outcome(),
		Yesterday:  yesterdayRes.outcome(),
		Blind:      blind,
		DurationMs: elapsed.Milliseconds(),
	})

	return verdict
}

// dayResult is one day's fetch outcome.
type dayResult struct {
	day   string
	cents float64
	err   error
}

// tripped reports a confirmed non-zero cost.
func (r dayResult) tripped() bool {
	return r.err == nil && r.cents > 0
}

func (r dayResult) outcome() monitoring.DayOutcome {
	switch {
	case r.err != nil:
		return monitoring.DayFailure
	case r.cents > 0:
		return monitoring.DayCost
	default:
		return monitoring.DayZero
	}
}

func (e *Evaluator) fetchDay(ctx context.Context, day time.Time) dayResult {
	date := day.Format(billing.DayFormat)

	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	cents, err := e.fetcher.Usage(fctx, day, e.credential)
	if err != nil {
		reason := string(billing.KindOf(err))
		if reason == "" {
			reason = "unknown"
		}
		monitoring.FetchErrorsTotal.WithLabelValues(reason).Inc()
		log.Warn().Str("day", date).Str("reason", reason).Err(err).Msg("breaker: usage fetch failed")
		return dayResult{day: date, err: err}
	}
	return dayResult{day: date, cents: cents}
}

func verdictLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
