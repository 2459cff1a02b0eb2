package breaker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwatch/spendwatch/internal/billing"
)

type stubResult struct {
	cents float64
	err   error
}

// stubFetcher answers from a per-date table and records the days it was
// asked about.
type stubFetcher struct {
	mu      sync.Mutex
	results map[string]stubResult
	calls   []string
	delay   time.Duration
}

func (f *stubFetcher) Usage(_ context.Context, day time.Time, _ string) (float64, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	date := day.UTC().Format(billing.DayFormat)
	f.mu.Lock()
	f.calls = append(f.calls, date)
	r := f.results[date]
	f.mu.Unlock()
	return r.cents, r.err
}

func fail(kind billing.Kind) stubResult {
	return stubResult{err: &billing.FetchError{Kind: kind, Day: "test", Err: errors.New("boom")}}
}

func newTestEvaluator(f Fetcher, now time.Time) *Evaluator {
	e := New(f, "sk-test", time.Second, nil)
	e.now = func() time.Time { return now }
	return e
}

func TestEvaluate_ResolutionPolicy(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	today := "2026-08-30"
	yesterday := "2026-08-29"

	cases := []struct {
		name      string
		today     stubResult
		yesterday stubResult
		want      bool
	}{
		{"cost today", stubResult{cents: 123}, stubResult{cents: 0}, true},
		{"cost yesterday", stubResult{cents: 0}, stubResult{cents: 1.23}, true},
		{"cost both days", stubResult{cents: 100}, stubResult{cents: 100}, true},
		{"zero both days", stubResult{cents: 0}, stubResult{cents: 0}, false},
		{"failure today, zero yesterday", fail(billing.KindTransport), stubResult{cents: 0}, false},
		{"zero today, failure yesterday", stubResult{cents: 0}, fail(billing.KindAuth), false},
		{"failure today, cost yesterday", fail(billing.KindTimeout), stubResult{cents: 50}, true},
		{"cost today, failure yesterday", stubResult{cents: 50}, fail(billing.KindParse), true},
		{"both days failed", fail(billing.KindTransport), fail(billing.KindTransport), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &stubFetcher{results: map[string]stubResult{
				today:     tc.today,
				yesterday: tc.yesterday,
			}}
			e := newTestEvaluator(f, now)

			assert.Equal(t, tc.want, e.Evaluate(context.Background(), ""))
		})
	}
}

func TestEvaluate_FetchesTodayAndYesterdayUTC(t *testing.T) {
	// 01:00 local at UTC-5 is 06:00 UTC the same date; the UTC calendar
	// decides the two days, not the local one.
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 3, 1, 1, 0, 0, 0, loc) // 2026-03-01 06:00 UTC

	f := &stubFetcher{results: map[string]stubResult{}}
	e := newTestEvaluator(f, now)
	e.Evaluate(context.Background(), "")

	f.mu.Lock()
	calls := append([]string(nil), f.calls...)
	f.mu.Unlock()

	sort.Strings(calls)
	require.Equal(t, []string{"2026-02-28", "2026-03-01"}, calls)
}

func TestEvaluate_Idempotent(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f := &stubFetcher{results: map[string]stubResult{
		"2026-08-30": {cents: 0},
		"2026-08-29": {cents: 42},
	}}
	e := newTestEvaluator(f, now)

	first := e.Evaluate(context.Background(), "")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Evaluate(context.Background(), ""))
	}
}

func TestEvaluate_FetchesRunInParallel(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f := &stubFetcher{
		results: map[string]stubResult{},
		delay:   100 * time.Millisecond,
	}
	e := newTestEvaluator(f, now)

	start := time.Now()
	e.Evaluate(context.Background(), "")
	elapsed := time.Since(start)

	// Two sequential 100ms fetches would need 200ms.
	assert.Less(t, elapsed, 180*time.Millisecond)
}

func TestEvaluate_NeverPanicsOnFailure(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f := &stubFetcher{results: map[string]stubResult{
		"2026-08-30": fail(billing.KindTransport),
		"2026-08-29": {err: errors.New("not even a FetchError")},
	}}
	e := newTestEvaluator(f, now)

	assert.NotPanics(t, func() {
		assert.False(t, e.Evaluate(context.Background(), "conn1"))
	})
}
