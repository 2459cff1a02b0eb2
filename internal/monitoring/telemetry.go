// Package monitoring - telemetry.go records evaluation events to a JSONL file.
//
// DESIGN: One JSON object per line, appended immediately after each
// evaluation for real-time tailing. The log captures how each verdict was
// reached (per-day outcome classes), not usage history: verdicts are still
// recomputed fresh on every request and nothing here is ever read back.
package monitoring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DayOutcome classifies one day's fetch result in an evaluation.
type DayOutcome string

const (
	DayCost    DayOutcome = "cost"    // success, cents > 0
	DayZero    DayOutcome = "zero"    // success, cents == 0
	DayFailure DayOutcome = "failure" // fetch failed
)

// EvaluationEvent is one evaluation record.
type EvaluationEvent struct {
	Timestamp  time.Time  `json:"timestamp"`
	ConnID     string     `json:"conn_id,omitempty"`
	Verdict    bool       `json:"verdict"`
	Today      DayOutcome `json:"today"`
	Yesterday  DayOutcome `json:"yesterday"`
	Blind      bool       `json:"blind"` // both days failed
	DurationMs int64      `json:"duration_ms"`
}

// Telemetry appends evaluation events to a JSONL file.
// A nil *Telemetry is valid and records nothing.
type Telemetry struct {
	path string
	mu   sync.Mutex
}

// NewTelemetry creates a telemetry recorder. Returns nil if path is empty
// (telemetry disabled).
func NewTelemetry(path string) (*Telemetry, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	// Create the file up front so tail -f works before the first event.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, err
		}
		_ = f.Close()
	}
	return &Telemetry{path: path}, nil
}

// RecordEvaluation appends one event. Failures are logged, never propagated:
// telemetry must not affect verdicts.
func (t *Telemetry) RecordEvaluation(ev EvaluationEvent) {
	if t == nil {
		return
	}

	line, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: marshal failed")
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry: open failed")
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		log.Warn().Err(err).Msg("telemetry: write failed")
	}
}
