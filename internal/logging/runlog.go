package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunLogFile is the JSONL file name inside the run log directory.
const RunLogFile = "runs.jsonl"

// RunEvent records one simulation batch.
type RunEvent struct {
	RunID             string  `json:"run_id"`
	Command           string  `json:"command"`
	Dim               int     `json:"dim"`
	Dims              []int   `json:"dims,omitempty"` // set on sweep-level events
	Steps             int     `json:"steps"`
	Walks             int     `json:"walks"`
	Seed              int64   `json:"seed"`
	ReturnProbability float64 `json:"return_probability"`
	DurationMS        float64 `json:"duration_ms"`
	Error             string  `json:"error,omitempty"`

	// ReturnCounts is only kept at trace level.
	ReturnCounts []int `json:"return_counts,omitempty"`

	Time time.Time `json:"time"`
}

// RunLogger appends RunEvents to dir/runs.jsonl.
// It is safe for concurrent use. A nil RunLogger is safe to use;
// all methods are no-ops on nil receiver.
type RunLogger struct {
	mu    sync.Mutex
	file  *os.File
	trace bool
}

// NewRunLogger opens dir/runs.jsonl for append at "debug" or "trace" level.
// At "info" level (the default) it returns nil and creates nothing.
// It also returns nil if the file cannot be opened.
func NewRunLogger(dir string, level string) *RunLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, RunLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &RunLogger{file: f, trace: lvl <= LevelTrace}
}

// Record writes ev as a single JSONL line, stamping Time when unset and
// dropping ReturnCounts below trace level. Safe to call on nil receiver.
func (rl *RunLogger) Record(ev RunEvent) {
	if rl == nil {
		return
	}

	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if !rl.trace {
		ev.ReturnCounts = nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.file == nil {
		return
	}
	_, _ = rl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (rl *RunLogger) Close() {
	if rl == nil {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.file != nil {
		rl.file.Close()
		rl.file = nil
	}
}
