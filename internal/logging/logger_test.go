package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtTrace bool
	}{
		{"info filters debug", "info", false, false},
		{"debug passes debug", "debug", true, false},
		{"trace passes everything", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", got, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Log(context.Background(), LevelTrace, "trace message")
			if got := strings.Contains(buf.String(), "trace message"); got != tt.logAtTrace {
				t.Errorf("trace message visible = %v, want %v (buf: %q)", got, tt.logAtTrace, buf.String())
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "walk drawn", "walk", 3)

	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected level=TRACE label, got %q", buf.String())
	}
}

// readRuns parses every line of dir/runs.jsonl.
func readRuns(t *testing.T, dir string) []RunEvent {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, RunLogFile))
	if err != nil {
		t.Fatalf("failed to read %s: %v", RunLogFile, err)
	}
	var events []RunEvent
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var ev RunEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("failed to parse JSONL entry %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestNewRunLogger_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "info")
	if rl != nil {
		t.Error("expected nil RunLogger at info level")
	}

	// Nil logger should still be safe to use
	rl.Record(RunEvent{Command: "simulate"})
	rl.Close()

	if _, err := os.Stat(filepath.Join(dir, RunLogFile)); err == nil {
		t.Errorf("%s should not exist at info level", RunLogFile)
	}
}

func TestRunLogger_DebugDropsCounts(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "debug")
	defer rl.Close()

	rl.Record(RunEvent{RunID: "r1", Command: "simulate", Dim: 2, Steps: 10, Walks: 3, Seed: 5,
		ReturnProbability: 0.5, ReturnCounts: []int{0, 1, 2}})

	events := readRuns(t, dir)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.RunID != "r1" || ev.Dim != 2 || ev.Seed != 5 || ev.ReturnProbability != 0.5 {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.ReturnCounts != nil {
		t.Errorf("expected return counts dropped at debug level, got %v", ev.ReturnCounts)
	}
	if ev.Time.IsZero() {
		t.Error("expected time to be stamped")
	}
}

func TestRunLogger_TraceKeepsCounts(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "trace")
	defer rl.Close()

	rl.Record(RunEvent{RunID: "r1", ReturnCounts: []int{4, 0}})
	rl.Record(RunEvent{RunID: "r2"})

	events := readRuns(t, dir)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if len(events[0].ReturnCounts) != 2 || events[0].ReturnCounts[0] != 4 {
		t.Errorf("expected return counts kept at trace level, got %v", events[0].ReturnCounts)
	}
	if events[1].RunID != "r2" {
		t.Errorf("second event run_id = %q, want r2", events[1].RunID)
	}
}

func TestRunLogger_RecordAfterClose(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "debug")

	rl.Record(RunEvent{RunID: "before"})
	rl.Close()
	rl.Record(RunEvent{RunID: "after"})

	events := readRuns(t, dir)
	if len(events) != 1 || events[0].RunID != "before" {
		t.Errorf("expected only the pre-close event, got %+v", events)
	}
}

func TestNewRunLogger_CreatesDirWithPrivatePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "dir")
	rl := NewRunLogger(dir, "debug")
	if rl == nil {
		t.Fatal("expected non-nil RunLogger when dir needs creation")
	}
	defer rl.Close()

	rl.Record(RunEvent{RunID: "perm"})

	info, err := os.Stat(filepath.Join(dir, RunLogFile))
	if err != nil {
		t.Fatalf("%s should exist after dir creation: %v", RunLogFile, err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}
