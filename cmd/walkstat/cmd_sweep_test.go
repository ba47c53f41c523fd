package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/walkstat/internal/logging"
	"github.com/nvandessel/walkstat/internal/random"
	"github.com/nvandessel/walkstat/internal/stats"
	"github.com/nvandessel/walkstat/internal/walk"
)

type sweepJSON struct {
	SeedUsed int64 `json:"seed_used"`
	Results  []struct {
		Seed    int64         `json:"seed"`
		Summary stats.Summary `json:"summary"`
	} `json:"results"`
}

func TestNewSweepCmd(t *testing.T) {
	cmd := newSweepCmd()
	if cmd.Use != "sweep" {
		t.Errorf("Use = %q, want %q", cmd.Use, "sweep")
	}
	for _, flag := range []string{"dims", "parallel", "steps", "walks", "seed"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestSweepCmd_JSON(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, newSweepCmd(), "sweep", "--json",
		"--dims", "3,1", "--steps", "40", "--walks", "10", "--seed", "8")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	var got sweepJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.SeedUsed != 8 {
		t.Errorf("seed_used = %d, want 8", got.SeedUsed)
	}
	if len(got.Results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(got.Results))
	}
	for i, wantDim := range []int{3, 1} {
		if got.Results[i].Summary.Dim != wantDim {
			t.Errorf("results[%d].dim = %d, want %d", i, got.Results[i].Summary.Dim, wantDim)
		}
		if got.Results[i].Seed != random.Derive(8, i) {
			t.Errorf("results[%d].seed = %d, want derived seed", i, got.Results[i].Seed)
		}
	}
}

func TestSweepCmd_ParallelMatchesSerial(t *testing.T) {
	isolateHome(t)

	args := []string{"sweep", "--json", "--steps", "60", "--walks", "15", "--seed", "21"}
	serial, err := execute(t, newSweepCmd(), append(args, "--parallel", "1")...)
	if err != nil {
		t.Fatalf("serial sweep: %v", err)
	}
	parallel, err := execute(t, newSweepCmd(), append(args, "--parallel", "3")...)
	if err != nil {
		t.Fatalf("parallel sweep: %v", err)
	}

	var a, b sweepJSON
	if err := json.Unmarshal([]byte(serial), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(parallel), &b); err != nil {
		t.Fatal(err)
	}
	for i := range a.Results {
		if a.Results[i].Summary.ReturnProbability != b.Results[i].Summary.ReturnProbability {
			t.Errorf("dim %d differs between serial and parallel", a.Results[i].Summary.Dim)
		}
	}
}

func TestSweepCmd_Text(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, newSweepCmd(), "sweep", "--steps", "1000", "--walks", "20", "--seed", "2")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !strings.Contains(out, "1,000 steps") || !strings.Contains(out, "Dim  Returned") {
		t.Errorf("unexpected output:\n%s", out)
	}
	// Header plus default dims 1, 2, 3.
	if n := strings.Count(out, "\n"); n < 5 {
		t.Errorf("output has %d lines:\n%s", n, out)
	}
}

func TestSweepCmd_InvalidDim(t *testing.T) {
	isolateHome(t)

	if _, err := execute(t, newSweepCmd(), "sweep", "--dims", "1,0", "--steps", "5", "--walks", "5"); err == nil {
		t.Fatal("expected error for dim 0")
	}
}

func TestSweepCmd_TotalExceedsMaxCells(t *testing.T) {
	isolateHome(t)
	t.Setenv("WALKSTAT_MAX_CELLS", "1000")

	// Each batch holds 900 cells; together they hold 1800.
	if _, err := execute(t, newSweepCmd(), "sweep", "--dims", "3", "--steps", "30", "--walks", "10"); err != nil {
		t.Fatalf("single batch under limit: %v", err)
	}
	_, err := execute(t, newSweepCmd(), "sweep", "--dims", "3,3", "--steps", "30", "--walks", "10")
	if !errors.Is(err, walk.ErrInvalidArgument) || !strings.Contains(err.Error(), "max_cells") {
		t.Errorf("err = %v, want max_cells error", err)
	}
}

func readRunEvents(t *testing.T, logDir string) []logging.RunEvent {
	t.Helper()
	f, err := os.Open(filepath.Join(logDir, logging.RunLogFile))
	if err != nil {
		t.Fatalf("open run log: %v", err)
	}
	defer f.Close()

	var events []logging.RunEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev logging.RunEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("invalid run event %q: %v", sc.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestSweepCmd_RecordsRuns(t *testing.T) {
	isolateHome(t)
	logDir := t.TempDir()
	t.Setenv("WALKSTAT_LOG_DIR", logDir)
	t.Setenv("WALKSTAT_MAX_CELLS", "1000")

	if _, err := execute(t, newSweepCmd(), "sweep", "--log-level", "debug",
		"--dims", "1,2", "--steps", "10", "--walks", "5", "--seed", "3"); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if _, err := execute(t, newSweepCmd(), "sweep", "--log-level", "debug",
		"--dims", "3,3", "--steps", "30", "--walks", "10", "--seed", "3"); err == nil {
		t.Fatal("expected oversized sweep to fail")
	}

	events := readRunEvents(t, logDir)
	if len(events) != 3 {
		t.Fatalf("got %d run events, want 2 batches and 1 failure: %+v", len(events), events)
	}
	for _, ev := range events[:2] {
		if ev.Command != "sweep" || ev.Error != "" || ev.DurationMS < 0 {
			t.Errorf("batch event = %+v", ev)
		}
	}
	failed := events[2]
	if failed.Error == "" || len(failed.Dims) != 2 || failed.Walks != 10 {
		t.Errorf("failure event = %+v", failed)
	}
}
