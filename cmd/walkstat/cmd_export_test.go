package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v17/arrow/ipc"

	"github.com/nvandessel/walkstat/internal/export"
)

func TestNewExportCmd(t *testing.T) {
	cmd := newExportCmd()
	if cmd.Use != "export" {
		t.Errorf("Use = %q, want %q", cmd.Use, "export")
	}
	for _, flag := range []string{"format", "max-walks", "dim", "steps", "walks", "seed"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("missing --%s flag", flag)
		}
	}
}

func TestExportCmd_JSON(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, newExportCmd(), "export",
		"--dim", "2", "--steps", "7", "--walks", "10", "--seed", "4", "--max-walks", "3")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	var doc struct {
		Shape        [3]int      `json:"shape"`
		Seed         int64       `json:"seed"`
		Trajectories [][][]int64 `json:"trajectories"`
		ReturnCounts []int       `json:"return_counts"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if doc.Seed != 4 {
		t.Errorf("seed = %d, want 4", doc.Seed)
	}
	if len(doc.Trajectories) != 3 {
		t.Errorf("len(trajectories) = %d, want 3", len(doc.Trajectories))
	}
	if len(doc.ReturnCounts) != 10 {
		t.Errorf("len(return_counts) = %d, want 10", len(doc.ReturnCounts))
	}
}

func TestExportCmd_TSV(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, newExportCmd(), "export", "--format", "tsv",
		"--dim", "1", "--steps", "4", "--walks", "2", "--seed", "3", "--max-walks", "0")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "walk\tstep\tx0" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 1+2*4 {
		t.Errorf("got %d lines, want %d", len(lines), 1+2*4)
	}
}

func TestExportCmd_Arrow(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, newExportCmd(), "export", "--format", "arrow",
		"--dim", "3", "--steps", "5", "--walks", "2", "--seed", "6")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	rdr, err := ipc.NewReader(bytes.NewReader([]byte(out)))
	if err != nil {
		t.Fatalf("ipc.NewReader: %v", err)
	}
	defer rdr.Release()

	var rows int64
	for rdr.Next() {
		rows += rdr.Record().NumRows()
	}
	if rows != 2*5 {
		t.Errorf("rows = %d, want 10", rows)
	}
}

func TestExportCmd_UnknownFormat(t *testing.T) {
	isolateHome(t)

	_, err := execute(t, newExportCmd(), "export", "--format", "parquet")
	if err == nil || !strings.Contains(err.Error(), "arrow") {
		t.Errorf("err = %v, want error listing known formats", err)
	}
}

func TestExportCmd_OutputFile(t *testing.T) {
	isolateHome(t)
	exportDir := t.TempDir()
	t.Setenv("WALKSTAT_EXPORT_DIR", exportDir)

	path := filepath.Join(exportDir, "plots", "walks.json")
	out, err := execute(t, newExportCmd(), "export", "-o", path,
		"--dim", "1", "--steps", "3", "--walks", "2", "--seed", "1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty when writing a file", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !json.Valid(data) {
		t.Errorf("export file is not valid JSON:\n%s", data)
	}
}

func TestExportCmd_OutputOutsideExportDir(t *testing.T) {
	isolateHome(t)
	t.Setenv("WALKSTAT_EXPORT_DIR", t.TempDir())

	_, err := execute(t, newExportCmd(), "export", "-o", filepath.Join(t.TempDir(), "walks.json"),
		"--steps", "3", "--walks", "2")
	if err == nil || !strings.Contains(err.Error(), "outside allowed directories") {
		t.Errorf("err = %v, want outside allowed directories", err)
	}
}

func TestExportCmd_OutputRemovedOnWriteError(t *testing.T) {
	isolateHome(t)
	exportDir := t.TempDir()
	t.Setenv("WALKSTAT_EXPORT_DIR", exportDir)

	export.Register("truncated", func(w io.Writer, p export.Payload) error {
		if _, err := io.WriteString(w, "partial"); err != nil {
			return err
		}
		return errors.New("disk full")
	})

	path := filepath.Join(exportDir, "walks.out")
	_, err := execute(t, newExportCmd(), "export", "--format", "truncated", "-o", path,
		"--steps", "3", "--walks", "2", "--seed", "1")
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want writer error", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("partial export left on disk: stat err = %v", statErr)
	}
}

func TestExportCmd_OutputThroughFileSymlink(t *testing.T) {
	if goruntime.GOOS == "windows" {
		t.Skip("symlink test not supported on Windows")
	}
	isolateHome(t)
	exportDir := t.TempDir()
	outsideDir := t.TempDir()
	t.Setenv("WALKSTAT_EXPORT_DIR", exportDir)

	victim := filepath.Join(outsideDir, "victim.txt")
	link := filepath.Join(exportDir, "out.json")
	if err := os.Symlink(victim, link); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, newExportCmd(), "export", "-o", link, "--steps", "3", "--walks", "2"); err == nil {
		t.Fatal("expected error for output symlinked outside the export dir")
	}
	if _, err := os.Stat(victim); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file created outside the export dir: stat err = %v", err)
	}
}
