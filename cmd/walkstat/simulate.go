package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nvandessel/walkstat/internal/config"
	"github.com/nvandessel/walkstat/internal/ensemble"
	"github.com/nvandessel/walkstat/internal/logging"
	"github.com/nvandessel/walkstat/internal/random"
	"github.com/nvandessel/walkstat/internal/walk"
)

var tracer = otel.Tracer("github.com/nvandessel/walkstat/cmd/walkstat")

// addBatchFlags registers --dim, --steps, --walks and --seed on cmd.
// Unset flags fall back to the simulation section of the config.
func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("dim", 0, "Number of lattice coordinates (default from config)")
	cmd.Flags().Int("steps", 0, "Time-steps per walk (default from config)")
	cmd.Flags().Int("walks", 0, "Number of walks (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed; 0 draws a fresh one")
}

// batchParams merges explicitly set batch flags over configured defaults.
func batchParams(cmd *cobra.Command, cfg *config.WalkstatConfig) (walk.Params, int64) {
	p := walk.Params{
		Dim:   cfg.Simulation.Dim,
		Steps: cfg.Simulation.Steps,
		Walks: cfg.Simulation.Walks,
	}
	seed := cfg.Simulation.Seed

	if cmd.Flags().Changed("dim") {
		p.Dim, _ = cmd.Flags().GetInt("dim")
	}
	if cmd.Flags().Changed("steps") {
		p.Steps, _ = cmd.Flags().GetInt("steps")
	}
	if cmd.Flags().Changed("walks") {
		p.Walks, _ = cmd.Flags().GetInt("walks")
	}
	if cmd.Flags().Changed("seed") {
		seed, _ = cmd.Flags().GetInt64("seed")
	}
	return p, seed
}

// checkSize validates p and enforces limits.max_cells.
func checkSize(p walk.Params, cfg *config.WalkstatConfig) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if cells := p.Cells(); cells > cfg.Limits.MaxCells {
		return fmt.Errorf("%w: batch of %d cells exceeds limits.max_cells (%d)", walk.ErrInvalidArgument, cells, cfg.Limits.MaxCells)
	}
	return nil
}

// checkSweepSize validates every batch of req and enforces limits.max_cells
// on their sum, since a sweep holds all batches in memory at once.
func checkSweepSize(req ensemble.Request, cfg *config.WalkstatConfig) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if cells := req.Cells(); cells > cfg.Limits.MaxCells {
		return fmt.Errorf("%w: sweep of %d cells across %d dims exceeds limits.max_cells (%d)",
			walk.ErrInvalidArgument, cells, len(req.Dims), cfg.Limits.MaxCells)
	}
	return nil
}

// batchRun is one simulated batch together with the seed that reproduces it.
type batchRun struct {
	RunID  string
	Seed   int64
	Result *walk.Result
}

// runBatch simulates one batch and records it in the run log.
func runBatch(ctx context.Context, rt *runtime, command string, p walk.Params, seed int64) (run batchRun, err error) {
	_, span := tracer.Start(ctx, "walkstat."+command)
	defer span.End()

	start := time.Now()
	run.RunID = uuid.NewString()

	defer func() {
		ev := logging.RunEvent{
			RunID:      run.RunID,
			Command:    command,
			Dim:        p.Dim,
			Steps:      p.Steps,
			Walks:      p.Walks,
			Seed:       run.Seed,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		}
		if run.Result != nil {
			ev.ReturnProbability = run.Result.ReturnProbability
			ev.ReturnCounts = run.Result.ReturnCounts
		}
		if err != nil {
			ev.Error = err.Error()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		rt.runs.Record(ev)
	}()

	if err := checkSize(p, rt.cfg); err != nil {
		return run, err
	}

	run.Seed, err = resolveSeed(seed)
	if err != nil {
		return run, err
	}
	span.SetAttributes(
		attribute.Int("walk.dim", p.Dim),
		attribute.Int("walk.steps", p.Steps),
		attribute.Int("walk.walks", p.Walks),
		attribute.Int64("walk.seed", run.Seed),
	)

	rt.logger.Debug("simulating", "command", command, "dim", p.Dim, "steps", p.Steps, "walks", p.Walks, "seed", run.Seed)

	run.Result, err = walk.Simulate(p, random.NewStepSource(run.Seed))
	if err != nil {
		return run, err
	}

	rt.logger.Debug("simulated", "run_id", run.RunID, "return_probability", run.Result.ReturnProbability,
		"elapsed", time.Since(start))
	return run, nil
}
