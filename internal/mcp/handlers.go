package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/walkstat/internal/ensemble"
	"github.com/nvandessel/walkstat/internal/logging"
	"github.com/nvandessel/walkstat/internal/random"
	"github.com/nvandessel/walkstat/internal/ratelimit"
	"github.com/nvandessel/walkstat/internal/stats"
	"github.com/nvandessel/walkstat/internal/walk"
)

// registerTools registers all walkstat tools with the MCP server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "walk_simulate",
		Description: "Simulate an ensemble of ±1 lattice random walks and report how often they return to the origin",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "walk_sweep",
		Description: "Compare return-to-origin statistics across lattice dimensions (1D, 2D, 3D by default)",
	}, s.handleSweep)
}

// registerResources registers MCP resources describing server limits.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "walkstat://limits",
		Name:        "walkstat-limits",
		Description: "Size limits and defaults applied to walk_simulate and walk_sweep requests.",
		MIMEType:    "text/markdown",
	}, s.handleLimitsResource)
}

func (s *Server) handleLimitsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var b strings.Builder
	b.WriteString("# walkstat limits\n\n")
	fmt.Fprintf(&b, "- max cells per batch, and summed over a sweep (walks × max(steps, 1) × dim): %d\n", s.cfg.Limits.MaxCells)
	fmt.Fprintf(&b, "- default sweep dims: %v\n", s.cfg.Sweep.Dims)
	fmt.Fprintf(&b, "- default trajectory walks returned: %d\n", s.cfg.Export.MaxWalks)

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		}},
	}, nil
}

// checkSize rejects batches that are invalid or exceed the configured cell limit.
func (s *Server) checkSize(p walk.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if cells := p.Cells(); cells > s.cfg.Limits.MaxCells {
		return fmt.Errorf("%w: batch of %d cells exceeds limit of %d", walk.ErrInvalidArgument, cells, s.cfg.Limits.MaxCells)
	}
	return nil
}

// checkSweepSize validates every batch of req and bounds their combined
// size, since a sweep holds all of them in memory at once.
func (s *Server) checkSweepSize(req ensemble.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if cells := req.Cells(); cells > s.cfg.Limits.MaxCells {
		return fmt.Errorf("%w: sweep of %d cells across %d dims exceeds limit of %d",
			walk.ErrInvalidArgument, cells, len(req.Dims), s.cfg.Limits.MaxCells)
	}
	return nil
}

// resolveSeed returns the requested seed, or a fresh one when none was given.
func (s *Server) resolveSeed(requested *int64) (int64, error) {
	if requested != nil {
		return *requested, nil
	}
	return s.newSeed()
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ SimulateOutput, retErr error) {
	start := time.Now()
	runID := uuid.NewString()
	p := walk.Params{Dim: args.Dim, Steps: args.Steps, Walks: args.Walks}
	var seed int64
	var res *walk.Result

	defer func() {
		ev := logging.RunEvent{
			RunID:      runID,
			Command:    "mcp:walk_simulate",
			Dim:        p.Dim,
			Steps:      p.Steps,
			Walks:      p.Walks,
			Seed:       seed,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000,
		}
		if res != nil {
			ev.ReturnProbability = res.ReturnProbability
			ev.ReturnCounts = res.ReturnCounts
		}
		if retErr != nil {
			ev.Error = retErr.Error()
			s.logger.Warn("walk_simulate failed", "run_id", runID, "error", retErr)
		}
		s.runs.Record(ev)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "walk_simulate"); err != nil {
		return nil, SimulateOutput{}, err
	}
	if err := s.checkSize(p); err != nil {
		return nil, SimulateOutput{}, err
	}
	if args.MaxWalks < 0 {
		return nil, SimulateOutput{}, fmt.Errorf("%w: max_walks must be non-negative, got %d", walk.ErrInvalidArgument, args.MaxWalks)
	}

	var err error
	seed, err = s.resolveSeed(args.Seed)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	res, err = walk.Simulate(p, random.NewStepSource(seed))
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	out := SimulateOutput{
		RunID:        runID,
		SeedUsed:     seed,
		Summary:      stats.Summarize(res),
		ReturnCounts: res.ReturnCounts,
	}

	if args.IncludeTrajectories {
		limit := args.MaxWalks
		if limit == 0 {
			limit = s.cfg.Export.MaxWalks
		}
		if limit <= 0 || limit > p.Walks {
			limit = p.Walks
		}
		out.Trajectories = make([][][]int64, limit)
		for w := range out.Trajectories {
			out.Trajectories[w] = res.Trajectories.Walk(w)
		}
	}

	s.logger.Debug("walk_simulate", "run_id", runID, "dim", p.Dim, "steps", p.Steps, "walks", p.Walks,
		"seed", seed, "return_probability", res.ReturnProbability)

	return nil, out, nil
}

func (s *Server) handleSweep(ctx context.Context, req *sdk.CallToolRequest, args SweepInput) (_ *sdk.CallToolResult, _ SweepOutput, retErr error) {
	start := time.Now()
	runID := uuid.NewString()

	dims := args.Dims
	if len(dims) == 0 {
		dims = s.cfg.Sweep.Dims
	}
	sweep := ensemble.Request{
		Dims:        dims,
		Steps:       args.Steps,
		Walks:       args.Walks,
		Parallelism: s.cfg.Sweep.Parallelism,
	}

	defer func() {
		if retErr == nil {
			return
		}
		s.logger.Warn("walk_sweep failed", "run_id", runID, "error", retErr)
		s.runs.Record(logging.RunEvent{
			RunID:      runID,
			Command:    "mcp:walk_sweep",
			Dims:       dims,
			Steps:      args.Steps,
			Walks:      args.Walks,
			Seed:       sweep.Seed,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000,
			Error:      retErr.Error(),
		})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "walk_sweep"); err != nil {
		return nil, SweepOutput{}, err
	}
	if err := s.checkSweepSize(sweep); err != nil {
		return nil, SweepOutput{}, err
	}

	seed, err := s.resolveSeed(args.Seed)
	if err != nil {
		return nil, SweepOutput{}, err
	}
	sweep.Seed = seed

	results, err := ensemble.Sweep(ctx, sweep)
	if err != nil {
		return nil, SweepOutput{}, err
	}

	out := SweepOutput{RunID: runID, SeedUsed: seed, Results: make([]SweepEntry, len(results))}
	for i, r := range results {
		out.Results[i] = SweepEntry{Seed: r.Seed, Summary: r.Summary}
		s.runs.Record(logging.RunEvent{
			RunID:             runID,
			Command:           "mcp:walk_sweep",
			Dim:               r.Dim,
			Steps:             args.Steps,
			Walks:             args.Walks,
			Seed:              r.Seed,
			ReturnProbability: r.Result.ReturnProbability,
			ReturnCounts:      r.Result.ReturnCounts,
			DurationMS:        float64(r.Elapsed.Microseconds()) / 1000,
		})
	}

	return nil, out, nil
}
