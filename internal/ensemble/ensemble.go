// Package ensemble runs independent walk batches side by side, one per
// lattice dimension, so their return behavior can be compared.
//
// Each batch draws from its own step source seeded with
// random.Derive(Request.Seed, index). Results are therefore identical for a
// given request no matter how many batches run in parallel.
package ensemble

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/walkstat/internal/random"
	"github.com/nvandessel/walkstat/internal/stats"
	"github.com/nvandessel/walkstat/internal/walk"
)

var tracer = otel.Tracer("github.com/nvandessel/walkstat/internal/ensemble")

// DefaultDims is the classic 1D/2D/3D comparison.
var DefaultDims = []int{1, 2, 3}

// Request describes a sweep over dimensions.
type Request struct {
	// Dims lists the dimensions to simulate, one batch each, in output order.
	Dims []int

	// Steps and Walks apply to every batch.
	Steps int
	Walks int

	// Seed is the base seed; batch i uses random.Derive(Seed, i).
	Seed int64

	// Parallelism bounds concurrently running batches. Values <= 0 mean 1.
	Parallelism int
}

// DimResult is the outcome of one batch.
type DimResult struct {
	Dim     int
	Seed    int64
	Result  *walk.Result
	Summary stats.Summary

	// Elapsed is the time spent simulating this batch alone.
	Elapsed time.Duration
}

// Params returns the walk parameters of batch i.
func (r Request) Params(i int) walk.Params {
	return walk.Params{Dim: r.Dims[i], Steps: r.Steps, Walks: r.Walks}
}

// Cells returns the summed Params.Cells of every batch, saturating at
// math.MaxInt64. Sweep holds every batch in memory until it returns, so this
// is the figure to bound.
func (r Request) Cells() int64 {
	var total int64
	for i := range r.Dims {
		c := r.Params(i).Cells()
		if total > math.MaxInt64-c {
			return math.MaxInt64
		}
		total += c
	}
	return total
}

// Validate checks every batch before any work starts.
func (r Request) Validate() error {
	if len(r.Dims) == 0 {
		return fmt.Errorf("%w: no dimensions to sweep", walk.ErrInvalidArgument)
	}
	for i := range r.Dims {
		if err := r.Params(i).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Sweep simulates one batch per entry of req.Dims and returns the results in
// the same order. A batch that has not started when ctx is cancelled is
// skipped and Sweep returns the context error; a running batch always
// completes.
func Sweep(ctx context.Context, req Request) ([]DimResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "ensemble.sweep")
	defer span.End()
	span.SetAttributes(
		attribute.IntSlice("walk.dims", req.Dims),
		attribute.Int("walk.steps", req.Steps),
		attribute.Int("walk.walks", req.Walks),
		attribute.Int("ensemble.parallelism", req.Parallelism),
	)

	limit := req.Parallelism
	if limit <= 0 {
		limit = 1
	}

	results := make([]DimResult, len(req.Dims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range req.Dims {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runBatch(gctx, req, i)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return results, nil
}

func runBatch(ctx context.Context, req Request, i int) (DimResult, error) {
	p := req.Params(i)
	seed := random.Derive(req.Seed, i)

	_, span := tracer.Start(ctx, "ensemble.batch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("walk.dim", p.Dim),
		attribute.Int64("walk.seed", seed),
	)

	start := time.Now()
	res, err := walk.Simulate(p, random.NewStepSource(seed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DimResult{}, fmt.Errorf("simulating dim %d: %w", p.Dim, err)
	}
	span.SetAttributes(attribute.Float64("walk.return_probability", res.ReturnProbability))

	return DimResult{
		Dim:     p.Dim,
		Seed:    seed,
		Result:  res,
		Summary: stats.Summarize(res),
		Elapsed: time.Since(start),
	}, nil
}
