package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nvandessel/walkstat/internal/ensemble"
	"github.com/nvandessel/walkstat/internal/logging"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare return probabilities across dimensions",
		Long: `Simulate one batch per dimension and compare how often walks return
to the origin. Each dimension uses a seed derived from the base seed, so a
sweep is reproducible regardless of --parallel.

Examples:
  walkstat sweep                               # dims 1,2,3 from config
  walkstat sweep --dims 1,2,3,4 --steps 10000 --walks 500 --parallel 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			p, seed := batchParams(cmd, rt.cfg)
			dims := rt.cfg.Sweep.Dims
			if cmd.Flags().Changed("dims") {
				dims, _ = cmd.Flags().GetIntSlice("dims")
			}
			parallel := rt.cfg.Sweep.Parallelism
			if cmd.Flags().Changed("parallel") {
				parallel, _ = cmd.Flags().GetInt("parallel")
			}

			req := ensemble.Request{
				Dims:        dims,
				Steps:       p.Steps,
				Walks:       p.Walks,
				Parallelism: parallel,
			}
			start := time.Now()
			runID := uuid.NewString()

			fail := func(err error) error {
				rt.runs.Record(logging.RunEvent{
					RunID:      runID,
					Command:    "sweep",
					Dims:       dims,
					Steps:      p.Steps,
					Walks:      p.Walks,
					Seed:       req.Seed,
					DurationMS: float64(time.Since(start).Microseconds()) / 1000,
					Error:      err.Error(),
				})
				return err
			}

			if err := checkSweepSize(req, rt.cfg); err != nil {
				return fail(err)
			}
			if req.Seed, err = resolveSeed(seed); err != nil {
				return fail(err)
			}
			seed = req.Seed

			results, err := ensemble.Sweep(cmd.Context(), req)
			if err != nil {
				return fail(fmt.Errorf("sweep failed: %w", err))
			}
			elapsed := time.Since(start)

			for _, r := range results {
				rt.runs.Record(logging.RunEvent{
					RunID:             runID,
					Command:           "sweep",
					Dim:               r.Dim,
					Steps:             p.Steps,
					Walks:             p.Walks,
					Seed:              r.Seed,
					ReturnProbability: r.Result.ReturnProbability,
					ReturnCounts:      r.Result.ReturnCounts,
					DurationMS:        float64(r.Elapsed.Microseconds()) / 1000,
				})
			}
			rt.logger.Debug("sweep complete", "run_id", runID, "dims", dims, "elapsed", elapsed)

			out := cmd.OutOrStdout()
			if jsonOut {
				entries := make([]map[string]interface{}, len(results))
				for i, r := range results {
					entries[i] = map[string]interface{}{
						"seed":    r.Seed,
						"summary": r.Summary,
					}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"run_id":    runID,
					"seed_used": seed,
					"results":   entries,
				})
			}

			fmt.Fprintf(out, "Sweep of %s walks × %s steps (seed %d)\n\n",
				humanize.Comma(int64(p.Walks)), humanize.Comma(int64(p.Steps)), seed)
			fmt.Fprintln(out, "Dim  Returned  Probability  Mean returns")
			for _, r := range results {
				fmt.Fprintf(out, "%3d  %8s  %11.4f  %12.3f\n",
					r.Dim, humanize.Comma(int64(r.Summary.Returned)), r.Summary.ReturnProbability, r.Summary.MeanReturns)
			}
			return nil
		},
	}

	addBatchFlags(cmd)
	cmd.Flags().IntSlice("dims", nil, "Dimensions to compare (default from config)")
	cmd.Flags().Int("parallel", 0, "Batches simulated concurrently (default from config)")

	return cmd
}
