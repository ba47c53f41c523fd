package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nvandessel/walkstat/internal/stats"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate a batch of walks and report return statistics",
		Long: `Simulate n independent ±1 lattice walks and report how many returned
to the origin.

Examples:
  walkstat simulate --dim 1 --steps 1000 --walks 1000
  walkstat simulate --dim 3 --steps 5000 --walks 200 --seed 42
  walkstat simulate --dim 2 --histogram --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			showHist, _ := cmd.Flags().GetBool("histogram")

			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			p, seed := batchParams(cmd, rt.cfg)
			run, err := runBatch(cmd.Context(), rt, "simulate", p, seed)
			if err != nil {
				return err
			}

			summary := stats.Summarize(run.Result)
			out := cmd.OutOrStdout()

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"run_id":    run.RunID,
					"seed_used": run.Seed,
					"summary":   summary,
				})
			}

			printSummary(out, summary, run.Seed)
			if showHist {
				fmt.Fprintln(out)
				printHistogram(out, summary.Histogram)
			}
			return nil
		},
	}

	addBatchFlags(cmd)
	cmd.Flags().Bool("histogram", false, "Also print the distribution of return counts")

	return cmd
}

// printSummary writes a human-readable summary of one batch.
func printSummary(w io.Writer, s stats.Summary, seed int64) {
	pct := 0.0
	if s.Walks > 0 {
		pct = 100 * float64(s.Returned) / float64(s.Walks)
	}
	fmt.Fprintf(w, "Dimension:           %d\n", s.Dim)
	fmt.Fprintf(w, "Steps per walk:      %s\n", humanize.Comma(int64(s.Steps)))
	fmt.Fprintf(w, "Walks:               %s\n", humanize.Comma(int64(s.Walks)))
	fmt.Fprintf(w, "Seed:                %d\n", seed)
	fmt.Fprintf(w, "Walks that returned: %s (%.1f%%)\n", humanize.Comma(int64(s.Returned)), pct)
	fmt.Fprintf(w, "Mean returns/walk:   %.3f\n", s.MeanReturns)
	fmt.Fprintf(w, "Max returns:         %s\n", humanize.Comma(int64(s.MaxReturns)))
	fmt.Fprintf(w, "Return probability:  %.4f\n", s.ReturnProbability)
}

// printHistogram writes one line per bin.
func printHistogram(w io.Writer, bins []stats.Bin) {
	fmt.Fprintln(w, "Returns  Walks")
	for _, b := range bins {
		fmt.Fprintf(w, "%7d  %s\n", b.Returns, humanize.Comma(int64(b.Walks)))
	}
}
