package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvandessel/walkstat/internal/export"
	"github.com/nvandessel/walkstat/internal/pathutil"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Simulate a batch and write trajectories for plotting",
		Long: fmt.Sprintf(`Simulate a batch and write its trajectories, return counts and return
probability to stdout in a form a plotting tool can read.

Formats: %s

Examples:
  walkstat export --dim 2 --steps 500 --walks 5 > walks.json
  walkstat export --format tsv --dim 1 --steps 100 --max-walks 3
  walkstat export --format arrow --dim 3 --walks 100 -o plots/walks.arrow`, strings.Join(export.Formats(), ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			format := rt.cfg.Export.Format
			if cmd.Flags().Changed("format") {
				format, _ = cmd.Flags().GetString("format")
			}
			if !export.Supported(format) {
				return fmt.Errorf("unsupported export format %q (known: %s)", format, strings.Join(export.Formats(), ", "))
			}
			maxWalks := rt.cfg.Export.MaxWalks
			if cmd.Flags().Changed("max-walks") {
				maxWalks, _ = cmd.Flags().GetInt("max-walks")
			}
			if maxWalks < 0 {
				return fmt.Errorf("--max-walks must be non-negative, got %d", maxWalks)
			}

			output, _ := cmd.Flags().GetString("output")
			if output != "" {
				exportDir, err := rt.cfg.ExportDir()
				if err != nil {
					return fmt.Errorf("resolving export directory: %w", err)
				}
				if output, err = pathutil.ResolveOutput(output, []string{exportDir}); err != nil {
					return err
				}
			}

			p, seed := batchParams(cmd, rt.cfg)
			run, err := runBatch(cmd.Context(), rt, "export", p, seed)
			if err != nil {
				return err
			}

			payload := export.Payload{Result: run.Result, Seed: run.Seed, MaxWalks: maxWalks}
			if output == "" {
				if err := export.Write(format, cmd.OutOrStdout(), payload); err != nil {
					return fmt.Errorf("writing %s export: %w", format, err)
				}
				rt.logger.Debug("exported", "run_id", run.RunID, "format", format, "max_walks", maxWalks)
				return nil
			}

			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", pathutil.RedactPath(output), err)
			}
			if err := export.Write(format, f, payload); err != nil {
				f.Close()
				os.Remove(output)
				return fmt.Errorf("writing %s export: %w", format, err)
			}
			if err := f.Close(); err != nil {
				os.Remove(output)
				return fmt.Errorf("closing %s: %w", pathutil.RedactPath(output), err)
			}

			rt.logger.Info("exported", "run_id", run.RunID, "format", format, "path", output)
			return nil
		},
	}

	addBatchFlags(cmd)
	cmd.Flags().String("format", "", "Output format (default from config)")
	cmd.Flags().Int("max-walks", 0, "Walks to include; 0 includes all (default from config)")
	cmd.Flags().StringP("output", "o", "", "Write to a file inside export.dir instead of stdout")

	return cmd
}
