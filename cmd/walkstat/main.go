package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/walkstat/internal/config"
	"github.com/nvandessel/walkstat/internal/logging"
	"github.com/nvandessel/walkstat/internal/random"
	"github.com/nvandessel/walkstat/internal/telemetry"
)

// Version information (set by goreleaser ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "walkstat",
		Short: "Lattice random walk simulator",
		Long: `walkstat simulates ensembles of ±1 lattice random walks and measures
how often they return to the origin.

Each walk moves every coordinate by +1 or -1 at every time-step. A walk
returns to the origin when all of its coordinates are zero at once.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.walkstat/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newSweepCmd(),
		newExportCmd(),
		newMCPServerCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// runtime bundles the per-invocation collaborators every command needs.
type runtime struct {
	cfg      *config.WalkstatConfig
	logger   *slog.Logger
	runs     *logging.RunLogger
	shutdown func(context.Context) error
}

// loadRuntime resolves configuration from the persistent flags and sets up
// logging and tracing.
func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())

	var runs *logging.RunLogger
	if dir, err := cfg.LogDir(); err != nil {
		logger.Warn("run log disabled", "error", err)
	} else {
		runs = logging.NewRunLogger(dir, cfg.Logging.Level)
	}

	shutdown, err := telemetry.Setup(cmd.Context(), "walkstat", version, cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}

	return &runtime{cfg: cfg, logger: logger, runs: runs, shutdown: shutdown}, nil
}

// loadConfig loads and validates configuration, applying --log-level last.
func loadConfig(cmd *cobra.Command) (*config.WalkstatConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (r *runtime) Close() {
	r.runs.Close()
	if r.shutdown != nil {
		if err := r.shutdown(context.Background()); err != nil {
			r.logger.Warn("flushing traces", "error", err)
		}
	}
}

// resolveSeed returns seed, or a fresh one when seed is 0.
func resolveSeed(seed int64) (int64, error) {
	if seed != 0 {
		return seed, nil
	}
	s, err := random.NewSeed()
	if err != nil {
		return 0, fmt.Errorf("generating seed: %w", err)
	}
	return s, nil
}
