// Package config provides unified configuration loading for walkstat.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/walkstat/internal/pathutil"
)

// EnvPrefix prefixes every environment override, e.g. WALKSTAT_STEPS.
const EnvPrefix = "WALKSTAT_"

// DefaultMaxCells caps walks*max(steps,1)*dim for a request (8 bytes each).
const DefaultMaxCells int64 = 50_000_000

// WalkstatConfig contains all walkstat configuration settings.
type WalkstatConfig struct {
	// Simulation holds the default batch for simulate and export.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Sweep configures multi-dimension comparisons.
	Sweep SweepConfig `json:"sweep" yaml:"sweep"`

	// Export configures trajectory export.
	Export ExportConfig `json:"export" yaml:"export"`

	// Limits bounds request sizes accepted by the CLI and MCP server.
	Limits LimitsConfig `json:"limits" yaml:"limits"`

	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Telemetry configures OpenTelemetry trace export.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// SimulationConfig is the default simulation batch.
type SimulationConfig struct {
	Dim   int `json:"dim" yaml:"dim" env:"DIM"`
	Steps int `json:"steps" yaml:"steps" env:"STEPS"`
	Walks int `json:"walks" yaml:"walks" env:"WALKS"`

	// Seed fixes the random stream. 0 draws a fresh seed per run.
	Seed int64 `json:"seed" yaml:"seed" env:"SEED"`
}

// SweepConfig configures the sweep command.
type SweepConfig struct {
	Dims []int `json:"dims" yaml:"dims" env:"SWEEP_DIMS"`

	// Parallelism bounds concurrently simulated batches.
	Parallelism int `json:"parallelism" yaml:"parallelism" env:"PARALLELISM"`
}

// ExportConfig configures the export command.
type ExportConfig struct {
	// Format is one of "json", "tsv" or "arrow".
	Format string `json:"format" yaml:"format" env:"EXPORT_FORMAT"`

	// MaxWalks limits exported trajectories; 0 exports every walk.
	MaxWalks int `json:"max_walks" yaml:"max_walks" env:"EXPORT_MAX_WALKS"`

	// Dir is where --output files may be written. Empty means the working
	// directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" env:"EXPORT_DIR"`
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	// MaxCells is the largest walks*max(steps,1)*dim a batch may hold, and the
	// largest sum over the batches of a sweep.
	MaxCells int64 `json:"max_cells" yaml:"max_cells" env:"MAX_CELLS"`
}

// LoggingConfig configures walkstat's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run logging to Dir/runs.jsonl.
	Level string `json:"level" yaml:"level" env:"LOG_LEVEL"`

	// Dir is where runs.jsonl is written. Empty means ~/.walkstat.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" env:"LOG_DIR"`
}

// TelemetryConfig configures OTLP/HTTP trace export.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector URL. Empty disables tracing.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"OTEL_ENDPOINT"`

	// Enabled can switch tracing off while keeping an endpoint configured.
	Enabled bool `json:"enabled" yaml:"enabled" env:"OTEL_ENABLED"`
}

// Default returns a WalkstatConfig with sensible defaults.
func Default() *WalkstatConfig {
	return &WalkstatConfig{
		Simulation: SimulationConfig{
			Dim:   1,
			Steps: 1000,
			Walks: 1000,
		},
		Sweep: SweepConfig{
			Dims:        []int{1, 2, 3},
			Parallelism: 1,
		},
		Export: ExportConfig{
			Format:   "json",
			MaxWalks: 5,
		},
		Limits: LimitsConfig{
			MaxCells: DefaultMaxCells,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns ~/.walkstat/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".walkstat", "config.yaml"), nil
}

// Load loads configuration from path (or the default location when path is
// empty) and then applies environment variables.
// Order: defaults -> config file -> environment variables
//
// An explicit path must exist; the default location is optional.
func Load(path string) (*WalkstatConfig, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	} else if defaultPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(defaultPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(defaultPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*WalkstatConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Drop the *fs.PathError wrapper so the full path stays out of the message.
		var pe *fs.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, fmt.Errorf("reading config file %s: %w", pathutil.RedactPath(path), err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", pathutil.RedactPath(path), err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *WalkstatConfig) Validate() error {
	if c.Simulation.Dim < 1 {
		return fmt.Errorf("simulation.dim must be at least 1, got %d", c.Simulation.Dim)
	}
	if c.Simulation.Steps < 0 {
		return fmt.Errorf("simulation.steps must be non-negative, got %d", c.Simulation.Steps)
	}
	if c.Simulation.Walks < 0 {
		return fmt.Errorf("simulation.walks must be non-negative, got %d", c.Simulation.Walks)
	}

	if len(c.Sweep.Dims) == 0 {
		return fmt.Errorf("sweep.dims must list at least one dimension")
	}
	for _, d := range c.Sweep.Dims {
		if d < 1 {
			return fmt.Errorf("sweep.dims entries must be at least 1, got %d", d)
		}
	}
	if c.Sweep.Parallelism < 0 {
		return fmt.Errorf("sweep.parallelism must be non-negative, got %d", c.Sweep.Parallelism)
	}

	validFormats := map[string]bool{"json": true, "tsv": true, "arrow": true}
	if !validFormats[c.Export.Format] {
		return fmt.Errorf("invalid export format: %s (valid: json, tsv, arrow)", c.Export.Format)
	}
	if c.Export.MaxWalks < 0 {
		return fmt.Errorf("export.max_walks must be non-negative, got %d", c.Export.MaxWalks)
	}

	if c.Limits.MaxCells <= 0 {
		return fmt.Errorf("limits.max_cells must be positive, got %d", c.Limits.MaxCells)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ExportDir returns the directory export --output files must stay inside.
func (c *WalkstatConfig) ExportDir() (string, error) {
	if c.Export.Dir != "" {
		return c.Export.Dir, nil
	}
	return os.Getwd()
}

// LogDir returns the run log directory, defaulting to ~/.walkstat.
func (c *WalkstatConfig) LogDir() (string, error) {
	if c.Logging.Dir != "" {
		return c.Logging.Dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".walkstat"), nil
}

// applyEnvOverrides applies WALKSTAT_* environment variables to the config.
// Unset variables leave the current values untouched.
func applyEnvOverrides(config *WalkstatConfig) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
