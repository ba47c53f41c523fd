package mcp

import "github.com/nvandessel/walkstat/internal/stats"

// SimulateInput defines the input for the walk_simulate tool.
type SimulateInput struct {
	Dim   int    `json:"dim" jsonschema:"number of lattice coordinates; 1, 2 or 3 for plotting, any value >= 1 is simulated"`
	Steps int    `json:"steps" jsonschema:"time-steps per walk (0 is a valid, empty batch)"`
	Walks int    `json:"walks" jsonschema:"number of independent walks"`
	Seed  *int64 `json:"seed,omitempty" jsonschema:"optional seed for a reproducible run; omitted draws a fresh one"`

	IncludeTrajectories bool `json:"include_trajectories,omitempty" jsonschema:"also return positions of the first max_walks walks"`
	MaxWalks            int  `json:"max_walks,omitempty" jsonschema:"walks to include when include_trajectories is set (default: export.max_walks)"`
}

// SimulateOutput defines the output for the walk_simulate tool.
type SimulateOutput struct {
	RunID        string        `json:"run_id" jsonschema:"identifier of this run in the run log"`
	SeedUsed     int64         `json:"seed_used" jsonschema:"seed that reproduces this run"`
	Summary      stats.Summary `json:"summary" jsonschema:"return statistics of the batch"`
	ReturnCounts []int         `json:"return_counts" jsonschema:"returns to the origin per walk"`
	Trajectories [][][]int64   `json:"trajectories,omitempty" jsonschema:"positions indexed [walk][step][dim]"`
}

// SweepInput defines the input for the walk_sweep tool.
type SweepInput struct {
	Dims  []int  `json:"dims,omitempty" jsonschema:"dimensions to compare (default: sweep.dims)"`
	Steps int    `json:"steps" jsonschema:"time-steps per walk"`
	Walks int    `json:"walks" jsonschema:"walks per dimension"`
	Seed  *int64 `json:"seed,omitempty" jsonschema:"optional base seed; each dimension derives its own"`
}

// SweepOutput defines the output for the walk_sweep tool.
type SweepOutput struct {
	RunID    string       `json:"run_id" jsonschema:"identifier of this sweep in the run log"`
	SeedUsed int64        `json:"seed_used" jsonschema:"base seed that reproduces this sweep"`
	Results  []SweepEntry `json:"results" jsonschema:"one entry per requested dimension, in request order"`
}

// SweepEntry is one dimension of a sweep.
type SweepEntry struct {
	Seed    int64         `json:"seed" jsonschema:"seed of this dimension's batch"`
	Summary stats.Summary `json:"summary" jsonschema:"return statistics of the batch"`
}
