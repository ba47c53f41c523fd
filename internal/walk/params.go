package walk

import (
	"fmt"
	"math"
)

// Params describes one simulation batch.
type Params struct {
	// Dim is the number of lattice coordinates. Any value >= 1 is simulated;
	// plotting collaborators only handle 1, 2 and 3.
	Dim int `json:"dim" yaml:"dim"`

	// Steps is the number of time-steps per walk. Zero is a valid,
	// degenerate batch.
	Steps int `json:"steps" yaml:"steps"`

	// Walks is the number of independent walks in the batch.
	Walks int `json:"walks" yaml:"walks"`
}

// Validate reports the first parameter outside its domain.
func (p Params) Validate() error {
	if p.Dim < 1 {
		return fmt.Errorf("%w: dim must be at least 1, got %d", ErrInvalidArgument, p.Dim)
	}
	if p.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidArgument, p.Steps)
	}
	if p.Walks < 0 {
		return fmt.Errorf("%w: walks must be non-negative, got %d", ErrInvalidArgument, p.Walks)
	}
	return nil
}

// Cells returns walks*max(steps,1)*dim, the storage a batch costs: the
// stored coordinates, and at least one per walk for its return count even
// when steps is 0. The product saturates at math.MaxInt64 instead of
// overflowing. Out-of-domain sizes yield 0.
func (p Params) Cells() int64 {
	if p.Dim <= 0 || p.Steps < 0 || p.Walks <= 0 {
		return 0
	}
	cells := int64(p.Walks)
	for _, f := range []int64{max(int64(p.Steps), 1), int64(p.Dim)} {
		if cells > math.MaxInt64/f {
			return math.MaxInt64
		}
		cells *= f
	}
	return cells
}
