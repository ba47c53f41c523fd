package walk

import (
	"fmt"
	"math"
)

// StepSource yields step components. Sign must return -1 or +1; any other
// negative value is read as -1 and any other non-negative value as +1.
// Implementations need not be safe for concurrent use.
type StepSource interface {
	Sign() int
}

// Result is the output of one simulation batch.
type Result struct {
	Params Params

	// Trajectories is shaped (Walks, Steps, Dim).
	Trajectories *Trajectories

	// ReturnCounts[w] is the number of time-steps at which walk w is at the
	// origin. Its length is always Walks.
	ReturnCounts []int

	// ReturnProbability is the fraction of walks with at least one return.
	ReturnProbability float64
}

// Simulate generates p.Walks independent walks of p.Steps steps in p.Dim
// dimensions and derives their return statistics.
//
// Steps are drawn from src in walk-major order: all steps of walk 0 first,
// and within a step, coordinate 0 first. A source in a given state therefore
// always yields the same Result.
//
// Simulate does not retain src or the Result. It returns ErrInvalidArgument
// (wrapped) when p fails Validate, src is nil, or the batch size overflows
// an int. Allocation failure for very
// large batches is not recovered.
func Simulate(p Params, src StepSource) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil step source", ErrInvalidArgument)
	}
	if p.Cells() >= math.MaxInt {
		return nil, fmt.Errorf("%w: batch of %d walks × %d steps × %d dims is not addressable",
			ErrInvalidArgument, p.Walks, p.Steps, p.Dim)
	}

	tr := newTrajectories(p)
	integrate(tr, src)

	counts := CountReturns(tr)
	return &Result{
		Params:            p,
		Trajectories:      tr,
		ReturnCounts:      counts,
		ReturnProbability: ReturnProbability(counts),
	}, nil
}

// integrate fills tr with the running sum of steps drawn from src.
func integrate(tr *Trajectories, src StepSource) {
	dim := tr.dim
	for w := 0; w < tr.walks; w++ {
		base := w * tr.steps * dim
		for t := 0; t < tr.steps; t++ {
			off := base + t*dim
			for d := 0; d < dim; d++ {
				step := int64(normalize(src.Sign()))
				if t == 0 {
					tr.data[off+d] = step
				} else {
					tr.data[off+d] = tr.data[off-dim+d] + step
				}
			}
		}
	}
}

func normalize(sign int) int {
	if sign < 0 {
		return -1
	}
	return 1
}

// CountReturns returns, for each walk, the number of time-steps at which all
// coordinates are zero. Repeated returns each count.
func CountReturns(tr *Trajectories) []int {
	counts := make([]int, tr.walks)
	for w := range counts {
		n := 0
		for t := 0; t < tr.steps; t++ {
			if tr.AtOrigin(w, t) {
				n++
			}
		}
		counts[w] = n
	}
	return counts
}

// ReturnProbability returns the fraction of counts that are at least one.
// An empty batch has probability 0.
func ReturnProbability(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	returned := 0
	for _, c := range counts {
		if c > 0 {
			returned++
		}
	}
	return float64(returned) / float64(len(counts))
}
