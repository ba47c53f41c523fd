package walk

// Trajectories holds the positions of every walk in a batch, shaped
// (walks, steps, dim). Storage is a single row-major slice: the coordinate d
// of walk w at step t lives at index (w*steps+t)*dim+d.
//
// Trajectories has no mutators; accessors hand out copies.
type Trajectories struct {
	walks int
	steps int
	dim   int
	data  []int64
}

// newTrajectories allocates storage for p. Callers must have checked that
// p.Cells() fits an int, which bounds the product below.
func newTrajectories(p Params) *Trajectories {
	return &Trajectories{
		walks: p.Walks,
		steps: p.Steps,
		dim:   p.Dim,
		data:  make([]int64, int(int64(p.Walks)*int64(p.Steps)*int64(p.Dim))),
	}
}

// Walks returns the number of walks.
func (tr *Trajectories) Walks() int { return tr.walks }

// Steps returns the number of stored positions per walk.
func (tr *Trajectories) Steps() int { return tr.steps }

// Dim returns the number of coordinates per position.
func (tr *Trajectories) Dim() int { return tr.dim }

// Shape returns (walks, steps, dim).
func (tr *Trajectories) Shape() [3]int {
	return [3]int{tr.walks, tr.steps, tr.dim}
}

// Position returns a copy of the position of walk w after step t.
// It panics if w or t is out of range, like a slice index would.
func (tr *Trajectories) Position(w, t int) []int64 {
	off := tr.offset(w, t)
	pos := make([]int64, tr.dim)
	copy(pos, tr.data[off:off+tr.dim])
	return pos
}

// Walk returns a copy of every position of walk w, indexed [t][d].
func (tr *Trajectories) Walk(w int) [][]int64 {
	out := make([][]int64, tr.steps)
	for t := range out {
		out[t] = tr.Position(w, t)
	}
	return out
}

// AtOrigin reports whether walk w sits on the origin after step t.
func (tr *Trajectories) AtOrigin(w, t int) bool {
	off := tr.offset(w, t)
	return allZero(tr.data[off : off+tr.dim])
}

func (tr *Trajectories) offset(w, t int) int {
	if w < 0 || w >= tr.walks || t < 0 || t >= tr.steps {
		panic("walk: position index out of range")
	}
	return (w*tr.steps + t) * tr.dim
}

func allZero(coords []int64) bool {
	for _, c := range coords {
		if c != 0 {
			return false
		}
	}
	return true
}
