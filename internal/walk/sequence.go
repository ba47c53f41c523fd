package walk

import "fmt"

// SequenceSource replays a fixed list of step signs, cycling back to the
// start when exhausted. It forces exact walks in tests and replays.
type SequenceSource struct {
	signs []int
	pos   int
}

// NewSequenceSource returns a source that yields signs in order. Every sign
// must be -1 or +1.
func NewSequenceSource(signs ...int) (*SequenceSource, error) {
	if len(signs) == 0 {
		return nil, fmt.Errorf("%w: empty step sequence", ErrInvalidArgument)
	}
	for i, s := range signs {
		if s != -1 && s != 1 {
			return nil, fmt.Errorf("%w: step %d is %d, want -1 or +1", ErrInvalidArgument, i, s)
		}
	}
	return &SequenceSource{signs: append([]int(nil), signs...)}, nil
}

// Sign returns the next sign in the sequence.
func (s *SequenceSource) Sign() int {
	v := s.signs[s.pos]
	s.pos = (s.pos + 1) % len(s.signs)
	return v
}
