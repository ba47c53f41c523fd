package random

import "math/rand/v2"

// StepSource draws ±1 steps from a seeded PCG generator. Each 64-bit draw
// supplies 64 steps. It is not safe for concurrent use; give every batch its
// own source.
type StepSource struct {
	r    *rand.Rand
	seed int64
	bits uint64
	left uint
}

// NewStepSource returns a deterministic step source for seed.
func NewStepSource(seed int64) *StepSource {
	return &StepSource{
		r:    rand.New(rand.NewPCG(uint64(seed), 0)),
		seed: seed,
	}
}

// Sign returns -1 or +1 with equal probability.
func (s *StepSource) Sign() int {
	if s.left == 0 {
		s.bits = s.r.Uint64()
		s.left = 64
	}
	bit := s.bits & 1
	s.bits >>= 1
	s.left--
	if bit == 0 {
		return -1
	}
	return 1
}

// Seed returns the seed the source was created with.
func (s *StepSource) Seed() int64 { return s.seed }
