package routing

import "math/rand"

// Jitter draws the multiplicative perturbation applied to an edge cost.
// A new factor is drawn for every relaxation.
type Jitter interface {
	Factor(lo, hi float64) float64
}

// UniformJitter draws factors uniformly from [lo, hi).
type UniformJitter struct {
	rng *rand.Rand
}

func NewUniformJitter(rng *rand.Rand) *UniformJitter {
	return &UniformJitter{rng: rng}
}

func (j *UniformJitter) Factor(lo, hi float64) float64 {
	return lo + j.rng.Float64()*(hi-lo)
}

// FixedJitter always returns the same factor regardless of bounds. Use
// FixedJitter(1) for deterministic costs.
type FixedJitter float64

func (f FixedJitter) Factor(lo, hi float64) float64 {
	return float64(f)
}
