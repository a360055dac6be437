// Package rng provides deterministic, isolated random sources for each
// part of a simulation run so a single seed reproduces a whole run.
package rng

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// Subsystem names. Each one gets its own stream so adding draws in one
// subsystem does not perturb another.
const (
	SubsystemPlacement = "placement"
	SubsystemTerminals = "terminals"
	SubsystemTopology  = "topology"
	SubsystemRouter    = "router"
	SubsystemTraffic   = "traffic"
	SubsystemAttach    = "attach"
	SubsystemPartition = "partition"
)

// PartitionedRNG hands out one *rand.Rand per subsystem, seeded with
// masterSeed XOR fnv1a64(name).
//
// Not thread-safe; the simulation is single-threaded.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// New creates a PartitionedRNG. A zero seed is replaced by the current
// time so unseeded runs differ.
func New(seed int64) *PartitionedRNG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// Seed returns the effective master seed.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// For returns the cached stream for the named subsystem. Never returns nil.
func (p *PartitionedRNG) For(name string) *rand.Rand {
	if r, ok := p.subsystems[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.subsystems[name] = r
	return r
}

// Uniform draws from [lo, hi).
func Uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// WeightedIndex picks an index with probability proportional to weights.
// It returns -1 when no weight is positive.
func WeightedIndex(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	x := r.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if x < w {
			return i
		}
		x -= w
	}
	return last
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
