package partition

import (
	"math/rand"
	"slices"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// DefaultTolerance is the near-minimum band used by LBTP.
const DefaultTolerance = 0.05

// TieBreakPolicy picks the container that receives the next node given the
// current cumulative container loads. len(loads) is always at least one.
type TieBreakPolicy interface {
	Choose(loads []int64) int
}

// NearMinimumRandom picks uniformly among containers whose load is within
// Tolerance of the current minimum. A negative Tolerance is treated as zero,
// so the least-loaded containers are always candidates.
type NearMinimumRandom struct {
	Tolerance float64
	Rand      *rand.Rand
}

func (p NearMinimumRandom) Choose(loads []int64) int {
	lo := slices.Min(loads)
	limit := float64(lo) * (1 + max(p.Tolerance, 0))

	candidates := make([]int, 0, len(loads))
	for i, l := range loads {
		if float64(l) <= limit {
			candidates = append(candidates, i)
		}
	}
	if p.Rand == nil {
		return candidates[0]
	}
	return candidates[p.Rand.Intn(len(candidates))]
}

// LowestIndex picks the first container holding the minimum load.
type LowestIndex struct{}

func (LowestIndex) Choose(loads []int64) int {
	return slices.Index(loads, slices.Min(loads))
}

// RoundRobinTies cycles through the containers tied at the minimum load,
// continuing after the previously chosen index. It keeps state between
// calls; use a fresh value per partitioning run.
type RoundRobinTies struct {
	next int
}

func (p *RoundRobinTies) Choose(loads []int64) int {
	lo := slices.Min(loads)
	k := len(loads)
	for step := 0; step < k; step++ {
		i := (p.next + step) % k
		if loads[i] == lo {
			p.next = i + 1
			return i
		}
	}
	return 0
}

// Balanced is the LBTP strategy: nodes are taken heaviest first (weight =
// active connections + load, ties kept in input order) and each goes to a
// container chosen by TieBreak from the running container loads.
type Balanced struct {
	TieBreak TieBreakPolicy
}

// NewBalanced returns LBTP with a 5% near-minimum random tie-break.
func NewBalanced(rng *rand.Rand) *Balanced {
	return &Balanced{TieBreak: NearMinimumRandom{Tolerance: DefaultTolerance, Rand: rng}}
}

func (b *Balanced) Name() string { return "LBTP" }

func (b *Balanced) Partition(nodes []model.Node, k int) ([]Container, error) {
	out, err := newContainers(k)
	if err != nil {
		return nil, err
	}

	tie := b.TieBreak
	if tie == nil {
		tie = LowestIndex{}
	}

	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, func(a, b model.Node) int {
		wa, wb := a.Weight(), b.Weight()
		switch {
		case wa > wb:
			return -1
		case wa < wb:
			return 1
		}
		return 0
	})

	loads := make([]int64, k)
	for _, n := range sorted {
		i := tie.Choose(loads)
		out[i].Nodes = append(out[i].Nodes, n.ID)
		loads[i] += n.Weight()
	}
	return out, nil
}
