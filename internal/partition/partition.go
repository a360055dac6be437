// Package partition assigns satellites to a fixed number of worker
// containers and reports how evenly the load is spread.
package partition

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// Container is one group of nodes handed to a worker.
type Container struct {
	Index int
	Nodes []model.NodeID
}

// Strategy assigns nodes to k containers. The containers returned by one
// call are disjoint and together hold every input node exactly once.
type Strategy interface {
	Name() string
	Partition(nodes []model.Node, k int) ([]Container, error)
}

// Partition runs strategy over nodes.
func Partition(nodes []model.Node, k int, strategy Strategy) ([]Container, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: nil partition strategy", model.ErrInvalidConfiguration)
	}
	return strategy.Partition(nodes, k)
}

// StrategyByName resolves "UTP" (round-robin) or "LBTP" (balanced with a
// near-minimum random tie-break drawn from rng).
func StrategyByName(name string, rng *rand.Rand) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utp", "round_robin", "roundrobin":
		return RoundRobin{}, nil
	case "lbtp", "balanced":
		return NewBalanced(rng), nil
	}
	return nil, fmt.Errorf("%w: unknown partition strategy %q", model.ErrInvalidConfiguration, name)
}

func newContainers(k int) ([]Container, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: container count must be positive, got %d", model.ErrInvalidConfiguration, k)
	}
	out := make([]Container, k)
	for i := range out {
		out[i] = Container{Index: i, Nodes: []model.NodeID{}}
	}
	return out, nil
}

// RoundRobin puts the node at position i into container i mod k. It
// ignores load and serves as the baseline.
type RoundRobin struct{}

func (RoundRobin) Name() string { return "UTP" }

func (RoundRobin) Partition(nodes []model.Node, k int) ([]Container, error) {
	out, err := newContainers(k)
	if err != nil {
		return nil, err
	}
	for i, n := range nodes {
		c := &out[i%k]
		c.Nodes = append(c.Nodes, n.ID)
	}
	return out, nil
}
