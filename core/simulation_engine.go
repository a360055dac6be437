package core

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

// TickListener runs after every topology rebuild with the new adjacency.
// A non-nil error aborts the tick.
type TickListener func(ctx context.Context, simTime time.Time, adj Adjacency) error

// SimulationEngine moves nodes and keeps the registry's topology current.
type SimulationEngine struct {
	KB       *kb.KnowledgeBase
	Topology *TopologyBuilder

	motion        map[model.NodeID]MotionModel
	tickListeners []TickListener
}

func NewSimulationEngine(store *kb.KnowledgeBase, src TopologySource) *SimulationEngine {
	return &SimulationEngine{
		KB:       store,
		Topology: NewTopologyBuilder(src),
		motion:   make(map[model.NodeID]MotionModel),
	}
}

// SetMotionModel attaches a motion model to a node. Nodes without one stay put.
func (se *SimulationEngine) SetMotionModel(id model.NodeID, m MotionModel) {
	se.motion[id] = m
}

// RegisterTickListener appends fn to the listeners run by Advance, in
// registration order.
func (se *SimulationEngine) RegisterTickListener(fn TickListener) {
	se.tickListeners = append(se.tickListeners, fn)
}

// Move propagates every node with a motion model to simTime without
// touching the topology.
func (se *SimulationEngine) Move(simTime time.Time) error {
	for _, n := range se.KB.ListNodes() {
		m, ok := se.motion[n.ID]
		if !ok {
			continue
		}
		m.UpdatePosition(simTime, &n)
		if err := se.KB.UpdateNodePosition(n.ID, n.Position); err != nil {
			return fmt.Errorf("advance node %d: %w", n.ID, err)
		}
	}
	return nil
}

// Advance moves every node to simTime, rebuilds the topology and runs the
// tick listeners. It stops at the first listener error.
func (se *SimulationEngine) Advance(ctx context.Context, simTime time.Time) (Adjacency, error) {
	if err := se.Move(simTime); err != nil {
		return nil, err
	}

	adj := se.Topology.Rebuild(se.KB)

	for _, fn := range se.tickListeners {
		if err := fn(ctx, simTime, adj); err != nil {
			return nil, err
		}
	}
	return adj, nil
}
