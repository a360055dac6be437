package core

import (
	"slices"

	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

// Adjacency maps each node to the nodes it can currently see. Neighbor
// lists follow the order of the node slice the adjacency was built from.
type Adjacency map[model.NodeID][]model.NodeID

// Neighbors returns the neighbor list of id, or nil.
func (a Adjacency) Neighbors(id model.NodeID) []model.NodeID {
	return a[id]
}

// HasEdge reports whether to is a neighbor of from.
func (a Adjacency) HasEdge(from, to model.NodeID) bool {
	return slices.Contains(a[from], to)
}

// LinkCount returns the number of directed edges.
func (a Adjacency) LinkCount() int {
	total := 0
	for _, nbrs := range a {
		total += len(nbrs)
	}
	return total
}

// AverageDegree returns the mean out-degree, or 0 for an empty adjacency.
func (a Adjacency) AverageDegree() float64 {
	if len(a) == 0 {
		return 0
	}
	return float64(a.LinkCount()) / float64(len(a))
}

// BuildTopology evaluates links.Visible for every ordered pair of distinct
// nodes and records b as a neighbor of a when it returns true.
//
// The result is neither symmetrised nor cached: with a randomised link
// model two builds over the same nodes can differ, and callers rebuild
// before every routing phase to get a fresh graph.
func BuildTopology(nodes []model.Node, links LinkModel) Adjacency {
	adj := make(Adjacency, len(nodes))
	for _, a := range nodes {
		nbrs := make([]model.NodeID, 0)
		for _, b := range nodes {
			if a.ID == b.ID {
				continue
			}
			if links.Visible(a, b) {
				nbrs = append(nbrs, b.ID)
			}
		}
		adj[a.ID] = nbrs
	}
	return adj
}

// TopologySource produces an adjacency from a node snapshot. Routers
// implement it so that their own graph becomes the registry's topology.
type TopologySource interface {
	BuildTopology(nodes []model.Node) Adjacency
}

// LinkTopology is a TopologySource backed directly by a link model.
type LinkTopology struct {
	Links LinkModel
}

func (lt LinkTopology) BuildTopology(nodes []model.Node) Adjacency {
	return BuildTopology(nodes, lt.Links)
}

// TopologyBuilder rebuilds the registry's neighbor sets from a source.
type TopologyBuilder struct {
	Source TopologySource
}

// NewTopologyBuilder returns a builder over src.
func NewTopologyBuilder(src TopologySource) *TopologyBuilder {
	return &TopologyBuilder{Source: src}
}

// Rebuild discards the previous neighbor sets, builds a new adjacency from
// the current node snapshot and stores it back into the registry.
func (tb *TopologyBuilder) Rebuild(store *kb.KnowledgeBase) Adjacency {
	adj := tb.Source.BuildTopology(store.ListNodes())
	store.ReplaceNeighbors(adj)
	return adj
}
