package core

import (
	"math/rand"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// LinkModel is the capability the topology and routing code needs from the
// position layer: a distance between two nodes and a visibility test.
//
// Visible may be non-deterministic. Callers must not assume that two
// evaluations of the same pair agree, nor that Visible(a, b) implies
// Visible(b, a).
type LinkModel interface {
	Distance(a, b model.Node) float64
	Visible(a, b model.Node) bool
}

// RangeVisibility treats two satellites as connected when their slant
// distance is within the transceiver range, drawn afresh on every call.
type RangeVisibility struct {
	Transceiver TransceiverModel

	// RequireLineOfSight additionally rejects pairs whose chord passes
	// through the Earth.
	RequireLineOfSight bool

	rng *rand.Rand
}

// NewRangeVisibility returns a visibility predicate drawing its range
// tolerance from rng.
func NewRangeVisibility(trx TransceiverModel, rng *rand.Rand) *RangeVisibility {
	return &RangeVisibility{Transceiver: trx, rng: rng}
}

func (v *RangeVisibility) Distance(a, b model.Node) float64 {
	return SlantDistanceKm(a.Position, b.Position)
}

func (v *RangeVisibility) Visible(a, b model.Node) bool {
	if v.RequireLineOfSight && !hasLineOfSight(GeodeticToECEF(a.Position), GeodeticToECEF(b.Position)) {
		return false
	}
	return v.Transceiver.InRange(v.Distance(a, b), v.rng)
}

type edgeKey struct {
	from, to model.NodeID
}

// StaticLinkModel is a deterministic LinkModel over an explicit edge list,
// used by scenario files and tests. Pairs without an explicit distance
// fall back to the slant distance between node positions.
type StaticLinkModel struct {
	edges map[edgeKey]float64
}

// NewStaticLinkModel returns an empty static link model.
func NewStaticLinkModel() *StaticLinkModel {
	return &StaticLinkModel{edges: make(map[edgeKey]float64)}
}

// Connect adds an undirected edge with the given length.
func (m *StaticLinkModel) Connect(a, b model.NodeID, distanceKm float64) {
	m.edges[edgeKey{a, b}] = distanceKm
	m.edges[edgeKey{b, a}] = distanceKm
}

// ConnectDirected adds a one-way edge from a to b.
func (m *StaticLinkModel) ConnectDirected(a, b model.NodeID, distanceKm float64) {
	m.edges[edgeKey{a, b}] = distanceKm
}

func (m *StaticLinkModel) Distance(a, b model.Node) float64 {
	if d, ok := m.edges[edgeKey{a.ID, b.ID}]; ok {
		return d
	}
	return SlantDistanceKm(a.Position, b.Position)
}

func (m *StaticLinkModel) Visible(a, b model.Node) bool {
	_, ok := m.edges[edgeKey{a.ID, b.ID}]
	return ok
}
