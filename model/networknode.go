package model

// NodeID is the stable integer identity of a satellite node. IDs are
// assigned once per run and never reused.
type NodeID int

// Node represents one satellite in the constellation.
//
// Position is opaque to the topology and routing code: it is only read
// through a LinkModel (distance and visibility). Neighbors, Slot and Area
// are derived state rebuilt by the routers; Load and ActiveConnections
// accumulate for the duration of a run.
type Node struct {
	ID   NodeID
	Name string

	Position       Geodetic
	InclinationDeg float64

	// Neighbors holds the IDs visible from this node at the last topology
	// build. The relation is not guaranteed to be symmetric.
	Neighbors []NodeID

	// Load counts routing traffic carried by this node. It only grows.
	Load int64
	// ActiveConnections counts user terminals attached to this node.
	ActiveConnections int

	Slot *int // time-slot router only
	Area *int // link-state router only
}

// Weight is the partitioning weight of a node: attached users plus carried
// routing load.
func (n Node) Weight() int64 {
	return int64(n.ActiveConnections) + n.Load
}

// Clone returns a deep copy of n so callers can hold snapshots without
// aliasing registry-owned slices and pointers.
func (n Node) Clone() Node {
	out := n
	if n.Neighbors != nil {
		out.Neighbors = append([]NodeID(nil), n.Neighbors...)
	}
	if n.Slot != nil {
		v := *n.Slot
		out.Slot = &v
	}
	if n.Area != nil {
		v := *n.Area
		out.Area = &v
	}
	return out
}
