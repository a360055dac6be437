package routing

import (
	"math"
	"slices"

	"github.com/signalsfoundry/constellation-partitioner/core"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

const (
	// slotPenaltyKm is the cost added per slot of difference between the
	// two ends of a link.
	slotPenaltyKm = 100.0

	timeSlotJitterLo = 0.9
	timeSlotJitterHi = 1.1
)

// TimeSlotRouter colours the topology with interference-free time slots
// and routes on distance plus a slot-change penalty.
type TimeSlotRouter struct {
	links  core.LinkModel
	jitter Jitter

	state State
	g     graph
	slots map[model.NodeID]int
}

func NewTimeSlotRouter(links core.LinkModel, jitter Jitter) *TimeSlotRouter {
	return &TimeSlotRouter{links: links, jitter: jitter}
}

func (r *TimeSlotRouter) Protocol() Protocol { return TimeSlot }

func (r *TimeSlotRouter) State() State { return r.state }

// BuildTopology rebuilds the adjacency from nodes and clears any slots.
func (r *TimeSlotRouter) BuildTopology(nodes []model.Node) core.Adjacency {
	r.g = newGraph(nodes, r.links)
	r.slots = nil
	r.state = StateTopologyBuilt
	return r.g.adj
}

// Prepare assigns slots.
func (r *TimeSlotRouter) Prepare() error {
	_, err := r.AssignSlots()
	return err
}

// AssignSlots greedily colours nodes in ascending ID order: each node gets
// the smallest slot not already held by one of its neighbors. The colouring
// is proper for every edge but not necessarily minimal.
func (r *TimeSlotRouter) AssignSlots() (map[model.NodeID]int, error) {
	if r.state == StateUnbuilt {
		return nil, ErrNotReady
	}

	ids := slices.Clone(r.g.order)
	slices.Sort(ids)

	// Neighbor lists may be one-sided; a node must also avoid the slots of
	// nodes that list it.
	incoming := make(map[model.NodeID][]model.NodeID, len(ids))
	for _, id := range ids {
		for _, nb := range r.g.adj[id] {
			incoming[nb] = append(incoming[nb], id)
		}
	}

	slots := make(map[model.NodeID]int, len(ids))
	for _, id := range ids {
		taken := make(map[int]struct{})
		for _, nb := range slices.Concat(r.g.adj[id], incoming[id]) {
			if s, ok := slots[nb]; ok {
				taken[s] = struct{}{}
			}
		}
		slot := 0
		for {
			if _, used := taken[slot]; !used {
				break
			}
			slot++
		}
		slots[id] = slot
	}

	r.slots = slots
	r.state = StateReady
	return r.Slots(), nil
}

// Slots returns a copy of the current slot assignment.
func (r *TimeSlotRouter) Slots() map[model.NodeID]int {
	out := make(map[model.NodeID]int, len(r.slots))
	for k, v := range r.slots {
		out[k] = v
	}
	return out
}

// SlotCount returns max(slot)+1, or 0 before slots are assigned.
func (r *TimeSlotRouter) SlotCount() int {
	if len(r.slots) == 0 {
		return 0
	}
	hi := 0
	for _, s := range r.slots {
		hi = max(hi, s)
	}
	return hi + 1
}

// Route runs Dijkstra with cost (distance + 100*|Δslot|) * jitter, the
// jitter drawn afresh for each relaxation. An unreachable destination
// yields the source alone.
func (r *TimeSlotRouter) Route(src, dst model.NodeID) (model.RouteResult, error) {
	if r.state != StateReady {
		return model.RouteResult{}, ErrNotReady
	}
	if err := r.g.checkEndpoints(src, dst); err != nil {
		return model.RouteResult{}, err
	}
	if src == dst {
		return model.RouteResult{Path: []model.NodeID{src}, Outcome: model.RouteTrivial}, nil
	}

	dist := map[model.NodeID]float64{src: 0}
	prev := make(map[model.NodeID]model.NodeID)
	q := &distQueue{}
	q.push(src, 0)

	for q.Len() > 0 {
		it := q.pop()
		if it.dist > dist[it.id] {
			continue
		}
		if it.id == dst {
			break
		}
		u := r.g.nodes[it.id]
		for _, v := range r.g.adj[it.id] {
			nb, ok := r.g.nodes[v]
			if !ok {
				continue
			}
			penalty := slotPenaltyKm * math.Abs(float64(r.slots[u.ID]-r.slots[v]))
			cost := (r.links.Distance(u, nb) + penalty) * r.jitter.Factor(timeSlotJitterLo, timeSlotJitterHi)
			nd := it.dist + cost
			if d, seen := dist[v]; !seen || nd < d {
				dist[v] = nd
				prev[v] = it.id
				q.push(v, nd)
			}
		}
	}

	if path := tracePath(prev, src, dst); path != nil {
		return model.RouteResult{Path: path, Outcome: model.RouteFound}, nil
	}
	return model.RouteResult{Path: []model.NodeID{src}, Outcome: model.RouteSourceOnly}, nil
}
