package routing

import (
	"github.com/signalsfoundry/constellation-partitioner/core"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

const (
	linkStateJitterLo = 0.92
	linkStateJitterHi = 1.08
)

// LinkStateEntry is one advertised link in the link-state database.
type LinkStateEntry struct {
	Neighbor      model.NodeID
	Cost          float64 // distance in thousands of km
	BandwidthMbps float64
}

// LinkStateRouter keeps a link-state database and routes on jittered link
// costs with a visited-set Dijkstra.
type LinkStateRouter struct {
	Areas    AreaAssignment
	NumAreas int

	links  core.LinkModel
	jitter Jitter

	state State
	g     graph
	db    map[model.NodeID][]LinkStateEntry
	areas map[model.NodeID]int
}

func NewLinkStateRouter(links core.LinkModel, jitter Jitter, numAreas int) *LinkStateRouter {
	return &LinkStateRouter{
		Areas:    PositionalAreaAssignment{},
		NumAreas: numAreas,
		links:    links,
		jitter:   jitter,
	}
}

func (r *LinkStateRouter) Protocol() Protocol { return LinkState }

func (r *LinkStateRouter) State() State { return r.state }

// BuildTopology rebuilds the adjacency and the whole link-state database
// and clears the area assignment.
func (r *LinkStateRouter) BuildTopology(nodes []model.Node) core.Adjacency {
	r.g = newGraph(nodes, r.links)
	r.db = make(map[model.NodeID][]LinkStateEntry, len(nodes))
	for _, id := range r.g.order {
		u := r.g.nodes[id]
		entries := make([]LinkStateEntry, 0, len(r.g.adj[id]))
		for _, v := range r.g.adj[id] {
			cost := r.links.Distance(u, r.g.nodes[v]) / 1000
			entries = append(entries, LinkStateEntry{
				Neighbor:      v,
				Cost:          cost,
				BandwidthMbps: 1000 / (cost + 1),
			})
		}
		r.db[id] = entries
	}
	r.areas = nil
	r.state = StateTopologyBuilt
	return r.g.adj
}

// Database returns the link-state entries advertised by id.
func (r *LinkStateRouter) Database(id model.NodeID) []LinkStateEntry {
	return append([]LinkStateEntry(nil), r.db[id]...)
}

// Prepare assigns areas using NumAreas.
func (r *LinkStateRouter) Prepare() error {
	_, err := r.AssignAreas(r.NumAreas)
	return err
}

// AssignAreas groups the nodes into numAreas areas with the configured
// strategy.
func (r *LinkStateRouter) AssignAreas(numAreas int) (map[model.NodeID]int, error) {
	if r.state == StateUnbuilt {
		return nil, ErrNotReady
	}
	areas, err := r.Areas.Assign(r.g.order, numAreas)
	if err != nil {
		return nil, err
	}
	r.areas = areas
	r.state = StateReady
	return r.AreaMap(), nil
}

// AreaMap returns a copy of the current area assignment.
func (r *LinkStateRouter) AreaMap() map[model.NodeID]int {
	out := make(map[model.NodeID]int, len(r.areas))
	for k, v := range r.areas {
		out[k] = v
	}
	return out
}

// Route runs Dijkstra with a visited set. Each link cost is multiplied by
// a fresh jitter in [0.92, 1.08]. An unreachable destination yields an
// empty path.
func (r *LinkStateRouter) Route(src, dst model.NodeID) (model.RouteResult, error) {
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
	visited := make(map[model.NodeID]bool)
	q := &distQueue{}
	q.push(src, 0)

	for q.Len() > 0 {
		it := q.pop()
		if visited[it.id] {
			continue
		}
		visited[it.id] = true
		if it.id == dst {
			break
		}
		for _, e := range r.db[it.id] {
			if visited[e.Neighbor] {
				continue
			}
			nd := it.dist + e.Cost*r.jitter.Factor(linkStateJitterLo, linkStateJitterHi)
			if d, seen := dist[e.Neighbor]; !seen || nd < d {
				dist[e.Neighbor] = nd
				prev[e.Neighbor] = it.id
				q.push(e.Neighbor, nd)
			}
		}
	}

	if path := tracePath(prev, src, dst); path != nil {
		return model.RouteResult{Path: path, Outcome: model.RouteFound}, nil
	}
	return model.RouteResult{Path: []model.NodeID{}, Outcome: model.RouteNoPath}, nil
}
