// Package routing computes paths over a satellite adjacency with either a
// time-slot aware or a link-state, area-aware cost model.
package routing

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/signalsfoundry/constellation-partitioner/core"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

// ErrNotReady is returned by Route before the router has been prepared.
var ErrNotReady = errors.New("routing: router not ready")

// Protocol selects a routing variant.
type Protocol int

const (
	TimeSlot  Protocol = iota // "TSA"
	LinkState                 // "OSPF"
)

func (p Protocol) String() string {
	switch p {
	case TimeSlot:
		return "TSA"
	case LinkState:
		return "OSPF"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// ParseProtocol accepts the short protocol names used in configuration
// ("TSA", "OSPF") and their long forms, case-insensitively.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tsa", "timeslot", "time-slot":
		return TimeSlot, nil
	case "ospf", "linkstate", "link-state":
		return LinkState, nil
	}
	return 0, fmt.Errorf("%w: unknown protocol %q", model.ErrInvalidConfiguration, s)
}

// State is the lifecycle stage of a router.
type State int

const (
	StateUnbuilt State = iota
	StateTopologyBuilt
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateTopologyBuilt:
		return "topology_built"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Router is the common surface of both routing variants.
//
// BuildTopology discards all derived state and moves the router to
// StateTopologyBuilt. Prepare runs the protocol specific labelling (slots
// or areas) and moves it to StateReady. Route may only be called when
// ready.
type Router interface {
	Protocol() Protocol
	BuildTopology(nodes []model.Node) core.Adjacency
	Prepare() error
	Route(src, dst model.NodeID) (model.RouteResult, error)
	State() State
}

// Options configures New.
type Options struct {
	// Links provides distance and visibility. Required.
	Links core.LinkModel

	// Jitter perturbs edge costs. When nil, a UniformJitter over RNG is used.
	Jitter Jitter
	// RNG backs the default jitter. When both Jitter and RNG are nil the
	// router falls back to a fixed factor of 1.
	RNG *rand.Rand

	// NumAreas is the link-state area count. 0 means DefaultNumAreas.
	NumAreas int
	// Areas overrides the area assignment strategy.
	Areas AreaAssignment
}

// DefaultNumAreas is the link-state area count when none is configured.
const DefaultNumAreas = 4

func (o Options) jitter() Jitter {
	if o.Jitter != nil {
		return o.Jitter
	}
	if o.RNG != nil {
		return NewUniformJitter(o.RNG)
	}
	return FixedJitter(1)
}

// New constructs a router for protocol p.
func New(p Protocol, opts Options) (Router, error) {
	if opts.Links == nil {
		return nil, fmt.Errorf("%w: routing requires a link model", model.ErrInvalidConfiguration)
	}
	switch p {
	case TimeSlot:
		return NewTimeSlotRouter(opts.Links, opts.jitter()), nil
	case LinkState:
		numAreas := opts.NumAreas
		if numAreas == 0 {
			numAreas = DefaultNumAreas
		}
		if numAreas < 0 {
			return nil, fmt.Errorf("%w: num_areas must be positive, got %d", model.ErrInvalidConfiguration, numAreas)
		}
		r := NewLinkStateRouter(opts.Links, opts.jitter(), numAreas)
		if opts.Areas != nil {
			r.Areas = opts.Areas
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: unknown protocol %v", model.ErrInvalidConfiguration, p)
}

// graph is the node index shared by both routers.
type graph struct {
	order []model.NodeID // as passed to BuildTopology
	nodes map[model.NodeID]model.Node
	adj   core.Adjacency
}

func newGraph(nodes []model.Node, links core.LinkModel) graph {
	g := graph{
		order: make([]model.NodeID, 0, len(nodes)),
		nodes: make(map[model.NodeID]model.Node, len(nodes)),
	}
	for _, n := range nodes {
		g.order = append(g.order, n.ID)
		g.nodes[n.ID] = n
	}
	g.adj = core.BuildTopology(nodes, links)
	return g
}

func (g *graph) checkEndpoints(src, dst model.NodeID) error {
	if _, ok := g.nodes[src]; !ok {
		return fmt.Errorf("routing: source %d: %w", src, model.ErrNodeNotFound)
	}
	if _, ok := g.nodes[dst]; !ok {
		return fmt.Errorf("routing: destination %d: %w", dst, model.ErrNodeNotFound)
	}
	return nil
}

// tracePath walks predecessor links back from dst. It returns nil when dst
// was never reached.
func tracePath(prev map[model.NodeID]model.NodeID, src, dst model.NodeID) []model.NodeID {
	if _, ok := prev[dst]; !ok {
		return nil
	}
	path := []model.NodeID{dst}
	for cur := dst; cur != src; {
		cur = prev[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
