package kb

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventNodeMoved EventType = iota
	EventTopologyRebuilt
)

// Event is emitted to subscribers when something interesting happens.
// Node is set for EventNodeMoved; Links holds the directed link count of
// an EventTopologyRebuilt.
type Event struct {
	Type  EventType
	Node  model.Node
	Links int
}

type subscriber struct {
	id uint64
	fn func(Event)
}

// KnowledgeBase is the node registry: an in-memory, thread-safe store for
// satellites and their per-node counters.
//
// All writes to Load, ActiveConnections and derived topology state go
// through the registry lock, so a concurrent caller never observes a
// half-applied update. Reads return copies.
type KnowledgeBase struct {
	mu sync.RWMutex

	nodes map[model.NodeID]*model.Node
	order []model.NodeID // ascending

	subs    []subscriber
	nextSub uint64
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		nodes: make(map[model.NodeID]*model.Node),
	}
}

// AddNode registers a copy of n. It returns an error if the ID already
// exists. Later changes to n do not reach the registry.
func (kb *KnowledgeBase) AddNode(n *model.Node) error {
	if n == nil {
		return fmt.Errorf("nil node")
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.nodes[n.ID]; exists {
		return fmt.Errorf("node with ID %d already exists", n.ID)
	}
	stored := n.Clone()
	kb.nodes[n.ID] = &stored
	idx := sort.Search(len(kb.order), func(i int) bool { return kb.order[i] >= n.ID })
	kb.order = append(kb.order, 0)
	copy(kb.order[idx+1:], kb.order[idx:])
	kb.order[idx] = n.ID
	return nil
}

// GetNode returns a snapshot of the node with the given ID.
func (kb *KnowledgeBase) GetNode(id model.NodeID) (model.Node, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	n, ok := kb.nodes[id]
	if !ok {
		return model.Node{}, false
	}
	return n.Clone(), true
}

// ListNodes returns a snapshot of all nodes in ascending ID order.
func (kb *KnowledgeBase) ListNodes() []model.Node {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]model.Node, 0, len(kb.order))
	for _, id := range kb.order {
		res = append(res, kb.nodes[id].Clone())
	}
	return res
}

// Len returns the number of registered nodes.
func (kb *KnowledgeBase) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.order)
}

// UpdateNodePosition updates a node's position and notifies subscribers.
func (kb *KnowledgeBase) UpdateNodePosition(id model.NodeID, pos model.Geodetic) error {
	kb.mu.Lock()
	n, ok := kb.nodes[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("%w: %d", model.ErrNodeNotFound, id)
	}
	n.Position = pos
	event := Event{
		Type: EventNodeMoved,
		Node: n.Clone(),
	}
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// AddLoad adds delta to the routing load of a node. Negative deltas are
// rejected because load is monotonic within a run.
func (kb *KnowledgeBase) AddLoad(id model.NodeID, delta int64) error {
	if delta < 0 {
		return fmt.Errorf("negative load delta %d for node %d", delta, id)
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	n, ok := kb.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", model.ErrNodeNotFound, id)
	}
	n.Load += delta
	return nil
}

// AddConnection records one more user terminal attached to the node.
func (kb *KnowledgeBase) AddConnection(id model.NodeID) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	n, ok := kb.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", model.ErrNodeNotFound, id)
	}
	n.ActiveConnections++
	return nil
}

// ReplaceNeighbors swaps in a freshly built adjacency for every node. Nodes
// missing from adj end up with no neighbors. Subscribers receive a single
// EventTopologyRebuilt carrying the number of stored links.
func (kb *KnowledgeBase) ReplaceNeighbors(adj map[model.NodeID][]model.NodeID) {
	kb.mu.Lock()
	links := 0
	for id, n := range kb.nodes {
		if nbrs, ok := adj[id]; ok {
			n.Neighbors = append([]model.NodeID(nil), nbrs...)
			links += len(nbrs)
		} else {
			n.Neighbors = nil
		}
	}
	subs := kb.subscribersLocked()
	kb.mu.Unlock()

	for _, sub := range subs {
		sub(Event{Type: EventTopologyRebuilt, Links: links})
	}
}

// SetSlots records time-slot assignments. Nodes absent from slots have
// their slot cleared.
func (kb *KnowledgeBase) SetSlots(slots map[model.NodeID]int) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	for id, n := range kb.nodes {
		if s, ok := slots[id]; ok {
			n.Slot = &s
		} else {
			n.Slot = nil
		}
	}
}

// SetAreas records link-state area assignments. Nodes absent from areas
// have their area cleared.
func (kb *KnowledgeBase) SetAreas(areas map[model.NodeID]int) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	for id, n := range kb.nodes {
		if a, ok := areas[id]; ok {
			n.Area = &a
		} else {
			n.Area = nil
		}
	}
}

// Subscribe registers a callback for KB events. Callbacks run outside the
// registry lock in subscription order. The returned function removes this
// subscription and is safe to call more than once.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.nextSub++
	id := kb.nextSub
	kb.subs = append(kb.subs, subscriber{id: id, fn: fn})

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		kb.subs = slices.DeleteFunc(kb.subs, func(s subscriber) bool { return s.id == id })
	}
}

func (kb *KnowledgeBase) subscribersLocked() []func(Event) {
	fns := make([]func(Event), len(kb.subs))
	for i, s := range kb.subs {
		fns[i] = s.fn
	}
	return fns
}
