package kb

import (
	"errors"
	"sync"
	"testing"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

func TestAddAndGetNode(t *testing.T) {
	store := NewKnowledgeBase()
	n := &model.Node{ID: 7, Name: "sat-7"}
	if err := store.AddNode(n); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}
	got, ok := store.GetNode(7)
	if !ok || got.Name != "sat-7" {
		t.Fatalf("GetNode returned %#v (ok=%v), want name sat-7", got, ok)
	}
}

func TestAddNodeDuplicate(t *testing.T) {
	store := NewKnowledgeBase()
	if err := store.AddNode(&model.Node{ID: 1}); err != nil {
		t.Fatalf("first AddNode error: %v", err)
	}
	if err := store.AddNode(&model.Node{ID: 1}); err == nil {
		t.Fatalf("expected duplicate AddNode to fail")
	}
}

func TestListNodesAscendingOrder(t *testing.T) {
	store := NewKnowledgeBase()
	for _, id := range []model.NodeID{5, 1, 3, 0, 4, 2} {
		if err := store.AddNode(&model.Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%d) error: %v", id, err)
		}
	}

	nodes := store.ListNodes()
	if len(nodes) != 6 || store.Len() != 6 {
		t.Fatalf("ListNodes len=%d Len=%d, want 6", len(nodes), store.Len())
	}
	for i, n := range nodes {
		if n.ID != model.NodeID(i) {
			t.Fatalf("nodes[%d].ID = %d, want %d", i, n.ID, i)
		}
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	store := NewKnowledgeBase()
	if err := store.AddNode(&model.Node{ID: 1}); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}
	store.ReplaceNeighbors(map[model.NodeID][]model.NodeID{1: {2, 3}})

	snap, _ := store.GetNode(1)
	snap.Neighbors[0] = 99
	snap.Load = 1000

	again, _ := store.GetNode(1)
	if again.Neighbors[0] != 2 || again.Load != 0 {
		t.Fatalf("registry state changed through snapshot: %#v", again)
	}
}

func TestCounters(t *testing.T) {
	store := NewKnowledgeBase()
	if err := store.AddNode(&model.Node{ID: 1}); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}

	if err := store.AddLoad(1, 3); err != nil {
		t.Fatalf("AddLoad error: %v", err)
	}
	if err := store.AddLoad(1, 2); err != nil {
		t.Fatalf("AddLoad error: %v", err)
	}
	if err := store.AddConnection(1); err != nil {
		t.Fatalf("AddConnection error: %v", err)
	}

	n, _ := store.GetNode(1)
	if n.Load != 5 || n.ActiveConnections != 1 {
		t.Fatalf("counters = load %d conns %d, want 5 and 1", n.Load, n.ActiveConnections)
	}
	if n.Weight() != 6 {
		t.Fatalf("Weight() = %d, want 6", n.Weight())
	}

	if err := store.AddLoad(1, -1); err == nil {
		t.Fatalf("expected negative load delta to fail")
	}
	if err := store.AddLoad(42, 1); !errors.Is(err, model.ErrNodeNotFound) {
		t.Fatalf("AddLoad unknown node err = %v, want ErrNodeNotFound", err)
	}
	if err := store.AddConnection(42); !errors.Is(err, model.ErrNodeNotFound) {
		t.Fatalf("AddConnection unknown node err = %v, want ErrNodeNotFound", err)
	}
}

func TestSlotsAndAreas(t *testing.T) {
	store := NewKnowledgeBase()
	for id := range 3 {
		if err := store.AddNode(&model.Node{ID: model.NodeID(id)}); err != nil {
			t.Fatalf("AddNode error: %v", err)
		}
	}
	store.SetSlots(map[model.NodeID]int{0: 0, 1: 1})
	store.SetAreas(map[model.NodeID]int{2: 3})
	if err := store.AddLoad(0, 4); err != nil {
		t.Fatalf("AddLoad error: %v", err)
	}

	n0, _ := store.GetNode(0)
	n1, _ := store.GetNode(1)
	n2, _ := store.GetNode(2)
	if n0.Slot == nil || *n0.Slot != 0 || n1.Slot == nil || *n1.Slot != 1 || n2.Slot != nil {
		t.Fatalf("unexpected slots: %v %v %v", n0.Slot, n1.Slot, n2.Slot)
	}
	if n2.Area == nil || *n2.Area != 3 || n0.Area != nil {
		t.Fatalf("unexpected areas: %v %v", n0.Area, n2.Area)
	}

	store.SetSlots(map[model.NodeID]int{1: 2})
	store.SetAreas(nil)
	n0, _ = store.GetNode(0)
	n1, _ = store.GetNode(1)
	if n0.Slot != nil || n0.Area != nil || n1.Slot == nil || *n1.Slot != 2 {
		t.Fatalf("relabelling left stale state: %#v %#v", n0, n1)
	}
	if n0.Load != 4 {
		t.Fatalf("relabelling touched load: %d", n0.Load)
	}
}

func TestUpdateNodePositionAndSubscribe(t *testing.T) {
	store := NewKnowledgeBase()
	if err := store.AddNode(&model.Node{ID: 1}); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var got Event
	unsubscribe := store.Subscribe(func(e Event) {
		got = e
		wg.Done()
	})

	pos := model.Geodetic{LatitudeDeg: 10, LongitudeDeg: 20, AltitudeKm: 550}
	if err := store.UpdateNodePosition(1, pos); err != nil {
		t.Fatalf("UpdateNodePosition error: %v", err)
	}

	wg.Wait()
	if got.Type != EventNodeMoved {
		t.Fatalf("got event type %v, want EventNodeMoved", got.Type)
	}
	if got.Node.Position != pos {
		t.Fatalf("event node position = %#v, want %#v", got.Node.Position, pos)
	}

	unsubscribe()
	if err := store.UpdateNodePosition(1, model.Geodetic{}); err != nil {
		t.Fatalf("UpdateNodePosition error: %v", err)
	}
	if err := store.UpdateNodePosition(9, pos); !errors.Is(err, model.ErrNodeNotFound) {
		t.Fatalf("UpdateNodePosition unknown node err = %v, want ErrNodeNotFound", err)
	}
}

func TestAddNodeStoresCopy(t *testing.T) {
	store := NewKnowledgeBase()
	n := &model.Node{ID: 1, Neighbors: []model.NodeID{2}}
	if err := store.AddNode(n); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}
	n.Load = 50
	n.Neighbors[0] = 9

	got, _ := store.GetNode(1)
	if got.Load != 0 || got.Neighbors[0] != 2 {
		t.Fatalf("caller mutation reached the registry: %#v", got)
	}
}

func TestUnsubscribeInAnyOrder(t *testing.T) {
	store := NewKnowledgeBase()
	if err := store.AddNode(&model.Node{ID: 1}); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}

	var a, b, c int
	unA := store.Subscribe(func(Event) { a++ })
	unB := store.Subscribe(func(Event) { b++ })
	unC := store.Subscribe(func(Event) { c++ })

	unA()
	unB()
	unB()
	if err := store.UpdateNodePosition(1, model.Geodetic{AltitudeKm: 550}); err != nil {
		t.Fatalf("UpdateNodePosition error: %v", err)
	}
	if a != 0 || b != 0 || c != 1 {
		t.Fatalf("after unsubscribing a and b: a=%d b=%d c=%d, want 0 0 1", a, b, c)
	}

	unC()
	store.ReplaceNeighbors(nil)
	if c != 1 {
		t.Fatalf("unsubscribed c still notified: c=%d", c)
	}
}

func TestReplaceNeighborsEventCountsLinks(t *testing.T) {
	store := NewKnowledgeBase()
	for id := range 3 {
		if err := store.AddNode(&model.Node{ID: model.NodeID(id)}); err != nil {
			t.Fatalf("AddNode error: %v", err)
		}
	}

	var events []Event
	unsubscribe := store.Subscribe(func(e Event) { events = append(events, e) })
	defer unsubscribe()

	// Node 7 is not registered and must not be counted.
	store.ReplaceNeighbors(map[model.NodeID][]model.NodeID{0: {1, 2}, 1: {0}, 7: {0}})
	if len(events) != 1 || events[0].Type != EventTopologyRebuilt || events[0].Links != 3 {
		t.Fatalf("events = %+v, want one EventTopologyRebuilt with 3 links", events)
	}
}

func TestConcurrentCounterUpdates(t *testing.T) {
	store := NewKnowledgeBase()
	if err := store.AddNode(&model.Node{ID: 1}); err != nil {
		t.Fatalf("AddNode error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_ = store.AddLoad(1, 2)
		}()
		go func() {
			defer wg.Done()
			_ = store.AddConnection(1)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.GetNode(1)
			_ = store.ListNodes()
		}()
	}
	wg.Wait()

	n, _ := store.GetNode(1)
	if n.Load != 100 || n.ActiveConnections != 50 {
		t.Fatalf("after concurrent updates load=%d conns=%d, want 100 and 50", n.Load, n.ActiveConnections)
	}
}
