package routing

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signalsfoundry/constellation-partitioner/core"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

func TestTimeSlotRouter_LineScenario(t *testing.T) {
	r := NewTimeSlotRouter(lineLinks(6), FixedJitter(1))
	r.BuildTopology(lineNodes(6))

	slots, err := r.AssignSlots()
	if err != nil {
		t.Fatalf("AssignSlots error: %v", err)
	}
	want := map[model.NodeID]int{0: 0, 1: 1, 2: 0, 3: 1, 4: 0, 5: 1}
	if diff := cmp.Diff(want, slots); diff != "" {
		t.Fatalf("slots mismatch (-want +got):\n%s", diff)
	}
	if r.SlotCount() != 2 {
		t.Fatalf("SlotCount = %d, want 2", r.SlotCount())
	}

	res, err := r.Route(0, 5)
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if diff := cmp.Diff([]model.NodeID{0, 1, 2, 3, 4, 5}, res.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	if res.Outcome != model.RouteFound || res.Hops() != 5 {
		t.Fatalf("outcome %v hops %d, want found and 5", res.Outcome, res.Hops())
	}
}

func TestTimeSlotRouter_PrefersCheaperBranch(t *testing.T) {
	r := NewTimeSlotRouter(diamondLinks(), FixedJitter(1))
	r.BuildTopology(lineNodes(4))
	if err := r.Prepare(); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	res, _ := r.Route(0, 3)
	if diff := cmp.Diff([]model.NodeID{0, 2, 3}, res.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeSlotRouter_UnreachableReturnsSource(t *testing.T) {
	links := core.NewStaticLinkModel()
	links.Connect(0, 1, 10)
	r := NewTimeSlotRouter(links, FixedJitter(1))
	r.BuildTopology(lineNodes(3))
	if err := r.Prepare(); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}

	res, err := r.Route(0, 2)
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if diff := cmp.Diff([]model.NodeID{0}, res.Path); diff != "" || res.Outcome != model.RouteSourceOnly {
		t.Fatalf("unreachable route = %+v, want [0] source_only", res)
	}
}

func TestTimeSlotRouter_JitterDrawnPerRelaxation(t *testing.T) {
	j := &countingJitter{}
	r := NewTimeSlotRouter(lineLinks(6), j)
	r.BuildTopology(lineNodes(6))
	if err := r.Prepare(); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if _, err := r.Route(0, 5); err != nil {
		t.Fatalf("Route error: %v", err)
	}
	// Node 0 relaxes one edge, nodes 1..4 relax two each; 5 stops the search.
	if j.calls != 9 {
		t.Fatalf("jitter drawn %d times, want 9", j.calls)
	}
}

func TestTimeSlotRouter_SlotPenalty(t *testing.T) {
	// Triangle 0-1-2 needs three slots. The direct 0-2 link is slightly
	// longer than 0-1-2 by distance, but 0-1-2 pays two slot changes.
	links := core.NewStaticLinkModel()
	links.Connect(0, 1, 100)
	links.Connect(1, 2, 100)
	links.Connect(0, 2, 250)
	r := NewTimeSlotRouter(links, FixedJitter(1))
	r.BuildTopology(lineNodes(3))
	if err := r.Prepare(); err != nil {
		t.Fatalf("Prepare error: %v", err)
	}
	if r.SlotCount() != 3 {
		t.Fatalf("SlotCount = %d, want 3", r.SlotCount())
	}
	// 0-2: 250 + 100*2 = 450. 0-1-2: (100+100) + (100+100) = 400.
	res, _ := r.Route(0, 2)
	if diff := cmp.Diff([]model.NodeID{0, 1, 2}, res.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}

	links.Connect(0, 2, 150)
	r.BuildTopology(lineNodes(3))
	_ = r.Prepare()
	// 0-2: 150 + 200 = 350 now beats 400.
	res, _ = r.Route(0, 2)
	if diff := cmp.Diff([]model.NodeID{0, 2}, res.Path); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestTimeSlotRouter_ProperColoring(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		nodes, links := randomConstellation(t, seed*100, 80)
		r := NewTimeSlotRouter(links, NewUniformJitter(rand.New(rand.NewSource(seed))))
		adj := r.BuildTopology(nodes)
		slots, err := r.AssignSlots()
		if err != nil {
			t.Fatalf("AssignSlots error: %v", err)
		}
		if len(slots) != len(nodes) {
			t.Fatalf("assigned %d slots for %d nodes", len(slots), len(nodes))
		}
		for u, nbrs := range adj {
			for _, v := range nbrs {
				if slots[u] == slots[v] {
					t.Fatalf("seed %d: edge %d->%d shares slot %d", seed, u, v, slots[u])
				}
			}
		}
	}
}

func TestTimeSlotRouter_OneSidedEdgeStillColored(t *testing.T) {
	links := core.NewStaticLinkModel()
	links.ConnectDirected(0, 1, 10)
	r := NewTimeSlotRouter(links, FixedJitter(1))
	r.BuildTopology(lineNodes(2))
	slots, _ := r.AssignSlots()
	if slots[0] == slots[1] {
		t.Fatalf("one-sided edge 0->1 shares slot %d", slots[0])
	}
}

func TestTimeSlotRouter_RebuildClearsSlots(t *testing.T) {
	r := NewTimeSlotRouter(lineLinks(4), FixedJitter(1))
	r.BuildTopology(lineNodes(4))
	_ = r.Prepare()
	if r.SlotCount() != 2 {
		t.Fatalf("SlotCount = %d, want 2", r.SlotCount())
	}
	r.BuildTopology(lineNodes(4))
	if r.SlotCount() != 0 || len(r.Slots()) != 0 {
		t.Fatalf("rebuild left slots behind: %v", r.Slots())
	}
}
