package core

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

func TestGenerateConstellation(t *testing.T) {
	store := kb.NewKnowledgeBase()
	ids, err := GenerateConstellation(store, 300, nil, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("GenerateConstellation error: %v", err)
	}
	if len(ids) != 300 || store.Len() != 300 {
		t.Fatalf("generated %d ids, store has %d, want 300", len(ids), store.Len())
	}

	perShell := make(map[int]int)
	for i, n := range store.ListNodes() {
		if n.ID != model.NodeID(i) {
			t.Fatalf("node %d has ID %d", i, n.ID)
		}
		p := n.Position
		if p.LatitudeDeg < -90 || p.LatitudeDeg > 90 || p.LongitudeDeg < -180 || p.LongitudeDeg > 180 {
			t.Fatalf("node %d out of bounds: %+v", n.ID, p)
		}
		shell := -1
		for s, sh := range model.DefaultShells {
			if math.Abs(p.AltitudeKm-sh.AltitudeKm) <= 5 && math.Abs(n.InclinationDeg-sh.InclinationDeg) <= 0.5 {
				shell = s
				break
			}
		}
		if shell < 0 {
			t.Fatalf("node %d (alt %.2f, inc %.2f) matches no shell", n.ID, p.AltitudeKm, n.InclinationDeg)
		}
		perShell[shell]++
	}
	// Shares are at least 0.3/1.3 of the total, so every shell gets used.
	if len(perShell) != len(model.DefaultShells) {
		t.Fatalf("expected all shells to be populated, got %v", perShell)
	}
}

func TestGenerateConstellation_Deterministic(t *testing.T) {
	a, b := kb.NewKnowledgeBase(), kb.NewKnowledgeBase()
	if _, err := GenerateConstellation(a, 20, nil, rand.New(rand.NewSource(9))); err != nil {
		t.Fatal(err)
	}
	if _, err := GenerateConstellation(b, 20, nil, rand.New(rand.NewSource(9))); err != nil {
		t.Fatal(err)
	}
	na, nb := a.ListNodes(), b.ListNodes()
	for i := range na {
		if na[i].Position != nb[i].Position {
			t.Fatalf("node %d differs between runs with the same seed", i)
		}
	}
}

func TestGenerateConstellation_Invalid(t *testing.T) {
	_, err := GenerateConstellation(kb.NewKnowledgeBase(), -1, nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
	ids, err := GenerateConstellation(kb.NewKnowledgeBase(), 0, nil, rand.New(rand.NewSource(1)))
	if err != nil || len(ids) != 0 {
		t.Fatalf("zero count: ids=%v err=%v", ids, err)
	}
}
