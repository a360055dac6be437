package core

import (
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// ISS sample TLE.
const (
	issTLE1 = "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990"
	issTLE2 = "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
)

func TestStaticMotionModel_NoChange(t *testing.T) {
	m := &StaticMotionModel{}
	want := model.Geodetic{LatitudeDeg: 1, LongitudeDeg: 2, AltitudeKm: 550}
	n := &model.Node{Position: want}

	t1 := time.Now().UTC()
	m.UpdatePosition(t1, n)
	m.UpdatePosition(t1.Add(time.Hour), n)
	if n.Position != want {
		t.Fatalf("static motion should not change position, got %#v", n.Position)
	}
}

func TestOrbitalVelocityKmS(t *testing.T) {
	v := OrbitalVelocityKmS(550)
	if v < 7.5 || v > 7.7 {
		t.Fatalf("OrbitalVelocityKmS(550) = %v, want about 7.6", v)
	}
	if OrbitalVelocityKmS(1000) >= v {
		t.Fatalf("higher orbits should be slower")
	}
}

func TestCircularOrbitModel_AdvancesLongitude(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewCircularOrbitModel(start)
	n := &model.Node{Position: model.Geodetic{LatitudeDeg: 10, LongitudeDeg: 0, AltitudeKm: 550}}

	m.UpdatePosition(start.Add(10*time.Second), n)

	wantDelta := OrbitalVelocityKmS(550) / (EarthRadiusKm + 550) * 10 * 180 / math.Pi
	if math.Abs(n.Position.LongitudeDeg-wantDelta) > 1e-9 {
		t.Fatalf("longitude = %v, want %v", n.Position.LongitudeDeg, wantDelta)
	}
	if n.Position.LatitudeDeg != 10 || n.Position.AltitudeKm != 550 {
		t.Fatalf("latitude/altitude changed: %#v", n.Position)
	}

	// Same time again is a no-op.
	before := n.Position
	m.UpdatePosition(start.Add(10*time.Second), n)
	if n.Position != before {
		t.Fatalf("zero step changed position")
	}
}

func TestCircularOrbitModel_WrapsLongitude(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewCircularOrbitModel(start)
	n := &model.Node{Position: model.Geodetic{LongitudeDeg: 179.9, AltitudeKm: 550}}

	m.UpdatePosition(start.Add(time.Minute), n)
	if n.Position.LongitudeDeg < -180 || n.Position.LongitudeDeg > 180 {
		t.Fatalf("longitude not wrapped: %v", n.Position.LongitudeDeg)
	}
	if n.Position.LongitudeDeg > 0 {
		t.Fatalf("expected wrap to negative longitude, got %v", n.Position.LongitudeDeg)
	}
}

func TestCircularOrbitModel_FirstCallAnchors(t *testing.T) {
	m := &CircularOrbitModel{}
	n := &model.Node{Position: model.Geodetic{LongitudeDeg: 5, AltitudeKm: 550}}
	m.UpdatePosition(time.Now(), n)
	if n.Position.LongitudeDeg != 5 {
		t.Fatalf("first update without anchor should not move node, got %v", n.Position.LongitudeDeg)
	}
}

// Exact orbital values belong to go-satellite; positions just need to move.
func TestOrbitalSGP4MotionModel_ChangesOverTime(t *testing.T) {
	m := NewOrbitalModelFromTLE(issTLE1, issTLE2)
	n := &model.Node{}

	t1 := time.Date(2021, 10, 2, 0, 0, 0, 0, time.UTC)
	m.UpdatePosition(t1, n)
	first := n.Position

	m.UpdatePosition(t1.Add(5*time.Minute), n)
	second := n.Position

	if first == second {
		t.Fatalf("expected orbital position to change over time, got %+v at both times", first)
	}
	for _, p := range []model.Geodetic{first, second} {
		if p.AltitudeKm < 300 || p.AltitudeKm > 500 {
			t.Fatalf("ISS altitude out of range: %v", p.AltitudeKm)
		}
		if math.Abs(p.LatitudeDeg) > 52 {
			t.Fatalf("ISS latitude beyond inclination: %v", p.LatitudeDeg)
		}
	}
}

func TestNewMotionModelSelection(t *testing.T) {
	start := time.Now()
	if _, ok := NewMotionModel(start, issTLE1, issTLE2).(*OrbitalSGP4MotionModel); !ok {
		t.Fatalf("expected SGP4 model when TLE lines are present")
	}
	if _, ok := NewMotionModel(start, issTLE1, "").(*CircularOrbitModel); !ok {
		t.Fatalf("expected circular model without a full TLE")
	}
}
