package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

const (
	gravitationalConstant = 6.674e-11 // m^3 kg^-1 s^-2
	earthMassKg           = 5.972e24
)

// MotionModel updates a node's position for a given simulation time.
type MotionModel interface {
	UpdatePosition(simTime time.Time, n *model.Node)
}

// StaticMotionModel leaves the node's position unchanged.
type StaticMotionModel struct{}

// UpdatePosition for static motion does nothing.
func (m *StaticMotionModel) UpdatePosition(simTime time.Time, n *model.Node) {}

// OrbitalVelocityKmS returns the circular orbital speed at the given
// altitude, in km/s.
func OrbitalVelocityKmS(altitudeKm float64) float64 {
	r := (EarthRadiusKm + altitudeKm) * 1000
	return math.Sqrt(gravitationalConstant*earthMassKg/r) / 1000
}

// CircularOrbitModel advances longitude at the circular-orbit angular rate
// and keeps latitude and altitude fixed. The first call only records the
// reference time.
type CircularOrbitModel struct {
	last time.Time
}

// NewCircularOrbitModel returns a model anchored at start.
func NewCircularOrbitModel(start time.Time) *CircularOrbitModel {
	return &CircularOrbitModel{last: start}
}

// UpdatePosition propagates n from the previous update time to simTime.
func (m *CircularOrbitModel) UpdatePosition(simTime time.Time, n *model.Node) {
	if m.last.IsZero() {
		m.last = simTime
		return
	}
	dt := simTime.Sub(m.last).Seconds()
	m.last = simTime
	if dt == 0 {
		return
	}

	alt := n.Position.AltitudeKm
	angular := OrbitalVelocityKmS(alt) / (EarthRadiusKm + alt) // rad/s
	lon := math.Mod(n.Position.LongitudeDeg+angular*dt*180/math.Pi, 360)
	if lon < 0 {
		lon += 360
	}
	if lon > 180 {
		lon -= 360
	}
	n.Position.LongitudeDeg = lon
}

// OrbitalSGP4MotionModel uses a TLE and SGP4 to update node position.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines.
func NewOrbitalModelFromTLE(line1, line2 string) *OrbitalSGP4MotionModel {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}
}

// UpdatePosition propagates the satellite to simTime and stores the
// sub-satellite point and altitude on n.
func (m *OrbitalSGP4MotionModel) UpdatePosition(simTime time.Time, n *model.Node) {
	simTime = simTime.UTC()
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)

	altitude, _, latLong := satellite.ECIToLLA(posECI, gmst)
	deg := satellite.LatLongDeg(latLong)

	lon := deg.Longitude
	if lon > 180 {
		lon -= 360
	}
	n.Position = model.Geodetic{
		LatitudeDeg:  deg.Latitude,
		LongitudeDeg: lon,
		AltitudeKm:   altitude,
	}
}

// NewMotionModel chooses an appropriate MotionModel for a node: SGP4 when
// both TLE lines are present, otherwise a circular orbit anchored at start.
func NewMotionModel(start time.Time, tle1, tle2 string) MotionModel {
	if tle1 != "" && tle2 != "" {
		return NewOrbitalModelFromTLE(tle1, tle2)
	}
	return NewCircularOrbitModel(start)
}
