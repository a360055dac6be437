package core

import (
	"math"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// EarthRadiusKm is the mean Earth radius used for all simple
// geometry calculations (kilometres).
const EarthRadiusKm = 6371.0

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// GeodeticToECEF converts a position on a spherical Earth to ECEF km.
func GeodeticToECEF(p model.Geodetic) Vec3 {
	lat := p.LatitudeDeg * math.Pi / 180
	lon := p.LongitudeDeg * math.Pi / 180
	r := EarthRadiusKm + p.AltitudeKm
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// SurfaceDistanceKm returns the haversine great-circle distance at the Earth
// surface between the two sub-points.
func SurfaceDistanceKm(a, b model.Geodetic) float64 {
	lat1 := a.LatitudeDeg * math.Pi / 180
	lat2 := b.LatitudeDeg * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.LongitudeDeg - a.LongitudeDeg) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h)) * EarthRadiusKm
}

// SlantDistanceKm combines the surface distance with the altitude
// difference. This is the inter-satellite distance used for visibility and
// routing costs.
func SlantDistanceKm(a, b model.Geodetic) float64 {
	d := SurfaceDistanceKm(a, b)
	dAlt := math.Abs(a.AltitudeKm - b.AltitudeKm)
	return math.Sqrt(d*d + dAlt*dAlt)
}

// hasLineOfSight checks whether the straight segment between p1 and p2
// intersects the Earth sphere. If it does, the Earth blocks the line-of-sight
// and the function returns false.
//
// All positions are ECEF in kilometres.
func hasLineOfSight(p1, p2 Vec3) bool {
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		// Same point: visible only if it is above the surface.
		return p1.Dot(p1) > EarthRadiusKm*EarthRadiusKm
	}

	// Closest point on the segment to the Earth's centre.
	t := -p1.Dot(v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := Vec3{
		X: p1.X + v.X*t,
		Y: p1.Y + v.Y*t,
		Z: p1.Z + v.Z*t,
	}
	return closest.Dot(closest) > EarthRadiusKm*EarthRadiusKm
}
