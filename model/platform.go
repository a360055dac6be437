package model

// Geodetic is a position above a spherical Earth.
type Geodetic struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeKm   float64
}

// Shell describes one orbital shell of a constellation. The share of
// satellites placed in each shell is drawn per run.
type Shell struct {
	AltitudeKm     float64
	InclinationDeg float64
}

// DefaultShells are the three shells used when a scenario does not supply
// its own: two 53° shells at 550 and 570 km and a 70° shell at 560 km.
var DefaultShells = []Shell{
	{AltitudeKm: 550, InclinationDeg: 53.0},
	{AltitudeKm: 570, InclinationDeg: 53.2},
	{AltitudeKm: 560, InclinationDeg: 70.0},
}
