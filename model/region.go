package model

// Region is a population centre where user terminals are placed. Terminals
// are scattered around the centre by up to SpreadLatDeg/SpreadLonDeg.
type Region struct {
	Name         string
	CenterLatDeg float64
	CenterLonDeg float64
	SpreadLatDeg float64
	SpreadLonDeg float64
	// Weight is the relative share of terminals placed in this region.
	Weight float64
}

// DefaultRegions approximates the global user distribution.
var DefaultRegions = []Region{
	{Name: "north_america", CenterLatDeg: 40, CenterLonDeg: -100, SpreadLatDeg: 10, SpreadLonDeg: 15, Weight: 0.25},
	{Name: "europe", CenterLatDeg: 50, CenterLonDeg: 10, SpreadLatDeg: 10, SpreadLonDeg: 15, Weight: 0.20},
	{Name: "asia", CenterLatDeg: 35, CenterLonDeg: 105, SpreadLatDeg: 10, SpreadLonDeg: 15, Weight: 0.30},
	{Name: "south_america", CenterLatDeg: -15, CenterLonDeg: -60, SpreadLatDeg: 10, SpreadLonDeg: 15, Weight: 0.10},
	{Name: "africa", CenterLatDeg: 0, CenterLonDeg: 20, SpreadLatDeg: 10, SpreadLonDeg: 15, Weight: 0.08},
	{Name: "oceania", CenterLatDeg: -25, CenterLonDeg: 135, SpreadLatDeg: 10, SpreadLonDeg: 15, Weight: 0.07},
}

// UserTerminal is a ground user that attaches to at most one satellite.
type UserTerminal struct {
	ID       int
	Region   string
	Position Geodetic

	// ConnectedNode is nil until the terminal has been attached.
	ConnectedNode *NodeID
	LatencyMs     float64
}
