package core

import "math/rand"

// TransceiverModel describes the range characteristics of a family of
// radios. Atmospheric and pointing effects are folded into a symmetric
// tolerance around the nominal range.
type TransceiverModel struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`

	// MaxRangeKm is the nominal connectivity range in kilometres.
	// 0 = unlimited.
	MaxRangeKm float64 `json:"MaxRangeKm,omitempty"`

	// RangeTolerance is the fractional range variation applied on every
	// evaluation, e.g. 0.03 for ±3%.
	RangeTolerance float64 `json:"RangeTolerance,omitempty"`
}

// InterSatelliteTransceiver is the default inter-satellite radio: 5000 km ±3%.
var InterSatelliteTransceiver = TransceiverModel{
	ID:             "isl-default",
	Name:           "Inter-satellite link",
	MaxRangeKm:     5000,
	RangeTolerance: 0.03,
}

// UserTerminalTransceiver is the default ground-to-satellite radio: 3000 km ±5%.
var UserTerminalTransceiver = TransceiverModel{
	ID:             "ut-default",
	Name:           "User terminal",
	MaxRangeKm:     3000,
	RangeTolerance: 0.05,
}

// EffectiveRangeKm draws the range for one evaluation. A nil rng or a zero
// tolerance yields the nominal range.
func (tm TransceiverModel) EffectiveRangeKm(rng *rand.Rand) float64 {
	if tm.MaxRangeKm <= 0 {
		return 0
	}
	if rng == nil || tm.RangeTolerance == 0 {
		return tm.MaxRangeKm
	}
	lo := 1 - tm.RangeTolerance
	hi := 1 + tm.RangeTolerance
	return tm.MaxRangeKm * (lo + rng.Float64()*(hi-lo))
}

// InRange reports whether distanceKm is within one draw of the effective range.
func (tm TransceiverModel) InRange(distanceKm float64, rng *rand.Rand) bool {
	if tm.MaxRangeKm <= 0 {
		return true
	}
	return distanceKm <= tm.EffectiveRangeKm(rng)
}
