// Package sim drives an end-to-end constellation run: user terminals,
// attachment, routed traffic and the final partitioning report.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/signalsfoundry/constellation-partitioner/internal/rng"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

// regionJitter scales each region's base weight per run.
const (
	regionJitterLo = 0.9
	regionJitterHi = 1.1
)

// GenerateTerminals places count user terminals across regions. Region
// weights are perturbed once per call, then each terminal picks a region
// by weight and lands uniformly inside the region's lat/lon box. Nil
// regions fall back to model.DefaultRegions.
func GenerateTerminals(count int, regions []model.Region, r *rand.Rand) ([]model.UserTerminal, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: terminal count must be non-negative, got %d", model.ErrInvalidConfiguration, count)
	}
	if regions == nil {
		regions = model.DefaultRegions
	}
	if count > 0 && len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions to place terminals in", model.ErrInvalidConfiguration)
	}

	weights := make([]float64, len(regions))
	for i, reg := range regions {
		weights[i] = reg.Weight * rng.Uniform(r, regionJitterLo, regionJitterHi)
	}

	users := make([]model.UserTerminal, 0, count)
	for i := range count {
		idx := rng.WeightedIndex(r, weights)
		if idx < 0 {
			return nil, fmt.Errorf("%w: region weights must not all be zero", model.ErrInvalidConfiguration)
		}
		reg := regions[idx]
		users = append(users, model.UserTerminal{
			ID:     i,
			Region: reg.Name,
			Position: model.Geodetic{
				LatitudeDeg:  clampLatitude(reg.CenterLatDeg + rng.Uniform(r, -reg.SpreadLatDeg, reg.SpreadLatDeg)),
				LongitudeDeg: wrapLongitude(reg.CenterLonDeg + rng.Uniform(r, -reg.SpreadLonDeg, reg.SpreadLonDeg)),
			},
		})
	}
	return users, nil
}

func clampLatitude(lat float64) float64 {
	return max(-90, min(90, lat))
}

func wrapLongitude(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
