package core

import (
	"fmt"
	"math/rand"

	"github.com/signalsfoundry/constellation-partitioner/internal/rng"
	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

// GenerateConstellation creates count satellites with IDs 0..count-1 and
// registers them in store.
//
// Each run draws a share per shell from U(0.3, 0.5) and normalises. A
// satellite's altitude varies by ±5 km and its inclination by ±0.5° around
// its shell; latitude and longitude are uniform.
func GenerateConstellation(store *kb.KnowledgeBase, count int, shells []model.Shell, r *rand.Rand) ([]model.NodeID, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative satellite count %d", model.ErrInvalidConfiguration, count)
	}
	if len(shells) == 0 {
		shells = model.DefaultShells
	}

	weights := make([]float64, len(shells))
	for i := range shells {
		weights[i] = rng.Uniform(r, 0.3, 0.5)
	}

	ids := make([]model.NodeID, 0, count)
	for i := 0; i < count; i++ {
		shell := shells[rng.WeightedIndex(r, weights)]
		n := &model.Node{
			ID:             model.NodeID(i),
			Name:           fmt.Sprintf("sat-%d", i),
			InclinationDeg: shell.InclinationDeg + rng.Uniform(r, -0.5, 0.5),
			Position: model.Geodetic{
				AltitudeKm:   shell.AltitudeKm + rng.Uniform(r, -5, 5),
				LongitudeDeg: rng.Uniform(r, -180, 180),
				LatitudeDeg:  rng.Uniform(r, -90, 90),
			},
		}
		if err := store.AddNode(n); err != nil {
			return nil, err
		}
		ids = append(ids, n.ID)
	}
	return ids, nil
}
