package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/signalsfoundry/constellation-partitioner/core"
	"github.com/signalsfoundry/constellation-partitioner/internal/rng"
	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

const (
	speedOfLightKmS = 300000.0

	// Processing overhead folded into the propagation latency.
	latencyOverheadLo = 1.05
	latencyOverheadHi = 1.15
)

// AttachResult summarises one attachment pass.
type AttachResult struct {
	Connected    int
	Unconnected  int
	AvgLatencyMs float64
}

// AttachTerminals connects every terminal to the nearest satellite by
// surface distance whose drawn range covers it. The range is drawn from
// trx once per candidate satellite. Connected terminals get their
// ConnectedNode and LatencyMs set, and the satellite's ActiveConnections
// is incremented through the registry.
func AttachTerminals(store *kb.KnowledgeBase, users []model.UserTerminal, trx core.TransceiverModel, r *rand.Rand) (AttachResult, error) {
	if store == nil {
		return AttachResult{}, fmt.Errorf("%w: nil registry", model.ErrInvalidConfiguration)
	}
	sats := store.ListNodes()

	var res AttachResult
	totalLatency := 0.0
	for i := range users {
		u := &users[i]
		best, dist, ok := nearestInRange(u.Position, sats, trx, r)
		if !ok {
			res.Unconnected++
			continue
		}
		if err := store.AddConnection(best); err != nil {
			return res, fmt.Errorf("attach terminal %d: %w", u.ID, err)
		}
		id := best
		u.ConnectedNode = &id
		u.LatencyMs = dist / speedOfLightKmS * 1000 * rng.Uniform(r, latencyOverheadLo, latencyOverheadHi)
		totalLatency += u.LatencyMs
		res.Connected++
	}
	if res.Connected > 0 {
		res.AvgLatencyMs = totalLatency / float64(res.Connected)
	}
	return res, nil
}

func nearestInRange(pos model.Geodetic, sats []model.Node, trx core.TransceiverModel, r *rand.Rand) (model.NodeID, float64, bool) {
	var best model.NodeID
	bestDist := math.Inf(1)
	found := false
	for _, s := range sats {
		d := core.SurfaceDistanceKm(pos, s.Position)
		maxRange := math.Inf(1)
		if trx.MaxRangeKm > 0 {
			maxRange = trx.EffectiveRangeKm(r)
		}
		if d < bestDist && d < maxRange {
			best, bestDist, found = s.ID, d, true
		}
	}
	return best, bestDist, found
}
