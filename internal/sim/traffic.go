package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/signalsfoundry/constellation-partitioner/internal/routing"
	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
)

// RouteObserver receives one callback per computed route.
// *observability.RoutingCollector satisfies it.
type RouteObserver interface {
	ObserveRoute(protocol, outcome string, hops int, d time.Duration)
}

// TrafficStats aggregates a batch of routed requests.
type TrafficStats struct {
	Routes     int
	Successful int
	TotalHops  int
	Outcomes   map[model.RouteOutcome]int
}

// SuccessRate is Successful/Routes, or 0 with no routes.
func (s TrafficStats) SuccessRate() float64 {
	if s.Routes == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Routes)
}

// AvgHops is the mean hop count over successful routes.
func (s TrafficStats) AvgHops() float64 {
	if s.Successful == 0 {
		return 0
	}
	return float64(s.TotalHops) / float64(s.Successful)
}

// Merge adds other into s.
func (s *TrafficStats) Merge(other TrafficStats) {
	s.Routes += other.Routes
	s.Successful += other.Successful
	s.TotalHops += other.TotalHops
	if len(other.Outcomes) > 0 && s.Outcomes == nil {
		s.Outcomes = make(map[model.RouteOutcome]int, len(other.Outcomes))
	}
	for o, n := range other.Outcomes {
		s.Outcomes[o] += n
	}
}

const (
	minPathLoad = 1
	maxPathLoad = 3
)

// SimulateTraffic routes n requests between uniformly drawn satellites.
// Each usable route adds a random load of 1..3 to every node on its path,
// the source and destination included. obs may be nil.
func SimulateTraffic(router routing.Router, store *kb.KnowledgeBase, nodes []model.NodeID, n int, r *rand.Rand, obs RouteObserver) (TrafficStats, error) {
	stats := TrafficStats{Outcomes: make(map[model.RouteOutcome]int)}
	if n <= 0 || len(nodes) == 0 {
		return stats, nil
	}
	protocol := router.Protocol().String()

	for range n {
		src := nodes[r.Intn(len(nodes))]
		dst := nodes[r.Intn(len(nodes))]

		started := time.Now()
		res, err := router.Route(src, dst)
		if err != nil {
			return stats, fmt.Errorf("route %d -> %d: %w", src, dst, err)
		}
		elapsed := time.Since(started)

		stats.Routes++
		stats.Outcomes[res.Outcome]++
		if obs != nil {
			obs.ObserveRoute(protocol, res.Outcome.String(), res.Hops(), elapsed)
		}
		if !res.Usable() {
			continue
		}
		stats.Successful++
		stats.TotalHops += res.Hops()
		for _, id := range res.Path {
			load := int64(minPathLoad + r.Intn(maxPathLoad-minPathLoad+1))
			if err := store.AddLoad(id, load); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}
