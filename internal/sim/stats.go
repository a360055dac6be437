package sim

import (
	"github.com/samber/lo"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// NetworkStats is the end-of-run snapshot of the registry.
type NetworkStats struct {
	TotalSatellites int     `json:"total_satellites"`
	TotalUsers      int     `json:"total_users"`
	AvgNeighbors    float64 `json:"avg_neighbors"`
	MaxLoad         int64   `json:"max_load"`
	AvgLoad         float64 `json:"avg_load"`
	MaxConnections  int     `json:"max_connections"`
	AvgConnections  float64 `json:"avg_connections"`
}

// CollectStats summarises nodes. Every average is 0 for an empty slice.
func CollectStats(nodes []model.Node, totalUsers int) NetworkStats {
	stats := NetworkStats{
		TotalSatellites: len(nodes),
		TotalUsers:      totalUsers,
	}
	if len(nodes) == 0 {
		return stats
	}
	n := float64(len(nodes))

	loads := lo.Map(nodes, func(nd model.Node, _ int) int64 { return nd.Load })
	conns := lo.Map(nodes, func(nd model.Node, _ int) int { return nd.ActiveConnections })
	neighbors := lo.SumBy(nodes, func(nd model.Node) int { return len(nd.Neighbors) })

	stats.AvgNeighbors = float64(neighbors) / n
	stats.MaxLoad = lo.Max(loads)
	stats.AvgLoad = float64(lo.Sum(loads)) / n
	stats.MaxConnections = lo.Max(conns)
	stats.AvgConnections = float64(lo.Sum(conns)) / n
	return stats
}
