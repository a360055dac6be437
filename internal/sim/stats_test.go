package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

func TestCollectStats(t *testing.T) {
	nodes := []model.Node{
		{ID: 0, Neighbors: []model.NodeID{1, 2}, Load: 10, ActiveConnections: 3},
		{ID: 1, Neighbors: []model.NodeID{0}, Load: 2, ActiveConnections: 0},
		{ID: 2, Neighbors: nil, Load: 0, ActiveConnections: 6},
	}

	got := CollectStats(nodes, 12)
	assert.Equal(t, NetworkStats{
		TotalSatellites: 3,
		TotalUsers:      12,
		AvgNeighbors:    1,
		MaxLoad:         10,
		AvgLoad:         4,
		MaxConnections:  6,
		AvgConnections:  3,
	}, got)
}

func TestCollectStatsEmpty(t *testing.T) {
	assert.Equal(t, NetworkStats{TotalUsers: 5}, CollectStats(nil, 5))
}
