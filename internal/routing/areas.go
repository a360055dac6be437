package routing

import (
	"fmt"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// AreaAssignment groups nodes into link-state areas.
type AreaAssignment interface {
	Name() string
	Assign(order []model.NodeID, numAreas int) (map[model.NodeID]int, error)
}

// PositionalAreaAssignment splits nodes into numAreas contiguous runs in
// the order they were given. It does not look at the topology. The last
// area absorbs the remainder.
type PositionalAreaAssignment struct{}

func (PositionalAreaAssignment) Name() string { return "positional" }

func (PositionalAreaAssignment) Assign(order []model.NodeID, numAreas int) (map[model.NodeID]int, error) {
	if numAreas <= 0 {
		return nil, fmt.Errorf("%w: num_areas must be positive, got %d", model.ErrInvalidConfiguration, numAreas)
	}
	per := len(order) / numAreas
	areas := make(map[model.NodeID]int, len(order))
	for i, id := range order {
		var area int
		if per == 0 {
			// Fewer nodes than areas: one node per area.
			area = i
		} else {
			area = i / per
		}
		areas[id] = min(area, numAreas-1)
	}
	return areas, nil
}
