package partition

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// ImbalanceReport summarises per-container load. Imbalance is
// (MaxLoad-AvgLoad)/AvgLoad, or 0 when AvgLoad is 0.
type ImbalanceReport struct {
	MaxLoad   float64   `json:"max_load"`
	MinLoad   float64   `json:"min_load"`
	AvgLoad   float64   `json:"avg_load"`
	StdDev    float64   `json:"std_dev"`
	Imbalance float64   `json:"imbalance"`
	Loads     []float64 `json:"loads"`
}

// Metrics sums node weights per container. Node IDs missing from nodes
// count as zero.
func Metrics(containers []Container, nodes []model.Node) ImbalanceReport {
	if len(containers) == 0 {
		return ImbalanceReport{Loads: []float64{}}
	}

	weight := make(map[model.NodeID]int64, len(nodes))
	for _, n := range nodes {
		weight[n.ID] = n.Weight()
	}

	loads := make([]float64, len(containers))
	for i, c := range containers {
		var sum int64
		for _, id := range c.Nodes {
			sum += weight[id]
		}
		loads[i] = float64(sum)
	}

	mean, std := stat.PopMeanStdDev(loads, nil)
	rep := ImbalanceReport{
		MaxLoad: floats.Max(loads),
		MinLoad: floats.Min(loads),
		AvgLoad: mean,
		StdDev:  std,
		Loads:   loads,
	}
	if rep.AvgLoad > 0 {
		rep.Imbalance = (rep.MaxLoad - rep.AvgLoad) / rep.AvgLoad
	}
	return rep
}
