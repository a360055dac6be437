package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PartitionCollector exposes partition-quality metrics per strategy.
type PartitionCollector struct {
	gatherer prometheus.Gatherer

	LoadImbalance *prometheus.GaugeVec
	MaxLoad       *prometheus.GaugeVec
	MinLoad       *prometheus.GaugeVec
	Containers    prometheus.Gauge
}

// NewPartitionCollector registers partition metrics against the provided registerer.
func NewPartitionCollector(reg prometheus.Registerer) (*PartitionCollector, error) {
	reg, gatherer := resolveRegistry(reg)

	imbalance, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "partition_load_imbalance",
		Help: "(max-avg)/avg container load of the latest partitioning.",
	}, []string{"strategy"}), "partition_load_imbalance")
	if err != nil {
		return nil, err
	}

	maxLoad, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "partition_max_load",
		Help: "Heaviest container load of the latest partitioning.",
	}, []string{"strategy"}), "partition_max_load")
	if err != nil {
		return nil, err
	}

	minLoad, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "partition_min_load",
		Help: "Lightest container load of the latest partitioning.",
	}, []string{"strategy"}), "partition_min_load")
	if err != nil {
		return nil, err
	}

	containers, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "partition_containers",
		Help: "Configured number of worker containers.",
	}), "partition_containers")
	if err != nil {
		return nil, err
	}

	return &PartitionCollector{
		gatherer:      gatherer,
		LoadImbalance: imbalance,
		MaxLoad:       maxLoad,
		MinLoad:       minLoad,
		Containers:    containers,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *PartitionCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObservePartition records the load summary of one strategy.
func (c *PartitionCollector) ObservePartition(strategy string, containers int, imbalance, maxLoad, minLoad float64) {
	if c == nil {
		return
	}
	if imbalance < 0 {
		imbalance = 0
	}
	c.Containers.Set(float64(containers))
	c.LoadImbalance.WithLabelValues(strategy).Set(imbalance)
	c.MaxLoad.WithLabelValues(strategy).Set(maxLoad)
	c.MinLoad.WithLabelValues(strategy).Set(minLoad)
}
