package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RoutingCollector bundles Prometheus metrics for topology builds and route
// computations.
type RoutingCollector struct {
	gatherer prometheus.Gatherer

	RoutesTotal   *prometheus.CounterVec
	RouteHops     *prometheus.HistogramVec
	RouteDuration *prometheus.HistogramVec

	TopologyLinks  prometheus.Gauge
	TimeSlotsUsed  prometheus.Gauge
	LinkStateAreas prometheus.Gauge
	EpochsTotal    prometheus.Counter
}

// NewRoutingCollector registers routing metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewRoutingCollector(reg prometheus.Registerer) (*RoutingCollector, error) {
	reg, gatherer := resolveRegistry(reg)

	routes, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routes_total",
		Help: "Route computations, labeled by protocol and outcome.",
	}, []string{"protocol", "outcome"}), "routes_total")
	if err != nil {
		return nil, err
	}

	hops, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "route_hops",
		Help:    "Hop count of usable routes.",
		Buckets: prometheus.LinearBuckets(1, 1, 15),
	}, []string{"protocol"}), "route_hops")
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "route_computation_duration_seconds",
		Help:    "Duration of a single route computation.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"protocol"}), "route_computation_duration_seconds")
	if err != nil {
		return nil, err
	}

	links, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "topology_links",
		Help: "Directed links in the most recent topology build.",
	}), "topology_links")
	if err != nil {
		return nil, err
	}
	slots, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "time_slots_used",
		Help: "Distinct time slots in the most recent slot assignment.",
	}), "time_slots_used")
	if err != nil {
		return nil, err
	}
	areas, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "link_state_areas",
		Help: "Distinct link-state areas in the most recent area assignment.",
	}), "link_state_areas")
	if err != nil {
		return nil, err
	}
	epochs, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_epochs_total",
		Help: "Completed simulation epochs.",
	}), "simulation_epochs_total")
	if err != nil {
		return nil, err
	}

	return &RoutingCollector{
		gatherer:       gatherer,
		RoutesTotal:    routes,
		RouteHops:      hops,
		RouteDuration:  durations,
		TopologyLinks:  links,
		TimeSlotsUsed:  slots,
		LinkStateAreas: areas,
		EpochsTotal:    epochs,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RoutingCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveRoute records one route computation. Hops are only observed for
// usable routes.
func (c *RoutingCollector) ObserveRoute(protocol, outcome string, hops int, d time.Duration) {
	if c == nil {
		return
	}
	c.RoutesTotal.WithLabelValues(protocol, outcome).Inc()
	c.RouteDuration.WithLabelValues(protocol).Observe(d.Seconds())
	if hops > 0 {
		c.RouteHops.WithLabelValues(protocol).Observe(float64(hops))
	}
}

// SetLinks records the link count of the latest topology build.
func (c *RoutingCollector) SetLinks(links int) {
	if c == nil {
		return
	}
	c.TopologyLinks.Set(float64(links))
}

// SetLabels updates the slot and area gauges. Negative counts leave the
// corresponding gauge untouched.
func (c *RoutingCollector) SetLabels(slots, areas int) {
	if c == nil {
		return
	}
	if slots >= 0 {
		c.TimeSlotsUsed.Set(float64(slots))
	}
	if areas >= 0 {
		c.LinkStateAreas.Set(float64(areas))
	}
}

// IncEpochs counts one finished epoch.
func (c *RoutingCollector) IncEpochs() {
	if c == nil {
		return
	}
	c.EpochsTotal.Inc()
}

func resolveRegistry(reg prometheus.Registerer) (prometheus.Registerer, prometheus.Gatherer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	return reg, gatherer
}

// register adds c to reg. When an equal collector is already registered the
// existing one is returned so collectors can be constructed more than once
// per process.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var zero T
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return zero, err
	}
	return c, nil
}
