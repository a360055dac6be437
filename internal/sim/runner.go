package sim

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/constellation-partitioner/core"
	"github.com/signalsfoundry/constellation-partitioner/internal/config"
	"github.com/signalsfoundry/constellation-partitioner/internal/logging"
	"github.com/signalsfoundry/constellation-partitioner/internal/observability"
	"github.com/signalsfoundry/constellation-partitioner/internal/partition"
	"github.com/signalsfoundry/constellation-partitioner/internal/rng"
	"github.com/signalsfoundry/constellation-partitioner/internal/routing"
	"github.com/signalsfoundry/constellation-partitioner/kb"
	"github.com/signalsfoundry/constellation-partitioner/model"
	"github.com/signalsfoundry/constellation-partitioner/timectrl"
)

// Random streams, one per subsystem, so that changing how much one
// subsystem draws leaves the others untouched.
const (
	streamPlacement = "placement"
	streamTerminals = "terminals"
	streamTopology  = "topology"
	streamRouter    = "router"
	streamTraffic   = "traffic"
	streamPartition = "partition"
)

// PartitionStrategies are evaluated at the end of every run, in order.
var PartitionStrategies = []string{"utp", "lbtp"}

// Report is the outcome of one run.
type Report struct {
	RunID    string    `json:"run_id"`
	Protocol string    `json:"protocol"`
	Seed     int64     `json:"seed"`
	Start    time.Time `json:"start"`

	Attachment AttachResult      `json:"attachment"`
	Epochs     []EpochReport     `json:"epochs"`
	Traffic    TrafficStats      `json:"traffic"`
	Network    NetworkStats      `json:"network"`
	Partitions []PartitionReport `json:"partitions"`
}

// EpochReport describes one topology build and the traffic routed over it.
type EpochReport struct {
	Index     int          `json:"index"`
	SimTime   time.Time    `json:"sim_time"`
	Links     int          `json:"links"`
	AvgDegree float64      `json:"avg_degree"`
	Slots     int          `json:"slots,omitempty"`
	Areas     int          `json:"areas,omitempty"`
	Traffic   TrafficStats `json:"traffic"`
}

// PartitionReport is one strategy's container layout and its metrics.
type PartitionReport struct {
	Strategy string                    `json:"strategy"`
	Sizes    []int                     `json:"sizes"`
	Metrics  partition.ImbalanceReport `json:"metrics"`
}

// Option customises a Runner.
type Option func(*Runner)

// WithLogger sets the base logger. Each run adds its run_id.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithRoutingMetrics records per-route and per-epoch metrics into c.
func WithRoutingMetrics(c *observability.RoutingCollector) Option {
	return func(r *Runner) { r.routes = c }
}

// WithPartitionMetrics records the final partition metrics into c.
func WithPartitionMetrics(c *observability.PartitionCollector) Option {
	return func(r *Runner) { r.partitions = c }
}

// WithStartTime fixes the simulation start time. Defaults to now (UTC).
func WithStartTime(t time.Time) Option {
	return func(r *Runner) { r.start = t }
}

// WithRegions overrides model.DefaultRegions for terminal placement.
func WithRegions(regions []model.Region) Option {
	return func(r *Runner) { r.regions = regions }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// Runner executes a configured simulation.
type Runner struct {
	cfg config.Config

	log        logging.Logger
	routes     *observability.RoutingCollector
	partitions *observability.PartitionCollector
	tracer     trace.Tracer
	start      time.Time
	regions    []model.Region
}

// NewRunner returns a runner for cfg. cfg is validated by Run.
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logging.Noop()
	}
	if r.tracer == nil {
		r.tracer = observability.Tracer("github.com/signalsfoundry/constellation-partitioner/internal/sim")
	}
	if r.start.IsZero() {
		r.start = time.Now().UTC()
	}
	return r
}

// world is the mutable state of one run.
type world struct {
	rngs   *rng.PartitionedRNG
	store  *kb.KnowledgeBase
	ids    []model.NodeID
	links  core.LinkModel
	engine *core.SimulationEngine
	router routing.Router
	users  []model.UserTerminal

	// slots and areas count the labels of the latest topology build.
	slots, areas int
	unsubscribe  func()
}

// Run builds the constellation, routes traffic over every epoch and
// partitions the resulting load.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	proto, err := routing.ParseProtocol(r.cfg.Protocol)
	if err != nil {
		return nil, err
	}

	ctx, log := logging.WithRunLogger(ctx, r.log)
	ctx = logging.ContextWithLogger(ctx, log)
	ctx, span := r.tracer.Start(ctx, "simulation.run", trace.WithAttributes(
		attribute.String("protocol", proto.String()),
		attribute.Int("epochs", r.cfg.Epochs),
	))
	defer span.End()

	started := time.Now()
	w, err := r.setup(ctx, proto)
	if err != nil {
		return nil, spanError(span, err)
	}
	defer w.unsubscribe()
	report := &Report{
		RunID:    logging.RunIDFromContext(ctx),
		Protocol: proto.String(),
		Seed:     w.rngs.Seed(),
		Start:    r.start,
		Traffic:  TrafficStats{Outcomes: make(map[model.RouteOutcome]int)},
	}
	log.Info(ctx, "simulation started",
		logging.String("protocol", report.Protocol),
		logging.Int64("seed", report.Seed),
		logging.Int("satellites", len(w.ids)),
		logging.Int("users", len(w.users)),
	)

	if err := r.runEpochs(ctx, w, report); err != nil {
		return nil, spanError(span, err)
	}

	nodes := w.store.ListNodes()
	report.Network = CollectStats(nodes, len(w.users))

	if err := r.partition(ctx, w, nodes, report); err != nil {
		return nil, spanError(span, err)
	}

	log.Info(ctx, "simulation finished",
		logging.Int("routes", report.Traffic.Routes),
		logging.Float64("success_rate", report.Traffic.SuccessRate()),
		logging.Float64("avg_hops", report.Traffic.AvgHops()),
		logging.Int64("max_load", report.Network.MaxLoad),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

func (r *Runner) setup(ctx context.Context, proto routing.Protocol) (*world, error) {
	_, span := r.tracer.Start(ctx, "simulation.setup")
	defer span.End()

	w := &world{
		rngs:  rng.New(r.cfg.Seed),
		store: kb.NewKnowledgeBase(),
	}

	var tles map[model.NodeID][2]string
	if r.cfg.Scenario != "" {
		sc, err := loadScenario(w.store, r.cfg.Scenario)
		if err != nil {
			return nil, err
		}
		w.ids, tles = sc.NodeIDs, sc.TLEs
		if sc.LinkModel != nil {
			w.links = sc.LinkModel
		}
	} else {
		ids, err := core.GenerateConstellation(w.store, r.cfg.NumSatellites, nil, w.rngs.For(streamPlacement))
		if err != nil {
			return nil, err
		}
		w.ids = ids
	}

	if w.links == nil {
		vis := core.NewRangeVisibility(core.TransceiverModel{
			ID:             core.InterSatelliteTransceiver.ID,
			Name:           core.InterSatelliteTransceiver.Name,
			MaxRangeKm:     r.cfg.MaxRangeKm,
			RangeTolerance: r.cfg.RangeTolerance,
		}, w.rngs.For(streamTopology))
		vis.RequireLineOfSight = r.cfg.LineOfSight
		w.links = vis
	}

	router, err := routing.New(proto, routing.Options{
		Links:    w.links,
		RNG:      w.rngs.For(streamRouter),
		NumAreas: r.cfg.NumAreas,
	})
	if err != nil {
		return nil, err
	}
	w.router = router

	// The router's graph is the registry topology; labelling follows every rebuild.
	w.engine = core.NewSimulationEngine(w.store, router)
	for _, id := range w.ids {
		tle := tles[id]
		w.engine.SetMotionModel(id, core.NewMotionModel(r.start, tle[0], tle[1]))
	}
	w.engine.RegisterTickListener(r.labelTopology(w))
	w.unsubscribe = w.store.Subscribe(func(e kb.Event) {
		if e.Type == kb.EventTopologyRebuilt {
			r.routes.SetLinks(e.Links)
		}
	})

	users, err := GenerateTerminals(r.cfg.NumUsers, r.regions, w.rngs.For(streamTerminals))
	if err != nil {
		return nil, err
	}
	w.users = users
	return w, nil
}

func loadScenario(store *kb.KnowledgeBase, path string) (*core.ConstellationScenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()
	sc, err := core.LoadConstellationScenario(store, f)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// runEpochs runs the first epoch at the start time and the rest on a
// timectrl clock, one per tick.
func (r *Runner) runEpochs(ctx context.Context, w *world, report *Report) error {
	if r.cfg.Epochs == 0 {
		return nil
	}
	if err := r.epoch(ctx, w, report, 0, r.start); err != nil {
		return err
	}
	if r.cfg.Epochs == 1 {
		return nil
	}

	mode, _ := timectrl.ParseMode(r.cfg.ClockMode)
	tc := timectrl.NewTimeController(r.start, r.cfg.EpochInterval, mode)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var epochErr error
	next := 1
	tc.AddListener(func(now time.Time) {
		if epochErr != nil {
			return
		}
		if err := r.epoch(runCtx, w, report, next, now); err != nil {
			epochErr = err
			cancel()
			return
		}
		next++
	})

	<-tc.Start(runCtx, time.Duration(r.cfg.Epochs-1)*r.cfg.EpochInterval)
	if epochErr != nil {
		return epochErr
	}
	return ctx.Err()
}

// epoch advances the engine to simTime, which moves the constellation,
// rebuilds the topology and relabels it, then attaches terminals on the
// first epoch and routes traffic.
func (r *Runner) epoch(ctx context.Context, w *world, report *Report, index int, simTime time.Time) error {
	ctx, span := r.tracer.Start(ctx, "simulation.epoch", trace.WithAttributes(attribute.Int("epoch", index)))
	defer span.End()
	log := logging.LoggerFromContext(ctx)

	topoCtx, topoSpan := r.tracer.Start(ctx, "simulation.topology")
	adj, err := w.engine.Advance(topoCtx, simTime)
	if err != nil {
		topoSpan.End()
		return spanError(span, err)
	}
	topoSpan.SetAttributes(attribute.Int("links", adj.LinkCount()))
	topoSpan.End()

	if index == 0 {
		res, err := AttachTerminals(w.store, w.users, core.UserTerminalTransceiver, w.rngs.For(streamTerminals))
		if err != nil {
			return spanError(span, err)
		}
		report.Attachment = res
		log.Info(ctx, "terminals attached",
			logging.Int("connected", res.Connected),
			logging.Int("unconnected", res.Unconnected),
			logging.Float64("avg_latency_ms", res.AvgLatencyMs),
		)
	}

	_, trafficSpan := r.tracer.Start(ctx, "simulation.traffic")
	traffic, err := SimulateTraffic(w.router, w.store, w.ids, r.cfg.NumRoutes, w.rngs.For(streamTraffic), r.routes)
	trafficSpan.SetAttributes(attribute.Int("routes", traffic.Routes), attribute.Int("successful", traffic.Successful))
	trafficSpan.End()
	if err != nil {
		return spanError(span, err)
	}
	r.routes.IncEpochs()

	report.Epochs = append(report.Epochs, EpochReport{
		Index:     index,
		SimTime:   simTime,
		Links:     adj.LinkCount(),
		AvgDegree: adj.AverageDegree(),
		Slots:     w.slots,
		Areas:     w.areas,
		Traffic:   traffic,
	})
	report.Traffic.Merge(traffic)

	log.Debug(ctx, "epoch complete",
		logging.Int("epoch", index),
		logging.Int("links", adj.LinkCount()),
		logging.Int("successful", traffic.Successful),
		logging.Int("routes", traffic.Routes),
	)
	return nil
}

// labelTopology returns the tick listener that prepares the router on a
// fresh topology and copies its slots or areas into the registry.
func (r *Runner) labelTopology(w *world) core.TickListener {
	return func(ctx context.Context, _ time.Time, _ core.Adjacency) error {
		_, span := r.tracer.Start(ctx, "simulation.labels")
		defer span.End()

		if err := w.router.Prepare(); err != nil {
			return spanError(span, err)
		}

		w.slots, w.areas = 0, 0
		switch rt := w.router.(type) {
		case *routing.TimeSlotRouter:
			w.store.SetSlots(rt.Slots())
			w.slots = rt.SlotCount()
			r.routes.SetLabels(w.slots, -1)
		case *routing.LinkStateRouter:
			m := rt.AreaMap()
			w.store.SetAreas(m)
			w.areas = len(lo.Uniq(lo.Values(m)))
			r.routes.SetLabels(-1, w.areas)
		}
		span.SetAttributes(attribute.Int("slots", w.slots), attribute.Int("areas", w.areas))
		return nil
	}
}

func (r *Runner) partition(ctx context.Context, w *world, nodes []model.Node, report *Report) error {
	ctx, span := r.tracer.Start(ctx, "simulation.partition")
	defer span.End()
	log := logging.LoggerFromContext(ctx)

	for _, name := range PartitionStrategies {
		strategy, err := partition.StrategyByName(name, w.rngs.For(streamPartition))
		if err != nil {
			return spanError(span, err)
		}
		containers, err := partition.Partition(nodes, r.cfg.NumContainers, strategy)
		if err != nil {
			return spanError(span, err)
		}
		metrics := partition.Metrics(containers, nodes)
		r.partitions.ObservePartition(strategy.Name(), len(containers), metrics.Imbalance, metrics.MaxLoad, metrics.MinLoad)

		report.Partitions = append(report.Partitions, PartitionReport{
			Strategy: strategy.Name(),
			Sizes:    lo.Map(containers, func(c partition.Container, _ int) int { return len(c.Nodes) }),
			Metrics:  metrics,
		})
		log.Info(ctx, "partition computed",
			logging.String("strategy", strategy.Name()),
			logging.Int("containers", len(containers)),
			logging.Float64("imbalance", metrics.Imbalance),
			logging.Float64("max_load", metrics.MaxLoad),
			logging.Float64("min_load", metrics.MinLoad),
		)
	}
	return nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
