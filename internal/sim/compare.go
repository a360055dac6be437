package sim

import (
	"context"
	"fmt"

	"github.com/signalsfoundry/constellation-partitioner/internal/config"
	"github.com/signalsfoundry/constellation-partitioner/internal/rng"
	"github.com/signalsfoundry/constellation-partitioner/internal/routing"
)

// Comparison holds one report per protocol, produced from the same seed
// so both runs start from the same constellation and terminals.
type Comparison struct {
	Seed    int64     `json:"seed"`
	Reports []*Report `json:"reports"`
}

// Report returns the report for protocol p, or nil.
func (c *Comparison) Report(p routing.Protocol) *Report {
	for _, r := range c.Reports {
		if r.Protocol == p.String() {
			return r
		}
	}
	return nil
}

// CompareProtocols runs cfg once with the time-slot router and once with
// the link-state router. A zero seed is resolved once up front.
func CompareProtocols(ctx context.Context, cfg config.Config, opts ...Option) (*Comparison, error) {
	if cfg.Seed == 0 {
		cfg.Seed = rng.New(0).Seed()
	}
	cmp := &Comparison{Seed: cfg.Seed}
	for _, p := range []routing.Protocol{routing.TimeSlot, routing.LinkState} {
		run := cfg
		run.Protocol = p.String()
		report, err := NewRunner(run, opts...).Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s run: %w", p, err)
		}
		cmp.Reports = append(cmp.Reports, report)
	}
	return cmp, nil
}
