package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/signalsfoundry/constellation-partitioner/internal/config"
	"github.com/signalsfoundry/constellation-partitioner/internal/logging"
	"github.com/signalsfoundry/constellation-partitioner/internal/observability"
	"github.com/signalsfoundry/constellation-partitioner/internal/routing"
	"github.com/signalsfoundry/constellation-partitioner/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// flags holds command-line overrides applied on top of the config file.
type flags struct {
	configPath  string
	protocol    string
	seed        int64
	epochs      int
	metricsAddr string
	logLevel    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "simulator",
		Short:         "Satellite constellation routing and partitioning simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().Int64Var(&f.seed, "seed", 0, "Override the random seed (0 keeps the config value)")
	root.PersistentFlags().IntVar(&f.epochs, "epochs", -1, "Override the number of epochs")
	root.PersistentFlags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation with the configured protocol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, f, stdout, stderr, func(ctx context.Context, cfg config.Config, opts []sim.Option) (any, error) {
				return sim.NewRunner(cfg, opts...).Run(ctx)
			})
		},
	}
	run.Flags().StringVarP(&f.protocol, "protocol", "p", "", "Routing protocol (TSA or OSPF)")

	compare := &cobra.Command{
		Use:   "compare",
		Short: "Run the same constellation under both routing protocols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, f, stdout, stderr, func(ctx context.Context, cfg config.Config, opts []sim.Option) (any, error) {
				return sim.CompareProtocols(ctx, cfg, opts...)
			})
		},
	}

	root.AddCommand(run, compare)
	return root
}

type runFunc func(ctx context.Context, cfg config.Config, opts []sim.Option) (any, error)

// execute loads configuration, wires logging, tracing and metrics, invokes
// fn and writes its result to stdout as JSON.
func execute(cmd *cobra.Command, f *flags, stdout, stderr io.Writer, fn runFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	log, closer, err := logging.Open(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
		Output: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}
	defer closer.Close()

	tracing := observability.TracingFromConfig(cfg.Tracing).WithEnv()
	shutdown, err := observability.InitTracingTo(ctx, tracing, log, stderr)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	reg := prometheus.NewRegistry()
	routes, err := observability.NewRoutingCollector(reg)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		return err
	}
	parts, err := observability.NewPartitionCollector(reg)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		return err
	}
	if srv := serveMetrics(cfg.MetricsAddr, routes, log); srv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	result, err := fn(ctx, *cfg, []sim.Option{
		sim.WithLogger(log),
		sim.WithRoutingMetrics(routes),
		sim.WithPartitionMetrics(parts),
	})
	if err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadConfig(f *flags) (*config.Config, error) {
	var cfg *config.Config
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		d := config.Defaults()
		cfg = &d
	}

	if f.protocol != "" {
		p, err := routing.ParseProtocol(f.protocol)
		if err != nil {
			return nil, err
		}
		cfg.Protocol = p.String()
	}
	if f.seed != 0 {
		cfg.Seed = f.seed
	}
	if f.epochs >= 0 {
		cfg.Epochs = f.epochs
	}
	if f.metricsAddr != "" {
		cfg.MetricsAddr = f.metricsAddr
	}
	if f.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(f.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serveMetrics(addr string, collector *observability.RoutingCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
