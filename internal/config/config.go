// Package config loads the simulator's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/constellation-partitioner/model"
)

// Config is the full run configuration. Keys absent from a file keep their
// Defaults value.
type Config struct {
	Protocol      string `yaml:"protocol"`
	NumAreas      int    `yaml:"num_areas"`
	NumContainers int    `yaml:"num_containers"`

	NumSatellites int    `yaml:"num_satellites"`
	NumUsers      int    `yaml:"num_users"`
	NumRoutes     int    `yaml:"num_routes"`
	Scenario      string `yaml:"scenario"` // optional JSON constellation file

	Epochs        int           `yaml:"epochs"`
	EpochInterval time.Duration `yaml:"epoch_interval"`
	ClockMode     string        `yaml:"clock_mode"`

	// Seed 0 means a time-based seed.
	Seed int64 `yaml:"seed"`

	MaxRangeKm     float64 `yaml:"max_range_km"`
	RangeTolerance float64 `yaml:"range_tolerance"`
	LineOfSight    bool    `yaml:"line_of_sight"`

	Logging     LoggingConfig `yaml:"logging"`
	MetricsAddr string        `yaml:"metrics_addr"`
	Tracing     TracingConfig `yaml:"tracing"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
	Path   string `yaml:"path"`   // extra log file, empty for stdout only
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"` // stdout | otlp
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// ValidProtocols is the set of recognized protocol names.
var ValidProtocols = map[string]bool{"TSA": true, "OSPF": true}

// ValidLogFormats is the set of recognized logging formats.
var ValidLogFormats = map[string]bool{"": true, "text": true, "json": true}

// ValidClockModes is the set of recognized epoch clock modes.
var ValidClockModes = map[string]bool{"": true, "accelerated": true, "realtime": true}

// ValidExporters is the set of recognized tracing exporters.
var ValidExporters = map[string]bool{"": true, "stdout": true, "otlp": true, "otlpgrpc": true}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Protocol:       "OSPF",
		NumAreas:       4,
		NumContainers:  20,
		NumSatellites:  900,
		NumUsers:       1500,
		NumRoutes:      100,
		Epochs:         1,
		EpochInterval:  10 * time.Second,
		ClockMode:      "accelerated",
		MaxRangeKm:     5000,
		RangeTolerance: 0.03,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			SampleRatio: 1,
		},
	}
}

// Load reads a YAML file on top of Defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks names and ranges. Every failure wraps
// model.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	c.Protocol = strings.ToUpper(strings.TrimSpace(c.Protocol))
	if !ValidProtocols[c.Protocol] {
		return invalid("unknown protocol %q", c.Protocol)
	}
	if c.NumAreas <= 0 {
		return invalid("num_areas must be positive, got %d", c.NumAreas)
	}
	if c.NumContainers <= 0 {
		return invalid("num_containers must be positive, got %d", c.NumContainers)
	}
	if c.NumSatellites < 0 {
		return invalid("num_satellites must be non-negative, got %d", c.NumSatellites)
	}
	if c.NumUsers < 0 {
		return invalid("num_users must be non-negative, got %d", c.NumUsers)
	}
	if c.NumRoutes < 0 {
		return invalid("num_routes must be non-negative, got %d", c.NumRoutes)
	}
	if c.Epochs < 0 {
		return invalid("epochs must be non-negative, got %d", c.Epochs)
	}
	if c.Epochs > 1 && c.EpochInterval <= 0 {
		return invalid("epoch_interval must be positive with more than one epoch, got %s", c.EpochInterval)
	}
	if !ValidClockModes[c.ClockMode] {
		return invalid("unknown clock_mode %q", c.ClockMode)
	}
	if c.MaxRangeKm < 0 {
		return invalid("max_range_km must be non-negative, got %f", c.MaxRangeKm)
	}
	if c.RangeTolerance < 0 || c.RangeTolerance >= 1 {
		return invalid("range_tolerance must be in [0, 1), got %f", c.RangeTolerance)
	}
	if !ValidLogFormats[c.Logging.Format] {
		return invalid("unknown logging format %q", c.Logging.Format)
	}
	if !ValidExporters[c.Tracing.Exporter] {
		return invalid("unknown tracing exporter %q", c.Tracing.Exporter)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return invalid("tracing sample_ratio must be in [0, 1], got %f", c.Tracing.SampleRatio)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidConfiguration}, args...)...)
}
