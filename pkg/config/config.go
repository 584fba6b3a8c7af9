// Package config loads and validates the service configuration from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-communities/pkg/copra"
)

// Affected-vertex strategies for incremental runs
const (
	StrategyDeltaScreening = "delta-screening"
	StrategyFrontier       = "frontier"
)

var validate = validator.New()

// AlgorithmConfig configures the propagation runs
type AlgorithmConfig struct {
	Repeat        int     `yaml:"repeat" validate:"min=1,max=100"`
	Tolerance     float64 `yaml:"tolerance" validate:"gte=0,lte=1"`
	MaxMembership int     `yaml:"max_membership" validate:"min=1,max=8"`
	MaxIterations int     `yaml:"max_iterations" validate:"min=1"`
	Threshold     float64 `yaml:"threshold" validate:"gte=0,lte=1"`
	Strict        bool    `yaml:"strict"`
	SelfLoops     bool    `yaml:"self_loops"`
	Workers       int     `yaml:"workers" validate:"gte=0"`
	Strategy      string  `yaml:"strategy" validate:"oneof=delta-screening frontier"`
}

// StreamConfig configures the edge-batch ingest service
type StreamConfig struct {
	Enabled  bool   `yaml:"enabled"`
	PullAddr string `yaml:"pull_addr" validate:"required_if=Enabled true"`
	PubAddr  string `yaml:"pub_addr"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"required_if=Enabled true"`
}

// SnapshotConfig configures membership snapshot persistence
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

// Config is the root configuration
type Config struct {
	Algorithm AlgorithmConfig `yaml:"algorithm"`
	Stream    StreamConfig    `yaml:"stream"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Default returns the configuration with conventional algorithm defaults
func Default() *Config {
	return &Config{
		Algorithm: AlgorithmConfig{
			Repeat:        copra.DefaultRepeat,
			Tolerance:     copra.DefaultTolerance,
			MaxMembership: copra.DefaultMaxMembership,
			MaxIterations: copra.DefaultMaxIterations,
			Threshold:     0,
			Strategy:      StrategyDeltaScreening,
		},
		Stream: StreamConfig{
			PullAddr: "tcp://0.0.0.0:5560",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML configuration file over the defaults and validates it
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config: %s failed %s validation", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Options converts the algorithm section into engine options
func (c *Config) Options() copra.Options {
	return copra.Options{
		Repeat:        c.Algorithm.Repeat,
		Tolerance:     c.Algorithm.Tolerance,
		MaxMembership: c.Algorithm.MaxMembership,
		MaxIterations: c.Algorithm.MaxIterations,
		Threshold:     c.Algorithm.Threshold,
		Strict:        c.Algorithm.Strict,
		Self:          c.Algorithm.SelfLoops,
	}
}
