package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-communities/pkg/copra"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, copra.DefaultRepeat, cfg.Algorithm.Repeat)
	assert.Equal(t, copra.DefaultTolerance, cfg.Algorithm.Tolerance)
	assert.Equal(t, copra.DefaultMaxMembership, cfg.Algorithm.MaxMembership)
	assert.Equal(t, StrategyDeltaScreening, cfg.Algorithm.Strategy)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
algorithm:
  repeat: 4
  tolerance: 0.01
  max_membership: 3
  max_iterations: 50
  threshold: 0.2
  strategy: frontier
stream:
  enabled: true
  pull_addr: "tcp://127.0.0.1:5561"
  pub_addr: "tcp://127.0.0.1:5562"
metrics:
  enabled: true
  addr: ":9191"
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Algorithm.Repeat)
	assert.Equal(t, 0.01, cfg.Algorithm.Tolerance)
	assert.Equal(t, 3, cfg.Algorithm.MaxMembership)
	assert.Equal(t, 50, cfg.Algorithm.MaxIterations)
	assert.Equal(t, StrategyFrontier, cfg.Algorithm.Strategy)
	assert.True(t, cfg.Stream.Enabled)
	assert.Equal(t, "tcp://127.0.0.1:5561", cfg.Stream.PullAddr)
	assert.Equal(t, ":9191", cfg.Metrics.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero repeat", func(c *Config) { c.Algorithm.Repeat = 0 }},
		{"tolerance above one", func(c *Config) { c.Algorithm.Tolerance = 1.5 }},
		{"membership above capacity", func(c *Config) { c.Algorithm.MaxMembership = 9 }},
		{"unknown strategy", func(c *Config) { c.Algorithm.Strategy = "eager" }},
		{"negative workers", func(c *Config) { c.Algorithm.Workers = -1 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestOptions_MapsAlgorithmSection(t *testing.T) {
	cfg := Default()
	cfg.Algorithm.Repeat = 2
	cfg.Algorithm.Threshold = 0.3
	cfg.Algorithm.Strict = true

	opts := cfg.Options()

	assert.Equal(t, 2, opts.Repeat)
	assert.Equal(t, 0.3, opts.Threshold)
	assert.True(t, opts.Strict)
	assert.Equal(t, cfg.Algorithm.MaxIterations, opts.MaxIterations)
}
