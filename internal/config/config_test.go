package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteenopt/internal/sim"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "models/bundle.json", cfg.Bundle)
	assert.Equal(t, "data/historical_sales.csv", cfg.Data.Sales)
	assert.Equal(t, 150, cfg.Training.Episodes)
	assert.Equal(t, sim.DefaultActionLevels, cfg.Training.ActionLevels)
	assert.Equal(t, sim.DefaultEconomics(), cfg.Training.Economics)
	assert.InDelta(t, 0.1, cfg.Training.Agent.LearningRate, 1e-9)
	assert.Equal(t, "gpt-4-turbo-preview", cfg.Advisor.Model)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9999
training:
  episodes: 10
  agent:
    learning_rate: 0.5
    discount_factor: 0.99
    epsilon: 1.0
    epsilon_decay: 0.995
    min_epsilon: 0.01
    decay_mode: multiplicative
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Training.Episodes)
	assert.InDelta(t, 0.5, cfg.Training.Agent.LearningRate, 1e-9)

	// Untouched fields keep their defaults
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "data/historical_sales.csv", cfg.Data.Sales)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
