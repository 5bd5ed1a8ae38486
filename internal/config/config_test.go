package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsInternallyConsistent(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1000*time.Millisecond, cfg.BreathInterval())
	assert.Greater(t, cfg.Stress.Medium, cfg.Stress.Low)
	assert.Greater(t, cfg.Stress.High, cfg.Stress.Medium)
	assert.Greater(t, cfg.MetricsRingCapacity, 0)
	assert.Greater(t, cfg.ChannelStoreShards, 0)
}

func TestNormalizeRescalesWeightsToSumOne(t *testing.T) {
	s := StressConfig{WeightCPU: 2, WeightMem: 2, WeightLoop: 2, WeightRate: 2}.Normalize()
	sum := s.WeightCPU + s.WeightMem + s.WeightLoop + s.WeightRate
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.25, s.WeightCPU, 1e-9)
}

func TestNormalizeLeavesZeroWeightsUntouched(t *testing.T) {
	s := StressConfig{}.Normalize()
	assert.Equal(t, StressConfig{}, s)
}

func TestLoadWithEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	contents := `
breath_interval_ms: 2000
max_chain_depth: 3
stress:
  weight_cpu: 1
  weight_mem: 1
  weight_loop: 1
  weight_rate: 1
  low: 0.4
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.BreathIntervalMs)
	assert.Equal(t, 3, cfg.MaxChainDepth)
	assert.InDelta(t, 0.4, cfg.Stress.Low, 1e-9)
	assert.InDelta(t, 0.25, cfg.Stress.WeightCPU, 1e-9, "overlaid weights get normalized")

	// Fields the file didn't mention keep their default values.
	assert.Equal(t, Default().MetricsRingCapacity, cfg.MetricsRingCapacity)
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
