// Package config loads the engine's tunables using viper: a typed struct
// decoded via mapstructure, with defaults applied so a config file is never
// required.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// StressConfig holds the breathing/stress fusion weights and thresholds.
// Weights need not be pre-normalized; Normalize rescales them to sum to 1.
type StressConfig struct {
	WeightCPU  float64 `mapstructure:"weight_cpu"`
	WeightMem  float64 `mapstructure:"weight_mem"`
	WeightLoop float64 `mapstructure:"weight_loop"`
	WeightRate float64 `mapstructure:"weight_rate"`

	LoopMaxMs float64 `mapstructure:"loop_max_ms"`
	RateMax   float64 `mapstructure:"rate_max"`

	Low    float64 `mapstructure:"low"`
	Medium float64 `mapstructure:"medium"`
	High   float64 `mapstructure:"high"`

	BaseRateMs int     `mapstructure:"base_rate_ms"`
	MinRateMs  int     `mapstructure:"min_rate_ms"`
	MaxRateMs  int     `mapstructure:"max_rate_ms"`
	RateSpan   float64 `mapstructure:"rate_span"`

	// RecuperationGrowthPerTick controls how fast recuperation depth rises
	// while in RECOVERY. Depth is clamped to [0,1].
	RecuperationGrowthPerTick float64 `mapstructure:"recuperation_growth_per_tick"`

	// RecuperationDecayPerTick controls how fast depth falls once stress
	// drops back below Low.
	RecuperationDecayPerTick float64 `mapstructure:"recuperation_decay_per_tick"`
}

// Normalize rescales the four weights to sum to 1, leaving the config
// usable even if an operator supplies un-normalized values.
func (s StressConfig) Normalize() StressConfig {
	total := s.WeightCPU + s.WeightMem + s.WeightLoop + s.WeightRate
	if total <= 0 {
		return s
	}
	s.WeightCPU /= total
	s.WeightMem /= total
	s.WeightLoop /= total
	s.WeightRate /= total
	return s
}

// EngineConfig holds every configurable knob the core reads at startup.
type EngineConfig struct {
	Stress StressConfig `mapstructure:"stress"`

	// BreathIntervalMs is the initial (unstressed) period of the breathing
	// tick, before stress-based stretching.
	BreathIntervalMs int `mapstructure:"breath_interval_ms"`

	// MetricsRingCapacity bounds the event-log ring buffer.
	MetricsRingCapacity int `mapstructure:"metrics_ring_capacity"`

	// ChannelStoreShards is the number of hash-ring stripes the channel
	// store and metrics sensor shard their maps across.
	ChannelStoreShards int `mapstructure:"channel_store_shards"`

	// MaxChainDepth bounds IntraLink recursion.
	MaxChainDepth int `mapstructure:"max_chain_depth"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig configures the ambient slog logger.
type LogConfig struct {
	Level   string         `mapstructure:"level"`   // debug|info|warn|error
	Format  string         `mapstructure:"format"`  // json|text
	Outputs []OutputConfig `mapstructure:"outputs"`
}

// OutputConfig is one fan-out destination for log records.
type OutputConfig struct {
	Type       string `mapstructure:"type"` // console|file
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns the built-in defaults for every tunable.
func Default() EngineConfig {
	return EngineConfig{
		Stress: StressConfig{
			WeightCPU:  0.3,
			WeightMem:  0.3,
			WeightLoop: 0.25,
			WeightRate: 0.15,
			LoopMaxMs:  200,
			RateMax:    1000,
			Low:        0.5,
			Medium:     0.75,
			High:       0.9,
			BaseRateMs: 1000,
			MinRateMs:  50,
			MaxRateMs:  10000,
			RateSpan:   4.0,

			// Depth grows faster than it decays: a system should shed load
			// quickly once stressed but ease back into full admission
			// gradually, so a brief stress spike doesn't look fully
			// recovered the instant stress dips.
			RecuperationGrowthPerTick: 0.25,
			RecuperationDecayPerTick:  0.05,
		},
		BreathIntervalMs:    1000,
		MetricsRingCapacity: 10000,
		ChannelStoreShards:  16,
		MaxChainDepth:       10,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Outputs: []OutputConfig{
				{Type: "console"},
			},
		},
	}
}

// Load reads an optional YAML file at path and overlays it onto Default().
// An empty path returns the defaults unchanged — a config file is never
// required.
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %q: %w", path, err)
	}
	cfg.Stress = cfg.Stress.Normalize()
	return cfg, nil
}

// BreathInterval returns the configured breathing period as a duration.
func (c EngineConfig) BreathInterval() time.Duration {
	return time.Duration(c.BreathIntervalMs) * time.Millisecond
}
