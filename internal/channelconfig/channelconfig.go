// Package channelconfig decodes a declarative list of channel definitions
// from a YAML file into []types.Config, for the cyre CLI's serve and
// validate commands. Config's Schema/Condition/Transform fields are Go
// interfaces wired up in code, not data — this package only ever targets
// the static subset of Config a YAML file can actually express.
package channelconfig

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"cyre.run/cyre/internal/types"
)

// Spec is the YAML-decodable shape of one channel definition.
type Spec struct {
	ID       string `mapstructure:"id"`
	Type     string `mapstructure:"type"`
	Path     string `mapstructure:"path"`
	Priority string `mapstructure:"priority"`

	ThrottleMs int `mapstructure:"throttle_ms"`
	DebounceMs int `mapstructure:"debounce_ms"`
	MaxWaitMs  int `mapstructure:"max_wait_ms"`

	DetectChanges bool `mapstructure:"detect_changes"`

	// DelayMs is a pointer so a YAML file can express "delay_ms: 0"
	// (execute now, schedule the interval remainder) distinctly from
	// omitting delay_ms entirely (wait one full interval before the first
	// execution) — see types.Config.DelayMs.
	DelayMs    *int `mapstructure:"delay_ms"`
	IntervalMs int  `mapstructure:"interval_ms"`
	Repeat     int `mapstructure:"repeat"`

	Log   bool `mapstructure:"log"`
	Block bool `mapstructure:"block"`
}

// ToConfig converts a Spec into a types.Config. Schema, Condition, and
// Transform are left nil — callers wanting those stages attach them in code
// after loading, keyed by ID.
func (s Spec) ToConfig() types.Config {
	return types.Config{
		ID:            s.ID,
		Type:          s.Type,
		Path:          s.Path,
		Priority:      types.Priority(s.Priority),
		ThrottleMs:    s.ThrottleMs,
		DebounceMs:    s.DebounceMs,
		MaxWaitMs:     s.MaxWaitMs,
		DetectChanges: s.DetectChanges,
		DelayMs:       s.DelayMs,
		IntervalMs:    s.IntervalMs,
		Repeat:        s.Repeat,
		Log:           s.Log,
		Block:         s.Block,
	}
}

// LoadFile reads path (YAML, auto-detected by extension) and decodes its
// top-level "channels" list. viper performs the file parse, mirroring
// internal/config.Load's use of viper for the engine's own tunables;
// mitchellh/mapstructure performs the typed decode of the parsed generic
// value into []Spec, since viper's automatic struct-unmarshal path can't be
// reused here without dragging Config's interface fields along with it.
func LoadFile(path string) ([]Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("channelconfig: read %q: %w", path, err)
	}

	raw := v.Get("channels")
	if raw == nil {
		return nil, fmt.Errorf("channelconfig: %q has no top-level \"channels\" list", path)
	}

	var specs []Spec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &specs,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("channelconfig: build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("channelconfig: decode %q: %w", path, err)
	}
	return specs, nil
}

// ToConfigs converts every Spec to a types.Config, in order.
func ToConfigs(specs []Spec) []types.Config {
	out := make([]types.Config, len(specs))
	for i, s := range specs {
		out[i] = s.ToConfig()
	}
	return out
}
