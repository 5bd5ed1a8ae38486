// Package cyre is the public façade for an in-process reactive event
// manager: channels, a protection pipeline, a TimeKeeper scheduler, and a
// breathing/stress system that sheds load under pressure. It is a thin
// delegate over internal/engine.Engine — multiple independent instances
// can be created with New, and a package-level default instance backs the
// convenience functions for callers that only ever need one.
package cyre

import (
	"github.com/prometheus/client_golang/prometheus"

	"cyre.run/cyre/internal/clock"
	"cyre.run/cyre/internal/config"
	"cyre.run/cyre/internal/engine"
	"cyre.run/cyre/internal/store"
)

// Cyre is one independent runtime instance.
type Cyre struct {
	eng *engine.Engine
}

// Option configures a Cyre instance at construction.
type Option func(*options)

type options struct {
	cfg           config.EngineConfig
	clk           clock.Clock
	registry      prometheus.Registerer
	snapshotStore store.Store
}

// WithConfig overrides the engine's tunables (stress weights/thresholds,
// ring capacity, shard count, chain depth limit); see internal/config.
func WithConfig(cfg config.EngineConfig) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConfigFile loads tunables from a YAML file via viper, falling back to
// defaults for anything unset.
func WithConfigFile(path string) Option {
	return func(o *options) {
		if cfg, err := config.Load(path); err == nil {
			o.cfg = cfg
		}
	}
}

// WithClock injects a time source; production callers never need this, but
// it lets tests drive the TimeKeeper deterministically with clock.NewFake.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clk = clk }
}

// WithPrometheusRegisterer routes this instance's metrics into reg instead
// of the default global registry — required when running more than one
// Cyre instance in the same process.
func WithPrometheusRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// New builds a Cyre instance. Call Init before issuing any calls.
func New(opts ...Option) *Cyre {
	o := &options{
		cfg:      config.Default(),
		clk:      clock.Default,
		registry: prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(o)
	}
	eng := engine.New(o.cfg, o.clk, o.registry)
	if o.snapshotStore != nil {
		eng.SetSnapshotStore(o.snapshotStore)
	}
	return &Cyre{eng: eng}
}

// defaultInstance registers no Prometheus collectors, so the global registry
// stays free for one instance built with New.
var defaultInstance = New(WithPrometheusRegisterer(nil))

// Init brings the default instance up. See (*Cyre).Init.
func Init() Response { return defaultInstance.Init() }

// Shutdown tears the default instance down. See (*Cyre).Shutdown.
func Shutdown() Response { return defaultInstance.Shutdown() }
