// Package engine implements the Call Engine and wires together every other
// internal package — channel store, subscriber store, payload store,
// TimeKeeper, breathing state, and the metrics sensor — into one runtime
// instance that owns every store and orchestrates the hot path.
package engine

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"cyre.run/cyre/internal/breathing"
	"cyre.run/cyre/internal/channel"
	"cyre.run/cyre/internal/clock"
	"cyre.run/cyre/internal/config"
	"cyre.run/cyre/internal/metrics"
	"cyre.run/cyre/internal/payload"
	"cyre.run/cyre/internal/store"
	"cyre.run/cyre/internal/subscriber"
	"cyre.run/cyre/internal/timekeeper"
	"cyre.run/cyre/internal/types"
)

// Engine is one independent Cyre runtime instance. Multiple engines can be
// instantiated side by side; the façade is a thin delegate over one.
type Engine struct {
	cfg config.EngineConfig
	clk clock.Clock

	channels *channel.Store
	subs     *subscriber.Store
	payloads *payload.Store
	tk       *timekeeper.TimeKeeper
	breath   *breathing.State
	sensor   *metrics.Sensor
	flags    Flags

	breathFormationID string
	snapshotStore     store.Store
}

// New builds an Engine from cfg, using clk as its time source. reg may be
// nil to skip Prometheus registration (useful for tests and for running
// more than one Engine in the same process). The snapshot store defaults to
// store.NoopStore; set one with SetSnapshotStore to persist across restarts.
func New(cfg config.EngineConfig, clk clock.Clock, reg prometheus.Registerer) *Engine {
	payloads := payload.NewStore()
	e := &Engine{
		cfg:           cfg,
		clk:           clk,
		channels:      channel.NewStore(cfg.ChannelStoreShards, payloads),
		subs:          subscriber.NewStore(),
		payloads:      payloads,
		breath:        breathing.NewState(cfg.Stress),
		sensor:        metrics.NewSensor(cfg.MetricsRingCapacity, cfg.ChannelStoreShards, clk.NowMs(), reg),
		snapshotStore: store.NoopStore{},
	}
	e.tk = timekeeper.New(clk, func() float64 { return e.breath.Snapshot().Stress })
	return e
}

// SetSnapshotStore installs the collaborator Shutdown persists a final
// snapshot to, and Restore reads one back from.
func (e *Engine) SetSnapshotStore(s store.Store) { e.snapshotStore = s }

// Snapshot captures every registered channel's config, every payload slot,
// and the global metrics counters.
func (e *Engine) Snapshot() store.Snapshot {
	g := e.sensor.GlobalSnapshot(e.clk.NowMs())
	return store.Snapshot{
		TsMs:     e.clk.NowMs(),
		Channels: e.channels.AllConfigs(),
		Payloads: e.payloads.Snapshot(),
		Metrics: store.MetricsSnapshot{
			TotalCalls:     g.TotalCalls,
			TotalExecs:     g.TotalExecs,
			TotalErrors:    g.TotalErrors,
			TotalThrottled: g.TotalThrottled,
			TotalDebounced: g.TotalDebounced,
			TotalBlocked:   g.TotalBlocked,
			StartMs:        g.StartMs,
		},
	}
}

// Restore re-registers every channel config and restores every payload
// slot from a previously saved snapshot. Subscribers are not part of the
// snapshot — callers must re-subscribe handlers after Restore.
func (e *Engine) Restore(snap store.Snapshot) {
	if len(snap.Channels) > 0 {
		e.channels.BatchRegister(snap.Channels)
	}
	if len(snap.Payloads) > 0 {
		e.payloads.Restore(snap.Payloads)
	}
}

// Init idempotently brings the engine up: starts the TimeKeeper and the
// breath timer, and sets the initialized flag.
func (e *Engine) Init() types.Response {
	nowMs := e.clk.NowMs()
	if e.flags.IsOperational() {
		return types.Response{OK: true, Payload: nowMs, Message: "already initialized"}
	}
	e.flags.setShutdown(false)
	e.flags.setInitialized(true)
	e.tk.Start()
	e.scheduleBreathTick()
	slog.Info("engine initialized", "ts_ms", nowMs)
	return types.Response{OK: true, Payload: nowMs}
}

// Lock freezes registration without affecting in-flight calls.
func (e *Engine) Lock() types.Response {
	e.flags.setLocked(true)
	return types.Response{OK: true}
}

// Unlock reverses Lock.
func (e *Engine) Unlock() types.Response {
	e.flags.setLocked(false)
	return types.Response{OK: true}
}

// Shutdown saves a final snapshot (if a snapshot store was configured),
// cancels all timers, clears every store, and marks the engine shut down.
// This is absorbing but restores the uninitialized state so a later Init()
// can bring the engine back up.
func (e *Engine) Shutdown() types.Response {
	e.flags.setShutdown(true)
	if err := e.snapshotStore.Save(e.Snapshot()); err != nil {
		slog.Warn("snapshot save failed during shutdown", "error", err)
	}
	e.tk.CancelAll()
	e.channels.Clear()
	e.subs.Clear()
	e.payloads.Clear()
	e.flags.setInitialized(false)
	e.flags.setShutdown(false)
	slog.Info("engine shut down")
	return types.Response{OK: true}
}

// SaveSnapshot persists the current state to the configured snapshot store
// immediately, without waiting for Shutdown.
func (e *Engine) SaveSnapshot() error { return e.snapshotStore.Save(e.Snapshot()) }

// RestoreSnapshot loads the last saved snapshot from the configured
// snapshot store and restores channels and payloads from it. Returns
// store.ErrNoSnapshot if nothing was ever saved. Subscribers have no
// persisted form and must be re-registered separately.
func (e *Engine) RestoreSnapshot() error {
	snap, err := e.snapshotStore.Load()
	if err != nil {
		return err
	}
	e.Restore(snap)
	return nil
}

// Breathing returns a snapshot of the breathing/stress state.
func (e *Engine) Breathing() breathing.Snapshot { return e.breath.Snapshot() }

// Global returns the global metrics counters.
func (e *Engine) Global() metrics.Global { return e.sensor.GlobalSnapshot(e.clk.NowMs()) }

// Metrics exports ring buffer records matching q.
func (e *Engine) Metrics(q metrics.Query) []metrics.Record { return e.sensor.Export(q) }

// IDMetrics returns the per-id counters for id, if any calls were ever
// recorded for it.
func (e *Engine) IDMetrics(id string) (metrics.IDCounters, bool) { return e.sensor.IDSnapshot(id) }
