package cyre

import "cyre.run/cyre/internal/engine"

// ChannelSnapshot is the read-only view returned by Get.
type ChannelSnapshot = engine.ChannelSnapshot

// Get returns a snapshot of the channel registered under id.
func (c *Cyre) Get(id string) (ChannelSnapshot, bool) { return c.eng.Get(id) }

// HasChanged reports whether payload differs from id's change-detection
// baseline.
func (c *Cyre) HasChanged(id string, payload any) bool { return c.eng.HasChanged(id, payload) }

// GetPrevious returns id's change-detection baseline, if any.
func (c *Cyre) GetPrevious(id string) (any, bool) { return c.eng.GetPrevious(id) }

// UpdatePayload overwrites id's change-detection baseline without issuing a
// call.
func (c *Cyre) UpdatePayload(id string, payload any) { c.eng.UpdatePayload(id, payload) }

// GetBreathingState returns a snapshot of the breathing/stress system.
func (c *Cyre) GetBreathingState() BreathingState { return c.eng.Breathing() }

// GetPerformanceState returns the global call/execution counters.
func (c *Cyre) GetPerformanceState() PerformanceState { return c.eng.Global() }

// GetMetrics exports ring buffer records matching q. Callers after only a
// single id's counters should use IDMetrics instead.
func (c *Cyre) GetMetrics(q MetricsQuery) []MetricsRecord { return c.eng.Metrics(q) }

// IDMetrics returns the per-id counters tracked for id, if any calls were
// ever recorded for it.
func (c *Cyre) IDMetrics(id string) (IDCounters, bool) { return c.eng.IDMetrics(id) }

// Package-level convenience wrappers over the default instance.

func Get(id string) (ChannelSnapshot, bool)       { return defaultInstance.Get(id) }
func HasChanged(id string, payload any) bool      { return defaultInstance.HasChanged(id, payload) }
func GetPrevious(id string) (any, bool)           { return defaultInstance.GetPrevious(id) }
func UpdatePayload(id string, payload any)        { defaultInstance.UpdatePayload(id, payload) }
func GetBreathingState() BreathingState           { return defaultInstance.GetBreathingState() }
func GetPerformanceState() PerformanceState       { return defaultInstance.GetPerformanceState() }
func GetMetrics(q MetricsQuery) []MetricsRecord   { return defaultInstance.GetMetrics(q) }
func IDMetrics(id string) (IDCounters, bool)      { return defaultInstance.IDMetrics(id) }
