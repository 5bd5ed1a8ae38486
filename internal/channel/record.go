// Package channel implements the Channel Store: the mapping from channel id
// to its declarative config, compiled pipeline, and runtime scratch, sharded
// across a hash ring so independent ids never contend.
package channel

import (
	"sync"

	"cyre.run/cyre/internal/pipeline"
	"cyre.run/cyre/internal/types"
)

// Channel is the runtime record for one registered channel.
type Channel struct {
	mu sync.Mutex // guards the runtime scratch fields below

	Config   types.Config
	Pipeline *pipeline.Pipeline

	lastExecTimeMs  int64
	debounceTimerID string
	debounceStart   int64
	isBlocked       bool
}

// LastExecTimeMs returns the timestamp throttle compares against. Updated
// at dispatch start, never at scheduling time.
func (c *Channel) LastExecTimeMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastExecTimeMs
}

// MarkDispatchStart records now as the throttle clock's reference point.
func (c *Channel) MarkDispatchStart(nowMs int64) {
	c.mu.Lock()
	c.lastExecTimeMs = nowMs
	c.mu.Unlock()
}

// DebounceState returns the active debounce timer id (empty if idle) and
// the ms timestamp of the first call in the current arming window.
func (c *Channel) DebounceState() (timerID string, armedAtMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debounceTimerID, c.debounceStart
}

// ArmDebounce records a new debounce timer id, optionally starting the
// max-wait window if one isn't already running.
func (c *Channel) ArmDebounce(timerID string, nowMs int64, isFirstInWindow bool) {
	c.mu.Lock()
	c.debounceTimerID = timerID
	if isFirstInWindow {
		c.debounceStart = nowMs
	}
	c.mu.Unlock()
}

// DisarmDebounce clears the debounce state after a fire or a forget.
func (c *Channel) DisarmDebounce() {
	c.mu.Lock()
	c.debounceTimerID = ""
	c.debounceStart = 0
	c.mu.Unlock()
}

// IsBlocked reports the block flag.
func (c *Channel) IsBlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isBlocked
}

// SetBlocked updates the block flag.
func (c *Channel) SetBlocked(blocked bool) {
	c.mu.Lock()
	c.isBlocked = blocked
	c.mu.Unlock()
}
