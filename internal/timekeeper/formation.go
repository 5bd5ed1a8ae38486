// Package timekeeper implements the TimeKeeper: a single cooperative
// scheduler, driven by one goroutine over a min-heap of due-ordered jobs,
// that handles every debounce wake, interval tick, delayed dispatch, and the
// breath timer itself. Formations know how to reschedule themselves: repeat
// countdown, interval stretch, and pause/resume rebasing.
package timekeeper

import uuid "github.com/satori/go.uuid"

// Kind distinguishes what a formation does when it fires.
type Kind int

const (
	// KindDelay fires once, then is removed.
	KindDelay Kind = iota
	// KindInterval fires repeatedly at (stress-adjusted) IntervalMs, counting
	// Repeat down to zero, or forever if Repeat is RepeatInfinite.
	KindInterval
	// KindDebounce fires once when the quiet period elapses, carrying the
	// latest payload seen during the arming window.
	KindDebounce
	// KindBreath is the self-rescheduling breathing tick.
	KindBreath
)

// RepeatInfinite mirrors types.RepeatInfinite; duplicated here so this
// package doesn't need to import internal/types for one constant.
const RepeatInfinite = -1

// Callback is invoked when a formation fires. For KindInterval and
// KindBreath it is invoked once per tick, not just once per formation.
type Callback func(f *Formation)

// Formation is one scheduled unit of work.
type Formation struct {
	ID        string
	ChannelID string
	Kind      Kind

	dueAtMs      int64
	intervalMs   int // base, unstressed interval; 0 for KindDelay/KindDebounce
	repeat       int // RepeatInfinite never decrements
	payload      any
	callback     Callback

	paused      bool
	remainingMs int64 // valid only while paused

	heapIndex int // maintained by container/heap
}

// newFormation allocates a Formation with a fresh UUID id.
func newFormation(channelID string, kind Kind, dueAtMs int64, intervalMs, repeat int, payload any, cb Callback) *Formation {
	return &Formation{
		ID:         uuid.NewV4().String(),
		ChannelID:  channelID,
		Kind:       kind,
		dueAtMs:    dueAtMs,
		intervalMs: intervalMs,
		repeat:     repeat,
		payload:    payload,
		callback:   cb,
		heapIndex:  -1,
	}
}

// DueAtMs is the formation's next fire time.
func (f *Formation) DueAtMs() int64 { return f.dueAtMs }

// Payload is the stored payload the formation fires with.
func (f *Formation) Payload() any { return f.payload }

// SetPayload updates the stored payload.
func (f *Formation) SetPayload(payload any) { f.payload = payload }
