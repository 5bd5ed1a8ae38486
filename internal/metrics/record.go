// Package metrics implements the Metrics & Sensor subsystem: a
// fixed-capacity ring buffer of event records, per-id and global counters
// sharded across a hash ring, and a Prometheus export surface covering
// Cyre's call/execution/error/throttled/debounced/blocked event kinds.
package metrics

// Kind is the event record's category.
type Kind string

const (
	KindCall      Kind = "call"
	KindExecution Kind = "execution"
	KindError     Kind = "error"
	KindThrottled Kind = "throttled"
	KindDebounced Kind = "debounced"
	KindBlocked   Kind = "blocked"
)

// Record is one ring buffer entry.
type Record struct {
	TsMs int64
	ID   string
	Kind Kind
	Meta map[string]any
}
