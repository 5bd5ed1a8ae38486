package cyre

import (
	"cyre.run/cyre/internal/breathing"
	"cyre.run/cyre/internal/metrics"
	"cyre.run/cyre/internal/subscriber"
	"cyre.run/cyre/internal/types"
)

// Response is the wire-stable result every façade operation returns.
// Aliased from internal/types so callers never import an internal package.
type Response = types.Response

// Metadata carries diagnostic fields a Response may attach.
type Metadata = types.Metadata

// Config is the declarative channel configuration recognized by action().
type Config = types.Config

// Priority is a channel's admission priority under recuperation.
type Priority = types.Priority

const (
	PriorityCritical   = types.PriorityCritical
	PriorityHigh       = types.PriorityHigh
	PriorityMedium     = types.PriorityMedium
	PriorityLow        = types.PriorityLow
	PriorityBackground = types.PriorityBackground
)

// Schema validates a payload, returning field-level issues on failure.
type Schema = types.Schema

// FieldIssue describes one schema validation failure.
type FieldIssue = types.FieldIssue

// Condition is a predicate gate evaluated before dispatch.
type Condition = types.Condition

// Transform maps a payload to a new payload before dispatch.
type Transform = types.Transform

// Handler is a channel subscriber.
type Handler = types.Handler

// HandlerResult is the sum type a Handler returns: either Ok(value) for a
// terminal result, or Chain(id, payload) to hand off to another channel.
type HandlerResult = types.HandlerResult

// Ok wraps a plain value as a terminal HandlerResult.
func Ok(value any) HandlerResult { return types.Ok(value) }

// Chain builds a HandlerResult that hands off to another channel as an
// IntraLink.
func Chain(id string, payload any) HandlerResult { return types.Chain(id, payload) }

// RepeatInfinite is the Config.Repeat sentinel for "repeat forever".
const RepeatInfinite = types.RepeatInfinite

// Delay returns a pointer to ms for Config.DelayMs, so "delay: 0" (execute
// now, then schedule the interval remainder) can be told apart from no
// delay configured at all (an interval-only channel waits one full
// interval before its first execution).
func Delay(ms int) *int { return types.IntPtr(ms) }

// BatchItemResult is one element of a batch action()/on() response payload.
type BatchItemResult = types.BatchItemResult

// Subscription pairs an id with a handler, for batch on() calls.
type Subscription = subscriber.Subscription

// BreathingState is a snapshot of the breathing/stress system.
type BreathingState = breathing.Snapshot

// PerformanceState is a snapshot of the global call/execution counters.
type PerformanceState = metrics.Global

// MetricsKind is an event record's category.
type MetricsKind = metrics.Kind

const (
	MetricsCall      = metrics.KindCall
	MetricsExecution = metrics.KindExecution
	MetricsError     = metrics.KindError
	MetricsThrottled = metrics.KindThrottled
	MetricsDebounced = metrics.KindDebounced
	MetricsBlocked   = metrics.KindBlocked
)

// MetricsQuery filters GetMetrics' returned records by id, kind, a minimum
// timestamp, and a result-count cap.
type MetricsQuery = metrics.Query

// MetricsRecord is one exported ring buffer entry.
type MetricsRecord = metrics.Record

// IDCounters are the per-channel-id tallies returned by IDMetrics.
type IDCounters = metrics.IDCounters
