package engine

import (
	"fmt"
	"log/slog"
	"reflect"

	"go.uber.org/multierr"

	"cyre.run/cyre/internal/subscriber"
	"cyre.run/cyre/internal/types"
)

func structEqual(a, b any) bool { return reflect.DeepEqual(a, b) }

// Action registers or replaces a single channel.
func (e *Engine) Action(cfg types.Config) types.Response {
	if !e.flags.CanAction() {
		return types.Response{OK: false, Error: types.ErrSystemLockedChannels, Message: "registration is locked"}
	}
	if err := e.channels.Register(cfg); err != nil {
		return types.Response{OK: false, Error: "CALL_INVALID_ID", Message: err.Error()}
	}
	return types.Response{OK: true, Payload: cfg.ID}
}

// ActionBatch registers or replaces many channels, continuing past
// per-item failures. Per-item errors are also folded into one multierr and
// logged as a single aggregate warning so one stuck registration doesn't
// hide the rest.
func (e *Engine) ActionBatch(cfgs []types.Config) types.Response {
	if !e.flags.CanAction() {
		return types.Response{OK: false, Error: types.ErrSystemLockedChannels, Message: "registration is locked"}
	}
	anySucceeded, results := e.channels.BatchRegister(cfgs)
	logBatchErrors("action", results)
	return types.Response{OK: anySucceeded, Payload: results}
}

func logBatchErrors(op string, results []types.BatchItemResult) {
	var errs error
	for _, r := range results {
		if !r.OK {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", r.ID, r.Error))
		}
	}
	if errs != nil {
		slog.Warn("batch operation had failures", "op", op, "errors", errs)
	}
}

// On subscribes handler to id, replacing any existing subscriber.
func (e *Engine) On(id string, handler types.Handler) types.Response {
	e.subs.Subscribe(id, handler)
	return types.Response{OK: true, Payload: id}
}

// OnBatch subscribes every (id, handler) pair concurrently.
func (e *Engine) OnBatch(subs []subscriber.Subscription) types.Response {
	results := e.subs.BatchSubscribe(subs)
	logBatchErrors("on", results)
	anySucceeded := false
	for _, r := range results {
		if r.OK {
			anySucceeded = true
			break
		}
	}
	return types.Response{OK: anySucceeded, Payload: results}
}

// Forget removes a channel's config, subscriber, and any live timers.
func (e *Engine) Forget(id string) bool {
	e.tk.CancelChannel(id)
	e.subs.Forget(id)
	e.payloads.Forget(id)
	return e.channels.Forget(id)
}

// Clear removes every channel, subscriber, payload slot, and timer, while
// retaining the init state.
func (e *Engine) Clear() types.Response {
	e.tk.CancelAll()
	e.channels.Clear()
	e.subs.Clear()
	e.payloads.Clear()
	return types.Response{OK: true}
}

// Pause freezes one channel's formations, or every formation if id is empty.
func (e *Engine) Pause(id string) types.Response {
	if id == "" {
		e.tk.PauseAll()
	} else {
		e.tk.PauseChannel(id)
	}
	return types.Response{OK: true}
}

// Resume reverses Pause.
func (e *Engine) Resume(id string) types.Response {
	if id == "" {
		e.tk.ResumeAll()
	} else {
		e.tk.ResumeChannel(id)
	}
	return types.Response{OK: true}
}

// ChannelSnapshot is the read-only view returned by Get.
type ChannelSnapshot struct {
	Config         types.Config
	LastExecTimeMs int64
	IsBlocked      bool
}

// Get returns a snapshot of the channel registered under id.
func (e *Engine) Get(id string) (ChannelSnapshot, bool) {
	ch, ok := e.channels.Get(id)
	if !ok {
		return ChannelSnapshot{}, false
	}
	return ChannelSnapshot{
		Config:         ch.Config,
		LastExecTimeMs: ch.LastExecTimeMs(),
		IsBlocked:      ch.IsBlocked(),
	}, true
}

// HasChanged reports whether payload differs from id's change-detection
// baseline.
func (e *Engine) HasChanged(id string, payload any) bool {
	prev, ok := e.payloads.Prev(id)
	if !ok {
		return true
	}
	return !structEqual(prev, payload)
}

// GetPrevious returns id's change-detection baseline, if any.
func (e *Engine) GetPrevious(id string) (any, bool) { return e.payloads.Prev(id) }

// UpdatePayload overwrites id's change-detection baseline without a call.
func (e *Engine) UpdatePayload(id string, payload any) { e.payloads.SetPrev(id, payload) }
