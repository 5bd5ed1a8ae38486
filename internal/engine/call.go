package engine

import (
	"log/slog"

	"cyre.run/cyre/internal/breathing"
	"cyre.run/cyre/internal/channel"
	"cyre.run/cyre/internal/metrics"
	"cyre.run/cyre/internal/timekeeper"
	"cyre.run/cyre/internal/types"
)

// Call runs the full call pipeline: system flag gate,
// channel lookup, block flag, recuperation gate, throttle, debounce,
// timer-path fork, and finally the immediate dispatch path.
func (e *Engine) Call(id string, payload any) types.Response {
	return e.call(id, payload, 0)
}

func (e *Engine) call(id string, payload any, chainDepth int) types.Response {
	now := e.clk.NowMs()
	e.sensor.Record(now, id, metrics.KindCall, nil)

	// 1. System flag gate.
	if !e.flags.CanCall() {
		return types.Response{OK: false, Message: e.flags.Reason()}
	}

	// 2. Channel lookup.
	ch, ok := e.channels.Get(id)
	if !ok {
		return types.Response{OK: false, Error: types.ErrCallInvalidID, Message: types.MsgChannelNotFound}
	}

	if ch.Config.Log {
		slog.Info("channel called", "channel_id", id, "chain_depth", chainDepth)
	}

	// 3. Block flag.
	if ch.IsBlocked() {
		e.sensor.Record(now, id, metrics.KindBlocked, nil)
		return types.Response{OK: false, Message: "channel is blocked"}
	}

	// 4. Recuperation gate: critical priority always passes this gate;
	// every other priority is shed progressively as recuperation depth
	// rises.
	if e.flags.IsRecuperating() && ch.Config.Priority != types.PriorityCritical {
		depth := e.breath.RecuperationDepth()
		if !breathing.AdmitPriority(depth, ch.Config.Priority.Rank()) {
			e.sensor.Record(now, id, metrics.KindBlocked, nil)
			return types.Response{OK: false, Message: types.MsgRecuperating}
		}
	}

	// 5. Throttle.
	if ch.Config.ThrottleMs > 0 {
		if last := ch.LastExecTimeMs(); last > 0 {
			elapsed := now - last
			if elapsed < int64(ch.Config.ThrottleMs) {
				remaining := int64(ch.Config.ThrottleMs) - elapsed
				e.sensor.Record(now, id, metrics.KindThrottled, nil)
				return types.Response{
					OK:      false,
					Message: types.MsgThrottled,
					Metadata: &types.Metadata{
						Throttled:     true,
						Remaining:     remaining,
						ExecutionPath: types.PathFast,
					},
				}
			}
		}
	}

	// 6. Debounce.
	if ch.Config.DebounceMs > 0 {
		return e.handleDebounce(ch, payload, now)
	}

	// 7. Timer-path fork.
	if ch.Config.DelayValue() > 0 || ch.Config.IntervalMs > 0 || ch.Config.Repeat > 1 {
		return e.scheduleTimerPath(ch, payload)
	}

	// 8. Immediate path.
	execPath := types.PathPipeline
	if ch.Pipeline.IsFastPath {
		execPath = types.PathFast
	}
	return e.executeImmediate(ch, payload, execPath, chainDepth)
}

func (e *Engine) handleDebounce(ch *channel.Channel, payload any, now int64) types.Response {
	id := ch.Config.ID
	e.payloads.SetReq(id, payload)

	timerID, armedAt := ch.DebounceState()
	if timerID == "" {
		f := e.tk.ScheduleDebounce(id, ch.Config.DebounceMs, payload, func(f *timekeeper.Formation) {
			e.fireDebounce(ch)
		})
		ch.ArmDebounce(f.ID, now, true)
		e.sensor.Record(now, id, metrics.KindDebounced, nil)
		return types.Response{OK: true, Message: types.MsgDebounced, Metadata: &types.Metadata{Debounced: true, ExecutionPath: types.PathDebounceDelayed}}
	}

	e.tk.Cancel(timerID)

	if ch.Config.MaxWaitMs > 0 && now-armedAt >= int64(ch.Config.MaxWaitMs) {
		ch.DisarmDebounce()
		latest, _ := e.payloads.Req(id)
		return e.executeImmediate(ch, latest, types.PathDebounceDelayed, 0)
	}

	f := e.tk.ScheduleDebounce(id, ch.Config.DebounceMs, payload, func(f *timekeeper.Formation) {
		e.fireDebounce(ch)
	})
	ch.ArmDebounce(f.ID, now, false)
	e.sensor.Record(now, id, metrics.KindDebounced, nil)
	return types.Response{OK: true, Message: types.MsgDebounced, Metadata: &types.Metadata{Debounced: true, ExecutionPath: types.PathDebounceDelayed}}
}

// fireDebounce is the TimeKeeper callback for a debounce wake: it reads the
// current stored payload (not the one the timer was scheduled with) and
// dispatches.
func (e *Engine) fireDebounce(ch *channel.Channel) {
	id := ch.Config.ID
	latest, _ := e.payloads.Req(id)
	ch.DisarmDebounce()
	e.executeImmediate(ch, latest, types.PathDebounceDelayed, 0)
}
