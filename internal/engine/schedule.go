package engine

import (
	"cyre.run/cyre/internal/channel"
	"cyre.run/cyre/internal/timekeeper"
	"cyre.run/cyre/internal/types"
)

// scheduleTimerPath implements the timer-path edge cases for channels
// configured with delay, interval, or a repeat count above 1.
func (e *Engine) scheduleTimerPath(ch *channel.Channel, payload any) types.Response {
	cfg := ch.Config

	if cfg.Repeat == 0 {
		return types.Response{OK: true, Message: types.MsgNotExecuted, Metadata: &types.Metadata{ExecutionPath: types.PathTimer}}
	}

	switch {
	case cfg.HasDelay() && cfg.DelayValue() == 0 && cfg.IntervalMs > 0:
		// delay explicitly 0: execute now, then schedule the remaining
		// repeats at interval. Distinguished from "no delay at all" by
		// Config.HasDelay, since DelayValue() alone reads 0 either way.
		resp := e.executeImmediate(ch, payload, types.PathTimer, 0)
		if remaining := decrementRepeat(cfg.Repeat); remaining != 0 {
			e.tk.ScheduleInterval(cfg.ID, cfg.IntervalMs, remaining, payload, func(f *timekeeper.Formation) {
				e.executeImmediate(ch, f.Payload(), types.PathTimer, 0)
			})
		}
		return resp

	case cfg.DelayValue() > 0 && cfg.IntervalMs > 0:
		e.tk.ScheduleDelay(cfg.ID, cfg.DelayValue(), payload, func(f *timekeeper.Formation) {
			e.executeImmediate(ch, f.Payload(), types.PathTimer, 0)
			if remaining := decrementRepeat(cfg.Repeat); remaining != 0 {
				e.tk.ScheduleInterval(cfg.ID, cfg.IntervalMs, remaining, payload, func(f2 *timekeeper.Formation) {
					e.executeImmediate(ch, f2.Payload(), types.PathTimer, 0)
				})
			}
		})
		return types.Response{OK: true, Metadata: &types.Metadata{Delay: cfg.DelayValue(), ExecutionPath: types.PathTimer}}

	case cfg.DelayValue() > 0 && cfg.IntervalMs == 0:
		e.tk.ScheduleDelay(cfg.ID, cfg.DelayValue(), payload, func(f *timekeeper.Formation) {
			e.executeImmediate(ch, f.Payload(), types.PathTimer, 0)
		})
		return types.Response{OK: true, Metadata: &types.Metadata{Delay: cfg.DelayValue(), ExecutionPath: types.PathTimer}}

	case cfg.IntervalMs > 0:
		// No delay configured at all: the first execution waits one full
		// interval rather than firing immediately.
		e.tk.ScheduleInterval(cfg.ID, cfg.IntervalMs, cfg.Repeat, payload, func(f *timekeeper.Formation) {
			e.executeImmediate(ch, f.Payload(), types.PathTimer, 0)
		})
		return types.Response{OK: true, Metadata: &types.Metadata{ExecutionPath: types.PathTimer}}

	default:
		// Repeat > 1 with neither delay nor interval configured: nothing to
		// wait on, so dispatch immediately once.
		return e.executeImmediate(ch, payload, types.PathTimer, 0)
	}
}

// decrementRepeat returns the repeat count after one dispatch has already
// happened out-of-band (the immediate "delay=0" execution, or the delay
// formation's first fire). RepeatInfinite is left untouched.
func decrementRepeat(repeat int) int {
	if repeat == types.RepeatInfinite {
		return repeat
	}
	return repeat - 1
}
