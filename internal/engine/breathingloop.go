package engine

import (
	"log/slog"

	"cyre.run/cyre/internal/breathing"
	"cyre.run/cyre/internal/timekeeper"
)

// scheduleBreathTick arms the first breath formation: the TimeKeeper owns
// the breath timer as a self-rescheduling formation.
func (e *Engine) scheduleBreathTick() {
	f := e.tk.ScheduleBreath(e.cfg.BreathIntervalMs, e.onBreathTick)
	e.breathFormationID = f.ID
}

// onBreathTick samples system load, folds it into the breathing state,
// recomputes the system flags if recuperation changed, and reschedules
// itself at the freshly computed rate. A panic here is caught and
// suppressed so the scheduler loop never dies.
func (e *Engine) onBreathTick(_ *timekeeper.Formation) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("breathing tick panicked, suppressed", "recover", r)
		}
	}()

	samples := e.sampleLoad()
	pattern, recuperationChanged := e.breath.Tick(samples, e.cfg.Stress)
	snap := e.breath.Snapshot()
	e.sensor.SetBreathingGauges(snap.Stress, snap.IsRecuperating)

	if recuperationChanged {
		e.flags.setRecuperating(pattern == breathing.PatternRecovery)
	}

	f := e.tk.ScheduleBreath(snap.CurrentRateMs, e.onBreathTick)
	e.breathFormationID = f.ID
}

// sampleLoad gathers the breathing fusion inputs. CPU and
// memory sampling are intentionally conservative placeholders here — a
// production deployment wires these to runtime.NumGoroutine-style probes or
// an OS sampler; what the fusion function needs is just the four floats.
func (e *Engine) sampleLoad() breathing.Samples {
	return breathing.Samples{
		CPU:      0,
		Mem:      0,
		LoopMs:   0,
		CallRate: e.sensor.GlobalSnapshot(e.clk.NowMs()).CallRate,
	}
}
