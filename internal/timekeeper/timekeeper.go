package timekeeper

import (
	"sync"
	"time"

	"cyre.run/cyre/internal/clock"
)

// TimeKeeper is the single cooperative scheduler driving every timer in the
// engine. One goroutine pops the minimum-due formation, sleeps until it's
// due, fires it, and (for interval/repeat formations) reschedules it.
type TimeKeeper struct {
	clk clock.Clock

	mu        sync.Mutex
	heap      dueHeap
	byID      map[string]*Formation
	byChannel map[string]map[string]*Formation
	wake      chan struct{}
	stop      chan struct{}
	started   bool

	// stressFn returns the current stress scalar (0..1), used to stretch
	// interval formations: effective = configured * (1 + stress). Defaults
	// to always-zero if unset.
	stressFn func() float64
}

// New creates a TimeKeeper bound to clk. stressFn may be nil, in which case
// interval formations never stretch.
func New(clk clock.Clock, stressFn func() float64) *TimeKeeper {
	if stressFn == nil {
		stressFn = func() float64 { return 0 }
	}
	return &TimeKeeper{
		clk:       clk,
		byID:      make(map[string]*Formation),
		byChannel: make(map[string]map[string]*Formation),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		stressFn:  stressFn,
	}
}

func (tk *TimeKeeper) nudge() {
	select {
	case tk.wake <- struct{}{}:
	default:
	}
}

// Start launches the scheduler loop. Safe to call once.
func (tk *TimeKeeper) Start() {
	tk.mu.Lock()
	if tk.started {
		tk.mu.Unlock()
		return
	}
	tk.started = true
	tk.mu.Unlock()
	go tk.run()
}

// Stop halts the scheduler loop. Pending formations are left untouched.
func (tk *TimeKeeper) Stop() {
	close(tk.stop)
}

func (tk *TimeKeeper) run() {
	for {
		tk.mu.Lock()
		next := tk.heap.peek()
		if next == nil {
			tk.mu.Unlock()
			select {
			case <-tk.wake:
				continue
			case <-tk.stop:
				return
			}
		}

		now := tk.clk.NowMs()
		if next.dueAtMs <= now {
			f := tk.heap.popMin()
			tk.mu.Unlock()
			tk.fire(f)
			continue
		}

		d := time.Duration(next.dueAtMs-now) * time.Millisecond
		timer := tk.clk.NewTimer(d)
		tk.mu.Unlock()

		select {
		case <-timer.C():
		case <-tk.wake:
			timer.Stop()
		case <-tk.stop:
			timer.Stop()
			return
		}
	}
}

// fire runs f's callback and, for recurring kinds, reschedules it. Firing
// never blocks the scheduler loop on a slow handler — there is no ordering
// guarantee across unrelated ids.
func (tk *TimeKeeper) fire(f *Formation) {
	switch f.Kind {
	case KindInterval:
		tk.mu.Lock()
		if f.repeat != RepeatInfinite {
			f.repeat--
		}
		done := f.repeat == 0
		if !done {
			effective := stretchedIntervalMs(f.intervalMs, tk.stressFn())
			f.dueAtMs = tk.clk.NowMs() + int64(effective)
			tk.heap.push(f)
		} else {
			tk.deindex(f)
		}
		tk.mu.Unlock()
	default: // KindDelay, KindDebounce, KindBreath: one-shot from the
		// TimeKeeper's point of view; callers reschedule explicitly
		// (engine's debounce re-arm, breathing driver's self-reschedule).
		tk.mu.Lock()
		tk.deindex(f)
		tk.mu.Unlock()
	}

	go f.callback(f)
}

// index records f under both the flat formation-id map and its channel's
// formation set; deindex reverses it. Both must be called with tk.mu held.
func (tk *TimeKeeper) index(f *Formation) {
	tk.byID[f.ID] = f
	if f.ChannelID == "" {
		return
	}
	m := tk.byChannel[f.ChannelID]
	if m == nil {
		m = make(map[string]*Formation)
		tk.byChannel[f.ChannelID] = m
	}
	m[f.ID] = f
}

func (tk *TimeKeeper) deindex(f *Formation) {
	delete(tk.byID, f.ID)
	if f.ChannelID == "" {
		return
	}
	if m, ok := tk.byChannel[f.ChannelID]; ok {
		delete(m, f.ID)
		if len(m) == 0 {
			delete(tk.byChannel, f.ChannelID)
		}
	}
}

func stretchedIntervalMs(configuredMs int, stress float64) int {
	effective := float64(configuredMs) * (1 + stress)
	return int(effective)
}

func (tk *TimeKeeper) schedule(f *Formation) *Formation {
	tk.mu.Lock()
	tk.index(f)
	tk.heap.push(f)
	tk.mu.Unlock()
	tk.nudge()
	return f
}

// ScheduleDelay fires cb once after delayMs, then removes itself.
func (tk *TimeKeeper) ScheduleDelay(channelID string, delayMs int, payload any, cb Callback) *Formation {
	due := tk.clk.NowMs() + int64(delayMs)
	return tk.schedule(newFormation(channelID, KindDelay, due, 0, 1, payload, cb))
}

// ScheduleDebounce fires cb once after quietMs of silence, carrying
// payload — the caller (call engine) re-arms this by canceling and
// re-scheduling on every call within the window.
func (tk *TimeKeeper) ScheduleDebounce(channelID string, quietMs int, payload any, cb Callback) *Formation {
	due := tk.clk.NowMs() + int64(quietMs)
	return tk.schedule(newFormation(channelID, KindDebounce, due, 0, 1, payload, cb))
}

// ScheduleInterval fires cb every intervalMs (stress-stretched at each
// rescheduling), counting repeat down to zero, or forever if repeat is
// RepeatInfinite.
func (tk *TimeKeeper) ScheduleInterval(channelID string, intervalMs, repeat int, payload any, cb Callback) *Formation {
	due := tk.clk.NowMs() + int64(intervalMs)
	return tk.schedule(newFormation(channelID, KindInterval, due, intervalMs, repeat, payload, cb))
}

// ScheduleBreath fires cb once after intervalMs; the breathing driver
// reschedules it at the freshly computed rate after each tick, making it a
// self-rescheduling formation.
func (tk *TimeKeeper) ScheduleBreath(intervalMs int, cb Callback) *Formation {
	due := tk.clk.NowMs() + int64(intervalMs)
	return tk.schedule(newFormation("", KindBreath, due, 0, 1, nil, cb))
}

// Cancel removes the single formation identified by its own formation id
// (a uuid, not a channel id) — used internally for the debounce re-arm
// cycle, where the caller already holds the specific formation's id.
func (tk *TimeKeeper) Cancel(id string) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	f, ok := tk.byID[id]
	if !ok {
		return
	}
	tk.heap.remove(f)
	tk.deindex(f)
}

// CancelChannel removes every formation scheduled for channelID; none of
// their callbacks will fire.
func (tk *TimeKeeper) CancelChannel(channelID string) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	m, ok := tk.byChannel[channelID]
	if !ok {
		return
	}
	for _, f := range m {
		tk.heap.remove(f)
		delete(tk.byID, f.ID)
	}
	delete(tk.byChannel, channelID)
}

// Pause freezes the formation's countdown, recording the time remaining
// until it was due.
func (tk *TimeKeeper) Pause(id string) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	f, ok := tk.byID[id]
	if !ok || f.paused {
		return
	}
	tk.pauseLocked(f)
}

// Resume rebases a paused formation's dueAt to now + its recorded
// remaining time.
func (tk *TimeKeeper) Resume(id string) {
	tk.mu.Lock()
	f, ok := tk.byID[id]
	if !ok || !f.paused {
		tk.mu.Unlock()
		return
	}
	tk.resumeLocked(f)
	tk.mu.Unlock()
	tk.nudge()
}

// PauseChannel freezes every live formation scheduled for channelID.
func (tk *TimeKeeper) PauseChannel(channelID string) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	for _, f := range tk.byChannel[channelID] {
		if !f.paused {
			tk.pauseLocked(f)
		}
	}
}

// ResumeChannel resumes every paused formation scheduled for channelID.
func (tk *TimeKeeper) ResumeChannel(channelID string) {
	tk.mu.Lock()
	resumed := false
	for _, f := range tk.byChannel[channelID] {
		if f.paused {
			tk.resumeLocked(f)
			resumed = true
		}
	}
	tk.mu.Unlock()
	if resumed {
		tk.nudge()
	}
}

func (tk *TimeKeeper) pauseLocked(f *Formation) {
	f.remainingMs = f.dueAtMs - tk.clk.NowMs()
	if f.remainingMs < 0 {
		f.remainingMs = 0
	}
	f.paused = true
	tk.heap.remove(f)
}

func (tk *TimeKeeper) resumeLocked(f *Formation) {
	f.paused = false
	f.dueAtMs = tk.clk.NowMs() + f.remainingMs
	tk.heap.push(f)
}

// PauseAll pauses every live formation.
func (tk *TimeKeeper) PauseAll() {
	tk.mu.Lock()
	for _, f := range tk.byID {
		if !f.paused {
			tk.pauseLocked(f)
		}
	}
	tk.mu.Unlock()
}

// ResumeAll resumes every paused formation.
func (tk *TimeKeeper) ResumeAll() {
	tk.mu.Lock()
	for _, f := range tk.byID {
		if f.paused {
			tk.resumeLocked(f)
		}
	}
	tk.mu.Unlock()
	tk.nudge()
}

// Count returns the number of live (scheduled or paused) formations.
func (tk *TimeKeeper) Count() int {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return len(tk.byID)
}

// CancelAll removes every live formation, paused or scheduled; none of
// their callbacks will fire.
func (tk *TimeKeeper) CancelAll() {
	tk.mu.Lock()
	tk.heap = tk.heap[:0]
	tk.byID = make(map[string]*Formation)
	tk.byChannel = make(map[string]map[string]*Formation)
	tk.mu.Unlock()
}
