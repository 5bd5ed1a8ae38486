package engine

import "sync/atomic"

// Flags holds the pre-computed system flags: simple
// booleans read without locks on the call engine's hot path, recomputed
// whenever one of their inputs changes (init, lock, unlock, shutdown, or a
// breathing-tick recuperation transition).
type Flags struct {
	initialized  atomic.Bool
	locked       atomic.Bool
	shutdown     atomic.Bool
	recuperating atomic.Bool
}

// CanCall reports whether call() may proceed past the system flag gate: the
// engine must be initialized and not shut down. Lock only blocks
// registration, not calls, so CanCall ignores the locked flag.
func (f *Flags) CanCall() bool {
	return f.initialized.Load() && !f.shutdown.Load()
}

// CanAction reports whether action/on may register.
func (f *Flags) CanAction() bool {
	return f.initialized.Load() && !f.shutdown.Load() && !f.locked.Load()
}

// IsOperational reports whether the engine is usable at all.
func (f *Flags) IsOperational() bool {
	return f.initialized.Load() && !f.shutdown.Load()
}

func (f *Flags) IsRecuperating() bool { return f.recuperating.Load() }

func (f *Flags) setInitialized(v bool) { f.initialized.Store(v) }
func (f *Flags) setLocked(v bool)      { f.locked.Store(v) }
func (f *Flags) setShutdown(v bool)    { f.shutdown.Store(v) }
func (f *Flags) setRecuperating(v bool) { f.recuperating.Store(v) }

// Reason returns the gate-failure message for the current flag state.
func (f *Flags) Reason() string {
	switch {
	case f.shutdown.Load():
		return "system is shut down"
	case !f.initialized.Load():
		return "system not initialized"
	default:
		return ""
	}
}
