package cyre

// Init idempotently starts the runtime: it starts the TimeKeeper and the
// breath timer and marks the instance initialized.
func (c *Cyre) Init() Response { return c.eng.Init() }

// Lock rejects further action() registrations without affecting calls;
// on() subscriptions are still accepted.
func (c *Cyre) Lock() Response { return c.eng.Lock() }

// Unlock reverses Lock.
func (c *Cyre) Unlock() Response { return c.eng.Unlock() }

// Shutdown saves a snapshot to the configured snapshot store, if any,
// cancels every timer, clears every store, and leaves the instance
// uninitialized.
func (c *Cyre) Shutdown() Response { return c.eng.Shutdown() }

// Clear removes every channel, subscriber, payload slot, and timer while
// retaining the init state.
func (c *Cyre) Clear() Response { return c.eng.Clear() }

// Pause freezes one channel's formations, or every formation if id is
// empty.
func (c *Cyre) Pause(id string) Response { return c.eng.Pause(id) }

// Resume reverses Pause.
func (c *Cyre) Resume(id string) Response { return c.eng.Resume(id) }

// Forget removes a channel's config, subscriber, and any live timers,
// reporting whether it was registered.
func (c *Cyre) Forget(id string) bool { return c.eng.Forget(id) }

// Package-level convenience wrappers over the default instance.

func Lock() Response                     { return defaultInstance.Lock() }
func Unlock() Response                    { return defaultInstance.Unlock() }
func Clear() Response                     { return defaultInstance.Clear() }
func Pause(id string) Response            { return defaultInstance.Pause(id) }
func Resume(id string) Response           { return defaultInstance.Resume(id) }
func Forget(id string) bool               { return defaultInstance.Forget(id) }
