package cyre

// Action registers or replaces a single channel.
func (c *Cyre) Action(cfg Config) Response { return c.eng.Action(cfg) }

// ActionBatch registers or replaces many channels in one call, continuing
// past per-item failures.
func (c *Cyre) ActionBatch(cfgs []Config) Response { return c.eng.ActionBatch(cfgs) }

// On subscribes handler to id, replacing any existing subscriber.
func (c *Cyre) On(id string, handler Handler) Response { return c.eng.On(id, handler) }

// OnBatch subscribes every (id, handler) pair, continuing past per-item
// failures.
func (c *Cyre) OnBatch(subs []Subscription) Response { return c.eng.OnBatch(subs) }

// Call runs the full call() pipeline for id: system flag gate, block flag,
// recuperation gate, throttle, debounce, timer-path fork, and dispatch.
func (c *Cyre) Call(id string, payload any) Response { return c.eng.Call(id, payload) }

// Package-level convenience wrappers over the default instance.

func Action(cfg Config) Response             { return defaultInstance.Action(cfg) }
func ActionBatch(cfgs []Config) Response     { return defaultInstance.ActionBatch(cfgs) }
func On(id string, handler Handler) Response { return defaultInstance.On(id, handler) }
func OnBatch(subs []Subscription) Response   { return defaultInstance.OnBatch(subs) }
func Call(id string, payload any) Response   { return defaultInstance.Call(id, payload) }
