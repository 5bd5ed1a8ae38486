package engine

import (
	"fmt"
	"log/slog"

	"cyre.run/cyre/internal/channel"
	"cyre.run/cyre/internal/metrics"
	"cyre.run/cyre/internal/types"
)

// executeImmediate runs the compiled pipeline and, on success, dispatches
// to the subscriber. The channel's last-exec timestamp is updated here, at
// dispatch start, never at scheduling time.
func (e *Engine) executeImmediate(ch *channel.Channel, payload any, execPath string, chainDepth int) types.Response {
	now := e.clk.NowMs()
	ch.MarkDispatchStart(now)

	outcome := ch.Pipeline.Run(payload)
	if outcome.Halted {
		e.sensor.Record(now, ch.Config.ID, metrics.KindBlocked, nil)
		resp := outcome.Halt
		if resp.Metadata == nil {
			resp.Metadata = &types.Metadata{}
		}
		resp.Metadata.ExecutionPath = execPath
		return resp
	}

	return e.dispatch(ch, outcome.Payload, execPath, chainDepth)
}

// dispatch invokes the subscriber handler and folds its result into a
// Response, following an IntraLink chain when present.
func (e *Engine) dispatch(ch *channel.Channel, payload any, execPath string, chainDepth int) types.Response {
	id := ch.Config.ID
	now := e.clk.NowMs()

	result, err := e.invokeHandler(id, payload)
	e.sensor.ObserveDispatchLatency(float64(e.clk.NowMs()-now) / 1000)
	if err != nil {
		e.sensor.Record(now, id, metrics.KindError, map[string]any{"error": err.Error()})
		return types.Response{OK: false, Error: err.Error(), Metadata: &types.Metadata{ExecutionPath: types.PathError}}
	}

	e.sensor.Record(now, id, metrics.KindExecution, nil)
	if ch.Config.Log {
		slog.Info("channel dispatched", "channel_id", id, "exec_path", execPath)
	}

	switch r := result.(type) {
	case types.Result:
		e.payloads.SetRes(id, r.Value)
		if ch.Config.DetectChanges {
			e.payloads.SetPrev(id, payload)
		}
		return types.Response{OK: true, Payload: r.Value, Metadata: &types.Metadata{ExecutionPath: execPath}}

	case types.Link:
		e.payloads.SetRes(id, r.Payload)
		if ch.Config.DetectChanges {
			e.payloads.SetPrev(id, payload)
		}
		base := types.Response{OK: true, Payload: r.Payload, Metadata: &types.Metadata{ExecutionPath: execPath}}

		if chainDepth >= e.cfg.MaxChainDepth {
			slog.Warn("chain depth exceeded, terminating", "channel_id", id, "depth", chainDepth)
			return base
		}

		chainResp := e.call(r.ID, r.Payload, chainDepth+1)
		base.Metadata.ChainResult = &chainResp
		return base

	default:
		// A handler returning an unrecognized type (can't happen through
		// the sealed HandlerResult interface, but a nil result from a
		// misbehaving handler falls here). A missing subscriber yields
		// Ok(nil) from invokeHandler and takes the Result branch.
		e.payloads.SetRes(id, nil)
		return types.Response{OK: true, Metadata: &types.Metadata{ExecutionPath: execPath}}
	}
}

// invokeHandler looks up and runs the subscriber for id, recovering from a
// handler panic and surfacing it as an error rather than tearing down the
// pipeline.
func (e *Engine) invokeHandler(id string, payload any) (result types.HandlerResult, err error) {
	handler, ok := e.subs.Get(id)
	if !ok {
		return types.Ok(nil), nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler(payload)
}
