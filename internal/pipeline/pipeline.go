// Package pipeline implements the call pipeline compiler: it turns a
// channel's declarative protections (schema, condition, transform,
// change-detection) into a fixed-order list of stage closures.
package pipeline

import (
	"fmt"

	"cyre.run/cyre/internal/types"
)

// Outcome is what a Stage returns: either Next carries the (possibly
// transformed) payload forward, or Halt short-circuits the pipeline with a
// final Response.
type Outcome struct {
	Halted  bool
	Payload any
	Halt    types.Response
}

func next(payload any) Outcome { return Outcome{Payload: payload} }

func halt(resp types.Response) Outcome { return Outcome{Halted: true, Halt: resp} }

// Stage is one compiled pipeline step.
type Stage func(payload any) Outcome

// Pipeline is the compiled, ordered stage list for one channel.
type Pipeline struct {
	Stages     []Stage
	IsFastPath bool
}

// Run executes the compiled pipeline against payload, returning the final
// payload on success or the halt Response on rejection.
func (p *Pipeline) Run(payload any) Outcome {
	cur := payload
	for _, stage := range p.Stages {
		o := stage(cur)
		if o.Halted {
			return o
		}
		cur = o.Payload
	}
	return next(cur)
}

// Compile builds the ordered stage list for a channel config. Stage order is
// fixed: schema → condition → transform → change-detect. When none of the
// four protections are configured, IsFastPath is set and Stages is empty —
// the call engine skips straight to dispatch.
func Compile(cfg types.Config, prev func() (any, bool)) *Pipeline {
	var stages []Stage

	if cfg.Schema != nil {
		schema := cfg.Schema
		stages = append(stages, func(payload any) Outcome {
			if issues := schema.Validate(payload); len(issues) > 0 {
				return halt(types.Response{
					OK:      false,
					Message: "schema validation failed",
					Payload: issues,
				})
			}
			return next(payload)
		})
	}

	if cfg.Condition != nil {
		cond := cfg.Condition
		stages = append(stages, func(payload any) Outcome {
			if !cond(payload) {
				return halt(types.Response{OK: false, Message: types.MsgConditionNotMet})
			}
			return next(payload)
		})
	}

	if cfg.Transform != nil {
		transform := cfg.Transform
		stages = append(stages, func(payload any) Outcome {
			out, err := transform(payload)
			if err != nil {
				return halt(types.Response{OK: false, Error: fmt.Sprintf("transform failed: %v", err)})
			}
			return next(out)
		})
	}

	if cfg.DetectChanges {
		stages = append(stages, func(payload any) Outcome {
			prevPayload, ok := prev()
			if ok && structuralEqual(prevPayload, payload) {
				return halt(types.Response{OK: false, Message: types.MsgNoChangesDetected})
			}
			return next(payload)
		})
	}

	return &Pipeline{Stages: stages, IsFastPath: len(stages) == 0}
}
