package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyre.run/cyre/internal/types"
)

func noPrev() (any, bool) { return nil, false }

func TestCompileFastPathWhenNothingConfigured(t *testing.T) {
	p := Compile(types.Config{ID: "x"}, noPrev)
	assert.True(t, p.IsFastPath)
	assert.Empty(t, p.Stages)

	out := p.Run("payload")
	assert.False(t, out.Halted)
	assert.Equal(t, "payload", out.Payload)
}

type upperSchema struct{}

func (upperSchema) Validate(payload any) []types.FieldIssue {
	s, ok := payload.(string)
	if !ok || s == "" {
		return []types.FieldIssue{{Field: "payload", Message: "must be a non-empty string"}}
	}
	return nil
}

func TestCompileSchemaStageHalts(t *testing.T) {
	p := Compile(types.Config{ID: "x", Schema: upperSchema{}}, noPrev)
	require.False(t, p.IsFastPath)

	out := p.Run("")
	assert.True(t, out.Halted)
	assert.False(t, out.Halt.OK)

	out = p.Run("hello")
	assert.False(t, out.Halted)
	assert.Equal(t, "hello", out.Payload)
}

func TestCompileConditionStageHalts(t *testing.T) {
	cond := func(payload any) bool {
		n, ok := payload.(int)
		return ok && n > 0
	}
	p := Compile(types.Config{ID: "x", Condition: cond}, noPrev)

	out := p.Run(-1)
	assert.True(t, out.Halted)
	assert.Equal(t, types.MsgConditionNotMet, out.Halt.Message)

	out = p.Run(1)
	assert.False(t, out.Halted)
}

func TestCompileTransformStageMapsPayloadOrHalts(t *testing.T) {
	double := func(payload any) (any, error) {
		n, ok := payload.(int)
		if !ok {
			return nil, errors.New("not an int")
		}
		return n * 2, nil
	}
	p := Compile(types.Config{ID: "x", Transform: double}, noPrev)

	out := p.Run(21)
	assert.False(t, out.Halted)
	assert.Equal(t, 42, out.Payload)

	out = p.Run("nope")
	assert.True(t, out.Halted)
	assert.NotEmpty(t, out.Halt.Error)
}

func TestCompileChangeDetectHaltsOnStructuralEquality(t *testing.T) {
	prev := map[string]any{"a": 1}
	p := Compile(types.Config{ID: "x", DetectChanges: true}, func() (any, bool) { return prev, true })

	out := p.Run(map[string]any{"a": 1})
	assert.True(t, out.Halted)
	assert.Equal(t, types.MsgNoChangesDetected, out.Halt.Message)

	out = p.Run(map[string]any{"a": 2})
	assert.False(t, out.Halted)
}

func TestCompileChangeDetectAdmitsFirstCallWithNoBaseline(t *testing.T) {
	p := Compile(types.Config{ID: "x", DetectChanges: true}, noPrev)
	out := p.Run(map[string]any{"a": 1})
	assert.False(t, out.Halted)
}

func TestCompileRunsStagesInFixedOrder(t *testing.T) {
	var order []string
	cfg := types.Config{
		ID: "x",
		Schema: schemaFunc(func(payload any) []types.FieldIssue {
			order = append(order, "schema")
			return nil
		}),
		Condition: func(payload any) bool {
			order = append(order, "condition")
			return true
		},
		Transform: func(payload any) (any, error) {
			order = append(order, "transform")
			return payload, nil
		},
		DetectChanges: true,
	}
	p := Compile(cfg, noPrev)
	p.Run("x")

	// The change-detect stage runs without appending to `order` (it isn't a
	// closure under test here), so only the first three are observable, but
	// their relative order is exactly what matters.
	assert.Equal(t, []string{"schema", "condition", "transform"}, order)
}

type schemaFunc func(payload any) []types.FieldIssue

func (f schemaFunc) Validate(payload any) []types.FieldIssue { return f(payload) }
