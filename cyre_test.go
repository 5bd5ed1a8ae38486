package cyre

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyre.run/cyre/internal/clock"
)

func newTestInstance() (*Cyre, *clock.Fake) {
	fake := clock.NewFake(1_000_000)
	c := New(WithClock(fake), WithPrometheusRegisterer(prometheus.NewRegistry()))
	c.Init()
	return c, fake
}

func TestFacadeFastPathRoundTrip(t *testing.T) {
	c, _ := newTestInstance()
	c.Action(Config{ID: "u"})
	c.On("u", func(payload any) (HandlerResult, error) {
		return Ok(map[string]any{"rx": payload}), nil
	})

	resp := c.Call("u", map[string]any{"h": "world"})
	require.True(t, resp.OK)
	got := resp.Payload.(map[string]any)["rx"].(map[string]any)
	assert.Equal(t, "world", got["h"])
}

func TestFacadeThrottleRejectsWithinWindow(t *testing.T) {
	c, fake := newTestInstance()
	c.Action(Config{ID: "t", ThrottleMs: 1000})
	c.On("t", func(payload any) (HandlerResult, error) { return Ok(1), nil })

	first := c.Call("t", nil)
	assert.True(t, first.OK)

	fake.Advance(100 * time.Millisecond)
	second := c.Call("t", nil)
	assert.False(t, second.OK)
	assert.Contains(t, second.Message, "Throttled")
	assert.EqualValues(t, 900, second.Metadata.Remaining)
}

func TestFacadeGetBreathingAndPerformanceState(t *testing.T) {
	c, _ := newTestInstance()
	c.Action(Config{ID: "x"})
	c.On("x", func(payload any) (HandlerResult, error) { return Ok(payload), nil })
	c.Call("x", 1)

	// Freshly initialized, zero-load: no recuperation yet. The full
	// stress-gates-low-priority-admits-critical scenario is exercised
	// against the engine directly in internal/engine's call tests, since
	// forcing a stress sample isn't part of the façade's surface.
	snap := c.GetBreathingState()
	assert.False(t, snap.IsRecuperating)

	perf := c.GetPerformanceState()
	assert.GreaterOrEqual(t, perf.TotalCalls, int64(1))
}

func TestFacadeIntraLinkChains(t *testing.T) {
	c, _ := newTestInstance()
	c.Action(Config{ID: "a"})
	c.Action(Config{ID: "b"})
	c.On("a", func(payload any) (HandlerResult, error) { return Chain("b", map[string]any{"from": "a"}), nil })
	c.On("b", func(payload any) (HandlerResult, error) {
		m := payload.(map[string]any)
		return Ok(map[string]any{"got": m["from"]}), nil
	})

	resp := c.Call("a", nil)
	require.True(t, resp.OK)
	require.NotNil(t, resp.Metadata.ChainResult)
	assert.True(t, resp.Metadata.ChainResult.OK)
	got := resp.Metadata.ChainResult.Payload.(map[string]any)
	assert.Equal(t, "a", got["got"])
}

func TestFacadeForgetAndClear(t *testing.T) {
	c, _ := newTestInstance()
	c.Action(Config{ID: "x"})
	c.On("x", func(payload any) (HandlerResult, error) { return Ok(payload), nil })

	_, found := c.Get("x")
	require.True(t, found)

	require.True(t, c.Forget("x"))
	_, found = c.Get("x")
	assert.False(t, found)

	c.Action(Config{ID: "y"})
	c.Clear()
	_, found = c.Get("y")
	assert.False(t, found)
}

func TestFacadeLockFreezesRegistrationNotCalls(t *testing.T) {
	c, _ := newTestInstance()
	c.Action(Config{ID: "x"})
	c.On("x", func(payload any) (HandlerResult, error) { return Ok(payload), nil })
	c.Lock()

	regResp := c.Action(Config{ID: "y"})
	assert.False(t, regResp.OK)

	callResp := c.Call("x", "p")
	assert.True(t, callResp.OK)

	c.Unlock()
	regResp = c.Action(Config{ID: "y"})
	assert.True(t, regResp.OK)
}

func TestFacadeSnapshotRoundTrip(t *testing.T) {
	c, _ := newTestInstance()
	c.Action(Config{ID: "x", ThrottleMs: 50})
	c.UpdatePayload("x", "baseline")

	dir := t.TempDir()
	store, err := NewFileSnapshotStore(dir + "/snap.json")
	require.NoError(t, err)

	c2 := New(WithClock(clock.NewFake(2_000_000)), WithSnapshotStore(store), WithPrometheusRegisterer(prometheus.NewRegistry()))
	c2.Init()

	c.eng.SetSnapshotStore(store)
	require.NoError(t, c.SaveSnapshot())
	require.NoError(t, c2.RestoreSnapshot())

	got, found := c2.Get("x")
	require.True(t, found)
	assert.Equal(t, 50, got.Config.ThrottleMs)

	prev, ok := c2.GetPrevious("x")
	require.True(t, ok)
	assert.Equal(t, "baseline", prev)
}

func TestFacadeBatchActionAndSubscribe(t *testing.T) {
	c, _ := newTestInstance()
	resp := c.ActionBatch([]Config{{ID: "a"}, {ID: ""}, {ID: "b"}})
	assert.True(t, resp.OK)

	subResp := c.OnBatch([]Subscription{
		{ID: "a", Handler: func(payload any) (HandlerResult, error) { return Ok(payload), nil }},
		{ID: "b", Handler: func(payload any) (HandlerResult, error) { return Ok(payload), nil }},
	})
	assert.True(t, subResp.OK)

	assert.True(t, c.Call("a", 1).OK)
	assert.True(t, c.Call("b", 2).OK)
}
