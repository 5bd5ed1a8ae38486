package timekeeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyre.run/cyre/internal/clock"
)

// awaitFire blocks until ch receives a fired *Formation or the real-time
// timeout elapses. The fake clock governs when formations become due; this
// timeout only guards against a genuine test bug leaving the goroutine
// hanging.
func awaitFire(t *testing.T, ch <-chan *Formation) *Formation {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for formation to fire")
		return nil
	}
}

func assertNoFire(t *testing.T, ch <-chan *Formation) {
	t.Helper()
	select {
	case f := <-ch:
		t.Fatalf("expected no fire, got one for channel %q", f.ChannelID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduleDelayFiresOnceAfterDelay(t *testing.T) {
	fake := clock.NewFake(1000)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 1)
	tk.ScheduleDelay("ch1", 100, "payload", func(f *Formation) { fired <- f })

	assertNoFire(t, fired)
	fake.Advance(100 * time.Millisecond)

	f := awaitFire(t, fired)
	assert.Equal(t, "ch1", f.ChannelID)
	assert.Equal(t, "payload", f.Payload())

	assert.Eventually(t, func() bool { return tk.Count() == 0 }, time.Second, time.Millisecond)
}

func TestScheduleDebounceReArmCancelsPreviousFormation(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 4)
	f1 := tk.ScheduleDebounce("ch1", 100, "first", func(f *Formation) { fired <- f })
	assert.Equal(t, 1, tk.Count())

	// A second call within the quiet window re-arms: cancel the old formation,
	// schedule a fresh one with the latest payload.
	fake.Advance(50 * time.Millisecond)
	tk.Cancel(f1.ID)
	tk.ScheduleDebounce("ch1", 100, "second", func(f *Formation) { fired <- f })
	assert.Equal(t, 1, tk.Count(), "re-arm replaces, not accumulates")

	fake.Advance(99 * time.Millisecond)
	assertNoFire(t, fired)

	fake.Advance(1 * time.Millisecond)
	f := awaitFire(t, fired)
	assert.Equal(t, "second", f.Payload())
}

func TestScheduleIntervalRepeatsThenStops(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 10)
	tk.ScheduleInterval("ch1", 10, 3, nil, func(f *Formation) { fired <- f })

	for i := 0; i < 3; i++ {
		fake.Advance(10 * time.Millisecond)
		awaitFire(t, fired)
	}

	assert.Eventually(t, func() bool { return tk.Count() == 0 }, time.Second, time.Millisecond)

	fake.Advance(10 * time.Millisecond)
	assertNoFire(t, fired)
}

func TestScheduleIntervalInfiniteRepeatNeverStops(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 10)
	tk.ScheduleInterval("ch1", 10, RepeatInfinite, nil, func(f *Formation) { fired <- f })

	for i := 0; i < 5; i++ {
		fake.Advance(10 * time.Millisecond)
		awaitFire(t, fired)
	}
	assert.Equal(t, 1, tk.Count())
}

func TestScheduleIntervalStretchesWithStress(t *testing.T) {
	fake := clock.NewFake(0)
	stress := 1.0 // doubles the effective interval
	tk := New(fake, func() float64 { return stress })
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 10)
	tk.ScheduleInterval("ch1", 100, RepeatInfinite, nil, func(f *Formation) { fired <- f })

	fake.Advance(100 * time.Millisecond)
	awaitFire(t, fired)

	// Next tick is rescheduled at 100 * (1 + stress) = 200ms out.
	fake.Advance(100 * time.Millisecond)
	assertNoFire(t, fired)
	fake.Advance(100 * time.Millisecond)
	awaitFire(t, fired)
}

func TestScheduleBreathIsOneShotUntilCallerReschedules(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 1)
	tk.ScheduleBreath(10, func(f *Formation) { fired <- f })

	fake.Advance(10 * time.Millisecond)
	awaitFire(t, fired)
	assert.Eventually(t, func() bool { return tk.Count() == 0 }, time.Second, time.Millisecond)
}

func TestCancelByFormationIDPreventsFire(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 1)
	f := tk.ScheduleDelay("ch1", 50, nil, func(f *Formation) { fired <- f })
	tk.Cancel(f.ID)
	assert.Equal(t, 0, tk.Count())

	fake.Advance(50 * time.Millisecond)
	assertNoFire(t, fired)
}

func TestCancelChannelRemovesEveryFormationForThatChannel(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 4)
	tk.ScheduleDelay("ch1", 50, nil, func(f *Formation) { fired <- f })
	tk.ScheduleInterval("ch1", 10, RepeatInfinite, nil, func(f *Formation) { fired <- f })
	tk.ScheduleDelay("ch2", 50, nil, func(f *Formation) { fired <- f })
	require.Equal(t, 3, tk.Count())

	tk.CancelChannel("ch1")
	assert.Equal(t, 1, tk.Count())

	fake.Advance(50 * time.Millisecond)
	f := awaitFire(t, fired)
	assert.Equal(t, "ch2", f.ChannelID)
	assertNoFire(t, fired)
}

func TestPauseAndResumeByFormationIDRebasesDueAt(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 1)
	f := tk.ScheduleDelay("ch1", 100, nil, func(f *Formation) { fired <- f })

	fake.Advance(60 * time.Millisecond)
	tk.Pause(f.ID)

	// Time moves on while paused; none of it should count toward the
	// remaining 40ms once resumed.
	fake.Advance(500 * time.Millisecond)
	assertNoFire(t, fired)

	tk.Resume(f.ID)
	fake.Advance(39 * time.Millisecond)
	assertNoFire(t, fired)
	fake.Advance(1 * time.Millisecond)
	awaitFire(t, fired)
}

func TestPauseChannelAndResumeChannel(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 2)
	tk.ScheduleDelay("ch1", 100, nil, func(f *Formation) { fired <- f })
	tk.ScheduleDelay("ch2", 100, nil, func(f *Formation) { fired <- f })

	tk.PauseChannel("ch1")
	fake.Advance(100 * time.Millisecond)

	f := awaitFire(t, fired)
	assert.Equal(t, "ch2", f.ChannelID, "ch1's formation stayed paused")
	assertNoFire(t, fired)

	tk.ResumeChannel("ch1")
	fake.Advance(100 * time.Millisecond)
	f = awaitFire(t, fired)
	assert.Equal(t, "ch1", f.ChannelID)
}

func TestPauseAllAndResumeAll(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 2)
	tk.ScheduleDelay("ch1", 50, nil, func(f *Formation) { fired <- f })
	tk.ScheduleDelay("ch2", 50, nil, func(f *Formation) { fired <- f })

	tk.PauseAll()
	fake.Advance(time.Second)
	assertNoFire(t, fired)

	tk.ResumeAll()
	fake.Advance(50 * time.Millisecond)
	awaitFire(t, fired)
	awaitFire(t, fired)
}

func TestCancelAllRemovesEveryLiveFormationPausedOrNot(t *testing.T) {
	fake := clock.NewFake(0)
	tk := New(fake, nil)
	tk.Start()
	defer tk.Stop()

	fired := make(chan *Formation, 2)
	tk.ScheduleDelay("ch1", 50, nil, func(f *Formation) { fired <- f })
	f2 := tk.ScheduleDelay("ch2", 50, nil, func(f *Formation) { fired <- f })
	tk.Pause(f2.ID)
	require.Equal(t, 2, tk.Count())

	tk.CancelAll()
	assert.Equal(t, 0, tk.Count())

	fake.Advance(time.Second)
	assertNoFire(t, fired)
}
