package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_StepRunsTasksBeforeFrame(t *testing.T) {
	clock := NewMockTimeProvider(time.Unix(1_700_000_000, 0))
	var order []string
	l := NewLoop(time.Millisecond, clock, func(now time.Time) {
		order = append(order, "frame")
	})

	require.True(t, l.Post(func() { order = append(order, "task1") }))
	require.True(t, l.Post(func() { order = append(order, "task2") }))
	l.Step()

	assert.Equal(t, []string{"task1", "task2", "frame"}, order)
	assert.EqualValues(t, 1, l.Frames())
}

func TestLoop_StartStop(t *testing.T) {
	var frames atomic.Int64
	l := NewLoop(time.Millisecond, nil, func(time.Time) { frames.Add(1) })

	l.Start()
	l.Start()
	require.Eventually(t, func() bool { return frames.Load() >= 3 }, time.Second, time.Millisecond)

	l.Stop()
	assert.False(t, l.Running())
	after := frames.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, frames.Load(), "no frames after Stop returns")

	assert.False(t, l.Post(func() {}), "post after stop")
	l.Stop()
}

func TestLoop_PostFullQueue(t *testing.T) {
	l := NewLoop(time.Millisecond, nil, nil)
	accepted := 0
	for i := 0; i < 1000; i++ {
		if l.Post(func() {}) {
			accepted++
		}
	}
	assert.Less(t, accepted, 1000)
	assert.Positive(t, accepted)
}

func TestGo_RunsFunction(t *testing.T) {
	done := make(chan struct{})
	Go(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}
}

func TestHandleCrash_NilIsNoop(t *testing.T) {
	called := false
	SetCrashHook(func() { called = true })
	defer SetCrashHook(nil)

	HandleCrash(nil)
	assert.False(t, called)
}
