package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
)

func TestLoopRunsScheduledFramesOnNextAdvance(t *testing.T) {
	t.Parallel()

	loop := NewManual(10*time.Millisecond, geometry.Viewport{Width: 80, Height: 24})
	calls := 0
	loop.ScheduleNextFrame(func() { calls++ })

	require.Equal(t, 0, calls)
	require.Equal(t, 1, loop.PendingFrames())

	loop.Advance()
	require.Equal(t, 1, calls)
	require.True(t, loop.Idle())

	loop.Advance()
	require.Equal(t, 1, calls)
	require.Equal(t, uint64(2), loop.Frame())
}

func TestLoopDefersFramesScheduledDuringAFrame(t *testing.T) {
	t.Parallel()

	loop := NewManual(10*time.Millisecond, geometry.Viewport{})
	var order []uint64
	loop.ScheduleNextFrame(func() {
		order = append(order, loop.Frame())
		loop.ScheduleNextFrame(func() {
			order = append(order, loop.Frame())
		})
	})

	loop.Advance()
	require.Equal(t, []uint64{1}, order)
	loop.Advance()
	require.Equal(t, []uint64{1, 2}, order)
}

func TestLoopCancelledFrameNeverRuns(t *testing.T) {
	t.Parallel()

	loop := NewManual(10*time.Millisecond, geometry.Viewport{})
	ran := false
	token := loop.ScheduleNextFrame(func() { ran = true })
	token.Cancel()
	token.Cancel()

	require.True(t, loop.Idle())
	loop.Advance()
	require.False(t, ran)
}

func TestLoopCancelAfterRunIsNoop(t *testing.T) {
	t.Parallel()

	loop := NewManual(10*time.Millisecond, geometry.Viewport{})
	calls := 0
	token := loop.ScheduleNextFrame(func() { calls++ })
	loop.Advance()
	token.Cancel()
	loop.Advance()
	require.Equal(t, 1, calls)
}

func TestLoopTweenLinearProgression(t *testing.T) {
	t.Parallel()

	loop := NewManual(25*time.Millisecond, geometry.Viewport{})
	var values []float64
	completed := 0
	loop.RunTween(0, 1, 100*time.Millisecond, func(v float64) {
		values = append(values, v)
	}, func() { completed++ })

	require.Empty(t, values, "tweens never update synchronously")
	require.Equal(t, 1, loop.ActiveTweens())

	frames := loop.RunUntilIdle(100)
	require.Equal(t, 4, frames)
	require.Len(t, values, 4)
	require.InDelta(t, 0.25, values[0], 1e-9)
	require.InDelta(t, 0.5, values[1], 1e-9)
	require.InDelta(t, 0.75, values[2], 1e-9)
	require.Equal(t, 1.0, values[3])
	require.Equal(t, 1, completed)
}

func TestLoopZeroDurationTweenCompletesOnNextFrame(t *testing.T) {
	t.Parallel()

	loop := NewManual(10*time.Millisecond, geometry.Viewport{})
	var last float64 = -1
	done := false
	loop.RunTween(0.4, 0, 0, func(v float64) { last = v }, func() { done = true })

	require.False(t, done)
	loop.Advance()
	require.True(t, done)
	require.Equal(t, 0.0, last)
}

func TestLoopCancelledTweenSkipsCompletion(t *testing.T) {
	t.Parallel()

	loop := NewManual(10*time.Millisecond, geometry.Viewport{})
	updates := 0
	done := false
	token := loop.RunTween(0, 1, 50*time.Millisecond, func(float64) { updates++ }, func() { done = true })

	loop.Advance()
	token.Cancel()
	loop.AdvanceFrames(10)

	require.Equal(t, 1, updates)
	require.False(t, done)
	require.True(t, loop.Idle())
}

func TestLoopTweenStartedDuringFrameWaitsForNextFrame(t *testing.T) {
	t.Parallel()

	loop := NewManual(10*time.Millisecond, geometry.Viewport{})
	updates := 0
	loop.ScheduleNextFrame(func() {
		loop.RunTween(0, 1, 20*time.Millisecond, func(float64) { updates++ }, nil)
	})

	loop.Advance()
	require.Equal(t, 0, updates)
	loop.Advance()
	require.Equal(t, 1, updates)
}

func TestLoopClockAndViewport(t *testing.T) {
	t.Parallel()

	loop := NewManual(16*time.Millisecond, geometry.Viewport{Width: 80, Height: 24})
	start := loop.Now()
	loop.AdvanceFrames(3)
	require.Equal(t, 48*time.Millisecond, loop.Now().Sub(start))

	require.Equal(t, geometry.Viewport{Width: 80, Height: 24}, loop.Viewport())
	loop.SetViewport(geometry.Viewport{Width: 120, Height: 40})
	require.Equal(t, geometry.Viewport{Width: 120, Height: 40}, loop.Viewport())
}

func TestNewLoopDefaults(t *testing.T) {
	t.Parallel()

	loop := NewLoop(LoopOptions{})
	require.Equal(t, DefaultFrameInterval, loop.Interval())
	require.True(t, loop.Idle())
	require.Equal(t, 0, loop.RunUntilIdle(10))
}
