package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLinearCurve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to float64
		duration time.Duration
		step     time.Duration
		want     []float64
	}{
		{
			name:     "enter",
			from:     0,
			to:       1,
			duration: 40 * time.Millisecond,
			step:     10 * time.Millisecond,
			want:     []float64{0.25, 0.5, 0.75, 1},
		},
		{
			name:     "partial exit",
			from:     0.5,
			to:       0,
			duration: 20 * time.Millisecond,
			step:     10 * time.Millisecond,
			want:     []float64{0.25, 0},
		},
		{
			name:     "zero duration",
			from:     0.3,
			to:       0,
			duration: 0,
			step:     10 * time.Millisecond,
			want:     []float64{0},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			curve := Linear{}.Start(tt.from, tt.to, tt.duration)
			for i, want := range tt.want {
				value, done := curve.Step(tt.step)
				require.InDelta(t, want, value, 1e-9)
				require.Equal(t, i == len(tt.want)-1, done)
			}
		})
	}
}

func TestSpringCurveIsMonotonicAndLands(t *testing.T) {
	t.Parallel()

	curve := DefaultSpring().Start(0, 1, 500*time.Millisecond)
	prev := 0.0
	var (
		value float64
		done  bool
	)
	for i := 0; i < 100 && !done; i++ {
		value, done = curve.Step(time.Second / 60)
		require.GreaterOrEqual(t, value, prev-1e-9, "critically damped spring must not overshoot backwards")
		require.LessOrEqual(t, value, 1.0+1e-9)
		prev = value
	}
	require.True(t, done)
	require.Equal(t, 1.0, value)
}

func TestSpringCurveSnapsAtDuration(t *testing.T) {
	t.Parallel()

	curve := Spring{FPS: 60, Frequency: 1, Damping: 1}.Start(1, 0, 50*time.Millisecond)
	_, done := curve.Step(20 * time.Millisecond)
	require.False(t, done)
	_, done = curve.Step(20 * time.Millisecond)
	require.False(t, done)
	value, done := curve.Step(20 * time.Millisecond)
	require.True(t, done)
	require.Equal(t, 0.0, value)
}
