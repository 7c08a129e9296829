package host

import (
	"sync"
	"time"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

// DefaultFrameInterval is one frame at 60fps.
const DefaultFrameInterval = time.Second / 60

// Loop is a frame-driven host. Whoever owns the render loop calls Advance
// once per frame: scheduled callbacks run first, then every running tween
// steps by one frame interval. Nothing runs between Advance calls, so a
// Loop driven by hand is fully deterministic.
type Loop struct {
	mu       sync.Mutex
	interval time.Duration
	easing   Easing
	now      time.Time
	frame    uint64
	viewport geometry.Viewport
	frames   []*scheduled
	tweens   []*tween
}

type scheduled struct {
	fn        func()
	cancelled bool
}

type tween struct {
	curve      Curve
	onUpdate   func(float64)
	onComplete func()
	cancelled  bool
}

// LoopOptions configure a Loop.
type LoopOptions struct {
	Interval time.Duration
	Easing   Easing
	Viewport geometry.Viewport
	// Start is the clock's initial reading.
	Start time.Time
}

// NewLoop creates a Loop. A zero interval means 60fps; a nil easing is linear.
func NewLoop(opts LoopOptions) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultFrameInterval
	}
	if opts.Easing == nil {
		opts.Easing = Linear{}
	}
	return &Loop{
		interval: opts.Interval,
		easing:   opts.Easing,
		now:      opts.Start,
		viewport: opts.Viewport,
	}
}

// NewManual returns a linear Loop for tests and simulations.
func NewManual(interval time.Duration, viewport geometry.Viewport) *Loop {
	return NewLoop(LoopOptions{Interval: interval, Viewport: viewport, Start: time.Unix(0, 0).UTC()})
}

// ScheduleNextFrame implements ports.FrameScheduler.
func (l *Loop) ScheduleNextFrame(fn func()) ports.CancelToken {
	item := &scheduled{fn: fn}
	l.mu.Lock()
	l.frames = append(l.frames, item)
	l.mu.Unlock()

	return ports.CancelFunc(func() {
		l.mu.Lock()
		item.cancelled = true
		l.mu.Unlock()
	})
}

// RunTween implements ports.Tweener.
func (l *Loop) RunTween(from, to float64, duration time.Duration, onUpdate func(float64), onComplete func()) ports.CancelToken {
	item := &tween{
		curve:      l.easing.Start(from, to, duration),
		onUpdate:   onUpdate,
		onComplete: onComplete,
	}
	l.mu.Lock()
	l.tweens = append(l.tweens, item)
	l.mu.Unlock()

	return ports.CancelFunc(func() {
		l.mu.Lock()
		item.cancelled = true
		l.mu.Unlock()
	})
}

// Viewport implements ports.ViewportSource.
func (l *Loop) Viewport() geometry.Viewport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewport
}

// SetViewport updates the reported viewport.
func (l *Loop) SetViewport(vp geometry.Viewport) {
	l.mu.Lock()
	l.viewport = vp
	l.mu.Unlock()
}

// Now returns the loop clock. It only moves on Advance.
func (l *Loop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// Frame returns the number of frames advanced so far.
func (l *Loop) Frame() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Interval returns the frame interval.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Idle reports whether no frame callback or tween is outstanding.
func (l *Loop) Idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.compactLocked()
	return len(l.frames) == 0 && len(l.tweens) == 0
}

// PendingFrames returns the number of live scheduled callbacks.
func (l *Loop) PendingFrames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.compactLocked()
	return len(l.frames)
}

// ActiveTweens returns the number of live tweens.
func (l *Loop) ActiveTweens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.compactLocked()
	return len(l.tweens)
}

// Advance runs one frame. Work scheduled while the frame runs waits for the
// next one.
func (l *Loop) Advance() {
	l.mu.Lock()
	l.frame++
	l.now = l.now.Add(l.interval)
	frames := l.frames
	l.frames = nil
	tweens := append([]*tween(nil), l.tweens...)
	l.mu.Unlock()

	for _, item := range frames {
		l.mu.Lock()
		live := !item.cancelled
		item.cancelled = true
		l.mu.Unlock()
		if live && item.fn != nil {
			item.fn()
		}
	}

	for _, item := range tweens {
		l.stepTween(item)
	}

	l.mu.Lock()
	l.compactLocked()
	l.mu.Unlock()
}

// AdvanceFrames runs n frames.
func (l *Loop) AdvanceFrames(n int) {
	for i := 0; i < n; i++ {
		l.Advance()
	}
}

// RunUntilIdle advances until nothing is outstanding or max frames ran, and
// returns the number of frames advanced.
func (l *Loop) RunUntilIdle(max int) int {
	n := 0
	for n < max && !l.Idle() {
		l.Advance()
		n++
	}
	return n
}

func (l *Loop) stepTween(item *tween) {
	l.mu.Lock()
	if item.cancelled {
		l.mu.Unlock()
		return
	}
	value, done := item.curve.Step(l.interval)
	if done {
		item.cancelled = true
	}
	l.mu.Unlock()

	if item.onUpdate != nil {
		item.onUpdate(value)
	}
	if done && item.onComplete != nil {
		item.onComplete()
	}
}

func (l *Loop) compactLocked() {
	frames := l.frames[:0]
	for _, item := range l.frames {
		if !item.cancelled {
			frames = append(frames, item)
		}
	}
	l.frames = frames

	tweens := l.tweens[:0]
	for _, item := range l.tweens {
		if !item.cancelled {
			tweens = append(tweens, item)
		}
	}
	l.tweens = tweens
}
