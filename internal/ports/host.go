package ports

import (
	"time"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	"github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
)

// Handle identifies an element mounted by the renderer. The engine only
// borrows handles to pass them back to the Measurer; it never mutates the
// element behind them.
type Handle interface {
	Name() string
}

// MeasureCallback receives the result of a single Measure call. A zero rect
// means the element is not laid out yet.
type MeasureCallback func(geometry.Rect, error)

// Measurer obtains the on-screen bounding rect of a mounted element. The
// callback may run synchronously inside Measure or later on any goroutine,
// and must be invoked exactly once per call.
type Measurer interface {
	Measure(h Handle, done MeasureCallback)
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(h Handle, done MeasureCallback)

// Measure implements Measurer.
func (f MeasurerFunc) Measure(h Handle, done MeasureCallback) {
	f(h, done)
}

// CancelToken cancels a scheduled frame or a running tween. Cancelling after
// the work has already run is a no-op.
type CancelToken interface {
	Cancel()
}

// CancelFunc adapts a function to CancelToken.
type CancelFunc func()

// Cancel implements CancelToken.
func (f CancelFunc) Cancel() {
	if f != nil {
		f()
	}
}

// FrameScheduler runs fn on the host's next render/paint tick. fn never runs
// inside ScheduleNextFrame itself.
type FrameScheduler interface {
	ScheduleNextFrame(fn func()) CancelToken
}

// Tweener interpolates from one value to another over a duration. onUpdate
// receives intermediate values; onComplete runs once the target is reached.
// Neither callback runs inside RunTween itself, and neither runs after the
// returned token has been cancelled.
type Tweener interface {
	RunTween(from, to float64, duration time.Duration, onUpdate func(float64), onComplete func()) CancelToken
}

// ViewportSource reports the current visible area.
type ViewportSource interface {
	Viewport() geometry.Viewport
}

// ViewportFunc adapts a function to ViewportSource.
type ViewportFunc func() geometry.Viewport

// Viewport implements ViewportSource.
func (f ViewportFunc) Viewport() geometry.Viewport {
	return f()
}

// Renderer paints the overlay. Mount is called before the first measurement
// of a cycle, Unmount after the exit animation finished (or on a measurement
// timeout), and Render whenever the snapshot changes.
type Renderer interface {
	Mount()
	Unmount()
	Render(snapshot overlay.Snapshot)
}
