package overlay

import (
	"sync"
	"time"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

// RetryPolicy bounds how long the measurement loop keeps polling.
type RetryPolicy struct {
	// MaxAttempts caps the number of measurement rounds. Zero means unbounded.
	MaxAttempts int
	// Timeout caps the wall time since the loop started. Zero disables it.
	Timeout time.Duration
	// FailureTolerance is how many consecutive rounds with a Measure error are
	// treated as "not yet measured" before escalating to a timeout.
	FailureTolerance int
}

// DefaultRetryPolicy gives up after roughly one second of frames at 60fps.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 60, FailureTolerance: 1}
}

// Measurement is the outcome of a successful measurement loop.
type Measurement struct {
	Trigger  geometry.Rect
	Overlay  geometry.Rect
	Viewport geometry.Viewport
	Attempts int
}

const (
	elementTrigger = "trigger"
	elementOverlay = "overlay"

	retryUnmeasured = "unmeasured"
	retryFailure    = "failure"
)

type loopDeps struct {
	measurer  ports.Measurer
	scheduler ports.FrameScheduler
	viewport  ports.ViewportSource
	trigger   ports.Handle
	overlay   ports.Handle
	now       func() time.Time
	policy    RetryPolicy
	// onRetry observes every unusable round. Optional.
	onRetry func(attempt int, reason string)
}

type roundResult struct {
	trigger    geometry.Rect
	overlay    geometry.Rect
	triggerErr error
	overlayErr error
	gotTrigger bool
	gotOverlay bool
}

func (r roundResult) complete() bool {
	return r.gotTrigger && r.gotOverlay
}

func (r roundResult) failure() error {
	if r.triggerErr != nil {
		return domain.NewMeasurementFailure(elementTrigger, r.triggerErr)
	}
	if r.overlayErr != nil {
		return domain.NewMeasurementFailure(elementOverlay, r.overlayErr)
	}
	return nil
}

// measureLoop polls the Measurer for both rects until they are usable,
// yielding a frame between rounds. It reports exactly one outcome unless it
// is cancelled first.
type measureLoop struct {
	deps     loopDeps
	onResult func(Measurement, error)

	mu       sync.Mutex
	round    int
	started  time.Time
	failures int
	pending  roundResult
	frame    ports.CancelToken
	frameSeq uint64
	finished bool
}

func newMeasureLoop(deps loopDeps, onResult func(Measurement, error)) *measureLoop {
	if deps.now == nil {
		deps.now = time.Now
	}
	return &measureLoop{deps: deps, onResult: onResult}
}

// Start issues the first round.
func (l *measureLoop) Start() {
	l.mu.Lock()
	l.started = l.deps.now()
	l.mu.Unlock()
	l.issue(1)
}

// Cancel stops the loop and cancels any pending retry frame. No outcome is
// reported afterwards.
func (l *measureLoop) Cancel() {
	l.mu.Lock()
	if l.finished {
		l.mu.Unlock()
		return
	}
	l.finished = true
	frame := l.frame
	l.frame = nil
	l.mu.Unlock()

	if frame != nil {
		frame.Cancel()
	}
}

// Attempts returns the number of rounds issued so far.
func (l *measureLoop) Attempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.round
}

func (l *measureLoop) issue(round int) {
	l.mu.Lock()
	if l.finished {
		l.mu.Unlock()
		return
	}
	l.round = round
	l.pending = roundResult{}
	l.mu.Unlock()

	// Both requests are outstanding together; whichever answers last
	// evaluates the round.
	l.deps.measurer.Measure(l.deps.trigger, func(r geometry.Rect, err error) {
		l.receive(round, elementTrigger, r, err)
	})
	l.deps.measurer.Measure(l.deps.overlay, func(r geometry.Rect, err error) {
		l.receive(round, elementOverlay, r, err)
	})
}

func (l *measureLoop) receive(round int, element string, rect geometry.Rect, err error) {
	l.mu.Lock()
	if l.finished || round != l.round {
		l.mu.Unlock()
		return
	}

	switch element {
	case elementTrigger:
		l.pending.trigger, l.pending.triggerErr, l.pending.gotTrigger = rect, err, true
	case elementOverlay:
		l.pending.overlay, l.pending.overlayErr, l.pending.gotOverlay = rect, err, true
	}
	if !l.pending.complete() {
		l.mu.Unlock()
		return
	}

	res := l.pending
	if failure := res.failure(); failure != nil {
		l.failures++
		if l.failures > l.deps.policy.FailureTolerance {
			l.finishLocked(Measurement{}, domain.NewMeasurementTimeout(round, failure))
			return
		}
		l.retryLocked(round, retryFailure, failure)
		return
	}
	l.failures = 0

	vp := l.deps.viewport.Viewport()
	if geometry.IsMeasured(res.trigger) && geometry.IsMeasured(res.overlay) && vp.Valid() {
		l.finishLocked(Measurement{
			Trigger:  res.trigger,
			Overlay:  res.overlay,
			Viewport: vp,
			Attempts: round,
		}, nil)
		return
	}
	l.retryLocked(round, retryUnmeasured, nil)
}

// retryLocked schedules the next round or gives up when the guard is
// exceeded. It releases l.mu.
func (l *measureLoop) retryLocked(round int, reason string, cause error) {
	policy := l.deps.policy
	if policy.MaxAttempts > 0 && round >= policy.MaxAttempts {
		l.finishLocked(Measurement{}, domain.NewMeasurementTimeout(round, cause))
		return
	}
	if policy.Timeout > 0 && l.deps.now().Sub(l.started) >= policy.Timeout {
		l.finishLocked(Measurement{}, domain.NewMeasurementTimeout(round, cause))
		return
	}

	l.frameSeq++
	seq := l.frameSeq
	next := round + 1
	l.mu.Unlock()

	if l.deps.onRetry != nil {
		l.deps.onRetry(round, reason)
	}

	token := l.deps.scheduler.ScheduleNextFrame(func() {
		l.onFrame(seq, next)
	})

	l.mu.Lock()
	if l.finished || l.frameSeq != seq {
		l.mu.Unlock()
		if token != nil {
			token.Cancel()
		}
		return
	}
	l.frame = token
	l.mu.Unlock()
}

func (l *measureLoop) onFrame(seq uint64, next int) {
	l.mu.Lock()
	if l.finished || seq != l.frameSeq {
		l.mu.Unlock()
		return
	}
	l.frame = nil
	l.mu.Unlock()
	l.issue(next)
}

// finishLocked records the outcome and reports it. It releases l.mu.
func (l *measureLoop) finishLocked(m Measurement, err error) {
	l.finished = true
	l.frame = nil
	l.mu.Unlock()

	if l.onResult != nil {
		l.onResult(m, err)
	}
}
