package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

// Options tune a Controller. Zero values are not defaults; start from
// DefaultOptions.
type Options struct {
	ID               string
	Side             geometry.Side
	ScreenIndent     float64
	MaxOverlayHeight float64
	EnterDuration    time.Duration
	ExitDuration     time.Duration
	Retry            RetryPolicy

	// OnDismiss is invoked when a close is requested from outside (backdrop
	// tap, escape key) and after a measurement timeout. The caller answers by
	// closing.
	OnDismiss func()
	// OnError receives measurement timeouts.
	OnError func(error)

	Logger  ports.Logger
	Events  ports.EventPublisher
	Metrics ports.MetricsCollector
	Clock   func() time.Time
}

// DefaultOptions returns the options used by the component library.
func DefaultOptions() Options {
	return Options{
		Side:          geometry.SideBottom,
		ScreenIndent:  domain.DefaultScreenIndent,
		EnterDuration: 150 * time.Millisecond,
		ExitDuration:  120 * time.Millisecond,
		Retry:         DefaultRetryPolicy(),
	}
}

// Dependencies are the host capabilities and handles a Controller borrows.
type Dependencies struct {
	Measurer  ports.Measurer
	Scheduler ports.FrameScheduler
	Tweener   ports.Tweener
	Viewport  ports.ViewportSource
	Renderer  ports.Renderer
	Trigger   ports.Handle
	Overlay   ports.Handle
}

func (d Dependencies) validate() error {
	switch {
	case d.Measurer == nil:
		return domain.NewInvalidOptions("measurer", "measurer is required")
	case d.Scheduler == nil:
		return domain.NewInvalidOptions("scheduler", "frame scheduler is required")
	case d.Tweener == nil:
		return domain.NewInvalidOptions("tweener", "tweener is required")
	case d.Viewport == nil:
		return domain.NewInvalidOptions("viewport", "viewport source is required")
	case d.Renderer == nil:
		return domain.NewInvalidOptions("renderer", "renderer is required")
	case d.Trigger == nil:
		return domain.NewInvalidOptions("trigger", "trigger handle is required")
	case d.Overlay == nil:
		return domain.NewInvalidOptions("overlay", "overlay handle is required")
	}
	return nil
}

func (o Options) validate() error {
	switch {
	case o.ScreenIndent < 0:
		return domain.NewInvalidOptions("screen_indent", "screen indent must not be negative")
	case o.MaxOverlayHeight < 0:
		return domain.NewInvalidOptions("max_overlay_height", "max overlay height must not be negative")
	case o.EnterDuration < 0:
		return domain.NewInvalidOptions("enter_duration", "enter duration must not be negative")
	case o.ExitDuration < 0:
		return domain.NewInvalidOptions("exit_duration", "exit duration must not be negative")
	case o.Retry.MaxAttempts < 0:
		return domain.NewInvalidOptions("max_attempts", "max attempts must not be negative")
	case o.Retry.Timeout < 0:
		return domain.NewInvalidOptions("timeout", "timeout must not be negative")
	case o.Retry.FailureTolerance < 0:
		return domain.NewInvalidOptions("failure_tolerance", "failure tolerance must not be negative")
	case o.Side != geometry.SideTop && o.Side != geometry.SideBottom:
		return domain.NewInvalidOptions("side", "side must be top or bottom")
	}
	return nil
}

// Controller ties the caller's open flag to the overlay's
// mount/measure/animate/unmount sequence. All state lives behind mu; host and
// caller callbacks are only invoked after mu is released, so hosts may answer
// synchronously.
type Controller struct {
	ctx       context.Context
	deps      Dependencies
	opts      Options
	logger    ports.Logger
	stopWatch func() bool

	mu          sync.Mutex
	state       domain.State
	cycle       uint64
	side        geometry.Side
	nextSide    geometry.Side
	loop        *measureLoop
	relayout    *measureLoop
	tween       ports.CancelToken
	tweenSeq    uint64
	phase       domain.Phase
	progress    float64
	position    geometry.Position
	hasPosition bool
	trigger     geometry.Rect
	overlay     geometry.Rect
	mounted     bool
	disposed    bool
	lastErr     error
}

// NewController attaches a controller to a trigger. The controller is torn
// down by Dispose or when ctx is cancelled.
func NewController(ctx context.Context, deps Dependencies, opts Options) (*Controller, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	c := &Controller{
		ctx:      ctx,
		deps:     deps,
		opts:     opts,
		logger:   logger.With("component", "overlay", "overlay_id", opts.ID),
		state:    domain.StateClosed,
		side:     opts.Side,
		nextSide: opts.Side,
	}
	c.stopWatch = context.AfterFunc(ctx, c.Dispose)
	return c, nil
}

// ID returns the controller's identifier used in logs and events.
func (c *Controller) ID() string {
	return c.opts.ID
}

// State returns the current lifecycle state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the failure that ended the most recent cycle, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Snapshot returns the renderer-facing view of the controller.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetSide records the preferred side for the next open cycle. The side of a
// cycle in progress never changes.
func (c *Controller) SetSide(side geometry.Side) {
	c.mu.Lock()
	c.nextSide = side
	c.mu.Unlock()
}

// SetOpen mirrors the caller's boolean open flag.
func (c *Controller) SetOpen(open bool) error {
	if open {
		return c.Open()
	}
	return c.Close()
}

// Open requests the overlay. It is a no-op while measuring or visible, and
// interrupts a running exit animation.
func (c *Controller) Open() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.ErrDisposed
	}

	var fx effects
	switch c.state {
	case domain.StateMeasuring, domain.StateVisible:
		state := c.state
		c.mu.Unlock()
		c.logger.Debug(c.ctx, "open ignored", "state", state.String())
		return nil
	case domain.StateClosing:
		fx.add(c.cancelTweenLocked())
	}
	c.enterMeasuringLocked(&fx)
	c.mu.Unlock()

	fx.run()
	return nil
}

// Close requests the overlay to go away. Content stays rendered until the
// exit animation completes.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.ErrDisposed
	}

	var fx effects
	switch c.state {
	case domain.StateClosed, domain.StateClosing:
		c.mu.Unlock()
		return nil
	case domain.StateMeasuring:
		if c.loop != nil {
			fx.add(c.loop.Cancel)
			c.loop = nil
		}
		c.cycle++
	case domain.StateVisible:
		fx.add(c.cancelTweenLocked())
		if c.relayout != nil {
			fx.add(c.relayout.Cancel)
			c.relayout = nil
		}
	}
	c.enterClosingLocked(&fx)
	c.mu.Unlock()

	fx.run()
	return nil
}

// RequestDismiss forwards an outside close request to OnDismiss. The
// controller itself does not change state.
func (c *Controller) RequestDismiss() {
	c.mu.Lock()
	live := !c.disposed && (c.state == domain.StateMeasuring || c.state == domain.StateVisible)
	c.mu.Unlock()

	if live && c.opts.OnDismiss != nil {
		c.opts.OnDismiss()
	}
}

// Relayout re-measures both elements while visible and moves the overlay
// without replaying animations. An unusable measurement keeps the current
// position.
func (c *Controller) Relayout() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return domain.ErrDisposed
	}
	if c.state != domain.StateVisible || c.relayout != nil {
		c.mu.Unlock()
		return nil
	}

	cycle := c.cycle
	var loop *measureLoop
	loop = newMeasureLoop(c.loopDepsLocked(RetryPolicy{MaxAttempts: 1}), func(m Measurement, err error) {
		c.onRelayout(cycle, loop, m, err)
	})
	c.relayout = loop
	c.mu.Unlock()

	loop.Start()
	return nil
}

// Dispose tears the controller down. Pending frames and tweens are cancelled
// before it returns and no renderer or caller callback runs afterwards.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.cycle++
	c.tweenSeq++

	var fx effects
	if c.loop != nil {
		fx.add(c.loop.Cancel)
		c.loop = nil
	}
	if c.relayout != nil {
		fx.add(c.relayout.Cancel)
		c.relayout = nil
	}
	if tween := c.tween; tween != nil {
		fx.add(tween.Cancel)
		c.tween = nil
	}
	c.state = domain.StateClosed
	c.mounted = false
	c.resetLocked()
	c.mu.Unlock()

	fx.run()
	if c.stopWatch != nil {
		c.stopWatch()
	}
	c.logger.Debug(c.ctx, "controller disposed")
}

func (c *Controller) enterMeasuringLocked(fx *effects) {
	c.cycle++
	cycle := c.cycle
	c.side = c.nextSide
	c.resetLocked()
	c.lastErr = nil

	mount := !c.mounted
	c.mounted = true
	c.transitionLocked(fx, domain.StateMeasuring)
	if mount {
		fx.add(c.guard(c.deps.Renderer.Mount))
	}
	c.renderLocked(fx)

	loop := newMeasureLoop(c.loopDepsLocked(c.opts.Retry), func(m Measurement, err error) {
		c.onMeasured(cycle, m, err)
	})
	c.loop = loop
	fx.add(loop.Start)
}

func (c *Controller) enterClosingLocked(fx *effects) {
	c.phase = domain.PhaseExiting
	c.transitionLocked(fx, domain.StateClosing)
	c.renderLocked(fx)

	from := c.progress
	duration := time.Duration(float64(c.opts.ExitDuration) * from)
	c.startTweenLocked(fx, from, 0, duration)
}

func (c *Controller) enterClosedLocked(fx *effects) {
	c.cycle++
	c.mounted = false
	c.resetLocked()
	c.transitionLocked(fx, domain.StateClosed)
	fx.add(c.guard(c.deps.Renderer.Unmount))
	c.renderLocked(fx)
}

func (c *Controller) onMeasured(cycle uint64, m Measurement, err error) {
	c.mu.Lock()
	if c.disposed || cycle != c.cycle || c.state != domain.StateMeasuring {
		c.mu.Unlock()
		return
	}
	c.loop = nil

	var fx effects
	if err != nil {
		c.lastErr = err
		c.enterClosedLocked(&fx)
		fx.add(func() { c.reportTimeout(err) })
		c.mu.Unlock()
		fx.run()
		return
	}

	c.trigger = m.Trigger
	c.overlay = m.Overlay
	c.position = domain.Place(domain.PlacementInput{
		Trigger:      m.Trigger,
		Overlay:      m.Overlay,
		Viewport:     m.Viewport,
		Side:         c.side,
		ScreenIndent: c.opts.ScreenIndent,
	})
	c.hasPosition = true
	c.phase = domain.PhaseEntering
	c.progress = 0

	c.transitionLocked(&fx, domain.StateVisible)
	c.positionedLocked(&fx, m)
	c.renderLocked(&fx)
	c.startTweenLocked(&fx, 0, 1, c.opts.EnterDuration)
	c.mu.Unlock()

	fx.run()
}

func (c *Controller) onRelayout(cycle uint64, loop *measureLoop, m Measurement, err error) {
	c.mu.Lock()
	if c.disposed || cycle != c.cycle || c.state != domain.StateVisible || c.relayout != loop {
		c.mu.Unlock()
		return
	}
	c.relayout = nil
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug(c.ctx, "relayout kept previous position", "error", err)
		return
	}

	var fx effects
	c.trigger = m.Trigger
	c.overlay = m.Overlay
	position := domain.Place(domain.PlacementInput{
		Trigger:      m.Trigger,
		Overlay:      m.Overlay,
		Viewport:     m.Viewport,
		Side:         c.side,
		ScreenIndent: c.opts.ScreenIndent,
	})
	if position != c.position {
		c.position = position
		c.positionedLocked(&fx, m)
		c.renderLocked(&fx)
	}
	c.mu.Unlock()

	fx.run()
}

func (c *Controller) startTweenLocked(fx *effects, from, to float64, duration time.Duration) {
	c.tweenSeq++
	seq := c.tweenSeq
	fx.add(func() {
		token := c.deps.Tweener.RunTween(from, to, duration,
			func(v float64) { c.onTweenUpdate(seq, v) },
			func() { c.onTweenDone(seq) },
		)

		c.mu.Lock()
		if !c.disposed && c.tweenSeq == seq {
			c.tween = token
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		// Superseded before the token could be stored.
		if token != nil {
			token.Cancel()
		}
	})
}

// cancelTweenLocked invalidates the running tween and returns the effect that
// cancels it on the host.
func (c *Controller) cancelTweenLocked() func() {
	c.tweenSeq++
	token := c.tween
	c.tween = nil
	if token == nil {
		return nil
	}
	return token.Cancel
}

func (c *Controller) onTweenUpdate(seq uint64, value float64) {
	c.mu.Lock()
	if c.disposed || seq != c.tweenSeq {
		c.mu.Unlock()
		return
	}
	c.progress = value
	var fx effects
	c.renderLocked(&fx)
	c.mu.Unlock()

	fx.run()
}

func (c *Controller) onTweenDone(seq uint64) {
	c.mu.Lock()
	if c.disposed || seq != c.tweenSeq {
		c.mu.Unlock()
		return
	}
	c.tween = nil
	c.tweenSeq++

	var fx effects
	switch c.state {
	case domain.StateVisible:
		c.phase = domain.PhaseVisible
		c.progress = 1
		c.renderLocked(&fx)
	case domain.StateClosing:
		c.enterClosedLocked(&fx)
	}
	c.mu.Unlock()

	fx.run()
}

func (c *Controller) resetLocked() {
	c.phase = domain.PhaseNone
	c.progress = 0
	c.position = geometry.Position{}
	c.hasPosition = false
	c.trigger = geometry.Rect{}
	c.overlay = geometry.Rect{}
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		State:            c.state,
		IsRendered:       c.mounted && c.hasPosition && (c.state == domain.StateVisible || c.state == domain.StateClosing),
		HasPosition:      c.hasPosition,
		Position:         c.position,
		Phase:            c.phase,
		Progress:         c.progress,
		MaxOverlayHeight: c.opts.MaxOverlayHeight,
	}
}

func (c *Controller) renderLocked(fx *effects) {
	snapshot := c.snapshotLocked()
	fx.add(c.guard(func() { c.deps.Renderer.Render(snapshot) }))
}

func (c *Controller) transitionLocked(fx *effects, to domain.State) {
	from := c.state
	c.state = to
	fx.add(func() { c.recordTransition(from, to) })
}

func (c *Controller) positionedLocked(fx *effects, m Measurement) {
	position := c.position
	fx.add(func() {
		c.logger.Debug(c.ctx, "overlay positioned", "top", position.Top, "left", position.Left, "attempts", m.Attempts)
		c.publish(ports.EventPositioned, map[string]interface{}{
			"top":      position.Top,
			"left":     position.Left,
			"attempts": m.Attempts,
		})
		if c.opts.Metrics != nil && m.Attempts > 0 {
			c.opts.Metrics.ObserveHistogram(c.ctx, ports.MetricMeasureAttempts, float64(m.Attempts), nil)
		}
	})
}

func (c *Controller) loopDepsLocked(policy RetryPolicy) loopDeps {
	return loopDeps{
		measurer:  c.deps.Measurer,
		scheduler: c.deps.Scheduler,
		viewport:  c.deps.Viewport,
		trigger:   c.deps.Trigger,
		overlay:   c.deps.Overlay,
		now:       c.opts.Clock,
		policy:    policy,
		onRetry:   c.recordRetry,
	}
}

// guard wraps a renderer or caller callback so it is skipped once the
// controller has been disposed.
func (c *Controller) guard(fn func()) func() {
	return func() {
		c.mu.Lock()
		disposed := c.disposed
		c.mu.Unlock()
		if !disposed {
			fn()
		}
	}
}

func (c *Controller) reportTimeout(err error) {
	c.logger.Warn(c.ctx, "overlay measurement timed out", "error", err)
	c.publish(ports.EventMeasureTimeout, map[string]interface{}{"error": err.Error()})
	if c.opts.Metrics != nil {
		c.opts.Metrics.IncCounter(c.ctx, ports.MetricMeasureTimeouts, nil)
	}
	c.guard(func() {
		if c.opts.OnError != nil {
			c.opts.OnError(err)
		}
		if c.opts.OnDismiss != nil {
			c.opts.OnDismiss()
		}
	})()
}

// effects collects host and caller calls decided under the lock so they can
// run after it is released.
type effects []func()

func (e *effects) add(fn func()) {
	if fn != nil {
		*e = append(*e, fn)
	}
}

func (e effects) run() {
	for _, fn := range e {
		fn()
	}
}
