package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	appoverlay "github.com/alexisbeaulieu97/floatkit/internal/application/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/host"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/measure"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/metrics"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
	floatkiterrors "github.com/alexisbeaulieu97/floatkit/pkg/errors"
)

// Upper bound on frames run while waiting for the host to go idle.
const settleFrames = 10000

type simulateOptions struct {
	script           string
	trigger          string
	overlay          string
	viewport         string
	unmeasuredFrames int
	maxAttempts      int
	frames           int
	asyncWorkers     int
}

func newSimulateCmd(app *AppContext) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drive an overlay controller on a deterministic host and print its trace",
		Long: `Runs a script of steps against a controller hosted by a manual frame loop.

Steps: open, close, dismiss, relayout, top, bottom, settle.
After each step the loop advances --frames frames, or until idle when
--frames is 0. The transition trace and the collected metrics are printed.`,
		Example: `  floatkit simulate --script open,close,open
  floatkit simulate --script open --unmeasured-frames 100 --max-attempts 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, logger := app.CommandContext(cmd, "command.simulate")
			logger.Info(ctx, "simulation started", "script", opts.script)

			steps, err := parseScript(opts.script)
			if err != nil {
				return err
			}

			ctlOpts, err := app.Config.ControllerOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-attempts") {
				ctlOpts.Retry.MaxAttempts = opts.maxAttempts
			}
			ctlOpts.ID = "simulate"
			ctlOpts.Logger = logger

			err = runSimulation(ctx, cmd.OutOrStdout(), app, opts, ctlOpts, steps)
			if err != nil {
				logger.Error(ctx, "simulation failed", "error", err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.script, "script", "open,close", "Comma-separated steps")
	cmd.Flags().StringVar(&opts.trigger, "trigger", "20,500,100,40", "Trigger rect as x,y,w,h")
	cmd.Flags().StringVar(&opts.overlay, "overlay", "200,300", "Overlay size as w,h")
	cmd.Flags().StringVar(&opts.viewport, "viewport", "375,600", "Viewport size as w,h")
	cmd.Flags().IntVar(&opts.unmeasuredFrames, "unmeasured-frames", 0, "Overlay measurements that report no layout before it settles")
	cmd.Flags().IntVar(&opts.maxAttempts, "max-attempts", 0, "Override retry.max_attempts (0 is unbounded)")
	cmd.Flags().IntVar(&opts.frames, "frames", 0, "Frames to advance after each step; 0 runs until idle")
	cmd.Flags().IntVar(&opts.asyncWorkers, "async-workers", 0, "Answer measurements on this many worker goroutines; 0 answers inline")

	return cmd
}

var simulateSteps = map[string]bool{
	"open": true, "close": true, "dismiss": true, "relayout": true,
	"top": true, "bottom": true, "settle": true,
}

func parseScript(script string) ([]string, error) {
	var steps []string
	for _, raw := range strings.Split(script, ",") {
		step := strings.ToLower(strings.TrimSpace(raw))
		if step == "" {
			continue
		}
		if !simulateSteps[step] {
			return nil, floatkiterrors.NewValidationError("script", fmt.Sprintf("unknown step %q", raw), nil)
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, floatkiterrors.NewValidationError("script", "script is empty", nil)
	}
	return steps, nil
}

func runSimulation(ctx context.Context, out io.Writer, app *AppContext, opts simulateOptions, ctlOpts appoverlay.Options, steps []string) error {
	if opts.unmeasuredFrames < 0 || opts.frames < 0 || opts.maxAttempts < 0 || opts.asyncWorkers < 0 {
		return floatkiterrors.NewValidationError("frames", "frame counts must not be negative", nil)
	}
	trigger, err := parseRect("trigger", opts.trigger)
	if err != nil {
		return err
	}
	ow, oh, err := parseSize("overlay", opts.overlay)
	if err != nil {
		return err
	}
	vw, vh, err := parseSize("viewport", opts.viewport)
	if err != nil {
		return err
	}

	loop := host.NewManual(app.Config.Host.FrameInterval(), geometry.Viewport{Width: vw, Height: vh})
	collector := metrics.NewCollector()
	publisher := app.Events

	registry := measure.NewRegistry()
	registry.SetRect(handleTrigger, trigger)
	var calls atomic.Int64
	registry.Set(handleOverlay, func() (geometry.Rect, bool) {
		if calls.Add(1) <= int64(opts.unmeasuredFrames) {
			return geometry.Rect{}, false
		}
		return geometry.Rect{Width: ow, Height: oh}, true
	})

	var measurer ports.Measurer = registry
	if opts.asyncWorkers > 0 {
		blocking := measure.NewBlocking(ctx, opts.asyncWorkers, func(_ context.Context, h ports.Handle) (geometry.Rect, error) {
			rect, _ := registry.Lookup(h)
			return rect, nil
		})
		defer blocking.Close() //nolint:errcheck
		measurer = blocking
	}
	tracked := newTrackedMeasurer(measurer)

	trace := &traceWriter{out: out, loop: loop}
	sub, err := publisher.Subscribe(events.WildcardEvent, trace.handle)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	var ctl *appoverlay.Controller
	ctlOpts.Events = publisher
	ctlOpts.Metrics = collector
	ctlOpts.Clock = loop.Now
	ctlOpts.OnDismiss = func() {
		trace.line("dismiss requested")
		_ = ctl.Close()
	}
	ctlOpts.OnError = func(err error) {
		trace.line("error: %v", err)
	}

	ctl, err = appoverlay.NewController(ctx, appoverlay.Dependencies{
		Measurer:  tracked,
		Scheduler: loop,
		Tweener:   loop,
		Viewport:  loop,
		Renderer:  trace,
		Trigger:   handleTrigger,
		Overlay:   handleOverlay,
	}, ctlOpts)
	if err != nil {
		return err
	}
	defer ctl.Dispose()

	for _, step := range steps {
		trace.line("> %s", step)
		if err := applyStep(ctl, step); err != nil {
			return err
		}
		advance(loop, tracked, opts.frames)
	}

	snap := ctl.Snapshot()
	trace.line("final state=%s rendered=%t", snap.State, snap.IsRendered)

	fmt.Fprintln(out, "# metrics")
	return collector.Snapshot().WriteText(out)
}

func applyStep(ctl *appoverlay.Controller, step string) error {
	switch step {
	case "open":
		return ctl.Open()
	case "close":
		return ctl.Close()
	case "dismiss":
		ctl.RequestDismiss()
	case "relayout":
		return ctl.Relayout()
	case "top":
		ctl.SetSide(geometry.SideTop)
	case "bottom":
		ctl.SetSide(geometry.SideBottom)
	}
	return nil
}

// advance runs n frames, or until idle when n is 0. Before each frame it
// waits for measurements in flight so worker answers land in a known frame.
func advance(loop *host.Loop, tracked *trackedMeasurer, n int) {
	if n > 0 {
		for i := 0; i < n; i++ {
			tracked.wait()
			loop.Advance()
		}
		tracked.wait()
		return
	}
	for i := 0; i < settleFrames; i++ {
		tracked.wait()
		if loop.Idle() {
			return
		}
		loop.Advance()
	}
}

// trackedMeasurer counts measurements whose callback has not run yet.
type trackedMeasurer struct {
	inner    ports.Measurer
	mu       sync.Mutex
	cond     *sync.Cond
	inflight int
}

func newTrackedMeasurer(inner ports.Measurer) *trackedMeasurer {
	t := &trackedMeasurer{inner: inner}
	t.cond = sync.NewCond(&t.mu)
	return t
}

func (t *trackedMeasurer) Measure(h ports.Handle, done ports.MeasureCallback) {
	t.mu.Lock()
	t.inflight++
	t.mu.Unlock()

	t.inner.Measure(h, func(rect geometry.Rect, err error) {
		done(rect, err)
		t.mu.Lock()
		t.inflight--
		t.cond.Broadcast()
		t.mu.Unlock()
	})
}

func (t *trackedMeasurer) wait() {
	t.mu.Lock()
	for t.inflight > 0 {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

const (
	handleTrigger = measure.Handle("trigger")
	handleOverlay = measure.Handle("overlay")
)

// traceWriter prints engine events and renderer calls, one line each, tagged
// with the frame they happened in.
type traceWriter struct {
	mu       sync.Mutex
	out      io.Writer
	loop     *host.Loop
	lastSnap domain.Snapshot
}

var _ ports.Renderer = (*traceWriter)(nil)

func (t *traceWriter) line(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "frame %4d  %s\n", t.loop.Frame(), fmt.Sprintf(format, args...))
}

func (t *traceWriter) handle(_ context.Context, event ports.DomainEvent) error {
	if from, to, ok := appoverlay.TransitionPayload(event); ok {
		t.line("%s -> %s", from, to)
		return nil
	}

	payload, _ := event.Payload().(map[string]interface{})
	switch event.EventType() {
	case ports.EventPositioned:
		t.line("positioned top=%v left=%v attempts=%v", payload["top"], payload["left"], payload["attempts"])
	case ports.EventMeasureRetry:
		t.line("retry attempt=%v reason=%v", payload["attempt"], payload["reason"])
	case ports.EventMeasureTimeout:
		t.line("measurement timeout")
	}
	return nil
}

func (t *traceWriter) Mount()   { t.line("mount") }
func (t *traceWriter) Unmount() { t.line("unmount") }

// Render only reports phase changes; progress updates would flood the trace.
func (t *traceWriter) Render(snap domain.Snapshot) {
	t.mu.Lock()
	changed := snap.Phase != t.lastSnap.Phase || snap.IsRendered != t.lastSnap.IsRendered
	t.lastSnap = snap
	t.mu.Unlock()
	if changed {
		t.line("render phase=%s rendered=%t", snap.Phase, snap.IsRendered)
	}
}
