package overlay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/host"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/metrics"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

const frame = 10 * time.Millisecond

var (
	triggerHandle = handle("trigger")
	overlayHandle = handle("overlay")

	scenarioViewport = geometry.Viewport{Width: 375, Height: 600}
	scenarioTrigger  = geometry.Rect{X: 20, Y: 500, Width: 100, Height: 40}
	scenarioOverlay  = geometry.Rect{Width: 200, Height: 300}
)

type handle string

func (h handle) Name() string { return string(h) }

// measureScript answers the n-th (1-based) Measure call for one element.
type measureScript func(call int) (geometry.Rect, error)

func always(r geometry.Rect) measureScript {
	return func(int) (geometry.Rect, error) { return r, nil }
}

// measuredAfter reports a zero rect for the first n calls.
func measuredAfter(n int, r geometry.Rect) measureScript {
	return func(call int) (geometry.Rect, error) {
		if call <= n {
			return geometry.Rect{}, nil
		}
		return r, nil
	}
}

func failing(err error) measureScript {
	return func(int) (geometry.Rect, error) { return geometry.Rect{}, err }
}

type pendingMeasure struct {
	name    string
	deliver func()
}

type scriptedMeasurer struct {
	mu       sync.Mutex
	scripts  map[string]measureScript
	calls    map[string]int
	async    bool
	pending  []pendingMeasure
	renderer *recordingRenderer
	// unmountedMeasures counts calls issued while the overlay was not mounted.
	unmountedMeasures int
}

func newScriptedMeasurer(trigger, overlay measureScript) *scriptedMeasurer {
	return &scriptedMeasurer{
		scripts: map[string]measureScript{
			triggerHandle.Name(): trigger,
			overlayHandle.Name(): overlay,
		},
		calls: make(map[string]int),
	}
}

func (m *scriptedMeasurer) set(h ports.Handle, script measureScript) {
	m.mu.Lock()
	m.scripts[h.Name()] = script
	m.mu.Unlock()
}

func (m *scriptedMeasurer) Measure(h ports.Handle, done ports.MeasureCallback) {
	m.mu.Lock()
	m.calls[h.Name()]++
	call := m.calls[h.Name()]
	script := m.scripts[h.Name()]
	if m.renderer != nil && !m.renderer.isMounted() {
		m.unmountedMeasures++
	}
	var (
		rect geometry.Rect
		err  error
	)
	if script != nil {
		rect, err = script(call)
	}
	if m.async {
		m.pending = append(m.pending, pendingMeasure{name: h.Name(), deliver: func() { done(rect, err) }})
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	done(rect, err)
}

func (m *scriptedMeasurer) callCount(h ports.Handle) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[h.Name()]
}

// takePending removes and returns queued async answers.
func (m *scriptedMeasurer) takePending() []pendingMeasure {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out
}

type recordingRenderer struct {
	mu        sync.Mutex
	mounted   bool
	mounts    int
	unmounts  int
	snapshots []domain.Snapshot
}

func (r *recordingRenderer) Mount() {
	r.mu.Lock()
	r.mounted = true
	r.mounts++
	r.mu.Unlock()
}

func (r *recordingRenderer) Unmount() {
	r.mu.Lock()
	r.mounted = false
	r.unmounts++
	r.mu.Unlock()
}

func (r *recordingRenderer) Render(s domain.Snapshot) {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
}

func (r *recordingRenderer) isMounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounted
}

func (r *recordingRenderer) counts() (mounts, unmounts, renders int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounts, r.unmounts, len(r.snapshots)
}

func (r *recordingRenderer) last() domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return domain.Snapshot{}
	}
	return r.snapshots[len(r.snapshots)-1]
}

func (r *recordingRenderer) all() []domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Snapshot(nil), r.snapshots...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event ports.DomainEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) Subscribe(string, ports.EventHandler) (ports.Subscription, error) {
	return noopSubscription{}, nil
}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, evt := range p.events {
		if evt.EventType() == eventType {
			n++
		}
	}
	return n
}

type transition struct {
	from, to domain.State
}

func (p *recordingPublisher) transitions() []transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []transition
	for _, evt := range p.events {
		if from, to, ok := TransitionPayload(evt); ok {
			out = append(out, transition{from: from, to: to})
		}
	}
	return out
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

type harness struct {
	t        *testing.T
	host     *host.Loop
	measurer *scriptedMeasurer
	renderer *recordingRenderer
	events   *recordingPublisher
	metrics  *metrics.Collector
	ctrl     *Controller

	mu         sync.Mutex
	dismissals int
	errs       []error
}

type harnessConfig struct {
	ctx      context.Context
	measurer *scriptedMeasurer
	options  func(*Options)
}

func newHarness(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()

	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}
	if cfg.measurer == nil {
		cfg.measurer = newScriptedMeasurer(always(scenarioTrigger), always(scenarioOverlay))
	}

	h := &harness{
		t:        t,
		host:     host.NewManual(frame, scenarioViewport),
		measurer: cfg.measurer,
		renderer: &recordingRenderer{},
		events:   &recordingPublisher{},
		metrics:  metrics.NewCollector(),
	}
	h.measurer.renderer = h.renderer

	opts := DefaultOptions()
	opts.ID = "test-overlay"
	opts.Events = h.events
	opts.Metrics = h.metrics
	opts.Clock = h.host.Now
	opts.OnDismiss = func() {
		h.mu.Lock()
		h.dismissals++
		h.mu.Unlock()
	}
	opts.OnError = func(err error) {
		h.mu.Lock()
		h.errs = append(h.errs, err)
		h.mu.Unlock()
	}
	if cfg.options != nil {
		cfg.options(&opts)
	}

	ctrl, err := NewController(cfg.ctx, Dependencies{
		Measurer:  h.measurer,
		Scheduler: h.host,
		Tweener:   h.host,
		Viewport:  h.host,
		Renderer:  h.renderer,
		Trigger:   triggerHandle,
		Overlay:   overlayHandle,
	}, opts)
	require.NoError(t, err)
	t.Cleanup(ctrl.Dispose)
	h.ctrl = ctrl
	return h
}

func (h *harness) settle() {
	h.t.Helper()
	h.host.RunUntilIdle(1000)
	require.True(h.t, h.host.Idle(), "host still busy after 1000 frames")
}

func (h *harness) dismissCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dismissals
}

func (h *harness) reportedErrors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}
