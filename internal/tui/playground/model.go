package playground

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	appoverlay "github.com/alexisbeaulieu97/floatkit/internal/application/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/host"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/measure"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
	"github.com/alexisbeaulieu97/floatkit/internal/ui/components"
)

// Rows below the canvas: status line and help line.
const chromeRows = 2

// DefaultItems is the menu shown when no items are configured.
var DefaultItems = []string{
	"Cut", "Copy", "Paste", "Rename", "Duplicate", "Move to…",
	"Share", "Archive", "Export as PDF", "Export as PNG", "Properties", "Delete",
}

// Options configure the playground.
type Options struct {
	// Controller carries placement, animation and retry settings plus
	// observability hooks. OnDismiss and OnError are wrapped, not replaced.
	Controller    appoverlay.Options
	FrameInterval time.Duration
	Easing        host.Easing

	Label string
	Title string
	Items []string
	Theme components.Theme

	// Width and Height seed the viewport until the first WindowSizeMsg.
	Width  int
	Height int
}

// Model is the bubbletea model of the overlay playground. The terminal grid
// is the viewport, the button is the trigger and the menu is the overlay.
type Model struct {
	s       *session
	ctl     *appoverlay.Controller
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int
}

type frameMsg struct{}

// New wires a controller to a frame loop, a rect registry and the session
// renderer. Cancelling ctx disposes the controller.
func New(ctx context.Context, opts Options) (Model, error) {
	if opts.Label == "" {
		opts.Label = "Actions"
	}
	if len(opts.Items) == 0 {
		opts.Items = DefaultItems
	}
	if opts.Theme == (components.Theme{}) {
		opts.Theme = components.DefaultTheme()
	}

	loop := host.NewLoop(host.LoopOptions{
		Interval: opts.FrameInterval,
		Easing:   opts.Easing,
		Viewport: viewportFor(opts.Width, opts.Height),
		Start:    time.Now(),
	})

	s := &session{
		loop:     loop,
		registry: measure.NewRegistry(),
		button:   components.NewButton(opts.Label),
		menu:     components.NewMenu(opts.Items...).WithTitle(opts.Title),
		render:   components.DefaultContext().WithTheme(opts.Theme),
		triggerX: 2,
		triggerY: 2,
	}
	s.registry.Set(triggerHandle, s.triggerRect)

	ctlOpts := opts.Controller
	s.side = ctlOpts.Side
	if ctlOpts.Clock == nil {
		ctlOpts.Clock = loop.Now
	}
	s.menu.WithMaxHeight(int(ctlOpts.MaxOverlayHeight))

	var ctl *appoverlay.Controller
	onDismiss, onError := ctlOpts.OnDismiss, ctlOpts.OnError
	ctlOpts.OnDismiss = func() {
		if onDismiss != nil {
			onDismiss()
		}
		_ = ctl.Close()
	}
	ctlOpts.OnError = func(err error) {
		s.lastErr = err
		if onError != nil {
			onError(err)
		}
	}

	if ctlOpts.Events != nil {
		_, err := ctlOpts.Events.Subscribe(ports.EventStateChanged, func(_ context.Context, event ports.DomainEvent) error {
			if from, to, ok := appoverlay.TransitionPayload(event); ok {
				s.record(fmt.Sprintf("%s→%s", from, to))
			}
			return nil
		})
		if err != nil {
			return Model{}, err
		}
	}

	ctl, err := appoverlay.NewController(ctx, appoverlay.Dependencies{
		Measurer:  s.registry,
		Scheduler: loop,
		Tweener:   loop,
		Viewport:  loop,
		Renderer:  s,
		Trigger:   triggerHandle,
		Overlay:   overlayHandle,
	}, ctlOpts)
	if err != nil {
		return Model{}, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return Model{
		s:       s,
		ctl:     ctl,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		width:   opts.Width,
		height:  opts.Height,
	}, nil
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Snapshot returns what the renderer last received.
func (m Model) Snapshot() domain.Snapshot {
	return m.s.snapshot
}

// State returns the controller's lifecycle phase.
func (m Model) State() domain.State {
	return m.ctl.State()
}

// Picked returns the last chosen menu item.
func (m Model) Picked() string {
	return m.s.picked
}

// Trace returns the most recent lifecycle transitions, oldest first.
func (m Model) Trace() []string {
	return append([]string(nil), m.s.trace...)
}

// Close disposes the controller.
func (m Model) Close() {
	m.ctl.Dispose()
}

// tick keeps the frame loop running while it has work.
func (m Model) tick() tea.Cmd {
	if m.s.ticking || m.s.loop.Idle() {
		return nil
	}
	m.s.ticking = true
	return tea.Tick(m.s.loop.Interval(), func(time.Time) tea.Msg { return frameMsg{} })
}

func viewportFor(width, height int) geometry.Viewport {
	h := height - chromeRows
	if h < 0 {
		h = 0
	}
	if width < 0 {
		width = 0
	}
	return geometry.Viewport{Width: float64(width), Height: float64(h)}
}
