package playground

import (
	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/host"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/measure"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
	"github.com/alexisbeaulieu97/floatkit/internal/ui/components"
)

const (
	triggerHandle = measure.Handle("trigger")
	overlayHandle = measure.Handle("menu")
)

// session is the state shared between the bubbletea model and the engine's
// callbacks. Everything runs on the bubbletea update goroutine: the frame loop
// is only advanced from Update, and the registry answers synchronously.
type session struct {
	loop     *host.Loop
	registry *measure.Registry
	button   *components.Button
	menu     *components.Menu
	render   components.RenderContext

	triggerX int
	triggerY int
	side     geometry.Side

	mounted  bool
	snapshot domain.Snapshot
	ticking  bool

	picked  string
	lastErr error
	trace   []string
}

var _ ports.Renderer = (*session)(nil)

// Mount makes the menu measurable. Its rect is the rendered block size; the
// engine only reads the dimensions of the overlay element.
func (s *session) Mount() {
	s.mounted = true
	s.registry.Set(overlayHandle, func() (geometry.Rect, bool) {
		w, h := s.menu.Size(s.render)
		return geometry.Rect{Width: float64(w), Height: float64(h)}, true
	})
}

// Unmount removes the menu from the registry so stale sizes are never read.
func (s *session) Unmount() {
	s.mounted = false
	s.registry.Remove(overlayHandle)
}

// Render stores the snapshot; the next View paints it.
func (s *session) Render(snapshot domain.Snapshot) {
	s.snapshot = snapshot
}

func (s *session) triggerRect() (geometry.Rect, bool) {
	w, h := s.button.Size(s.render)
	return geometry.Rect{
		X:      float64(s.triggerX),
		Y:      float64(s.triggerY),
		Width:  float64(w),
		Height: float64(h),
	}, true
}

// overlayRect is where the menu is painted, or false when nothing is.
func (s *session) overlayRect() (geometry.Rect, bool) {
	if !s.snapshot.Painted() {
		return geometry.Rect{}, false
	}
	w, h := s.menu.Size(s.render)
	return geometry.Rect{
		X:      float64(cell(s.snapshot.Position.Left)),
		Y:      float64(cell(s.snapshot.Position.Top)),
		Width:  float64(w),
		Height: float64(h),
	}, true
}

// moveTrigger shifts the trigger, keeping it inside the viewport.
func (s *session) moveTrigger(dx, dy int) {
	vp := s.loop.Viewport()
	w, h := s.button.Size(s.render)
	s.triggerX = clampInt(s.triggerX+dx, 0, int(vp.Width)-w)
	s.triggerY = clampInt(s.triggerY+dy, 1, int(vp.Height)-h)
}

func (s *session) record(entry string) {
	const keep = 6
	s.trace = append(s.trace, entry)
	if len(s.trace) > keep {
		s.trace = s.trace[len(s.trace)-keep:]
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
