package playground

import (
	"fmt"
	"strings"

	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
)

// View renders the canvas with the trigger, the overlay when painted, a
// status line and the key help.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	vp := m.s.loop.Viewport()
	canvas := make([]string, int(vp.Height))
	if len(canvas) > 0 {
		canvas[0] = titleStyle.Render("floatkit playground")
	}

	m.s.button.WithActive(isOpen(m.ctl.State()))
	splice(canvas, m.s.button.ViewWithContext(m.s.render), m.s.triggerX, m.s.triggerY)

	if rect, ok := m.s.overlayRect(); ok {
		trigger, _ := m.s.triggerRect()
		block, offset := reveal(m.s.menu.ViewWithContext(m.s.render), m.progress(), rect.Y < trigger.Y)
		splice(canvas, block, int(rect.X), int(rect.Y)+offset)
	}
	clip(canvas, m.width)

	var b strings.Builder
	b.WriteString(strings.Join(canvas, "\n"))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// progress is the share of the menu drawn. Entering and exiting follow the
// tween; the visible phase always shows everything.
func (m Model) progress() float64 {
	snap := m.s.snapshot
	if snap.Phase == domain.PhaseVisible {
		return 1
	}
	return snap.Progress
}

func (m Model) renderStatus() string {
	if m.s.lastErr != nil {
		return errorStyle.Render("error: " + m.s.lastErr.Error())
	}

	state := m.ctl.State()
	parts := []string{state.String()}
	if state == domain.StateMeasuring {
		parts[0] = m.spinner.View() + " " + parts[0]
	}
	parts = append(parts, "side "+m.s.side.String())
	if snap := m.s.snapshot; snap.HasPosition {
		parts = append(parts, fmt.Sprintf("at %d,%d", cell(snap.Position.Left), cell(snap.Position.Top)))
	}
	if m.s.picked != "" {
		parts = append(parts, "picked "+m.s.picked)
	}
	if len(m.s.trace) > 0 {
		parts = append(parts, strings.Join(m.s.trace, " "))
	}
	return statusStyle.Render(strings.Join(parts, " · "))
}
