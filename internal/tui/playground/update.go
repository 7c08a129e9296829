package playground

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
)

// Update handles incoming messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.s.loop.SetViewport(viewportFor(msg.Width, msg.Height))
		m.s.moveTrigger(0, 0)
		m.relayout()
		return m, m.tick()

	case frameMsg:
		m.s.ticking = false
		m.s.loop.Advance()
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}

	if isOpen(m.ctl.State()) {
		return m.handleOpenKeys(msg)
	}
	return m.handleClosedKeys(msg)
}

// isOpen reports whether the caller's open flag is set in this state.
func isOpen(state domain.State) bool {
	return state == domain.StateMeasuring || state == domain.StateVisible
}

// handleClosedKeys handles keys while no menu is shown or it is animating out.
func (m Model) handleClosedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Open):
		m.open()

	case key.Matches(msg, m.keys.Side):
		m.flipSide()

	case key.Matches(msg, m.keys.Up):
		m.s.moveTrigger(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.s.moveTrigger(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.s.moveTrigger(-2, 0)
	case key.Matches(msg, m.keys.Right):
		m.s.moveTrigger(2, 0)
	}

	return m, m.tick()
}

// handleOpenKeys routes navigation to the menu and printable input to its
// filter.
func (m Model) handleOpenKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Dismiss):
		m.ctl.RequestDismiss()
	case msg.Type == tea.KeyEnter:
		m.pick()
	case msg.Type == tea.KeyUp:
		m.s.menu.MoveUp()
	case msg.Type == tea.KeyDown:
		m.s.menu.MoveDown()
	case key.Matches(msg, m.keys.Erase):
		if f := []rune(m.s.menu.Filter()); len(f) > 0 {
			m.s.menu.SetFilter(string(f[:len(f)-1]))
			m.relayout()
		}
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		m.s.menu.SetFilter(m.s.menu.Filter() + string(msg.Runes))
		m.relayout()
	}

	return m, m.tick()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	x, y := float64(msg.X), float64(msg.Y)

	if rect, ok := m.s.overlayRect(); ok && rect.Contains(x, y) {
		if pos, ok := m.s.menu.ItemAtLine(msg.Y - int(rect.Y)); ok {
			m.s.menu.Select(pos)
			m.pick()
		}
		return m, m.tick()
	}

	if rect, _ := m.s.triggerRect(); rect.Contains(x, y) {
		if isOpen(m.ctl.State()) {
			_ = m.ctl.Close()
		} else {
			m.open()
		}
		return m, m.tick()
	}

	m.ctl.RequestDismiss()
	return m, m.tick()
}

func (m Model) open() {
	m.s.lastErr = nil
	m.s.menu.SetFilter("")
	if err := m.ctl.Open(); err != nil {
		m.s.lastErr = err
	}
}

func (m Model) pick() {
	if item, ok := m.s.menu.Selected(); ok {
		m.s.picked = item
	}
	_ = m.ctl.Close()
}

// flipSide changes the preferred side for the next cycle.
func (m Model) flipSide() {
	if m.s.side == geometry.SideTop {
		m.s.side = geometry.SideBottom
	} else {
		m.s.side = geometry.SideTop
	}
	m.ctl.SetSide(m.s.side)
}

func (m Model) relayout() {
	if err := m.ctl.Relayout(); err != nil && !errors.Is(err, domain.ErrDisposed) {
		m.s.lastErr = err
	}
}
