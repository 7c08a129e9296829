package playground

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	appoverlay "github.com/alexisbeaulieu97/floatkit/internal/application/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/floatkit/internal/ui/components"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	opts := appoverlay.DefaultOptions()
	opts.ScreenIndent = 1
	opts.MaxOverlayHeight = 10
	opts.EnterDuration = 80 * time.Millisecond
	opts.ExitDuration = 50 * time.Millisecond
	opts.Events = events.NewLoggingPublisher(nil)

	m, err := New(context.Background(), Options{
		Controller:    opts,
		FrameInterval: 10 * time.Millisecond,
		Theme:         components.MonochromeTheme(),
		Width:         80,
		Height:        24,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func settle(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; i < 200 && !m.s.loop.Idle(); i++ {
		m = send(t, m, frameMsg{})
	}
	require.True(t, m.s.loop.Idle(), "frame loop never went idle")
	return m
}

func press(t *testing.T, m Model, k tea.KeyType) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: k})
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func click(t *testing.T, m Model, x, y int) Model {
	t.Helper()
	return send(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func openMenu(t *testing.T, m Model) Model {
	t.Helper()
	m = settle(t, press(t, m, tea.KeyEnter))
	require.Equal(t, domain.StateVisible, m.State())
	return m
}

func TestPlaygroundOpenPlacesMenuBelowTrigger(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	require.Equal(t, domain.StateClosed, m.State())
	require.NotContains(t, m.View(), "Paste")

	m = openMenu(t, m)
	snap := m.Snapshot()
	require.True(t, snap.Painted())
	require.Equal(t, geometry.Position{Top: 5, Left: 2}, snap.Position)
	require.Equal(t, 10.0, snap.MaxOverlayHeight)

	view := m.View()
	require.Contains(t, view, "› Cut")
	require.Contains(t, view, "1/12", "twelve items do not fit in ten rows")
	require.Contains(t, view, "visible")
	require.Contains(t, m.Trace(), "measuring→visible")
}

func TestPlaygroundPickWithKeys(t *testing.T) {
	t.Parallel()

	m := openMenu(t, newTestModel(t))
	m = press(t, m, tea.KeyDown)
	m = press(t, m, tea.KeyEnter)
	require.Equal(t, "Copy", m.Picked())
	require.Equal(t, domain.StateClosing, m.State())
	require.True(t, m.Snapshot().IsRendered, "content stays until the exit animation ends")

	m = settle(t, m)
	require.Equal(t, domain.StateClosed, m.State())
	require.NotContains(t, m.View(), "Paste")
	require.Contains(t, m.View(), "picked Copy")
}

func TestPlaygroundFilterRelayouts(t *testing.T) {
	t.Parallel()

	m := openMenu(t, newTestModel(t))
	m = settle(t, typeText(t, m, "pdf"))

	require.Equal(t, domain.StateVisible, m.State())
	view := m.View()
	require.Contains(t, view, "/pdf")
	require.Contains(t, view, "Export as PDF")
	require.NotContains(t, view, "Paste")

	m = press(t, m, tea.KeyBackspace)
	require.Equal(t, "pd", m.s.menu.Filter())

	m = press(t, m, tea.KeyEnter)
	require.Equal(t, "Export as PDF", m.Picked())
}

func TestPlaygroundEscapeDismisses(t *testing.T) {
	t.Parallel()

	m := openMenu(t, newTestModel(t))
	m = settle(t, press(t, m, tea.KeyEsc))
	require.Equal(t, domain.StateClosed, m.State())
	require.Equal(t, []string{"closed→measuring", "measuring→visible", "visible→closing", "closing→closed"}, m.Trace())
}

func TestPlaygroundMouse(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)

	m = settle(t, click(t, m, 3, 3))
	require.Equal(t, domain.StateVisible, m.State(), "clicking the trigger opens")

	// Menu at row 5: border, header, then items from row 7.
	m = settle(t, click(t, m, 4, 8))
	require.Equal(t, "Copy", m.Picked())
	require.Equal(t, domain.StateClosed, m.State())

	m = settle(t, click(t, m, 3, 3))
	m = settle(t, click(t, m, 70, 20))
	require.Equal(t, domain.StateClosed, m.State(), "clicking outside dismisses")
}

func TestPlaygroundFlipsNearBottomEdge(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	for i := 0; i < 30; i++ {
		m = press(t, m, tea.KeyDown)
	}
	require.Equal(t, 19, m.s.triggerY)

	m = openMenu(t, m)
	require.Equal(t, geometry.Position{Top: 9, Left: 2}, m.Snapshot().Position)
}

func TestPlaygroundSideToggle(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = openMenu(t, m)
	require.Equal(t, 2.0, m.Snapshot().Position.Top)
	require.True(t, strings.Contains(m.View(), "side top"))
}

func TestPlaygroundResizeRelayouts(t *testing.T) {
	t.Parallel()

	m := openMenu(t, newTestModel(t))
	m = settle(t, send(t, m, tea.WindowSizeMsg{Width: 15, Height: 24}))
	require.Equal(t, domain.StateVisible, m.State())
	require.Equal(t, 1.0, m.Snapshot().Position.Left)

	for _, line := range strings.Split(m.View(), "\n")[:22] {
		w, _ := components.Size(line)
		require.LessOrEqual(t, w, 15)
	}
}

func TestPlaygroundQuitDisposes(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.ErrorIs(t, next.(Model).ctl.Open(), domain.ErrDisposed)
}
