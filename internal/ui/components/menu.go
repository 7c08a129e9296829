package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// Top border, header line, bottom border.
const menuChrome = 3

const (
	selectedMarker = "› "
	idleMarker     = "  "
	ellipsis       = "…"
	noMatches      = idleMarker + "no matches"
)

// Menu is a boxed item list with a filter line and a scroll window. When
// more items match than fit in the height limit, a footer shows the cursor
// position and the window follows the cursor.
type Menu struct {
	BaseComponent
	title     string
	items     []string
	visible   []int
	filter    string
	cursor    int
	offset    int
	maxHeight int
	width     int
}

// NewMenu creates a menu over the given items with no height limit.
func NewMenu(items ...string) *Menu {
	m := &Menu{BaseComponent: NewBaseComponent()}
	m.SetItems(items)
	return m
}

// WithTitle sets the header shown while no filter is typed.
func (m *Menu) WithTitle(title string) *Menu {
	m.title = title
	return m
}

// WithMaxHeight limits the rendered height in cells, borders included.
// Zero means unlimited.
func (m *Menu) WithMaxHeight(height int) *Menu {
	if height < 0 {
		height = 0
	}
	m.maxHeight = height
	m.clampWindow()
	return m
}

// WithWidth fixes the content width in cells. Zero sizes to the widest item.
func (m *Menu) WithWidth(width int) *Menu {
	if width < 0 {
		width = 0
	}
	m.width = width
	return m
}

// WithAppliers applies theme-based style modifiers to the box.
func (m *Menu) WithAppliers(appliers ...StyleFunc) *Menu {
	m.AddAppliers(appliers...)
	return m
}

// SetItems replaces the items and reapplies the current filter.
func (m *Menu) SetItems(items []string) {
	m.items = append([]string(nil), items...)
	m.SetFilter(m.filter)
}

// Items returns all items regardless of the filter.
func (m *Menu) Items() []string {
	return append([]string(nil), m.items...)
}

// SetFilter fuzzy-filters the items. Matches are ordered best first; an
// empty query shows every item in its original order. The cursor returns to
// the first row.
func (m *Menu) SetFilter(query string) {
	m.filter = query
	m.cursor = 0
	m.offset = 0

	if query == "" {
		m.visible = make([]int, len(m.items))
		for i := range m.items {
			m.visible[i] = i
		}
		return
	}

	matches := fuzzy.Find(query, m.items)
	m.visible = make([]int, len(matches))
	for i, match := range matches {
		m.visible[i] = match.Index
	}
}

// Filter returns the current query.
func (m *Menu) Filter() string {
	return m.filter
}

// Visible returns the items that pass the filter, in display order.
func (m *Menu) Visible() []string {
	out := make([]string, len(m.visible))
	for i, idx := range m.visible {
		out[i] = m.items[idx]
	}
	return out
}

// Cursor returns the cursor position within Visible.
func (m *Menu) Cursor() int {
	return m.cursor
}

// Offset returns the first visible row of the scroll window.
func (m *Menu) Offset() int {
	return m.offset
}

// Selected returns the item under the cursor.
func (m *Menu) Selected() (string, bool) {
	if len(m.visible) == 0 {
		return "", false
	}
	return m.items[m.visible[m.cursor]], true
}

// MoveUp moves the cursor one row up, scrolling if needed.
func (m *Menu) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
	m.clampWindow()
}

// MoveDown moves the cursor one row down, scrolling if needed.
func (m *Menu) MoveDown() {
	if m.cursor < len(m.visible)-1 {
		m.cursor++
	}
	m.clampWindow()
}

// ItemAtLine maps a line of the rendered block (0 is the top border) to a
// position in Visible.
func (m *Menu) ItemAtLine(line int) (int, bool) {
	rows, _ := m.windowRows()
	row := line - 2
	if row < 0 || row >= rows {
		return 0, false
	}
	pos := m.offset + row
	if pos >= len(m.visible) {
		return 0, false
	}
	return pos, true
}

// Select moves the cursor to a position in Visible.
func (m *Menu) Select(pos int) bool {
	if pos < 0 || pos >= len(m.visible) {
		return false
	}
	m.cursor = pos
	m.clampWindow()
	return true
}

// View renders the menu.
func (m *Menu) View() string {
	return m.ViewWithContext(DefaultContext())
}

// ViewWithContext renders the menu with the given theme context.
func (m *Menu) ViewWithContext(ctx RenderContext) string {
	theme := ctx.Theme
	width := m.contentWidth()
	rows, footer := m.windowRows()

	headerStyle := Foreground(PaletteMuted)(lipgloss.NewStyle(), theme)
	selectedStyle := Bold()(Foreground(PaletteAccent)(lipgloss.NewStyle(), theme), theme)
	itemStyle := Foreground(PaletteText)(lipgloss.NewStyle(), theme)

	lines := make([]string, 0, rows+2)
	lines = append(lines, headerStyle.Render(fit(m.header(), width)))

	if len(m.visible) == 0 {
		lines = append(lines, headerStyle.Render(fit(noMatches, width)))
	}
	for i := m.offset; i < m.offset+rows && i < len(m.visible); i++ {
		label := m.items[m.visible[i]]
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render(fit(selectedMarker+label, width)))
			continue
		}
		lines = append(lines, itemStyle.Render(fit(idleMarker+label, width)))
	}

	if footer {
		status := fmt.Sprintf("%d/%d", m.cursor+1, len(m.visible))
		lines = append(lines, headerStyle.Render(fit(strings.Repeat(" ", max(0, width-len(status)))+status, width)))
	}

	box := Bordered()(m.ComputeStyle(theme), theme).Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

// Size returns the rendered width and height in cells.
func (m *Menu) Size(ctx RenderContext) (int, int) {
	return Size(m.ViewWithContext(ctx))
}

func (m *Menu) header() string {
	if m.filter != "" {
		return "/" + m.filter
	}
	if m.title != "" {
		return m.title
	}
	return "/"
}

func (m *Menu) contentWidth() int {
	if m.width > 0 {
		return m.width
	}
	width := runewidth.StringWidth(m.header())
	if len(m.visible) == 0 {
		width = max(width, runewidth.StringWidth(noMatches))
	}
	for _, item := range m.items {
		if w := runewidth.StringWidth(selectedMarker + item); w > width {
			width = w
		}
	}
	return width
}

// windowRows returns how many item rows are drawn and whether the footer is.
func (m *Menu) windowRows() (int, bool) {
	n := len(m.visible)
	if n == 0 {
		return 0, false
	}
	if m.maxHeight <= 0 || n+menuChrome <= m.maxHeight {
		return n, false
	}
	rows := m.maxHeight - menuChrome - 1
	if rows < 1 {
		rows = 1
	}
	return rows, true
}

func (m *Menu) clampWindow() {
	if len(m.visible) == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	rows, _ := m.windowRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset > len(m.visible)-rows {
		m.offset = max(0, len(m.visible)-rows)
	}
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	return runewidth.FillRight(s, width)
}
