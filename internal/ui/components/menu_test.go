package components

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func plainContext() RenderContext {
	return DefaultContext().WithTheme(MonochromeTheme())
}

func TestMenuRendersItemsInBox(t *testing.T) {
	t.Parallel()

	menu := NewMenu("Apple", "Banana", "Cherry").WithTitle("Fruit")
	view := menu.ViewWithContext(plainContext())

	require.Contains(t, view, "Fruit")
	require.Contains(t, view, "› Apple")
	require.Contains(t, view, "  Banana")

	w, h := menu.Size(plainContext())
	require.Equal(t, 12, w)
	require.Equal(t, 6, h)
}

func TestMenuFilter(t *testing.T) {
	t.Parallel()

	menu := NewMenu("Apple", "Banana", "Cherry")
	menu.SetFilter("an")
	require.Equal(t, []string{"Banana"}, menu.Visible())
	require.Contains(t, menu.ViewWithContext(plainContext()), "/an")

	selected, ok := menu.Selected()
	require.True(t, ok)
	require.Equal(t, "Banana", selected)

	menu.SetFilter("zzz")
	require.Empty(t, menu.Visible())
	_, ok = menu.Selected()
	require.False(t, ok)
	require.Contains(t, menu.ViewWithContext(plainContext()), "no matches")
	w, h := menu.Size(plainContext())
	require.Equal(t, 16, w, "box grows to fit the placeholder")
	require.Equal(t, 4, h)

	menu.SetFilter("")
	require.Equal(t, []string{"Apple", "Banana", "Cherry"}, menu.Visible())
	require.Equal(t, menu.Items(), menu.Visible())
}

func TestMenuScrollWindow(t *testing.T) {
	t.Parallel()

	items := make([]string, 10)
	for i := range items {
		items[i] = fmt.Sprintf("item %d", i)
	}
	menu := NewMenu(items...).WithMaxHeight(7)

	_, h := menu.Size(plainContext())
	require.Equal(t, 7, h)

	for i := 0; i < 4; i++ {
		menu.MoveDown()
	}
	require.Equal(t, 4, menu.Cursor())
	require.Equal(t, 2, menu.Offset())

	view := menu.ViewWithContext(plainContext())
	require.Contains(t, view, "5/10")
	require.NotContains(t, view, "item 1 ")
	require.Contains(t, view, "› item 4")

	pos, ok := menu.ItemAtLine(2)
	require.True(t, ok)
	require.Equal(t, 2, pos)
	_, ok = menu.ItemAtLine(5)
	require.False(t, ok, "footer line is not an item")
	_, ok = menu.ItemAtLine(0)
	require.False(t, ok)

	for i := 0; i < 20; i++ {
		menu.MoveDown()
	}
	require.Equal(t, 9, menu.Cursor())
	require.Equal(t, 7, menu.Offset())

	for i := 0; i < 20; i++ {
		menu.MoveUp()
	}
	require.Equal(t, 0, menu.Cursor())
	require.Equal(t, 0, menu.Offset())
}

func TestMenuSelect(t *testing.T) {
	t.Parallel()

	menu := NewMenu("a", "b", "c")
	require.True(t, menu.Select(2))
	selected, _ := menu.Selected()
	require.Equal(t, "c", selected)
	require.False(t, menu.Select(3))
	require.False(t, menu.Select(-1))
}

func TestMenuTruncatesWideItems(t *testing.T) {
	t.Parallel()

	menu := NewMenu("Supercalifragilistic").WithWidth(6)
	view := menu.ViewWithContext(plainContext())
	require.Contains(t, view, "…")

	for _, line := range strings.Split(view, "\n") {
		w, _ := Size(line)
		require.Equal(t, 10, w)
	}
}
