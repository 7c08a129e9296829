package playground

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// splice draws block over canvas with its top-left cell at (x, y). Rows and
// columns falling outside the canvas are dropped; background cells left and
// right of the block are kept, escape sequences included.
func splice(canvas []string, block string, x, y int) {
	if block == "" {
		return
	}
	for i, line := range strings.Split(block, "\n") {
		row := y + i
		if row < 0 || row >= len(canvas) {
			continue
		}

		col := x
		if col < 0 {
			line = ansi.TruncateLeft(line, -col, "")
			col = 0
		}

		bg := canvas[row]
		prefix := ansi.Truncate(bg, col, "")
		if w := ansi.StringWidth(prefix); w < col {
			prefix += strings.Repeat(" ", col-w)
		}
		suffix := ansi.TruncateLeft(bg, col+ansi.StringWidth(line), "")

		canvas[row] = prefix + line + suffix
	}
}

// clip truncates every row to width cells.
func clip(canvas []string, width int) {
	for i, line := range canvas {
		if ansi.StringWidth(line) > width {
			canvas[i] = ansi.Truncate(line, width, "")
		}
	}
}

// reveal returns the rows of block shown at the given animation progress and
// the row offset they are drawn at. Overlays above their trigger grow upward,
// so the rows closest to the trigger appear first.
func reveal(block string, progress float64, upward bool) (string, int) {
	lines := strings.Split(block, "\n")
	total := len(lines)

	shown := int(math.Ceil(progress * float64(total)))
	switch {
	case shown <= 0:
		return "", 0
	case shown >= total:
		return block, 0
	}

	if upward {
		return strings.Join(lines[total-shown:], "\n"), total - shown
	}
	return strings.Join(lines[:shown], "\n"), 0
}

func cell(v float64) int {
	return int(math.Round(v))
}
