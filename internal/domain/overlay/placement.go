package overlay

import (
	"math"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
)

// DefaultScreenIndent is the minimum distance kept from every viewport edge
// when the caller does not configure one.
const DefaultScreenIndent = 8.0

// PlacementInput gathers everything Place needs.
type PlacementInput struct {
	Trigger      geometry.Rect
	Overlay      geometry.Rect
	Viewport     geometry.Viewport
	Side         geometry.Side
	ScreenIndent float64
}

// Place computes the overlay's top-left corner. It is a single pass:
// horizontal is resolved before vertical, and only a vertical flip is
// attempted on collision.
func Place(in PlacementInput) geometry.Position {
	indent := in.ScreenIndent
	vp := in.Viewport
	trigger := in.Trigger
	ow, oh := in.Overlay.Width, in.Overlay.Height

	left := trigger.X
	top := trigger.Y
	if in.Side == geometry.SideBottom {
		top = trigger.Bottom()
	}

	if geometry.OverflowsRight(geometry.Rect{X: left, Width: ow}, vp, indent) {
		left = math.Max(indent, vp.Width-ow-indent)
	}
	if left < indent {
		left = indent
	}

	if geometry.OverflowsBottom(geometry.Rect{Y: top, Height: oh}, vp, indent) {
		top = math.Max(indent, trigger.Y-oh)
	}
	if top < indent {
		top = indent
	}

	return geometry.Position{Top: top, Left: left}
}
