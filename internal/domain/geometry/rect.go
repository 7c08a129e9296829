package geometry

// Rect is an axis-aligned bounding box in screen coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Offset is a translation delta.
type Offset struct {
	DX float64
	DY float64
}

// Viewport is the visible area available for placement.
type Viewport struct {
	Width  float64
	Height float64
}

// Position is the top-left placement of an overlay, in the same coordinate
// space as Rect.
type Position struct {
	Top  float64
	Left float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Translate returns the rect moved by the offset.
func (r Rect) Translate(o Offset) Rect {
	r.X += o.DX
	r.Y += o.DY
	return r
}

// Contains reports whether the point lies inside the rect. The right and
// bottom edges are exclusive, matching cell addressing on a grid.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// At returns a rect of the given size anchored at the position.
func (p Position) At(width, height float64) Rect {
	return Rect{X: p.Left, Y: p.Top, Width: width, Height: height}
}

// Valid reports whether both dimensions are positive.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// IsMeasured reports whether the rect carries a usable size. A zero width or
// height means the element has not been laid out yet.
func IsMeasured(r Rect) bool {
	return r.Width > 0 && r.Height > 0
}

// Intersects reports whether two rects overlap by a non-empty area.
func Intersects(a, b Rect) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
}

// OverflowsRight reports whether the rect's right edge passes the viewport
// width minus the indent.
func OverflowsRight(r Rect, vp Viewport, indent float64) bool {
	return r.Right() > vp.Width-indent
}

// OverflowsBottom reports whether the rect's bottom edge passes the viewport
// height minus the indent.
func OverflowsBottom(r Rect, vp Viewport, indent float64) bool {
	return r.Bottom() > vp.Height-indent
}
