// internal/geom/geom.go
package geom

import "fmt"

// Axis represents the primary layout direction.
type Axis int

const (
	// Horizontal axis for layout calculations.
	Horizontal Axis = iota
	// Vertical axis for layout calculations.
	Vertical
)

// Cross returns the perpendicular axis.
func (a Axis) Cross() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

// LogicalPosition is a point in logical (DPI-independent) pixels.
type LogicalPosition struct {
	X, Y float32
}

// ToPhysical scales p to device pixels.
func (p LogicalPosition) ToPhysical(hidpi float32) PhysicalPosition {
	return PhysicalPosition{X: p.X * hidpi, Y: p.Y * hidpi}
}

// PhysicalPosition is a point in device pixels.
type PhysicalPosition struct {
	X, Y float32
}

// ToLogical divides p by the HiDPI factor. A non-positive factor is
// treated as 1.
func (p PhysicalPosition) ToLogical(hidpi float32) LogicalPosition {
	if hidpi <= 0 {
		hidpi = 1
	}
	return LogicalPosition{X: p.X / hidpi, Y: p.Y / hidpi}
}

func (p LogicalPosition) Add(o LogicalPosition) LogicalPosition {
	return LogicalPosition{X: p.X + o.X, Y: p.Y + o.Y}
}

func (p LogicalPosition) Sub(o LogicalPosition) LogicalPosition {
	return LogicalPosition{X: p.X - o.X, Y: p.Y - o.Y}
}

// Main returns the coordinate on the given axis.
func (p LogicalPosition) Main(axis Axis) float32 {
	if axis == Horizontal {
		return p.X
	}
	return p.Y
}

func (p LogicalPosition) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// LogicalSize is a width and height in logical pixels.
type LogicalSize struct {
	Width, Height float32
}

// Main returns the size on the given axis.
func (s LogicalSize) Main(axis Axis) float32 {
	if axis == Horizontal {
		return s.Width
	}
	return s.Height
}

// Cross returns the size perpendicular to the given axis.
func (s LogicalSize) Cross(axis Axis) float32 { return s.Main(axis.Cross()) }

// SetMain sets the size on the given axis.
func (s *LogicalSize) SetMain(axis Axis, v float32) {
	if axis == Horizontal {
		s.Width = v
	} else {
		s.Height = v
	}
}

// SetCross sets the size perpendicular to the given axis.
func (s *LogicalSize) SetCross(axis Axis, v float32) { s.SetMain(axis.Cross(), v) }

func (s LogicalSize) String() string { return fmt.Sprintf("%gx%g", s.Width, s.Height) }

// LogicalRect is an origin plus a size.
type LogicalRect struct {
	Origin LogicalPosition
	Size   LogicalSize
}

// Rect builds a rectangle from its components.
func Rect(x, y, w, h float32) LogicalRect {
	return LogicalRect{Origin: LogicalPosition{X: x, Y: y}, Size: LogicalSize{Width: w, Height: h}}
}

func (r LogicalRect) MaxX() float32 { return r.Origin.X + r.Size.Width }
func (r LogicalRect) MaxY() float32 { return r.Origin.Y + r.Size.Height }

// Contains reports whether p lies inside r. The right and bottom edges are exclusive.
func (r LogicalRect) Contains(p LogicalPosition) bool {
	return p.X >= r.Origin.X && p.X < r.MaxX() && p.Y >= r.Origin.Y && p.Y < r.MaxY()
}

// Intersect returns the overlap of two rectangles and whether it is non-empty.
func (r LogicalRect) Intersect(o LogicalRect) (LogicalRect, bool) {
	x0, y0 := max(r.Origin.X, o.Origin.X), max(r.Origin.Y, o.Origin.Y)
	x1, y1 := min(r.MaxX(), o.MaxX()), min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return LogicalRect{}, false
	}
	return Rect(x0, y0, x1-x0, y1-y0), true
}

// Union returns the smallest rectangle containing both.
func (r LogicalRect) Union(o LogicalRect) LogicalRect {
	if r.Size == (LogicalSize{}) {
		return o
	}
	if o.Size == (LogicalSize{}) {
		return r
	}
	x0, y0 := min(r.Origin.X, o.Origin.X), min(r.Origin.Y, o.Origin.Y)
	x1, y1 := max(r.MaxX(), o.MaxX()), max(r.MaxY(), o.MaxY())
	return Rect(x0, y0, x1-x0, y1-y0)
}

// Translate offsets the rectangle.
func (r LogicalRect) Translate(d LogicalPosition) LogicalRect {
	r.Origin = r.Origin.Add(d)
	return r
}

// ExpandedBy returns a new rectangle expanded by the edge sizes.
func (r LogicalRect) ExpandedBy(e Edges) LogicalRect {
	return Rect(r.Origin.X-e.Left, r.Origin.Y-e.Top, r.Size.Width+e.Left+e.Right, r.Size.Height+e.Top+e.Bottom)
}

// ShrunkBy is the inverse of ExpandedBy; sizes do not go below zero.
func (r LogicalRect) ShrunkBy(e Edges) LogicalRect {
	return Rect(r.Origin.X+e.Left, r.Origin.Y+e.Top,
		max(0, r.Size.Width-e.Left-e.Right), max(0, r.Size.Height-e.Top-e.Bottom))
}

func (r LogicalRect) String() string { return fmt.Sprintf("%s@%s", r.Size, r.Origin) }

// Edges holds one value per box side.
type Edges struct {
	Top, Right, Bottom, Left float32
}

// Horizontal returns left + right.
func (e Edges) Horizontal() float32 { return e.Left + e.Right }

// Vertical returns top + bottom.
func (e Edges) Vertical() float32 { return e.Top + e.Bottom }

// Sum returns the total on the given axis.
func (e Edges) Sum(axis Axis) float32 {
	if axis == Horizontal {
		return e.Horizontal()
	}
	return e.Vertical()
}

// MainStart is an axis-agnostic helper for Edges.
func (e Edges) MainStart(axis Axis) float32 {
	if axis == Horizontal {
		return e.Left
	}
	return e.Top
}

// MainEnd is an axis-agnostic helper for Edges.
func (e Edges) MainEnd(axis Axis) float32 {
	if axis == Horizontal {
		return e.Right
	}
	return e.Bottom
}

// Add sums two edge sets.
func (e Edges) Add(o Edges) Edges {
	return Edges{Top: e.Top + o.Top, Right: e.Right + o.Right, Bottom: e.Bottom + o.Bottom, Left: e.Left + o.Left}
}
