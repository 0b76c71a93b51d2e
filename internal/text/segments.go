// internal/text/segments.go
package text

import (
	"math"
	"sort"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// Segment is a horizontal span available for text on one line.
type Segment struct {
	X, Width float32
}

func (s Segment) End() float32 { return s.X + s.Width }

// ShapeBounds returns the vertical extent of shape inside a reference box.
func ShapeBounds(shape css.Shape, ref geom.LogicalSize) (top, bottom float32) {
	switch shape.Kind {
	case css.ShapeCircle, css.ShapeEllipse:
		ry := shape.RadiusY
		if shape.Kind == css.ShapeCircle {
			ry = shape.RadiusX
		}
		return shape.Center.Y - ry, shape.Center.Y + ry
	case css.ShapePolygon:
		if len(shape.Points) == 0 {
			return 0, 0
		}
		top, bottom = shape.Points[0].Y, shape.Points[0].Y
		for _, p := range shape.Points[1:] {
			top, bottom = min(top, p.Y), max(bottom, p.Y)
		}
		return top, bottom
	case css.ShapeInset:
		return shape.Top, ref.Height - shape.Bottom
	}
	return 0, ref.Height
}

// ShapeSegments returns the spans of the band [top, bottom) that lie inside
// shape. A span must be inside the shape over the whole band height.
func ShapeSegments(shape css.Shape, ref geom.LogicalSize, top, bottom float32) []Segment {
	sTop, sBottom := ShapeBounds(shape, ref)
	if top < sTop || bottom > sBottom {
		return nil
	}
	probes := []float32{top, (top + bottom) / 2, max(top, bottom-1e-3)}
	var result []Segment
	for i, y := range probes {
		spans := scanline(shape, ref, y)
		if i == 0 {
			result = spans
			continue
		}
		result = intersectSegments(result, spans)
		if len(result) == 0 {
			return nil
		}
	}
	return result
}

func scanline(shape css.Shape, ref geom.LogicalSize, y float32) []Segment {
	switch shape.Kind {
	case css.ShapeCircle, css.ShapeEllipse:
		rx, ry := shape.RadiusX, shape.RadiusY
		if shape.Kind == css.ShapeCircle {
			ry = rx
		}
		if ry <= 0 {
			return nil
		}
		dy := (y - shape.Center.Y) / ry
		if dy*dy > 1 {
			return nil
		}
		half := rx * float32(math.Sqrt(float64(1-dy*dy)))
		return []Segment{{X: shape.Center.X - half, Width: 2 * half}}
	case css.ShapePolygon:
		return polygonScanline(shape.Points, y)
	case css.ShapeInset:
		return insetScanline(shape, ref, y)
	}
	return nil
}

// polygonScanline intersects the horizontal line y with the polygon edges
// and pairs the crossings with the even-odd rule.
func polygonScanline(points []css.ShapePoint, y float32) []Segment {
	var xs []float32
	n := len(points)
	for i := 0; i < n; i++ {
		a, b := points[i], points[(i+1)%n]
		if a.Y == b.Y {
			continue
		}
		// Half-open so a vertex shared by two edges counts once.
		if (a.Y <= y && y < b.Y) || (b.Y <= y && y < a.Y) {
			t := (y - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	var out []Segment
	for i := 0; i+1 < len(xs); i += 2 {
		if xs[i+1] > xs[i] {
			out = append(out, Segment{X: xs[i], Width: xs[i+1] - xs[i]})
		}
	}
	return out
}

func insetScanline(shape css.Shape, ref geom.LogicalSize, y float32) []Segment {
	left, right := shape.Left, ref.Width-shape.Right
	top, bottom := shape.Top, ref.Height-shape.Bottom
	if y < top || y > bottom || right <= left {
		return nil
	}
	r := min(shape.Round, (right-left)/2, (bottom-top)/2)
	if r > 0 {
		var dy float32
		switch {
		case y < top+r:
			dy = top + r - y
		case y > bottom-r:
			dy = y - (bottom - r)
		}
		if dy > 0 {
			inset := r - float32(math.Sqrt(float64(r*r-dy*dy)))
			left += inset
			right -= inset
		}
	}
	return []Segment{{X: left, Width: right - left}}
}

func intersectSegments(a, b []Segment) []Segment {
	var out []Segment
	for _, s := range a {
		for _, t := range b {
			x0, x1 := max(s.X, t.X), min(s.End(), t.End())
			if x1 > x0 {
				out = append(out, Segment{X: x0, Width: x1 - x0})
			}
		}
	}
	return out
}
