// internal/css/shape.go
package css

import (
	"fmt"
	"math"
	"strings"
)

// ShapeKind selects the geometry of a Shape.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeEllipse
	ShapePolygon
	ShapeInset
)

// ShapePoint is a point in the coordinate space of the element's border box.
type ShapePoint struct {
	X, Y float32
}

// Shape is a basic shape used by shape-inside, shape-outside and clip-path.
// All coordinates are in pixels relative to the reference box origin.
type Shape struct {
	Kind ShapeKind
	// Circle and ellipse.
	Center  ShapePoint
	RadiusX float32
	RadiusY float32
	// Polygon vertices, in order.
	Points []ShapePoint
	// Inset offsets and corner radius.
	Top, Right, Bottom, Left float32
	Round                    float32
}

// ParseShape parses circle(), ellipse(), polygon() and inset() in pixel units.
func ParseShape(value string) (Shape, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	open := strings.IndexByte(value, '(')
	if open < 0 || !strings.HasSuffix(value, ")") {
		return Shape{}, fmt.Errorf("%w: shape %q", ErrInvalidValue, value)
	}
	name := strings.TrimSpace(value[:open])
	body := value[open+1 : len(value)-1]

	px := func(s string) (float32, error) {
		p, err := ParsePixelValue(s)
		if err != nil {
			return 0, err
		}
		if !p.IsAbsolute() {
			return 0, fmt.Errorf("%w: shape lengths must be absolute, got %q", ErrInvalidValue, s)
		}
		return p.ToPixels(DefaultResolutionContext, 0), nil
	}
	center := func(at string) (ShapePoint, error) {
		f := strings.Fields(at)
		if len(f) != 2 {
			return ShapePoint{}, fmt.Errorf("%w: shape center %q", ErrInvalidValue, at)
		}
		x, err := px(f[0])
		if err != nil {
			return ShapePoint{}, err
		}
		y, err := px(f[1])
		if err != nil {
			return ShapePoint{}, err
		}
		return ShapePoint{X: x, Y: y}, nil
	}

	switch name {
	case "circle", "ellipse":
		radii, at, _ := strings.Cut(body, " at ")
		s := Shape{Kind: ShapeCircle}
		c, err := center(at)
		if err != nil {
			return Shape{}, err
		}
		s.Center = c
		r := strings.Fields(radii)
		if name == "circle" {
			if len(r) != 1 {
				return Shape{}, fmt.Errorf("%w: circle radius %q", ErrInvalidValue, radii)
			}
			if s.RadiusX, err = px(r[0]); err != nil {
				return Shape{}, err
			}
			s.RadiusY = s.RadiusX
			return s, nil
		}
		if len(r) != 2 {
			return Shape{}, fmt.Errorf("%w: ellipse radii %q", ErrInvalidValue, radii)
		}
		s.Kind = ShapeEllipse
		if s.RadiusX, err = px(r[0]); err != nil {
			return Shape{}, err
		}
		if s.RadiusY, err = px(r[1]); err != nil {
			return Shape{}, err
		}
		return s, nil
	case "polygon":
		s := Shape{Kind: ShapePolygon}
		for _, pair := range strings.Split(body, ",") {
			f := strings.Fields(pair)
			if len(f) != 2 {
				return Shape{}, fmt.Errorf("%w: polygon point %q", ErrInvalidValue, pair)
			}
			x, err := px(f[0])
			if err != nil {
				return Shape{}, err
			}
			y, err := px(f[1])
			if err != nil {
				return Shape{}, err
			}
			s.Points = append(s.Points, ShapePoint{X: x, Y: y})
		}
		if len(s.Points) < 3 {
			return Shape{}, fmt.Errorf("%w: polygon needs at least 3 points", ErrInvalidValue)
		}
		return s, nil
	case "inset":
		offsets, round, hasRound := strings.Cut(body, " round ")
		f := strings.Fields(offsets)
		if len(f) == 0 || len(f) > 4 {
			return Shape{}, fmt.Errorf("%w: inset %q", ErrInvalidValue, body)
		}
		vals := make([]float32, len(f))
		for i := range f {
			v, err := px(f[i])
			if err != nil {
				return Shape{}, err
			}
			vals[i] = v
		}
		t, r, b, l := expandBox(vals)
		s := Shape{Kind: ShapeInset, Top: t, Right: r, Bottom: b, Left: l}
		if hasRound {
			v, err := px(round)
			if err != nil {
				return Shape{}, err
			}
			s.Round = v
		}
		return s, nil
	}
	return Shape{}, fmt.Errorf("%w: unknown shape %q", ErrInvalidValue, name)
}

// Contains reports whether (x, y), relative to the reference box origin,
// lies inside the shape. width and height size the reference box for inset().
func (s Shape) Contains(x, y, width, height float32) bool {
	switch s.Kind {
	case ShapeCircle, ShapeEllipse:
		if s.RadiusX <= 0 || s.RadiusY <= 0 {
			return false
		}
		dx := (x - s.Center.X) / s.RadiusX
		dy := (y - s.Center.Y) / s.RadiusY
		return dx*dx+dy*dy <= 1
	case ShapePolygon:
		inside := false
		for i, j := 0, len(s.Points)-1; i < len(s.Points); j, i = i, i+1 {
			a, b := s.Points[i], s.Points[j]
			if (a.Y > y) != (b.Y > y) && x < (b.X-a.X)*(y-a.Y)/(b.Y-a.Y)+a.X {
				inside = !inside
			}
		}
		return inside
	case ShapeInset:
		left, top := s.Left, s.Top
		right, bottom := width-s.Right, height-s.Bottom
		if x < left || x > right || y < top || y > bottom {
			return false
		}
		return insideRoundedCorner(x, y, left, top, right, bottom, s.Round)
	}
	return false
}

// insideRoundedCorner tests the corner squares of a rectangle with a
// uniform radius r.
func insideRoundedCorner(x, y, left, top, right, bottom, r float32) bool {
	if r <= 0 {
		return true
	}
	var cx, cy float32
	switch {
	case x < left+r && y < top+r:
		cx, cy = left+r, top+r
	case x > right-r && y < top+r:
		cx, cy = right-r, top+r
	case x > right-r && y > bottom-r:
		cx, cy = right-r, bottom-r
	case x < left+r && y > bottom-r:
		cx, cy = left+r, bottom-r
	default:
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

// expandBox applies the 1 to 4 value top/right/bottom/left rule.
func expandBox[T any](v []T) (top, right, bottom, left T) {
	switch len(v) {
	case 1:
		return v[0], v[0], v[0], v[0]
	case 2:
		return v[0], v[1], v[0], v[1]
	case 3:
		return v[0], v[1], v[2], v[1]
	default:
		return v[0], v[1], v[2], v[3]
	}
}

// TransformMatrix represents a 2D affine transformation matrix.
// [ a c e ]
// [ b d f ]
// [ 0 0 1 ]
type TransformMatrix struct {
	A, B, C, D, E, F float32
}

// IdentityMatrix returns the identity matrix (no transformation).
func IdentityMatrix() TransformMatrix {
	return TransformMatrix{A: 1, D: 1}
}

// IsIdentity reports whether the matrix leaves every point unchanged.
func (m TransformMatrix) IsIdentity() bool { return m == IdentityMatrix() }

// Multiply combines two matrices (m1 * m2). Order matters.
func (m1 TransformMatrix) Multiply(m2 TransformMatrix) TransformMatrix {
	return TransformMatrix{
		A: m1.A*m2.A + m1.C*m2.B,
		B: m1.B*m2.A + m1.D*m2.B,
		C: m1.A*m2.C + m1.C*m2.D,
		D: m1.B*m2.C + m1.D*m2.D,
		E: m1.A*m2.E + m1.C*m2.F + m1.E,
		F: m1.B*m2.E + m1.D*m2.F + m1.F,
	}
}

// Apply transforms a point (x, y).
func (m TransformMatrix) Apply(x, y float32) (float32, float32) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// Inverse returns the inverse matrix, or false when the determinant is zero.
func (m TransformMatrix) Inverse() (TransformMatrix, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return TransformMatrix{}, false
	}
	inv := 1 / det
	return TransformMatrix{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}

func TranslateMatrix(tx, ty float32) TransformMatrix {
	return TransformMatrix{A: 1, D: 1, E: tx, F: ty}
}

func ScaleMatrix(sx, sy float32) TransformMatrix {
	return TransformMatrix{A: sx, D: sy}
}

// RotateMatrix creates a rotation matrix. Angle is in radians.
func RotateMatrix(angle float32) TransformMatrix {
	s, c := math.Sincos(float64(angle))
	return TransformMatrix{A: float32(c), B: float32(s), C: float32(-s), D: float32(c)}
}

// SkewMatrix creates a skewing matrix. Angles are in radians.
func SkewMatrix(ax, ay float32) TransformMatrix {
	return TransformMatrix{A: 1, C: float32(math.Tan(float64(ax))), B: float32(math.Tan(float64(ay))), D: 1}
}

// ParseTransform folds a transform function list into one matrix.
// Translations must use absolute units.
func ParseTransform(value string) (TransformMatrix, error) {
	final := IdentityMatrix()
	for _, f := range strings.Split(value, ")") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		name, argsStr, ok := strings.Cut(f, "(")
		if !ok {
			return TransformMatrix{}, fmt.Errorf("%w: transform %q", ErrInvalidValue, f)
		}
		name = strings.TrimSpace(strings.ToLower(name))
		args := strings.Fields(strings.ReplaceAll(argsStr, ",", " "))

		num := func(i int) (float32, error) {
			v, err := ParseFloat(args[i])
			return v.Get(), err
		}
		length := func(i int) (float32, error) {
			p, err := ParsePixelValue(args[i])
			if err != nil {
				return 0, err
			}
			if p.IsPercent() {
				return 0, fmt.Errorf("%w: percentage translate %q", ErrInvalidValue, args[i])
			}
			return p.ToPixels(DefaultResolutionContext, 0), nil
		}
		angle := func(i int) (float32, error) { return ParseAngle(args[i]) }
		need := func(lo, hi int) error {
			if len(args) < lo || len(args) > hi {
				return fmt.Errorf("%w: %s() takes %d to %d arguments", ErrInvalidValue, name, lo, hi)
			}
			return nil
		}

		var m TransformMatrix
		var err error
		switch name {
		case "matrix":
			if err = need(6, 6); err == nil {
				vals := make([]float32, 6)
				for i := range vals {
					if vals[i], err = num(i); err != nil {
						break
					}
				}
				m = TransformMatrix{A: vals[0], B: vals[1], C: vals[2], D: vals[3], E: vals[4], F: vals[5]}
			}
		case "translate", "translatex", "translatey":
			if err = need(1, 2); err == nil {
				var tx, ty float32
				if tx, err = length(0); err == nil && len(args) == 2 {
					ty, err = length(1)
				}
				switch name {
				case "translatex":
					m = TranslateMatrix(tx, 0)
				case "translatey":
					m = TranslateMatrix(0, tx)
				default:
					m = TranslateMatrix(tx, ty)
				}
			}
		case "scale", "scalex", "scaley":
			if err = need(1, 2); err == nil {
				var sx, sy float32
				if sx, err = num(0); err == nil {
					sy = sx
					if len(args) == 2 {
						sy, err = num(1)
					}
				}
				switch name {
				case "scalex":
					m = ScaleMatrix(sx, 1)
				case "scaley":
					m = ScaleMatrix(1, sx)
				default:
					m = ScaleMatrix(sx, sy)
				}
			}
		case "rotate":
			if err = need(1, 1); err == nil {
				var a float32
				a, err = angle(0)
				m = RotateMatrix(a)
			}
		case "skew", "skewx", "skewy":
			if err = need(1, 2); err == nil {
				var ax, ay float32
				if ax, err = angle(0); err == nil && len(args) == 2 {
					ay, err = angle(1)
				}
				switch name {
				case "skewx":
					m = SkewMatrix(ax, 0)
				case "skewy":
					m = SkewMatrix(0, ax)
				default:
					m = SkewMatrix(ax, ay)
				}
			}
		default:
			err = fmt.Errorf("%w: unknown transform function %q", ErrInvalidValue, name)
		}
		if err != nil {
			return TransformMatrix{}, err
		}
		final = final.Multiply(m)
	}
	return final, nil
}
