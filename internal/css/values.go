// internal/css/values.go
package css

import (
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// BackgroundKind selects which field of BackgroundContent is meaningful.
type BackgroundKind uint8

const (
	BackgroundColor BackgroundKind = iota
	BackgroundLinearGradient
	BackgroundRadialGradient
	BackgroundImage
)

// ColorStop is one stop of a gradient; Offset is in [0, 1].
type ColorStop struct {
	Offset float32
	Color  ColorU
}

// Gradient describes linear and radial gradients. Angle is in radians,
// measured clockwise from "to top".
type Gradient struct {
	Angle float32
	Stops []ColorStop
}

// ColorAt samples the gradient at t in [0, 1].
func (g Gradient) ColorAt(t float32) ColorU {
	if len(g.Stops) == 0 {
		return ColorTransparent
	}
	if t <= g.Stops[0].Offset {
		return g.Stops[0].Color
	}
	for i := 1; i < len(g.Stops); i++ {
		prev, next := g.Stops[i-1], g.Stops[i]
		if t <= next.Offset {
			span := next.Offset - prev.Offset
			if span <= 0 {
				return next.Color
			}
			return prev.Color.Mix(next.Color, (t-prev.Offset)/span)
		}
	}
	return g.Stops[len(g.Stops)-1].Color
}

// BackgroundContent is the value of `background` / `background-content`.
type BackgroundContent struct {
	Kind     BackgroundKind
	Color    ColorU
	Gradient Gradient
	Image    string
}

// ParseBackgroundContent parses a colour, linear-/radial-gradient() or url().
func ParseBackgroundContent(value string) (BackgroundContent, error) {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	switch {
	case strings.HasPrefix(lower, "linear-gradient("), strings.HasPrefix(lower, "radial-gradient("):
		g, err := parseGradient(v)
		if err != nil {
			return BackgroundContent{}, err
		}
		kind := BackgroundLinearGradient
		if strings.HasPrefix(lower, "radial") {
			kind = BackgroundRadialGradient
		}
		return BackgroundContent{Kind: kind, Gradient: g}, nil
	case strings.HasPrefix(lower, "url(") || strings.HasPrefix(lower, "image("):
		_, arg, _ := strings.Cut(v, "(")
		arg = strings.Trim(strings.TrimSuffix(strings.TrimSpace(arg), ")"), `"' `)
		if arg == "" {
			return BackgroundContent{}, fmt.Errorf("%w: empty image reference", ErrInvalidValue)
		}
		return BackgroundContent{Kind: BackgroundImage, Image: arg}, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return BackgroundContent{}, err
	}
	return BackgroundContent{Kind: BackgroundColor, Color: c}, nil
}

var sideAngles = map[string]float32{
	"to top":    0,
	"to right":  90,
	"to bottom": 180,
	"to left":   270,
}

// splitTopLevel splits on commas that are not nested inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

func parseGradient(value string) (Gradient, error) {
	_, body, _ := strings.Cut(value, "(")
	body = strings.TrimSuffix(strings.TrimSpace(body), ")")
	parts := splitTopLevel(body)

	g := Gradient{Angle: 180 * degToRad}
	if len(parts) > 0 {
		first := strings.ToLower(parts[0])
		if deg, ok := sideAngles[first]; ok {
			g.Angle = deg * degToRad
			parts = parts[1:]
		} else if hasAngleUnit(first) {
			a, err := ParseAngle(first)
			if err != nil {
				return Gradient{}, err
			}
			g.Angle = a
			parts = parts[1:]
		}
	}
	if len(parts) < 2 {
		return Gradient{}, fmt.Errorf("%w: gradient needs two color stops", ErrInvalidValue)
	}
	for i, p := range parts {
		colorPart, offsetPart := p, ""
		if idx := strings.LastIndexByte(p, ' '); idx > 0 && strings.HasSuffix(p, "%") {
			colorPart, offsetPart = p[:idx], p[idx+1:]
		}
		c, err := ParseColor(colorPart)
		if err != nil {
			return Gradient{}, err
		}
		offset := float32(i) / float32(len(parts)-1)
		if offsetPart != "" {
			pv, err := ParsePixelValue(offsetPart)
			if err != nil {
				return Gradient{}, err
			}
			offset = pv.Number.Get() / 100
		}
		g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	}
	return g, nil
}

const degToRad = math.Pi / 180

func hasAngleUnit(s string) bool {
	for _, u := range []string{"deg", "rad", "turn"} {
		if strings.HasSuffix(s, u) {
			return true
		}
	}
	return false
}

// BackgroundPosition is the offset of a background image.
type BackgroundPosition struct {
	X, Y PixelValue
}

// BackgroundSizeKind selects how a background image is scaled.
type BackgroundSizeKind uint8

const (
	BackgroundSizeExact BackgroundSizeKind = iota
	BackgroundSizeContain
	BackgroundSizeCover
)

type BackgroundSize struct {
	Kind          BackgroundSizeKind
	Width, Height PixelValue
}

// BoxShadow is a single box-shadow layer.
type BoxShadow struct {
	OffsetX, OffsetY PixelValue
	Blur, Spread     PixelValue
	Color            ColorU
	Inset            bool
}

// ParseBoxShadow parses "[inset] x y [blur [spread]] [color]".
func ParseBoxShadow(value string) (BoxShadow, error) {
	bs := BoxShadow{Color: ColorBlack}
	var lengths []PixelValue
	for _, tok := range strings.Fields(value) {
		if strings.EqualFold(tok, "inset") {
			bs.Inset = true
			continue
		}
		if p, err := ParsePixelValue(tok); err == nil {
			lengths = append(lengths, p)
			continue
		}
		c, err := ParseColor(tok)
		if err != nil {
			return BoxShadow{}, err
		}
		bs.Color = c
	}
	if len(lengths) < 2 || len(lengths) > 4 {
		return BoxShadow{}, fmt.Errorf("%w: box-shadow %q", ErrInvalidValue, value)
	}
	bs.OffsetX, bs.OffsetY = lengths[0], lengths[1]
	if len(lengths) > 2 {
		bs.Blur = lengths[2]
	}
	if len(lengths) > 3 {
		bs.Spread = lengths[3]
	}
	return bs, nil
}

// FilterFunction is one entry of a `filter` list, e.g. blur(4px) or opacity(0.5).
type FilterFunction struct {
	Name   string
	Amount float32
}

// ParseFilter parses a whitespace separated filter function list.
func ParseFilter(value string) ([]FilterFunction, error) {
	var out []FilterFunction
	for _, f := range strings.Split(value, ")") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		name, arg, ok := strings.Cut(f, "(")
		if !ok {
			return nil, fmt.Errorf("%w: filter %q", ErrInvalidValue, f)
		}
		name = strings.ToLower(strings.TrimSpace(name))
		arg = strings.TrimSpace(arg)
		var amount float32
		switch name {
		case "blur", "drop-shadow":
			p, err := ParsePixelValue(arg)
			if err != nil {
				return nil, err
			}
			amount = p.ToPixels(DefaultResolutionContext, 0)
		case "hue-rotate":
			a, err := ParseAngle(arg)
			if err != nil {
				return nil, err
			}
			amount = a
		case "brightness", "contrast", "grayscale", "invert", "opacity", "saturate", "sepia":
			if strings.HasSuffix(arg, "%") {
				p, err := ParsePixelValue(arg)
				if err != nil {
					return nil, err
				}
				amount = p.Number.Get() / 100
			} else {
				v, err := ParseFloat(arg)
				if err != nil {
					return nil, err
				}
				amount = v.Get()
			}
		default:
			return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidValue, name)
		}
		out = append(out, FilterFunction{Name: name, Amount: amount})
	}
	return out, nil
}

// FontFamily is an ordered list of family names; the first available one wins.
type FontFamily struct {
	Names []string
}

// ParseFontFamily splits a comma separated family list and strips quotes.
func ParseFontFamily(value string) (FontFamily, error) {
	var ff FontFamily
	for _, n := range strings.Split(value, ",") {
		n = strings.Trim(strings.TrimSpace(n), `"'`)
		if n != "" {
			ff.Names = append(ff.Names, n)
		}
	}
	if len(ff.Names) == 0 {
		return FontFamily{}, fmt.Errorf("%w: empty font-family", ErrInvalidValue)
	}
	return ff, nil
}

// Hash identifies the family list in the compact text cache.
func (f FontFamily) Hash() uint64 {
	return xxhash.Sum64String(strings.ToLower(strings.Join(f.Names, ",")))
}

func (f FontFamily) String() string { return strings.Join(f.Names, ", ") }
