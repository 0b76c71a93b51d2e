// internal/css/color.go
package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorU is an 8-bit RGBA colour.
type ColorU struct {
	R, G, B, A uint8
}

var (
	ColorBlack       = ColorU{0, 0, 0, 255}
	ColorWhite       = ColorU{255, 255, 255, 255}
	ColorTransparent = ColorU{0, 0, 0, 0}
)

// RGBA32 packs the colour as 0xRRGGBBAA.
func (c ColorU) RGBA32() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// ColorFromRGBA32 unpacks a value produced by RGBA32.
func ColorFromRGBA32(v uint32) ColorU {
	return ColorU{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// IsTransparent reports whether the colour has no coverage.
func (c ColorU) IsTransparent() bool { return c.A == 0 }

func (c ColorU) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Mix interpolates between c and other in Lab space; t=0 yields c.
func (c ColorU) Mix(other ColorU, t float32) ColorU {
	a := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	b := colorful.Color{R: float64(other.R) / 255, G: float64(other.G) / 255, B: float64(other.B) / 255}
	r, g, bl := a.BlendLab(b, float64(t)).Clamped().RGB255()
	alpha := float32(c.A) + (float32(other.A)-float32(c.A))*t
	return ColorU{R: r, G: g, B: bl, A: uint8(clampF(alpha+0.5, 0, 255))}
}

var namedColors = map[string]ColorU{
	"black":       ColorBlack,
	"white":       ColorWhite,
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"lime":        {0, 255, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"aqua":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"fuchsia":     {255, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"lightgray":   {211, 211, 211, 255},
	"darkgray":    {169, 169, 169, 255},
	"silver":      {192, 192, 192, 255},
	"maroon":      {128, 0, 0, 255},
	"olive":       {128, 128, 0, 255},
	"navy":        {0, 0, 128, 255},
	"purple":      {128, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"pink":        {255, 192, 203, 255},
	"brown":       {165, 42, 42, 255},
	"transparent": ColorTransparent,
}

// ParseColor parses named colours, #rgb[a], #rrggbb[aa], rgb()/rgba() and
// hsl()/hsla().
func ParseColor(value string) (ColorU, error) {
	value = strings.TrimSpace(strings.ToLower(value))

	if c, ok := namedColors[value]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(value, "#"):
		return parseHexColor(value)
	case strings.HasPrefix(value, "rgb"):
		return parseRGBColor(value)
	case strings.HasPrefix(value, "hsl"):
		return parseHSLColor(value)
	}
	return ColorU{}, fmt.Errorf("%w: color %q", ErrInvalidValue, value)
}

func parseHexColor(hex string) (ColorU, error) {
	hex = strings.TrimPrefix(hex, "#")
	for i := 0; i < len(hex); i++ {
		if hexDigit(hex[i]) < 0 {
			return ColorU{}, fmt.Errorf("%w: hex color %q", ErrInvalidValue, hex)
		}
	}
	d := func(i int) uint8 { return uint8(hexDigit(hex[i])) }
	c := ColorU{A: 255}
	switch len(hex) {
	case 3, 4:
		c.R, c.G, c.B = d(0)*17, d(1)*17, d(2)*17
		if len(hex) == 4 {
			c.A = d(3) * 17
		}
	case 6, 8:
		c.R, c.G, c.B = d(0)<<4|d(1), d(2)<<4|d(3), d(4)<<4|d(5)
		if len(hex) == 8 {
			c.A = d(6)<<4 | d(7)
		}
	default:
		return ColorU{}, fmt.Errorf("%w: hex color %q", ErrInvalidValue, hex)
	}
	return c, nil
}

func hexDigit(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c - 'a' + 10)
	case 'A' <= c && c <= 'F':
		return int(c - 'A' + 10)
	}
	return -1
}

// functionArgs splits "name(a, b c / d)" into its arguments.
func functionArgs(value string) ([]string, bool) {
	open := strings.IndexByte(value, '(')
	if open < 0 || !strings.HasSuffix(value, ")") {
		return nil, false
	}
	inner := value[open+1 : len(value)-1]
	return strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	}), true
}

func parseRGBColor(value string) (ColorU, error) {
	args, ok := functionArgs(value)
	if !ok || len(args) < 3 || len(args) > 4 {
		return ColorU{}, fmt.Errorf("%w: rgb color %q", ErrInvalidValue, value)
	}
	c := ColorU{A: 255}
	comps := []*uint8{&c.R, &c.G, &c.B}
	for i, p := range comps {
		v, err := parseColorComponent(args[i], false)
		if err != nil {
			return ColorU{}, err
		}
		*p = v
	}
	if len(args) == 4 {
		a, err := parseColorComponent(args[3], true)
		if err != nil {
			return ColorU{}, err
		}
		c.A = a
	}
	return c, nil
}

func parseColorComponent(value string, isAlpha bool) (uint8, error) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "%") {
		percent, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 32)
		if err != nil {
			return 0, fmt.Errorf("%w: color component %q", ErrInvalidValue, value)
		}
		return uint8(clampF(float32(percent)/100*255+0.5, 0, 255)), nil
	}
	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: color component %q", ErrInvalidValue, value)
	}
	if isAlpha {
		return uint8(clampF(float32(val)*255+0.5, 0, 255)), nil
	}
	return uint8(clampF(float32(val)+0.5, 0, 255)), nil
}

func parseHSLColor(value string) (ColorU, error) {
	args, ok := functionArgs(value)
	if !ok || len(args) < 3 || len(args) > 4 {
		return ColorU{}, fmt.Errorf("%w: hsl color %q", ErrInvalidValue, value)
	}
	h, err := ParseAngle(args[0])
	if err != nil {
		return ColorU{}, err
	}
	pct := func(s string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: hsl component %q", ErrInvalidValue, s)
		}
		return v / 100, nil
	}
	s, err := pct(args[1])
	if err != nil {
		return ColorU{}, err
	}
	l, err := pct(args[2])
	if err != nil {
		return ColorU{}, err
	}
	deg := math.Mod(float64(h)*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	r, g, b := colorful.Hsl(deg, s, l).Clamped().RGB255()
	c := ColorU{R: r, G: g, B: b, A: 255}
	if len(args) == 4 {
		a, err := parseColorComponent(args[3], true)
		if err != nil {
			return ColorU{}, err
		}
		c.A = a
	}
	return c, nil
}

func clampF(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
