// internal/css/units.go
package css

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FPPrecisionMultiplier is the fixed-point scale of FloatValue.
const FPPrecisionMultiplier = 1000

// PtToPx converts typographic points to CSS pixels.
const PtToPx = 96.0 / 72.0

// FloatValue is a fixed-point number with three decimal places. It keeps
// parsed values hashable and byte-comparable.
type FloatValue struct {
	Number int64
}

// ConstNew returns the FloatValue for an integer.
func ConstNew(value int64) FloatValue {
	return FloatValue{Number: value * FPPrecisionMultiplier}
}

// ConstNewFractional builds pre.post, reading post as the literal digits
// after the decimal point: (1, 5) is 1.5 and (2, 99) is 2.99. Digits beyond
// the third are truncated.
func ConstNewFractional(pre, post int64) FloatValue {
	if post < 0 {
		post = -post
	}
	divisor := int64(1)
	for p := post; p > 0; p /= 10 {
		divisor *= 10
	}
	frac := post * FPPrecisionMultiplier / divisor
	if pre < 0 {
		return FloatValue{Number: pre*FPPrecisionMultiplier - frac}
	}
	return FloatValue{Number: pre*FPPrecisionMultiplier + frac}
}

// NewFloat rounds f to the nearest representable FloatValue.
func NewFloat(f float32) FloatValue {
	return FloatValue{Number: int64(math.Round(float64(f) * FPPrecisionMultiplier))}
}

// Get returns the value as a float.
func (f FloatValue) Get() float32 {
	return float32(f.Number) / FPPrecisionMultiplier
}

func (f FloatValue) String() string {
	return strconv.FormatFloat(float64(f.Number)/FPPrecisionMultiplier, 'f', -1, 64)
}

// SizeMetric is the unit of a PixelValue.
type SizeMetric uint8

const (
	MetricPx SizeMetric = iota
	MetricPt
	MetricEm
	MetricRem
	MetricPercent
	MetricVw
	MetricVh
	MetricVmin
	MetricVmax
)

var metricSuffixes = []struct {
	suffix string
	metric SizeMetric
}{
	// Longer suffixes first so "rem" is not read as "em" and "vmin" not as "in".
	{"vmin", MetricVmin},
	{"vmax", MetricVmax},
	{"rem", MetricRem},
	{"px", MetricPx},
	{"pt", MetricPt},
	{"em", MetricEm},
	{"vw", MetricVw},
	{"vh", MetricVh},
	{"%", MetricPercent},
}

func (m SizeMetric) String() string {
	for _, s := range metricSuffixes {
		if s.metric == m {
			return s.suffix
		}
	}
	return "?"
}

// PixelValue is a length with its unit, resolved to pixels during layout.
type PixelValue struct {
	Metric SizeMetric
	Number FloatValue
}

// Px returns a pixel length.
func Px(v float32) PixelValue { return PixelValue{Metric: MetricPx, Number: NewFloat(v)} }

// Em returns a length relative to the element font size.
func Em(v float32) PixelValue { return PixelValue{Metric: MetricEm, Number: NewFloat(v)} }

// Percent returns a percentage length; 50 means 50%.
func Percent(v float32) PixelValue { return PixelValue{Metric: MetricPercent, Number: NewFloat(v)} }

// IsPercent reports whether the value depends on the containing block.
func (p PixelValue) IsPercent() bool { return p.Metric == MetricPercent }

// IsAbsolute reports whether the value resolves without any context.
func (p PixelValue) IsAbsolute() bool { return p.Metric == MetricPx || p.Metric == MetricPt }

func (p PixelValue) String() string {
	return p.Number.String() + p.Metric.String()
}

// ResolutionContext carries the inputs needed to turn relative lengths into pixels.
type ResolutionContext struct {
	EmSize         float32
	RemSize        float32
	ViewportWidth  float32
	ViewportHeight float32
}

// DefaultResolutionContext uses a 16px font and no viewport.
var DefaultResolutionContext = ResolutionContext{EmSize: 16, RemSize: 16}

// ToPixels resolves the length; percentages are taken of percentBase.
func (p PixelValue) ToPixels(ctx ResolutionContext, percentBase float32) float32 {
	n := p.Number.Get()
	switch p.Metric {
	case MetricPx:
		return n
	case MetricPt:
		return n * PtToPx
	case MetricEm:
		return n * ctx.EmSize
	case MetricRem:
		return n * ctx.RemSize
	case MetricPercent:
		return percentBase * n / 100
	case MetricVw:
		return ctx.ViewportWidth * n / 100
	case MetricVh:
		return ctx.ViewportHeight * n / 100
	case MetricVmin:
		return min(ctx.ViewportWidth, ctx.ViewportHeight) * n / 100
	case MetricVmax:
		return max(ctx.ViewportWidth, ctx.ViewportHeight) * n / 100
	}
	return 0
}

// ParsePixelValue parses "10px", "1.5em", "50%" and friends. A bare number
// is read as pixels; a bare zero is always accepted.
func ParsePixelValue(s string) (PixelValue, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return PixelValue{}, fmt.Errorf("%w: empty length", ErrInvalidValue)
	}
	for _, ms := range metricSuffixes {
		if strings.HasSuffix(s, ms.suffix) {
			f, err := ParseFloat(strings.TrimSuffix(s, ms.suffix))
			if err != nil {
				return PixelValue{}, fmt.Errorf("%w: length %q", ErrInvalidValue, s)
			}
			return PixelValue{Metric: ms.metric, Number: f}, nil
		}
	}
	f, err := ParseFloat(s)
	if err != nil {
		return PixelValue{}, fmt.Errorf("%w: length %q", ErrInvalidValue, s)
	}
	return PixelValue{Metric: MetricPx, Number: f}, nil
}

// ParseFloat parses a CSS number into a FloatValue.
func ParseFloat(s string) (FloatValue, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return FloatValue{}, fmt.Errorf("%w: number %q", ErrInvalidValue, s)
	}
	return NewFloat(float32(f)), nil
}

// ParseAngle parses deg, rad, grad and turn units into radians. A bare
// number is read as degrees.
func ParseAngle(s string) (float32, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	scale := math.Pi / 180
	switch {
	case strings.HasSuffix(s, "deg"):
		s = strings.TrimSuffix(s, "deg")
	case strings.HasSuffix(s, "grad"):
		s, scale = strings.TrimSuffix(s, "grad"), math.Pi/200
	case strings.HasSuffix(s, "rad"):
		s, scale = strings.TrimSuffix(s, "rad"), 1
	case strings.HasSuffix(s, "turn"):
		s, scale = strings.TrimSuffix(s, "turn"), 2*math.Pi
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: angle %q", ErrInvalidValue, s)
	}
	return float32(f * scale), nil
}
