// internal/css/css_test.go
package css

import (
	"errors"
	"math"
	"reflect"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatValue(t *testing.T) {
	assert.Equal(t, 1000, FPPrecisionMultiplier)
	assert.Equal(t, float32(1.5), ConstNewFractional(1, 5).Get())
	assert.InDelta(t, 2.99, ConstNewFractional(2, 99).Get(), 0.001)
	assert.Equal(t, float32(-1.25), ConstNewFractional(-1, 25).Get())
	assert.Equal(t, float32(7), ConstNew(7).Get())
	assert.Equal(t, "0.5", NewFloat(0.5).String())
}

func TestParsePixelValue(t *testing.T) {
	ctx := ResolutionContext{EmSize: 20, RemSize: 10, ViewportWidth: 1000, ViewportHeight: 500}
	tests := []struct {
		in   string
		want float32
	}{
		{"10px", 10},
		{"0", 0},
		{"12", 12},
		{"1.5em", 30},
		{"2rem", 20},
		{"50%", 100},
		{"10vw", 100},
		{"10vh", 50},
		{"10vmin", 50},
		{"10vmax", 100},
		{"12pt", 16},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePixelValue(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p.ToPixels(ctx, 200), 0.01)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := ParsePixelValue("abcpx")
		assert.True(t, errors.Is(err, ErrInvalidValue))
		_, err = ParsePixelValue("")
		assert.Error(t, err)
	})
}

func TestParseAngle(t *testing.T) {
	for in, want := range map[string]float64{
		"90deg":   math.Pi / 2,
		"100grad": math.Pi / 2,
		"0.5turn": math.Pi,
		"1rad":    1,
		"180":     math.Pi,
	} {
		got, err := ParseAngle(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-5, in)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want ColorU
	}{
		{"red", ColorU{R: 255, A: 255}},
		{"#fff", ColorU{R: 255, G: 255, B: 255, A: 255}},
		{"#00000080", ColorU{A: 128}},
		{"rgb(10, 20, 30)", ColorU{R: 10, G: 20, B: 30, A: 255}},
		{"rgba(10, 20, 30, 0.5)", ColorU{R: 10, G: 20, B: 30, A: 128}},
		{"hsl(120, 100%, 50%)", ColorU{G: 255, A: 255}},
		{"hsl(480deg, 100%, 50%)", ColorU{G: 255, A: 255}},
		{"transparent", ColorU{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}

	_, err := ParseColor("not-a-colour")
	assert.Error(t, err)

	c := ColorU{R: 1, G: 2, B: 3, A: 4}
	assert.Equal(t, c, ColorFromRGBA32(c.RGBA32()))
}

func TestParsePropertyLonghands(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		props, err := ParseProperty("width", "100px")
		require.NoError(t, err)
		require.Len(t, props, 1)
		v := ValueOf[PixelValue](props[0])
		assert.True(t, v.IsExact())
		assert.Equal(t, Px(100), v.Value)
	})

	t.Run("keywords", func(t *testing.T) {
		tests := []struct {
			name, value string
			want        ValueKind
		}{
			{"width", "auto", ValueAuto},
			{"max-width", "none", ValueNone},
			{"color", "inherit", ValueInherit},
			{"display", "initial", ValueInitial},
			{"font-size", "unset", ValueInitial},
		}
		for _, tt := range tests {
			props, err := ParseProperty(tt.name, tt.value)
			require.NoError(t, err, tt.name)
			assert.Equal(t, tt.want, props[0].Keyword, tt.name)
		}
	})

	t.Run("auto not allowed", func(t *testing.T) {
		_, err := ParseProperty("padding-left", "auto")
		assert.Error(t, err)
	})

	t.Run("unknown property", func(t *testing.T) {
		_, err := ParseProperty("-webkit-magic", "1")
		assert.True(t, errors.Is(err, ErrUnknownProperty))
	})

	t.Run("aliases", func(t *testing.T) {
		props, err := ParseProperty("background-color", "blue")
		require.NoError(t, err)
		bg := ValueOf[BackgroundContent](props[0])
		require.True(t, bg.IsExact())
		assert.Equal(t, BackgroundColor, bg.Value.Kind)
		assert.Equal(t, ColorU{B: 255, A: 255}, bg.Value.Color)
	})

	t.Run("line-height unitless", func(t *testing.T) {
		props, err := ParseProperty("line-height", "1.5")
		require.NoError(t, err)
		assert.Equal(t, Percent(150), props[0].Payload())
	})

	t.Run("z-index", func(t *testing.T) {
		props, err := ParseProperty("z-index", "-3")
		require.NoError(t, err)
		assert.Equal(t, int32(-3), props[0].Payload())
		_, err = ParseProperty("z-index", "1.5")
		assert.Error(t, err)
	})
}

func TestParsePropertyShorthands(t *testing.T) {
	t.Run("margin two values", func(t *testing.T) {
		props, err := ParseProperty("margin", "10px auto")
		require.NoError(t, err)
		require.Len(t, props, 4)
		assert.Equal(t, PropMarginTop, props[0].Kind)
		assert.Equal(t, Px(10), props[0].Payload())
		assert.Equal(t, ValueAuto, props[1].Keyword)
		assert.Equal(t, Px(10), props[2].Payload())
		assert.Equal(t, ValueAuto, props[3].Keyword)
	})

	t.Run("padding three values", func(t *testing.T) {
		props, err := ParseProperty("padding", "1px 2px 3px")
		require.NoError(t, err)
		got := make([]any, len(props))
		for i, p := range props {
			got[i] = p.Payload()
		}
		assert.Equal(t, []any{Px(1), Px(2), Px(3), Px(2)}, got)
	})

	t.Run("border", func(t *testing.T) {
		props, err := ParseProperty("border", "1px solid red")
		require.NoError(t, err)
		require.Len(t, props, 12)
		byKind := map[PropertyKind]CssProperty{}
		for _, p := range props {
			byKind[p.Kind] = p
		}
		assert.Equal(t, Px(1), byKind[PropBorderLeftWidth].Payload())
		assert.Equal(t, BorderStyleSolid, byKind[PropBorderTopStyle].Payload())
		assert.Equal(t, ColorU{R: 255, A: 255}, byKind[PropBorderBottomColor].Payload())
	})

	t.Run("flex", func(t *testing.T) {
		tests := []struct {
			in           string
			grow, shrink float32
			basis        CssPropertyValue[PixelValue]
		}{
			{"1", 1, 1, Exact(Px(0))},
			{"2 3 100px", 2, 3, Exact(Px(100))},
			{"auto", 1, 1, Keyword[PixelValue](ValueAuto)},
			{"none", 0, 0, Keyword[PixelValue](ValueAuto)},
			{"0 0 auto", 0, 0, Keyword[PixelValue](ValueAuto)},
		}
		for _, tt := range tests {
			t.Run(tt.in, func(t *testing.T) {
				props, err := ParseProperty("flex", tt.in)
				require.NoError(t, err)
				require.Len(t, props, 3)
				assert.Equal(t, tt.grow, ValueOf[FloatValue](props[0]).Value.Get())
				assert.Equal(t, tt.shrink, ValueOf[FloatValue](props[1]).Value.Get())
				assert.Equal(t, tt.basis, ValueOf[PixelValue](props[2]))
			})
		}
	})

	t.Run("css-wide keyword", func(t *testing.T) {
		props, err := ParseProperty("overflow", "inherit")
		require.NoError(t, err)
		require.Len(t, props, 2)
		for _, p := range props {
			assert.Equal(t, ValueInherit, p.Keyword)
		}
	})
}

func TestInitialValues(t *testing.T) {
	for _, k := range AllPropertyKinds() {
		initial := k.InitialValue()
		assert.Equal(t, k, initial.Kind)
		if initial.IsExact() {
			assert.Equal(t, k.PayloadType(), reflect.TypeOf(initial.Payload()), k.String())
		}
	}
	assert.True(t, PropFontSize.IsInherited())
	assert.False(t, PropWidth.IsInherited())
	assert.Equal(t, ChangeGpuOnly, PropOpacity.ChangeClass())
	assert.Equal(t, ChangeDisplayList, PropBackgroundContent.ChangeClass())
	assert.Equal(t, ChangeLayout, PropPaddingLeft.ChangeClass())
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape("circle(50px at 100px 80px)")
	require.NoError(t, err)
	assert.Equal(t, Shape{Kind: ShapeCircle, Center: ShapePoint{X: 100, Y: 80}, RadiusX: 50, RadiusY: 50}, s)

	s, err = ParseShape("polygon(0 0, 100px 0, 100px 100px)")
	require.NoError(t, err)
	assert.Len(t, s.Points, 3)

	s, err = ParseShape("inset(10px 20px round 5px)")
	require.NoError(t, err)
	assert.Equal(t, float32(20), s.Left)
	assert.Equal(t, float32(5), s.Round)

	_, err = ParseShape("circle(50% at 0 0)")
	assert.Error(t, err)
}

func TestParseTransform(t *testing.T) {
	m, err := ParseTransform("translate(10px, 20px) scale(2)")
	require.NoError(t, err)
	x, y := m.Apply(1, 1)
	assert.InDelta(t, 12, x, 1e-4)
	assert.InDelta(t, 22, y, 1e-4)

	inv, ok := m.Inverse()
	require.True(t, ok)
	x, y = inv.Apply(12, 22)
	assert.InDelta(t, 1, x, 1e-4)
	assert.InDelta(t, 1, y, 1e-4)

	_, err = ParseTransform("translate(50%)")
	assert.Error(t, err)
}

func FuzzParseProperty(f *testing.F) {
	f.Add([]byte("margin"), []byte("1px 2px"))
	f.Add([]byte("flex"), []byte("1 1 auto"))
	f.Fuzz(func(t *testing.T, name, value []byte) {
		consumer := fuzz.NewConsumer(append(name, value...))
		n, err := consumer.GetString()
		if err != nil {
			n = string(name)
		}
		v, err := consumer.GetString()
		if err != nil {
			v = string(value)
		}
		props, err := ParseProperty(n, v)
		if err == nil {
			for _, p := range props {
				assert.Less(t, p.Kind, propertyKindCount)
			}
		}
	})
}
