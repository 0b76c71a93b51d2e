// internal/css/parse.go
package css

import (
	"fmt"
	"strings"
)

// ParseProperty parses one declaration into its longhand properties.
// Shorthands expand to several entries. Unknown names return
// ErrUnknownProperty, malformed values ErrInvalidValue.
func ParseProperty(name, value string) ([]CssProperty, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: empty value for %s", ErrInvalidValue, name)
	}

	if expand, ok := shorthands[name]; ok {
		longhands := shorthandLonghands[name]
		if kw, ok := cssWideKeyword(value); ok {
			out := make([]CssProperty, len(longhands))
			for i, k := range longhands {
				out[i] = NewKeywordProperty(k, kw)
			}
			return out, nil
		}
		out, err := expand(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return out, nil
	}

	kind, ok := PropertyKindFromName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	p, err := parseLonghand(kind, value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return []CssProperty{p}, nil
}

// MustParseProperty is ParseProperty for values known to be valid; it panics otherwise.
func MustParseProperty(name, value string) []CssProperty {
	props, err := ParseProperty(name, value)
	if err != nil {
		panic(err)
	}
	return props
}

func cssWideKeyword(value string) (ValueKind, bool) {
	switch strings.ToLower(value) {
	case "initial", "unset":
		return ValueInitial, true
	case "inherit":
		return ValueInherit, true
	}
	return 0, false
}

func parseLonghand(kind PropertyKind, value string) (CssProperty, error) {
	if kw, ok := cssWideKeyword(value); ok {
		return NewKeywordProperty(kind, kw), nil
	}
	info := propertyInfos[kind]
	payload, err := info.parse(value)
	if err == nil {
		return CssProperty{Kind: kind, Keyword: ValueExact, payload: payload}, nil
	}
	switch strings.ToLower(value) {
	case "auto":
		if info.allowAuto {
			return NewKeywordProperty(kind, ValueAuto), nil
		}
	case "none":
		if info.allowNone {
			return NewKeywordProperty(kind, ValueNone), nil
		}
	}
	return CssProperty{}, err
}

var shorthands = map[string]func(string) ([]CssProperty, error){}

var shorthandLonghands = map[string][]PropertyKind{
	"margin":        {PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft},
	"padding":       {PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft},
	"border-width":  {PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth},
	"border-style":  {PropBorderTopStyle, PropBorderRightStyle, PropBorderBottomStyle, PropBorderLeftStyle},
	"border-color":  {PropBorderTopColor, PropBorderRightColor, PropBorderBottomColor, PropBorderLeftColor},
	"border-radius": {PropBorderTopLeftRadius, PropBorderTopRightRadius, PropBorderBottomRightRadius, PropBorderBottomLeftRadius},
	"border": {PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth,
		PropBorderTopStyle, PropBorderRightStyle, PropBorderBottomStyle, PropBorderLeftStyle,
		PropBorderTopColor, PropBorderRightColor, PropBorderBottomColor, PropBorderLeftColor},
	"border-top":    {PropBorderTopWidth, PropBorderTopStyle, PropBorderTopColor},
	"border-right":  {PropBorderRightWidth, PropBorderRightStyle, PropBorderRightColor},
	"border-bottom": {PropBorderBottomWidth, PropBorderBottomStyle, PropBorderBottomColor},
	"border-left":   {PropBorderLeftWidth, PropBorderLeftStyle, PropBorderLeftColor},
	"flex":          {PropFlexGrow, PropFlexShrink, PropFlexBasis},
	"flex-flow":     {PropFlexDirection, PropFlexWrap},
	"overflow":      {PropOverflowX, PropOverflowY},
	"gap":           {PropRowGap, PropColumnGap},
	"background":    {PropBackgroundContent},
}

func init() {
	for _, name := range []string{"margin", "padding", "border-width", "border-style", "border-color", "border-radius"} {
		kinds := shorthandLonghands[name]
		shorthands[name] = func(v string) ([]CssProperty, error) { return expandFourSides(kinds, v) }
	}
	shorthands["border"] = func(v string) ([]CssProperty, error) {
		var out []CssProperty
		for _, side := range []string{"border-top", "border-right", "border-bottom", "border-left"} {
			props, err := expandBorderSide(shorthandLonghands[side], v)
			if err != nil {
				return nil, err
			}
			out = append(out, props...)
		}
		return out, nil
	}
	for _, side := range []string{"border-top", "border-right", "border-bottom", "border-left"} {
		kinds := shorthandLonghands[side]
		shorthands[side] = func(v string) ([]CssProperty, error) { return expandBorderSide(kinds, v) }
	}
	shorthands["flex"] = expandFlex
	shorthands["flex-flow"] = func(v string) ([]CssProperty, error) {
		out := []CssProperty{FlexDirectionRow.property(), FlexWrapNoWrap.property()}
		for _, tok := range strings.Fields(v) {
			if d, err := parseKeyword[FlexDirection](flexDirectionNames, tok); err == nil {
				out[0] = NewProperty(PropFlexDirection, d)
				continue
			}
			w, err := parseKeyword[FlexWrap](flexWrapNames, tok)
			if err != nil {
				return nil, err
			}
			out[1] = NewProperty(PropFlexWrap, w)
		}
		return out, nil
	}
	shorthands["overflow"] = func(v string) ([]CssProperty, error) { return expandPair(PropOverflowX, PropOverflowY, v) }
	shorthands["gap"] = func(v string) ([]CssProperty, error) { return expandPair(PropRowGap, PropColumnGap, v) }
	shorthands["background"] = func(v string) ([]CssProperty, error) {
		p, err := parseLonghand(PropBackgroundContent, v)
		if err != nil {
			return nil, err
		}
		return []CssProperty{p}, nil
	}
}

func (f FlexDirection) property() CssProperty { return NewProperty(PropFlexDirection, f) }
func (f FlexWrap) property() CssProperty      { return NewProperty(PropFlexWrap, f) }

func expandFourSides(kinds []PropertyKind, value string) ([]CssProperty, error) {
	f := strings.Fields(value)
	if len(f) == 0 || len(f) > 4 {
		return nil, fmt.Errorf("%w: expected 1 to 4 values, got %q", ErrInvalidValue, value)
	}
	t, r, b, l := expandBox(f)
	out := make([]CssProperty, 4)
	for i, v := range []string{t, r, b, l} {
		p, err := parseLonghand(kinds[i], v)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func expandPair(first, second PropertyKind, value string) ([]CssProperty, error) {
	f := strings.Fields(value)
	if len(f) == 0 || len(f) > 2 {
		return nil, fmt.Errorf("%w: expected 1 or 2 values, got %q", ErrInvalidValue, value)
	}
	a, err := parseLonghand(first, f[0])
	if err != nil {
		return nil, err
	}
	second2 := f[0]
	if len(f) == 2 {
		second2 = f[1]
	}
	b, err := parseLonghand(second, second2)
	if err != nil {
		return nil, err
	}
	return []CssProperty{a, b}, nil
}

// expandBorderSide parses "<width> <style> <color>" in any order; kinds
// holds the width, style and color longhands of one side.
func expandBorderSide(kinds []PropertyKind, value string) ([]CssProperty, error) {
	if strings.EqualFold(value, "none") {
		return []CssProperty{
			NewProperty(kinds[0], Px(0)),
			NewProperty(kinds[1], BorderStyleNone),
			kinds[2].InitialValue(),
		}, nil
	}
	width, style, color := NewProperty(kinds[0], Px(3)), NewProperty(kinds[1], BorderStyleNone), kinds[2].InitialValue()
	for _, tok := range strings.Fields(value) {
		if p, err := parseLonghand(kinds[0], tok); err == nil {
			width = p
			continue
		}
		if p, err := parseLonghand(kinds[1], tok); err == nil {
			style = p
			continue
		}
		p, err := parseLonghand(kinds[2], tok)
		if err != nil {
			return nil, fmt.Errorf("%w: border component %q", ErrInvalidValue, tok)
		}
		color = p
	}
	return []CssProperty{width, style, color}, nil
}

func expandFlex(value string) ([]CssProperty, error) {
	grow := func(f FloatValue) CssProperty { return NewProperty(PropFlexGrow, f) }
	shrink := func(f FloatValue) CssProperty { return NewProperty(PropFlexShrink, f) }
	switch strings.ToLower(value) {
	case "none":
		return []CssProperty{grow(ConstNew(0)), shrink(ConstNew(0)), NewKeywordProperty(PropFlexBasis, ValueAuto)}, nil
	case "auto":
		return []CssProperty{grow(ConstNew(1)), shrink(ConstNew(1)), NewKeywordProperty(PropFlexBasis, ValueAuto)}, nil
	}
	f := strings.Fields(value)
	if len(f) > 3 {
		return nil, fmt.Errorf("%w: flex %q", ErrInvalidValue, value)
	}
	out := []CssProperty{grow(ConstNew(1)), shrink(ConstNew(1)), NewProperty(PropFlexBasis, Px(0))}
	numbers := 0
	for _, tok := range f {
		if n, err := ParseFloat(tok); err == nil && numbers < 2 {
			if numbers == 0 {
				out[0] = grow(n)
			} else {
				out[1] = shrink(n)
			}
			numbers++
			continue
		}
		basis, err := parseLonghand(PropFlexBasis, tok)
		if err != nil {
			return nil, err
		}
		out[2] = basis
	}
	return out, nil
}
