// internal/style/compact.go
package style

import (
	"math"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

// Sentinels of the i16 numeric tier. Every other value is a px length in
// tenths of a pixel (or a plain number in tenths for flex factors).
const (
	I16Auto     int16 = math.MinInt16
	I16None     int16 = math.MinInt16 + 1
	I16Sentinel int16 = math.MinInt16 + 2

	i16Scale = 10
)

type enumField struct {
	kind  css.PropertyKind
	shift uint8
	bits  uint8
}

// enumLayout packs 20 enum properties into one uint64.
var enumLayout = func() []enumField {
	fields := []enumField{
		{kind: css.PropDisplay, bits: 5},
		{kind: css.PropPosition, bits: 3},
		{kind: css.PropFloat, bits: 2},
		{kind: css.PropClear, bits: 2},
		{kind: css.PropBoxSizing, bits: 1},
		{kind: css.PropFlexDirection, bits: 2},
		{kind: css.PropFlexWrap, bits: 2},
		{kind: css.PropJustifyContent, bits: 3},
		{kind: css.PropAlignItems, bits: 3},
		{kind: css.PropAlignContent, bits: 3},
		{kind: css.PropAlignSelf, bits: 3},
		{kind: css.PropOverflowX, bits: 3},
		{kind: css.PropOverflowY, bits: 3},
		{kind: css.PropTextAlign, bits: 3},
		{kind: css.PropWhiteSpace, bits: 3},
		{kind: css.PropDirection, bits: 1},
		{kind: css.PropWritingMode, bits: 2},
		{kind: css.PropVisibility, bits: 2},
		{kind: css.PropBorderCollapse, bits: 1},
		{kind: css.PropTableLayout, bits: 1},
	}
	var shift uint8
	for i := range fields {
		fields[i].shift = shift
		shift += fields[i].bits
	}
	return fields
}()

// dimKinds are the numeric properties held in the i16 tier.
var dimKinds = []css.PropertyKind{
	css.PropWidth, css.PropHeight, css.PropMinWidth, css.PropMinHeight, css.PropMaxWidth, css.PropMaxHeight,
	css.PropPaddingTop, css.PropPaddingRight, css.PropPaddingBottom, css.PropPaddingLeft,
	css.PropMarginTop, css.PropMarginRight, css.PropMarginBottom, css.PropMarginLeft,
	css.PropBorderTopWidth, css.PropBorderRightWidth, css.PropBorderBottomWidth, css.PropBorderLeftWidth,
	css.PropTop, css.PropRight, css.PropBottom, css.PropLeft,
	css.PropFlexBasis, css.PropFlexGrow, css.PropFlexShrink, css.PropZIndex,
	css.PropBorderSpacing, css.PropRowGap, css.PropColumnGap, css.PropTabWidth,
}

var enumIndex, dimIndex = kindIndexes()

func kindIndexes() (enums, dims []int8) {
	enums = make([]int8, len(propertyKinds))
	dims = make([]int8, len(propertyKinds))
	for i := range propertyKinds {
		enums[i], dims[i] = -1, -1
	}
	for i, f := range enumLayout {
		enums[f.kind] = int8(i)
	}
	for i, k := range dimKinds {
		dims[k] = int8(i)
	}
	return enums, dims
}

// CompactText is the text-property slab of one node.
type CompactText struct {
	Color          uint32
	FontFamilyHash uint64
	FontSize       float32
	LineHeight     int16
	LetterSpacing  int16
	WordSpacing    int16
	TextIndent     int16
}

// CompactNode is the dense record of one node.
type CompactNode struct {
	Enums        uint64
	Dims         [30]int16
	BorderColors [4]uint32
	Text         CompactText
}

// CompactCache is the dense tier built from computed values. Reads that
// hit a sentinel fall back to the property cache.
type CompactCache struct {
	nodes []CompactNode
}

func newCompactCache(n int) *CompactCache {
	return &CompactCache{nodes: make([]CompactNode, n)}
}

// Node returns the record of id.
func (c *CompactCache) Node(id dom.NodeId) CompactNode { return c.nodes[id] }

// Len returns the number of records.
func (c *CompactCache) Len() int { return len(c.nodes) }

func (c *CompactCache) build(id dom.NodeId, computed []css.CssProperty) {
	var rec CompactNode
	for _, f := range enumLayout {
		v := enumOrdinal(computed[f.kind])
		rec.Enums |= (uint64(v) & (1<<f.bits - 1)) << f.shift
	}
	for i, k := range dimKinds {
		rec.Dims[i] = encodeI16(computed[k])
	}
	for i, k := range []css.PropertyKind{css.PropBorderTopColor, css.PropBorderRightColor, css.PropBorderBottomColor, css.PropBorderLeftColor} {
		rec.BorderColors[i] = css.ValueOf[css.ColorU](computed[k]).GetOr(css.ColorBlack).RGBA32()
	}
	rec.Text = CompactText{
		Color:          css.ValueOf[css.ColorU](computed[css.PropTextColor]).GetOr(css.ColorBlack).RGBA32(),
		FontFamilyHash: css.ValueOf[css.FontFamily](computed[css.PropFontFamily]).Value.Hash(),
		FontSize:       css.ValueOf[css.PixelValue](computed[css.PropFontSize]).Value.Number.Get(),
		LineHeight:     encodeLineHeight(computed[css.PropLineHeight]),
		LetterSpacing:  encodeI16(computed[css.PropLetterSpacing]),
		WordSpacing:    encodeI16(computed[css.PropWordSpacing]),
		TextIndent:     encodeI16(computed[css.PropTextIndent]),
	}
	c.nodes[id] = rec
}

// enumOrdinal extracts the ordinal of any uint8-backed enum payload.
func enumOrdinal(p css.CssProperty) uint8 {
	if !p.IsExact() {
		return 0
	}
	switch v := p.Payload().(type) {
	case css.LayoutDisplay:
		return uint8(v)
	case css.LayoutPosition:
		return uint8(v)
	case css.LayoutFloat:
		return uint8(v)
	case css.LayoutClear:
		return uint8(v)
	case css.BoxSizing:
		return uint8(v)
	case css.FlexDirection:
		return uint8(v)
	case css.FlexWrap:
		return uint8(v)
	case css.JustifyContent:
		return uint8(v)
	case css.AlignItems:
		return uint8(v)
	case css.AlignContent:
		return uint8(v)
	case css.AlignSelf:
		return uint8(v)
	case css.Overflow:
		return uint8(v)
	case css.TextAlign:
		return uint8(v)
	case css.WhiteSpace:
		return uint8(v)
	case css.Direction:
		return uint8(v)
	case css.WritingMode:
		return uint8(v)
	case css.Visibility:
		return uint8(v)
	case css.BorderCollapse:
		return uint8(v)
	case css.TableLayout:
		return uint8(v)
	}
	return 0
}

func scaleToI16(f float32) int16 {
	scaled := math.Round(float64(f) * i16Scale)
	if scaled < math.MinInt16+3 || scaled > math.MaxInt16 {
		return I16Sentinel
	}
	return int16(scaled)
}

// encodeI16 stores px lengths, plain numbers and integers. Relative units
// need a resolution context and are stored as I16Sentinel.
func encodeI16(p css.CssProperty) int16 {
	switch p.Keyword {
	case css.ValueAuto:
		return I16Auto
	case css.ValueNone:
		return I16None
	case css.ValueExact:
	default:
		return I16Sentinel
	}
	switch v := p.Payload().(type) {
	case css.PixelValue:
		if v.Metric != css.MetricPx {
			return I16Sentinel
		}
		return scaleToI16(v.Number.Get())
	case css.FloatValue:
		return scaleToI16(v.Get())
	case int32:
		if v <= math.MinInt16+2 || v > math.MaxInt16 {
			return I16Sentinel
		}
		return int16(v)
	}
	return I16Sentinel
}

// encodeLineHeight stores percentages (the usual form) in tenths of a percent.
func encodeLineHeight(p css.CssProperty) int16 {
	v, ok := css.ValueOf[css.PixelValue](p).Get()
	if !ok || v.Metric != css.MetricPercent {
		return I16Sentinel
	}
	return scaleToI16(v.Number.Get())
}

// Enum returns the packed ordinal of an enum property.
func (c *CompactCache) Enum(id dom.NodeId, kind css.PropertyKind) (uint8, bool) {
	i := enumIndex[kind]
	if i < 0 {
		return 0, false
	}
	f := enumLayout[i]
	return uint8(c.nodes[id].Enums>>f.shift) & (1<<f.bits - 1), true
}

// Dim returns the raw i16 of a numeric property.
func (c *CompactCache) Dim(id dom.NodeId, kind css.PropertyKind) (int16, bool) {
	i := dimIndex[kind]
	if i < 0 {
		return I16Sentinel, false
	}
	return c.nodes[id].Dims[i], true
}

// Pixel decodes a length from the i16 tier. ok is false when the value is
// not representable there and the caller must read the property cache.
func (c *CompactCache) Pixel(id dom.NodeId, kind css.PropertyKind) (css.CssPropertyValue[css.PixelValue], bool) {
	raw, ok := c.Dim(id, kind)
	if !ok {
		return css.CssPropertyValue[css.PixelValue]{}, false
	}
	switch raw {
	case I16Auto:
		return css.Keyword[css.PixelValue](css.ValueAuto), true
	case I16None:
		return css.Keyword[css.PixelValue](css.ValueNone), true
	case I16Sentinel:
		return css.CssPropertyValue[css.PixelValue]{}, false
	}
	return css.Exact(css.Px(float32(raw) / i16Scale)), true
}

// Int decodes an integer property (z-index).
func (c *CompactCache) Int(id dom.NodeId, kind css.PropertyKind) (int32, bool) {
	raw, ok := c.Dim(id, kind)
	if !ok || raw == I16Auto || raw == I16None || raw == I16Sentinel {
		return 0, false
	}
	return int32(raw), true
}

// Number decodes a plain number (flex factors, tab width).
func (c *CompactCache) Number(id dom.NodeId, kind css.PropertyKind) (float32, bool) {
	raw, ok := c.Dim(id, kind)
	if !ok || raw == I16Auto || raw == I16None || raw == I16Sentinel {
		return 0, false
	}
	return float32(raw) / i16Scale, true
}
