// internal/style/getters.go
package style

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

// Property returns the computed value of kind on node.
func (s *StyledDom) Property(node dom.NodeId, kind css.PropertyKind) css.CssProperty {
	return s.Cache.Computed(node, kind)
}

// Get reads a typed computed value.
func Get[T any](s *StyledDom, node dom.NodeId, kind css.PropertyKind) css.CssPropertyValue[T] {
	return css.ValueOf[T](s.Cache.Computed(node, kind))
}

func enumValue[T ~uint8](s *StyledDom, node dom.NodeId, kind css.PropertyKind) T {
	if v, ok := s.Compact.Enum(node, kind); ok {
		return T(v)
	}
	return Get[T](s, node, kind).Value
}

func (s *StyledDom) Display(node dom.NodeId) css.LayoutDisplay {
	return enumValue[css.LayoutDisplay](s, node, css.PropDisplay)
}

func (s *StyledDom) Position(node dom.NodeId) css.LayoutPosition {
	return enumValue[css.LayoutPosition](s, node, css.PropPosition)
}

func (s *StyledDom) Float(node dom.NodeId) css.LayoutFloat {
	return enumValue[css.LayoutFloat](s, node, css.PropFloat)
}

func (s *StyledDom) Clear(node dom.NodeId) css.LayoutClear {
	return enumValue[css.LayoutClear](s, node, css.PropClear)
}

func (s *StyledDom) BoxSizing(node dom.NodeId) css.BoxSizing {
	return enumValue[css.BoxSizing](s, node, css.PropBoxSizing)
}

func (s *StyledDom) FlexDirection(node dom.NodeId) css.FlexDirection {
	return enumValue[css.FlexDirection](s, node, css.PropFlexDirection)
}

func (s *StyledDom) FlexWrap(node dom.NodeId) css.FlexWrap {
	return enumValue[css.FlexWrap](s, node, css.PropFlexWrap)
}

func (s *StyledDom) JustifyContent(node dom.NodeId) css.JustifyContent {
	return enumValue[css.JustifyContent](s, node, css.PropJustifyContent)
}

func (s *StyledDom) AlignItems(node dom.NodeId) css.AlignItems {
	return enumValue[css.AlignItems](s, node, css.PropAlignItems)
}

func (s *StyledDom) AlignContent(node dom.NodeId) css.AlignContent {
	return enumValue[css.AlignContent](s, node, css.PropAlignContent)
}

func (s *StyledDom) AlignSelf(node dom.NodeId) css.AlignSelf {
	return enumValue[css.AlignSelf](s, node, css.PropAlignSelf)
}

func (s *StyledDom) OverflowX(node dom.NodeId) css.Overflow {
	return enumValue[css.Overflow](s, node, css.PropOverflowX)
}

func (s *StyledDom) OverflowY(node dom.NodeId) css.Overflow {
	return enumValue[css.Overflow](s, node, css.PropOverflowY)
}

func (s *StyledDom) TextAlign(node dom.NodeId) css.TextAlign {
	return enumValue[css.TextAlign](s, node, css.PropTextAlign)
}

func (s *StyledDom) WhiteSpace(node dom.NodeId) css.WhiteSpace {
	return enumValue[css.WhiteSpace](s, node, css.PropWhiteSpace)
}

func (s *StyledDom) Direction(node dom.NodeId) css.Direction {
	return enumValue[css.Direction](s, node, css.PropDirection)
}

func (s *StyledDom) WritingMode(node dom.NodeId) css.WritingMode {
	return enumValue[css.WritingMode](s, node, css.PropWritingMode)
}

func (s *StyledDom) Visibility(node dom.NodeId) css.Visibility {
	return enumValue[css.Visibility](s, node, css.PropVisibility)
}

func (s *StyledDom) BorderCollapse(node dom.NodeId) css.BorderCollapse {
	return enumValue[css.BorderCollapse](s, node, css.PropBorderCollapse)
}

func (s *StyledDom) TableLayout(node dom.NodeId) css.TableLayout {
	return enumValue[css.TableLayout](s, node, css.PropTableLayout)
}

// Length returns a length property, reading the compact tier first.
func (s *StyledDom) Length(node dom.NodeId, kind css.PropertyKind) css.CssPropertyValue[css.PixelValue] {
	if v, ok := s.Compact.Pixel(node, kind); ok {
		return v
	}
	return Get[css.PixelValue](s, node, kind)
}

// ResolveLength resolves a length property to px against percentBase. auto
// and none report ok=false.
func (s *StyledDom) ResolveLength(node dom.NodeId, kind css.PropertyKind, percentBase float32) (float32, bool) {
	v, ok := s.Length(node, kind).Get()
	if !ok {
		return 0, false
	}
	return v.ToPixels(s.ElementContext(node), percentBase), true
}

// ElementContext is the resolution context for em units of node.
func (s *StyledDom) ElementContext(node dom.NodeId) css.ResolutionContext {
	ctx := s.ctx
	ctx.EmSize = s.Cache.FontSize(node)
	if s.Len() > 0 {
		ctx.RemSize = s.Cache.FontSize(0)
	}
	return ctx
}

// Number returns a plain numeric property (flex-grow, flex-shrink, opacity, tab-width).
func (s *StyledDom) Number(node dom.NodeId, kind css.PropertyKind) float32 {
	if v, ok := s.Compact.Number(node, kind); ok {
		return v
	}
	return Get[css.FloatValue](s, node, kind).Value.Get()
}

// ZIndex returns the z-index and whether it is not auto.
func (s *StyledDom) ZIndex(node dom.NodeId) (int32, bool) {
	if raw, ok := s.Compact.Dim(node, css.PropZIndex); ok && raw == I16Auto {
		return 0, false
	}
	if v, ok := s.Compact.Int(node, css.PropZIndex); ok {
		return v, true
	}
	return Get[int32](s, node, css.PropZIndex).Get()
}

// Order returns the flex order.
func (s *StyledDom) Order(node dom.NodeId) int32 {
	return Get[int32](s, node, css.PropOrder).Value
}

// FontSize returns the resolved font size in px.
func (s *StyledDom) FontSize(node dom.NodeId) float32 { return s.Cache.FontSize(node) }

// LineHeight returns the used line height in px.
func (s *StyledDom) LineHeight(node dom.NodeId) float32 {
	v, ok := Get[css.PixelValue](s, node, css.PropLineHeight).Get()
	fs := s.FontSize(node)
	if !ok {
		return fs * 1.2
	}
	return v.ToPixels(s.ElementContext(node), fs)
}

// TextColor returns the text colour.
func (s *StyledDom) TextColor(node dom.NodeId) css.ColorU {
	return css.ColorFromRGBA32(s.Compact.nodes[node].Text.Color)
}

// FontFamily returns the font-family list.
func (s *StyledDom) FontFamily(node dom.NodeId) css.FontFamily {
	return Get[css.FontFamily](s, node, css.PropFontFamily).Value
}

// BorderWidths returns the used border widths; a border whose style does
// not paint takes no space.
func (s *StyledDom) BorderWidths(node dom.NodeId) [4]float32 {
	widths := [4]css.PropertyKind{css.PropBorderTopWidth, css.PropBorderRightWidth, css.PropBorderBottomWidth, css.PropBorderLeftWidth}
	styles := [4]css.PropertyKind{css.PropBorderTopStyle, css.PropBorderRightStyle, css.PropBorderBottomStyle, css.PropBorderLeftStyle}
	var out [4]float32
	for i := range widths {
		if !Get[css.BorderStyle](s, node, styles[i]).Value.IsVisible() {
			continue
		}
		out[i], _ = s.ResolveLength(node, widths[i], 0)
	}
	return out
}
