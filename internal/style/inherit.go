// internal/style/inherit.go
package style

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

var propertyKinds = css.AllPropertyKinds()

// computeAll resolves every node: the root first, then the children of
// each parent in the parents-by-depth order.
func (s *StyledDom) computeAll() {
	if s.Len() == 0 {
		return
	}
	s.Cache.computed[0], s.Cache.fontSize[0] = s.computeNode(0)
	for _, p := range s.ParentsByDepth {
		for _, child := range s.Dom.Children(p.Node) {
			s.Cache.computed[child], s.Cache.fontSize[child] = s.computeNode(child)
		}
	}
}

// computeNode resolves the computed style of node for its current state.
// Its parent must already be computed.
func (s *StyledDom) computeNode(node dom.NodeId) ([]css.CssProperty, float32) {
	state := s.States[node].Mask()
	parent := s.Dom.Parent(node)
	out := make([]css.CssProperty, len(propertyKinds))

	for _, kind := range propertyKinds {
		decl, ok := s.Cache.Cascaded(node, kind, state)
		switch {
		case !ok && kind.IsInherited():
			out[kind] = s.inheritedValue(node, parent, kind)
		case !ok:
			out[kind] = kind.InitialValue()
		case decl.Property.Keyword == css.ValueInherit:
			out[kind] = s.inheritedValue(node, parent, kind)
		case decl.Property.Keyword == css.ValueInitial:
			out[kind] = s.initialValue(node, parent, kind)
		default:
			out[kind] = decl.Property
		}
	}

	fontSize := s.resolveFontSize(out[css.PropFontSize], parent)
	out[css.PropFontSize] = css.NewProperty(css.PropFontSize, css.Px(fontSize))
	return out, fontSize
}

// inheritedValue is the parent's computed value. The root has no parent
// and takes its UA default.
func (s *StyledDom) inheritedValue(node, parent dom.NodeId, kind css.PropertyKind) css.CssProperty {
	if parent.IsValid() {
		return s.Cache.computed[parent][kind]
	}
	return s.rootDefault(node, kind)
}

func (s *StyledDom) initialValue(node, parent dom.NodeId, kind css.PropertyKind) css.CssProperty {
	if !parent.IsValid() {
		return s.rootDefault(node, kind)
	}
	return kind.InitialValue()
}

// rootDefault returns the UA declaration for the root, falling back to the
// property's initial value.
func (s *StyledDom) rootDefault(node dom.NodeId, kind css.PropertyKind) css.CssProperty {
	decls := s.Cache.cascaded[node]
	for _, d := range decls {
		if d.Property.Kind == kind && d.Origin == OriginUserAgent && d.Property.IsExact() {
			return d.Property
		}
	}
	switch {
	case kind == css.PropFontSize:
		return css.NewProperty(css.PropFontSize, css.Px(s.ctx.RemSize))
	case kind == css.PropFontFamily && s.family != nil:
		return css.NewProperty(css.PropFontFamily, *s.family)
	}
	return kind.InitialValue()
}

// resolveFontSize turns em, rem, percentage and viewport font sizes into
// px. em and % are relative to the parent's font size.
func (s *StyledDom) resolveFontSize(p css.CssProperty, parent dom.NodeId) float32 {
	parentSize := s.ctx.RemSize
	if parent.IsValid() {
		parentSize = s.Cache.fontSize[parent]
	}
	v, ok := css.ValueOf[css.PixelValue](p).Get()
	if !ok {
		return parentSize
	}
	ctx := s.ctx
	ctx.EmSize = parentSize
	return v.ToPixels(ctx, parentSize)
}
