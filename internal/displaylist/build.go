// internal/displaylist/build.go
package displaylist

import (
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/layout"
	"github.com/xkilldash9x/boxkit/internal/style"
	"github.com/xkilldash9x/boxkit/internal/text"
)

// DisplayList is the ordered, back-to-front paint sequence of one DOM.
type DisplayList struct {
	Viewport geom.LogicalRect
	// HiDPIFactor maps the logical coordinates of the items to device
	// pixels.
	HiDPIFactor float32
	Items       []Item
}

// PhysicalSize returns the viewport size in device pixels.
func (d *DisplayList) PhysicalSize() (width, height float32) {
	return d.Viewport.Size.Width * d.HiDPIFactor, d.Viewport.Size.Height * d.HiDPIFactor
}

// Len returns the number of items.
func (d *DisplayList) Len() int { return len(d.Items) }

// Count returns the number of items of kind k.
func (d *DisplayList) Count(k ItemKind) int {
	n := 0
	for _, it := range d.Items {
		if it.Kind() == k {
			n++
		}
	}
	return n
}

// Option configures Build.
type Option func(*builder)

// WithScrollOffsets supplies the current scroll offset of scroll containers.
func WithScrollOffsets(fn func(dom.NodeId) geom.LogicalPosition) Option {
	return func(b *builder) { b.scroll = fn }
}

// WithHiDPIFactor records the device pixel ratio of the target surface.
func WithHiDPIFactor(f float32) Option {
	return func(b *builder) {
		if f > 0 {
			b.hidpi = f
		}
	}
}

// WithLogger sets the logger; it is named "displaylist".
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) { b.logger = logger }
}

type builder struct {
	tree   *layout.LayoutTree
	s      *style.StyledDom
	scroll func(dom.NodeId) geom.LogicalPosition
	logger *zap.Logger
	hidpi  float32
	items  []Item
	// roots are boxes painted as their own (pseudo) stacking context rather
	// than in the normal flow of their parent.
	roots map[*layout.LayoutNode]bool
}

// stackingContext groups the boxes painted together. A pseudo context is
// a positioned box with z-index auto: it is painted atomically but the
// stacking contexts inside it belong to the enclosing real context.
type stackingContext struct {
	box      *layout.LayoutNode
	z        int32
	pseudo   bool
	children []*stackingContext
}

// Build walks a laid-out tree once and emits its paint sequence. Stacking
// contexts paint, in order: their own background and border, children with
// a negative z-index, the normal flow, then positioned children with
// z-index auto or zero and finally positive z-indexes, ties in tree order.
func Build(tree *layout.LayoutTree, styled *style.StyledDom, opts ...Option) *DisplayList {
	b := &builder{tree: tree, s: styled, hidpi: 1, roots: make(map[*layout.LayoutNode]bool)}
	for _, o := range opts {
		o(b)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	b.logger = b.logger.Named("displaylist")
	if b.scroll == nil {
		b.scroll = func(dom.NodeId) geom.LogicalPosition { return geom.LogicalPosition{} }
	}

	list := &DisplayList{Viewport: tree.Viewport, HiDPIFactor: b.hidpi}
	if tree.Root == nil {
		return list
	}
	root := &stackingContext{box: tree.Root}
	b.roots[tree.Root] = true
	b.collect(root, tree.Root)
	b.paintContext(root)
	list.Items = b.items

	b.logger.Debug("Display list built", zap.Int("items", len(list.Items)))
	return list
}

func (b *builder) emit(it Item) { b.items = append(b.items, it) }

// -- Stacking contexts --

// collect attaches the positioned and context-forming descendants of n to
// owner, in tree order.
func (b *builder) collect(owner *stackingContext, n *layout.LayoutNode) {
	for _, c := range n.Children {
		if c.IsAnonymous() {
			b.collect(owner, c)
			continue
		}
		if z, ok := b.formsContext(c); ok {
			child := &stackingContext{box: c, z: z}
			owner.children = append(owner.children, child)
			b.roots[c] = true
			b.collect(child, c)
			continue
		}
		if b.s.Position(c.Node).IsPositioned() {
			owner.children = append(owner.children, &stackingContext{box: c, pseudo: true})
			b.roots[c] = true
		}
		b.collect(owner, c)
	}
}

// formsContext reports whether the box starts a stacking context and its
// z-index.
func (b *builder) formsContext(n *layout.LayoutNode) (int32, bool) {
	pos := b.s.Position(n.Node)
	z, hasZ := b.s.ZIndex(n.Node)
	switch {
	case pos.IsPositioned() && hasZ:
		return z, true
	case pos == css.PositionFixed:
		return 0, true
	case b.s.Number(n.Node, css.PropOpacity) < 1:
		return z, true
	}
	if m, ok := style.Get[css.TransformMatrix](b.s, n.Node, css.PropTransform).Get(); ok && !m.IsIdentity() {
		return z, true
	}
	if style.Get[css.Shape](b.s, n.Node, css.PropClipPath).IsExact() {
		return z, true
	}
	return 0, false
}

func (b *builder) paintContext(sc *stackingContext) {
	n := sc.box
	if !sc.pseudo {
		b.emit(PushStackingContext{
			Node:      n.Node,
			ZIndex:    sc.z,
			Opacity:   b.s.Number(n.Node, css.PropOpacity),
			Transform: b.transform(n),
		})
	}

	clipPath := b.pushClipPath(n)
	b.paintSelf(n)

	children := sc.children
	sort.SliceStable(children, func(i, j int) bool { return children[i].z < children[j].z })
	split := sort.Search(len(children), func(i int) bool { return children[i].z >= 0 })
	for _, c := range children[:split] {
		b.paintChildContext(c, sc)
	}

	clipped := b.pushOverflowClip(n)
	b.paintFlow(n)
	if clipped {
		b.emit(PopClip{Node: n.Node})
	}

	for _, c := range children[split:] {
		b.paintChildContext(c, sc)
	}

	if clipPath {
		b.emit(PopClip{Node: n.Node})
	}
	if !sc.pseudo {
		b.emit(PopStackingContext{Node: n.Node})
	}
}

// paintChildContext paints c inside the overflow clips of the ancestors
// between it and the owning context that apply to it.
func (b *builder) paintChildContext(c, owner *stackingContext) {
	chain := b.clipChain(c.box, owner.box)
	for _, a := range chain {
		b.pushOverflowClip(a)
	}
	b.paintContext(c)
	for i := len(chain) - 1; i >= 0; i-- {
		b.emit(PopClip{Node: chain[i].Node})
	}
}

// clipChain lists the clipping ancestors of n below stop, outermost
// first. Clips between an out-of-flow box and its containing block do
// not apply to it.
func (b *builder) clipChain(n, stop *layout.LayoutNode) []*layout.LayoutNode {
	var chain []*layout.LayoutNode
	skipUntil := (*layout.LayoutNode)(nil)
	switch b.s.Position(n.Node) {
	case css.PositionFixed:
		return nil
	case css.PositionAbsolute:
		if skipUntil = b.containingBlock(n); skipUntil == nil {
			return nil
		}
	}
	for a := n.Parent; a != nil && a != stop.Parent; a = a.Parent {
		if skipUntil != nil {
			if a != skipUntil {
				continue
			}
			skipUntil = nil
		}
		if !a.IsAnonymous() && b.clips(a) {
			chain = append(chain, a)
		}
		if a == stop {
			break
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (b *builder) containingBlock(n *layout.LayoutNode) *layout.LayoutNode {
	for p := n.Parent; p != nil; p = p.Parent {
		if !p.IsAnonymous() && b.s.Position(p.Node).IsPositioned() {
			return p
		}
	}
	return nil
}

// paintFlow paints the in-flow descendants of n in tree order.
func (b *builder) paintFlow(n *layout.LayoutNode) {
	for _, c := range n.Children {
		if b.roots[c] {
			continue
		}
		b.paintSelf(c)
		if c.IsAnonymous() {
			b.paintFlow(c)
			continue
		}
		clipped := b.pushOverflowClip(c)
		b.paintFlow(c)
		if clipped {
			b.emit(PopClip{Node: c.Node})
		}
	}
}

// -- Clips --

func (b *builder) clips(n *layout.LayoutNode) bool {
	return b.s.OverflowX(n.Node).Clips() || b.s.OverflowY(n.Node).Clips()
}

func (b *builder) pushOverflowClip(n *layout.LayoutNode) bool {
	if n.IsAnonymous() || !b.clips(n) {
		return false
	}
	clip := PushClip{
		Node:   n.Node,
		Bounds: n.Dimensions.PaddingBox(),
		Radii:  b.radii(n).shrink(n.Dimensions.Border),
	}
	if b.s.IsScrollContainer(n.Node) {
		clip.Scroll = b.scroll(n.Node)
	}
	b.emit(clip)
	return true
}

func (b *builder) pushClipPath(n *layout.LayoutNode) bool {
	if n.IsAnonymous() {
		return false
	}
	shape, ok := style.Get[css.Shape](b.s, n.Node, css.PropClipPath).Get()
	if !ok {
		return false
	}
	b.emit(PushClip{Node: n.Node, Bounds: n.Dimensions.BorderBox(), Shape: &shape})
	return true
}

// transform returns the transform of n about the centre of its border box.
func (b *builder) transform(n *layout.LayoutNode) css.TransformMatrix {
	m, ok := style.Get[css.TransformMatrix](b.s, n.Node, css.PropTransform).Get()
	if !ok || m.IsIdentity() {
		return css.IdentityMatrix()
	}
	bb := n.Dimensions.BorderBox()
	cx, cy := bb.Origin.X+bb.Size.Width/2, bb.Origin.Y+bb.Size.Height/2
	return css.TranslateMatrix(cx, cy).Multiply(m).Multiply(css.TranslateMatrix(-cx, -cy))
}

// -- Box painting --

func (b *builder) visible(id dom.NodeId) bool {
	return b.s.Visibility(id) == css.VisibilityVisible
}

// paintSelf emits the decorations and replaced content of one box.
func (b *builder) paintSelf(n *layout.LayoutNode) {
	if n.IsAnonymous() || !b.visible(n.Node) {
		return
	}
	if n.Text != nil {
		b.paintText(n)
		return
	}
	id := n.Node
	bounds := n.Dimensions.BorderBox()
	radii := b.radii(n)

	shadow, hasShadow := b.boxShadow(n, bounds, radii)
	if hasShadow && !shadow.Inset {
		b.emit(shadow)
	}
	b.paintBackground(n, bounds, radii)
	if hasShadow && shadow.Inset {
		b.emit(shadow)
	}
	b.paintBorder(n, bounds, radii)

	area := HitArea{Node: id, Bounds: bounds}
	area.Tag, area.HasTag = b.s.TagOf(id)
	b.emit(area)

	// Replaced content sits above the box's own hit area.
	node := b.s.Node(id)
	content := n.Dimensions.Content
	switch node.Type {
	case dom.NodeImage:
		b.emit(Image{Node: id, Bounds: content, Name: node.Image.Name})
	case dom.NodeGlTexture:
		b.emit(Image{Node: id, Bounds: content, Name: "gltexture", External: true})
	case dom.NodeIFrame:
		b.emit(IFrame{Node: id, Bounds: content})
	}
}

func (b *builder) paintBackground(n *layout.LayoutNode, bounds geom.LogicalRect, radii BorderRadii) {
	bg, ok := style.Get[css.BackgroundContent](b.s, n.Node, css.PropBackgroundContent).Get()
	if !ok {
		return
	}
	switch bg.Kind {
	case css.BackgroundColor:
		if !bg.Color.IsTransparent() {
			b.emit(Rect{Node: n.Node, Bounds: bounds, Color: bg.Color, Radii: radii})
		}
	case css.BackgroundLinearGradient, css.BackgroundRadialGradient:
		b.emit(Gradient{
			Node:     n.Node,
			Bounds:   bounds,
			Radial:   bg.Kind == css.BackgroundRadialGradient,
			Gradient: bg.Gradient,
			Radii:    radii,
		})
	case css.BackgroundImage:
		b.emit(Image{Node: n.Node, Bounds: n.Dimensions.PaddingBox(), Name: bg.Image})
	}
}

var (
	borderStyleProps = [4]css.PropertyKind{css.PropBorderTopStyle, css.PropBorderRightStyle, css.PropBorderBottomStyle, css.PropBorderLeftStyle}
	borderColorProps = [4]css.PropertyKind{css.PropBorderTopColor, css.PropBorderRightColor, css.PropBorderBottomColor, css.PropBorderLeftColor}
)

func (b *builder) paintBorder(n *layout.LayoutNode, bounds geom.LogicalRect, radii BorderRadii) {
	w := n.Dimensions.Border
	if w == (geom.Edges{}) {
		return
	}
	border := Border{Node: n.Node, Bounds: bounds, Widths: w, Radii: radii}
	for i := range borderStyleProps {
		border.Styles[i] = style.Get[css.BorderStyle](b.s, n.Node, borderStyleProps[i]).Value
		border.Colors[i] = style.Get[css.ColorU](b.s, n.Node, borderColorProps[i]).GetOr(css.ColorBlack)
	}
	b.emit(border)
}

func (b *builder) boxShadow(n *layout.LayoutNode, bounds geom.LogicalRect, radii BorderRadii) (BoxShadow, bool) {
	bs, ok := style.Get[css.BoxShadow](b.s, n.Node, css.PropBoxShadow).Get()
	if !ok || bs.Color.IsTransparent() {
		return BoxShadow{}, false
	}
	ctx := b.s.ElementContext(n.Node)
	return BoxShadow{
		Node:   n.Node,
		Bounds: bounds,
		Offset: geom.LogicalPosition{X: bs.OffsetX.ToPixels(ctx, 0), Y: bs.OffsetY.ToPixels(ctx, 0)},
		Blur:   max(0, bs.Blur.ToPixels(ctx, 0)),
		Spread: bs.Spread.ToPixels(ctx, 0),
		Color:  bs.Color,
		Inset:  bs.Inset,
		Radii:  radii,
	}, true
}

var radiusProps = [4]css.PropertyKind{
	css.PropBorderTopLeftRadius, css.PropBorderTopRightRadius,
	css.PropBorderBottomRightRadius, css.PropBorderBottomLeftRadius,
}

// radii resolves the corner radii; percentages refer to the border box
// width and each radius is capped at half the shorter side.
func (b *builder) radii(n *layout.LayoutNode) BorderRadii {
	if n.IsAnonymous() {
		return BorderRadii{}
	}
	size := n.Dimensions.BorderBox().Size
	limit := min(size.Width, size.Height) / 2
	var r [4]float32
	for i, kind := range radiusProps {
		v, _ := b.s.ResolveLength(n.Node, kind, size.Width)
		r[i] = clampRadius(v, limit)
	}
	return BorderRadii{TopLeft: r[0], TopRight: r[1], BottomRight: r[2], BottomLeft: r[3]}
}

func clampRadius(v, limit float32) float32 {
	return max(0, min(v, limit))
}

// paintText emits one glyph run per line of a text box. Text nodes take
// their decoration from the element that contains them.
func (b *builder) paintText(n *layout.LayoutNode) {
	t := n.Text
	if t.Shaped == nil || t.Words == nil {
		return
	}
	id := n.Node
	decoration := css.TextDecorationNone
	if p := b.s.Dom.Parent(id); p.IsValid() {
		decoration = style.Get[css.TextDecoration](b.s, p, css.PropTextDecoration).Value
	}
	family := b.s.FontFamily(id).String()
	color := b.s.TextColor(id)
	scale := t.Shaped.Metrics.Scale(t.FontSize)

	var run *Text
	line := -1
	flush := func() {
		if run != nil && len(run.Glyphs) > 0 {
			b.emit(*run)
		}
		run = nil
	}
	for i, w := range t.Words.Items {
		if w.Kind != text.WordText || i >= len(t.Positions) || i >= len(t.Shaped.Words) {
			continue
		}
		pos := t.Positions[i]
		if pos.Line != line || run == nil {
			flush()
			line = pos.Line
			run = &Text{Node: id, Bounds: t.WordRect(i), FontSize: t.FontSize, FontFamily: family, Color: color, Decoration: decoration}
		}
		run.Bounds = run.Bounds.Union(t.WordRect(i))
		x, baseline := pos.Origin.X, pos.Origin.Y+t.Ascent
		for _, g := range t.Shaped.Words[i].Glyphs {
			run.Glyphs = append(run.Glyphs, GlyphInstance{Index: g.Index, Origin: geom.LogicalPosition{X: x, Y: baseline}})
			x += float32(g.Advance) * scale
		}
	}
	flush()
}
