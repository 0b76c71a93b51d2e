// internal/layout/block.go
package layout

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// sizing carries the constraints a box is laid out under.
type sizing struct {
	// cb is the containing block's content size. A negative height is
	// indefinite.
	cb geom.LogicalSize
	// width and height force the content-box size when not NaN.
	width, height float32
	// shrinkToFit sizes an auto width to its content.
	shrinkToFit bool
}

// LayoutContext tracks the vertical flow of a block formatting context and
// the margins waiting to collapse.
type LayoutContext struct {
	CurrentY          float32
	MaxNegativeMargin float32
	MaxPositiveMargin float32
}

func NewLayoutContext(startY float32) *LayoutContext {
	return &LayoutContext{CurrentY: startY}
}

func (lc *LayoutContext) AddToMarginTotals(margin float32) {
	if margin > 0 {
		lc.MaxPositiveMargin = max(lc.MaxPositiveMargin, margin)
	} else if margin < lc.MaxNegativeMargin {
		lc.MaxNegativeMargin = margin
	}
}

func (lc *LayoutContext) CalculateCollapsedMargin() float32 {
	return lc.MaxPositiveMargin + lc.MaxNegativeMargin
}

func (lc *LayoutContext) ResetMargins() {
	lc.MaxNegativeMargin = 0
	lc.MaxPositiveMargin = 0
}

// layoutBox lays n out with its margin box at pos.
func (r *run) layoutBox(n *LayoutNode, pos geom.LogicalPosition, sz sizing) {
	r.computeEdges(n, sz.cb.Width)
	d := &n.Dimensions

	if !isNaN(sz.width) {
		resolveAutoMargins(d)
		d.Content.Size.Width = max(0, sz.width)
	} else {
		r.calculateBlockWidth(n, sz.cb.Width, sz.shrinkToFit)
	}
	resolveAutoMargins(d)

	d.Content.Origin = geom.LogicalPosition{
		X: pos.X + d.Margin.Left + d.Border.Left + d.Padding.Left,
		Y: pos.Y + d.Margin.Top + d.Border.Top + d.Padding.Top,
	}

	height := sz.height
	if isNaN(height) {
		height = r.specifiedHeight(n, sz.cb.Height)
	}
	d.Content.Size.Height = max(0, height)
	n.definiteHeight = height

	contentHeight := r.layoutContent(n, height)
	if isNaN(height) {
		height = r.clampHeight(n, contentHeight, sz.cb.Height)
	}
	d.Content.Size.Height = max(0, height)
}

// layoutContent dispatches to the box's formatting context and returns
// the height its content occupies.
func (r *run) layoutContent(n *LayoutNode, height float32) float32 {
	switch n.FC {
	case FCBlock:
		return r.layoutBlockFlow(n)
	case FCInline:
		return r.layoutInlineFlow(n)
	case FCFlex:
		return r.layoutFlex(n, height)
	case FCTable:
		return r.layoutTable(n)
	}
	if n.replaced {
		return r.replacedHeight(n)
	}
	return 0
}

// layoutBlockFlow stacks in-flow children top to bottom, collapsing
// adjacent vertical margins.
func (r *run) layoutBlockFlow(b *LayoutNode) float32 {
	content := b.Dimensions.Content
	context := NewLayoutContext(content.Origin.Y)
	cb := geom.LogicalSize{Width: content.Size.Width, Height: r.definiteHeight(b)}

	for _, child := range b.Children {
		if child.outOfFlow {
			continue
		}

		marginTop := r.marginTop(child, cb.Width)
		if child.BoxType == AnonymousBlockBox || r.establishesFormattingContext(child) {
			context.CurrentY += context.CalculateCollapsedMargin()
			context.ResetMargins()
		}
		context.AddToMarginTotals(marginTop)

		collapsedTopMargin := context.CalculateCollapsedMargin()
		borderTop := context.CurrentY + collapsedTopMargin
		r.layoutBox(child, geom.LogicalPosition{X: content.Origin.X, Y: borderTop - marginTop}, sizing{
			cb:     cb,
			width:  nan,
			height: nan,
		})

		context.CurrentY = borderTop + child.Dimensions.BorderBox().Size.Height
		context.ResetMargins()
		context.AddToMarginTotals(child.Dimensions.Margin.Bottom)
	}

	context.CurrentY += context.CalculateCollapsedMargin()
	return context.CurrentY - content.Origin.Y
}

// establishesFormattingContext reports whether margins stop collapsing at
// the box.
func (r *run) establishesFormattingContext(n *LayoutNode) bool {
	if n.IsAnonymous() {
		return n.BoxType == AnonymousBlockBox
	}
	switch n.BoxType {
	case InlineBlockBox, FlexContainer, TableBox, TableCellBox:
		return true
	}
	if r.display(n.Node) == css.DisplayFlowRoot {
		return true
	}
	return r.s.OverflowX(n.Node).Clips() || r.s.OverflowY(n.Node).Clips()
}

func (r *run) marginTop(n *LayoutNode, cbWidth float32) float32 {
	return r.length(n, css.PropMarginTop, max(cbWidth, 0))
}

// definiteHeight is the content height of b when it was known before its
// children were laid out, or -1.
func (r *run) definiteHeight(b *LayoutNode) float32 {
	if isNaN(b.definiteHeight) {
		return -1
	}
	return b.definiteHeight
}

// calculateBlockWidth resolves width and horizontal margins against the
// containing block width.
func (r *run) calculateBlockWidth(b *LayoutNode, referenceWidth float32, shrinkToFit bool) {
	d := &b.Dimensions
	totalStatic := d.boxStatic(geom.Horizontal)

	width := r.autoLength(b, css.PropWidth, referenceWidth)
	if !isNaN(width) && r.borderBox(b) {
		width = max(0, width-totalStatic)
	}
	autoLeft, autoRight := d.Margin.Left, d.Margin.Right
	marginLeft, marginRight := autoLeft, autoRight

	if b.replaced && isNaN(width) {
		width = r.replacedWidth(b)
		shrinkToFit = true
	}
	if shrinkToFit || b.isAtomicInline() {
		if isNaN(marginLeft) {
			marginLeft = 0
		}
		if isNaN(marginRight) {
			marginRight = 0
		}
		if isNaN(width) {
			available := referenceWidth - marginLeft - marginRight - totalStatic
			width = r.shrinkToFitWidth(b, available)
		}
		d.Content.Size.Width = r.clampWidth(b, width, referenceWidth)
		d.Margin.Left, d.Margin.Right = marginLeft, marginRight
		return
	}

	if isNaN(width) {
		if isNaN(marginLeft) {
			marginLeft = 0
		}
		if isNaN(marginRight) {
			marginRight = 0
		}
		width = max(0, referenceWidth-totalStatic-marginLeft-marginRight)
		clamped := r.clampWidth(b, width, referenceWidth)
		if clamped == width {
			d.Content.Size.Width = width
			d.Margin.Left, d.Margin.Right = marginLeft, marginRight
			return
		}
		// A clamped auto width behaves as if specified.
		width = clamped
		marginLeft, marginRight = autoLeft, autoRight
	} else {
		width = r.clampWidth(b, width, referenceWidth)
	}

	switch {
	case isNaN(marginLeft) && isNaN(marginRight):
		remaining := referenceWidth - totalStatic - width
		marginLeft = remaining / 2
		marginRight = remaining / 2
	case isNaN(marginLeft):
		marginLeft = referenceWidth - totalStatic - width - marginRight
	case isNaN(marginRight):
		marginRight = referenceWidth - totalStatic - width - marginLeft
	default:
		marginRight = referenceWidth - totalStatic - width - marginLeft
	}
	d.Content.Size.Width = width
	d.Margin.Left, d.Margin.Right = marginLeft, marginRight
}

// shrinkToFitWidth is min(max(min-content, available), max-content) for
// the content box.
func (r *run) shrinkToFitWidth(b *LayoutNode, available float32) float32 {
	in := r.intrinsicSizes(b)
	static := b.Dimensions.boxStatic(geom.Horizontal)
	minContent := max(0, in.MinContent-static)
	maxContent := max(0, in.MaxContent-static)
	return min(max(minContent, available), maxContent)
}

// clampWidth applies max-width then min-width to a content width.
func (r *run) clampWidth(b *LayoutNode, width, referenceWidth float32) float32 {
	lo, hi := r.minMax(b, css.PropMinWidth, css.PropMaxWidth, referenceWidth, geom.Horizontal)
	return clamp(width, lo, hi)
}

// clampHeight applies max-height then min-height to a content height.
func (r *run) clampHeight(b *LayoutNode, height, referenceHeight float32) float32 {
	lo, hi := r.minMax(b, css.PropMinHeight, css.PropMaxHeight, referenceHeight, geom.Vertical)
	return clamp(height, lo, hi)
}

// minMax returns the content-box min and max sizes on axis.
func (r *run) minMax(b *LayoutNode, minKind, maxKind css.PropertyKind, reference float32, axis geom.Axis) (lo, hi float32) {
	lo, hi = 0, posInf
	if b.IsAnonymous() {
		return lo, hi
	}
	static := float32(0)
	if r.borderBox(b) {
		static = b.Dimensions.boxStatic(axis)
	}
	if v := r.autoLength(b, minKind, reference); !isNaN(v) {
		lo = max(0, v-static)
	}
	if v := r.autoLength(b, maxKind, reference); !isNaN(v) {
		hi = max(0, v-static)
	}
	return lo, max(lo, hi)
}

// specifiedHeight resolves the height property to a content height. A
// percentage against an indefinite containing block height is auto (NaN).
func (r *run) specifiedHeight(b *LayoutNode, referenceHeight float32) float32 {
	h := r.autoLength(b, css.PropHeight, referenceHeight)
	if isNaN(h) {
		if b.replaced {
			return r.replacedHeight(b)
		}
		return nan
	}
	if r.borderBox(b) {
		h = max(0, h-b.Dimensions.boxStatic(geom.Vertical))
	}
	return r.clampHeight(b, h, referenceHeight)
}

// replacedWidth is the intrinsic width of an image, keeping the aspect
// ratio when only the height is given.
func (r *run) replacedWidth(b *LayoutNode) float32 {
	data := r.s.Node(b.Node)
	size := data.Image.Size
	if h := r.autoLength(b, css.PropHeight, -1); !isNaN(h) && size.Height > 0 {
		return h * size.Width / size.Height
	}
	return size.Width
}

func (r *run) replacedHeight(b *LayoutNode) float32 {
	data := r.s.Node(b.Node)
	size := data.Image.Size
	if size.Width > 0 && b.Dimensions.Content.Size.Width != size.Width {
		return b.Dimensions.Content.Size.Width * size.Height / size.Width
	}
	return size.Height
}
