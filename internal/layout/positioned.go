// internal/layout/positioned.go
package layout

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// layoutOutOfFlow lays out absolutely and fixed positioned descendants of
// b in tree order, after their containing blocks have their final
// geometry.
func (r *run) layoutOutOfFlow(b *LayoutNode) {
	for _, child := range b.Children {
		if child.outOfFlow {
			r.layoutPositioned(child)
			r.applyRelativePositioning(child)
		}
		r.layoutOutOfFlow(child)
	}
}

// positioningContainingBlock returns the padding box positioned boxes are
// resolved against.
func (r *run) positioningContainingBlock(b *LayoutNode) (geom.LogicalRect, *LayoutNode) {
	if r.position(b) == css.PositionFixed {
		return r.viewport, nil
	}
	for p := b.Parent; p != nil; p = p.Parent {
		if r.position(p).IsPositioned() {
			return p.Dimensions.PaddingBox(), p
		}
	}
	return r.viewport, nil
}

// staticPosition is where the box would have been placed in normal flow:
// below its previous in-flow sibling, at the parent's content edge.
func (r *run) staticPosition(b *LayoutNode) geom.LogicalPosition {
	parent := b.Parent
	if parent == nil {
		return r.viewport.Origin
	}
	pos := parent.Dimensions.Content.Origin
	var prev *LayoutNode
	for _, c := range parent.Children {
		if c == b {
			break
		}
		if !c.outOfFlow {
			prev = c
		}
	}
	if prev != nil {
		pos.Y = prev.Dimensions.MarginBox().MaxY()
	}
	return pos
}

func (r *run) layoutPositioned(b *LayoutNode) {
	cb, cbNode := r.positioningContainingBlock(b)
	refWidth, refHeight := cb.Size.Width, cb.Size.Height
	if cbNode != nil && isNaN(cbNode.definiteHeight) && cbNode.Parent != nil {
		// Percentages of an auto-height box resolve as auto.
		refHeight = -1
	}

	r.computeEdges(b, refWidth)
	d := &b.Dimensions
	left := r.autoLength(b, css.PropLeft, refWidth)
	right := r.autoLength(b, css.PropRight, refWidth)
	width := r.autoLength(b, css.PropWidth, refWidth)
	top := r.autoLength(b, css.PropTop, refHeight)
	bottom := r.autoLength(b, css.PropBottom, refHeight)
	height := r.autoLength(b, css.PropHeight, refHeight)
	marginLeft, marginRight := d.Margin.Left, d.Margin.Right
	marginTop, marginBottom := d.Margin.Top, d.Margin.Bottom

	if r.borderBox(b) {
		if !isNaN(width) {
			width = max(0, width-d.boxStatic(geom.Horizontal))
		}
		if !isNaN(height) {
			height = max(0, height-d.boxStatic(geom.Vertical))
		}
	}
	if !isNaN(width) {
		width = r.clampWidth(b, width, refWidth)
	}
	if !isNaN(height) {
		height = r.clampHeight(b, height, refHeight)
	}

	if isNaN(height) && !isNaN(top) && !isNaN(bottom) {
		used := top + bottom + d.boxStatic(geom.Vertical)
		if !isNaN(marginTop) {
			used += marginTop
		}
		if !isNaN(marginBottom) {
			used += marginBottom
		}
		height = r.clampHeight(b, max(0, cb.Size.Height-used), refHeight)
	}

	static := r.staticPosition(b).Sub(cb.Origin)
	finalWidth, finalLeft, finalMarginLeft, finalMarginRight := r.solvePositionedHorizontalConstraints(b, cb.Size.Width, static.X, left, width, right, marginLeft, marginRight)

	r.layoutBox(b, geom.LogicalPosition{}, sizing{
		cb:     geom.LogicalSize{Width: refWidth, Height: refHeight},
		width:  finalWidth,
		height: height,
	})
	height = d.Content.Size.Height

	finalTop, finalMarginTop, finalMarginBottom := r.solvePositionedVerticalConstraints(b, cb.Size.Height, static.Y, top, height, bottom, marginTop, marginBottom)

	target := geom.LogicalPosition{
		X: cb.Origin.X + finalLeft + finalMarginLeft,
		Y: cb.Origin.Y + finalTop + finalMarginTop,
	}
	current := d.BorderBox().Origin
	b.translate(target.X-current.X, target.Y-current.Y)
	d.Margin = geom.Edges{Top: finalMarginTop, Right: finalMarginRight, Bottom: finalMarginBottom, Left: finalMarginLeft}
}

// solvePositionedHorizontalConstraints resolves left, width and the
// horizontal margins. NaN stands for auto. Auto margins absorb the slack
// when left, width and right are all given; otherwise right is derived.
func (r *run) solvePositionedHorizontalConstraints(b *LayoutNode, cbPaddingWidth, staticX, left, width, right, marginLeft, marginRight float32) (float32, float32, float32, float32) {
	hStatic := b.Dimensions.boxStatic(geom.Horizontal)
	availableWidth := cbPaddingWidth
	if !isNaN(left) {
		availableWidth -= left
	}
	if !isNaN(right) {
		availableWidth -= right
	}
	tempML := marginLeft
	if isNaN(tempML) {
		tempML = 0
	}
	tempMR := marginRight
	if isNaN(tempMR) {
		tempMR = 0
	}
	availableWidth = max(0, availableWidth-(tempML+tempMR+hStatic))

	if isNaN(width) && (isNaN(left) || isNaN(right)) {
		width = r.clampWidth(b, r.shrinkToFitWidth(b, availableWidth), cbPaddingWidth)
	}
	if isNaN(left) && isNaN(right) {
		left = staticX
	}

	if !isNaN(left) && !isNaN(right) && !isNaN(width) {
		remaining := cbPaddingWidth - left - right - width - hStatic
		switch {
		case isNaN(marginLeft) && isNaN(marginRight):
			marginLeft = remaining / 2
			marginRight = remaining / 2
		case isNaN(marginLeft):
			marginLeft = remaining - marginRight
		case isNaN(marginRight):
			marginRight = remaining - marginLeft
		}
	} else {
		if isNaN(marginLeft) {
			marginLeft = 0
		}
		if isNaN(marginRight) {
			marginRight = 0
		}
		switch {
		case isNaN(width):
			width = r.clampWidth(b, max(0, cbPaddingWidth-left-right-hStatic-marginLeft-marginRight), cbPaddingWidth)
		case isNaN(left):
			left = cbPaddingWidth - right - width - hStatic - marginLeft - marginRight
		}
	}

	if isNaN(marginLeft) {
		marginLeft = 0
	}
	if isNaN(marginRight) {
		marginRight = 0
	}
	return width, left, marginLeft, marginRight
}

// solvePositionedVerticalConstraints resolves top and the vertical margins
// for a box whose content height is already known.
func (r *run) solvePositionedVerticalConstraints(b *LayoutNode, cbPaddingHeight, staticY, top, height, bottom, marginTop, marginBottom float32) (float32, float32, float32) {
	vStatic := b.Dimensions.boxStatic(geom.Vertical)

	if isNaN(top) && isNaN(bottom) {
		top = staticY
	}

	if !isNaN(top) && !isNaN(bottom) {
		remaining := cbPaddingHeight - top - bottom - height - vStatic
		switch {
		case isNaN(marginTop) && isNaN(marginBottom):
			marginTop = remaining / 2
			marginBottom = remaining / 2
		case isNaN(marginTop):
			marginTop = remaining - marginBottom
		case isNaN(marginBottom):
			marginBottom = remaining - marginTop
		}
	} else {
		if isNaN(marginTop) {
			marginTop = 0
		}
		if isNaN(marginBottom) {
			marginBottom = 0
		}
		if isNaN(top) {
			top = cbPaddingHeight - bottom - height - vStatic - marginTop - marginBottom
		}
	}

	if isNaN(marginTop) {
		marginTop = 0
	}
	if isNaN(marginBottom) {
		marginBottom = 0
	}
	return top, marginTop, marginBottom
}

// applyRelativePositioning offsets relatively positioned boxes in the
// in-flow subtree of b. Siblings are not affected.
func (r *run) applyRelativePositioning(b *LayoutNode) {
	if b.Parent == nil {
		r.offsetRelative(b)
	}
	for _, child := range b.Children {
		if child.outOfFlow {
			continue
		}
		r.offsetRelative(child)
		r.applyRelativePositioning(child)
	}
}

func (r *run) offsetRelative(b *LayoutNode) {
	if r.position(b) != css.PositionRelative {
		return
	}
	cbWidth, cbHeight := r.viewport.Size.Width, r.viewport.Size.Height
	if p := b.Parent; p != nil {
		cbWidth, cbHeight = p.Dimensions.Content.Size.Width, r.definiteHeight(p)
	}

	var offsetX, offsetY float32
	if top := r.autoLength(b, css.PropTop, cbHeight); !isNaN(top) {
		offsetY = top
	} else if bottom := r.autoLength(b, css.PropBottom, cbHeight); !isNaN(bottom) {
		offsetY = -bottom
	}
	if left := r.autoLength(b, css.PropLeft, cbWidth); !isNaN(left) {
		offsetX = left
	} else if right := r.autoLength(b, css.PropRight, cbWidth); !isNaN(right) {
		offsetX = -right
	}
	b.translate(offsetX, offsetY)
}
