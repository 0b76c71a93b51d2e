// internal/layout/intrinsic.go
package layout

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/text"
)

// intrinsicSizes returns the min-content and max-content border-box widths
// of n. Percentages of padding count as zero; a percentage width resolves
// against the viewport for the max-content size only.
func (r *run) intrinsicSizes(n *LayoutNode) IntrinsicSizes {
	if n.intrinsicDone {
		return n.intrinsic
	}
	in := r.computeIntrinsic(n)
	in.MaxContent = max(in.MaxContent, in.MinContent)
	n.intrinsic, n.intrinsicDone = in, true
	return in
}

func (r *run) computeIntrinsic(n *LayoutNode) IntrinsicSizes {
	if n.BoxType == TextRunBox {
		return r.textIntrinsic(n)
	}
	if n.BoxType == InlineBox {
		// Inline box edges do not take part in line layout.
		return r.inlineIntrinsic(n.Children)
	}

	static := r.horizontalStatic(n)
	if w := r.autoLength(n, css.PropWidth, -1); !isNaN(w) {
		if !r.borderBox(n) {
			w += static
		}
		w = r.clampIntrinsic(n, w, static)
		return IntrinsicSizes{MinContent: w, MaxContent: w}
	}

	var in IntrinsicSizes
	switch {
	case n.replaced:
		w := r.replacedWidth(n)
		in = IntrinsicSizes{MinContent: w, MaxContent: w}
	case r.isPercent(n, css.PropWidth):
		inner := r.contentIntrinsic(n)
		in = IntrinsicSizes{MinContent: inner.MinContent}
		if w := r.autoLength(n, css.PropWidth, r.viewport.Size.Width); !isNaN(w) {
			if r.borderBox(n) {
				w = max(0, w-static)
			}
			in.MaxContent = w
		}
	default:
		in = r.contentIntrinsic(n)
	}
	in.MinContent = r.clampIntrinsic(n, in.MinContent+static, static)
	in.MaxContent = r.clampIntrinsic(n, in.MaxContent+static, static)
	return in
}

// clampIntrinsic applies min-width and max-width to a border-box width.
func (r *run) clampIntrinsic(n *LayoutNode, w, static float32) float32 {
	if n.IsAnonymous() {
		return w
	}
	toBorder := static
	if r.borderBox(n) {
		toBorder = 0
	}
	if hi := r.autoLength(n, css.PropMaxWidth, -1); !isNaN(hi) {
		w = min(w, hi+toBorder)
	}
	if lo := r.autoLength(n, css.PropMinWidth, -1); !isNaN(lo) {
		w = max(w, lo+toBorder)
	}
	return w
}

// contentIntrinsic is the content-box intrinsic size of n's children.
func (r *run) contentIntrinsic(n *LayoutNode) IntrinsicSizes {
	switch n.FC {
	case FCInline:
		return r.inlineIntrinsic(n.Children)
	case FCFlex:
		return r.flexIntrinsic(n)
	case FCTable:
		return r.tableIntrinsic(n)
	case FCBlock:
		var in IntrinsicSizes
		for _, c := range n.Children {
			if c.outOfFlow {
				continue
			}
			child := r.intrinsicSizes(c)
			margins := r.intrinsicMargins(c)
			in.MinContent = max(in.MinContent, child.MinContent+margins)
			in.MaxContent = max(in.MaxContent, child.MaxContent+margins)
		}
		return in
	}
	return IntrinsicSizes{}
}

// inlineIntrinsic sums the content of a line for max-content; the widest
// unbreakable piece is min-content.
func (r *run) inlineIntrinsic(children []*LayoutNode) IntrinsicSizes {
	var in IntrinsicSizes
	for _, c := range children {
		if c.outOfFlow {
			continue
		}
		child := r.intrinsicSizes(c)
		margins := float32(0)
		if c.isAtomicInline() {
			margins = r.intrinsicMargins(c)
		}
		in.MinContent = max(in.MinContent, child.MinContent+margins)
		in.MaxContent += child.MaxContent + margins
	}
	return in
}

func (r *run) flexIntrinsic(n *LayoutNode) IntrinsicSizes {
	dirInfo := r.flexDirectionInfo(n)
	wraps := r.s.FlexWrap(n.Node) != css.FlexWrapNoWrap
	gap := r.length(n, css.PropColumnGap, 0)

	var in IntrinsicSizes
	count := 0
	for _, c := range n.Children {
		if c.outOfFlow {
			continue
		}
		child := r.intrinsicSizes(c)
		margins := r.intrinsicMargins(c)
		lo, hi := child.MinContent+margins, child.MaxContent+margins
		if dirInfo.MainAxis == geom.Vertical {
			in.MinContent = max(in.MinContent, lo)
			in.MaxContent = max(in.MaxContent, hi)
			continue
		}
		if count > 0 {
			in.MaxContent += gap
			if !wraps {
				in.MinContent += gap
			}
		}
		in.MaxContent += hi
		if wraps {
			in.MinContent = max(in.MinContent, lo)
		} else {
			in.MinContent += lo
		}
		count++
	}
	return in
}

// intrinsicMargins is the non-auto horizontal margin of a box; percentages
// count as zero.
func (r *run) intrinsicMargins(n *LayoutNode) float32 {
	return r.length(n, css.PropMarginLeft, 0) + r.length(n, css.PropMarginRight, 0)
}

// textIntrinsic measures a text run: the widest word, and the widest line
// between forced breaks.
func (r *run) textIntrinsic(n *LayoutNode) IntrinsicSizes {
	sr := r.shapeRun(n)
	collapsible := r.s.WhiteSpace(n.Node) != css.WhiteSpacePre && r.s.WhiteSpace(n.Node) != css.WhiteSpacePreWrap

	var in IntrinsicSizes
	var lineWidth, contentEnd float32
	endLine := func() {
		end := lineWidth
		if collapsible {
			end = contentEnd
		}
		in.MaxContent = max(in.MaxContent, end)
		lineWidth, contentEnd = 0, 0
	}
	for i, w := range sr.words.Items {
		switch w.Kind {
		case text.WordReturn:
			endLine()
			continue
		case text.WordSpace, text.WordTab:
			if collapsible && lineWidth == 0 {
				continue
			}
		case text.WordText:
			in.MinContent = max(in.MinContent, sr.width(i))
		}
		lineWidth += sr.width(i)
		if w.Kind == text.WordText {
			contentEnd = lineWidth
		}
	}
	endLine()
	if !sr.wraps {
		in.MinContent = in.MaxContent
	}
	return in
}
