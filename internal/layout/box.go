// internal/layout/box.go
package layout

import (
	"math"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/text"
)

// -- Core Structures: Box Model and Dimensions --

// Dimensions defines the geometry of a layout box. Content is in window
// coordinates.
type Dimensions struct {
	Content geom.LogicalRect

	Padding geom.Edges
	Border  geom.Edges
	Margin  geom.Edges
}

// MarginBox returns the rectangle enclosing the margin area.
func (d Dimensions) MarginBox() geom.LogicalRect {
	return d.BorderBox().ExpandedBy(d.Margin)
}

// BorderBox returns the rectangle enclosing the border area.
func (d Dimensions) BorderBox() geom.LogicalRect {
	return d.PaddingBox().ExpandedBy(d.Border)
}

// PaddingBox returns the rectangle enclosing the padding area.
func (d Dimensions) PaddingBox() geom.LogicalRect {
	return d.Content.ExpandedBy(d.Padding)
}

// mainStatic is the margin, border and padding on the main axis.
func (d *Dimensions) mainStatic(axis geom.Axis) float32 {
	return d.Margin.Sum(axis) + d.Border.Sum(axis) + d.Padding.Sum(axis)
}

// boxStatic is border plus padding on axis.
func (d *Dimensions) boxStatic(axis geom.Axis) float32 {
	return d.Border.Sum(axis) + d.Padding.Sum(axis)
}

// -- Layout Tree (Box Tree) --

// BoxType defines the type of box generated by a node.
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	InlineBlockBox
	AnonymousBlockBox
	TextRunBox
	FlexContainer
	TableBox
	TableRowGroupBox
	TableRowBox
	TableCellBox
	TableCaptionBox
	TableColumnBox
)

var boxTypeNames = []string{
	"block", "inline", "inline-block", "anonymous", "text", "flex", "table",
	"table-row-group", "table-row", "table-cell", "table-caption", "table-column",
}

func (t BoxType) String() string {
	if int(t) < len(boxTypeNames) {
		return boxTypeNames[t]
	}
	return "unknown"
}

// FormattingContext is the set of rules a box applies to its in-flow
// children.
type FormattingContext uint8

const (
	FCNone FormattingContext = iota
	FCBlock
	FCInline
	FCFlex
	FCTable
)

var fcNames = []string{"none", "block", "inline", "flex", "table"}

func (f FormattingContext) String() string { return fcNames[f] }

// LineBox is one line of an inline formatting context.
type LineBox struct {
	Rect geom.LogicalRect
	// Baseline is the y coordinate of the line's baseline.
	Baseline float32
}

// InlineText is the positioned text of one text run.
type InlineText struct {
	Words  *text.Words
	Shaped *text.ShapedWords
	// Positions are parallel to Words.Items, in window coordinates.
	Positions  []text.WordPosition
	FontSize   float32
	LineHeight float32
	Ascent     float32
}

// WordRect returns the rectangle of word i.
func (t *InlineText) WordRect(i int) geom.LogicalRect {
	p := t.Positions[i]
	return geom.Rect(p.Origin.X, p.Origin.Y, p.Width, t.LineHeight)
}

// IntrinsicSizes are the min-content and max-content border-box widths.
type IntrinsicSizes struct {
	MinContent float32
	MaxContent float32
}

// LayoutNode is a node in the layout tree. Node is dom.NoNode for
// anonymous boxes.
type LayoutNode struct {
	Node       dom.NodeId
	BoxType    BoxType
	FC         FormattingContext
	Dimensions Dimensions
	Parent     *LayoutNode
	Children   []*LayoutNode

	// Lines are set on boxes that own an inline formatting context.
	Lines []LineBox
	// Text is set on text runs.
	Text *InlineText

	// inlineLevel marks inline-flex and inline-table containers.
	inlineLevel bool
	outOfFlow   bool
	replaced    bool
	// definiteHeight is the content height known before layout, NaN when
	// it depends on the content.
	definiteHeight float32

	intrinsic     IntrinsicSizes
	intrinsicDone bool
}

func newLayoutNode(boxType BoxType, node dom.NodeId) *LayoutNode {
	return &LayoutNode{BoxType: boxType, Node: node, definiteHeight: nan}
}

func (n *LayoutNode) appendChild(c *LayoutNode) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// IsAnonymous reports whether the box was generated without a DOM node.
func (n *LayoutNode) IsAnonymous() bool { return n.Node == dom.NoNode }

// IsOutOfFlow reports whether the box is absolutely or fixed positioned.
func (n *LayoutNode) IsOutOfFlow() bool { return n.outOfFlow }

// IsInlineLevel checks if the box participates in an inline formatting context.
func (n *LayoutNode) IsInlineLevel() bool {
	if n.outOfFlow {
		return false
	}
	switch n.BoxType {
	case InlineBox, InlineBlockBox, TextRunBox:
		return true
	case FlexContainer, TableBox:
		return n.inlineLevel
	}
	return false
}

// isAtomicInline reports whether the box is laid out as one unit on a line.
func (n *LayoutNode) isAtomicInline() bool {
	return n.IsInlineLevel() && n.BoxType != InlineBox && n.BoxType != TextRunBox
}

// Position is the border-box origin in window coordinates.
func (n *LayoutNode) Position() geom.LogicalPosition {
	return n.Dimensions.BorderBox().Origin
}

// UsedSize is the border-box size.
func (n *LayoutNode) UsedSize() geom.LogicalSize {
	return n.Dimensions.BorderBox().Size
}

// ContentBounds returns the union of the border boxes of all descendants
// and the node's own padding box; it is the scrollable overflow area.
func (n *LayoutNode) ContentBounds() geom.LogicalRect {
	bounds := n.Dimensions.PaddingBox()
	var walk func(c *LayoutNode)
	walk = func(c *LayoutNode) {
		for _, child := range c.Children {
			if child.Text != nil {
				for i := range child.Text.Positions {
					bounds = bounds.Union(child.Text.WordRect(i))
				}
			} else {
				bounds = bounds.Union(child.Dimensions.MarginBox())
			}
			walk(child)
		}
	}
	walk(n)
	return bounds
}

// translate moves the box and its subtree.
func (n *LayoutNode) translate(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	d := geom.LogicalPosition{X: dx, Y: dy}
	n.Dimensions.Content = n.Dimensions.Content.Translate(d)
	for i := range n.Lines {
		n.Lines[i].Rect = n.Lines[i].Rect.Translate(d)
		n.Lines[i].Baseline += dy
	}
	if n.Text != nil {
		for i := range n.Text.Positions {
			n.Text.Positions[i].Origin = n.Text.Positions[i].Origin.Add(d)
		}
	}
	for _, c := range n.Children {
		c.translate(dx, dy)
	}
}

// LayoutTree is the output of Solver.Layout.
type LayoutTree struct {
	Root     *LayoutNode
	Viewport geom.LogicalRect
	byNode   []*LayoutNode
}

// NodeFor returns the box generated by a DOM node.
func (t *LayoutTree) NodeFor(id dom.NodeId) (*LayoutNode, bool) {
	if int(id) >= len(t.byNode) || t.byNode[id] == nil {
		return nil, false
	}
	return t.byNode[id], true
}

// Rect returns the border box of a DOM node. Text runs report the union
// of their words.
func (t *LayoutTree) Rect(id dom.NodeId) (geom.LogicalRect, bool) {
	n, ok := t.NodeFor(id)
	if !ok {
		return geom.LogicalRect{}, false
	}
	return n.Dimensions.BorderBox(), true
}

// Walk visits every box in pre-order until fn returns false.
func (t *LayoutTree) Walk(fn func(n *LayoutNode) bool) {
	var walk func(n *LayoutNode) bool
	walk = func(n *LayoutNode) bool {
		if !fn(n) {
			return false
		}
		for _, c := range n.Children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	if t.Root != nil {
		walk(t.Root)
	}
}

// Len returns the number of boxes.
func (t *LayoutTree) Len() int {
	n := 0
	t.Walk(func(*LayoutNode) bool { n++; return true })
	return n
}

// -- Helpers --

var (
	nan    = float32(math.NaN())
	posInf = float32(math.Inf(1))
)

func isNaN(f float32) bool { return f != f }

func clamp(v, lo, hi float32) float32 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
