// internal/layout/build.go
package layout

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

// build constructs the box subtree of a DOM node. display: none subtrees
// generate no boxes.
func (r *run) build(id dom.NodeId) *LayoutNode {
	data := r.s.Node(id)
	if data.IsText() {
		n := newLayoutNode(TextRunBox, id)
		r.tree.byNode[id] = n
		return n
	}

	display := r.display(id)
	if display == css.DisplayNone {
		return nil
	}

	n := newLayoutNode(boxTypeFor(display), id)
	n.inlineLevel = display == css.DisplayInlineFlex || display == css.DisplayInlineTable
	n.outOfFlow = r.s.Position(id).IsOutOfFlow()
	switch data.Type {
	case dom.NodeImage, dom.NodeGlTexture, dom.NodeIFrame:
		n.replaced = true
	}
	r.tree.byNode[id] = n

	for _, child := range r.s.Dom.Children(id) {
		if c := r.build(child); c != nil {
			n.appendChild(c)
		}
	}

	switch n.BoxType {
	case FlexContainer:
		n.FC = FCFlex
		r.blockifyFlexItems(n)
	case TableBox:
		n.FC = FCTable
		r.fixupTableStructure(n)
	case InlineBox:
		// Block-level content inside an inline box turns it into a block.
		for _, c := range n.Children {
			if !c.IsInlineLevel() && !c.outOfFlow {
				n.BoxType = BlockBox
				break
			}
		}
		if n.BoxType == BlockBox {
			r.fixupBlockContainer(n)
		}
	case TableRowGroupBox, TableRowBox, TableColumnBox:
	default:
		if n.replaced {
			n.FC = FCNone
			n.Children = nil
			break
		}
		r.fixupBlockContainer(n)
	}
	return n
}

func boxTypeFor(d css.LayoutDisplay) BoxType {
	switch d {
	case css.DisplayInline:
		return InlineBox
	case css.DisplayInlineBlock:
		return InlineBlockBox
	case css.DisplayFlex, css.DisplayInlineFlex:
		return FlexContainer
	case css.DisplayTable, css.DisplayInlineTable:
		return TableBox
	case css.DisplayTableRowGroup, css.DisplayTableHeaderGroup, css.DisplayTableFooterGroup:
		return TableRowGroupBox
	case css.DisplayTableRow:
		return TableRowBox
	case css.DisplayTableCell:
		return TableCellBox
	case css.DisplayTableCaption:
		return TableCaptionBox
	case css.DisplayTableColumn, css.DisplayTableColumnGroup:
		return TableColumnBox
	}
	return BlockBox
}

// fixupBlockContainer decides the formatting context of a block container.
// If every in-flow child is inline-level the box owns an inline context;
// otherwise runs of inline-level children are wrapped in anonymous blocks.
func (r *run) fixupBlockContainer(n *LayoutNode) {
	hasInline, hasBlock := false, false
	for _, c := range n.Children {
		if c.outOfFlow {
			continue
		}
		if c.IsInlineLevel() {
			hasInline = true
		} else {
			hasBlock = true
		}
	}
	switch {
	case !hasBlock && hasInline:
		n.FC = FCInline
		return
	case !hasInline:
		n.FC = FCBlock
		return
	}

	n.FC = FCBlock
	children := n.Children
	n.Children = nil
	var anon *LayoutNode
	for _, c := range children {
		if c.IsInlineLevel() || (c.outOfFlow && anon != nil) {
			if anon == nil {
				anon = newLayoutNode(AnonymousBlockBox, dom.NoNode)
				anon.FC = FCInline
				n.appendChild(anon)
			}
			anon.appendChild(c)
			continue
		}
		anon = nil
		n.appendChild(c)
	}
}

// blockifyFlexItems turns inline-level children of a flex container into
// block-level items. Contiguous text runs become one anonymous item.
func (r *run) blockifyFlexItems(n *LayoutNode) {
	children := n.Children
	n.Children = nil
	var anon *LayoutNode
	for _, c := range children {
		if c.BoxType == TextRunBox {
			if anon == nil {
				anon = newLayoutNode(AnonymousBlockBox, dom.NoNode)
				anon.FC = FCInline
				n.appendChild(anon)
			}
			anon.appendChild(c)
			continue
		}
		anon = nil
		switch c.BoxType {
		case InlineBox:
			c.BoxType = BlockBox
			r.fixupBlockContainer(c)
		case InlineBlockBox:
			c.BoxType = BlockBox
		}
		c.inlineLevel = false
		n.appendChild(c)
	}
}

// fixupTableStructure wraps stray cells in anonymous rows and stray
// non-table content in anonymous cells so the grid walk only sees rows.
func (r *run) fixupTableStructure(table *LayoutNode) {
	children := table.Children
	table.Children = nil
	var row *LayoutNode
	wrapCell := func(c *LayoutNode) *LayoutNode {
		if c.BoxType == TableCellBox {
			return c
		}
		cell := newLayoutNode(TableCellBox, dom.NoNode)
		cell.appendChild(c)
		r.fixupBlockContainer(cell)
		return cell
	}
	for _, c := range children {
		switch c.BoxType {
		case TableRowGroupBox:
			row = nil
			r.fixupRowGroup(c, wrapCell)
			table.appendChild(c)
		case TableRowBox:
			row = nil
			r.fixupRow(c, wrapCell)
			table.appendChild(c)
		case TableCaptionBox, TableColumnBox:
			row = nil
			table.appendChild(c)
		default:
			if c.outOfFlow {
				table.appendChild(c)
				continue
			}
			if row == nil {
				row = newLayoutNode(TableRowBox, dom.NoNode)
				table.appendChild(row)
			}
			row.appendChild(wrapCell(c))
		}
	}
}

func (r *run) fixupRowGroup(group *LayoutNode, wrapCell func(*LayoutNode) *LayoutNode) {
	children := group.Children
	group.Children = nil
	var row *LayoutNode
	for _, c := range children {
		if c.BoxType == TableRowBox {
			row = nil
			r.fixupRow(c, wrapCell)
			group.appendChild(c)
			continue
		}
		if row == nil {
			row = newLayoutNode(TableRowBox, dom.NoNode)
			group.appendChild(row)
		}
		row.appendChild(wrapCell(c))
	}
}

func (r *run) fixupRow(row *LayoutNode, wrapCell func(*LayoutNode) *LayoutNode) {
	for i, c := range row.Children {
		if !c.outOfFlow {
			cell := wrapCell(c)
			cell.Parent = row
			row.Children[i] = cell
		}
	}
}
