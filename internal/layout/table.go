// internal/layout/table.go
package layout

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// maxSpan bounds colspan and rowspan the way HTML parsers do.
const maxSpan = 1000

// tableCell is a cell placed on the grid.
type tableCell struct {
	box              *LayoutNode
	row, col         int
	rowSpan, colSpan int
}

// tableGrid is the slot map of a table.
type tableGrid struct {
	rows     []*LayoutNode
	groups   []*LayoutNode
	cells    []*tableCell
	captions []*LayoutNode
	numCols  int
}

// buildTableGrid walks header groups, then bodies and loose rows, then
// footer groups, reserving slots for spanning cells.
func (r *run) buildTableGrid(table *LayoutNode) *tableGrid {
	g := &tableGrid{}
	var headers, bodies, footers []*LayoutNode
	for _, c := range table.Children {
		switch c.BoxType {
		case TableCaptionBox:
			g.captions = append(g.captions, c)
		case TableRowGroupBox:
			switch r.display(c.Node) {
			case css.DisplayTableHeaderGroup:
				headers = append(headers, c)
			case css.DisplayTableFooterGroup:
				footers = append(footers, c)
			default:
				bodies = append(bodies, c)
			}
		case TableRowBox:
			bodies = append(bodies, c)
		}
	}

	// occupied[row] marks the columns taken by cells spanning down.
	var occupied [][]bool
	taken := func(row, col int) bool {
		return row < len(occupied) && col < len(occupied[row]) && occupied[row][col]
	}
	reserve := func(row, col int) {
		for len(occupied) <= row {
			occupied = append(occupied, nil)
		}
		for len(occupied[row]) <= col {
			occupied[row] = append(occupied[row], false)
		}
		occupied[row][col] = true
	}

	addRow := func(row *LayoutNode) {
		rowIdx := len(g.rows)
		g.rows = append(g.rows, row)
		col := 0
		for _, cell := range row.Children {
			if cell.outOfFlow || cell.BoxType != TableCellBox {
				continue
			}
			for taken(rowIdx, col) {
				col++
			}
			colSpan := r.spanAttr(cell, "colspan")
			rowSpan := r.spanAttr(cell, "rowspan")
			for dr := 0; dr < rowSpan; dr++ {
				for dc := 0; dc < colSpan; dc++ {
					reserve(rowIdx+dr, col+dc)
				}
			}
			g.cells = append(g.cells, &tableCell{box: cell, row: rowIdx, col: col, rowSpan: rowSpan, colSpan: colSpan})
			col += colSpan
			g.numCols = max(g.numCols, col)
		}
	}

	for _, list := range [][]*LayoutNode{headers, bodies, footers} {
		for _, c := range list {
			if c.BoxType == TableRowBox {
				addRow(c)
				continue
			}
			g.groups = append(g.groups, c)
			for _, row := range c.Children {
				if row.BoxType == TableRowBox {
					addRow(row)
				}
			}
		}
	}

	// Row spans cannot reach past the last row.
	for _, c := range g.cells {
		c.rowSpan = min(c.rowSpan, len(g.rows)-c.row)
	}
	return g
}

func (r *run) spanAttr(cell *LayoutNode, name string) int {
	if cell.IsAnonymous() {
		return 1
	}
	v, ok := r.s.Node(cell.Node).Attribute(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		if err != nil {
			r.solver.logger.Debug("Ignoring malformed span attribute", zap.String("attr", name), zap.String("value", v))
		}
		return 1
	}
	return min(n, maxSpan)
}

// borderSpacing is the gap between cells; collapsed borders have none.
func (r *run) borderSpacing(table *LayoutNode) float32 {
	if table.IsAnonymous() || r.s.BorderCollapse(table.Node) == css.BorderCollapseCollapse {
		return 0
	}
	return r.length(table, css.PropBorderSpacing, 0)
}

// columnIntrinsics aggregates cell min and max widths per column. Spanning
// cells spread any excess equally over their columns.
func (r *run) columnIntrinsics(g *tableGrid) (colMin, colMax []float32) {
	colMin = make([]float32, g.numCols)
	colMax = make([]float32, g.numCols)
	cellSizes := func(c *tableCell) (float32, float32) {
		in := r.intrinsicSizes(c.box)
		return in.MinContent, max(in.MinContent, in.MaxContent)
	}
	for _, c := range g.cells {
		if c.colSpan != 1 {
			continue
		}
		lo, hi := cellSizes(c)
		colMin[c.col] = max(colMin[c.col], lo)
		colMax[c.col] = max(colMax[c.col], hi)
	}
	for _, c := range g.cells {
		if c.colSpan == 1 {
			continue
		}
		lo, hi := cellSizes(c)
		var sumMin, sumMax float32
		for i := c.col; i < c.col+c.colSpan; i++ {
			sumMin += colMin[i]
			sumMax += colMax[i]
		}
		if extra := lo - sumMin; extra > 0 {
			for i := c.col; i < c.col+c.colSpan; i++ {
				colMin[i] += extra / float32(c.colSpan)
			}
		}
		if extra := hi - sumMax; extra > 0 {
			for i := c.col; i < c.col+c.colSpan; i++ {
				colMax[i] += extra / float32(c.colSpan)
			}
		}
	}
	for i := range colMax {
		colMax[i] = max(colMax[i], colMin[i])
	}
	return colMin, colMax
}

// tableIntrinsic is the content-box intrinsic width of a table.
func (r *run) tableIntrinsic(table *LayoutNode) IntrinsicSizes {
	g := r.buildTableGrid(table)
	colMin, colMax := r.columnIntrinsics(g)
	spacing := r.borderSpacing(table) * float32(g.numCols+1)
	if g.numCols == 0 {
		spacing = 0
	}
	in := IntrinsicSizes{MinContent: spacing, MaxContent: spacing}
	for i := range colMin {
		in.MinContent += colMin[i]
		in.MaxContent += colMax[i]
	}
	for _, c := range g.captions {
		caption := r.intrinsicSizes(c)
		in.MinContent = max(in.MinContent, caption.MinContent)
	}
	return in
}

// distributeAutoColumns sizes columns for table-layout: auto. When the
// maxima fit, columns share the width in proportion to their maxima;
// otherwise they interpolate between min and max; below the minima
// they keep their minimum.
func distributeAutoColumns(colMin, colMax []float32, available float32) []float32 {
	widths := make([]float32, len(colMin))
	var sumMin, sumMax float32
	for i := range colMin {
		sumMin += colMin[i]
		sumMax += colMax[i]
	}
	switch {
	case available >= sumMax:
		extra := available - sumMax
		for i := range widths {
			if sumMax > 0 {
				widths[i] = colMax[i] + extra*colMax[i]/sumMax
			} else {
				widths[i] = available / float32(len(widths))
			}
		}
	case available >= sumMin && sumMax > sumMin:
		t := (available - sumMin) / (sumMax - sumMin)
		for i := range widths {
			widths[i] = colMin[i] + (colMax[i]-colMin[i])*t
		}
	default:
		copy(widths, colMin)
	}
	return widths
}

// distributeFixedColumns sizes columns for table-layout: fixed from the
// cells of the first row; remaining columns share what is left.
func (r *run) distributeFixedColumns(g *tableGrid, available float32) []float32 {
	widths := make([]float32, g.numCols)
	set := make([]bool, g.numCols)
	used := float32(0)
	for _, c := range g.cells {
		if c.row != 0 {
			continue
		}
		w := r.autoLength(c.box, css.PropWidth, available)
		if isNaN(w) {
			continue
		}
		if !r.borderBox(c.box) {
			w += r.horizontalStatic(c.box)
		}
		for i := c.col; i < c.col+c.colSpan; i++ {
			widths[i] = w / float32(c.colSpan)
			set[i] = true
		}
		used += w
	}
	rest := 0
	for _, s := range set {
		if !s {
			rest++
		}
	}
	if rest > 0 {
		share := max(0, available-used) / float32(rest)
		for i := range widths {
			if !set[i] {
				widths[i] = share
			}
		}
	}
	return widths
}

// horizontalStatic is border plus padding of a box not yet laid out.
// Percentages count as zero.
func (r *run) horizontalStatic(b *LayoutNode) float32 {
	if b.IsAnonymous() {
		return 0
	}
	bw := r.s.BorderWidths(b.Node)
	return bw[1] + bw[3] + max(0, r.length(b, css.PropPaddingLeft, 0)) + max(0, r.length(b, css.PropPaddingRight, 0))
}

// layoutTable lays out captions, then the cell grid, and returns the
// content height.
func (r *run) layoutTable(table *LayoutNode) float32 {
	content := table.Dimensions.Content
	width := content.Size.Width
	y := content.Origin.Y

	g := r.buildTableGrid(table)
	for _, c := range g.captions {
		r.layoutBox(c, geom.LogicalPosition{X: content.Origin.X, Y: y}, sizing{
			cb: geom.LogicalSize{Width: width, Height: -1}, width: nan, height: nan,
		})
		y = c.Dimensions.MarginBox().MaxY()
	}
	if g.numCols == 0 {
		for _, row := range g.rows {
			row.Dimensions = Dimensions{Content: geom.Rect(content.Origin.X, y, width, 0)}
		}
		return y - content.Origin.Y
	}

	spacing := r.borderSpacing(table)
	available := max(0, width-spacing*float32(g.numCols+1))
	var colWidths []float32
	if !table.IsAnonymous() && r.s.TableLayout(table.Node) == css.TableLayoutFixed {
		colWidths = r.distributeFixedColumns(g, available)
	} else {
		colMin, colMax := r.columnIntrinsics(g)
		colWidths = distributeAutoColumns(colMin, colMax, available)
	}

	colX := make([]float32, g.numCols+1)
	colX[0] = content.Origin.X + spacing
	for i, w := range colWidths {
		colX[i+1] = colX[i] + w + spacing
	}
	spanWidth := func(c *tableCell) float32 {
		return colX[c.col+c.colSpan] - spacing - colX[c.col]
	}

	// Measure every cell at its column width.
	layoutCell := func(c *tableCell, pos geom.LogicalPosition, height float32) {
		r.computeEdges(c.box, spanWidth(c))
		resolveAutoMargins(&c.box.Dimensions)
		contentWidth := max(0, spanWidth(c)-c.box.Dimensions.boxStatic(geom.Horizontal))
		contentHeight := nan
		if !isNaN(height) {
			contentHeight = max(0, height-c.box.Dimensions.boxStatic(geom.Vertical))
		}
		r.layoutBox(c.box, pos, sizing{
			cb:     geom.LogicalSize{Width: spanWidth(c), Height: -1},
			width:  contentWidth,
			height: contentHeight,
		})
	}

	rowHeights := make([]float32, len(g.rows))
	for i, row := range g.rows {
		if h := r.autoLength(row, css.PropHeight, -1); !isNaN(h) {
			rowHeights[i] = h
		}
	}
	for _, c := range g.cells {
		layoutCell(c, geom.LogicalPosition{X: colX[c.col]}, nan)
		if c.rowSpan == 1 {
			rowHeights[c.row] = max(rowHeights[c.row], c.box.Dimensions.BorderBox().Size.Height)
		}
	}
	for _, c := range g.cells {
		if c.rowSpan == 1 {
			continue
		}
		spanned := spacing * float32(c.rowSpan-1)
		for i := c.row; i < c.row+c.rowSpan; i++ {
			spanned += rowHeights[i]
		}
		if surplus := c.box.Dimensions.BorderBox().Size.Height - spanned; surplus > 0 {
			for i := c.row; i < c.row+c.rowSpan; i++ {
				rowHeights[i] += surplus / float32(c.rowSpan)
			}
		}
	}

	rowY := make([]float32, len(g.rows)+1)
	rowY[0] = y + spacing
	for i, h := range rowHeights {
		rowY[i+1] = rowY[i] + h + spacing
	}
	gridWidth := colX[g.numCols] - spacing - colX[0]
	for i, row := range g.rows {
		row.Dimensions = Dimensions{Content: geom.Rect(colX[0], rowY[i], gridWidth, rowHeights[i])}
	}
	for _, group := range g.groups {
		group.Dimensions = Dimensions{}
		first := true
		for _, row := range group.Children {
			if row.BoxType != TableRowBox {
				continue
			}
			if first {
				group.Dimensions.Content = row.Dimensions.Content
				first = false
				continue
			}
			group.Dimensions.Content = group.Dimensions.Content.Union(row.Dimensions.Content)
		}
	}

	// Cells stretch to the rows they span.
	for _, c := range g.cells {
		height := rowY[c.row+c.rowSpan] - spacing - rowY[c.row]
		layoutCell(c, geom.LogicalPosition{X: colX[c.col], Y: rowY[c.row]}, height)
	}

	for _, c := range table.Children {
		if c.BoxType == TableColumnBox {
			c.Dimensions = Dimensions{Content: geom.LogicalRect{Origin: content.Origin}}
		}
	}
	return rowY[len(g.rows)] - content.Origin.Y
}
