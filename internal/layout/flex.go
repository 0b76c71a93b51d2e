// internal/layout/flex.go
package layout

import (
	"math"
	"sort"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// FlexItemMetadata holds the per-item state of the flex algorithm. Sizes
// are content-box sizes on the main axis unless noted.
type FlexItemMetadata struct {
	Box   *LayoutNode
	order int32

	FlexBaseSize         float32
	HypotheticalMainSize float32
	TargetMainSize       float32
	minMain, maxMain     float32
	grow, shrink         float32
	Frozen               bool

	// mainStatic is margin, border and padding on the main axis with auto
	// margins counted as zero.
	mainStatic  float32
	crossStatic float32
	// Auto margins in main-start, main-end, cross-start, cross-end order.
	autoMargin [4]bool
	align      css.AlignItems
	crossAuto  bool

	// outerCross is the margin-box cross size after layout.
	outerCross   float32
	mainOffset   float32
	crossOffset  float32
	marginStart  float32
	marginEnd    float32
	marginCStart float32
	marginCEnd   float32
}

func (it *FlexItemMetadata) outerHypothetical() float32 { return it.HypotheticalMainSize + it.mainStatic }
func (it *FlexItemMetadata) outerBase() float32         { return it.FlexBaseSize + it.mainStatic }
func (it *FlexItemMetadata) outerTarget() float32       { return it.TargetMainSize + it.mainStatic }

// FlexLine is one line of items.
type FlexLine struct {
	Items      []*FlexItemMetadata
	MainSize   float32
	CrossSize  float32
	CrossStart float32
}

// FlexDirectionInfo for easier axis management
type FlexDirectionInfo struct {
	MainAxis       geom.Axis
	CrossAxis      geom.Axis
	IsReverse      bool // For flex-direction: reverse
	IsCrossReverse bool // For flex-wrap: wrap-reverse
}

func (r *run) flexDirectionInfo(b *LayoutNode) FlexDirectionInfo {
	dir := r.s.FlexDirection(b.Node)
	info := FlexDirectionInfo{MainAxis: geom.Horizontal, CrossAxis: geom.Vertical, IsReverse: dir.IsReverse()}
	if !dir.IsRow() {
		info.MainAxis, info.CrossAxis = geom.Vertical, geom.Horizontal
	}
	info.IsCrossReverse = r.s.FlexWrap(b.Node) == css.FlexWrapWrapReverse
	return info
}

// layoutFlex runs the flex layout algorithm over the in-flow children of b.
// height is the content height when definite, NaN otherwise. It returns
// the height the content needs.
func (r *run) layoutFlex(b *LayoutNode, height float32) float32 {
	dirInfo := r.flexDirectionInfo(b)
	mainAxis, crossAxis := dirInfo.MainAxis, dirInfo.CrossAxis
	content := b.Dimensions.Content
	width := content.Size.Width

	mainGap := r.length(b, css.PropColumnGap, width)
	crossGap := r.length(b, css.PropRowGap, width)
	if mainAxis == geom.Vertical {
		mainGap, crossGap = crossGap, mainGap
	}

	availableMainSize, availableCrossSize := width, height
	if mainAxis == geom.Vertical {
		availableMainSize, availableCrossSize = height, width
	}
	mainDefinite := !isNaN(availableMainSize)

	var items []*FlexItemMetadata
	for _, child := range b.Children {
		if child.outOfFlow {
			continue
		}
		order := int32(0)
		if !child.IsAnonymous() {
			order = r.s.Order(child.Node)
		}
		items = append(items, &FlexItemMetadata{Box: child, order: order})
	}
	if len(items) == 0 {
		if mainAxis == geom.Vertical && !mainDefinite {
			return 0
		}
		if isNaN(height) {
			return 0
		}
		return height
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })

	r.calculateFlexBaseSizes(b, items, dirInfo, availableMainSize)

	if !mainDefinite {
		// An indefinite main size is the sum of the hypothetical sizes.
		availableMainSize = 0
		for i, it := range items {
			availableMainSize += it.outerHypothetical()
			if i > 0 {
				availableMainSize += mainGap
			}
		}
	}

	lines := r.collectFlexLines(items, r.s.FlexWrap(b.Node), availableMainSize, mainGap)
	for _, line := range lines {
		if mainDefinite {
			r.resolveFlexibleLengths(line, availableMainSize, mainGap)
		} else {
			for _, it := range line.Items {
				it.TargetMainSize = it.HypotheticalMainSize
			}
		}
	}

	r.determineCrossSizes(b, lines, dirInfo)
	if len(lines) == 1 && !isNaN(availableCrossSize) {
		lines[0].CrossSize = availableCrossSize
	}

	totalCrossSize := float32(0)
	for i, line := range lines {
		totalCrossSize += line.CrossSize
		if i > 0 {
			totalCrossSize += crossGap
		}
	}
	if isNaN(availableCrossSize) {
		availableCrossSize = totalCrossSize
	}

	r.alignCrossAxis(b, lines, dirInfo, availableCrossSize, totalCrossSize, crossGap)
	r.alignMainAxis(b, lines, dirInfo, availableMainSize, mainGap)
	r.placeFlexItems(b, lines, mainAxis, crossAxis)

	if mainAxis == geom.Vertical {
		return availableMainSize
	}
	return availableCrossSize
}

// calculateFlexBaseSizes resolves flex-basis, falling back to the main
// size property and then to the content size.
func (r *run) calculateFlexBaseSizes(b *LayoutNode, items []*FlexItemMetadata, dirInfo FlexDirectionInfo, availableMainSize float32) {
	mainAxis := dirInfo.MainAxis
	refWidth := b.Dimensions.Content.Size.Width
	mainRef := availableMainSize
	if isNaN(mainRef) {
		mainRef = -1
	}
	crossRef := r.definiteHeight(b)
	if mainAxis == geom.Vertical {
		crossRef = refWidth
	}
	containerAlign := r.s.AlignItems(b.Node)

	mainKind, crossKind := css.PropWidth, css.PropHeight
	minKind, maxKind := css.PropMinWidth, css.PropMaxWidth
	if mainAxis == geom.Vertical {
		mainKind, crossKind = css.PropHeight, css.PropWidth
		minKind, maxKind = css.PropMinHeight, css.PropMaxHeight
	}

	for _, item := range items {
		box := item.Box
		r.computeEdges(box, refWidth)
		d := &box.Dimensions
		m := d.Margin
		item.autoMargin = [4]bool{
			isNaN(m.MainStart(mainAxis)), isNaN(m.MainEnd(mainAxis)),
			isNaN(m.MainStart(dirInfo.CrossAxis)), isNaN(m.MainEnd(dirInfo.CrossAxis)),
		}
		resolveAutoMargins(d)
		item.mainStatic = d.mainStatic(mainAxis)
		item.crossStatic = d.mainStatic(dirInfo.CrossAxis)

		item.grow = max(0, r.number(box, css.PropFlexGrow))
		item.shrink = max(0, r.number(box, css.PropFlexShrink))
		align := containerAlign
		if !box.IsAnonymous() {
			align = r.s.AlignSelf(box.Node).Resolve(containerAlign)
		}
		item.align = align
		item.crossAuto = isNaN(r.autoLength(box, crossKind, crossRef))

		boxStatic := d.boxStatic(mainAxis)
		baseSize := r.autoLength(box, css.PropFlexBasis, mainRef)
		if isNaN(baseSize) {
			baseSize = r.autoLength(box, mainKind, mainRef)
		}
		if !isNaN(baseSize) && r.borderBox(box) {
			baseSize = max(0, baseSize-boxStatic)
		}
		if isNaN(baseSize) {
			if mainAxis == geom.Horizontal {
				baseSize = max(0, r.intrinsicSizes(box).MaxContent-boxStatic)
			} else {
				baseSize = r.measureColumnItem(b, item)
			}
		}

		item.minMain, item.maxMain = r.minMax(box, minKind, maxKind, mainRef, mainAxis)
		item.FlexBaseSize = baseSize
		item.HypotheticalMainSize = clamp(baseSize, item.minMain, item.maxMain)
	}
}

// measureColumnItem lays an item out at its cross size to find its content
// height.
func (r *run) measureColumnItem(b *LayoutNode, item *FlexItemMetadata) float32 {
	cross := r.flexItemCross(b, item, nan)
	r.layoutBox(item.Box, geom.LogicalPosition{}, sizing{
		cb:          geom.LogicalSize{Width: b.Dimensions.Content.Size.Width, Height: -1},
		width:       cross,
		height:      nan,
		shrinkToFit: isNaN(cross),
	})
	return item.Box.Dimensions.Content.Size.Height
}

// flexItemCross is the forced content width of an item in a column
// container, or NaN to shrink-to-fit. lineCross overrides the container
// width when stretching within a line.
func (r *run) flexItemCross(b *LayoutNode, item *FlexItemMetadata, lineCross float32) float32 {
	if !item.crossAuto {
		return nan
	}
	if item.align != css.AlignItemsStretch || item.autoMargin[2] || item.autoMargin[3] {
		return nan
	}
	if isNaN(lineCross) {
		lineCross = b.Dimensions.Content.Size.Width
	}
	return max(0, lineCross-item.crossStatic)
}

// collectFlexLines packs items into lines greedily.
func (r *run) collectFlexLines(items []*FlexItemMetadata, wrap css.FlexWrap, availableMainSize, gap float32) []*FlexLine {
	var lines []*FlexLine
	currentLine := &FlexLine{}
	lines = append(lines, currentLine)

	if wrap == css.FlexWrapNoWrap {
		currentLine.Items = items
		for i, item := range items {
			currentLine.MainSize += item.outerHypothetical()
			if i > 0 {
				currentLine.MainSize += gap
			}
		}
		return lines
	}

	currentMainSize := float32(0)
	for _, item := range items {
		itemMainSize := item.outerHypothetical()
		if len(currentLine.Items) > 0 && currentMainSize+gap+itemMainSize > availableMainSize {
			currentLine.MainSize = currentMainSize
			currentLine = &FlexLine{}
			lines = append(lines, currentLine)
			currentMainSize = 0
		}
		if len(currentLine.Items) > 0 {
			currentMainSize += gap
		}
		currentLine.Items = append(currentLine.Items, item)
		currentMainSize += itemMainSize
	}
	currentLine.MainSize = currentMainSize
	return lines
}

// resolveFlexibleLengths distributes free space by flex-grow or scaled
// flex-shrink, freezing items that hit their min or max until no item
// changes clamp state.
func (r *run) resolveFlexibleLengths(line *FlexLine, availableMainSize, gap float32) {
	gaps := gap * float32(len(line.Items)-1)
	sumHypothetical := gaps
	for _, item := range line.Items {
		sumHypothetical += item.outerHypothetical()
	}
	isGrowing := sumHypothetical < availableMainSize

	for _, item := range line.Items {
		item.TargetMainSize = item.HypotheticalMainSize
		item.Frozen = false
		factor := item.shrink
		if isGrowing {
			factor = item.grow
		}
		if factor == 0 ||
			(isGrowing && item.FlexBaseSize > item.HypotheticalMainSize) ||
			(!isGrowing && item.FlexBaseSize < item.HypotheticalMainSize) {
			item.Frozen = true
		}
	}

	initialFreeSpace := availableMainSize - gaps
	for _, item := range line.Items {
		if item.Frozen {
			initialFreeSpace -= item.outerTarget()
		} else {
			initialFreeSpace -= item.outerBase()
		}
	}

	for {
		remainingFreeSpace := availableMainSize - gaps
		var sumFactors, sumScaledShrink float32
		unfrozen := 0
		for _, item := range line.Items {
			if item.Frozen {
				remainingFreeSpace -= item.outerTarget()
				continue
			}
			unfrozen++
			remainingFreeSpace -= item.outerBase()
			if isGrowing {
				sumFactors += item.grow
			} else {
				sumFactors += item.shrink
				sumScaledShrink += item.shrink * item.FlexBaseSize
			}
		}
		if unfrozen == 0 {
			return
		}
		if sumFactors < 1 {
			if scaled := initialFreeSpace * sumFactors; abs32(scaled) < abs32(remainingFreeSpace) {
				remainingFreeSpace = scaled
			}
		}

		var totalViolation float32
		for _, item := range line.Items {
			if item.Frozen {
				continue
			}
			target := item.FlexBaseSize
			switch {
			case isGrowing && sumFactors > 0:
				target += remainingFreeSpace * item.grow / sumFactors
			case !isGrowing && sumScaledShrink > 0:
				target -= abs32(remainingFreeSpace) * item.shrink * item.FlexBaseSize / sumScaledShrink
			}
			clamped := clamp(max(target, 0), item.minMain, item.maxMain)
			totalViolation += clamped - target
			item.TargetMainSize = clamped
		}

		for _, item := range line.Items {
			if item.Frozen {
				continue
			}
			clamped := item.TargetMainSize
			switch {
			case totalViolation == 0:
				item.Frozen = true
			case totalViolation > 0 && clamped <= item.minMain:
				item.Frozen = true
			case totalViolation < 0 && clamped >= item.maxMain:
				item.Frozen = true
			}
		}
	}
}

// determineCrossSizes lays each item out at its target main size and
// records the line cross sizes.
func (r *run) determineCrossSizes(b *LayoutNode, lines []*FlexLine, dirInfo FlexDirectionInfo) {
	for _, line := range lines {
		line.CrossSize = 0
		for _, item := range line.Items {
			r.layoutFlexItem(b, item, dirInfo.MainAxis, item.TargetMainSize, nan)
			item.outerCross = item.Box.Dimensions.BorderBox().Size.Main(dirInfo.CrossAxis) +
				item.Box.Dimensions.Margin.Sum(dirInfo.CrossAxis)
			line.CrossSize = max(line.CrossSize, item.outerCross)
		}
	}
}

// layoutFlexItem lays an item out at provisional origin (0, 0) with the
// given content sizes. cross NaN sizes the cross axis from the item.
func (r *run) layoutFlexItem(b *LayoutNode, item *FlexItemMetadata, mainAxis geom.Axis, main, cross float32) {
	sz := sizing{
		cb:     geom.LogicalSize{Width: b.Dimensions.Content.Size.Width, Height: r.definiteHeight(b)},
		width:  main,
		height: cross,
	}
	if mainAxis == geom.Vertical {
		if isNaN(cross) {
			cross = r.flexItemCross(b, item, nan)
		}
		sz.width, sz.height = cross, main
		sz.shrinkToFit = isNaN(cross)
	}
	r.layoutBox(item.Box, geom.LogicalPosition{}, sz)
}

// alignCrossAxis places lines with align-content and items within lines
// with align-self.
func (r *run) alignCrossAxis(b *LayoutNode, lines []*FlexLine, dirInfo FlexDirectionInfo, availableCrossSize, totalCrossSize, gap float32) {
	alignContent := r.s.AlignContent(b.Node)
	wraps := r.s.FlexWrap(b.Node) != css.FlexWrapNoWrap

	var currentCrossOffset, spacing float32
	if wraps {
		if alignContent == css.AlignContentStretch && availableCrossSize > totalCrossSize {
			extraPerLine := (availableCrossSize - totalCrossSize) / float32(len(lines))
			for _, line := range lines {
				line.CrossSize += extraPerLine
			}
			totalCrossSize = availableCrossSize
		}
		currentCrossOffset, spacing = calculateAlignmentOffsets(len(lines), totalCrossSize, availableCrossSize, alignContentDistribution(alignContent))
	}
	spacing += gap

	if dirInfo.IsCrossReverse {
		currentCrossOffset = availableCrossSize - currentCrossOffset
	}
	for _, line := range lines {
		if dirInfo.IsCrossReverse {
			line.CrossStart = currentCrossOffset - line.CrossSize
			currentCrossOffset -= line.CrossSize + spacing
		} else {
			line.CrossStart = currentCrossOffset
			currentCrossOffset += line.CrossSize + spacing
		}
		for _, item := range line.Items {
			r.alignFlexItem(b, item, line.CrossSize, dirInfo)
		}
	}
}

// alignFlexItem resolves the cross offset of an item in its line,
// stretching auto-sized items to the line.
func (r *run) alignFlexItem(b *LayoutNode, item *FlexItemMetadata, lineCrossSize float32, dirInfo FlexDirectionInfo) {
	d := &item.Box.Dimensions
	item.marginCStart = d.Margin.MainStart(dirInfo.CrossAxis)
	item.marginCEnd = d.Margin.MainEnd(dirInfo.CrossAxis)

	autoStart, autoEnd := item.autoMargin[2], item.autoMargin[3]
	if item.align == css.AlignItemsStretch && item.crossAuto && !autoStart && !autoEnd {
		target := max(0, lineCrossSize-item.crossStatic)
		if dirInfo.MainAxis == geom.Horizontal {
			lo, hi := r.minMax(item.Box, css.PropMinHeight, css.PropMaxHeight, r.definiteHeight(b), geom.Vertical)
			target = clamp(target, lo, hi)
		} else {
			lo, hi := r.minMax(item.Box, css.PropMinWidth, css.PropMaxWidth, b.Dimensions.Content.Size.Width, geom.Horizontal)
			target = clamp(target, lo, hi)
		}
		if target != d.Content.Size.Main(dirInfo.CrossAxis) {
			r.layoutFlexItem(b, item, dirInfo.MainAxis, item.TargetMainSize, target)
		}
		item.outerCross = d.BorderBox().Size.Main(dirInfo.CrossAxis) + item.marginCStart + item.marginCEnd
		item.crossOffset = 0
		return
	}

	freeSpace := lineCrossSize - item.outerCross
	switch {
	case autoStart && autoEnd:
		item.marginCStart += max(0, freeSpace) / 2
		item.marginCEnd += max(0, freeSpace) / 2
		item.crossOffset = 0
		return
	case autoStart:
		item.marginCStart += max(0, freeSpace)
		item.crossOffset = 0
		return
	case autoEnd:
		item.marginCEnd += max(0, freeSpace)
		item.crossOffset = 0
		return
	}

	align := item.align
	if dirInfo.IsCrossReverse {
		switch align {
		case css.AlignItemsFlexStart, css.AlignItemsStretch, css.AlignItemsBaseline:
			align = css.AlignItemsFlexEnd
		case css.AlignItemsFlexEnd:
			align = css.AlignItemsFlexStart
		}
	}
	switch align {
	case css.AlignItemsFlexEnd:
		item.crossOffset = freeSpace
	case css.AlignItemsCenter:
		item.crossOffset = freeSpace / 2
	default:
		item.crossOffset = 0
	}
}

// alignMainAxis resolves auto margins and justify-content for each line.
func (r *run) alignMainAxis(b *LayoutNode, lines []*FlexLine, dirInfo FlexDirectionInfo, availableMainSize, gap float32) {
	justifyContent := r.s.JustifyContent(b.Node)
	mainAxis := dirInfo.MainAxis

	for _, line := range lines {
		usedMainSize := gap * float32(len(line.Items)-1)
		autoMargins := 0
		for _, item := range line.Items {
			d := &item.Box.Dimensions
			usedMainSize += d.BorderBox().Size.Main(mainAxis) + d.Margin.Sum(mainAxis)
			item.marginStart = d.Margin.MainStart(mainAxis)
			item.marginEnd = d.Margin.MainEnd(mainAxis)
			for _, auto := range item.autoMargin[:2] {
				if auto {
					autoMargins++
				}
			}
		}
		freeSpace := availableMainSize - usedMainSize

		var currentMainOffset, spacing float32
		if autoMargins > 0 && freeSpace > 0 {
			share := freeSpace / float32(autoMargins)
			for _, item := range line.Items {
				if item.autoMargin[0] {
					item.marginStart += share
				}
				if item.autoMargin[1] {
					item.marginEnd += share
				}
			}
		} else {
			currentMainOffset, spacing = calculateAlignmentOffsets(len(line.Items), usedMainSize, availableMainSize, justifyDistribution(justifyContent))
		}
		spacing += gap

		if dirInfo.IsReverse {
			currentMainOffset = availableMainSize - currentMainOffset
		}
		for _, item := range line.Items {
			outer := item.Box.Dimensions.BorderBox().Size.Main(mainAxis) + item.marginStart + item.marginEnd
			if dirInfo.IsReverse {
				item.mainOffset = currentMainOffset - outer
				currentMainOffset -= outer + spacing
			} else {
				item.mainOffset = currentMainOffset
				currentMainOffset += outer + spacing
			}
		}
	}
}

// placeFlexItems translates every item from its provisional origin to its
// final position and records the resolved margins.
func (r *run) placeFlexItems(b *LayoutNode, lines []*FlexLine, mainAxis, crossAxis geom.Axis) {
	origin := b.Dimensions.Content.Origin
	for _, line := range lines {
		for _, item := range line.Items {
			d := &item.Box.Dimensions
			main := origin.Main(mainAxis) + item.mainOffset + item.marginStart
			cross := origin.Main(crossAxis) + line.CrossStart + item.crossOffset + item.marginCStart
			target := geom.LogicalPosition{X: main, Y: cross}
			if mainAxis == geom.Vertical {
				target = geom.LogicalPosition{X: cross, Y: main}
			}
			current := d.BorderBox().Origin
			item.Box.translate(target.X-current.X, target.Y-current.Y)

			if mainAxis == geom.Horizontal {
				d.Margin.Left, d.Margin.Right = item.marginStart, item.marginEnd
				d.Margin.Top, d.Margin.Bottom = item.marginCStart, item.marginCEnd
			} else {
				d.Margin.Top, d.Margin.Bottom = item.marginStart, item.marginEnd
				d.Margin.Left, d.Margin.Right = item.marginCStart, item.marginCEnd
			}
		}
	}
}

// distribution is the shared behaviour of justify-content and
// align-content.
type distribution uint8

const (
	distributeStart distribution = iota
	distributeEnd
	distributeCenter
	distributeBetween
	distributeAround
	distributeEvenly
)

func justifyDistribution(j css.JustifyContent) distribution {
	switch j {
	case css.JustifyFlexEnd:
		return distributeEnd
	case css.JustifyCenter:
		return distributeCenter
	case css.JustifySpaceBetween:
		return distributeBetween
	case css.JustifySpaceAround:
		return distributeAround
	case css.JustifySpaceEvenly:
		return distributeEvenly
	}
	return distributeStart
}

func alignContentDistribution(a css.AlignContent) distribution {
	switch a {
	case css.AlignContentFlexEnd:
		return distributeEnd
	case css.AlignContentCenter:
		return distributeCenter
	case css.AlignContentSpaceBetween:
		return distributeBetween
	case css.AlignContentSpaceAround:
		return distributeAround
	}
	return distributeStart
}

// calculateAlignmentOffsets is a helper for justify-content and align-content.
func calculateAlignmentOffsets(itemCount int, totalSize, availableSize float32, alignment distribution) (startOffset, spacing float32) {
	freeSpace := availableSize - totalSize
	if freeSpace <= 0.001 {
		return 0, 0
	}

	switch alignment {
	case distributeEnd:
		startOffset = freeSpace
	case distributeCenter:
		startOffset = freeSpace / 2
	case distributeBetween:
		if itemCount > 1 {
			spacing = freeSpace / float32(itemCount-1)
		}
	case distributeAround:
		if itemCount > 0 {
			spacing = freeSpace / float32(itemCount)
			startOffset = spacing / 2
		} else {
			startOffset = freeSpace / 2
		}
	case distributeEvenly:
		if itemCount > 0 {
			spacing = freeSpace / float32(itemCount+1)
			startOffset = spacing
		} else {
			startOffset = freeSpace / 2
		}
	}
	return startOffset, spacing
}

func abs32(f float32) float32 { return float32(math.Abs(float64(f))) }
