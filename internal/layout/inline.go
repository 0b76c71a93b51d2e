// internal/layout/inline.go
package layout

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/style"
	"github.com/xkilldash9x/boxkit/internal/text"
)

// shapedRun is the shaped text of one text run, cached per Layout call so
// intrinsic sizing and line layout shape each run once.
type shapedRun struct {
	words  *text.Words
	shaped *text.ShapedWords
	opts   text.LayoutOptions
	wraps  bool

	scale      float32
	spaceWidth float32
	lineHeight float32
	ascent     float32
}

// width is the advance of item i as PositionWords measures it.
func (sr *shapedRun) width(i int) float32 {
	switch sr.words.Items[i].Kind {
	case text.WordSpace:
		return sr.spaceWidth
	case text.WordTab:
		tab := sr.opts.TabWidth
		if tab <= 0 {
			tab = 8
		}
		return sr.spaceWidth * tab
	case text.WordText:
		sw := sr.shaped.Words[i]
		return float32(sw.Advance)*sr.scale + sr.opts.LetterSpacing*float32(len(sw.Glyphs))
	}
	return 0
}

// shapeRun splits and shapes the text of a text run.
func (r *run) shapeRun(n *LayoutNode) *shapedRun {
	if sr, ok := r.runs[n]; ok {
		return sr
	}
	id := n.Node
	ws := r.s.WhiteSpace(id)
	words := text.SplitWords(processWhiteSpace(r.s.Node(id).Text, ws))

	fontSize := r.s.FontSize(id)
	shaper := r.solver.fonts.Lookup(r.ctx, r.s.FontFamily(id))
	shaped, err := text.ShapeWords(r.ctx, words, shaper, text.ShapeOptions{
		Lang:    r.langOf(id),
		Workers: r.solver.workers,
		Logger:  r.solver.logger,
	})
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		shaped = &text.ShapedWords{Words: make([]text.ShapedWord, len(words.Items)), Metrics: shaper.Metrics()}
	}

	m := shaped.Metrics
	sr := &shapedRun{
		words:  words,
		shaped: shaped,
		wraps:  ws.Wraps(),
		scale:  m.Scale(fontSize),
		opts: text.LayoutOptions{
			FontSize:      fontSize,
			LineHeight:    r.s.LineHeight(id),
			LetterSpacing: r.length(n, css.PropLetterSpacing, fontSize),
			WordSpacing:   r.length(n, css.PropWordSpacing, fontSize),
			TabWidth:      r.number(n, css.PropTabWidth),
		},
	}
	sr.lineHeight = sr.opts.LineHeight
	if sr.lineHeight <= 0 {
		sr.lineHeight = float32(m.Ascender+m.Descender+m.LineGap) * sr.scale
	}
	sr.spaceWidth = float32(shaped.SpaceAdvance)*sr.scale + sr.opts.LetterSpacing + sr.opts.WordSpacing
	sr.ascent = float32(m.Ascender)*sr.scale + (sr.lineHeight-float32(m.Ascender+m.Descender)*sr.scale)/2
	r.runs[n] = sr
	return sr
}

// langOf returns the language of the nearest lang attribute.
func (r *run) langOf(id dom.NodeId) language.Tag {
	for n := id; n != dom.NoNode; n = r.s.Dom.Parent(n) {
		if v, ok := r.s.Node(n).Attribute("lang"); ok {
			if tag, err := language.Parse(v); err == nil {
				return tag
			}
			r.solver.logger.Debug("Ignoring malformed lang attribute", zap.String("lang", v))
		}
	}
	return language.Und
}

// processWhiteSpace applies the white-space collapsing rules. normal and
// nowrap collapse every whitespace run to one space; pre-line keeps line
// breaks; pre and pre-wrap keep everything.
func processWhiteSpace(s string, ws css.WhiteSpace) string {
	switch ws {
	case css.WhiteSpacePre, css.WhiteSpacePreWrap:
		return s
	}
	keepBreaks := ws == css.WhiteSpacePreLine
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, c := range strings.ReplaceAll(s, "\r\n", "\n") {
		switch c {
		case '\n':
			if keepBreaks {
				pendingSpace = false
				b.WriteRune('\n')
				continue
			}
			pendingSpace = true
		case ' ', '\t', '\r', '\f':
			pendingSpace = true
		default:
			if pendingSpace {
				if out := b.String(); len(out) > 0 && !strings.HasSuffix(out, "\n") {
					b.WriteByte(' ')
				}
				pendingSpace = false
			}
			b.WriteRune(c)
		}
	}
	if pendingSpace && !keepBreaks {
		b.WriteByte(' ')
	}
	return b.String()
}

// layoutInlineFlow lays out the inline-level children of b into line boxes
// and returns the height of the lines.
func (r *run) layoutInlineFlow(b *LayoutNode) float32 {
	var inFlow []*LayoutNode
	for _, c := range b.Children {
		if !c.outOfFlow {
			inFlow = append(inFlow, c)
		}
	}
	b.Lines = nil
	if len(inFlow) == 1 && inFlow[0].BoxType == TextRunBox {
		return r.layoutSingleRun(b, inFlow[0])
	}
	return r.layoutInlineItems(b, inFlow)
}

// layoutSingleRun lays out a box whose only content is one text run. This
// is the path that honours shape-inside and justify.
func (r *run) layoutSingleRun(b, t *LayoutNode) float32 {
	sr := r.shapeRun(t)
	content := b.Dimensions.Content
	container := r.styleNode(b)

	words, shaped := trimCollapsible(sr.words, sr.shaped, r.s.WhiteSpace(t.Node))
	opts := sr.opts
	opts.TextIndent = r.length(b, css.PropTextIndent, content.Size.Width)
	if sr.wraps {
		opts.MaxHorizontalWidth = text.MaxWidth(content.Size.Width)
		if shape, ok := style.Get[css.Shape](r.s, container, css.PropShapeInside).Get(); ok {
			ref := geom.LogicalSize{Width: content.Size.Width, Height: r.definiteHeight(b)}
			if ref.Height < 0 {
				ref.Height = content.Size.Width
			}
			opts.ShapeInside = &shape
			opts.ShapeSize = ref
		}
	}

	pos := text.PositionWords(words, shaped, opts)
	for i := range pos.Layout.Lines {
		if pos.Layout.Lines[i].Available.Width < 0 {
			pos.Layout.Lines[i].Available = text.Segment{X: 0, Width: content.Size.Width}
		}
	}
	text.AlignLines(pos, words, r.s.TextAlign(container), r.s.Direction(container))

	origin := content.Origin
	for i := range pos.Positions {
		pos.Positions[i].Origin = pos.Positions[i].Origin.Add(origin)
	}
	for _, line := range pos.Layout.Lines {
		rect := geom.Rect(origin.X, origin.Y+line.Bounds.Origin.Y, content.Size.Width, line.Bounds.Size.Height)
		b.Lines = append(b.Lines, LineBox{Rect: rect, Baseline: rect.Origin.Y + pos.Ascent})
	}

	t.Text = &InlineText{
		Words:      words,
		Shaped:     shaped,
		Positions:  pos.Positions,
		FontSize:   sr.opts.FontSize,
		LineHeight: pos.LineHeight,
		Ascent:     pos.Ascent,
	}
	r.fitTextBounds(t)
	return pos.Layout.ContentSize.Height
}

// trimCollapsible drops collapsible spaces at the start and end of a run.
// The shaped entries are windowed the same way so they stay parallel.
func trimCollapsible(words *text.Words, shaped *text.ShapedWords, ws css.WhiteSpace) (*text.Words, *text.ShapedWords) {
	if ws == css.WhiteSpacePre || ws == css.WhiteSpacePreWrap {
		return words, shaped
	}
	lo, hi := 0, len(words.Items)
	for lo < hi && words.Items[lo].Kind == text.WordSpace {
		lo++
	}
	for hi > lo && words.Items[hi-1].Kind == text.WordSpace {
		hi--
	}
	if lo == 0 && hi == len(words.Items) {
		return words, shaped
	}
	trimmed := *shaped
	trimmed.Words = shaped.Words[lo:hi]
	return &text.Words{Text: words.Text, Items: words.Items[lo:hi]}, &trimmed
}

// fitTextBounds sets the content rect of a text run to the union of its
// words.
func (r *run) fitTextBounds(t *LayoutNode) {
	d := &t.Dimensions
	d.Padding, d.Border, d.Margin = geom.Edges{}, geom.Edges{}, geom.Edges{}
	if t.Text == nil || len(t.Text.Positions) == 0 {
		if t.Parent != nil {
			d.Content = geom.LogicalRect{Origin: t.Parent.Dimensions.Content.Origin}
		}
		return
	}
	bounds := t.Text.WordRect(0)
	for i := 1; i < len(t.Text.Positions); i++ {
		bounds = bounds.Union(t.Text.WordRect(i))
	}
	d.Content = bounds
}

// inlineItem is one unit placed on a line: a word of a text run or an
// atomic inline box.
type inlineItem struct {
	box  *LayoutNode
	run  *shapedRun
	word int
	kind text.WordKind

	width   float32
	ascent  float32
	descent float32
}

func (it *inlineItem) isContent() bool {
	return it.run == nil || it.kind == text.WordText
}

type placedItem struct {
	item *inlineItem
	x    float32
}

// layoutInlineItems is the general inline formatting context: text runs
// and atomic inlines share lines and align on a common baseline.
func (r *run) layoutInlineItems(b *LayoutNode, children []*LayoutNode) float32 {
	content := b.Dimensions.Content
	container := r.styleNode(b)
	wraps := r.s.WhiteSpace(container).Wraps()
	cb := geom.LogicalSize{Width: content.Size.Width, Height: r.definiteHeight(b)}

	var items []*inlineItem
	var runs []*LayoutNode
	var inlineBoxes []*LayoutNode
	var collect func(children []*LayoutNode)
	collect = func(children []*LayoutNode) {
		for _, c := range children {
			switch {
			case c.outOfFlow:
			case c.BoxType == TextRunBox:
				sr := r.shapeRun(c)
				runs = append(runs, c)
				c.Text = &InlineText{
					Words:      sr.words,
					Shaped:     sr.shaped,
					Positions:  make([]text.WordPosition, len(sr.words.Items)),
					FontSize:   sr.opts.FontSize,
					LineHeight: sr.lineHeight,
					Ascent:     sr.ascent,
				}
				for i, w := range sr.words.Items {
					items = append(items, &inlineItem{
						box: c, run: sr, word: i, kind: w.Kind,
						width:   sr.width(i),
						ascent:  sr.ascent,
						descent: sr.lineHeight - sr.ascent,
					})
				}
			case c.BoxType == InlineBox:
				inlineBoxes = append(inlineBoxes, c)
				collect(c.Children)
			default:
				r.layoutBox(c, geom.LogicalPosition{}, sizing{cb: cb, width: nan, height: nan, shrinkToFit: true})
				mb := c.Dimensions.MarginBox()
				items = append(items, &inlineItem{box: c, word: -1, width: mb.Size.Width, ascent: mb.Size.Height})
			}
		}
	}
	collect(children)

	align := r.s.TextAlign(container)
	dir := r.s.Direction(container)
	y := content.Origin.Y
	var line []placedItem
	caret := r.length(b, css.PropTextIndent, content.Size.Width)
	softBreak := false

	endLine := func() {
		var ascent, descent, right float32
		placed, forced := false, false
		for _, p := range line {
			ascent = max(ascent, p.item.ascent)
			descent = max(descent, p.item.descent)
			if p.item.isContent() {
				right = max(right, p.x+p.item.width)
				placed = true
			}
			forced = forced || p.item.run != nil && p.item.kind == text.WordReturn
		}
		if !placed && !forced {
			// Trailing collapsible spaces after a wrap add no line.
			for _, p := range line {
				p.item.box.Text.Positions[p.item.word] = text.WordPosition{
					Line:   max(len(b.Lines)-1, 0),
					Origin: geom.LogicalPosition{X: content.Origin.X + p.x, Y: max(y-p.item.ascent-p.item.descent, content.Origin.Y)},
				}
			}
			line = nil
			return
		}
		shift := lineShift(align, dir, content.Size.Width-right)
		lineIdx := len(b.Lines)
		for _, p := range line {
			it := p.item
			x := content.Origin.X + p.x + shift
			top := y + ascent - it.ascent
			if it.run != nil {
				it.box.Text.Positions[it.word] = text.WordPosition{
					Line:   lineIdx,
					Origin: geom.LogicalPosition{X: x, Y: top},
					Width:  it.width,
				}
				continue
			}
			mb := it.box.Dimensions.MarginBox()
			it.box.translate(x-mb.Origin.X, top-mb.Origin.Y)
		}
		height := ascent + descent
		b.Lines = append(b.Lines, LineBox{
			Rect:     geom.Rect(content.Origin.X, y, content.Size.Width, height),
			Baseline: y + ascent,
		})
		y += height
		line = nil
	}

	for _, it := range items {
		if it.run != nil && it.kind == text.WordReturn {
			line = append(line, placedItem{item: it, x: caret})
			endLine()
			caret = 0
			softBreak = false
			continue
		}
		if !it.isContent() && softBreak && len(line) == 0 {
			// Collapsible space at the start of a wrapped line.
			if it.run.wraps {
				it.width = 0
			}
		}
		if wraps && it.isContent() && caret+it.width > content.Size.Width && hasContent(line) {
			endLine()
			caret = 0
			softBreak = true
		}
		line = append(line, placedItem{item: it, x: caret})
		caret += it.width
	}
	if len(line) > 0 {
		endLine()
	}

	for _, t := range runs {
		r.fitTextBounds(t)
	}
	for i := len(inlineBoxes) - 1; i >= 0; i-- {
		r.fitInlineBounds(inlineBoxes[i])
	}
	return y - content.Origin.Y
}

func hasContent(line []placedItem) bool {
	for _, p := range line {
		if p.item.isContent() {
			return true
		}
	}
	return false
}

// lineShift is the horizontal offset of a line's content for text-align.
// justify aligns to the start outside single-run contexts.
func lineShift(align css.TextAlign, dir css.Direction, slack float32) float32 {
	if slack <= 0 {
		return 0
	}
	rtl := dir == css.DirectionRTL
	switch align {
	case css.TextAlignCenter:
		return slack / 2
	case css.TextAlignRight:
		return slack
	case css.TextAlignEnd:
		if !rtl {
			return slack
		}
	case css.TextAlignStart, css.TextAlignJustify:
		if rtl {
			return slack
		}
	}
	return 0
}

// fitInlineBounds sets an inline box to the union of its children. Inline
// box edges do not take part in line layout.
func (r *run) fitInlineBounds(n *LayoutNode) {
	d := &n.Dimensions
	d.Padding, d.Border, d.Margin = geom.Edges{}, geom.Edges{}, geom.Edges{}
	first := true
	for _, c := range n.Children {
		if c.outOfFlow {
			continue
		}
		rect := c.Dimensions.MarginBox()
		if first {
			d.Content = rect
			first = false
			continue
		}
		d.Content = d.Content.Union(rect)
	}
	if first && n.Parent != nil {
		d.Content = geom.LogicalRect{Origin: n.Parent.Dimensions.Content.Origin}
	}
}
