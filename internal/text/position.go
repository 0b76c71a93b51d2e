// internal/text/position.go
package text

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// LineBreakDecision is the outcome of placing one word.
type LineBreakDecision uint8

const (
	NoLineBreak LineBreakDecision = iota
	LineBreak
)

// LayoutOptions are the resolved text properties for one run. All lengths
// are px.
type LayoutOptions struct {
	FontSize float32
	// LineHeight is the line box height; zero derives it from the font
	// metrics.
	LineHeight    float32
	LetterSpacing float32
	WordSpacing   float32
	// TabWidth is the width of a tab in spaces.
	TabWidth float32
	// MaxHorizontalWidth bounds each line; nil lays the run out on as few
	// lines as forced breaks allow.
	MaxHorizontalWidth *float32
	// TextIndent offsets the first line.
	TextIndent float32
	// ShapeInside restricts lines to the inside of a shape laid over a
	// reference box of ShapeSize.
	ShapeInside *css.Shape
	ShapeSize   geom.LogicalSize
}

// MaxWidth is a helper for LayoutOptions.MaxHorizontalWidth.
func MaxWidth(w float32) *float32 { return &w }

// WordPosition places one entry of Words.
type WordPosition struct {
	Line   int
	Origin geom.LogicalPosition
	Width  float32
}

// InlineTextLine is one line box of a run.
type InlineTextLine struct {
	Bounds geom.LogicalRect
	// Available is the span the line may use, for alignment.
	Available Segment
	// FirstWord and EndWord delimit the words of the line.
	FirstWord, EndWord int
	// Forced reports whether the line ends with a Return.
	Forced bool
}

// InlineTextLayout is the set of line rectangles of a run.
type InlineTextLayout struct {
	Lines       []InlineTextLine
	ContentSize geom.LogicalSize
}

// WordPositions is the output of PositionWords.
type WordPositions struct {
	Positions  []WordPosition
	Layout     InlineTextLayout
	LineHeight float32
	// Ascent is the baseline offset from the top of each line.
	Ascent float32
}

type lineBuilder struct {
	opts     LayoutOptions
	segments []Segment
	segIdx   int
	y        float32
	height   float32
	caret    float32
	hasWord  bool
	line     InlineTextLine
	out      *WordPositions
}

func (b *lineBuilder) available() Segment {
	if len(b.segments) == 0 {
		return Segment{}
	}
	return b.segments[b.segIdx]
}

// segmentsAt returns the spans for a line starting at y. Without a shape
// there is one span, unbounded when no max width is set.
func (b *lineBuilder) segmentsAt(y float32) []Segment {
	if b.opts.ShapeInside == nil {
		w := float32(-1)
		if b.opts.MaxHorizontalWidth != nil {
			w = *b.opts.MaxHorizontalWidth
		}
		return []Segment{{X: 0, Width: w}}
	}
	if b.height <= 0 {
		// Zero-height lines never advance through the shape.
		return []Segment{{X: 0, Width: b.opts.ShapeSize.Width}}
	}
	_, bottom := ShapeBounds(*b.opts.ShapeInside, b.opts.ShapeSize)
	for ; y+b.height <= bottom; y += b.height {
		if segs := ShapeSegments(*b.opts.ShapeInside, b.opts.ShapeSize, y, y+b.height); len(segs) > 0 {
			b.y = y
			return segs
		}
	}
	// Past the shape: overflow below it using the reference width.
	b.y = max(y, b.y)
	return []Segment{{X: 0, Width: b.opts.ShapeSize.Width}}
}

func (b *lineBuilder) startLine(first int, indent float32) {
	b.segments = b.segmentsAt(b.y)
	b.segIdx = 0
	b.caret = b.available().X + indent
	b.hasWord = false
	seg := b.available()
	b.line = InlineTextLine{
		Bounds:    geom.Rect(b.caret, b.y, 0, b.height),
		Available: seg,
		FirstWord: first,
	}
}

func (b *lineBuilder) endLine(end int, forced bool) {
	b.line.EndWord = end
	b.line.Forced = forced
	if b.hasWord {
		b.out.Layout.ContentSize.Width = max(b.out.Layout.ContentSize.Width, b.line.Bounds.MaxX())
	}
	b.out.Layout.Lines = append(b.out.Layout.Lines, b.line)
	b.y += b.height
}

// fits decides whether a word of width w can be placed at the caret,
// moving to the next shape segment when the current one is full.
func (b *lineBuilder) fits(w float32) LineBreakDecision {
	for {
		seg := b.available()
		if seg.Width < 0 || b.caret+w <= seg.End() {
			return NoLineBreak
		}
		if b.segIdx+1 < len(b.segments) {
			b.segIdx++
			b.caret = max(b.caret, b.available().X)
			continue
		}
		if !b.hasWord {
			// A word wider than the line stays on it and overflows.
			return NoLineBreak
		}
		return LineBreak
	}
}

func (b *lineBuilder) place(i int, w float32, isWord bool) {
	b.out.Positions[i] = WordPosition{
		Line:   len(b.out.Layout.Lines),
		Origin: geom.LogicalPosition{X: b.caret, Y: b.y},
		Width:  w,
	}
	if isWord {
		right := b.caret + w
		if !b.hasWord {
			b.line.Bounds.Origin.X = b.caret
		}
		b.line.Bounds.Size.Width = right - b.line.Bounds.Origin.X
		b.hasWord = true
	}
	b.caret += w
}

// PositionWords lays the shaped words out left to right, breaking lines
// when the caret would pass the available width and at every Return.
func PositionWords(words *Words, shaped *ShapedWords, opts LayoutOptions) *WordPositions {
	m := shaped.Metrics
	scale := m.Scale(opts.FontSize)
	lineHeight := opts.LineHeight
	if lineHeight <= 0 {
		lineHeight = float32(m.Ascender+m.Descender+m.LineGap) * scale
	}
	tabWidth := opts.TabWidth
	if tabWidth <= 0 {
		tabWidth = 8
	}
	spaceWidth := float32(shaped.SpaceAdvance)*scale + opts.LetterSpacing + opts.WordSpacing

	out := &WordPositions{
		Positions:  make([]WordPosition, len(words.Items)),
		LineHeight: lineHeight,
		Ascent:     float32(m.Ascender)*scale + (lineHeight-float32(m.Ascender+m.Descender)*scale)/2,
	}
	b := &lineBuilder{opts: opts, height: lineHeight, out: out}
	b.startLine(0, opts.TextIndent)

	for i, it := range words.Items {
		switch it.Kind {
		case WordReturn:
			b.place(i, 0, false)
			b.endLine(i+1, true)
			b.startLine(i+1, 0)
		case WordSpace:
			b.place(i, spaceWidth, false)
		case WordTab:
			b.place(i, spaceWidth*tabWidth, false)
		case WordText:
			sw := shaped.Words[i]
			w := float32(sw.Advance)*scale + opts.LetterSpacing*float32(len(sw.Glyphs))
			if b.fits(w) == LineBreak {
				b.endLine(i, false)
				b.startLine(i, 0)
				b.fits(w)
			}
			b.place(i, w, true)
		}
	}
	b.endLine(len(words.Items), false)
	out.Layout.ContentSize.Height = b.y
	return out
}
