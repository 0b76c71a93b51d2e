// internal/text/align.go
package text

import (
	"github.com/xkilldash9x/boxkit/internal/css"
)

// AlignLines shifts the words of every line inside its available span.
// Unbounded lines align against the widest line. justify spreads the slack
// across the spaces between words; the last line and lines ending in a
// Return stay start-aligned.
func AlignLines(p *WordPositions, words *Words, align css.TextAlign, dir css.Direction) {
	if align == css.TextAlignStart && dir == css.DirectionLTR || align == css.TextAlignLeft {
		return
	}
	lines := p.Layout.Lines
	for li := range lines {
		line := &lines[li]
		avail := line.Available
		if avail.Width < 0 {
			avail = Segment{X: 0, Width: p.Layout.ContentSize.Width}
		}
		slack := avail.End() - line.Bounds.MaxX()
		if slack <= 0 {
			continue
		}

		var shift float32
		switch resolveAlign(align, dir) {
		case css.TextAlignRight:
			shift = slack
		case css.TextAlignCenter:
			shift = slack / 2
		case css.TextAlignJustify:
			if li == len(lines)-1 || line.Forced {
				if dir == css.DirectionRTL {
					shift = slack
				}
				break
			}
			justifyLine(p, words, line, slack)
			continue
		}
		if shift == 0 {
			continue
		}
		for i := line.FirstWord; i < line.EndWord; i++ {
			p.Positions[i].Origin.X += shift
		}
		line.Bounds.Origin.X += shift
	}
}

func resolveAlign(align css.TextAlign, dir css.Direction) css.TextAlign {
	rtl := dir == css.DirectionRTL
	switch align {
	case css.TextAlignStart:
		if rtl {
			return css.TextAlignRight
		}
		return css.TextAlignLeft
	case css.TextAlignEnd:
		if rtl {
			return css.TextAlignLeft
		}
		return css.TextAlignRight
	}
	return align
}

// justifyLine widens the inner spaces of line so its last word ends at
// the end of the available span.
func justifyLine(p *WordPositions, words *Words, line *InlineTextLine, slack float32) {
	last := -1
	for i := line.EndWord - 1; i >= line.FirstWord; i-- {
		if words.Items[i].Kind == WordText {
			last = i
			break
		}
	}
	first := -1
	for i := line.FirstWord; i < line.EndWord; i++ {
		if words.Items[i].Kind == WordText {
			first = i
			break
		}
	}
	if first < 0 || last <= first {
		return
	}
	spaces := 0
	for i := first; i < last; i++ {
		if words.Items[i].Kind == WordSpace {
			spaces++
		}
	}
	if spaces == 0 {
		return
	}
	extra := slack / float32(spaces)
	var offset float32
	for i := first; i <= last; i++ {
		p.Positions[i].Origin.X += offset
		if words.Items[i].Kind == WordSpace {
			p.Positions[i].Width += extra
			offset += extra
		}
	}
	line.Bounds.Size.Width += slack
}
