// internal/managers/selection.go
package managers

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/xkilldash9x/boxkit/internal/dom"
)

// graphemeBoundaries returns every cluster boundary of s, 0 and len(s)
// included.
func graphemeBoundaries(s string) []int {
	out := []int{0}
	state := -1
	pos := 0
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		pos += len(cluster)
		out = append(out, pos)
	}
	return out
}

type wordSpan struct{ start, end int }

// words returns the spans of the words of s, skipping whitespace and
// punctuation segments.
func words(s string) []wordSpan {
	var out []wordSpan
	state := -1
	pos := 0
	for rest := s; len(rest) > 0; {
		var w string
		w, rest, state = uniseg.FirstWordInString(rest, state)
		if isWord(w) {
			out = append(out, wordSpan{pos, pos + len(w)})
		}
		pos += len(w)
	}
	return out
}

func isWord(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// NextCursorPosition returns where movement takes a cursor at pos in text.
// MoveAbsolute returns pos clamped to the text.
func NextCursorPosition(text string, pos int, movement CursorMovement) int {
	pos = min(max(pos, 0), len(text))
	switch movement {
	case MoveLeft:
		b := graphemeBoundaries(text)
		for i := len(b) - 1; i >= 0; i-- {
			if b[i] < pos {
				return b[i]
			}
		}
		return 0
	case MoveRight:
		for _, b := range graphemeBoundaries(text) {
			if b > pos {
				return b
			}
		}
		return len(text)
	case MoveWordLeft:
		ws := words(text)
		for i := len(ws) - 1; i >= 0; i-- {
			if ws[i].start < pos {
				return ws[i].start
			}
		}
		return 0
	case MoveWordRight:
		for _, w := range words(text) {
			if w.end > pos {
				return w.end
			}
		}
		return len(text)
	case MoveLineStart:
		return strings.LastIndexByte(text[:pos], '\n') + 1
	case MoveLineEnd:
		if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
			return pos + i
		}
		return len(text)
	case MoveDocumentStart:
		return 0
	case MoveDocumentEnd:
		return len(text)
	}
	return pos
}

// WordAt returns the word containing pos, or a collapsed range at pos when
// pos is not inside a word.
func WordAt(text string, pos int) TextRange {
	for _, w := range words(text) {
		if pos >= w.start && pos < w.end {
			return TextRange{Start: w.start, End: w.end}
		}
	}
	return TextRange{Start: pos, End: pos}
}

type selectionState struct {
	cursor int
	// anchor is where the selection started; the cursor is its moving end.
	anchor    int
	selecting bool
}

// SelectionManager keeps the cursor and selection of every text node of a
// window. Positions are byte offsets on grapheme boundaries.
type SelectionManager struct {
	states map[dom.DomNodeId]*selectionState
}

func NewSelectionManager() *SelectionManager {
	return &SelectionManager{states: make(map[dom.DomNodeId]*selectionState)}
}

func (m *SelectionManager) state(n dom.DomNodeId) *selectionState {
	s, ok := m.states[n]
	if !ok {
		s = &selectionState{}
		m.states[n] = s
	}
	return s
}

// Cursor returns the cursor of n.
func (m *SelectionManager) Cursor(n dom.DomNodeId) (int, bool) {
	s, ok := m.states[n]
	if !ok {
		return 0, false
	}
	return s.cursor, true
}

// Selection returns the selected range of n in selection order.
func (m *SelectionManager) Selection(n dom.DomNodeId) (TextRange, bool) {
	s, ok := m.states[n]
	if !ok || !s.selecting || s.anchor == s.cursor {
		return TextRange{}, false
	}
	return TextRange{Start: s.anchor, End: s.cursor}, true
}

// HasAnySelection reports whether any node has a non-empty selection.
func (m *SelectionManager) HasAnySelection() bool {
	for n := range m.states {
		if _, ok := m.Selection(n); ok {
			return true
		}
	}
	return false
}

// Clear forgets the cursor and selection of n.
func (m *SelectionManager) Clear(n dom.DomNodeId) { delete(m.states, n) }

// ClearAll forgets every cursor and selection.
func (m *SelectionManager) ClearAll() { clear(m.states) }

// Snapshot captures the editable state of n holding text.
func (m *SelectionManager) Snapshot(n dom.DomNodeId, text string, now time.Time) NodeStateSnapshot {
	snap := NodeStateSnapshot{Node: n, Text: text, Timestamp: now}
	if c, ok := m.Cursor(n); ok {
		snap.Cursor = c
	}
	if r, ok := m.Selection(n); ok {
		snap.Selection = &r
	}
	return snap
}

// Restore moves the cursor and selection to those of snap.
func (m *SelectionManager) Restore(snap NodeStateSnapshot) {
	s := m.state(snap.Node)
	s.cursor, s.anchor, s.selecting = snap.Cursor, snap.Cursor, false
	if snap.Selection != nil {
		s.anchor, s.cursor, s.selecting = snap.Selection.Start, snap.Selection.End, true
	}
}

// Move builds the changeset for a cursor movement in text. With extend the
// selection grows from its anchor instead of collapsing.
func (m *SelectionManager) Move(n dom.DomNodeId, text string, movement CursorMovement, extend bool, now time.Time) TextChangeset {
	s := m.state(n)
	to := NextCursorPosition(text, s.cursor, movement)
	if extend {
		old := TextRange{Start: s.cursor, End: s.cursor}
		if s.selecting {
			old.Start = s.anchor
		}
		dir := SelectForward
		if to < s.cursor {
			dir = SelectBackward
		}
		return NewTextChangeset(n, ExtendSelection{
			OldRange:  old,
			NewRange:  TextRange{Start: old.Start, End: to},
			Direction: dir,
		}, now)
	}
	return NewTextChangeset(n, MoveCursor{OldPosition: s.cursor, NewPosition: to, Movement: movement}, now)
}

// SelectAll builds the changeset selecting all of text.
func (m *SelectionManager) SelectAll(n dom.DomNodeId, text string, now time.Time) TextChangeset {
	op := SelectAll{NewRange: TextRange{Start: 0, End: len(text)}}
	if r, ok := m.Selection(n); ok {
		op.OldRange = &r
	}
	return NewTextChangeset(n, op, now)
}

// SelectWord builds the changeset selecting the word at pos, as on a
// double click.
func (m *SelectionManager) SelectWord(n dom.DomNodeId, text string, pos int, now time.Time) TextChangeset {
	op := SetSelection{NewRange: WordAt(text, pos)}
	if r, ok := m.Selection(n); ok {
		op.OldRange = &r
	}
	return NewTextChangeset(n, op, now)
}

// Insert builds the changeset typing s into text: the selection, if any,
// is replaced, otherwise s is inserted at the cursor.
func (m *SelectionManager) Insert(n dom.DomNodeId, text, s string, now time.Time) TextChangeset {
	if r, ok := m.Selection(n); ok {
		r = r.Normalized()
		return NewTextChangeset(n, ReplaceText{
			Range:     r,
			OldText:   text[r.Start:r.End],
			NewText:   s,
			NewCursor: r.Start + len(s),
		}, now)
	}
	c, _ := m.Cursor(n)
	c = min(c, len(text))
	return NewTextChangeset(n, InsertText{Position: c, Text: s, NewCursor: c + len(s)}, now)
}

// DeleteBackward builds the changeset for backspace. ok is false when there
// is nothing to delete.
func (m *SelectionManager) DeleteBackward(n dom.DomNodeId, text string, now time.Time) (TextChangeset, bool) {
	r, ok := m.Selection(n)
	if ok {
		r = r.Normalized()
	} else {
		c, _ := m.Cursor(n)
		c = min(c, len(text))
		if c == 0 {
			return TextChangeset{}, false
		}
		r = TextRange{Start: NextCursorPosition(text, c, MoveLeft), End: c}
	}
	return NewTextChangeset(n, DeleteText{Range: r, Deleted: text[r.Start:r.End], NewCursor: r.Start}, now), true
}

// Apply moves the cursor and selection to the result of c. It is the
// selection half of ApplyChangeset and is used when the text itself is
// owned elsewhere.
func (m *SelectionManager) Apply(c TextChangeset) {
	s := m.state(c.Target)
	switch op := c.Operation.(type) {
	case InsertText:
		s.cursor, s.selecting = op.NewCursor, false
	case DeleteText:
		s.cursor, s.selecting = op.NewCursor, false
	case ReplaceText:
		s.cursor, s.selecting = op.NewCursor, false
	case Cut:
		s.cursor, s.selecting = op.NewCursor, false
	case Paste:
		s.cursor, s.selecting = op.NewCursor, false
	case MoveCursor:
		s.cursor, s.selecting = op.NewPosition, false
	case SetSelection:
		s.anchor, s.cursor, s.selecting = op.NewRange.Start, op.NewRange.End, true
	case SelectAll:
		s.anchor, s.cursor, s.selecting = op.NewRange.Start, op.NewRange.End, true
	case ExtendSelection:
		s.anchor, s.cursor, s.selecting = op.NewRange.Start, op.NewRange.End, true
	case ClearSelection:
		s.selecting = false
	}
	s.anchor = s.anchorOr(s.cursor)
}

func (s *selectionState) anchorOr(c int) int {
	if s.selecting {
		return s.anchor
	}
	return c
}
