// internal/managers/selection_test.go
package managers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCursorPosition(t *testing.T) {
	// e plus a combining acute, and an emoji with a skin tone modifier; each
	// is a single cluster.
	const accent = "e\u0301x"
	const thumbs = "a\U0001F44D\U0001F3FDb"
	const phrase = "hello, big world"

	tests := []struct {
		name     string
		text     string
		pos      int
		movement CursorMovement
		want     int
	}{
		{"right over a combining mark", accent, 0, MoveRight, 3},
		{"left over a combining mark", accent, 3, MoveLeft, 0},
		{"right over an emoji sequence", thumbs, 1, MoveRight, 9},
		{"left over an emoji sequence", thumbs, 9, MoveLeft, 1},
		{"right at the end", accent, 4, MoveRight, 4},
		{"left at the start", accent, 0, MoveLeft, 0},
		{"word right stops after the word", phrase, 0, MoveWordRight, 5},
		{"word right skips punctuation", phrase, 5, MoveWordRight, 10},
		{"word right to the end", phrase, 12, MoveWordRight, 16},
		{"word left to the word start", phrase, 16, MoveWordLeft, 11},
		{"word left from a word start", phrase, 7, MoveWordLeft, 0},
		{"line start", "ab\ncd", 4, MoveLineStart, 3},
		{"line start on the first line", "ab\ncd", 1, MoveLineStart, 0},
		{"line end", "ab\ncd", 1, MoveLineEnd, 2},
		{"line end on the last line", "ab\ncd", 3, MoveLineEnd, 5},
		{"document start", phrase, 9, MoveDocumentStart, 0},
		{"document end", phrase, 9, MoveDocumentEnd, 16},
		{"absolute is clamped", phrase, 99, MoveAbsolute, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextCursorPosition(tt.text, tt.pos, tt.movement))
		})
	}
}

func TestWordAt(t *testing.T) {
	assert.Equal(t, TextRange{Start: 7, End: 10}, WordAt("hello, big world", 8))
	assert.Equal(t, TextRange{Start: 5, End: 5}, WordAt("hello, big world", 5))
}

func TestSelectionManager(t *testing.T) {
	node := at(0, 2)

	t.Run("typing inserts at the cursor", func(t *testing.T) {
		m := NewSelectionManager()
		m.Restore(NodeStateSnapshot{Node: node, Text: "hello", Cursor: 5})
		c := m.Insert(node, "hello", " world", epoch)
		assert.Equal(t, InsertText{Position: 5, Text: " world", NewCursor: 11}, c.Operation)
		m.Apply(c)
		cur, ok := m.Cursor(node)
		require.True(t, ok)
		assert.Equal(t, 11, cur)
	})

	t.Run("typing replaces the selection", func(t *testing.T) {
		m := NewSelectionManager()
		const text = "hello world"
		m.Restore(NodeStateSnapshot{Node: node, Text: text, Cursor: 11})

		ext := m.Move(node, text, MoveWordLeft, true, epoch)
		assert.Equal(t, ExtendSelection{
			OldRange:  TextRange{Start: 11, End: 11},
			NewRange:  TextRange{Start: 11, End: 6},
			Direction: SelectBackward,
		}, ext.Operation)
		m.Apply(ext)
		sel, ok := m.Selection(node)
		require.True(t, ok)
		assert.Equal(t, TextRange{Start: 11, End: 6}, sel)
		assert.True(t, m.HasAnySelection())

		c := m.Insert(node, text, "there", epoch)
		assert.Equal(t, ReplaceText{Range: TextRange{Start: 6, End: 11}, OldText: "world", NewText: "there", NewCursor: 11}, c.Operation)
		m.Apply(c)
		_, ok = m.Selection(node)
		assert.False(t, ok)
	})

	t.Run("moving without extend collapses the selection", func(t *testing.T) {
		m := NewSelectionManager()
		m.Apply(m.SelectAll(node, "abc", epoch))
		c := m.Move(node, "abc", MoveLeft, false, epoch)
		assert.Equal(t, MoveCursor{OldPosition: 3, NewPosition: 2, Movement: MoveLeft}, c.Operation)
		m.Apply(c)
		assert.False(t, m.HasAnySelection())
	})

	t.Run("backspace deletes one cluster", func(t *testing.T) {
		m := NewSelectionManager()
		const text = "ae\u0301"
		m.Restore(NodeStateSnapshot{Node: node, Text: text, Cursor: len(text)})
		c, ok := m.DeleteBackward(node, text, epoch)
		require.True(t, ok)
		assert.Equal(t, DeleteText{Range: TextRange{Start: 1, End: 4}, Deleted: "e\u0301", NewCursor: 1}, c.Operation)

		m.Restore(NodeStateSnapshot{Node: node, Text: text})
		_, ok = m.DeleteBackward(node, text, epoch)
		assert.False(t, ok)
	})

	t.Run("double click selects a word", func(t *testing.T) {
		m := NewSelectionManager()
		c := m.SelectWord(node, "hello, big world", 8, epoch)
		assert.Equal(t, SetSelection{NewRange: TextRange{Start: 7, End: 10}}, c.Operation)
	})

	t.Run("snapshots round trip", func(t *testing.T) {
		m := NewSelectionManager()
		snap := NodeStateSnapshot{Node: node, Text: "abcdef", Cursor: 4, Selection: &TextRange{Start: 1, End: 4}, Timestamp: epoch}
		m.Restore(snap)
		assert.Equal(t, snap, m.Snapshot(node, "abcdef", epoch))

		m.Clear(node)
		_, ok := m.Cursor(node)
		assert.False(t, ok)
	})

	t.Run("edits recorded for undo restore the cursor", func(t *testing.T) {
		m := NewSelectionManager()
		undo := NewUndoRedoManager(0, 0, nil)
		m.Restore(NodeStateSnapshot{Node: node, Text: "hello", Cursor: 5})

		pre := m.Snapshot(node, "hello", epoch)
		c := m.Insert(node, "hello", " world", epoch)
		post, err := ApplyChangeset(pre, c)
		require.NoError(t, err)
		undo.RecordOperation(c, pre)
		m.Apply(c)

		restored, ok := undo.Undo(node)
		require.True(t, ok)
		m.Restore(restored)
		cur, _ := m.Cursor(node)
		assert.Equal(t, 5, cur)
		assert.Equal(t, "hello world", post.Text)
		assert.Equal(t, "hello", restored.Text)
	})
}
