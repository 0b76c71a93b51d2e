// internal/managers/undo_test.go
package managers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangesetClassification(t *testing.T) {
	tests := []struct {
		op                         TextOperation
		mutates, selects, clipping bool
	}{
		{InsertText{}, true, false, false},
		{DeleteText{}, true, false, false},
		{ReplaceText{}, true, false, false},
		{SetSelection{}, false, true, false},
		{ExtendSelection{}, false, true, false},
		{ClearSelection{}, false, true, false},
		{MoveCursor{}, false, true, false},
		{SelectAll{}, false, true, false},
		{Copy{}, false, false, true},
		{Cut{}, true, false, true},
		{Paste{}, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.op.Name(), func(t *testing.T) {
			c := NewTextChangeset(at(0, 1), tt.op, epoch)
			assert.Equal(t, tt.mutates, c.MutatesText())
			assert.Equal(t, tt.selects, c.ChangesSelection())
			assert.Equal(t, tt.clipping, c.UsesClipboard())
		})
	}
}

func TestChangesetIdsIncrease(t *testing.T) {
	a := NewTextChangeset(at(0, 1), Copy{}, epoch)
	b := NewTextChangeset(at(0, 1), Copy{}, epoch)
	assert.Greater(t, b.ID, a.ID)
}

func TestApplyChangeset(t *testing.T) {
	base := NodeStateSnapshot{Node: at(0, 1), Text: "hello world", Cursor: 11}
	sel := &TextRange{Start: 0, End: 5}

	tests := []struct {
		name       string
		op         TextOperation
		wantText   string
		wantCursor int
		wantSel    *TextRange
	}{
		{"insert", InsertText{Position: 5, Text: ",", NewCursor: 6}, "hello, world", 6, nil},
		{"delete", DeleteText{Range: TextRange{5, 11}, Deleted: " world", NewCursor: 5}, "hello", 5, nil},
		{"backwards delete range", DeleteText{Range: TextRange{11, 5}, NewCursor: 5}, "hello", 5, nil},
		{"replace", ReplaceText{Range: TextRange{0, 5}, OldText: "hello", NewText: "goodbye", NewCursor: 7}, "goodbye world", 7, nil},
		{"cut", Cut{Range: TextRange{0, 6}, Content: "hello ", NewCursor: 0}, "world", 0, nil},
		{"paste", Paste{Position: 11, Content: "!", NewCursor: 12}, "hello world!", 12, nil},
		{"copy", Copy{Range: TextRange{0, 5}, Content: "hello"}, "hello world", 11, nil},
		{"set selection", SetSelection{NewRange: *sel}, "hello world", 5, sel},
		{"select all", SelectAll{NewRange: TextRange{0, 11}}, "hello world", 11, &TextRange{0, 11}},
		{"move cursor", MoveCursor{OldPosition: 11, NewPosition: 3}, "hello world", 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyChangeset(base, NewTextChangeset(base.Node, tt.op, epoch))
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantCursor, got.Cursor)
			assert.Equal(t, tt.wantSel, got.Selection)
		})
	}

	t.Run("clear selection", func(t *testing.T) {
		s := base
		s.Selection = sel
		got, err := ApplyChangeset(s, NewTextChangeset(s.Node, ClearSelection{OldRange: *sel}, epoch))
		require.NoError(t, err)
		assert.Nil(t, got.Selection)
	})

	t.Run("out of range edits fail without changing the state", func(t *testing.T) {
		for _, op := range []TextOperation{
			InsertText{Position: 12, Text: "x"},
			DeleteText{Range: TextRange{3, 20}},
			MoveCursor{NewPosition: -1},
		} {
			got, err := ApplyChangeset(base, NewTextChangeset(base.Node, op, epoch))
			assert.True(t, errors.Is(err, ErrOutOfRange), op.Name())
			assert.Equal(t, base, got)
		}
	})
}

func TestCreateRevertChangeset(t *testing.T) {
	pre := NodeStateSnapshot{Node: at(0, 1), Text: "hello world", Cursor: 4}
	old := &TextRange{Start: 1, End: 2}

	tests := []struct {
		name string
		op   TextOperation
		want TextOperation
	}{
		{"insert becomes delete",
			InsertText{Position: 5, Text: "!!", NewCursor: 7},
			DeleteText{Range: TextRange{5, 7}, Deleted: "!!", NewCursor: 4}},
		{"delete becomes insert",
			DeleteText{Range: TextRange{6, 0}, Deleted: "hello ", NewCursor: 0},
			InsertText{Position: 0, Text: "hello ", NewCursor: 4}},
		{"replace swaps its texts",
			ReplaceText{Range: TextRange{0, 5}, OldText: "hello", NewText: "hi", NewCursor: 2},
			ReplaceText{Range: TextRange{0, 2}, OldText: "hi", NewText: "hello", NewCursor: 4}},
		{"cut is left to the clipboard",
			Cut{Range: TextRange{0, 5}, Content: "hello"},
			Cut{Range: TextRange{0, 5}, Content: "hello"}},
		{"paste is left to the clipboard",
			Paste{Position: 11, Content: "!", NewCursor: 12},
			Paste{Position: 11, Content: "!", NewCursor: 12}},
		{"set selection restores the previous range",
			SetSelection{OldRange: old, NewRange: TextRange{0, 5}},
			SetSelection{OldRange: &TextRange{0, 5}, NewRange: *old}},
		{"first selection is cleared",
			SetSelection{NewRange: TextRange{0, 5}},
			ClearSelection{OldRange: TextRange{0, 5}}},
		{"select all restores the previous range",
			SelectAll{OldRange: old, NewRange: TextRange{0, 11}},
			SetSelection{OldRange: &TextRange{0, 11}, NewRange: *old}},
		{"extend selection shrinks back",
			ExtendSelection{OldRange: TextRange{0, 2}, NewRange: TextRange{0, 5}},
			SetSelection{OldRange: &TextRange{0, 5}, NewRange: TextRange{0, 2}}},
		{"clear selection restores it",
			ClearSelection{OldRange: *old},
			SetSelection{NewRange: *old}},
		{"cursor moves back",
			MoveCursor{OldPosition: 4, NewPosition: 9, Movement: MoveWordRight},
			MoveCursor{OldPosition: 9, NewPosition: 4, Movement: MoveWordRight}},
		{"copy has nothing to revert",
			Copy{Range: TextRange{0, 5}, Content: "hello"},
			Copy{Range: TextRange{0, 5}, Content: "hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewTextChangeset(pre.Node, tt.op, epoch)
			revert := CreateRevertChangeset(UndoableOperation{Changeset: c, PreState: pre}, epoch)
			assert.Equal(t, tt.want, revert.Operation)
			assert.Equal(t, c.Target, revert.Target)
			assert.NotEqual(t, c.ID, revert.ID)
		})
	}

	t.Run("applying the revert restores the text", func(t *testing.T) {
		for _, op := range []TextOperation{
			InsertText{Position: 5, Text: ", big", NewCursor: 10},
			DeleteText{Range: TextRange{0, 6}, Deleted: "hello ", NewCursor: 0},
			ReplaceText{Range: TextRange{6, 11}, OldText: "world", NewText: "there", NewCursor: 11},
		} {
			c := NewTextChangeset(pre.Node, op, epoch)
			post, err := ApplyChangeset(pre, c)
			require.NoError(t, err)
			back, err := ApplyChangeset(post, CreateRevertChangeset(UndoableOperation{Changeset: c, PreState: pre}, epoch))
			require.NoError(t, err)
			assert.Equal(t, pre.Text, back.Text, op.Name())
			assert.Equal(t, pre.Cursor, back.Cursor, op.Name())
		}
	})
}

func TestUndoRedo(t *testing.T) {
	node := at(0, 1)

	t.Run("undo after insert", func(t *testing.T) {
		m := NewUndoRedoManager(0, 0, nil)
		pre := NodeStateSnapshot{Node: node, Text: "hello", Cursor: 5}
		c := NewTextChangeset(node, InsertText{Position: 5, Text: " world", NewCursor: 11}, epoch)
		post, err := ApplyChangeset(pre, c)
		require.NoError(t, err)
		require.Equal(t, "hello world", post.Text)
		m.RecordOperation(c, pre)

		undone, ok := m.Undo(node)
		require.True(t, ok)
		assert.Equal(t, "hello", undone.Text)
		assert.Equal(t, 5, undone.Cursor)
		assert.False(t, m.CanUndo(node))
		assert.True(t, m.CanRedo(node))

		redone, ok := m.Redo(node)
		require.True(t, ok)
		assert.Equal(t, "hello world", redone.Text)
		assert.Equal(t, 11, redone.Cursor)
		assert.True(t, m.CanUndo(node))
		assert.False(t, m.CanRedo(node))
	})

	t.Run("clipboard edits are recorded as text edits", func(t *testing.T) {
		tests := []struct {
			name string
			op   TextOperation
			want TextOperation
		}{
			{"cut", Cut{Range: TextRange{0, 6}, Content: "hello ", NewCursor: 0},
				DeleteText{Range: TextRange{0, 6}, Deleted: "hello ", NewCursor: 0}},
			{"paste", Paste{Position: 11, Content: "!", NewCursor: 12},
				InsertText{Position: 11, Text: "!", NewCursor: 12}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := NewUndoRedoManager(0, 0, nil)
				pre := NodeStateSnapshot{Node: node, Text: "hello world", Cursor: 11}
				c := NewTextChangeset(node, tt.op, epoch)
				post, err := ApplyChangeset(pre, c)
				require.NoError(t, err)
				m.RecordOperation(c, pre)

				top, ok := m.PeekUndo(node)
				require.True(t, ok)
				assert.Equal(t, tt.want, top.Changeset.Operation)
				assert.Equal(t, c.ID, top.Changeset.ID)

				undone, ok := m.Undo(node)
				require.True(t, ok)
				assert.Equal(t, "hello world", undone.Text)

				redone, ok := m.Redo(node)
				require.True(t, ok)
				assert.Equal(t, post.Text, redone.Text)
			})
		}
	})

	t.Run("a new operation clears redo", func(t *testing.T) {
		m := NewUndoRedoManager(0, 0, nil)
		m.RecordOperation(NewTextChangeset(node, InsertText{Text: "a", NewCursor: 1}, epoch), NodeStateSnapshot{Node: node})
		m.Undo(node)
		require.True(t, m.CanRedo(node))

		m.RecordOperation(NewTextChangeset(node, InsertText{Text: "b", NewCursor: 1}, epoch), NodeStateSnapshot{Node: node})
		assert.False(t, m.CanRedo(node))
	})

	t.Run("histories are bounded", func(t *testing.T) {
		m := NewUndoRedoManager(0, 0, nil)
		for i := 0; i < 15; i++ {
			m.RecordOperation(NewTextChangeset(node, InsertText{Text: fmt.Sprint(i)}, epoch), NodeStateSnapshot{Node: node})
		}
		undo, _ := m.Depth(node)
		assert.Equal(t, MaxUndoHistory, undo)

		top, ok := m.PeekUndo(node)
		require.True(t, ok)
		assert.Equal(t, "14", top.Changeset.Operation.(InsertText).Text)

		var last UndoableOperation
		for m.CanUndo(node) {
			last, _ = m.PopUndo(node)
			m.PushRedo(last)
		}
		assert.Equal(t, "5", last.Changeset.Operation.(InsertText).Text)
		_, redo := m.Depth(node)
		assert.Equal(t, MaxRedoHistory, redo)
		next, _ := m.PeekRedo(node)
		assert.Equal(t, "5", next.Changeset.Operation.(InsertText).Text)
	})

	t.Run("custom limits", func(t *testing.T) {
		m := NewUndoRedoManager(2, 1, nil)
		for i := 0; i < 3; i++ {
			m.RecordOperation(NewTextChangeset(node, Copy{}, epoch), NodeStateSnapshot{Node: node})
		}
		m.Undo(node)
		m.Undo(node)
		undo, redo := m.Depth(node)
		assert.Equal(t, 0, undo)
		assert.Equal(t, 1, redo)
	})

	t.Run("nodes have independent histories", func(t *testing.T) {
		m := NewUndoRedoManager(0, 0, nil)
		other := at(1, 1)
		m.RecordOperation(NewTextChangeset(node, Copy{}, epoch), NodeStateSnapshot{Node: node})
		assert.False(t, m.CanUndo(other))
		_, ok := m.Undo(other)
		assert.False(t, ok)
		_, ok = m.Redo(node)
		assert.False(t, ok)

		m.RecordOperation(NewTextChangeset(other, Copy{}, epoch), NodeStateSnapshot{Node: other})
		m.ClearNode(node)
		assert.False(t, m.CanUndo(node))
		assert.True(t, m.CanUndo(other))
		m.ClearAll()
		assert.False(t, m.CanUndo(other))
	})
}
