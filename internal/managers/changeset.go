// internal/managers/changeset.go
package managers

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/xkilldash9x/boxkit/internal/dom"
)

// ErrOutOfRange is returned when an operation addresses bytes outside the
// text it is applied to.
var ErrOutOfRange = errors.New("text range out of bounds")

// TextRange is a byte range of a text node. Start may exceed End for a
// selection made backwards; Normalized orders them.
type TextRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Normalized returns the range with Start <= End.
func (r TextRange) Normalized() TextRange {
	if r.Start > r.End {
		return TextRange{Start: r.End, End: r.Start}
	}
	return r
}

// IsCollapsed reports whether the range selects nothing.
func (r TextRange) IsCollapsed() bool { return r.Start == r.End }

// SelectionDirection is the side a selection was extended toward.
type SelectionDirection uint8

const (
	SelectForward SelectionDirection = iota
	SelectBackward
)

// CursorMovement is the gesture that moved a cursor.
type CursorMovement uint8

const (
	MoveLeft CursorMovement = iota
	MoveRight
	MoveWordLeft
	MoveWordRight
	MoveLineStart
	MoveLineEnd
	MoveDocumentStart
	MoveDocumentEnd
	MoveAbsolute
)

// TextOperation is one edit or selection change of a text node.
type TextOperation interface {
	// Name is a short label for logs.
	Name() string
	isTextOperation()
}

type (
	InsertText struct {
		Position  int
		Text      string
		NewCursor int
	}
	DeleteText struct {
		Range     TextRange
		Deleted   string
		NewCursor int
	}
	ReplaceText struct {
		Range     TextRange
		OldText   string
		NewText   string
		NewCursor int
	}
	SetSelection struct {
		OldRange *TextRange
		NewRange TextRange
	}
	ExtendSelection struct {
		OldRange  TextRange
		NewRange  TextRange
		Direction SelectionDirection
	}
	ClearSelection struct {
		OldRange TextRange
	}
	MoveCursor struct {
		OldPosition int
		NewPosition int
		Movement    CursorMovement
	}
	Copy struct {
		Range   TextRange
		Content string
	}
	Cut struct {
		Range     TextRange
		Content   string
		NewCursor int
	}
	Paste struct {
		Position  int
		Content   string
		NewCursor int
	}
	SelectAll struct {
		OldRange *TextRange
		NewRange TextRange
	}
)

func (InsertText) Name() string      { return "insert" }
func (DeleteText) Name() string      { return "delete" }
func (ReplaceText) Name() string     { return "replace" }
func (SetSelection) Name() string    { return "set-selection" }
func (ExtendSelection) Name() string { return "extend-selection" }
func (ClearSelection) Name() string  { return "clear-selection" }
func (MoveCursor) Name() string      { return "move-cursor" }
func (Copy) Name() string            { return "copy" }
func (Cut) Name() string             { return "cut" }
func (Paste) Name() string           { return "paste" }
func (SelectAll) Name() string       { return "select-all" }

func (InsertText) isTextOperation()      {}
func (DeleteText) isTextOperation()      {}
func (ReplaceText) isTextOperation()     {}
func (SetSelection) isTextOperation()    {}
func (ExtendSelection) isTextOperation() {}
func (ClearSelection) isTextOperation()  {}
func (MoveCursor) isTextOperation()      {}
func (Copy) isTextOperation()            {}
func (Cut) isTextOperation()             {}
func (Paste) isTextOperation()           {}
func (SelectAll) isTextOperation()       {}

var changesetIDs atomic.Uint64

// TextChangeset is an operation bound to the node it edits.
type TextChangeset struct {
	ID        uint64
	Target    dom.DomNodeId
	Operation TextOperation
	Timestamp time.Time
}

// NewTextChangeset stamps op with the next changeset id.
func NewTextChangeset(target dom.DomNodeId, op TextOperation, now time.Time) TextChangeset {
	return TextChangeset{ID: changesetIDs.Add(1), Target: target, Operation: op, Timestamp: now}
}

// MutatesText reports whether applying the changeset changes the text.
func (c TextChangeset) MutatesText() bool {
	switch c.Operation.(type) {
	case InsertText, DeleteText, ReplaceText, Cut, Paste:
		return true
	}
	return false
}

// ChangesSelection reports whether the changeset only moves the cursor or
// selection.
func (c TextChangeset) ChangesSelection() bool {
	switch c.Operation.(type) {
	case SetSelection, ExtendSelection, ClearSelection, MoveCursor, SelectAll:
		return true
	}
	return false
}

// UsesClipboard reports whether the changeset reads or writes the clipboard.
func (c TextChangeset) UsesClipboard() bool {
	switch c.Operation.(type) {
	case Copy, Cut, Paste:
		return true
	}
	return false
}

// NodeStateSnapshot is the editable state of a text node.
type NodeStateSnapshot struct {
	Node      dom.DomNodeId
	Text      string
	Cursor    int
	Selection *TextRange
	Timestamp time.Time
}

func (s NodeStateSnapshot) checkRange(r TextRange) (TextRange, error) {
	r = r.Normalized()
	if r.Start < 0 || r.End > len(s.Text) {
		return r, fmt.Errorf("%w: [%d, %d) of %d bytes", ErrOutOfRange, r.Start, r.End, len(s.Text))
	}
	return r, nil
}

func (s NodeStateSnapshot) checkPos(p int) error {
	if p < 0 || p > len(s.Text) {
		return fmt.Errorf("%w: position %d of %d bytes", ErrOutOfRange, p, len(s.Text))
	}
	return nil
}

// ApplyChangeset returns the state after applying c to s. Text edits clear
// the selection; Copy leaves the state unchanged.
func ApplyChangeset(s NodeStateSnapshot, c TextChangeset) (NodeStateSnapshot, error) {
	out := s
	out.Timestamp = c.Timestamp
	splice := func(r TextRange, insert string, cursor int) error {
		r, err := s.checkRange(r)
		if err != nil {
			return err
		}
		out.Text = s.Text[:r.Start] + insert + s.Text[r.End:]
		out.Cursor = cursor
		out.Selection = nil
		return nil
	}

	var err error
	switch op := c.Operation.(type) {
	case InsertText:
		if err = s.checkPos(op.Position); err == nil {
			err = splice(TextRange{op.Position, op.Position}, op.Text, op.NewCursor)
		}
	case Paste:
		if err = s.checkPos(op.Position); err == nil {
			err = splice(TextRange{op.Position, op.Position}, op.Content, op.NewCursor)
		}
	case DeleteText:
		err = splice(op.Range, "", op.NewCursor)
	case Cut:
		err = splice(op.Range, "", op.NewCursor)
	case ReplaceText:
		err = splice(op.Range, op.NewText, op.NewCursor)
	case SetSelection:
		out.Selection, out.Cursor = selectRange(op.NewRange), op.NewRange.End
	case SelectAll:
		out.Selection, out.Cursor = selectRange(op.NewRange), op.NewRange.End
	case ExtendSelection:
		out.Selection, out.Cursor = selectRange(op.NewRange), op.NewRange.End
	case ClearSelection:
		out.Selection = nil
	case MoveCursor:
		if err = s.checkPos(op.NewPosition); err == nil {
			out.Cursor = op.NewPosition
			out.Selection = nil
		}
	case Copy:
	default:
		err = fmt.Errorf("unknown text operation %T", op)
	}
	if err != nil {
		return s, fmt.Errorf("apply changeset %d: %w", c.ID, err)
	}
	return out, nil
}

func selectRange(r TextRange) *TextRange { return &r }

// UndoableOperation is a recorded changeset plus the state it was applied to.
type UndoableOperation struct {
	Changeset TextChangeset
	PreState  NodeStateSnapshot
}

// CreateRevertChangeset derives the changeset that undoes op. Insert and
// delete invert each other, replace swaps its texts and selection changes
// restore the previous range. Clipboard operations are returned as is:
// their text changes are recorded separately through TextMutation.
func CreateRevertChangeset(op UndoableOperation, now time.Time) TextChangeset {
	pre := op.PreState
	var revert TextOperation
	switch o := op.Changeset.Operation.(type) {
	case InsertText:
		revert = DeleteText{Range: TextRange{o.Position, o.Position + len(o.Text)}, Deleted: o.Text, NewCursor: pre.Cursor}
	case DeleteText:
		r := o.Range.Normalized()
		revert = InsertText{Position: r.Start, Text: o.Deleted, NewCursor: pre.Cursor}
	case ReplaceText:
		r := o.Range.Normalized()
		revert = ReplaceText{
			Range:     TextRange{r.Start, r.Start + len(o.NewText)},
			OldText:   o.NewText,
			NewText:   o.OldText,
			NewCursor: pre.Cursor,
		}
	case SetSelection:
		revert = restoreSelection(o.OldRange, o.NewRange)
	case SelectAll:
		revert = restoreSelection(o.OldRange, o.NewRange)
	case ExtendSelection:
		newRange := o.NewRange
		revert = SetSelection{OldRange: &newRange, NewRange: o.OldRange}
	case ClearSelection:
		revert = SetSelection{NewRange: o.OldRange}
	case MoveCursor:
		revert = MoveCursor{OldPosition: o.NewPosition, NewPosition: o.OldPosition, Movement: o.Movement}
	default:
		revert = o
	}
	return NewTextChangeset(op.Changeset.Target, revert, now)
}

// TextMutation returns the plain text edit a clipboard changeset performs:
// Cut deletes its range and Paste inserts its content. Other changesets
// are returned unchanged. The result keeps the id of c.
func TextMutation(c TextChangeset) TextChangeset {
	switch o := c.Operation.(type) {
	case Cut:
		c.Operation = DeleteText{Range: o.Range, Deleted: o.Content, NewCursor: o.NewCursor}
	case Paste:
		c.Operation = InsertText{Position: o.Position, Text: o.Content, NewCursor: o.NewCursor}
	}
	return c
}

func restoreSelection(old *TextRange, current TextRange) TextOperation {
	if old == nil {
		return ClearSelection{OldRange: current}
	}
	return SetSelection{OldRange: &current, NewRange: *old}
}
