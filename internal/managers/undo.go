// internal/managers/undo.go
package managers

import (
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/dom"
)

// Default history depths per node.
const (
	MaxUndoHistory = 10
	MaxRedoHistory = 10
)

// nodeStack is the bounded history of one node. The newest entry is last.
type nodeStack struct {
	undo, redo []UndoableOperation
}

func pushBounded(s []UndoableOperation, op UndoableOperation, limit int) []UndoableOperation {
	s = append(s, op)
	if len(s) > limit {
		s = append(s[:0], s[len(s)-limit:]...)
	}
	return s
}

func pop(s []UndoableOperation) ([]UndoableOperation, UndoableOperation, bool) {
	if len(s) == 0 {
		return s, UndoableOperation{}, false
	}
	return s[:len(s)-1], s[len(s)-1], true
}

// UndoRedoManager keeps an undo and a redo history per text node.
type UndoRedoManager struct {
	maxUndo, maxRedo int
	stacks           map[dom.DomNodeId]*nodeStack
	logger           *zap.Logger
}

// NewUndoRedoManager creates a manager keeping at most maxUndo and maxRedo
// operations per node. Non-positive limits use the defaults.
func NewUndoRedoManager(maxUndo, maxRedo int, logger *zap.Logger) *UndoRedoManager {
	if maxUndo <= 0 {
		maxUndo = MaxUndoHistory
	}
	if maxRedo <= 0 {
		maxRedo = MaxRedoHistory
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UndoRedoManager{
		maxUndo: maxUndo,
		maxRedo: maxRedo,
		stacks:  make(map[dom.DomNodeId]*nodeStack),
		logger:  logger.Named("undo"),
	}
}

func (m *UndoRedoManager) stack(n dom.DomNodeId) *nodeStack {
	s, ok := m.stacks[n]
	if !ok {
		s = &nodeStack{}
		m.stacks[n] = s
	}
	return s
}

// RecordOperation pushes a changeset and the state it was applied to.
// Cut and Paste are recorded as the delete or insert they performed.
func (m *UndoRedoManager) RecordOperation(c TextChangeset, pre NodeStateSnapshot) {
	m.PushUndo(UndoableOperation{Changeset: TextMutation(c), PreState: pre})
}

// PushUndo records a new operation. A new operation invalidates the redo
// history of its node.
func (m *UndoRedoManager) PushUndo(op UndoableOperation) {
	s := m.stack(op.Changeset.Target)
	s.redo = s.redo[:0]
	s.undo = pushBounded(s.undo, op, m.maxUndo)
}

// PushRedo records an undone operation.
func (m *UndoRedoManager) PushRedo(op UndoableOperation) {
	s := m.stack(op.Changeset.Target)
	s.redo = pushBounded(s.redo, op, m.maxRedo)
}

// PopUndo removes the newest undo entry of n.
func (m *UndoRedoManager) PopUndo(n dom.DomNodeId) (UndoableOperation, bool) {
	s, ok := m.stacks[n]
	if !ok {
		return UndoableOperation{}, false
	}
	var op UndoableOperation
	s.undo, op, ok = pop(s.undo)
	return op, ok
}

// PopRedo removes the newest redo entry of n.
func (m *UndoRedoManager) PopRedo(n dom.DomNodeId) (UndoableOperation, bool) {
	s, ok := m.stacks[n]
	if !ok {
		return UndoableOperation{}, false
	}
	var op UndoableOperation
	s.redo, op, ok = pop(s.redo)
	return op, ok
}

// PeekUndo returns the newest undo entry of n.
func (m *UndoRedoManager) PeekUndo(n dom.DomNodeId) (UndoableOperation, bool) {
	if s, ok := m.stacks[n]; ok && len(s.undo) > 0 {
		return s.undo[len(s.undo)-1], true
	}
	return UndoableOperation{}, false
}

// PeekRedo returns the newest redo entry of n.
func (m *UndoRedoManager) PeekRedo(n dom.DomNodeId) (UndoableOperation, bool) {
	if s, ok := m.stacks[n]; ok && len(s.redo) > 0 {
		return s.redo[len(s.redo)-1], true
	}
	return UndoableOperation{}, false
}

func (m *UndoRedoManager) CanUndo(n dom.DomNodeId) bool {
	_, ok := m.PeekUndo(n)
	return ok
}

func (m *UndoRedoManager) CanRedo(n dom.DomNodeId) bool {
	_, ok := m.PeekRedo(n)
	return ok
}

// Depth returns the undo and redo history lengths of n.
func (m *UndoRedoManager) Depth(n dom.DomNodeId) (undo, redo int) {
	if s, ok := m.stacks[n]; ok {
		return len(s.undo), len(s.redo)
	}
	return 0, 0
}

// ClearNode drops the history of n.
func (m *UndoRedoManager) ClearNode(n dom.DomNodeId) { delete(m.stacks, n) }

// ClearAll drops every history.
func (m *UndoRedoManager) ClearAll() { clear(m.stacks) }

// Undo reverts the newest operation of n and returns the state to restore.
// The operation moves to the redo history.
func (m *UndoRedoManager) Undo(n dom.DomNodeId) (NodeStateSnapshot, bool) {
	op, ok := m.PopUndo(n)
	if !ok {
		return NodeStateSnapshot{}, false
	}
	m.PushRedo(op)
	m.logger.Debug("Undo.",
		zap.Stringer("node", n),
		zap.String("op", op.Changeset.Operation.Name()),
		zap.Uint64("changeset", op.Changeset.ID))
	return op.PreState, true
}

// Redo re-applies the newest undone operation of n and returns the state
// to restore. The redo history beyond it is kept.
func (m *UndoRedoManager) Redo(n dom.DomNodeId) (NodeStateSnapshot, bool) {
	op, ok := m.PopRedo(n)
	if !ok {
		return NodeStateSnapshot{}, false
	}
	post, err := ApplyChangeset(op.PreState, op.Changeset)
	if err != nil {
		m.logger.Warn("Dropping redo entry that no longer applies.",
			zap.Stringer("node", n),
			zap.Uint64("changeset", op.Changeset.ID),
			zap.Error(err))
		return NodeStateSnapshot{}, false
	}
	s := m.stack(n)
	s.undo = pushBounded(s.undo, op, m.maxUndo)
	post.Timestamp = time.Now()
	return post, true
}
