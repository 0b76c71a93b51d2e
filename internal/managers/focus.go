// internal/managers/focus.go
package managers

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/css/parser"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/style"
)

// FocusTargetKind selects how a FocusTarget is resolved.
type FocusTargetKind uint8

const (
	FocusTargetId FocusTargetKind = iota
	FocusTargetPath
	FocusTargetPrevious
	FocusTargetNext
	FocusTargetFirst
	FocusTargetLast
	FocusTargetNone
)

func (k FocusTargetKind) String() string {
	switch k {
	case FocusTargetId:
		return "id"
	case FocusTargetPath:
		return "path"
	case FocusTargetPrevious:
		return "previous"
	case FocusTargetNext:
		return "next"
	case FocusTargetFirst:
		return "first"
	case FocusTargetLast:
		return "last"
	default:
		return "no-focus"
	}
}

// FocusTarget is a request to move keyboard focus.
type FocusTarget struct {
	Kind FocusTargetKind
	// Node is the target of FocusTargetId.
	Node dom.DomNodeId
	// Dom and CSSPath locate the target of FocusTargetPath.
	Dom     dom.DomId
	CSSPath string
}

// FocusOn targets a specific node.
func FocusOn(n dom.DomNodeId) FocusTarget { return FocusTarget{Kind: FocusTargetId, Node: n} }

// FocusOnPath targets the first focusable node of d matching a selector list.
func FocusOnPath(d dom.DomId, path string) FocusTarget {
	return FocusTarget{Kind: FocusTargetPath, Dom: d, CSSPath: path}
}

var (
	FocusNext     = FocusTarget{Kind: FocusTargetNext}
	FocusPrevious = FocusTarget{Kind: FocusTargetPrevious}
	FocusFirst    = FocusTarget{Kind: FocusTargetFirst}
	FocusLast     = FocusTarget{Kind: FocusTargetLast}
	NoFocus       = FocusTarget{Kind: FocusTargetNone}
)

// FocusWarningKind classifies a focus target that could not be resolved.
type FocusWarningKind uint8

const (
	FocusInvalidDomId FocusWarningKind = iota
	FocusInvalidNodeId
	CouldNotFindFocusNode
)

// FocusWarning reports a focus target that could not be resolved. Focus is
// left unchanged when one is returned.
type FocusWarning struct {
	Kind FocusWarningKind
	Dom  dom.DomId
	Node dom.NodeId
	Path string
}

func (w *FocusWarning) Error() string {
	switch w.Kind {
	case FocusInvalidDomId:
		return fmt.Sprintf("focus: invalid dom id %d", w.Dom)
	case FocusInvalidNodeId:
		return fmt.Sprintf("focus: invalid node id %s in dom %d", w.Node, w.Dom)
	default:
		return fmt.Sprintf("focus: no focusable node matches %q in dom %d", w.Path, w.Dom)
	}
}

// Forest is the set of styled DOMs of one window, keyed by DOM id. The root
// DOM has id 0; iframes contribute the rest.
type Forest map[dom.DomId]*style.StyledDom

// sortedIds returns the DOM ids in document order.
func (f Forest) sortedIds() []dom.DomId {
	ids := make([]dom.DomId, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f Forest) validate(n dom.DomNodeId) error {
	d, ok := f[n.Dom]
	if !ok {
		return &FocusWarning{Kind: FocusInvalidDomId, Dom: n.Dom}
	}
	if !n.Node.IsValid() || int(n.Node) >= d.Len() {
		return &FocusWarning{Kind: FocusInvalidNodeId, Dom: n.Dom, Node: n.Node}
	}
	return nil
}

// candidates lists every focusable node of the forest in document order.
func (f Forest) candidates() []dom.DomNodeId {
	var out []dom.DomNodeId
	for _, id := range f.sortedIds() {
		for _, n := range f[id].FocusableNodes() {
			out = append(out, dom.DomNodeId{Dom: id, Node: n})
		}
	}
	return out
}

// ResolveFocusTarget turns target into the node that should receive focus.
// current is the focused node, if any. ok is false when the result is to
// have no focus at all: NoFocus, or nothing in the forest is focusable.
// Next and Previous wrap around the ends of the document.
func ResolveFocusTarget(target FocusTarget, forest Forest, current *dom.DomNodeId) (dom.DomNodeId, bool, error) {
	switch target.Kind {
	case FocusTargetNone:
		return dom.DomNodeId{}, false, nil

	case FocusTargetId:
		if err := forest.validate(target.Node); err != nil {
			return dom.DomNodeId{}, false, err
		}
		return target.Node, true, nil

	case FocusTargetPath:
		return resolvePath(forest, target.Dom, target.CSSPath)

	case FocusTargetFirst, FocusTargetLast:
		all := forest.candidates()
		if len(all) == 0 {
			return dom.DomNodeId{}, false, nil
		}
		if target.Kind == FocusTargetFirst {
			return all[0], true, nil
		}
		return all[len(all)-1], true, nil

	case FocusTargetNext, FocusTargetPrevious:
		forward := target.Kind == FocusTargetNext
		if current == nil {
			if forward {
				return ResolveFocusTarget(FocusFirst, forest, nil)
			}
			return ResolveFocusTarget(FocusLast, forest, nil)
		}
		if err := forest.validate(*current); err != nil {
			return dom.DomNodeId{}, false, err
		}
		all := forest.candidates()
		if len(all) == 0 {
			return dom.DomNodeId{}, false, nil
		}
		// First candidate strictly after (or before) current in document
		// order, wrapping.
		i := sort.Search(len(all), func(i int) bool { return !before(all[i], *current) })
		if forward {
			if i < len(all) && all[i] == *current {
				i++
			}
			return all[i%len(all)], true, nil
		}
		i--
		if i < 0 {
			i = len(all) - 1
		}
		return all[i], true, nil
	}
	return dom.DomNodeId{}, false, fmt.Errorf("focus: unknown target kind %d", target.Kind)
}

// before orders nodes by DOM, then by position within the DOM.
func before(a, b dom.DomNodeId) bool {
	if a.Dom != b.Dom {
		return a.Dom < b.Dom
	}
	return a.Node < b.Node
}

func resolvePath(forest Forest, d dom.DomId, path string) (dom.DomNodeId, bool, error) {
	styled, ok := forest[d]
	if !ok {
		return dom.DomNodeId{}, false, &FocusWarning{Kind: FocusInvalidDomId, Dom: d}
	}
	group, _ := parser.ParseSelectorGroup(path)
	for _, n := range styled.FocusableNodes() {
		for _, sel := range group {
			if styled.MatchesHTMLElement(sel, n, css.PseudoNormal) {
				return dom.DomNodeId{Dom: d, Node: n}, true, nil
			}
		}
	}
	return dom.DomNodeId{}, false, &FocusWarning{Kind: CouldNotFindFocusNode, Dom: d, Path: path}
}

// FocusTransition is the outcome of a focus change, split per DOM for
// restyling.
type FocusTransition struct {
	Lost, Gained       dom.DomNodeId
	HasLost, HasGained bool
}

// Changed reports whether focus actually moved.
func (t FocusTransition) Changed() bool {
	if t.HasLost != t.HasGained {
		return true
	}
	return t.HasLost && t.Lost != t.Gained
}

// RestyleInputs returns the focus restyle input for each affected DOM.
func (t FocusTransition) RestyleInputs() map[dom.DomId]style.RestyleInput {
	if !t.Changed() {
		return nil
	}
	out := make(map[dom.DomId]style.RestyleInput, 2)
	change := func(d dom.DomId) *style.FocusChange {
		in := out[d]
		if in.Focus == nil {
			in.Focus = &style.FocusChange{Lost: dom.NoNode, Gained: dom.NoNode}
			out[d] = in
		}
		return in.Focus
	}
	if t.HasLost {
		change(t.Lost.Dom).Lost = t.Lost.Node
	}
	if t.HasGained {
		change(t.Gained.Dom).Gained = t.Gained.Node
	}
	return out
}

// FocusManager tracks the focused node of one window and any focus change
// requested by a callback during the current event.
type FocusManager struct {
	focused    dom.DomNodeId
	hasFocused bool
	pending    *FocusTarget
	logger     *zap.Logger
}

// NewFocusManager creates a manager with nothing focused.
func NewFocusManager(logger *zap.Logger) *FocusManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FocusManager{logger: logger.Named("focus")}
}

// Focused returns the focused node.
func (m *FocusManager) Focused() (dom.DomNodeId, bool) { return m.focused, m.hasFocused }

// HasFocus reports whether n is the focused node.
func (m *FocusManager) HasFocus(n dom.DomNodeId) bool { return m.hasFocused && m.focused == n }

// SetFocused focuses n without validation.
func (m *FocusManager) SetFocused(n dom.DomNodeId) {
	m.focused, m.hasFocused = n, true
}

// ClearFocus removes focus and returns the node that had it.
func (m *FocusManager) ClearFocus() (dom.DomNodeId, bool) {
	prev, had := m.focused, m.hasFocused
	m.focused, m.hasFocused = dom.DomNodeId{}, false
	return prev, had
}

// RequestFocusChange queues a target; a later request replaces it.
func (m *FocusManager) RequestFocusChange(t FocusTarget) { m.pending = &t }

// TakeFocusRequest returns and clears the queued target.
func (m *FocusManager) TakeFocusRequest() (FocusTarget, bool) {
	if m.pending == nil {
		return FocusTarget{}, false
	}
	t := *m.pending
	m.pending = nil
	return t, true
}

// Apply resolves target against forest and moves focus. A FocusWarning
// leaves focus where it was and is returned after being logged.
func (m *FocusManager) Apply(target FocusTarget, forest Forest) (FocusTransition, error) {
	var current *dom.DomNodeId
	if m.hasFocused {
		c := m.focused
		current = &c
	}
	next, ok, err := ResolveFocusTarget(target, forest, current)
	if err != nil {
		m.logger.Warn("Focus target not resolved.",
			zap.Stringer("target", target.Kind),
			zap.Error(err))
		return FocusTransition{}, err
	}
	t := FocusTransition{Lost: m.focused, HasLost: m.hasFocused, Gained: next, HasGained: ok}
	if ok {
		m.SetFocused(next)
	} else {
		m.ClearFocus()
	}
	if t.Changed() {
		m.logger.Debug("Focus moved.",
			zap.Stringer("target", target.Kind),
			zap.Stringer("node", next))
	}
	return t, nil
}
