// internal/style/restyle.go
package style

import (
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

// FocusChange moves keyboard focus. Either side may be dom.NoNode.
type FocusChange struct {
	Lost   dom.NodeId
	Gained dom.NodeId
}

// HoverChange lists the nodes the cursor entered and left.
type HoverChange struct {
	Entered []dom.NodeId
	Left    []dom.NodeId
}

// ActiveChange lists the nodes that became and stopped being active.
type ActiveChange struct {
	Activated   []dom.NodeId
	Deactivated []dom.NodeId
}

// RestyleInput is the set of state transitions for one restyle pass.
type RestyleInput struct {
	Focus  *FocusChange
	Hover  *HoverChange
	Active *ActiveChange
}

// IsEmpty reports whether the input carries no transitions.
func (in RestyleInput) IsEmpty() bool {
	return (in.Focus == nil || in.Focus.Lost == in.Focus.Gained) &&
		(in.Hover == nil || len(in.Hover.Entered)+len(in.Hover.Left) == 0) &&
		(in.Active == nil || len(in.Active.Activated)+len(in.Active.Deactivated) == 0)
}

// ChangedProperty is one computed value that differs after a restyle.
type ChangedProperty struct {
	Kind     css.PropertyKind
	Previous css.CssProperty
	Current  css.CssProperty
}

// Class is the pipeline stage the change invalidates.
func (c ChangedProperty) Class() css.ChangeClass { return c.Kind.ChangeClass() }

// RestyleResult summarises what a restyle invalidated.
type RestyleResult struct {
	ChangedNodes     map[dom.NodeId][]ChangedProperty
	NeedsLayout      bool
	NeedsDisplayList bool
	GpuOnlyChanges   bool
	// RelayoutRoots are the containing blocks to lay out again.
	RelayoutRoots []dom.NodeId
}

// Restyle applies the state transitions, recomputes the affected nodes and
// classifies every property that changed. Inherited changes are pushed
// down to descendants that take the inherited value.
func (s *StyledDom) Restyle(in RestyleInput) RestyleResult {
	var result RestyleResult
	if in.IsEmpty() {
		return result
	}

	touched := map[dom.NodeId]struct{}{}
	set := func(node dom.NodeId, bit css.PseudoState, on bool) {
		if !node.IsValid() || int(node) >= s.Len() {
			return
		}
		if s.States[node].Mask().Has(bit) != on {
			s.States[node].toggle(bit)
			touched[node] = struct{}{}
		}
	}
	if in.Focus != nil && in.Focus.Lost != in.Focus.Gained {
		set(in.Focus.Lost, css.PseudoFocus, false)
		set(in.Focus.Gained, css.PseudoFocus, true)
	}
	if in.Hover != nil {
		for _, n := range in.Hover.Left {
			set(n, css.PseudoHover, false)
		}
		for _, n := range in.Hover.Entered {
			set(n, css.PseudoHover, true)
		}
	}
	if in.Active != nil {
		for _, n := range in.Active.Deactivated {
			set(n, css.PseudoActive, false)
		}
		for _, n := range in.Active.Activated {
			set(n, css.PseudoActive, true)
		}
	}

	nodes := make([]dom.NodeId, 0, len(touched))
	for n := range touched {
		nodes = append(nodes, n)
	}
	// Document order keeps parents ahead of their descendants.
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	result.ChangedNodes = map[dom.NodeId][]ChangedProperty{}
	roots := map[dom.NodeId]struct{}{}
	for _, n := range nodes {
		if !s.Cache.HasConditional(n) {
			continue
		}
		s.recompute(n, &result, roots)
	}

	for r := range roots {
		result.RelayoutRoots = append(result.RelayoutRoots, r)
	}
	sort.Slice(result.RelayoutRoots, func(i, j int) bool { return result.RelayoutRoots[i] < result.RelayoutRoots[j] })

	s.logger.Debug("Restyle finished",
		zap.Int("state_changes", len(touched)),
		zap.Int("changed_nodes", len(result.ChangedNodes)),
		zap.Bool("needs_layout", result.NeedsLayout),
		zap.Bool("needs_display_list", result.NeedsDisplayList),
		zap.Bool("gpu_only", result.GpuOnlyChanges))
	return result
}

// recompute refreshes node and, when an inherited property changed, its
// subtree.
func (s *StyledDom) recompute(node dom.NodeId, result *RestyleResult, roots map[dom.NodeId]struct{}) {
	inheritedChanged := s.recomputeOne(node, result, roots)
	if !inheritedChanged {
		return
	}
	end := s.Dom.SubtreeEnd(node)
	for d := node + 1; d < end; d++ {
		s.recomputeOne(d, result, roots)
	}
}

func (s *StyledDom) recomputeOne(node dom.NodeId, result *RestyleResult, roots map[dom.NodeId]struct{}) bool {
	previous := s.Cache.computed[node]
	current, fontSize := s.computeNode(node)

	var changes []ChangedProperty
	inheritedChanged := false
	for _, kind := range propertyKinds {
		if previous[kind].Equal(current[kind]) {
			continue
		}
		changes = append(changes, ChangedProperty{Kind: kind, Previous: previous[kind], Current: current[kind]})
		if kind.IsInherited() {
			inheritedChanged = true
		}
		switch kind.ChangeClass() {
		case css.ChangeLayout:
			result.NeedsLayout = true
			result.NeedsDisplayList = true
			roots[s.containingBlock(node)] = struct{}{}
		case css.ChangeDisplayList:
			result.NeedsDisplayList = true
		case css.ChangeGpuOnly:
			result.GpuOnlyChanges = true
		}
	}
	if len(changes) == 0 {
		return false
	}

	s.Cache.computed[node] = current
	s.Cache.fontSize[node] = fontSize
	s.Compact.build(node, current)
	result.ChangedNodes[node] = append(result.ChangedNodes[node], changes...)
	return inheritedChanged
}

// containingBlock is the nearest non-inline ancestor, or node itself for
// the root.
func (s *StyledDom) containingBlock(node dom.NodeId) dom.NodeId {
	for p := s.Dom.Parent(node); p.IsValid(); p = s.Dom.Parent(p) {
		if !s.Display(p).IsInlineLevel() {
			return p
		}
	}
	return node
}
