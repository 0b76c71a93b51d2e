// internal/managers/iframe.go
package managers

import (
	"sort"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// DefaultEdgeThreshold is the distance from a scroll edge, in pixels, at
// which an iframe is asked for more content.
const DefaultEdgeThreshold = 200

// PipelineId names the render pipeline of an iframe's nested DOM.
type PipelineId struct {
	Dom  dom.DomId
	Node dom.NodeId
}

type edgeFlags struct {
	top, bottom, left, right bool
}

func (e edgeFlags) any() bool { return e.top || e.bottom || e.left || e.right }

func (e edgeFlags) has(edge dom.EdgeType) bool {
	switch edge {
	case dom.EdgeTop:
		return e.top
	case dom.EdgeBottom:
		return e.bottom
	case dom.EdgeLeft:
		return e.left
	default:
		return e.right
	}
}

type iframeState struct {
	nested     dom.DomId
	scrollSize *geom.LogicalSize
	virtual    *geom.LogicalSize
	lastBounds geom.LogicalRect

	invoked             bool
	invokedForExpansion bool
	invokedForEdge      bool
	lastEdge            dom.EdgeType
}

// IFrameManager decides when the callback of an iframe host must run again
// and which nested DOM id its output occupies.
type IFrameManager struct {
	threshold float32
	states    map[dom.DomNodeId]*iframeState
	pipelines map[dom.DomNodeId]PipelineId
	nextDom   dom.DomId
}

// NewIFrameManager creates a manager that triggers edge re-invocation within
// edgeThreshold pixels of a scroll edge.
func NewIFrameManager(edgeThreshold float32) *IFrameManager {
	return &IFrameManager{
		threshold: edgeThreshold,
		states:    make(map[dom.DomNodeId]*iframeState),
		pipelines: make(map[dom.DomNodeId]PipelineId),
		nextDom:   dom.RootDomId + 1,
	}
}

func (m *IFrameManager) state(host dom.DomNodeId) *iframeState {
	s, ok := m.states[host]
	if !ok {
		s = &iframeState{nested: m.nextDom}
		m.nextDom++
		m.states[host] = s
	}
	return s
}

// NestedDomId returns the DOM id rendered inside host, allocating one on
// first use. Ids are never reused.
func (m *IFrameManager) NestedDomId(host dom.DomNodeId) dom.DomId {
	return m.state(host).nested
}

// LookupNestedDomId returns the nested DOM id of host if one was allocated.
func (m *IFrameManager) LookupNestedDomId(host dom.DomNodeId) (dom.DomId, bool) {
	s, ok := m.states[host]
	if !ok {
		return 0, false
	}
	return s.nested, true
}

// PipelineId returns the pipeline of host, allocating it on first use.
func (m *IFrameManager) PipelineId(host dom.DomNodeId) PipelineId {
	p, ok := m.pipelines[host]
	if !ok {
		p = PipelineId{Dom: host.Dom, Node: host.Node}
		m.pipelines[host] = p
	}
	return p
}

// WasInvoked reports whether the callback of host ran since the last reset.
func (m *IFrameManager) WasInvoked(host dom.DomNodeId) bool {
	s, ok := m.states[host]
	return ok && s.invoked
}

// ScrollSize returns the content and virtual sizes host last reported.
func (m *IFrameManager) ScrollSize(host dom.DomNodeId) (size, virtual geom.LogicalSize, ok bool) {
	s, found := m.states[host]
	if !found || s.scrollSize == nil {
		return geom.LogicalSize{}, geom.LogicalSize{}, false
	}
	return *s.scrollSize, *s.virtual, true
}

// UpdateIFrameInfo stores the sizes returned by the callback of host.
// Content that grew re-arms the bounds-expanded trigger. It returns false
// when host is unknown.
func (m *IFrameManager) UpdateIFrameInfo(host dom.DomNodeId, scrollSize, virtualSize geom.LogicalSize) bool {
	s, ok := m.states[host]
	if !ok {
		return false
	}
	if old := s.scrollSize; old != nil && (scrollSize.Width > old.Width || scrollSize.Height > old.Height) {
		s.invokedForExpansion = false
	}
	s.scrollSize, s.virtual = &scrollSize, &virtualSize
	return true
}

// MarkInvoked records that the callback of host ran for reason.
func (m *IFrameManager) MarkInvoked(host dom.DomNodeId, reason dom.IFrameCallbackReason) bool {
	s, ok := m.states[host]
	if !ok {
		return false
	}
	s.invoked = true
	switch reason.Kind {
	case dom.ReasonBoundsExpanded:
		s.invokedForExpansion = true
	case dom.ReasonEdgeScrolled:
		s.invokedForEdge = true
		s.lastEdge = reason.Edge
	}
	return true
}

// ForceReinvoke makes the next CheckReinvoke of host report an initial
// render.
func (m *IFrameManager) ForceReinvoke(host dom.DomNodeId) bool {
	s, ok := m.states[host]
	if !ok {
		return false
	}
	s.invoked, s.invokedForExpansion, s.invokedForEdge = false, false, false
	return true
}

// ResetAllInvocationFlags re-arms every trigger, for example after the
// parent DOM was rebuilt.
func (m *IFrameManager) ResetAllInvocationFlags() {
	for _, s := range m.states {
		*s = iframeState{nested: s.nested, scrollSize: s.scrollSize, virtual: s.virtual, lastBounds: s.lastBounds}
	}
}

// CheckReinvoke decides whether the callback of host must run for the new
// layout bounds and the current scroll offset of host. Each trigger fires
// once until its condition resets.
func (m *IFrameManager) CheckReinvoke(host dom.DomNodeId, scroll *ScrollManager, bounds geom.LogicalRect) (dom.IFrameCallbackReason, bool) {
	s := m.state(host)
	if !s.invoked {
		return dom.IFrameCallbackReason{Kind: dom.ReasonInitialRender}, true
	}
	if bounds.Size.Width > s.lastBounds.Size.Width || bounds.Size.Height > s.lastBounds.Size.Height {
		s.invokedForExpansion = false
	}
	s.lastBounds = bounds
	var offset geom.LogicalPosition
	if scroll != nil {
		offset = scroll.Offset(host)
	}
	return m.check(s, offset, bounds.Size)
}

func (m *IFrameManager) check(s *iframeState, offset geom.LogicalPosition, container geom.LogicalSize) (dom.IFrameCallbackReason, bool) {
	if s.scrollSize == nil {
		return dom.IFrameCallbackReason{}, false
	}
	content := *s.scrollSize
	if !s.invokedForExpansion && (container.Width > content.Width || container.Height > content.Height) {
		return dom.IFrameCallbackReason{Kind: dom.ReasonBoundsExpanded}, true
	}

	scrollX, scrollY := content.Width > container.Width, content.Height > container.Height
	near := edgeFlags{
		top:    scrollY && offset.Y <= m.threshold,
		bottom: scrollY && content.Height-container.Height-offset.Y <= m.threshold,
		left:   scrollX && offset.X <= m.threshold,
		right:  scrollX && content.Width-container.Width-offset.X <= m.threshold,
	}
	// Leaving the edge that fired re-arms it.
	if s.invokedForEdge && !near.has(s.lastEdge) {
		s.invokedForEdge = false
	}
	if s.invokedForEdge || !near.any() {
		return dom.IFrameCallbackReason{}, false
	}
	if near.bottom {
		return dom.IFrameCallbackReason{Kind: dom.ReasonEdgeScrolled, Edge: dom.EdgeBottom}, true
	}
	if near.right {
		return dom.IFrameCallbackReason{Kind: dom.ReasonEdgeScrolled, Edge: dom.EdgeRight}, true
	}
	return dom.IFrameCallbackReason{}, false
}

// IFrameInfo is a debug snapshot of one iframe host.
type IFrameInfo struct {
	Host       dom.DomNodeId     `json:"host"`
	Nested     dom.DomId         `json:"nested"`
	ScrollSize *geom.LogicalSize `json:"scroll_size,omitempty"`
	Virtual    *geom.LogicalSize `json:"virtual_scroll_size,omitempty"`
	Invoked    bool              `json:"invoked"`
	LastBounds geom.LogicalRect  `json:"last_bounds"`
}

// IFrameInfos lists every known iframe host in document order.
func (m *IFrameManager) IFrameInfos() []IFrameInfo {
	out := make([]IFrameInfo, 0, len(m.states))
	for host, s := range m.states {
		out = append(out, IFrameInfo{
			Host:       host,
			Nested:     s.nested,
			ScrollSize: s.scrollSize,
			Virtual:    s.virtual,
			Invoked:    s.invoked,
			LastBounds: s.lastBounds,
		})
	}
	sort.Slice(out, func(i, j int) bool { return before(out[i].Host, out[j].Host) })
	return out
}
