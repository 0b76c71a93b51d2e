// internal/style/styled_dom.go
package style

import (
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/css/parser"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

const (
	// BaseFontSize is the root font size when none is configured.
	BaseFontSize = 16.0
)

// CascadeInfo holds the structural facts used by :first, :last and
// :nth-child. Text nodes are not counted.
type CascadeInfo struct {
	// IndexInParent is the 0-based position among element siblings.
	IndexInParent uint32
	// IsLastChild is set on the last element sibling.
	IsLastChild bool
}

// StyledNodeState is the interactive state of one node.
type StyledNodeState struct {
	Hover   bool
	Active  bool
	Focused bool
	Checked bool
}

// Mask returns the state as pseudo-class bits.
func (s StyledNodeState) Mask() css.PseudoState {
	var m css.PseudoState
	if s.Hover {
		m |= css.PseudoHover
	}
	if s.Active {
		m |= css.PseudoActive
	}
	if s.Focused {
		m |= css.PseudoFocus
	}
	if s.Checked {
		m |= css.PseudoChecked
	}
	return m
}

// toggle flips the bit named by state.
func (s *StyledNodeState) toggle(state css.PseudoState) {
	switch state {
	case css.PseudoHover:
		s.Hover = !s.Hover
	case css.PseudoActive:
		s.Active = !s.Active
	case css.PseudoFocus:
		s.Focused = !s.Focused
	case css.PseudoChecked:
		s.Checked = !s.Checked
	}
}

// ParentWithDepth is one entry of the parents-by-depth list.
type ParentWithDepth struct {
	Depth int
	Node  dom.NodeId
}

// StyledDom is a DOM plus everything the cascade derives from it.
type StyledDom struct {
	Dom            *dom.CompactDom
	CascadeInfo    []CascadeInfo
	States         []StyledNodeState
	ParentsByDepth []ParentWithDepth
	Cache          *PropertyCache
	Compact        *CompactCache

	// NodeToTag and TagToNode index the hit-testable nodes.
	NodeToTag []dom.TagId
	TagToNode map[dom.TagId]dom.NodeId

	author *parser.Stylesheet
	family *css.FontFamily
	ctx    css.ResolutionContext
	logger *zap.Logger
}

// Option configures a StyledDom.
type Option func(*StyledDom)

// WithViewport sets the size used for vw/vh/vmin/vmax font sizes.
func WithViewport(width, height float32) Option {
	return func(s *StyledDom) {
		s.ctx.ViewportWidth = width
		s.ctx.ViewportHeight = height
	}
}

// WithDefaultFontSize overrides the root font size.
func WithDefaultFontSize(px float32) Option {
	return func(s *StyledDom) {
		if px > 0 {
			s.ctx.RemSize = px
			s.ctx.EmSize = px
		}
	}
}

// WithDefaultFontFamily sets the root font-family from a comma separated
// list. An empty or invalid list keeps the initial value.
func WithDefaultFontFamily(families string) Option {
	return func(s *StyledDom) {
		if ff, err := css.ParseFontFamily(families); err == nil {
			s.family = &ff
		}
	}
}

// WithLogger sets the logger; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *StyledDom) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New runs the cascade over d with the UA sheet and the author sheet
// (which may be nil) and builds every derived cache.
func New(d *dom.CompactDom, author *parser.Stylesheet, opts ...Option) *StyledDom {
	s := &StyledDom{
		Dom:    d,
		author: author,
		ctx:    css.ResolutionContext{EmSize: BaseFontSize, RemSize: BaseFontSize},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("cascade")

	n := d.Len()
	s.States = make([]StyledNodeState, n)
	s.CascadeInfo = buildCascadeInfo(d)
	s.ParentsByDepth = buildParentsByDepth(d)

	s.Cache = newPropertyCache(n)
	for id := 0; id < n; id++ {
		s.Cache.cascaded[id] = s.collectDeclarations(dom.NodeId(id))
	}
	s.computeAll()

	s.Compact = newCompactCache(n)
	for id := 0; id < n; id++ {
		s.Compact.build(dom.NodeId(id), s.Cache.computed[id])
	}
	s.assignTags()

	s.logger.Debug("Styled DOM built",
		zap.Int("nodes", n),
		zap.Int("author_rules", s.authorRuleCount()),
		zap.Int("tagged", len(s.TagToNode)))
	return s
}

func (s *StyledDom) authorRuleCount() int {
	if s.author == nil {
		return 0
	}
	return len(s.author.Rules)
}

// Len returns the number of nodes.
func (s *StyledDom) Len() int { return s.Dom.Len() }

// Node returns the source record of id.
func (s *StyledDom) Node(id dom.NodeId) *dom.NodeData { return s.Dom.Node(id) }

// ResolutionContext returns the context used to resolve relative font sizes.
func (s *StyledDom) ResolutionContext() css.ResolutionContext { return s.ctx }

func buildCascadeInfo(d *dom.CompactDom) []CascadeInfo {
	info := make([]CascadeInfo, d.Len())
	for parent := 0; parent < d.Len(); parent++ {
		var index uint32
		last := dom.NoNode
		for _, child := range d.Children(dom.NodeId(parent)) {
			if d.Node(child).IsText() {
				continue
			}
			info[child].IndexInParent = index
			index++
			last = child
		}
		if last.IsValid() {
			info[last].IsLastChild = true
		}
	}
	// The root has no siblings.
	if d.Len() > 0 {
		info[0] = CascadeInfo{IsLastChild: true}
	}
	return info
}

// buildParentsByDepth lists every node with children, shallowest first and
// in document order within one depth.
func buildParentsByDepth(d *dom.CompactDom) []ParentWithDepth {
	var out []ParentWithDepth
	depth := make([]int, d.Len())
	for id := 0; id < d.Len(); id++ {
		if p := d.Parent(dom.NodeId(id)); p.IsValid() {
			depth[id] = depth[p] + 1
		}
		if d.Hierarchy[id].FirstChild.IsValid() {
			out = append(out, ParentWithDepth{Depth: depth[id], Node: dom.NodeId(id)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}

// assignTags gives a TagId to every node that must be hit-testable: nodes
// with callbacks, focusable nodes, iframes and scroll containers.
func (s *StyledDom) assignTags() {
	s.NodeToTag = make([]dom.TagId, s.Len())
	s.TagToNode = make(map[dom.TagId]dom.NodeId)
	next := dom.TagId(1)
	for id := 0; id < s.Len(); id++ {
		nid := dom.NodeId(id)
		if !s.Node(nid).NeedsTag() && !s.IsScrollContainer(nid) {
			continue
		}
		s.NodeToTag[id] = next
		s.TagToNode[next] = nid
		next++
	}
}

// TagOf returns the hit-test tag of id, if it has one.
func (s *StyledDom) TagOf(id dom.NodeId) (dom.TagId, bool) {
	t := s.NodeToTag[id]
	return t, t != 0
}

// IsScrollContainer reports whether either overflow axis scrolls.
func (s *StyledDom) IsScrollContainer(id dom.NodeId) bool {
	return s.OverflowX(id).IsScrollable() || s.OverflowY(id).IsScrollable()
}

// FocusableNodes returns every focusable node in document order.
func (s *StyledDom) FocusableNodes() []dom.NodeId {
	var out []dom.NodeId
	for id := 0; id < s.Len(); id++ {
		if s.Node(dom.NodeId(id)).IsFocusable() && s.Display(dom.NodeId(id)) != css.DisplayNone {
			out = append(out, dom.NodeId(id))
		}
	}
	return out
}
