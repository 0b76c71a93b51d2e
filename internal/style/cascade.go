// internal/style/cascade.go
package style

import (
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/css/parser"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

// StyleOrigin is the source layer of a declaration.
type StyleOrigin int

const (
	OriginUserAgent StyleOrigin = iota
	OriginAuthor
	OriginInline
)

func (o StyleOrigin) String() string {
	switch o {
	case OriginAuthor:
		return "author"
	case OriginInline:
		return "inline"
	}
	return "user-agent"
}

// DeclarationWithContext is one cascaded value of a node together with
// everything needed to order it against the others.
type DeclarationWithContext struct {
	Property    css.CssProperty
	Important   bool
	Origin      StyleOrigin
	Specificity parser.Specificity
	Order       int
	// State is the interactive state the declaration requires; zero for
	// unconditional declarations.
	State css.PseudoState
}

// Applies reports whether the declaration is active for a node in state.
func (d DeclarationWithContext) Applies(state css.PseudoState) bool {
	return state.Has(d.State)
}

func calculateCascadePriority(d DeclarationWithContext) int {
	switch d.Origin {
	case OriginUserAgent:
		if d.Important {
			return 5
		}
		return 1
	case OriginAuthor:
		if d.Important {
			return 4
		}
		return 2
	case OriginInline:
		if d.Important {
			return 4
		}
		return 3
	}
	return 0
}

// outranks reports whether a wins over b. Conditional declarations form the
// top layer; inside a layer the origin/importance priority decides, then
// specificity, then source order.
func outranks(a, b DeclarationWithContext) bool {
	ac, bc := a.State != css.PseudoNormal, b.State != css.PseudoNormal
	if ac != bc {
		return ac
	}
	if p1, p2 := calculateCascadePriority(a), calculateCascadePriority(b); p1 != p2 {
		return p1 > p2
	}
	if c := a.Specificity.Compare(b.Specificity); c != 0 {
		return c > 0
	}
	return a.Order > b.Order
}

// PropertyCache answers "what is property P of node N in state S". Each
// node keeps its declarations sorted by property kind and, within one kind,
// from the winning declaration down. Computed values for the node's current
// state sit on top.
type PropertyCache struct {
	cascaded [][]DeclarationWithContext
	computed [][]css.CssProperty
	// fontSize is the resolved font size in px per node.
	fontSize []float32
}

func newPropertyCache(n int) *PropertyCache {
	return &PropertyCache{
		cascaded: make([][]DeclarationWithContext, n),
		computed: make([][]css.CssProperty, n),
		fontSize: make([]float32, n),
	}
}

// Declarations returns the sorted declarations of node.
func (c *PropertyCache) Declarations(node dom.NodeId) []DeclarationWithContext {
	return c.cascaded[node]
}

// Cascaded returns the winning declared value of kind on node for state.
func (c *PropertyCache) Cascaded(node dom.NodeId, kind css.PropertyKind, state css.PseudoState) (DeclarationWithContext, bool) {
	decls := c.cascaded[node]
	i := sort.Search(len(decls), func(i int) bool { return decls[i].Property.Kind >= kind })
	for ; i < len(decls) && decls[i].Property.Kind == kind; i++ {
		if decls[i].Applies(state) {
			return decls[i], true
		}
	}
	return DeclarationWithContext{}, false
}

// Computed returns the computed value of kind on node for its current state.
func (c *PropertyCache) Computed(node dom.NodeId, kind css.PropertyKind) css.CssProperty {
	return c.computed[node][kind]
}

// ComputedStyle returns every computed value of node, indexed by kind.
func (c *PropertyCache) ComputedStyle(node dom.NodeId) []css.CssProperty {
	return c.computed[node]
}

// FontSize returns the resolved font size of node in px.
func (c *PropertyCache) FontSize(node dom.NodeId) float32 { return c.fontSize[node] }

// HasConditional reports whether any declaration of node depends on state.
func (c *PropertyCache) HasConditional(node dom.NodeId) bool {
	for _, d := range c.cascaded[node] {
		if d.State != css.PseudoNormal {
			return true
		}
	}
	return false
}

// collectDeclarations gathers the UA, author and inline declarations of a
// node. Every selector is tried once per interactive ending it carries, so
// :hover rules land in the conditional layer instead of being matched.
func (s *StyledDom) collectDeclarations(node dom.NodeId) []DeclarationWithContext {
	data := s.Node(node)
	if data.IsText() {
		return nil
	}
	var declarations []DeclarationWithContext

	processSheet := func(sheet *parser.Stylesheet, origin StyleOrigin) {
		if sheet == nil {
			return
		}
		for _, rule := range sheet.Rules {
			ending := rule.Selector.PseudoEnding()
			if !s.MatchesHTMLElement(rule.Selector, node, ending) {
				continue
			}
			spec := rule.Selector.Specificity()
			for _, decl := range rule.Declarations {
				declarations = append(declarations, DeclarationWithContext{
					Property:    decl.Property,
					Important:   decl.Important,
					Origin:      origin,
					Specificity: spec,
					Order:       rule.Order,
					State:       ending,
				})
			}
		}
	}

	processSheet(UserAgentStylesheet(), OriginUserAgent)
	processSheet(s.author, OriginAuthor)

	for i, inline := range data.InlineCSS {
		declarations = append(declarations, DeclarationWithContext{
			Property:    inline.Property,
			Origin:      OriginInline,
			Specificity: parser.InlineSpecificity,
			Order:       i,
			State:       inline.State,
		})
	}

	sort.SliceStable(declarations, func(i, j int) bool {
		d1, d2 := declarations[i], declarations[j]
		if d1.Property.Kind != d2.Property.Kind {
			return d1.Property.Kind < d2.Property.Kind
		}
		return outranks(d1, d2)
	})

	if ce := s.logger.Check(zap.DebugLevel, "Cascaded node"); ce != nil {
		ce.Write(zap.Stringer("node", node), zap.String("tag", data.TagName()), zap.Int("declarations", len(declarations)))
	}
	return declarations
}
