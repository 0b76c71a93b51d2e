// internal/style/match.go
package style

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/css/parser"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

// MatchesHTMLElement reports whether sel matches node. The selector's
// interactive ending must equal ending; interactive pseudo-classes are
// otherwise ignored so that structural matching never depends on state.
// The selector is walked right to left one content group at a time.
func (s *StyledDom) MatchesHTMLElement(sel parser.ComplexSelector, node dom.NodeId, ending css.PseudoState) bool {
	if len(sel.Selectors) == 0 || sel.PseudoEnding() != ending {
		return false
	}
	return s.recursiveMatch(node, sel, len(sel.Selectors)-1)
}

func (s *StyledDom) recursiveMatch(node dom.NodeId, sel parser.ComplexSelector, index int) bool {
	if !node.IsValid() || index < 0 {
		return false
	}
	if s.Node(node).IsText() {
		return false
	}
	current := sel.Selectors[index]
	if !s.matchesSimple(node, current.SimpleSelector) {
		return false
	}
	if index == 0 {
		return true
	}
	next := index - 1
	switch current.Combinator {
	case parser.CombinatorDescendant:
		for parent := s.Dom.Parent(node); parent.IsValid(); parent = s.Dom.Parent(parent) {
			if s.recursiveMatch(parent, sel, next) {
				return true
			}
		}
		return false
	case parser.CombinatorChild:
		return s.recursiveMatch(s.Dom.Parent(node), sel, next)
	case parser.CombinatorAdjacentSibling:
		return s.recursiveMatch(s.previousElementSibling(node), sel, next)
	case parser.CombinatorGeneralSibling:
		for sibling := s.previousElementSibling(node); sibling.IsValid(); sibling = s.previousElementSibling(sibling) {
			if s.recursiveMatch(sibling, sel, next) {
				return true
			}
		}
		return false
	case parser.CombinatorNone:
		return true
	}
	return false
}

func (s *StyledDom) previousElementSibling(node dom.NodeId) dom.NodeId {
	sibling := s.Dom.Hierarchy[node].PreviousSibling
	for sibling.IsValid() {
		if !s.Node(sibling).IsText() {
			return sibling
		}
		sibling = s.Dom.Hierarchy[sibling].PreviousSibling
	}
	return dom.NoNode
}

func (s *StyledDom) matchesSimple(node dom.NodeId, selector parser.SimpleSelector) bool {
	data := s.Node(node)
	if selector.TagName != "" && selector.TagName != "*" && !strings.EqualFold(data.TagName(), selector.TagName) {
		return false
	}
	if selector.ID != "" && !data.HasID(selector.ID) {
		return false
	}
	for _, class := range selector.Classes {
		if !data.HasClass(class) {
			return false
		}
	}
	for _, attrSel := range selector.Attributes {
		value, present := data.Attribute(strings.ToLower(attrSel.Name))
		if !attrSel.Matches(value, present) {
			return false
		}
	}
	info := s.CascadeInfo[node]
	for _, pc := range selector.PseudoClasses {
		switch pc.Kind {
		case parser.PseudoFirst:
			if info.IndexInParent != 0 {
				return false
			}
		case parser.PseudoLast:
			if !info.IsLastChild {
				return false
			}
		case parser.PseudoNthChild:
			if !pc.Nth.Matches(int(info.IndexInParent) + 1) {
				return false
			}
		case parser.PseudoLang:
			if !s.matchesLang(node, pc.Lang) {
				return false
			}
		case parser.PseudoInteractive:
			// Handled through the selector ending.
		}
	}
	return true
}

// matchesLang resolves the language of node from the nearest lang
// attribute and reports whether it is want or a sub-tag of want.
func (s *StyledDom) matchesLang(node dom.NodeId, want string) bool {
	for n := node; n.IsValid(); n = s.Dom.Parent(n) {
		value, ok := s.Node(n).Attribute("lang")
		if !ok {
			continue
		}
		wantTag, err := language.Parse(want)
		if err != nil {
			return false
		}
		have, err := language.Parse(value)
		if err != nil {
			return false
		}
		for t := have; ; t = t.Parent() {
			if t.String() == wantTag.String() {
				return true
			}
			if t.IsRoot() {
				return false
			}
		}
	}
	return false
}
