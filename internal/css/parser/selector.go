// internal/css/parser/selector.go
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xkilldash9x/boxkit/internal/css"
)

var (
	// ErrInvalidSelector is returned for selectors that do not parse.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrUnsupportedSelector is returned for well-formed selectors the
	// cascade cannot evaluate (e.g. :not()).
	ErrUnsupportedSelector = errors.New("unsupported selector")
)

// SelectorGroup represents a comma-separated list of selectors (e.g., "h1, h2 .title").
type SelectorGroup []ComplexSelector

// ComplexSelector represents a sequence of compound selectors joined by
// combinators (e.g., "div > p"). Each entry is one content group.
type ComplexSelector struct {
	Selectors []SimpleSelectorWithCombinator
	Source    string
}

// SimpleSelectorWithCombinator pairs a compound selector with its preceding combinator.
type SimpleSelectorWithCombinator struct {
	Combinator     Combinator
	SimpleSelector SimpleSelector
}

// SimpleSelector represents one compound selector (tag, ID, classes,
// attributes and pseudo-classes).
type SimpleSelector struct {
	TagName       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []PseudoClass
}

// AttributeSelector represents a CSS attribute selector like `[href]` or `[target="_blank"]`.
type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

// Combinator defines the relationship between compound selectors.
type Combinator int

const (
	CombinatorNone            Combinator = iota // No combinator (first selector)
	CombinatorDescendant                        // Space
	CombinatorChild                             // >
	CombinatorAdjacentSibling                   // +
	CombinatorGeneralSibling                    // ~
)

func (c Combinator) String() string {
	switch c {
	case CombinatorDescendant:
		return " "
	case CombinatorChild:
		return " > "
	case CombinatorAdjacentSibling:
		return " + "
	case CombinatorGeneralSibling:
		return " ~ "
	}
	return ""
}

// PseudoClassKind distinguishes structural, interactive and runtime pseudo-classes.
type PseudoClassKind int

const (
	PseudoFirst PseudoClassKind = iota
	PseudoLast
	PseudoNthChild
	PseudoInteractive
	PseudoLang
)

// PseudoClass is one parsed pseudo-class.
type PseudoClass struct {
	Kind  PseudoClassKind
	Nth   NthChildPattern // PseudoNthChild
	State css.PseudoState // PseudoInteractive
	Lang  string          // PseudoLang
}

// NthChildPattern is An+B. Indices are 1-based.
type NthChildPattern struct {
	A, B int
}

// Matches reports whether the 1-based index satisfies An+B for some n >= 0.
func (p NthChildPattern) Matches(index int) bool {
	if p.A == 0 {
		return index == p.B
	}
	diff := index - p.B
	if diff%p.A != 0 {
		return false
	}
	return diff/p.A >= 0
}

// ParseNthChild parses "odd", "even", "N" and "An+B" forms.
func ParseNthChild(s string) (NthChildPattern, error) {
	s = strings.ToLower(strings.ReplaceAll(s, " ", ""))
	switch s {
	case "odd":
		return NthChildPattern{A: 2, B: 1}, nil
	case "even":
		return NthChildPattern{A: 2, B: 0}, nil
	}
	nIdx := strings.IndexByte(s, 'n')
	if nIdx < 0 {
		b, err := strconv.Atoi(s)
		if err != nil {
			return NthChildPattern{}, fmt.Errorf("%w: nth-child(%s)", ErrInvalidSelector, s)
		}
		return NthChildPattern{B: b}, nil
	}
	var p NthChildPattern
	switch a := s[:nIdx]; a {
	case "", "+":
		p.A = 1
	case "-":
		p.A = -1
	default:
		v, err := strconv.Atoi(a)
		if err != nil {
			return NthChildPattern{}, fmt.Errorf("%w: nth-child(%s)", ErrInvalidSelector, s)
		}
		p.A = v
	}
	if rest := s[nIdx+1:]; rest != "" {
		v, err := strconv.Atoi(strings.TrimPrefix(rest, "+"))
		if err != nil {
			return NthChildPattern{}, fmt.Errorf("%w: nth-child(%s)", ErrInvalidSelector, s)
		}
		p.B = v
	}
	return p, nil
}

// Specificity is the (a, b, c, d) cascade weight: inline, IDs,
// classes/attributes/pseudo-classes, type selectors.
type Specificity [4]int

// InlineSpecificity is the weight of declarations from a style attribute.
var InlineSpecificity = Specificity{1, 0, 0, 0}

// Compare returns -1, 0 or 1.
func (s Specificity) Compare(o Specificity) int {
	for i := range s {
		if s[i] != o[i] {
			if s[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Specificity of the complex selector that matched.
func (cs ComplexSelector) Specificity() Specificity {
	var spec Specificity
	for _, s := range cs.Selectors {
		b, c, d := s.SimpleSelector.CalculateSpecificity()
		spec[1] += b
		spec[2] += c
		spec[3] += d
	}
	return spec
}

// CalculateSpecificity calculates for a simple selector.
func (s SimpleSelector) CalculateSpecificity() (a, b, c int) {
	if s.ID != "" {
		a = 1
	}
	// Attribute selectors, classes and pseudo-classes have the same specificity.
	b = len(s.Classes) + len(s.Attributes) + len(s.PseudoClasses)
	if s.TagName != "" && s.TagName != "*" {
		c = 1
	}
	return a, b, c
}

// InteractiveState returns the union of interactive pseudo-class bits.
func (s SimpleSelector) InteractiveState() css.PseudoState {
	var st css.PseudoState
	for _, p := range s.PseudoClasses {
		if p.Kind == PseudoInteractive {
			st |= p.State
		}
	}
	return st
}

// PseudoEnding is the interactive state required by the last content group.
func (cs ComplexSelector) PseudoEnding() css.PseudoState {
	if len(cs.Selectors) == 0 {
		return css.PseudoNormal
	}
	return cs.Selectors[len(cs.Selectors)-1].SimpleSelector.InteractiveState()
}

// IsValid checks if the selector has at least one component.
func (s SimpleSelector) IsValid() bool {
	return s.TagName != "" || s.ID != "" || len(s.Classes) > 0 || len(s.Attributes) > 0 || len(s.PseudoClasses) > 0
}

// Matches applies the attribute operator to a node's attribute value.
func (a AttributeSelector) Matches(value string, present bool) bool {
	if !present {
		return false
	}
	switch a.Operator {
	case "":
		return true
	case "=":
		return value == a.Value
	case "~=":
		for _, w := range strings.Fields(value) {
			if w == a.Value {
				return true
			}
		}
		return false
	case "|=":
		return value == a.Value || strings.HasPrefix(value, a.Value+"-")
	case "^=":
		return a.Value != "" && strings.HasPrefix(value, a.Value)
	case "$=":
		return a.Value != "" && strings.HasSuffix(value, a.Value)
	case "*=":
		return a.Value != "" && strings.Contains(value, a.Value)
	}
	return false
}

func (cs ComplexSelector) String() string {
	if cs.Source != "" {
		return cs.Source
	}
	var b strings.Builder
	for _, s := range cs.Selectors {
		b.WriteString(s.Combinator.String())
		b.WriteString(s.SimpleSelector.String())
	}
	return b.String()
}

func (s SimpleSelector) String() string {
	var b strings.Builder
	b.WriteString(s.TagName)
	if s.ID != "" {
		b.WriteString("#" + s.ID)
	}
	for _, c := range s.Classes {
		b.WriteString("." + c)
	}
	for _, a := range s.Attributes {
		if a.Operator == "" {
			fmt.Fprintf(&b, "[%s]", a.Name)
		} else {
			fmt.Fprintf(&b, "[%s%s%q]", a.Name, a.Operator, a.Value)
		}
	}
	for _, p := range s.PseudoClasses {
		switch p.Kind {
		case PseudoFirst:
			b.WriteString(":first")
		case PseudoLast:
			b.WriteString(":last")
		case PseudoNthChild:
			fmt.Fprintf(&b, ":nth-child(%dn%+d)", p.Nth.A, p.Nth.B)
		case PseudoInteractive:
			b.WriteString(":" + p.State.String())
		case PseudoLang:
			fmt.Fprintf(&b, ":lang(%s)", p.Lang)
		}
	}
	return b.String()
}

// ParseSelectorGroup parses a comma separated selector list. Selectors
// that fail to parse are returned as errors alongside the valid ones.
func ParseSelectorGroup(input string) (SelectorGroup, []error) {
	var group SelectorGroup
	var errs []error
	for _, part := range splitSelectorList(input) {
		sel, err := ParseSelector(part)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		group = append(group, sel)
	}
	return group, errs
}

// splitSelectorList splits on commas outside parentheses and brackets.
func splitSelectorList(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(s[start:]))
}

// ParseSelector parses a single complex selector such as
// `body > .main .row:nth-child(odd)`.
func ParseSelector(input string) (ComplexSelector, error) {
	p := &selectorParser{input: input}
	cs, err := p.parseComplexSelector()
	if err != nil {
		return ComplexSelector{}, fmt.Errorf("%q: %w", input, err)
	}
	if len(cs.Selectors) == 0 {
		return ComplexSelector{}, fmt.Errorf("%w: empty selector", ErrInvalidSelector)
	}
	for i, s := range cs.Selectors {
		if i < len(cs.Selectors)-1 && s.SimpleSelector.InteractiveState() != css.PseudoNormal {
			return ComplexSelector{}, fmt.Errorf("%q: %w: interactive pseudo-class before the last compound", input, ErrUnsupportedSelector)
		}
	}
	cs.Source = strings.TrimSpace(input)
	return cs, nil
}

// selectorParser holds the state of the selector lexer.
type selectorParser struct {
	input string
	pos   int
}

// parseComplexSelector parses a sequence of compound selectors and combinators.
func (p *selectorParser) parseComplexSelector() (ComplexSelector, error) {
	var complexSelector ComplexSelector
	combinator := CombinatorNone
	pendingCombinator := false

	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}

		simple, err := p.parseSimpleSelector()
		if err != nil {
			return ComplexSelector{}, err
		}
		complexSelector.Selectors = append(complexSelector.Selectors, SimpleSelectorWithCombinator{
			Combinator:     combinator,
			SimpleSelector: simple,
		})
		pendingCombinator = false

		hadSpace := p.consumeWhitespace()
		if p.eof() {
			break
		}

		switch p.currentChar() {
		case '>':
			combinator = CombinatorChild
			p.consumeChar()
			pendingCombinator = true
		case '+':
			combinator = CombinatorAdjacentSibling
			p.consumeChar()
			pendingCombinator = true
		case '~':
			combinator = CombinatorGeneralSibling
			p.consumeChar()
			pendingCombinator = true
		default:
			if !hadSpace {
				return ComplexSelector{}, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidSelector, p.currentChar(), p.pos)
			}
			// Whitespace between compounds implies a descendant combinator.
			combinator = CombinatorDescendant
		}
	}
	if pendingCombinator {
		return ComplexSelector{}, fmt.Errorf("%w: dangling combinator", ErrInvalidSelector)
	}
	return complexSelector, nil
}

// parseSimpleSelector parses a single compound (e.g., div#id.class1:hover).
func (p *selectorParser) parseSimpleSelector() (SimpleSelector, error) {
	selector := SimpleSelector{}

	// Universal or Tag Name
	if ch := p.currentChar(); ch == '*' {
		p.consumeChar()
		selector.TagName = "*"
	} else if isValidIdentifierStart(ch) {
		selector.TagName = strings.ToLower(p.parseIdentifier())
	}

	for !p.eof() {
		switch p.currentChar() {
		case '#':
			p.consumeChar()
			if selector.ID = p.parseIdentifier(); selector.ID == "" {
				return selector, fmt.Errorf("%w: empty id", ErrInvalidSelector)
			}
		case '.':
			p.consumeChar()
			class := p.parseIdentifier()
			if class == "" {
				return selector, fmt.Errorf("%w: empty class", ErrInvalidSelector)
			}
			selector.Classes = append(selector.Classes, class)
		case '[':
			p.consumeChar()
			attr, err := p.parseAttributeSelector()
			if err != nil {
				return selector, err
			}
			selector.Attributes = append(selector.Attributes, attr)
		case ':':
			p.consumeChar()
			pc, err := p.parsePseudoClass()
			if err != nil {
				return selector, err
			}
			selector.PseudoClasses = append(selector.PseudoClasses, pc)
		default:
			goto done
		}
	}

done:
	if !selector.IsValid() {
		return selector, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidSelector, p.currentChar(), p.pos)
	}
	return selector, nil
}

// parseAttributeSelector parses the contents of `[...]` for an attribute selector.
func (p *selectorParser) parseAttributeSelector() (AttributeSelector, error) {
	p.consumeWhitespace()
	name := strings.ToLower(p.parseIdentifier())
	p.consumeWhitespace()

	if p.eof() || name == "" {
		return AttributeSelector{}, fmt.Errorf("%w: unterminated attribute selector", ErrInvalidSelector)
	}

	// If we hit ']', it's a presence selector like `[disabled]`.
	if p.currentChar() == ']' {
		p.consumeChar()
		return AttributeSelector{Name: name}, nil
	}

	var operator strings.Builder
	operator.WriteByte(p.consumeChar())
	if !p.eof() && p.currentChar() == '=' {
		operator.WriteByte(p.consumeChar())
	}
	switch operator.String() {
	case "=", "~=", "|=", "^=", "$=", "*=":
	default:
		return AttributeSelector{}, fmt.Errorf("%w: attribute operator %q", ErrInvalidSelector, operator.String())
	}

	p.consumeWhitespace()

	var value string
	if p.currentChar() == '"' || p.currentChar() == '\'' {
		quote := p.consumeChar()
		start := p.pos
		for !p.eof() && p.currentChar() != quote {
			p.pos++
		}
		value = p.input[start:p.pos]
		if !p.eof() {
			p.consumeChar()
		}
	} else {
		value = p.parseIdentifier()
	}
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ']' {
		return AttributeSelector{}, fmt.Errorf("%w: expected ']' to close attribute selector", ErrInvalidSelector)
	}
	p.consumeChar()

	return AttributeSelector{Name: name, Operator: operator.String(), Value: value}, nil
}

func (p *selectorParser) parsePseudoClass() (PseudoClass, error) {
	name := strings.ToLower(p.parseIdentifier())
	var arg string
	hasArg := false
	if !p.eof() && p.currentChar() == '(' {
		p.consumeChar()
		start := p.pos
		p.skipTo(')')
		if p.eof() {
			return PseudoClass{}, fmt.Errorf("%w: unterminated :%s(", ErrInvalidSelector, name)
		}
		arg = strings.TrimSpace(p.input[start:p.pos])
		p.consumeChar()
		hasArg = true
	}

	switch name {
	case "first", "first-child":
		return PseudoClass{Kind: PseudoFirst}, nil
	case "last", "last-child":
		return PseudoClass{Kind: PseudoLast}, nil
	case "nth-child":
		if !hasArg {
			return PseudoClass{}, fmt.Errorf("%w: :nth-child needs an argument", ErrInvalidSelector)
		}
		nth, err := ParseNthChild(arg)
		if err != nil {
			return PseudoClass{}, err
		}
		return PseudoClass{Kind: PseudoNthChild, Nth: nth}, nil
	case "lang":
		if arg == "" {
			return PseudoClass{}, fmt.Errorf("%w: :lang needs an argument", ErrInvalidSelector)
		}
		return PseudoClass{Kind: PseudoLang, Lang: strings.Trim(arg, `"'`)}, nil
	}
	if st, ok := css.PseudoStateFromName(name); ok && !hasArg {
		return PseudoClass{Kind: PseudoInteractive, State: st}, nil
	}
	return PseudoClass{}, fmt.Errorf("%w: :%s", ErrUnsupportedSelector, name)
}

// --- Lexer-like Helpers ---

func (p *selectorParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *selectorParser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *selectorParser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

// consumeWhitespace reports whether anything was skipped.
func (p *selectorParser) consumeWhitespace() bool {
	start := p.pos
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
	return p.pos > start
}

func (p *selectorParser) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, target := range targets {
			if ch == target {
				return
			}
		}
		p.pos++
	}
}

func (p *selectorParser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isValidIdentifierChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isValidIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-'
}

func isValidIdentifierChar(ch byte) bool {
	return isValidIdentifierStart(ch) || (ch >= '0' && ch <= '9')
}
