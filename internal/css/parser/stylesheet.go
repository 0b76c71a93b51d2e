// internal/css/parser/stylesheet.go
package parser

import (
	"fmt"
	"strings"

	dcss "github.com/aymerick/douceur/css"
	dparser "github.com/aymerick/douceur/parser"

	"github.com/xkilldash9x/boxkit/internal/css"
)

// Declaration is one parsed longhand property.
type Declaration struct {
	Property  css.CssProperty
	Important bool
}

// Rule pairs one complex selector with its declarations. A source rule
// with a selector list yields one Rule per selector; Order is the source
// position used as the cascade tie-break.
type Rule struct {
	Selector     ComplexSelector
	Declarations []Declaration
	Order        int
}

// Stylesheet is the parsed author stylesheet.
type Stylesheet struct {
	Rules       []Rule
	Diagnostics []Diagnostic
}

// Diagnostic describes a dropped rule, selector or declaration.
type Diagnostic struct {
	Context string
	Err     error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Context, d.Err)
}

// ParseStylesheet tokenises src and builds the rule list. Unknown
// selectors and properties are dropped and reported as diagnostics; only
// a stylesheet that cannot be tokenised at all returns an error.
func ParseStylesheet(src string) (*Stylesheet, error) {
	sheet, err := dparser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenise stylesheet: %w", err)
	}
	out := &Stylesheet{}
	for _, rule := range sheet.Rules {
		out.addRule(rule)
	}
	return out, nil
}

// MustParseStylesheet is ParseStylesheet for fixed stylesheets; it panics on error.
func MustParseStylesheet(src string) *Stylesheet {
	s, err := ParseStylesheet(src)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Stylesheet) addRule(rule *dcss.Rule) {
	if rule.Kind == dcss.AtRule {
		s.Diagnostics = append(s.Diagnostics, Diagnostic{
			Context: rule.Name,
			Err:     fmt.Errorf("%w: at-rules are ignored", ErrUnsupportedSelector),
		})
		return
	}

	decls, diags := convertDeclarations(rule.Declarations)
	s.Diagnostics = append(s.Diagnostics, diags...)
	if len(decls) == 0 {
		return
	}

	selectors := rule.Selectors
	if len(selectors) == 0 {
		selectors = splitSelectorList(rule.Prelude)
	}
	order := len(s.Rules)
	for _, text := range selectors {
		sel, err := ParseSelector(text)
		if err != nil {
			s.Diagnostics = append(s.Diagnostics, Diagnostic{Context: strings.TrimSpace(text), Err: err})
			continue
		}
		s.Rules = append(s.Rules, Rule{Selector: sel, Declarations: decls, Order: order})
	}
}

// Append adds the rules of other after the rules of s, keeping source order.
func (s *Stylesheet) Append(other *Stylesheet) {
	if other == nil {
		return
	}
	base := 0
	if n := len(s.Rules); n > 0 {
		base = s.Rules[n-1].Order + 1
	}
	for _, r := range other.Rules {
		r.Order += base
		s.Rules = append(s.Rules, r)
	}
	s.Diagnostics = append(s.Diagnostics, other.Diagnostics...)
}

// ParseInlineStyle parses the body of a style="" attribute.
func ParseInlineStyle(src string) ([]Declaration, []Diagnostic) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	// The last declaration keeps an empty value unless it is terminated.
	if !strings.HasSuffix(src, ";") {
		src += ";"
	}
	raw, err := dparser.ParseDeclarations(src)
	if err != nil {
		return nil, []Diagnostic{{Context: "style", Err: err}}
	}
	return convertDeclarations(raw)
}

func convertDeclarations(raw []*dcss.Declaration) ([]Declaration, []Diagnostic) {
	var decls []Declaration
	var diags []Diagnostic
	for _, d := range raw {
		props, err := css.ParseProperty(d.Property, d.Value)
		if err != nil {
			diags = append(diags, Diagnostic{Context: d.Property, Err: err})
			continue
		}
		for _, p := range props {
			decls = append(decls, Declaration{Property: p, Important: d.Important})
		}
	}
	return decls, diags
}
