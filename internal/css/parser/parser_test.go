// internal/css/parser/parser_test.go
package parser

import (
	"errors"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxkit/internal/css"
)

// Helper functions to build expected structures concisely
func s(tag, id string, classes []string, attrs []AttributeSelector) SimpleSelector {
	return SimpleSelector{TagName: tag, ID: id, Classes: classes, Attributes: attrs}
}

func sc(c Combinator, sel SimpleSelector) SimpleSelectorWithCombinator {
	return SimpleSelectorWithCombinator{Combinator: c, SimpleSelector: sel}
}

func TestParseSimpleSelectorsAndAttributes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected SimpleSelector
	}{
		{"Tag", "div", s("div", "", nil, nil)},
		{"ID", "#main", s("", "main", nil, nil)},
		{"Class", ".button", s("", "", []string{"button"}, nil)},
		{"Multiple Classes", ".btn.primary", s("", "", []string{"btn", "primary"}, nil)},
		{"Combined", "div#username.required", s("div", "username", []string{"required"}, nil)},
		{"Universal", "*", s("*", "", nil, nil)},
		{"Attr Presence", "[disabled]", s("", "", nil, []AttributeSelector{{Name: "disabled"}})},
		{"Attr Exact", `[type="text"]`, s("", "", nil, []AttributeSelector{{Name: "type", Operator: "=", Value: "text"}})},
		{"Attr Contains Word (~=)", `[class~="alert"]`, s("", "", nil, []AttributeSelector{{Name: "class", Operator: "~=", Value: "alert"}})},
		{"Attr Prefix Hyphen (|=)", `[lang|="en"]`, s("", "", nil, []AttributeSelector{{Name: "lang", Operator: "|=", Value: "en"}})},
		{"Attr Unquoted", `[role=button]`, s("", "", nil, []AttributeSelector{{Name: "role", Operator: "=", Value: "button"}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := ParseSelector(tt.input)
			require.NoError(t, err)
			require.Len(t, cs.Selectors, 1)
			assert.Equal(t, tt.expected, cs.Selectors[0].SimpleSelector)
		})
	}
}

func TestParseCombinators(t *testing.T) {
	group, errs := ParseSelectorGroup("div p, article > section, h1 + h2, h2 ~ p, .container .item>span")
	require.Empty(t, errs)
	require.Len(t, group, 5)

	expected := [][]SimpleSelectorWithCombinator{
		{sc(CombinatorNone, s("div", "", nil, nil)), sc(CombinatorDescendant, s("p", "", nil, nil))},
		{sc(CombinatorNone, s("article", "", nil, nil)), sc(CombinatorChild, s("section", "", nil, nil))},
		{sc(CombinatorNone, s("h1", "", nil, nil)), sc(CombinatorAdjacentSibling, s("h2", "", nil, nil))},
		{sc(CombinatorNone, s("h2", "", nil, nil)), sc(CombinatorGeneralSibling, s("p", "", nil, nil))},
		{
			sc(CombinatorNone, s("", "", []string{"container"}, nil)),
			sc(CombinatorDescendant, s("", "", []string{"item"}, nil)),
			sc(CombinatorChild, s("span", "", nil, nil)),
		},
	}
	for i, want := range expected {
		assert.Equal(t, want, group[i].Selectors, group[i].Source)
	}
}

func TestParsePseudoClasses(t *testing.T) {
	cs, err := ParseSelector("body > .main .row:nth-child(odd)")
	require.NoError(t, err)
	require.Len(t, cs.Selectors, 3)
	last := cs.Selectors[2].SimpleSelector
	require.Len(t, last.PseudoClasses, 1)
	assert.Equal(t, PseudoNthChild, last.PseudoClasses[0].Kind)
	assert.Equal(t, NthChildPattern{A: 2, B: 1}, last.PseudoClasses[0].Nth)

	cs, err = ParseSelector("div.button:hover:active")
	require.NoError(t, err)
	assert.Equal(t, css.PseudoHover|css.PseudoActive, cs.PseudoEnding())

	cs, err = ParseSelector("p:lang(de)")
	require.NoError(t, err)
	assert.Equal(t, "de", cs.Selectors[0].SimpleSelector.PseudoClasses[0].Lang)

	_, err = ParseSelector("div:not(.x)")
	assert.True(t, errors.Is(err, ErrUnsupportedSelector))

	_, err = ParseSelector("div:hover p")
	assert.True(t, errors.Is(err, ErrUnsupportedSelector))

	_, err = ParseSelector("div >")
	assert.True(t, errors.Is(err, ErrInvalidSelector))
}

func TestNthChildPattern(t *testing.T) {
	tests := []struct {
		in      string
		matches []int
		misses  []int
	}{
		{"odd", []int{1, 3, 5}, []int{2, 4}},
		{"even", []int{2, 4}, []int{1, 3}},
		{"3", []int{3}, []int{1, 2, 4}},
		{"3n+1", []int{1, 4, 7}, []int{2, 3, 5}},
		{"-n+2", []int{1, 2}, []int{3, 4}},
		{"n", []int{1, 2, 3}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParseNthChild(tt.in)
			require.NoError(t, err)
			for _, i := range tt.matches {
				assert.True(t, p.Matches(i), "index %d", i)
			}
			for _, i := range tt.misses {
				assert.False(t, p.Matches(i), "index %d", i)
			}
		})
	}
	_, err := ParseNthChild("xn")
	assert.Error(t, err)
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		selector string
		want     Specificity
	}{
		{"*", Specificity{0, 0, 0, 0}},
		{"div", Specificity{0, 0, 0, 1}},
		{".a.b", Specificity{0, 0, 2, 0}},
		{"#id div.c:hover", Specificity{0, 1, 2, 1}},
		{"div [x] > p:nth-child(2)", Specificity{0, 0, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			cs, err := ParseSelector(tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cs.Specificity())
		})
	}
	assert.Equal(t, -1, Specificity{0, 0, 9, 9}.Compare(Specificity{0, 1, 0, 0}))
	assert.Equal(t, 1, InlineSpecificity.Compare(Specificity{0, 9, 9, 9}))
}

func TestAttributeMatches(t *testing.T) {
	tests := []struct {
		sel   AttributeSelector
		value string
		want  bool
	}{
		{AttributeSelector{Name: "x"}, "", true},
		{AttributeSelector{Name: "x", Operator: "=", Value: "a"}, "a", true},
		{AttributeSelector{Name: "x", Operator: "~=", Value: "b"}, "a b c", true},
		{AttributeSelector{Name: "x", Operator: "|=", Value: "en"}, "en-US", true},
		{AttributeSelector{Name: "x", Operator: "|=", Value: "en"}, "english", false},
		{AttributeSelector{Name: "x", Operator: "^=", Value: "ht"}, "https", true},
		{AttributeSelector{Name: "x", Operator: "$=", Value: ".png"}, "a.png", true},
		{AttributeSelector{Name: "x", Operator: "*=", Value: "mid"}, "amidst", true},
		{AttributeSelector{Name: "x", Operator: "*=", Value: ""}, "amidst", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sel.Matches(tt.value, true), "%+v on %q", tt.sel, tt.value)
	}
	assert.False(t, AttributeSelector{Name: "x"}.Matches("", false))
}

func TestParseStylesheet(t *testing.T) {
	src := `
		/* comment */
		.row, .col { margin: 0 auto; color: red !important; }
		div:not(.x) { width: 10px; }
		p { bogus-prop: 1; width: 20px; }
		@media screen { p { width: 1px; } }
	`
	sheet, err := ParseStylesheet(src)
	require.NoError(t, err)

	require.Len(t, sheet.Rules, 3)
	assert.Equal(t, ".row", sheet.Rules[0].Selector.String())
	assert.Equal(t, ".col", sheet.Rules[1].Selector.String())
	assert.Equal(t, sheet.Rules[0].Order, sheet.Rules[1].Order)
	assert.Equal(t, "p", sheet.Rules[2].Selector.String())
	assert.Greater(t, sheet.Rules[2].Order, sheet.Rules[0].Order)

	decls := sheet.Rules[0].Declarations
	require.Len(t, decls, 5)
	assert.Equal(t, css.PropTextColor, decls[4].Property.Kind)
	assert.True(t, decls[4].Important)
	assert.False(t, decls[0].Important)

	var contexts []string
	for _, d := range sheet.Diagnostics {
		contexts = append(contexts, d.Context)
	}
	assert.Contains(t, contexts, "div:not(.x)")
	assert.Contains(t, contexts, "bogus-prop")
}

func TestStylesheetAppend(t *testing.T) {
	a := MustParseStylesheet("a { width: 1px } b { width: 2px }")
	b := MustParseStylesheet("c { width: 3px }")
	a.Append(b)
	require.Len(t, a.Rules, 3)
	assert.Equal(t, 2, a.Rules[2].Order)
	assert.Equal(t, "c", a.Rules[2].Selector.String())
}

func TestParseInlineStyle(t *testing.T) {
	decls, diags := ParseInlineStyle("width: 50%; flex: 1; unknown: 3")
	assert.Len(t, diags, 1)
	require.Len(t, decls, 4)
	assert.Equal(t, css.PropWidth, decls[0].Property.Kind)
	assert.Equal(t, css.PropFlexBasis, decls[3].Property.Kind)

	tests := []struct {
		name string
		src  string
	}{
		{name: "unterminated", src: "height:10px"},
		{name: "terminated", src: "height:10px;"},
		{name: "padded", src: "  height: 10px  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls, diags := ParseInlineStyle(tt.src)
			assert.Empty(t, diags)
			require.Len(t, decls, 1)
			assert.Equal(t, css.PropHeight, decls[0].Property.Kind)
		})
	}

	decls, diags = ParseInlineStyle("   ")
	assert.Nil(t, decls)
	assert.Nil(t, diags)
}

func FuzzParseSelector(f *testing.F) {
	f.Add([]byte("div > .a:nth-child(2n+1)"))
	f.Add([]byte("[x~='y'] + p"))
	f.Fuzz(func(t *testing.T, data []byte) {
		consumer := fuzz.NewConsumer(data)
		input, err := consumer.GetString()
		if err != nil {
			input = string(data)
		}
		cs, err := ParseSelector(input)
		if err == nil {
			assert.NotEmpty(t, cs.Selectors)
			assert.Equal(t, CombinatorNone, cs.Selectors[0].Combinator)
		}
	})
}
