// internal/dom/dom_test.go
package dom

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxkit/internal/css"
)

func TestCompactHierarchy(t *testing.T) {
	d := Body().WithChildren(
		Div().WithID("a").WithChild(Text("hello")),
		Text("between"),
		Div().WithID("b"),
	)
	c := d.Compact()
	require.Equal(t, 5, c.Len())

	assert.Equal(t, []NodeId{1, 3, 4}, c.Children(0))
	assert.Equal(t, NoNode, c.Parent(0))
	assert.Equal(t, NodeId(0), c.Parent(4))
	assert.Equal(t, NodeId(3), c.Hierarchy[4].PreviousSibling)
	assert.Equal(t, NodeId(4), c.Hierarchy[0].LastChild)
	assert.Equal(t, NoNode, c.Hierarchy[4].NextSibling)
	assert.Equal(t, 2, c.Depth(2))
	assert.Equal(t, NodeId(3), c.SubtreeEnd(1))
	assert.Equal(t, NodeId(5), c.SubtreeEnd(4))
	assert.Equal(t, NodeId(5), c.SubtreeEnd(0))

	id, ok := c.FindByID("b")
	require.True(t, ok)
	assert.Equal(t, NodeId(4), id)
}

func TestCompactWrapsBody(t *testing.T) {
	c := Div().WithChild(Text("x")).Compact()
	require.Equal(t, 3, c.Len())
	assert.Equal(t, NodeBody, c.Node(0).Type)
	assert.Equal(t, NodeDiv, c.Node(1).Type)
}

func TestFocusable(t *testing.T) {
	assert.False(t, Div().Root.IsFocusable())
	n := Div().WithTabIndex(TabIndex{Kind: TabIndexNoKeyboardFocus}).Root
	assert.True(t, n.IsFocusable())
	assert.False(t, n.IsTabbable())
	n = Div().WithCallback(Focus(EventVirtualKeyDown), RefAny{}, func(RefAny, CallbackInfo) Update { return UpdateDoNothing }).Root
	assert.True(t, n.IsFocusable())
	assert.True(t, n.NeedsTag())
	n = Div().WithCallback(Hover(EventMouseDown), RefAny{}, nil).Root
	assert.False(t, n.IsFocusable())
	assert.True(t, n.NeedsTag())
}

func TestRefAny(t *testing.T) {
	r := NewRefAny(42)
	c := r.Clone()
	assert.Equal(t, int64(2), r.RefCount())
	c.Release()
	assert.Equal(t, int64(1), r.RefCount())
	v, ok := Downcast[int](r)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	_, ok = Downcast[string](r)
	assert.False(t, ok)
	assert.Equal(t, "int", r.TypeName())
	assert.True(t, RefAny{}.IsNil())
}

func TestInlineStyle(t *testing.T) {
	d, diags := Div().WithInlineStyle("width: 10px; nope: 1")
	assert.Len(t, diags, 1)
	require.Len(t, d.Root.InlineCSS, 1)
	assert.Equal(t, css.PropWidth, d.Root.InlineCSS[0].Property.Kind)
	assert.Equal(t, css.PseudoNormal, d.Root.InlineCSS[0].State)
}

const sampleHTML = `<!DOCTYPE html>
<html>
<head><style>.row { display: flex; }</style><title>t</title></head>
<body>
  <div id="main" class="row wide" tabindex="0">
    <p lang="de">Hallo<br>Welt</p>
    <img src="logo.png" width="32" height="16">
  </div>
  <td colspan="2" style="width: 5px">x</td>
</body>
</html>`

func TestFromHTML(t *testing.T) {
	doc, err := FromHTML(strings.NewReader(sampleHTML))
	require.NoError(t, err)
	require.Len(t, doc.Stylesheet.Rules, 1)
	assert.Equal(t, ".row", doc.Stylesheet.Rules[0].Selector.String())

	c := doc.Dom.Compact()
	assert.Equal(t, NodeBody, c.Node(0).Type)

	// Cross-check against an independent query of the same markup.
	htmlDoc, err := htmlquery.Parse(strings.NewReader(sampleHTML))
	require.NoError(t, err)
	mainNode := htmlquery.FindOne(htmlDoc, "//div[@id='main']")
	require.NotNil(t, mainNode)

	id, ok := c.FindByID(htmlquery.SelectAttr(mainNode, "id"))
	require.True(t, ok)
	main := c.Node(id)
	assert.Equal(t, []string{"row", "wide"}, main.Classes)
	require.NotNil(t, main.TabIndex)
	assert.Equal(t, TabIndexAuto, main.TabIndex.Kind)

	kids := c.Children(id)
	require.Len(t, kids, 2)
	p := c.Node(kids[0])
	assert.Equal(t, "p", p.TagName())
	lang, _ := p.Attribute("lang")
	assert.Equal(t, "de", lang)
	texts := c.Children(kids[0])
	require.Len(t, texts, 3)
	assert.Equal(t, "\n", c.Node(texts[1]).Text)

	img := c.Node(kids[1])
	assert.Equal(t, NodeImage, img.Type)
	assert.Equal(t, "logo.png", img.Image.Name)
	assert.Equal(t, float32(32), img.Image.Size.Width)
}

func TestFromXML(t *testing.T) {
	src := `<html>
	<head><style>div { width: 10px; }</style></head>
	<body><div class="a" rowspan="2">text</div><div focusable="true"/></body>
</html>`
	doc, err := FromXML(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Stylesheet.Rules, 1)

	c := doc.Dom.Compact()
	require.Equal(t, 4, c.Len())
	assert.Equal(t, NodeBody, c.Node(0).Type)
	first := c.Node(1)
	assert.True(t, first.HasClass("a"))
	rs, ok := first.Attribute("rowspan")
	assert.True(t, ok)
	assert.Equal(t, "2", rs)
	assert.Equal(t, "text", c.Node(2).Text)
	assert.True(t, c.Node(3).IsFocusable())

	doc, err = FromXML(strings.NewReader(`<app><div/></app>`))
	require.NoError(t, err)
	assert.Equal(t, NodeBody, doc.Dom.Root.Type)
	assert.Len(t, doc.Dom.Children, 1)

	_, err = FromXML(strings.NewReader(``))
	assert.Error(t, err)
}
