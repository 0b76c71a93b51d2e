// internal/hittest/hittest_test.go
package hittest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/displaylist"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/layout"
	"github.com/xkilldash9x/boxkit/internal/style"
	"github.com/xkilldash9x/boxkit/internal/text"
)

type monoShaper struct{}

func (monoShaper) Metrics() text.FontMetrics {
	return text.FontMetrics{UnitsPerEm: 1000, Ascender: 800, Descender: 200}
}

func (monoShaper) Shape(word string, _ language.Tag) (text.ShapedWord, error) {
	out := text.ShapedWord{}
	for i, r := range word {
		out.Glyphs = append(out.Glyphs, text.Glyph{Index: uint32(r), Advance: 500, Cluster: uint32(i)})
		out.Advance += 500
	}
	return out, nil
}

type page struct {
	styled *style.StyledDom
	tree   *layout.LayoutTree
}

func render(t *testing.T, markup string) *page {
	t.Helper()
	src := "<html><head><style>body { margin: 0; }</style></head><body>" + markup + "</body></html>"
	doc, err := dom.FromHTML(strings.NewReader(src))
	require.NoError(t, err)
	require.Empty(t, doc.Diagnostics)
	styled := style.New(doc.Dom.Compact(), doc.Stylesheet)
	solver := layout.NewSolver(layout.WithFontCache(text.NewFontCache(nil, monoShaper{}, nil)))
	tree, err := solver.Layout(context.Background(), styled, geom.Rect(0, 0, 400, 300))
	require.NoError(t, err)
	return &page{styled: styled, tree: tree}
}

func (p *page) node(t *testing.T, id string) dom.NodeId {
	t.Helper()
	n, ok := p.styled.Dom.FindByID(id)
	require.True(t, ok, "no element #%s", id)
	return n
}

func (p *page) hit(x, y float32, opts ...displaylist.Option) []Hit {
	return HitTest(displaylist.Build(p.tree, p.styled, opts...), geom.LogicalPosition{X: x, Y: y})
}

// ids names the hits by element id; elements without one are "".
func (p *page) ids(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		name := ""
		if ids := p.styled.Node(h.Node.Node).IDs; len(ids) > 0 {
			name = ids[0]
		}
		out = append(out, name)
	}
	return out
}

func TestHitTest(t *testing.T) {
	t.Run("nested boxes front to back", func(t *testing.T) {
		p := render(t, `<div id="outer" style="width:100px;height:100px"><div id="inner" style="width:50px;height:50px;margin-left:10px"></div></div>`)
		hits := p.hit(20, 5)
		require.Equal(t, []string{"inner", "outer", ""}, p.ids(hits))
		assert.Equal(t, geom.LogicalPosition{X: 10, Y: 5}, hits[0].Local)
		assert.Greater(t, hits[0].ZOrder, hits[1].ZOrder)
		assert.Equal(t, dom.RootDomId, hits[0].Node.Dom)
	})

	t.Run("points outside every box hit nothing", func(t *testing.T) {
		p := render(t, `<div style="height:10px"></div>`)
		assert.Empty(t, p.hit(5, 200))
	})

	t.Run("overflow clips hide overflowing children", func(t *testing.T) {
		p := render(t, `<div id="clip" style="overflow:hidden;height:20px"><div id="tall" style="height:100px"></div></div>`)
		assert.Equal(t, []string{"tall", "clip", ""}, p.ids(p.hit(5, 10)))
		assert.NotContains(t, p.ids(p.hit(5, 50)), "tall")
	})

	t.Run("scroll offsets shift the content", func(t *testing.T) {
		markup := `<div id="s" style="overflow:scroll;height:20px"><div id="c" style="height:100px"></div></div>`
		p := render(t, markup)
		s := p.node(t, "s")
		hits := p.hit(5, 10, displaylist.WithScrollOffsets(func(id dom.NodeId) geom.LogicalPosition {
			if id == s {
				return geom.LogicalPosition{Y: 50}
			}
			return geom.LogicalPosition{}
		}))
		require.Equal(t, []string{"c", "s", ""}, p.ids(hits))
		assert.Equal(t, geom.LogicalPosition{X: 5, Y: 60}, hits[0].Local)
		assert.Equal(t, geom.LogicalPosition{X: 5, Y: 10}, hits[1].Local)
	})

	t.Run("transforms are inverted", func(t *testing.T) {
		p := render(t, `<div id="t" style="width:50px;height:50px;transform:translate(100px, 0px)"></div>`)
		hits := p.hit(120, 10)
		require.Equal(t, []string{"t", ""}, p.ids(hits))
		assert.InDelta(t, 20, hits[0].Local.X, 1e-3)
		assert.InDelta(t, 10, hits[0].Local.Y, 1e-3)
		assert.Equal(t, []string{""}, p.ids(p.hit(10, 10)))
	})

	t.Run("higher z-index is in front", func(t *testing.T) {
		p := render(t, `<div id="a" style="position:absolute;left:0px;top:0px;width:50px;height:50px;z-index:2"></div>`+
			`<div id="b" style="position:absolute;left:0px;top:0px;width:50px;height:50px;z-index:1"></div>`)
		assert.Equal(t, []string{"a", "b"}, p.ids(p.hit(10, 10)))
	})
}

func TestForest(t *testing.T) {
	root := &displaylist.DisplayList{Items: []displaylist.Item{
		displaylist.PushStackingContext{Node: 0, Opacity: 1, Transform: css.IdentityMatrix()},
		displaylist.HitArea{Node: 0, Bounds: geom.Rect(0, 0, 400, 300)},
		displaylist.HitArea{Node: 1, Bounds: geom.Rect(90, 90, 220, 220), Tag: 7, HasTag: true},
		displaylist.IFrame{Node: 1, Bounds: geom.Rect(100, 100, 200, 200)},
		displaylist.PopStackingContext{Node: 0},
	}}
	nested := &displaylist.DisplayList{Items: []displaylist.Item{
		displaylist.HitArea{Node: 0, Bounds: geom.Rect(0, 0, 200, 200)},
		displaylist.HitArea{Node: 2, Bounds: geom.Rect(10, 10, 20, 20)},
	}}

	t.Run("nested DOMs are tested in the host's content box", func(t *testing.T) {
		f := NewForest()
		f.Add(dom.RootDomId, root)
		f.Add(1, nested)
		f.Link(dom.DomNodeId{Dom: dom.RootDomId, Node: 1}, 1)

		hits := f.HitTest(geom.LogicalPosition{X: 115, Y: 115})
		var got []dom.DomNodeId
		for _, h := range hits {
			got = append(got, h.Node)
		}
		assert.Equal(t, []dom.DomNodeId{{Dom: 1, Node: 2}, {Dom: 1, Node: 0}, {Dom: 0, Node: 1}, {Dom: 0, Node: 0}}, got)
		assert.Equal(t, geom.LogicalPosition{X: 5, Y: 5}, hits[0].Local)
		assert.Equal(t, dom.TagId(7), hits[2].Tag)
		assert.True(t, hits[2].HasTag)
	})

	t.Run("unlinked iframes contribute only their host", func(t *testing.T) {
		f := NewForest()
		f.Add(dom.RootDomId, root)
		f.Add(1, nested)
		assert.Len(t, f.HitTest(geom.LogicalPosition{X: 115, Y: 115}), 2)
	})

	t.Run("a DOM embedding itself is visited once", func(t *testing.T) {
		f := NewForest()
		f.Add(dom.RootDomId, root)
		f.Link(dom.DomNodeId{Dom: dom.RootDomId, Node: 1}, dom.RootDomId)
		assert.Len(t, f.HitTest(geom.LogicalPosition{X: 115, Y: 115}), 2)
	})

	t.Run("degenerate transforms cannot be hit", func(t *testing.T) {
		list := &displaylist.DisplayList{Items: []displaylist.Item{
			displaylist.PushStackingContext{Node: 0, Transform: css.TransformMatrix{}},
			displaylist.HitArea{Node: 0, Bounds: geom.Rect(0, 0, 400, 300)},
			displaylist.PopStackingContext{Node: 0},
			displaylist.HitArea{Node: 1, Bounds: geom.Rect(0, 0, 10, 10)},
		}}
		hits := HitTest(list, geom.LogicalPosition{X: 5, Y: 5})
		require.Len(t, hits, 1)
		assert.Equal(t, dom.NodeId(1), hits[0].Node.Node)
	})

	t.Run("missing root list", func(t *testing.T) {
		assert.Nil(t, NewForest().HitTest(geom.LogicalPosition{}))
	})
}
