// internal/hittest/hittest.go
package hittest

import (
	"sort"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/displaylist"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// Hit is one node under the tested point.
type Hit struct {
	Node   dom.DomNodeId
	Tag    dom.TagId
	HasTag bool
	// Local is the point relative to the border box origin of the node,
	// after undoing transforms and scroll offsets.
	Local geom.LogicalPosition
	// ZOrder is the paint position of the node across the forest; a hit
	// with a higher ZOrder is in front.
	ZOrder int
}

// Forest holds the display lists of the DOMs of one window and the iframe
// hosts that embed the nested ones.
type Forest struct {
	lists   map[dom.DomId]*displaylist.DisplayList
	iframes map[dom.DomNodeId]dom.DomId
}

// NewForest creates an empty forest.
func NewForest() *Forest {
	return &Forest{
		lists:   make(map[dom.DomId]*displaylist.DisplayList),
		iframes: make(map[dom.DomNodeId]dom.DomId),
	}
}

// Add sets the display list of a DOM.
func (f *Forest) Add(id dom.DomId, list *displaylist.DisplayList) {
	f.lists[id] = list
}

// Link records that the iframe host renders the nested DOM child. The
// nested list is in coordinates relative to the host's content box.
func (f *Forest) Link(host dom.DomNodeId, child dom.DomId) {
	f.iframes[host] = child
}

// List returns the display list of a DOM.
func (f *Forest) List(id dom.DomId) (*displaylist.DisplayList, bool) {
	l, ok := f.lists[id]
	return l, ok
}

// HitTest returns every element under point in the root DOM and the
// iframes it embeds, front to back.
func (f *Forest) HitTest(point geom.LogicalPosition) []Hit {
	root, ok := f.lists[dom.RootDomId]
	if !ok {
		return nil
	}
	w := &walker{forest: f, point: point}
	w.walk(dom.RootDomId, root, css.IdentityMatrix(), map[dom.DomId]bool{})
	sort.SliceStable(w.hits, func(i, j int) bool { return w.hits[i].ZOrder > w.hits[j].ZOrder })
	return w.hits
}

// HitTest tests a single display list, as the root DOM.
func HitTest(list *displaylist.DisplayList, point geom.LogicalPosition) []Hit {
	f := NewForest()
	f.Add(dom.RootDomId, list)
	return f.HitTest(point)
}

type walker struct {
	forest *Forest
	point  geom.LogicalPosition
	seq    int
	hits   []Hit
}

// frame is the state saved by a push item.
type frame struct {
	toLocal css.TransformMatrix
	inside  bool
}

// walk visits the items of list in paint order. toLocal maps window
// coordinates to the coordinates of the list.
func (w *walker) walk(id dom.DomId, list *displaylist.DisplayList, toLocal css.TransformMatrix, visiting map[dom.DomId]bool) {
	if visiting[id] {
		return
	}
	visiting[id] = true
	defer delete(visiting, id)

	inside := true
	var stack []frame
	local := func() geom.LogicalPosition {
		x, y := toLocal.Apply(w.point.X, w.point.Y)
		return geom.LogicalPosition{X: x, Y: y}
	}

	for _, it := range list.Items {
		switch v := it.(type) {
		case displaylist.PushStackingContext:
			stack = append(stack, frame{toLocal: toLocal, inside: inside})
			inv, ok := v.Transform.Inverse()
			if !ok {
				// A degenerate transform has no area to hit.
				inside = false
				continue
			}
			toLocal = inv.Multiply(toLocal)
		case displaylist.PushClip:
			stack = append(stack, frame{toLocal: toLocal, inside: inside})
			inside = inside && v.Contains(local())
			if v.Scroll != (geom.LogicalPosition{}) {
				toLocal = css.TranslateMatrix(v.Scroll.X, v.Scroll.Y).Multiply(toLocal)
			}
		case displaylist.PopStackingContext, displaylist.PopClip:
			if n := len(stack); n > 0 {
				toLocal, inside = stack[n-1].toLocal, stack[n-1].inside
				stack = stack[:n-1]
			}
		case displaylist.HitArea:
			w.seq++
			p := local()
			if inside && v.Bounds.Contains(p) {
				w.hits = append(w.hits, Hit{
					Node:   dom.DomNodeId{Dom: id, Node: v.Node},
					Tag:    v.Tag,
					HasTag: v.HasTag,
					Local:  p.Sub(v.Bounds.Origin),
					ZOrder: w.seq,
				})
			}
		case displaylist.IFrame:
			if !inside || !v.Bounds.Contains(local()) {
				continue
			}
			child, ok := w.forest.iframes[dom.DomNodeId{Dom: id, Node: v.Node}]
			if !ok {
				continue
			}
			if nested, ok := w.forest.lists[child]; ok {
				offset := css.TranslateMatrix(-v.Bounds.Origin.X, -v.Bounds.Origin.Y)
				w.walk(child, nested, offset.Multiply(toLocal), visiting)
			}
		}
	}
}
