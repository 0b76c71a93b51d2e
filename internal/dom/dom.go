// internal/dom/dom.go
package dom

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/css/parser"
)

// Dom is the tree form produced by layout callbacks. It is compacted into
// an arena before styling.
type Dom struct {
	Root     NodeData
	Children []*Dom
}

func newDom(t NodeType) *Dom { return &Dom{Root: NodeData{Type: t}} }

// Body returns an empty body node.
func Body() *Dom { return newDom(NodeBody) }

// Div returns an empty div node.
func Div() *Dom { return newDom(NodeDiv) }

// Text returns a text node.
func Text(s string) *Dom {
	d := newDom(NodeText)
	d.Root.Text = s
	return d
}

// Image returns an image node.
func Image(ref ImageRef) *Dom {
	d := newDom(NodeImage)
	d.Root.Image = ref
	return d
}

// IFrame returns a node whose content is rendered lazily by cb.
func IFrame(data RefAny, cb IFrameCallback) *Dom {
	d := newDom(NodeIFrame)
	d.Root.IFrame = &IFrameNode{Callback: cb, Data: data}
	return d
}

// GlTexture returns a node backed by a texture callback.
func GlTexture(data RefAny, cb GlTextureCallback) *Dom {
	d := newDom(NodeGlTexture)
	d.Root.GlTexture = &GlTextureNode{Callback: cb, Data: data}
	return d
}

// WithChild appends one child.
func (d *Dom) WithChild(c *Dom) *Dom {
	d.Children = append(d.Children, c)
	return d
}

// WithChildren appends several children.
func (d *Dom) WithChildren(cs ...*Dom) *Dom {
	d.Children = append(d.Children, cs...)
	return d
}

// WithTag overrides the element name used by type selectors.
func (d *Dom) WithTag(tag string) *Dom {
	d.Root.Tag = tag
	return d
}

// WithInlineCSS adds properties that apply in the normal state.
func (d *Dom) WithInlineCSS(props ...css.CssProperty) *Dom {
	return d.WithInlineCSSState(css.PseudoNormal, props...)
}

// WithInlineCSSState adds properties that apply only in state.
func (d *Dom) WithInlineCSSState(state css.PseudoState, props ...css.CssProperty) *Dom {
	for _, p := range props {
		d.Root.InlineCSS = append(d.Root.InlineCSS, InlineProperty{State: state, Property: p})
	}
	return d
}

// WithInlineStyle parses a style attribute body. Invalid declarations
// are dropped and returned as diagnostics.
func (d *Dom) WithInlineStyle(style string) (*Dom, []parser.Diagnostic) {
	decls, diags := parser.ParseInlineStyle(style)
	for _, decl := range decls {
		d.Root.InlineCSS = append(d.Root.InlineCSS, InlineProperty{Property: decl.Property})
	}
	return d, diags
}

// WithIDsAndClasses sets the id and class lists.
func (d *Dom) WithIDsAndClasses(ids, classes []string) *Dom {
	d.Root.IDs = append(d.Root.IDs, ids...)
	d.Root.Classes = append(d.Root.Classes, classes...)
	return d
}

// WithID adds one id.
func (d *Dom) WithID(id string) *Dom {
	d.Root.IDs = append(d.Root.IDs, id)
	return d
}

// WithClass adds one class.
func (d *Dom) WithClass(class string) *Dom {
	d.Root.Classes = append(d.Root.Classes, class)
	return d
}

// WithAttribute sets a source attribute (colspan, rowspan, lang, ...).
func (d *Dom) WithAttribute(name, value string) *Dom {
	if d.Root.Attributes == nil {
		d.Root.Attributes = map[string]string{}
	}
	d.Root.Attributes[name] = value
	return d
}

// WithTabIndex sets the tab-order hint, which also makes the node focusable.
func (d *Dom) WithTabIndex(t TabIndex) *Dom {
	d.Root.TabIndex = &t
	return d
}

// WithFocusable toggles the focusable flag.
func (d *Dom) WithFocusable(f bool) *Dom {
	d.Root.Focusable = f
	return d
}

// WithDataset attaches a user payload.
func (d *Dom) WithDataset(data RefAny) *Dom {
	d.Root.Dataset = data
	return d
}

// WithCallback registers one handler.
func (d *Dom) WithCallback(filter EventFilter, data RefAny, cb Callback) *Dom {
	d.Root.Callbacks = append(d.Root.Callbacks, CallbackData{Filter: filter, Callback: cb, Data: data})
	return d
}

// WithCallbacks registers several handlers.
func (d *Dom) WithCallbacks(cbs ...CallbackData) *Dom {
	d.Root.Callbacks = append(d.Root.Callbacks, cbs...)
	return d
}

// NodeCount returns the number of nodes in the subtree.
func (d *Dom) NodeCount() int {
	n := 1
	for _, c := range d.Children {
		n += c.NodeCount()
	}
	return n
}

// NodeHierarchyItem holds the structural links of one node.
type NodeHierarchyItem struct {
	Parent          NodeId
	PreviousSibling NodeId
	NextSibling     NodeId
	FirstChild      NodeId
	LastChild       NodeId
}

// CompactDom is the arena form of a Dom: node records and their links,
// both indexed by NodeId in document (pre-)order.
type CompactDom struct {
	Nodes     []NodeData
	Hierarchy []NodeHierarchyItem
}

// Compact flattens the tree in document order. A root that is not a body
// is wrapped in one.
func (d *Dom) Compact() *CompactDom {
	root := d
	if root.Root.Type != NodeBody {
		root = Body().WithChild(d)
	}
	c := &CompactDom{
		Nodes:     make([]NodeData, 0, root.NodeCount()),
		Hierarchy: make([]NodeHierarchyItem, 0, root.NodeCount()),
	}
	c.push(root, NoNode)
	return c
}

func (c *CompactDom) push(d *Dom, parent NodeId) NodeId {
	id := NodeId(len(c.Nodes))
	c.Nodes = append(c.Nodes, d.Root)
	c.Hierarchy = append(c.Hierarchy, NodeHierarchyItem{
		Parent: parent, PreviousSibling: NoNode, NextSibling: NoNode, FirstChild: NoNode, LastChild: NoNode,
	})
	prev := NoNode
	for _, child := range d.Children {
		cid := c.push(child, id)
		c.Hierarchy[cid].PreviousSibling = prev
		if prev.IsValid() {
			c.Hierarchy[prev].NextSibling = cid
		} else {
			c.Hierarchy[id].FirstChild = cid
		}
		prev = cid
	}
	c.Hierarchy[id].LastChild = prev
	return id
}

// Len returns the number of nodes.
func (c *CompactDom) Len() int { return len(c.Nodes) }

// Root is always node 0.
func (c *CompactDom) Root() NodeId { return 0 }

// Node returns the record of id.
func (c *CompactDom) Node(id NodeId) *NodeData { return &c.Nodes[id] }

// Parent returns the parent of id, NoNode for the root.
func (c *CompactDom) Parent(id NodeId) NodeId { return c.Hierarchy[id].Parent }

// Children returns the direct children of id in order.
func (c *CompactDom) Children(id NodeId) []NodeId {
	var out []NodeId
	for ch := c.Hierarchy[id].FirstChild; ch.IsValid(); ch = c.Hierarchy[ch].NextSibling {
		out = append(out, ch)
	}
	return out
}

// Depth returns the number of ancestors of id.
func (c *CompactDom) Depth(id NodeId) int {
	d := 0
	for p := c.Hierarchy[id].Parent; p.IsValid(); p = c.Hierarchy[p].Parent {
		d++
	}
	return d
}

// SubtreeEnd returns one past the last descendant of id. Nodes are in
// pre-order, so the subtree of id is the range [id, SubtreeEnd(id)).
func (c *CompactDom) SubtreeEnd(id NodeId) NodeId {
	for n := id; n.IsValid(); n = c.Hierarchy[n].Parent {
		if next := c.Hierarchy[n].NextSibling; next.IsValid() {
			return next
		}
	}
	return NodeId(len(c.Nodes))
}

// FindByID returns the first node carrying the given id.
func (c *CompactDom) FindByID(id string) (NodeId, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].HasID(id) {
			return NodeId(i), true
		}
	}
	return NoNode, false
}
