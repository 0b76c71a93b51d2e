// internal/dom/node.go
package dom

import (
	"strings"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// NodeType is the kind of content a node holds.
type NodeType uint8

const (
	NodeBody NodeType = iota
	NodeDiv
	NodeText
	NodeImage
	NodeIFrame
	NodeGlTexture
)

var nodeTypeNames = []string{"body", "div", "text", "img", "iframe", "gltexture"}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "unknown"
}

// ImageRef names a decoded image and its intrinsic size.
type ImageRef struct {
	Name string
	Size geom.LogicalSize
}

// IFrameNode is the callback that renders the nested DOM.
type IFrameNode struct {
	Callback IFrameCallback
	Data     RefAny
}

// GlTextureNode is a texture callback plus its data.
type GlTextureNode struct {
	Callback GlTextureCallback
	Data     RefAny
}

// TabIndexKind selects how a node participates in tab traversal.
type TabIndexKind uint8

const (
	// TabIndexAuto is focusable in document order.
	TabIndexAuto TabIndexKind = iota
	// TabIndexOverrideInParent orders the node among its siblings.
	TabIndexOverrideInParent
	// TabIndexNoKeyboardFocus is focusable by click but skipped by tab.
	TabIndexNoKeyboardFocus
)

// TabIndex is the tab-order hint of a node.
type TabIndex struct {
	Kind  TabIndexKind
	Index uint32
}

// InlineProperty is one inline declaration, active in State.
type InlineProperty struct {
	State    css.PseudoState
	Property css.CssProperty
}

// NodeData is one record of the DOM arena.
type NodeData struct {
	Type NodeType
	// Tag is the source element name for nodes built from markup; empty
	// nodes use Type for selector matching.
	Tag        string
	Text       string
	Image      ImageRef
	IFrame     *IFrameNode
	GlTexture  *GlTextureNode
	IDs        []string
	Classes    []string
	Attributes map[string]string
	InlineCSS  []InlineProperty
	TabIndex   *TabIndex
	Focusable  bool
	Dataset    RefAny
	Callbacks  []CallbackData
}

// TagName is the element name used by type selectors.
func (n *NodeData) TagName() string {
	if n.Tag != "" {
		return n.Tag
	}
	return n.Type.String()
}

// IsText reports whether the node is a text run (not an element).
func (n *NodeData) IsText() bool { return n.Type == NodeText }

// HasID reports whether id is among the node's ids.
func (n *NodeData) HasID(id string) bool {
	for _, v := range n.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// HasClass reports whether class is among the node's classes.
func (n *NodeData) HasClass(class string) bool {
	for _, v := range n.Classes {
		if v == class {
			return true
		}
	}
	return false
}

// Attribute returns a source attribute. id and class are synthesised
// from the id and class lists.
func (n *NodeData) Attribute(name string) (string, bool) {
	switch name {
	case "id":
		if len(n.IDs) > 0 {
			return strings.Join(n.IDs, " "), true
		}
	case "class":
		if len(n.Classes) > 0 {
			return strings.Join(n.Classes, " "), true
		}
	}
	v, ok := n.Attributes[name]
	return v, ok
}

// IsFocusable reports whether keyboard or pointer focus can land on the node.
func (n *NodeData) IsFocusable() bool {
	if n.TabIndex != nil || n.Focusable {
		return true
	}
	for _, cb := range n.Callbacks {
		if cb.Filter.IsFocusCallback() {
			return true
		}
	}
	return false
}

// IsTabbable reports whether tab traversal may stop on the node.
func (n *NodeData) IsTabbable() bool {
	if n.TabIndex != nil && n.TabIndex.Kind == TabIndexNoKeyboardFocus {
		return false
	}
	return n.IsFocusable()
}

// NeedsTag reports whether the node must be hit-testable.
func (n *NodeData) NeedsTag() bool {
	return len(n.Callbacks) > 0 || n.IsFocusable() || n.Type == NodeIFrame
}
