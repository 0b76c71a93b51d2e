// internal/style/dump.go
package style

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
)

// Dump renders the styled tree with each node's non-initial computed values.
func (s *StyledDom) Dump() string {
	if s.Len() == 0 {
		return ""
	}
	tree := treeprint.New()
	tree.SetValue(s.describe(0))
	s.dumpChildren(tree, 0)
	return tree.String()
}

func (s *StyledDom) dumpChildren(branch treeprint.Tree, node dom.NodeId) {
	for _, child := range s.Dom.Children(node) {
		if s.Dom.Hierarchy[child].FirstChild.IsValid() {
			s.dumpChildren(branch.AddBranch(s.describe(child)), child)
			continue
		}
		branch.AddNode(s.describe(child))
	}
}

func (s *StyledDom) describe(node dom.NodeId) string {
	data := s.Node(node)
	var b strings.Builder
	if data.IsText() {
		fmt.Fprintf(&b, "%s %q", node, data.Text)
		return b.String()
	}
	b.WriteString(node.String())
	b.WriteByte(' ')
	b.WriteString(data.TagName())
	for _, id := range data.IDs {
		b.WriteString("#" + id)
	}
	for _, class := range data.Classes {
		b.WriteString("." + class)
	}
	if mask := s.States[node].Mask(); mask != css.PseudoNormal {
		fmt.Fprintf(&b, " :%s", mask)
	}
	var props []string
	for _, kind := range propertyKinds {
		v := s.Cache.computed[node][kind]
		if v.Equal(kind.InitialValue()) || kind.IsInherited() {
			continue
		}
		props = append(props, v.String())
	}
	if len(props) > 0 {
		b.WriteString(" {" + strings.Join(props, "; ") + "}")
	}
	return b.String()
}
