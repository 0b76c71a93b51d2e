// internal/layout/dump.go
package layout

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

// Dump renders the box tree with the border box of every box. Text runs
// list their lines.
func (t *LayoutTree) Dump() string {
	if t == nil || t.Root == nil {
		return ""
	}
	tree := treeprint.New()
	tree.SetValue(describeBox(t.Root))
	dumpBoxes(tree, t.Root)
	return tree.String()
}

func dumpBoxes(branch treeprint.Tree, n *LayoutNode) {
	for _, c := range n.Children {
		if len(c.Children) > 0 {
			dumpBoxes(branch.AddBranch(describeBox(c)), c)
			continue
		}
		branch.AddNode(describeBox(c))
	}
}

func describeBox(n *LayoutNode) string {
	var b strings.Builder
	if n.IsAnonymous() {
		b.WriteString("anonymous")
	} else {
		b.WriteString(n.Node.String())
	}
	fmt.Fprintf(&b, " %s %s", n.BoxType, n.Dimensions.BorderBox())
	if n.IsOutOfFlow() {
		b.WriteString(" out-of-flow")
	}
	if len(n.Lines) > 0 {
		fmt.Fprintf(&b, " lines=%d", len(n.Lines))
	}
	return b.String()
}
