// internal/dom/ids.go
package dom

import (
	"fmt"
	"math"
)

// NodeId is a dense index into a DOM arena.
type NodeId uint32

// NoNode marks an absent hierarchy link.
const NoNode NodeId = math.MaxUint32

// IsValid reports whether the id refers to a node.
func (n NodeId) IsValid() bool { return n != NoNode }

func (n NodeId) String() string {
	if n == NoNode {
		return "none"
	}
	return fmt.Sprintf("%d", uint32(n))
}

// DomId identifies one DOM; 0 is the root DOM of a window and nested
// iframe DOMs receive ids from the iframe manager.
type DomId uint32

// RootDomId is the id of a window's top-level DOM.
const RootDomId DomId = 0

// DomNodeId addresses a node across nested DOMs.
type DomNodeId struct {
	Dom  DomId
	Node NodeId
}

func (d DomNodeId) String() string { return fmt.Sprintf("%d:%s", d.Dom, d.Node) }

// TagId is assigned to nodes that can be the target of a hit test.
type TagId uint64
