// internal/css/pseudo.go
package css

import "strings"

// PseudoState is a set of interactive pseudo-class bits. The zero value is
// the normal (non-interactive) state.
type PseudoState uint8

const (
	PseudoHover PseudoState = 1 << iota
	PseudoActive
	PseudoFocus
	PseudoChecked
	PseudoBackdrop
	PseudoDragging
	PseudoDragOver
)

// PseudoNormal is the state with no interactive bits set.
const PseudoNormal PseudoState = 0

var pseudoStateNames = []struct {
	bit  PseudoState
	name string
}{
	{PseudoHover, "hover"},
	{PseudoActive, "active"},
	{PseudoFocus, "focus"},
	{PseudoChecked, "checked"},
	{PseudoBackdrop, "backdrop"},
	{PseudoDragging, "dragging"},
	{PseudoDragOver, "dragover"},
}

// PseudoStateFromName maps an interactive pseudo-class name to its bit.
func PseudoStateFromName(name string) (PseudoState, bool) {
	name = strings.ToLower(name)
	for _, p := range pseudoStateNames {
		if p.name == name {
			return p.bit, true
		}
	}
	return 0, false
}

// Has reports whether every bit of o is set in s.
func (s PseudoState) Has(o PseudoState) bool { return s&o == o }

func (s PseudoState) String() string {
	if s == PseudoNormal {
		return "normal"
	}
	var parts []string
	for _, p := range pseudoStateNames {
		if s&p.bit != 0 {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, "|")
}
