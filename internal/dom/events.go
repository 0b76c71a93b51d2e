// internal/dom/events.go
package dom

import "github.com/xkilldash9x/boxkit/internal/geom"

// EventKind is a concrete input event.
type EventKind uint8

const (
	EventMouseOver EventKind = iota
	EventMouseDown
	EventLeftMouseDown
	EventRightMouseDown
	EventMiddleMouseDown
	EventMouseUp
	EventLeftMouseUp
	EventRightMouseUp
	EventMiddleMouseUp
	EventMouseEnter
	EventMouseLeave
	EventScroll
	EventScrollStart
	EventScrollEnd
	EventTextInput
	EventVirtualKeyDown
	EventVirtualKeyUp
	EventFocusReceived
	EventFocusLost
	EventWindowResized
	EventWindowClose
)

var eventKindNames = []string{
	"MouseOver", "MouseDown", "LeftMouseDown", "RightMouseDown", "MiddleMouseDown",
	"MouseUp", "LeftMouseUp", "RightMouseUp", "MiddleMouseUp", "MouseEnter", "MouseLeave",
	"Scroll", "ScrollStart", "ScrollEnd", "TextInput", "VirtualKeyDown", "VirtualKeyUp",
	"FocusReceived", "FocusLost", "WindowResized", "WindowClose",
}

func (e EventKind) String() string {
	if int(e) < len(eventKindNames) {
		return eventKindNames[e]
	}
	return "Unknown"
}

// IsMouseDown reports any button press.
func (e EventKind) IsMouseDown() bool {
	return e >= EventMouseDown && e <= EventMiddleMouseDown
}

// IsMouseUp reports any button release.
func (e EventKind) IsMouseUp() bool {
	return e >= EventMouseUp && e <= EventMiddleMouseUp
}

// FilterKind selects when a callback fires relative to the node.
type FilterKind uint8

const (
	// FilterHover fires while the cursor is over the node.
	FilterHover FilterKind = iota
	// FilterFocus fires while the node has keyboard focus.
	FilterFocus
	// FilterNot fires when the hover or focus condition does NOT hold.
	FilterNot
	// FilterWindow fires for window-level events; the hit node is the root.
	FilterWindow
)

// EventFilter pairs a filter kind with a concrete event.
type EventFilter struct {
	Kind  FilterKind
	Event EventKind
	// NotOf is FilterHover or FilterFocus when Kind is FilterNot.
	NotOf FilterKind
}

func Hover(e EventKind) EventFilter    { return EventFilter{Kind: FilterHover, Event: e} }
func Focus(e EventKind) EventFilter    { return EventFilter{Kind: FilterFocus, Event: e} }
func Window(e EventKind) EventFilter   { return EventFilter{Kind: FilterWindow, Event: e} }
func NotHover(e EventKind) EventFilter { return EventFilter{Kind: FilterNot, Event: e, NotOf: FilterHover} }
func NotFocus(e EventKind) EventFilter { return EventFilter{Kind: FilterNot, Event: e, NotOf: FilterFocus} }

// IsFocusCallback reports whether the filter makes its node focusable.
func (f EventFilter) IsFocusCallback() bool { return f.Kind == FilterFocus }

// Update tells the application what to do after a callback.
type Update uint8

const (
	UpdateDoNothing Update = iota
	UpdateRefreshDom
	UpdateRefreshDomAllWindows
)

func (u Update) String() string {
	switch u {
	case UpdateRefreshDom:
		return "RefreshDom"
	case UpdateRefreshDomAllWindows:
		return "RefreshDomAllWindows"
	}
	return "DoNothing"
}

// Max returns the stronger of two updates.
func (u Update) Max(o Update) Update { return max(u, o) }

// CallbackInfo is the view a callback has of the window it runs in.
type CallbackInfo interface {
	HitNode() DomNodeId
	CursorRelativeToNode() (geom.LogicalPosition, bool)
	Event() EventKind
	// RequestFocus asks for focus to move to node after the callback returns.
	RequestFocus(node DomNodeId)
	// ScrollTo animates the scroll offset of node.
	ScrollTo(node DomNodeId, offset geom.LogicalPosition)
	StopPropagation()
}

// Callback is an event handler bound to a node.
type Callback func(data RefAny, info CallbackInfo) Update

// CallbackData is one registered handler.
type CallbackData struct {
	Filter   EventFilter
	Callback Callback
	Data     RefAny
}

// EdgeType names the side of a scroll container.
type EdgeType uint8

const (
	EdgeTop EdgeType = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

func (e EdgeType) String() string {
	return [...]string{"top", "bottom", "left", "right"}[e]
}

// IFrameReasonKind enumerates why an iframe callback is invoked.
type IFrameReasonKind uint8

const (
	ReasonInitialRender IFrameReasonKind = iota
	ReasonBoundsExpanded
	ReasonEdgeScrolled
)

// IFrameCallbackReason is the trigger passed to an iframe callback.
type IFrameCallbackReason struct {
	Kind IFrameReasonKind
	Edge EdgeType // ReasonEdgeScrolled
}

func (r IFrameCallbackReason) String() string {
	switch r.Kind {
	case ReasonBoundsExpanded:
		return "BoundsExpanded"
	case ReasonEdgeScrolled:
		return "EdgeScrolled(" + r.Edge.String() + ")"
	}
	return "InitialRender"
}

// IFrameCallbackInfo describes the host node at invocation time.
type IFrameCallbackInfo struct {
	Reason       IFrameCallbackReason
	Bounds       geom.LogicalSize
	ScrollOffset geom.LogicalPosition
}

// IFrameCallbackReturn is the nested DOM plus its scroll geometry.
type IFrameCallbackReturn struct {
	Dom               *Dom
	CSS               string
	ScrollSize        geom.LogicalSize
	VirtualScrollSize geom.LogicalSize
}

// IFrameCallback renders the contents of an iframe node.
type IFrameCallback func(data RefAny, info IFrameCallbackInfo) IFrameCallbackReturn

// GlTextureCallback renders into an externally composited texture.
type GlTextureCallback func(data RefAny, size geom.LogicalSize) ImageRef
