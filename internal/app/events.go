// internal/app/events.go
package app

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/hittest"
	"github.com/xkilldash9x/boxkit/internal/managers"
	"github.com/xkilldash9x/boxkit/internal/style"
)

// Key is a virtual key the window acts on.
type Key uint8

const (
	KeyNone Key = iota
	KeyTab
	KeyBackspace
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyA
	KeyY
	KeyZ
)

// Modifiers are the modifier keys held during a key event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
}

// Event is one input event delivered to a window.
type Event struct {
	Kind dom.EventKind
	// Position is the cursor in window coordinates for mouse and scroll
	// events.
	Position geom.LogicalPosition
	// Delta is the wheel movement of EventScroll.
	Delta geom.LogicalPosition
	// Text is the typed text of EventTextInput.
	Text string
	Key  Key
	Mods Modifiers
	// Size is the new window size of EventWindowResized.
	Size geom.LogicalSize
}

// scrollStep is the distance a scrollbar button scrolls.
const scrollStep = 40

// callbackInfo is the dom.CallbackInfo handed to event callbacks.
type callbackInfo struct {
	w        *Window
	event    dom.EventKind
	hit      dom.DomNodeId
	local    geom.LogicalPosition
	hasLocal bool
	stopped  bool
}

var _ dom.CallbackInfo = (*callbackInfo)(nil)

func (c *callbackInfo) HitNode() dom.DomNodeId { return c.hit }
func (c *callbackInfo) Event() dom.EventKind   { return c.event }
func (c *callbackInfo) StopPropagation()       { c.stopped = true }

func (c *callbackInfo) CursorRelativeToNode() (geom.LogicalPosition, bool) {
	return c.local, c.hasLocal
}

func (c *callbackInfo) RequestFocus(node dom.DomNodeId) {
	c.w.focus.RequestFocusChange(managers.FocusOn(node))
}

func (c *callbackInfo) ScrollTo(node dom.DomNodeId, offset geom.LogicalPosition) {
	c.w.scroll.ScrollTo(node, offset, c.w.scrollDuration, c.w.easing, c.w.now())
	c.w.invalidate(dirtyDisplay)
	if c.w.isHost(node) {
		c.w.invalidate(dirtyLayout)
	}
}

// newInfo builds the callback view for node n. Root DOM nodes get the
// cursor relative to their border box.
func (w *Window) newInfo(kind dom.EventKind, n dom.DomNodeId) *callbackInfo {
	info := &callbackInfo{w: w, event: kind, hit: n}
	if n.Dom != dom.RootDomId {
		return info
	}
	if tree, ok := w.trees[n.Dom]; ok {
		if r, ok := tree.Rect(n.Node); ok {
			info.local, info.hasLocal = w.cursor.Sub(r.Origin), true
		}
	}
	return info
}

// HandleEvent runs one event through the window: hit test, state managers,
// callbacks, restyle, then layout or display list rebuild as needed. The
// returned update tells the caller whether other windows must refresh.
func (w *Window) HandleEvent(ctx context.Context, ev Event) (dom.Update, error) {
	now := w.now()
	w.scroll.BeginFrame()

	var update dom.Update
	switch {
	case ev.Kind == dom.EventMouseOver:
		update = w.mouseMove(ev.Position)
	case ev.Kind.IsMouseDown():
		update = w.mouseDown(ev, now)
	case ev.Kind.IsMouseUp():
		update = w.mouseUp(ev)
	case ev.Kind == dom.EventScroll:
		update = w.wheel(ev, now)
	case ev.Kind == dom.EventTextInput:
		update = w.textInput(ev, now)
	case ev.Kind == dom.EventVirtualKeyDown:
		update = w.keyDown(ev, now)
	case ev.Kind == dom.EventWindowResized:
		w.opts.Size = ev.Size
		update = w.dispatch(ev.Kind, nil).Max(dom.UpdateRefreshDom)
	default:
		update = w.dispatch(ev.Kind, w.hits.HitTest(w.cursor))
	}

	if t, ok := w.focus.TakeFocusRequest(); ok {
		update = update.Max(w.moveFocus(t))
	}
	if update >= dom.UpdateRefreshDom {
		return update, w.Refresh(ctx)
	}
	return update, w.flush(ctx)
}

func (w *Window) mouseMove(p geom.LogicalPosition) dom.Update {
	w.cursor = p
	hits := w.hits.HitTest(p)
	entered, left := w.updateHover(hits)

	update := w.dispatch(dom.EventMouseOver, hits)
	for _, n := range entered {
		update = update.Max(w.fire(n, dom.FilterHover, dom.EventMouseEnter))
	}
	for _, n := range left {
		update = update.Max(w.fire(n, dom.FilterHover, dom.EventMouseLeave))
	}
	return update
}

// updateHover makes the hit nodes the hovered set and restyles the nodes
// that entered or left it.
func (w *Window) updateHover(hits []hittest.Hit) (entered, left []dom.DomNodeId) {
	current := make(map[dom.DomNodeId]struct{}, len(hits))
	for _, h := range hits {
		current[h.Node] = struct{}{}
		if _, ok := w.hovered[h.Node]; !ok {
			entered = append(entered, h.Node)
		}
	}
	for n := range w.hovered {
		if _, ok := current[n]; !ok {
			left = append(left, n)
		}
	}
	slices.SortFunc(entered, compareNodes)
	slices.SortFunc(left, compareNodes)
	w.hovered = current

	changes := make(map[dom.DomId]*style.HoverChange)
	change := func(d dom.DomId) *style.HoverChange {
		if changes[d] == nil {
			changes[d] = &style.HoverChange{}
		}
		return changes[d]
	}
	for _, n := range entered {
		change(n.Dom).Entered = append(change(n.Dom).Entered, n.Node)
	}
	for _, n := range left {
		change(n.Dom).Left = append(change(n.Dom).Left, n.Node)
	}
	inputs := make(map[dom.DomId]style.RestyleInput, len(changes))
	for d, c := range changes {
		inputs[d] = style.RestyleInput{Hover: c}
	}
	w.restyle(inputs)
	return entered, left
}

func (w *Window) mouseDown(ev Event, now time.Time) dom.Update {
	w.cursor = ev.Position
	if hit, ok := w.scroll.HitTestScrollbars(ev.Position); ok && hit.Node.Dom == dom.RootDomId {
		w.scrollbarClick(hit, now)
		return dom.UpdateDoNothing
	}

	hits := w.hits.HitTest(ev.Position)
	changes := make(map[dom.DomId]*style.ActiveChange)
	for _, h := range hits {
		if _, ok := w.active[h.Node]; ok {
			continue
		}
		w.active[h.Node] = struct{}{}
		if changes[h.Node.Dom] == nil {
			changes[h.Node.Dom] = &style.ActiveChange{}
		}
		changes[h.Node.Dom].Activated = append(changes[h.Node.Dom].Activated, h.Node.Node)
	}
	w.restyleActive(changes)

	update := w.clickFocus(hits)
	update = update.Max(w.dispatch(ev.Kind, hits))
	if ev.Kind != dom.EventMouseDown {
		update = update.Max(w.dispatch(dom.EventMouseDown, hits))
	}
	return update
}

func (w *Window) mouseUp(ev Event) dom.Update {
	w.cursor = ev.Position
	changes := make(map[dom.DomId]*style.ActiveChange)
	for n := range w.active {
		if changes[n.Dom] == nil {
			changes[n.Dom] = &style.ActiveChange{}
		}
		changes[n.Dom].Deactivated = append(changes[n.Dom].Deactivated, n.Node)
	}
	clear(w.active)
	w.restyleActive(changes)

	hits := w.hits.HitTest(ev.Position)
	update := w.dispatch(ev.Kind, hits)
	if ev.Kind != dom.EventMouseUp {
		update = update.Max(w.dispatch(dom.EventMouseUp, hits))
	}
	return update
}

func (w *Window) restyleActive(changes map[dom.DomId]*style.ActiveChange) {
	inputs := make(map[dom.DomId]style.RestyleInput, len(changes))
	for d, c := range changes {
		slices.Sort(c.Activated)
		slices.Sort(c.Deactivated)
		inputs[d] = style.RestyleInput{Active: c}
	}
	w.restyle(inputs)
}

// clickFocus focuses the front-most focusable node under the cursor, or
// clears focus when there is none.
func (w *Window) clickFocus(hits []hittest.Hit) dom.Update {
	for _, h := range hits {
		if s, ok := w.doms[h.Node.Dom]; ok && s.Node(h.Node.Node).IsFocusable() {
			return w.moveFocus(managers.FocusOn(h.Node))
		}
	}
	if _, ok := w.focus.Focused(); ok {
		return w.moveFocus(managers.NoFocus)
	}
	return dom.UpdateDoNothing
}

// moveFocus applies a focus target, restyles both ends and fires the
// focus lost and received callbacks.
func (w *Window) moveFocus(target managers.FocusTarget) dom.Update {
	tr, err := w.focus.Apply(target, w.doms)
	if err != nil || !tr.Changed() {
		return dom.UpdateDoNothing
	}
	w.restyle(tr.RestyleInputs())

	update := dom.UpdateDoNothing
	if tr.HasLost {
		update = update.Max(w.fire(tr.Lost, dom.FilterFocus, dom.EventFocusLost))
	}
	if tr.HasGained {
		update = update.Max(w.fire(tr.Gained, dom.FilterFocus, dom.EventFocusReceived))
	}
	return update
}

func (w *Window) wheel(ev Event, now time.Time) dom.Update {
	w.cursor = ev.Position
	hits := w.hits.HitTest(ev.Position)
	chain := make([]dom.DomNodeId, len(hits))
	for i, h := range hits {
		chain[i] = h.Node
	}
	if n, ok := w.scroll.ScrollWheel(chain, ev.Delta, now); ok {
		w.invalidate(dirtyDisplay)
		if w.isHost(n) {
			w.invalidate(dirtyLayout)
		}
	}
	return w.dispatch(dom.EventScroll, hits)
}

func (w *Window) scrollbarClick(hit managers.ScrollbarHit, now time.Time) {
	bar, ok := w.scroll.Scrollbar(hit.Node, hit.Orientation)
	if !ok {
		return
	}
	thumb := bar.Thumb()
	pos, thumbStart, page := hit.Local.Y, thumb.Origin.Y, bar.Track.Size.Height
	if hit.Orientation == managers.ScrollbarHorizontal {
		pos, thumbStart, page = hit.Local.X, thumb.Origin.X, bar.Track.Size.Width
	}

	var delta float32
	switch hit.Component {
	case managers.ScrollbarStartButton:
		delta = -scrollStep
	case managers.ScrollbarEndButton:
		delta = scrollStep
	case managers.ScrollbarTrack:
		delta = page
		if pos < thumbStart {
			delta = -page
		}
	default:
		return
	}
	d := geom.LogicalPosition{Y: delta}
	if hit.Orientation == managers.ScrollbarHorizontal {
		d = geom.LogicalPosition{X: delta}
	}
	w.scroll.ScrollBy(hit.Node, d, w.scrollDuration, w.easing, now)
	w.invalidate(dirtyDisplay)
}

// dispatch runs the callbacks registered for kind. Hover callbacks bubble
// from the front-most hit node backwards until one stops propagation;
// then the focused node's focus callbacks run, then every Not and Window
// callback in document order.
func (w *Window) dispatch(kind dom.EventKind, hits []hittest.Hit) dom.Update {
	update := dom.UpdateDoNothing
	hit := make(map[dom.DomNodeId]struct{}, len(hits))
	for _, h := range hits {
		hit[h.Node] = struct{}{}
	}

	for _, h := range hits {
		info := &callbackInfo{w: w, event: kind, hit: h.Node, local: h.Local, hasLocal: true}
		update = update.Max(w.run(h.Node, info, func(f dom.EventFilter) bool { return f.Kind == dom.FilterHover }))
		if info.stopped {
			break
		}
	}

	focused, hasFocus := w.focus.Focused()
	if hasFocus {
		update = update.Max(w.fire(focused, dom.FilterFocus, kind))
	}

	for _, d := range slices.Sorted(maps.Keys(w.doms)) {
		s := w.doms[d]
		for i := range s.Len() {
			n := dom.DomNodeId{Dom: d, Node: dom.NodeId(i)}
			if len(s.Node(n.Node).Callbacks) == 0 {
				continue
			}
			_, isHit := hit[n]
			isFocused := hasFocus && focused == n
			update = update.Max(w.run(n, w.newInfo(kind, n), func(f dom.EventFilter) bool {
				if f.Kind != dom.FilterNot {
					return false
				}
				if f.NotOf == dom.FilterFocus {
					return !isFocused
				}
				return !isHit
			}))
			// Window callbacks see the root of their DOM as the hit node.
			root := w.newInfo(kind, dom.DomNodeId{Dom: d, Node: s.Dom.Root()})
			update = update.Max(w.run(n, root, func(f dom.EventFilter) bool { return f.Kind == dom.FilterWindow }))
		}
	}
	return update
}

// fire runs the callbacks of one node whose filter kind matches.
func (w *Window) fire(n dom.DomNodeId, kind dom.FilterKind, event dom.EventKind) dom.Update {
	return w.run(n, w.newInfo(event, n), func(f dom.EventFilter) bool { return f.Kind == kind })
}

func (w *Window) run(n dom.DomNodeId, info *callbackInfo, match func(dom.EventFilter) bool) dom.Update {
	s, ok := w.doms[n.Dom]
	if !ok || int(n.Node) >= s.Len() {
		return dom.UpdateDoNothing
	}
	update := dom.UpdateDoNothing
	for _, cb := range s.Node(n.Node).Callbacks {
		if cb.Filter.Event != info.event || !match(cb.Filter) {
			continue
		}
		update = update.Max(w.callHandler(cb, info))
	}
	return update
}

func compareNodes(a, b dom.DomNodeId) int {
	if c := cmp.Compare(a.Dom, b.Dom); c != 0 {
		return c
	}
	return cmp.Compare(a.Node, b.Node)
}

// -- Text editing --

// editTarget returns the text node the focused node edits: the node
// itself when it is text, else its first text child. A node edited for
// the first time gets its cursor at the end.
func (w *Window) editTarget(now time.Time) (dom.DomNodeId, bool) {
	f, ok := w.focus.Focused()
	if !ok {
		return dom.DomNodeId{}, false
	}
	s := w.doms[f.Dom]
	target := f
	if !s.Node(f.Node).IsText() {
		found := false
		for _, c := range s.Dom.Children(f.Node) {
			if s.Node(c).IsText() {
				target, found = dom.DomNodeId{Dom: f.Dom, Node: c}, true
				break
			}
		}
		if !found {
			return dom.DomNodeId{}, false
		}
	}
	if _, ok := w.selection.Cursor(target); !ok {
		text := s.Node(target.Node).Text
		w.selection.Restore(managers.NodeStateSnapshot{Node: target, Text: text, Cursor: len(text), Timestamp: now})
	}
	return target, true
}

// Text returns the current text of a text node.
func (w *Window) Text(n dom.DomNodeId) string {
	s, ok := w.doms[n.Dom]
	if !ok || int(n.Node) >= s.Len() {
		return ""
	}
	return s.Node(n.Node).Text
}

// edit applies a changeset to its node, records text edits for undo and
// moves the cursor.
func (w *Window) edit(c managers.TextChangeset, now time.Time) {
	node := w.doms[c.Target.Dom].Node(c.Target.Node)
	pre := w.selection.Snapshot(c.Target, node.Text, now)
	post, err := managers.ApplyChangeset(pre, c)
	if err != nil {
		w.logger.Warn("Text edit rejected.", zap.Stringer("node", c.Target), zap.Error(err))
		return
	}
	if c.MutatesText() {
		w.undo.RecordOperation(c, pre)
	}
	w.selection.Apply(c)
	w.setText(c.Target, post.Text)
}

func (w *Window) setText(n dom.DomNodeId, text string) {
	node := w.doms[n.Dom].Node(n.Node)
	if node.Text != text {
		node.Text = text
		w.invalidate(dirtyLayout)
	}
}

func (w *Window) textInput(ev Event, now time.Time) dom.Update {
	if n, ok := w.editTarget(now); ok && ev.Text != "" {
		w.edit(w.selection.Insert(n, w.Text(n), ev.Text, now), now)
	}
	return w.dispatch(ev.Kind, w.hits.HitTest(w.cursor))
}

// keyDown delivers the key to callbacks first, then performs the default
// action: tab traversal or editing of the focused text.
func (w *Window) keyDown(ev Event, now time.Time) dom.Update {
	update := w.dispatch(ev.Kind, w.hits.HitTest(w.cursor))
	if ev.Key == KeyTab {
		target := managers.FocusNext
		if ev.Mods.Shift {
			target = managers.FocusPrevious
		}
		return update.Max(w.moveFocus(target))
	}

	n, ok := w.editTarget(now)
	if !ok {
		return update
	}
	text := w.Text(n)
	switch {
	case ev.Key == KeyBackspace:
		if c, ok := w.selection.DeleteBackward(n, text, now); ok {
			w.edit(c, now)
		}
	case ev.Key == KeyLeft, ev.Key == KeyRight, ev.Key == KeyHome, ev.Key == KeyEnd:
		w.edit(w.selection.Move(n, text, movementFor(ev), ev.Mods.Shift, now), now)
	case ev.Mods.Ctrl && ev.Key == KeyA:
		w.edit(w.selection.SelectAll(n, text, now), now)
	case ev.Mods.Ctrl && (ev.Key == KeyY || ev.Key == KeyZ && ev.Mods.Shift):
		if snap, ok := w.undo.Redo(n); ok {
			w.selection.Restore(snap)
			w.setText(n, snap.Text)
		}
	case ev.Mods.Ctrl && ev.Key == KeyZ:
		if snap, ok := w.undo.Undo(n); ok {
			w.selection.Restore(snap)
			w.setText(n, snap.Text)
		}
	}
	return update
}

func movementFor(ev Event) managers.CursorMovement {
	switch ev.Key {
	case KeyLeft:
		if ev.Mods.Ctrl {
			return managers.MoveWordLeft
		}
		return managers.MoveLeft
	case KeyRight:
		if ev.Mods.Ctrl {
			return managers.MoveWordRight
		}
		return managers.MoveRight
	case KeyHome:
		if ev.Mods.Ctrl {
			return managers.MoveDocumentStart
		}
		return managers.MoveLineStart
	}
	if ev.Mods.Ctrl {
		return managers.MoveDocumentEnd
	}
	return managers.MoveLineEnd
}
