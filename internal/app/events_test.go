// internal/app/events_test.go
package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxkit/internal/dom"
)

// record returns a callback appending name to calls.
func record(calls *[]string, name string, update dom.Update) dom.Callback {
	return func(dom.RefAny, dom.CallbackInfo) dom.Update {
		*calls = append(*calls, name)
		return update
	}
}

func TestEventDispatch(t *testing.T) {
	t.Run("hover callbacks get the cursor relative to the node", func(t *testing.T) {
		var local []float32
		_, w, _ := open(t, twoRowsCSS, func(*counter) *dom.Dom {
			return dom.Body().WithChildren(
				dom.Div().WithClass("a"),
				dom.Div().WithClass("b").WithCallback(dom.Hover(dom.EventLeftMouseDown), dom.RefAny{},
					func(_ dom.RefAny, info dom.CallbackInfo) dom.Update {
						p, ok := info.CursorRelativeToNode()
						require.True(t, ok)
						local = append(local, p.X, p.Y)
						assert.Equal(t, at(dom.RootDomId, 2), info.HitNode())
						assert.Equal(t, dom.EventLeftMouseDown, info.Event())
						return dom.UpdateDoNothing
					}))
		})
		send(t, w, click(pos(10, 150)))
		assert.Equal(t, []float32{10, 50}, local)
	})

	t.Run("stop propagation keeps ancestors from running", func(t *testing.T) {
		tests := []struct {
			name string
			stop bool
			want []string
		}{
			{name: "bubbles to the parent", want: []string{"inner", "outer"}},
			{name: "stopped at the child", stop: true, want: []string{"inner"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var calls []string
				_, w, _ := open(t, "body { margin: 0; } .outer { height: 200px; } .inner { height: 100px; }", func(*counter) *dom.Dom {
					inner := dom.Div().WithClass("inner").WithCallback(dom.Hover(dom.EventMouseDown), dom.RefAny{},
						func(_ dom.RefAny, info dom.CallbackInfo) dom.Update {
							calls = append(calls, "inner")
							if tt.stop {
								info.StopPropagation()
							}
							return dom.UpdateDoNothing
						})
					outer := dom.Div().WithClass("outer").
						WithCallback(dom.Hover(dom.EventMouseDown), dom.RefAny{}, record(&calls, "outer", dom.UpdateDoNothing)).
						WithChild(inner)
					return dom.Body().WithChild(outer)
				})
				send(t, w, click(pos(10, 10)))
				assert.Equal(t, tt.want, calls)
			})
		}
	})

	t.Run("not hover fires for nodes outside the cursor", func(t *testing.T) {
		var calls []string
		_, w, _ := open(t, twoRowsCSS, func(*counter) *dom.Dom {
			return dom.Body().WithChildren(
				dom.Div().WithClass("a").WithCallback(dom.NotHover(dom.EventLeftMouseDown), dom.RefAny{}, record(&calls, "outside", dom.UpdateDoNothing)),
				dom.Div().WithClass("b"))
		})
		send(t, w, click(pos(10, 50)))
		assert.Empty(t, calls)
		send(t, w, click(pos(10, 150)))
		assert.Equal(t, []string{"outside"}, calls)
	})

	t.Run("strongest update wins", func(t *testing.T) {
		var calls []string
		_, w, c := open(t, twoRowsCSS, func(*counter) *dom.Dom {
			return dom.Body().
				WithCallback(dom.Hover(dom.EventMouseDown), dom.RefAny{}, record(&calls, "body", dom.UpdateRefreshDom)).
				WithChild(dom.Div().WithClass("a").
					WithCallback(dom.Hover(dom.EventMouseDown), dom.RefAny{}, record(&calls, "a", dom.UpdateDoNothing)))
		})
		u := send(t, w, click(pos(10, 10)))
		assert.Equal(t, dom.UpdateRefreshDom, u)
		assert.Equal(t, []string{"a", "body"}, calls)
		assert.Equal(t, 2, c.layouts)
	})
}

func TestEventHover(t *testing.T) {
	var calls []string
	_, w, _ := open(t, twoRowsCSS+" .a:hover { background-color: red; }", func(*counter) *dom.Dom {
		return dom.Body().WithChildren(
			dom.Div().WithClass("a").WithCallbacks(
				dom.CallbackData{Filter: dom.Hover(dom.EventMouseEnter), Callback: record(&calls, "enter", dom.UpdateDoNothing)},
				dom.CallbackData{Filter: dom.Hover(dom.EventMouseLeave), Callback: record(&calls, "leave", dom.UpdateDoNothing)},
			),
			dom.Div().WithClass("b"))
	})
	a := at(dom.RootDomId, 1)

	// The window starts with the cursor at the origin, over a.
	require.True(t, w.Hovered(a))
	send(t, w, Event{Kind: dom.EventMouseOver, Position: pos(10, 150)})
	assert.False(t, w.Hovered(a))
	assert.True(t, w.Hovered(at(dom.RootDomId, 2)))
	s, _ := w.StyledDom(dom.RootDomId)
	assert.False(t, s.States[1].Hover)

	send(t, w, Event{Kind: dom.EventMouseOver, Position: pos(10, 50)})
	assert.True(t, w.Hovered(a))
	s, _ = w.StyledDom(dom.RootDomId)
	assert.True(t, s.States[1].Hover)
	assert.Equal(t, []string{"leave", "enter"}, calls)

	send(t, w, Event{Kind: dom.EventMouseOver, Position: pos(20, 60)})
	assert.Equal(t, []string{"leave", "enter"}, calls)
}

func TestEventActive(t *testing.T) {
	_, w, _ := open(t, twoRowsCSS, twoRows)
	send(t, w, click(pos(10, 50)))
	s, _ := w.StyledDom(dom.RootDomId)
	assert.True(t, s.States[1].Active)
	assert.True(t, s.States[0].Active)

	send(t, w, Event{Kind: dom.EventLeftMouseUp, Position: pos(10, 50)})
	s, _ = w.StyledDom(dom.RootDomId)
	assert.False(t, s.States[1].Active)
	assert.False(t, s.States[0].Active)
}

func TestEventFocus(t *testing.T) {
	focusable := func(calls *[]string) func(*counter) *dom.Dom {
		return func(*counter) *dom.Dom {
			return dom.Body().WithChildren(
				dom.Div().WithClass("a").WithFocusable(true),
				dom.Div().WithClass("b"),
				dom.Div().WithClass("b").WithCallbacks(
					dom.CallbackData{Filter: dom.Focus(dom.EventFocusReceived), Callback: record(calls, "received", dom.UpdateDoNothing)},
					dom.CallbackData{Filter: dom.Focus(dom.EventFocusLost), Callback: record(calls, "lost", dom.UpdateDoNothing)},
				))
		}
	}
	tab := Event{Kind: dom.EventVirtualKeyDown, Key: KeyTab}
	backTab := Event{Kind: dom.EventVirtualKeyDown, Key: KeyTab, Mods: Modifiers{Shift: true}}
	focused := func(w *Window) dom.DomNodeId {
		f, ok := w.FocusManager().Focused()
		require.True(t, ok)
		return f
	}

	t.Run("tab cycles through focusable nodes", func(t *testing.T) {
		var calls []string
		_, w, _ := open(t, twoRowsCSS, focusable(&calls))

		send(t, w, tab)
		assert.Equal(t, at(dom.RootDomId, 1), focused(w))
		send(t, w, tab)
		assert.Equal(t, at(dom.RootDomId, 3), focused(w))
		assert.Equal(t, []string{"received"}, calls)
		send(t, w, tab)
		assert.Equal(t, at(dom.RootDomId, 1), focused(w))
		assert.Equal(t, []string{"received", "lost"}, calls)
		send(t, w, backTab)
		assert.Equal(t, at(dom.RootDomId, 3), focused(w))

		s, _ := w.StyledDom(dom.RootDomId)
		assert.True(t, s.States[3].Focused)
		assert.False(t, s.States[1].Focused)
	})

	t.Run("click focuses and clicking elsewhere clears", func(t *testing.T) {
		var calls []string
		_, w, _ := open(t, twoRowsCSS, focusable(&calls))

		send(t, w, click(pos(10, 50)))
		assert.Equal(t, at(dom.RootDomId, 1), focused(w))

		send(t, w, click(pos(10, 150)))
		_, ok := w.FocusManager().Focused()
		assert.False(t, ok)
		s, _ := w.StyledDom(dom.RootDomId)
		assert.False(t, s.States[1].Focused)
	})

	t.Run("callbacks can request focus", func(t *testing.T) {
		_, w, _ := open(t, twoRowsCSS, func(*counter) *dom.Dom {
			return dom.Body().WithChildren(
				dom.Div().WithClass("a").WithCallback(dom.Hover(dom.EventLeftMouseDown), dom.RefAny{},
					func(_ dom.RefAny, info dom.CallbackInfo) dom.Update {
						info.RequestFocus(at(dom.RootDomId, 2))
						return dom.UpdateDoNothing
					}),
				dom.Div().WithClass("b").WithFocusable(true))
		})
		send(t, w, click(pos(10, 50)))
		assert.Equal(t, at(dom.RootDomId, 2), focused(w))
	})
}

func TestEventTextEditing(t *testing.T) {
	field := at(dom.RootDomId, 2)
	key := func(k Key, mods Modifiers) Event {
		return Event{Kind: dom.EventVirtualKeyDown, Key: k, Mods: mods}
	}
	typeText := func(s string) Event { return Event{Kind: dom.EventTextInput, Text: s} }
	ctrl := Modifiers{Ctrl: true}

	_, w, _ := open(t, "body { margin: 0; }", func(*counter) *dom.Dom {
		return dom.Body().WithChild(dom.Div().WithFocusable(true).WithChild(dom.Text("hello")))
	})

	// Without focus typing changes nothing.
	send(t, w, typeText("!"))
	assert.Equal(t, "hello", w.Text(field))

	send(t, w, key(KeyTab, Modifiers{}))
	send(t, w, typeText(" world"))
	assert.Equal(t, "hello world", w.Text(field))
	cursor, ok := w.SelectionManager().Cursor(field)
	require.True(t, ok)
	assert.Equal(t, 11, cursor)

	send(t, w, key(KeyZ, ctrl))
	assert.Equal(t, "hello", w.Text(field))
	cursor, _ = w.SelectionManager().Cursor(field)
	assert.Equal(t, 5, cursor)

	send(t, w, key(KeyY, ctrl))
	assert.Equal(t, "hello world", w.Text(field))

	send(t, w, key(KeyBackspace, Modifiers{}))
	assert.Equal(t, "hello worl", w.Text(field))

	send(t, w, key(KeyHome, Modifiers{Shift: true}))
	r, ok := w.SelectionManager().Selection(field)
	require.True(t, ok)
	assert.Equal(t, 0, r.Normalized().Start)
	assert.Equal(t, 10, r.Normalized().End)

	send(t, w, typeText("X"))
	assert.Equal(t, "X", w.Text(field))

	send(t, w, key(KeyZ, ctrl))
	assert.Equal(t, "hello worl", w.Text(field))
	undo, redo := w.UndoRedoManager().Depth(field)
	assert.Equal(t, 2, undo)
	assert.Equal(t, 1, redo)

	send(t, w, key(KeyLeft, ctrl))
	send(t, w, key(KeyA, ctrl))
	r, ok = w.SelectionManager().Selection(field)
	require.True(t, ok)
	assert.Equal(t, 10, r.Normalized().End)
}
