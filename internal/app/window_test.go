// internal/app/window_test.go
package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

const twoRowsCSS = "body { margin: 0; } .a, .b { height: 100px; }"

func twoRows(*counter) *dom.Dom {
	return dom.Body().WithChildren(dom.Div().WithClass("a"), dom.Div().WithClass("b"))
}

func TestWindowPipeline(t *testing.T) {
	t.Run("first frame is laid out and hit testable", func(t *testing.T) {
		_, w, c := open(t, twoRowsCSS, twoRows)

		require.Equal(t, 1, c.layouts)
		assert.Equal(t, windowSize, c.infos[0].WindowSize)
		assert.Equal(t, ThemeLight, c.infos[0].Theme)

		s, ok := w.StyledDom(dom.RootDomId)
		require.True(t, ok)
		assert.Equal(t, 3, s.Len())
		_, ok = w.LayoutTree(dom.RootDomId)
		assert.True(t, ok)
		_, ok = w.DisplayList(dom.RootDomId)
		assert.True(t, ok)

		hits := w.HitTest(pos(10, 150))
		require.NotEmpty(t, hits)
		assert.Equal(t, at(dom.RootDomId, 2), hits[0].Node)
		assert.Equal(t, pos(10, 50), hits[0].Local)
	})

	t.Run("nil layout result renders an empty body", func(t *testing.T) {
		_, w, _ := open(t, "", func(*counter) *dom.Dom { return nil })
		s, ok := w.StyledDom(dom.RootDomId)
		require.True(t, ok)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("every window gets its own id", func(t *testing.T) {
		a, w1, _ := open(t, "", twoRows)
		w2, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize})
		require.NoError(t, err)
		assert.NotEqual(t, w1.ID(), w2.ID())
		assert.Equal(t, []*Window{w1, w2}, a.Windows())
	})
}

func TestWindowRefresh(t *testing.T) {
	t.Run("callback requesting refresh rebuilds the dom", func(t *testing.T) {
		_, w, c := open(t, twoRowsCSS, func(c *counter) *dom.Dom {
			return dom.Body().WithChildren(
				dom.Div().WithClass("a"),
				dom.Div().WithClass("b").WithCallback(dom.Hover(dom.EventLeftMouseDown), dom.NewRefAny(c),
					func(data dom.RefAny, _ dom.CallbackInfo) dom.Update {
						c, _ := dom.Downcast[*counter](data)
						c.clicks++
						return dom.UpdateRefreshDom
					}))
		})

		u := send(t, w, click(pos(10, 150)))
		assert.Equal(t, dom.UpdateRefreshDom, u)
		assert.Equal(t, 1, c.clicks)
		assert.Equal(t, 2, c.layouts)

		u = send(t, w, click(pos(10, 50)))
		assert.Equal(t, dom.UpdateDoNothing, u)
		assert.Equal(t, 2, c.layouts)
	})

	t.Run("focus survives a refresh", func(t *testing.T) {
		_, w, _ := open(t, twoRowsCSS, func(*counter) *dom.Dom {
			return dom.Body().WithChildren(
				dom.Div().WithClass("a").WithFocusable(true),
				dom.Div().WithClass("b"))
		})
		send(t, w, Event{Kind: dom.EventVirtualKeyDown, Key: KeyTab})
		require.NoError(t, w.Refresh(context.Background()))

		f, ok := w.FocusManager().Focused()
		require.True(t, ok)
		assert.Equal(t, at(dom.RootDomId, 1), f)
		s, _ := w.StyledDom(dom.RootDomId)
		assert.True(t, s.States[1].Focused)
	})

	t.Run("resize lays out at the new size", func(t *testing.T) {
		var resized int
		_, w, c := open(t, twoRowsCSS, func(*counter) *dom.Dom {
			return twoRows(nil).WithCallback(dom.Window(dom.EventWindowResized), dom.RefAny{},
				func(_ dom.RefAny, info dom.CallbackInfo) dom.Update {
					assert.Equal(t, at(dom.RootDomId, 0), info.HitNode())
					resized++
					return dom.UpdateDoNothing
				})
		})
		size := geom.LogicalSize{Width: 400, Height: 300}
		u := send(t, w, Event{Kind: dom.EventWindowResized, Size: size})

		assert.Equal(t, dom.UpdateRefreshDom, u)
		assert.Equal(t, 1, resized)
		assert.Equal(t, size, w.Options().Size)
		require.Len(t, c.infos, 2)
		assert.Equal(t, size, c.infos[1].WindowSize)
		assert.Empty(t, w.HitTest(pos(500, 10)))
	})
}

const scrollerCSS = "body { margin: 0; } .scroller { height: 100px; overflow-y: scroll; } .tall { height: 500px; }"

func scroller(*counter) *dom.Dom {
	return dom.Body().WithChild(dom.Div().WithClass("scroller").WithChild(dom.Div().WithClass("tall")))
}

func TestWindowScrolling(t *testing.T) {
	t.Run("wheel scrolls the container under the cursor", func(t *testing.T) {
		_, w, _ := open(t, scrollerCSS, scroller)
		send(t, w, Event{Kind: dom.EventScroll, Position: pos(10, 10), Delta: pos(0, 30)})

		assert.Equal(t, pos(0, 30), w.ScrollManager().Offset(at(dom.RootDomId, 1)))
		hits := w.HitTest(pos(10, 10))
		require.NotEmpty(t, hits)
		assert.Equal(t, at(dom.RootDomId, 2), hits[0].Node)
		assert.Equal(t, pos(10, 40), hits[0].Local)
	})

	t.Run("wheel is clamped to the content", func(t *testing.T) {
		_, w, _ := open(t, scrollerCSS, scroller)
		send(t, w, Event{Kind: dom.EventScroll, Position: pos(10, 10), Delta: pos(0, 1000)})
		assert.Equal(t, pos(0, 400), w.ScrollManager().Offset(at(dom.RootDomId, 1)))
	})

	t.Run("scrollbar button scrolls one step", func(t *testing.T) {
		_, w, _ := open(t, scrollerCSS, scroller)
		send(t, w, click(pos(795, 95)))
		assert.Equal(t, pos(0, scrollStep), w.ScrollManager().Offset(at(dom.RootDomId, 1)))
		_, focused := w.FocusManager().Focused()
		assert.False(t, focused)
	})

	t.Run("programmatic scroll animates over frames", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		cfg := testConfig()
		cfg.ManagersCfg.ScrollDefaultDuration = 100 * time.Millisecond
		build := func(c *counter) *dom.Dom {
			return scroller(c).WithCallback(dom.Window(dom.EventTextInput), dom.RefAny{},
				func(_ dom.RefAny, info dom.CallbackInfo) dom.Update {
					info.ScrollTo(at(dom.RootDomId, 1), pos(0, 200))
					return dom.UpdateDoNothing
				})
		}
		a := New(cfg, dom.NewRefAny(&counter{}), countingLayout(build), nil, WithClock(func() time.Time { return start }))
		w, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize, CSS: scrollerCSS})
		require.NoError(t, err)

		send(t, w, Event{Kind: dom.EventTextInput, Text: "x"})
		assert.True(t, w.ScrollManager().Animating())
		assert.Equal(t, pos(0, 0), w.ScrollManager().Offset(at(dom.RootDomId, 1)))

		require.NoError(t, w.Tick(context.Background(), start.Add(50*time.Millisecond)))
		assert.InDelta(t, 100, w.ScrollManager().Offset(at(dom.RootDomId, 1)).Y, 0.5)

		require.NoError(t, w.Tick(context.Background(), start.Add(time.Second)))
		assert.Equal(t, pos(0, 200), w.ScrollManager().Offset(at(dom.RootDomId, 1)))
		assert.False(t, w.ScrollManager().Animating())
	})
}

type frameLog struct {
	infos []dom.IFrameCallbackInfo
}

func rowsFrame(data dom.RefAny, info dom.IFrameCallbackInfo) dom.IFrameCallbackReturn {
	log, _ := dom.Downcast[*frameLog](data)
	log.infos = append(log.infos, info)
	rows := make([]*dom.Dom, 10)
	for i := range rows {
		rows[i] = dom.Div().WithClass("row")
	}
	return dom.IFrameCallbackReturn{
		Dom:               dom.Body().WithChildren(rows...),
		CSS:               "body { margin: 0; } .row { height: 50px; }",
		ScrollSize:        geom.LogicalSize{Width: 400, Height: 2000},
		VirtualScrollSize: geom.LogicalSize{Width: 400, Height: 10000},
	}
}

const frameCSS = "body { margin: 0; } .frame { width: 400px; height: 300px; }"

func TestWindowIFrames(t *testing.T) {
	openFrame := func(t *testing.T, cb dom.IFrameCallback) (*Window, *frameLog) {
		log := &frameLog{}
		_, w, _ := open(t, frameCSS, func(*counter) *dom.Dom {
			return dom.Body().WithChild(dom.IFrame(dom.NewRefAny(log), cb).WithClass("frame"))
		})
		return w, log
	}
	host := at(dom.RootDomId, 1)

	t.Run("initial render builds a nested dom", func(t *testing.T) {
		w, log := openFrame(t, rowsFrame)

		require.Len(t, log.infos, 1)
		assert.Equal(t, dom.IFrameCallbackReason{Kind: dom.ReasonInitialRender}, log.infos[0].Reason)
		assert.Equal(t, geom.LogicalSize{Width: 400, Height: 300}, log.infos[0].Bounds)

		nested, ok := w.IFrameManager().LookupNestedDomId(host)
		require.True(t, ok)
		s, ok := w.StyledDom(nested)
		require.True(t, ok)
		assert.Equal(t, 11, s.Len())

		hits := w.HitTest(pos(10, 60))
		require.NotEmpty(t, hits)
		assert.Equal(t, at(nested, 2), hits[0].Node)
		assert.Equal(t, pos(10, 10), hits[0].Local)
	})

	t.Run("scrolling to the bottom edge re-invokes the callback", func(t *testing.T) {
		w, log := openFrame(t, rowsFrame)
		send(t, w, Event{Kind: dom.EventScroll, Position: pos(10, 10), Delta: pos(0, 1600)})

		assert.Equal(t, pos(0, 1600), w.ScrollManager().Offset(host))
		require.Len(t, log.infos, 2)
		assert.Equal(t, dom.IFrameCallbackReason{Kind: dom.ReasonEdgeScrolled, Edge: dom.EdgeBottom}, log.infos[1].Reason)
		assert.Equal(t, pos(0, 1600), log.infos[1].ScrollOffset)

		send(t, w, Event{Kind: dom.EventScroll, Position: pos(10, 10), Delta: pos(0, -1600)})
		assert.Len(t, log.infos, 2)
	})

	t.Run("refresh renders every iframe again", func(t *testing.T) {
		w, log := openFrame(t, rowsFrame)
		require.NoError(t, w.Refresh(context.Background()))
		require.Len(t, log.infos, 2)
		assert.Equal(t, dom.ReasonInitialRender, log.infos[1].Reason.Kind)
	})

	t.Run("empty iframe result drops the nested dom", func(t *testing.T) {
		w, _ := openFrame(t, func(dom.RefAny, dom.IFrameCallbackInfo) dom.IFrameCallbackReturn {
			return dom.IFrameCallbackReturn{}
		})
		assert.True(t, w.IFrameManager().WasInvoked(host))
		_, ok := w.StyledDom(w.IFrameManager().NestedDomId(host))
		assert.False(t, ok)

		hits := w.HitTest(pos(10, 10))
		require.NotEmpty(t, hits)
		assert.Equal(t, host, hits[0].Node)
	})
}
