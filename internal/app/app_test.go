// internal/app/app_test.go
package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/boxkit/internal/config"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

func runApp(t *testing.T, ctx context.Context, a *App) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("frame loop did not stop")
	}
}

func TestAppRun(t *testing.T) {
	clicker := func(update dom.Update) func(c *counter) *dom.Dom {
		return func(c *counter) *dom.Dom {
			return twoRows(c).WithCallback(dom.Hover(dom.EventLeftMouseDown), dom.NewRefAny(c),
				func(data dom.RefAny, _ dom.CallbackInfo) dom.Update {
					c, _ := dom.Downcast[*counter](data)
					c.clicks++
					return update
				})
		}
	}

	t.Run("events are delivered until the last window closes", func(t *testing.T) {
		a, w, c := open(t, twoRowsCSS, clicker(dom.UpdateRefreshDom))
		ctx := context.Background()
		require.NoError(t, a.Post(ctx, w.ID(), click(pos(10, 10))))
		require.NoError(t, a.Post(ctx, w.ID(), Event{Kind: dom.EventWindowClose}))

		waitRun(t, runApp(t, ctx, a))
		assert.Equal(t, 1, c.clicks)
		assert.Equal(t, 2, c.layouts)
		assert.Empty(t, a.Windows())
		_, ok := a.Window(w.ID())
		assert.False(t, ok)
	})

	t.Run("refresh of all windows reaches every window", func(t *testing.T) {
		a, w1, c := open(t, twoRowsCSS, clicker(dom.UpdateRefreshDomAllWindows))
		w2, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize, CSS: twoRowsCSS})
		require.NoError(t, err)
		require.Equal(t, 2, c.layouts)

		ctx := context.Background()
		require.NoError(t, a.Post(ctx, w1.ID(), click(pos(10, 10))))
		require.NoError(t, a.Post(ctx, w1.ID(), Event{Kind: dom.EventWindowClose}))
		require.NoError(t, a.Post(ctx, w2.ID(), Event{Kind: dom.EventWindowClose}))

		waitRun(t, runApp(t, ctx, a))
		assert.Equal(t, 1, c.clicks)
		assert.Equal(t, 4, c.layouts)
	})

	t.Run("events for unknown windows are dropped", func(t *testing.T) {
		a, w, c := open(t, twoRowsCSS, clicker(dom.UpdateRefreshDom))
		ctx := context.Background()
		require.NoError(t, a.Post(ctx, WindowId("missing"), click(pos(10, 10))))
		require.NoError(t, a.Post(ctx, w.ID(), Event{Kind: dom.EventWindowClose}))

		waitRun(t, runApp(t, ctx, a))
		assert.Zero(t, c.clicks)
	})

	t.Run("cancellation stops the loop", func(t *testing.T) {
		a, _, _ := open(t, twoRowsCSS, twoRows)
		ctx, cancel := context.WithCancel(context.Background())
		done := runApp(t, ctx, a)
		cancel()
		waitRun(t, done)
		assert.Len(t, a.Windows(), 1)
	})

	t.Run("post gives up when the context ends", func(t *testing.T) {
		a, w, _ := open(t, twoRowsCSS, twoRows)
		ctx := context.Background()
		for range eventQueueSize {
			require.NoError(t, a.Post(ctx, w.ID(), Event{Kind: dom.EventMouseOver}))
		}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, a.Post(cctx, w.ID(), Event{Kind: dom.EventMouseOver}), context.Canceled)
	})
}

func TestCallbackPanics(t *testing.T) {
	observe := func() (*zap.Logger, *observer.ObservedLogs) {
		core, logs := observer.New(zapcore.ErrorLevel)
		return zap.New(core), logs
	}
	recovered := func(t *testing.T, logs *observer.ObservedLogs) map[string]interface{} {
		t.Helper()
		entries := logs.FilterMessage("Recovered from panic in user callback.").All()
		require.Len(t, entries, 1)
		return entries[0].ContextMap()
	}

	t.Run("layout", func(t *testing.T) {
		logger, logs := observe()
		a := New(testConfig(), dom.RefAny{}, func(dom.RefAny, LayoutInfo) *dom.Dom { panic("boom") }, logger)
		w, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize})
		require.NoError(t, err)

		s, _ := w.StyledDom(dom.RootDomId)
		assert.Equal(t, 1, s.Len())
		fields := recovered(t, logs)
		assert.Equal(t, "layout", fields["callback"])
		assert.Equal(t, "boom", fields["panic"])
		assert.Equal(t, "app", logs.All()[0].LoggerName)
	})

	t.Run("event", func(t *testing.T) {
		logger, logs := observe()
		layoutFn := countingLayout(func(c *counter) *dom.Dom {
			return twoRows(c).WithCallback(dom.Hover(dom.EventLeftMouseDown), dom.RefAny{},
				func(dom.RefAny, dom.CallbackInfo) dom.Update { panic("event boom") })
		})
		a := New(testConfig(), dom.NewRefAny(&counter{}), layoutFn, logger)
		w, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize, CSS: twoRowsCSS})
		require.NoError(t, err)

		u := send(t, w, click(pos(10, 10)))
		assert.Equal(t, dom.UpdateDoNothing, u)
		fields := recovered(t, logs)
		assert.Equal(t, "event", fields["callback"])
		assert.Equal(t, "event boom", fields["panic"])
		assert.Equal(t, "app.window", logs.All()[0].LoggerName)
	})

	t.Run("iframe", func(t *testing.T) {
		logger, logs := observe()
		layoutFn := countingLayout(func(*counter) *dom.Dom {
			return dom.Body().WithChild(dom.IFrame(dom.RefAny{}, func(dom.RefAny, dom.IFrameCallbackInfo) dom.IFrameCallbackReturn {
				panic("iframe boom")
			}).WithClass("frame"))
		})
		a := New(testConfig(), dom.NewRefAny(&counter{}), layoutFn, logger)
		w, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize, CSS: frameCSS})
		require.NoError(t, err)

		fields := recovered(t, logs)
		assert.Equal(t, "iframe", fields["callback"])
		hits := w.HitTest(pos(10, 10))
		require.NotEmpty(t, hits)
		assert.Equal(t, at(dom.RootDomId, 1), hits[0].Node)
	})
}

func TestWindowOptions(t *testing.T) {
	t.Run("from config", func(t *testing.T) {
		tests := []struct {
			name    string
			cfg     config.WindowConfig
			want    WindowCreateOptions
			wantErr bool
		}{
			{
				name: "defaults",
				cfg:  config.NewDefaultConfig().App().Window,
				want: WindowCreateOptions{Title: "boxkit", Size: geom.LogicalSize{Width: 800, Height: 600}},
			},
			{
				name: "dark without chrome",
				cfg:  config.WindowConfig{Title: "x", Width: 10, Height: 20, Theme: "dark", Decorations: "none"},
				want: WindowCreateOptions{Title: "x", Size: geom.LogicalSize{Width: 10, Height: 20}, Theme: ThemeDark, Decorations: DecorationsNone},
			},
			{name: "unknown theme", cfg: config.WindowConfig{Theme: "sepia"}, wantErr: true},
			{name: "unknown decorations", cfg: config.WindowConfig{Decorations: "fancy"}, wantErr: true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := WindowOptionsFromConfig(tt.cfg)
				if tt.wantErr {
					assert.Error(t, err)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("names round trip", func(t *testing.T) {
		for _, d := range []Decorations{DecorationsNormal, DecorationsNoTitle, DecorationsNoControls, DecorationsNone} {
			got, err := ParseDecorations(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, got)
		}
		for _, th := range []Theme{ThemeLight, ThemeDark} {
			got, err := ParseTheme(th.String())
			require.NoError(t, err)
			assert.Equal(t, th, got)
		}
	})

	t.Run("layout settings reach the window", func(t *testing.T) {
		cfg := testConfig()
		cfg.LayoutCfg.HiDPIFactor = 2
		cfg.LayoutCfg.DefaultFontFamily = "Inter, serif"
		a := New(cfg, dom.NewRefAny(&counter{}), countingLayout(twoRows), nil)
		w, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize, CSS: twoRowsCSS})
		require.NoError(t, err)
		assert.Equal(t, float32(2), w.Options().HiDPIFactor)

		list, ok := w.DisplayList(dom.RootDomId)
		require.True(t, ok)
		assert.Equal(t, float32(2), list.HiDPIFactor)
		width, height := list.PhysicalSize()
		assert.Equal(t, float32(1600), width)
		assert.Equal(t, float32(1200), height)

		hits := w.HitTestPhysical(geom.PhysicalPosition{X: 20, Y: 300})
		assert.Equal(t, w.HitTest(pos(10, 150)), hits)
		require.NotEmpty(t, hits)
		assert.Equal(t, at(dom.RootDomId, 2), hits[0].Node)

		styled, ok := w.StyledDom(dom.RootDomId)
		require.True(t, ok)
		assert.Equal(t, []string{"Inter", "serif"}, styled.FontFamily(0).Names)
		assert.Equal(t, []string{"Inter", "serif"}, styled.FontFamily(2).Names)
	})

	t.Run("explicit hidpi factor wins", func(t *testing.T) {
		a := New(testConfig(), dom.NewRefAny(&counter{}), countingLayout(twoRows), nil)
		w, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize, HiDPIFactor: 1.5})
		require.NoError(t, err)
		assert.Equal(t, float32(1.5), w.Options().HiDPIFactor)
	})

	t.Run("theme reaches the layout callback", func(t *testing.T) {
		c := &counter{}
		a := New(testConfig(), dom.NewRefAny(c), countingLayout(twoRows), nil)
		_, err := a.CreateWindow(context.Background(), WindowCreateOptions{Size: windowSize, Theme: ThemeDark})
		require.NoError(t, err)
		require.Len(t, c.infos, 1)
		assert.Equal(t, ThemeDark, c.infos[0].Theme)
	})
}
