// internal/app/main_test.go
package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/config"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// counter is the application data of the test windows.
type counter struct {
	layouts int
	infos   []LayoutInfo
	clicks  int
}

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.ManagersCfg.ScrollDefaultDuration = 0
	cfg.ManagersCfg.ScrollEasing = "linear"
	return cfg
}

var windowSize = geom.LogicalSize{Width: 800, Height: 600}

func countingLayout(build func(c *counter) *dom.Dom) LayoutCallback {
	return func(data dom.RefAny, info LayoutInfo) *dom.Dom {
		c, _ := dom.Downcast[*counter](data)
		c.layouts++
		c.infos = append(c.infos, info)
		return build(c)
	}
}

// open creates an app with one 800x600 window styled by css.
func open(t *testing.T, css string, build func(c *counter) *dom.Dom, opts ...Option) (*App, *Window, *counter) {
	t.Helper()
	c := &counter{}
	a := New(testConfig(), dom.NewRefAny(c), countingLayout(build), zap.NewNop(), opts...)
	w, err := a.CreateWindow(context.Background(), WindowCreateOptions{Title: "test", Size: windowSize, CSS: css})
	require.NoError(t, err)
	return a, w, c
}

func at(d dom.DomId, n dom.NodeId) dom.DomNodeId { return dom.DomNodeId{Dom: d, Node: n} }

func pos(x, y float32) geom.LogicalPosition { return geom.LogicalPosition{X: x, Y: y} }

func click(p geom.LogicalPosition) Event { return Event{Kind: dom.EventLeftMouseDown, Position: p} }

func send(t *testing.T, w *Window, ev Event) dom.Update {
	t.Helper()
	u, err := w.HandleEvent(context.Background(), ev)
	require.NoError(t, err)
	return u
}
