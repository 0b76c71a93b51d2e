// internal/managers/iframe_test.go
package managers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

var (
	initialRender  = dom.IFrameCallbackReason{Kind: dom.ReasonInitialRender}
	boundsExpanded = dom.IFrameCallbackReason{Kind: dom.ReasonBoundsExpanded}
	bottomEdge     = dom.IFrameCallbackReason{Kind: dom.ReasonEdgeScrolled, Edge: dom.EdgeBottom}
	rightEdge      = dom.IFrameCallbackReason{Kind: dom.ReasonEdgeScrolled, Edge: dom.EdgeRight}
)

func size(w, h float32) geom.LogicalSize { return geom.LogicalSize{Width: w, Height: h} }

// list is an iframe host showing 400x300 of a 400x2000 list that has
// already rendered once.
func list(t *testing.T) (*IFrameManager, *ScrollManager, dom.DomNodeId, geom.LogicalRect) {
	t.Helper()
	m, s := NewIFrameManager(DefaultEdgeThreshold), NewScrollManager()
	host := at(0, 5)
	bounds := geom.Rect(0, 0, 400, 300)

	reason, ok := m.CheckReinvoke(host, s, bounds)
	require.True(t, ok)
	require.Equal(t, initialRender, reason)
	require.True(t, m.MarkInvoked(host, reason))
	require.True(t, m.UpdateIFrameInfo(host, size(400, 2000), size(400, 10000)))
	s.UpdateNodeBounds(host, bounds, geom.Rect(0, 0, 400, 2000), epoch)

	_, ok = m.CheckReinvoke(host, s, bounds)
	require.False(t, ok)
	return m, s, host, bounds
}

func TestIFrameIds(t *testing.T) {
	m := NewIFrameManager(DefaultEdgeThreshold)
	a, b := at(0, 3), at(0, 8)

	_, ok := m.LookupNestedDomId(a)
	assert.False(t, ok)
	assert.Equal(t, dom.DomId(1), m.NestedDomId(a))
	assert.Equal(t, dom.DomId(2), m.NestedDomId(b))
	assert.Equal(t, dom.DomId(1), m.NestedDomId(a))

	nested, ok := m.LookupNestedDomId(b)
	require.True(t, ok)
	assert.Equal(t, dom.DomId(2), nested)

	assert.Equal(t, PipelineId{Dom: 0, Node: 3}, m.PipelineId(a))
	assert.Equal(t, m.PipelineId(a), m.PipelineId(a))
}

func TestCheckReinvoke(t *testing.T) {
	t.Run("scrolling near the bottom fires once", func(t *testing.T) {
		m, s, host, bounds := list(t)
		s.SetScrollPosition(host, geom.LogicalPosition{Y: 1600}, epoch)

		reason, ok := m.CheckReinvoke(host, s, bounds)
		require.True(t, ok)
		assert.Equal(t, bottomEdge, reason)
		m.MarkInvoked(host, reason)

		_, ok = m.CheckReinvoke(host, s, bounds)
		assert.False(t, ok)
	})

	t.Run("leaving the edge re-arms it", func(t *testing.T) {
		m, s, host, bounds := list(t)
		s.SetScrollPosition(host, geom.LogicalPosition{Y: 1600}, epoch)
		reason, _ := m.CheckReinvoke(host, s, bounds)
		m.MarkInvoked(host, reason)

		s.SetScrollPosition(host, geom.LogicalPosition{Y: 0}, epoch)
		_, ok := m.CheckReinvoke(host, s, bounds)
		assert.False(t, ok)

		s.SetScrollPosition(host, geom.LogicalPosition{Y: 1650}, epoch)
		reason, ok = m.CheckReinvoke(host, s, bounds)
		require.True(t, ok)
		assert.Equal(t, bottomEdge, reason)
	})

	t.Run("bounds beyond the content fire once per expansion", func(t *testing.T) {
		m, s, host, _ := list(t)
		tall := geom.Rect(0, 0, 400, 2500)

		reason, ok := m.CheckReinvoke(host, s, tall)
		require.True(t, ok)
		assert.Equal(t, boundsExpanded, reason)
		m.MarkInvoked(host, reason)

		_, ok = m.CheckReinvoke(host, s, tall)
		assert.False(t, ok)

		// New content re-arms the trigger; it is still shorter than the host.
		m.UpdateIFrameInfo(host, size(400, 2200), size(400, 10000))
		reason, ok = m.CheckReinvoke(host, s, tall)
		require.True(t, ok)
		assert.Equal(t, boundsExpanded, reason)
	})

	t.Run("bottom takes priority over right", func(t *testing.T) {
		m, s := NewIFrameManager(DefaultEdgeThreshold), NewScrollManager()
		host := at(0, 2)
		bounds := geom.Rect(0, 0, 300, 300)
		m.MarkInvoked(host, initialRender) // unknown host
		reason, _ := m.CheckReinvoke(host, s, bounds)
		m.MarkInvoked(host, reason)
		m.UpdateIFrameInfo(host, size(1000, 1000), size(1000, 1000))
		s.UpdateNodeBounds(host, bounds, geom.Rect(0, 0, 1000, 1000), epoch)

		s.SetScrollPosition(host, geom.LogicalPosition{X: 600, Y: 100}, epoch)
		reason, ok := m.CheckReinvoke(host, s, bounds)
		require.True(t, ok)
		assert.Equal(t, rightEdge, reason)

		m.ForceReinvoke(host)
		reason, _ = m.CheckReinvoke(host, s, bounds)
		m.MarkInvoked(host, reason)
		s.SetScrollPosition(host, geom.LogicalPosition{X: 650, Y: 650}, epoch)
		reason, ok = m.CheckReinvoke(host, s, bounds)
		require.True(t, ok)
		assert.Equal(t, bottomEdge, reason)
	})

	t.Run("a smaller threshold waits for the edge", func(t *testing.T) {
		m, s := NewIFrameManager(50), NewScrollManager()
		host := at(0, 1)
		bounds := geom.Rect(0, 0, 400, 300)
		reason, _ := m.CheckReinvoke(host, s, bounds)
		m.MarkInvoked(host, reason)
		m.UpdateIFrameInfo(host, size(400, 2000), size(400, 2000))
		s.UpdateNodeBounds(host, bounds, geom.Rect(0, 0, 400, 2000), epoch)

		s.SetScrollPosition(host, geom.LogicalPosition{Y: 1600}, epoch)
		_, ok := m.CheckReinvoke(host, s, bounds)
		assert.False(t, ok)
		s.SetScrollPosition(host, geom.LogicalPosition{Y: 1660}, epoch)
		_, ok = m.CheckReinvoke(host, s, bounds)
		assert.True(t, ok)
	})
}

func TestIFrameInvocationFlags(t *testing.T) {
	m, s, host, bounds := list(t)
	assert.True(t, m.WasInvoked(host))

	require.True(t, m.ForceReinvoke(host))
	reason, ok := m.CheckReinvoke(host, s, bounds)
	require.True(t, ok)
	assert.Equal(t, initialRender, reason)
	m.MarkInvoked(host, reason)

	other := at(0, 9)
	m.CheckReinvoke(other, s, bounds)
	m.MarkInvoked(other, initialRender)

	m.ResetAllInvocationFlags()
	assert.False(t, m.WasInvoked(host))
	assert.False(t, m.WasInvoked(other))
	assert.Equal(t, dom.DomId(1), m.NestedDomId(host))

	got, virtual, ok := m.ScrollSize(host)
	require.True(t, ok)
	assert.Equal(t, size(400, 2000), got)
	assert.Equal(t, size(400, 10000), virtual)

	assert.False(t, m.UpdateIFrameInfo(at(3, 3), size(1, 1), size(1, 1)))
	assert.False(t, m.MarkInvoked(at(3, 3), initialRender))
	assert.False(t, m.ForceReinvoke(at(3, 3)))

	infos := m.IFrameInfos()
	require.Len(t, infos, 2)
	assert.Equal(t, host, infos[0].Host)
	assert.Equal(t, other, infos[1].Host)
	assert.Equal(t, dom.DomId(2), infos[1].Nested)
}
