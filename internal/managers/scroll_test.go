// internal/managers/scroll_test.go
package managers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// scroller registers a 100x100 container over 300x500 content.
func scroller(t *testing.T) (*ScrollManager, dom.DomNodeId) {
	t.Helper()
	m := NewScrollManager()
	n := at(0, 4)
	m.UpdateNodeBounds(n, geom.Rect(0, 0, 100, 100), geom.Rect(0, 0, 300, 500), epoch)
	return m, n
}

func TestEasing(t *testing.T) {
	for _, e := range []Easing{EaseLinear, EaseOut, EaseInOut} {
		assert.InDelta(t, 0, e.Apply(0), 1e-6)
		assert.InDelta(t, 1, e.Apply(1), 1e-6)
	}
	assert.InDelta(t, 0.5, EaseInOut.Apply(0.5), 1e-6)
	assert.Greater(t, EaseOut.Apply(0.5), EaseLinear.Apply(0.5))

	got, err := ParseEasing("ease-in-out")
	require.NoError(t, err)
	assert.Equal(t, EaseInOut, got)
	_, err = ParseEasing("bounce")
	assert.Error(t, err)
}

func TestScrollManager(t *testing.T) {
	t.Run("positions are clamped to the scrollable range", func(t *testing.T) {
		m, n := scroller(t)
		tests := []struct {
			set, want geom.LogicalPosition
		}{
			{geom.LogicalPosition{X: 50, Y: 60}, geom.LogicalPosition{X: 50, Y: 60}},
			{geom.LogicalPosition{X: -5, Y: 900}, geom.LogicalPosition{X: 0, Y: 400}},
			{geom.LogicalPosition{X: 250, Y: -1}, geom.LogicalPosition{X: 200, Y: 0}},
		}
		for _, tt := range tests {
			m.SetScrollPosition(n, tt.set, epoch)
			assert.Equal(t, tt.want, m.Offset(n))
		}
	})

	t.Run("zero duration commits immediately", func(t *testing.T) {
		m, n := scroller(t)
		m.ScrollTo(n, geom.LogicalPosition{Y: 120}, 0, EaseOut, epoch)
		assert.Equal(t, geom.LogicalPosition{Y: 120}, m.Offset(n))
		s, _ := m.State(n)
		assert.False(t, s.Animating())
	})

	t.Run("animations advance on tick", func(t *testing.T) {
		m, n := scroller(t)
		m.ScrollTo(n, geom.LogicalPosition{Y: 200}, 100*time.Millisecond, EaseLinear, epoch)
		assert.Equal(t, geom.LogicalPosition{}, m.Offset(n))

		res := m.Tick(epoch.Add(50 * time.Millisecond))
		assert.True(t, res.NeedsRepaint)
		assert.Equal(t, []dom.DomNodeId{n}, res.Updated)
		assert.InDelta(t, 100, m.Offset(n).Y, 1e-3)

		m.Tick(epoch.Add(150 * time.Millisecond))
		assert.Equal(t, geom.LogicalPosition{Y: 200}, m.Offset(n))
		s, _ := m.State(n)
		assert.False(t, s.Animating())
		assert.False(t, m.Tick(epoch.Add(time.Second)).NeedsRepaint)
	})

	t.Run("a new target replaces the running animation", func(t *testing.T) {
		m, n := scroller(t)
		m.ScrollTo(n, geom.LogicalPosition{Y: 400}, time.Second, EaseLinear, epoch)
		m.Tick(epoch.Add(500 * time.Millisecond))
		m.ScrollTo(n, geom.LogicalPosition{Y: 0}, 0, EaseLinear, epoch.Add(500*time.Millisecond))
		m.Tick(epoch.Add(time.Second))
		assert.Equal(t, geom.LogicalPosition{}, m.Offset(n))
	})

	t.Run("scroll by is relative", func(t *testing.T) {
		m, n := scroller(t)
		m.ScrollBy(n, geom.LogicalPosition{X: 10, Y: 20}, 0, EaseLinear, epoch)
		m.ScrollBy(n, geom.LogicalPosition{X: 10, Y: 20}, 0, EaseLinear, epoch)
		assert.Equal(t, geom.LogicalPosition{X: 20, Y: 40}, m.Offset(n))
	})

	t.Run("frame activity and deltas", func(t *testing.T) {
		m, n := scroller(t)
		assert.True(t, m.EndFrame().HadNewNodes)

		m.BeginFrame()
		assert.Equal(t, FrameScrollInfo{}, m.EndFrame())
		_, moved := m.ScrollDelta(n)
		assert.False(t, moved)

		m.ScrollTo(n, geom.LogicalPosition{Y: 30}, 0, EaseLinear, epoch)
		info := m.EndFrame()
		assert.True(t, info.HadScrollActivity)
		assert.True(t, info.HadProgrammaticScroll)
		d, moved := m.ScrollDelta(n)
		require.True(t, moved)
		assert.Equal(t, geom.LogicalPosition{Y: 30}, d)

		m.BeginFrame()
		_, moved = m.ScrollDelta(n)
		assert.False(t, moved)
	})

	t.Run("shrinking content re-clamps the offset", func(t *testing.T) {
		m, n := scroller(t)
		m.SetScrollPosition(n, geom.LogicalPosition{Y: 400}, epoch)
		m.UpdateNodeBounds(n, geom.Rect(0, 0, 100, 100), geom.Rect(0, 0, 100, 150), epoch)
		assert.Equal(t, geom.LogicalPosition{Y: 50}, m.Offset(n))
	})

	t.Run("wheel scrolls the innermost scrollable container", func(t *testing.T) {
		m, n := scroller(t)
		flat := at(0, 2)
		m.UpdateNodeBounds(flat, geom.Rect(0, 0, 100, 100), geom.Rect(0, 0, 100, 100), epoch)
		got, ok := m.ScrollWheel([]dom.DomNodeId{at(0, 9), flat, n}, geom.LogicalPosition{Y: 25}, epoch)
		require.True(t, ok)
		assert.Equal(t, n, got)
		assert.Equal(t, geom.LogicalPosition{Y: 25}, m.Offset(n))
	})

	t.Run("display list offsets are per dom", func(t *testing.T) {
		m, n := scroller(t)
		m.SetScrollPosition(n, geom.LogicalPosition{Y: 10}, epoch)
		assert.Equal(t, geom.LogicalPosition{Y: 10}, m.OffsetsFor(0)(4))
		assert.Equal(t, geom.LogicalPosition{}, m.OffsetsFor(1)(4))
	})
}

func TestScrollbars(t *testing.T) {
	m, n := scroller(t)
	m.SetScrollPosition(n, geom.LogicalPosition{Y: 400}, epoch)
	m.UpdateScrollbars()

	v, ok := m.Scrollbar(n, ScrollbarVertical)
	require.True(t, ok)
	assert.Equal(t, geom.Rect(88, 0, 12, 100), v.Track)
	assert.InDelta(t, 0.2, v.ThumbSize, 1e-6)
	assert.InDelta(t, 1, v.ThumbPosition, 1e-6)

	h, ok := m.Scrollbar(n, ScrollbarHorizontal)
	require.True(t, ok)
	assert.Equal(t, geom.Rect(0, 88, 100, 12), h.Track)
	assert.InDelta(t, 0, h.ThumbPosition, 1e-6)

	// usable track 76, thumb 15.2 at the end: [72.8, 88]
	assert.InDelta(t, 72.8, v.Thumb().Origin.Y, 1e-3)

	tests := []struct {
		name  string
		point geom.LogicalPosition
		want  ScrollbarComponent
		axis  ScrollbarOrientation
	}{
		{"top button", geom.LogicalPosition{X: 90, Y: 5}, ScrollbarStartButton, ScrollbarVertical},
		{"track above the thumb", geom.LogicalPosition{X: 90, Y: 40}, ScrollbarTrack, ScrollbarVertical},
		{"thumb", geom.LogicalPosition{X: 90, Y: 80}, ScrollbarThumb, ScrollbarVertical},
		{"corner goes to the vertical bar", geom.LogicalPosition{X: 95, Y: 95}, ScrollbarEndButton, ScrollbarVertical},
		{"horizontal thumb", geom.LogicalPosition{X: 20, Y: 92}, ScrollbarThumb, ScrollbarHorizontal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := m.HitTestScrollbars(tt.point)
			require.True(t, ok)
			assert.Equal(t, n, hit.Node)
			assert.Equal(t, tt.axis, hit.Orientation)
			assert.Equal(t, tt.want, hit.Component)
		})
	}

	_, ok = m.HitTestScrollbars(geom.LogicalPosition{X: 50, Y: 50})
	assert.False(t, ok)
}
