// internal/managers/scroll.go
package managers

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// Easing shapes the progress of a scroll animation.
type Easing uint8

const (
	EaseLinear Easing = iota
	EaseOut
	EaseInOut
)

// ParseEasing reads the configuration names "linear", "ease-out" and
// "ease-in-out".
func ParseEasing(s string) (Easing, error) {
	switch s {
	case "linear":
		return EaseLinear, nil
	case "ease-out":
		return EaseOut, nil
	case "ease-in-out":
		return EaseInOut, nil
	}
	return EaseLinear, fmt.Errorf("unknown easing %q", s)
}

// Apply maps linear progress t in [0, 1] to eased progress.
func (e Easing) Apply(t float32) float32 {
	switch e {
	case EaseOut:
		u := 1 - t
		return 1 - u*u*u
	case EaseInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := -2*t + 2
		return 1 - u*u*u/2
	default:
		return t
	}
}

// scrollbarSize is the thickness of a scrollbar track and the length of its
// buttons.
const scrollbarSize = 12

type scrollAnimation struct {
	start    time.Time
	duration time.Duration
	from, to geom.LogicalPosition
	easing   Easing
}

// ScrollState is the scroll position of one scroll container.
type ScrollState struct {
	Offset       geom.LogicalPosition
	Previous     geom.LogicalPosition
	Container    geom.LogicalRect
	Content      geom.LogicalRect
	LastActivity time.Time
	animation    *scrollAnimation
}

// Animating reports whether a ScrollTo animation is in flight.
func (s *ScrollState) Animating() bool { return s.animation != nil }

// MaxOffset is the largest offset that keeps content covering the container.
func (s *ScrollState) MaxOffset() geom.LogicalPosition {
	return geom.LogicalPosition{
		X: max(s.Content.Size.Width-s.Container.Size.Width, 0),
		Y: max(s.Content.Size.Height-s.Container.Size.Height, 0),
	}
}

func (s *ScrollState) clamp(p geom.LogicalPosition) geom.LogicalPosition {
	m := s.MaxOffset()
	return geom.LogicalPosition{
		X: min(max(p.X, 0), m.X),
		Y: min(max(p.Y, 0), m.Y),
	}
}

// Scrollable reports whether content overflows the container on either axis.
func (s *ScrollState) Scrollable() bool {
	return s.Content.Size.Width > s.Container.Size.Width ||
		s.Content.Size.Height > s.Container.Size.Height
}

// FrameScrollInfo summarises scroll activity between BeginFrame and EndFrame.
type FrameScrollInfo struct {
	HadScrollActivity     bool
	HadProgrammaticScroll bool
	HadNewNodes           bool
}

// TickResult lists the containers whose offset an animation moved.
type TickResult struct {
	NeedsRepaint bool
	Updated      []dom.DomNodeId
}

// ScrollManager holds the scroll offsets of every scroll container of a
// window, keyed by DOM and node.
type ScrollManager struct {
	states     map[dom.DomNodeId]*ScrollState
	scrollbars map[scrollbarKey]ScrollbarState
	frame      FrameScrollInfo
}

// NewScrollManager creates an empty manager.
func NewScrollManager() *ScrollManager {
	return &ScrollManager{
		states:     make(map[dom.DomNodeId]*ScrollState),
		scrollbars: make(map[scrollbarKey]ScrollbarState),
	}
}

func (m *ScrollManager) entry(n dom.DomNodeId, now time.Time) *ScrollState {
	s, ok := m.states[n]
	if !ok {
		s = &ScrollState{LastActivity: now}
		m.states[n] = s
	}
	return s
}

// BeginFrame resets the activity flags and remembers every offset so that
// ScrollDelta reports movement within the frame.
func (m *ScrollManager) BeginFrame() {
	m.frame = FrameScrollInfo{}
	for _, s := range m.states {
		s.Previous = s.Offset
	}
}

// EndFrame returns the activity seen since BeginFrame.
func (m *ScrollManager) EndFrame() FrameScrollInfo { return m.frame }

// State returns the scroll state of n.
func (m *ScrollManager) State(n dom.DomNodeId) (*ScrollState, bool) {
	s, ok := m.states[n]
	return s, ok
}

// Offset returns the current offset of n, zero when n never scrolled.
func (m *ScrollManager) Offset(n dom.DomNodeId) geom.LogicalPosition {
	if s, ok := m.states[n]; ok {
		return s.Offset
	}
	return geom.LogicalPosition{}
}

// OffsetsFor returns an offset lookup for one DOM, in the form the display
// list builder takes.
func (m *ScrollManager) OffsetsFor(d dom.DomId) func(dom.NodeId) geom.LogicalPosition {
	return func(n dom.NodeId) geom.LogicalPosition {
		return m.Offset(dom.DomNodeId{Dom: d, Node: n})
	}
}

// UpdateNodeBounds records the container and content rectangles after
// layout. The offset is re-clamped in case the content shrank.
func (m *ScrollManager) UpdateNodeBounds(n dom.DomNodeId, container, content geom.LogicalRect, now time.Time) {
	if _, ok := m.states[n]; !ok {
		m.frame.HadNewNodes = true
	}
	s := m.entry(n, now)
	s.Container, s.Content = container, content
	s.Offset = s.clamp(s.Offset)
	if s.animation != nil {
		s.animation.to = s.clamp(s.animation.to)
	}
}

// SetScrollPosition jumps to p, clamped, cancelling any animation.
func (m *ScrollManager) SetScrollPosition(n dom.DomNodeId, p geom.LogicalPosition, now time.Time) {
	s := m.entry(n, now)
	s.Offset = s.clamp(p)
	s.animation = nil
	s.LastActivity = now
	m.frame.HadScrollActivity = true
}

// ScrollTo moves n to target over duration. A zero duration commits
// immediately; otherwise the animation replaces any one in flight and is
// advanced by Tick.
func (m *ScrollManager) ScrollTo(n dom.DomNodeId, target geom.LogicalPosition, duration time.Duration, easing Easing, now time.Time) {
	m.frame.HadProgrammaticScroll = true
	if duration <= 0 {
		m.SetScrollPosition(n, target, now)
		return
	}
	s := m.entry(n, now)
	s.animation = &scrollAnimation{
		start:    now,
		duration: duration,
		from:     s.Offset,
		to:       s.clamp(target),
		easing:   easing,
	}
	s.LastActivity = now
	m.frame.HadScrollActivity = true
}

// ScrollBy moves n by delta relative to its current offset.
func (m *ScrollManager) ScrollBy(n dom.DomNodeId, delta geom.LogicalPosition, duration time.Duration, easing Easing, now time.Time) {
	m.ScrollTo(n, m.Offset(n).Add(delta), duration, easing, now)
}

// ScrollWheel applies a user scroll to the first scrollable container of
// chain, innermost first, and returns the container that moved.
func (m *ScrollManager) ScrollWheel(chain []dom.DomNodeId, delta geom.LogicalPosition, now time.Time) (dom.DomNodeId, bool) {
	for _, n := range chain {
		s, ok := m.states[n]
		if !ok || !s.Scrollable() {
			continue
		}
		m.SetScrollPosition(n, s.Offset.Add(delta), now)
		return n, true
	}
	return dom.DomNodeId{}, false
}

// Animating reports whether any container has an animation in flight.
func (m *ScrollManager) Animating() bool {
	for _, s := range m.states {
		if s.animation != nil {
			return true
		}
	}
	return false
}

// Tick advances every animation to now.
func (m *ScrollManager) Tick(now time.Time) TickResult {
	var res TickResult
	for n, s := range m.states {
		a := s.animation
		if a == nil {
			continue
		}
		t := float32(1)
		if elapsed := now.Sub(a.start); elapsed < a.duration {
			t = float32(elapsed) / float32(a.duration)
		}
		e := a.easing.Apply(t)
		s.Offset = geom.LogicalPosition{
			X: a.from.X + (a.to.X-a.from.X)*e,
			Y: a.from.Y + (a.to.Y-a.from.Y)*e,
		}
		if t >= 1 {
			s.Offset = a.to
			s.animation = nil
		}
		res.NeedsRepaint = true
		res.Updated = append(res.Updated, n)
	}
	sort.Slice(res.Updated, func(i, j int) bool { return before(res.Updated[i], res.Updated[j]) })
	return res
}

// ScrollDelta returns how far n moved since BeginFrame.
func (m *ScrollManager) ScrollDelta(n dom.DomNodeId) (geom.LogicalPosition, bool) {
	s, ok := m.states[n]
	if !ok {
		return geom.LogicalPosition{}, false
	}
	d := s.Offset.Sub(s.Previous)
	if math.Abs(float64(d.X)) <= 0.001 && math.Abs(float64(d.Y)) <= 0.001 {
		return geom.LogicalPosition{}, false
	}
	return d, true
}

// Remove forgets n, for example after its DOM was replaced.
func (m *ScrollManager) Remove(n dom.DomNodeId) {
	delete(m.states, n)
	for _, o := range []ScrollbarOrientation{ScrollbarVertical, ScrollbarHorizontal} {
		delete(m.scrollbars, scrollbarKey{n, o})
	}
}

// ScrollbarOrientation is the axis a scrollbar scrolls.
type ScrollbarOrientation uint8

const (
	ScrollbarVertical ScrollbarOrientation = iota
	ScrollbarHorizontal
)

// ScrollbarComponent is the part of a scrollbar under a point.
type ScrollbarComponent uint8

const (
	ScrollbarTrack ScrollbarComponent = iota
	ScrollbarThumb
	// ScrollbarStartButton is the top or left button.
	ScrollbarStartButton
	// ScrollbarEndButton is the bottom or right button.
	ScrollbarEndButton
)

type scrollbarKey struct {
	node        dom.DomNodeId
	orientation ScrollbarOrientation
}

// ScrollbarState is the geometry of one scrollbar.
type ScrollbarState struct {
	Orientation ScrollbarOrientation
	// Track spans the container edge, buttons included.
	Track geom.LogicalRect
	// ThumbSize is the visible fraction of the content.
	ThumbSize float32
	// ThumbPosition is the scrolled fraction of the scrollable range.
	ThumbPosition float32
}

// along returns the track length and the coordinate of p along the
// scrolling axis.
func (s ScrollbarState) along(p geom.LogicalPosition) (length, pos float32) {
	if s.Orientation == ScrollbarVertical {
		return s.Track.Size.Height, p.Y
	}
	return s.Track.Size.Width, p.X
}

// Thumb returns the thumb rectangle in track-local coordinates.
func (s ScrollbarState) Thumb() geom.LogicalRect {
	length, _ := s.along(geom.LogicalPosition{})
	usable := max(length-2*scrollbarSize, 0)
	size := usable * s.ThumbSize
	start := scrollbarSize + (usable-size)*s.ThumbPosition
	if s.Orientation == ScrollbarVertical {
		return geom.Rect(0, start, s.Track.Size.Width, size)
	}
	return geom.Rect(start, 0, size, s.Track.Size.Height)
}

// Component classifies a point in track-local coordinates.
func (s ScrollbarState) Component(local geom.LogicalPosition) ScrollbarComponent {
	length, pos := s.along(local)
	switch {
	case pos < scrollbarSize:
		return ScrollbarStartButton
	case pos > length-scrollbarSize:
		return ScrollbarEndButton
	}
	thumb := s.Thumb()
	start, end := thumb.Origin.Y, thumb.MaxY()
	if s.Orientation == ScrollbarHorizontal {
		start, end = thumb.Origin.X, thumb.MaxX()
	}
	if pos >= start && pos <= end {
		return ScrollbarThumb
	}
	return ScrollbarTrack
}

// ScrollbarHit is a point that landed on a scrollbar.
type ScrollbarHit struct {
	Node        dom.DomNodeId
	Orientation ScrollbarOrientation
	Component   ScrollbarComponent
	Local       geom.LogicalPosition
}

// UpdateScrollbars recomputes the scrollbar of every overflowing axis.
// Track rectangles are in the same space as the container rectangles.
func (m *ScrollManager) UpdateScrollbars() {
	clear(m.scrollbars)
	for n, s := range m.states {
		c := s.Container
		maxOff := s.MaxOffset()
		if s.Content.Size.Height > c.Size.Height {
			m.scrollbars[scrollbarKey{n, ScrollbarVertical}] = ScrollbarState{
				Orientation:   ScrollbarVertical,
				Track:         geom.Rect(c.MaxX()-scrollbarSize, c.Origin.Y, scrollbarSize, c.Size.Height),
				ThumbSize:     min(c.Size.Height/s.Content.Size.Height, 1),
				ThumbPosition: ratio(s.Offset.Y, maxOff.Y),
			}
		}
		if s.Content.Size.Width > c.Size.Width {
			m.scrollbars[scrollbarKey{n, ScrollbarHorizontal}] = ScrollbarState{
				Orientation:   ScrollbarHorizontal,
				Track:         geom.Rect(c.Origin.X, c.MaxY()-scrollbarSize, c.Size.Width, scrollbarSize),
				ThumbSize:     min(c.Size.Width/s.Content.Size.Width, 1),
				ThumbPosition: ratio(s.Offset.X, maxOff.X),
			}
		}
	}
}

func ratio(v, total float32) float32 {
	if total <= 0 {
		return 0
	}
	return min(max(v/total, 0), 1)
}

// Scrollbar returns the scrollbar of n on one axis.
func (m *ScrollManager) Scrollbar(n dom.DomNodeId, o ScrollbarOrientation) (ScrollbarState, bool) {
	s, ok := m.scrollbars[scrollbarKey{n, o}]
	return s, ok
}

// HitTestScrollbars finds the scrollbar under p. Vertical bars win where
// two tracks overlap in a corner.
func (m *ScrollManager) HitTestScrollbars(p geom.LogicalPosition) (ScrollbarHit, bool) {
	keys := make([]scrollbarKey, 0, len(m.scrollbars))
	for k := range m.scrollbars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].node != keys[j].node {
			// Later nodes paint on top.
			return before(keys[j].node, keys[i].node)
		}
		return keys[i].orientation < keys[j].orientation
	})
	for _, k := range keys {
		s := m.scrollbars[k]
		if !s.Track.Contains(p) {
			continue
		}
		local := p.Sub(s.Track.Origin)
		return ScrollbarHit{Node: k.node, Orientation: k.orientation, Component: s.Component(local), Local: local}, true
	}
	return ScrollbarHit{}, false
}
