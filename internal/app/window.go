// internal/app/window.go
package app

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css/parser"
	"github.com/xkilldash9x/boxkit/internal/displaylist"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/hittest"
	"github.com/xkilldash9x/boxkit/internal/layout"
	"github.com/xkilldash9x/boxkit/internal/managers"
	"github.com/xkilldash9x/boxkit/internal/style"
)

// WindowId identifies a window for the lifetime of the process.
type WindowId string

// maxIFrameDepth bounds iframes rendered inside iframes.
const maxIFrameDepth = 8

// dirtiness is the earliest pipeline stage that has to run again.
type dirtiness uint8

const (
	clean dirtiness = iota
	dirtyDisplay
	dirtyLayout
)

// Window owns the styled DOMs of one window (the root DOM plus one per
// rendered iframe), their layout and display lists, and the interaction
// state managers. A Window is not safe for concurrent use; the App calls
// it from the frame loop only.
type Window struct {
	id     WindowId
	opts   WindowCreateOptions
	app    *App
	logger *zap.Logger
	author *parser.Stylesheet

	doms  managers.Forest
	trees map[dom.DomId]*layout.LayoutTree
	lists map[dom.DomId]*displaylist.DisplayList
	hits  *hittest.Forest
	// hosts maps each rendered nested DOM to its iframe node.
	hosts map[dom.DomId]dom.DomNodeId

	focus     *managers.FocusManager
	scroll    *managers.ScrollManager
	iframes   *managers.IFrameManager
	undo      *managers.UndoRedoManager
	selection *managers.SelectionManager

	hovered map[dom.DomNodeId]struct{}
	active  map[dom.DomNodeId]struct{}
	cursor  geom.LogicalPosition

	scrollDuration time.Duration
	easing         managers.Easing
	dirty          dirtiness
	now            func() time.Time
}

func newWindow(a *App, opts WindowCreateOptions) (*Window, error) {
	mcfg := a.cfg.Managers()
	easing, err := managers.ParseEasing(mcfg.ScrollEasing)
	if err != nil {
		return nil, fmt.Errorf("window scroll easing: %w", err)
	}
	author := opts.Stylesheet
	if author == nil && opts.CSS != "" {
		if author, err = parser.ParseStylesheet(opts.CSS); err != nil {
			return nil, fmt.Errorf("window stylesheet: %w", err)
		}
	}

	if opts.HiDPIFactor <= 0 {
		opts.HiDPIFactor = a.cfg.Layout().HiDPIFactor
	}
	if opts.HiDPIFactor <= 0 {
		opts.HiDPIFactor = 1
	}

	id := WindowId(uuid.NewString())
	logger := a.logger.Named("window").With(zap.String("window_id", string(id)))
	if author != nil {
		for _, d := range author.Diagnostics {
			logger.Warn("Dropped stylesheet entry.", zap.Stringer("diagnostic", d))
		}
	}

	return &Window{
		id:             id,
		opts:           opts,
		app:            a,
		logger:         logger,
		author:         author,
		doms:           make(managers.Forest),
		trees:          make(map[dom.DomId]*layout.LayoutTree),
		lists:          make(map[dom.DomId]*displaylist.DisplayList),
		hits:           hittest.NewForest(),
		hosts:          make(map[dom.DomId]dom.DomNodeId),
		focus:          managers.NewFocusManager(logger),
		scroll:         managers.NewScrollManager(),
		iframes:        managers.NewIFrameManager(mcfg.IFrameEdgeThreshold),
		undo:           managers.NewUndoRedoManager(mcfg.MaxUndoHistory, mcfg.MaxRedoHistory, logger),
		selection:      managers.NewSelectionManager(),
		hovered:        make(map[dom.DomNodeId]struct{}),
		active:         make(map[dom.DomNodeId]struct{}),
		scrollDuration: mcfg.ScrollDefaultDuration,
		easing:         easing,
		now:            a.now,
	}, nil
}

// ID returns the window id.
func (w *Window) ID() WindowId { return w.id }

// Options returns the current creation options; Size follows resizes.
func (w *Window) Options() WindowCreateOptions { return w.opts }

// StyledDom returns one DOM of the window.
func (w *Window) StyledDom(d dom.DomId) (*style.StyledDom, bool) {
	s, ok := w.doms[d]
	return s, ok
}

// LayoutTree returns the last layout of one DOM.
func (w *Window) LayoutTree(d dom.DomId) (*layout.LayoutTree, bool) {
	t, ok := w.trees[d]
	return t, ok
}

// DisplayList returns the last display list of one DOM.
func (w *Window) DisplayList(d dom.DomId) (*displaylist.DisplayList, bool) {
	l, ok := w.lists[d]
	return l, ok
}

// HitTest returns the nodes under p, front to back.
func (w *Window) HitTest(p geom.LogicalPosition) []hittest.Hit { return w.hits.HitTest(p) }

// HitTestPhysical hit-tests a point given in device pixels.
func (w *Window) HitTestPhysical(p geom.PhysicalPosition) []hittest.Hit {
	return w.hits.HitTest(p.ToLogical(w.opts.HiDPIFactor))
}

// Hovered reports whether the cursor is over n.
func (w *Window) Hovered(n dom.DomNodeId) bool {
	_, ok := w.hovered[n]
	return ok
}

func (w *Window) FocusManager() *managers.FocusManager         { return w.focus }
func (w *Window) ScrollManager() *managers.ScrollManager       { return w.scroll }
func (w *Window) IFrameManager() *managers.IFrameManager       { return w.iframes }
func (w *Window) UndoRedoManager() *managers.UndoRedoManager   { return w.undo }
func (w *Window) SelectionManager() *managers.SelectionManager { return w.selection }

// Refresh rebuilds the root DOM from the layout callback and runs the
// whole pipeline. Focus survives when the focused node is still valid;
// every iframe renders again.
func (w *Window) Refresh(ctx context.Context) error {
	root := w.app.callLayout(LayoutInfo{WindowSize: w.opts.Size, Theme: w.opts.Theme})
	if root == nil {
		w.logger.Warn("Layout callback returned no DOM, rendering an empty body.")
		root = dom.Body()
	}

	w.doms = managers.Forest{dom.RootDomId: w.style(root.Compact(), w.author)}
	clear(w.hovered)
	clear(w.active)
	w.iframes.ResetAllInvocationFlags()
	w.restoreFocus(dom.RootDomId)

	if err := w.relayout(ctx); err != nil {
		return err
	}
	// The fresh DOM carries no hover state; re-derive it from the cursor.
	w.updateHover(w.hits.HitTest(w.cursor))
	if err := w.flush(ctx); err != nil {
		return err
	}
	w.logger.Debug("Window refreshed.",
		zap.Int("doms", len(w.doms)),
		zap.Int("nodes", w.doms[dom.RootDomId].Len()))
	return nil
}

func (w *Window) style(d *dom.CompactDom, author *parser.Stylesheet) *style.StyledDom {
	return style.New(d, author,
		style.WithViewport(w.opts.Size.Width, w.opts.Size.Height),
		style.WithDefaultFontSize(w.app.cfg.Layout().DefaultFontSize),
		style.WithDefaultFontFamily(w.app.cfg.Layout().DefaultFontFamily),
		style.WithLogger(w.logger))
}

// restoreFocus re-applies the focused pseudo state to a freshly styled
// DOM, or drops focus when the node no longer exists there.
func (w *Window) restoreFocus(d dom.DomId) {
	f, ok := w.focus.Focused()
	if !ok || f.Dom != d {
		return
	}
	s := w.doms[d]
	if int(f.Node) >= s.Len() || !s.Node(f.Node).IsFocusable() {
		w.focus.ClearFocus()
		return
	}
	s.Restyle(style.RestyleInput{Focus: &style.FocusChange{Lost: dom.NoNode, Gained: f.Node}})
}

// forgetPointerState drops hover and active entries of a DOM that was
// replaced; its new nodes start in the normal state.
func (w *Window) forgetPointerState(d dom.DomId) {
	maps.DeleteFunc(w.hovered, func(n dom.DomNodeId, _ struct{}) bool { return n.Dom == d })
	maps.DeleteFunc(w.active, func(n dom.DomNodeId, _ struct{}) bool { return n.Dom == d })
}

func (w *Window) invalidate(d dirtiness) { w.dirty = max(w.dirty, d) }

// flush runs the stages invalidated since the last flush.
func (w *Window) flush(ctx context.Context) error {
	switch w.dirty {
	case dirtyLayout:
		return w.relayout(ctx)
	case dirtyDisplay:
		w.redisplay()
	}
	return nil
}

// restyle feeds state transitions to each DOM and records what the
// changed properties invalidate.
func (w *Window) restyle(inputs map[dom.DomId]style.RestyleInput) {
	for d, in := range inputs {
		s, ok := w.doms[d]
		if !ok {
			continue
		}
		res := s.Restyle(in)
		switch {
		case res.NeedsLayout:
			w.invalidate(dirtyLayout)
		case res.NeedsDisplayList, res.GpuOnlyChanges:
			w.invalidate(dirtyDisplay)
		}
	}
}

// relayout lays out the root DOM in the window, then every iframe inside
// its host, and rebuilds the display lists.
func (w *Window) relayout(ctx context.Context) error {
	tree, err := w.app.solver.Layout(ctx, w.doms[dom.RootDomId], geom.LogicalRect{Size: w.opts.Size})
	if err != nil {
		return fmt.Errorf("failed to lay out window: %w", err)
	}
	w.trees = map[dom.DomId]*layout.LayoutTree{dom.RootDomId: tree}
	clear(w.hosts)
	w.trackScrollContainers(dom.RootDomId)

	if err := w.layoutIFrames(ctx, dom.RootDomId, 0); err != nil {
		return err
	}
	// Nested DOMs whose host disappeared are dropped.
	for d := range w.doms {
		if _, ok := w.trees[d]; !ok {
			delete(w.doms, d)
			w.forgetPointerState(d)
			if f, ok := w.focus.Focused(); ok && f.Dom == d {
				w.focus.ClearFocus()
			}
		}
	}
	w.redisplay()
	return nil
}

func (w *Window) trackScrollContainers(d dom.DomId) {
	styled, tree := w.doms[d], w.trees[d]
	now := w.now()
	tree.Walk(func(n *layout.LayoutNode) bool {
		if !n.IsAnonymous() && styled.IsScrollContainer(n.Node) {
			w.scroll.UpdateNodeBounds(dom.DomNodeId{Dom: d, Node: n.Node}, n.Dimensions.PaddingBox(), n.ContentBounds(), now)
		}
		return true
	})
}

func (w *Window) layoutIFrames(ctx context.Context, d dom.DomId, depth int) error {
	styled := w.doms[d]
	var hosts []*layout.LayoutNode
	w.trees[d].Walk(func(n *layout.LayoutNode) bool {
		if !n.IsAnonymous() && styled.Node(n.Node).IFrame != nil {
			hosts = append(hosts, n)
		}
		return true
	})

	for _, n := range hosts {
		host := dom.DomNodeId{Dom: d, Node: n.Node}
		if depth >= maxIFrameDepth {
			w.logger.Warn("IFrame nested too deeply, not rendered.",
				zap.Stringer("host", host),
				zap.Int("depth", depth))
			continue
		}
		nested, ok, err := w.layoutIFrame(ctx, host, styled.Node(n.Node).IFrame, n.Dimensions.Content)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := w.layoutIFrames(ctx, nested, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// layoutIFrame invokes the iframe callback when the iframe manager says
// so, and lays out the nested DOM in coordinates relative to the host's
// content box. A nested DOM from an earlier invocation is reused.
func (w *Window) layoutIFrame(ctx context.Context, host dom.DomNodeId, node *dom.IFrameNode, bounds geom.LogicalRect) (dom.DomId, bool, error) {
	nested := w.iframes.NestedDomId(host)
	if reason, invoke := w.iframes.CheckReinvoke(host, w.scroll, bounds); invoke {
		ret := w.callIFrame(host, node, dom.IFrameCallbackInfo{
			Reason:       reason,
			Bounds:       bounds.Size,
			ScrollOffset: w.scroll.Offset(host),
		})
		w.iframes.MarkInvoked(host, reason)
		w.iframes.UpdateIFrameInfo(host, ret.ScrollSize, ret.VirtualScrollSize)
		if ret.Dom == nil {
			delete(w.doms, nested)
			return nested, false, nil
		}
		w.doms[nested] = w.style(ret.Dom.Compact(), w.iframeSheet(host, ret.CSS))
		w.forgetPointerState(nested)
		w.restoreFocus(nested)
		w.logger.Debug("IFrame rendered.",
			zap.Stringer("host", host),
			zap.Uint32("dom", uint32(nested)),
			zap.Stringer("reason", reason))
	}
	styled, ok := w.doms[nested]
	if !ok {
		return nested, false, nil
	}

	local := geom.LogicalRect{Size: bounds.Size}
	content, _, _ := w.iframes.ScrollSize(host)
	w.scroll.UpdateNodeBounds(host, local, geom.LogicalRect{Size: content}, w.now())

	tree, err := w.app.solver.Layout(ctx, styled, local)
	if err != nil {
		return nested, false, fmt.Errorf("failed to lay out iframe %s: %w", host, err)
	}
	w.trees[nested] = tree
	w.hosts[nested] = host
	w.trackScrollContainers(nested)
	return nested, true, nil
}

func (w *Window) iframeSheet(host dom.DomNodeId, src string) *parser.Stylesheet {
	if src == "" {
		return nil
	}
	sheet, err := parser.ParseStylesheet(src)
	if err != nil {
		w.logger.Warn("IFrame stylesheet rejected.", zap.Stringer("host", host), zap.Error(err))
		return nil
	}
	return sheet
}

// redisplay rebuilds every display list from the current layout and
// scroll offsets.
func (w *Window) redisplay() {
	w.hits = hittest.NewForest()
	w.lists = make(map[dom.DomId]*displaylist.DisplayList, len(w.trees))
	for _, d := range slices.Sorted(maps.Keys(w.trees)) {
		list := displaylist.Build(w.trees[d], w.doms[d],
			displaylist.WithScrollOffsets(w.scroll.OffsetsFor(d)),
			displaylist.WithHiDPIFactor(w.opts.HiDPIFactor),
			displaylist.WithLogger(w.logger))
		w.lists[d] = list
		w.hits.Add(d, list)
	}
	for nested, host := range w.hosts {
		w.hits.Link(host, nested)
	}
	w.scroll.UpdateScrollbars()
	w.dirty = clean
}

// isHost reports whether n renders an iframe.
func (w *Window) isHost(n dom.DomNodeId) bool {
	for _, h := range w.hosts {
		if h == n {
			return true
		}
	}
	return false
}

// Tick advances scroll animations to now. Animated iframe hosts are laid
// out again so that edge triggers can fire.
func (w *Window) Tick(ctx context.Context, now time.Time) error {
	w.scroll.BeginFrame()
	res := w.scroll.Tick(now)
	if !res.NeedsRepaint {
		return nil
	}
	w.invalidate(dirtyDisplay)
	for _, n := range res.Updated {
		if w.isHost(n) {
			w.invalidate(dirtyLayout)
			break
		}
	}
	return w.flush(ctx)
}
