// internal/layout/solver.go
package layout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
	"github.com/xkilldash9x/boxkit/internal/style"
	"github.com/xkilldash9x/boxkit/internal/text"
)

// Solver computes the geometry of a styled DOM. It is safe to reuse across
// frames; each Layout call is independent.
type Solver struct {
	fonts   *text.FontCache
	workers int
	logger  *zap.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithFontCache shares a font cache between solvers.
func WithFontCache(c *text.FontCache) Option {
	return func(s *Solver) { s.fonts = c }
}

// WithShapingWorkers bounds the goroutines shaping one text run.
func WithShapingWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// WithLogger sets the logger; it is named "layout".
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) { s.logger = logger }
}

// NewSolver creates a solver. Without a font cache every family measures
// with the built-in bitmap face.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{workers: 4}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("layout")
	if s.fonts == nil {
		s.fonts = text.NewFontCache(nil, nil, s.logger)
	}
	return s
}

// run is the state of one Layout call.
type run struct {
	ctx      context.Context
	solver   *Solver
	s        *style.StyledDom
	viewport geom.LogicalRect
	tree     *LayoutTree
	runs     map[*LayoutNode]*shapedRun
	err      error
}

// Layout builds the box tree for styled and lays it out inside viewport.
// Only context cancellation during text shaping is returned as an error.
func (s *Solver) Layout(ctx context.Context, styled *style.StyledDom, viewport geom.LogicalRect) (*LayoutTree, error) {
	start := time.Now()
	r := &run{
		ctx:      ctx,
		solver:   s,
		s:        styled,
		viewport: viewport,
		runs:     make(map[*LayoutNode]*shapedRun),
	}
	r.tree = &LayoutTree{Viewport: viewport, byNode: make([]*LayoutNode, styled.Len())}
	if styled.Len() == 0 {
		return r.tree, nil
	}

	root := r.build(styled.Dom.Root())
	r.tree.Root = root
	if root == nil {
		return r.tree, nil
	}

	r.layoutBox(root, viewport.Origin, sizing{cb: viewport.Size, width: nan, height: nan})
	r.applyRelativePositioning(root)
	r.layoutOutOfFlow(root)
	if r.err != nil {
		return nil, r.err
	}

	s.logger.Debug("Layout complete",
		zap.Int("nodes", styled.Len()),
		zap.Stringer("viewport", viewport.Size),
		zap.Duration("took", time.Since(start)))
	return r.tree, nil
}

// -- Style access --

func (r *run) display(n dom.NodeId) css.LayoutDisplay { return r.s.Display(n) }

// autoLength resolves a length property against base. auto and none are
// NaN; a percentage against a negative (indefinite) base is NaN too.
func (r *run) autoLength(n *LayoutNode, kind css.PropertyKind, base float32) float32 {
	if n.IsAnonymous() {
		return nan
	}
	v, ok := r.s.Length(n.Node, kind).Get()
	if !ok {
		return nan
	}
	if v.IsPercent() && base < 0 {
		return nan
	}
	return v.ToPixels(r.s.ElementContext(n.Node), base)
}

// length resolves a length property, treating auto as zero.
func (r *run) length(n *LayoutNode, kind css.PropertyKind, base float32) float32 {
	v := r.autoLength(n, kind, base)
	if isNaN(v) {
		return 0
	}
	return v
}

func (r *run) isPercent(n *LayoutNode, kind css.PropertyKind) bool {
	if n.IsAnonymous() {
		return false
	}
	v, ok := r.s.Length(n.Node, kind).Get()
	return ok && v.IsPercent()
}

func (r *run) number(n *LayoutNode, kind css.PropertyKind) float32 {
	if n.IsAnonymous() {
		return kind.InitialValue().Payload().(css.FloatValue).Get()
	}
	return r.s.Number(n.Node, kind)
}

func (r *run) position(n *LayoutNode) css.LayoutPosition {
	if n.IsAnonymous() {
		return css.PositionStatic
	}
	return r.s.Position(n.Node)
}

func (r *run) borderBox(n *LayoutNode) bool {
	return !n.IsAnonymous() && r.s.BoxSizing(n.Node) == css.BoxSizingBorderBox
}

// styleNode returns the node whose inherited style applies to n; anonymous
// boxes use their nearest non-anonymous ancestor.
func (r *run) styleNode(n *LayoutNode) dom.NodeId {
	for c := n; c != nil; c = c.Parent {
		if !c.IsAnonymous() {
			return c.Node
		}
	}
	return r.s.Dom.Root()
}

// computeEdges resolves padding, border and margins. Percentages refer to
// the containing block width. Auto margins are NaN.
func (r *run) computeEdges(n *LayoutNode, cbWidth float32) {
	d := &n.Dimensions
	if n.IsAnonymous() {
		d.Padding, d.Border, d.Margin = geom.Edges{}, geom.Edges{}, geom.Edges{}
		return
	}
	base := max(cbWidth, 0)
	d.Padding = geom.Edges{
		Top:    max(0, r.length(n, css.PropPaddingTop, base)),
		Right:  max(0, r.length(n, css.PropPaddingRight, base)),
		Bottom: max(0, r.length(n, css.PropPaddingBottom, base)),
		Left:   max(0, r.length(n, css.PropPaddingLeft, base)),
	}
	bw := r.s.BorderWidths(n.Node)
	d.Border = geom.Edges{Top: bw[0], Right: bw[1], Bottom: bw[2], Left: bw[3]}
	d.Margin = geom.Edges{
		Top:    r.autoLength(n, css.PropMarginTop, base),
		Right:  r.autoLength(n, css.PropMarginRight, base),
		Bottom: r.autoLength(n, css.PropMarginBottom, base),
		Left:   r.autoLength(n, css.PropMarginLeft, base),
	}
}

// resolveAutoMargins replaces auto margins with zero.
func resolveAutoMargins(d *Dimensions) {
	for _, m := range []*float32{&d.Margin.Top, &d.Margin.Right, &d.Margin.Bottom, &d.Margin.Left} {
		if isNaN(*m) {
			*m = 0
		}
	}
}
