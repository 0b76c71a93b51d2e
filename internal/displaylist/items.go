// internal/displaylist/items.go
package displaylist

import (
	"github.com/xkilldash9x/boxkit/internal/css"
	"github.com/xkilldash9x/boxkit/internal/dom"
	"github.com/xkilldash9x/boxkit/internal/geom"
)

// ItemKind tags the concrete type of an Item.
type ItemKind uint8

const (
	KindRect ItemKind = iota
	KindGradient
	KindImage
	KindBorder
	KindBoxShadow
	KindText
	KindIFrame
	KindHitArea
	KindPushClip
	KindPopClip
	KindPushStackingContext
	KindPopStackingContext
)

var kindNames = []string{
	"rect", "gradient", "image", "border", "box-shadow", "text", "iframe", "hit-area",
	"push-clip", "pop-clip", "push-stacking-context", "pop-stacking-context",
}

func (k ItemKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Item is one display list primitive. Geometry is in the layout
// coordinates of the enclosing stacking context; consumers apply the
// transforms and scroll offsets of the pushed contexts and clips.
type Item interface {
	Kind() ItemKind
}

// BorderRadii are the corner radii of a box in px.
type BorderRadii struct {
	TopLeft     float32 `json:"top_left"`
	TopRight    float32 `json:"top_right"`
	BottomRight float32 `json:"bottom_right"`
	BottomLeft  float32 `json:"bottom_left"`
}

// IsZero reports square corners.
func (r BorderRadii) IsZero() bool { return r == BorderRadii{} }

// shrink returns the radii of the box inset by edges, used for padding-box clips.
func (r BorderRadii) shrink(e geom.Edges) BorderRadii {
	return BorderRadii{
		TopLeft:     max(0, r.TopLeft-max(e.Top, e.Left)),
		TopRight:    max(0, r.TopRight-max(e.Top, e.Right)),
		BottomRight: max(0, r.BottomRight-max(e.Bottom, e.Right)),
		BottomLeft:  max(0, r.BottomLeft-max(e.Bottom, e.Left)),
	}
}

// contains tests p against the rounded corners of rect.
func (r BorderRadii) contains(rect geom.LogicalRect, p geom.LogicalPosition) bool {
	if r.IsZero() {
		return true
	}
	corner := func(cx, cy, radius float32, inCorner bool) bool {
		if !inCorner || radius <= 0 {
			return true
		}
		dx, dy := p.X-cx, p.Y-cy
		return dx*dx+dy*dy <= radius*radius
	}
	x0, y0, x1, y1 := rect.Origin.X, rect.Origin.Y, rect.MaxX(), rect.MaxY()
	return corner(x0+r.TopLeft, y0+r.TopLeft, r.TopLeft, p.X < x0+r.TopLeft && p.Y < y0+r.TopLeft) &&
		corner(x1-r.TopRight, y0+r.TopRight, r.TopRight, p.X > x1-r.TopRight && p.Y < y0+r.TopRight) &&
		corner(x1-r.BottomRight, y1-r.BottomRight, r.BottomRight, p.X > x1-r.BottomRight && p.Y > y1-r.BottomRight) &&
		corner(x0+r.BottomLeft, y1-r.BottomLeft, r.BottomLeft, p.X < x0+r.BottomLeft && p.Y > y1-r.BottomLeft)
}

// Rect fills a box with a solid colour.
type Rect struct {
	Node   dom.NodeId       `json:"node"`
	Bounds geom.LogicalRect `json:"bounds"`
	Color  css.ColorU       `json:"color"`
	Radii  BorderRadii      `json:"radii"`
}

// Gradient fills a box with a linear or radial gradient.
type Gradient struct {
	Node     dom.NodeId       `json:"node"`
	Bounds   geom.LogicalRect `json:"bounds"`
	Radial   bool             `json:"radial"`
	Gradient css.Gradient     `json:"gradient"`
	Radii    BorderRadii      `json:"radii"`
}

// Image draws a named image, a background image or an external texture.
type Image struct {
	Node     dom.NodeId       `json:"node"`
	Bounds   geom.LogicalRect `json:"bounds"`
	Name     string           `json:"name"`
	External bool             `json:"external,omitempty"`
}

// Border strokes the four sides of a border box.
type Border struct {
	Node   dom.NodeId         `json:"node"`
	Bounds geom.LogicalRect   `json:"bounds"`
	Widths geom.Edges         `json:"widths"`
	Colors [4]css.ColorU      `json:"colors"`
	Styles [4]css.BorderStyle `json:"styles"`
	Radii  BorderRadii        `json:"radii"`
}

// BoxShadow is one resolved shadow of a border box.
type BoxShadow struct {
	Node   dom.NodeId           `json:"node"`
	Bounds geom.LogicalRect     `json:"bounds"`
	Offset geom.LogicalPosition `json:"offset"`
	Blur   float32              `json:"blur"`
	Spread float32              `json:"spread"`
	Color  css.ColorU           `json:"color"`
	Inset  bool                 `json:"inset"`
	Radii  BorderRadii          `json:"radii"`
}

// GlyphInstance places one glyph; Origin is on the baseline.
type GlyphInstance struct {
	Index  uint32               `json:"index"`
	Origin geom.LogicalPosition `json:"origin"`
}

// Text is the glyph run of one line of a text node.
type Text struct {
	Node       dom.NodeId         `json:"node"`
	Bounds     geom.LogicalRect   `json:"bounds"`
	Glyphs     []GlyphInstance    `json:"glyphs"`
	FontSize   float32            `json:"font_size"`
	FontFamily string             `json:"font_family"`
	Color      css.ColorU         `json:"color"`
	Decoration css.TextDecoration `json:"decoration"`
}

// IFrame reserves the content box of an iframe host for its nested DOM.
type IFrame struct {
	Node   dom.NodeId       `json:"node"`
	Bounds geom.LogicalRect `json:"bounds"`
}

// HitArea is the border box of an element that can be hit-tested.
type HitArea struct {
	Node   dom.NodeId       `json:"node"`
	Bounds geom.LogicalRect `json:"bounds"`
	Tag    dom.TagId        `json:"tag"`
	HasTag bool             `json:"has_tag"`
}

// PushClip restricts the following items to Bounds until the matching
// PopClip. A non-zero Scroll translates the clipped content by -Scroll.
type PushClip struct {
	Node   dom.NodeId           `json:"node"`
	Bounds geom.LogicalRect     `json:"bounds"`
	Radii  BorderRadii          `json:"radii"`
	Shape  *css.Shape           `json:"shape,omitempty"`
	Scroll geom.LogicalPosition `json:"scroll"`
}

// Contains reports whether p, in the coordinates of the clip, is inside it.
func (c PushClip) Contains(p geom.LogicalPosition) bool {
	if !c.Bounds.Contains(p) || !c.Radii.contains(c.Bounds, p) {
		return false
	}
	if c.Shape != nil {
		return c.Shape.Contains(p.X-c.Bounds.Origin.X, p.Y-c.Bounds.Origin.Y, c.Bounds.Size.Width, c.Bounds.Size.Height)
	}
	return true
}

type PopClip struct {
	Node dom.NodeId `json:"node"`
}

// PushStackingContext starts an isolated group. Transform maps the
// group's coordinates to those of its parent.
type PushStackingContext struct {
	Node      dom.NodeId          `json:"node"`
	ZIndex    int32               `json:"z_index"`
	Opacity   float32             `json:"opacity"`
	Transform css.TransformMatrix `json:"transform"`
}

type PopStackingContext struct {
	Node dom.NodeId `json:"node"`
}

func (Rect) Kind() ItemKind                { return KindRect }
func (Gradient) Kind() ItemKind            { return KindGradient }
func (Image) Kind() ItemKind               { return KindImage }
func (Border) Kind() ItemKind              { return KindBorder }
func (BoxShadow) Kind() ItemKind           { return KindBoxShadow }
func (Text) Kind() ItemKind                { return KindText }
func (IFrame) Kind() ItemKind              { return KindIFrame }
func (HitArea) Kind() ItemKind             { return KindHitArea }
func (PushClip) Kind() ItemKind            { return KindPushClip }
func (PopClip) Kind() ItemKind             { return KindPopClip }
func (PushStackingContext) Kind() ItemKind { return KindPushStackingContext }
func (PopStackingContext) Kind() ItemKind  { return KindPopStackingContext }
