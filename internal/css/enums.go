// internal/css/enums.go
package css

import (
	"fmt"
	"strings"
)

// Every enum's zero value is its CSS initial value.

func parseKeyword[T ~uint8](names []string, s string) (T, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for i, n := range names {
		if n == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: keyword %q", ErrInvalidValue, s)
}

func keywordName(names []string, i uint8) string {
	if int(i) < len(names) {
		return names[i]
	}
	return "unknown"
}

// LayoutDisplay is the computed value of `display`.
type LayoutDisplay uint8

const (
	DisplayInline LayoutDisplay = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayFlex
	DisplayInlineFlex
	DisplayTable
	DisplayInlineTable
	DisplayTableRowGroup
	DisplayTableHeaderGroup
	DisplayTableFooterGroup
	DisplayTableRow
	DisplayTableColumnGroup
	DisplayTableColumn
	DisplayTableCell
	DisplayTableCaption
	DisplayListItem
	DisplayFlowRoot
	DisplayNone
)

var displayNames = []string{
	"inline", "block", "inline-block", "flex", "inline-flex", "table", "inline-table",
	"table-row-group", "table-header-group", "table-footer-group", "table-row",
	"table-column-group", "table-column", "table-cell", "table-caption", "list-item",
	"flow-root", "none",
}

func (d LayoutDisplay) String() string { return keywordName(displayNames, uint8(d)) }

// IsInlineLevel reports whether the box participates in an inline formatting context.
func (d LayoutDisplay) IsInlineLevel() bool {
	return d == DisplayInline || d == DisplayInlineBlock || d == DisplayInlineFlex || d == DisplayInlineTable
}

// IsTablePart reports whether the value is one of the internal table displays.
func (d LayoutDisplay) IsTablePart() bool {
	return d >= DisplayTableRowGroup && d <= DisplayTableCaption
}

// LayoutPosition is the computed value of `position`.
type LayoutPosition uint8

const (
	PositionStatic LayoutPosition = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
	PositionSticky
)

var positionNames = []string{"static", "relative", "absolute", "fixed", "sticky"}

func (p LayoutPosition) String() string { return keywordName(positionNames, uint8(p)) }

// IsPositioned reports whether the box establishes a containing block for absolute descendants.
func (p LayoutPosition) IsPositioned() bool { return p != PositionStatic }

// IsOutOfFlow reports whether the box is removed from normal flow.
func (p LayoutPosition) IsOutOfFlow() bool { return p == PositionAbsolute || p == PositionFixed }

type LayoutFloat uint8

const (
	FloatNone LayoutFloat = iota
	FloatLeft
	FloatRight
)

var floatNames = []string{"none", "left", "right"}

func (f LayoutFloat) String() string { return keywordName(floatNames, uint8(f)) }

type LayoutClear uint8

const (
	ClearNone LayoutClear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

var clearNames = []string{"none", "left", "right", "both"}

func (c LayoutClear) String() string { return keywordName(clearNames, uint8(c)) }

type BoxSizing uint8

const (
	BoxSizingContentBox BoxSizing = iota
	BoxSizingBorderBox
)

var boxSizingNames = []string{"content-box", "border-box"}

func (b BoxSizing) String() string { return keywordName(boxSizingNames, uint8(b)) }

type FlexDirection uint8

const (
	FlexDirectionRow FlexDirection = iota
	FlexDirectionRowReverse
	FlexDirectionColumn
	FlexDirectionColumnReverse
)

var flexDirectionNames = []string{"row", "row-reverse", "column", "column-reverse"}

func (f FlexDirection) String() string { return keywordName(flexDirectionNames, uint8(f)) }

// IsRow reports whether the main axis is horizontal.
func (f FlexDirection) IsRow() bool { return f == FlexDirectionRow || f == FlexDirectionRowReverse }

// IsReverse reports whether items are laid out from main-end to main-start.
func (f FlexDirection) IsReverse() bool {
	return f == FlexDirectionRowReverse || f == FlexDirectionColumnReverse
}

type FlexWrap uint8

const (
	FlexWrapNoWrap FlexWrap = iota
	FlexWrapWrap
	FlexWrapWrapReverse
)

var flexWrapNames = []string{"nowrap", "wrap", "wrap-reverse"}

func (f FlexWrap) String() string { return keywordName(flexWrapNames, uint8(f)) }

type JustifyContent uint8

const (
	JustifyFlexStart JustifyContent = iota
	JustifyFlexEnd
	JustifyCenter
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

var justifyContentNames = []string{"flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly"}

func (j JustifyContent) String() string { return keywordName(justifyContentNames, uint8(j)) }

type AlignItems uint8

const (
	AlignItemsStretch AlignItems = iota
	AlignItemsFlexStart
	AlignItemsFlexEnd
	AlignItemsCenter
	AlignItemsBaseline
)

var alignItemsNames = []string{"stretch", "flex-start", "flex-end", "center", "baseline"}

func (a AlignItems) String() string { return keywordName(alignItemsNames, uint8(a)) }

type AlignContent uint8

const (
	AlignContentStretch AlignContent = iota
	AlignContentFlexStart
	AlignContentFlexEnd
	AlignContentCenter
	AlignContentSpaceBetween
	AlignContentSpaceAround
)

var alignContentNames = []string{"stretch", "flex-start", "flex-end", "center", "space-between", "space-around"}

func (a AlignContent) String() string { return keywordName(alignContentNames, uint8(a)) }

// AlignSelf overrides align-items for one flex item; AlignSelfAuto defers to the container.
type AlignSelf uint8

const (
	AlignSelfAuto AlignSelf = iota
	AlignSelfStretch
	AlignSelfFlexStart
	AlignSelfFlexEnd
	AlignSelfCenter
	AlignSelfBaseline
)

var alignSelfNames = []string{"auto", "stretch", "flex-start", "flex-end", "center", "baseline"}

func (a AlignSelf) String() string { return keywordName(alignSelfNames, uint8(a)) }

// Resolve returns the effective alignment given the container's align-items.
func (a AlignSelf) Resolve(parent AlignItems) AlignItems {
	if a == AlignSelfAuto {
		return parent
	}
	return AlignItems(a - 1)
}

type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
	OverflowClip
)

var overflowNames = []string{"visible", "hidden", "scroll", "auto", "clip"}

func (o Overflow) String() string { return keywordName(overflowNames, uint8(o)) }

// Clips reports whether content outside the padding box is not painted.
func (o Overflow) Clips() bool { return o != OverflowVisible }

// IsScrollable reports whether the box may scroll its content.
func (o Overflow) IsScrollable() bool { return o == OverflowScroll || o == OverflowAuto }

type TextAlign uint8

const (
	TextAlignStart TextAlign = iota
	TextAlignEnd
	TextAlignLeft
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

var textAlignNames = []string{"start", "end", "left", "right", "center", "justify"}

func (t TextAlign) String() string { return keywordName(textAlignNames, uint8(t)) }

type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpaceNoWrap
	WhiteSpacePre
	WhiteSpacePreWrap
	WhiteSpacePreLine
)

var whiteSpaceNames = []string{"normal", "nowrap", "pre", "pre-wrap", "pre-line"}

func (w WhiteSpace) String() string { return keywordName(whiteSpaceNames, uint8(w)) }

// Wraps reports whether lines may break at soft wrap opportunities.
func (w WhiteSpace) Wraps() bool { return w != WhiteSpaceNoWrap && w != WhiteSpacePre }

type Direction uint8

const (
	DirectionLTR Direction = iota
	DirectionRTL
)

var directionNames = []string{"ltr", "rtl"}

func (d Direction) String() string { return keywordName(directionNames, uint8(d)) }

type WritingMode uint8

const (
	WritingModeHorizontalTB WritingMode = iota
	WritingModeVerticalRL
	WritingModeVerticalLR
)

var writingModeNames = []string{"horizontal-tb", "vertical-rl", "vertical-lr"}

func (w WritingMode) String() string { return keywordName(writingModeNames, uint8(w)) }

type Visibility uint8

const (
	VisibilityVisible Visibility = iota
	VisibilityHidden
	VisibilityCollapse
)

var visibilityNames = []string{"visible", "hidden", "collapse"}

func (v Visibility) String() string { return keywordName(visibilityNames, uint8(v)) }

type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique
)

var fontStyleNames = []string{"normal", "italic", "oblique"}

func (f FontStyle) String() string { return keywordName(fontStyleNames, uint8(f)) }

type BorderCollapse uint8

const (
	BorderCollapseSeparate BorderCollapse = iota
	BorderCollapseCollapse
)

var borderCollapseNames = []string{"separate", "collapse"}

func (b BorderCollapse) String() string { return keywordName(borderCollapseNames, uint8(b)) }

type TableLayout uint8

const (
	TableLayoutAuto TableLayout = iota
	TableLayoutFixed
)

var tableLayoutNames = []string{"auto", "fixed"}

func (t TableLayout) String() string { return keywordName(tableLayoutNames, uint8(t)) }

type BorderStyle uint8

const (
	BorderStyleNone BorderStyle = iota
	BorderStyleSolid
	BorderStyleDashed
	BorderStyleDotted
	BorderStyleDouble
	BorderStyleGroove
	BorderStyleRidge
	BorderStyleInset
	BorderStyleOutset
	BorderStyleHidden
)

var borderStyleNames = []string{"none", "solid", "dashed", "dotted", "double", "groove", "ridge", "inset", "outset", "hidden"}

func (b BorderStyle) String() string { return keywordName(borderStyleNames, uint8(b)) }

// IsVisible reports whether a border with this style paints and takes space.
func (b BorderStyle) IsVisible() bool { return b != BorderStyleNone && b != BorderStyleHidden }

type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorText
	CursorMove
	CursorCrosshair
	CursorWait
	CursorNotAllowed
	CursorGrab
	CursorGrabbing
	CursorEResize
	CursorNResize
	CursorHelp
)

var cursorNames = []string{"default", "pointer", "text", "move", "crosshair", "wait", "not-allowed", "grab", "grabbing", "e-resize", "n-resize", "help"}

func (c Cursor) String() string { return keywordName(cursorNames, uint8(c)) }

type BackfaceVisibility uint8

const (
	BackfaceVisible BackfaceVisibility = iota
	BackfaceHidden
)

var backfaceNames = []string{"visible", "hidden"}

func (b BackfaceVisibility) String() string { return keywordName(backfaceNames, uint8(b)) }

type TextDecoration uint8

const (
	TextDecorationNone TextDecoration = iota
	TextDecorationUnderline
	TextDecorationOverline
	TextDecorationLineThrough
)

var textDecorationNames = []string{"none", "underline", "overline", "line-through"}

func (t TextDecoration) String() string { return keywordName(textDecorationNames, uint8(t)) }

type BackgroundRepeat uint8

const (
	BackgroundRepeatRepeat BackgroundRepeat = iota
	BackgroundRepeatNoRepeat
	BackgroundRepeatX
	BackgroundRepeatY
)

var backgroundRepeatNames = []string{"repeat", "no-repeat", "repeat-x", "repeat-y"}

func (b BackgroundRepeat) String() string { return keywordName(backgroundRepeatNames, uint8(b)) }

// FontWeight is the numeric weight, 100 to 900.
type FontWeight uint16

const (
	FontWeightNormal FontWeight = 400
	FontWeightBold   FontWeight = 700
)

func parseFontWeight(s string) (FontWeight, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "normal":
		return FontWeightNormal, nil
	case "bold":
		return FontWeightBold, nil
	case "lighter":
		return 300, nil
	case "bolder":
		return 800, nil
	}
	f, err := ParseFloat(s)
	if err != nil {
		return 0, err
	}
	w := f.Get()
	if w < 1 || w > 1000 {
		return 0, fmt.Errorf("%w: font-weight %q", ErrInvalidValue, s)
	}
	return FontWeight(w), nil
}
