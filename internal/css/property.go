// internal/css/property.go
package css

import (
	"reflect"
	"strings"
)

// PropertyKind enumerates every property the styling core consumes.
// The order is the sort key used by the property cache.
type PropertyKind uint8

const (
	PropDisplay PropertyKind = iota
	PropPosition
	PropFloat
	PropClear
	PropBoxSizing
	PropTop
	PropRight
	PropBottom
	PropLeft
	PropWidth
	PropHeight
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropBorderTopWidth
	PropBorderRightWidth
	PropBorderBottomWidth
	PropBorderLeftWidth
	PropBorderTopStyle
	PropBorderRightStyle
	PropBorderBottomStyle
	PropBorderLeftStyle
	PropBorderTopColor
	PropBorderRightColor
	PropBorderBottomColor
	PropBorderLeftColor
	PropBorderTopLeftRadius
	PropBorderTopRightRadius
	PropBorderBottomRightRadius
	PropBorderBottomLeftRadius
	PropBoxShadow
	PropBackgroundContent
	PropBackgroundPosition
	PropBackgroundSize
	PropBackgroundRepeat
	PropOpacity
	PropTextColor
	PropFontFamily
	PropFontSize
	PropFontStyle
	PropFontWeight
	PropLetterSpacing
	PropWordSpacing
	PropLineHeight
	PropTabWidth
	PropTextAlign
	PropTextIndent
	PropTextDecoration
	PropWhiteSpace
	PropDirection
	PropWritingMode
	PropVisibility
	PropCursor
	PropOverflowX
	PropOverflowY
	PropFlexDirection
	PropFlexWrap
	PropFlexGrow
	PropFlexShrink
	PropFlexBasis
	PropJustifyContent
	PropAlignItems
	PropAlignContent
	PropAlignSelf
	PropOrder
	PropRowGap
	PropColumnGap
	PropTableLayout
	PropBorderCollapse
	PropBorderSpacing
	PropZIndex
	PropTransform
	PropPerspective
	PropBackfaceVisibility
	PropFilter
	PropClipPath
	PropShapeInside
	PropShapeOutside

	propertyKindCount
)

// ChangeClass tells the restyle pipeline which stages a changed property invalidates.
type ChangeClass uint8

const (
	// ChangeLayout requires re-layout of the containing block.
	ChangeLayout ChangeClass = iota
	// ChangeDisplayList requires regenerating the node's display items only.
	ChangeDisplayList
	// ChangeGpuOnly only updates compositor parameters.
	ChangeGpuOnly
)

var changeClassNames = []string{"layout", "display-list", "gpu-only"}

func (c ChangeClass) String() string { return keywordName(changeClassNames, uint8(c)) }

type propertyInfo struct {
	name      string
	inherited bool
	class     ChangeClass
	allowAuto bool
	allowNone bool
	parse     func(string) (any, error)
	// initial is the CSS initial value; a nil payload means initialKeyword.
	initial        any
	initialKeyword ValueKind
	payloadType    reflect.Type
}

var propertyInfos [propertyKindCount]propertyInfo

var propertyByName = map[string]PropertyKind{}

func register(kind PropertyKind, info propertyInfo) {
	if info.initial != nil {
		info.initialKeyword = ValueExact
		info.payloadType = reflect.TypeOf(info.initial)
	}
	propertyInfos[kind] = info
	propertyByName[info.name] = kind
}

func enumParser[T ~uint8](names []string) func(string) (any, error) {
	return func(s string) (any, error) { return parseKeyword[T](names, s) }
}

func pixelParser(s string) (any, error) { return ParsePixelValue(s) }

// nonNegativePixelParser rejects negative paddings, widths and radii.
func nonNegativePixelParser(s string) (any, error) {
	p, err := ParsePixelValue(s)
	if err != nil {
		return nil, err
	}
	if p.Number.Number < 0 {
		return nil, ErrInvalidValue
	}
	return p, nil
}

func floatParser(s string) (any, error) { return ParseFloat(s) }

func intParser(s string) (any, error) {
	f, err := ParseFloat(s)
	if err != nil {
		return nil, err
	}
	if f.Number%FPPrecisionMultiplier != 0 {
		return nil, ErrInvalidValue
	}
	return int32(f.Number / FPPrecisionMultiplier), nil
}

func colorParser(s string) (any, error) { return ParseColor(s) }

func borderWidthParser(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "thin":
		return Px(1), nil
	case "medium":
		return Px(3), nil
	case "thick":
		return Px(5), nil
	}
	return nonNegativePixelParser(s)
}

func spacingParser(s string) (any, error) {
	if strings.EqualFold(strings.TrimSpace(s), "normal") {
		return Px(0), nil
	}
	return ParsePixelValue(s)
}

// lineHeightParser reads unitless numbers as multiples of the font size,
// stored as a percentage.
func lineHeightParser(s string) (any, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "normal" {
		return Percent(120), nil
	}
	if f, err := ParseFloat(s); err == nil {
		return PixelValue{Metric: MetricPercent, Number: FloatValue{Number: f.Number * 100}}, nil
	}
	return ParsePixelValue(s)
}

func fontSizeParser(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return Px(13), nil
	case "medium":
		return Px(16), nil
	case "large":
		return Px(18), nil
	case "x-large":
		return Px(24), nil
	}
	return nonNegativePixelParser(s)
}

func backgroundPositionParser(s string) (any, error) {
	keywords := map[string]PixelValue{
		"left": Percent(0), "top": Percent(0), "center": Percent(50),
		"right": Percent(100), "bottom": Percent(100),
	}
	f := strings.Fields(strings.ToLower(s))
	if len(f) == 0 || len(f) > 2 {
		return nil, ErrInvalidValue
	}
	vals := make([]PixelValue, 2)
	vals[1] = Percent(50)
	for i, tok := range f {
		if v, ok := keywords[tok]; ok {
			vals[i] = v
			continue
		}
		p, err := ParsePixelValue(tok)
		if err != nil {
			return nil, err
		}
		vals[i] = p
	}
	return BackgroundPosition{X: vals[0], Y: vals[1]}, nil
}

func backgroundSizeParser(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contain":
		return BackgroundSize{Kind: BackgroundSizeContain}, nil
	case "cover":
		return BackgroundSize{Kind: BackgroundSizeCover}, nil
	}
	f := strings.Fields(s)
	if len(f) == 0 || len(f) > 2 {
		return nil, ErrInvalidValue
	}
	w, err := ParsePixelValue(f[0])
	if err != nil {
		return nil, err
	}
	h := w
	if len(f) == 2 {
		if h, err = ParsePixelValue(f[1]); err != nil {
			return nil, err
		}
	}
	return BackgroundSize{Kind: BackgroundSizeExact, Width: w, Height: h}, nil
}

func shapeParser(s string) (any, error) { return ParseShape(s) }

func init() {
	layoutEnum := func(name string, parse func(string) (any, error), initial any) propertyInfo {
		return propertyInfo{name: name, class: ChangeLayout, parse: parse, initial: initial}
	}
	register(PropDisplay, layoutEnum("display", enumParser[LayoutDisplay](displayNames), DisplayInline))
	register(PropPosition, layoutEnum("position", enumParser[LayoutPosition](positionNames), PositionStatic))
	register(PropFloat, layoutEnum("float", enumParser[LayoutFloat](floatNames), FloatNone))
	register(PropClear, layoutEnum("clear", enumParser[LayoutClear](clearNames), ClearNone))
	register(PropBoxSizing, layoutEnum("box-sizing", enumParser[BoxSizing](boxSizingNames), BoxSizingContentBox))

	for kind, name := range map[PropertyKind]string{PropTop: "top", PropRight: "right", PropBottom: "bottom", PropLeft: "left"} {
		register(kind, propertyInfo{name: name, class: ChangeLayout, allowAuto: true, parse: pixelParser, initialKeyword: ValueAuto, payloadType: reflect.TypeOf(PixelValue{})})
	}
	for kind, name := range map[PropertyKind]string{PropWidth: "width", PropHeight: "height", PropMinWidth: "min-width", PropMinHeight: "min-height"} {
		register(kind, propertyInfo{name: name, class: ChangeLayout, allowAuto: true, parse: nonNegativePixelParser, initialKeyword: ValueAuto, payloadType: reflect.TypeOf(PixelValue{})})
	}
	for kind, name := range map[PropertyKind]string{PropMaxWidth: "max-width", PropMaxHeight: "max-height"} {
		register(kind, propertyInfo{name: name, class: ChangeLayout, allowNone: true, parse: nonNegativePixelParser, initialKeyword: ValueNone, payloadType: reflect.TypeOf(PixelValue{})})
	}
	for kind, name := range map[PropertyKind]string{PropMarginTop: "margin-top", PropMarginRight: "margin-right", PropMarginBottom: "margin-bottom", PropMarginLeft: "margin-left"} {
		register(kind, propertyInfo{name: name, class: ChangeLayout, allowAuto: true, parse: pixelParser, initial: Px(0)})
	}
	for kind, name := range map[PropertyKind]string{PropPaddingTop: "padding-top", PropPaddingRight: "padding-right", PropPaddingBottom: "padding-bottom", PropPaddingLeft: "padding-left"} {
		register(kind, propertyInfo{name: name, class: ChangeLayout, parse: nonNegativePixelParser, initial: Px(0)})
	}
	for kind, name := range map[PropertyKind]string{PropBorderTopWidth: "border-top-width", PropBorderRightWidth: "border-right-width", PropBorderBottomWidth: "border-bottom-width", PropBorderLeftWidth: "border-left-width"} {
		register(kind, propertyInfo{name: name, class: ChangeLayout, parse: borderWidthParser, initial: Px(3)})
	}
	for kind, name := range map[PropertyKind]string{PropBorderTopStyle: "border-top-style", PropBorderRightStyle: "border-right-style", PropBorderBottomStyle: "border-bottom-style", PropBorderLeftStyle: "border-left-style"} {
		register(kind, propertyInfo{name: name, class: ChangeLayout, parse: enumParser[BorderStyle](borderStyleNames), initial: BorderStyleNone})
	}
	for kind, name := range map[PropertyKind]string{PropBorderTopColor: "border-top-color", PropBorderRightColor: "border-right-color", PropBorderBottomColor: "border-bottom-color", PropBorderLeftColor: "border-left-color"} {
		register(kind, propertyInfo{name: name, class: ChangeDisplayList, parse: colorParser, initial: ColorBlack})
	}
	for kind, name := range map[PropertyKind]string{PropBorderTopLeftRadius: "border-top-left-radius", PropBorderTopRightRadius: "border-top-right-radius", PropBorderBottomRightRadius: "border-bottom-right-radius", PropBorderBottomLeftRadius: "border-bottom-left-radius"} {
		register(kind, propertyInfo{name: name, class: ChangeDisplayList, parse: nonNegativePixelParser, initial: Px(0)})
	}

	register(PropBoxShadow, propertyInfo{name: "box-shadow", class: ChangeDisplayList, allowNone: true, initialKeyword: ValueNone, payloadType: reflect.TypeOf(BoxShadow{}),
		parse: func(s string) (any, error) { return ParseBoxShadow(s) }})
	register(PropBackgroundContent, propertyInfo{name: "background-content", class: ChangeDisplayList, allowNone: true, initialKeyword: ValueNone, payloadType: reflect.TypeOf(BackgroundContent{}),
		parse: func(s string) (any, error) { return ParseBackgroundContent(s) }})
	register(PropBackgroundPosition, propertyInfo{name: "background-position", class: ChangeDisplayList, parse: backgroundPositionParser, initial: BackgroundPosition{X: Percent(0), Y: Percent(0)}})
	register(PropBackgroundSize, propertyInfo{name: "background-size", class: ChangeDisplayList, allowAuto: true, parse: backgroundSizeParser, initialKeyword: ValueAuto, payloadType: reflect.TypeOf(BackgroundSize{})})
	register(PropBackgroundRepeat, propertyInfo{name: "background-repeat", class: ChangeDisplayList, parse: enumParser[BackgroundRepeat](backgroundRepeatNames), initial: BackgroundRepeatRepeat})
	register(PropOpacity, propertyInfo{name: "opacity", class: ChangeGpuOnly, parse: floatParser, initial: ConstNew(1)})
	register(PropTextColor, propertyInfo{name: "color", inherited: true, class: ChangeDisplayList, parse: colorParser, initial: ColorBlack})
	register(PropFontFamily, propertyInfo{name: "font-family", inherited: true, class: ChangeLayout, initial: FontFamily{Names: []string{"sans-serif"}},
		parse: func(s string) (any, error) { return ParseFontFamily(s) }})
	register(PropFontSize, propertyInfo{name: "font-size", inherited: true, class: ChangeLayout, parse: fontSizeParser, initial: Px(16)})
	register(PropFontStyle, propertyInfo{name: "font-style", inherited: true, class: ChangeLayout, parse: enumParser[FontStyle](fontStyleNames), initial: FontStyleNormal})
	register(PropFontWeight, propertyInfo{name: "font-weight", inherited: true, class: ChangeLayout, initial: FontWeightNormal,
		parse: func(s string) (any, error) { return parseFontWeight(s) }})
	register(PropLetterSpacing, propertyInfo{name: "letter-spacing", inherited: true, class: ChangeLayout, parse: spacingParser, initial: Px(0)})
	register(PropWordSpacing, propertyInfo{name: "word-spacing", inherited: true, class: ChangeLayout, parse: spacingParser, initial: Px(0)})
	register(PropLineHeight, propertyInfo{name: "line-height", inherited: true, class: ChangeLayout, parse: lineHeightParser, initial: Percent(120)})
	register(PropTabWidth, propertyInfo{name: "tab-width", inherited: true, class: ChangeLayout, parse: floatParser, initial: ConstNew(8)})
	register(PropTextAlign, propertyInfo{name: "text-align", inherited: true, class: ChangeLayout, parse: enumParser[TextAlign](textAlignNames), initial: TextAlignStart})
	register(PropTextIndent, propertyInfo{name: "text-indent", inherited: true, class: ChangeLayout, parse: pixelParser, initial: Px(0)})
	register(PropTextDecoration, propertyInfo{name: "text-decoration", class: ChangeDisplayList, parse: enumParser[TextDecoration](textDecorationNames), initial: TextDecorationNone})
	register(PropWhiteSpace, propertyInfo{name: "white-space", inherited: true, class: ChangeLayout, parse: enumParser[WhiteSpace](whiteSpaceNames), initial: WhiteSpaceNormal})
	register(PropDirection, propertyInfo{name: "direction", inherited: true, class: ChangeLayout, parse: enumParser[Direction](directionNames), initial: DirectionLTR})
	register(PropWritingMode, propertyInfo{name: "writing-mode", inherited: true, class: ChangeLayout, parse: enumParser[WritingMode](writingModeNames), initial: WritingModeHorizontalTB})
	register(PropVisibility, propertyInfo{name: "visibility", inherited: true, class: ChangeDisplayList, parse: enumParser[Visibility](visibilityNames), initial: VisibilityVisible})
	register(PropCursor, propertyInfo{name: "cursor", inherited: true, class: ChangeDisplayList, allowAuto: true, parse: enumParser[Cursor](cursorNames), initial: CursorDefault})
	register(PropOverflowX, propertyInfo{name: "overflow-x", class: ChangeLayout, parse: enumParser[Overflow](overflowNames), initial: OverflowVisible})
	register(PropOverflowY, propertyInfo{name: "overflow-y", class: ChangeLayout, parse: enumParser[Overflow](overflowNames), initial: OverflowVisible})
	register(PropFlexDirection, propertyInfo{name: "flex-direction", class: ChangeLayout, parse: enumParser[FlexDirection](flexDirectionNames), initial: FlexDirectionRow})
	register(PropFlexWrap, propertyInfo{name: "flex-wrap", class: ChangeLayout, parse: enumParser[FlexWrap](flexWrapNames), initial: FlexWrapNoWrap})
	register(PropFlexGrow, propertyInfo{name: "flex-grow", class: ChangeLayout, parse: floatParser, initial: ConstNew(0)})
	register(PropFlexShrink, propertyInfo{name: "flex-shrink", class: ChangeLayout, parse: floatParser, initial: ConstNew(1)})
	register(PropFlexBasis, propertyInfo{name: "flex-basis", class: ChangeLayout, allowAuto: true, parse: nonNegativePixelParser, initialKeyword: ValueAuto, payloadType: reflect.TypeOf(PixelValue{})})
	register(PropJustifyContent, propertyInfo{name: "justify-content", class: ChangeLayout, parse: enumParser[JustifyContent](justifyContentNames), initial: JustifyFlexStart})
	register(PropAlignItems, propertyInfo{name: "align-items", class: ChangeLayout, parse: enumParser[AlignItems](alignItemsNames), initial: AlignItemsStretch})
	register(PropAlignContent, propertyInfo{name: "align-content", class: ChangeLayout, parse: enumParser[AlignContent](alignContentNames), initial: AlignContentStretch})
	register(PropAlignSelf, propertyInfo{name: "align-self", class: ChangeLayout, parse: enumParser[AlignSelf](alignSelfNames), initial: AlignSelfAuto})
	register(PropOrder, propertyInfo{name: "order", class: ChangeLayout, parse: intParser, initial: int32(0)})
	register(PropRowGap, propertyInfo{name: "row-gap", class: ChangeLayout, parse: nonNegativePixelParser, initial: Px(0)})
	register(PropColumnGap, propertyInfo{name: "column-gap", class: ChangeLayout, parse: nonNegativePixelParser, initial: Px(0)})
	register(PropTableLayout, propertyInfo{name: "table-layout", class: ChangeLayout, parse: enumParser[TableLayout](tableLayoutNames), initial: TableLayoutAuto})
	register(PropBorderCollapse, propertyInfo{name: "border-collapse", inherited: true, class: ChangeLayout, parse: enumParser[BorderCollapse](borderCollapseNames), initial: BorderCollapseSeparate})
	register(PropBorderSpacing, propertyInfo{name: "border-spacing", inherited: true, class: ChangeLayout, parse: nonNegativePixelParser, initial: Px(0)})
	register(PropZIndex, propertyInfo{name: "z-index", class: ChangeDisplayList, allowAuto: true, parse: intParser, initialKeyword: ValueAuto, payloadType: reflect.TypeOf(int32(0))})
	register(PropTransform, propertyInfo{name: "transform", class: ChangeGpuOnly, allowNone: true, initialKeyword: ValueNone, payloadType: reflect.TypeOf(TransformMatrix{}),
		parse: func(s string) (any, error) { return ParseTransform(s) }})
	register(PropPerspective, propertyInfo{name: "perspective", class: ChangeGpuOnly, allowNone: true, parse: nonNegativePixelParser, initialKeyword: ValueNone, payloadType: reflect.TypeOf(PixelValue{})})
	register(PropBackfaceVisibility, propertyInfo{name: "backface-visibility", class: ChangeGpuOnly, parse: enumParser[BackfaceVisibility](backfaceNames), initial: BackfaceVisible})
	register(PropFilter, propertyInfo{name: "filter", class: ChangeGpuOnly, allowNone: true, initialKeyword: ValueNone, payloadType: reflect.TypeOf([]FilterFunction(nil)),
		parse: func(s string) (any, error) { return ParseFilter(s) }})
	register(PropClipPath, propertyInfo{name: "clip-path", class: ChangeDisplayList, allowNone: true, parse: shapeParser, initialKeyword: ValueNone, payloadType: reflect.TypeOf(Shape{})})
	register(PropShapeInside, propertyInfo{name: "shape-inside", class: ChangeLayout, allowNone: true, parse: shapeParser, initialKeyword: ValueNone, payloadType: reflect.TypeOf(Shape{})})
	register(PropShapeOutside, propertyInfo{name: "shape-outside", class: ChangeLayout, allowNone: true, parse: shapeParser, initialKeyword: ValueNone, payloadType: reflect.TypeOf(Shape{})})

	// Aliases accepted by the parser.
	propertyByName["text-color"] = PropTextColor
	propertyByName["tab-size"] = PropTabWidth
	propertyByName["background-color"] = PropBackgroundContent
	propertyByName["background-image"] = PropBackgroundContent
}

func (k PropertyKind) String() string {
	if k < propertyKindCount {
		return propertyInfos[k].name
	}
	return "unknown"
}

// IsInherited reports whether the property inherits by default.
func (k PropertyKind) IsInherited() bool { return k < propertyKindCount && propertyInfos[k].inherited }

// ChangeClass reports which pipeline stages a change to this property invalidates.
func (k PropertyKind) ChangeClass() ChangeClass { return propertyInfos[k].class }

// PayloadType is the Go type of the property's Exact payload.
func (k PropertyKind) PayloadType() reflect.Type {
	if k < propertyKindCount {
		return propertyInfos[k].payloadType
	}
	return nil
}

// InitialValue returns the CSS initial value of the property.
func (k PropertyKind) InitialValue() CssProperty {
	info := propertyInfos[k]
	return CssProperty{Kind: k, Keyword: info.initialKeyword, payload: info.initial}
}

// PropertyKindFromName resolves a CSS property name.
func PropertyKindFromName(name string) (PropertyKind, bool) {
	k, ok := propertyByName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// AllPropertyKinds returns every property kind in cache order.
func AllPropertyKinds() []PropertyKind {
	out := make([]PropertyKind, propertyKindCount)
	for i := range out {
		out[i] = PropertyKind(i)
	}
	return out
}
