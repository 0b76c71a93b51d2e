// internal/css/value.go
package css

import (
	"fmt"
	"reflect"
)

// ValueKind distinguishes CSS-wide keywords from concrete values.
type ValueKind uint8

const (
	ValueAuto ValueKind = iota
	ValueNone
	ValueInitial
	ValueInherit
	ValueExact
)

var valueKindNames = []string{"auto", "none", "initial", "inherit", "exact"}

func (k ValueKind) String() string { return keywordName(valueKindNames, uint8(k)) }

// CssPropertyValue is a typed property value: a keyword or Exact(T).
type CssPropertyValue[T any] struct {
	Kind  ValueKind
	Value T
}

// Exact wraps a concrete value.
func Exact[T any](v T) CssPropertyValue[T] {
	return CssPropertyValue[T]{Kind: ValueExact, Value: v}
}

// Keyword returns a value holding only a CSS-wide keyword.
func Keyword[T any](k ValueKind) CssPropertyValue[T] {
	return CssPropertyValue[T]{Kind: k}
}

// Get returns the concrete value and whether there is one.
func (v CssPropertyValue[T]) Get() (T, bool) {
	return v.Value, v.Kind == ValueExact
}

// GetOr returns the concrete value or def.
func (v CssPropertyValue[T]) GetOr(def T) T {
	if v.Kind == ValueExact {
		return v.Value
	}
	return def
}

func (v CssPropertyValue[T]) IsAuto() bool    { return v.Kind == ValueAuto }
func (v CssPropertyValue[T]) IsNone() bool    { return v.Kind == ValueNone }
func (v CssPropertyValue[T]) IsInherit() bool { return v.Kind == ValueInherit }
func (v CssPropertyValue[T]) IsInitial() bool { return v.Kind == ValueInitial }
func (v CssPropertyValue[T]) IsExact() bool   { return v.Kind == ValueExact }

// CssProperty is one resolved declaration: a property kind and its value.
// The payload type is fixed per kind (see PropertyKind.PayloadType).
type CssProperty struct {
	Kind    PropertyKind
	Keyword ValueKind
	payload any
}

// NewProperty builds an Exact property. It panics when the payload type
// does not match the kind, which is a programming error.
func NewProperty[T any](kind PropertyKind, v T) CssProperty {
	if want := kind.PayloadType(); want != nil && reflect.TypeOf(v) != want {
		panic(fmt.Sprintf("css: %s expects %s, got %T", kind, want, v))
	}
	return CssProperty{Kind: kind, Keyword: ValueExact, payload: v}
}

// NewKeywordProperty builds a property holding a CSS-wide keyword.
func NewKeywordProperty(kind PropertyKind, k ValueKind) CssProperty {
	return CssProperty{Kind: kind, Keyword: k}
}

// Payload returns the concrete value, nil for keywords.
func (p CssProperty) Payload() any { return p.payload }

// IsExact reports whether the property carries a concrete value.
func (p CssProperty) IsExact() bool { return p.Keyword == ValueExact }

// Equal compares kind, keyword and payload.
func (p CssProperty) Equal(o CssProperty) bool {
	return p.Kind == o.Kind && p.Keyword == o.Keyword && reflect.DeepEqual(p.payload, o.payload)
}

func (p CssProperty) String() string {
	if p.Keyword != ValueExact {
		return fmt.Sprintf("%s: %s", p.Kind, p.Keyword)
	}
	return fmt.Sprintf("%s: %v", p.Kind, p.payload)
}

// ValueOf reads the typed value of p. A payload of the wrong type yields
// the keyword with a zero value.
func ValueOf[T any](p CssProperty) CssPropertyValue[T] {
	t, ok := p.payload.(T)
	if p.Keyword == ValueExact && !ok {
		return CssPropertyValue[T]{Kind: ValueInitial}
	}
	return CssPropertyValue[T]{Kind: p.Keyword, Value: t}
}
