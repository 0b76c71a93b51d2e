// internal/dom/refany.go
package dom

import (
	"reflect"
	"sync/atomic"
)

// RefAny is an opaque reference-counted payload carried by callbacks and
// the node dataset. The type tag allows checked downcasts.
type RefAny struct {
	value   any
	typ     reflect.Type
	counter *atomic.Int64
}

// NewRefAny wraps v with a reference count of one.
func NewRefAny(v any) RefAny {
	c := &atomic.Int64{}
	c.Store(1)
	return RefAny{value: v, typ: reflect.TypeOf(v), counter: c}
}

// Clone returns a new handle to the same payload.
func (r RefAny) Clone() RefAny {
	if r.counter != nil {
		r.counter.Add(1)
	}
	return r
}

// Release drops one reference.
func (r RefAny) Release() {
	if r.counter != nil {
		r.counter.Add(-1)
	}
}

// RefCount returns the number of live handles.
func (r RefAny) RefCount() int64 {
	if r.counter == nil {
		return 0
	}
	return r.counter.Load()
}

// IsNil reports whether the handle carries no payload.
func (r RefAny) IsNil() bool { return r.counter == nil }

// TypeName returns the payload type for diagnostics.
func (r RefAny) TypeName() string {
	if r.typ == nil {
		return "<nil>"
	}
	return r.typ.String()
}

// Downcast returns the payload as T.
func Downcast[T any](r RefAny) (T, bool) {
	v, ok := r.value.(T)
	return v, ok
}
