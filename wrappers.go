package deltacodec

import "reflect"

// Shared is a codec-transparent shared-ownership wrapper (spec §1;
// SPEC_FULL.md Recovered Feature #1, grounded in original_source/'s Rc<T>
// delta impl, which forwards to T's own impl with no bits of its own). It
// implements codec.Transparent, so the schema compiler unwraps it entirely:
// a struct field of type Shared[T] costs exactly what a bare T field would.
type Shared[T any] struct {
	// V is exported so reflect can Set it directly on decode; Shared's own
	// API (Value/Set below) is the intended surface for callers.
	V T
}

// NewShared wraps v.
func NewShared[T any](v T) Shared[T] {
	return Shared[T]{V: v}
}

// Value returns the wrapped value.
func (s Shared[T]) Value() T { return s.V }

// Set replaces the wrapped value.
func (s *Shared[T]) Set(v T) { s.V = v }

// DeltacodecInner implements codec.Transparent.
func (s *Shared[T]) DeltacodecInner() reflect.Value {
	return reflect.ValueOf(s).Elem().Field(0)
}

// Tuple2 is a two-element tuple: a record whose fields are positional rather
// than named. It rides the ordinary aggregate codec — a tuple is, per spec
// §4.4, just a record with unnamed field access.
type Tuple2[A, B any] struct {
	F0 A
	F1 B
}

// NewTuple2 builds a Tuple2.
func NewTuple2[A, B any](a A, b B) Tuple2[A, B] {
	return Tuple2[A, B]{F0: a, F1: b}
}

// Tuple3 is a three-element tuple.
type Tuple3[A, B, C any] struct {
	F0 A
	F1 B
	F2 C
}

// NewTuple3 builds a Tuple3.
func NewTuple3[A, B, C any](a A, b B, c C) Tuple3[A, B, C] {
	return Tuple3[A, B, C]{F0: a, F1: b, F2: c}
}

// Tuple4 is a four-element tuple.
type Tuple4[A, B, C, D any] struct {
	F0 A
	F1 B
	F2 C
	F3 D
}

// NewTuple4 builds a Tuple4.
func NewTuple4[A, B, C, D any](a A, b B, c C, d D) Tuple4[A, B, C, D] {
	return Tuple4[A, B, C, D]{F0: a, F1: b, F2: c, F3: d}
}
