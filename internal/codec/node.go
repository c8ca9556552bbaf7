// Package codec implements the per-shape codecs of spec §4: primitive
// integers and booleans, floats (raw and fixed-point), aggregates (records
// and tuples), tagged unions, fixed arrays, and the standard-library
// adapters (optional, variable-length sequence, shared-ownership wrapper).
//
// Every codec is a Node: a value with Encode/Decode methods, built once per
// distinct (reflect.Type, Flags) pair by the root package's schema compiler
// (schema.go) and cached there for the duration of a Compile call. Nodes
// never perform reflection on their own beyond reading/writing the
// reflect.Value they're handed — the dispatch tree itself is built once, at
// schema-compile time, exactly as spec §9 requires.
package codec

import (
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// FixedPoint describes one bits("I:F") declaration.
type FixedPoint struct {
	I, F int
}

// Width returns I+F, the wire width in bits.
func (f FixedPoint) Width() uint8 { return uint8(f.I + f.F) }

// SubFixedOption is one entry of a float subbits("...") list: either a
// fixed-point (I, F) pair or the -1:-1 escape slot.
type SubFixedOption struct {
	FixedPoint
	Escape bool
}

// Flags is the union of hints in effect at a given field, variant, or type —
// the parent aggregate's flags merged with the field's own, per spec §4.4
// ("field flags are the union of the two").
type Flags struct {
	Always   bool
	Diff     bool
	Fixed    bool
	Complete bool
	Default  bool

	// Bits is the declared bits(N) width; zero means "not set" (use the
	// type's native width, or, for fixed-point floats, Bits is instead
	// expressed via FixedPoint below).
	Bits int

	// FixedPoint is set when Fixed is set via bits("I:F").
	FixedPoint FixedPoint

	// SubWidths is the option list of a subbits("a,b,...") integer hint.
	SubWidths []int

	// SubFixed is the option list of a subbits("I:F,...,-1:-1") float hint.
	SubFixed []SubFixedOption
}

// HasSubbits reports whether a subbits(...) hint of either kind was given.
func (f Flags) HasSubbits() bool {
	return len(f.SubWidths) > 0 || len(f.SubFixed) > 0
}

// Node is a compiled codec for one declared type at one point in a schema.
type Node interface {
	// Encode writes cur, using prior as baseline when hasPrior is true.
	Encode(w *wire.Writer, path string, cur reflect.Value, prior reflect.Value, hasPrior bool) error
	// Decode reads a value, using prior as baseline when hasPrior is true.
	Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error)
}

// Compiler is implemented by the root package's schema compiler. Nodes in
// this package do not hold or call a Compiler: element and field nodes are
// compiled by the schema compiler and passed to the constructors
// (NewAggregate, NewArray, NewSequence, NewOptional, NewUnion) ready-made.
type Compiler interface {
	Compile(t reflect.Type, flags Flags) (Node, error)
}

// valuesEqual implements the "structural equality" spec.md repeatedly
// invokes for unchanged-value compression (§3 invariant 3, §4.7, §9's float
// note). It compares the values as given — for floats this compares the raw
// values with == (so NaN never equals itself and -0 equals +0), not their
// quantised forms, matching spec §9's "Floating point equality" design note.
func valuesEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

// defaultNode implements the `default` hint (spec §4.9): it contributes no
// bits on the wire and reconstructs the type's zero value on decode. This
// takes priority over every other hint, so the schema compiler wraps a field
// in defaultNode before considering any other flag.
type defaultNode struct {
	typ reflect.Type
}

// NewDefault returns a Node implementing the `default` hint for typ.
func NewDefault(typ reflect.Type) Node {
	return &defaultNode{typ: typ}
}

func (n *defaultNode) Encode(_ *wire.Writer, _ string, _ reflect.Value, _ reflect.Value, _ bool) error {
	return nil
}

func (n *defaultNode) Decode(_ *wire.Reader, _ string, _ reflect.Value, _ bool) (reflect.Value, error) {
	return reflect.Zero(n.typ), nil
}
