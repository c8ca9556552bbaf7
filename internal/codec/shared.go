package codec

import (
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// Transparent is implemented by shared-ownership wrapper types (spec §1,
// "shared-ownership wrapper that is codec-transparent"; SPEC_FULL.md's
// Recovered Feature #1). The schema compiler detects it via
// reflect.PointerTo(t).Implements(...) and unwraps it before dispatch: the
// wrapper contributes zero bits and zero presence handling of its own — it
// is exactly its inner type's codec.
type Transparent interface {
	// DeltacodecInner returns an addressable reflect.Value referring to the
	// wrapped value, so the schema compiler can both read it (Encode) and
	// populate it in place (Decode).
	DeltacodecInner() reflect.Value
}

// TransparentType is the reflect.Type of the Transparent interface, used by
// the schema compiler to test whether *T implements it.
var TransparentType = reflect.TypeOf((*Transparent)(nil)).Elem()

// SharedNode adapts a Transparent wrapper's addressable inner value to the
// wrapped type's own compiled Node: the wrapper type never appears on the
// wire.
type SharedNode struct {
	typ   reflect.Type // the wrapper type, e.g. Shared[T]
	inner Node
}

// NewShared builds the pass-through codec for a Transparent wrapper type.
func NewShared(typ reflect.Type, inner Node) *SharedNode {
	return &SharedNode{typ: typ, inner: inner}
}

func unwrap(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	return v.Addr().Interface().(Transparent).DeltacodecInner()
}

func (n *SharedNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	var priorInner reflect.Value
	if hasPrior {
		priorInner = unwrap(prior)
	}
	return n.inner.Encode(w, path, unwrap(cur), priorInner, hasPrior)
}

func (n *SharedNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	var priorInner reflect.Value
	if hasPrior {
		priorInner = unwrap(prior)
	}
	innerVal, err := n.inner.Decode(r, path, priorInner, hasPrior)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(n.typ).Elem()
	unwrap(out).Set(innerVal)
	return out, nil
}
