package codec

import (
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// OptionalNode implements spec §4.6: a pointer represents an Optional<T>. A
// leading bit signals presence; prior is threaded to the inner codec only
// when both the current and prior values are present. always/diff/complete
// have no meaning on the wrapper itself (spec §4.6) — only on T's own codec.
type OptionalNode struct {
	typ  reflect.Type // pointer type
	elem Node
}

// NewOptional builds the optional codec for a pointer reflect.Type.
func NewOptional(typ reflect.Type, elem Node) *OptionalNode {
	return &OptionalNode{typ: typ, elem: elem}
}

func (n *OptionalNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	present := !cur.IsNil()
	if err := w.WriteBool(present); err != nil {
		return ioErr(path, err)
	}
	if !present {
		return nil
	}
	priorPresent := hasPrior && prior.IsValid() && !prior.IsNil()
	var priorElem reflect.Value
	if priorPresent {
		priorElem = prior.Elem()
	}
	return n.elem.Encode(w, path, cur.Elem(), priorElem, priorPresent)
}

func (n *OptionalNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	present, err := r.ReadBool()
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	if !present {
		return reflect.Zero(n.typ), nil
	}
	priorPresent := hasPrior && prior.IsValid() && !prior.IsNil()
	var priorElem reflect.Value
	if priorPresent {
		priorElem = prior.Elem()
	}
	v, err := n.elem.Decode(r, path, priorElem, priorPresent)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(n.typ.Elem())
	ptr.Elem().Set(v)
	return ptr, nil
}
