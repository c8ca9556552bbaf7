package codec

import (
	"fmt"
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// ArrayNode implements spec §4.8: a fixed-size array of known length N. No
// length prefix is written; each element is paired with the element at the
// same index in the prior array, if one exists.
type ArrayNode struct {
	typ    reflect.Type
	length int
	elem   Node
}

// NewArray builds the fixed-array codec.
func NewArray(typ reflect.Type, elem Node) *ArrayNode {
	return &ArrayNode{typ: typ, length: typ.Len(), elem: elem}
}

func (n *ArrayNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	for i := 0; i < n.length; i++ {
		var priorElem reflect.Value
		if hasPrior {
			priorElem = prior.Index(i)
		}
		if err := n.elem.Encode(w, fmt.Sprintf("%s[%d]", path, i), cur.Index(i), priorElem, hasPrior); err != nil {
			return err
		}
	}
	return nil
}

func (n *ArrayNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	out := reflect.New(n.typ).Elem()
	for i := 0; i < n.length; i++ {
		var priorElem reflect.Value
		if hasPrior {
			priorElem = prior.Index(i)
		}
		v, err := n.elem.Decode(r, fmt.Sprintf("%s[%d]", path, i), priorElem, hasPrior)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}
