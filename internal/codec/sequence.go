package codec

import (
	"fmt"
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// SequenceNode implements spec §4.7: a variable-length sequence ([]T). With
// `always`, no presence bit is written and the length/elements are always
// transmitted; without it, an unchanged sequence (structural equality)
// collapses to a single zero bit.
type SequenceNode struct {
	typ   reflect.Type
	elem  Node
	flags Flags
}

// NewSequence builds the variable-length sequence codec.
func NewSequence(typ reflect.Type, elem Node, flags Flags) *SequenceNode {
	return &SequenceNode{typ: typ, elem: elem, flags: flags}
}

func (n *SequenceNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	if !n.flags.Always {
		if hasPrior && valuesEqual(cur, prior) {
			return ioErr(path, w.WriteBool(false))
		}
		if err := w.WriteBool(true); err != nil {
			return ioErr(path, err)
		}
	}
	if err := w.WriteLen(uint64(cur.Len())); err != nil {
		return ioErr(path, err)
	}
	priorLen := 0
	if hasPrior {
		priorLen = prior.Len()
	}
	for i := 0; i < cur.Len(); i++ {
		hasPriorElem := hasPrior && i < priorLen
		var priorElem reflect.Value
		if hasPriorElem {
			priorElem = prior.Index(i)
		}
		if err := n.elem.Encode(w, fmt.Sprintf("%s[%d]", path, i), cur.Index(i), priorElem, hasPriorElem); err != nil {
			return err
		}
	}
	return nil
}

func (n *SequenceNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	if !n.flags.Always {
		present, err := r.ReadBool()
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		if !present {
			if !hasPrior {
				return reflect.Value{}, &MissingPriorStateError{Path: path}
			}
			out := reflect.MakeSlice(n.typ, prior.Len(), prior.Len())
			reflect.Copy(out, prior)
			return out, nil
		}
	}
	length, err := r.ReadLen()
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	priorLen := 0
	if hasPrior {
		priorLen = prior.Len()
	}
	out := reflect.MakeSlice(n.typ, int(length), int(length))
	for i := 0; i < int(length); i++ {
		hasPriorElem := hasPrior && i < priorLen
		var priorElem reflect.Value
		if hasPriorElem {
			priorElem = prior.Index(i)
		}
		v, err := n.elem.Decode(r, fmt.Sprintf("%s[%d]", path, i), priorElem, hasPriorElem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(v)
	}
	return out, nil
}
