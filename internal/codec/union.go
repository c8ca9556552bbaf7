package codec

import (
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// UnionVariant is one compiled variant of a tagged union: its body codec
// (unit/record/tuple, via AggregateNode) and the index of the payload
// pointer field in the union's Go representation. Unit variants are
// represented the same way, as a pointer to a zero-field struct.
type UnionVariant struct {
	Name         string
	PayloadField int
	PayloadType  reflect.Type
	Node         Node
}

// UnionNode implements spec §4.5: a tagged union, represented in Go as a
// struct with an integer Tag field (the active variant's index) and one
// pointer-to-struct field per variant, unit variants included, of which exactly the one
// selected by Tag is non-nil. Variant order is the declared order passed to
// NewUnion, matching the order variants are declared in the Go struct.
type UnionNode struct {
	typ      reflect.Type
	tagField int
	variants []UnionVariant
	complete bool
}

// NewUnion builds the tagged-union codec.
func NewUnion(typ reflect.Type, tagField int, variants []UnionVariant, complete bool) *UnionNode {
	return &UnionNode{typ: typ, tagField: tagField, variants: variants, complete: complete}
}

func (n *UnionNode) selectorWidth() uint8 { return selectorWidth(len(n.variants)) }

func readTag(v reflect.Value) int {
	if v.Kind() >= reflect.Int && v.Kind() <= reflect.Int64 {
		return int(v.Int())
	}
	return int(v.Uint())
}

func setTag(v reflect.Value, tag int) {
	if v.Kind() >= reflect.Int && v.Kind() <= reflect.Int64 {
		v.SetInt(int64(tag))
		return
	}
	v.SetUint(uint64(tag))
}

func (n *UnionNode) payloadOf(v reflect.Value, variant int) reflect.Value {
	ptr := v.Field(n.variants[variant].PayloadField)
	if ptr.IsNil() {
		return reflect.Value{}
	}
	return ptr.Elem()
}

func (n *UnionNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	if n.complete {
		unchanged := hasPrior && valuesEqual(cur, prior)
		if err := w.WriteBool(!unchanged); err != nil {
			return ioErr(path, err)
		}
		if unchanged {
			return nil
		}
	}

	tag := readTag(cur.Field(n.tagField))
	if tag < 0 || tag >= len(n.variants) {
		return &ValueOutOfRangeError{Path: path, Value: tag}
	}
	if sw := n.selectorWidth(); sw > 0 {
		if err := w.WriteUnsigned(uint64(tag), sw); err != nil {
			return ioErr(path, err)
		}
	}

	variant := n.variants[tag]
	curPayload := n.payloadOf(cur, tag)

	samePrior := false
	var priorPayload reflect.Value
	if hasPrior {
		priorTag := readTag(prior.Field(n.tagField))
		if priorTag == tag {
			samePrior = true
			priorPayload = n.payloadOf(prior, tag)
		}
	}

	return variant.Node.Encode(w, path+"."+variant.Name, curPayload, priorPayload, samePrior)
}

func (n *UnionNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	if n.complete {
		changed, err := r.ReadBool()
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		if !changed {
			if !hasPrior {
				return reflect.Value{}, &MissingPriorStateError{Path: path}
			}
			clone := reflect.New(n.typ).Elem()
			clone.Set(prior)
			return clone, nil
		}
	}

	tag := 0
	if sw := n.selectorWidth(); sw > 0 {
		selector, err := r.ReadUnsigned(sw)
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		tag = int(selector)
	}
	if tag >= len(n.variants) {
		return reflect.Value{}, &MalformedStreamError{Path: path, Selector: uint64(tag)}
	}
	variant := n.variants[tag]

	samePrior := false
	var priorPayload reflect.Value
	if hasPrior {
		priorTag := readTag(prior.Field(n.tagField))
		if priorTag == tag {
			samePrior = true
			priorPayload = n.payloadOf(prior, tag)
		}
	}

	payload, err := variant.Node.Decode(r, path+"."+variant.Name, priorPayload, samePrior)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(n.typ).Elem()
	setTag(out.Field(n.tagField), tag)
	ptr := reflect.New(variant.PayloadType)
	ptr.Elem().Set(payload)
	out.Field(variant.PayloadField).Set(ptr)
	return out, nil
}
