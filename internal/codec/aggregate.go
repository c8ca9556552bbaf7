package codec

import (
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// Field is one compiled field of an aggregate: a record's named field or a
// tuple's positional field — the codec makes no distinction between the two
// (spec §4.4: both are "ordered fields", encoded in declared order).
type Field struct {
	Index int // reflect.StructField index within the aggregate's type
	Name  string
	Node  Node
}

// AggregateNode implements spec §4.4: the record/tuple codec, including the
// `complete` short-circuit. A tagged-union variant's body (unit, record, or
// tuple shaped) is itself an AggregateNode — spec.md's Recovered Features
// note (SPEC_FULL.md) that unit variants fall out of the same machinery with
// zero fields, rather than being special-cased.
type AggregateNode struct {
	typ      reflect.Type
	fields   []Field
	complete bool
}

// NewAggregate builds the record/tuple codec.
func NewAggregate(typ reflect.Type, fields []Field, complete bool) *AggregateNode {
	return &AggregateNode{typ: typ, fields: fields, complete: complete}
}

func (n *AggregateNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	if n.complete {
		unchanged := hasPrior && valuesEqual(cur, prior)
		if err := w.WriteBool(!unchanged); err != nil {
			return ioErr(path, err)
		}
		if unchanged {
			return nil
		}
	}
	for _, f := range n.fields {
		curF := cur.Field(f.Index)
		var priorF reflect.Value
		if hasPrior {
			priorF = prior.Field(f.Index)
		}
		if err := f.Node.Encode(w, path+"."+f.Name, curF, priorF, hasPrior); err != nil {
			return err
		}
	}
	return nil
}

func (n *AggregateNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
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
	out := reflect.New(n.typ).Elem()
	for _, f := range n.fields {
		var priorF reflect.Value
		if hasPrior {
			priorF = prior.Field(f.Index)
		}
		v, err := f.Node.Decode(r, path+"."+f.Name, priorF, hasPrior)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(f.Index).Set(v)
	}
	return out, nil
}
