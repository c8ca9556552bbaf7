package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/mewkiz/deltacodec/wire"
)

type point struct {
	X, Y int32
}

func buildPointNode(t *testing.T, complete bool) *AggregateNode {
	t.Helper()
	typ := reflect.TypeOf(point{})
	intNode, err := NewInt(reflect.TypeOf(int32(0)), Flags{Bits: 16})
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	fields := []Field{
		{Index: 0, Name: "X", Node: intNode},
		{Index: 1, Name: "Y", Node: intNode},
	}
	return NewAggregate(typ, fields, complete)
}

func TestAggregateNodeFieldwise(t *testing.T) {
	n := buildPointNode(t, false)
	cur := addressable(point{X: 1, Y: 2})
	prior := addressable(point{X: 1, Y: 99})
	got := roundTrip(t, n, cur, prior, true)
	want := point{X: 1, Y: 2}
	if got.Interface().(point) != want {
		t.Errorf("result mismatch; expected %+v, got %+v", want, got.Interface())
	}
}

func TestAggregateNodeComplete(t *testing.T) {
	n := buildPointNode(t, true)

	cur := addressable(point{X: 5, Y: 5})
	prior := addressable(point{X: 5, Y: 5})
	got := roundTrip(t, n, cur, prior, true)
	if got.Interface().(point) != (point{X: 5, Y: 5}) {
		t.Errorf("unchanged case: result mismatch, got %+v", got.Interface())
	}

	cur2 := addressable(point{X: 5, Y: 6})
	got2 := roundTrip(t, n, cur2, prior, true)
	if got2.Interface().(point) != (point{X: 5, Y: 6}) {
		t.Errorf("changed case: result mismatch, got %+v", got2.Interface())
	}
}

func TestAggregateNodeCompleteMissingPrior(t *testing.T) {
	n := buildPointNode(t, true)
	cur := addressable(point{X: 1, Y: 1})
	prior := addressable(point{X: 1, Y: 1})

	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	if err := n.Encode(w, "$", cur, prior, true); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := wire.NewReader(&buf)
	_, err := n.Decode(r, "$", reflect.Value{}, false)
	if err == nil {
		t.Fatal("expected MissingPriorStateError, got nil")
	}
	if _, ok := err.(*MissingPriorStateError); !ok {
		t.Errorf("expected *MissingPriorStateError, got %T", err)
	}
}
