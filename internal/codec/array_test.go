package codec

import (
	"reflect"
	"testing"
)

func TestArrayNode(t *testing.T) {
	elem, err := NewInt(reflect.TypeOf(int32(0)), Flags{Bits: 8})
	if err != nil {
		t.Fatalf("NewInt: %v", err)
	}
	n := NewArray(reflect.TypeOf([3]int32{}), elem)

	cur := addressable([3]int32{1, 2, 3})
	prior := addressable([3]int32{1, 99, 3})
	got := roundTrip(t, n, cur, prior, true)

	want := [3]int32{1, 2, 3}
	if got.Interface().([3]int32) != want {
		t.Errorf("result mismatch; expected %v, got %v", want, got.Interface())
	}
}
