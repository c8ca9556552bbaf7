package codec

import (
	"math"
	"reflect"
	"testing"
)

func TestFloatNodeRaw(t *testing.T) {
	n, err := NewFloat(reflect.TypeOf(float32(0)), "x", Flags{})
	if err != nil {
		t.Fatalf("NewFloat: %v", err)
	}
	got := roundTrip(t, n, addressable(float32(3.5)), addressable(float32(1.0)), true)
	if got.Float() != 3.5 {
		t.Errorf("result mismatch; expected 3.5, got %v", got.Float())
	}
}

func TestFloatNodeFixed(t *testing.T) {
	flags := Flags{Fixed: true, FixedPoint: FixedPoint{I: 8, F: 4}}
	n, err := NewFloat(reflect.TypeOf(float64(0)), "x", flags)
	if err != nil {
		t.Fatalf("NewFloat: %v", err)
	}
	got := roundTrip(t, n, addressable(12.5), addressable(1.0), true)
	if math.Abs(got.Float()-12.5) > 1e-9 {
		t.Errorf("result mismatch; expected 12.5, got %v", got.Float())
	}
}

func TestFloatNodeSubFixed(t *testing.T) {
	flags := Flags{
		SubFixed: []SubFixedOption{
			{FixedPoint: FixedPoint{I: 4, F: 4}},
			{FixedPoint: FixedPoint{I: 12, F: 4}},
			{Escape: true},
		},
	}
	n, err := NewFloat(reflect.TypeOf(float32(0)), "x", flags)
	if err != nil {
		t.Fatalf("NewFloat: %v", err)
	}

	golden := []struct {
		name     string
		cur      float32
		prior    float32
		hasPrior bool
	}{
		{name: "unchanged", cur: 2.5, prior: 2.5, hasPrior: true},
		{name: "fits narrow slot", cur: 2.5, prior: 0, hasPrior: true},
		{name: "fits wide slot", cur: 500.5, prior: 0, hasPrior: true},
		{name: "needs escape", cur: 123456.125, prior: 0, hasPrior: true},
	}
	for _, g := range golden {
		got := roundTrip(t, n, addressable(g.cur), addressable(g.prior), g.hasPrior)
		if math.Abs(float64(got.Float()-g.cur)) > 0.1 {
			t.Errorf("%s: result mismatch; expected %v, got %v", g.name, g.cur, got.Float())
		}
	}
}

func TestNewFloatFractionalWidthMismatch(t *testing.T) {
	flags := Flags{
		SubFixed: []SubFixedOption{
			{FixedPoint: FixedPoint{I: 4, F: 4}},
			{FixedPoint: FixedPoint{I: 12, F: 6}},
		},
	}
	_, err := NewFloat(reflect.TypeOf(float32(0)), "x", flags)
	if err == nil {
		t.Fatal("expected FractionalWidthMismatchError, got nil")
	}
	if _, ok := err.(*FractionalWidthMismatchError); !ok {
		t.Errorf("expected *FractionalWidthMismatchError, got %T", err)
	}
}
