package codec

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/mewkiz/deltacodec/wire"
)

// roundTrip encodes cur (against prior, if hasPrior) with n, then decodes it
// back (against the same prior) and returns the decoded reflect.Value. It
// mirrors the encode/decode pairing every Node.Encode/Decode implementation
// is built to satisfy.
func roundTrip(t *testing.T, n Node, cur, prior reflect.Value, hasPrior bool) reflect.Value {
	t.Helper()
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	if err := n.Encode(w, "$", cur, prior, hasPrior); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	r := wire.NewReader(&buf)
	got, err := n.Decode(r, "$", prior, hasPrior)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return got
}

// encodeOnly encodes cur with no prior and discards the output, returning
// only the error — used by tests that expect Encode itself to fail.
func encodeOnly(n Node, cur reflect.Value) error {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	return n.Encode(w, "$", cur, reflect.Value{}, false)
}

func addressable(v any) reflect.Value {
	rv := reflect.New(reflect.TypeOf(v)).Elem()
	rv.Set(reflect.ValueOf(v))
	return rv
}
