package codec

import (
	"reflect"

	"github.com/mewkiz/deltacodec/internal/bits"
	"github.com/mewkiz/deltacodec/wire"
)

// IntNode implements spec §4.1: the primitive integer codec. It covers both
// the plain-width path (bits(N), or the type's native width when no hint is
// given) and the subbits(...) path.
type IntNode struct {
	signed bool
	native uint8 // native bit width of the Go type
	typ    reflect.Type
	flags  Flags
}

// NewInt builds the primitive codec for an integer reflect.Type.
func NewInt(t reflect.Type, flags Flags) (*IntNode, error) {
	n := &IntNode{native: nativeIntWidth(t), typ: t, flags: flags}
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		n.signed = true
	}
	return n, nil
}

func nativeIntWidth(t reflect.Type) uint8 {
	switch t.Kind() {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	default:
		return 64
	}
}

func (n *IntNode) width() uint8 {
	if n.flags.Bits > 0 {
		return uint8(n.flags.Bits)
	}
	return n.native
}

// rawOf returns the full 64-bit two's complement bit pattern of v, whether v
// is signed or unsigned: for signed values this is uint64(v.Int()), which
// carries the same bits as the real two's complement representation, so
// ordinary uint64 addition/subtraction on raw values reproduces exactly the
// signed arithmetic spec §4.2's diff mode needs.
func (n *IntNode) rawOf(v reflect.Value) uint64 {
	if n.signed {
		return uint64(v.Int())
	}
	return v.Uint()
}

// value builds a reflect.Value of n's type from a full 64-bit raw pattern.
func (n *IntNode) value(raw uint64) reflect.Value {
	v := reflect.New(n.typ).Elem()
	if n.signed {
		v.SetInt(int64(raw))
	} else {
		v.SetUint(raw)
	}
	return v
}

// Encode implements Node.
func (n *IntNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	if n.flags.HasSubbits() {
		return n.encodeSub(w, path, cur, prior, hasPrior)
	}
	width := n.width()
	raw := n.rawOf(cur)
	if n.flags.Bits > 0 && !n.fits(raw, width) {
		return &ValueOutOfRangeError{Path: path, Value: n.signedOrUnsigned(raw)}
	}
	if n.flags.Always {
		return ioErr(path, w.WriteUnsigned(raw, width))
	}
	if hasPrior && valuesEqual(cur, prior) {
		return ioErr(path, w.WriteBool(false))
	}
	if err := w.WriteBool(true); err != nil {
		return ioErr(path, err)
	}
	return ioErr(path, w.WriteUnsigned(raw, width))
}

// Decode implements Node.
func (n *IntNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	if n.flags.HasSubbits() {
		return n.decodeSub(r, path, prior, hasPrior)
	}
	width := n.width()
	if n.flags.Always {
		raw, err := r.ReadUnsigned(width)
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		return n.value(n.extend(raw, width)), nil
	}
	present, err := r.ReadBool()
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	if !present {
		if !hasPrior {
			return reflect.Value{}, &MissingPriorStateError{Path: path}
		}
		return prior, nil
	}
	raw, err := r.ReadUnsigned(width)
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	return n.value(n.extend(raw, width)), nil
}

// extend sign-extends a width-bit truncated raw value to a full 64-bit
// pattern for signed fields; unsigned fields are already correctly
// zero-extended by wire.Reader.ReadUnsigned.
func (n *IntNode) extend(raw uint64, width uint8) uint64 {
	if !n.signed {
		return raw
	}
	return uint64(bits.IntN(raw, uint(width)))
}

// encodeSub implements the subbits(...) branch of spec §4.1.
//
// Note (spec §9 open question): for a signed field with diff set, the
// no-prior branch selects a slot for the absolute value of cur, while the
// with-prior branch selects a slot for the difference cur-prior. This
// asymmetry is preserved exactly as spec.md describes it, not smoothed over.
func (n *IntNode) encodeSub(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	sel := subbitsSelector{numOptions: len(n.flags.SubWidths), always: n.flags.Always}
	selWidth := sel.selectorWidth()

	if !n.flags.Always && hasPrior && valuesEqual(cur, prior) {
		return ioErr(path, w.WriteUnsigned(0, selWidth))
	}

	var target uint64
	if n.flags.Diff && hasPrior {
		target = n.rawOf(cur) - n.rawOf(prior)
	} else {
		target = n.rawOf(cur)
	}

	idx, ok := n.fitsOption(target)
	if !ok {
		return &ValueOutOfRangeError{Path: path, Value: n.signedOrUnsigned(target)}
	}
	selector := uint64(idx)
	if !n.flags.Always {
		selector++
	}
	if err := w.WriteUnsigned(selector, selWidth); err != nil {
		return ioErr(path, err)
	}
	width := uint8(n.flags.SubWidths[idx])
	return ioErr(path, w.WriteUnsigned(target, width))
}

func (n *IntNode) signedOrUnsigned(raw uint64) any {
	if n.signed {
		return int64(raw)
	}
	return raw
}

// fitsOption finds the lowest-indexed declared width that can hold target,
// trying options in declared order (spec §4.1: "options are tried in
// declared order, not sorted").
func (n *IntNode) fitsOption(target uint64) (int, bool) {
	for i, width := range n.flags.SubWidths {
		if n.fits(target, uint8(width)) {
			return i, true
		}
	}
	return 0, false
}

func (n *IntNode) fits(target uint64, width uint8) bool {
	if width >= 64 {
		return true
	}
	if n.signed {
		v := int64(target)
		lo := -(int64(1) << (width - 1))
		hi := int64(1)<<(width-1) - 1
		return v >= lo && v <= hi
	}
	return target < uint64(1)<<width
}

func (n *IntNode) decodeSub(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	sel := subbitsSelector{numOptions: len(n.flags.SubWidths), always: n.flags.Always}
	selWidth := sel.selectorWidth()

	selector, err := r.ReadUnsigned(selWidth)
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}

	if !n.flags.Always {
		if selector == 0 {
			if !hasPrior {
				return reflect.Value{}, &MissingPriorStateError{Path: path}
			}
			return prior, nil
		}
		selector--
	}
	if int(selector) >= len(n.flags.SubWidths) {
		return reflect.Value{}, &MalformedStreamError{Path: path, Selector: selector}
	}
	width := uint8(n.flags.SubWidths[selector])
	raw, err := r.ReadUnsigned(width)
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	full := n.extend(raw, width)
	if n.flags.Diff && hasPrior {
		full += n.rawOf(prior)
	}
	return n.value(full), nil
}

// BoolNode implements spec §4.3: a single bit regardless of bits/subbits/diff
// hints. `always` still suppresses the presence bit; `default` is handled by
// the schema compiler before a BoolNode is ever built.
type BoolNode struct {
	always bool
}

// NewBool builds the boolean codec.
func NewBool(flags Flags) *BoolNode { return &BoolNode{always: flags.Always} }

func (n *BoolNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	if n.always {
		return ioErr(path, w.WriteBool(cur.Bool()))
	}
	if hasPrior && cur.Bool() == prior.Bool() {
		return ioErr(path, w.WriteBool(false))
	}
	if err := w.WriteBool(true); err != nil {
		return ioErr(path, err)
	}
	return ioErr(path, w.WriteBool(cur.Bool()))
}

func (n *BoolNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	if n.always {
		b, err := r.ReadBool()
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		return reflect.ValueOf(b), nil
	}
	present, err := r.ReadBool()
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	if !present {
		if !hasPrior {
			return reflect.Value{}, &MissingPriorStateError{Path: path}
		}
		return prior, nil
	}
	b, err := r.ReadBool()
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	return reflect.ValueOf(b), nil
}
