package codec

import (
	"reflect"

	"github.com/mewkiz/deltacodec/wire"
)

// FloatNode implements spec §4.2: the float codec, in its three modes (raw,
// single fixed-point, and subbits fixed-point with an optional escape).
type FloatNode struct {
	isF64 bool
	flags Flags
	typ   reflect.Type
	fStar int // shared fractional width across non-escape subbits options
}

// NewFloat builds the float codec for a float32/float64 reflect.Type.
// FractionalWidthMismatchError is a schema-compile-time check (spec §4.2):
// all non-escape subbits pairs must declare the same fractional width.
func NewFloat(t reflect.Type, path string, flags Flags) (*FloatNode, error) {
	n := &FloatNode{isF64: t.Kind() == reflect.Float64, flags: flags, typ: t}
	if len(flags.SubFixed) == 0 {
		return n, nil
	}
	want := -1
	for _, opt := range flags.SubFixed {
		if opt.Escape {
			continue
		}
		if want == -1 {
			want = opt.F
			continue
		}
		if opt.F != want {
			return nil, &FractionalWidthMismatchError{Path: path, Want: want, Got: opt.F}
		}
	}
	n.fStar = want
	return n, nil
}

func (n *FloatNode) zero() reflect.Value { return reflect.New(n.typ).Elem() }

func (n *FloatNode) get(v reflect.Value) float64 { return v.Float() }

func (n *FloatNode) set(f float64) reflect.Value {
	v := n.zero()
	v.SetFloat(f)
	return v
}

func (n *FloatNode) writeRawFloat(w *wire.Writer, f float64) error {
	if n.isF64 {
		return w.WriteF64(f)
	}
	return w.WriteF32(float32(f))
}

func (n *FloatNode) readRawFloat(r *wire.Reader) (float64, error) {
	if n.isF64 {
		return r.ReadF64()
	}
	f, err := r.ReadF32()
	return float64(f), err
}

// Encode implements Node.
func (n *FloatNode) Encode(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	switch {
	case len(n.flags.SubFixed) > 0:
		return n.encodeSubFixed(w, path, cur, prior, hasPrior)
	case n.flags.Fixed:
		return n.encodeFixed(w, path, cur, prior, hasPrior)
	default:
		return n.encodeRaw(w, path, cur, prior, hasPrior)
	}
}

// Decode implements Node.
func (n *FloatNode) Decode(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	switch {
	case len(n.flags.SubFixed) > 0:
		return n.decodeSubFixed(r, path, prior, hasPrior)
	case n.flags.Fixed:
		return n.decodeFixed(r, path, prior, hasPrior)
	default:
		return n.decodeRaw(r, path, prior, hasPrior)
	}
}

func (n *FloatNode) encodeRaw(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	if n.flags.Always {
		return ioErr(path, n.writeRawFloat(w, n.get(cur)))
	}
	if hasPrior && valuesEqual(cur, prior) {
		return ioErr(path, w.WriteBool(false))
	}
	if err := w.WriteBool(true); err != nil {
		return ioErr(path, err)
	}
	return ioErr(path, n.writeRawFloat(w, n.get(cur)))
}

func (n *FloatNode) decodeRaw(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	if n.flags.Always {
		f, err := n.readRawFloat(r)
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		return n.set(f), nil
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
	f, err := n.readRawFloat(r)
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	return n.set(f), nil
}

// scale truncates v*2^F toward zero, per spec §4.2.
func scale(v float64, f int) int64 {
	return int64(v * float64(int64(1)<<uint(f)))
}

func unscale(v int64, f int) float64 {
	return float64(v) / float64(int64(1)<<uint(f))
}

func (n *FloatNode) encodeFixed(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	width := n.flags.FixedPoint.Width()
	scaled := scale(n.get(cur), n.flags.FixedPoint.F)
	if !fitsSigned(scaled, width) {
		return &ValueOutOfRangeError{Path: path, Value: n.get(cur)}
	}
	if n.flags.Always {
		return ioErr(path, w.WriteSigned(scaled, width))
	}
	if hasPrior && valuesEqual(cur, prior) {
		return ioErr(path, w.WriteBool(false))
	}
	if err := w.WriteBool(true); err != nil {
		return ioErr(path, err)
	}
	return ioErr(path, w.WriteSigned(scaled, width))
}

func (n *FloatNode) decodeFixed(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	width := n.flags.FixedPoint.Width()
	if n.flags.Always {
		scaled, err := r.ReadSigned(width)
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		return n.set(unscale(scaled, n.flags.FixedPoint.F)), nil
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
	scaled, err := r.ReadSigned(width)
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	return n.set(unscale(scaled, n.flags.FixedPoint.F)), nil
}

// encodeSubFixed implements spec §4.2's subbits fixed-point path, including
// the -1:-1 escape. Per the resolved Open Question (DESIGN.md), options —
// including the escape — are tried strictly in declared order; an earlier
// fixed slot that fits is always preferred over a later escape.
func (n *FloatNode) encodeSubFixed(w *wire.Writer, path string, cur, prior reflect.Value, hasPrior bool) error {
	sel := subbitsSelector{numOptions: len(n.flags.SubFixed), always: n.flags.Always}
	selWidth := sel.selectorWidth()

	if !n.flags.Always && hasPrior && valuesEqual(cur, prior) {
		return ioErr(path, w.WriteUnsigned(0, selWidth))
	}

	curScaled := scale(n.get(cur), n.fStar)
	var target int64
	if n.flags.Diff && hasPrior {
		target = curScaled - scale(n.get(prior), n.fStar)
	} else {
		target = curScaled
	}

	idx, ok := n.fitsOption(target)
	if !ok {
		return &ValueOutOfRangeError{Path: path, Value: unscale(target, n.fStar)}
	}
	selector := uint64(idx)
	if !n.flags.Always {
		selector++
	}
	if err := w.WriteUnsigned(selector, selWidth); err != nil {
		return ioErr(path, err)
	}
	opt := n.flags.SubFixed[idx]
	if opt.Escape {
		return ioErr(path, n.writeRawFloat(w, n.get(cur)))
	}
	return ioErr(path, w.WriteSigned(target, opt.Width()))
}

// fitsOption returns the index of the lowest declared option (escape
// included) that can carry target; an escape slot always matches. ok is
// false only when every declared option is a non-escape fixed slot and none
// is wide enough — a schema with no escape and too-narrow slots.
func (n *FloatNode) fitsOption(target int64) (int, bool) {
	for i, opt := range n.flags.SubFixed {
		if opt.Escape {
			return i, true
		}
		if fitsSigned(target, opt.Width()) {
			return i, true
		}
	}
	return 0, false
}

func fitsSigned(v int64, width uint8) bool {
	if width >= 64 {
		return true
	}
	lo := -(int64(1) << (width - 1))
	hi := int64(1)<<(width-1) - 1
	return v >= lo && v <= hi
}

func (n *FloatNode) decodeSubFixed(r *wire.Reader, path string, prior reflect.Value, hasPrior bool) (reflect.Value, error) {
	sel := subbitsSelector{numOptions: len(n.flags.SubFixed), always: n.flags.Always}
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
	if int(selector) >= len(n.flags.SubFixed) {
		return reflect.Value{}, &MalformedStreamError{Path: path, Selector: selector}
	}
	opt := n.flags.SubFixed[selector]
	if opt.Escape {
		f, err := n.readRawFloat(r)
		if err != nil {
			return reflect.Value{}, ioErr(path, err)
		}
		return n.set(f), nil
	}
	scaled, err := r.ReadSigned(opt.Width())
	if err != nil {
		return reflect.Value{}, ioErr(path, err)
	}
	if n.flags.Diff && hasPrior {
		scaled += scale(n.get(prior), n.fStar)
	}
	return n.set(unscale(scaled, n.fStar)), nil
}
