// Package wire implements the bit-level I/O contract the codec generator
// builds on: exact-width unsigned/signed/bool/float reads and writes, plus a
// width-extendable length form for variable-length sequences.
//
// This is the "external collaborator" of spec §6 ("Bit I/O contract"); the
// codec packages never touch an io.Writer/io.Reader directly, only a
// *wire.Writer/*wire.Reader.
package wire

import (
	"io"
	"math"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"

	"github.com/mewkiz/deltacodec/internal/bits"
)

// Writer writes an exact number of bits per call; it never pads except when
// explicitly closed.
type Writer struct {
	bw bitio.Writer
}

// NewWriter returns a bit writer backed by w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bitio.NewWriter(w)}
}

// WriteBool writes a single bit.
func (w *Writer) WriteBool(b bool) error {
	if err := w.bw.WriteBool(b); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// WriteUnsigned writes the low n bits of v, n <= 64.
func (w *Writer) WriteUnsigned(v uint64, n uint8) error {
	if n == 0 {
		return nil
	}
	if err := w.bw.WriteBits(bits.MaskN(v, uint(n)), n); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// WriteSigned writes the two's complement of v truncated to its low n bits,
// n <= 64.
func (w *Writer) WriteSigned(v int64, n uint8) error {
	return w.WriteUnsigned(uint64(v), n)
}

// WriteF32 writes the IEEE 754 bit pattern of v, 32 bits.
func (w *Writer) WriteF32(v float32) error {
	return w.WriteUnsigned(uint64(math.Float32bits(v)), 32)
}

// WriteF64 writes the IEEE 754 bit pattern of v, 64 bits.
func (w *Writer) WriteF64(v float64) error {
	return w.WriteUnsigned(math.Float64bits(v), 64)
}

// Close flushes any partial trailing byte, padding with zero bits.
func (w *Writer) Close() error {
	if err := w.bw.Close(); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// Reader is the read-side counterpart of Writer.
type Reader struct {
	br bitio.Reader
}

// NewReader returns a bit reader backed by r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bitio.NewReader(r)}
}

// ReadBool reads a single bit.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.br.ReadBool()
	if err != nil {
		return false, errutil.Err(err)
	}
	return b, nil
}

// ReadUnsigned reads n bits, n <= 64, as an unsigned value.
func (r *Reader) ReadUnsigned(n uint8) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	v, err := r.br.ReadBits(n)
	if err != nil {
		return 0, errutil.Err(err)
	}
	return v, nil
}

// ReadSigned reads n bits, n <= 64, and sign-extends the result.
func (r *Reader) ReadSigned(n uint8) (int64, error) {
	v, err := r.ReadUnsigned(n)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return bits.IntN(v, uint(n)), nil
}

// ReadF32 reads 32 bits and reinterprets them as an IEEE 754 float32.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadUnsigned(32)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

// ReadF64 reads 64 bits and reinterprets them as an IEEE 754 float64.
func (r *Reader) ReadF64() (float64, error) {
	v, err := r.ReadUnsigned(64)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}
