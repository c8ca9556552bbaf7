package wire

import "github.com/mewkiz/pkg/errutil"

// WriteLen writes v using a width-extendable unsigned form: 7 payload bits
// per byte, MSB-first, with a leading continuation bit (1 = more bytes
// follow, 0 = last byte). This is the "opaque" length form spec §6 requires
// for sequence length framing — the only contract is that it round-trips.
//
// Adapted from the continuation-byte scheme used to frame FLAC frame/sample
// numbers as "UTF-8"-like values; the sequence-length case needs no
// multi-byte leading-byte header since a plain stop-bit-per-byte scheme
// suffices once leading-byte framing isn't required.
func (w *Writer) WriteLen(v uint64) error {
	for {
		b := v & 0x7F
		v >>= 7
		if v != 0 {
			if err := w.WriteUnsigned(b|0x80, 8); err != nil {
				return errutil.Err(err)
			}
			continue
		}
		if err := w.WriteUnsigned(b, 8); err != nil {
			return errutil.Err(err)
		}
		return nil
	}
}

// ReadLen reads a length previously written by WriteLen.
func (r *Reader) ReadLen() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := r.ReadUnsigned(8)
		if err != nil {
			return 0, errutil.Err(err)
		}
		v |= (b & 0x7F) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}
