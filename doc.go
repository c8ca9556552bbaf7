// Package deltacodec compiles Go struct shapes into delta bit-packing
// codecs: given a current value and an optional prior value of the same
// type, Encode writes only the bits needed to reconstruct current from
// prior, and Decode reverses the process.
//
// A schema is just a Go type, annotated with `delta:"..."` struct tags
// (bits, subbits, always, diff, fixed, complete, default — see parseTag in
// hints.go for the tag syntax). Compile[T] walks T's shape once, via
// reflection, and returns a Codec[T] whose Encode/Decode never reflect
// again beyond reading and writing the fields they were built for.
//
//	type Frame struct {
//		Seq   uint32  `delta:"bits=16"`
//		X, Y  float32 `delta:"fixed;bits=12:4"`
//		Alive bool
//	}
//
//	codec, err := deltacodec.Compile[Frame]()
//	...
//	w := wire.NewWriter(buf)
//	err = codec.Encode(w, current, &prior)
package deltacodec
