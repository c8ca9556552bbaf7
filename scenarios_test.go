package deltacodec_test

import (
	"bytes"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mewkiz/deltacodec"
	"github.com/mewkiz/deltacodec/wire"
)

// SubTest is the `sub: {val: u8, val2: u16} @ complete, always` field of the
// shared scenario type: complete propagates a leading unchanged-bit, and
// always propagates into both of its own fields, suppressing their
// individual presence bits.
type SubTest struct {
	Val  uint8  `delta:"always"`
	Val2 uint16 `delta:"always;bits=16"`
}

// Testing is the shared scenario type of spec §8's S1/S2.
type Testing struct {
	A           int32   `delta:"bits=4"`
	B           uint32  `delta:"bits=16"`
	C           int8    `delta:"always"`
	Sub         SubTest `delta:"complete;always"`
	Tuple       deltacodec.Tuple2[uint8, uint8]
	Subbits     uint32  `delta:"subbits=5,8,10,16"`
	DiffSubbits int32   `delta:"diff;subbits=5,8,10,16"`
	Array       [5]int32
}

func roundTripCodec[T any](codec *deltacodec.Codec[T], cur T, prior *T) T {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	Expect(codec.Encode(w, cur, prior)).To(Succeed())
	Expect(w.Close()).To(Succeed())

	r := wire.NewReader(&buf)
	got, err := codec.Decode(r, prior)
	Expect(err).ToNot(HaveOccurred())
	return got
}

var _ = Describe("S1: no-prior round trip", func() {
	It("reproduces the encoded value exactly", func() {
		codec, err := deltacodec.Compile[Testing]()
		Expect(err).ToNot(HaveOccurred())

		v := Testing{
			A:           4,
			B:           88,
			C:           -4,
			Sub:         SubTest{Val: 64, Val2: 31},
			Tuple:       deltacodec.NewTuple2[uint8, uint8](1, 2),
			Subbits:     5,
			DiffSubbits: -20,
			Array:       [5]int32{1, 2, 3, 4, 5},
		}
		got := roundTripCodec(codec, v, nil)
		Expect(got).To(Equal(v))
	})
})

var _ = Describe("S2: prior-relative round trip", func() {
	It("reproduces the modified value using the first as prior", func() {
		codec, err := deltacodec.Compile[Testing]()
		Expect(err).ToNot(HaveOccurred())

		first := Testing{
			A:           4,
			B:           88,
			C:           -4,
			Sub:         SubTest{Val: 64, Val2: 31},
			Tuple:       deltacodec.NewTuple2[uint8, uint8](1, 2),
			Subbits:     5,
			DiffSubbits: -20,
			Array:       [5]int32{1, 2, 3, 4, 5},
		}
		modified := first
		modified.B = 31
		modified.C = 54
		modified.Subbits = 0xFFF
		modified.DiffSubbits = 40
		modified.Array = [5]int32{2, 3, 3, 4, 5}

		got := roundTripCodec(codec, modified, &first)
		Expect(got).To(Equal(modified))
	})
})

// unionC and unionD are the non-unit variants of spec §8's S3 union:
// Testing = A | B | C(i32,u64,u8@bits=3) | D{a@bits=16, b@bits=2, sub: SubTest}.
type unionC struct {
	F0 int32
	F1 uint64
	F2 uint8 `delta:"bits=3"`
}

type unionD struct {
	A   uint16 `delta:"bits=16"`
	B   uint8  `delta:"bits=2"`
	Sub SubTest
}

type testingUnion struct {
	Tag int `delta:"union"`
	A   *struct{}
	B   *struct{}
	C   *unionC
	D   *unionD
}

var _ = Describe("S3: tagged union variant stability", func() {
	It("round-trips a D variant and keeps the same selector across an update", func() {
		codec, err := deltacodec.Compile[testingUnion]()
		Expect(err).ToNot(HaveOccurred())

		first := testingUnion{Tag: 3, D: &unionD{A: 6, B: 1, Sub: SubTest{Val: 1, Val2: 2}}}
		got1 := roundTripCodec(codec, first, nil)
		Expect(got1).To(Equal(first))

		second := testingUnion{Tag: 3, D: &unionD{A: 3, B: 1, Sub: SubTest{Val: 1, Val2: 2}}}
		got2 := roundTripCodec(codec, second, &first)
		Expect(got2.Tag).To(Equal(3))
		Expect(got2).To(Equal(second))
	})
})

type fixedFloat struct {
	V float32 `delta:"fixed;bits=6:4"`
}

var _ = Describe("S4: fixed-point float quantisation", func() {
	It("quantises to the declared fractional width and round-trips against a prior", func() {
		codec, err := deltacodec.Compile[fixedFloat]()
		Expect(err).ToNot(HaveOccurred())

		first := fixedFloat{V: 3.2}
		got1 := roundTripCodec(codec, first, nil)
		Expect(math.Abs(float64(got1.V)-3.1875)).To(BeNumerically("<", 1e-6))

		second := fixedFloat{V: 20.5}
		got2 := roundTripCodec(codec, second, &first)
		Expect(math.Abs(float64(got2.V)-20.5)).To(BeNumerically("<", 1e-6))
	})
})

type subFixedFloat struct {
	V float32 `delta:"subbits=6:4,10:4,-1:-1"`
}

var _ = Describe("S5: subbits fixed-point with escape", func() {
	It("uses the narrow slot when the value fits, and the escape when it overflows every fixed slot", func() {
		codec, err := deltacodec.Compile[subFixedFloat]()
		Expect(err).ToNot(HaveOccurred())

		first := subFixedFloat{V: 5.6}
		got1 := roundTripCodec(codec, first, nil)
		Expect(math.Abs(float64(got1.V)-5.5625)).To(BeNumerically("<", 1e-6))

		second := subFixedFloat{V: 100000.25}
		got2 := roundTripCodec(codec, second, &first)
		Expect(float64(got2.V)).To(Equal(100000.25))
	})
})

type diffSubFixedFloat struct {
	V float32 `delta:"diff;fixed;subbits=4:5,6:5,10:5,16:5,-1:-1"`
}

var _ = Describe("S6: diff subbits fixed-point, shared fractional width", func() {
	It("collapses a zero difference to the smallest (reserved) slot", func() {
		codec, err := deltacodec.Compile[diffSubFixedFloat]()
		Expect(err).ToNot(HaveOccurred())

		first := diffSubFixedFloat{V: 12.5}
		got := roundTripCodec(codec, first, &first)
		Expect(got).To(Equal(first))
	})

	It("still round-trips a nonzero difference through the declared slots", func() {
		codec, err := deltacodec.Compile[diffSubFixedFloat]()
		Expect(err).ToNot(HaveOccurred())

		first := diffSubFixedFloat{V: 12.5}
		second := diffSubFixedFloat{V: 13.0}
		got := roundTripCodec(codec, second, &first)
		Expect(math.Abs(float64(got.V)-13.0)).To(BeNumerically("<", 1e-6))
	})
})
