// Copyright 2024 The Authors
// This file is part of objectdb.

package main

import (
	"bytes"
	"fmt"
	"math"

	"github.com/erigontech/objectdb/keycodec"
)

// selftest checks the boundary behaviors of §8 that don't need a
// stored instance at all: they're properties of the key codec alone,
// so they run directly against it.
func selftest() *Report {
	report := &Report{}

	checkFloatNaNSortsLowest(report)
	checkNegativeZeroBeforePositiveZero(report)
	checkStringLengthBoundary(report)
	checkStringHashTieBreak(report)
	checkIntOrdering(report)

	return report
}

func checkFloatNaNSortsLowest(r *Report) {
	r.RowsChecked++
	nan := keycodec.EncodeFloat(float32(math.NaN()))
	negInf := keycodec.EncodeFloat(float32(math.Inf(-1)))
	if !bytes.Equal(nan, []byte{0, 0, 0, 0}) {
		r.fail(Violation{Rule: "float-nan-encoding", Detail: fmt.Sprintf("NaN encoded to %v, want all zero bytes", nan)})
		return
	}
	if bytes.Compare(nan, negInf) >= 0 {
		r.fail(Violation{Rule: "float-nan-sorts-lowest", Detail: "NaN encoding does not sort below -Inf"})
	}
}

func checkNegativeZeroBeforePositiveZero(r *Report) {
	r.RowsChecked++
	negZero := keycodec.EncodeFloat(float32(math.Copysign(0, -1)))
	posZero := keycodec.EncodeFloat(0)
	if bytes.Compare(negZero, posZero) >= 0 {
		r.fail(Violation{Rule: "float-signed-zero-order", Detail: "-0.0 does not sort below +0.0 after encoding"})
	}

	negZero64 := keycodec.EncodeDouble(math.Copysign(0, -1))
	posZero64 := keycodec.EncodeDouble(0)
	if bytes.Compare(negZero64, posZero64) >= 0 {
		r.fail(Violation{Rule: "double-signed-zero-order", Detail: "-0.0 does not sort below +0.0 after encoding"})
	}
}

func checkStringLengthBoundary(r *Report) {
	r.RowsChecked++
	short := string(bytes.Repeat([]byte{'a'}, keycodec.MaxStringValueLen-1))
	long := string(bytes.Repeat([]byte{'a'}, keycodec.MaxStringValueLen))
	encShort := keycodec.EncodeStringValue(&short)
	encLong := keycodec.EncodeStringValue(&long)
	if bytes.Equal(encShort, encLong) {
		r.fail(Violation{
			Rule:   "string-length-boundary",
			Detail: fmt.Sprintf("a %d-byte and a %d-byte string produced identical encodings", len(short), len(long)),
		})
	}
}

func checkStringHashTieBreak(r *Report) {
	r.RowsChecked++
	prefix := bytes.Repeat([]byte{'b'}, keycodec.MaxStringValueLen)
	a := string(prefix) + "tail-one"
	b := string(prefix) + "tail-two"
	encA := keycodec.EncodeStringValue(&a)
	encB := keycodec.EncodeStringValue(&b)
	want := 1 + keycodec.MaxStringValueLen + 1 + 8
	if len(encA) != want || len(encB) != want {
		r.fail(Violation{
			Rule:   "string-hash-suffix",
			Detail: fmt.Sprintf("over-length strings encoded to %d and %d bytes, want %d (prefix, terminator, 8-byte hash)", len(encA), len(encB), want),
		})
		return
	}
	if !bytes.Equal(encA[:1+keycodec.MaxStringValueLen+1], encB[:1+keycodec.MaxStringValueLen+1]) {
		r.fail(Violation{
			Rule:   "string-hash-tiebreak",
			Detail: "two over-length strings sharing their truncated prefix did not share their truncated encoding",
		})
	}
}

func checkIntOrdering(r *Report) {
	r.RowsChecked++
	cases := []struct {
		v    int32
		want []byte
	}{
		{math.MinInt32, []byte{0, 0, 0, 0}},
		{-1, []byte{127, 255, 255, 255}},
		{0, []byte{128, 0, 0, 0}},
		{math.MaxInt32, []byte{255, 255, 255, 255}},
	}
	for _, c := range cases {
		got := keycodec.EncodeInt(c.v)
		if !bytes.Equal(got, c.want) {
			r.fail(Violation{
				Rule:   "int-key-ordering",
				Detail: fmt.Sprintf("encode_int(%d) = %v, want %v", c.v, got, c.want),
			})
		}
	}
}
