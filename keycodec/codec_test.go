// Copyright 2024 The Authors
// This file is part of objectdb.

package keycodec

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeIntVectors(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 0}, EncodeInt(math.MinInt32))
	require.Equal(t, []byte{127, 255, 255, 255}, EncodeInt(-1))
	require.Equal(t, []byte{128, 0, 0, 0}, EncodeInt(0))
	require.Equal(t, []byte{255, 255, 255, 255}, EncodeInt(math.MaxInt32))
}

func TestEncodeIntOrderPreserving(t *testing.T) {
	values := []int32{math.MinInt32, -1000, -1, 0, 1, 1000, math.MaxInt32}
	for i := 1; i < len(values); i++ {
		require.True(t, bytes.Compare(EncodeInt(values[i-1]), EncodeInt(values[i])) < 0)
		require.Equal(t, values[i], DecodeInt(EncodeInt(values[i])))
	}
}

func TestEncodeLongOrderPreserving(t *testing.T) {
	values := []int64{math.MinInt64, -1000, -1, 0, 1, 1000, math.MaxInt64}
	for i := 1; i < len(values); i++ {
		require.True(t, bytes.Compare(EncodeLong(values[i-1]), EncodeLong(values[i])) < 0)
		require.Equal(t, values[i], DecodeLong(EncodeLong(values[i])))
	}
}

func TestEncodeFloatNaNSortsBelowNegInf(t *testing.T) {
	nanEnc := EncodeFloat(float32(math.NaN()))
	require.Equal(t, []byte{0, 0, 0, 0}, nanEnc)
	require.True(t, bytes.Compare(nanEnc, EncodeFloat(float32(math.Inf(-1)))) < 0)
}

func TestEncodeFloatNegativeZeroBeforePositiveZero(t *testing.T) {
	require.True(t, bytes.Compare(EncodeFloat(float32(math.Copysign(0, -1))), EncodeFloat(0)) < 0)
}

func TestEncodeFloatOrderPreserving(t *testing.T) {
	values := []float32{float32(math.Inf(-1)), -1000.5, -1, 0, 1, 1000.5, float32(math.Inf(1))}
	for i := 1; i < len(values); i++ {
		require.True(t, bytes.Compare(EncodeFloat(values[i-1]), EncodeFloat(values[i])) < 0)
		require.InDelta(t, values[i], DecodeFloat(EncodeFloat(values[i])), 0.001)
	}
}

func TestEncodeDoubleOrderPreserving(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, EncodeDouble(math.NaN()))
	values := []float64{math.Inf(-1), -1000.5, -1, 0, 1, 1000.5, math.Inf(1)}
	for i := 1; i < len(values); i++ {
		require.True(t, bytes.Compare(EncodeDouble(values[i-1]), EncodeDouble(values[i])) < 0)
	}
}

func TestEncodeStringHashNullIsZero(t *testing.T) {
	require.Equal(t, make([]byte, 8), EncodeStringHash(nil))
}

func TestEncodeStringHashMatchesReferenceVector(t *testing.T) {
	s := "hello"
	require.Equal(t, []byte{196, 78, 229, 110, 148, 114, 106, 255}, EncodeStringHash(&s))
}

func TestEncodeStringHashDeterministicAndDistinct(t *testing.T) {
	a, b := "hello", "world"
	require.Equal(t, EncodeStringHash(&a), EncodeStringHash(&a))
	require.NotEqual(t, EncodeStringHash(&a), EncodeStringHash(&b))
	require.Len(t, EncodeStringHash(&a), 8)
}

func TestEncodeStringValueNullSortsLowest(t *testing.T) {
	s := "a"
	require.True(t, bytes.Compare(EncodeStringValue(nil), EncodeStringValue(&s)) < 0)
}

func TestEncodeStringValueOrderPreserving(t *testing.T) {
	a, b := "apple", "banana"
	require.True(t, bytes.Compare(EncodeStringValue(&a), EncodeStringValue(&b)) < 0)

	short, shorter := "ab", "a"
	require.True(t, bytes.Compare(EncodeStringValue(&shorter), EncodeStringValue(&short)) < 0)
}

func TestEncodeStringValueOverflow(t *testing.T) {
	s1499 := string(bytes.Repeat([]byte{'x'}, 1499))
	s1500 := string(bytes.Repeat([]byte{'x'}, 1500))
	require.NotEqual(t, EncodeStringValue(&s1499), EncodeStringValue(&s1500))

	shared := bytes.Repeat([]byte{'y'}, 1500)
	sA := string(append(append([]byte{}, shared...), 'A'))
	sB := string(append(append([]byte{}, shared...), 'B'))
	encA := EncodeStringValue(&sA)
	encB := EncodeStringValue(&sB)
	// Both truncate to the same 1500-byte prefix, so their encodings
	// agree through the terminator; the bytes past the prefix never
	// reach the key.
	require.Equal(t, encA[:1502], encB[:1502])
}
