// Copyright 2024 The Authors
// This file is part of objectdb.

// Package keycodec implements the order-preserving byte encodings of
// spec §4.2: for every scalar type, byte comparison of the encoded
// form matches semantic comparison of the original value, and every
// null sentinel encodes to the lexicographically lowest string for
// its type.
package keycodec

import (
	"encoding/binary"
	"math"
)

// MaxStringValueLen is the point at which the value encoding switches
// to a truncated-prefix-plus-hash representation.
const MaxStringValueLen = 1500

// EncodeByte encodes a single byte; byte comparison is already
// semantic comparison, so this is the identity function.
func EncodeByte(b byte) []byte { return []byte{b} }

// DecodeByte is the inverse of EncodeByte.
func DecodeByte(b []byte) byte { return b[0] }

// EncodeInt encodes a signed 32-bit integer (including the NullInt
// sentinel math.MinInt32, which lands on the all-zero, lowest-sorting
// encoding automatically).
func EncodeInt(v int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v)^0x80000000)
	return buf
}

// DecodeInt is the inverse of EncodeInt.
func DecodeInt(buf []byte) int32 {
	return int32(binary.BigEndian.Uint32(buf) ^ 0x80000000)
}

// EncodeLong encodes a signed 64-bit integer (including the NullLong
// sentinel math.MinInt64).
func EncodeLong(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)^0x8000000000000000)
	return buf
}

// DecodeLong is the inverse of EncodeLong.
func DecodeLong(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf) ^ 0x8000000000000000)
}

// EncodeFloat encodes a 32-bit float. NaN (the NullFloat sentinel)
// encodes to four zero bytes, which sorts below every finite value
// including -Inf.
func EncodeFloat(v float32) []byte {
	buf := make([]byte, 4)
	if math.IsNaN(float64(v)) {
		return buf
	}
	bits := math.Float32bits(v)
	if bits&0x80000000 == 0 {
		bits += 1 << 31
	} else {
		bits = ^bits
	}
	binary.BigEndian.PutUint32(buf, bits)
	return buf
}

// DecodeFloat is the inverse of EncodeFloat for non-null inputs. The
// all-zero encoding of NaN is not invertible (by design, many distinct
// NaN payloads would all collapse to it) and decodes to NaN.
func DecodeFloat(buf []byte) float32 {
	bits := binary.BigEndian.Uint32(buf)
	if bits == 0 {
		return float32(math.NaN())
	}
	if bits&0x80000000 != 0 {
		bits -= 1 << 31
	} else {
		bits = ^bits
	}
	return math.Float32frombits(bits)
}

// EncodeDouble is EncodeFloat's 64-bit counterpart.
func EncodeDouble(v float64) []byte {
	buf := make([]byte, 8)
	if math.IsNaN(v) {
		return buf
	}
	bits := math.Float64bits(v)
	if bits&0x8000000000000000 == 0 {
		bits += 1 << 63
	} else {
		bits = ^bits
	}
	binary.BigEndian.PutUint64(buf, bits)
	return buf
}

// DecodeDouble is the inverse of EncodeDouble for non-null inputs.
func DecodeDouble(buf []byte) float64 {
	bits := binary.BigEndian.Uint64(buf)
	if bits == 0 {
		return math.NaN()
	}
	if bits&0x8000000000000000 != 0 {
		bits -= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits)
}

// EncodeStringHash encodes a string (or null) as an 8-byte wyhash of
// its UTF-8 bytes, for use in hashed composite indexes. A nil value
// encodes to eight zero bytes.
func EncodeStringHash(s *string) []byte {
	buf := make([]byte, 8)
	if s == nil {
		return buf
	}
	binary.BigEndian.PutUint64(buf, wyhash64([]byte(*s), 0))
	return buf
}

// Concat concatenates per-property encodings in declared index order
// to build a composite key (spec §4.2).
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	buf := make([]byte, 0, n)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return buf
}

// EncodeStringValue encodes a string (or null) so that byte comparison
// matches string comparison up to MaxStringValueLen bytes, beyond
// which ties are broken by a trailing hash of the truncated prefix
// rather than the full value.
func EncodeStringValue(s *string) []byte {
	if s == nil {
		return []byte{0x00}
	}
	utf8 := []byte(*s)
	if len(utf8) < MaxStringValueLen {
		buf := make([]byte, 0, len(utf8)+2)
		buf = append(buf, 0x01)
		buf = append(buf, utf8...)
		buf = append(buf, 0x00)
		return buf
	}
	truncated := utf8[:MaxStringValueLen]
	buf := make([]byte, 0, 1+MaxStringValueLen+1+8)
	buf = append(buf, 0x01)
	buf = append(buf, truncated...)
	buf = append(buf, 0x00)
	hash := make([]byte, 8)
	binary.BigEndian.PutUint64(hash, wyhash64(truncated, 0))
	buf = append(buf, hash...)
	return buf
}
