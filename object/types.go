// Copyright 2024 The Authors
// This file is part of objectdb.

// Package object implements the binary object layout of spec §4.1: a
// fixed static area sized from the schema, followed by an appended
// dynamic area holding list and string payloads. Scalars are decoded
// directly from the backing byte slice and ReadBytes returns a slice
// of it; ReadString and the typed list readers copy their payload into
// newly allocated values.
package object

import "math"

// DataType enumerates the scalar and list property types a schema can
// declare.
type DataType int

const (
	Bool DataType = iota
	Int
	Float
	Long
	Double
	String
	Bytes // a list of raw bytes; encoded exactly like a dynamic scalar list
	BoolList
	IntList
	FloatList
	LongList
	DoubleList
	StringList
)

// IsDynamic reports whether values of t live in the dynamic area
// (true) or occupy a fixed-width static slot (false).
func (t DataType) IsDynamic() bool {
	switch t {
	case Bool, Int, Float, Long, Double:
		return false
	default:
		return true
	}
}

// StaticWidth returns the number of bytes t occupies in the static
// area: the scalar's own width for fixed types, or 8 bytes for the
// (offset, length) descriptor of a dynamic type.
func (t DataType) StaticWidth() int {
	switch t {
	case Bool:
		return 1
	case Int, Float:
		return 4
	case Long, Double:
		return 8
	default:
		return 8
	}
}

// Null sentinels (spec §3). Every sentinel is deliberately chosen so
// its key-codec encoding is the lowest byte string for its type.
const (
	NullInt   int32 = math.MinInt32
	NullLong  int64 = math.MinInt64
	NullBool  byte  = 0
	FalseBool byte  = 1
	TrueBool  byte  = 2
)

func NullFloat() float32  { return float32(math.NaN()) }
func NullDouble() float64 { return math.NaN() }

// Property describes one field of a collection's layout: its declared
// name, type, and the byte offset it was assigned within the static
// area.
type Property struct {
	Name   string
	Type   DataType
	Offset int
}
