// Copyright 2024 The Authors
// This file is part of objectdb.

package object

import (
	"encoding/binary"
	"math"
)

// ReadBool decodes the Bool at p within data. ok is false if the
// stored sentinel is NullBool.
func ReadBool(p Property, data []byte) (value, ok bool) {
	b := data[p.Offset]
	if b == NullBool {
		return false, false
	}
	return b == TrueBool, true
}

// ReadInt decodes the Int at p within data. ok is false for NullInt.
func ReadInt(p Property, data []byte) (value int32, ok bool) {
	v := int32(binary.LittleEndian.Uint32(data[p.Offset:]))
	if v == NullInt {
		return 0, false
	}
	return v, true
}

// ReadLong decodes the Long at p within data. ok is false for NullLong.
func ReadLong(p Property, data []byte) (value int64, ok bool) {
	v := int64(binary.LittleEndian.Uint64(data[p.Offset:]))
	if v == NullLong {
		return 0, false
	}
	return v, true
}

// ReadFloat decodes the Float at p within data. ok is false for NaN.
func ReadFloat(p Property, data []byte) (value float32, ok bool) {
	v := math.Float32frombits(binary.LittleEndian.Uint32(data[p.Offset:]))
	if math.IsNaN(float64(v)) {
		return 0, false
	}
	return v, true
}

// ReadDouble decodes the Double at p within data. ok is false for NaN.
func ReadDouble(p Property, data []byte) (value float64, ok bool) {
	v := math.Float64frombits(binary.LittleEndian.Uint64(data[p.Offset:]))
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// descriptor reads the (offset, length) pair at p's static slot.
func descriptor(p Property, data []byte) (offset, length uint32) {
	return binary.LittleEndian.Uint32(data[p.Offset:]), binary.LittleEndian.Uint32(data[p.Offset+4:])
}

// IsNull reports whether p's value in data is the null sentinel for
// its type — for dynamic types this is the offset==0 convention.
func IsNull(p Property, data []byte) bool {
	switch p.Type {
	case Bool:
		_, ok := ReadBool(p, data)
		return !ok
	case Int:
		_, ok := ReadInt(p, data)
		return !ok
	case Long:
		_, ok := ReadLong(p, data)
		return !ok
	case Float:
		_, ok := ReadFloat(p, data)
		return !ok
	case Double:
		_, ok := ReadDouble(p, data)
		return !ok
	default:
		offset, _ := descriptor(p, data)
		return offset == 0
	}
}

// ReadString decodes the String at p within data. ok is false for a
// null list/string descriptor.
func ReadString(p Property, data []byte) (value string, ok bool) {
	offset, length := descriptor(p, data)
	if offset == 0 {
		return "", false
	}
	return string(data[offset : offset+length]), true
}

// ReadBytes decodes the Bytes list at p, sharing data's backing array
// (zero-copy).
func ReadBytes(p Property, data []byte) (value []byte, ok bool) {
	offset, length := descriptor(p, data)
	if offset == 0 {
		return nil, false
	}
	return data[offset : offset+length], true
}

// ReadIntList decodes an IntList at p.
func ReadIntList(p Property, data []byte) ([]int32, bool) {
	offset, length := descriptor(p, data)
	if offset == 0 {
		return nil, false
	}
	out := make([]int32, length)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(data[int(offset)+i*4:]))
	}
	return out, true
}

// ReadLongList decodes a LongList at p.
func ReadLongList(p Property, data []byte) ([]int64, bool) {
	offset, length := descriptor(p, data)
	if offset == 0 {
		return nil, false
	}
	out := make([]int64, length)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(data[int(offset)+i*8:]))
	}
	return out, true
}

// ReadFloatList decodes a FloatList at p.
func ReadFloatList(p Property, data []byte) ([]float32, bool) {
	offset, length := descriptor(p, data)
	if offset == 0 {
		return nil, false
	}
	out := make([]float32, length)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[int(offset)+i*4:]))
	}
	return out, true
}

// ReadDoubleList decodes a DoubleList at p.
func ReadDoubleList(p Property, data []byte) ([]float64, bool) {
	offset, length := descriptor(p, data)
	if offset == 0 {
		return nil, false
	}
	out := make([]float64, length)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[int(offset)+i*8:]))
	}
	return out, true
}

// ReadBoolList decodes a BoolList at p. An element reads as true only
// when it holds TrueBool; an element holding NullBool reads as false,
// since the list has no per-element validity marker.
func ReadBoolList(p Property, data []byte) ([]bool, bool) {
	offset, length := descriptor(p, data)
	if offset == 0 {
		return nil, false
	}
	out := make([]bool, length)
	for i := range out {
		out[i] = data[int(offset)+i] == TrueBool
	}
	return out, true
}

// ReadStringList decodes a StringList at p: the outer descriptor's
// payload is a run of inner (offset, length) descriptors, each
// resolved against data the same way a top-level String is.
func ReadStringList(p Property, data []byte) ([]*string, bool) {
	offset, count := descriptor(p, data)
	if offset == 0 {
		return nil, false
	}
	out := make([]*string, count)
	for i := range out {
		innerOffset := binary.LittleEndian.Uint32(data[int(offset)+i*8:])
		innerLength := binary.LittleEndian.Uint32(data[int(offset)+i*8+4:])
		if innerOffset == 0 {
			out[i] = nil
			continue
		}
		s := string(data[innerOffset : innerOffset+innerLength])
		out[i] = &s
	}
	return out, true
}
