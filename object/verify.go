// Copyright 2024 The Authors
// This file is part of objectdb.

package object

import (
	"encoding/binary"
	"fmt"

	"github.com/erigontech/objectdb/objdberr"
)

// elemWidth returns the per-element byte width of a dynamic type's
// payload. StringList has no fixed per-element width (each element
// carries its own variable-length payload after the descriptor run)
// and is handled separately by Verify.
func elemWidth(t DataType) int {
	switch t {
	case String, Bytes, BoolList:
		return 1
	case IntList, FloatList:
		return 4
	case LongList, DoubleList:
		return 8
	default:
		return 0
	}
}

// Verify checks that data is a well-formed object for layout: every
// dynamic property's descriptor is either null (offset 0) or points at
// a contiguous, in-order span of the dynamic area, and the object's
// total length matches the static size plus the sum of every non-null
// dynamic payload exactly — invariants #1 and #2 of spec §8. It is run
// unconditionally on put (spec §9 resolves the original's partially
// disabled verification in favor of always checking).
func Verify(layout *Layout, data []byte) error {
	if len(data) < layout.StaticSize {
		return objdberr.Newf("object.verify", objdberr.KindDbCorrupted,
			"object shorter than static size: got %d, want >= %d", len(data), layout.StaticSize)
	}

	expected := layout.StaticSize
	for _, p := range layout.Properties {
		if !p.Type.IsDynamic() {
			continue
		}
		if p.Offset+8 > len(data) {
			return objdberr.Newf("object.verify", objdberr.KindDbCorrupted, "truncated descriptor for %q", p.Name)
		}
		offset, length := descriptor(p, data)
		if offset == 0 {
			continue // null list/string: no dynamic bytes consumed
		}
		if int(offset) != expected {
			return objdberr.Newf("object.verify", objdberr.KindDbCorrupted,
				"property %q: dynamic offset %d, want %d (gap or out-of-order)", p.Name, offset, expected)
		}

		var end int
		if p.Type == StringList {
			var err error
			end, err = verifyStringListSpan(data, int(offset), int(length))
			if err != nil {
				return objdberr.New("object.verify", objdberr.KindDbCorrupted, err)
			}
		} else {
			end = int(offset) + int(length)*elemWidth(p.Type)
		}
		if end > len(data) {
			return objdberr.Newf("object.verify", objdberr.KindDbCorrupted, "property %q payload runs past object end", p.Name)
		}
		expected = end
	}

	if expected != len(data) {
		return objdberr.Newf("object.verify", objdberr.KindDbCorrupted,
			"object length %d does not match computed end %d (trailing garbage or missing bytes)", len(data), expected)
	}
	return nil
}

func verifyStringListSpan(data []byte, offset, count int) (int, error) {
	tableEnd := offset + count*8
	if tableEnd > len(data) {
		return 0, fmt.Errorf("string list descriptor table runs past object end")
	}
	end := tableEnd
	for i := 0; i < count; i++ {
		innerOffset := int(binary.LittleEndian.Uint32(data[offset+i*8:]))
		innerLength := int(binary.LittleEndian.Uint32(data[offset+i*8+4:]))
		if innerOffset == 0 {
			continue
		}
		if innerOffset != end {
			return 0, fmt.Errorf("string list element %d: offset %d, want %d", i, innerOffset, end)
		}
		end = innerOffset + innerLength
	}
	return end, nil
}
