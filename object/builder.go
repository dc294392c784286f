// Copyright 2024 The Authors
// This file is part of objectdb.

package object

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/erigontech/objectdb/objdberr"
)

// Values holds one property's worth of Go value per property name.
// The concrete type stored per name must match Property.Type:
//
//	Bool       *bool
//	Int        *int32
//	Float      *float32
//	Long       *int64
//	Double     *float64
//	String     *string
//	Bytes      []byte          (nil means null list)
//	BoolList   []bool
//	IntList    []int32
//	FloatList  []float32
//	LongList   []int64
//	DoubleList []float64
//	StringList []*string       (nil element means null string)
//
// A missing key, or an explicit nil/typed-nil, is treated as null.
type Values map[string]any

// Build assembles an object's binary blob from layout and values, per
// spec §4.1's build operation: scalars go to their declared static
// offset; lists write an (offset, length) descriptor to the static
// slot and append their payload to the dynamic area in declared
// property order.
func Build(layout *Layout, values Values) ([]byte, error) {
	static := make([]byte, layout.StaticSize)
	dyn := make([]byte, 0, 64)

	for _, p := range layout.Properties {
		v := values[p.Name]
		if err := writeProperty(layout, &static, &dyn, p, v); err != nil {
			return nil, objdberr.New("object.build", objdberr.KindIllegalArgument, err)
		}
	}

	out := make([]byte, 0, len(static)+len(dyn))
	out = append(out, static...)
	out = append(out, dyn...)
	return out, nil
}

func writeProperty(layout *Layout, static *[]byte, dyn *[]byte, p Property, v any) error {
	s := *static
	switch p.Type {
	case Bool:
		s[p.Offset] = encodeBoolScalar(v)
	case Int:
		iv := NullInt
		if pv, ok := v.(*int32); ok && pv != nil {
			iv = *pv
		}
		binary.LittleEndian.PutUint32(s[p.Offset:], uint32(iv))
	case Long:
		lv := NullLong
		if pv, ok := v.(*int64); ok && pv != nil {
			lv = *pv
		}
		binary.LittleEndian.PutUint64(s[p.Offset:], uint64(lv))
	case Float:
		fv := NullFloat()
		if pv, ok := v.(*float32); ok && pv != nil {
			fv = *pv
		}
		binary.LittleEndian.PutUint32(s[p.Offset:], math.Float32bits(fv))
	case Double:
		dv := NullDouble()
		if pv, ok := v.(*float64); ok && pv != nil {
			dv = *pv
		}
		binary.LittleEndian.PutUint64(s[p.Offset:], math.Float64bits(dv))
	case String:
		sv, ok := v.(*string)
		if !ok || sv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		appendDynamic(static, dyn, p.Offset, []byte(*sv), len(*sv))
	case Bytes:
		bv, ok := v.([]byte)
		if !ok || bv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		appendDynamic(static, dyn, p.Offset, bv, len(bv))
	case BoolList:
		lv, ok := v.([]bool)
		if !ok || lv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		payload := make([]byte, len(lv))
		for i, b := range lv {
			if b {
				payload[i] = TrueBool
			} else {
				payload[i] = FalseBool
			}
		}
		appendDynamic(static, dyn, p.Offset, payload, len(lv))
	case IntList:
		lv, ok := v.([]int32)
		if !ok || lv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		payload := make([]byte, len(lv)*4)
		for i, n := range lv {
			binary.LittleEndian.PutUint32(payload[i*4:], uint32(n))
		}
		appendDynamic(static, dyn, p.Offset, payload, len(lv))
	case LongList:
		lv, ok := v.([]int64)
		if !ok || lv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		payload := make([]byte, len(lv)*8)
		for i, n := range lv {
			binary.LittleEndian.PutUint64(payload[i*8:], uint64(n))
		}
		appendDynamic(static, dyn, p.Offset, payload, len(lv))
	case FloatList:
		lv, ok := v.([]float32)
		if !ok || lv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		payload := make([]byte, len(lv)*4)
		for i, n := range lv {
			binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(n))
		}
		appendDynamic(static, dyn, p.Offset, payload, len(lv))
	case DoubleList:
		lv, ok := v.([]float64)
		if !ok || lv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		payload := make([]byte, len(lv)*8)
		for i, n := range lv {
			binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(n))
		}
		appendDynamic(static, dyn, p.Offset, payload, len(lv))
	case StringList:
		lv, ok := v.([]*string)
		if !ok || lv == nil {
			writeNullDescriptor(s, p.Offset)
			return nil
		}
		writeStringList(static, dyn, p.Offset, lv)
	default:
		return fmt.Errorf("object: unknown property type %d for %q", p.Type, p.Name)
	}
	return nil
}

func encodeBoolScalar(v any) byte {
	b, ok := v.(*bool)
	if !ok || b == nil {
		return NullBool
	}
	if *b {
		return TrueBool
	}
	return FalseBool
}

func writeNullDescriptor(static []byte, offset int) {
	binary.LittleEndian.PutUint32(static[offset:], 0)
	binary.LittleEndian.PutUint32(static[offset+4:], 0)
}

// appendDynamic writes payload to the dynamic area and patches the
// (offset, length) descriptor at the given static offset.
func appendDynamic(static *[]byte, dyn *[]byte, staticOffset int, payload []byte, count int) {
	base := len(*static) + len(*dyn)
	binary.LittleEndian.PutUint32((*static)[staticOffset:], uint32(base))
	binary.LittleEndian.PutUint32((*static)[staticOffset+4:], uint32(count))
	*dyn = append(*dyn, payload...)
}

// writeStringList lays out the outer descriptor (count = number of
// strings) whose dynamic payload is a run of inner (offset, length)
// descriptors, each pointing at its own string bytes appended after
// the run — spec §4.1's "outer descriptor whose dynamic payload is a
// sequence of inner descriptors".
func writeStringList(static *[]byte, dyn *[]byte, staticOffset int, items []*string) {
	staticLen := len(*static)
	outerBase := staticLen + len(*dyn)
	binary.LittleEndian.PutUint32((*static)[staticOffset:], uint32(outerBase))
	binary.LittleEndian.PutUint32((*static)[staticOffset+4:], uint32(len(items)))

	descTableRel := len(*dyn)
	*dyn = append(*dyn, make([]byte, len(items)*8)...)

	for i, s := range items {
		descRel := descTableRel + i*8
		if s == nil {
			binary.LittleEndian.PutUint32((*dyn)[descRel:], 0)
			binary.LittleEndian.PutUint32((*dyn)[descRel+4:], 0)
			continue
		}
		bs := []byte(*s)
		strBase := staticLen + len(*dyn)
		binary.LittleEndian.PutUint32((*dyn)[descRel:], uint32(strBase))
		binary.LittleEndian.PutUint32((*dyn)[descRel+4:], uint32(len(bs)))
		*dyn = append(*dyn, bs...)
	}
}
