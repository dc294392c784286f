// Copyright 2024 The Authors
// This file is part of objectdb.

package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenario4VerifyAcceptsWellFormedObject(t *testing.T) {
	layout := NewLayout([]PropertyDef{
		{Name: "flag", Type: Bool},
		{Name: "label", Type: String},
		{Name: "blob", Type: Bytes},
	})
	require.Equal(t, 17, layout.StaticSize)

	data := []byte{
		2, // Bool = TRUE
		17, 0, 0, 0, 1, 0, 0, 0, // String descriptor: offset=17, len=1
		18, 0, 0, 0, 3, 0, 0, 0, // Bytes descriptor: offset=18, len=3
		63,     // "?" (String payload)
		60, 61, 62, // Bytes payload
	}
	require.Len(t, data, 21)
	require.NoError(t, Verify(layout, data))

	v, ok := ReadBool(layout.Properties[0], data)
	require.True(t, ok)
	require.True(t, v)

	s, ok := ReadString(layout.Properties[1], data)
	require.True(t, ok)
	require.Equal(t, "?", s)

	bs, ok := ReadBytes(layout.Properties[2], data)
	require.True(t, ok)
	require.Equal(t, []byte{60, 61, 62}, bs)
}

func TestScenario4VerifyRejectsTrailingByte(t *testing.T) {
	layout := NewLayout([]PropertyDef{
		{Name: "flag", Type: Bool},
		{Name: "label", Type: String},
		{Name: "blob", Type: Bytes},
	})
	data := []byte{
		2,
		17, 0, 0, 0, 1, 0, 0, 0,
		18, 0, 0, 0, 3, 0, 0, 0,
		63,
		60, 61, 62,
		0, // trailing garbage byte
	}
	require.Error(t, Verify(layout, data))
}

func TestBuildReadRoundTripAllScalars(t *testing.T) {
	layout := NewLayout([]PropertyDef{
		{Name: "b", Type: Bool},
		{Name: "i", Type: Int},
		{Name: "f", Type: Float},
		{Name: "l", Type: Long},
		{Name: "d", Type: Double},
	})
	bv := true
	iv := int32(42)
	fv := float32(1.5)
	lv := int64(-9001)
	dv := 3.14159

	data, err := Build(layout, Values{"b": &bv, "i": &iv, "f": &fv, "l": &lv, "d": &dv})
	require.NoError(t, err)
	require.NoError(t, Verify(layout, data))

	gotB, ok := ReadBool(layout.Properties[0], data)
	require.True(t, ok)
	require.Equal(t, bv, gotB)

	gotI, ok := ReadInt(layout.Properties[1], data)
	require.True(t, ok)
	require.Equal(t, iv, gotI)

	gotF, ok := ReadFloat(layout.Properties[2], data)
	require.True(t, ok)
	require.Equal(t, fv, gotF)

	gotL, ok := ReadLong(layout.Properties[3], data)
	require.True(t, ok)
	require.Equal(t, lv, gotL)

	gotD, ok := ReadDouble(layout.Properties[4], data)
	require.True(t, ok)
	require.Equal(t, dv, gotD)
}

func TestBuildNullScalarsReadAsNull(t *testing.T) {
	layout := NewLayout([]PropertyDef{
		{Name: "i", Type: Int},
		{Name: "f", Type: Float},
	})
	data, err := Build(layout, Values{})
	require.NoError(t, err)
	require.NoError(t, Verify(layout, data))

	_, ok := ReadInt(layout.Properties[0], data)
	require.False(t, ok)
	_, ok = ReadFloat(layout.Properties[1], data)
	require.False(t, ok)
}

func TestBuildReadRoundTripLists(t *testing.T) {
	layout := NewLayout([]PropertyDef{
		{Name: "ints", Type: IntList},
		{Name: "strs", Type: StringList},
	})
	ints := []int32{1, 2, 3}
	a, b := "alpha", "beta"
	strs := []*string{&a, nil, &b}

	data, err := Build(layout, Values{"ints": ints, "strs": strs})
	require.NoError(t, err)
	require.NoError(t, Verify(layout, data))

	gotInts, ok := ReadIntList(layout.Properties[0], data)
	require.True(t, ok)
	require.Equal(t, ints, gotInts)

	gotStrs, ok := ReadStringList(layout.Properties[1], data)
	require.True(t, ok)
	require.Len(t, gotStrs, 3)
	require.Equal(t, "alpha", *gotStrs[0])
	require.Nil(t, gotStrs[1])
	require.Equal(t, "beta", *gotStrs[2])
}

func TestBuildNullListDescriptorIsZero(t *testing.T) {
	layout := NewLayout([]PropertyDef{{Name: "tags", Type: StringList}})
	data, err := Build(layout, Values{})
	require.NoError(t, err)
	require.NoError(t, Verify(layout, data))

	_, ok := ReadStringList(layout.Properties[0], data)
	require.False(t, ok)
	require.True(t, IsNull(layout.Properties[0], data))
	require.Len(t, data, layout.StaticSize) // no dynamic bytes for an all-null object
}
