// Copyright 2024 The Authors
// This file is part of objectdb.
//
// objectdb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package objectid implements the 14-byte ObjectId of spec §3 and the
// per-collection generator that produces fresh ones.
package objectid

import (
	"encoding/binary"
	"fmt"
)

// Size is the fixed byte length of an ObjectId.
const Size = 14

// ID is a 14-byte object identifier: a 2-byte collection prefix
// (little-endian), a 4-byte big-endian wall-clock second, and an
// 8-byte rand_counter whose upper 48 bits are random and whose low 16
// bits are a per-second monotonic counter, both written in the
// natural (big-endian) byte order of the 14-byte array. The
// big-endian time makes newer objects sort later at byte level.
type ID [Size]byte

// Prefix returns the collection prefix encoded in id.
func (id ID) Prefix() uint16 {
	return binary.LittleEndian.Uint16(id[0:2])
}

// Time returns the wall-clock second the id was minted in.
func (id ID) Time() uint32 {
	return binary.BigEndian.Uint32(id[2:6])
}

// Bytes returns the id as a slice, sharing id's backing array.
func (id *ID) Bytes() []byte { return id[:] }

// String renders the id as hex, the conventional log-friendly form
// for a fixed-width binary identifier.
func (id ID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// FromBytes validates and copies a 14-byte slice into an ID.
func FromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != Size {
		return id, fmt.Errorf("objectid: want %d bytes, got %d", Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// WithoutPrefix returns the 12 bytes of id that follow the collection
// prefix — the part the primary database key is built from once the
// prefix has been fixed by the table/collection context.
func (id ID) WithoutPrefix() []byte { return id[2:] }

// New assembles an ID from its three logical fields.
func New(prefix uint16, timeSec uint32, randCounter uint64) ID {
	var id ID
	binary.LittleEndian.PutUint16(id[0:2], prefix)
	binary.BigEndian.PutUint32(id[2:6], timeSec)
	binary.BigEndian.PutUint64(id[6:14], randCounter)
	return id
}
