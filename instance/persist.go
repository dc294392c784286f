// Copyright 2024 The Authors
// This file is part of objectdb.

package instance

import (
	"encoding/binary"
	"fmt"

	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/schema"
)

// encodeResolved serializes the reconciled schema for storage under
// store.InfoSchemaKey, the way every other on-disk structure in this
// engine is encoded: length-prefixed fields written directly with
// encoding/binary, matching keycodec/object/index/objectid rather
// than reaching for a generic serialization library.
func encodeResolved(r *schema.Resolved) []byte {
	buf := make([]byte, 0, 256)
	buf = appendUint32(buf, uint32(len(r.Collections)))
	for _, c := range r.Collections {
		buf = appendString(buf, c.Name)
		buf = appendUint16(buf, c.Prefix)
		buf = appendUint32(buf, uint32(len(c.Properties)))
		for _, p := range c.Properties {
			buf = appendString(buf, p.Name)
			buf = append(buf, byte(p.Type))
		}
		buf = appendUint32(buf, uint32(len(c.Indexes)))
		for _, ix := range c.Indexes {
			buf = appendUint16(buf, ix.Prefix)
			buf = appendBool(buf, ix.Unique)
			buf = appendBool(buf, ix.HashValue)
			buf = appendUint32(buf, uint32(len(ix.Properties)))
			for _, name := range ix.Properties {
				buf = appendString(buf, name)
			}
		}
	}
	return buf
}

// decodeResolved is the inverse of encodeResolved, reconstructing a
// *schema.Resolved good enough to hand back into schema.Resolve as
// "old" — layouts and index Props are recomputed from the persisted
// property list rather than also being serialized.
func decodeResolved(buf []byte) (*schema.Resolved, error) {
	r := &schema.Resolved{}
	var ok bool

	var numColls uint32
	numColls, buf, ok = readUint32(buf)
	if !ok {
		return nil, fmt.Errorf("instance: truncated schema record")
	}

	for i := uint32(0); i < numColls; i++ {
		var name string
		name, buf, ok = readString(buf)
		if !ok {
			return nil, fmt.Errorf("instance: truncated collection name")
		}
		var prefix uint16
		prefix, buf, ok = readUint16(buf)
		if !ok {
			return nil, fmt.Errorf("instance: truncated collection prefix")
		}

		var numProps uint32
		numProps, buf, ok = readUint32(buf)
		if !ok {
			return nil, fmt.Errorf("instance: truncated property count")
		}
		props := make([]schema.PropertySchema, numProps)
		defs := make([]object.PropertyDef, numProps)
		for j := range props {
			var pname string
			pname, buf, ok = readString(buf)
			if !ok || len(buf) < 1 {
				return nil, fmt.Errorf("instance: truncated property")
			}
			ptype := object.DataType(buf[0])
			buf = buf[1:]
			props[j] = schema.PropertySchema{Name: pname, Type: ptype}
			defs[j] = object.PropertyDef{Name: pname, Type: ptype}
		}

		var numIdx uint32
		numIdx, buf, ok = readUint32(buf)
		if !ok {
			return nil, fmt.Errorf("instance: truncated index count")
		}
		layout := object.NewLayout(defs)
		indexes := make([]schema.ResolvedIndex, numIdx)
		for j := range indexes {
			var ixPrefix uint16
			ixPrefix, buf, ok = readUint16(buf)
			if !ok {
				return nil, fmt.Errorf("instance: truncated index prefix")
			}
			var unique, hashValue bool
			unique, buf, ok = readBool(buf)
			if !ok {
				return nil, fmt.Errorf("instance: truncated index unique flag")
			}
			hashValue, buf, ok = readBool(buf)
			if !ok {
				return nil, fmt.Errorf("instance: truncated index hash flag")
			}
			var numIxProps uint32
			numIxProps, buf, ok = readUint32(buf)
			if !ok {
				return nil, fmt.Errorf("instance: truncated index property count")
			}
			names := make([]string, numIxProps)
			resolvedProps := make([]object.Property, numIxProps)
			for k := range names {
				var pname string
				pname, buf, ok = readString(buf)
				if !ok {
					return nil, fmt.Errorf("instance: truncated index property name")
				}
				names[k] = pname
				p, found := layout.ByName(pname)
				if !found {
					return nil, fmt.Errorf("instance: index references unknown property %q", pname)
				}
				resolvedProps[k] = p
			}
			indexes[j] = schema.ResolvedIndex{
				IndexSchema: schema.IndexSchema{Properties: names, Unique: unique, HashValue: hashValue},
				Prefix:      ixPrefix,
				Props:       resolvedProps,
			}
		}

		r.Collections = append(r.Collections, schema.ResolvedCollection{
			CollectionSchema: schema.CollectionSchema{Name: name, Properties: props},
			Prefix:           prefix,
			Layout:           layout,
			Indexes:          indexes,
		})
	}
	return r, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func appendString(buf []byte, s string) []byte {
	buf = appendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

func readUint32(buf []byte) (uint32, []byte, bool) {
	if len(buf) < 4 {
		return 0, buf, false
	}
	return binary.BigEndian.Uint32(buf), buf[4:], true
}

func readUint16(buf []byte) (uint16, []byte, bool) {
	if len(buf) < 2 {
		return 0, buf, false
	}
	return binary.BigEndian.Uint16(buf), buf[2:], true
}

func readBool(buf []byte) (bool, []byte, bool) {
	if len(buf) < 1 {
		return false, buf, false
	}
	return buf[0] != 0, buf[1:], true
}

func readString(buf []byte) (string, []byte, bool) {
	n, rest, ok := readUint16(buf)
	if !ok || len(rest) < int(n) {
		return "", buf, false
	}
	return string(rest[:n]), rest[int(n):], true
}
