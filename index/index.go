// Copyright 2024 The Authors
// This file is part of objectdb.

// Package index implements spec §4.3: maintaining one secondary index
// as encoded-key -> ObjectId pairs inside the engine's shared
// secondary databases, with uniqueness enforced atomically on insert.
package index

import (
	"encoding/binary"
	"fmt"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/keycodec"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/objectid"
)

// Type distinguishes how an index enforces uniqueness.
type Type int

const (
	Unique Type = iota
	NonUnique
)

// Def is the resolved definition of one secondary index: the prefix
// tag disambiguating its keys within the shared secondary database,
// the ordered properties it is built over, whether it rejects
// duplicate keys, and whether string properties within it hash their
// value instead of storing it verbatim.
type Def struct {
	Prefix     uint16
	Properties []object.Property
	Kind       Type
	HashValue  bool
}

// Index is a live handle for one collection's secondary index.
type Index struct {
	Def Def
}

// New wraps a resolved Def as an operable Index.
func New(def Def) *Index { return &Index{Def: def} }

// table returns which shared secondary database this index lives in.
func (ix *Index) table() string {
	if ix.Def.Kind == Unique {
		return store.Secondary
	}
	return store.SecondaryDup
}

// Table is the exported form of table, for callers outside this
// package that need to open their own cursor (e.g. a range scan).
func (ix *Index) Table() string { return ix.table() }

// PrefixBytes returns this index's 2-byte prefix tag, the form every
// one of its keys in the shared secondary database starts with.
func (ix *Index) PrefixBytes() []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, ix.Def.Prefix)
	return buf
}

// EncodeKey computes the composite, order-preserving key for data
// under this index's property list (spec §4.2), without the index's
// prefix tag.
func (ix *Index) EncodeKey(data []byte) ([]byte, error) {
	parts := make([][]byte, len(ix.Def.Properties))
	for i, p := range ix.Def.Properties {
		enc, err := encodeProperty(p, ix.Def.HashValue, data)
		if err != nil {
			return nil, err
		}
		parts[i] = enc
	}
	return keycodec.Concat(parts...), nil
}

func encodeProperty(p object.Property, hashValue bool, data []byte) ([]byte, error) {
	switch p.Type {
	case object.Bool:
		v, ok := object.ReadBool(p, data)
		if !ok {
			return []byte{object.NullBool}, nil
		}
		if v {
			return []byte{object.TrueBool}, nil
		}
		return []byte{object.FalseBool}, nil
	case object.Int:
		v, _ := object.ReadInt(p, data)
		return keycodec.EncodeInt(v), nil
	case object.Long:
		v, _ := object.ReadLong(p, data)
		return keycodec.EncodeLong(v), nil
	case object.Float:
		v, _ := object.ReadFloat(p, data)
		return keycodec.EncodeFloat(v), nil
	case object.Double:
		v, _ := object.ReadDouble(p, data)
		return keycodec.EncodeDouble(v), nil
	case object.String:
		v, ok := object.ReadString(p, data)
		var sp *string
		if ok {
			sp = &v
		}
		if hashValue {
			return keycodec.EncodeStringHash(sp), nil
		}
		return keycodec.EncodeStringValue(sp), nil
	default:
		return nil, fmt.Errorf("index: property %q has non-indexable type %d", p.Name, p.Type)
	}
}

// fullKey prepends the index's prefix tag to an already-encoded key.
func (ix *Index) fullKey(encodedKey []byte) []byte {
	buf := make([]byte, 2+len(encodedKey))
	binary.BigEndian.PutUint16(buf, ix.Def.Prefix)
	copy(buf[2:], encodedKey)
	return buf
}

// Peek looks up encodedKey in a Unique index without mutating
// anything, returning the ObjectId currently stored there if any.
// Collection.Put uses this to pre-validate every unique constraint
// before touching the primary row or any index, so a violation never
// leaves a partial write behind.
func (ix *Index) Peek(tx kv.Tx, encodedKey []byte) (objectid.ID, bool, error) {
	key := ix.fullKey(encodedKey)
	v, err := tx.GetOne(ix.table(), key)
	if err != nil {
		return objectid.ID{}, false, objdberr.New("index.peek", objdberr.KindStoreError, err)
	}
	if v == nil {
		return objectid.ID{}, false, nil
	}
	id, err := objectid.FromBytes(v)
	if err != nil {
		return objectid.ID{}, false, objdberr.New("index.peek", objdberr.KindDbCorrupted, err)
	}
	return id, true, nil
}

// Insert adds encodedKey -> id. For a Unique index this fails with
// UniqueViolated if the key is already present; for a NonUnique index
// it adds another duplicate value under the same key.
func (ix *Index) Insert(tx kv.RwTx, encodedKey []byte, id objectid.ID) error {
	key := ix.fullKey(encodedKey)
	if ix.Def.Kind == Unique {
		existing, err := tx.GetOne(ix.table(), key)
		if err != nil {
			return objdberr.New("index.insert", objdberr.KindStoreError, err)
		}
		if existing != nil {
			return objdberr.Newf("index.insert", objdberr.KindUniqueViolated, "duplicate key in unique index %d", ix.Def.Prefix)
		}
		if err := tx.Put(ix.table(), key, id.Bytes()); err != nil {
			return objdberr.New("index.insert", objdberr.KindStoreError, err)
		}
		return nil
	}

	c, err := tx.RwCursorDupSort(ix.table())
	if err != nil {
		return objdberr.New("index.insert", objdberr.KindStoreError, err)
	}
	defer c.Close()
	if err := c.Put(key, id.Bytes()); err != nil {
		return objdberr.New("index.insert", objdberr.KindStoreError, err)
	}
	return nil
}

// Remove deletes the encodedKey/id pair: for Unique, the whole key;
// for NonUnique, only the duplicate value matching id.
func (ix *Index) Remove(tx kv.RwTx, encodedKey []byte, id objectid.ID) error {
	key := ix.fullKey(encodedKey)
	if ix.Def.Kind == Unique {
		if err := tx.Delete(ix.table(), key); err != nil {
			return objdberr.New("index.remove", objdberr.KindStoreError, err)
		}
		return nil
	}

	c, err := tx.RwCursorDupSort(ix.table())
	if err != nil {
		return objdberr.New("index.remove", objdberr.KindStoreError, err)
	}
	defer c.Close()
	if err := c.DeleteExact(key, id.Bytes()); err != nil {
		return objdberr.New("index.remove", objdberr.KindStoreError, err)
	}
	return nil
}

// Clear deletes every key whose prefix matches this index.
func (ix *Index) Clear(tx kv.RwTx) error {
	prefix := make([]byte, 2)
	binary.BigEndian.PutUint16(prefix, ix.Def.Prefix)
	c, err := tx.RwCursor(ix.table())
	if err != nil {
		return objdberr.New("index.clear", objdberr.KindStoreError, err)
	}
	defer c.Close()
	for k, _, err := c.Seek(prefix); k != nil; k, _, err = c.Next() {
		if err != nil {
			return objdberr.New("index.clear", objdberr.KindStoreError, err)
		}
		if len(k) < 2 || binary.BigEndian.Uint16(k[:2]) != ix.Def.Prefix {
			break
		}
		if err := c.DeleteCurrent(); err != nil {
			return objdberr.New("index.clear", objdberr.KindStoreError, err)
		}
	}
	return nil
}
