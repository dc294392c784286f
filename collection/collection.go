// Copyright 2024 The Authors
// This file is part of objectdb.

// Package collection implements spec §4.4's CRUD surface: get, put,
// delete, and clear against one collection's primary row and the
// secondary indexes derived from its schema.
package collection

import (
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/index"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/objectid"
	"github.com/erigontech/objectdb/schema"
)

// Collection is a live handle for one resolved collection: its static
// layout, its indexes, and the generator that mints ids for it when a
// put doesn't supply one.
type Collection struct {
	Name      string
	Prefix    uint16
	Layout    *object.Layout
	Indexes   []*index.Index
	Generator *objectid.Generator
}

// New builds a live Collection from its resolved schema and the
// generator assigned to its prefix (one per collection, spec §3).
func New(rc schema.ResolvedCollection, gen *objectid.Generator) *Collection {
	c := &Collection{
		Name:      rc.Name,
		Prefix:    rc.Prefix,
		Layout:    rc.Layout,
		Generator: gen,
	}
	for _, ix := range rc.Indexes {
		kind := index.NonUnique
		if ix.Unique {
			kind = index.Unique
		}
		c.Indexes = append(c.Indexes, index.New(index.Def{
			Prefix:     ix.Prefix,
			Properties: ix.Props,
			Kind:       kind,
			HashValue:  ix.HashValue,
		}))
	}
	return c
}

// Get returns the raw object bytes stored at id, or ok=false if no
// such row exists.
func (c *Collection) Get(tx kv.Tx, id objectid.ID) (data []byte, ok bool, err error) {
	v, err := tx.GetOne(store.Primary, id.Bytes())
	if err != nil {
		return nil, false, objdberr.New("collection.get", objdberr.KindStoreError, err)
	}
	if v == nil {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put builds values into this collection's layout and stores it: when
// id is nil a fresh id is minted; when id is non-nil it must already
// name an existing row — Put replaces that row and swaps every
// index's stale entry for its new one, but it never uses an explicit
// id to insert a row that doesn't exist yet (spec §4.4 step 1: an
// ObjectId provided with no entry found is *IllegalState*, not an
// implicit insert).
//
// Every unique index is checked for a collision before anything is
// written (index.Peek), so a UniqueViolated error never leaves a
// partial write in the primary row or any index — the precheck is
// what spec §4.4's "aborts the nested write transaction" reduces to
// when the write transaction isn't actually split into a parent and a
// nested child (txn.ExecAtomicWrite's doc comment explains why).
func (c *Collection) Put(tx kv.RwTx, id *objectid.ID, values object.Values) (objectid.ID, error) {
	data, err := object.Build(c.Layout, values)
	if err != nil {
		return objectid.ID{}, err
	}
	if err := object.Verify(c.Layout, data); err != nil {
		return objectid.ID{}, err
	}

	var oid objectid.ID
	var oldData []byte
	var hadOld bool
	if id != nil {
		oid = *id
		oldData, hadOld, err = c.Get(tx, oid)
		if err != nil {
			return objectid.ID{}, err
		}
		if !hadOld {
			return objectid.ID{}, objdberr.Newf("collection.put", objdberr.KindIllegalState,
				"collection %q: ObjectId provided but no entry found", c.Name)
		}
	} else {
		oid, err = c.Generator.Next()
		if err != nil {
			return objectid.ID{}, objdberr.New("collection.put", objdberr.KindStoreError, err)
		}
	}

	newKeys := make([][]byte, len(c.Indexes))
	for i, ix := range c.Indexes {
		key, err := ix.EncodeKey(data)
		if err != nil {
			return objectid.ID{}, err
		}
		newKeys[i] = key
		if ix.Def.Kind != index.Unique {
			continue
		}
		existingID, found, err := ix.Peek(tx, key)
		if err != nil {
			return objectid.ID{}, err
		}
		if found && !(hadOld && existingID == oid) {
			return objectid.ID{}, objdberr.Newf("collection.put", objdberr.KindUniqueViolated,
				"collection %q: value already present in a unique index", c.Name)
		}
	}

	if hadOld {
		for _, ix := range c.Indexes {
			oldKey, err := ix.EncodeKey(oldData)
			if err != nil {
				return objectid.ID{}, err
			}
			if err := ix.Remove(tx, oldKey, oid); err != nil {
				return objectid.ID{}, err
			}
		}
	}

	if err := tx.Put(store.Primary, oid.Bytes(), data); err != nil {
		return objectid.ID{}, objdberr.New("collection.put", objdberr.KindStoreError, err)
	}

	for i, ix := range c.Indexes {
		if err := ix.Insert(tx, newKeys[i], oid); err != nil {
			return objectid.ID{}, err
		}
	}

	return oid, nil
}

// Delete removes id's row and every index entry derived from it.
// found is false if no such row existed.
func (c *Collection) Delete(tx kv.RwTx, id objectid.ID) (found bool, err error) {
	data, found, err := c.Get(tx, id)
	if err != nil || !found {
		return found, err
	}
	for _, ix := range c.Indexes {
		key, err := ix.EncodeKey(data)
		if err != nil {
			return false, err
		}
		if err := ix.Remove(tx, key, id); err != nil {
			return false, err
		}
	}
	if err := tx.Delete(store.Primary, id.Bytes()); err != nil {
		return false, objdberr.New("collection.delete", objdberr.KindStoreError, err)
	}
	return true, nil
}

// Clear removes every row in this collection and every entry across
// all of its indexes.
func (c *Collection) Clear(tx kv.RwTx) error {
	cur, err := tx.RwCursor(store.Primary)
	if err != nil {
		return objdberr.New("collection.clear", objdberr.KindStoreError, err)
	}
	defer cur.Close()

	var ids []objectid.ID
	for k, _, err := cur.First(); k != nil; k, _, err = cur.Next() {
		if err != nil {
			return objdberr.New("collection.clear", objdberr.KindStoreError, err)
		}
		id, idErr := objectid.FromBytes(k)
		if idErr != nil {
			return objdberr.New("collection.clear", objdberr.KindDbCorrupted, idErr)
		}
		if id.Prefix() == c.Prefix {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if err := tx.Delete(store.Primary, id.Bytes()); err != nil {
			return objdberr.New("collection.clear", objdberr.KindStoreError, err)
		}
	}
	for _, ix := range c.Indexes {
		if err := ix.Clear(tx); err != nil {
			return err
		}
	}
	return nil
}
