// Copyright 2024 The Authors
// This file is part of objectdb.

package schema

import (
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/index"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/objectid"
)

// Migrate applies diff inside an already-open write transaction,
// before any user-visible operation runs against resolved (spec
// §4.8): collections dropped entirely are cleared, rows are rewritten
// when a property was added or removed (matched by name), removed
// indexes are cleared, and
// added indexes are backfilled from the rows already on disk.
func Migrate(tx kv.RwTx, diff *Diff, old *Resolved, resolved *Resolved) error {
	for _, rc := range diff.RemovedCollections {
		if err := dropCollection(tx, rc); err != nil {
			return err
		}
	}

	for _, cdiff := range diff.Collections {
		newColl, ok := resolved.ByName(cdiff.Name)
		if !ok {
			continue
		}
		var oldColl *ResolvedCollection
		if old != nil {
			oldColl, _ = old.ByName(cdiff.Name)
		}

		for _, ix := range cdiff.RemovedIndexes {
			if err := index.New(indexDef(ix)).Clear(tx); err != nil {
				return err
			}
		}

		if oldColl != nil && (cdiff.PropertiesRemoved || len(cdiff.AddedProperties) > 0) {
			if err := rewriteRows(tx, oldColl, newColl, cdiff.RenameHints); err != nil {
				return err
			}
		}

		if len(cdiff.AddedIndexes) > 0 {
			if err := backfillIndexes(tx, newColl, cdiff.AddedIndexes); err != nil {
				return err
			}
		}
	}

	return nil
}

func indexDef(ix ResolvedIndex) index.Def {
	kind := index.NonUnique
	if ix.Unique {
		kind = index.Unique
	}
	return index.Def{Prefix: ix.Prefix, Properties: ix.Props, Kind: kind, HashValue: ix.HashValue}
}

type primaryRow struct {
	key   objectid.ID
	value []byte
}

// scanCollection collects every primary row belonging to prefix. It
// reads the whole table rather than seeking a contiguous range,
// because an ObjectId's leading collection prefix is stored
// little-endian (spec §3) and so is not itself lexicographically
// contiguous per collection.
func scanCollection(tx kv.Tx, prefix uint16) ([]primaryRow, error) {
	c, err := tx.Cursor(store.Primary)
	if err != nil {
		return nil, objdberr.New("schema.migrate", objdberr.KindStoreError, err)
	}
	defer c.Close()

	var rows []primaryRow
	for k, v, err := c.First(); k != nil; k, v, err = c.Next() {
		if err != nil {
			return nil, objdberr.New("schema.migrate", objdberr.KindStoreError, err)
		}
		id, idErr := objectid.FromBytes(k)
		if idErr != nil {
			return nil, objdberr.New("schema.migrate", objdberr.KindDbCorrupted, idErr)
		}
		if id.Prefix() != prefix {
			continue
		}
		value := make([]byte, len(v))
		copy(value, v)
		rows = append(rows, primaryRow{key: id, value: value})
	}
	return rows, nil
}

func dropCollection(tx kv.RwTx, rc ResolvedCollection) error {
	rows, err := scanCollection(tx, rc.Prefix)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := tx.Delete(store.Primary, row.key.Bytes()); err != nil {
			return objdberr.New("schema.migrate", objdberr.KindStoreError, err)
		}
	}
	for _, ix := range rc.Indexes {
		if err := index.New(indexDef(ix)).Clear(tx); err != nil {
			return err
		}
	}
	return nil
}

// rewriteRows rebuilds every row of a collection whose static layout
// changed: values are carried over by matching property name and
// type, a renamed property's value is carried from the property it
// replaced, and anything else comes back null.
func rewriteRows(tx kv.RwTx, oldColl, newColl *ResolvedCollection, renameHints map[string]string) error {
	rows, err := scanCollection(tx, oldColl.Prefix)
	if err != nil {
		return err
	}

	oldByName := map[string]object.Property{}
	for _, p := range oldColl.Layout.Properties {
		oldByName[p.Name] = p
	}

	for _, row := range rows {
		values := object.Values{}
		for _, np := range newColl.Layout.Properties {
			sourceName := np.Name
			if hint, ok := renameHints[np.Name]; ok {
				sourceName = hint
			}
			op, ok := oldByName[sourceName]
			if !ok || op.Type != np.Type {
				continue
			}
			if v, ok := readAsValue(op, row.value); ok {
				values[np.Name] = v
			}
		}

		newData, err := object.Build(newColl.Layout, values)
		if err != nil {
			return err
		}
		if err := object.Verify(newColl.Layout, newData); err != nil {
			return err
		}
		if err := tx.Put(store.Primary, row.key.Bytes(), newData); err != nil {
			return objdberr.New("schema.migrate", objdberr.KindStoreError, err)
		}
	}
	return nil
}

// readAsValue reads p out of data as the any the Values map expects
// for its type (object.Values' documented mapping), or ok=false if
// the stored value is null and nothing should be carried over.
func readAsValue(p object.Property, data []byte) (any, bool) {
	switch p.Type {
	case object.Bool:
		v, ok := object.ReadBool(p, data)
		if !ok {
			return nil, false
		}
		return &v, true
	case object.Int:
		v, ok := object.ReadInt(p, data)
		if !ok {
			return nil, false
		}
		return &v, true
	case object.Long:
		v, ok := object.ReadLong(p, data)
		if !ok {
			return nil, false
		}
		return &v, true
	case object.Float:
		v, ok := object.ReadFloat(p, data)
		if !ok {
			return nil, false
		}
		return &v, true
	case object.Double:
		v, ok := object.ReadDouble(p, data)
		if !ok {
			return nil, false
		}
		return &v, true
	case object.String:
		v, ok := object.ReadString(p, data)
		if !ok {
			return nil, false
		}
		return &v, true
	case object.Bytes:
		v, ok := object.ReadBytes(p, data)
		if !ok {
			return nil, false
		}
		return v, true
	case object.BoolList:
		v, ok := object.ReadBoolList(p, data)
		return v, ok
	case object.IntList:
		v, ok := object.ReadIntList(p, data)
		return v, ok
	case object.LongList:
		v, ok := object.ReadLongList(p, data)
		return v, ok
	case object.FloatList:
		v, ok := object.ReadFloatList(p, data)
		return v, ok
	case object.DoubleList:
		v, ok := object.ReadDoubleList(p, data)
		return v, ok
	case object.StringList:
		v, ok := object.ReadStringList(p, data)
		return v, ok
	default:
		return nil, false
	}
}

// backfillIndexes inserts added's keys for every row already on disk,
// the way spec §4.8's "index added" migration path leaves object
// bytes untouched and only populates the new sub-range.
func backfillIndexes(tx kv.RwTx, coll *ResolvedCollection, added []ResolvedIndex) error {
	rows, err := scanCollection(tx, coll.Prefix)
	if err != nil {
		return err
	}
	for _, ix := range added {
		ixh := index.New(indexDef(ix))
		for _, row := range rows {
			key, err := ixh.EncodeKey(row.value)
			if err != nil {
				return err
			}
			id := row.key
			if err := ixh.Insert(tx, key, id); err != nil {
				return err
			}
		}
	}
	return nil
}
