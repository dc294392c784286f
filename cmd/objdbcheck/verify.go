// Copyright 2024 The Authors
// This file is part of objectdb.

package main

import (
	"context"
	"fmt"

	"github.com/erigontech/erigon-lib/kv"

	"github.com/erigontech/objectdb/collection"
	"github.com/erigontech/objectdb/index"
	"github.com/erigontech/objectdb/instance"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/objectid"
)

// verifyInstance walks every collection inst resolved on open and
// checks the invariants spec §8 calls universal: every stored object
// passes structural verification, every index entry derived from a
// row is actually present in its index, and no index carries an
// entry pointing at a row that no longer exists.
func verifyInstance(ctx context.Context, inst *instance.Instance) (*Report, error) {
	report := &Report{}
	tx, err := inst.DB().BeginRo(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rc := range inst.Resolved().Collections {
		c, ok := inst.Collection(rc.Name)
		if !ok {
			continue
		}
		rows, err := scanRows(tx, c, rc.Prefix, report)
		if err != nil {
			return nil, err
		}
		if err := checkForwardIndexes(tx, c, rows, report); err != nil {
			return nil, err
		}
		if err := checkIndexOrphans(tx, c, rows, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// scanRows reads every primary row belonging to prefix, verifying its
// structural layout as it goes. This is a full-table scan rather than
// a seek-bounded range because ObjectId's collection prefix is stored
// little-endian and so is not lexicographically contiguous.
func scanRows(tx kv.Tx, c *collection.Collection, prefix uint16, report *Report) (map[objectid.ID][]byte, error) {
	rows := map[objectid.ID][]byte{}
	cur, err := tx.Cursor(store.Primary)
	if err != nil {
		return nil, fmt.Errorf("open primary cursor: %w", err)
	}
	defer cur.Close()

	for k, v, err := cur.First(); k != nil; k, v, err = cur.Next() {
		if err != nil {
			return nil, fmt.Errorf("scan primary: %w", err)
		}
		id, idErr := objectid.FromBytes(k)
		if idErr != nil {
			report.fail(Violation{Collection: c.Name, Rule: "primary-key-format", Detail: idErr.Error()})
			continue
		}
		if id.Prefix() != prefix {
			continue
		}
		report.RowsChecked++
		data := append([]byte(nil), v...)
		if err := object.Verify(c.Layout, data); err != nil {
			report.fail(Violation{Collection: c.Name, Object: id.String(), Rule: "object-verify", Detail: err.Error()})
			continue
		}
		rows[id] = data
	}
	return rows, nil
}

// checkForwardIndexes confirms every row's current index keys really
// are present in their index, mapped back to that row's id.
func checkForwardIndexes(tx kv.Tx, c *collection.Collection, rows map[objectid.ID][]byte, report *Report) error {
	for id, data := range rows {
		for _, ix := range c.Indexes {
			key, err := ix.EncodeKey(data)
			if err != nil {
				return fmt.Errorf("encode index key: %w", err)
			}
			report.IndexEntriesChecked++
			ok, err := indexContains(tx, ix, key, id)
			if err != nil {
				return err
			}
			if !ok {
				report.fail(Violation{
					Collection: c.Name, Object: id.String(), Rule: "index-forward",
					Detail: fmt.Sprintf("index prefix %d has no entry for this row's current value", ix.Def.Prefix),
				})
			}
		}
	}
	return nil
}

func indexContains(tx kv.Tx, ix *index.Index, key []byte, id objectid.ID) (bool, error) {
	if ix.Def.Kind == index.Unique {
		got, found, err := ix.Peek(tx, key)
		if err != nil {
			return false, err
		}
		return found && got == id, nil
	}

	dup, err := tx.CursorDupSort(ix.Table())
	if err != nil {
		return false, fmt.Errorf("open dupsort cursor: %w", err)
	}
	defer dup.Close()
	fullKey := append(append([]byte{}, ix.PrefixBytes()...), key...)
	v, _, err := dup.SeekBothExact(fullKey, id.Bytes())
	if err != nil {
		return false, fmt.Errorf("seek dupsort entry: %w", err)
	}
	return v != nil, nil
}

// checkIndexOrphans scans every index entry and flags two things: a
// Unique index key repeated across more than one entry (the
// uniqueness Insert enforces should make this impossible, but a
// verifier checks rather than assumes), and any entry whose id no
// longer has a live row — a dangling reference that should never
// survive a well-formed Delete or migration.
func checkIndexOrphans(tx kv.Tx, c *collection.Collection, rows map[objectid.ID][]byte, report *Report) error {
	for _, ix := range c.Indexes {
		prefix := ix.PrefixBytes()
		cur, err := tx.Cursor(ix.Table())
		if err != nil {
			return fmt.Errorf("open index cursor: %w", err)
		}

		seen := map[string]bool{}
		for k, v, err := cur.Seek(prefix); k != nil; k, v, err = cur.Next() {
			if err != nil {
				cur.Close()
				return fmt.Errorf("scan index: %w", err)
			}
			if len(k) < 2 || !hasPrefix(k, prefix) {
				break
			}
			if ix.Def.Kind == index.Unique {
				if seen[string(k)] {
					report.fail(Violation{
						Collection: c.Name, Rule: "index-unique-duplicate",
						Detail: fmt.Sprintf("index prefix %d: key appears more than once", ix.Def.Prefix),
					})
				}
				seen[string(k)] = true
			}
			id, idErr := objectid.FromBytes(v)
			if idErr != nil {
				report.fail(Violation{Collection: c.Name, Rule: "index-value-format", Detail: idErr.Error()})
				continue
			}
			if _, ok := rows[id]; !ok {
				report.fail(Violation{
					Collection: c.Name, Object: id.String(), Rule: "index-orphan",
					Detail: fmt.Sprintf("index prefix %d has an entry for a row that no longer exists", ix.Def.Prefix),
				})
			}
		}
		cur.Close()
	}
	return nil
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
