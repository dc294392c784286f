// Copyright 2024 The Authors
// This file is part of objectdb.

package query

import (
	"bytes"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/index"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/objectid"
)

// WhereClauseRange turns an *index.WhereClause — built through
// Collection.CreateWhereClause or Index.MakeWhereClause's typed Add*
// methods — into a scanning Clause. This is the spec §4.5 entry point
// most callers use; IndexRange remains for a caller that already has
// raw key-codec-encoded bounds in hand.
type WhereClauseRange struct {
	Clause *index.WhereClause
}

func (c WhereClauseRange) scan(tx kv.Tx) ([]objectid.ID, error) {
	if c.Clause.IsEmpty() {
		return nil, nil
	}
	lower, upper := c.Clause.LowerKey(), c.Clause.UpperKey()
	if table := c.Clause.Table(); table != "" {
		return scanKeyedRange(tx, table, lower, upper, func(k, v []byte) ([]byte, error) { return v, nil })
	}
	return scanKeyedRange(tx, store.Primary, lower, upper, func(k, v []byte) ([]byte, error) { return k, nil })
}

// scanKeyedRange walks table from the first key >= lower through the
// last key <= upper, decoding an ObjectId out of each pair via idOf —
// the object's value for a secondary index entry, or the key itself
// for a primary-table scan, where the key already is the ObjectId.
func scanKeyedRange(tx kv.Tx, table string, lower, upper []byte, idOf func(k, v []byte) ([]byte, error)) ([]objectid.ID, error) {
	cur, err := tx.Cursor(table)
	if err != nil {
		return nil, objdberr.New("query.scan", objdberr.KindStoreError, err)
	}
	defer cur.Close()

	var out []objectid.ID
	for k, v, err := cur.Seek(lower); k != nil; k, v, err = cur.Next() {
		if err != nil {
			return nil, objdberr.New("query.scan", objdberr.KindStoreError, err)
		}
		if !belowUpper(k, upper) {
			break
		}
		idBytes, err := idOf(k, v)
		if err != nil {
			return nil, err
		}
		id, idErr := objectid.FromBytes(idBytes)
		if idErr != nil {
			return nil, objdberr.New("query.scan", objdberr.KindDbCorrupted, idErr)
		}
		out = append(out, id)
	}
	return out, nil
}

// belowUpper reports whether k is within upper, truncating k to
// upper's length first — the same length-clamped comparison
// WhereClause.IsEmpty uses, so a clause that never narrowed a
// trailing component (e.g. an unbounded scan of one collection's
// primary rows) still matches every suffix rather than comparing a
// longer key against a shorter bound byte-for-byte and always losing.
func belowUpper(k, upper []byte) bool {
	if len(upper) < len(k) {
		k = k[:len(upper)]
	}
	return bytes.Compare(upper, k) >= 0
}
