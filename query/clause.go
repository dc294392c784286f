// Copyright 2024 The Authors
// This file is part of objectdb.

// Package query implements spec §4.5 and §4.6: where-clauses that
// scan a primary or secondary key range, a predicate tree evaluated
// against decoded object values, and an executor that composes
// several where-clauses with optional deduplication before applying
// the filter.
package query

import (
	"bytes"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/index"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/objectid"
)

// Bound is one end of a scanned range: an already key-codec-encoded
// value and whether the bound itself is included in the range. A nil
// Bound means unbounded on that side.
type Bound struct {
	Key       []byte
	Inclusive bool
}

// Clause produces the ObjectIds matching one range. Composing several
// Clauses (Run, FindAll) is how a query over more than one index or
// more than one disjoint range is expressed (spec §4.5's "multiple
// where-clauses").
type Clause interface {
	scan(tx kv.Tx) ([]objectid.ID, error)
}

// IndexRange scans a secondary index's key space between lower and
// upper (either may be nil for unbounded), using plain byte
// comparison against each candidate key — the key codec guarantees
// this matches semantic comparison for every scalar type it encodes
// (spec §4.2), so no type-specific successor/predecessor arithmetic
// is needed to turn an inclusive bound into the underlying cursor's
// natural iteration order.
type IndexRange struct {
	Index *index.Index
	Lower *Bound
	Upper *Bound
}

func (c IndexRange) scan(tx kv.Tx) ([]objectid.ID, error) {
	table := c.Index.Table()
	cur, err := tx.Cursor(table)
	if err != nil {
		return nil, objdberr.New("query.scan", objdberr.KindStoreError, err)
	}
	defer cur.Close()

	prefix := c.Index.PrefixBytes()
	seek := prefix
	if c.Lower != nil {
		seek = append(append([]byte{}, prefix...), c.Lower.Key...)
	}

	var out []objectid.ID
	for k, v, err := cur.Seek(seek); k != nil; k, v, err = cur.Next() {
		if err != nil {
			return nil, objdberr.New("query.scan", objdberr.KindStoreError, err)
		}
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		encoded := k[len(prefix):]

		if c.Lower != nil {
			cmp := bytes.Compare(encoded, c.Lower.Key)
			if cmp < 0 || (cmp == 0 && !c.Lower.Inclusive) {
				continue
			}
		}
		if c.Upper != nil {
			cmp := bytes.Compare(encoded, c.Upper.Key)
			if cmp > 0 || (cmp == 0 && !c.Upper.Inclusive) {
				break
			}
		}

		id, idErr := objectid.FromBytes(v)
		if idErr != nil {
			return nil, objdberr.New("query.scan", objdberr.KindDbCorrupted, idErr)
		}
		out = append(out, id)
	}
	return out, nil
}

// PrimaryEqual matches a single, already-known ObjectId directly
// against the primary table — the degenerate "where clause" spec §4.5
// allows when the caller already has an id (e.g. following a link).
type PrimaryEqual struct {
	ID objectid.ID
}

func (c PrimaryEqual) scan(tx kv.Tx) ([]objectid.ID, error) {
	v, err := tx.GetOne(store.Primary, c.ID.Bytes())
	if err != nil {
		return nil, objdberr.New("query.scan", objdberr.KindStoreError, err)
	}
	if v == nil {
		return nil, nil
	}
	return []objectid.ID{c.ID}, nil
}
