// Copyright 2024 The Authors
// This file is part of objectdb.

package query

import (
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/objectid"
)

// Query composes one or more where-clauses, an optional filter
// evaluated against the rows they produce, and whether to deduplicate
// ids surfaced by more than one clause (spec §4.6 — two overlapping
// ranges over the same index, or two different indexes, can both
// match the same row).
type Query struct {
	Clauses []Clause
	Filter  Filter
	Dedup   bool
}

// FindAll evaluates q and invokes fn once for every matching row, in
// the order its owning clause produced the id, stopping as soon as fn
// returns false (spec §4.6 step 4 — a caller scanning a large range
// doesn't have to let the whole thing materialize just to bail out
// after the first few rows).
//
// Every id a clause surfaces is read back from the primary table
// before fn sees it, whether or not q.Filter is set. A where-clause
// only ever derives ids from a key that was written alongside its row
// in the same Put, so inside one consistent read transaction that
// primary row missing is not a transient condition to shrug off — it
// means the index and the primary table have drifted apart, and
// FindAll reports it as *DbCorrupted* rather than silently excluding
// the id (spec §4.6 step 3).
func FindAll(tx kv.Tx, layout *object.Layout, q Query, fn func(id objectid.ID, data []byte) bool) error {
	seen := map[objectid.ID]bool{}

	for _, clause := range q.Clauses {
		got, err := clause.scan(tx)
		if err != nil {
			return err
		}
		for _, id := range got {
			if q.Dedup {
				if seen[id] {
					continue
				}
				seen[id] = true
			}

			data, err := get(tx, id)
			if err != nil {
				return err
			}
			if data == nil {
				return objdberr.Newf("query.findall", objdberr.KindDbCorrupted,
					"where-clause matched object %s has no primary row", id)
			}
			if q.Filter != nil && !q.Filter.Eval(layout, data) {
				continue
			}
			if !fn(id, data) {
				return nil
			}
		}
	}
	return nil
}

// Run is FindAll collecting every match into a slice, for callers that
// want the whole result set and don't need per-row streaming.
func Run(tx kv.Tx, layout *object.Layout, q Query) ([]objectid.ID, error) {
	var ids []objectid.ID
	err := FindAll(tx, layout, q, func(id objectid.ID, data []byte) bool {
		ids = append(ids, id)
		return true
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func get(tx kv.Tx, id objectid.ID) ([]byte, error) {
	v, err := tx.GetOne(store.Primary, id.Bytes())
	if err != nil {
		return nil, objdberr.New("query.run", objdberr.KindStoreError, err)
	}
	return v, nil
}
