// Copyright 2024 The Authors
// This file is part of objectdb.

package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/objectdb/index"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/keycodec"
	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/objectid"
)

func idFor(n byte) objectid.ID {
	var id objectid.ID
	id[13] = n
	return id
}

func putRow(t *testing.T, tx *memTx, layout *object.Layout, ix *index.Index, id objectid.ID, age int32) {
	t.Helper()
	data, err := object.Build(layout, object.Values{"age": &age})
	require.NoError(t, err)
	tx.put(store.Primary, id.Bytes(), data)

	encoded, err := ix.EncodeKey(data)
	require.NoError(t, err)
	fullKey := append(append([]byte{}, ix.PrefixBytes()...), encoded...)
	tx.put(ix.Table(), fullKey, id.Bytes())
}

func TestIndexRangeScanRespectsBounds(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()

	for i, age := range []int32{10, 20, 30, 40} {
		putRow(t, tx, layout, ix, idFor(byte(i+1)), age)
	}

	q := Query{Clauses: []Clause{IndexRange{
		Index: ix,
		Lower: &Bound{Key: keycodec.EncodeInt(20), Inclusive: true},
		Upper: &Bound{Key: keycodec.EncodeInt(30), Inclusive: false},
	}}}

	ids, err := Run(tx, layout, q)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.Equal(t, idFor(2), ids[0])
}

func TestIndexRangeUnboundedScansEverythingInPrefix(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()
	for i, age := range []int32{10, 20, 30} {
		putRow(t, tx, layout, ix, idFor(byte(i+1)), age)
	}

	q := Query{Clauses: []Clause{IndexRange{Index: ix}}}
	ids, err := Run(tx, layout, q)
	require.NoError(t, err)
	require.Len(t, ids, 3)
}

func TestRunDedupsAcrossOverlappingClauses(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()
	putRow(t, tx, layout, ix, idFor(1), 25)

	overlap := Query{
		Dedup: true,
		Clauses: []Clause{
			IndexRange{Index: ix, Lower: &Bound{Key: keycodec.EncodeInt(0), Inclusive: true}, Upper: &Bound{Key: keycodec.EncodeInt(50), Inclusive: true}},
			IndexRange{Index: ix, Lower: &Bound{Key: keycodec.EncodeInt(10), Inclusive: true}, Upper: &Bound{Key: keycodec.EncodeInt(100), Inclusive: true}},
		},
	}
	ids, err := Run(tx, layout, overlap)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	noDedup := overlap
	noDedup.Dedup = false
	ids, err = Run(tx, layout, noDedup)
	require.NoError(t, err)
	require.Len(t, ids, 2)
}

func TestRunAppliesFilterAfterScan(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()
	for i, age := range []int32{10, 20, 30} {
		putRow(t, tx, layout, ix, idFor(byte(i+1)), age)
	}

	q := Query{
		Clauses: []Clause{IndexRange{Index: ix}},
		Filter:  IntBetween{Property: "age", Lower: 15, Upper: 25},
	}
	ids, err := Run(tx, layout, q)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	require.Equal(t, idFor(2), ids[0])
}

func TestPrimaryEqualFindsExistingAndMissing(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()
	putRow(t, tx, layout, ix, idFor(1), 10)

	q := Query{Clauses: []Clause{PrimaryEqual{ID: idFor(1)}}}
	ids, err := Run(tx, layout, q)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	q2 := Query{Clauses: []Clause{PrimaryEqual{ID: idFor(99)}}}
	ids, err = Run(tx, layout, q2)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestWhereClauseRangeScansThroughTypedBuilder(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()

	for i, age := range []int32{10, 20, 30, 40} {
		putRow(t, tx, layout, ix, idFor(byte(i+1)), age)
	}

	wc := ix.MakeWhereClause()
	wc.AddInt(20, 30)

	q := Query{Clauses: []Clause{WhereClauseRange{Clause: wc}}}
	ids, err := Run(tx, layout, q)
	require.NoError(t, err)
	require.ElementsMatch(t, []objectid.ID{idFor(2), idFor(3)}, ids)
}

func TestWhereClauseRangeEmptyClauseScansNothing(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()
	putRow(t, tx, layout, ix, idFor(1), 10)

	wc := ix.MakeWhereClause()
	wc.AddInt(30, 20)

	q := Query{Clauses: []Clause{WhereClauseRange{Clause: wc}}}
	ids, err := Run(tx, layout, q)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestFindAllStopsEarly(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()
	for i, age := range []int32{10, 20, 30, 40} {
		putRow(t, tx, layout, ix, idFor(byte(i+1)), age)
	}

	q := Query{Clauses: []Clause{IndexRange{Index: ix}}}
	var seen []objectid.ID
	err := FindAll(tx, layout, q, func(id objectid.ID, data []byte) bool {
		seen = append(seen, id)
		return len(seen) < 2
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
}

func TestFindAllReportsCorruptionOnDanglingIndexEntry(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{{Name: "age", Type: object.Int}})
	ix := index.New(index.Def{Prefix: 7, Properties: layout.Properties, Kind: index.NonUnique})
	tx := newMemTx()

	age := int32(10)
	data, err := object.Build(layout, object.Values{"age": &age})
	require.NoError(t, err)
	encoded, err := ix.EncodeKey(data)
	require.NoError(t, err)
	fullKey := append(append([]byte{}, ix.PrefixBytes()...), encoded...)
	id1 := idFor(1)
	tx.put(ix.Table(), fullKey, id1.Bytes())
	// Deliberately no corresponding primary row for idFor(1).

	q := Query{Clauses: []Clause{IndexRange{Index: ix}}}
	_, err = Run(tx, layout, q)
	require.Error(t, err)
	require.True(t, objdberr.Is(err, objdberr.KindDbCorrupted))
}

func TestFilterPredicates(t *testing.T) {
	layout := object.NewLayout([]object.PropertyDef{
		{Name: "age", Type: object.Int},
		{Name: "name", Type: object.String},
	})
	age := int32(42)
	name := "Alice"
	data, err := object.Build(layout, object.Values{"age": &age, "name": &name})
	require.NoError(t, err)

	require.True(t, IntAnyOf{Property: "age", Values: []int32{1, 42}}.Eval(layout, data))
	require.False(t, IntAnyOf{Property: "age", Values: []int32{1, 2}}.Eval(layout, data))
	require.True(t, StringAnyOf{Property: "name", Values: []string{"alice"}, CaseInsensitive: true}.Eval(layout, data))
	require.False(t, StringAnyOf{Property: "name", Values: []string{"alice"}}.Eval(layout, data))
	require.True(t, And{IntBetween{Property: "age", Lower: 0, Upper: 100}, Not{IsNull{Property: "name"}}}.Eval(layout, data))
	require.False(t, Or{}.Eval(layout, data))
}
