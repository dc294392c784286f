// Copyright 2024 The Authors
// This file is part of objectdb.

package collection

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/object"
	"github.com/erigontech/objectdb/objectid"
	"github.com/erigontech/objectdb/schema"
)

type fixedClock struct{ sec uint32 }

func (c fixedClock) NowUnix() uint32 { return c.sec }

type zeroEntropy struct{}

func (zeroEntropy) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// counterEntropy hands out distinct, nonzero 2-byte values so schema
// prefix allocation in tests never loops on a degenerate all-zero
// source.
type counterEntropy struct{ n uint16 }

func (c *counterEntropy) Read(p []byte) (int, error) {
	c.n++
	binary.BigEndian.PutUint16(p, c.n)
	return len(p), nil
}

func newTestCollection(t *testing.T, unique bool) *Collection {
	t.Helper()
	s := schema.Schema{Collections: []schema.CollectionSchema{{
		Name:       "users",
		Properties: []schema.PropertySchema{{Name: "email", Type: object.String}, {Name: "age", Type: object.Int}},
		Indexes:    []schema.IndexSchema{{Properties: []string{"email"}, Unique: unique}},
	}}}
	resolved, _, err := schema.Resolve(nil, s, &counterEntropy{})
	require.NoError(t, err)
	rc, ok := resolved.ByName("users")
	require.True(t, ok)
	gen := objectid.NewGenerator(rc.Prefix, fixedClock{sec: 1000}, zeroEntropy{})
	return New(*rc, gen)
}

func strPtr(s string) *string { return &s }
func i32Ptr(v int32) *int32   { return &v }

func TestPutThenGetRoundTrips(t *testing.T) {
	c := newTestCollection(t, true)
	tx := newMemTx()

	age := i32Ptr(30)
	id, err := c.Put(tx, nil, object.Values{"email": strPtr("a@example.com"), "age": age})
	require.NoError(t, err)

	data, ok, err := c.Get(tx, id)
	require.NoError(t, err)
	require.True(t, ok)

	v, ok := object.ReadString(c.Layout.Properties[0], data)
	require.True(t, ok)
	require.Equal(t, "a@example.com", v)
}

func TestPutUniqueViolationLeavesStoreUnchanged(t *testing.T) {
	c := newTestCollection(t, true)
	tx := newMemTx()

	_, err := c.Put(tx, nil, object.Values{"email": strPtr("dup@example.com"), "age": i32Ptr(1)})
	require.NoError(t, err)

	_, err = c.Put(tx, nil, object.Values{"email": strPtr("dup@example.com"), "age": i32Ptr(2)})
	require.Error(t, err)
	require.True(t, objdberr.Is(err, objdberr.KindUniqueViolated))

	require.Len(t, tx.table("primary"), 1)
}

func TestPutExplicitIDWithNoExistingRowFails(t *testing.T) {
	c := newTestCollection(t, true)
	tx := newMemTx()

	ghost := objectid.New(c.Prefix, 1000, 1)
	_, err := c.Put(tx, &ghost, object.Values{"email": strPtr("nobody@example.com"), "age": i32Ptr(1)})
	require.Error(t, err)
	require.True(t, objdberr.Is(err, objdberr.KindIllegalState))
	require.Empty(t, tx.table("primary"))
}

func TestPutUpdateSwapsIndexEntry(t *testing.T) {
	c := newTestCollection(t, true)
	tx := newMemTx()

	id, err := c.Put(tx, nil, object.Values{"email": strPtr("old@example.com"), "age": i32Ptr(1)})
	require.NoError(t, err)

	_, err = c.Put(tx, &id, object.Values{"email": strPtr("new@example.com"), "age": i32Ptr(1)})
	require.NoError(t, err)

	ix := c.Indexes[0]
	layout := c.Layout
	oldKey, err := ix.EncodeKey(mustBuild(t, layout, "old@example.com"))
	require.NoError(t, err)
	_, found, err := ix.Peek(tx, oldKey)
	require.NoError(t, err)
	require.False(t, found)

	newKey, err := ix.EncodeKey(mustBuild(t, layout, "new@example.com"))
	require.NoError(t, err)
	foundID, found, err := ix.Peek(tx, newKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, id, foundID)
}

func mustBuild(t *testing.T, layout *object.Layout, email string) []byte {
	t.Helper()
	data, err := object.Build(layout, object.Values{"email": strPtr(email), "age": i32Ptr(1)})
	require.NoError(t, err)
	return data
}

func TestDeleteRemovesRowAndIndex(t *testing.T) {
	c := newTestCollection(t, true)
	tx := newMemTx()

	id, err := c.Put(tx, nil, object.Values{"email": strPtr("gone@example.com"), "age": i32Ptr(5)})
	require.NoError(t, err)

	found, err := c.Delete(tx, id)
	require.NoError(t, err)
	require.True(t, found)

	_, ok, err := c.Get(tx, id)
	require.NoError(t, err)
	require.False(t, ok)

	key, err := c.Indexes[0].EncodeKey(mustBuild(t, c.Layout, "gone@example.com"))
	require.NoError(t, err)
	_, stillThere, err := c.Indexes[0].Peek(tx, key)
	require.NoError(t, err)
	require.False(t, stillThere)
}

func TestClearRemovesEveryRow(t *testing.T) {
	c := newTestCollection(t, true)
	tx := newMemTx()

	for i := 0; i < 5; i++ {
		_, err := c.Put(tx, nil, object.Values{"email": strPtr(string(rune('a' + i))), "age": i32Ptr(int32(i))})
		require.NoError(t, err)
	}
	require.Len(t, tx.table("primary"), 5)

	require.NoError(t, c.Clear(tx))
	require.Empty(t, tx.table("primary"))
}
