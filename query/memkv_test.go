// Copyright 2024 The Authors
// This file is part of objectdb.

package query

import (
	"bytes"
	"sort"

	"github.com/erigontech/erigon-lib/kv"
)

// memTx is a minimal in-memory kv.Tx: get/put plus a sorted-key
// cursor, enough to drive IndexRange and PrimaryEqual scans. Anything
// these tests don't touch panics via the embedded nil interface.
type memTx struct {
	kv.Tx
	tables map[string]map[string][]byte
}

func newMemTx() *memTx {
	return &memTx{tables: map[string]map[string][]byte{}}
}

func (m *memTx) table(name string) map[string][]byte {
	t, ok := m.tables[name]
	if !ok {
		t = map[string][]byte{}
		m.tables[name] = t
	}
	return t
}

func (m *memTx) put(table string, k, v []byte) {
	cp := make([]byte, len(v))
	copy(cp, v)
	m.table(table)[string(k)] = cp
}

func (m *memTx) GetOne(table string, key []byte) ([]byte, error) {
	v, ok := m.table(table)[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *memTx) Cursor(table string) (kv.Cursor, error) {
	keys := make([]string, 0, len(m.table(table)))
	for k := range m.table(table) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &memCursor{m: m, table: table, keys: keys, pos: -1}, nil
}

type memCursor struct {
	kv.Cursor
	m     *memTx
	table string
	keys  []string
	pos   int
}

func (c *memCursor) Seek(seek []byte) ([]byte, []byte, error) {
	c.pos = sort.Search(len(c.keys), func(i int) bool {
		return bytes.Compare([]byte(c.keys[i]), seek) >= 0
	})
	return c.current()
}

func (c *memCursor) Next() ([]byte, []byte, error) {
	c.pos++
	return c.current()
}

func (c *memCursor) current() ([]byte, []byte, error) {
	if c.pos < 0 || c.pos >= len(c.keys) {
		return nil, nil, nil
	}
	k := c.keys[c.pos]
	return []byte(k), c.m.table(c.table)[k], nil
}

func (c *memCursor) Close() {}
