// Copyright 2024 The Authors
// This file is part of objectdb.

package collection

import (
	"bytes"
	"sort"

	"github.com/erigontech/erigon-lib/kv"
)

// memTx is a minimal in-memory kv.RwTx good enough to exercise
// Collection against unique indexes: plain get/put/delete plus a
// sorted-key cursor. Everything this package's tests don't touch
// panics via the embedded nil interface instead of silently doing the
// wrong thing.
type memTx struct {
	kv.RwTx
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

func (m *memTx) GetOne(table string, key []byte) ([]byte, error) {
	v, ok := m.table(table)[string(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *memTx) Put(table string, k, v []byte) error {
	cp := make([]byte, len(v))
	copy(cp, v)
	m.table(table)[string(k)] = cp
	return nil
}

func (m *memTx) Delete(table string, k []byte) error {
	delete(m.table(table), string(k))
	return nil
}

func (m *memTx) RwCursor(table string) (kv.RwCursor, error) {
	keys := make([]string, 0, len(m.table(table)))
	for k := range m.table(table) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &memCursor{m: m, table: table, keys: keys, pos: -1}, nil
}

type memCursor struct {
	kv.RwCursor
	m     *memTx
	table string
	keys  []string
	pos   int
}

func (c *memCursor) First() ([]byte, []byte, error) {
	c.pos = 0
	return c.current()
}

func (c *memCursor) Next() ([]byte, []byte, error) {
	c.pos++
	return c.current()
}

func (c *memCursor) Seek(seek []byte) ([]byte, []byte, error) {
	c.pos = sort.Search(len(c.keys), func(i int) bool {
		return bytes.Compare([]byte(c.keys[i]), seek) >= 0
	})
	return c.current()
}

func (c *memCursor) current() ([]byte, []byte, error) {
	if c.pos < 0 || c.pos >= len(c.keys) {
		return nil, nil, nil
	}
	k := c.keys[c.pos]
	return []byte(k), c.m.table(c.table)[k], nil
}

func (c *memCursor) DeleteCurrent() error {
	if c.pos < 0 || c.pos >= len(c.keys) {
		return nil
	}
	delete(c.m.table(c.table), c.keys[c.pos])
	return nil
}

func (c *memCursor) Close() {}
