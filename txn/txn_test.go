// Copyright 2024 The Authors
// This file is part of objectdb.

package txn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/objdberr"
)

// fakeRwTx embeds the interface so only the methods these tests
// exercise need a concrete body; any other method panics if called,
// which would itself fail the test.
type fakeRwTx struct {
	kv.RwTx
	committed, rolledBack int
}

func (f *fakeRwTx) Commit() error { f.committed++; return nil }
func (f *fakeRwTx) Rollback()     { f.rolledBack++ }

type fakeRwDB struct {
	kv.RwDB
	tx *fakeRwTx
}

func (f *fakeRwDB) BeginRw(ctx context.Context) (kv.RwTx, error) { return f.tx, nil }
func (f *fakeRwDB) BeginRo(ctx context.Context) (kv.Tx, error)   { return f.tx, nil }

func newTestTransaction(t *testing.T, write bool) (*Transaction, *fakeRwTx) {
	t.Helper()
	fx := &fakeRwTx{}
	db := &fakeRwDB{tx: fx}
	tr, err := Begin(context.Background(), db, write)
	require.NoError(t, err)
	return tr, fx
}

func TestCommitIsSingleShot(t *testing.T) {
	tr, fx := newTestTransaction(t, true)
	require.NoError(t, tr.Commit())
	require.Equal(t, 1, fx.committed)

	err := tr.Commit()
	require.Error(t, err)
	require.True(t, objdberr.Is(err, objdberr.KindIllegalState))
}

func TestAbortIsSingleShot(t *testing.T) {
	tr, fx := newTestTransaction(t, true)
	require.NoError(t, tr.Abort())
	require.Equal(t, 1, fx.rolledBack)

	err := tr.Abort()
	require.Error(t, err)
	require.True(t, objdberr.Is(err, objdberr.KindIllegalState))
}

func TestExecAtomicWriteRejectsReadTransaction(t *testing.T) {
	tr, _ := newTestTransaction(t, false)
	err := ExecAtomicWrite(tr, func(tx kv.RwTx) error { return nil })
	require.Error(t, err)
	require.True(t, objdberr.Is(err, objdberr.KindIllegalState))
}

func TestExecAtomicWriteRunsJobAgainstSameTx(t *testing.T) {
	tr, fx := newTestTransaction(t, true)
	var seen kv.RwTx
	err := ExecAtomicWrite(tr, func(tx kv.RwTx) error {
		seen = tx
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, kv.RwTx(fx), seen)
}

func TestExecAtomicWriteRejectsAfterDone(t *testing.T) {
	tr, _ := newTestTransaction(t, true)
	require.NoError(t, tr.Commit())
	err := ExecAtomicWrite(tr, func(tx kv.RwTx) error { return nil })
	require.Error(t, err)
	require.True(t, objdberr.Is(err, objdberr.KindIllegalState))
}
