// Copyright 2024 The Authors
// This file is part of objectdb.

// Package txn wraps a read or write transaction against the
// underlying store with the single-shot Commit/Abort discipline spec
// §4.7 requires: once either is called, the transaction is dead and
// any further use is IllegalState.
package txn

import (
	"context"
	"sync"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/objectdb/objdberr"
)

// Transaction is a live read or write transaction. The zero value is
// not usable; construct one with Begin.
type Transaction struct {
	db    kv.RwDB
	tx    kv.Tx
	write bool

	mu   sync.Mutex
	done bool
}

// Begin opens a transaction against db: a read snapshot when write is
// false, an exclusive write transaction otherwise (spec §4.7 — only
// one write transaction is ever open at a time, enforced by the
// underlying store's writer lock).
func Begin(ctx context.Context, db kv.RwDB, write bool) (*Transaction, error) {
	if write {
		rwTx, err := db.BeginRw(ctx)
		if err != nil {
			return nil, objdberr.New("txn.begin", objdberr.KindStoreError, err)
		}
		return &Transaction{db: db, tx: rwTx, write: true}, nil
	}
	roTx, err := db.BeginRo(ctx)
	if err != nil {
		return nil, objdberr.New("txn.begin", objdberr.KindStoreError, err)
	}
	return &Transaction{db: db, tx: roTx, write: false}, nil
}

// Tx returns the underlying read transaction handle.
func (t *Transaction) Tx() kv.Tx { return t.tx }

// RwTx returns the underlying write transaction handle. It panics if
// this Transaction was opened read-only — callers are expected to
// have checked Write first, the same contract spec §4.7 gives a
// write-required operation run on a read snapshot.
func (t *Transaction) RwTx() kv.RwTx {
	rw, ok := t.tx.(kv.RwTx)
	if !ok {
		panic("txn: RwTx called on a read-only transaction")
	}
	return rw
}

// Write reports whether this is a write transaction.
func (t *Transaction) Write() bool { return t.write }

// Commit finalizes the transaction's writes (a no-op for reads beyond
// releasing the snapshot). Calling Commit or Abort a second time is
// IllegalState.
func (t *Transaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return objdberr.New("txn.commit", objdberr.KindIllegalState, nil)
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return objdberr.New("txn.commit", objdberr.KindStoreError, err)
	}
	return nil
}

// Abort discards the transaction's writes, if any. Calling Commit or
// Abort a second time is IllegalState.
func (t *Transaction) Abort() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return objdberr.New("txn.abort", objdberr.KindIllegalState, nil)
	}
	t.done = true
	t.tx.Rollback()
	return nil
}

// ExecAtomicWrite runs job against this write transaction and reports
// its error, implementing spec §4.7's atomic multi-step write: every
// change job makes shares this Transaction's single RwTx, so the
// store's own transaction boundary — not a separate nested one — is
// what makes job's changes all-or-nothing. A job that returns an
// error leaves the changes it already made sitting uncommitted in
// this transaction; the caller must Abort rather than Commit to
// actually discard them.
func ExecAtomicWrite(t *Transaction, job func(tx kv.RwTx) error) error {
	if !t.write {
		return objdberr.New("txn.exec_atomic_write", objdberr.KindIllegalState, nil)
	}
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done {
		return objdberr.New("txn.exec_atomic_write", objdberr.KindIllegalState, nil)
	}
	return job(t.RwTx())
}
