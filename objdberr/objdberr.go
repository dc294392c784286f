// Copyright 2024 The Authors
// This file is part of objectdb.
//
// objectdb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package objdberr defines the error taxonomy the engine raises. Every
// public operation returns one of these kinds (wrapped, never a bare
// string), so callers can branch with errors.Is/errors.As instead of
// parsing messages.
package objdberr

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way a binding layer's error-code table
// would: by recoverability, not by the Go type that produced it.
type Kind int

const (
	// KindIllegalArgument covers bad paths, invalid UTF-8, unknown
	// indexes, and overflow of an exclusive range bound.
	KindIllegalArgument Kind = iota + 1
	// KindIllegalState covers operations on a closed transaction, a
	// missing object id on an update-put, or a write on a read txn.
	KindIllegalState
	// KindUniqueViolated is raised when a unique index would gain a
	// second row mapping to the same encoded key.
	KindUniqueViolated
	// KindVersionError means the persisted schema version does not
	// match the version this build supports. Fatal.
	KindVersionError
	// KindDbCorrupted means on-disk invariants were violated (e.g. an
	// index entry points at a primary row that doesn't exist). Fatal.
	KindDbCorrupted
	// KindDbFull means the underlying map is out of space.
	KindDbFull
	// KindStoreError wraps any other error surfaced by the KV store.
	KindStoreError
)

func (k Kind) String() string {
	switch k {
	case KindIllegalArgument:
		return "IllegalArgument"
	case KindIllegalState:
		return "IllegalState"
	case KindUniqueViolated:
		return "UniqueViolated"
	case KindVersionError:
		return "VersionError"
	case KindDbCorrupted:
		return "DbCorrupted"
	case KindDbFull:
		return "DbFull"
	case KindStoreError:
		return "StoreError"
	default:
		return "Unknown"
	}
}

// Code returns the positive error code a binding layer would surface
// to a foreign caller (spec §6: "0 on success, positive code on
// failure"). The core never returns 0 as a Kind's code.
func (k Kind) Code() int { return int(k) }

// Error is the concrete error type every core package returns.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "collection.put"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Code() int { return e.Kind.Code() }

// New builds an *Error for op with the given kind, optionally wrapping
// cause (may be nil).
func New(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Newf is New with a formatted cause.
func Newf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is lets callers write errors.Is(err, objdberr.KindUniqueViolated)
// style checks against a Kind by wrapping it as a sentinel-compatible
// comparator.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
