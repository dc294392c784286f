// Copyright 2024 The Authors
// This file is part of objectdb.

package schema

import "github.com/erigontech/objectdb/object"

// ResolvedIndex is an IndexSchema with its secondary-database prefix
// assigned.
type ResolvedIndex struct {
	IndexSchema
	Prefix uint16
	// Properties resolved against the owning collection's layout, in
	// the index's declared property order.
	Props []object.Property
}

// ResolvedCollection is a CollectionSchema with its prefix, static
// layout, and index prefixes all assigned — what the engine actually
// operates on once the schema has been reconciled (spec §4.8).
type ResolvedCollection struct {
	CollectionSchema
	Prefix  uint16
	Layout  *object.Layout
	Indexes []ResolvedIndex
}

// Resolved is the full, reconciled schema for an open instance.
type Resolved struct {
	Collections []ResolvedCollection
}

// ByName finds a resolved collection by name.
func (r *Resolved) ByName(name string) (*ResolvedCollection, bool) {
	for i := range r.Collections {
		if r.Collections[i].Name == name {
			return &r.Collections[i], true
		}
	}
	return nil, false
}
