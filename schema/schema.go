// Copyright 2024 The Authors
// This file is part of objectdb.

// Package schema resolves a client-supplied schema against the one
// persisted in an instance's info database (spec §4.8): collection
// and index identities are reused where they match, freshly allocated
// where they don't, and the resulting diff drives migration.
package schema

import "github.com/erigontech/objectdb/object"

// PropertySchema is one property as the client declares it, before
// any offset has been assigned.
type PropertySchema struct {
	Name string
	Type object.DataType
}

// IndexSchema is one index as the client declares it: an ordered list
// of property names, uniqueness, and whether string properties within
// it hash instead of storing their value verbatim.
type IndexSchema struct {
	Properties []string
	Unique     bool
	HashValue  bool
}

// LinkSchema is a named, by-name reference to another collection.
// Resolved lazily at validation time so that cyclic link graphs never
// require a direct, cycle-forming struct reference (spec §9) — and,
// per spec §1, never traversed here.
type LinkSchema struct {
	Name             string
	TargetCollection string
}

// CollectionSchema is one collection as the client declares it.
type CollectionSchema struct {
	Name       string
	Properties []PropertySchema
	Indexes    []IndexSchema
	Links      []LinkSchema
}

// Schema is the full, client-supplied schema for an instance. The
// core assumes this value has already been validated (spec §1);
// parsing it from a text interchange format is out of scope.
type Schema struct {
	Collections []CollectionSchema
}

// indexIdentity returns the (properties, unique, hashValue) tuple two
// IndexSchema values are compared by when matching old against new.
func indexIdentity(ix IndexSchema) string {
	s := ""
	for _, p := range ix.Properties {
		s += p + "\x00"
	}
	if ix.Unique {
		s += "U"
	}
	if ix.HashValue {
		s += "H"
	}
	return s
}
