// Copyright 2024 The Authors
// This file is part of objectdb.

package schema

// CollectionDiff describes what changed for one collection between
// the old persisted schema and the newly resolved one (spec §4.8).
// A zero-value CollectionDiff means the collection is unchanged.
type CollectionDiff struct {
	Name string

	// PropertiesRemoved is true when RemovedProperties is non-empty;
	// migration must rewrite every row in this collection when set.
	PropertiesRemoved bool
	RemovedProperties []PropertySchema
	AddedProperties   []PropertySchema

	RemovedIndexes []ResolvedIndex
	AddedIndexes   []ResolvedIndex

	// RenameHints maps an added property to the removed property whose
	// values it inherits during migration, when the match is
	// unambiguous (applyRenameHints).
	RenameHints map[string]string
}

// Diff is the full set of changes to reconcile across every
// collection, plus collections dropped entirely.
type Diff struct {
	Collections        []CollectionDiff
	RemovedCollections []ResolvedCollection
}

// IsEmpty reports whether applying this diff would be a no-op.
func (d *Diff) IsEmpty() bool {
	if len(d.RemovedCollections) > 0 {
		return false
	}
	for _, c := range d.Collections {
		if c.PropertiesRemoved || len(c.AddedProperties) > 0 ||
			len(c.RemovedIndexes) > 0 || len(c.AddedIndexes) > 0 {
			return false
		}
	}
	return true
}

// ForCollection returns the diff entry for name, or a zero-value
// (unchanged) diff if none was recorded.
func (d *Diff) ForCollection(name string) CollectionDiff {
	for _, c := range d.Collections {
		if c.Name == name {
			return c
		}
	}
	return CollectionDiff{Name: name}
}

// applyRenameHints matches each removed property against the added
// properties of the same type, only when exactly one candidate exists
// on each side — an ambiguous rename (two removed, two added, same
// type) is left alone and migrated as a plain drop+add instead of
// guessed at.
func applyRenameHints(d *CollectionDiff) {
	if len(d.RemovedProperties) == 0 || len(d.AddedProperties) == 0 {
		return
	}

	removedByType := map[int][]string{}
	for _, p := range d.RemovedProperties {
		removedByType[int(p.Type)] = append(removedByType[int(p.Type)], p.Name)
	}
	addedByType := map[int][]string{}
	for _, p := range d.AddedProperties {
		addedByType[int(p.Type)] = append(addedByType[int(p.Type)], p.Name)
	}

	hints := map[string]string{}
	for t, removedNames := range removedByType {
		addedNames := addedByType[t]
		if len(removedNames) == 1 && len(addedNames) == 1 {
			hints[addedNames[0]] = removedNames[0]
		}
	}
	if len(hints) > 0 {
		d.RenameHints = hints
	}
}
