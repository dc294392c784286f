// Copyright 2024 The Authors
// This file is part of objectdb.

package schema

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/erigontech/objectdb/object"
)

// Resolve reconciles new against old (the schema persisted from a
// prior open, or nil on first open): collections and indexes that
// match by identity keep their old prefix; everything new gets a
// fresh, collision-free random 16-bit prefix. entropy defaults to
// crypto/rand when nil.
//
// The returned Diff drives migration (schema/diff.go); Resolve itself
// performs no I/O.
func Resolve(old *Resolved, next Schema, entropy io.Reader) (*Resolved, *Diff, error) {
	if entropy == nil {
		entropy = rand.Reader
	}

	used := map[uint16]bool{0: true} // prefix 0 reserved, never allocated
	if old != nil {
		for _, c := range old.Collections {
			used[c.Prefix] = true
			for _, ix := range c.Indexes {
				used[ix.Prefix] = true
			}
		}
	}
	alloc := func() (uint16, error) {
		for i := 0; i < 10000; i++ {
			var buf [2]byte
			if _, err := io.ReadFull(entropy, buf[:]); err != nil {
				return 0, err
			}
			p := binary.BigEndian.Uint16(buf[:])
			if !used[p] {
				used[p] = true
				return p, nil
			}
		}
		return 0, fmt.Errorf("schema: could not allocate a free 16-bit prefix")
	}

	resolved := &Resolved{Collections: make([]ResolvedCollection, 0, len(next.Collections))}
	diff := &Diff{}

	for _, cs := range next.Collections {
		var oldColl *ResolvedCollection
		if old != nil {
			oldColl, _ = old.ByName(cs.Name)
		}

		prefix, err := resolvePrefix(oldColl, alloc)
		if err != nil {
			return nil, nil, err
		}

		defs := make([]object.PropertyDef, len(cs.Properties))
		for i, p := range cs.Properties {
			defs[i] = object.PropertyDef{Name: p.Name, Type: p.Type}
		}
		layout := object.NewLayout(defs)

		rc := ResolvedCollection{CollectionSchema: cs, Prefix: prefix, Layout: layout}

		cdiff := CollectionDiff{Name: cs.Name}
		oldProps := map[string]PropertySchema{}
		if oldColl != nil {
			for _, p := range oldColl.Properties {
				oldProps[p.Name] = p
			}
		}
		newProps := map[string]bool{}
		for _, p := range cs.Properties {
			newProps[p.Name] = true
			if _, existed := oldProps[p.Name]; !existed && oldColl != nil {
				cdiff.AddedProperties = append(cdiff.AddedProperties, p)
			}
		}
		if oldColl != nil {
			for name := range oldProps {
				if !newProps[name] {
					cdiff.PropertiesRemoved = true
					cdiff.RemovedProperties = append(cdiff.RemovedProperties, oldProps[name])
				}
			}
		}

		oldIndexByIdentity := map[string]ResolvedIndex{}
		if oldColl != nil {
			for _, ix := range oldColl.Indexes {
				oldIndexByIdentity[indexIdentity(ix.IndexSchema)] = ix
			}
		}
		matchedOld := map[string]bool{}
		for _, ixs := range cs.Indexes {
			id := indexIdentity(ixs)
			props, perr := resolveIndexProps(layout, ixs)
			if perr != nil {
				return nil, nil, perr
			}
			if existing, ok := oldIndexByIdentity[id]; ok {
				matchedOld[id] = true
				rc.Indexes = append(rc.Indexes, ResolvedIndex{IndexSchema: ixs, Prefix: existing.Prefix, Props: props})
				continue
			}
			ixPrefix, err := alloc()
			if err != nil {
				return nil, nil, err
			}
			newIx := ResolvedIndex{IndexSchema: ixs, Prefix: ixPrefix, Props: props}
			rc.Indexes = append(rc.Indexes, newIx)
			cdiff.AddedIndexes = append(cdiff.AddedIndexes, newIx)
		}
		if oldColl != nil {
			for id, ix := range oldIndexByIdentity {
				if !matchedOld[id] {
					cdiff.RemovedIndexes = append(cdiff.RemovedIndexes, ix)
				}
			}
		}

		applyRenameHints(&cdiff)
		resolved.Collections = append(resolved.Collections, rc)
		diff.Collections = append(diff.Collections, cdiff)
	}

	if old != nil {
		for _, oc := range old.Collections {
			if _, ok := resolved.ByName(oc.Name); !ok {
				diff.RemovedCollections = append(diff.RemovedCollections, oc)
			}
		}
	}

	return resolved, diff, nil
}

func resolvePrefix(oldColl *ResolvedCollection, alloc func() (uint16, error)) (uint16, error) {
	if oldColl != nil {
		return oldColl.Prefix, nil
	}
	return alloc()
}

// resolveIndexProps looks up an index's declared property names
// against layout and rejects one boundary case the key codec can't
// recover from afterward: a composite index (more than one property)
// that stores a String property by value rather than by hash.
// get_string_value_key's encoding is variable-length, so a non-final
// component of a composite key would shift every later component's
// position and break that key's ordering entirely; get_string_hash_key
// is fixed-width and composes safely (spec §8).
func resolveIndexProps(layout *object.Layout, ixs IndexSchema) ([]object.Property, error) {
	props := make([]object.Property, len(ixs.Properties))
	for i, name := range ixs.Properties {
		p, ok := layout.ByName(name)
		if !ok {
			return nil, fmt.Errorf("schema: index references unknown property %q", name)
		}
		props[i] = p
	}
	if len(props) > 1 && !ixs.HashValue {
		for _, p := range props {
			if p.Type == object.String {
				return nil, fmt.Errorf("schema: composite index over property %q requires hash_value", p.Name)
			}
		}
	}
	return props, nil
}
