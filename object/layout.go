// Copyright 2024 The Authors
// This file is part of objectdb.

package object

// PropertyDef is the schema-supplied description of a property before
// offsets are assigned.
type PropertyDef struct {
	Name string
	Type DataType
}

// Layout is the resolved static-area geometry for one collection: the
// byte offset of every property (in declared order) and the total
// static size. It is pure data, computed once when a collection's
// schema is resolved and reused for every build/read thereafter.
type Layout struct {
	Properties []Property
	StaticSize int
}

// NewLayout assigns static offsets to defs in declared order: each
// property receives a slot sized by its type (DataType.StaticWidth)
// starting right after the previous one, so the static area has no
// padding and properties and their dynamic-area placement order
// agree.
func NewLayout(defs []PropertyDef) *Layout {
	l := &Layout{Properties: make([]Property, len(defs))}
	offset := 0
	for i, d := range defs {
		l.Properties[i] = Property{Name: d.Name, Type: d.Type, Offset: offset}
		offset += d.Type.StaticWidth()
	}
	l.StaticSize = offset
	return l
}

// ByName finds a property by name, or reports ok=false.
func (l *Layout) ByName(name string) (Property, bool) {
	for _, p := range l.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}
