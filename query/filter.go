// Copyright 2024 The Authors
// This file is part of objectdb.

package query

import (
	"math"
	"strings"

	"github.com/erigontech/objectdb/object"
)

// Filter is an in-memory predicate evaluated against one object's
// decoded properties, after the where-clause scan has already
// narrowed the candidate set (spec §4.6).
type Filter interface {
	Eval(layout *object.Layout, data []byte) bool
}

// IsNull matches when Property is null.
type IsNull struct{ Property string }

func (f IsNull) Eval(layout *object.Layout, data []byte) bool {
	p, ok := layout.ByName(f.Property)
	if !ok {
		return false
	}
	return object.IsNull(p, data)
}

// NonNullGuard short-circuits to false when Property is null, so a
// composite filter that dereferences that property never has to
// handle the null case itself (spec §4.6).
type NonNullGuard struct{ Property string }

func (f NonNullGuard) Eval(layout *object.Layout, data []byte) bool {
	p, ok := layout.ByName(f.Property)
	if !ok {
		return false
	}
	return !object.IsNull(p, data)
}

// IntBetween matches an Int property within [Lower, Upper].
type IntBetween struct {
	Property     string
	Lower, Upper int32
}

func (f IntBetween) Eval(layout *object.Layout, data []byte) bool {
	p, ok := layout.ByName(f.Property)
	if !ok {
		return false
	}
	v, ok := object.ReadInt(p, data)
	if !ok {
		return false
	}
	return v >= f.Lower && v <= f.Upper
}

// IntAnyOf matches an Int property equal to any of Values.
type IntAnyOf struct {
	Property string
	Values   []int32
}

func (f IntAnyOf) Eval(layout *object.Layout, data []byte) bool {
	p, ok := layout.ByName(f.Property)
	if !ok {
		return false
	}
	v, ok := object.ReadInt(p, data)
	if !ok {
		return false
	}
	for _, want := range f.Values {
		if v == want {
			return true
		}
	}
	return false
}

// DoubleBetween matches a Double property within [Lower, Upper],
// widened by Epsilon on both sides to absorb binary floating-point
// representation error the way a direct equality check on a computed
// double never should (spec §4.6).
type DoubleBetween struct {
	Property     string
	Lower, Upper float64
	Epsilon      float64
}

func (f DoubleBetween) Eval(layout *object.Layout, data []byte) bool {
	p, ok := layout.ByName(f.Property)
	if !ok {
		return false
	}
	v, ok := object.ReadDouble(p, data)
	if !ok {
		return false
	}
	return v >= f.Lower-f.Epsilon && v <= f.Upper+f.Epsilon
}

// DoubleAnyOf matches a Double property within Epsilon of any value
// in Values.
type DoubleAnyOf struct {
	Property string
	Values   []float64
	Epsilon  float64
}

func (f DoubleAnyOf) Eval(layout *object.Layout, data []byte) bool {
	p, ok := layout.ByName(f.Property)
	if !ok {
		return false
	}
	v, ok := object.ReadDouble(p, data)
	if !ok {
		return false
	}
	for _, want := range f.Values {
		if math.Abs(v-want) <= f.Epsilon {
			return true
		}
	}
	return false
}

// StringAnyOf matches a String property equal to any of Values,
// case-sensitively unless CaseInsensitive is set.
type StringAnyOf struct {
	Property        string
	Values          []string
	CaseInsensitive bool
}

func (f StringAnyOf) Eval(layout *object.Layout, data []byte) bool {
	p, ok := layout.ByName(f.Property)
	if !ok {
		return false
	}
	v, ok := object.ReadString(p, data)
	if !ok {
		return false
	}
	for _, want := range f.Values {
		if f.CaseInsensitive {
			if strings.EqualFold(v, want) {
				return true
			}
		} else if v == want {
			return true
		}
	}
	return false
}

// And matches when every child filter matches.
type And []Filter

func (f And) Eval(layout *object.Layout, data []byte) bool {
	for _, child := range f {
		if !child.Eval(layout, data) {
			return false
		}
	}
	return true
}

// Or matches when any child filter matches. An empty Or matches
// nothing (the vacuous-disjunction convention, the opposite of And's
// vacuous-conjunction-matches-everything).
type Or []Filter

func (f Or) Eval(layout *object.Layout, data []byte) bool {
	for _, child := range f {
		if child.Eval(layout, data) {
			return true
		}
	}
	return false
}

// Not inverts its child.
type Not struct{ Filter Filter }

func (f Not) Eval(layout *object.Layout, data []byte) bool {
	return !f.Filter.Eval(layout, data)
}
