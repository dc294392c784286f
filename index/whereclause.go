// Copyright 2024 The Authors
// This file is part of objectdb.

package index

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/erigontech/objectdb/keycodec"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/objectid"
)

// WhereClause accumulates a byte-range scan over either the primary
// table (ObjectId order) or one secondary index's key space, by
// appending one typed encoding per property in index-declaration
// order (spec §4.5). lowerKey and upperKey always grow together, one
// Add* call at a time, so they stay the same length except while a
// caller is mid-call.
type WhereClause struct {
	lowerKey []byte
	upperKey []byte
	table    string // "" for the primary table; the owning index's table otherwise
}

func newWhereClause(prefix []byte, table string) *WhereClause {
	return &WhereClause{
		lowerKey: append([]byte(nil), prefix...),
		upperKey: append([]byte(nil), prefix...),
		table:    table,
	}
}

// NewPrimaryWhereClause builds a where-clause over the primary table
// for the collection whose 2-byte prefix is given — the "no index"
// case of Collection.CreateWhereClause, scanning ObjectIds directly
// rather than a secondary index's derived keys.
func NewPrimaryWhereClause(prefix []byte) *WhereClause {
	return newWhereClause(prefix, "")
}

// MakeWhereClause builds a where-clause over ix's own key space.
func (ix *Index) MakeWhereClause() *WhereClause {
	return newWhereClause(ix.PrefixBytes(), ix.table())
}

// Table is the database this clause scans; "" means the primary
// table, keyed directly by ObjectId rather than an index prefix.
func (wc *WhereClause) Table() string { return wc.table }

// LowerKey and UpperKey are the accumulated range bounds, inclusive of
// the leading collection/index prefix. Both ends are always treated
// as inclusive by a scan: exclusivity for Float/Double bounds is
// already baked into the encoded bytes by AddFloat/AddDouble.
func (wc *WhereClause) LowerKey() []byte { return wc.lowerKey }
func (wc *WhereClause) UpperKey() []byte { return wc.upperKey }

// IsEmpty reports whether the accumulated range can never match
// anything: lower sorts after upper once both are truncated to the
// shorter of the two (spec §4.5).
func (wc *WhereClause) IsEmpty() bool {
	lower, upper := wc.lowerKey, wc.upperKey
	if len(upper) < len(lower) {
		lower = lower[:len(upper)]
	}
	return bytes.Compare(upper, lower) < 0
}

// AddOid narrows the clause to a single ObjectId, appending the id's
// bytes past the collection prefix already fixed by the clause.
func (wc *WhereClause) AddOid(id objectid.ID) {
	suffix := id.WithoutPrefix()
	wc.lowerKey = append(wc.lowerKey, suffix...)
	wc.upperKey = append(wc.upperKey, suffix...)
}

// AddOidTime narrows the clause to ObjectIds minted within [lower,
// upper] wall-clock seconds.
func (wc *WhereClause) AddOidTime(lower, upper uint32) {
	var lo, hi [4]byte
	binary.BigEndian.PutUint32(lo[:], lower)
	binary.BigEndian.PutUint32(hi[:], upper)
	wc.lowerKey = append(wc.lowerKey, lo[:]...)
	wc.upperKey = append(wc.upperKey, hi[:]...)
}

// AddBool narrows the clause over a Bool property using its byte-key
// sentinels (object.NullBool/FalseBool/TrueBool).
func (wc *WhereClause) AddBool(lower, upper byte) {
	wc.lowerKey = append(wc.lowerKey, keycodec.EncodeByte(lower)...)
	wc.upperKey = append(wc.upperKey, keycodec.EncodeByte(upper)...)
}

// AddInt narrows the clause over an Int property within [lower, upper].
func (wc *WhereClause) AddInt(lower, upper int32) {
	wc.lowerKey = append(wc.lowerKey, keycodec.EncodeInt(lower)...)
	wc.upperKey = append(wc.upperKey, keycodec.EncodeInt(upper)...)
}

// AddLong narrows the clause over a Long property within [lower, upper].
func (wc *WhereClause) AddLong(lower, upper int64) {
	wc.lowerKey = append(wc.lowerKey, keycodec.EncodeLong(lower)...)
	wc.upperKey = append(wc.upperKey, keycodec.EncodeLong(upper)...)
}

// AddFloat narrows the clause over a Float property. Excluding a
// bound is implemented by incrementing its encoded form as an
// unsigned 32-bit integer: +Inf's encoding is already the largest a
// Float can ever produce (EncodeFloat routes every NaN payload to the
// null sentinel instead), so there is no successor to fall back to,
// and an exclusive upper bound of +Inf raises *IllegalArgument*
// rather than silently widening or narrowing the range.
func (wc *WhereClause) AddFloat(lower float32, includeLower bool, upper float32, includeUpper bool) error {
	if !includeUpper && math.IsInf(float64(upper), 1) {
		return objdberr.Newf("index.wherecause", objdberr.KindIllegalArgument, "where clause value overflow")
	}
	lowerKey := keycodec.EncodeFloat(lower)
	upperKey := keycodec.EncodeFloat(upper)
	if !includeLower {
		next, ok := incrementBigEndian(lowerKey)
		if !ok {
			return objdberr.Newf("index.wherecause", objdberr.KindIllegalArgument, "where clause value overflow")
		}
		lowerKey = next
	}
	if !includeUpper {
		next, ok := incrementBigEndian(upperKey)
		if !ok {
			return objdberr.Newf("index.wherecause", objdberr.KindIllegalArgument, "where clause value overflow")
		}
		upperKey = next
	}
	wc.lowerKey = append(wc.lowerKey, lowerKey...)
	wc.upperKey = append(wc.upperKey, upperKey...)
	return nil
}

// AddDouble is AddFloat's 64-bit counterpart.
func (wc *WhereClause) AddDouble(lower float64, includeLower bool, upper float64, includeUpper bool) error {
	if !includeUpper && math.IsInf(upper, 1) {
		return objdberr.Newf("index.wherecause", objdberr.KindIllegalArgument, "where clause value overflow")
	}
	lowerKey := keycodec.EncodeDouble(lower)
	upperKey := keycodec.EncodeDouble(upper)
	if !includeLower {
		next, ok := incrementBigEndian(lowerKey)
		if !ok {
			return objdberr.Newf("index.wherecause", objdberr.KindIllegalArgument, "where clause value overflow")
		}
		lowerKey = next
	}
	if !includeUpper {
		next, ok := incrementBigEndian(upperKey)
		if !ok {
			return objdberr.Newf("index.wherecause", objdberr.KindIllegalArgument, "where clause value overflow")
		}
		upperKey = next
	}
	wc.lowerKey = append(wc.lowerKey, lowerKey...)
	wc.upperKey = append(wc.upperKey, upperKey...)
	return nil
}

// AddStringHash narrows a hashed String index to a single value (or
// null).
func (wc *WhereClause) AddStringHash(value *string) {
	hash := keycodec.EncodeStringHash(value)
	wc.lowerKey = append(wc.lowerKey, hash...)
	wc.upperKey = append(wc.upperKey, hash...)
}

// AddStringValue narrows a verbatim String index to [lower, upper]
// (either may be nil for the null sentinel).
func (wc *WhereClause) AddStringValue(lower, upper *string) {
	wc.lowerKey = append(wc.lowerKey, keycodec.EncodeStringValue(lower)...)
	wc.upperKey = append(wc.upperKey, keycodec.EncodeStringValue(upper)...)
}

// incrementBigEndian adds 1 to key read as an unsigned big-endian
// integer, reporting ok=false on overflow (every byte already 0xFF).
func incrementBigEndian(key []byte) ([]byte, bool) {
	out := append([]byte(nil), key...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < 0xFF {
			out[i]++
			return out, true
		}
		out[i] = 0
	}
	return nil, false
}
