// Copyright 2024 The Authors
// This file is part of objectdb.

package collection

import (
	"encoding/binary"

	"github.com/erigontech/objectdb/index"
)

// CreateWhereClause builds a where-clause builder over one of c's
// indexes by its position in c.Indexes, or over the primary table
// (ObjectId order) when indexIdx doesn't name one (spec §4.4's
// create_where_clause(index_index?), the fallback-to-primary case).
func (c *Collection) CreateWhereClause(indexIdx int) *index.WhereClause {
	if indexIdx >= 0 && indexIdx < len(c.Indexes) {
		return c.Indexes[indexIdx].MakeWhereClause()
	}
	prefix := make([]byte, 2)
	binary.LittleEndian.PutUint16(prefix, c.Prefix)
	return index.NewPrimaryWhereClause(prefix)
}
