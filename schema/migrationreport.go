// Copyright 2024 The Authors
// This file is part of objectdb.

package schema

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/erigontech/erigon-lib/kv"
)

// CollectionReport summarizes the migration work one collection
// would require. AffectedRows marks, by ordinal position within the
// collection's primary-table scan (not by ObjectId — roaring indexes
// a dense uint32 space), every row Migrate would rewrite; it is empty
// when only indexes are added or removed, since that path leaves
// object bytes untouched.
type CollectionReport struct {
	Name             string
	RowCount         uint64
	AffectedRows     *roaring.Bitmap
	IndexesAdded     int
	IndexesRemoved   int
	WillDropEntirely bool
}

// Report is a dry run of Migrate: it computes exactly what would
// change without writing anything, so a caller can size the work (or
// refuse it) before committing to a real migration.
type Report struct {
	Collections []CollectionReport
}

// DryRun inspects tx (any open transaction; a read-only one is
// sufficient) and reports what Migrate would do for diff, without
// mutating anything.
func DryRun(tx kv.Tx, diff *Diff, old *Resolved) (*Report, error) {
	report := &Report{}

	for _, rc := range diff.RemovedCollections {
		rows, err := scanCollection(tx, rc.Prefix)
		if err != nil {
			return nil, err
		}
		report.Collections = append(report.Collections, CollectionReport{
			Name:             rc.Name,
			RowCount:         uint64(len(rows)),
			WillDropEntirely: true,
		})
	}

	for _, cdiff := range diff.Collections {
		var oldColl *ResolvedCollection
		if old != nil {
			oldColl, _ = old.ByName(cdiff.Name)
		}
		if oldColl == nil {
			continue
		}
		rows, err := scanCollection(tx, oldColl.Prefix)
		if err != nil {
			return nil, err
		}

		cr := CollectionReport{
			Name:           cdiff.Name,
			RowCount:       uint64(len(rows)),
			IndexesAdded:   len(cdiff.AddedIndexes),
			IndexesRemoved: len(cdiff.RemovedIndexes),
		}
		if cdiff.PropertiesRemoved || len(cdiff.AddedProperties) > 0 {
			bm := roaring.New()
			for i := range rows {
				bm.Add(uint32(i))
			}
			cr.AffectedRows = bm
		}
		report.Collections = append(report.Collections, cr)
	}

	return report, nil
}
