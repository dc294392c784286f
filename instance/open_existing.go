// Copyright 2024 The Authors
// This file is part of objectdb.

package instance

import (
	"context"

	"github.com/c2h5oh/datasize"
	"github.com/erigontech/erigon-lib/kv"
	log "github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/schema"
)

// OpenExisting opens an instance at path using whatever schema is
// already persisted there, for tools (cmd/objdbcheck) that need to
// inspect a store without declaring its schema up front. It fails
// with IllegalArgument if path has never been opened as an instance.
func OpenExisting(ctx context.Context, path string, opts ...Option) (*Instance, error) {
	if existing, ok := globalRegistry.get(path); ok {
		return existing, nil
	}

	peekDB, err := store.OpenEnv(ctx, store.EnvConfig{Path: path, MaxSize: 1 * datasize.GB, Logger: log.Root(), ReadOnly: true})
	if err != nil {
		return nil, err
	}
	s, err := peekSchema(ctx, peekDB)
	peekDB.Close()
	if err != nil {
		return nil, err
	}

	return Open(ctx, path, s, opts...)
}

// peekSchema reads and decodes the persisted schema blob without
// going through bootstrap's version check and migration path — a
// read-only environment can't take the write transaction bootstrap
// needs anyway.
func peekSchema(ctx context.Context, db kv.RwDB) (schema.Schema, error) {
	tx, err := db.BeginRo(ctx)
	if err != nil {
		return schema.Schema{}, objdberr.New("instance.openexisting", objdberr.KindStoreError, err)
	}
	defer tx.Rollback()

	blob, err := tx.GetOne(store.Info, store.InfoSchemaKey)
	if err != nil {
		return schema.Schema{}, objdberr.New("instance.openexisting", objdberr.KindStoreError, err)
	}
	if blob == nil {
		return schema.Schema{}, objdberr.Newf("instance.openexisting", objdberr.KindIllegalArgument, "no schema persisted at this path")
	}

	resolved, err := decodeResolved(blob)
	if err != nil {
		return schema.Schema{}, objdberr.New("instance.openexisting", objdberr.KindDbCorrupted, err)
	}

	var s schema.Schema
	for _, rc := range resolved.Collections {
		s.Collections = append(s.Collections, rc.CollectionSchema)
	}
	return s, nil
}
