// Copyright 2024 The Authors
// This file is part of objectdb.
//
// objectdb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package store adapts the engine to its external collaborator: an
// ordered, memory-mapped key/value store (spec §6). It does not
// reimplement that store — it wires erigon-lib's own kv.RwDB/mdbx
// backend, the same stack used elsewhere for a chaindata environment,
// and exposes nothing beyond the five databases the engine needs.
package store

import (
	"context"
	"fmt"

	"github.com/c2h5oh/datasize"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/mdbx"
	log "github.com/erigontech/erigon-lib/log/v3"
)

// Fixed database names, per spec §6 "Required databases".
const (
	Info         = "info"          // single-value keys: version, schema
	Primary      = "primary"       // integer-key, no dup: ObjectId -> object bytes
	Secondary    = "secondary"     // no dup: unique indexes
	SecondaryDup = "secondary_dup" // dup-sort, dup-fixed: non-unique indexes
	Links        = "links"         // dup-sort: reserved for relations
)

// Fixed keys inside the Info database.
var (
	InfoVersionKey = []byte("version")
	InfoSchemaKey  = []byte("schema")
)

func tableCfg(_ kv.TableCfg) kv.TableCfg {
	return kv.TableCfg{
		Info:         {Flags: kv.Default},
		Primary:      {Flags: kv.IntegerKey},
		Secondary:    {Flags: kv.Default},
		SecondaryDup: {Flags: kv.DupSort | kv.DupFixed},
		Links:        {Flags: kv.DupSort},
	}
}

// EnvConfig configures the memory-mapped environment. MaxSize bounds
// the map the way LMDB/MDBX's mdb_env_set_mapsize does; it is not a
// disk quota, just the maximum the map can grow to.
type EnvConfig struct {
	Path    string
	MaxSize datasize.ByteSize
	Logger  log.Logger
	// ReadOnly opens the environment without acquiring the writer
	// lock; BeginRw on the resulting DB fails.
	ReadOnly bool
}

// OpenEnv creates or opens the on-disk environment backing an
// instance. It is the only place in the engine that talks to the
// memory-mapped store directly — everything downstream consumes the
// returned kv.RwDB through its narrow interface (spec §6).
func OpenEnv(ctx context.Context, cfg EnvConfig) (kv.RwDB, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Root()
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	opts := mdbx.NewMDBX(logger).
		Path(cfg.Path).
		Label(kv.ChainDB).
		WithTableCfg(tableCfg)
	if cfg.MaxSize > 0 {
		opts = opts.MapSize(cfg.MaxSize)
	}
	if cfg.ReadOnly {
		opts = opts.Readonly()
	}
	db, err := opts.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	return db, nil
}
