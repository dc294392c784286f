// Copyright 2024 The Authors
// This file is part of objectdb.

// Package instance implements spec §3/§4.8's open/create path:
// bootstrapping the five on-disk databases, reconciling the
// caller's schema against whatever was persisted last time, running
// any migration that reconciliation requires, and handing back live
// Collection handles — all before any user-visible operation runs.
package instance

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/c2h5oh/datasize"
	log "github.com/erigontech/erigon-lib/log/v3"

	"github.com/erigontech/objectdb/collection"
	"github.com/erigontech/objectdb/internal/store"
	"github.com/erigontech/objectdb/objdberr"
	"github.com/erigontech/objectdb/objectid"
	"github.com/erigontech/objectdb/schema"

	"github.com/erigontech/erigon-lib/kv"
)

// SupportedVersion is the only persisted schema-version value Open
// accepts; any other value is a fatal VersionError (spec §4.8,
// spec.md line 155's "version key equals the supported version").
const SupportedVersion uint64 = 1

// Instance is one open engine: its environment handle, its reconciled
// schema, and one live Collection per resolved collection.
type Instance struct {
	path   string
	db     kv.RwDB
	logger log.Logger

	mu          sync.RWMutex
	resolved    *schema.Resolved
	collections map[string]*collection.Collection
}

// Open creates the on-disk environment at path if it doesn't exist,
// or reopens it, reconciling s against whatever schema was persisted
// there (schema.Resolve) and running any migration that requires
// (schema.Migrate) before returning. Reopening a path that is already
// open in this process returns the existing Instance unchanged —
// schema is only ever reconciled once per process per path.
func Open(ctx context.Context, path string, s schema.Schema, opts ...Option) (*Instance, error) {
	if existing, ok := globalRegistry.get(path); ok {
		return existing, nil
	}

	cfg := config{logger: log.Root(), maxSize: 1 * datasize.GB, clock: objectid.SystemClock{}}
	for _, o := range opts {
		o(&cfg)
	}

	if err := schema.ValidateLinks(s); err != nil {
		return nil, objdberr.New("instance.open", objdberr.KindIllegalArgument, err)
	}

	db, err := store.OpenEnv(ctx, store.EnvConfig{Path: path, MaxSize: cfg.maxSize, Logger: cfg.logger})
	if err != nil {
		return nil, err
	}

	resolved, err := bootstrap(ctx, db, s, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	inst := &Instance{
		path:        path,
		db:          db,
		logger:      cfg.logger,
		resolved:    resolved,
		collections: map[string]*collection.Collection{},
	}
	for _, rc := range resolved.Collections {
		gen := objectid.NewGenerator(rc.Prefix, cfg.clock, cfg.entropy)
		inst.collections[rc.Name] = collection.New(rc, gen)
	}

	globalRegistry.put(path, inst)
	inst.logger.Info("objectdb instance opened", "path", path, "collections", len(resolved.Collections))
	return inst, nil
}

// bootstrap runs the version check and schema reconciliation inside a
// single write transaction, so a VersionError or a migration failure
// never leaves the info database half-updated.
func bootstrap(ctx context.Context, db kv.RwDB, s schema.Schema, cfg config) (*schema.Resolved, error) {
	tx, err := db.BeginRw(ctx)
	if err != nil {
		return nil, objdberr.New("instance.open", objdberr.KindStoreError, err)
	}
	defer tx.Rollback()

	existingVersion, err := tx.GetOne(store.Info, store.InfoVersionKey)
	if err != nil {
		return nil, objdberr.New("instance.open", objdberr.KindStoreError, err)
	}

	var old *schema.Resolved
	if existingVersion == nil {
		var versionBuf [8]byte
		binary.LittleEndian.PutUint64(versionBuf[:], SupportedVersion)
		if err := tx.Put(store.Info, store.InfoVersionKey, versionBuf[:]); err != nil {
			return nil, objdberr.New("instance.open", objdberr.KindStoreError, err)
		}
	} else {
		if len(existingVersion) != 8 || binary.LittleEndian.Uint64(existingVersion) != SupportedVersion {
			return nil, objdberr.New("instance.open", objdberr.KindVersionError, nil)
		}
		schemaBlob, err := tx.GetOne(store.Info, store.InfoSchemaKey)
		if err != nil {
			return nil, objdberr.New("instance.open", objdberr.KindStoreError, err)
		}
		if schemaBlob != nil {
			old, err = decodeResolved(schemaBlob)
			if err != nil {
				return nil, objdberr.New("instance.open", objdberr.KindDbCorrupted, err)
			}
		}
	}

	resolved, diff, err := schema.Resolve(old, s, cfg.entropy)
	if err != nil {
		return nil, objdberr.New("instance.open", objdberr.KindStoreError, err)
	}

	if !diff.IsEmpty() {
		report, err := schema.DryRun(tx, diff, old)
		if err != nil {
			return nil, err
		}
		logMigrationReport(cfg.logger, report)

		if err := schema.Migrate(tx, diff, old, resolved); err != nil {
			return nil, err
		}
	}

	if err := tx.Put(store.Info, store.InfoSchemaKey, encodeResolved(resolved)); err != nil {
		return nil, objdberr.New("instance.open", objdberr.KindStoreError, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, objdberr.New("instance.open", objdberr.KindStoreError, err)
	}
	return resolved, nil
}

// logMigrationReport surfaces schema.DryRun's findings before Migrate
// actually runs, so an operator watching the log sees the size of a
// migration (rows rewritten, indexes touched, collections dropped)
// ahead of the write that commits it.
func logMigrationReport(logger log.Logger, report *schema.Report) {
	for _, cr := range report.Collections {
		if cr.WillDropEntirely {
			logger.Info("schema migration will drop collection", "collection", cr.Name, "rows", cr.RowCount)
			continue
		}
		affected := 0
		if cr.AffectedRows != nil {
			affected = int(cr.AffectedRows.GetCardinality())
		}
		logger.Info("schema migration plan", "collection", cr.Name, "rows", cr.RowCount,
			"rows_rewritten", affected, "indexes_added", cr.IndexesAdded, "indexes_removed", cr.IndexesRemoved)
	}
}

// Collection returns the live handle for name, or ok=false if no such
// collection exists in this instance's resolved schema.
func (i *Instance) Collection(name string) (*collection.Collection, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	c, ok := i.collections[name]
	return c, ok
}

// DB returns the underlying store handle, for callers (txn.Begin)
// that need to open their own transactions against it.
func (i *Instance) DB() kv.RwDB { return i.db }

// Resolved returns this instance's reconciled schema, for tools
// (cmd/objdbcheck) that need to walk every collection without
// re-declaring it.
func (i *Instance) Resolved() *schema.Resolved {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.resolved
}

// Close releases the environment and removes this Instance from the
// process-wide registry; a subsequent Open of the same path starts
// fresh.
func (i *Instance) Close() {
	globalRegistry.remove(i.path)
	i.db.Close()
	i.logger.Info("objectdb instance closed", "path", i.path)
}
