// Copyright 2024 The Authors
// This file is part of objectdb.

package instance

import (
	"io"

	"github.com/c2h5oh/datasize"
	log "github.com/erigontech/erigon-lib/log/v3"
	"github.com/erigontech/objectdb/objectid"
)

type config struct {
	logger  log.Logger
	maxSize datasize.ByteSize
	clock   objectid.Clock
	entropy io.Reader
}

// Option configures Open.
type Option func(*config)

// WithLogger overrides the default log.Root() logger.
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxSize bounds the memory-mapped environment (internal/store's
// EnvConfig.MaxSize).
func WithMaxSize(sz datasize.ByteSize) Option {
	return func(c *config) { c.maxSize = sz }
}

// WithClock overrides the wall clock every collection's ObjectId
// generator uses — for deterministic tests, not production use.
func WithClock(clock objectid.Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithEntropy overrides the random source used both for schema prefix
// allocation and ObjectId generation — for deterministic tests, not
// production use.
func WithEntropy(r io.Reader) Option {
	return func(c *config) { c.entropy = r }
}
