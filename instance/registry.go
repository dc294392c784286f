// Copyright 2024 The Authors
// This file is part of objectdb.

package instance

import "sync"

// registry tracks every Instance currently open, keyed by its
// on-disk path. It exists as an explicit, lockable map rather than
// hidden package-level globals threaded through every function (spec
// §9's open question on global state is resolved in favor of an
// explicit registry a caller can reason about and, in tests, reset).
type registry struct {
	mu        sync.Mutex
	instances map[string]*Instance
}

var globalRegistry = &registry{instances: map[string]*Instance{}}

func (r *registry) get(path string) (*Instance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.instances[path]
	return i, ok
}

func (r *registry) put(path string, inst *Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[path] = inst
}

func (r *registry) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, path)
}
