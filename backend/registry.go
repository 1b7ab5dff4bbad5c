// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backend

import (
	"fmt"
	"sort"
	"sync"
)

// A Factory creates a backend from options.
type Factory func(o Options) (Backend, error)

// Registry holds backend factories keyed by backend name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under the given name, replacing any factory
// previously registered under it.
func (r *Registry) Register(name string, f Factory) {
	if f == nil {
		panic("nttp/backend: nil factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// New creates a backend using the factory registered under name. The
// options are passed through WithDefaults first.
func (r *Registry) New(name string, o Options) (Backend, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("nttp/backend: backend %q is not registered", name)
	}
	return f(o.WithDefaults())
}

// List returns the registered backend names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
