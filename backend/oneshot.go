// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backend

import (
	"sync"

	"github.com/wiomoc/nttp/request"
)

// A OneShot guards a Callback so that it runs at most once.
type OneShot struct {
	once sync.Once
	cb   Callback
}

// NewOneShot wraps cb. It panics if cb is nil.
func NewOneShot(cb Callback) *OneShot {
	if cb == nil {
		panic("nttp/backend: nil callback")
	}
	return &OneShot{cb: cb}
}

// Fire invokes the callback with resp and err, and reports whether
// this call was the one that did. Every call after the first is a
// no-op returning false.
func (o *OneShot) Fire(resp *request.Response, err error) bool {
	fired := false
	o.once.Do(func() {
		fired = true
		o.cb(resp, err)
	})
	return fired
}
