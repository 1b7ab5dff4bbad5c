// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"sync"
	"time"

	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/timeout"
)

// A Wake tells why Multi.Wait returned.
type Wake int

const (
	// WakeExtra means the extra channel passed to Wait was signalled.
	WakeExtra Wake = iota
	// WakeTransfer means a transfer finished.
	WakeTransfer
	// WakeTimeout means the wait bound elapsed.
	WakeTimeout
)

func (w Wake) String() string {
	switch w {
	case WakeExtra:
		return "mailbox"
	case WakeTransfer:
		return "transfer"
	default:
		return "heartbeat"
	}
}

// A Multi runs many Easy transfers concurrently and reports which of
// them have finished.
//
// Each added handle runs on its own goroutine. Finished handles are
// handed back over a readiness channel and queued until the owner
// collects them with Messages.
//
// Add, Remove, Wait, Perform, Messages and Close must all be called
// from the single goroutine that owns the Multi.
type Multi struct {
	doer    backend.HTTPDoer
	policy  timeout.Policy
	handles map[*Easy]struct{}
	ready   chan *Easy
	done    []*Easy
	wg      sync.WaitGroup
}

// NewMulti returns an empty multiplexer running transfers with doer,
// each bounded by the timeout policy chooses for its plan.
func NewMulti(doer backend.HTTPDoer, policy timeout.Policy) *Multi {
	return &Multi{
		doer:    doer,
		policy:  policy,
		handles: make(map[*Easy]struct{}),
		ready:   make(chan *Easy),
	}
}

// Add attaches e and starts its transfer.
func (m *Multi) Add(e *Easy) {
	m.handles[e] = struct{}{}
	d := m.policy.Timeout(e.Plan)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		e.Perform(m.doer, d)
		m.ready <- e
	}()
}

// Remove detaches e. A handle must only be removed once its transfer
// has been reported finished by Messages.
func (m *Multi) Remove(e *Easy) {
	delete(m.handles, e)
}

// Wait blocks until extra is signalled, a transfer finishes, or d
// elapses, whichever happens first. A nil extra channel is never
// signalled. Wait returns immediately with WakeTransfer if finished
// transfers are already queued.
func (m *Multi) Wait(extra <-chan struct{}, d time.Duration) Wake {
	if len(m.done) > 0 {
		return WakeTransfer
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-extra:
		return WakeExtra
	case e := <-m.ready:
		m.done = append(m.done, e)
		return WakeTransfer
	case <-t.C:
		return WakeTimeout
	}
}

// Perform collects every finished transfer without blocking and
// returns the number of transfers still running.
func (m *Multi) Perform() int {
	for {
		select {
		case e := <-m.ready:
			m.done = append(m.done, e)
		default:
			return len(m.handles) - len(m.done)
		}
	}
}

// Messages calls fn for every finished transfer collected so far, in
// the order they finished, and forgets them.
func (m *Multi) Messages(fn func(e *Easy)) {
	done := m.done
	m.done = nil
	for _, e := range done {
		fn(e)
	}
}

// Len returns the number of attached handles, finished or not.
func (m *Multi) Len() int {
	return len(m.handles)
}

// Close waits for every transfer goroutine to exit. Finished transfers
// not yet collected are discarded, so the owner normally calls Close
// only once Len reports zero.
func (m *Multi) Close() {
	go func() {
		for range m.ready {
		}
	}()
	m.wg.Wait()
	close(m.ready)
	m.handles = nil
	m.done = nil
}
