// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mailbox provides the channel that hands ownership of values
// from any number of producer goroutines to a single consumer
// goroutine.
//
// The consumer waits on the channel returned by Wake, typically
// alongside other channels in a select statement, and then drains the
// mailbox with TryRecv until it reports iox.ErrWouldBlock. Closing the
// mailbox wakes the consumer, and once the remaining values have been
// drained TryRecv reports ErrClosed, which the consumer treats as a
// shutdown signal.
package mailbox

import (
	"errors"
	"sync"

	"code.hybscloud.com/iox"
)

// ErrClosed is returned by Send after Close, and by TryRecv once the
// mailbox is closed and empty.
var ErrClosed = errors.New("mailbox: closed")

// A Mailbox is an unbounded multi-producer single-consumer FIFO queue
// with a wake handle.
//
// Send may be called from any goroutine. TryRecv must only be called
// from the single consumer goroutine. Values are delivered whole, in
// per-producer order, exactly once.
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	head   int
	closed bool
	wake   chan struct{}
}

// New returns an empty, open mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		wake: make(chan struct{}, 1),
	}
}

// Send transfers ownership of v to the consumer. It never blocks. After
// Close, Send returns ErrClosed and the caller keeps ownership of v.
func (m *Mailbox[T]) Send(v T) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.queue = append(m.queue, v)
	m.mu.Unlock()
	m.signal()
	return nil
}

// TryRecv returns the next value without blocking. If no value is
// available it returns iox.ErrWouldBlock, or ErrClosed if the mailbox
// has been closed.
func (m *Mailbox[T]) TryRecv() (T, error) {
	var zero T
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.head == len(m.queue) {
		if m.closed {
			return zero, ErrClosed
		}
		return zero, iox.ErrWouldBlock
	}
	v := m.queue[m.head]
	m.queue[m.head] = zero
	m.head++
	if m.head == len(m.queue) {
		m.queue = m.queue[:0]
		m.head = 0
	}
	return v, nil
}

// Wake returns the channel signalled after every Send and on Close.
// Several sends may coalesce into one signal, so a woken consumer must
// drain with TryRecv until it stops returning values.
func (m *Mailbox[T]) Wake() <-chan struct{} {
	return m.wake
}

// Close closes the sending end. Values already sent remain receivable.
// Close is idempotent.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

// Closed reports whether Close has been called.
func (m *Mailbox[T]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Len returns the number of values waiting to be received.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue) - m.head
}

func (m *Mailbox[T]) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
