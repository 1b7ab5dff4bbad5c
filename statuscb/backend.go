// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package statuscb

import (
	"sync"

	"code.hybscloud.com/atomix"
	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/header"
	"github.com/wiomoc/nttp/request"
)

// Name is the name the backend is registered under.
const Name = "statuscb"

// ReadSize is the largest body chunk requested from the stack at once.
const ReadSize = 8 * 1024

// tokens is the process-wide counter handing out exchange tokens.
var tokens atomix.Uint32

func nextToken() uint32 {
	return tokens.Add(1)
}

// exchange is the per-token state. It is owned by whoever checked it
// out of the table last.
type exchange struct {
	plan   *request.Plan
	done   *backend.OneShot
	parser *header.Parser
	status uint32
	body   []byte
}

// Backend is the status-callback backend.
type Backend struct {
	opts    backend.Options
	tracker *backend.Tracker
	stack   *Stack

	mu    sync.Mutex
	table map[uint32]*exchange

	closeOnce sync.Once
}

// New returns a backend with its own stack.
func New(o backend.Options) *Backend {
	o = o.WithDefaults()
	b := &Backend{
		opts:    o,
		tracker: backend.NewTracker(Name, o.Logger),
		table:   make(map[uint32]*exchange),
	}
	b.stack = NewStack(o.Doer, b.status)
	return b
}

// Factory creates a backend for a backend.Registry.
func Factory(o backend.Options) (backend.Backend, error) {
	return New(o), nil
}

// Submit opens a request handle for plan p and sends it. The callback
// cb is invoked exactly once, on a stack goroutine, or on the calling
// goroutine if the backend is closed or the URL cannot be cracked.
func (b *Backend) Submit(p *request.Plan, cb backend.Callback) {
	done, ok := b.tracker.Admit(p, cb)
	if !ok {
		return
	}

	parser := header.NewParser(header.Tolerant)
	parser.Plan = p
	x := &exchange{plan: p, done: done, parser: parser}
	token := nextToken()

	if err := b.stack.Open(token, p, b.opts.Timeout.Timeout(p)); err != nil {
		done.Fire(nil, request.Wrap(p, request.TransportError, err))
		return
	}
	b.checkin(token, x)
	if err := b.stack.Send(token); err != nil {
		b.fail(token, err)
	}
}

// status is the stack's StatusCallback.
func (b *Backend) status(token uint32, s Status, data []byte, err error) {
	x := b.checkout(token)
	if x == nil {
		b.tracker.Logger().WithField("token", token).Warn("status for unknown token")
		return
	}

	switch s {
	case SendComplete:
		b.checkin(token, x)
		if err := b.stack.ReceiveResponse(token); err != nil {
			b.fail(token, err)
		}
	case HeadersAvailable:
		code, raw, err := b.stack.QueryHeaders(token)
		if err != nil {
			b.complete(token, x, nil, request.Wrap(x.plan, request.TransportError, err))
			return
		}
		x.status = code
		_ = x.parser.Feed(raw)
		if n := x.parser.Skipped(); n > 0 {
			b.tracker.Log(x.plan).WithField("lines", n).Debug("skipped malformed header lines")
		}
		b.checkin(token, x)
		if err := b.stack.ReadData(token, ReadSize); err != nil {
			b.fail(token, err)
		}
	case DataAvailable:
		if len(data) == 0 {
			b.complete(token, x, request.NewResponse(x.status, x.body, x.parser.Fields()), nil)
			return
		}
		x.body = append(x.body, data...)
		b.checkin(token, x)
		if err := b.stack.ReadData(token, ReadSize); err != nil {
			b.fail(token, err)
		}
	case RequestError:
		b.complete(token, x, nil, request.Wrap(x.plan, request.TransportError, err))
	default:
		b.checkin(token, x)
	}
}

// fail completes the exchange under token after a stack operation could
// not be requested.
func (b *Backend) fail(token uint32, err error) {
	if x := b.checkout(token); x != nil {
		b.complete(token, x, nil, request.Wrap(x.plan, request.TransportError, err))
	}
}

func (b *Backend) complete(token uint32, x *exchange, resp *request.Response, err error) {
	_ = b.stack.CloseHandle(token)
	x.done.Fire(resp, err)
}

func (b *Backend) checkin(token uint32, x *exchange) {
	b.mu.Lock()
	b.table[token] = x
	b.mu.Unlock()
}

func (b *Backend) checkout(token uint32) *exchange {
	b.mu.Lock()
	defer b.mu.Unlock()
	x := b.table[token]
	delete(b.table, token)
	return x
}

// Len returns the number of exchanges currently checked in.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.table)
}

// Capabilities describes the backend.
func (b *Backend) Capabilities() backend.Capabilities {
	return backend.Capabilities{
		Name:          Name,
		HeaderPolicy:  header.Tolerant,
		ParsesHeaders: true,
	}
}

// Close stops admitting exchanges and waits until every admitted
// exchange has completed and the stack is idle.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		b.tracker.Close()
		b.tracker.Logger().WithField("exchanges", b.Len()).Info("waiting for exchanges")
		b.tracker.Wait()
		b.stack.Wait()
		b.tracker.Logger().Info("stack idle")
	})
	return nil
}
