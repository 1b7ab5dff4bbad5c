// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ossession

import (
	"errors"
	"sync"

	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/request"
)

// Name is the name the backend is registered under.
const Name = "ossession"

var errNoResponse = errors.New("ossession: completion carried neither response nor error")

type idleCloser interface {
	CloseIdleConnections()
}

// Backend is the OS-managed-session backend.
type Backend struct {
	opts    backend.Options
	session *Session
	tracker *backend.Tracker

	closeOnce sync.Once
}

// New returns a backend with its own session.
func New(o backend.Options) *Backend {
	o = o.WithDefaults()
	return &Backend{
		opts:    o,
		session: NewSession(o.Doer, o.Timeout),
		tracker: backend.NewTracker(Name, o.Logger),
	}
}

// Factory creates a backend for a backend.Registry.
func Factory(o backend.Options) (backend.Backend, error) {
	return New(o), nil
}

// Submit starts a data task for plan p. The callback cb is invoked
// exactly once on a session worker goroutine, or on the calling
// goroutine if the backend is closed.
func (b *Backend) Submit(p *request.Plan, cb backend.Callback) {
	done, ok := b.tracker.Admit(p, cb)
	if !ok {
		return
	}
	b.session.DataTask(p, func(c Completion) {
		done.Fire(translate(p, c))
	}).Resume()
}

// translate turns a completion into the nttp completion contract.
func translate(p *request.Plan, c Completion) (*request.Response, error) {
	switch {
	case c.Err != nil && errors.Is(c.Err, ErrInvalidated):
		return nil, request.Wrap(p, request.Closed, request.ErrClosed)
	case c.Err != nil:
		return nil, request.Wrap(p, request.TransportError, c.Err)
	case c.Response == nil:
		return nil, request.Wrap(p, request.TransportError, errNoResponse)
	}

	fields := make(map[string]string, len(c.Response.Header))
	for k, vs := range c.Response.Header {
		if len(vs) > 0 {
			fields[k] = vs[len(vs)-1]
		}
	}
	return request.NewResponse(uint32(c.Response.StatusCode), c.Data, fields), nil
}

// Capabilities describes the backend.
func (b *Backend) Capabilities() backend.Capabilities {
	return backend.Capabilities{
		Name: Name,
	}
}

// Close stops admitting exchanges, waits for every running task to
// complete, and closes idle transport connections.
func (b *Backend) Close() error {
	b.closeOnce.Do(func() {
		b.tracker.Close()
		b.tracker.Logger().Info("session finishing tasks")
		b.session.FinishTasksAndInvalidate()
		b.tracker.Wait()
		if c, ok := b.opts.Doer.(idleCloser); ok {
			c.CloseIdleConnections()
		}
		b.tracker.Logger().Info("session invalidated")
	})
	return nil
}
