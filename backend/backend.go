// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backend

import (
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wiomoc/nttp/header"
	"github.com/wiomoc/nttp/request"
	"github.com/wiomoc/nttp/timeout"
)

// An HTTPDoer executes HTTP requests. It is the transport every
// backend drives; *http.Client satisfies it.
//
// Implementations of HTTPDoer must be safe for concurrent use by
// multiple goroutines.
type HTTPDoer interface {
	Do(r *http.Request) (*http.Response, error)
}

// A Callback receives the completion of one exchange. Exactly one of
// resp and err is non-nil. Whenever err is non-nil it is a
// *request.Error.
type Callback func(resp *request.Response, err error)

// A Backend executes request plans asynchronously.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Backend interface {
	// Submit hands plan p to the backend and returns without waiting
	// for the exchange. The backend takes ownership of p. The callback
	// cb is invoked exactly once. If the backend is closed, cb is
	// invoked with an error of kind request.Closed.
	Submit(p *request.Plan, cb Callback)

	// Capabilities describes the backend.
	Capabilities() Capabilities

	// Close stops admitting new exchanges and blocks until every
	// exchange already admitted has completed. Close is idempotent.
	Close() error
}

// A Performer is a Backend with a native blocking call. Perform
// executes plan p on the calling goroutine and returns its completion.
type Performer interface {
	Perform(p *request.Plan) (*request.Response, error)
}

// Capabilities describes how a backend executes exchanges.
type Capabilities struct {
	// Name is the name the backend is registered under.
	Name string
	// OwnsLoop is true if the backend runs its own event loop
	// goroutine, and false if completions arrive on goroutines owned
	// by the transport.
	OwnsLoop bool
	// NativeBlocking is true if the backend implements Performer.
	NativeBlocking bool
	// HeaderPolicy is the policy applied to malformed response header
	// lines. It is meaningless for backends receiving pre-parsed
	// headers.
	HeaderPolicy header.Policy
	// ParsesHeaders is true if the backend feeds response header lines
	// through the header codec.
	ParsesHeaders bool
}

// DefaultHeartbeat is the wait bound used by event loop backends when
// Options.Heartbeat is zero.
const DefaultHeartbeat = 10 * time.Second

// Options configures a backend.
type Options struct {
	// Doer is the transport. If nil, http.DefaultClient is used.
	Doer HTTPDoer
	// Logger receives backend log output. If nil, output is discarded.
	Logger logrus.FieldLogger
	// Timeout chooses the transfer timeout of each exchange. If nil,
	// timeout.DefaultPolicy is used.
	Timeout timeout.Policy
	// Heartbeat bounds each wait of an event loop. It only affects
	// liveness logging, never correctness. If zero, DefaultHeartbeat
	// is used.
	Heartbeat time.Duration
}

// WithDefaults returns a copy of o with every zero field replaced by
// its default.
func (o Options) WithDefaults() Options {
	if o.Doer == nil {
		o.Doer = http.DefaultClient
	}
	if o.Logger == nil {
		o.Logger = DiscardLogger()
	}
	if o.Timeout == nil {
		o.Timeout = timeout.DefaultPolicy
	}
	if o.Heartbeat <= 0 {
		o.Heartbeat = DefaultHeartbeat
	}
	return o
}

// DiscardLogger returns a logger that writes nothing.
func DiscardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
