// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nttp

import (
	"errors"

	"code.hybscloud.com/atomix"
	"github.com/wiomoc/nttp/request"
)

var errAlreadySent = errors.New("request builder already sent")

// A RequestBuilder accumulates one request and sends it exactly once.
//
// Header and Body may be called any number of times before the builder
// is sent. The first error they encounter is kept and returned by Send
// or SendAsync; later calls are ignored.
//
// A RequestBuilder is not safe for concurrent configuration, but Send
// and SendAsync may race: exactly one of them sends the request.
type RequestBuilder struct {
	session *Session
	plan    *request.Plan
	err     error
	sends   atomix.Uint32
}

// Header appends a header line. Repeated keys produce repeated lines.
func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	if b.err == nil {
		b.err = b.plan.AddHeader(key, value)
	}
	return b
}

// Body sets the request body. The body parameter may be nil, or may be
// any of the types supported by request.BodyBytes, namely: string;
// []byte; io.Reader; and io.ReadCloser. Readers are consumed
// immediately.
func (b *RequestBuilder) Body(body interface{}) *RequestBuilder {
	if b.err != nil {
		return b
	}
	buf, err := request.BodyBytes(body)
	if err != nil {
		b.err = request.Wrap(b.plan, request.InvalidRequest, err)
		return b
	}
	b.plan.Body = buf
	return b
}

// Plan returns the plan being built, or nil if the method or URL was
// rejected.
func (b *RequestBuilder) Plan() *request.Plan {
	return b.plan
}

// Send sends the request and blocks until its response or error is
// available. Every error returned has the type *request.Error.
func (b *RequestBuilder) Send() (*request.Response, error) {
	if err := b.claim(); err != nil {
		return nil, err
	}
	return b.session.send(b.plan)
}

// SendAsync sends the request and returns without waiting. The callback
// cb is invoked exactly once with either the response or an error of
// type *request.Error.
//
// If the request fails local validation, or the builder was already
// sent, cb is invoked on the calling goroutine before SendAsync
// returns. Otherwise it is invoked on a goroutine owned by the backend.
func (b *RequestBuilder) SendAsync(cb func(*request.Response, error)) {
	if cb == nil {
		panic("nttp: nil callback")
	}
	if err := b.claim(); err != nil {
		cb(nil, err)
		return
	}
	b.session.submit(b.plan, cb)
}

func (b *RequestBuilder) claim() error {
	if b.sends.Add(1) != 1 {
		return request.Wrap(b.plan, request.InvalidRequest, errAlreadySent)
	}
	return b.err
}
