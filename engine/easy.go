// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"context"
	"io"
	"time"

	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/header"
	"github.com/wiomoc/nttp/request"
)

// DefaultChunkSize is the size of the body chunks an Easy handle
// passes to its WriteFunction when ChunkSize is zero.
const DefaultChunkSize = 16 * 1024

const forever = time.Duration(1<<63 - 1)

// An Easy is the native handle of one transfer.
//
// The callbacks are invoked on the goroutine running Perform. Header
// lines are delivered one call per line, each with its trailing CRLF:
// the status line, one "Key: Value" line per header value, then the
// blank line. The body follows in chunks of at most ChunkSize bytes.
// A callback returning an error aborts the transfer.
type Easy struct {
	// Plan is the request the handle transfers.
	Plan *request.Plan

	// HeaderFunction receives the response header lines. It may be nil.
	HeaderFunction func(line []byte) error

	// WriteFunction receives the response body chunks. It may be nil.
	WriteFunction func(chunk []byte) error

	// ChunkSize bounds the size of the body chunks.
	ChunkSize int

	// Private carries the caller's per-transfer state.
	Private interface{}

	code uint32
	err  error
}

// NewEasy returns a handle transferring plan p.
func NewEasy(p *request.Plan) *Easy {
	return &Easy{Plan: p}
}

// Perform executes the transfer on the calling goroutine using doer,
// bounding the whole transfer by d. A non-positive d means no bound.
//
// The returned error, also available from Err, is a *request.Error.
func (e *Easy) Perform(doer backend.HTTPDoer, d time.Duration) error {
	e.err = e.perform(doer, d)
	return e.err
}

func (e *Easy) perform(doer backend.HTTPDoer, d time.Duration) error {
	ctx := context.Background()
	if d > 0 && d < forever {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	resp, err := doer.Do(e.Plan.ToRequest(ctx))
	if err != nil {
		return request.Wrap(e.Plan, request.TransportError, err)
	}
	defer resp.Body.Close()

	e.code = uint32(resp.StatusCode)
	if e.HeaderFunction != nil {
		for _, line := range header.Block(resp.Proto, resp.Status, resp.Header) {
			if err = e.HeaderFunction([]byte(line)); err != nil {
				return request.Wrap(e.Plan, request.InvalidHeader, err)
			}
		}
	}

	size := e.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 && e.WriteFunction != nil {
			if err = e.WriteFunction(buf[:n]); err != nil {
				return request.Wrap(e.Plan, request.TransportError, err)
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return request.Wrap(e.Plan, request.TransportError, rerr)
		}
	}
}

// ResponseCode returns the status code of the last response received,
// or 0 if none was.
func (e *Easy) ResponseCode() uint32 {
	return e.code
}

// Err returns the error the last Perform ended with.
func (e *Easy) Err() error {
	return e.err
}
