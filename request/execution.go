// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"time"

	"github.com/wiomoc/nttp/transient"
)

// An Execution represents the state of a single exchange as seen by
// event handlers.
//
// When a request builder is sent, an Execution is created for its Plan.
// It is updated as the exchange progresses (when the plan is handed off
// to the backend, and when the completion arrives) and is passed to the
// event handlers installed on the session.
//
// Event handlers may set values on an Execution using its SetValue
// method and read them back using the Value method. They should treat
// the exported fields as read-only, with the exception of modifying the
// Plan during the BeforeSend event (for example to add a signature
// header).
type Execution struct {
	// Plan specifies the request plan being executed. It is never nil.
	Plan *Plan

	// Backend is the name of the backend executing the plan.
	Backend string

	// Start is the time the plan was handed to the backend. It is
	// the zero value until the AfterHandoff event.
	Start time.Time

	// End is the time the completion was received. It contains the
	// zero value until the exchange completes.
	End time.Time

	// Response is the final response of a successful exchange. It is
	// nil until the exchange completes, and remains nil if the exchange
	// ended in an error.
	Response *Response

	// Err is the error of a failed exchange. Whenever Err is non-nil,
	// it has the type *Error.
	Err error

	data context.Context
}

// StatusCode returns the status code of the response, or 0 if there is
// no response.
func (e *Execution) StatusCode() uint32 {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode()
}

// Header returns the response headers. If there is no response, an
// empty view is returned, which is safe for all read operations.
func (e *Execution) Header() Headers {
	if e.Response == nil {
		return Headers{}
	}

	return e.Response.Headers()
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has Ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the plan has been handed to a backend.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the exchange has completed. Once Ended
// returns true there will be no further changes to the execution.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err contains a non-nil value which
// indicates a transfer timeout.
func (e *Execution) Timeout() bool {
	cat := transient.Categorize(e.Err)
	return cat == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type, to avoid collisions between
// different event handlers.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
