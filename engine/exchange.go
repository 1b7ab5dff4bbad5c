// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"bytes"
	"time"

	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/header"
	"github.com/wiomoc/nttp/request"
)

// An Exchange is the mutable state of one in-flight request: the
// response body accumulated so far, the header parser, and the one-shot
// completion.
type Exchange struct {
	ID    string
	Plan  *request.Plan
	Start time.Time

	body   bytes.Buffer
	parser *header.Parser
	done   *backend.OneShot
}

func newExchange(p *request.Plan, done *backend.OneShot) *Exchange {
	parser := header.NewParser(header.Strict)
	parser.Plan = p
	return &Exchange{
		ID:     p.ID,
		Plan:   p,
		Start:  time.Now(),
		parser: parser,
		done:   done,
	}
}

// handle returns a native handle for the exchange with its header and
// body callbacks attached.
func (x *Exchange) handle() *Easy {
	e := NewEasy(x.Plan)
	e.HeaderFunction = x.parser.Line
	e.WriteFunction = x.write
	e.Private = x
	return e
}

func (x *Exchange) write(chunk []byte) error {
	_, err := x.body.Write(chunk)
	return err
}

// complete fires the exchange's callback with the outcome of e.
func (x *Exchange) complete(e *Easy) {
	if err := e.Err(); err != nil {
		x.done.Fire(nil, err)
		return
	}
	x.done.Fire(request.NewResponse(e.ResponseCode(), x.body.Bytes(), x.parser.Fields()), nil)
}
