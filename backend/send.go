// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backend

import "github.com/wiomoc/nttp/request"

type result struct {
	resp *request.Response
	err  error
}

// Send executes plan p on b and blocks until it completes.
//
// If b implements Performer, the exchange runs on the calling goroutine
// and never enters the backend's asynchronous machinery. Otherwise Send
// submits p with a callback that fills a single-slot channel, and
// blocks until the slot is filled.
func Send(b Backend, p *request.Plan) (*request.Response, error) {
	if perf, ok := b.(Performer); ok {
		return perf.Perform(p)
	}

	slot := make(chan result, 1)
	b.Submit(p, func(resp *request.Response, err error) {
		slot <- result{resp, err}
	})
	r := <-slot
	return r.resp, r.err
}
