// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nttp

import (
	"fmt"

	"github.com/wiomoc/nttp/request"
)

// A HandlerGroup is a group of event handler chains which can be
// installed in a Session. The zero value is an empty group.
//
// A HandlerGroup must not be modified once the Session it is installed
// in has started sending.
type HandlerGroup struct {
	chains [numEvents][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	checkHandler(evt, h)
	g.chains[evt] = append(g.chains[evt], h)
}

// PushFront adds an event handler to the front of the event handler
// chain for a specific event type, so it runs before every handler
// already in the chain.
func (g *HandlerGroup) PushFront(evt Event, h Handler) {
	checkHandler(evt, h)
	g.chains[evt] = append([]Handler{h}, g.chains[evt]...)
}

// Len returns the number of handlers in the chain for evt.
func (g *HandlerGroup) Len(evt Event) int {
	if g == nil || evt < 0 || int(evt) >= numEvents {
		return 0
	}
	return len(g.chains[evt])
}

func (g *HandlerGroup) run(evt Event, e *request.Execution) {
	if g == nil {
		return
	}
	for _, h := range g.chains[evt] {
		h.Handle(evt, e)
	}
}

func checkHandler(evt Event, h Handler) {
	if h == nil {
		panic("nttp: nil handler")
	}
	if evt < 0 || int(evt) >= numEvents {
		panic(fmt.Sprintf("nttp: unknown event %d", int(evt)))
	}
}

// A Handler handles the occurrence of an event during an exchange.
type Handler interface {
	Handle(Event, *request.Execution)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(Event, *request.Execution)

// Handle calls f(evt, e).
func (f HandlerFunc) Handle(evt Event, e *request.Execution) {
	f(evt, e)
}
