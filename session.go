// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nttp

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/engine"
	"github.com/wiomoc/nttp/ossession"
	"github.com/wiomoc/nttp/request"
	"github.com/wiomoc/nttp/statuscb"
)

var registry = backend.NewRegistry()

func init() {
	registry.Register(engine.Name, engine.Factory)
	registry.Register(ossession.Name, ossession.Factory)
	registry.Register(statuscb.Name, statuscb.Factory)
}

// Backends returns the names of every backend a Session can be
// configured with, in sorted order.
func Backends() []string {
	return registry.List()
}

// DefaultBackend returns the name of the backend used when
// Config.Backend is empty.
func DefaultBackend() string {
	return defaultBackend
}

// A Session sends HTTP requests through exactly one backend.
//
// A Session is safe for concurrent use by multiple goroutines. Close it
// when it is no longer needed.
type Session struct {
	name     string
	backend  backend.Backend
	handlers *HandlerGroup
	logger   logrus.FieldLogger
	idle     func()

	closeOnce sync.Once
	closeErr  error
}

// NewSession creates a session using the backend named in c.
func NewSession(c Config) (*Session, error) {
	name := c.Backend
	if name == "" {
		name = defaultBackend
	}

	idle := func() {}
	if c.Doer == nil {
		client, err := newDefaultClient(c.DisableHTTP2)
		if err != nil {
			return nil, err
		}
		c.Doer = client
		idle = client.CloseIdleConnections
	}

	o := c.options().WithDefaults()
	b, err := registry.New(name, o)
	if err != nil {
		return nil, err
	}

	s := &Session{
		name:     name,
		backend:  b,
		handlers: c.Handlers,
		logger:   o.Logger.WithField("backend", name),
		idle:     idle,
	}
	s.logger.Debug("session created")
	return s, nil
}

// Backend returns the name of the session's backend.
func (s *Session) Backend() string {
	return s.name
}

// Capabilities describes the session's backend.
func (s *Session) Capabilities() backend.Capabilities {
	return s.backend.Capabilities()
}

// Request creates a request builder for the given method and URL.
//
// Problems with the method or URL are not reported here. They are
// recorded in the builder and returned when it is sent.
func (s *Session) Request(method, url string) *RequestBuilder {
	p, err := request.NewPlan(method, url, nil)
	return &RequestBuilder{
		session: s,
		plan:    p,
		err:     err,
	}
}

// Close stops the session from accepting further requests and waits
// until every request already sent has completed. When Close returns no
// further callbacks will fire.
//
// Close is idempotent. Requests sent after Close complete with an error
// of kind request.Closed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logger.Info("session closing")
		s.closeErr = s.backend.Close()
		s.idle()
		s.logger.Info("session closed")
	})
	return s.closeErr
}

func (s *Session) start(p *request.Plan) *request.Execution {
	e := &request.Execution{
		Plan:    p,
		Backend: s.name,
	}
	s.handlers.run(BeforeSend, e)
	e.Start = time.Now()
	s.handlers.run(AfterHandoff, e)
	return e
}

func (s *Session) finish(e *request.Execution, resp *request.Response, err error) {
	e.End = time.Now()
	e.Response = resp
	e.Err = err
	if e.Timeout() {
		s.handlers.run(AfterTimeout, e)
	}
	s.handlers.run(AfterComplete, e)
}

func (s *Session) send(p *request.Plan) (*request.Response, error) {
	e := s.start(p)
	resp, err := backend.Send(s.backend, p)
	s.finish(e, resp, err)
	return resp, err
}

func (s *Session) submit(p *request.Plan, cb backend.Callback) {
	e := s.start(p)
	s.backend.Submit(p, func(resp *request.Response, err error) {
		s.finish(e, resp, err)
		cb(resp, err)
	})
}
