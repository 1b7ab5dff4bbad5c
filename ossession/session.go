// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ossession

import (
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"sync"
	"time"

	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/request"
	"github.com/wiomoc/nttp/timeout"
)

// ErrInvalidated is the completion error of a task resumed after its
// session was invalidated.
var ErrInvalidated = errors.New("ossession: session invalidated")

// A Completion is the single message a data task delivers. Exactly one
// of Err, or Data together with Response, is populated. Response
// carries metadata only; its body has already been read into Data.
type Completion struct {
	Data     []byte
	Response *http.Response
	Err      error
}

// A Session runs data tasks on worker goroutines it owns.
type Session struct {
	doer   backend.HTTPDoer
	policy timeout.Policy

	mu          sync.Mutex
	invalidated bool
	tasks       sync.WaitGroup
}

// NewSession returns a session running tasks with doer, each bounded by
// the timeout policy chooses for its plan.
func NewSession(doer backend.HTTPDoer, policy timeout.Policy) *Session {
	return &Session{doer: doer, policy: policy}
}

// A DataTask transfers one plan. It is created suspended.
type DataTask struct {
	session *Session
	plan    *request.Plan
	handler func(Completion)
	once    sync.Once
}

// DataTask creates a suspended task for plan p. The handler is called
// exactly once, on a session worker goroutine, after Resume.
func (s *Session) DataTask(p *request.Plan, handler func(Completion)) *DataTask {
	return &DataTask{session: s, plan: p, handler: handler}
}

// Resume starts the task. Calls after the first are ignored.
func (t *DataTask) Resume() {
	t.once.Do(t.session.start(t))
}

func (s *Session) start(t *DataTask) func() {
	return func() {
		s.mu.Lock()
		if s.invalidated {
			s.mu.Unlock()
			go t.handler(Completion{Err: ErrInvalidated})
			return
		}
		s.tasks.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.tasks.Done()
			t.handler(s.run(t.plan))
		}()
	}
}

func (s *Session) run(p *request.Plan) Completion {
	ctx := context.Background()
	if d := s.policy.Timeout(p); d > 0 && d < time.Duration(1<<63-1) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	resp, err := s.doer.Do(p.ToRequest(ctx))
	if err != nil {
		return Completion{Err: err}
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return Completion{Err: err}
	}
	return Completion{Data: data, Response: resp}
}

// FinishTasksAndInvalidate stops the session from starting new tasks
// and waits until every running task has delivered its completion.
func (s *Session) FinishTasksAndInvalidate() {
	s.mu.Lock()
	s.invalidated = true
	s.mu.Unlock()
	s.tasks.Wait()
}
