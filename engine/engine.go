// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"sync"
	"sync/atomic"

	"code.hybscloud.com/iox"
	"github.com/sirupsen/logrus"
	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/header"
	"github.com/wiomoc/nttp/mailbox"
	"github.com/wiomoc/nttp/request"
)

// Name is the name the engine backend is registered under.
const Name = "multi"

// State is the lifecycle state of an Engine.
type State int32

const (
	// Running means the engine admits new exchanges.
	Running State = iota
	// Draining means shutdown was requested and admitted exchanges are
	// still in flight.
	Draining
	// Stopped means shutdown was requested and every admitted exchange
	// has completed. The loop goroutine has exited.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Kind tags a Message.
type Kind int

const (
	// KindExchange carries a new exchange and its native handle.
	KindExchange Kind = iota
	// KindShutdown requests orderly shutdown.
	KindShutdown
)

func (k Kind) String() string {
	if k == KindShutdown {
		return "shutdown"
	}
	return "exchange"
}

// A Message is the value sent through an engine's mailbox. Ownership
// of the handle and exchange passes to the loop on delivery.
type Message struct {
	Kind     Kind
	Handle   *Easy
	Exchange *Exchange
}

// An Engine is the descriptor-multiplexed backend.
type Engine struct {
	opts    backend.Options
	tracker *backend.Tracker
	log     logrus.FieldLogger
	mailbox *mailbox.Mailbox[Message]
	multi   *Multi

	state     int32
	stopped   chan struct{}
	closeOnce sync.Once
}

// New starts an engine and its loop goroutine.
func New(o backend.Options) *Engine {
	o = o.WithDefaults()
	tracker := backend.NewTracker(Name, o.Logger)
	e := &Engine{
		opts:    o,
		tracker: tracker,
		log:     tracker.Logger(),
		mailbox: mailbox.New[Message](),
		multi:   NewMulti(o.Doer, o.Timeout),
		stopped: make(chan struct{}),
	}
	go e.loop()
	return e
}

// Factory creates an engine for a backend.Registry.
func Factory(o backend.Options) (backend.Backend, error) {
	return New(o), nil
}

// Submit enqueues plan p for the loop and returns immediately. The
// callback cb is invoked exactly once on the loop goroutine, or on the
// calling goroutine if the engine is closed.
func (e *Engine) Submit(p *request.Plan, cb backend.Callback) {
	done, ok := e.tracker.Admit(p, cb)
	if !ok {
		return
	}
	x := newExchange(p, done)
	if err := e.mailbox.Send(Message{Kind: KindExchange, Handle: x.handle(), Exchange: x}); err != nil {
		done.Fire(nil, request.Wrap(p, request.Closed, request.ErrClosed))
	}
}

// Perform executes plan p on the calling goroutine, bypassing the loop.
func (e *Engine) Perform(p *request.Plan) (*request.Response, error) {
	var resp *request.Response
	var err error
	done, ok := e.tracker.Admit(p, func(r *request.Response, er error) {
		resp, err = r, er
	})
	if !ok {
		return resp, err
	}
	x := newExchange(p, done)
	h := x.handle()
	h.Perform(e.opts.Doer, e.opts.Timeout.Timeout(p))
	x.complete(h)
	return resp, err
}

// Capabilities describes the engine.
func (e *Engine) Capabilities() backend.Capabilities {
	return backend.Capabilities{
		Name:           Name,
		OwnsLoop:       true,
		NativeBlocking: true,
		HeaderPolicy:   header.Strict,
		ParsesHeaders:  true,
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return State(atomic.LoadInt32(&e.state))
}

// Close requests orderly shutdown and blocks until every admitted
// exchange has completed and the loop has stopped. Close must not be
// called from a completion callback.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.tracker.Close()
		e.log.Info("engine shutting down")
		_ = e.mailbox.Send(Message{Kind: KindShutdown})
		e.mailbox.Close()
		<-e.stopped
		e.tracker.Wait()
		e.log.Info("engine stopped")
	})
	return nil
}

func (e *Engine) loop() {
	defer close(e.stopped)

	wake := e.mailbox.Wake()
	for {
		w := e.multi.Wait(wake, e.opts.Heartbeat)
		wakeupsTotal.WithLabelValues(w.String()).Inc()
		if w == WakeTimeout {
			e.log.WithFields(logrus.Fields{
				"state":   e.State().String(),
				"handles": e.multi.Len(),
			}).Debug("engine heartbeat")
		}

		if wake != nil && e.drain() {
			wake = nil
		}

		e.multi.Perform()
		e.multi.Messages(e.finish)

		if wake == nil && e.multi.Len() == 0 {
			break
		}
	}

	e.multi.Close()
	atomic.StoreInt32(&e.state, int32(Stopped))
}

// drain consumes every pending message. It reports true once the
// mailbox is closed and empty.
func (e *Engine) drain() bool {
	for {
		msg, err := e.mailbox.TryRecv()
		if iox.IsWouldBlock(err) {
			return false
		}
		if err != nil {
			e.draining()
			return true
		}

		messagesTotal.WithLabelValues(msg.Kind.String()).Inc()
		switch msg.Kind {
		case KindExchange:
			e.multi.Add(msg.Handle)
			activeHandles.Inc()
		case KindShutdown:
			e.draining()
		}
	}
}

func (e *Engine) draining() {
	if atomic.CompareAndSwapInt32(&e.state, int32(Running), int32(Draining)) {
		e.log.WithField("handles", e.multi.Len()).Info("engine draining")
	}
}

func (e *Engine) finish(h *Easy) {
	e.multi.Remove(h)
	activeHandles.Dec()
	h.Private.(*Exchange).complete(h)
}
