// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backend

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wiomoc/nttp/request"
	"github.com/wiomoc/nttp/transient"
)

// A Tracker accounts for the exchanges of one backend instance from
// admission to completion.
type Tracker struct {
	name   string
	logger logrus.FieldLogger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewTracker returns a tracker for the backend registered under name.
func NewTracker(name string, logger logrus.FieldLogger) *Tracker {
	if logger == nil {
		logger = DiscardLogger()
	}
	return &Tracker{
		name:   name,
		logger: logger.WithField("backend", name),
	}
}

// Logger returns the tracker's logger, already carrying the backend
// field.
func (t *Tracker) Logger() logrus.FieldLogger {
	return t.logger
}

// Log returns a logger carrying the fields that identify exchange p.
func (t *Tracker) Log(p *request.Plan) logrus.FieldLogger {
	u := ""
	if p.URL != nil {
		u = p.URL.String()
	}
	return t.logger.WithFields(logrus.Fields{
		"exchange_id": p.ID,
		"method":      p.Method,
		"url":         u,
	})
}

// Admit registers a new exchange for plan p and returns the OneShot
// through which it must be completed.
//
// If the tracker is closed, Admit completes cb immediately with a
// Closed error and returns nil along with false.
func (t *Tracker) Admit(p *request.Plan, cb Callback) (*OneShot, bool) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		exchangesTotal.WithLabelValues(t.name, Outcome(request.Closed)).Inc()
		t.Log(p).Debug("exchange rejected, backend closed")
		NewOneShot(cb).Fire(nil, request.Wrap(p, request.Closed, request.ErrClosed))
		return nil, false
	}
	t.wg.Add(1)
	t.mu.Unlock()

	exchangesInFlight.WithLabelValues(t.name).Inc()
	log := t.Log(p)
	log.Debug("exchange admitted")
	start := time.Now()

	return NewOneShot(func(resp *request.Response, err error) {
		defer t.wg.Done()
		t.record(log, start, resp, err)
		cb(resp, err)
	}), true
}

// Close stops admitting exchanges. It reports whether this call closed
// the tracker.
func (t *Tracker) Close() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.closed = true
	return true
}

// Closed reports whether Close has been called.
func (t *Tracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Wait blocks until every admitted exchange has completed.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) record(log logrus.FieldLogger, start time.Time, resp *request.Response, err error) {
	elapsed := time.Since(start)
	exchangesInFlight.WithLabelValues(t.name).Dec()
	exchangeDuration.WithLabelValues(t.name).Observe(elapsed.Seconds())

	if err == nil {
		exchangesTotal.WithLabelValues(t.name, outcomeOK).Inc()
		log.WithFields(logrus.Fields{
			"status":   resp.StatusCode(),
			"bytes":    len(resp.Body()),
			"duration": elapsed,
		}).Debug("exchange complete")
		return
	}

	kind, _ := request.KindOf(err)
	exchangesTotal.WithLabelValues(t.name, Outcome(kind)).Inc()
	entry := log.WithError(err).WithField("duration", elapsed)
	if kind == request.TransportError {
		cat := transient.Categorize(err)
		transportErrorsTotal.WithLabelValues(t.name, cat.String()).Inc()
		entry.WithField("category", cat.String()).Warn("exchange failed")
		return
	}
	entry.Debug("exchange failed")
}

// Outcome returns the metric label value for an exchange that failed
// with the given kind.
func Outcome(kind request.Kind) string {
	return strings.ToLower(strings.ReplaceAll(kind.String(), " ", "_"))
}
