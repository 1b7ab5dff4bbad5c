// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiomoc/nttp/timeout"
)

func TestMulti(t *testing.T) {
	gate := make(chan struct{})
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path == "/slow" {
			<-gate
		}
		return fakeResponse(200, "200 OK", nil, strings.NewReader(r.URL.Path)), nil
	})
	m := NewMulti(doer, timeout.Fixed(time.Second))

	t.Run("idle wait times out", func(t *testing.T) {
		assert.Equal(t, WakeTimeout, m.Wait(nil, time.Millisecond))
		assert.Equal(t, 0, m.Perform())
		assert.Equal(t, 0, m.Len())
	})
	t.Run("extra channel", func(t *testing.T) {
		extra := make(chan struct{}, 1)
		extra <- struct{}{}
		assert.Equal(t, WakeExtra, m.Wait(extra, time.Second))
	})
	t.Run("transfers finish", func(t *testing.T) {
		fast := NewEasy(newPlan(t, "GET", "http://example.test/fast", nil))
		slow := NewEasy(newPlan(t, "GET", "http://example.test/slow", nil))
		m.Add(fast)
		m.Add(slow)
		assert.Equal(t, 2, m.Len())

		assert.Equal(t, WakeTransfer, m.Wait(nil, time.Second))
		assert.Equal(t, 1, m.Perform())
		var finished []*Easy
		m.Messages(func(e *Easy) {
			finished = append(finished, e)
			m.Remove(e)
		})
		require.Len(t, finished, 1)
		assert.Same(t, fast, finished[0])
		assert.Equal(t, 1, m.Len())

		close(gate)
		assert.Equal(t, WakeTransfer, m.Wait(nil, time.Second))
		assert.Equal(t, 0, m.Perform())
		finished = nil
		m.Messages(func(e *Easy) {
			finished = append(finished, e)
			m.Remove(e)
		})
		require.Len(t, finished, 1)
		assert.Same(t, slow, finished[0])
		assert.Equal(t, 0, m.Len())
		assert.Equal(t, uint32(200), slow.ResponseCode())
	})
	t.Run("queued transfers wake immediately", func(t *testing.T) {
		a := NewEasy(newPlan(t, "GET", "http://example.test/a", nil))
		b := NewEasy(newPlan(t, "GET", "http://example.test/b", nil))
		m.Add(a)
		m.Add(b)
		require.Equal(t, WakeTransfer, m.Wait(nil, time.Second))
		assert.Equal(t, WakeTransfer, m.Wait(nil, time.Hour))
		n := 0
		for n < 2 {
			m.Perform()
			m.Messages(func(e *Easy) {
				n++
				m.Remove(e)
			})
			if n < 2 {
				require.Equal(t, WakeTransfer, m.Wait(nil, time.Second))
			}
		}
		assert.Equal(t, 0, m.Len())
		assert.Equal(t, 2, n)
	})
	m.Close()
}

func TestMulti_CloseDiscardsFinished(t *testing.T) {
	doer := doerFunc(func(r *http.Request) (*http.Response, error) {
		return fakeResponse(204, "204 No Content", nil, strings.NewReader("")), nil
	})
	m := NewMulti(doer, timeout.Infinite)
	m.Add(NewEasy(newPlan(t, "GET", "http://example.test", nil)))
	done := make(chan struct{})
	go func() {
		m.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on an uncollected transfer")
	}
}

func TestWake_String(t *testing.T) {
	assert.Equal(t, "mailbox", WakeExtra.String())
	assert.Equal(t, "transfer", WakeTransfer.String())
	assert.Equal(t, "heartbeat", WakeTimeout.String())
}
