// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/request"
)

var echoServer *httptest.Server

func TestMain(m *testing.M) {
	echoServer = httptest.NewServer(http.HandlerFunc(echo))
	code := m.Run()
	echoServer.Close()
	os.Exit(code)
}

// echo replies with the request body, after an optional delay given in
// milliseconds by the "sleep" query parameter, and copies the X-Echo
// request header into the response.
func echo(w http.ResponseWriter, r *http.Request) {
	if ms := r.URL.Query().Get("sleep"); ms != "" {
		var n int
		fmt.Sscan(ms, &n)
		time.Sleep(time.Duration(n) * time.Millisecond)
	}
	b, _ := ioutil.ReadAll(r.Body)
	w.Header().Set("X-Echo", r.Header.Get("X-Echo"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type outcome struct {
	resp *request.Response
	err  error
}

func newEngine(t *testing.T) *Engine {
	e := New(backend.Options{Doer: echoServer.Client(), Heartbeat: 50 * time.Millisecond})
	require.Equal(t, Running, e.State())
	return e
}

func TestEngine_Submit(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	p := newPlan(t, "POST", echoServer.URL+"/submit", "hello")
	require.NoError(t, p.AddHeader("X-Echo", "round-trip"))
	ch := make(chan outcome, 2)
	e.Submit(p, func(resp *request.Response, err error) {
		ch <- outcome{resp, err}
	})

	select {
	case o := <-ch:
		require.NoError(t, o.err)
		assert.Equal(t, uint32(200), o.resp.StatusCode())
		assert.Equal(t, "hello", string(o.resp.Body()))
		v, ok := o.resp.Headers().Get("X-Echo")
		assert.True(t, ok)
		assert.Equal(t, "round-trip", v)
	case <-time.After(5 * time.Second):
		t.Fatal("callback did not fire")
	}
	select {
	case <-ch:
		t.Fatal("callback fired twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestEngine_ConcurrencyIsolation(t *testing.T) {
	const n = 50
	e := newEngine(t)
	defer e.Close()

	plans := make([]*request.Plan, n)
	for i := range plans {
		body := fmt.Sprintf("body-%d", i)
		plans[i] = newPlan(t, "PUT", fmt.Sprintf("%s/iso?sleep=%d", echoServer.URL, i%7), body)
		require.NoError(t, plans[i].AddHeader("X-Echo", body))
	}

	var wg sync.WaitGroup
	results := make([]outcome, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			e.Submit(plans[i], func(resp *request.Response, err error) {
				results[i] = outcome{resp, err}
				wg.Done()
			})
		}(i)
	}
	wg.Wait()

	for i, o := range results {
		want := fmt.Sprintf("body-%d", i)
		require.NoError(t, o.err)
		assert.Equal(t, want, string(o.resp.Body()))
		v, _ := o.resp.Headers().Get("X-Echo")
		assert.Equal(t, want, v)
	}
}

func TestEngine_OrderlyShutdown(t *testing.T) {
	const k = 10
	e := newEngine(t)

	var fired int32
	for i := 0; i < k; i++ {
		p := newPlan(t, "GET", echoServer.URL+"/drain?sleep=100", nil)
		e.Submit(p, func(resp *request.Response, err error) {
			assert.NoError(t, err)
			atomic.AddInt32(&fired, 1)
		})
	}

	start := time.Now()
	require.NoError(t, e.Close())
	assert.Equal(t, int32(k), atomic.LoadInt32(&fired))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, Stopped, e.State())

	require.NoError(t, e.Close(), "Close is idempotent")
}

func TestEngine_DrainingState(t *testing.T) {
	const k = 4
	e := newEngine(t)
	assert.Equal(t, Running, e.State())

	var fired int32
	for i := 0; i < k; i++ {
		p := newPlan(t, "GET", echoServer.URL+"/drain?sleep=300", nil)
		e.Submit(p, func(resp *request.Response, err error) {
			assert.NoError(t, err)
			atomic.AddInt32(&fired, 1)
		})
	}

	closed := make(chan error, 1)
	go func() {
		closed <- e.Close()
	}()

	require.Eventually(t, func() bool {
		return e.State() == Draining
	}, 250*time.Millisecond, time.Millisecond)
	assert.Less(t, atomic.LoadInt32(&fired), int32(k))

	var late error
	e.Submit(newPlan(t, "GET", echoServer.URL, nil), func(resp *request.Response, err error) {
		late = err
	})
	kind, ok := request.KindOf(late)
	assert.True(t, ok)
	assert.Equal(t, request.Closed, kind)

	require.NoError(t, <-closed)
	assert.Equal(t, int32(k), atomic.LoadInt32(&fired))
	assert.Equal(t, Stopped, e.State())
}

func TestEngine_SubmitAfterClose(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Close())

	var got []outcome
	e.Submit(newPlan(t, "GET", echoServer.URL, nil), func(resp *request.Response, err error) {
		got = append(got, outcome{resp, err})
	})
	require.Len(t, got, 1, "fires synchronously when closed")
	assert.Nil(t, got[0].resp)
	kind, ok := request.KindOf(got[0].err)
	assert.True(t, ok)
	assert.Equal(t, request.Closed, kind)

	resp, err := e.Perform(newPlan(t, "GET", echoServer.URL, nil))
	assert.Nil(t, resp)
	kind, _ = request.KindOf(err)
	assert.Equal(t, request.Closed, kind)
}

func TestEngine_TransportFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	e := newEngine(t)
	var calls int32
	done := make(chan error, 1)
	e.Submit(newPlan(t, "GET", "http://"+addr+"/refused", nil), func(resp *request.Response, err error) {
		atomic.AddInt32(&calls, 1)
		assert.Nil(t, resp)
		done <- err
	})
	require.NoError(t, e.Close())

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	err = <-done
	kind, ok := request.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, request.TransportError, kind)
}

func TestEngine_StrictHeaders(t *testing.T) {
	doer := doerFunc(func(*http.Request) (*http.Response, error) {
		return fakeResponse(200, "200 OK", http.Header{
			"Good": {"yes"},
			"   ":  {"no key"},
		}, strings.NewReader("body")), nil
	})
	e := New(backend.Options{Doer: doer})
	defer e.Close()

	done := make(chan error, 1)
	e.Submit(newPlan(t, "GET", "http://example.test", nil), func(resp *request.Response, err error) {
		assert.Nil(t, resp)
		done <- err
	})
	err := <-done
	kind, ok := request.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, request.InvalidHeader, kind)
}

func TestEngine_Perform(t *testing.T) {
	e := newEngine(t)
	defer e.Close()

	before := testutil.ToFloat64(messagesTotal.WithLabelValues("exchange"))
	resp, err := backend.Send(e, newPlan(t, "POST", echoServer.URL+"/perform", "native"))
	require.NoError(t, err)
	assert.Equal(t, "native", string(resp.Body()))
	assert.Equal(t, before, testutil.ToFloat64(messagesTotal.WithLabelValues("exchange")),
		"native blocking call bypasses the loop")
}

func TestEngine_Capabilities(t *testing.T) {
	e := newEngine(t)
	defer e.Close()
	c := e.Capabilities()
	assert.Equal(t, "multi", c.Name)
	assert.True(t, c.OwnsLoop)
	assert.True(t, c.NativeBlocking)
	assert.True(t, c.ParsesHeaders)
}

func TestEngine_Heartbeat(t *testing.T) {
	before := testutil.ToFloat64(wakeupsTotal.WithLabelValues("heartbeat"))
	e := New(backend.Options{Doer: echoServer.Client(), Heartbeat: 5 * time.Millisecond})
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, e.Close())
	assert.Greater(t, testutil.ToFloat64(wakeupsTotal.WithLabelValues("heartbeat")), before)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "draining", Draining.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "unknown", State(9).String())
	assert.Equal(t, "exchange", KindExchange.String())
	assert.Equal(t, "shutdown", KindShutdown.String())
}
