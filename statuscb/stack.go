// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package statuscb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/header"
	"github.com/wiomoc/nttp/request"
	"golang.org/x/net/idna"
)

// A Status identifies the notification delivered to a StatusCallback.
type Status int

const (
	// SendComplete reports that the request was sent.
	SendComplete Status = iota
	// HeadersAvailable reports that the response headers can be
	// queried with QueryHeaders.
	HeadersAvailable
	// DataAvailable reports a chunk of response body. A zero-length
	// chunk means the body is complete.
	DataAvailable
	// RequestError reports that the pending operation failed.
	RequestError
)

func (s Status) String() string {
	switch s {
	case SendComplete:
		return "send_complete"
	case HeadersAvailable:
		return "headers_available"
	case DataAvailable:
		return "data_available"
	case RequestError:
		return "request_error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// A StatusCallback receives every notification of a Stack. The data
// parameter is set for DataAvailable, and err for RequestError.
type StatusCallback func(token uint32, status Status, data []byte, err error)

// ErrInvalidHandle is returned by Stack operations on a token that is
// not open.
var ErrInvalidHandle = errors.New("statuscb: invalid handle")

type handle struct {
	req    *http.Request
	cancel context.CancelFunc
	resp   *http.Response
}

// A Stack is a callback-driven HTTP stack running on an HTTPDoer.
type Stack struct {
	doer     backend.HTTPDoer
	callback StatusCallback

	mu      sync.Mutex
	handles map[uint32]*handle
	ops     sync.WaitGroup
}

// NewStack returns a stack delivering notifications to cb.
func NewStack(doer backend.HTTPDoer, cb StatusCallback) *Stack {
	return &Stack{
		doer:     doer,
		callback: cb,
		handles:  make(map[uint32]*handle),
	}
}

// Open cracks the plan's URL and opens a request handle under token,
// bounding the whole exchange by d. A non-positive d means no bound.
// Open fails with an UnsupportedURL error if the scheme is not http or
// https, or the host cannot be converted to its ASCII form.
func (s *Stack) Open(token uint32, p *request.Plan, d time.Duration) error {
	u, err := crack(p)
	if err != nil {
		return err
	}

	ctx, cancel := context.Background(), context.CancelFunc(func() {})
	if d > 0 && d < time.Duration(1<<63-1) {
		ctx, cancel = context.WithTimeout(ctx, d)
	}
	req := p.ToRequest(ctx)
	if req.Host == p.URL.Host {
		req.Host = u.Host
	}
	req.URL = u

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handles[token]; ok {
		cancel()
		return fmt.Errorf("statuscb: token %d already open", token)
	}
	s.handles[token] = &handle{req: req, cancel: cancel}
	return nil
}

// Send sends the request asynchronously. It is followed by either
// SendComplete or RequestError.
func (s *Stack) Send(token uint32) error {
	h, err := s.get(token)
	if err != nil {
		return err
	}
	s.async(func() {
		resp, err := s.doer.Do(h.req)
		if err != nil {
			s.callback(token, RequestError, nil, err)
			return
		}
		s.mu.Lock()
		h.resp = resp
		s.mu.Unlock()
		s.callback(token, SendComplete, nil, nil)
	})
	return nil
}

// ReceiveResponse waits asynchronously for the response headers. It is
// followed by HeadersAvailable.
func (s *Stack) ReceiveResponse(token uint32) error {
	h, err := s.get(token)
	if err != nil {
		return err
	}
	if s.response(h) == nil {
		return fmt.Errorf("statuscb: token %d: request not sent", token)
	}
	s.async(func() {
		s.callback(token, HeadersAvailable, nil, nil)
	})
	return nil
}

// QueryHeaders returns the status code and the raw CRLF-separated
// header block of the response, status line first.
func (s *Stack) QueryHeaders(token uint32) (uint32, string, error) {
	h, err := s.get(token)
	if err != nil {
		return 0, "", err
	}
	resp := s.response(h)
	if resp == nil {
		return 0, "", fmt.Errorf("statuscb: token %d: no response", token)
	}
	return uint32(resp.StatusCode), header.Raw(resp.Proto, resp.Status, resp.Header), nil
}

// ReadData reads up to max bytes of the response body asynchronously.
// It is followed by DataAvailable or RequestError.
func (s *Stack) ReadData(token uint32, max int) error {
	h, err := s.get(token)
	if err != nil {
		return err
	}
	resp := s.response(h)
	if resp == nil {
		return fmt.Errorf("statuscb: token %d: no response", token)
	}
	s.async(func() {
		buf := make([]byte, max)
		var n int
		var err error
		for n == 0 && err == nil {
			n, err = resp.Body.Read(buf)
		}
		if n > 0 {
			s.callback(token, DataAvailable, buf[:n], nil)
			return
		}
		if err == io.EOF {
			s.callback(token, DataAvailable, nil, nil)
			return
		}
		s.callback(token, RequestError, nil, err)
	})
	return nil
}

// CloseHandle releases the handle opened under token.
func (s *Stack) CloseHandle(token uint32) error {
	s.mu.Lock()
	h, ok := s.handles[token]
	delete(s.handles, token)
	var resp *http.Response
	if ok {
		resp = h.resp
	}
	s.mu.Unlock()
	if !ok {
		return ErrInvalidHandle
	}
	if resp != nil {
		resp.Body.Close()
	}
	h.cancel()
	return nil
}

// Len returns the number of open handles.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Wait blocks until no asynchronous operation is pending.
func (s *Stack) Wait() {
	s.ops.Wait()
}

func (s *Stack) get(token uint32) (*handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[token]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return h, nil
}

func (s *Stack) response(h *handle) *http.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return h.resp
}

func (s *Stack) async(op func()) {
	s.ops.Add(1)
	go func() {
		defer s.ops.Done()
		op()
	}()
}

// crack returns a copy of the plan's URL with its host converted to
// ASCII.
func crack(p *request.Plan) (*url.URL, error) {
	if p.URL == nil {
		return nil, request.Wrap(p, request.UnsupportedURL, errors.New("no URL"))
	}
	switch p.URL.Scheme {
	case "http", "https":
	default:
		return nil, request.Wrap(p, request.UnsupportedURL, fmt.Errorf("unsupported protocol scheme %q", p.URL.Scheme))
	}

	u := *p.URL
	host := u.Hostname()
	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return nil, request.Wrap(p, request.UnsupportedURL, err)
		}
		if port := u.Port(); port != "" {
			u.Host = net.JoinHostPort(ascii, port)
		} else {
			u.Host = ascii
		}
	}
	return &u, nil
}
