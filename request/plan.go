// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	urlpkg "net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

// A Field is a single request header line.
type Field struct {
	Key   string
	Value string
}

// A Plan describes one HTTP request to be executed by a backend.
//
// A Plan is handed to exactly one backend exactly once. Until then it
// may be modified freely by the goroutine building it (and by
// BeforeSend event handlers). Once handed off, ownership passes to the
// backend, and the Plan must be treated as read-only.
type Plan struct {
	// ID uniquely identifies the exchange that executes the plan. It
	// is assigned by NewPlan and is used to correlate log lines.
	ID string

	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	Method string

	// URL specifies the URL to access. Only the http and https
	// schemes are supported.
	URL *urlpkg.URL

	// Header contains the request header lines in the order they were
	// added. Lines sharing a key are all sent.
	Header []Field

	// Body is the pre-buffered request body to be sent. A nil or
	// empty body indicates no request body should be sent.
	Body []byte

	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host will be sent.
	Host string
}

// NewPlan returns a new Plan given a method, URL, and optional body.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser. If body is an io.Reader, it is
// read to the end and buffered into a []byte. If body is an
// io.ReadCloser, it is closed after buffering.
//
// Any returned error is an *Error. An unparseable URL, a URL without a
// host, or a URL whose scheme is not http or https produces Kind
// UnsupportedURL. An invalid method or body produces InvalidRequest.
func NewPlan(method, url string, body interface{}) (*Plan, error) {
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, newError(method, url, InvalidRequest, fmt.Errorf("invalid method %q", method))
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, newError(method, url, UnsupportedURL, err)
	}
	if err = checkURL(u); err != nil {
		return nil, newError(method, url, UnsupportedURL, err)
	}
	u.Host = removeEmptyPort(u.Host)
	b, err := BodyBytes(body)
	if err != nil {
		return nil, newError(method, url, InvalidRequest, err)
	}
	return &Plan{
		ID:     NewID(),
		Method: method,
		URL:    u,
		Body:   b,
		Host:   u.Host,
	}, nil
}

// AddHeader appends a header line to the plan. Existing lines with the
// same key are kept.
//
// An *Error of Kind InvalidRequest is returned if key is not a valid
// header field name or value is not a valid header field value.
func (p *Plan) AddHeader(key, value string) error {
	if !httpguts.ValidHeaderFieldName(key) {
		return Wrap(p, InvalidRequest, fmt.Errorf("invalid header field name %q", key))
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return Wrap(p, InvalidRequest, fmt.Errorf("invalid header field value for %q", key))
	}
	p.Header = append(p.Header, Field{Key: key, Value: value})
	return nil
}

// Values returns the values of every header line whose key matches key
// exactly, in the order they were added.
func (p *Plan) Values(key string) []string {
	var vs []string
	for _, f := range p.Header {
		if f.Key == key {
			vs = append(vs, f.Value)
		}
	}
	return vs
}

// ToRequest creates an HTTP request corresponding to the plan. The
// context of the new request is set to ctx, which may not be nil.
//
// Every header line in the plan is added to the request, so duplicate
// keys produce duplicate lines on the wire. A "Host" line overrides
// the request host.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	r.URL = p.URL
	r.Header = make(http.Header, len(p.Header))
	r.Host = p.Host
	for _, f := range p.Header {
		if http.CanonicalHeaderKey(f.Key) == "Host" {
			r.Host = f.Value
			continue
		}
		r.Header.Add(f.Key, f.Value)
	}
	if len(p.Body) > 0 {
		r.Body = ioutil.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return ioutil.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
	}
	return r
}

func checkURL(u *urlpkg.URL) error {
	switch u.Scheme {
	case "http", "https":
	case "":
		return fmt.Errorf("missing protocol scheme")
	default:
		return fmt.Errorf("unsupported protocol scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("no host in request URL")
	}
	return nil
}

func validMethod(method string) bool {
	/*
	     Method         = "OPTIONS"                ; Section 9.2
	                    | "GET"                    ; Section 9.3
	                    | "HEAD"                   ; Section 9.4
	                    | "POST"                   ; Section 9.5
	                    | "PUT"                    ; Section 9.6
	                    | "DELETE"                 ; Section 9.7
	                    | "TRACE"                  ; Section 9.8
	                    | "CONNECT"                ; Section 9.9
	                    | extension-method
	   extension-method = token
	     token          = 1*<any CHAR except CTLs or separators>

	   We don't need to check for length more than 1 because we always
	   interpret the empty string as "GET".
	*/
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
