// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wiomoc/nttp/transient"
)

// ErrClosed is wrapped by every *Error of Kind Closed.
var ErrClosed = errors.New("backend closed")

// A Kind classifies an *Error.
type Kind int

const (
	// TransportError indicates the underlying transport failed, for
	// example because the connection was refused, TLS negotiation
	// failed, or DNS resolution failed. The wrapped error is the
	// transport's own error.
	TransportError Kind = iota
	// InvalidHeader indicates a response header line could not be
	// parsed by a backend that enforces strict header parsing.
	InvalidHeader
	// UnsupportedURL indicates the URL could not be parsed, or its
	// scheme is not supported.
	UnsupportedURL
	// InvalidRequest indicates a local validation failure other than
	// the URL: an invalid method, header field, or body, or a request
	// builder that was already sent.
	InvalidRequest
	// Closed indicates the request was submitted to a session or
	// backend that has already been closed.
	Closed
)

var kindNames = []string{
	"transport error",
	"invalid header",
	"unsupported URL",
	"invalid request",
	"closed",
}

// String returns a short human-readable name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// An Error is the error delivered through the completion of an
// exchange which did not produce a Response.
type Error struct {
	Kind Kind
	Op   string
	URL  string
	Err  error
}

// Error renders the error in the same shape as *url.Error, with the
// kind inserted before the cause.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying cause is a timeout.
func (e *Error) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// Wrap wraps err in an *Error of the given kind describing plan p.
//
// If err is already an *Error it is returned unchanged. Parameter p may
// be nil, in which case Op is "Get" and URL is empty.
func Wrap(p *Plan, kind Kind, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if p == nil {
		return newError("", "", kind, err)
	}
	u := ""
	if p.URL != nil {
		u = p.URL.String()
	}
	return newError(p.Method, u, kind, err)
}

// KindOf returns the Kind of the first *Error in err's chain, and false
// if there is none.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func newError(method, url string, kind Kind, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   urlErrorOp(method),
		URL:  url,
		Err:  err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
