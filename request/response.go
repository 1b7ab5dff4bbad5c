// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "sort"

// A Response is the immutable result of a completed exchange.
//
// A Response is constructed once, when the exchange completes, and is
// never modified afterwards. It is safe for concurrent read access.
// Callers must not modify the slice returned by Body.
type Response struct {
	statusCode uint32
	body       []byte
	header     map[string]string
}

// NewResponse constructs a Response. The Response takes ownership of
// body and header; the caller must not modify them afterwards. A nil
// header is treated as empty.
func NewResponse(statusCode uint32, body []byte, header map[string]string) *Response {
	if header == nil {
		header = map[string]string{}
	}
	return &Response{
		statusCode: statusCode,
		body:       body,
		header:     header,
	}
}

// StatusCode returns the HTTP status code of the response.
func (r *Response) StatusCode() uint32 {
	return r.statusCode
}

// Body returns the complete response body.
func (r *Response) Body() []byte {
	return r.body
}

// Headers returns a read-only view over the response headers.
func (r *Response) Headers() Headers {
	return Headers{m: r.header}
}

// Headers is a read-only view over the header map of a Response.
//
// Keys are in the canonical form of net/http (see
// http.CanonicalHeaderKey), whatever casing the peer used on the wire:
// "x-lower" is stored as "X-Lower". Lookups match keys exactly and are
// not case-normalized, so Get("x-lower") finds nothing. When the peer
// sent several lines with the same key, only the last value is present.
type Headers struct {
	m map[string]string
}

// List returns the header keys, sorted.
func (h Headers) List() []string {
	keys := make([]string, 0, len(h.m))
	for k := range h.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of the header with the exact key, and whether
// it was present.
func (h Headers) Get(key string) (string, bool) {
	v, ok := h.m[key]
	return v, ok
}

// Len returns the number of distinct header keys.
func (h Headers) Len() int {
	return len(h.m)
}
