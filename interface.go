// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nttp

import (
	"github.com/wiomoc/nttp/request"
)

// Requester is the interface that wraps the basic Request method.
//
// Request creates a request builder for the given method and URL.
// Session implements the Requester interface.
type Requester interface {
	Request(method, url string) *RequestBuilder
}

// Get uses the specified Requester to issue a GET to the specified URL
// and waits for the response.
//
// To send a request with custom headers, use r.Request.
func Get(r Requester, url string) (*request.Response, error) {
	return r.Request("GET", url).Send()
}

// Post uses the specified Requester to issue a POST to the specified
// URL and waits for the response.
//
// The body parameter may be nil for an empty body, or may be any of the
// types supported by request.BodyBytes, namely: string; []byte;
// io.Reader; and io.ReadCloser. If contentType is empty no Content-Type
// header line is sent.
func Post(r Requester, url, contentType string, body interface{}) (*request.Response, error) {
	b := r.Request("POST", url)
	if contentType != "" {
		b.Header("Content-Type", contentType)
	}
	return b.Body(body).Send()
}
