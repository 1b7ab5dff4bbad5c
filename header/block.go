// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"net/http"
	"sort"
	"strings"
)

const crlf = "\r\n"

// Block renders a header block as the lines a native transfer stack
// would deliver: the status line, one "Key: Value" line per value with
// keys in sorted order, then the blank terminator. Every line ends in
// CRLF.
//
// The status parameter is the status text including the code, as in
// http.Response.Status ("404 NOT FOUND").
func Block(proto, status string, h http.Header) []string {
	keys := make([]string, 0, len(h))
	n := 2
	for k, vs := range h {
		keys = append(keys, k)
		n += len(vs)
	}
	sort.Strings(keys)

	lines := make([]string, 0, n)
	lines = append(lines, proto+" "+status+crlf)
	for _, k := range keys {
		for _, v := range h[k] {
			lines = append(lines, k+": "+v+crlf)
		}
	}
	return append(lines, crlf)
}

// Raw renders a header block as a single CRLF-separated string, the
// shape returned by native stacks that hand over all headers at once.
func Raw(proto, status string, h http.Header) string {
	return strings.Join(Block(proto, status, h), "")
}

// Split breaks a raw header block into lines, each keeping its CRLF.
// A final fragment without a line terminator is given one.
func Split(raw string) []string {
	var lines []string
	for len(raw) > 0 {
		i := strings.IndexByte(raw, '\n')
		if i < 0 {
			lines = append(lines, raw+crlf)
			break
		}
		lines = append(lines, raw[:i+1])
		raw = raw[i+1:]
	}
	return lines
}
