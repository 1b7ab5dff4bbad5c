// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package header implements the response header text protocol shared by
every nttp backend.

Backends deliver a response header block to a Parser one line at a
time. Each line keeps its trailing CRLF:

	HTTP/1.1 404 NOT FOUND\r\n
	Head-Res: response\r\n
	Header: res\r\n
	Content-Length: 3\r\n
	\r\n

The first line of a block is the status line. It is not added to the
field map, but its status code is remembered. A line consisting of only
CRLF terminates the block. Every other line must contain a colon: the
text before the first colon, trimmed, is the key and the text after
the ": " separator, less the trailing CRLF, is the value. When a key
repeats, the last value wins.

A line without a colon, or with an empty key, is malformed, and so,
under the Strict policy, is a colon not followed by a space. The
Tolerant policy accepts a bare colon and drops leading blanks from the
value. Under the
Strict policy Line returns a *request.Error of kind InvalidHeader;
under the Tolerant policy the line is skipped.

When a status line arrives after a terminated block (the transport
followed a redirect, or sent an interim 1xx response), the parser starts
a new block and discards the fields gathered so far, so the final
response carries only its own headers.

Block and Split produce header lines in the shape Parser consumes: Block
renders an *http.Response header, and Split breaks up a raw CRLF block.
*/
package header
