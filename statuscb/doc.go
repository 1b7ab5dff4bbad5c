// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package statuscb implements the nttp backend for callback-driven HTTP
stacks, registered under the name "statuscb".

The transport is modelled by Stack, an HTTP stack in the style of an
operating-system API whose asynchronous operations all report through
one StatusCallback. The callback runs on stack-owned goroutines and
identifies the exchange only by the opaque integer token passed to Open.

Backend keeps the state of each exchange in a table keyed by token. On
every callback it checks the state out of the table, which gives it
exclusive ownership, advances the exchange, and checks the state back
in before asking the stack for the next operation:

	SendComplete     -> ReceiveResponse
	HeadersAvailable -> QueryHeaders, parse, ReadData
	DataAvailable    -> append chunk, ReadData (a zero-length chunk completes)
	RequestError     -> complete with a TransportError

Response headers are parsed with the header.Tolerant policy: malformed
lines are skipped.
*/
package statuscb
