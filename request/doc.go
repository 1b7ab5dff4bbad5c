// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the data model shared by every nttp backend:
Plan (describes one HTTP request to be handed to a backend), Response
(the immutable result of a completed exchange), Headers (a read-only
view over a Response's header map), Error (the single error type
delivered through every completion), and Execution (the view of an
exchange handed to event handlers).

A Plan is the backend-neutral "native request object". It is built by
the session's request builder and handed, exactly once, to a backend
for execution:

	p, err := request.NewPlan("POST", "http://localhost:8080/upload", "ABC")
	...
	err = p.AddHeader("Content-Type", "text/plain")
	...

Header lines added to a plan are kept in order and are all sent, even
when several lines share a key.

A Response is produced exactly once, at completion, and is never
mutated afterwards. Duplicate response header lines collapse to the
last value received.

Every failure an exchange can end with is an *Error. Its Kind tells a
transport failure (TransportError) apart from local validation failures
(InvalidHeader, UnsupportedURL, InvalidRequest) and from submission to a
closed session (Closed).
*/
package request
