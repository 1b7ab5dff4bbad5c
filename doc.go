// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package nttp provides one HTTP request/response API over three
incompatible transport models: a descriptor-multiplexed engine with its
own event loop ("multi"), an OS-managed session delivering one
completion per exchange ("ossession"), and a status-callback stack that
re-enters through an opaque token ("statuscb").

Create a Session to begin making requests. The zero Config selects the
platform's default backend.

	s, err := nttp.NewSession(nttp.Config{})
	...
	defer s.Close()
	resp, err := s.Request("POST", "http://example.com/test").
		Header("Content-Type", "text/plain").
		Body("ABC").
		Send()

Send blocks until the exchange completes. SendAsync returns at once and
invokes its callback exactly once, with either the response or an error:

	s.Request("GET", "http://example.com").SendAsync(
		func(resp *request.Response, err error) {
			...
		})

Every error delivered to the caller has the type *request.Error. Its
Kind says whether the transport failed, a response header could not be
parsed, the URL is unsupported, the request was invalid, or the session
was already closed.

To choose a backend explicitly, name it in the Config:

	s, err := nttp.NewSession(nttp.Config{
		Backend: "statuscb",
		Timeout: timeout.Fixed(5*time.Second),
	})

To hook into each exchange, install a handler into the appropriate
handler chain:

	handlers := &nttp.HandlerGroup{}
	handlers.PushBack(nttp.AfterComplete, nttp.HandlerFunc(
		func(_ nttp.Event, e *request.Execution) {
			log.Printf("%s %s took %s", e.Plan.Method, e.Plan.URL, e.Duration())
		}))
	s, err := nttp.NewSession(nttp.Config{Handlers: handlers})

Close waits until every exchange already sent has completed. No
callback fires after Close returns.
*/
package nttp
