// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package ossession implements the nttp backend for transports that
manage their own transfers and report each one through a single
completion, registered under the name "ossession".

The transport is modelled by Session, a URL-loading session in the
style of an operating-system HTTP stack: DataTask creates a task for a
plan, Resume starts it on a worker goroutine the session owns, and the
task reports one Completion carrying either the body and response
metadata, or an error.

Backend adapts that model to the nttp completion contract. No event
loop is created: each completion is translated into a Response or a
*request.Error on the session's worker goroutine and delivered through
a one-shot callback. Response headers arrive pre-parsed as a dictionary;
when a key repeats, its last value wins.
*/
package ossession
