// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package backend defines the capability interface every nttp transport
backend implements, together with the pieces of the completion contract
the backends share.

A Backend accepts request plans through Submit and completes each of
them by invoking its Callback exactly once, with either a Response or an
error, on a goroutine of the backend's choosing. Backends with a native
blocking call also implement Performer.

Send is the synchronous facade. It calls Performer directly when the
backend offers it, and otherwise submits the plan and blocks on a
single-slot rendezvous until the completion fills it.

Tracker is the bookkeeping every backend runs its exchanges through:
Admit wraps a callback in a OneShot that enforces the exactly-once
invariant, records exchange metrics, logs admission and completion, and
lets Close wait until every admitted exchange has completed.

Registry maps backend names to factories so a session can choose its
backend by name at runtime.
*/
package backend
