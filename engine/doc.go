// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package engine implements the descriptor-multiplexed nttp backend,
registered under the name "multi".

An Engine owns one event loop goroutine. Submit boxes the plan into an
Exchange, pairs it with a native transfer handle (Easy), and sends both
through a mailbox to the loop without blocking. Each loop step waits on
the mailbox wake handle and on the transfer multiplexer (Multi) with a
bounded heartbeat, drains every pending message, performs one
multiplexer step, and completes every finished transfer by invoking its
exchange's callback exactly once.

The loop goroutine is the only mutator of the multiplexer and its
handle table. While a transfer is in flight its exchange buffers belong
to the transfer goroutine; they are handed back to the loop when the
multiplexer reports the transfer finished.

Close moves the engine from Running to Draining. The loop keeps running
until every admitted exchange has completed, then releases the
multiplexer and moves to Stopped. Close returns only after that.

Response header lines are parsed with the header.Strict policy: a
malformed line aborts the transfer with an InvalidHeader error.

Engine also implements backend.Performer. Perform runs one Easy handle
on the calling goroutine, bypassing the loop.
*/
package engine
