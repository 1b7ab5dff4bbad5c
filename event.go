// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nttp

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Session to extend it with custom
// functionality.
//
// Events only fire for exchanges that reach a backend. A request
// builder that fails local validation, or is sent twice, completes
// without firing any event.
type Event int

const (
	// BeforeSend identifies the event that occurs before the plan is
	// handed to the backend.
	//
	// When Session fires BeforeSend, the execution is non-nil but the
	// only fields that have been set are the plan and the backend name.
	// BeforeSend handlers may modify the plan, for example to add a
	// header line with Plan.AddHeader.
	BeforeSend Event = iota
	// AfterHandoff identifies the event that occurs when the plan is
	// handed to the backend. The execution's start time is set.
	//
	// Handlers must not modify the plan from AfterHandoff onwards.
	AfterHandoff
	// AfterTimeout identifies the event that occurs after an exchange
	// failed because its transfer timeout elapsed. It fires immediately
	// before AfterComplete.
	AfterTimeout
	// AfterComplete identifies the event that occurs after the
	// exchange completes, regardless of whether it completed
	// successfully or not.
	//
	// When Session fires AfterComplete, exactly one of the execution's
	// response field or its error field is non-nil, and its end time is
	// set. AfterComplete runs on the goroutine that delivers the
	// completion, before the caller's callback is invoked.
	AfterComplete
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeSend",
	"AfterHandoff",
	"AfterTimeout",
	"AfterComplete",
}

// Events returns a slice containing all events which can occur in an
// exchange, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeSend,
		AfterHandoff,
		AfterTimeout,
		AfterComplete,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
