// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for choosing the transfer timeout
// of each exchange. A generic interface for timeout policies is
// provided, Policy, along with a few policy generating functions and
// built-in policies.
//
// A transfer timeout bounds the whole exchange, from connection setup
// until the last body byte is read. A transfer that exceeds it
// completes with a TransportError whose Timeout method returns true.
package timeout
