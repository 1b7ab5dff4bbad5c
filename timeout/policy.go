// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/wiomoc/nttp/request"
)

// A Policy decides the transfer timeout of an exchange from its plan.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines, since backends consult it from their own goroutines.
type Policy interface {
	// Timeout returns the transfer timeout for the exchange that will
	// execute plan p. A non-positive return value means no timeout.
	Timeout(p *request.Plan) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 30 seconds on each exchange.
var DefaultPolicy Policy = Fixed(30 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that returns d for every exchange.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

// ByHost constructs a timeout policy that returns the timeout listed
// in hosts for the plan's URL host (including any port), and falls
// back to def for hosts not listed.
func ByHost(def Policy, hosts map[string]time.Duration) Policy {
	m := make(map[string]time.Duration, len(hosts))
	for h, d := range hosts {
		m[h] = d
	}
	return &byHost{def: def, hosts: m}
}

// PolicyFunc is an adapter to allow the use of ordinary functions as
// timeout policies.
type PolicyFunc func(p *request.Plan) time.Duration

// Timeout calls f(p).
func (f PolicyFunc) Timeout(p *request.Plan) time.Duration {
	return f(p)
}

type fixed time.Duration

func (f fixed) Timeout(_ *request.Plan) time.Duration {
	return time.Duration(f)
}

type byHost struct {
	def   Policy
	hosts map[string]time.Duration
}

func (b *byHost) Timeout(p *request.Plan) time.Duration {
	if p.URL != nil {
		if d, ok := b.hosts[p.URL.Host]; ok {
			return d
		}
	}

	return b.def.Timeout(p)
}
