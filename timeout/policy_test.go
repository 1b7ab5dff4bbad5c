// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wiomoc/nttp/request"
)

func TestDefault(t *testing.T) {
	a := DefaultPolicy.Timeout(&request.Plan{})
	assert.Equal(t, 30*time.Second, a)
}

func TestInfinite(t *testing.T) {
	a := Infinite.Timeout(&request.Plan{})
	assert.Equal(t, time.Duration(math.MaxInt64), a)
}

func TestFixed(t *testing.T) {
	p := Fixed(33 * time.Hour)
	assert.Equal(t, 33*time.Hour, p.Timeout(&request.Plan{}))
	assert.Equal(t, 33*time.Hour, p.Timeout(&request.Plan{Method: "POST"}))
}

func TestByHost(t *testing.T) {
	hosts := map[string]time.Duration{
		"slow.example":      time.Minute,
		"fast.example:8080": 50 * time.Millisecond,
	}
	p := ByHost(Fixed(time.Second), hosts)
	hosts["slow.example"] = time.Hour

	slow, err := request.NewPlan("GET", "http://slow.example/a", nil)
	require.NoError(t, err)
	fast, err := request.NewPlan("GET", "http://fast.example:8080/a", nil)
	require.NoError(t, err)
	other, err := request.NewPlan("GET", "https://other.example", nil)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, p.Timeout(slow), "map is copied")
	assert.Equal(t, 50*time.Millisecond, p.Timeout(fast))
	assert.Equal(t, time.Second, p.Timeout(other))
	assert.Equal(t, time.Second, p.Timeout(&request.Plan{}))
}

func TestPolicyFunc(t *testing.T) {
	p := PolicyFunc(func(p *request.Plan) time.Duration {
		if p.Method == "POST" {
			return time.Minute
		}
		return time.Second
	})
	assert.Equal(t, time.Minute, p.Timeout(&request.Plan{Method: "POST"}))
	assert.Equal(t, time.Second, p.Timeout(&request.Plan{Method: "GET"}))
}
