// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock(t *testing.T) {
	h := http.Header{
		"Header":         {"res"},
		"Head-Res":       {"response"},
		"Content-Length": {"3"},
		"Set-Cookie":     {"a=1", "b=2"},
	}
	lines := Block("HTTP/1.1", "404 NOT FOUND", h)
	assert.Equal(t, []string{
		"HTTP/1.1 404 NOT FOUND\r\n",
		"Content-Length: 3\r\n",
		"Head-Res: response\r\n",
		"Header: res\r\n",
		"Set-Cookie: a=1\r\n",
		"Set-Cookie: b=2\r\n",
		"\r\n",
	}, lines)

	t.Run("round trip through parser", func(t *testing.T) {
		p := NewParser(Strict)
		for _, l := range lines {
			require.NoError(t, p.Line([]byte(l)))
		}
		assert.True(t, p.Done())
		assert.Equal(t, uint32(404), p.Status())
		assert.Equal(t, map[string]string{
			"Content-Length": "3",
			"Head-Res":       "response",
			"Header":         "res",
			"Set-Cookie":     "b=2",
		}, p.Fields())
	})
}

func TestBlock_Empty(t *testing.T) {
	assert.Equal(t, []string{"HTTP/2.0 200 OK\r\n", "\r\n"}, Block("HTTP/2.0", "200 OK", nil))
}

func TestRaw(t *testing.T) {
	raw := Raw("HTTP/1.1", "200 OK", http.Header{"A": {"1"}})
	assert.Equal(t, "HTTP/1.1 200 OK\r\nA: 1\r\n\r\n", raw)
}

func TestSplit(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"empty", "", nil},
		{"full block", "HTTP/1.1 200 OK\r\nA: 1\r\n\r\n", []string{"HTTP/1.1 200 OK\r\n", "A: 1\r\n", "\r\n"}},
		{"unterminated tail", "HTTP/1.1 200 OK\r\nA: 1", []string{"HTTP/1.1 200 OK\r\n", "A: 1\r\n"}},
		{"bare LF", "HTTP/1.1 200 OK\nA: 1\n\n", []string{"HTTP/1.1 200 OK\n", "A: 1\n", "\n"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Split(testCase.raw))
		})
	}
}
