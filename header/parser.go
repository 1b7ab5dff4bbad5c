// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package header

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/wiomoc/nttp/request"
)

// A Policy selects how a Parser treats malformed header lines.
type Policy int

const (
	// Strict makes Line fail with an InvalidHeader error when a line
	// is malformed.
	Strict Policy = iota
	// Tolerant makes Line skip malformed lines silently.
	Tolerant
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Tolerant:
		return "tolerant"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ErrMalformed is the cause wrapped by the InvalidHeader error returned
// for a line with no colon separator or an empty key.
var ErrMalformed = errors.New("malformed header line")

type state int

const (
	expectStatus state = iota
	inFields
	done
)

// A Parser accumulates the header fields of one exchange from header
// lines delivered one at a time.
//
// A Parser is owned by one exchange and is not safe for concurrent use.
type Parser struct {
	// Plan optionally names the exchange in InvalidHeader errors.
	Plan *request.Plan

	policy  Policy
	state   state
	status  uint32
	fields  map[string]string
	skipped int
}

// NewParser returns a Parser applying the given policy to malformed
// lines.
func NewParser(policy Policy) *Parser {
	return &Parser{
		policy: policy,
		fields: make(map[string]string),
	}
}

// Line consumes one header line, including its trailing CRLF.
//
// A field line is split at its first colon. The key is the text before
// it with surrounding blanks trimmed, and must not be empty. Under the
// Strict policy the colon must be followed by a single space, and the
// value is the rest of the line up to the line terminator, kept
// verbatim. Under the Tolerant policy the space is optional and every
// leading blank of the value is dropped.
//
// The returned error is non-nil only under the Strict policy, when line
// is malformed. It is a *request.Error of kind InvalidHeader wrapping
// ErrMalformed. The parser state is unchanged by a malformed line.
func (p *Parser) Line(line []byte) error {
	switch p.state {
	case done:
		if isBlank(line) {
			return nil
		}
		p.fields = make(map[string]string)
		p.status = 0
		fallthrough
	case expectStatus:
		p.status = parseStatus(line)
		p.state = inFields
		return nil
	}

	if isBlank(line) {
		p.state = done
		return nil
	}

	i := bytes.IndexByte(line, ':')
	var key []byte
	if i >= 0 {
		key = bytes.TrimSpace(line[:i])
	}
	if len(key) == 0 {
		if p.policy == Tolerant {
			p.skipped++
			return nil
		}
		return request.Wrap(p.Plan, request.InvalidHeader, fmt.Errorf("%w: %q", ErrMalformed, line))
	}

	var value []byte
	switch {
	case p.policy == Tolerant:
		value = trimEOL(bytes.TrimLeft(line[i+1:], " \t"))
	case bytes.HasPrefix(line[i+1:], []byte(" ")):
		value = trimEOL(line[i+2:])
	default:
		return request.Wrap(p.Plan, request.InvalidHeader, fmt.Errorf("%w: %q", ErrMalformed, line))
	}

	p.fields[string(key)] = string(value)
	return nil
}

// Feed splits a raw CRLF-separated header block into lines and passes
// each of them to Line, stopping at the first error.
func (p *Parser) Feed(raw string) error {
	for _, l := range Split(raw) {
		if err := p.Line([]byte(l)); err != nil {
			return err
		}
	}
	return nil
}

// Fields returns the field map of the current block. The map is owned
// by the parser until the exchange completes; callers building a
// response take it over and must not feed the parser afterwards.
func (p *Parser) Fields() map[string]string {
	return p.fields
}

// Status returns the status code parsed from the status line of the
// current block, or 0 if none was seen or it did not parse.
func (p *Parser) Status() uint32 {
	return p.status
}

// Done reports whether the current block has been terminated by a
// blank line.
func (p *Parser) Done() bool {
	return p.state == done
}

// Skipped returns the number of malformed lines skipped under the
// Tolerant policy.
func (p *Parser) Skipped() int {
	return p.skipped
}

func isBlank(line []byte) bool {
	return len(trimEOL(line)) == 0
}

func trimEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return b
}

// parseStatus extracts the code from a status line such as
// "HTTP/1.1 404 NOT FOUND\r\n".
func parseStatus(line []byte) uint32 {
	f := bytes.Fields(trimEOL(line))
	if len(f) < 2 || len(f[1]) != 3 {
		return 0
	}
	n, err := strconv.ParseUint(string(f[1]), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
