// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// A Category is the category of a transport error, as reported by
// function Categorize.
//
// Timeout, ConnRefused and ConnReset are transient: a later exchange
// with the same plan has some prospect of success. DNS and TLS are
// usually configuration problems. Not covers everything else.
type Category int

const (
	// Not indicates an error that falls in no other category.
	Not Category = iota
	// Timeout indicates a client-side timeout, typically the transfer
	// timeout chosen by the session's timeout policy.
	//
	// Function Categorize returns Timeout if the error or any of its
	// wrapped causes has a Timeout function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	ConnReset
	// DNS indicates the host name could not be resolved.
	DNS
	// TLS indicates the TLS handshake failed, for example because the
	// peer is not speaking TLS or its certificate is not trusted.
	TLS
)

var categoryNames = []string{
	"other",
	"timeout",
	"conn_refused",
	"conn_reset",
	"dns",
	"tls",
}

// String returns a short snake_case name of the category, suitable as
// a metric label value.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "other"
	}
	return categoryNames[c]
}

// Transient reports whether c indicates a condition that may clear up
// on its own.
func (c Category) Transient() bool {
	return c == Timeout || c == ConnRefused || c == ConnReset
}

// Categorize returns the category of the given error. A nil error
// produces Not.
//
// In assessing the category, Categorize looks at wrapped cause errors
// contained within err, not just err itself. Categorize never checks
// if an error has a Temporary function that returns true, as the
// semantics of Temporary aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DNS
	}

	var recordErr tls.RecordHeaderError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var certInvalid x509.CertificateInvalidError
	if errors.As(err, &recordErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &certInvalid) {
		return TLS
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
