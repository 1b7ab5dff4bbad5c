// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nttp

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wiomoc/nttp/backend"
	"github.com/wiomoc/nttp/timeout"
	"golang.org/x/net/http2"
)

const (
	envBackend      = "NTTP_BACKEND"
	envTimeout      = "NTTP_TIMEOUT"
	envHeartbeat    = "NTTP_HEARTBEAT"
	envLogLevel     = "NTTP_LOG_LEVEL"
	envDisableHTTP2 = "NTTP_DISABLE_HTTP2"
)

// Config configures a Session. The zero value is a valid configuration
// using the platform's default backend.
type Config struct {
	// Backend names the backend to use. If empty, the platform default
	// is used: "ossession" on darwin, "statuscb" on windows, and
	// "multi" everywhere else.
	Backend string

	// Doer is the transport every backend runs on. If nil, the session
	// creates an http.Client whose transport is configured for HTTP/2
	// and never asks for or decodes compressed bodies, and closes its
	// idle connections when the session is closed.
	Doer backend.HTTPDoer

	// Logger receives log output. If nil, output is discarded.
	Logger logrus.FieldLogger

	// Timeout chooses the transfer timeout of each exchange. If nil,
	// timeout.DefaultPolicy is used.
	Timeout timeout.Policy

	// Heartbeat bounds each wait of a backend that owns its event
	// loop. If zero, backend.DefaultHeartbeat is used.
	Heartbeat time.Duration

	// Handlers is the event handler group. If nil, no handlers run.
	Handlers *HandlerGroup

	// DisableHTTP2 keeps the session-created transport on HTTP/1.1. It
	// has no effect when Doer is set.
	DisableHTTP2 bool
}

// ConfigFromEnv returns a Config populated from the environment:
//
//	NTTP_BACKEND        backend name
//	NTTP_TIMEOUT        fixed transfer timeout, as a time.Duration string
//	NTTP_HEARTBEAT      event loop heartbeat, as a time.Duration string
//	NTTP_LOG_LEVEL      logrus level; enables logging to stderr
//	NTTP_DISABLE_HTTP2  boolean, as accepted by strconv.ParseBool
//
// Unset variables leave the corresponding field at its zero value.
func ConfigFromEnv() (Config, error) {
	var c Config

	c.Backend = os.Getenv(envBackend)
	if v := os.Getenv(envTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("nttp: %s: %w", envTimeout, err)
		}
		c.Timeout = timeout.Fixed(d)
	}
	if v := os.Getenv(envHeartbeat); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("nttp: %s: %w", envHeartbeat, err)
		}
		c.Heartbeat = d
	}
	if v := os.Getenv(envLogLevel); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("nttp: %s: %w", envLogLevel, err)
		}
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(level)
		c.Logger = l
	}
	if v := os.Getenv(envDisableHTTP2); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("nttp: %s: %w", envDisableHTTP2, err)
		}
		c.DisableHTTP2 = b
	}

	return c, nil
}

func (c Config) options() backend.Options {
	return backend.Options{
		Doer:      c.Doer,
		Logger:    c.Logger,
		Timeout:   c.Timeout,
		Heartbeat: c.Heartbeat,
	}
}

func newDefaultClient(disableHTTP2 bool) (*http.Client, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    true,
	}
	if disableHTTP2 {
		t.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	} else if err := http2.ConfigureTransport(t); err != nil {
		return nil, fmt.Errorf("nttp: configure http2: %w", err)
	}
	return &http.Client{Transport: t}, nil
}
