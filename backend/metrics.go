// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package backend

import "github.com/prometheus/client_golang/prometheus"

// Outcome label value for exchanges that completed with a response.
const outcomeOK = "ok"

var (
	exchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nttp_exchanges_total",
			Help: "Total number of completed exchanges by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	exchangesInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nttp_exchanges_in_flight",
			Help: "Number of exchanges admitted by a backend and not yet completed.",
		},
		[]string{"backend"},
	)

	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nttp_exchange_duration_seconds",
			Help:    "Duration from admission to completion of an exchange, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	transportErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nttp_transport_errors_total",
			Help: "Total number of exchanges that failed in the transport, by error category.",
		},
		[]string{"backend", "category"},
	)
)

func init() {
	prometheus.MustRegister(exchangesTotal)
	prometheus.MustRegister(exchangesInFlight)
	prometheus.MustRegister(exchangeDuration)
	prometheus.MustRegister(transportErrorsTotal)
}
