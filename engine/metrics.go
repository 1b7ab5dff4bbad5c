// Copyright 2021 The nttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	activeHandles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nttp_engine_active_handles",
			Help: "Number of transfer handles attached to engine multiplexers.",
		},
	)

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nttp_engine_messages_total",
			Help: "Total number of mailbox messages consumed by engine loops, by kind.",
		},
		[]string{"kind"},
	)

	wakeupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nttp_engine_wakeups_total",
			Help: "Total number of engine loop wakeups, by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(activeHandles)
	prometheus.MustRegister(messagesTotal)
	prometheus.MustRegister(wakeupsTotal)

	for _, k := range []Kind{KindExchange, KindShutdown} {
		messagesTotal.WithLabelValues(k.String())
	}
	for _, w := range []Wake{WakeExtra, WakeTransfer, WakeTimeout} {
		wakeupsTotal.WithLabelValues(w.String())
	}
}
