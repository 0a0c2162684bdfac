package socket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	emitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "socket_emits_total",
			Help:      "Acknowledged requests sent over the socket.",
		},
		[]string{"event"},
	)

	ackFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "socket_ack_failures_total",
			Help:      "EmitWithAck calls that failed at the transport layer.",
		},
		[]string{"reason"},
	)

	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "socket_reconnects_total",
			Help:      "Successful reconnections after a dropped connection.",
		},
	)

	pushesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "socket_pushes_received_total",
			Help:      "Push frames received, by event name.",
		},
		[]string{"event"},
	)
)
