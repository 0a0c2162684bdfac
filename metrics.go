package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "logins_total",
			Help:      "Successful credential exchanges.",
		},
	)

	sessionsRestoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "sessions_restored_total",
			Help:      "Sessions restored from persisted credentials.",
		},
	)

	membersChangedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "members_changed_total",
			Help:      "Membership change pushes accepted for the active household.",
		},
	)
)
