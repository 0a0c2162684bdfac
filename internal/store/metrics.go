package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "optimistic_rollbacks_total",
			Help:      "Optimistic mutations reverted after a remote failure.",
		},
	)

	reloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "store_reloads_total",
			Help:      "Full store reloads, by store name.",
		},
		[]string{"store"},
	)
)
