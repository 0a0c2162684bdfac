package pushq

import (
	"fmt"
	"hash/fnv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pushesDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "pushes_dispatched_total",
			Help:      "Push events accepted into the dispatch queue.",
		},
		[]string{"shard"},
	)

	pushesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "pushes_dropped_total",
			Help:      "Push events dropped because the dispatch queue was full or closed.",
		},
		[]string{"shard"},
	)

	handlerPanicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "platewise_client",
			Name:      "push_handler_panics_total",
			Help:      "Push handlers that panicked and were recovered.",
		},
		[]string{"shard"},
	)

	handlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "platewise_client",
			Name:      "push_handler_duration_seconds",
			Help:      "Time spent running a single push handler.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)
)

// shardHash hashes an event name to a stable shard index in [0, shards).
func shardHash(event string, shards int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(event))
	return int(h.Sum32() % uint32(shards))
}

func labelFor(shard int) string { return fmt.Sprintf("%d", shard) }
