// Package pushq provides a lightweight sharded dispatch queue for push
// events received over the socket. Events with the same name run in FIFO
// order on one shard; different event names may run in parallel. Handlers
// are never retried: push events are invalidation signals and the reloads
// they trigger are idempotent, so a dropped or failed event is recovered by
// the next one.
//
// Contract: Submit for the same event name must not be called
// concurrently. The socket read loop is the single producer, which satisfies
// this naturally.
package pushq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrDispatcherClosed is returned by Submit after Stop.
var ErrDispatcherClosed = errors.New("pushq: dispatcher closed")

// ErrQueueFull is returned when a shard stays full past the enqueue timeout.
var ErrQueueFull = errors.New("pushq: queue full")

// Job is a unit of work executed by a Dispatcher.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc lets plain closures satisfy Job.
type JobFunc func(ctx context.Context) error

// Run implements Job.
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

type queuedJob struct {
	ctx context.Context
	job Job
}

// Dispatcher executes Jobs on worker goroutines partitioned by a stable hash
// of the event name.
type Dispatcher struct {
	cfg    Config
	queues []chan queuedJob // len == cfg.Shards

	done   chan struct{} // closed in Stop()
	closed uint32        // 0 running, 1 closed

	wg sync.WaitGroup
}

// NewDispatcher constructs the dispatcher and starts its shard workers.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Shards <= 0 {
		cfg.Shards = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.EnqueueTimeout <= 0 {
		cfg.EnqueueTimeout = 50 * time.Millisecond
	}

	d := &Dispatcher{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		d.queues[i] = ch
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
	return d
}

// Submit enqueues job on the shard derived from event.
//
//   - Returns nil on success.
//   - Returns ErrDispatcherClosed if the dispatcher is stopped.
//   - Returns ErrQueueFull if the shard is still full after EnqueueTimeout.
//   - Returns ctx.Err() if the caller-provided context is cancelled first.
func (d *Dispatcher) Submit(ctx context.Context, event string, job Job) error {
	if atomic.LoadUint32(&d.closed) == 1 {
		return ErrDispatcherClosed
	}
	select {
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}

	shard := shardHash(event, d.cfg.Shards)
	ch := d.queues[shard]

	timer := time.NewTimer(d.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		pushesDispatchedTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-d.done:
		pushesDroppedTotal.WithLabelValues(labelFor(shard)).Inc()
		return ErrDispatcherClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		pushesDroppedTotal.WithLabelValues(labelFor(shard)).Inc()
		return ErrQueueFull
	}
}

// Barrier enqueues a no-op job on the shard for event and waits until it
// runs, ensuring all previously submitted jobs for that event have completed.
func (d *Dispatcher) Barrier(ctx context.Context, event string) error {
	done := make(chan struct{})
	j := JobFunc(func(context.Context) error {
		close(done)
		return nil
	})
	if err := d.Submit(ctx, event, j); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Stop signals every worker to finish draining its current queue, waits for
// them to terminate, and then returns. Idempotent and safe for concurrent use.
func (d *Dispatcher) Stop() {
	if !atomic.CompareAndSwapUint32(&d.closed, 0, 1) {
		return
	}
	close(d.done)
	d.wg.Wait()
}

// ------------------------- internals -------------------------

func (d *Dispatcher) runWorker(idx int, ch <-chan queuedJob) {
	defer d.wg.Done()

	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			if qj.job == nil {
				continue
			}
			// Honour caller context so a cancelled event doesn't stall the shard.
			select {
			case <-qj.ctx.Done():
				continue
			default:
			}
			d.runOne(label, qj)

		case <-d.done:
			// Drain remaining jobs before exiting.
			for {
				select {
				case qj := <-ch:
					if qj.job != nil {
						d.runOne(label, qj)
					}
				default:
					return
				}
			}
		}
	}
}

// runOne executes a single job with panic recovery so one bad handler cannot
// take down the shard worker.
func (d *Dispatcher) runOne(label string, qj queuedJob) {
	defer func() {
		if r := recover(); r != nil {
			handlerPanicsTotal.WithLabelValues(label).Inc()
			log.Error().Interface("panic", r).Msg("push handler panicked")
		}
	}()
	start := time.Now()
	err := qj.job.Run(qj.ctx)
	handlerDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		log.Debug().Err(err).Msg("push handler returned error")
		if d.cfg.ErrorHandler != nil {
			d.cfg.ErrorHandler(err)
		}
	}
}
