// Package store holds the in-memory observable state the UI reads: weekly
// meal plan, shopping list and recipe catalog. Stores apply optimistic
// updates, roll them back on remote failure, and reload wholesale when a
// push event invalidates them. They are the only layer that decides between
// "revert + show error" and "clear/ignore"; transports and repositories let
// failures propagate untouched.
package store

import (
	"context"
	"sync"

	errs "github.com/platewise/platewise/client/internal/errors"
)

// mutate runs one optimistic mutation: set(next) flips local state before
// the remote call, set(prev) restores it on failure. A cancelled caller is
// treated as a non-error: local state is restored and nil returned.
func mutate[T any](ctx context.Context, prev, next T, set func(T), remote func(context.Context) error) error {
	set(next)
	err := remote(ctx)
	if err == nil {
		return nil
	}
	set(prev)
	if errs.IsCancellation(err) {
		return nil
	}
	rollbacksTotal.Inc()
	return err
}

// observable is the listener plumbing shared by all stores. Listeners are
// invoked synchronously after every state change, outside the store's state
// lock, so they may read the store freely.
type observable struct {
	obsMu     sync.Mutex
	listeners map[int]func()
	nextID    int
	version   uint64
}

// Subscribe registers fn to run after every state change and returns a
// cancel function.
func (o *observable) Subscribe(fn func()) (cancel func()) {
	o.obsMu.Lock()
	if o.listeners == nil {
		o.listeners = make(map[int]func())
	}
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.obsMu.Unlock()
	return func() {
		o.obsMu.Lock()
		delete(o.listeners, id)
		o.obsMu.Unlock()
	}
}

// Version returns a counter that increases on every state change.
func (o *observable) Version() uint64 {
	o.obsMu.Lock()
	defer o.obsMu.Unlock()
	return o.version
}

func (o *observable) notify() {
	o.obsMu.Lock()
	o.version++
	fns := make([]func(), 0, len(o.listeners))
	for _, fn := range o.listeners {
		fns = append(fns, fn)
	}
	o.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// reloadGuard coalesces overlapping reloads: one runs at a time, and any
// trigger arriving while one is in flight schedules exactly one follow-up.
type reloadGuard struct {
	mu        sync.Mutex
	reloading bool
	pending   bool
}

// trigger runs reload, looping while further triggers arrived in flight.
// Concurrent callers return immediately after marking the pending flag.
func (g *reloadGuard) trigger(reload func()) {
	g.mu.Lock()
	if g.reloading {
		g.pending = true
		g.mu.Unlock()
		return
	}
	g.reloading = true
	g.mu.Unlock()

	for {
		reload()
		g.mu.Lock()
		if !g.pending {
			g.reloading = false
			g.mu.Unlock()
			return
		}
		g.pending = false
		g.mu.Unlock()
	}
}
