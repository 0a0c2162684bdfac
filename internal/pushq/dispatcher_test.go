package pushq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDispatcher_FIFOPerEvent(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(Config{Shards: 2, QueueSize: 32})
	defer d.Stop()

	var mu sync.Mutex
	var got []int
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		i := i
		err := d.Submit(ctx, "shoppingListChanged", JobFunc(func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}))
		if err != nil {
			t.Fatalf("Submit #%d: %v", i, err)
		}
	}
	if err := d.Barrier(ctx, "shoppingListChanged"); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("order violated at %d: %v", i, got)
		}
	}
}

func TestDispatcher_SubmitAfterStop(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(Config{Shards: 1, QueueSize: 1})
	d.Stop()
	err := d.Submit(context.Background(), "e", JobFunc(func(context.Context) error { return nil }))
	if !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("got %v, want ErrDispatcherClosed", err)
	}
}

func TestDispatcher_QueueFullDrops(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer d.Stop()

	block := make(chan struct{})
	ctx := context.Background()
	// First job occupies the worker, second fills the queue.
	_ = d.Submit(ctx, "e", JobFunc(func(context.Context) error { <-block; return nil }))
	_ = d.Submit(ctx, "e", JobFunc(func(context.Context) error { return nil }))

	err := d.Submit(ctx, "e", JobFunc(func(context.Context) error { return nil }))
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("got %v, want ErrQueueFull", err)
	}
	close(block)
}

func TestDispatcher_PanicRecovered(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(Config{Shards: 1, QueueSize: 8})
	defer d.Stop()

	ctx := context.Background()
	if err := d.Submit(ctx, "e", JobFunc(func(context.Context) error { panic("boom") })); err != nil {
		t.Fatal(err)
	}
	ran := make(chan struct{})
	if err := d.Submit(ctx, "e", JobFunc(func(context.Context) error { close(ran); return nil })); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestDispatcher_ErrorHandlerCalled(t *testing.T) {
	t.Parallel()
	sentinel := errors.New("handler failed")
	errs := make(chan error, 1)
	d := NewDispatcher(Config{Shards: 1, QueueSize: 8, ErrorHandler: func(err error) { errs <- err }})
	defer d.Stop()

	ctx := context.Background()
	if err := d.Submit(ctx, "e", JobFunc(func(context.Context) error { return sentinel })); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-errs:
		if !errors.Is(err, sentinel) {
			t.Fatalf("got %v, want sentinel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error handler not called")
	}
}

func TestDispatcher_CancelledJobSkipped(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(Config{Shards: 1, QueueSize: 8})
	defer d.Stop()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	_ = d.Submit(cancelled, "e", JobFunc(func(context.Context) error { ran = true; return nil }))
	if err := d.Barrier(context.Background(), "e"); err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Fatal("cancelled job should not run")
	}
}

func TestDispatcher_StopIdempotent(t *testing.T) {
	t.Parallel()
	d := NewDispatcher(Config{})
	d.Stop()
	d.Stop() // must not panic or deadlock
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Shards != 2 || cfg.QueueSize != 64 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}
