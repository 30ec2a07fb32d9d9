package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"transport-net/logging"
	"transport-net/store"
)

func TestOutbox_RunsInOrder(t *testing.T) {
	ctx := context.Background()
	o := store.NewOutbox(ctx, 0, 0, logging.Discard())
	defer o.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 20; i++ {
		o.Enqueue("op", func(ctx context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})
	}
	if err := o.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 20 {
		t.Fatalf("ran %d jobs, want 20", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
}

func TestOutbox_ReportsFailures(t *testing.T) {
	ctx := context.Background()
	o := store.NewOutbox(ctx, 0, 0, logging.Discard())
	defer o.Close()

	boom := errors.New("boom")
	o.Enqueue("create-station", func(ctx context.Context) error { return boom })
	o.Enqueue("delete-line", func(ctx context.Context) error { return nil })
	if err := o.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	fails := o.Failures()
	if len(fails) != 1 {
		t.Fatalf("failures = %d, want 1", len(fails))
	}
	if fails[0].Op != "create-station" || !errors.Is(fails[0], boom) {
		t.Errorf("failure = %v", fails[0])
	}
	if len(o.Failures()) != 0 {
		t.Error("Failures() did not drain")
	}
}

func TestOutbox_FullQueueDropsWithoutBlocking(t *testing.T) {
	ctx := context.Background()
	o := store.NewOutbox(ctx, 1, 0, logging.Discard())

	release := make(chan struct{})
	started := make(chan struct{})
	o.Enqueue("slow", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	if !o.Enqueue("queued", func(ctx context.Context) error { return nil }) {
		t.Fatal("second job rejected with room in the queue")
	}

	done := make(chan bool)
	go func() {
		done <- o.Enqueue("dropped", func(ctx context.Context) error { return nil })
	}()
	select {
	case accepted := <-done:
		if accepted {
			t.Error("job accepted by a full queue")
		}
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	close(release)
	o.Close()

	fails := o.Failures()
	if len(fails) != 1 || fails[0].Op != "dropped" {
		t.Errorf("failures = %v, want the dropped job", fails)
	}
}

func TestOutbox_EnqueueDoesNotWaitBehindFlush(t *testing.T) {
	ctx := context.Background()
	o := store.NewOutbox(ctx, 1, 0, logging.Discard())

	release := make(chan struct{})
	started := make(chan struct{})
	o.Enqueue("slow", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started
	o.Enqueue("queued", func(ctx context.Context) error { return nil })

	flushed := make(chan error, 1)
	go func() { flushed <- o.Flush(ctx) }()
	// Give Flush time to park on the full queue.
	time.Sleep(20 * time.Millisecond)

	done := make(chan bool)
	go func() {
		done <- o.Enqueue("save", func(ctx context.Context) error { return nil })
	}()
	select {
	case accepted := <-done:
		if accepted {
			t.Error("job accepted by a full queue")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Enqueue blocked behind Flush on a full queue")
	}

	close(release)
	select {
	case err := <-flushed:
		if err != nil {
			t.Errorf("Flush() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Flush did not return after the queue drained")
	}
	o.Close()
}

func TestOutbox_CloseWaitsForPendingFlush(t *testing.T) {
	ctx := context.Background()
	o := store.NewOutbox(ctx, 1, 0, logging.Discard())

	release := make(chan struct{})
	started := make(chan struct{})
	o.Enqueue("slow", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started
	o.Enqueue("queued", func(ctx context.Context) error { return nil })

	flushed := make(chan error, 1)
	go func() { flushed <- o.Flush(ctx) }()
	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		o.Close()
		close(closed)
	}()
	close(release)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	if err := <-flushed; err != nil {
		t.Errorf("Flush() error = %v", err)
	}
}

func TestOutbox_TimeoutCancelsSlowCall(t *testing.T) {
	ctx := context.Background()
	o := store.NewOutbox(ctx, 0, 20*time.Millisecond, logging.Discard())
	defer o.Close()

	o.Enqueue("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if err := o.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	fails := o.Failures()
	if len(fails) != 1 || !errors.Is(fails[0], context.DeadlineExceeded) {
		t.Errorf("failures = %v, want a deadline failure", fails)
	}
}

func TestOutbox_CloseDrainsQueue(t *testing.T) {
	o := store.NewOutbox(context.Background(), 0, 0, logging.Discard())

	var ran int
	for i := 0; i < 5; i++ {
		o.Enqueue("op", func(ctx context.Context) error {
			ran++
			return nil
		})
	}
	o.Close()

	if ran != 5 {
		t.Errorf("ran %d jobs before close, want 5", ran)
	}
	if o.Enqueue("late", func(ctx context.Context) error { return nil }) {
		t.Error("Enqueue accepted after Close")
	}
}
