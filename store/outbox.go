package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultOutboxSize    = 256
	DefaultOutboxTimeout = 10 * time.Second
)

type job struct {
	op      string
	run     func(ctx context.Context) error
	barrier chan struct{}
}

// Outbox runs store calls on a single background worker, in the order they
// were enqueued. Enqueue never blocks: when the queue is full the call is
// dropped and reported as a failure. Failed calls are not retried.
type Outbox struct {
	jobs     chan job
	failures chan *PersistenceError
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	closed  bool
	flushes sync.WaitGroup
	done    chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// NewOutbox starts the worker. It stops when Close is called or ctx ends.
func NewOutbox(ctx context.Context, size int, timeout time.Duration, logger *slog.Logger) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	if timeout <= 0 {
		timeout = DefaultOutboxTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	o := &Outbox{
		jobs:     make(chan job, size),
		failures: make(chan *PersistenceError, size),
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go o.loop()
	return o
}

// Enqueue schedules run. It reports whether the call was accepted.
func (o *Outbox) Enqueue(op string, run func(ctx context.Context) error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		o.fail(op, errOutboxClosed)
		return false
	}
	select {
	case o.jobs <- job{op: op, run: run}:
		return true
	default:
		o.fail(op, errOutboxFull)
		return false
	}
}

// Failures drains the failures reported so far.
func (o *Outbox) Failures() []*PersistenceError {
	var out []*PersistenceError
	for {
		select {
		case f := <-o.failures:
			out = append(out, f)
		default:
			return out
		}
	}
}

// Flush waits until every call enqueued before it has run, or ctx ends.
// The lock is released before the barrier is queued so Enqueue keeps
// dropping instead of waiting when the queue is full.
func (o *Outbox) Flush(ctx context.Context) error {
	barrier := make(chan struct{})

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.flushes.Add(1)
	o.mu.Unlock()

	select {
	case o.jobs <- job{op: "flush", barrier: barrier}:
		o.flushes.Done()
	case <-ctx.Done():
		o.flushes.Done()
		return ctx.Err()
	}

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting calls, runs what is queued and waits for the worker.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		<-o.done
		return
	}
	o.closed = true
	o.mu.Unlock()

	// Pending flushes still send on jobs.
	o.flushes.Wait()
	close(o.jobs)

	<-o.done
	o.cancel()
}

func (o *Outbox) loop() {
	defer close(o.done)
	for j := range o.jobs {
		if j.barrier != nil {
			close(j.barrier)
			continue
		}
		if o.ctx.Err() != nil {
			o.fail(j.op, o.ctx.Err())
			continue
		}

		ctx, cancel := context.WithTimeout(o.ctx, o.timeout)
		err := j.run(ctx)
		cancel()
		if err != nil {
			o.fail(j.op, err)
		}
	}
}

func (o *Outbox) fail(op string, err error) {
	o.logger.Warn("persistence call failed", "op", op, "error", err)
	select {
	case o.failures <- &PersistenceError{Op: op, Err: err}:
	default:
		o.logger.Error("persistence failure dropped, failure queue full", "op", op)
	}
}
