package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Task runs a function immediately and then again a fixed delay after each
// run completes, until stopped. There is no backoff: a failing run is
// retried on the same schedule.
type Task struct {
	name  string
	delay time.Duration
	run   func(ctx context.Context)

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	runs    atomic.Int64
}

func NewTask(name string, delay time.Duration, run func(ctx context.Context)) *Task {
	return &Task{
		name:  name,
		delay: delay,
		run:   run,
	}
}

// Start launches the loop with an immediate first run. Calling it more than
// once has no effect.
func (t *Task) Start(ctx context.Context) {
	t.start(ctx, 0)
}

// StartDeferred is like Start but waits one delay before the first run, for
// callers that already ran the work once themselves.
func (t *Task) StartDeferred(ctx context.Context) {
	t.start(ctx, t.delay)
}

func (t *Task) start(ctx context.Context, first time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	t.started = true

	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go t.loop(ctx, t.done, first)
}

func (t *Task) loop(ctx context.Context, done chan struct{}, first time.Duration) {
	defer close(done)
	slog.Debug("task started", "task", t.name, "delay", t.delay)

	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("task stopped", "task", t.name, "runs", t.runs.Load())
			return
		case <-timer.C:
		}

		t.run(ctx)
		t.runs.Add(1)
		timer.Reset(t.delay)
	}
}

// Stop cancels the loop and waits for an in-flight run to return. It is safe
// to call before Start and more than once.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Runs is the number of completed runs.
func (t *Task) Runs() int64 {
	return t.runs.Load()
}

func (t *Task) Name() string { return t.name }
