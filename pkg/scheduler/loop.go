// Package scheduler provides the single-threaded event loop and the
// deduplicating job queue that batches component re-renders into one
// microtask flush.
package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/vrt/internal/errors"
)

// ErrLoopClosed is returned when work is posted to a closed loop.
var ErrLoopClosed error = errors.New("S003")

// DefaultQueueSize is the capacity of the loop's task channel.
const DefaultQueueSize = 256

type task struct {
	fn   func()
	done chan struct{}
}

// Loop serializes tasks onto one goroutine at a time. Each task is
// followed by a drain of the microtasks it queued, in FIFO order.
//
// Tasks come either from Run on the calling goroutine or from Post, which
// hands them to the goroutine executing Start.
type Loop struct {
	logger *slog.Logger

	mu         sync.Mutex
	microtasks []func()

	tasks     chan task
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used for task panics.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithQueueSize sets the capacity of the posted-task channel.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan task, n)
		}
	}
}

// NewLoop creates an idle loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		logger: slog.Default().With("component", "loop"),
		tasks:  make(chan task, DefaultQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes fn on the calling goroutine, then drains microtasks.
// It must not be called from inside a task.
func (l *Loop) Run(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exec(fn)
}

// Drain runs pending microtasks on the calling goroutine.
func (l *Loop) Drain() {
	l.Run(func() {})
}

// Microtask queues fn to run after the current task. It must be called
// from inside a task.
func (l *Loop) Microtask(fn func()) {
	l.microtasks = append(l.microtasks, fn)
}

// Pending reports the number of queued microtasks.
func (l *Loop) Pending() int {
	return len(l.microtasks)
}

func (l *Loop) exec(fn func()) {
	l.safely("task", fn)
	l.Checkpoint()
}

// Checkpoint drains pending microtasks from inside a running task, the way
// a browser does between event listeners.
func (l *Loop) Checkpoint() {
	for len(l.microtasks) > 0 {
		next := l.microtasks[0]
		l.microtasks[0] = nil
		l.microtasks = l.microtasks[1:]
		l.safely("microtask", next)
	}
}

func (l *Loop) safely(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(kind+" panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Post hands fn to the goroutine running Start. It blocks while the task
// channel is full and fails once the loop is closed.
func (l *Loop) Post(fn func()) error {
	return l.post(task{fn: fn})
}

func (l *Loop) post(t task) error {
	if l.closed.Load() {
		return ErrLoopClosed
	}
	select {
	case l.tasks <- t:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Do posts fn and waits until it and the microtasks it queued have run.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}
	if err := l.post(t); err != nil {
		return err
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Start processes posted tasks until ctx is cancelled or Close is called.
func (l *Loop) Start(ctx context.Context) error {
	for {
		select {
		case t := <-l.tasks:
			l.Run(t.fn)
			if t.done != nil {
				close(t.done)
			}

		case <-ctx.Done():
			return ctx.Err()

		case <-l.done:
			return nil
		}
	}
}

// Close stops the loop. Pending posted tasks are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}

// Closed reports whether Close has been called.
func (l *Loop) Closed() bool {
	return l.closed.Load()
}
