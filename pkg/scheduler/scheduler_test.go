package scheduler

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/vrt/internal/logtest"
)

type fakeRecorder struct {
	flushes  []int
	warnings []string
}

func (r *fakeRecorder) Flush(jobs int, _ time.Duration) { r.flushes = append(r.flushes, jobs) }

func (r *fakeRecorder) Warning(code string) { r.warnings = append(r.warnings, code) }

func TestLoopDrainsMicrotasksInOrder(t *testing.T) {
	loop := NewLoop()
	var order []string

	loop.Run(func() {
		loop.Microtask(func() {
			order = append(order, "m1")
			loop.Microtask(func() { order = append(order, "m3") })
		})
		loop.Microtask(func() { order = append(order, "m2") })
		order = append(order, "task")
	})

	assert.Equal(t, []string{"task", "m1", "m2", "m3"}, order)
	assert.Equal(t, 0, loop.Pending())
}

func TestLoopRecoversPanics(t *testing.T) {
	logger, logs := logtest.New()
	loop := NewLoop(WithLoopLogger(logger))

	ran := false
	loop.Run(func() {
		loop.Microtask(func() { ran = true })
		panic("boom")
	})

	assert.True(t, ran)
	require.Len(t, logs.Records(), 1)
	assert.Equal(t, "task panic", logs.Records()[0].Message)
}

func TestLoopStartAndDo(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopped := make(chan error, 1)
	go func() { stopped <- loop.Start(ctx) }()

	var got atomic.Int32
	err := loop.Do(ctx, func() {
		loop.Microtask(func() { got.Store(2) })
		got.Store(1)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), got.Load())

	loop.Close()
	require.NoError(t, <-stopped)
	assert.True(t, loop.Closed())

	err = loop.Post(func() {})
	assert.True(t, stderrors.Is(err, ErrLoopClosed))
	assert.ErrorIs(t, loop.Do(context.Background(), func() {}), ErrLoopClosed)
}

func TestLoopStartStopsOnCancel(t *testing.T) {
	loop := NewLoop(WithQueueSize(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, loop.Start(ctx), context.Canceled)
}

func TestQueueDedupsWithinFlush(t *testing.T) {
	loop := NewLoop()
	q := NewQueue(loop)

	runs := 0
	job := NewJob("render", func() { runs++ })

	loop.Run(func() {
		q.QueueJob(job)
		q.QueueJob(job)
		q.QueueJob(job)
		assert.True(t, q.Has(job))
		assert.Equal(t, 1, q.Len())
		assert.Equal(t, 0, runs, "jobs must not run synchronously")
	})

	assert.Equal(t, 1, runs)
	assert.False(t, q.Has(job))
}

func TestQueueRunsInFirstQueuedOrder(t *testing.T) {
	loop := NewLoop()
	q := NewQueue(loop)

	var order []string
	a := NewJob("a", func() { order = append(order, "a") })
	b := NewJob("b", func() { order = append(order, "b") })
	c := NewJob("c", func() { order = append(order, "c") })

	loop.Run(func() {
		q.QueueJob(b)
		q.QueueJob(a)
		q.QueueJob(b)
		q.QueueJob(c)
	})
	assert.Equal(t, []string{"b", "a", "c"}, order)
}

func TestQueueJobFailureDoesNotAbortFlush(t *testing.T) {
	logger, logs := logtest.New()
	rec := &fakeRecorder{}
	loop := NewLoop()
	q := NewQueue(loop, WithLogger(logger), WithRecorder(rec))

	ran := false
	bad := NewJob("bad", func() { panic("render failed") })
	good := NewJob("good", func() { ran = true })

	loop.Run(func() {
		q.QueueJob(bad)
		q.QueueJob(good)
	})

	assert.True(t, ran)
	assert.Equal(t, []string{"S001"}, logs.Codes())
	assert.Equal(t, []int{1}, rec.flushes)
	assert.Equal(t, 0, q.Len())

	// The queue keeps working after a failure.
	ran = false
	loop.Run(func() { q.QueueJob(good) })
	assert.True(t, ran)
}

func TestQueueRequeueDuringFlush(t *testing.T) {
	loop := NewLoop()
	q := NewQueue(loop)

	var order []string
	var child *Job
	child = NewJob("child", func() { order = append(order, "child") })
	parent := NewJob("parent", func() {
		order = append(order, "parent")
		q.QueueJob(child)
	})

	loop.Run(func() {
		q.QueueJob(child)
		q.QueueJob(parent)
	})
	assert.Equal(t, []string{"child", "parent", "child"}, order)
}

func TestQueueRecursionLimit(t *testing.T) {
	logger, logs := logtest.New()
	loop := NewLoop()
	q := NewQueue(loop, WithLogger(logger), WithRecursionLimit(5))

	runs := 0
	var job *Job
	job = NewJob("loop", func() {
		runs++
		q.QueueJob(job)
	})

	loop.Run(func() { q.QueueJob(job) })
	assert.Equal(t, 5, runs)
	assert.Equal(t, []string{"S002"}, logs.Codes())
}

func TestQueueInvalidateAndDisable(t *testing.T) {
	loop := NewLoop()
	q := NewQueue(loop)

	runs := 0
	a := NewJob("a", func() { runs++ })
	b := NewJob("b", func() { runs++ })

	loop.Run(func() {
		q.QueueJob(a)
		q.QueueJob(b)
		q.Invalidate(a)
		b.Disable()
	})
	assert.Equal(t, 0, runs)
	assert.True(t, b.Disabled())
}

func TestNextTickObservesFlushedState(t *testing.T) {
	loop := NewLoop()
	q := NewQueue(loop)

	state := 0
	var seen []int
	job := NewJob("render", func() { state++ })

	loop.Run(func() {
		q.QueueJob(job)
		q.NextTick(func() { seen = append(seen, state) })
	})
	assert.Equal(t, []int{1}, seen)

	// With nothing queued the callback still waits for a microtask turn.
	loop.Run(func() {
		q.NextTick(func() { seen = append(seen, -1) })
		assert.Len(t, seen, 1)
	})
	assert.Equal(t, []int{1, -1}, seen)
}

func TestOnFlushedHook(t *testing.T) {
	loop := NewLoop()
	flushed := 0
	q := NewQueue(loop, OnFlushed(func() { flushed++ }))

	loop.Run(func() { q.QueueJob(NewJob("a", func() {})) })
	loop.Run(func() { q.QueueJob(NewJob("b", func() {})) })
	assert.Equal(t, 2, flushed)
}

func TestFlushSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	loop := NewLoop()
	q := NewQueue(loop, WithTracer(tp.Tracer("test")))

	loop.Run(func() {
		q.QueueJob(NewJob("a", func() {}))
		q.QueueJob(NewJob("b", func() {}))
	})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "scheduler.flush", spans[0].Name())
	var jobs int64
	for _, attr := range spans[0].Attributes() {
		if attr.Key == "vrt.jobs" {
			jobs = attr.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(2), jobs)
}
