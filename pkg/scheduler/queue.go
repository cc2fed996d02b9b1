package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vrt/internal/errors"
)

// DefaultRecursionLimit caps how often one job may run within a flush.
const DefaultRecursionLimit = 100

// Poster queues microtasks. *Loop implements it.
type Poster interface {
	Microtask(fn func())
}

// Recorder receives flush counters.
type Recorder interface {
	Flush(jobs int, d time.Duration)
	Warning(code string)
}

// Job is a unit of deferred work, normally a component update.
type Job struct {
	Name string
	Fn   func()

	disabled bool
}

// NewJob creates a job.
func NewJob(name string, fn func()) *Job {
	return &Job{Name: name, Fn: fn}
}

// Disable prevents the job from running in any later flush.
func (j *Job) Disable() { j.disabled = true }

// Disabled reports whether Disable was called.
func (j *Job) Disabled() bool { return j.disabled }

// Queue deduplicates jobs and runs them in one microtask flush, in the
// order they were first queued.
type Queue struct {
	poster   Poster
	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
	limit    int

	queued     mapset.Set[*Job]
	order      []*Job
	pending    bool
	flushing   bool
	afterFlush []func()
	onFlushed  []func()
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithLogger sets the queue logger.
func WithLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) QueueOption {
	return func(q *Queue) {
		q.recorder = r
	}
}

// WithTracer sets the tracer used for flush spans.
func WithTracer(t trace.Tracer) QueueOption {
	return func(q *Queue) {
		if t != nil {
			q.tracer = t
		}
	}
}

// WithRecursionLimit overrides DefaultRecursionLimit.
func WithRecursionLimit(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.limit = n
		}
	}
}

// OnFlushed registers fn to run after every flush.
func OnFlushed(fn func()) QueueOption {
	return func(q *Queue) {
		q.onFlushed = append(q.onFlushed, fn)
	}
}

// NewQueue creates a queue that schedules flushes through poster.
func NewQueue(poster Poster, opts ...QueueOption) *Queue {
	q := &Queue{
		poster: poster,
		logger: slog.Default().With("component", "scheduler"),
		tracer: otel.Tracer("github.com/vango-dev/vrt/scheduler"),
		limit:  DefaultRecursionLimit,
		queued: mapset.NewThreadUnsafeSet[*Job](),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// QueueJob adds job to the next flush unless it is already queued.
func (q *Queue) QueueJob(job *Job) {
	if job == nil || q.queued.Contains(job) {
		return
	}
	q.queued.Add(job)
	q.order = append(q.order, job)
	q.schedule()
}

// Invalidate removes job from the pending flush, typically because the
// caller is about to run it directly.
func (q *Queue) Invalidate(job *Job) {
	if !q.queued.Contains(job) {
		return
	}
	q.queued.Remove(job)
	for i, queued := range q.order {
		if queued == job {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Has reports whether job is waiting for the next flush.
func (q *Queue) Has(job *Job) bool {
	return q.queued.Contains(job)
}

// Len returns the number of queued jobs.
func (q *Queue) Len() int {
	return len(q.order)
}

// NextTick runs fn after the pending flush, or on the next microtask turn
// when nothing is queued.
func (q *Queue) NextTick(fn func()) {
	if q.pending || q.flushing {
		q.afterFlush = append(q.afterFlush, fn)
		return
	}
	q.poster.Microtask(fn)
}

func (q *Queue) schedule() {
	if q.pending || q.flushing {
		return
	}
	q.pending = true
	q.poster.Microtask(q.flush)
}

func (q *Queue) flush() {
	q.pending = false
	q.flushing = true

	_, span := q.tracer.Start(context.Background(), "scheduler.flush")
	start := time.Now()
	runs := make(map[*Job]int)
	ran := 0

	defer func() {
		q.flushing = false
		q.order = nil
		q.queued.Clear()

		span.SetAttributes(attribute.Int("vrt.jobs", ran))
		span.End()
		if q.recorder != nil {
			q.recorder.Flush(ran, time.Since(start))
		}

		callbacks := q.afterFlush
		q.afterFlush = nil
		for _, cb := range callbacks {
			q.safely("nextTick", cb)
		}
		for _, hook := range q.onFlushed {
			q.safely("onFlushed", hook)
		}
	}()

	for len(q.order) > 0 {
		job := q.order[0]
		q.order = q.order[1:]
		q.queued.Remove(job)

		if job.disabled {
			continue
		}
		runs[job]++
		if runs[job] > q.limit {
			errors.New("S002").
				WithDetail(fmt.Sprintf("job %q ran more than %d times in one flush", job.Name, q.limit)).
				Log(q.logger)
			if q.recorder != nil {
				q.recorder.Warning("S002")
			}
			continue
		}

		q.runJob(job)
		ran++
	}
}

func (q *Queue) runJob(job *Job) {
	defer func() {
		if r := recover(); r != nil {
			errors.New("S001").
				WithDetail(fmt.Sprintf("job %q: %v", job.Name, r)).
				Log(q.logger, "stack", string(debug.Stack()))
			if q.recorder != nil {
				q.recorder.Warning("S001")
			}
		}
	}()
	job.Fn()
}

func (q *Queue) safely(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error(kind+" callback panic", "panic", r)
		}
	}()
	fn()
}
