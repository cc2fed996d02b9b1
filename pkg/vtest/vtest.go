package vtest

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vrt/internal/logtest"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Builder allows fluent construction of test harnesses.
type Builder struct {
	logger   *slog.Logger
	limit    int
	clock    func() time.Time
	rendOpts []renderer.Option
}

// New creates a harness builder with quiet defaults: warnings are captured
// instead of printed and host timestamps come from a ticking clock.
//
// Example:
//
//	h := vtest.New().
//	    WithRecursionLimit(10).
//	    Build(t)
func New() *Builder {
	return &Builder{}
}

// WithLogger sends runtime logs to logger in addition to the capture.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRecursionLimit sets the scheduler's per-flush limit for one job.
func (b *Builder) WithRecursionLimit(n int) *Builder {
	b.limit = n
	return b
}

// WithClock sets the document clock used for event timestamps.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithRendererOption passes extra options to renderer.New.
func (b *Builder) WithRendererOption(opts ...renderer.Option) *Builder {
	b.rendOpts = append(b.rendOpts, opts...)
	return b
}

// Build returns the harness. Anything still mounted is unmounted when the
// test ends.
func (b *Builder) Build(t testing.TB) *Harness {
	t.Helper()
	logger, logs := logtest.New()
	if b.logger != nil {
		logger = slog.New(teeHandler{logger.Handler(), b.logger.Handler()})
	}
	clock := b.clock
	if clock == nil {
		clock = TickingClock()
	}

	loop := scheduler.NewLoop(scheduler.WithLoopLogger(logger))
	queueOpts := []scheduler.QueueOption{scheduler.WithLogger(logger)}
	if b.limit > 0 {
		queueOpts = append(queueOpts, scheduler.WithRecursionLimit(b.limit))
	}
	queue := scheduler.NewQueue(loop, queueOpts...)
	rt := reactivity.New(reactivity.WithLogger(logger))
	doc := memdom.New(
		memdom.WithClock(clock),
		memdom.WithCheckpoint(loop.Checkpoint),
		memdom.WithLogger(logger),
	)

	opts := append([]renderer.Option{renderer.WithLogger(logger), renderer.WithLoop(loop)}, b.rendOpts...)
	h := &Harness{
		t:        t,
		Loop:     loop,
		Queue:    queue,
		Runtime:  rt,
		Doc:      doc,
		Root:     doc.NewRoot(),
		Renderer: renderer.New(doc, rt, queue, opts...),
		logs:     logs,
	}
	t.Cleanup(h.Unmount)
	return h
}

// Harness mounts components into an in-memory document. Every operation
// runs as a loop task, so queued re-renders have flushed when it returns.
type Harness struct {
	t testing.TB

	Loop     *scheduler.Loop
	Queue    *scheduler.Queue
	Runtime  *reactivity.Runtime
	Doc      *memdom.Document
	Root     *memdom.Node
	Renderer *renderer.Renderer

	logs *logtest.Handler
}

// NewHarness is a shorthand for New().Build(t).
func NewHarness(t testing.TB) *Harness {
	t.Helper()
	return New().Build(t)
}

// Mount renders def with props into the root and returns its instance.
//
// Example:
//
//	inst := h.Mount(Counter, vdom.Props{"start": 1})
func (h *Harness) Mount(def *renderer.Definition, props vdom.Props) *renderer.Instance {
	h.t.Helper()
	var inst *renderer.Instance
	h.Act(func() {
		inst = h.Renderer.CreateApp(def, props).Mount(h.Root)
	})
	if inst == nil {
		h.t.Fatalf("mounting %s produced no instance", def.ComponentName())
	}
	return inst
}

// Render patches vnode into the root.
func (h *Harness) Render(vnode *vdom.VNode) {
	h.Act(func() { h.Renderer.Render(vnode, h.Root) })
}

// Unmount clears the root.
func (h *Harness) Unmount() {
	h.Act(func() { h.Renderer.Render(nil, h.Root) })
}

// Act runs fn as a task and drains the microtasks it queued.
func (h *Harness) Act(fn func()) {
	h.Loop.Run(fn)
}

// Flush drains pending microtasks, including a scheduled flush.
func (h *Harness) Flush() {
	h.Loop.Drain()
}

// Query returns the first node matching selector, failing the test when
// there is none.
func (h *Harness) Query(selector string) *memdom.Node {
	h.t.Helper()
	n := h.Root.Query(selector)
	if n == nil {
		h.t.Fatalf("no node matches %q in:\n%s", selector, truncate(h.HTML(), 500))
	}
	return n
}

// Click dispatches a click at the first node matching selector.
func (h *Harness) Click(selector string) {
	h.t.Helper()
	target := h.Query(selector)
	h.Act(func() { h.Doc.Click(target) })
}

// Input sets the value of the first node matching selector and
// dispatches an input event.
func (h *Harness) Input(selector, value string) {
	h.t.Helper()
	target := h.Query(selector)
	h.Act(func() { h.Doc.Input(target, value) })
}

// HTML returns the serialized content of the root.
func (h *Harness) HTML() string {
	return memdom.InnerHTML(h.Root)
}

// Warnings returns the diagnostic codes logged so far.
func (h *Harness) Warnings() []string {
	return h.logs.Codes()
}

// ResetWarnings discards captured logs.
func (h *Harness) ResetWarnings() {
	h.logs.Reset()
}

// RenderToString mounts node into a throwaway document and returns its
// HTML.
//
// Example:
//
//	html := vtest.RenderToString(vdom.Div(vdom.Class("box"), "hi"))
func RenderToString(node *vdom.VNode) string {
	loop := scheduler.NewLoop()
	doc := memdom.New(memdom.WithCheckpoint(loop.Checkpoint))
	root := doc.NewRoot()
	r := renderer.New(doc, reactivity.New(), scheduler.NewQueue(loop), renderer.WithLoop(loop))

	var html string
	loop.Run(func() {
		r.Render(node, root)
		html = memdom.InnerHTML(root)
		r.Render(nil, root)
	})
	return html
}

// TickingClock returns a clock that advances one millisecond per call.
func TickingClock() func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(time.Millisecond)
		return now
	}
}

// ExpectContains asserts that the mounted output contains expected.
//
// Example:
//
//	vtest.ExpectContains(t, h, "Welcome")
func ExpectContains(t testing.TB, h *Harness, expected string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the mounted output does not contain
// unexpected.
func ExpectNotContains(t testing.TB, h *Harness, unexpected string) {
	t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectHTML asserts that the mounted output equals want.
func ExpectHTML(t testing.TB, h *Harness, want string) {
	t.Helper()
	if got := h.HTML(); got != want {
		t.Errorf("rendered output mismatch\n got: %s\nwant: %s", truncate(got, 500), truncate(want, 500))
	}
}

// ExpectElement asserts that the mounted output contains a node matching
// selector.
//
// Example:
//
//	vtest.ExpectElement(t, h, "button.primary")
func ExpectElement(t testing.TB, h *Harness, selector string) {
	t.Helper()
	if h.Root.Query(selector) == nil {
		t.Errorf("expected rendered output to contain %s, got:\n%s", selector, truncate(h.HTML(), 500))
	}
}

// ExpectAttribute asserts that the first node matching selector carries
// attr with value.
//
// Example:
//
//	vtest.ExpectAttribute(t, h, "button", "class", "btn-primary")
func ExpectAttribute(t testing.TB, h *Harness, selector, attr, value string) {
	t.Helper()
	n := h.Root.Query(selector)
	if n == nil {
		t.Errorf("no node matches %q, got:\n%s", selector, truncate(h.HTML(), 500))
		return
	}
	if got, ok := n.Attr(attr); !ok || got != value {
		t.Errorf("expected attribute %s=%q on %s, got %q (present=%v)", attr, value, selector, got, ok)
	}
}

// ExpectWarning asserts that a diagnostic with code was logged.
func ExpectWarning(t testing.TB, h *Harness, code string) {
	t.Helper()
	for _, c := range h.Warnings() {
		if c == code {
			return
		}
	}
	t.Errorf("expected warning %s, got %v", code, h.Warnings())
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
