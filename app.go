package vrt

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/telemetry"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// App bundles an event loop, a reactive runtime, a job queue, an in-memory
// document and a renderer into one unit that can host a root component.
//
//	app := vrt.New(vrt.Config{Metrics: telemetry.NewMetrics()})
//	app.Run(func() { app.Mount(Counter, nil) })
//	fmt.Println(app.HTML())
//
// Run executes a task synchronously and may be called from any goroutine;
// tasks are serialized. Everything else on the runtime layers must happen
// inside a task.
type App struct {
	Loop     *scheduler.Loop
	Queue    *scheduler.Queue
	Runtime  *reactivity.Runtime
	Doc      *memdom.Document
	Root     *memdom.Node
	Renderer *renderer.Renderer

	config Config
	logger *slog.Logger
	root   *renderer.App

	mu        sync.Mutex
	listeners map[uint64]func()
	nextID    uint64
}

// New creates an App with an empty root container.
func New(cfg Config) *App {
	cfg.applyDefaults()
	logger := cfg.Logger

	a := &App{
		config:    cfg,
		logger:    logger.With("component", "app"),
		listeners: make(map[uint64]func()),
	}

	a.Loop = scheduler.NewLoop(
		scheduler.WithLoopLogger(logger.With("component", "loop")),
		scheduler.WithQueueSize(cfg.QueueSize),
	)

	queueOpts := []scheduler.QueueOption{
		scheduler.WithLogger(logger.With("component", "scheduler")),
		scheduler.WithRecursionLimit(cfg.RecursionLimit),
		scheduler.OnFlushed(a.flushed),
	}
	rtOpts := []reactivity.Option{reactivity.WithLogger(logger.With("component", "reactivity"))}
	docOpts := []memdom.Option{
		memdom.WithLogger(logger.With("component", "memdom")),
		memdom.WithClock(cfg.Clock),
		memdom.WithCheckpoint(a.Loop.Checkpoint),
	}
	rendOpts := []renderer.Option{
		renderer.WithLogger(logger.With("component", "renderer")),
		renderer.WithLoop(a.Loop),
	}
	if m := cfg.Metrics; m != nil {
		queueOpts = append(queueOpts, scheduler.WithRecorder(m))
		rtOpts = append(rtOpts, reactivity.WithRecorder(m))
		docOpts = append(docOpts, memdom.WithRecorder(m))
		rendOpts = append(rendOpts, renderer.WithRecorder(m))
	}
	if cfg.Tracer != nil {
		queueOpts = append(queueOpts, scheduler.WithTracer(cfg.Tracer))
		rendOpts = append(rendOpts, renderer.WithTracer(cfg.Tracer))
	}

	a.Queue = scheduler.NewQueue(a.Loop, queueOpts...)
	a.Runtime = reactivity.New(rtOpts...)
	a.Doc = memdom.New(docOpts...)
	a.Root = a.Doc.NewRoot()
	a.Renderer = renderer.New(a.Doc, a.Runtime, a.Queue, rendOpts...)
	return a
}

// Run executes fn as a loop task on the calling goroutine and flushes the
// updates it queued before returning.
func (a *App) Run(fn func()) {
	a.Loop.Run(fn)
}

// Do posts fn to the loop served by Start and waits for it.
func (a *App) Do(ctx context.Context, fn func()) error {
	return a.Loop.Do(ctx, fn)
}

// Start serves posted tasks until ctx is cancelled or Close is called.
func (a *App) Start(ctx context.Context) error {
	return a.Loop.Start(ctx)
}

// Close stops the loop. Posted tasks that have not run are dropped.
func (a *App) Close() {
	a.Loop.Close()
}

// Mount renders def as the root component. Must run inside a task.
func (a *App) Mount(def *renderer.Definition, props vdom.Props) *renderer.Instance {
	if a.root != nil {
		a.root.Unmount()
	}
	a.root = a.Renderer.CreateApp(def, props)
	inst := a.root.Mount(a.Root)
	a.logger.Debug("mounted", "root", def.ComponentName())
	return inst
}

// Unmount removes the root component and resets the reactive runtime.
// Effects created directly on Runtime stop being triggered. Must run
// inside a task.
func (a *App) Unmount() {
	if a.root == nil {
		return
	}
	a.root.Unmount()
	a.root = nil
	a.Runtime.Reset()
}

// Instance returns the root component instance, or nil.
func (a *App) Instance() *renderer.Instance {
	if a.root == nil {
		return nil
	}
	return a.root.Instance()
}

// HTML serializes the root container. Must run inside a task.
func (a *App) HTML() string {
	return memdom.InnerHTML(a.Root)
}

// Node resolves a child index path from the root container, or nil.
func (a *App) Node(path []int) *memdom.Node {
	return a.Root.At(path...)
}

// Dispatch fires eventType at the node at path. Must run inside a task.
// It reports false when no node exists at path.
func (a *App) Dispatch(path []int, eventType string, detail any) bool {
	target := a.Node(path)
	if target == nil {
		return false
	}
	a.Doc.Dispatch(target, eventType, detail)
	return true
}

// Subscribe registers fn to run on the loop after every scheduler flush.
// The returned function removes it.
func (a *App) Subscribe(fn func()) (cancel func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *App) flushed() {
	a.mu.Lock()
	fns := make([]func(), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Metrics returns the configured collectors, or nil.
func (a *App) Metrics() *telemetry.Metrics {
	return a.config.Metrics
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
