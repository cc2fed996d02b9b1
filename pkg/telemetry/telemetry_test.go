package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/vrt/internal/logtest"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/reactivity"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/scheduler"
	"github.com/vango-dev/vrt/pkg/vdom"
)

var (
	_ reactivity.Recorder = (*Metrics)(nil)
	_ scheduler.Recorder  = (*Metrics)(nil)
	_ memdom.Recorder     = (*Metrics)(nil)
	_ renderer.Recorder   = (*Metrics)(nil)
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics()

	m.EffectRun()
	m.EffectRun()
	m.Flush(3, 2*time.Millisecond)
	m.HostOp("insert")
	m.HostOp("insert")
	m.HostOp("remove")
	m.ComponentRender("Counter")
	m.Warning("C001")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.effectRuns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flushes))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.hostOps.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostOps.WithLabelValues("remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.componentRenders.WithLabelValues("Counter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.warnings.WithLabelValues("C001")))

	count, err := testutil.GatherAndCount(m.Registry(), "vrt_flush_jobs")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetricsOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"env": "test"}),
		WithBuckets([]float64{0.001, 0.01}),
	)
	assert.Same(t, reg, m.Registry())

	m.Warning("S002")
	expected := `
# HELP app_ui_warnings_total Total diagnostics reported by code
# TYPE app_ui_warnings_total counter
app_ui_warnings_total{code="S002",env="test"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_ui_warnings_total"))
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.EffectRun()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.effectRuns))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.effectRuns))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ComponentRender("App")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `vrt_component_renders_total{component="App"} 1`)
}

func TestMetricsWiredThroughRuntime(t *testing.T) {
	m := NewMetrics()
	loop := scheduler.NewLoop()
	rt := reactivity.New(reactivity.WithRecorder(m))
	q := scheduler.NewQueue(loop, scheduler.WithRecorder(m))
	doc := memdom.New(memdom.WithRecorder(m), memdom.WithCheckpoint(loop.Checkpoint))
	r := renderer.New(doc, rt, q, renderer.WithRecorder(m), renderer.WithLoop(loop))
	root := doc.NewRoot()

	state := rt.State(map[string]any{"n": 0})
	def := &renderer.Definition{
		Name: "Count",
		Render: func(*renderer.RenderContext) *vdom.VNode {
			return vdom.Textf("%v", state.Get("n"))
		},
	}

	loop.Run(func() { r.CreateApp(def, nil).Mount(root) })
	loop.Run(func() { state.Set("n", 1) })

	assert.Equal(t, "1", memdom.InnerHTML(root))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.componentRenders.WithLabelValues("Count")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flushes))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.effectRuns), 2.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hostOps.WithLabelValues("text")))
}

func TestSetupTracing(t *testing.T) {
	before := otel.GetTracerProvider()
	exp := tracetest.NewInMemoryExporter()
	tr := SetupTracing("", exp)

	_, span := Tracer("").Start(context.Background(), "global")
	span.End()
	_, span = tr.Tracer().Start(context.Background(), "local")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "global", spans[0].Name)
	assert.Equal(t, "local", spans[1].Name)

	require.NoError(t, tr.Shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestLogExporter(t *testing.T) {
	logger, logs := logtest.New()
	tr := SetupTracing("test", NewLogExporter(logger))
	defer tr.Shutdown(context.Background())

	_, span := tr.Tracer().Start(context.Background(), "scheduler.flush")
	span.SetAttributes(attribute.Int("vrt.jobs", 4), attribute.String("vrt.component", "App"))
	span.End()

	records := logs.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "span", records[0].Message)
	assert.Equal(t, "scheduler.flush", records[0].Attrs["span"])
	assert.Equal(t, int64(4), records[0].Attrs["vrt.jobs"])
	assert.Equal(t, "App", records[0].Attrs["vrt.component"])
}
