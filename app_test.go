package vrt

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/internal/logtest"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/telemetry"
	"github.com/vango-dev/vrt/pkg/vdom"
)

var counter = &renderer.Definition{
	Name: "Counter",
	Data: func() map[string]any { return map[string]any{"n": 0} },
	Render: func(c *renderer.RenderContext) *vdom.VNode {
		return vdom.Button(
			vdom.OnClick(func() { c.Set("n", c.Int("n")+1) }),
			vdom.Textf("%d", c.Int("n")),
		)
	},
}

func TestAppMountAndDispatch(t *testing.T) {
	logger, _ := logtest.New()
	app := New(Config{Logger: logger})

	app.Run(func() { app.Mount(counter, nil) })

	var html string
	app.Run(func() { html = app.HTML() })
	assert.Equal(t, "<button>0</button>", html)

	app.Run(func() {
		assert.True(t, app.Dispatch([]int{0}, "click", nil))
		assert.False(t, app.Dispatch([]int{4}, "click", nil))
	})
	app.Run(func() { html = app.HTML() })
	assert.Equal(t, "<button>1</button>", html)
	assert.Equal(t, "Counter", app.Instance().Name())

	app.Run(app.Unmount)
	assert.Nil(t, app.Instance())
	app.Run(func() { html = app.HTML() })
	assert.Empty(t, html)
}

func TestAppUnmountClearsRuntime(t *testing.T) {
	logger, _ := logtest.New()
	app := New(Config{Logger: logger})

	for i := 0; i < 3; i++ {
		app.Run(func() { app.Mount(counter, nil) })
		app.Run(func() { app.Dispatch([]int{0}, "click", nil) })
		assert.Positive(t, app.Runtime.TrackedTargets())

		app.Run(app.Unmount)
		assert.Zero(t, app.Runtime.TrackedTargets())
		assert.Zero(t, app.Runtime.CachedProxies())
	}

	var html string
	app.Run(func() {
		app.Mount(counter, nil)
		app.Dispatch([]int{0}, "click", nil)
	})
	app.Run(func() { html = app.HTML() })
	assert.Equal(t, "<button>1</button>", html)
}

func TestAppSubscribe(t *testing.T) {
	logger, _ := logtest.New()
	app := New(Config{Logger: logger})
	app.Run(func() { app.Mount(counter, nil) })

	var seen []string
	cancel := app.Subscribe(func() { seen = append(seen, app.HTML()) })

	app.Run(func() { app.Dispatch([]int{0}, "click", nil) })
	app.Run(func() { app.Dispatch([]int{0}, "click", nil) })
	assert.Equal(t, []string{"<button>1</button>", "<button>2</button>"}, seen)

	cancel()
	app.Run(func() { app.Dispatch([]int{0}, "click", nil) })
	assert.Len(t, seen, 2)
}

func TestAppMetrics(t *testing.T) {
	logger, _ := logtest.New()
	m := telemetry.NewMetrics()
	app := New(Config{Logger: logger, Metrics: m})
	assert.Same(t, m, app.Metrics())

	app.Run(func() { app.Mount(counter, nil) })
	app.Run(func() { app.Dispatch([]int{0}, "click", nil) })

	n, err := testutil.GatherAndCount(m.Registry(), "vrt_component_renders_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = testutil.GatherAndCount(m.Registry(), "vrt_flushes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAppStartAndDo(t *testing.T) {
	logger, _ := logtest.New()
	app := New(Config{Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Start(ctx) }()

	var html string
	require.NoError(t, app.Do(ctx, func() {
		app.Mount(counter, nil)
		html = app.HTML()
	}))
	assert.Equal(t, "<button>0</button>", html)

	app.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	cancel()
}

func TestFromFile(t *testing.T) {
	fc := config.New()
	cfg := FromFile(fc, nil)
	assert.Nil(t, cfg.Metrics)
	assert.Equal(t, config.DefaultRecursionLimit, cfg.RecursionLimit)

	fc.Metrics.Enabled = true
	fc.Metrics.Namespace = "demo"
	fc.Scheduler.RecursionLimit = 7
	cfg = FromFile(fc, nil)
	require.NotNil(t, cfg.Metrics)
	assert.Equal(t, 7, cfg.RecursionLimit)

	cfg.Metrics.Warning("C001")
	n, err := testutil.GatherAndCount(cfg.Metrics.Registry(), "demo_warnings_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
