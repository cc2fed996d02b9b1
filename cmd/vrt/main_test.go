package main

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/internal/demo"
	"github.com/vango-dev/vrt/internal/logtest"
	"github.com/vango-dev/vrt/pkg/snapshot"
)

func TestRenderScenario(t *testing.T) {
	logger, _ := logtest.New()
	app, stop := startApp(config.New(), logger)
	defer stop()

	s, err := demo.Lookup("counter")
	require.NoError(t, err)
	html, err := renderScenario(context.Background(), app, s, 5*time.Second)
	require.NoError(t, err)
	assert.Contains(t, html, `<span class="value">4</span>`)
}

func TestOpenStoreDisk(t *testing.T) {
	cfg := config.New()
	cfg.Snapshot.Dir = t.TempDir()
	cfg.Snapshot.Prefix = "runs"

	store, where, err := openStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Snapshot.Dir, where)

	key, err := store.Put(context.Background(), "demo", []byte("<p>x</p>"))
	require.NoError(t, err)
	assert.Equal(t, snapshot.Key("runs", "demo", []byte("<p>x</p>")), key)

	data, err := os.ReadFile(filepath.Join(cfg.Snapshot.Dir, key))
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))
}

func TestOpenStoreS3(t *testing.T) {
	cfg := config.New()
	cfg.Snapshot.Bucket = "snaps"
	cfg.Snapshot.Region = "us-east-1"

	store, where, err := openStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, "s3://snaps", where)
	assert.IsType(t, &snapshot.S3Store{}, store)
}

func TestWorkloadsReturnFreshSlices(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	id := 3
	fresh := func() int { id++; return id }

	for _, w := range workloads {
		items := []int{1, 2, 3}
		next := w.next(items, rng, fresh)
		assert.Equal(t, []int{1, 2, 3}, items, w.name)
		if len(next) > 0 && len(items) > 0 {
			assert.NotSame(t, &items[0], &next[0], w.name)
		}
	}

	assert.Equal(t, []int{3, 2, 1}, workloads[0].next([]int{1, 2, 3}, rng, fresh))
	assert.Equal(t, []int{1, 3, 2, 4}, workloads[1].next([]int{1, 2, 3, 4}, rng, fresh))
}

func TestMeasure(t *testing.T) {
	logger, _ := logtest.New()
	app, stop := startApp(config.New(), logger)
	defer stop()

	row, err := measure(app, workloads[0], 10, benchConfig{Iters: 3, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, "reverse: 10", row[0])
	assert.NotEqual(t, "0", row[len(row)-1])
}
