package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt"
	"github.com/vango-dev/vrt/internal/demo"
	"github.com/vango-dev/vrt/pkg/host/memdom"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// workload derives the next list from the current one. It must return a
// new slice.
type workload struct {
	name string
	next func(items []int, rng *rand.Rand, fresh func() int) []int
}

var workloads = []workload{
	{"reverse", func(items []int, _ *rand.Rand, _ func() int) []int {
		out := make([]int, len(items))
		for i, v := range items {
			out[len(items)-1-i] = v
		}
		return out
	}},
	{"swap", func(items []int, _ *rand.Rand, _ func() int) []int {
		out := append([]int(nil), items...)
		if len(out) > 2 {
			out[1], out[len(out)-2] = out[len(out)-2], out[1]
		}
		return out
	}},
	{"shuffle", func(items []int, rng *rand.Rand, _ func() int) []int {
		out := append([]int(nil), items...)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}},
	{"rotate", func(items []int, _ *rand.Rand, fresh func() int) []int {
		if len(items) == 0 {
			return []int{fresh()}
		}
		out := append([]int(nil), items[1:]...)
		return append(out, fresh())
	}},
}

type benchConfig struct {
	Sizes []int
	Iters int
	Seed  int64
}

func benchCmd() *cobra.Command {
	bc := benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure keyed list reorders",
		Long: `Render a keyed list and time each reorder from state write to
patched document.

Workloads:
  reverse  reverse the list
  swap     swap the second and the second to last entry
  shuffle  random permutation
  rotate   drop the first entry and append a new one

Examples:
  vrt bench
  vrt bench --sizes=100,1000 --iters=50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(bc)
		},
	}

	cmd.Flags().IntSliceVar(&bc.Sizes, "sizes", []int{10, 100, 1_000}, "List sizes to measure")
	cmd.Flags().IntVarP(&bc.Iters, "iters", "n", 100, "Reorders per workload and size")
	cmd.Flags().Int64Var(&bc.Seed, "seed", 1, "Seed for the shuffle workload")

	return cmd
}

func runBench(bc benchConfig) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if bc.Iters <= 0 {
		warn("--iters must be positive, using 1")
		bc.Iters = 1
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Keyed list reorders")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max", "host ops"})

	for _, w := range workloads {
		for _, size := range bc.Sizes {
			app, stop := startApp(cfg, logger)
			row, err := measure(app, w, size, bc)
			stop()
			if err != nil {
				return err
			}
			tbl.AppendRow(row)
		}
	}

	tbl.Render()
	return nil
}

func measure(app *vrt.App, w workload, size int, bc benchConfig) (table.Row, error) {
	rng := rand.New(rand.NewSource(bc.Seed))
	nextID := 0
	fresh := func() int {
		nextID++
		return nextID
	}

	initial := make([]int, size)
	for i := range initial {
		initial[i] = fresh()
	}
	items := app.Runtime.Ref(initial)

	root := &renderer.Definition{
		Name: "Bench",
		Render: func(*renderer.RenderContext) *vdom.VNode {
			return vdom.Comp(demo.KeyedList, vdom.Props{"items": items.Get()})
		},
	}
	if err := app.Do(context.Background(), func() { app.Mount(root, nil) }); err != nil {
		return nil, err
	}

	app.Doc.ResetStats()
	tach := tachymeter.New(&tachymeter.Config{Size: bc.Iters})
	for i := 0; i < bc.Iters; i++ {
		current, _ := items.Get().([]int)
		next := w.next(current, rng, fresh)

		start := time.Now()
		app.Run(func() { items.Set(next) })
		tach.AddTime(time.Since(start))
	}

	calc := tach.Calc()
	return table.Row{
		fmt.Sprintf("%s: %d", w.name, size),
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
		humanize.Comma(int64(hostOps(app.Doc.Stats()))),
	}, nil
}

func hostOps(s memdom.Stats) int {
	return s.Creates + s.Inserts + s.Moves + s.Removes + s.TextUpdates + s.PropPatches
}
