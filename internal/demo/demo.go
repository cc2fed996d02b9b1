package demo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/vango-dev/vrt"
	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/renderer"
	"github.com/vango-dev/vrt/pkg/vdom"
)

// Options tunes the demo application.
type Options struct {
	// Todos seeds the todo list.
	Todos []string

	// Latency is how long the async panel takes to load.
	Latency time.Duration

	// Timeout fails the async panel when loading takes longer. Zero
	// disables it.
	Timeout time.Duration
}

// DefaultOptions returns the options the CLI uses.
func DefaultOptions() Options {
	return Options{
		Todos:   []string{"read the docs", "write a component"},
		Latency: 50 * time.Millisecond,
		Timeout: time.Second,
	}
}

// App builds the demo root: a counter, a todo list and an async panel,
// each inside a Card.
func App(opts Options) *renderer.Definition {
	panel := AsyncPanel(opts.Latency, opts.Timeout)
	return &renderer.Definition{
		Name: "Demo",
		Render: func(*renderer.RenderContext) *vdom.VNode {
			return vdom.Section(vdom.ID("demo"),
				vdom.H1("vrt demo"),
				card("Counter", vdom.Comp(Counter, vdom.Props{"step": 2})),
				card("Todos", vdom.Comp(TodoList, vdom.Props{"initial": opts.Todos})),
				card("Async", vdom.Comp(panel)),
			)
		},
	}
}

func card(title string, body *vdom.VNode) *vdom.VNode {
	return vdom.Comp(Card,
		vdom.Slots{"header": func(vdom.Props) []*vdom.VNode {
			return []*vdom.VNode{vdom.Text(title)}
		}},
		body,
	)
}

// Step is one scripted interaction. Action is "click", "input" or "wait".
type Step struct {
	Action   string
	Selector string
	Value    string
	Wait     time.Duration
}

// Scenario is a named sequence of steps.
type Scenario struct {
	Name        string
	Description string
	Steps       []Step
}

func click(selector string) Step { return Step{Action: "click", Selector: selector} }

func input(selector, value string) Step {
	return Step{Action: "input", Selector: selector, Value: value}
}

func wait(d time.Duration) Step { return Step{Action: "wait", Wait: d} }

var scenarios = map[string]Scenario{
	"counter": {
		Name:        "counter",
		Description: "increment three times, decrement once",
		Steps:       []Step{click(".inc"), click(".inc"), click(".inc"), click(".dec")},
	},
	"todo": {
		Name:        "todo",
		Description: "add an entry, complete the first, reverse the list, remove the first",
		Steps: []Step{
			input(".new-todo", "ship it"),
			click(".add"),
			click(".title"),
			click(".reverse"),
			click(".remove"),
		},
	},
	"async": {
		Name:        "async",
		Description: "wait for the async panel to load",
		Steps:       []Step{wait(150 * time.Millisecond)},
	},
}

func init() {
	var all []Step
	for _, name := range []string{"counter", "todo", "async"} {
		all = append(all, scenarios[name].Steps...)
	}
	scenarios["all"] = Scenario{Name: "all", Description: "every scenario in turn", Steps: all}
}

// Names lists the scenario names in order.
func Names() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named scenario.
func Lookup(name string) (Scenario, error) {
	s, ok := scenarios[name]
	if !ok {
		return Scenario{}, errors.New("E141").
			WithDetailf("no scenario named %q", name).
			WithSuggestion("Choose one of: " + strings.Join(Names(), ", "))
	}
	return s, nil
}

// Apply runs the steps against app, whose loop must be running.
func (s Scenario) Apply(ctx context.Context, app *vrt.App) error {
	for i, step := range s.Steps {
		if step.Action == "wait" {
			select {
			case <-time.After(step.Wait):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var err error
		doErr := app.Do(ctx, func() { err = apply(app, step) })
		if doErr != nil {
			return doErr
		}
		if err != nil {
			return errors.New("E142").
				WithDetailf("%s step %d", s.Name, i+1).
				Wrap(err)
		}
	}
	return nil
}

func apply(app *vrt.App, step Step) error {
	target := app.Root.Query(step.Selector)
	if target == nil {
		return errors.Newf(errors.CategoryCLI, "no element matches %q", step.Selector)
	}
	switch step.Action {
	case "click":
		app.Doc.Click(target)
	case "input":
		app.Doc.Input(target, step.Value)
	default:
		return errors.Newf(errors.CategoryCLI, "unknown action %q", step.Action)
	}
	return nil
}
