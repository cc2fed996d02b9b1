package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt"
	"github.com/vango-dev/vrt/internal/demo"
)

func demoCmd() *cobra.Command {
	var (
		list    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run a scripted scenario against the demo app",
		Long: `Mount the demo app, apply a scripted scenario and print the
resulting HTML.

The demo app holds a counter, a todo list and an async panel.

Examples:
  vrt demo
  vrt demo counter
  vrt demo --list`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				listScenarios()
				return nil
			}
			name := "all"
			if len(args) == 1 {
				name = args[0]
			}
			return runDemo(cmd.Context(), name, timeout)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List available scenarios")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Abort the scenario after this long")

	return cmd
}

func listScenarios() {
	for _, name := range demo.Names() {
		s, _ := demo.Lookup(name)
		info("%-8s %s", name, s.Description)
	}
}

func runDemo(ctx context.Context, name string, timeout time.Duration) error {
	scenario, err := demo.Lookup(name)
	if err != nil {
		return err
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	app, stop := startApp(cfg, logger)
	defer stop()

	html, err := renderScenario(ctx, app, scenario, timeout)
	if err != nil {
		return err
	}

	success("Applied %s (%d steps)", scenario.Name, len(scenario.Steps))
	fmt.Println(html)
	return nil
}

// renderScenario mounts the demo, applies scenario and returns the
// rendered HTML.
func renderScenario(ctx context.Context, app *vrt.App, scenario demo.Scenario, timeout time.Duration) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := app.Do(ctx, func() { app.Mount(demo.App(demo.DefaultOptions()), nil) }); err != nil {
		return "", err
	}
	if err := scenario.Apply(ctx, app); err != nil {
		return "", err
	}

	var html string
	if err := app.Do(ctx, func() { html = app.HTML() }); err != nil {
		return "", err
	}
	return html, nil
}
