package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt"
	"github.com/vango-dev/vrt/internal/config"
)

// Version information set at build time.
var (
	version = vrt.Version
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬  ┬┬─┐┌┬┐
  └┐┌┘├┬┘ │
   └┘ ┴└─ ┴
`

// projectDir is the directory vrt.json is searched from.
var projectDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "vrt",
		Short: "A reactive component runtime for Go",
		Long: `vrt renders reactive components into an in-memory document.

Components declare props, hold reactive state created in setup and
render virtual nodes. State writes schedule re-renders that are
batched per flush and patched into the document with keyed diffing.

Commands:
  demo      run a scripted scenario against the demo app
  serve     open the demo app in a browser with live updates
  bench     measure keyed list reorders
  snapshot  export rendered HTML to disk or S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Directory to search for vrt.json")

	rootCmd.AddCommand(
		demoCmd(),
		serveCmd(),
		benchCmd(),
		snapshotCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the vrt ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}

// loadConfig reads vrt.json, or the defaults when there is none, and
// builds the logger it describes.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, nil, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return cfg, slog.New(handler), nil
}

// startApp creates an App from cfg and runs its loop until the returned
// stop function is called.
func startApp(cfg *config.Config, logger *slog.Logger) (*vrt.App, func()) {
	app := vrt.New(vrt.FromFile(cfg, logger))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := app.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("loop stopped", "error", err)
		}
	}()

	return app, func() {
		_ = app.Do(context.Background(), app.Unmount)
		cancel()
		app.Close()
		<-done
	}
}
