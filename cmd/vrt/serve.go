package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt/internal/demo"
	"github.com/vango-dev/vrt/pkg/preview"
	"github.com/vango-dev/vrt/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo app with live updates",
		Long: `Start the preview server.

The page relays clicks and input to the runtime over a WebSocket and
receives the re-rendered HTML after every flush. When metrics are
enabled in vrt.json they are exposed on the configured path.

Examples:
  vrt serve
  vrt serve --port=8080
  vrt serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from vrt.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vrt.json)")

	return cmd
}

func runServe(port int, host string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Preview.Port = port
	}
	if host != "" {
		cfg.Preview.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Tracing.Enabled {
		tracing := telemetry.SetupTracing(cfg.Tracing.TracerName,
			telemetry.NewLogExporter(logger.With("component", "tracing")))
		defer tracing.Shutdown(context.Background())
	}

	app, stop := startApp(cfg, logger)
	defer stop()

	if err := app.Do(context.Background(), func() {
		app.Mount(demo.App(demo.DefaultOptions()), nil)
	}); err != nil {
		return err
	}

	srv := preview.New(app,
		preview.WithLogger(logger.With("component", "preview")),
		preview.WithTitle("vrt demo"),
		preview.WithMetricsPath(cfg.Metrics.Path),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	printBanner()
	success("Serving on %s", cfg.PreviewURL())
	if app.Metrics() != nil {
		info("Metrics at %s%s", cfg.PreviewURL(), cfg.Metrics.Path)
	}
	if cfg.Tracing.Enabled {
		info("Tracing spans logged at DEBUG")
	}

	if err := srv.ListenAndServe(ctx, cfg.PreviewAddress()); err != nil {
		errorMsg("Server stopped: %v", err)
		return err
	}
	info("Shutting down...")
	return nil
}
