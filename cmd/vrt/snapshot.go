package main

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vrt/internal/config"
	"github.com/vango-dev/vrt/internal/demo"
	"github.com/vango-dev/vrt/pkg/snapshot"
)

func snapshotCmd() *cobra.Command {
	var (
		scenario string
		name     string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the rendered demo app",
		Long: `Render the demo app after a scenario and store the HTML.

Snapshots are written to snapshot.dir, or to S3 when snapshot.bucket is
set in vrt.json. Keys carry a content hash, so unchanged output maps to
the same key.

Examples:
  vrt snapshot
  vrt snapshot --scenario=todo --name=todo-done`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), scenario, name, timeout)
		},
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", "all", "Scenario to apply before exporting")
	cmd.Flags().StringVar(&name, "name", "", "Snapshot name (default: the scenario name)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Abort after this long")

	return cmd
}

func runSnapshot(ctx context.Context, scenarioName, name string, timeout time.Duration) error {
	s, err := demo.Lookup(scenarioName)
	if err != nil {
		return err
	}
	if name == "" {
		name = s.Name
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	store, where, err := openStore(cfg)
	if err != nil {
		return err
	}

	app, stop := startApp(cfg, logger)
	defer stop()

	html, err := renderScenario(ctx, app, s, timeout)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	key, err := store.Put(ctx, name, []byte(html))
	if err != nil {
		return err
	}

	success("Stored %s in %s", key, where)
	info("Size: %s", humanize.Bytes(uint64(len(html))))
	return nil
}

// openStore picks S3 when a bucket is configured and the snapshot
// directory otherwise.
func openStore(cfg *config.Config) (snapshot.Store, string, error) {
	if cfg.Snapshot.Bucket != "" {
		client := snapshot.NewS3Client(cfg.Snapshot.Region)
		return snapshot.NewS3Store(client, cfg.Snapshot.Bucket, cfg.Snapshot.Prefix),
			"s3://" + cfg.Snapshot.Bucket, nil
	}
	store, err := snapshot.NewDiskStore(cfg.SnapshotPath(), cfg.Snapshot.Prefix)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}
