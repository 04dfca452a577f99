package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/parthkaria14/GenAdvisor/internal/config"
	"github.com/parthkaria14/GenAdvisor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve starts the GenAdvisor HTTP API. Market feed files are
watched for changes and the knowledge graph is rebuilt automatically;
a periodic refresh runs as a fallback for missed events.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	srv := server.New(a.cfg.Server, server.Deps{
		Pipeline: a.pipeline,
		Advisor:  a.advisor,
		Store:    a.store,
		Holder:   a.holder,
		Builder:  a.builder,
		Search:   a.search,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})

	go watchFeeds(ctx, a)
	go periodicRefresh(ctx, a)

	return srv.Run(ctx)
}

// watchFeeds rebuilds the snapshot when feed files change on disk.
func watchFeeds(ctx context.Context, a *app) {
	watcher, err := config.NewWatcher(a.cfg.Market.DataDir, a.cfg.Market.WatchDebounce, a.logger)
	if err != nil {
		a.logger.Warn("feed watcher unavailable, relying on periodic refresh",
			"dir", a.cfg.Market.DataDir, "error", err)
		return
	}
	defer watcher.Close()
	watcher.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-watcher.Events():
			if !ok {
				return
			}
			a.logger.Info("feed file changed, refreshing", "path", path)
			if err := a.refresh(ctx); err != nil {
				a.logger.Error("refresh after feed change failed", "error", err)
			}
		}
	}
}

// periodicRefresh reloads the snapshot on the configured interval.
func periodicRefresh(ctx context.Context, a *app) {
	interval := a.cfg.Market.RefreshInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.refresh(ctx); err != nil {
				a.logger.Error("periodic refresh failed", "error", err)
			}
		}
	}
}
