package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/newslens/internal/jobs"
	"github.com/jonathan/newslens/internal/pipeline"
	"github.com/jonathan/newslens/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  `Start an HTTP server exposing asynchronous news searches, trend analysis and the status legend.`,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (default \":8080\")")
	cmd.Flags().String("taxonomy", "", `Classification taxonomy: "source" or "content"`)
	cmd.Flags().Int("workers", 0, "Concurrent per-article enrichments")
	cmd.Flags().String("trend-source", "", `Trend source: "none", "dataforseo" or "google"`)
	cmd.Flags().StringSlice("sources", nil, "Enabled news sources (google_news, newsdata, custom_search)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.FromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	trendSvc := pipeline.TrendsFromConfig(cfg)

	store := jobs.NewStore(cfg.JobTTL())
	defer store.Close()
	orch := jobs.NewOrchestrator(store, p, jobs.WithTrends(trendSvc))

	srv := server.New(server.Config{Addr: cfg.Addr}, orch, trendSvc)
	return srv.Start(ctx)
}
