package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/newslens/internal/jobs"
	"github.com/jonathan/newslens/internal/observability"
	"github.com/jonathan/newslens/internal/pipeline"
	"github.com/jonathan/newslens/internal/types"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search TERM [TERM...]",
		Short: "Run one search and print the enriched results",
		Long: `Run a search through the same job pipeline the server uses and wait for it to finish.

Results are printed as a summary table, or as the full JSON payload with --json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}
	cmd.Flags().Int("limit", 0, "Maximum number of articles (default from config)")
	cmd.Flags().StringSlice("domains", nil, "Restrict results to these publisher domains")
	cmd.Flags().Bool("json", false, "Print the full results payload as JSON")
	cmd.Flags().String("taxonomy", "", `Classification taxonomy: "source" or "content"`)
	cmd.Flags().Int("workers", 0, "Concurrent per-article enrichments")
	cmd.Flags().String("trend-source", "", `Attach a trend analysis from "dataforseo" or "google"`)
	cmd.Flags().StringSlice("sources", nil, "Enabled news sources (google_news, newsdata, custom_search)")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	domains, _ := cmd.Flags().GetStringSlice("domains")
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := pipeline.FromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	store := jobs.NewStore(cfg.JobTTL())
	defer store.Close()
	orch := jobs.NewOrchestrator(store, p, jobs.WithTrends(pipeline.TrendsFromConfig(cfg)))

	snap, err := searchAndWait(ctx, orch, types.SearchRequest{Terms: args, Limit: limit, Sources: domains}, progressWriter(cmd, cfg.Verbose))
	if err != nil {
		return err
	}
	return printSnapshot(cmd.OutOrStdout(), snap, asJSON)
}

// searchAndWait submits req and polls until the job completes. Each progress
// change is passed to onProgress.
func searchAndWait(ctx context.Context, orch *jobs.Orchestrator, req types.SearchRequest, onProgress func(jobs.Progress)) (jobs.Snapshot, error) {
	id, err := orch.Submit(ctx, req)
	if err != nil {
		return jobs.Snapshot{}, err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	var last jobs.Progress
	for {
		snap, err := orch.Poll(id)
		if err != nil {
			return jobs.Snapshot{}, err
		}
		if onProgress != nil && snap.Progress != last {
			last = snap.Progress
			onProgress(last)
		}
		if snap.Ready {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return jobs.Snapshot{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func progressWriter(cmd *cobra.Command, verbose bool) func(jobs.Progress) {
	if !verbose {
		return nil
	}
	w := cmd.ErrOrStderr()
	return func(p jobs.Progress) {
		if p.Total > 0 {
			fmt.Fprintf(w, "  %-20s %d/%d\n", p.Phase, p.Current, p.Total) //nolint:errcheck
		} else {
			fmt.Fprintf(w, "  %s\n", p.Phase) //nolint:errcheck
		}
	}
}

func printSnapshot(w io.Writer, snap jobs.Snapshot, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	printer := observability.NewPrinter(w)
	printer.PrintSummary(snap.Terms, snap.Summary)
	printer.PrintArticles(snap.Results)
	printer.PrintTrendReport(snap.Trend)
	if snap.Error != "" {
		return fmt.Errorf("search finished with an error: %s", snap.Error)
	}
	return nil
}
