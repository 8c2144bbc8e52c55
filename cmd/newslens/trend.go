package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/newslens/internal/observability"
	"github.com/jonathan/newslens/internal/pipeline"
	"github.com/jonathan/newslens/internal/trends"
)

func newTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend KEYWORD [KEYWORD...]",
		Short: "Analyze keyword interest over time",
		Long: `Fetch a keyword's interest series and segment it into emergence, growth, peak,
decline and death phases. Several keywords are compared side by side.

Series can be read from JSON files with --series instead of a live trend source.
With --region-map, a single keyword's regional interest is written onto the given
boundary polygons and printed as GeoJSON.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTrend,
	}
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().String("geo", "", "Country code (default from config)")
	cmd.Flags().StringSlice("series", nil, "Trend series JSON files to analyze offline")
	cmd.Flags().String("trend-source", "", `Trend source: "dataforseo" or "google"`)
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().String("region-map", "", "GeoJSON region boundaries to annotate with per-region interest (prints GeoJSON)")
	cmd.Flags().String("region-key", trends.DefaultRegionNameKey, "Feature property holding the region name")
	return cmd
}

func parseDay(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", flag, v)
	}
	return t, nil
}

func runTrend(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	startStr, _ := flags.GetString("start")
	endStr, _ := flags.GetString("end")
	geo, _ := flags.GetString("geo")
	files, _ := flags.GetStringSlice("series")
	asJSON, _ := flags.GetBool("json")
	regionMap, _ := flags.GetString("region-map")
	regionKey, _ := flags.GetString("region-key")

	q := trends.Query{Geo: geo}
	if q.Start, err = parseDay("start", startStr); err != nil {
		return err
	}
	if q.End, err = parseDay("end", endStr); err != nil {
		return err
	}
	if !q.Start.IsZero() && !q.End.IsZero() && !q.End.After(q.Start) {
		return fmt.Errorf("--end must be after --start")
	}

	var svc *trends.Service
	if len(files) > 0 {
		svc, q, err = offlineService(files, q)
		if err != nil {
			return err
		}
	} else {
		svc = pipeline.TrendsFromConfig(cfg)
	}
	if !svc.Configured() {
		return fmt.Errorf("%w: set trend_source in the config, pass --trend-source or --series", trends.ErrNotConfigured)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	if regionMap != "" {
		if len(args) != 1 {
			return fmt.Errorf("--region-map takes exactly one keyword")
		}
		boundaries, err := trends.LoadRegionMap(regionMap)
		if err != nil {
			return err
		}
		q.Keyword = args[0]
		a, err := svc.Analyze(ctx, q)
		if err != nil {
			return err
		}
		return writeJSON(out, boundaries.Annotate(a, regionKey))
	}

	if len(args) == 1 {
		q.Keyword = args[0]
		report, err := svc.Report(ctx, q)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, report)
		}
		printer.PrintTrendReport(report)
		return nil
	}

	analyses := svc.Compare(ctx, args, q)
	if len(analyses) == 0 {
		return fmt.Errorf("no trend data for any of %v", args)
	}
	if asJSON {
		return writeJSON(out, analyses)
	}
	printer.PrintComparison(analyses)
	return nil
}

// offlineService serves series files. Unset dates default to the span of the loaded points.
func offlineService(files []string, q trends.Query) (*trends.Service, trends.Query, error) {
	static := trends.NewStatic()
	var first, last time.Time
	for _, f := range files {
		ser, err := trends.LoadSeries(f)
		if err != nil {
			return nil, q, err
		}
		static.Add(ser)
		for _, p := range ser.Points {
			if first.IsZero() || p.Timestamp.Before(first) {
				first = p.Timestamp
			}
			if p.Timestamp.After(last) {
				last = p.Timestamp
			}
		}
	}
	if q.Start.IsZero() {
		q.Start = first
	}
	if q.End.IsZero() {
		q.End = last
	}
	return trends.NewService(static), q, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
