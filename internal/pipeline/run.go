// Package pipeline runs one news search end to end: multi-source fetch,
// overlap filtering, content backfill and per-article enrichment.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/newslens/internal/backfill"
	"github.com/jonathan/newslens/internal/classify"
	"github.com/jonathan/newslens/internal/dedup"
	"github.com/jonathan/newslens/internal/pipeline/steps"
	"github.com/jonathan/newslens/internal/sources"
	"github.com/jonathan/newslens/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Phase   steps.Phase `json:"phase"`
	Current int         `json:"current"`
	Total   int         `json:"total"`
	Message string      `json:"message,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Fetcher gathers raw articles for a term set. *sources.Aggregator implements it.
type Fetcher interface {
	Fetch(ctx context.Context, terms []string, limit int, domains []string, progress sources.ProgressFunc) []types.RawArticle
}

// Backfiller fills in missing article bodies. *backfill.Backfiller implements it.
type Backfiller interface {
	Backfill(ctx context.Context, articles []types.RawArticle, progress backfill.ProgressFunc) int
}

// Options assembles a Pipeline.
type Options struct {
	Fetcher      Fetcher
	Backfiller   Backfiller // optional
	Enricher     *Enricher
	MinOverlap   int
	DefaultLimit int
}

// Pipeline is safe for concurrent Runs.
type Pipeline struct {
	fetcher      Fetcher
	backfiller   Backfiller
	enricher     *Enricher
	minOverlap   int
	defaultLimit int
}

// Result is everything a completed search produces.
type Result struct {
	Articles   []types.EnrichedArticle `json:"results"`
	Summary    types.Summary           `json:"summary"`
	Dedup      dedup.Stats             `json:"dedup"`
	Metrics    classify.Metrics        `json:"metrics"`
	Fetched    int                     `json:"fetched"`
	Backfilled int                     `json:"backfilled"`
	Duration   time.Duration           `json:"duration"`
}

// New creates a new Pipeline
func New(opts Options) *Pipeline {
	if opts.Enricher == nil {
		opts.Enricher = &Enricher{}
	}
	if opts.MinOverlap < 1 {
		opts.MinOverlap = 1
	}
	return &Pipeline{
		fetcher:      opts.Fetcher,
		backfiller:   opts.Backfiller,
		enricher:     opts.Enricher,
		minOverlap:   opts.MinOverlap,
		defaultLimit: opts.DefaultLimit,
	}
}

// emit calls the progress callback if configured
func emit(cb ProgressCallback, phase steps.Phase, current, total int, message string) {
	if cb != nil {
		cb(ProgressEvent{Phase: phase, Current: current, Total: total, Message: message})
	}
}

// Run executes the search. Source, content and per-article failures are
// absorbed; only an invalid request or a cancelled context returns an error.
func (p *Pipeline) Run(ctx context.Context, req types.SearchRequest, onProgress ProgressCallback) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}
	if p.fetcher == nil {
		return nil, fmt.Errorf("pipeline has no article fetcher")
	}
	start := time.Now()
	limit := req.EffectiveLimit(p.defaultLimit)

	emit(onProgress, steps.Starting, 0, 0, steps.Registry[steps.Starting].Description)

	// Step 1: fan out to every source.
	emit(onProgress, steps.Fetching, 0, 0, "")
	raw := p.fetcher.Fetch(ctx, req.Terms, limit, req.Sources, func(done, total int) {
		emit(onProgress, steps.Fetching, done, total, "")
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: drop articles sharing no vocabulary with the rest.
	emit(onProgress, steps.Filtering, 0, len(raw), "")
	stats := dedup.ComputeStats(raw, p.minOverlap)
	filtered := dedup.Filter(raw, p.minOverlap)
	emit(onProgress, steps.Filtering, len(raw), len(raw), fmt.Sprintf("kept %d of %d", len(filtered), len(raw)))

	// Step 3: backfill missing content.
	emit(onProgress, steps.ExtractingContent, 0, len(filtered), "")
	backfilled := 0
	if p.backfiller != nil {
		backfilled = p.backfiller.Backfill(ctx, filtered, func(done, total int) {
			emit(onProgress, steps.ExtractingContent, done, total, "")
		})
	}

	// Step 4: enrich each article.
	emit(onProgress, steps.ExtractingCities, 0, len(filtered), "")
	enriched := p.enricher.EnrichAll(ctx, filtered, func(done, total int) {
		emit(onProgress, steps.ExtractingCities, done, total, "")
	})

	results := make([]classify.Result, len(enriched))
	for i := range enriched {
		results[i] = classify.ResultFromArticle(&enriched[i])
	}

	res := &Result{
		Articles:   enriched,
		Summary:    types.Summarize(enriched),
		Dedup:      stats,
		Metrics:    classify.ComputeMetrics(results),
		Fetched:    len(raw),
		Backfilled: backfilled,
		Duration:   time.Since(start),
	}
	log.Printf("[pipeline] %q: %d fetched, %d kept, %d backfilled, %d retractions, %d corrections in %s",
		strings.Join(req.Terms, ", "), len(raw), len(enriched), backfilled,
		res.Summary.Retractions, res.Summary.Corrections, res.Duration.Round(time.Millisecond))
	return res, nil
}
