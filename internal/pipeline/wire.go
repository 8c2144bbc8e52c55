package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/newslens/internal/backfill"
	"github.com/jonathan/newslens/internal/bias"
	"github.com/jonathan/newslens/internal/classify"
	"github.com/jonathan/newslens/internal/config"
	"github.com/jonathan/newslens/internal/fetch"
	"github.com/jonathan/newslens/internal/geo"
	"github.com/jonathan/newslens/internal/sentiment"
	"github.com/jonathan/newslens/internal/sources"
	"github.com/jonathan/newslens/internal/trends"
)

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// SourcesFromConfig binds the enabled source adapters. Adapters missing
// credentials are skipped with a warning.
func SourcesFromConfig(ctx context.Context, cfg *config.Config) *sources.Aggregator {
	var bindings []sources.Binding
	if cfg.SourceEnabled(config.SourceGoogleNews) {
		bindings = append(bindings, sources.Binding{Source: sources.NewGoogleNewsRSS(), Timeout: seconds(cfg.GoogleNewsTimeoutSecs)})
	}
	if cfg.SourceEnabled(config.SourceNewsData) {
		if cfg.NewsDataAPIKey == "" {
			log.Printf("[pipeline] %s not set, skipping newsdata source", config.EnvNewsDataAPIKey)
		} else {
			bindings = append(bindings, sources.Binding{Source: sources.NewNewsData(cfg.NewsDataAPIKey), Timeout: seconds(cfg.NewsDataTimeoutSecs)})
		}
	}
	if cfg.SourceEnabled(config.SourceCustomSearch) {
		cs, err := sources.NewCustomSearch(ctx, cfg.CSEAPIKey, cfg.CSECX)
		if err != nil {
			log.Printf("[pipeline] skipping custom search source: %v", err)
		} else {
			bindings = append(bindings, sources.Binding{Source: cs, Timeout: seconds(cfg.CustomSearchTimeoutSecs)})
		}
	}
	return sources.NewAggregator(bindings...)
}

// EnricherFromConfig loads the registries named in cfg, falling back to the
// embedded copies when a path is empty.
func EnricherFromConfig(cfg *config.Config) (*Enricher, error) {
	var (
		gaz *geo.Gazetteer
		err error
	)
	if cfg.GazetteerPath != "" {
		gaz, err = geo.LoadGazetteer(cfg.GazetteerPath)
	} else {
		gaz, err = geo.DefaultGazetteer()
	}
	if err != nil {
		return nil, err
	}

	var srcs *geo.SourceRegistry
	if cfg.SourceRegistryPath != "" {
		srcs, err = geo.LoadSourceRegistry(cfg.SourceRegistryPath, gaz)
	} else {
		srcs, err = geo.DefaultSourceRegistry(gaz)
	}
	if err != nil {
		return nil, err
	}

	var ratings *bias.Registry
	if cfg.MediaBiasPath != "" {
		ratings, err = bias.Load(cfg.MediaBiasPath)
	} else {
		ratings, err = bias.Default()
	}
	if err != nil {
		return nil, err
	}

	var lex *sentiment.Lexicon
	if cfg.LexiconPath != "" {
		lex, err = sentiment.LoadLexicon(cfg.LexiconPath)
	} else {
		lex, err = sentiment.DefaultLexicon()
	}
	if err != nil {
		return nil, err
	}

	taxonomy, err := classify.ParseTaxonomy(cfg.Taxonomy)
	if err != nil {
		return nil, err
	}
	var opts []classify.Option
	if cfg.KeywordsPath != "" {
		kw, err := classify.LoadKeywords(cfg.KeywordsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, classify.WithKeywords(kw))
	}

	return &Enricher{
		Locator:    geo.NewLocator(gaz, srcs),
		Bias:       ratings,
		Classifier: classify.New(taxonomy, opts...),
		Sentiment:  sentiment.NewScorer(lex),
		Workers:    cfg.Workers,
	}, nil
}

// FromConfig assembles a Pipeline from a merged configuration.
func FromConfig(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	enricher, err := EnricherFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load enrichment registries: %w", err)
	}

	extractor := fetch.NewExtractor(fetch.DefaultOptions(), cfg.UseBrowser)
	extractor.Verbose = cfg.Verbose

	agg := SourcesFromConfig(ctx, cfg)
	log.Printf("[pipeline] sources: %v", agg.Sources())

	return New(Options{
		Fetcher:      agg,
		Backfiller:   backfill.New(extractor, cfg.BackfillConcurrency, cfg.BackfillTimeout()),
		Enricher:     enricher,
		MinOverlap:   cfg.MinOverlap,
		DefaultLimit: cfg.DefaultLimit,
	}), nil
}

// TrendsFromConfig builds the trend service. With trend_source "none" the
// service reports ErrNotConfigured.
func TrendsFromConfig(cfg *config.Config) *trends.Service {
	var f trends.Fetcher
	switch cfg.TrendSource {
	case config.TrendSourceDataForSEO:
		d := trends.NewDataForSEO(cfg.DataForSEOLogin, cfg.DataForSEOPassword)
		if cfg.TrendLocation != "" {
			d.Location = cfg.TrendLocation
		}
		f = d
	case config.TrendSourceGoogle:
		f = trends.NewGoogleTrends(cfg.UseBrowser)
	}
	return trends.NewService(f,
		trends.WithLookback(time.Duration(cfg.TrendLookbackDays)*24*time.Hour),
		trends.WithRegion(cfg.TrendGeo, cfg.TrendLocation),
	)
}
