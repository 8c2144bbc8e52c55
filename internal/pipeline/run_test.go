package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newslens/internal/backfill"
	"github.com/jonathan/newslens/internal/bias"
	"github.com/jonathan/newslens/internal/classify"
	"github.com/jonathan/newslens/internal/geo"
	"github.com/jonathan/newslens/internal/pipeline/steps"
	"github.com/jonathan/newslens/internal/sentiment"
	"github.com/jonathan/newslens/internal/sources"
	"github.com/jonathan/newslens/internal/types"
)

func sampleArticles() []types.RawArticle {
	return []types.RawArticle{
		{Title: "Vaccine study retracted by journal", Link: "https://apnews.com/a", Source: "Associated Press", Description: "The journal retracted the vaccine study."},
		{Title: "Vaccine rollout expands in Chicago", Link: "https://example.org/b", Source: "Example Daily", Description: "Clinics in Chicago extend hours."},
		{Title: "Vaccine makers report strong demand", Link: "https://example.org/c", Source: "Example Daily", Description: "Demand was strong and good."},
	}
}

func newTestEnricher(t *testing.T, opts ...classify.Option) *Enricher {
	t.Helper()
	loc, err := geo.NewDefaultLocator()
	require.NoError(t, err)
	ratings, err := bias.Default()
	require.NoError(t, err)
	lex, err := sentiment.DefaultLexicon()
	require.NoError(t, err)
	return &Enricher{
		Locator:    loc,
		Bias:       ratings,
		Classifier: classify.New(classify.TaxonomySource, opts...),
		Sentiment:  sentiment.NewScorer(lex),
		Workers:    2,
	}
}

type fillAll struct{}

func (fillAll) Backfill(ctx context.Context, arts []types.RawArticle, progress backfill.ProgressFunc) int {
	n := 0
	for i := range arts {
		if arts[i].Content == "" {
			arts[i].Content = "Full article body."
			n++
		}
		if progress != nil {
			progress(i+1, len(arts))
		}
	}
	return n
}

func TestRun_EndToEnd(t *testing.T) {
	p := New(Options{
		Fetcher:    sources.NewAggregator(sources.Binding{Source: &sources.Static{Articles: sampleArticles()}}),
		Backfiller: fillAll{},
		Enricher:   newTestEnricher(t),
	})

	var mu sync.Mutex
	var phases []steps.Phase
	res, err := p.Run(context.Background(), types.SearchRequest{Terms: []string{"vaccine"}}, func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		if len(phases) == 0 || phases[len(phases)-1] != ev.Phase {
			phases = append(phases, ev.Phase)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, []steps.Phase{steps.Starting, steps.Fetching, steps.Filtering, steps.ExtractingContent, steps.ExtractingCities}, phases)
	require.Len(t, res.Articles, 3)
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 3, res.Backfilled)

	first := res.Articles[0]
	assert.Equal(t, "Vaccine study retracted by journal", first.Title)
	assert.Equal(t, types.StatusRetraction, first.Status)
	assert.False(t, first.BiasUnknown)
	assert.Equal(t, -1, first.Bias)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Full article body.", first.Content)

	unknown := res.Articles[1]
	assert.True(t, unknown.BiasUnknown)
	assert.Equal(t, 0, unknown.Bias)
	assert.Equal(t, types.FactualUnknown, unknown.FactualReporting)

	assert.Equal(t, 3, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Retractions)
	assert.Equal(t, res.Summary.Total, res.Summary.StatusTotal())
	assert.Len(t, res.Dedup.OverlapCounts, 3)
}

type limitRecorder struct {
	limits []int
}

func (l *limitRecorder) Fetch(_ context.Context, _ []string, limit int, _ []string, _ sources.ProgressFunc) []types.RawArticle {
	l.limits = append(l.limits, limit)
	return nil
}

func TestRun_LimitFallsBackToConfiguredDefault(t *testing.T) {
	rec := &limitRecorder{}
	p := New(Options{Fetcher: rec, DefaultLimit: 12})

	_, err := p.Run(context.Background(), types.SearchRequest{Terms: []string{"flood"}}, nil)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), types.SearchRequest{Terms: []string{"flood"}, Limit: 4}, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{12, 4}, rec.limits)
}

func TestRun_InvalidRequest(t *testing.T) {
	p := New(Options{Fetcher: sources.NewAggregator()})
	_, err := p.Run(context.Background(), types.SearchRequest{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid search request")
}

func TestRun_NoSourcesYieldsEmptyResult(t *testing.T) {
	p := New(Options{Fetcher: sources.NewAggregator(), Enricher: newTestEnricher(t)})
	res, err := p.Run(context.Background(), types.SearchRequest{Terms: []string{"x"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Articles)
	assert.Equal(t, 0, res.Summary.Total)
}

func TestRun_FailingSourceIsAbsorbed(t *testing.T) {
	agg := sources.NewAggregator(
		sources.Binding{Source: &sources.Static{SourceName: "broken", Err: assert.AnError}},
		sources.Binding{Source: &sources.Static{Articles: sampleArticles()[:1]}},
	)
	p := New(Options{Fetcher: agg, Enricher: newTestEnricher(t)})
	res, err := p.Run(context.Background(), types.SearchRequest{Terms: []string{"vaccine"}}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Articles, 1)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(Options{Fetcher: sources.NewAggregator(sources.Binding{Source: &sources.Static{Articles: sampleArticles()}})})
	_, err := p.Run(ctx, types.SearchRequest{Terms: []string{"vaccine"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnrichAll_PanickingRuleFallsBack(t *testing.T) {
	boom := classify.Rule{
		Name:   "boom",
		Status: types.StatusDisputed,
		Match: func(ev *classify.Evidence) ([]string, float64) {
			if len(ev.Text) > 0 && ev.Text[0] == 'b' {
				panic("rule exploded")
			}
			return nil, 0
		},
	}
	e := newTestEnricher(t, classify.WithRules([]classify.Rule{boom}))

	raw := []types.RawArticle{
		{Title: "Bad article", Link: "https://apnews.com/x", Source: "Associated Press"},
		{Title: "Good article", Link: "https://apnews.com/y", Source: "Associated Press"},
	}
	out := e.EnrichAll(context.Background(), raw, nil)
	require.Len(t, out, 2)

	assert.Equal(t, "Bad article", out[0].Title)
	assert.Equal(t, types.StatusNewsArticle, out[0].Status)
	assert.True(t, out[0].BiasUnknown)
	assert.Equal(t, types.GeoViaFallback, out[0].GeoSource)
	assert.Equal(t, sentiment.LabelNeutral, out[0].SentimentLabel)

	assert.Equal(t, "Good article", out[1].Title)
	assert.False(t, out[1].BiasUnknown)
}

func TestEnrichAll_ProgressAndOrder(t *testing.T) {
	e := newTestEnricher(t)
	raw := make([]types.RawArticle, 20)
	for i := range raw {
		raw[i] = types.RawArticle{Title: string(rune('a'+i)) + " headline"}
	}

	var mu sync.Mutex
	var seen []int
	out := e.EnrichAll(context.Background(), raw, func(done, total int) {
		mu.Lock()
		seen = append(seen, done)
		mu.Unlock()
		assert.Equal(t, 20, total)
	})

	for i := range out {
		assert.Equal(t, raw[i].Title, out[i].Title)
	}
	assert.Len(t, seen, 20)
	assert.Contains(t, seen, 20)
}

func TestEnrich_NilComponents(t *testing.T) {
	out := (&Enricher{}).Enrich(types.RawArticle{Title: "Anything"}, 0)
	assert.Equal(t, types.StatusNewsArticle, out.Status)
	assert.Equal(t, "United States", out.City)
	assert.Equal(t, sentiment.LabelNeutral, out.SentimentLabel)
	assert.True(t, out.BiasUnknown)
}
