package pipeline

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/newslens/internal/bias"
	"github.com/jonathan/newslens/internal/classify"
	"github.com/jonathan/newslens/internal/geo"
	"github.com/jonathan/newslens/internal/sentiment"
	"github.com/jonathan/newslens/internal/types"
)

// DefaultWorkers bounds concurrent per-article enrichment.
const DefaultWorkers = 8

// Enricher geolocates, rates, classifies and scores articles.
type Enricher struct {
	Locator    *geo.Locator
	Bias       *bias.Registry
	Classifier *classify.Classifier
	Sentiment  *sentiment.Scorer
	Workers    int
}

// EnrichAll enriches every article on a bounded worker pool. Output order
// matches input order; an article whose enrichment fails gets safe defaults.
func (e *Enricher) EnrichAll(ctx context.Context, raw []types.RawArticle, progress func(done, total int)) []types.EnrichedArticle {
	out := make([]types.EnrichedArticle, len(raw))
	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var done atomic.Int32
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i := range raw {
		g.Go(func() error {
			if ctx.Err() != nil {
				out[i] = e.fallback(raw[i], i)
			} else {
				out[i] = e.Enrich(raw[i], i)
			}
			n := done.Add(1)
			if progress != nil {
				progress(int(n), len(raw))
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Enrich runs every enrichment stage for the article at index.
func (e *Enricher) Enrich(a types.RawArticle, index int) (out types.EnrichedArticle) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[pipeline] enrichment of %q failed, using defaults: %v", a.Title, r)
			out = e.fallback(a, index)
		}
	}()

	out = types.EnrichedArticle{RawArticle: a, ID: uuid.NewString()}
	headline := strings.TrimSpace(a.Title + " " + a.Description)

	loc := e.locate(a, index)
	out.City, out.Latitude, out.Longitude = loc.Name, loc.Latitude, loc.Longitude
	out.GeoConfidence, out.GeoSource = loc.Confidence, loc.Via

	rating := bias.Unknown
	if e.Bias != nil {
		rating = e.Bias.Lookup(a.Link, a.Source)
	}
	out.Bias = rating.Bias
	out.BiasUnknown = !rating.Known
	out.FactualReporting = rating.FactualReporting
	if !rating.Known {
		out.Bias = 0
		out.FactualReporting = types.FactualUnknown
	}

	if e.Classifier != nil {
		res := e.Classifier.Classify(classify.Input{
			Text:             headline,
			Content:          a.Content,
			Bias:             out.BiasPtr(),
			FactualReporting: out.FactualReporting,
		})
		out.Status, out.StatusConfidence, out.StatusReason, out.StatusSignals = res.Status, res.Confidence, res.Reason, res.Signals
	} else {
		out.Status, out.StatusConfidence, out.StatusSignals = types.StatusNewsArticle, 1, []string{}
	}

	if e.Sentiment != nil {
		s := e.Sentiment.Score(headline)
		out.SentimentScore, out.SentimentComparative, out.SentimentLabel = s.Score, s.Comparative, s.Label
	} else {
		out.SentimentLabel = sentiment.LabelNeutral
	}
	return out
}

func (e *Enricher) locate(a types.RawArticle, index int) geo.Location {
	if e.Locator == nil {
		return (&geo.Locator{}).Fallback(index)
	}
	return e.Locator.Locate(strings.TrimSpace(a.Description+" "+a.Content), index, a.Source, a.Title)
}

// fallback is the result for an article whose enrichment failed: fallback
// city, neutral unknown bias, default classification and zero sentiment.
func (e *Enricher) fallback(a types.RawArticle, index int) types.EnrichedArticle {
	var loc geo.Location
	if e.Locator != nil {
		loc = e.Locator.Fallback(index)
	} else {
		loc = (&geo.Locator{}).Fallback(index)
	}

	res := classify.Result{Status: types.StatusNewsArticle, Confidence: 1, Signals: []string{}}
	if e.Classifier != nil {
		res = e.Classifier.Default()
	}

	return types.EnrichedArticle{
		RawArticle:       a,
		ID:               uuid.NewString(),
		City:             loc.Name,
		Latitude:         loc.Latitude,
		Longitude:        loc.Longitude,
		GeoConfidence:    loc.Confidence,
		GeoSource:        loc.Via,
		BiasUnknown:      true,
		FactualReporting: types.FactualUnknown,
		Status:           res.Status,
		StatusConfidence: res.Confidence,
		StatusReason:     res.Reason,
		StatusSignals:    res.Signals,
		SentimentLabel:   sentiment.LabelNeutral,
	}
}
