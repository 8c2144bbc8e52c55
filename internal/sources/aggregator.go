package sources

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/newslens/internal/dedup"
	"github.com/jonathan/newslens/internal/types"
)

// DefaultTimeout bounds a source call when its Binding has no timeout.
const DefaultTimeout = 10 * time.Second

// Binding pairs a source with its per-call timeout.
type Binding struct {
	Source  Source
	Timeout time.Duration
}

// ProgressFunc is called after each source call completes.
type ProgressFunc func(done, total int)

// Aggregator fans a search out to every source for every expanded query.
type Aggregator struct {
	bindings []Binding
}

// NewAggregator creates a new Aggregator
func NewAggregator(bindings ...Binding) *Aggregator {
	return &Aggregator{bindings: bindings}
}

// Sources returns the names of the bound sources.
func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.bindings))
	for i, b := range a.bindings {
		names[i] = b.Source.Name()
	}
	return names
}

// ExpandQueries returns the term set itself followed by "retraction <term>"
// and "correction <term>" for each term.
func ExpandQueries(terms []string) [][]string {
	out := make([][]string, 0, 1+2*len(terms))
	out = append(out, terms)
	for _, t := range terms {
		out = append(out, []string{"retraction", t})
	}
	for _, t := range terms {
		out = append(out, []string{"correction", t})
	}
	return out
}

// Calls returns how many source calls Fetch will make for terms.
func (a *Aggregator) Calls(terms []string) int {
	return len(ExpandQueries(terms)) * len(a.bindings)
}

// Fetch runs every (source, query) pair concurrently, each under its source's
// timeout. A failing or slow call contributes nothing. Results keep source
// order, are reconciled by title and truncated to limit.
func (a *Aggregator) Fetch(ctx context.Context, terms []string, limit int, domains []string, progress ProgressFunc) []types.RawArticle {
	queries := ExpandQueries(terms)
	total := len(queries) * len(a.bindings)
	log.Printf("[sources] searching %q across %d sources (%d calls, limit %d)",
		strings.Join(terms, ", "), len(a.bindings), total, limit)

	// One slot per call so output order does not depend on completion order.
	slots := make([][]types.RawArticle, total)
	var done atomic.Int32

	var g errgroup.Group
	for bi, b := range a.bindings {
		for qi, qterms := range queries {
			slot := bi*len(queries) + qi
			g.Go(func() error {
				slots[slot] = a.call(ctx, b, Query{Terms: qterms, Limit: limit, Domains: domains})
				n := done.Add(1)
				if progress != nil {
					progress(int(n), total)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	var combined []types.RawArticle
	counts := make(map[string]int, len(a.bindings))
	for bi, b := range a.bindings {
		for qi := range queries {
			arts := slots[bi*len(queries)+qi]
			for i := range arts {
				if arts[i].SourceType == "" {
					arts[i].SourceType = b.Source.Name()
				}
			}
			counts[b.Source.Name()] += len(arts)
			combined = append(combined, arts...)
		}
	}

	unique := dedup.ReconcileTitles(combined)
	log.Printf("[sources] fetched %d articles %v, %d unique", len(combined), counts, len(unique))

	if limit > 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func (a *Aggregator) call(ctx context.Context, b Binding, q Query) []types.RawArticle {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		articles []types.RawArticle
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: &FetchError{Source: b.Source.Name(), Message: "panic during fetch"}}
				log.Printf("[sources] %s panicked: %v", b.Source.Name(), r)
			}
		}()
		arts, err := b.Source.Fetch(ctx, q)
		ch <- result{articles: arts, err: err}
	}()

	// Sources that ignore ctx still cannot hold up the job past their timeout.
	select {
	case r := <-ch:
		if r.err != nil {
			log.Printf("[sources] %s failed for %q: %v", b.Source.Name(), strings.Join(q.Terms, " "), r.err)
			return nil
		}
		return r.articles
	case <-ctx.Done():
		log.Printf("[sources] %s timed out after %s for %q", b.Source.Name(), timeout, strings.Join(q.Terms, " "))
		return nil
	}
}
