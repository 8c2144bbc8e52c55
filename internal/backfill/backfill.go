// Package backfill fills in missing article bodies by fetching the article pages.
package backfill

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/newslens/internal/types"
)

const (
	// DefaultConcurrency bounds simultaneous page fetches.
	DefaultConcurrency = 4
	// DefaultTimeout bounds a single article fetch.
	DefaultTimeout = 10 * time.Second
)

// Extractor returns the main text of the page at url.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// ProgressFunc is called after each attempted article.
type ProgressFunc func(done, total int)

// Backfiller fetches content for articles that arrived without it.
type Backfiller struct {
	extractor   Extractor
	concurrency int
	timeout     time.Duration
}

// New creates a new Backfiller
func New(extractor Extractor, concurrency int, timeout time.Duration) *Backfiller {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backfiller{extractor: extractor, concurrency: concurrency, timeout: timeout}
}

// Backfill sets Content on every article whose content is empty and whose
// link is set. Failures leave the content empty; Backfill never aborts.
// It returns how many articles were filled.
func (b *Backfiller) Backfill(ctx context.Context, articles []types.RawArticle, progress ProgressFunc) int {
	var pending []int
	for i := range articles {
		if articles[i].Content == "" && articles[i].Link != "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 || b.extractor == nil {
		return 0
	}

	var filled, done atomic.Int32
	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)
	for _, idx := range pending {
		g.Go(func() error {
			if text := b.extract(ctx, articles[idx].Link); text != "" {
				articles[idx].Content = text
				filled.Add(1)
			}
			n := done.Add(1)
			if progress != nil {
				progress(int(n), len(pending))
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Printf("[backfill] filled %d of %d articles missing content", filled.Load(), len(pending))
	return int(filled.Load())
}

func (b *Backfiller) extract(ctx context.Context, url string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[backfill] extractor panicked on %s: %v", url, r)
			text = ""
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	text, err := b.extractor.Extract(ctx, url)
	if err != nil {
		log.Printf("[backfill] %s: %v", url, err)
		return ""
	}
	return text
}
