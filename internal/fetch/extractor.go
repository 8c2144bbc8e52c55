package fetch

import (
	"context"
	"log"
	"sync"
	"time"
)

// Extractor fetches an article URL and returns its main text. Short plain-HTTP
// extractions are retried with a headless browser when UseBrowser is set.
// Results are memoized per URL for CacheTTL.
type Extractor struct {
	Options        *Options
	UseBrowser     bool
	BrowserTimeout time.Duration
	CacheTTL       time.Duration
	Verbose        bool

	// Render defaults to WithBrowser.
	Render Renderer

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	text    string
	expires time.Time
}

// NewExtractor returns an Extractor with an hour-long memo cache.
func NewExtractor(opts *Options, useBrowser bool) *Extractor {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Extractor{
		Options:        opts,
		UseBrowser:     useBrowser,
		BrowserTimeout: DefaultBrowserTimeout,
		CacheTTL:       time.Hour,
		Render:         WithBrowser,
	}
}

// Extract returns the main text of the page at url.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	if text, ok := e.cached(url); ok {
		return text, nil
	}

	publisher := DetectPublisher(url)
	selectors := PublisherContentSelectors(publisher)
	noise := PublisherNoiseSelectors(publisher)

	var text string
	page, err := Get(ctx, url, e.Options)
	if err == nil {
		text, err = ArticleText(page.HTML, selectors, noise...)
	}

	if e.UseBrowser && ShouldUseBrowser(text) {
		if e.Verbose {
			log.Printf("[fetch] %s yielded %d chars, rendering with browser", url, len(text))
		}
		render := e.Render
		if render == nil {
			render = WithBrowser
		}
		timeout := e.BrowserTimeout
		if timeout <= 0 {
			timeout = DefaultBrowserTimeout
		}
		html, rerr := render(ctx, url, timeout, e.Verbose)
		if rerr == nil {
			if rendered, xerr := ArticleText(html, selectors, noise...); xerr == nil && len(rendered) > len(text) {
				text, err = rendered, nil
			}
		} else if err == nil && text == "" {
			err = rerr
		}
	}

	if err != nil {
		return "", err
	}
	e.store(url, text)
	return text, nil
}

func (e *Extractor) cached(url string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.cache[url]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expires) {
		delete(e.cache, url)
		return "", false
	}
	return entry.text, true
}

func (e *Extractor) store(url, text string) {
	if e.CacheTTL <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cache == nil {
		e.cache = make(map[string]cacheEntry)
	}
	e.cache[url] = cacheEntry{text: text, expires: time.Now().Add(e.CacheTTL)}
}
