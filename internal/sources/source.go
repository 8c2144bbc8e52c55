// Package sources provides news source adapters and a concurrent aggregator over them.
package sources

import (
	"context"
	"time"

	"github.com/jonathan/newslens/internal/types"
)

// Adapter names, also recorded as RawArticle.SourceType.
const (
	NameGoogleNews   = "google-news"
	NameNewsData     = "newsdata"
	NameCustomSearch = "custom-search"
	NameStatic       = "static"
)

// Query is one search issued to a source.
type Query struct {
	Terms   []string
	Limit   int
	Domains []string // restrict to these publisher domains when supported
}

// Source is a black-box article provider.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]types.RawArticle, error)
}

// Static returns a fixed article list. Delay simulates a slow upstream and
// honors context cancellation.
type Static struct {
	SourceName string
	Articles   []types.RawArticle
	Err        error
	Delay      time.Duration
}

// Name returns the configured name or "static".
func (s *Static) Name() string {
	if s.SourceName != "" {
		return s.SourceName
	}
	return NameStatic
}

// Fetch returns a copy of the configured articles, truncated to q.Limit.
func (s *Static) Fetch(ctx context.Context, q Query) ([]types.RawArticle, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]types.RawArticle(nil), s.Articles...)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
