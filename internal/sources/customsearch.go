package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/newslens/internal/types"
)

// maxCustomSearchResults is the per-request cap imposed by the API.
const maxCustomSearchResults = 10

// CustomSearch queries a Google Programmable Search Engine.
type CustomSearch struct {
	svc *customsearch.Service
	cx  string
}

// NewCustomSearch creates a new CustomSearch adapter
func NewCustomSearch(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*CustomSearch, error) {
	if apiKey == "" || cx == "" {
		return nil, &FetchError{Source: NameCustomSearch, Message: "GOOGLE_CSE_API_KEY and GOOGLE_CSE_CX are required", Cause: ErrNotConfigured}
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &CustomSearch{svc: svc, cx: cx}, nil
}

// Name returns "custom-search".
func (c *CustomSearch) Name() string { return NameCustomSearch }

// Fetch runs one search. A single domain uses siteSearch; several are OR-ed into the query.
func (c *CustomSearch) Fetch(ctx context.Context, q Query) ([]types.RawArticle, error) {
	query := strings.Join(q.Terms, " ")
	call := c.svc.Cse.List().Cx(c.cx)

	switch len(q.Domains) {
	case 0:
	case 1:
		call = call.SiteSearch(q.Domains[0]).SiteSearchFilter("i")
	default:
		sites := make([]string, len(q.Domains))
		for i, d := range q.Domains {
			sites[i] = "site:" + d
		}
		query += " (" + strings.Join(sites, " OR ") + ")"
	}

	num := maxCustomSearchResults
	if q.Limit > 0 && q.Limit < num {
		num = q.Limit
	}

	resp, err := call.Q(query).Num(int64(num)).Context(ctx).Do()
	if err != nil {
		return nil, &FetchError{Source: NameCustomSearch, Message: "search failed", Cause: err}
	}

	out := make([]types.RawArticle, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, types.RawArticle{
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			Source:      item.DisplayLink,
			PublishDate: publishedTime(item.Pagemap),
			Description: strings.TrimSpace(item.Snippet),
			SourceType:  NameCustomSearch,
		})
	}
	return out, nil
}

// publishedTime reads article:published_time from the result's page metadata.
func publishedTime(pagemap []byte) string {
	if len(pagemap) > 0 {
		var pm struct {
			Metatags []map[string]string `json:"metatags"`
		}
		if err := json.Unmarshal(pagemap, &pm); err == nil {
			for _, tags := range pm.Metatags {
				if v := tags["article:published_time"]; v != "" {
					return v
				}
			}
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
