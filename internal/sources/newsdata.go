package sources

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/newslens/internal/types"
)

// DefaultNewsDataURL is the NewsData.io API base.
const DefaultNewsDataURL = "https://newsdata.io/api/1"

// NewsData queries the NewsData.io "latest" endpoint.
type NewsData struct {
	APIKey   string
	BaseURL  string
	Client   *http.Client
	Language string
	Country  string
}

// NewNewsData creates an adapter for English, US results.
func NewNewsData(apiKey string) *NewsData {
	return &NewsData{
		APIKey:   apiKey,
		BaseURL:  DefaultNewsDataURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Language: "en",
		Country:  "us",
	}
}

// Name returns "newsdata".
func (n *NewsData) Name() string { return NameNewsData }

type newsDataResponse struct {
	Status  string            `json:"status"`
	Results []newsDataArticle `json:"results"`
}

type newsDataArticle struct {
	ArticleID   string `json:"article_id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	SourceID    string `json:"source_id"`
	SourceName  string `json:"source_name"`
	SourceURL   string `json:"source_url"`
	PubDate     string `json:"pubDate"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Fetch searches for any of the terms. Rate limiting (429) and query
// validation failures (422) yield an empty list; a bad key (401) is an error.
func (n *NewsData) Fetch(ctx context.Context, q Query) ([]types.RawArticle, error) {
	if n.APIKey == "" {
		return nil, &FetchError{Source: NameNewsData, Message: "NEWSDATA_API_KEY not configured", Cause: ErrNotConfigured}
	}

	params := url.Values{}
	params.Set("q", strings.Join(q.Terms, " OR "))
	params.Set("apikey", n.APIKey)
	params.Set("language", n.Language)
	params.Set("country", n.Country)
	if len(q.Domains) > 0 {
		params.Set("domain", strings.Join(q.Domains, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(n.BaseURL, "/")+"/latest?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Source: NameNewsData, Message: "failed to build request", Cause: err}
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: NameNewsData, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		log.Printf("[sources] newsdata rate limit hit, returning no articles")
		return []types.RawArticle{}, nil
	case http.StatusUnprocessableEntity:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[sources] newsdata rejected query: %s", strings.TrimSpace(string(body)))
		return []types.RawArticle{}, nil
	case http.StatusUnauthorized:
		return nil, &FetchError{Source: NameNewsData, StatusCode: resp.StatusCode, Message: "API key invalid or expired"}
	default:
		return nil, &FetchError{Source: NameNewsData, StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	var body newsDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &FetchError{Source: NameNewsData, Message: "failed to decode response", Cause: err}
	}
	if body.Status != "success" {
		return nil, &FetchError{Source: NameNewsData, Message: "API status " + body.Status}
	}

	out := make([]types.RawArticle, 0, len(body.Results))
	for _, a := range body.Results {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		source := a.SourceName
		if source == "" {
			source = a.SourceID
		}
		desc := a.Description
		if desc == "" {
			desc = a.Content
		}
		out = append(out, types.RawArticle{
			Title:       strings.TrimSpace(a.Title),
			Link:        a.Link,
			Source:      source,
			PublishDate: newsDataDate(a.PubDate),
			Description: desc,
			Content:     usableContent(a.Content),
			SourceType:  NameNewsData,
		})
	}
	return out, nil
}

// newsDataDate converts "2006-01-02 15:04:05" (UTC) to RFC 3339.
func newsDataDate(s string) string {
	t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

// usableContent drops the placeholder NewsData returns on free plans.
func usableContent(s string) string {
	if strings.HasPrefix(s, "ONLY AVAILABLE IN PAID PLANS") {
		return ""
	}
	return s
}
