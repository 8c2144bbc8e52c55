package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/jonathan/newslens/internal/types"
)

// DefaultGoogleNewsURL is the Google News RSS search endpoint.
const DefaultGoogleNewsURL = "https://news.google.com/rss/search"

// GoogleNewsRSS searches the Google News RSS feed.
type GoogleNewsRSS struct {
	BaseURL  string
	Client   *http.Client
	Language string // hl, e.g. "en-US"
	Country  string // gl, e.g. "US"
}

// NewGoogleNewsRSS creates an adapter for US English results.
func NewGoogleNewsRSS() *GoogleNewsRSS {
	return &GoogleNewsRSS{
		BaseURL:  DefaultGoogleNewsURL,
		Client:   &http.Client{Timeout: 15 * time.Second},
		Language: "en-US",
		Country:  "US",
	}
}

// Name returns "google-news".
func (g *GoogleNewsRSS) Name() string { return NameGoogleNews }

// Fetch runs one RSS search.
func (g *GoogleNewsRSS) Fetch(ctx context.Context, q Query) ([]types.RawArticle, error) {
	searchTerm := strings.Join(q.Terms, " ")
	if len(q.Domains) > 0 {
		sites := make([]string, len(q.Domains))
		for i, d := range q.Domains {
			sites[i] = "site:" + d
		}
		searchTerm += " (" + strings.Join(sites, " OR ") + ")"
	}

	params := url.Values{}
	params.Set("q", searchTerm)
	params.Set("hl", g.Language)
	params.Set("gl", g.Country)
	params.Set("ceid", fmt.Sprintf("%s:%s", g.Country, strings.SplitN(g.Language, "-", 2)[0]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Source: NameGoogleNews, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newslens/1.0)")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: NameGoogleNews, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: NameGoogleNews, StatusCode: resp.StatusCode, Message: "unexpected status"}
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: NameGoogleNews, Message: "failed to parse feed", Cause: err}
	}

	out := make([]types.RawArticle, 0, len(feed.Items))
	for _, it := range feed.Items {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		title, publisher := splitPublisher(strings.TrimSpace(it.Title))
		if title == "" {
			continue
		}
		if publisher == "" {
			publisher = "Google News"
		}

		out = append(out, types.RawArticle{
			Title:       title,
			Link:        strings.TrimSpace(it.Link),
			Source:      publisher,
			PublishDate: itemDate(it),
			Description: htmlText(it.Description),
			SourceType:  NameGoogleNews,
		})
	}
	return out, nil
}

// splitPublisher separates Google News "Headline - Publisher" titles.
func splitPublisher(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

func itemDate(it *gofeed.Item) string {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC().Format(time.RFC3339)
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC().Format(time.RFC3339)
	default:
		return time.Now().UTC().Format(time.RFC3339)
	}
}

// htmlText flattens an HTML fragment to its text.
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
