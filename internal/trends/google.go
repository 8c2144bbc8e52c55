package trends

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/newslens/internal/fetch"
	"github.com/jonathan/newslens/internal/types"
)

// DefaultGoogleTrendsURL is the public explore page.
const DefaultGoogleTrendsURL = "https://trends.google.com/trends/explore"

const googleTrendsUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	trendsVarPattern = regexp.MustCompile(`var _trends = (.*?);\n`)
	dataVarPattern   = regexp.MustCompile(`(?s)var data = (\{.*?\});`)
)

// GoogleTrends scrapes the embedded widget JSON from the explore page. When
// the plain page lacks it and UseBrowser is set, the page is rendered
// headlessly first.
type GoogleTrends struct {
	BaseURL    string
	Client     *http.Client
	Language   string
	UseBrowser bool
	Render     fetch.Renderer
	Timeout    time.Duration
}

// NewGoogleTrends creates a new GoogleTrends fetcher
func NewGoogleTrends(useBrowser bool) *GoogleTrends {
	return &GoogleTrends{
		BaseURL:    DefaultGoogleTrendsURL,
		Client:     &http.Client{Timeout: 30 * time.Second},
		Language:   "en",
		UseBrowser: useBrowser,
		Render:     fetch.WithBrowser,
		Timeout:    fetch.DefaultBrowserTimeout,
	}
}

// Name returns "google".
func (g *GoogleTrends) Name() string { return "google" }

type trendsPayload struct {
	Widgets []struct {
		ID   string `json:"id"`
		Data struct {
			TimelineData []struct {
				Time          string    `json:"time"`
				FormattedTime string    `json:"formattedTime"`
				Value         []float64 `json:"value"`
			} `json:"timelineData"`
			GeoMapData []struct {
				GeoName string    `json:"geoName"`
				Value   []float64 `json:"value"`
			} `json:"geoMapData"`
		} `json:"data"`
	} `json:"widgets"`
}

// ExploreURL builds the explore page URL for q.
func (g *GoogleTrends) ExploreURL(q Query) string {
	geo := q.Geo
	if geo == "" {
		geo = "US"
	}
	params := url.Values{}
	params.Set("q", q.Keyword)
	params.Set("date", q.Start.Format("2006-01-02T15")+" "+q.End.Format("2006-01-02T15"))
	params.Set("geo", geo)
	params.Set("hl", g.Language)
	return g.BaseURL + "?" + params.Encode()
}

// Fetch loads the explore page and parses its TIMESERIES and GEO_MAP widgets.
func (g *GoogleTrends) Fetch(ctx context.Context, q Query) (Series, error) {
	pageURL := g.ExploreURL(q)

	html, err := g.get(ctx, pageURL)
	var payload *trendsPayload
	if err == nil {
		payload, err = extractPayload(html)
	}
	if err != nil && g.UseBrowser && g.Render != nil {
		rendered, rerr := g.Render(ctx, pageURL, g.Timeout, false)
		if rerr != nil {
			return Series{}, &FetchError{Fetcher: g.Name(), Message: "browser rendering failed", Cause: rerr}
		}
		payload, err = extractPayload(rendered)
	}
	if err != nil {
		return Series{}, err
	}
	return payload.series(q.Keyword), nil
}

func (g *GoogleTrends) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{Fetcher: g.Name(), Message: "failed to build request", Cause: err}
	}
	req.Header.Set("User-Agent", googleTrendsUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://trends.google.com/trends/")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", &FetchError{Fetcher: g.Name(), Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{Fetcher: g.Name(), StatusCode: resp.StatusCode, Message: "failed to fetch trends page"}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Fetcher: g.Name(), Message: "failed to read trends page", Cause: err}
	}
	return string(body), nil
}

// extractPayload finds the script holding the widget JSON.
func extractPayload(html string) (*trendsPayload, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &FetchError{Fetcher: "google", Message: "failed to parse page", Cause: err}
	}

	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if m := trendsVarPattern.FindStringSubmatch(text); m != nil {
			raw = m[1]
			return false
		}
		if m := dataVarPattern.FindStringSubmatch(text); m != nil {
			raw = m[1]
			return false
		}
		return true
	})
	if raw == "" {
		return nil, &FetchError{Fetcher: "google", Message: "trends data script not found"}
	}

	var payload trendsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &FetchError{Fetcher: "google", Message: "failed to parse trends JSON", Cause: err}
	}
	return &payload, nil
}

func (p *trendsPayload) series(keyword string) Series {
	ser := Series{Keyword: keyword, Points: []types.TrendPoint{}}
	for _, w := range p.Widgets {
		switch w.ID {
		case "TIMESERIES":
			for _, pt := range w.Data.TimelineData {
				secs, err := strconv.ParseInt(pt.Time, 10, 64)
				if err != nil {
					continue
				}
				var v float64
				if len(pt.Value) > 0 {
					v = pt.Value[0]
				}
				ser.Points = append(ser.Points, types.TrendPoint{Timestamp: time.Unix(secs, 0).UTC(), Value: v})
			}
		case "GEO_MAP":
			for _, r := range w.Data.GeoMapData {
				name := r.GeoName
				if name == "" {
					name = "Unknown"
				}
				var v float64
				if len(r.Value) > 0 {
					v = r.Value[0]
				}
				ser.Regions = append(ser.Regions, types.RegionInterest{Region: name, Value: v})
			}
		}
	}
	return ser
}
