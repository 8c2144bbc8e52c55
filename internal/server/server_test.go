package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newslens/internal/classify"
	"github.com/jonathan/newslens/internal/jobs"
	"github.com/jonathan/newslens/internal/pipeline"
	"github.com/jonathan/newslens/internal/server/ratelimit"
	"github.com/jonathan/newslens/internal/sources"
	"github.com/jonathan/newslens/internal/trends"
	"github.com/jonathan/newslens/internal/types"
)

func testArticles() []types.RawArticle {
	return []types.RawArticle{
		{Title: "Study retracted over flawed data", Link: "https://example.org/1", Source: "Example", Description: "The journal retracted it."},
		{Title: "Study finds new results", Link: "https://example.org/2", Source: "Example"},
	}
}

func newTestServer(t *testing.T, trendSvc *trends.Service, delay time.Duration) *Server {
	t.Helper()
	store := jobs.NewStore(time.Hour)
	t.Cleanup(store.Close)

	p := pipeline.New(pipeline.Options{
		Fetcher:  sources.NewAggregator(sources.Binding{Source: &sources.Static{Articles: testArticles(), Delay: delay}}),
		Enricher: &pipeline.Enricher{Classifier: classify.New(classify.TaxonomySource)},
	})
	orch := jobs.NewOrchestrator(store, p)
	t.Cleanup(orch.Wait)

	s := New(Config{Addr: ":0", RateLimit: &ratelimit.Config{Enabled: false}}, orch, trendSvc)
	s.pollInterval = 5 * time.Millisecond
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil, 0).Handler()
	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "none", resp["features"].(map[string]any)["storage"])
}

func TestLegend(t *testing.T) {
	h := newTestServer(t, nil, 0).Handler()
	w := do(t, h, http.MethodGet, "/legend", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]map[string]LegendEntry](t, w)
	assert.Equal(t, "#ef4444", resp["statuses"]["retraction"].Color)
	assert.Equal(t, "#f59e0b", resp["statuses"]["correction"].Color)
	assert.Len(t, resp["statuses"], 9)
}

func TestSearch_SubmitAndPoll(t *testing.T) {
	h := newTestServer(t, nil, 0).Handler()

	w := do(t, h, http.MethodPost, "/search", `{"terms":["study"],"limit":10}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	sub := decode[SearchResponse](t, w)
	assert.Equal(t, jobs.StatusProcessing, sub.Status)
	require.NotEmpty(t, sub.SearchID)

	var res ResultsResponse
	require.Eventually(t, func() bool {
		w := do(t, h, http.MethodGet, "/search/"+sub.SearchID+"/results", "")
		if w.Code != http.StatusOK {
			return false
		}
		res = ResultsResponse{}
		if json.Unmarshal(w.Body.Bytes(), &res) != nil {
			return false
		}
		return res.Ready
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, sub.SearchID, res.SearchID)
	require.Len(t, res.Results, 2)
	assert.Equal(t, 1, res.Summary.Retractions)
	assert.Equal(t, "FeatureCollection", res.GeoJSON.Type)
	assert.Len(t, res.GeoJSON.Features, 2)
}

func TestSearch_InvalidBodies(t *testing.T) {
	h := newTestServer(t, nil, 0).Handler()
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing terms", `{}`},
		{"empty terms", `{"terms":[]}`},
		{"limit too large", `{"terms":["a"],"limit":5000}`},
		{"blank term", `{"terms":["   "]}`},
		{"bad domain", `{"terms":["a"],"sources":["not a domain"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decode[ErrorBody](t, w)
			assert.Equal(t, CodeInvalidRequest, body.Error)
		})
	}
}

func TestResults_NotFound(t *testing.T) {
	h := newTestServer(t, nil, 0).Handler()
	w := do(t, h, http.MethodGet, "/search/does-not-exist/results", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decode[ErrorBody](t, w).Error)
}

func TestStream_ProgressThenComplete(t *testing.T) {
	s := newTestServer(t, nil, 50*time.Millisecond)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/search", "application/json", strings.NewReader(`{"terms":["study"]}`))
	require.NoError(t, err)
	var sub SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sub))
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/search/"+sub.SearchID+"/stream", nil)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))

	var events []string
	var last string
	sc := bufio.NewScanner(stream.Body)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if ev, ok := strings.CutPrefix(line, "event: "); ok {
			events = append(events, ev)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			last = data
		}
	}

	require.NotEmpty(t, events)
	assert.Equal(t, EventProgress, events[0])
	assert.Equal(t, EventComplete, events[len(events)-1])

	var final ResultsResponse
	require.NoError(t, json.Unmarshal([]byte(last), &final))
	assert.True(t, final.Ready)
	assert.Len(t, final.Results, 2)
}

func TestStream_NotFound(t *testing.T) {
	h := newTestServer(t, nil, 0).Handler()
	w := do(t, h, http.MethodGet, "/search/nope/stream", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func risingSeries(keyword string) trends.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := []float64{5, 20, 60, 100, 70, 30, 8, 2}
	pts := make([]types.TrendPoint, len(vals))
	for i, v := range vals {
		pts[i] = types.TrendPoint{Timestamp: start.AddDate(0, 0, i), Value: v}
	}
	return trends.Series{Keyword: keyword, Points: pts}
}

func TestTrends(t *testing.T) {
	svc := trends.NewService(trends.NewStatic(risingSeries("ai")))
	h := newTestServer(t, svc, 0).Handler()

	w := do(t, h, http.MethodGet, "/trends/ai?startDate=2024-01-01&endDate=2024-01-31", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[map[string]any](t, w)
	assert.Equal(t, "ai", report["keyword"])
	assert.Contains(t, report, "statistics")
	assert.Contains(t, report, "phases")
	assert.Contains(t, report, "visualization")
}

func TestTrends_Errors(t *testing.T) {
	failing := trends.NewStatic()
	failing.Err = &trends.FetchError{Fetcher: "static", Message: "upstream down"}

	tests := []struct {
		name   string
		svc    *trends.Service
		path   string
		status int
		code   string
	}{
		{"bad start date", trends.NewService(trends.NewStatic()), "/trends/ai?startDate=yesterday", http.StatusBadRequest, CodeInvalidRequest},
		{"end before start", trends.NewService(trends.NewStatic()), "/trends/ai?startDate=2024-02-01&endDate=2024-01-01", http.StatusBadRequest, CodeInvalidRequest},
		{"not configured", nil, "/trends/ai", http.StatusServiceUnavailable, CodeNotConfigured},
		{"upstream failure", trends.NewService(failing), "/trends/ai", http.StatusBadGateway, CodeUpstream},
		{"no data", trends.NewService(trends.NewStatic()), "/trends/unknown", http.StatusNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.svc, 0).Handler()
			w := do(t, h, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[ErrorBody](t, w).Error)
		})
	}
}

func TestRateLimit(t *testing.T) {
	store := jobs.NewStore(time.Hour)
	defer store.Close()
	s := New(Config{RateLimit: &ratelimit.Config{
		Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/trends/", Method: "GET", Limit: 1, Window: time.Hour}},
	}}, jobs.NewOrchestrator(store, nil), nil)
	defer s.rateLimiter.Stop()
	h := s.Handler()

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/trends/a", "").Code)
	w := do(t, h, http.MethodGet, "/trends/b", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestRateLimit_ResultsPollingNeverThrottled(t *testing.T) {
	store := jobs.NewStore(time.Hour)
	defer store.Close()
	s := New(Config{RateLimit: &ratelimit.Config{
		Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour,
		EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/search/", Method: "GET", Limit: 1, Window: time.Hour}},
	}}, jobs.NewOrchestrator(store, nil), nil)
	defer s.rateLimiter.Stop()
	h := s.Handler()

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/search/missing/results", "").Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil, 0).Handler()
	w := do(t, h, http.MethodOptions, "/search", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
