package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/newslens/internal/types"
)

const (
	// DefaultDataForSEOURL is the DataForSEO API base.
	DefaultDataForSEOURL  = "https://api.dataforseo.com"
	dataForSEOExplorePath = "/v3/keywords_data/google_trends/explore/live"
	dataForSEOOK          = 20000
	dataForSEODate        = "2006-01-02"
)

// DataForSEO fetches Google Trends news interest through the DataForSEO API.
type DataForSEO struct {
	Login    string
	Password string
	BaseURL  string
	Client   *http.Client
	Location string
	Type     string
}

// NewDataForSEO creates a fetcher for US news-search interest.
func NewDataForSEO(login, password string) *DataForSEO {
	return &DataForSEO{
		Login:    login,
		Password: password,
		BaseURL:  DefaultDataForSEOURL,
		Client:   &http.Client{Timeout: 60 * time.Second},
		Location: "United States",
		Type:     "news",
	}
}

// Name returns "dataforseo".
func (d *DataForSEO) Name() string { return "dataforseo" }

type dataForSEOTask struct {
	LocationName string   `json:"location_name"`
	DateFrom     string   `json:"date_from"`
	DateTo       string   `json:"date_to"`
	Type         string   `json:"type"`
	CategoryCode int      `json:"category_code"`
	Keywords     []string `json:"keywords"`
}

type dataForSEOResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []struct {
			Items []struct {
				Type string `json:"type"`
				Data []struct {
					DateFrom  string     `json:"date_from"`
					Timestamp int64      `json:"timestamp"`
					Values    []*float64 `json:"values"`
					GeoName   string     `json:"geo_name"`
				} `json:"data"`
			} `json:"items"`
			GeoInterest []struct {
				RegionName       string  `json:"region_name"`
				Value            float64 `json:"value"`
				LastTrendingDate string  `json:"last_trending_date"`
			} `json:"geo_interest"`
		} `json:"result"`
	} `json:"tasks"`
}

// Fetch posts one explore task and parses the graph and regional interest.
func (d *DataForSEO) Fetch(ctx context.Context, q Query) (Series, error) {
	if d.Login == "" || d.Password == "" {
		return Series{}, &FetchError{Fetcher: d.Name(), Message: "DATAFORSEO_API_KEY and DATAFORSEO_API_SECRET are required", Cause: ErrNotConfigured}
	}

	location := q.Location
	if location == "" {
		location = d.Location
	}
	payload, err := json.Marshal([]dataForSEOTask{{
		LocationName: location,
		DateFrom:     q.Start.Format(dataForSEODate),
		DateTo:       q.End.Format(dataForSEODate),
		Type:         d.Type,
		Keywords:     []string{q.Keyword},
	}})
	if err != nil {
		return Series{}, &FetchError{Fetcher: d.Name(), Message: "failed to encode task", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(d.BaseURL, "/")+dataForSEOExplorePath, bytes.NewReader(payload))
	if err != nil {
		return Series{}, &FetchError{Fetcher: d.Name(), Message: "failed to build request", Cause: err}
	}
	req.SetBasicAuth(d.Login, d.Password)
	req.Header.Set("Content-Type", "application/json")

	log.Printf("[trends] POST %s keyword=%q %s..%s", dataForSEOExplorePath, q.Keyword, q.Start.Format(dataForSEODate), q.End.Format(dataForSEODate))
	resp, err := d.Client.Do(req)
	if err != nil {
		return Series{}, &FetchError{Fetcher: d.Name(), Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Series{}, &FetchError{Fetcher: d.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var body dataForSEOResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Series{}, &FetchError{Fetcher: d.Name(), Message: "failed to decode response", Cause: err}
	}
	return parseDataForSEO(q.Keyword, body)
}

func parseDataForSEO(keyword string, body dataForSEOResponse) (Series, error) {
	if body.StatusCode != 0 && body.StatusCode != dataForSEOOK {
		return Series{}, &FetchError{Fetcher: "dataforseo", Message: body.StatusMessage}
	}
	ser := Series{Keyword: keyword, Points: []types.TrendPoint{}}
	if len(body.Tasks) == 0 {
		return ser, nil
	}
	task := body.Tasks[0]
	if task.StatusCode != 0 && task.StatusCode != dataForSEOOK {
		return Series{}, &FetchError{Fetcher: "dataforseo", Message: task.StatusMessage}
	}
	if len(task.Result) == 0 {
		return ser, nil
	}
	result := task.Result[0]

	graphSeen := false
	for _, item := range result.Items {
		switch {
		case item.Type == "google_trends_map":
			for _, d := range item.Data {
				ser.Regions = append(ser.Regions, types.RegionInterest{Region: d.GeoName, Value: firstValue(d.Values)})
			}
		case !graphSeen:
			graphSeen = true
			for _, d := range item.Data {
				ts, err := time.Parse(dataForSEODate, d.DateFrom)
				if err != nil {
					if d.Timestamp == 0 {
						continue
					}
					ts = time.Unix(d.Timestamp, 0).UTC()
				}
				ser.Points = append(ser.Points, types.TrendPoint{Timestamp: ts, Value: firstValue(d.Values)})
			}
		}
	}

	for _, g := range result.GeoInterest {
		ser.Regions = append(ser.Regions, types.RegionInterest{
			Region:           g.RegionName,
			Value:            g.Value,
			LastTrendingDate: g.LastTrendingDate,
		})
	}
	return ser, nil
}

// firstValue reads the keyword's value; missing or null counts as zero.
func firstValue(values []*float64) float64 {
	if len(values) == 0 || values[0] == nil {
		return 0
	}
	return *values[0]
}
