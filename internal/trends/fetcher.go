package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/newslens/internal/schemas"
	"github.com/jonathan/newslens/internal/types"
	schemadefs "github.com/jonathan/newslens/schemas"
)

// Query selects a keyword's series over a date range.
type Query struct {
	Keyword  string
	Start    time.Time
	End      time.Time
	Geo      string // ISO country code, e.g. "US"
	Location string // provider location name, e.g. "United States"
}

// Series is a keyword's interest over time plus optional regional interest.
type Series struct {
	Keyword string                 `json:"keyword"`
	Points  []types.TrendPoint     `json:"points"`
	Regions []types.RegionInterest `json:"regions,omitempty"`
}

// Fetcher retrieves a trend series.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, q Query) (Series, error)
}

// Static serves fixed series keyed by keyword, case-insensitively.
type Static struct {
	mu     sync.RWMutex
	series map[string]Series
	Err    error
}

// NewStatic creates a Static fetcher holding series.
func NewStatic(series ...Series) *Static {
	s := &Static{series: make(map[string]Series, len(series))}
	for _, ser := range series {
		s.Add(ser)
	}
	return s
}

// Add registers or replaces a series.
func (s *Static) Add(ser Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.series == nil {
		s.series = make(map[string]Series)
	}
	s.series[strings.ToLower(strings.TrimSpace(ser.Keyword))] = ser
}

// Name returns "static".
func (s *Static) Name() string { return "static" }

// Fetch returns the stored series clipped to the query's date range.
func (s *Static) Fetch(ctx context.Context, q Query) (Series, error) {
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}
	if s.Err != nil {
		return Series{}, s.Err
	}

	s.mu.RLock()
	ser, ok := s.series[strings.ToLower(strings.TrimSpace(q.Keyword))]
	s.mu.RUnlock()
	if !ok {
		return Series{}, fmt.Errorf("%w for %q", ErrNoData, q.Keyword)
	}

	out := Series{Keyword: ser.Keyword, Regions: ser.Regions, Points: make([]types.TrendPoint, 0, len(ser.Points))}
	for _, p := range ser.Points {
		if !q.Start.IsZero() && p.Timestamp.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && p.Timestamp.After(q.End) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out, nil
}

// LoadSeries reads a series JSON file, validating it against the trend
// series schema. Points are sorted by time.
func LoadSeries(path string) (Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to read trend series %s: %w", path, err)
	}
	if err := schemas.Validate(schemadefs.TrendSeries, data); err != nil {
		return Series{}, fmt.Errorf("invalid trend series %s: %w", path, err)
	}

	var ser Series
	if err := json.Unmarshal(data, &ser); err != nil {
		return Series{}, fmt.Errorf("failed to parse trend series %s: %w", path, err)
	}
	sort.SliceStable(ser.Points, func(i, j int) bool {
		return ser.Points[i].Timestamp.Before(ser.Points[j].Timestamp)
	})
	return ser, nil
}
