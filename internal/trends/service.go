package trends

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/newslens/internal/types"
)

// DefaultLookback is the date range used when a query has no start.
const DefaultLookback = 90 * day

// Report is the full trend answer for one keyword.
type Report struct {
	Keyword       string                 `json:"keyword"`
	Statistics    Statistics             `json:"statistics"`
	Phases        []types.TrendPhase     `json:"phases"`
	Regions       []types.RegionInterest `json:"regions,omitempty"`
	Visualization Visualization          `json:"visualization"`
	Windows       []Window               `json:"windows,omitempty"`
	Source        string                 `json:"source"`
}

// Service fetches series and turns them into reports.
type Service struct {
	fetcher  Fetcher
	center   Center
	lookback time.Duration
	geo      string
	location string
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCenter sets the map centre for visualizations.
func WithCenter(c Center) Option { return func(s *Service) { s.center = c } }

// WithLookback sets the default date range.
func WithLookback(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookback = d
		}
	}
}

// WithRegion sets the default geo code and provider location name.
func WithRegion(geo, location string) Option {
	return func(s *Service) { s.geo, s.location = geo, location }
}

// NewService creates a new Service. A nil fetcher yields ErrNotConfigured on every call.
func NewService(f Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:  f,
		center:   DefaultCenter,
		lookback: DefaultLookback,
		geo:      "US",
		location: "United States",
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether a fetcher is set.
func (s *Service) Configured() bool {
	return s != nil && s.fetcher != nil
}

// Normalize fills in the default date range and region.
func (s *Service) Normalize(q Query) Query {
	q.Keyword = strings.TrimSpace(q.Keyword)
	if q.End.IsZero() {
		q.End = s.now().UTC()
	}
	if q.Start.IsZero() {
		q.Start = q.End.Add(-s.lookback)
	}
	if q.Geo == "" {
		q.Geo = s.geo
	}
	if q.Location == "" {
		q.Location = s.location
	}
	return q
}

// Analyze fetches and analyzes one keyword.
func (s *Service) Analyze(ctx context.Context, q Query) (Analysis, error) {
	if !s.Configured() {
		return Analysis{}, ErrNotConfigured
	}
	q = s.Normalize(q)

	ser, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		return Analysis{}, err
	}
	a := Analyze(q.Keyword, ser.Points, q.Start)
	a.Regions = ser.Regions
	return a, nil
}

// Report fetches, analyzes and visualizes one keyword.
func (s *Service) Report(ctx context.Context, q Query) (*Report, error) {
	a, err := s.Analyze(ctx, q)
	if err != nil {
		return nil, err
	}
	log.Printf("[trends] %q: %d points, peak %.0f, %d phases", a.Keyword, len(a.Series), a.PeakValue, len(a.Phases))
	return s.report(a), nil
}

func (s *Service) report(a Analysis) *Report {
	return &Report{
		Keyword:       a.Keyword,
		Statistics:    StatisticsFor(a),
		Phases:        a.Phases,
		Regions:       a.Regions,
		Visualization: Visualize(a, s.center),
		Windows:       TimeWindowHeatmap(a, DefaultWindowDays, s.center),
		Source:        s.fetcher.Name(),
	}
}

// Compare analyzes several keywords concurrently. Keywords whose fetch fails
// are logged and dropped; the rest keep input order.
func (s *Service) Compare(ctx context.Context, keywords []string, q Query) []Analysis {
	results := make([]*Analysis, len(keywords))

	var g errgroup.Group
	for i, kw := range keywords {
		g.Go(func() error {
			kq := q
			kq.Keyword = kw
			a, err := s.Analyze(ctx, kq)
			if err != nil {
				log.Printf("[trends] compare: %q failed: %v", kw, err)
				return nil
			}
			results[i] = &a
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Analysis, 0, len(keywords))
	for _, a := range results {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
