package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/newslens/internal/trends"
	"github.com/jonathan/newslens/internal/types"
)

// dateLayouts are accepted for startDate and endDate.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(field, v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &ErrValidation{Field: field, Message: "must be YYYY-MM-DD or RFC 3339"}
}

// handleTrends analyzes one keyword: GET /trends/{keyword}?startDate&endDate&geo.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.PathValue("keyword"))
	if keyword == "" || len(keyword) > 200 {
		s.errorResponse(w, &ErrValidation{Field: "keyword", Message: "must be 1-200 characters"})
		return
	}
	q := r.URL.Query()

	tq := types.TrendQuery{Keyword: keyword, Geo: q.Get("geo")}
	var err error
	if v := q.Get("startDate"); v != "" {
		if tq.StartDate, err = parseDate("startDate", v); err != nil {
			s.errorResponse(w, err)
			return
		}
	}
	if v := q.Get("endDate"); v != "" {
		if tq.EndDate, err = parseDate("endDate", v); err != nil {
			s.errorResponse(w, err)
			return
		}
	}
	if !tq.StartDate.IsZero() && !tq.EndDate.IsZero() {
		if err := tq.Validate(); err != nil {
			s.errorResponse(w, &ErrValidation{Field: "endDate", Message: "must be after startDate"})
			return
		}
	}

	if !s.trends.Configured() {
		s.errorResponse(w, trends.ErrNotConfigured)
		return
	}
	report, err := s.trends.Report(r.Context(), trends.Query{
		Keyword: keyword,
		Start:   tq.StartDate,
		End:     tq.EndDate,
		Geo:     tq.Geo,
	})
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// LegendEntry is the presentation metadata for one status.
type LegendEntry struct {
	Color string `json:"color"`
	Shape string `json:"shape"`
	Label string `json:"label"`
}

// Legend maps every status of both taxonomies to its marker.
var Legend = map[types.Status]LegendEntry{
	types.StatusRetraction:       {Color: "#ef4444", Shape: "triangle", Label: "Retraction"},
	types.StatusCorrection:       {Color: "#f59e0b", Shape: "diamond", Label: "Correction"},
	types.StatusNewsArticle:      {Color: "#3b82f6", Shape: "circle", Label: "News article"},
	types.StatusBiasedSource:     {Color: "#a855f7", Shape: "square", Label: "Biased source"},
	types.StatusUntruthfulSource: {Color: "#7f1d1d", Shape: "cross", Label: "Untruthful source"},
	types.StatusInciting:         {Color: "#137fec", Shape: "star", Label: "Inciting"},
	types.StatusDisputed:         {Color: "#f97316", Shape: "square", Label: "Disputed"},
	types.StatusMisleading:       {Color: "#eab308", Shape: "cross", Label: "Misleading"},
	types.StatusOriginal:         {Color: "#22c55e", Shape: "circle", Label: "Original reporting"},
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"statuses": Legend})
}

// handleHealth reports liveness. Job state is never persisted.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"ok": true,
		"features": map[string]any{
			"storage": "none",
			"trends":  s.trends.Configured(),
		},
	})
}
