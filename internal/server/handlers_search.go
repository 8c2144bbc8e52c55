package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/newslens/internal/jobs"
	"github.com/jonathan/newslens/internal/schemas"
	"github.com/jonathan/newslens/internal/types"
	schemadefs "github.com/jonathan/newslens/schemas"
)

// SearchResponse is returned by POST /search.
type SearchResponse struct {
	SearchID string      `json:"search_id"`
	Status   jobs.Status `json:"status"`
}

// ResultsResponse is the poll payload: the job snapshot plus a GeoJSON view of the results.
type ResultsResponse struct {
	jobs.Snapshot
	GeoJSON FeatureCollection `json:"geojson"`
}

func newResultsResponse(snap jobs.Snapshot) ResultsResponse {
	return ResultsResponse{Snapshot: snap, GeoJSON: NewFeatureCollection(snap.Results)}
}

// handleSearch validates the body against the request schema and submits a job.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "could not read request body"})
		return
	}
	if err := schemas.Validate(schemadefs.SearchRequest, body); err != nil {
		s.errorResponse(w, err)
		return
	}

	var req types.SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	id, err := s.jobs.Submit(r.Context(), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, SearchResponse{SearchID: id, Status: jobs.StatusProcessing})
}

// handleResults returns the current snapshot of a job. The route is exempt
// from rate limiting so clients may poll at any interval.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	snap, err := s.jobs.Poll(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newResultsResponse(snap))
}

// handleStream sends a "progress" event whenever progress changes and a
// final "complete" event carrying the full results payload.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := s.jobs.Poll(id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, ErrorBody{Error: CodeInternal, Message: err.Error()})
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last *jobs.Progress
	for {
		if snap.Ready {
			if err := sse.WriteEvent(EventComplete, newResultsResponse(snap)); err != nil {
				log.Printf("[server] stream %s: %v", id, err)
			}
			return
		}
		if last == nil || *last != snap.Progress {
			p := snap.Progress
			last = &p
			if err := sse.WriteEvent(EventProgress, p); err != nil {
				log.Printf("[server] stream %s closed: %v", id, err)
				return
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if snap, err = s.jobs.Poll(id); err != nil {
			sse.WriteError(err.Error())
			return
		}
	}
}
