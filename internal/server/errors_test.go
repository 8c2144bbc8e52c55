package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/newslens/internal/jobs"
	"github.com/jonathan/newslens/internal/schemas"
	"github.com/jonathan/newslens/internal/trends"
	"github.com/jonathan/newslens/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"job not found", &jobs.ErrJobNotFound{ID: "x"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("poll: %w", &jobs.ErrJobNotFound{ID: "x"}), http.StatusNotFound},
		{"job validation", &jobs.ErrValidation{Message: "bad"}, http.StatusBadRequest},
		{"request validation", &ErrValidation{Field: "f", Message: "m"}, http.StatusBadRequest},
		{"schema validation", &schemas.ValidationError{Schema: "s"}, http.StatusBadRequest},
		{"trends not configured", trends.ErrNotConfigured, http.StatusServiceUnavailable},
		{"fetcher missing credentials", &trends.FetchError{Fetcher: "dataforseo", Cause: trends.ErrNotConfigured}, http.StatusServiceUnavailable},
		{"upstream", &trends.FetchError{Fetcher: "google", StatusCode: 500}, http.StatusBadGateway},
		{"no data", trends.ErrNoData, http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "startDate", Message: "invalid format"}
	assert.Equal(t, "validation error: startDate - invalid format", err.Error())
}

func TestErrorBody_Details(t *testing.T) {
	schemaErr := &schemas.ValidationError{Schema: "search_request", Errors: []schemas.FieldError{{Field: "terms", Message: "required"}}}
	body := errorBody(schemaErr)
	assert.Equal(t, CodeInvalidRequest, body.Error)
	assert.Equal(t, schemaErr.Errors, body.Details)

	req := types.SearchRequest{Terms: []string{"a"}, Limit: 5000}
	err := &jobs.ErrValidation{Message: "request failed validation", Cause: req.Validate()}
	body = errorBody(err)
	if assert.Len(t, body.Details, 1) {
		assert.Equal(t, "SearchRequest.Limit", body.Details[0].Field)
		assert.Contains(t, body.Details[0].Message, "max")
	}

	assert.Equal(t, CodeNotFound, errorBody(&jobs.ErrJobNotFound{ID: "x"}).Error)
	assert.Equal(t, CodeInternal, errorBody(errors.New("boom")).Error)
}
