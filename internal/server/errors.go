package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/newslens/internal/jobs"
	"github.com/jonathan/newslens/internal/schemas"
	"github.com/jonathan/newslens/internal/trends"
)

// Error codes returned in the "error" field of JSON error bodies.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeNotConfigured     = "TRENDS_NOT_CONFIGURED"
	CodeUpstream          = "UPSTREAM_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
	CodeRateLimitExceeded = "rate_limit_exceeded"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string               `json:"error"`
	Message string               `json:"message,omitempty"`
	Details []schemas.FieldError `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *jobs.ErrJobNotFound
		jobInvalid *jobs.ErrValidation
		reqInvalid *ErrValidation
		schemaErr  *schemas.ValidationError
		docErr     *schemas.DocumentError
		fetchErr   *trends.FetchError
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, trends.ErrNoData):
		return http.StatusNotFound
	case errors.As(err, &jobInvalid), errors.As(err, &reqInvalid),
		errors.As(err, &schemaErr), errors.As(err, &docErr):
		return http.StatusBadRequest
	case errors.Is(err, trends.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody converts err into a response body. Field-level details come
// from schema and struct validation failures.
func errorBody(err error) ErrorBody {
	status := HTTPStatus(err)
	body := ErrorBody{Message: err.Error()}
	switch status {
	case http.StatusNotFound:
		body.Error = CodeNotFound
	case http.StatusBadRequest:
		body.Error = CodeInvalidRequest
	case http.StatusServiceUnavailable:
		body.Error = CodeNotConfigured
	case http.StatusBadGateway:
		body.Error = CodeUpstream
	default:
		body.Error = CodeInternal
	}

	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		body.Details = schemaErr.Errors
	}
	var reqInvalid *ErrValidation
	if errors.As(err, &reqInvalid) {
		body.Details = []schemas.FieldError{{Field: reqInvalid.Field, Message: reqInvalid.Message}}
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			body.Details = append(body.Details, schemas.FieldError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			})
		}
	}
	return body
}
