package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultSearchLimit is used when a search request does not set a limit.
const DefaultSearchLimit = 40

// SearchRequest represents a request to start a search job.
type SearchRequest struct {
	Terms   []string `json:"terms" validate:"required,min=1,max=20,dive,required,max=200"`
	Limit   int      `json:"limit,omitempty" validate:"omitempty,min=1,max=1000"`
	Sources []string `json:"sources,omitempty" validate:"omitempty,max=50,dive,fqdn"`
}

// Validate validates the SearchRequest using the validator.
func (r *SearchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// EffectiveLimit returns the request limit, or fallback when the request has
// none. A non-positive fallback means DefaultSearchLimit.
func (r *SearchRequest) EffectiveLimit(fallback int) int {
	switch {
	case r.Limit > 0:
		return r.Limit
	case fallback > 0:
		return fallback
	default:
		return DefaultSearchLimit
	}
}

// TrendQuery represents a request for a keyword's trend time series.
type TrendQuery struct {
	Keyword   string    `json:"keyword" validate:"required,max=200"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date" validate:"gtfield=StartDate"`
	Geo       string    `json:"geo,omitempty" validate:"omitempty,max=10"`
}

// Validate validates the TrendQuery using the validator.
func (q *TrendQuery) Validate() error {
	validate := validator.New()
	return validate.Struct(q)
}
