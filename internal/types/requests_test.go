//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request SearchRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: SearchRequest{Terms: []string{"election"}, Limit: 10},
		},
		{
			name:    "valid request with sources",
			request: SearchRequest{Terms: []string{"election"}, Sources: []string{"nytimes.com", "bbc.co.uk"}},
		},
		{
			name:    "missing terms",
			request: SearchRequest{Limit: 10},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "empty term",
			request: SearchRequest{Terms: []string{""}},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "term too long",
			request: SearchRequest{Terms: []string{strings.Repeat("a", 201)}},
			wantErr: true,
			errMsg:  "max",
		},
		{
			name:    "negative limit",
			request: SearchRequest{Terms: []string{"x"}, Limit: -1},
			wantErr: true,
			errMsg:  "min",
		},
		{
			name:    "limit too large",
			request: SearchRequest{Terms: []string{"x"}, Limit: 5000},
			wantErr: true,
			errMsg:  "max",
		},
		{
			name:    "invalid source domain",
			request: SearchRequest{Terms: []string{"x"}, Sources: []string{"not a domain"}},
			wantErr: true,
			errMsg:  "fqdn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchRequest_EffectiveLimit(t *testing.T) {
	assert.Equal(t, DefaultSearchLimit, (&SearchRequest{}).EffectiveLimit(0))
	assert.Equal(t, 25, (&SearchRequest{}).EffectiveLimit(25))
	assert.Equal(t, 7, (&SearchRequest{Limit: 7}).EffectiveLimit(25))
}

func TestTrendQuery_Validate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := TrendQuery{Keyword: "ai", StartDate: start, EndDate: start.AddDate(0, 3, 0), Geo: "US"}
	assert.NoError(t, valid.Validate())

	noKeyword := valid
	noKeyword.Keyword = ""
	assert.Error(t, noKeyword.Validate())

	inverted := valid
	inverted.EndDate = start.AddDate(0, 0, -1)
	err := inverted.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gtfield")
}
