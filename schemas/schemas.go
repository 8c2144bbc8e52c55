// Package schemas holds the JSON Schemas for API request bodies and data files.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	SearchRequest = "search_request.schema.json"
	TrendSeries   = "trend_series.schema.json"
	Config        = "config.schema.json"
)

// Names lists every embedded schema.
func Names() []string {
	return []string{SearchRequest, TrendSeries, Config}
}
