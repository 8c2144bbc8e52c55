package trends

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/newslens/internal/types"
)

// DefaultRegionNameKey is the feature property holding a region's name in
// census-style state boundary files.
const DefaultRegionNameKey = "NAME"

// RegionMap is a boundary FeatureCollection. After Annotate, every feature
// carries the keyword's interest in that region.
type RegionMap struct {
	Type       string             `json:"type"`
	Features   []RegionFeature    `json:"features"`
	Keyword    string             `json:"keyword,omitempty"`
	TimeSeries []types.TrendPoint `json:"time_series,omitempty"`
}

// RegionFeature is one region polygon. Geometry is passed through untouched.
type RegionFeature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// ParseRegionMap decodes a GeoJSON FeatureCollection of region boundaries.
func ParseRegionMap(data []byte) (*RegionMap, error) {
	var m RegionMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid region boundaries: %w", err)
	}
	if m.Type != "FeatureCollection" {
		return nil, fmt.Errorf("invalid region boundaries: type %q, want FeatureCollection", m.Type)
	}
	return &m, nil
}

// LoadRegionMap reads a boundary file.
func LoadRegionMap(path string) (*RegionMap, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read region boundaries %s: %w", path, err)
	}
	return ParseRegionMap(data)
}

// Annotate returns a copy of m whose features carry trend_value and
// last_trending_date for the analysis' keyword. Regions are matched on the
// nameKey property, ignoring case; unmatched regions get a zero value.
func (m *RegionMap) Annotate(a Analysis, nameKey string) *RegionMap {
	if nameKey == "" {
		nameKey = DefaultRegionNameKey
	}
	interest := make(map[string]types.RegionInterest, len(a.Regions))
	for _, r := range a.Regions {
		interest[regionKey(r.Region)] = r
	}

	out := &RegionMap{
		Type:       m.Type,
		Features:   make([]RegionFeature, len(m.Features)),
		Keyword:    a.Keyword,
		TimeSeries: a.Series,
	}
	for i, f := range m.Features {
		props := make(map[string]any, len(f.Properties)+2)
		for k, v := range f.Properties {
			props[k] = v
		}
		name, _ := f.Properties[nameKey].(string)
		r, ok := interest[regionKey(name)]
		props["trend_value"] = r.Value
		if ok && r.LastTrendingDate != "" {
			props["last_trending_date"] = r.LastTrendingDate
		} else {
			props["last_trending_date"] = nil
		}
		out.Features[i] = RegionFeature{Type: f.Type, Geometry: f.Geometry, Properties: props}
	}
	return out
}

func regionKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
