package server

import "github.com/jonathan/newslens/internal/types"

// FeatureCollection is a GeoJSON FeatureCollection of article points.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one article as a GeoJSON Point.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Point          `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Point coordinates are [longitude, latitude].
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewFeatureCollection places each article at its resolved city.
func NewFeatureCollection(articles []types.EnrichedArticle) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(articles))}
	for i := range articles {
		a := &articles[i]
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Point{Type: "Point", Coordinates: [2]float64{a.Longitude, a.Latitude}},
			Properties: map[string]any{
				"id":             a.ID,
				"title":          a.Title,
				"link":           a.Link,
				"source":         a.Source,
				"city":           a.City,
				"status":         a.Status,
				"color":          Legend[a.Status].Color,
				"bias":           a.BiasPtr(),
				"sentiment":      a.SentimentLabel,
				"geo_confidence": a.GeoConfidence,
			},
		})
	}
	return fc
}
