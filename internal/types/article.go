// Package types provides type definitions for structured data used throughout the newslens system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Status is the single classification assigned to an enriched article.
type Status string

// Source taxonomy (default).
const (
	StatusRetraction       Status = "retraction"
	StatusCorrection       Status = "correction"
	StatusNewsArticle      Status = "news-article"
	StatusBiasedSource     Status = "biased-source"
	StatusUntruthfulSource Status = "untruthful-source"
)

// Content taxonomy. Retraction and correction are shared with the source taxonomy.
const (
	StatusInciting   Status = "inciting"
	StatusDisputed   Status = "disputed"
	StatusMisleading Status = "misleading"
	StatusOriginal   Status = "original"
)

// Factual reporting ratings from the media bias registry.
const (
	FactualMixed    = "MIXED"
	FactualHigh     = "HIGH"
	FactualVeryHigh = "VERY_HIGH"
	FactualUnknown  = "unknown"
)

// Geo sources record which locator tier produced a coordinate.
const (
	GeoViaSource   = "source"
	GeoViaText     = "text"
	GeoViaTitle    = "title"
	GeoViaFallback = "fallback"
)

// RawArticle is an article record as returned by a source adapter.
type RawArticle struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	PublishDate string `json:"publish_date"` // ISO-8601
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
	SourceType  string `json:"source_type,omitempty"` // adapter that produced the record
}

// EnrichedArticle is a raw article plus geolocation, bias, classification and sentiment.
type EnrichedArticle struct {
	RawArticle

	ID string `json:"id"`

	City          string  `json:"city"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	GeoConfidence float64 `json:"geo_confidence"`
	GeoSource     string  `json:"geo_source"`

	Bias             int    `json:"bias"` // -30 (left) to +30 (right); 0 when unknown
	BiasUnknown      bool   `json:"bias_unknown"`
	FactualReporting string `json:"factual_reporting"`

	Status           Status   `json:"status"`
	StatusConfidence float64  `json:"status_confidence"`
	StatusReason     string   `json:"status_reason"`
	StatusSignals    []string `json:"status_signals"`

	SentimentScore       float64 `json:"sentiment_score"`
	SentimentComparative float64 `json:"sentiment_comparative"`
	SentimentLabel       string  `json:"sentiment_label"`
}

// BiasPtr returns the article bias as a pointer, nil when the source is unknown.
func (a *EnrichedArticle) BiasPtr() *int {
	if a.BiasUnknown {
		return nil
	}
	b := a.Bias
	return &b
}
