package types

import "time"

// Phase labels a segment of a trend's lifecycle.
type Phase string

// Trend lifecycle phases.
const (
	PhaseEmergence Phase = "emergence"
	PhaseGrowth    Phase = "growth"
	PhasePeak      Phase = "peak"
	PhaseDecline   Phase = "decline"
	PhaseDeath     Phase = "death"
)

// TrendPoint is a single sample of a keyword's interest over time (0-100).
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// TrendPhase is a contiguous, labeled interval of a trend series.
type TrendPhase struct {
	Phase        Phase     `json:"phase"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Intensity    float64   `json:"intensity"`
	DurationDays int       `json:"duration_days"`
}

// RegionInterest is the relative interest of one region in a keyword.
type RegionInterest struct {
	Region           string  `json:"region"`
	Value            float64 `json:"value"`
	LastTrendingDate string  `json:"last_trending_date,omitempty"`
}
