// Package trends analyzes keyword interest time series: peak and death
// detection, lifecycle phase segmentation and map visualization.
package trends

import (
	"math"
	"time"

	"github.com/jonathan/newslens/internal/types"
)

const (
	// DeathRatio is the fraction of peak at or below which a trend counts as dead.
	DeathRatio = 0.1
	// PeakRatio is the fraction of peak at or above which a point is in its peak phase.
	PeakRatio = 0.9
	// DeathWindow is the fraction of the series, by index, before which death is never reported.
	DeathWindow = 0.7
)

const day = 24 * time.Hour

// Analysis is the lifecycle summary of one keyword's series.
type Analysis struct {
	Keyword         string                 `json:"keyword"`
	Start           time.Time              `json:"start"`
	End             time.Time              `json:"end"`
	PeakValue       float64                `json:"peak_value"`
	PeakTime        time.Time              `json:"peak_time"`
	DeathTime       *time.Time             `json:"death_time,omitempty"`
	TimeToDeathDays *int                   `json:"time_to_death_days,omitempty"`
	IntensityScore  int                    `json:"intensity_score"`
	Phases          []types.TrendPhase     `json:"phases"`
	Series          []types.TrendPoint     `json:"series"`
	Regions         []types.RegionInterest `json:"regions,omitempty"`
}

// Analyze computes peak, death and phases for series. A zero start means the
// first point's timestamp.
func Analyze(keyword string, series []types.TrendPoint, start time.Time) Analysis {
	a := Analysis{
		Keyword: keyword,
		Start:   start,
		Series:  series,
		Phases:  []types.TrendPhase{},
	}
	if len(series) == 0 {
		return a
	}
	if a.Start.IsZero() {
		a.Start = series[0].Timestamp
	}
	a.End = series[len(series)-1].Timestamp

	peakIdx := peakIndex(series)
	a.PeakValue = series[peakIdx].Value
	a.PeakTime = series[peakIdx].Timestamp
	a.IntensityScore = int(math.Min(100, math.Round(a.PeakValue)))

	if idx, ok := deathIndex(series, a.PeakValue); ok {
		t := series[idx].Timestamp
		days := int(math.Floor(t.Sub(a.Start).Hours() / 24))
		a.DeathTime = &t
		a.TimeToDeathDays = &days
	}

	a.Phases = Segment(series, a.PeakValue)
	return a
}

// peakIndex returns the index of the first maximum.
func peakIndex(series []types.TrendPoint) int {
	best := 0
	for i, p := range series {
		if p.Value > series[best].Value {
			best = i
		}
	}
	return best
}

// deathIndex scans only the tail of the series so an early dip before the
// real rise is never reported as death. A series that never rose has no death.
func deathIndex(series []types.TrendPoint, peak float64) (int, bool) {
	if peak <= 0 {
		return 0, false
	}
	threshold := peak * DeathRatio
	for i := deathWindowStart(len(series)); i < len(series); i++ {
		if series[i].Value <= threshold {
			return i, true
		}
	}
	return 0, false
}

// deathWindowStart is the first index at which a low point counts as death
// rather than emergence.
func deathWindowStart(n int) int {
	return int(math.Floor(float64(n) * DeathWindow))
}

// classify labels point i of the series.
func classify(series []types.TrendPoint, i int, peak float64) types.Phase {
	v := series[i].Value
	switch {
	case v <= peak*DeathRatio:
		if i >= deathWindowStart(len(series)) {
			return types.PhaseDeath
		}
		return types.PhaseEmergence
	case v >= peak*PeakRatio:
		return types.PhasePeak
	case i > 0 && v < series[i-1].Value:
		return types.PhaseDecline
	default:
		return types.PhaseGrowth
	}
}

// Segment walks the series once, labels each point and coalesces runs of the
// same label. Each phase ends where the next begins, so the phases cover the
// whole series without gaps. Intensity is the mean value of the run.
func Segment(series []types.TrendPoint, peak float64) []types.TrendPhase {
	phases := []types.TrendPhase{}
	if len(series) == 0 {
		return phases
	}
	if peak <= 0 {
		return append(phases, newPhase(types.PhaseEmergence, series[0].Timestamp, series[len(series)-1].Timestamp, 0))
	}

	current := classify(series, 0, peak)
	startIdx := 0
	sum := series[0].Value
	count := 1

	for i := 1; i < len(series); i++ {
		label := classify(series, i, peak)
		if label == current {
			sum += series[i].Value
			count++
			continue
		}
		phases = append(phases, newPhase(current, series[startIdx].Timestamp, series[i].Timestamp, sum/float64(count)))
		current, startIdx, sum, count = label, i, series[i].Value, 1
	}
	return append(phases, newPhase(current, series[startIdx].Timestamp, series[len(series)-1].Timestamp, sum/float64(count)))
}

func newPhase(label types.Phase, start, end time.Time, intensity float64) types.TrendPhase {
	return types.TrendPhase{
		Phase:        label,
		StartTime:    start,
		EndTime:      end,
		Intensity:    intensity,
		DurationDays: int(end.Sub(start) / day),
	}
}
