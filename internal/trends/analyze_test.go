package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newslens/internal/types"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// daily builds a series with one point per day starting at t0.
func daily(values ...float64) []types.TrendPoint {
	out := make([]types.TrendPoint, len(values))
	for i, v := range values {
		out[i] = types.TrendPoint{Timestamp: t0.Add(time.Duration(i) * day), Value: v}
	}
	return out
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestAnalyze_EarlyDipIsNotDeath(t *testing.T) {
	values := flat(100, 50)
	values[1] = 5
	values[50] = 100

	a := Analyze("flood", daily(values...), time.Time{})

	assert.Equal(t, 100.0, a.PeakValue)
	assert.Equal(t, t0.Add(50*day), a.PeakTime)
	assert.Nil(t, a.DeathTime)
	assert.Nil(t, a.TimeToDeathDays)
}

func TestAnalyze_TailDropIsDeath(t *testing.T) {
	values := flat(100, 50)
	values[50] = 100
	for i := 75; i < 100; i++ {
		values[i] = 5
	}

	a := Analyze("flood", daily(values...), time.Time{})

	require.NotNil(t, a.DeathTime)
	assert.Equal(t, t0.Add(75*day), *a.DeathTime)
	require.NotNil(t, a.TimeToDeathDays)
	assert.Equal(t, 75, *a.TimeToDeathDays)
}

func TestAnalyze_DeathPointStartsDeathPhase(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		switch {
		case i < 40:
			values[i] = float64(20 + i)
		case i == 40:
			values[i] = 100
		case i < 70:
			values[i] = 50
		default:
			values[i] = 5
		}
	}

	a := Analyze("flood", daily(values...), time.Time{})

	require.NotNil(t, a.DeathTime)
	assert.Equal(t, t0.Add(70*day), *a.DeathTime)

	last := a.Phases[len(a.Phases)-1]
	assert.Equal(t, types.PhaseDeath, last.Phase)
	assert.Equal(t, *a.DeathTime, last.StartTime)
	for _, p := range a.Phases {
		if p.StartTime.Before(*a.DeathTime) {
			assert.NotEqual(t, types.PhaseDeath, p.Phase)
		}
		assert.NotEqual(t, types.PhaseEmergence, p.Phase, "no emergence after the rise")
	}
}

func TestAnalyze_TimeToDeathFromExplicitStart(t *testing.T) {
	values := flat(10, 80)
	values[9] = 2

	a := Analyze("x", daily(values...), t0.Add(-10*day))

	require.NotNil(t, a.TimeToDeathDays)
	assert.Equal(t, 19, *a.TimeToDeathDays)
	assert.Equal(t, t0.Add(-10*day), a.Start)
}

func TestAnalyze_PhaseLabels(t *testing.T) {
	a := Analyze("storm", daily(10, 50, 100, 95, 60, 40, 5), time.Time{})

	require.Len(t, a.Phases, 5)
	want := []struct {
		phase     types.Phase
		start     int
		end       int
		intensity float64
	}{
		{types.PhaseEmergence, 0, 1, 10},
		{types.PhaseGrowth, 1, 2, 50},
		{types.PhasePeak, 2, 4, 97.5},
		{types.PhaseDecline, 4, 6, 50},
		{types.PhaseDeath, 6, 6, 5},
	}
	for i, w := range want {
		p := a.Phases[i]
		assert.Equal(t, w.phase, p.Phase, "phase %d", i)
		assert.Equal(t, t0.Add(time.Duration(w.start)*day), p.StartTime, "phase %d start", i)
		assert.Equal(t, t0.Add(time.Duration(w.end)*day), p.EndTime, "phase %d end", i)
		assert.InDelta(t, w.intensity, p.Intensity, 1e-9, "phase %d intensity", i)
		assert.Equal(t, w.end-w.start, p.DurationDays, "phase %d duration", i)
	}

	require.NotNil(t, a.TimeToDeathDays)
	assert.Equal(t, 6, *a.TimeToDeathDays)
	assert.Equal(t, 100, a.IntensityScore)
}

func TestSegment_ContiguousAndCovering(t *testing.T) {
	values := []float64{3, 8, 20, 45, 70, 92, 100, 97, 80, 85, 60, 30, 12, 9, 40, 4, 2, 1, 0, 0}
	series := daily(values...)

	phases := Segment(series, 100)

	require.NotEmpty(t, phases)
	assert.Equal(t, series[0].Timestamp, phases[0].StartTime)
	assert.Equal(t, series[len(series)-1].Timestamp, phases[len(phases)-1].EndTime)
	for i := 1; i < len(phases); i++ {
		assert.Equal(t, phases[i-1].EndTime, phases[i].StartTime, "gap before phase %d", i)
		assert.NotEqual(t, phases[i-1].Phase, phases[i].Phase, "phases %d and %d should have coalesced", i-1, i)
	}
}

func TestAnalyze_ZeroPeak(t *testing.T) {
	a := Analyze("quiet", daily(0, 0, 0, 0), time.Time{})

	require.Len(t, a.Phases, 1)
	assert.Equal(t, types.PhaseEmergence, a.Phases[0].Phase)
	assert.Equal(t, t0, a.Phases[0].StartTime)
	assert.Equal(t, t0.Add(3*day), a.Phases[0].EndTime)
	assert.Nil(t, a.DeathTime)
	assert.Zero(t, a.IntensityScore)
}

func TestAnalyze_EmptySeries(t *testing.T) {
	a := Analyze("none", nil, time.Time{})
	assert.NotNil(t, a.Phases)
	assert.Empty(t, a.Phases)
	assert.Zero(t, a.PeakValue)
	assert.Nil(t, a.DeathTime)
}

func TestAnalyze_PeakIsFirstMaximum(t *testing.T) {
	a := Analyze("x", daily(20, 80, 30, 80), time.Time{})
	assert.Equal(t, t0.Add(day), a.PeakTime)
}

func TestAnalyze_IntensityScore(t *testing.T) {
	tests := []struct {
		peak float64
		want int
	}{
		{42.4, 42},
		{99.6, 100},
		{100, 100},
		{0.4, 0},
	}
	for _, tt := range tests {
		a := Analyze("x", daily(tt.peak), time.Time{})
		assert.Equal(t, tt.want, a.IntensityScore, "peak %v", tt.peak)
	}
}
