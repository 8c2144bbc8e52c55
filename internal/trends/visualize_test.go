package trends

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorForIntensity(t *testing.T) {
	tests := []struct {
		intensity float64
		want      string
	}{
		{-5, "#0047AB"},
		{0, "#0047AB"},
		{19.9, "#0047AB"},
		{20, "#00B4D8"},
		{45, "#7FFF00"},
		{79, "#FFA500"},
		{80, "#FF4500"},
		{250, "#FF4500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ColorForIntensity(tt.intensity), "intensity %v", tt.intensity)
	}
}

func TestVisualize_FiveSegments(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	a := Analyze("wildfire", daily(values...), time.Time{})

	v := Visualize(a, DefaultCenter)

	require.Len(t, v.Polygons, 5)
	assert.Len(t, v.TimelineHeatmap, 100)
	assert.Equal(t, "wildfire", v.Keyword)

	ids := make([]string, len(v.Polygons))
	for i, p := range v.Polygons {
		ids[i] = p.ID
		assert.Equal(t, "Feature", p.Type)
		assert.Equal(t, "Polygon", p.Geometry.Type)
		require.Len(t, p.Geometry.Coordinates, 1)
		ring := p.Geometry.Coordinates[0]
		require.Len(t, ring, 9)
		assert.Equal(t, ring[0], ring[8], "ring should be closed")
		assert.GreaterOrEqual(t, p.Properties.Opacity, 0.2)
		assert.LessOrEqual(t, p.Properties.Opacity, 0.8)
		assert.Equal(t, ColorForIntensity(float64(p.Properties.Intensity)), p.Properties.Color)
	}
	assert.Equal(t, []string{"polygon-0", "polygon-20", "polygon-40", "polygon-60", "polygon-80"}, ids)

	first := v.Polygons[0]
	assert.Equal(t, 10, first.Properties.Intensity, "mean of 0..20")
	assert.Equal(t, "emergence", first.Properties.Phase)
	assert.Equal(t, 0.2, first.Properties.Opacity)

	// Progress 0 gives the base radius, scaled by intensity.
	r := 2 * (0.8 + 0.10*0.4)
	assert.InDelta(t, DefaultCenter.Lng, first.Geometry.Coordinates[0][0][0], 1e-9)
	assert.InDelta(t, DefaultCenter.Lat+r, first.Geometry.Coordinates[0][0][1], 1e-9)

	last := v.Polygons[4]
	assert.Equal(t, "death", last.Properties.Phase)
	assert.Equal(t, t0.Add(99*day), last.Properties.TimeRange.End)

	// Later segments are drawn wider.
	lastR := last.Geometry.Coordinates[0][0][1] - DefaultCenter.Lat
	assert.Greater(t, lastR, r)

	assert.Equal(t, 99, v.Statistics.LifespanDays)
	assert.Equal(t, 50, v.Statistics.AvgIntensity)
	require.NotNil(t, v.Statistics.PeakDate)
	assert.Equal(t, t0.Add(99*day), *v.Statistics.PeakDate)
}

func TestVisualize_ShortAndEmptySeries(t *testing.T) {
	v := Visualize(Analyze("x", daily(10, 90, 30), time.Time{}), DefaultCenter)
	assert.Len(t, v.Polygons, 3)

	empty := Visualize(Analyze("x", nil, time.Time{}), DefaultCenter)
	assert.NotNil(t, empty.Polygons)
	assert.Empty(t, empty.Polygons)
	assert.Nil(t, empty.Statistics.PeakDate)
}

func TestVisualize_ZeroPeakHasNoPercentage(t *testing.T) {
	v := Visualize(Analyze("x", daily(0, 0, 0, 0, 0), time.Time{}), DefaultCenter)
	for _, p := range v.Polygons {
		assert.Zero(t, p.Properties.IntensityPercentage)
		assert.False(t, math.IsNaN(p.Properties.Opacity))
	}
}

func TestTimeWindowHeatmap(t *testing.T) {
	values := flat(15, 40)
	values[14] = 100
	a := Analyze("x", daily(values...), time.Time{})

	windows := TimeWindowHeatmap(a, 7, DefaultCenter)

	require.Len(t, windows, 2)
	assert.Equal(t, t0, windows[0].Window.Start)
	assert.Equal(t, t0.Add(7*day), windows[0].Window.End)
	assert.Equal(t, 40, windows[0].Polygons[0].Properties.Intensity)

	assert.Equal(t, t0.Add(14*day), windows[1].Window.End)
	// Days 7..14 inclusive: seven 40s and one 100.
	assert.Equal(t, 48, windows[1].Polygons[0].Properties.Intensity)
	assert.Equal(t, "sustained-peak", windows[1].Polygons[0].Properties.Phase)
}

func TestTimeWindowHeatmap_SinglePointAndDefaults(t *testing.T) {
	windows := TimeWindowHeatmap(Analyze("x", daily(60), time.Time{}), 0, DefaultCenter)
	require.Len(t, windows, 1)
	assert.Equal(t, 60, windows[0].Polygons[0].Properties.Intensity)

	assert.Empty(t, TimeWindowHeatmap(Analyze("x", nil, time.Time{}), 7, DefaultCenter))
}
