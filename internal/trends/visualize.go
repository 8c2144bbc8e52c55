package trends

import (
	"fmt"
	"math"
	"time"
)

const (
	polygonSegments = 5
	polygonVertices = 8
	baseRadius      = 2.0 // degrees
	// DefaultWindowDays is the window width used by TimeWindowHeatmap.
	DefaultWindowDays = 7
)

// Center is the map point polygons are drawn around.
type Center struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultCenter is the geographic centre of the contiguous United States.
var DefaultCenter = Center{Lat: 39.8, Lng: -98.5}

// Polygon is a GeoJSON Feature describing one time segment.
type Polygon struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties PolygonProperties `json:"properties"`
}

// Geometry is a GeoJSON Polygon; coordinates are [lng, lat] rings.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// TimeRange bounds a polygon or window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PolygonProperties carries the styling and tooltip for a Polygon.
type PolygonProperties struct {
	TimeRange           TimeRange `json:"time_range"`
	Intensity           int       `json:"intensity"`
	IntensityPercentage int       `json:"intensity_percentage"`
	Phase               string    `json:"phase"`
	Color               string    `json:"color"`
	Opacity             float64   `json:"opacity"`
	Tooltip             string    `json:"tooltip"`
}

// HeatmapCell is one point of the timeline heatmap.
type HeatmapCell struct {
	Time      time.Time `json:"time"`
	Intensity float64   `json:"intensity"`
	Color     string    `json:"color"`
}

// Statistics summarizes an analysis for display.
type Statistics struct {
	PeakIntensity   float64    `json:"peak_intensity"`
	PeakDate        *time.Time `json:"peak_date"`
	TrendDeathDate  *time.Time `json:"trend_death_date"`
	TimeToDeathDays *int       `json:"time_to_death_days"`
	LifespanDays    int        `json:"lifespan_days"`
	AvgIntensity    int        `json:"avg_intensity"`
}

// Visualization is the map rendering of an analysis.
type Visualization struct {
	Keyword         string        `json:"keyword"`
	Polygons        []Polygon     `json:"polygons"`
	TimelineHeatmap []HeatmapCell `json:"timeline_heatmap"`
	Statistics      Statistics    `json:"statistics"`
}

// Window is one TimeWindowHeatmap layer.
type Window struct {
	Window   TimeRange `json:"window"`
	Polygons []Polygon `json:"polygons"`
}

// ColorForIntensity maps 0-100 onto a cool-to-hot scale.
func ColorForIntensity(intensity float64) string {
	intensity = math.Max(0, math.Min(100, intensity))
	switch {
	case intensity < 20:
		return "#0047AB"
	case intensity < 40:
		return "#00B4D8"
	case intensity < 60:
		return "#7FFF00"
	case intensity < 80:
		return "#FFA500"
	default:
		return "#FF4500"
	}
}

// StatisticsFor derives display statistics from an analysis.
func StatisticsFor(a Analysis) Statistics {
	stats := Statistics{
		PeakIntensity:   a.PeakValue,
		TrendDeathDate:  a.DeathTime,
		TimeToDeathDays: a.TimeToDeathDays,
	}
	if len(a.Series) == 0 {
		return stats
	}
	peak := a.PeakTime
	stats.PeakDate = &peak
	stats.LifespanDays = int(a.Series[len(a.Series)-1].Timestamp.Sub(a.Series[0].Timestamp) / day)

	var sum float64
	for _, p := range a.Series {
		sum += p.Value
	}
	stats.AvgIntensity = int(math.Round(sum / float64(len(a.Series))))
	return stats
}

// Visualize splits the series into five time segments and draws each as a
// closed polygon around c that widens as time progresses.
func Visualize(a Analysis, c Center) Visualization {
	v := Visualization{
		Keyword:         a.Keyword,
		Polygons:        []Polygon{},
		TimelineHeatmap: []HeatmapCell{},
		Statistics:      StatisticsFor(a),
	}
	n := len(a.Series)
	if n == 0 {
		return v
	}

	segments := min(polygonSegments, n)
	for k := 0; k < segments; k++ {
		startIdx := k * n / segments
		endIdx := min((k+1)*n/segments, n-1)

		var sum float64
		for j := startIdx; j <= endIdx; j++ {
			sum += a.Series[j].Value
		}
		intensity := int(math.Round(sum / float64(endIdx-startIdx+1)))
		progress := float64(startIdx) / float64(n)

		v.Polygons = append(v.Polygons, newPolygon(
			fmt.Sprintf("polygon-%d", startIdx),
			a,
			c,
			baseRadius*(1+progress*2),
			intensity,
			progress,
			TimeRange{Start: a.Series[startIdx].Timestamp, End: a.Series[endIdx].Timestamp},
		))
	}

	for _, p := range a.Series {
		v.TimelineHeatmap = append(v.TimelineHeatmap, HeatmapCell{
			Time:      p.Timestamp,
			Intensity: p.Value,
			Color:     ColorForIntensity(p.Value),
		})
	}
	return v
}

// TimeWindowHeatmap averages the series over fixed windows of windowDays and
// draws one polygon per non-empty window, sized by its intensity. The last
// window includes the final point.
func TimeWindowHeatmap(a Analysis, windowDays int, c Center) []Window {
	out := []Window{}
	if len(a.Series) == 0 {
		return out
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	width := time.Duration(windowDays) * day
	first := a.Series[0].Timestamp
	last := a.Series[len(a.Series)-1].Timestamp
	span := last.Sub(first)

	for cur := first; !cur.After(last); cur = cur.Add(width) {
		end := cur.Add(width)
		if end.After(last) {
			end = last
		}
		final := !end.Before(last)

		var sum float64
		var count int
		for _, p := range a.Series {
			if !p.Timestamp.Before(cur) && (p.Timestamp.Before(end) || (final && p.Timestamp.Equal(last))) {
				sum += p.Value
				count++
			}
		}
		if count > 0 {
			intensity := int(math.Round(sum / float64(count)))
			progress := 0.0
			if span > 0 {
				progress = float64(cur.Sub(first)) / float64(span)
			}
			window := TimeRange{Start: cur, End: end}
			out = append(out, Window{
				Window: window,
				Polygons: []Polygon{newPolygon(
					fmt.Sprintf("window-%d", cur.UnixMilli()),
					a,
					c,
					baseRadius*float64(intensity)/100,
					intensity,
					progress,
					window,
				)},
			})
		}
		if final {
			break
		}
	}
	return out
}

func newPolygon(id string, a Analysis, c Center, radius float64, intensity int, progress float64, tr TimeRange) Polygon {
	pct := 0
	ratio := 0.0
	if a.PeakValue > 0 {
		ratio = float64(intensity) / a.PeakValue
		pct = int(math.Round(ratio * 100))
	}
	return Polygon{
		ID:   id,
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Polygon",
			Coordinates: [][][2]float64{ring(c, radius, intensity)},
		},
		Properties: PolygonProperties{
			TimeRange:           tr,
			Intensity:           intensity,
			IntensityPercentage: pct,
			Phase:               positionLabel(progress, ratio),
			Color:               ColorForIntensity(float64(intensity)),
			Opacity:             math.Max(0.2, math.Min(0.8, float64(intensity)/100)),
			Tooltip: fmt.Sprintf("%s - %s to %s<br>Intensity: %d%%",
				a.Keyword, tr.Start.Format("Jan 2, 2006"), tr.End.Format("Jan 2, 2006"), intensity),
		},
	}
}

// ring returns a closed octagon around c; stronger segments draw wider.
func ring(c Center, radius float64, intensity int) [][2]float64 {
	r := radius * (0.8 + float64(intensity)/100*0.4)
	points := make([][2]float64, 0, polygonVertices+1)
	for i := 0; i < polygonVertices; i++ {
		angle := float64(i) / polygonVertices * 2 * math.Pi
		points = append(points, [2]float64{c.Lng + r*math.Sin(angle), c.Lat + r*math.Cos(angle)})
	}
	return append(points, points[0])
}

// positionLabel names a segment by where it falls in the timeline.
func positionLabel(progress, ratio float64) string {
	switch {
	case progress < 0.2:
		return "emergence"
	case progress < 0.4:
		if ratio > 0.7 {
			return "rapid-growth"
		}
		return "growth"
	case progress < 0.6:
		if ratio > 0.8 {
			return "peak"
		}
		return "sustained-peak"
	case progress < 0.8:
		return "decline"
	default:
		return "death"
	}
}
