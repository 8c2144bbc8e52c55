package geo

import (
	"github.com/jonathan/newslens/internal/types"
)

// Confidence multipliers for gazetteer matches by where the keyword was found.
const (
	TextMatchFactor    = 0.95
	TitleMatchFactor   = 0.92
	FallbackConfidence = 0.5
)

// Default center used when no fallback cities are configured (geographic center of the US).
const (
	DefaultLatitude  = 39.8
	DefaultLongitude = -98.5
)

// Location is a resolved coordinate with provenance.
type Location struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Confidence float64 `json:"confidence"`
	Via        string  `json:"via"`
}

// Locator runs the three geolocation tiers: newsroom registry, gazetteer scan, round-robin fallback.
type Locator struct {
	gazetteer *Gazetteer
	sources   *SourceRegistry
}

// NewLocator creates a Locator. sources may be nil.
func NewLocator(g *Gazetteer, sources *SourceRegistry) *Locator {
	return &Locator{gazetteer: g, sources: sources}
}

// NewDefaultLocator builds a Locator from the embedded registries.
func NewDefaultLocator() (*Locator, error) {
	g, err := DefaultGazetteer()
	if err != nil {
		return nil, err
	}
	s, err := DefaultSourceRegistry(g)
	if err != nil {
		return nil, err
	}
	return NewLocator(g, s), nil
}

// Locate always returns a location. index selects the fallback city.
func (l *Locator) Locate(text string, index int, source, title string) Location {
	if l.sources != nil && source != "" {
		if c, conf, ok := l.sources.Lookup(source); ok {
			return fromCity(c, conf, types.GeoViaSource)
		}
	}

	if l.gazetteer != nil {
		if c, ok := l.gazetteer.Find(text); ok {
			return fromCity(c, c.Confidence*TextMatchFactor, types.GeoViaText)
		}
		if c, ok := l.gazetteer.Find(title); ok {
			return fromCity(c, c.Confidence*TitleMatchFactor, types.GeoViaTitle)
		}
	}

	return l.Fallback(index)
}

// Fallback returns the round-robin city for index with confidence 0.5.
func (l *Locator) Fallback(index int) Location {
	var cities []City
	if l.gazetteer != nil {
		cities = l.gazetteer.Fallback()
	}
	if len(cities) == 0 {
		return Location{
			Name:       "United States",
			Latitude:   DefaultLatitude,
			Longitude:  DefaultLongitude,
			Confidence: FallbackConfidence,
			Via:        types.GeoViaFallback,
		}
	}
	i := index % len(cities)
	if i < 0 {
		i += len(cities)
	}
	return fromCity(cities[i], FallbackConfidence, types.GeoViaFallback)
}

func fromCity(c City, confidence float64, via string) Location {
	return Location{
		Name:       c.Name,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		Confidence: confidence,
		Via:        via,
	}
}
