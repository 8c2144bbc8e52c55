// Package geo assigns coordinates to articles from a newsroom registry, a city
// gazetteer and a round-robin fallback.
package geo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/newslens/internal/registry"
)

// City is a gazetteer entry.
type City struct {
	Key        string   `yaml:"key" json:"key"`
	Name       string   `yaml:"name" json:"name"`
	Latitude   float64  `yaml:"latitude" json:"latitude"`
	Longitude  float64  `yaml:"longitude" json:"longitude"`
	Confidence float64  `yaml:"confidence" json:"confidence"`
	Keywords   []string `yaml:"keywords" json:"keywords,omitempty"`
}

type gazetteerFile struct {
	Cities   []City   `yaml:"cities"`
	Fallback []string `yaml:"fallback"`
}

// Gazetteer is a read-only keyword → city dictionary.
type Gazetteer struct {
	byKey    map[string]City
	toCity   map[string]string // normalized keyword -> city key
	phrases  []string          // normalized keywords, longest first
	fallback []City
}

// NewGazetteer indexes cities by key and keywords. fallback lists city keys in
// round-robin order; unknown keys are an error.
func NewGazetteer(cities []City, fallback []string) (*Gazetteer, error) {
	g := &Gazetteer{
		byKey:  make(map[string]City, len(cities)),
		toCity: make(map[string]string),
	}

	for _, c := range cities {
		key := normalizeKey(c.Key)
		if key == "" {
			key = normalizeKey(c.Name)
		}
		if key == "" {
			continue
		}
		c.Key = key
		g.byKey[key] = c

		add := func(s string) {
			k := normalizeKey(s)
			if k == "" {
				return
			}
			if _, exists := g.toCity[k]; !exists {
				g.toCity[k] = key
				g.phrases = append(g.phrases, k)
			}
		}
		add(key)
		for _, kw := range c.Keywords {
			add(kw)
		}
	}

	// Longer phrases first so "new york" wins over "york".
	sort.Slice(g.phrases, func(i, j int) bool {
		if len(g.phrases[i]) == len(g.phrases[j]) {
			return g.phrases[i] < g.phrases[j]
		}
		return len(g.phrases[i]) > len(g.phrases[j])
	})

	for _, k := range fallback {
		c, ok := g.byKey[normalizeKey(k)]
		if !ok {
			return nil, &RegistryError{Message: fmt.Sprintf("fallback city %q is not in the gazetteer", k)}
		}
		g.fallback = append(g.fallback, c)
	}

	return g, nil
}

// ParseGazetteer parses gazetteer YAML.
func ParseGazetteer(data []byte) (*Gazetteer, error) {
	var f gazetteerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &RegistryError{Message: "failed to parse gazetteer", Cause: err}
	}
	return NewGazetteer(f.Cities, f.Fallback)
}

// LoadGazetteer reads gazetteer YAML from disk.
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &RegistryError{Message: "failed to read gazetteer", Cause: err}
	}
	return ParseGazetteer(data)
}

// DefaultGazetteer returns the embedded gazetteer.
func DefaultGazetteer() (*Gazetteer, error) {
	return ParseGazetteer(registry.Gazetteer())
}

// City returns the city stored under key.
func (g *Gazetteer) City(key string) (City, bool) {
	c, ok := g.byKey[normalizeKey(key)]
	return c, ok
}

// Lookup resolves a single keyword to its city.
func (g *Gazetteer) Lookup(keyword string) (City, bool) {
	key, ok := g.toCity[normalizeKey(keyword)]
	if !ok {
		return City{}, false
	}
	return g.byKey[key], true
}

// Find returns the city of the longest keyword that appears as whole words in text.
func (g *Gazetteer) Find(text string) (City, bool) {
	t := " " + normalizeKey(text) + " "
	if strings.TrimSpace(t) == "" {
		return City{}, false
	}
	for _, p := range g.phrases {
		if strings.Contains(t, " "+p+" ") {
			return g.byKey[g.toCity[p]], true
		}
	}
	return City{}, false
}

// Fallback returns the round-robin city list.
func (g *Gazetteer) Fallback() []City {
	return g.fallback
}

// Len returns the number of cities.
func (g *Gazetteer) Len() int {
	return len(g.byKey)
}

func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteByte(' ')
			prevSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}
