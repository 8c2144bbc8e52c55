package geo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/newslens/internal/registry"
)

// SourceEntry maps newsroom names or domains to their home city.
type SourceEntry struct {
	Match      []string `yaml:"match"`
	City       string   `yaml:"city"`
	Confidence float64  `yaml:"confidence"`
}

type sourcesFile struct {
	Sources []SourceEntry `yaml:"sources"`
}

type sourceHit struct {
	city       City
	confidence float64
}

// SourceRegistry resolves a source name or domain to its newsroom city.
type SourceRegistry struct {
	byMatch map[string]sourceHit
	matches []string // longest first
}

// NewSourceRegistry resolves each entry's city against the gazetteer.
func NewSourceRegistry(entries []SourceEntry, g *Gazetteer) (*SourceRegistry, error) {
	r := &SourceRegistry{byMatch: make(map[string]sourceHit)}
	for _, e := range entries {
		city, ok := g.City(e.City)
		if !ok {
			return nil, &RegistryError{Message: fmt.Sprintf("source city %q is not in the gazetteer", e.City)}
		}
		for _, m := range e.Match {
			m = strings.ToLower(strings.TrimSpace(m))
			if m == "" {
				continue
			}
			if _, exists := r.byMatch[m]; !exists {
				r.matches = append(r.matches, m)
			}
			r.byMatch[m] = sourceHit{city: city, confidence: e.Confidence}
		}
	}
	sort.Slice(r.matches, func(i, j int) bool {
		if len(r.matches[i]) == len(r.matches[j]) {
			return r.matches[i] < r.matches[j]
		}
		return len(r.matches[i]) > len(r.matches[j])
	})
	return r, nil
}

// ParseSourceRegistry parses source registry YAML.
func ParseSourceRegistry(data []byte, g *Gazetteer) (*SourceRegistry, error) {
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &RegistryError{Message: "failed to parse source registry", Cause: err}
	}
	return NewSourceRegistry(f.Sources, g)
}

// LoadSourceRegistry reads source registry YAML from disk.
func LoadSourceRegistry(path string, g *Gazetteer) (*SourceRegistry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &RegistryError{Message: "failed to read source registry", Cause: err}
	}
	return ParseSourceRegistry(data, g)
}

// DefaultSourceRegistry returns the embedded source registry.
func DefaultSourceRegistry(g *Gazetteer) (*SourceRegistry, error) {
	return ParseSourceRegistry(registry.Sources(), g)
}

// Lookup matches source exactly, then by the longest registry entry it contains.
func (r *SourceRegistry) Lookup(source string) (City, float64, bool) {
	s := strings.ToLower(strings.TrimSpace(source))
	s = strings.TrimPrefix(s, "www.")
	if s == "" {
		return City{}, 0, false
	}
	if hit, ok := r.byMatch[s]; ok {
		return hit.city, hit.confidence, true
	}
	for _, m := range r.matches {
		if strings.Contains(s, m) {
			hit := r.byMatch[m]
			return hit.city, hit.confidence, true
		}
	}
	return City{}, 0, false
}
