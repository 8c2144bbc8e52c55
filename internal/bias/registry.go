// Package bias resolves article sources to editorial bias and factual reporting ratings.
package bias

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/newslens/internal/registry"
	"github.com/jonathan/newslens/internal/types"
)

// Rating is a media bias record. Bias runs from -30 (left) to +30 (right).
type Rating struct {
	SiteName         string `json:"site_name"`
	URL              string `json:"url"`
	Bias             int    `json:"bias"`
	FactualReporting string `json:"factual_reporting"`
	Known            bool   `json:"known"`
}

// Unknown is the rating returned when no registry entry matches.
var Unknown = Rating{FactualReporting: types.FactualUnknown}

// Registry is a read-only index of ratings by domain and by site name.
type Registry struct {
	byDomain map[string]Rating
	byName   map[string]Rating
	domains  []string // sorted longest first for fuzzy matching
	names    []string
}

// Bias scores outside [MinBias, MaxBias] are rejected at load time.
const (
	MinBias = -30
	MaxBias = 30
)

// minFuzzyLength keeps very short names from matching everything.
const minFuzzyLength = 3

// Parse reads CSV rows of site_name,url,bias,factual_reporting. The header row
// and rows with fewer than four fields are skipped; an unparsable bias is 0.
// Rows whose bias falls outside [MinBias, MaxBias] are dropped with a warning.
func Parse(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	reg := &Registry{
		byDomain: make(map[string]Rating),
		byName:   make(map[string]Rating),
	}

	shorts := make(map[string][]Rating)
	header := true
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, &LoadError{Message: "failed to read media bias CSV", Cause: err}
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 4 {
			continue
		}

		siteName := strings.TrimSpace(rec[0])
		domain := ExtractDomain(rec[1])
		if domain == "" {
			continue
		}
		b, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			b = 0
		}
		if b < MinBias || b > MaxBias {
			log.Printf("[bias] skipping %q: bias %d outside [%d, %d]", siteName, b, MinBias, MaxBias)
			continue
		}
		rating := Rating{
			SiteName:         siteName,
			URL:              strings.TrimSpace(rec[1]),
			Bias:             b,
			FactualReporting: NormalizeFactual(rec[3]),
			Known:            true,
		}

		reg.byDomain[domain] = rating
		if n := hyphenate(siteName); n != "" {
			reg.byName[n] = rating
		}
		if short := shortName(siteName); len(short) >= minFuzzyLength {
			shorts[short] = append(shorts[short], rating)
		}
	}

	// A short name is only an alias when a single site claims it.
	for short, ratings := range shorts {
		if _, taken := reg.byName[short]; taken || len(ratings) > 1 {
			continue
		}
		reg.byName[short] = ratings[0]
	}

	reg.domains = sortedKeys(reg.byDomain)
	reg.names = sortedKeys(reg.byName)
	return reg, nil
}

// Load reads a CSV file. A missing file yields an empty registry and a warning.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[bias] media bias CSV not found at %s, continuing without ratings", path)
		return Empty(), nil
	}
	if err != nil {
		return nil, &LoadError{Message: "failed to read media bias CSV", Cause: err}
	}
	return Parse(bytes.NewReader(data))
}

// Default returns the embedded registry.
func Default() (*Registry, error) {
	return Parse(bytes.NewReader(registry.MediaBias()))
}

// Empty returns a registry with no ratings.
func Empty() *Registry {
	return &Registry{byDomain: map[string]Rating{}, byName: map[string]Rating{}}
}

// Len returns the number of rated domains.
func (r *Registry) Len() int {
	return len(r.byDomain)
}

// Lookup resolves a source by name first, then by domain:
// exact name, short name, fuzzy name, exact domain, fuzzy domain.
func (r *Registry) Lookup(sourceURL, sourceName string) Rating {
	if name := hyphenate(sourceName); name != "" {
		if rating, ok := r.byName[name]; ok {
			return rating
		}
		if short := shortName(sourceName); short != "" {
			if rating, ok := r.byName[short]; ok {
				return rating
			}
		}
		if len(name) >= minFuzzyLength {
			for _, cached := range r.names {
				if strings.Contains(name, cached) || strings.Contains(cached, name) {
					return r.byName[cached]
				}
			}
		}
	}

	domain := ExtractDomain(sourceURL)
	if domain == "" {
		return Unknown
	}
	if rating, ok := r.byDomain[domain]; ok {
		return rating
	}
	if len(domain) >= minFuzzyLength {
		for _, cached := range r.domains {
			if strings.Contains(domain, cached) || strings.Contains(cached, domain) {
				return r.byDomain[cached]
			}
		}
	}
	return Unknown
}

// NormalizeFactual maps free-form ratings to VERY_HIGH, HIGH or MIXED.
func NormalizeFactual(s string) string {
	n := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.Contains(n, "VERY"):
		return types.FactualVeryHigh
	case strings.Contains(n, "HIGH"):
		return types.FactualHigh
	default:
		return types.FactualMixed
	}
}

// ExtractDomain returns the lower-cased host without a leading "www.".
// Bare hosts are accepted.
func ExtractDomain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func hyphenate(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// shortName is the first word of a site name, skipping a leading article.
func shortName(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) > 1 && (fields[0] == "the" || fields[0] == "a" || fields[0] == "an") {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func sortedKeys(m map[string]Rating) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) == len(keys[j]) {
			return keys[i] < keys[j]
		}
		return len(keys[i]) > len(keys[j])
	})
	return keys
}

// LoadError represents a failure reading the media bias registry
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bias registry error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("bias registry error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
