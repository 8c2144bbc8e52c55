// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/newslens/internal/schemas"
	schemadefs "github.com/jonathan/newslens/schemas"
)

// Source adapter names accepted in Config.Sources.
const (
	SourceGoogleNews   = "google_news"
	SourceNewsData     = "newsdata"
	SourceCustomSearch = "custom_search"
)

// Trend fetcher names accepted in Config.TrendSource.
const (
	TrendSourceNone       = "none"
	TrendSourceDataForSEO = "dataforseo"
	TrendSourceGoogle     = "google"
)

// Environment variables holding secrets. They override values from the config file.
const (
	EnvNewsDataAPIKey     = "NEWSDATA_API_KEY"
	EnvCSEAPIKey          = "GOOGLE_CSE_API_KEY"
	EnvCSECX              = "GOOGLE_CSE_CX"
	EnvDataForSEOLogin    = "DATAFORSEO_API_KEY"
	EnvDataForSEOPassword = "DATAFORSEO_API_SECRET"
)

// Config represents the newslens configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults.
type Config struct {
	// Server
	Addr          string `json:"addr,omitempty"`            // Listen address
	JobTTLMinutes int    `json:"job_ttl_minutes,omitempty"` // Completed jobs are evicted after this long

	// Pipeline
	Taxonomy            string   `json:"taxonomy,omitempty"`             // "source" (default) or "content"
	DefaultLimit        int      `json:"default_limit,omitempty"`        // Articles per search when the request omits a limit
	MinOverlap          int      `json:"min_overlap,omitempty"`          // Dedup title-token overlap threshold
	Workers             int      `json:"workers,omitempty"`              // Concurrent per-article enrichments
	BackfillConcurrency int      `json:"backfill_concurrency,omitempty"` // Concurrent content extractions
	BackfillTimeoutSecs int      `json:"backfill_timeout_seconds,omitempty"`
	UseBrowser          bool     `json:"use_browser,omitempty"` // Render short pages with a headless browser
	Verbose             bool     `json:"verbose,omitempty"`     // Print detailed debug information
	Sources             []string `json:"sources,omitempty"`     // Enabled source adapters

	// Per-source timeouts
	GoogleNewsTimeoutSecs   int `json:"google_news_timeout_seconds,omitempty"`
	NewsDataTimeoutSecs     int `json:"newsdata_timeout_seconds,omitempty"`
	CustomSearchTimeoutSecs int `json:"custom_search_timeout_seconds,omitempty"`

	// Trends
	TrendSource       string `json:"trend_source,omitempty"` // "none", "dataforseo" or "google"
	TrendLocation     string `json:"trend_location,omitempty"`
	TrendGeo          string `json:"trend_geo,omitempty"`
	TrendLookbackDays int    `json:"trend_lookback_days,omitempty"`

	// Registry overrides (embedded defaults are used when empty)
	GazetteerPath      string `json:"gazetteer_path,omitempty"`
	SourceRegistryPath string `json:"source_registry_path,omitempty"`
	LexiconPath        string `json:"lexicon_path,omitempty"`
	MediaBiasPath      string `json:"media_bias_path,omitempty"`
	KeywordsPath       string `json:"keywords_path,omitempty"`

	// Secrets
	NewsDataAPIKey     string `json:"newsdata_api_key,omitempty"`
	CSEAPIKey          string `json:"cse_api_key,omitempty"`
	CSECX              string `json:"cse_cx,omitempty"`
	DataForSEOLogin    string `json:"dataforseo_login,omitempty"`
	DataForSEOPassword string `json:"dataforseo_password,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:                    ":8080",
		JobTTLMinutes:           60,
		Taxonomy:                "source",
		DefaultLimit:            40,
		MinOverlap:              1,
		Workers:                 8,
		BackfillConcurrency:     4,
		BackfillTimeoutSecs:     10,
		Sources:                 []string{SourceGoogleNews, SourceNewsData, SourceCustomSearch},
		GoogleNewsTimeoutSecs:   10,
		NewsDataTimeoutSecs:     8,
		CustomSearchTimeoutSecs: 10,
		TrendSource:             TrendSourceNone,
		TrendLocation:           "United States",
		TrendGeo:                "US",
		TrendLookbackDays:       90,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := schemas.Validate(schemadefs.Config, data); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides secrets with non-empty environment variables.
func (c *Config) ApplyEnv() {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.NewsDataAPIKey, EnvNewsDataAPIKey)
	set(&c.CSEAPIKey, EnvCSEAPIKey)
	set(&c.CSECX, EnvCSECX)
	set(&c.DataForSEOLogin, EnvDataForSEOLogin)
	set(&c.DataForSEOPassword, EnvDataForSEOPassword)
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	switch c.Taxonomy {
	case "", "source", "content":
	default:
		return fmt.Errorf("config error: 'taxonomy' must be \"source\" or \"content\", got %q", c.Taxonomy)
	}

	switch c.TrendSource {
	case "", TrendSourceNone, TrendSourceDataForSEO, TrendSourceGoogle:
	default:
		return fmt.Errorf("config error: unknown 'trend_source' %q", c.TrendSource)
	}

	for _, s := range c.Sources {
		switch s {
		case SourceGoogleNews, SourceNewsData, SourceCustomSearch:
		default:
			return fmt.Errorf("config error: unknown source %q", s)
		}
	}

	// Validate numeric ranges
	nonNegative := map[string]int{
		"job_ttl_minutes":               c.JobTTLMinutes,
		"default_limit":                 c.DefaultLimit,
		"min_overlap":                   c.MinOverlap,
		"workers":                       c.Workers,
		"backfill_concurrency":          c.BackfillConcurrency,
		"backfill_timeout_seconds":      c.BackfillTimeoutSecs,
		"google_news_timeout_seconds":   c.GoogleNewsTimeoutSecs,
		"newsdata_timeout_seconds":      c.NewsDataTimeoutSecs,
		"custom_search_timeout_seconds": c.CustomSearchTimeoutSecs,
		"trend_lookback_days":           c.TrendLookbackDays,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}

	// Validate file paths exist (if specified)
	paths := map[string]string{
		"gazetteer":       c.GazetteerPath,
		"source registry": c.SourceRegistryPath,
		"lexicon":         c.LexiconPath,
		"keywords":        c.KeywordsPath,
	}
	for name, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, p)
		}
	}
	// A missing media bias CSV is tolerated at load time.

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	str := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	num := func(dst *int, def int) {
		if *dst == 0 {
			*dst = def
		}
	}

	str(&result.Addr, defaults.Addr)
	str(&result.Taxonomy, defaults.Taxonomy)
	str(&result.TrendSource, defaults.TrendSource)
	str(&result.TrendLocation, defaults.TrendLocation)
	str(&result.TrendGeo, defaults.TrendGeo)
	str(&result.GazetteerPath, defaults.GazetteerPath)
	str(&result.SourceRegistryPath, defaults.SourceRegistryPath)
	str(&result.LexiconPath, defaults.LexiconPath)
	str(&result.MediaBiasPath, defaults.MediaBiasPath)
	str(&result.KeywordsPath, defaults.KeywordsPath)
	str(&result.NewsDataAPIKey, defaults.NewsDataAPIKey)
	str(&result.CSEAPIKey, defaults.CSEAPIKey)
	str(&result.CSECX, defaults.CSECX)
	str(&result.DataForSEOLogin, defaults.DataForSEOLogin)
	str(&result.DataForSEOPassword, defaults.DataForSEOPassword)

	num(&result.JobTTLMinutes, defaults.JobTTLMinutes)
	num(&result.DefaultLimit, defaults.DefaultLimit)
	num(&result.MinOverlap, defaults.MinOverlap)
	num(&result.Workers, defaults.Workers)
	num(&result.BackfillConcurrency, defaults.BackfillConcurrency)
	num(&result.BackfillTimeoutSecs, defaults.BackfillTimeoutSecs)
	num(&result.GoogleNewsTimeoutSecs, defaults.GoogleNewsTimeoutSecs)
	num(&result.NewsDataTimeoutSecs, defaults.NewsDataTimeoutSecs)
	num(&result.CustomSearchTimeoutSecs, defaults.CustomSearchTimeoutSecs)
	num(&result.TrendLookbackDays, defaults.TrendLookbackDays)

	if len(result.Sources) == 0 {
		result.Sources = append([]string(nil), defaults.Sources...)
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// JobTTL returns the completed-job retention as a duration.
func (c *Config) JobTTL() time.Duration {
	return time.Duration(c.JobTTLMinutes) * time.Minute
}

// BackfillTimeout returns the per-article extraction timeout.
func (c *Config) BackfillTimeout() time.Duration {
	return time.Duration(c.BackfillTimeoutSecs) * time.Second
}

// SourceEnabled reports whether the named adapter is enabled.
func (c *Config) SourceEnabled(name string) bool {
	for _, s := range c.Sources {
		if s == name {
			return true
		}
	}
	return false
}
