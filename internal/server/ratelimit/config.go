package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one route. A Path ending in "/" matches by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int // 0 means Limit
}

// Environment variables read by LoadConfig.
const (
	EnvEnabled         = "RATE_LIMIT_ENABLED"
	EnvDefaultLimit    = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvDefaultWindow   = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvCleanupInterval = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvWhitelist       = "RATE_LIMIT_WHITELIST"
	EnvBlacklist       = "RATE_LIMIT_BLACKLIST"
	EnvSearchPerHour   = "RATE_LIMIT_SEARCH_PER_HOUR"
)

// LoadConfig builds a Config from RATE_LIMIT_* environment variables.
// Unparseable values fall back to their defaults.
func LoadConfig() *Config {
	if !env(EnvEnabled, true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	endpoints := DefaultEndpointConfigs()
	if perHour := env(EnvSearchPerHour, 0, strconv.Atoi); perHour > 0 {
		endpoints[0].Limit = perHour
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env(EnvDefaultLimit, 1000, strconv.Atoi),
		DefaultWindow:   env(EnvDefaultWindow, time.Minute, time.ParseDuration),
		CleanupInterval: env(EnvCleanupInterval, 5*time.Minute, time.ParseDuration),
		Whitelist:       clientSet(os.Getenv(EnvWhitelist)),
		Blacklist:       clientSet(os.Getenv(EnvBlacklist)),
		EndpointConfigs: endpoints,
	}
}

// DefaultEndpointConfigs returns the per-route limits. Submitting a search
// fans out to every news source, so it is the tightest; polling a job is cheap.
// The POST /search rule is always first.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/search", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/trends/", Method: "GET", Limit: 60, Window: time.Hour, Burst: 10},
		{Path: "/search/", Method: "GET", Limit: 600, Window: time.Minute, Burst: 60},
	}
}

func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

// clientSet splits a comma-separated list of client addresses.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
