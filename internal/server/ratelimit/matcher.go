package ratelimit

import "strings"

// unlimited are routes never rate limited.
var unlimited = map[string]bool{
	"GET /health": true,
	"GET /legend": true,
}

// isUnlimited reports routes that are never rate limited. Polling a job's
// results is safe at any interval.
func isUnlimited(path, method string) bool {
	if unlimited[method+" "+path] {
		return true
	}
	return method == "GET" && strings.HasPrefix(path, "/search/") && strings.HasSuffix(path, "/results")
}

// MatchEndpoint returns the rule for a request, or nil when the default applies.
// An exact path match wins over a prefix rule; prefix rules end in "/".
// Unlimited routes return a rule with Limit 0.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if isUnlimited(path, method) {
		return &EndpointConfig{Path: path, Method: method}
	}

	var prefix *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if prefix == nil && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			prefix = c
		}
	}
	return prefix
}
