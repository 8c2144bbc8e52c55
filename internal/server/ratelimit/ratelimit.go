// Package ratelimit provides per-client token bucket rate limiting.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// idleBucketTTL is how long an unused bucket survives cleanup.
const idleBucketTTL = time.Hour

// TokenBucket allows bursts up to capacity and refills at a steady rate.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	now := time.Now()
	return &TokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastUsed:   now,
	}
}

// refill must be called with mu held.
func (tb *TokenBucket) refill(now time.Time) {
	tb.tokens = min(tb.capacity, tb.tokens+now.Sub(tb.lastRefill).Seconds()*tb.refillRate)
	tb.lastRefill = now
}

// take consumes a token if one is available and reports the bucket state afterwards.
func (tb *TokenBucket) take() (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.refill(now)
	tb.lastUsed = now
	if tb.tokens >= 1 {
		tb.tokens--
		allowed = true
	}

	remaining = int(tb.tokens)
	resetTime = now
	if tb.tokens < tb.capacity && tb.refillRate > 0 {
		secs := (tb.capacity - tb.tokens) / tb.refillRate
		resetTime = now.Add(time.Duration(secs * float64(time.Second)))
	}
	return allowed, remaining, resetTime
}

func (tb *TokenBucket) idleSince(cutoff time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.lastUsed.Before(cutoff)
}

// Info describes the limit applied to one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter keeps one bucket per client and endpoint rule.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	buckets map[string]*TokenBucket
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter. A nil config enables a 1000 requests/minute default.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*TokenBucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Allow checks and records a request from clientID to path.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	switch {
	case !l.config.Enabled, l.config.Whitelist[clientID]:
		return true, Info{Allowed: true}
	case l.config.Blacklist[clientID]:
		return false, Info{}
	}

	// Buckets are per rule, so /search/{id} paths share one bucket.
	rule := MatchEndpoint(path, method, l.config.EndpointConfigs)
	key := clientID + " " + method + " " + path
	if rule == nil {
		rule = &EndpointConfig{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
		key = clientID + " *"
	} else if strings.HasSuffix(rule.Path, "/") {
		key = clientID + " " + rule.Method + " " + rule.Path
	}
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	allowed, remaining, reset := l.bucket(key, rule).take()
	info := Info{Allowed: allowed, Limit: rule.Limit, Remaining: remaining, ResetTime: reset}
	if !allowed {
		info.RetryAfter = max(time.Until(reset), 0)
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, rule *EndpointConfig) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	window := rule.Window
	if window <= 0 {
		window = time.Minute
	}
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := newTokenBucket(capacity, float64(rule.Limit)/window.Seconds())
	l.buckets[key] = b
	return b
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanupBuckets(time.Now().Add(-idleBucketTTL))
		case <-l.stop:
			return
		}
	}
}

// cleanupBuckets drops buckets unused since cutoff.
func (l *Limiter) cleanupBuckets(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
