package ratelimit

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Rule limits one route. Pattern is written like a ServeMux pattern,
// "POST /generate-email"; a path ending in "/" covers everything below it.
type Rule struct {
	Pattern string
	Limit   int // requests per Window, zero means unlimited
	Window  time.Duration
	Burst   int // defaults to Limit
}

func (r Rule) unlimited() bool {
	return r.Limit <= 0 || r.Window <= 0
}

func (r Rule) every() rate.Limit {
	return rate.Limit(float64(r.Limit) / r.Window.Seconds())
}

func (r Rule) burst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// Default applies to routes no rule names. Its Pattern is ignored.
	Default Rule
	Rules   []Rule
	// Exempt patterns are never limited.
	Exempt []string
	// Allow and Deny hold client IDs that skip the limiter or are always refused.
	Allow map[string]bool
	Deny  map[string]bool

	CleanupInterval time.Duration
	IdleTTL         time.Duration // buckets idle this long are dropped
}

// DefaultRules covers the routes that reach the generation service, once per
// posting, and catalog reloads.
func DefaultRules(generatePerMinute, burst int) []Rule {
	return []Rule{
		{Pattern: "POST /generate-email", Limit: generatePerMinute, Window: time.Minute, Burst: burst},
		{Pattern: "POST /generate-email/stream", Limit: generatePerMinute, Window: time.Minute, Burst: burst},
		{Pattern: "POST /portfolio/reload", Limit: 10, Window: time.Minute, Burst: 2},
	}
}

// LoadConfig builds the limiter configuration. generatePerMinute and burst
// bound the generation routes; a non-positive generatePerMinute disables
// limiting. getenv supplies the RATE_LIMIT_* overrides.
func LoadConfig(getenv func(string) string, generatePerMinute, burst int) *Config {
	env := envReader(getenv)
	if generatePerMinute <= 0 || !env.bool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		Default:         Rule{Limit: env.int("RATE_LIMIT_DEFAULT_PER_MINUTE", 600), Window: time.Minute},
		Rules:           DefaultRules(generatePerMinute, burst),
		Exempt:          []string{"GET /health", "OPTIONS /"},
		Allow:           env.set("RATE_LIMIT_ALLOW"),
		Deny:            env.set("RATE_LIMIT_DENY"),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         env.duration("RATE_LIMIT_IDLE_TTL", time.Hour),
	}
}

type envReader func(string) string

func (e envReader) int(key string, def int) int {
	if n, err := strconv.Atoi(e(key)); err == nil {
		return n
	}
	return def
}

func (e envReader) bool(key string, def bool) bool {
	if b, err := strconv.ParseBool(e(key)); err == nil {
		return b
	}
	return def
}

func (e envReader) duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e(key)); err == nil {
		return d
	}
	return def
}

// set parses a comma-separated list.
func (e envReader) set(key string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(e(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}
