package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is a limit for one method on a path or path prefix. Burst caps the bucket
// and falls back to Limit; RedisLimiter ignores it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// LoadConfig loads rate limiting configuration through lookup, which is normally
// os.LookupEnv. Unparseable values fall back to their defaults.
func LoadConfig(lookup func(string) (string, bool)) *Config {
	env := envLookup(lookup)
	if !env.getBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.getInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   env.getDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.getDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(env.getString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(env.getString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Credential checks
		{Path: "/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/users", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// Writes
		{Path: "/users/", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/users/", Method: "PATCH", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/users/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/job-applications/", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/job-applications/", Method: "PATCH", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/job-applications/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/assistant-steps/", Method: "PATCH", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/documents/", Method: "PATCH", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/documents/", Method: "PUT", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/documents/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},

		// Reads use the default limit; GET /health is unlimited (see MatchEndpoint).
	}
}

type envLookup func(string) (string, bool)

func (l envLookup) getString(key string, defaultValue string) string {
	if value, ok := l(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (l envLookup) getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(l.getString(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func (l envLookup) getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(l.getString(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func (l envLookup) getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(l.getString(key, "")); err == nil {
		return v
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
