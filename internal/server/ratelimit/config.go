package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig limits one endpoint per client.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window; 0 means unlimited
	Window time.Duration // refill window
	Burst  int           // burst capacity, Limit when 0
	// Group names a bucket shared by every entry carrying it. Entries without
	// a group get a bucket of their own.
	Group string
}

// OptimizeGroup is the bucket shared by the endpoints that start a run.
const OptimizeGroup = "optimize"

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the server's configuration. runsPerHour caps the optimize
// endpoints per client; 0 disables rate limiting.
func NewConfig(runsPerHour int, whitelist ...string) *Config {
	if runsPerHour <= 0 {
		return &Config{Enabled: false}
	}
	allowed := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		if ip = strings.TrimSpace(ip); ip != "" {
			allowed[ip] = true
		}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       allowed,
		EndpointConfigs: OptimizeEndpoints(runsPerHour),
	}
}

// OptimizeEndpoints limits the endpoints that start a pipeline run.
func OptimizeEndpoints(runsPerHour int) []EndpointConfig {
	burst := max(1, runsPerHour/5)
	return []EndpointConfig{
		{Path: "/api/optimize", Method: "POST", Limit: runsPerHour, Window: time.Hour, Burst: burst, Group: OptimizeGroup},
		{Path: "/api/optimize/", Method: "POST", Limit: runsPerHour, Window: time.Hour, Burst: burst, Group: OptimizeGroup},
	}
}

// MatchEndpoint returns the configuration for path and method, or nil when none
// matches. Exact paths win over prefixes. GET /health is never limited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}
	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
