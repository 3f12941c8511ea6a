package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/job-similarity/internal/config"
)

// EndpointConfig overrides the default rate for requests matching Path and Method.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
	// IdleTTL is how long a client may stay idle before its limiter is dropped.
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// FromSettings converts the service configuration into limiter configuration.
func FromSettings(s config.RateLimitConfig) *Config {
	return &Config{
		Enabled:           s.Enabled,
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
		CleanupInterval:   s.CleanupInterval,
		IdleTTL:           s.IdleTTL,
		Whitelist:         toSet(s.Whitelist),
		Blacklist:         toSet(s.Blacklist),
		EndpointConfigs:   toEndpoints(s.Endpoints),
	}
}

// toEndpoints converts endpoint overrides, defaulting the method to GET.
func toEndpoints(list []config.RateLimitEndpoint) []EndpointConfig {
	if len(list) == 0 {
		return nil
	}
	result := make([]EndpointConfig, 0, len(list))
	for _, ep := range list {
		method := strings.ToUpper(strings.TrimSpace(ep.Method))
		if method == "" {
			method = "GET"
		}
		result = append(result, EndpointConfig{
			Path:   strings.TrimSpace(ep.Path),
			Method: method,
			Limit:  ep.Limit,
			Window: ep.Window,
			Burst:  ep.Burst,
		})
	}
	return result
}

// toSet trims the entries of list into a lookup set.
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
