package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one method and path. A path ending in "/"
// matches every path below it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // Requests per window
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity; defaults to Limit
}

// LoadConfig reads the limiter configuration from RATE_LIMIT_* variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt("RATE_LIMIT_INTAKE_PER_HOUR", 10)),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. AI intake calls a
// paid external service and is limited to intakePerHour.
func DefaultEndpointConfigs(intakePerHour int) []EndpointConfig {
	return []EndpointConfig{
		// External calls
		{Path: "/api/intake", Method: "POST", Limit: intakePerHour, Window: time.Hour, Burst: 2},
		{Path: "/export.pdf", Method: "GET", Limit: 30, Window: time.Hour, Burst: 5},

		// Edits
		{Path: "/api/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 60},
		{Path: "/api/", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 60},
		{Path: "/api/", Method: "PATCH", Limit: 300, Window: time.Minute, Burst: 60},
		{Path: "/api/", Method: "DELETE", Limit: 300, Window: time.Minute, Burst: 60},
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of client addresses.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
