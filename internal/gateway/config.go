package gateway

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionURL is the hosted Linguaku API.
const ProductionURL = "https://linguaku-backend-production.up.railway.app/api"

// Config holds gateway configuration.
type Config struct {
	// BaseURL is prefixed to every request path. Default: ProductionURL.
	BaseURL string

	// Timeout bounds a single attempt. Default: 30s.
	Timeout time.Duration

	// Retries is how many extra attempts follow a timeout or transport
	// failure. Default: 2.
	Retries int

	// RetryBase is the linear backoff unit; attempt n waits n*RetryBase.
	// Default: 1s.
	RetryBase time.Duration
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   ProductionURL,
		Timeout:   30 * time.Second,
		Retries:   2,
		RetryBase: 1 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset or unparsable values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if u := os.Getenv("LINGUAKU_API_URL"); u != "" {
		cfg.BaseURL = u
	}
	if t := os.Getenv("LINGUAKU_API_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if r := os.Getenv("LINGUAKU_API_RETRIES"); r != "" {
		if n, err := strconv.Atoi(r); err == nil && n >= 0 {
			cfg.Retries = n
		}
	}

	return cfg
}

func (c Config) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.BaseURL, "/") + path
}
