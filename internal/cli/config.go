// Package cli implements the aggctl client: upload a CSV, optionally
// poll until processing settles, and render the result record.
package cli

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL      = "http://localhost:8080"
	DefaultPollInterval = 500 * time.Millisecond
	DefaultPollTimeout  = 60 * time.Second

	baseURLEnv      = "API_BASE_URL"
	pollIntervalEnv = "CLI_POLL_INTERVAL"
	pollTimeoutEnv  = "CLI_POLL_TIMEOUT"
)

type Config struct {
	BaseURL      string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// LoadConfig resolves flag values over environment values over
// defaults. Zero flag values mean "not set".
func LoadConfig(baseURL string, pollInterval, pollTimeout time.Duration) Config {
	if baseURL == "" {
		baseURL = os.Getenv(baseURLEnv)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if pollInterval <= 0 {
		pollInterval = readSeconds(pollIntervalEnv, DefaultPollInterval)
	}
	if pollTimeout <= 0 {
		pollTimeout = readSeconds(pollTimeoutEnv, DefaultPollTimeout)
	}

	return Config{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		PollInterval: pollInterval,
		PollTimeout:  pollTimeout,
	}
}

// readSeconds parses an env var holding a float number of seconds.
func readSeconds(name string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return time.Duration(parsed * float64(time.Second))
}
