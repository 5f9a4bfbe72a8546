package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/contact-scraper/internal/acquirer"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// FetchConfig controls how pages are retrieved.
type FetchConfig struct {
	PrimaryProxyURL  string
	FallbackProxyURL string
	IDTokenAudience  string
	UserAgent        string
	Attempts         int
	Timeout          time.Duration
	Backoff          time.Duration
}

// Acquirer converts the fetch settings into an acquirer configuration.
func (f FetchConfig) Acquirer() acquirer.Config {
	return acquirer.Config{
		PrimaryProxy:  f.PrimaryProxyURL,
		FallbackProxy: f.FallbackProxyURL,
		Attempts:      f.Attempts,
		Timeout:       f.Timeout,
		Backoff:       f.Backoff,
		UserAgent:     f.UserAgent,
	}
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	RateLimitScrape RateLimitConfig
	TokenTTL        time.Duration
	Fetch           FetchConfig
	PhoneRegion     string
	LogLevel        string
	LogFormat       string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "dev-secret"),
		Port:        getEnv("PORT", "8080"),
		TokenTTL:    parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		PhoneRegion: strings.ToUpper(getEnv("PHONE_REGION", "IN")),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCRAPE", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCRAPE value: %w", err)
	}
	cfg.RateLimitScrape = rl

	fetch, err := loadFetch()
	if err != nil {
		return nil, err
	}
	cfg.Fetch = fetch

	return cfg, nil
}

// LoadFetch reads only the fetch settings, for tools that need no database.
func LoadFetch() (FetchConfig, error) {
	return loadFetch()
}

func loadFetch() (FetchConfig, error) {
	attempts, err := strconv.Atoi(getEnv("FETCH_ATTEMPTS", strconv.Itoa(acquirer.DefaultAttempts)))
	if err != nil || attempts <= 0 {
		return FetchConfig{}, fmt.Errorf("invalid FETCH_ATTEMPTS value: %q", os.Getenv("FETCH_ATTEMPTS"))
	}
	return FetchConfig{
		PrimaryProxyURL:  getEnv("PRIMARY_PROXY_URL", acquirer.DefaultPrimaryProxy),
		FallbackProxyURL: getEnv("FALLBACK_PROXY_URL", acquirer.DefaultFallbackProxy),
		IDTokenAudience:  os.Getenv("PROXY_ID_TOKEN_AUDIENCE"),
		UserAgent:        getEnv("FETCH_USER_AGENT", acquirer.DefaultUserAgent),
		Attempts:         attempts,
		Timeout:          parseDuration(getEnv("FETCH_TIMEOUT", ""), acquirer.DefaultTimeout),
		Backoff:          parseDuration(getEnv("FETCH_BACKOFF", ""), acquirer.DefaultBackoff),
	}, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
