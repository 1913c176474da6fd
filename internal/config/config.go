package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultModel        = "gemini-2.0-flash-exp"
	defaultBatchTimeout = 90 * time.Second
	defaultCacheTTL     = 24 * time.Hour
)

// Load reads .env from the current directory and sets env vars.
// Safe to call multiple times; existing env vars are not overwritten.
func Load() error {
	return godotenv.Load()
}

// APIKey returns the key that gates the extraction API (CLUES_API_KEY).
func APIKey() string {
	return os.Getenv("CLUES_API_KEY")
}

// GeminiAPIKey returns the Google Gemini API key.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// GeminiModel returns the model used for field extraction.
func GeminiModel() string {
	if m := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); m != "" {
		return m
	}
	return defaultModel
}

// RunsDir returns the directory for extraction runs and the batch cache.
func RunsDir() string {
	if v := os.Getenv("CLUES_RUNS_DIR"); v != "" {
		return v
	}
	return "data/runs"
}

// RunsIndexLimit returns the max number of runs kept in index.json.
func RunsIndexLimit() int {
	return positiveInt("CLUES_RUNS_INDEX_LIMIT", 50)
}

// RunsMax returns the maximum number of run artifacts to retain.
// If unset or invalid, defaults to 50. Set to 0 to disable pruning.
func RunsMax() int {
	if v := os.Getenv("CLUES_RUNS_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return 50
}

// BatchTimeout bounds a single batch call to Gemini, retries included.
func BatchTimeout() time.Duration {
	if v := os.Getenv("CLUES_BATCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultBatchTimeout
}

// CacheTTL returns how long cached batch answers are reused. "0" keeps
// them forever; "off" disables the cache.
func CacheTTL() (time.Duration, bool) {
	v := strings.TrimSpace(os.Getenv("CLUES_CACHE_TTL"))
	switch {
	case v == "":
		return defaultCacheTTL, true
	case strings.EqualFold(v, "off"):
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d, true
	}
	return defaultCacheTTL, true
}

// GeminiRetries returns how many attempts a Gemini call gets on transient
// errors.
func GeminiRetries() int {
	return positiveInt("CLUES_GEMINI_RETRIES", 3)
}

// MaxConcurrency caps how many batches run at once.
func MaxConcurrency() int {
	return positiveInt("CLUES_MAX_CONCURRENCY", 3)
}

// CountyPortalsFile returns an optional YAML file overriding the built-in
// county portal table.
func CountyPortalsFile() string {
	return strings.TrimSpace(os.Getenv("CLUES_COUNTY_PORTALS"))
}

// Debug reports whether debug logging is enabled.
func Debug() bool {
	return strings.EqualFold(os.Getenv("CLUES_LOG_LEVEL"), "debug")
}

// Addr returns the listen address derived from PORT.
func Addr() string {
	port := os.Getenv("PORT")
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func positiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
