package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database (빈 URL이면 in-memory 저장소)
	DatabaseDriver string
	DatabaseURL    string

	// Redis (빈 URL이면 in-memory 큐/캐시/버스)
	RedisURL string

	// Cache
	CacheEnabled bool
	CacheTTL     time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Matchmaking
	MatchSize           int
	MatchmakingInterval time.Duration
	HistoryLimit        int

	// Rating
	RatingDelta     int
	RatingSteepness float64
	DefaultRating   int

	// Results
	ResultWorkers int

	RateLimitPerMinute int
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseDriver:      getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		CacheEnabled:        parseBool(getEnv("CACHE_ENABLED", "true"), true),
		CacheTTL:            parseDuration(getEnv("CACHE_TTL", "300s"), 300*time.Second),
		CORSAllowedOrigins:  parseList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		MatchSize:           parseInt(getEnv("MATCH_SIZE", "10"), 10),
		MatchmakingInterval: parseDuration(getEnv("MATCHMAKING_INTERVAL", "10s"), 10*time.Second),
		HistoryLimit:        parseInt(getEnv("HISTORY_LIMIT", "10"), 10),
		RatingDelta:         parseInt(getEnv("RATING_DELTA", "25"), 25),
		RatingSteepness:     parseFloat(getEnv("RATING_STEEPNESS", "0.1"), 0.1),
		DefaultRating:       parseInt(getEnv("DEFAULT_RATING", "1000"), 1000),
		ResultWorkers:       parseInt(getEnv("RESULT_WORKERS", "8"), 8),
		RateLimitPerMinute:  parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "120"), 120),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the matchmaking pipeline cannot run with.
func (c *Config) Validate() error {
	if c.MatchSize < 2 || c.MatchSize%2 != 0 {
		return fmt.Errorf("MATCH_SIZE must be an even number >= 2, got %d", c.MatchSize)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.RatingDelta < 0 {
		return fmt.Errorf("RATING_DELTA must not be negative, got %d", c.RatingDelta)
	}
	if c.RatingSteepness <= 0 {
		return fmt.Errorf("RATING_STEEPNESS must be positive, got %v", c.RatingSteepness)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL)
	}
	if c.ResultWorkers < 1 {
		c.ResultWorkers = 1
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

// TeamSize players per side.
func (c *Config) TeamSize() int {
	return c.MatchSize / 2
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(s string, fallback bool) bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
