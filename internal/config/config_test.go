package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MATCH_SIZE", "RATING_DELTA", "CACHE_TTL", "RATING_STEEPNESS", "DATABASE_DRIVER", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.MatchSize)
	assert.Equal(t, 5, cfg.TeamSize())
	assert.Equal(t, 25, cfg.RatingDelta)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.InDelta(t, 0.1, cfg.RatingSteepness, 1e-9)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 1000, cfg.DefaultRating)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_OddMatchSizeRejected(t *testing.T) {
	t.Setenv("MATCH_SIZE", "7")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MATCH_SIZE", "4")
	t.Setenv("RATING_DELTA", "10")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MatchSize)
	assert.Equal(t, 10, cfg.RatingDelta)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}
