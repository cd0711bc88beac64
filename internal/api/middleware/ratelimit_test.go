package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
)

type failingLimiter struct{}

func (failingLimiter) AllowWithInfo(context.Context, string) (bool, *ratelimit.Info, error) {
	return false, nil, errors.New("redis down")
}

func newRouter(limiter ratelimit.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(limiter, nil))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	router := newRouter(limiter)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_FailOpen(t *testing.T) {
	router := newRouter(failingLimiter{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
