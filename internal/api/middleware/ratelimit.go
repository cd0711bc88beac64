package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rift-augur/rift-augur-backend/internal/metrics"
	"github.com/rift-augur/rift-augur-backend/pkg/logger"
	"github.com/rift-augur/rift-augur-backend/pkg/ratelimit"
)

// IPKeyFunc uses only IP address
func IPKeyFunc(c *gin.Context) string {
	return fmt.Sprintf("ip:%s", c.ClientIP())
}

// RateLimit 요청 한도 미들웨어
// 저장소 오류 시에는 요청을 허용한다 (fail-open).
func RateLimit(limiter ratelimit.Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = IPKeyFunc
	}

	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, info, err := limiter.AllowWithInfo(c.Request.Context(), key)
		if err != nil {
			logger.Warn("Rate limit check failed", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

		if !allowed {
			metrics.RateLimited.Inc()

			retryAfter := int(time.Until(info.ResetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
