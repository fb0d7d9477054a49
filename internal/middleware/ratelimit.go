package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tonedial/calltone-backend/internal/platform/logger"
)

// RateLimiter is a fixed-window counter on Redis, keyed by client IP and
// window label. It protects the outer HTTP surface only; the core services
// stay correct without it. When Redis is unreachable requests pass through.
type RateLimiter struct {
	log    *logger.Logger
	client *redis.Client
}

func NewRateLimiter(log *logger.Logger, client *redis.Client) *RateLimiter {
	return &RateLimiter{
		log:    log.With("middleware", "RateLimiter"),
		client: client,
	}
}

// Limit returns a middleware allowing max requests per window, counted
// under the given label so routes can carry independent budgets.
func (rl *RateLimiter) Limit(label string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil {
			c.Next()
			return
		}
		key := fmt.Sprintf("ratelimit:%s:%s", label, c.ClientIP())

		count, err := rl.client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			rl.log.Warn("Rate limit check failed, allowing request", "label", label, "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.client.Expire(c.Request.Context(), key, window).Err(); err != nil {
				rl.log.Warn("Failed to set rate limit window", "label", label, "error", err)
			}
		}
		if count > int64(max) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
