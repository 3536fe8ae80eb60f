package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LoginRateLimit counts attempts per client IP in redis and rejects with
// 429 once limit is exceeded within window. The counter is best-effort: a
// redis outage lets requests through rather than locking everyone out.
func LoginRateLimit(client *redis.Client, limit int, window time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:login:%s", c.ClientIP())

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warn().Err(err).Msg("login rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(c.Request.Context(), key, window)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many login attempts. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
