package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"curriculum/internal/infrastructure/ratelimit"
	"curriculum/internal/shared/logger"
	"curriculum/internal/shared/utils"
)

// RateLimiter bounds requests per organization, falling back to the client IP
// on routes that are not organization scoped.
type RateLimiter struct {
	limiter ratelimit.Limiter
	scope   string
	logger  logger.Interface
}

func NewRateLimiter(limiter ratelimit.Limiter, scope string, log logger.Interface) *RateLimiter {
	return &RateLimiter{limiter: limiter, scope: scope, logger: log}
}

// Limit returns a Gin middleware that enforces the limit.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := OrganizationID(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := rl.scope + ":" + subject

		allowed, err := rl.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// A limiter outage must not block imports.
			rl.logger.Warnw("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		if left, err := rl.limiter.Remaining(c.Request.Context(), key); err == nil {
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
