package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jobscout/jobscout/internal/pkg/errcode"
	"github.com/jobscout/jobscout/internal/pkg/response"
	"github.com/jobscout/jobscout/internal/ratelimit"
)

// RateLimit gates the expensive endpoints per (user, plan). Runs after
// JWTAuth; an anonymous request was already rejected by then.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserIDKey)
		plan := c.GetString(ContextPlanKey)
		result := limiter.Allow(c.Request.Context(), userID, plan)
		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			if !result.Reset.IsZero() {
				c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
			}
		}
		if !result.Allowed {
			msg := fmt.Sprintf("rate limit exceeded, retry after %s", result.Reset.UTC().Format("2006-01-02 15:04:05"))
			response.Error(c, errcode.ErrTooMany, msg)
			c.Abort()
			return
		}
		c.Next()
	}
}
