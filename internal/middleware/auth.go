package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobscout/jobscout/internal/pkg/errcode"
	"github.com/jobscout/jobscout/internal/pkg/jwt"
	"github.com/jobscout/jobscout/internal/pkg/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserEmailKey = "user_email"
	ContextPlanKey      = "user_plan"
)

// JWTAuth validates the bearer token and stows the caller's identity on
// the gin context for the handlers downstream.
func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, errcode.ErrUnauthorized, "missing token")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(token, secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		if claims.UserID == "" {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserEmailKey, claims.Email)
		c.Set(ContextPlanKey, strings.ToLower(claims.Plan))
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
