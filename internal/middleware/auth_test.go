package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/jobscout/internal/pkg/jwt"
)

func setupAuthRouter(secret []byte) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/protected", JWTAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserIDKey),
			"plan":    c.GetString(ContextPlanKey),
		})
	})
	return engine
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	engine := setupAuthRouter([]byte("secret"))
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	engine.ServeHTTP(recorder, req)
	require.NotContains(t, recorder.Body.String(), "user_id")
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	engine := setupAuthRouter([]byte("secret"))
	token, err := jwt.GenerateToken("u1", "u1@example.com", "pro", []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(recorder, req)
	require.NotContains(t, recorder.Body.String(), `"user_id":"u1"`)
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	secret := []byte("secret")
	engine := setupAuthRouter(secret)
	token, err := jwt.GenerateToken("u1", "u1@example.com", "Pro", secret, time.Hour)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"user_id":"u1"`)
	// plan claim is normalized to lower case
	require.Contains(t, recorder.Body.String(), `"plan":"pro"`)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	secret := []byte("secret")
	engine := setupAuthRouter(secret)
	token, err := jwt.GenerateToken("u1", "", "free", secret, -time.Minute)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(recorder, req)
	require.NotContains(t, recorder.Body.String(), `"user_id":"u1"`)
}
