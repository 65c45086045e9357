package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atelier/backend/internal/infrastructure/auth"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		Issuer:                 "atelier-test",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
	})
}

type brokenBlacklist struct{}

func (brokenBlacklist) Revoke(context.Context, string, time.Duration) error { return nil }
func (brokenBlacklist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func authRouter(svc *auth.JWTService, blacklist auth.TokenBlacklist) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{
		JWTService:     svc,
		TokenBlacklist: blacklist,
		SkipPaths:      []string{"/api/v1/auth/login"},
	}))
	router.GET("/api/v1/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":   GetJWTUserID(c),
			"logged": logger.GetUserID(c.Request.Context()),
			"role":   GetJWTClaims(c).Role,
		})
	})
	router.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func bearer(path, token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	return req
}

func TestJWTAuth(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.Subject{UserID: userID, Email: "emma@atelier.test", Role: "DESIGNER"})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		w := serve(authRouter(svc, nil), bearer("/api/v1/me", pair.AccessToken))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":"`+userID.String()+`","logged":"`+userID.String()+`","role":"DESIGNER"}`, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(authRouter(svc, nil), bearer("/api/v1/me", ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Authentication required","code":"UNAUTHORIZED"}`, w.Body.String())
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		w := serve(authRouter(svc, nil), bearer("/api/v1/me", pair.RefreshToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := serve(authRouter(svc, nil), bearer("/api/v1/me", "not.a.jwt"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(t.Context(), claims.ID, time.Minute))

		w := serve(authRouter(svc, blacklist), bearer("/api/v1/me", pair.AccessToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
	})

	t.Run("blacklist outage fails open", func(t *testing.T) {
		w := serve(authRouter(svc, brokenBlacklist{}), bearer("/api/v1/me", pair.AccessToken))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("skip path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		assert.Equal(t, http.StatusOK, serve(authRouter(svc, nil), req).Code)
	})
}

func TestRequireRoles(t *testing.T) {
	svc := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{JWTService: svc}))
	router.POST("/categories", RequireRoles("DESIGNER", "ADMIN"), func(c *gin.Context) { c.Status(http.StatusCreated) })

	token := func(role string) string {
		pair, err := svc.GenerateTokenPair(auth.Subject{UserID: uuid.New(), Role: role})
		require.NoError(t, err)
		return pair.AccessToken
	}
	post := func(tok string) int {
		req := httptest.NewRequest(http.MethodPost, "/categories", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+tok)
		return serve(router, req).Code
	}

	assert.Equal(t, http.StatusCreated, post(token("DESIGNER")))
	assert.Equal(t, http.StatusCreated, post(token("ADMIN")))
	assert.Equal(t, http.StatusForbidden, post(token("CLIENT")))

	t.Run("without claims", func(t *testing.T) {
		router := gin.New()
		router.GET("/x", RequireRoles("ADMIN"), func(c *gin.Context) { c.Status(http.StatusOK) })
		assert.Equal(t, http.StatusUnauthorized, serve(router, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	})
}
