package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, wait := rl.Allow("10.0.0.1")
	assert.False(t, ok, "burst exhausted")
	assert.Equal(t, time.Second, wait)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "buckets are per key")

	now = now.Add(time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok, "one token refilled")
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, 5)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 2, rl.Len())

	now = now.Add(time.Hour)
	rl.Allow("c")
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(0.001, 1)))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/test", nil)
		r.RemoteAddr = "192.0.2.10:5555"
		return serve(router, r)
	}

	first := req()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := req()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests, please retry later","code":"RATE_LIMITED"}`, second.Body.String())
}
