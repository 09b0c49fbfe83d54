package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRateLimiter(t *testing.T, maxRequests int, window, blockTime time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, RateLimiterConfig{
		Prefix:      "auth",
		MaxRequests: maxRequests,
		Window:      window,
		BlockTime:   blockTime,
	})
	return rl, mr
}

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func doRequest(router http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsRequestsUnderLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 5, time.Minute, 5*time.Minute)
	router := newLimitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := doRequest(router, "192.168.1.1")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 2, time.Minute, 5*time.Minute)
	router := newLimitedRouter(rl)

	doRequest(router, "10.0.0.1")
	doRequest(router, "10.0.0.1")
	w := doRequest(router, "10.0.0.1")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "300", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"retry_after":300`)

	// The block outlives the counting window
	mr.FastForward(2 * time.Minute)
	w = doRequest(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	mr.FastForward(4 * time.Minute)
	w = doRequest(router, "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 1, time.Minute, time.Minute)
	router := newLimitedRouter(rl)

	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "10.0.0.2").Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute, 0)
	ctx := context.Background()

	allowed, _, err := rl.CheckLimit(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, retryAfter, err := rl.CheckLimit(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.LessOrEqual(t, retryAfter, time.Minute)

	mr.FastForward(61 * time.Second)
	allowed, _, err = rl.CheckLimit(ctx, "10.0.0.3")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute, time.Minute)
	router := newLimitedRouter(rl)
	mr.Close()

	w := doRequest(router, "10.0.0.4")

	assert.Equal(t, http.StatusOK, w.Code)
}
