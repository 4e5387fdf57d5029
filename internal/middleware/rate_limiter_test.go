package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowWithinWindow(t *testing.T) {
	l := NewRateLimiter("test", 2, time.Minute, "slow down")
	now := time.Now()

	ok, _ := l.allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, _ = l.allow("10.0.0.1", now)
	assert.True(t, ok)
	ok, retryAt := l.allow("10.0.0.1", now)
	assert.False(t, ok)
	assert.Equal(t, now.Add(time.Minute), retryAt)

	ok, _ = l.allow("10.0.0.2", now)
	assert.True(t, ok, "limits are per client IP")

	ok, _ = l.allow("10.0.0.1", now.Add(time.Minute+time.Second))
	assert.True(t, ok, "a new window resets the count")
}

func TestRateLimiter_Purge(t *testing.T) {
	l := NewRateLimiter("test", 5, time.Minute, "slow down")
	now := time.Now()
	l.allow("10.0.0.1", now)
	l.allow("10.0.0.2", now.Add(30*time.Second))

	assert.Equal(t, 1, l.purge(now.Add(61*time.Second)))
	assert.Len(t, l.entries, 1)
}

func TestRateLimiter_Handler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter("test", 1, time.Minute, "slow down")
	r := gin.New()
	r.GET("/", l.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"message":"slow down"}`, w.Body.String())
}

func TestRateLimiter_DisabledWhenLimitNotPositive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter("test", 0, time.Minute, "slow down")
	r := gin.New()
	r.GET("/", l.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
