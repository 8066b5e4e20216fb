package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func setupRateLimitRouter(limiter *stubLimiter, withUser bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	rm := NewRateLimitMiddleware(limiter)

	if withUser {
		router.Use(func(c *gin.Context) { c.Set("user_id", uint(7)) })
		router.GET("/limited", rm.RateLimit(10, time.Minute), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	} else {
		router.GET("/limited", rm.RateLimitIP(10, time.Minute), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
	}
	return router
}

func TestRateLimitIPAllows(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	router := setupRateLimitRouter(limiter, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, limiter.keys, 1)
	assert.True(t, strings.Contains(limiter.keys[0], "/limited"))
}

func TestRateLimitIPBlocks(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	router := setupRateLimitRouter(limiter, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitPerUserBlocks(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	router := setupRateLimitRouter(limiter, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, strings.Contains(limiter.keys[0], "7"))
}

func TestRateLimitRequiresUser(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	rm := NewRateLimitMiddleware(limiter)
	router.GET("/limited", rm.RateLimit(10, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, limiter.keys)
}

func TestRateLimitBackendError(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	router := setupRateLimitRouter(limiter, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
