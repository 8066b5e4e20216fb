package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"farm-service/internal/api/middleware"
	"farm-service/internal/config"

	"github.com/gin-gonic/gin"
)

type denyAllLimiter struct {
	keys []string
}

func (d *denyAllLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	d.keys = append(d.keys, key)
	return false, nil
}

// The WebSocket handshake is throttled per IP before the handler runs,
// same as the public auth routes.
func TestWebSocketRouteIsRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := &denyAllLimiter{}
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	router := SetupRouter(cfg, Handlers{}, middleware.NewRateLimitMiddleware(limiter))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for a throttled handshake, got %d", w.Code)
	}
	if len(limiter.keys) != 1 || !strings.Contains(limiter.keys[0], "/ws") {
		t.Fatalf("expected one rate limit check keyed by /ws, got %v", limiter.keys)
	}
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := &denyAllLimiter{}
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	router := SetupRouter(cfg, Handlers{}, middleware.NewRateLimitMiddleware(limiter))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for a throttled login, got %d", w.Code)
	}
}
