package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/tonedial/calltone-backend/internal/platform/logger"
)

func newLimitedRouter(t *testing.T, rl *RateLimiter, label string, max int, window time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", rl.Limit(label, max, window), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func doGet(router *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestLimitBlocksBeyondMax(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(logger.NewNop(), client)
	router := newLimitedRouter(t, rl, "general", 3, time.Minute)

	for i := 0; i < 3; i++ {
		if code := doGet(router); code != http.StatusOK {
			t.Fatalf("request %d: want 200, got %d", i+1, code)
		}
	}
	if code := doGet(router); code != http.StatusTooManyRequests {
		t.Fatalf("request over the limit: want 429, got %d", code)
	}
}

func TestLimitResetsAfterWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(logger.NewNop(), client)
	router := newLimitedRouter(t, rl, "general", 1, time.Minute)

	if code := doGet(router); code != http.StatusOK {
		t.Fatalf("first request: got %d", code)
	}
	if code := doGet(router); code != http.StatusTooManyRequests {
		t.Fatalf("second request: want 429, got %d", code)
	}

	mr.FastForward(2 * time.Minute)

	if code := doGet(router); code != http.StatusOK {
		t.Fatalf("after window: want 200, got %d", code)
	}
}

func TestLimitLabelsAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(logger.NewNop(), client)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	router.GET("/a", rl.Limit("a", 1, time.Minute), ok)
	router.GET("/b", rl.Limit("b", 1, time.Minute), ok)

	get := func(path string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	if code := get("/a"); code != http.StatusOK {
		t.Fatalf("/a: got %d", code)
	}
	if code := get("/a"); code != http.StatusTooManyRequests {
		t.Fatalf("/a over limit: got %d", code)
	}
	// Label b carries its own budget.
	if code := get("/b"); code != http.StatusOK {
		t.Fatalf("/b should be unaffected, got %d", code)
	}
}

func TestLimitWithoutRedisPassesThrough(t *testing.T) {
	rl := NewRateLimiter(logger.NewNop(), nil)
	router := newLimitedRouter(t, rl, "general", 1, time.Minute)

	for i := 0; i < 5; i++ {
		if code := doGet(router); code != http.StatusOK {
			t.Fatalf("request %d without redis: want 200, got %d", i+1, code)
		}
	}
}

func TestLimitFailsOpenOnRedisError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(logger.NewNop(), client)
	router := newLimitedRouter(t, rl, "general", 1, time.Minute)

	mr.Close()

	if code := doGet(router); code != http.StatusOK {
		t.Fatalf("redis down must fail open, got %d", code)
	}
}
