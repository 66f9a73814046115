package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"taskboard-be/internal/logger"
	"taskboard-be/internal/metrics"
	"taskboard-be/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func hit(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitLocalRejectsAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewLocalLimiter(ctx, 0.001, 2)
	r := newRouter(RateLimit(limiter, logger.Discard()))

	before := testutil.ToFloat64(metrics.RateLimitRejectedTotal)
	for i := 0; i < 2; i++ {
		if w := hit(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
	w := hit(r, "10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Fatalf("expected envelope body, got %s", w.Body.String())
	}
	if got := testutil.ToFloat64(metrics.RateLimitRejectedTotal) - before; got != 1 {
		t.Fatalf("expected one rejection counted, got %v", got)
	}

	if w := hit(r, "10.0.0.2"); w.Code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", w.Code)
	}
}

func TestRateLimitRedis(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := newRouter(RateLimit(ratelimit.NewRedisLimiter(rdb, "", 0.001, 1), logger.Discard()))
	if w := hit(r, "10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := hit(r, "10.0.0.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newRouter(RateLimit(brokenLimiter{}, logger.Discard()))
	if w := hit(r, "10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("limiter errors must not block traffic, got %d", w.Code)
	}
}

func TestLocalLimiterSweep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewLocalLimiter(ctx, 1, 1)
	clock := time.Now()
	limiter.now = func() time.Time { return clock }

	limiter.getVisitor("a")
	clock = clock.Add(11 * time.Minute)
	limiter.getVisitor("b")
	limiter.sweep(10 * time.Minute)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, ok := limiter.visitors["a"]; ok {
		t.Fatalf("idle visitor was not removed")
	}
	if _, ok := limiter.visitors["b"]; !ok {
		t.Fatalf("active visitor was removed")
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(RequestLogger(logger.New(&buf, "info")))
	hit(r, "10.0.0.9")

	out := buf.String()
	for _, want := range []string{`"msg":"http request"`, `"path":"/ping"`, `"status":200`, `"client_ip":"10.0.0.9"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %s: %s", want, out)
		}
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "204")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected counter increment on route pattern, got %v", got)
	}
}

func TestStoreTimeout(t *testing.T) {
	r := gin.New()
	r.Use(StoreTimeout(time.Minute))
	r.GET("/deadline", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deadline", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("request context has no deadline")
	}
}
