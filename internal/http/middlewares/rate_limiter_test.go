package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/schoolhub/internal/http/middlewares"
)

func limitedRouter(limiter middlewares.Limiter) *gin.Engine {
	r := gin.New()

	r.POST("/login", limiter.RateLimiterMiddleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func fire(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = remoteAddr

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	r := limitedRouter(middlewares.NewRateLimiter(3, time.Minute))

	for i := 0; i < 3; i++ {
		if w := fire(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i+1, w.Code)
		}
	}

	w := fire(r, "10.0.0.1:1234")

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429: %s", w.Code, w.Body.String())
	}

	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := limitedRouter(middlewares.NewRateLimiter(1, time.Minute))

	if w := fire(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("first client: got status %d, want 200", w.Code)
	}

	if w := fire(r, "10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Fatalf("second client: got status %d, want 200", w.Code)
	}

	if w := fire(r, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client again: got status %d, want 429", w.Code)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	r := limitedRouter(middlewares.NewRateLimiter(1, 10*time.Millisecond))

	if w := fire(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	if w := fire(r, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", w.Code)
	}

	time.Sleep(20 * time.Millisecond)

	if w := fire(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("after window: got status %d, want 200", w.Code)
	}
}
