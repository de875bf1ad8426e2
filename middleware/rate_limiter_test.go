package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIPIgnoresHeadersFromUntrustedRemote(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:4123"
	req.Header.Set("X-Forwarded-For", "198.51.100.9")

	if ip := ClientIP(req, nil); ip != "203.0.113.7" {
		t.Fatalf("expected remote addr, got %q", ip)
	}
}

func TestClientIPHonorsForwardedForFromTrustedProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4123"
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.5")

	if ip := ClientIP(req, []string{"10.0.0.0/8"}); ip != "198.51.100.9" {
		t.Fatalf("expected first forwarded hop, got %q", ip)
	}
}

func TestClientIPHonorsRealIPFromTrustedIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4123"
	req.Header.Set("X-Real-IP", "198.51.100.9")

	if ip := ClientIP(req, []string{"10.0.0.5"}); ip != "198.51.100.9" {
		t.Fatalf("expected real ip, got %q", ip)
	}
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	limiter := NewIPRateLimiter(2, time.Minute)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks", nil)
		req.RemoteAddr = "203.0.113.7:4123"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %v", codes)
	}
}

func TestRateLimiterTracksIPsIndependently(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Minute)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/webhooks", nil)
	first.RemoteAddr = "203.0.113.7:4123"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first ip first request: got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/webhooks", nil)
	other.RemoteAddr = "198.51.100.9:5555"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("second ip should not share the first ip's budget, got %d", rec.Code)
	}
}
