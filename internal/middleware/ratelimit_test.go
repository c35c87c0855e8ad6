package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	rateLimiter := NewRateLimitMiddleware(false)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	rateLimiter.now = func() time.Time { return now }

	handler := rateLimiter.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ip string) int {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))

	// other clients have their own window
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
}

func TestRateLimitMiddleware_ForgetsIdleClients(t *testing.T) {
	rateLimiter := NewRateLimitMiddleware(false)
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	rateLimiter.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		assert.True(t, rateLimiter.allow(fmt.Sprintf("10.0.1.%d", i), 5, time.Minute))
	}
	assert.Equal(t, 50, rateLimiter.clients())

	now = now.Add(2 * time.Minute)
	assert.True(t, rateLimiter.allow("10.0.0.9", 5, time.Minute))
	assert.Equal(t, 1, rateLimiter.clients())
}

func TestRateLimitMiddleware_IgnoresSpoofedForwardingHeaders(t *testing.T) {
	rateLimiter := NewRateLimitMiddleware(false)
	handler := rateLimiter.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		expected   string
	}{
		{"remote addr", "192.168.1.1:12345", nil, false, "192.168.1.1"},
		{"ipv6 remote addr", "[::1]:8080", nil, false, "::1"},
		{"forwarded for trusted", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, true, "203.0.113.7"},
		{"real ip trusted", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.4"}, true, "198.51.100.4"},
		{"forwarded for untrusted", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.7"}, false, "10.0.0.1"},
		{"real ip untrusted", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.4"}, false, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req, tt.trustProxy))
		})
	}
}
