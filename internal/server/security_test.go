package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func request(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHarden_SetsSecurityHeaders(t *testing.T) {
	h := Harden(okHandler(), Options{RequestsPerMinute: 10})

	rec := request(h, "10.0.0.1:1234")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

func TestHarden_RateLimitsPerIP(t *testing.T) {
	h := Harden(okHandler(), Options{RequestsPerMinute: 2})

	assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, request(h, "10.0.0.1:1001").Code)

	limited := request(h, "10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), "too many requests")

	assert.Equal(t, http.StatusOK, request(h, "10.0.0.2:1000").Code)
}
