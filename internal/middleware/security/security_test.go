package security

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledger/internal/log"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"), "no HSTS over plain HTTP")
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name   string
		req    func() *http.Request
		expect bool
	}{
		{"plain api call", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/transactions?q=coffee", nil) }, false},
		{"path traversal", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/../etc/passwd", nil) }, true},
		{"dotenv probe", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/.env", nil) }, true},
		{"scanner agent", func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("User-Agent", "sqlmap/1.0")
			return r
		}, true},
		{"trace method", func() *http.Request { return httptest.NewRequest("TRACE", "/", nil) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, d.DetectSuspiciousRequest(tt.req()))
		})
	}
	assert.EqualValues(t, 4, d.GetMetrics().SuspiciousRequests)
}

func TestDetectorMiddlewareLogsButPasses(t *testing.T) {
	var buf bytes.Buffer
	d := NewDetector(log.New(log.Config{Level: slog.LevelWarn, Output: &buf}))

	called := false
	h := d.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin", nil))

	assert.True(t, called)
	assert.Contains(t, buf.String(), "Suspicious request")
	assert.Contains(t, buf.String(), "component=security")
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", d.ExtractClientIP(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.2:5000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "198.51.100.2", d.ExtractClientIP(r), "untrusted peers cannot spoof")

	assert.Error(t, d.AddTrustedProxy("nope"))
	assert.NoError(t, d.AddTrustedProxy("198.51.100.0/24"))
	assert.Equal(t, "203.0.113.7", d.ExtractClientIP(r))
}
