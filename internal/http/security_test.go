// ABOUTME: Tests for server hardening and response middleware
// ABOUTME: Uses httptest recorders; no listener is opened

package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSecureHTTPServer(t *testing.T) {
	t.Parallel()

	srv := SecureHTTPServer(http.NotFoundHandler(), ":0", 20*time.Second)
	if srv.ReadHeaderTimeout == 0 || srv.IdleTimeout == 0 {
		t.Error("expected header and idle timeouts")
	}
	if srv.WriteTimeout <= 20*time.Second {
		t.Errorf("WriteTimeout = %v, want above the request timeout", srv.WriteTimeout)
	}

	def := SecureHTTPServer(http.NotFoundHandler(), ":0", 0)
	if def.WriteTimeout != 35*time.Second {
		t.Errorf("default WriteTimeout = %v, want 35s", def.WriteTimeout)
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestLimitBody(t *testing.T) {
	t.Parallel()

	var readErr error
	h := LimitBody(8, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(strings.Repeat("x", 64)))
	h.ServeHTTP(httptest.NewRecorder(), req)

	if readErr == nil {
		t.Fatal("expected an error reading past the limit")
	}
}
