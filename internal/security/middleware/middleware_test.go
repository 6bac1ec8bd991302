package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/larsvasseldonk/calmly-list/internal/security/audit"
	"github.com/larsvasseldonk/calmly-list/internal/security/auth"
	"github.com/larsvasseldonk/calmly-list/internal/security/ratelimit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "", 0)
	handler := JWTMiddleware(tm, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/todos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareRejectsBadToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "", 0)
	handler := JWTMiddleware(tm, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"Bearer garbage", "Basic abc", "Bearer"} {
		req := httptest.NewRequest("GET", "/todos", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestJWTMiddlewarePassesValidToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "", 0)

	var gotOwner string
	handler := JWTMiddleware(tm, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner = GetOwnerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := tm.Issue("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotOwner != "user-123" {
		t.Errorf("expected owner user-123 in context, got %q", gotOwner)
	}
}

func TestJWTMiddlewarePassesPreflight(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "", 0)

	// Inner handler answers preflights the way the server's CORS layer does
	handler := JWTMiddleware(tm, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight without a token should reach the CORS handler, got %d", rec.Code)
	}

	// The bypass is for OPTIONS only
	req = httptest.NewRequest(http.MethodPost, "/todos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("actual request without a token should still 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewareSkipsPublicPaths(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", "", 0)
	handler := JWTMiddleware(tm, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/register", "/login", "/healthz", "/readyz", "/metrics"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("path %s should not require a token, got %d", path, rec.Code)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(2, time.Minute)
	defer limiter.Stop()

	handler := RateLimitMiddleware(limiter, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/todos", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d should pass, got %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest("GET", "/todos", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}

	// Health probes bypass the limiter
	req = httptest.NewRequest("GET", "/healthz", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health check should bypass the limiter, got %d", rec.Code)
	}
}

func TestAuditMiddlewareLogsDeleteTarget(t *testing.T) {
	var buf bytes.Buffer
	auditLog := audit.NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	handler := AuditMiddleware(auditLog)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/todos/abc-123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := buf.String()
	if !strings.Contains(entry, `"resource_id":"abc-123"`) {
		t.Errorf("audit entry should carry the deleted todo id, got: %s", entry)
	}
	if !strings.Contains(entry, `"action":"delete"`) {
		t.Errorf("audit entry should record the delete action, got: %s", entry)
	}

	// The bulk clear is its own action, not a delete of the literal
	// "completed" id
	buf.Reset()
	req = httptest.NewRequest(http.MethodDelete, "/todos/completed", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry = buf.String()
	if !strings.Contains(entry, `"action":"delete_completed"`) {
		t.Errorf("expected delete_completed action, got: %s", entry)
	}
	if strings.Contains(entry, `"resource_id":"completed"`) {
		t.Errorf("bulk clear must not log a resource id, got: %s", entry)
	}
}

func TestGetOwnerFromContextDefaultsEmpty(t *testing.T) {
	req := httptest.NewRequest("GET", "/todos", nil)
	if owner := GetOwnerFromContext(req.Context()); owner != "" {
		t.Errorf("expected empty owner without auth, got %q", owner)
	}
}
