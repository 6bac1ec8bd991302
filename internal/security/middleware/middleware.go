package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/larsvasseldonk/calmly-list/internal/security/audit"
	"github.com/larsvasseldonk/calmly-list/internal/security/auth"
	"github.com/larsvasseldonk/calmly-list/internal/security/ratelimit"
)

type ClaimsContextKey struct{}
type OwnerContextKey struct{}

// publicPath reports whether a request path is reachable without a token
func publicPath(path string) bool {
	switch path {
	case "/register", "/login", "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

// JWTMiddleware resolves the bearer token on protected routes into an
// identity claim stored on the request context. Missing, malformed and
// expired tokens all answer 401. CORS preflights pass through untouched
// since browsers never attach credentials to them.
func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.Verify(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, OwnerContextKey{}, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware throttles per identity: the authenticated user when
// there is one, the remote address otherwise
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			identity := GetOwnerFromContext(r.Context())
			if identity == "" {
				identity = r.RemoteAddr
			}

			if !limiter.Allow(identity) {
				log.Warn("rate limit exceeded", slog.String("identity", identity))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuditMiddleware records mutating todo and auth operations
func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if c := r.Context().Value(ClaimsContextKey{}); c != nil {
				userID = c.(*auth.Claims).UserID
			}

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/register":
				auditLog.LogAction(r.Context(), userID, "register", "user", "", "initiated", "")
			case r.Method == http.MethodPost && r.URL.Path == "/todos":
				auditLog.LogAction(r.Context(), userID, "create", "todo", "", "initiated", "")
			case r.Method == http.MethodDelete && r.URL.Path == "/todos/completed":
				auditLog.LogAction(r.Context(), userID, "delete_completed", "todo", "", "initiated", "")
			case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/todos/"):
				// The mux has not matched yet, so the id comes off the path
				todoID := strings.TrimPrefix(r.URL.Path, "/todos/")
				auditLog.LogAction(r.Context(), userID, "delete", "todo", todoID, "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetOwnerFromContext returns the authenticated user id, or "" when the
// request is unauthenticated (single-tenant mode)
func GetOwnerFromContext(ctx context.Context) string {
	if o := ctx.Value(OwnerContextKey{}); o != nil {
		return o.(string)
	}
	return ""
}

// GetClaimsFromContext returns the verified token claims, if any
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
