package auth

import (
	"context"
	"net/http"
	"strings"

	"apotek/logger"

	"go.uber.org/zap"
)

const CookieName = "apotek_session"

type ctxKey struct{}

// FromContext returns the session attached by Middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// TokenFromRequest reads a bearer token, falling back to the session
// cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

var publicPrefixes = []string{"/api/auth/", "/api/pricing/preview"}

func isProtected(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}

// Middleware requires a valid session for /api/ routes other than the
// sign-in endpoints and the pricing preview.
func Middleware(svc *Service, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isProtected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := svc.Session(r.Context(), TokenFromRequest(r))
		if err != nil {
			logger.FromContext(r.Context()).Error("session lookup failed", zap.Error(err))
			writeJSONError(w, "internal error", http.StatusInternalServerError)
			return
		}
		if sess == nil {
			writeJSONError(w, "sign in required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
