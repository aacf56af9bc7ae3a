package middleware

import (
	"context"
	"net/http"
	"strings"

	"kpssquiz/internal/session"
)

type key string

const UsernameKey key = "username"

// SessionAuth resolves the bearer token against the session manager and puts
// the username on the request context. Tokens are opaque; there is nothing
// to parse or verify beyond the lookup.
func SessionAuth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			username, ok := sessions.Resolve(token)
			if !ok {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UsernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUsername returns the authenticated username set by SessionAuth.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// RequireAdmin rejects requests whose authenticated user is not an admin.
// Use after SessionAuth.
func RequireAdmin(isAdmin func(username string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, ok := GetUsername(r.Context())
			if !ok || !isAdmin(username) {
				http.Error(w, "admin privileges required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
