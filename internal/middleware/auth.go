package middleware

import (
	"context"
	"net/http"
	"strings"

	"automind-api/internal/access"
	"automind-api/internal/model"
	"automind-api/pkg/response"
)

const (
	// CallerKey is the context key for the resolved caller account.
	CallerKey contextKey = "caller"

	// TokenKey is the context key for the raw session token.
	TokenKey contextKey = "session_token"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Guard *access.Guard
}

// NewAuthMiddleware creates a middleware that resolves the session token in
// X-Token or "Authorization: Bearer" to an account and rejects the request
// with 401 when it cannot.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)

			caller, err := cfg.Guard.Resolve(r.Context(), token)
			if err != nil {
				response.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), CallerKey, caller)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest extracts the session token from X-Token, falling back to
// a bearer Authorization header.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get("X-Token")); token != "" {
		return token
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// CallerFromContext retrieves the resolved caller from request context.
func CallerFromContext(ctx context.Context) *model.Account {
	if caller, ok := ctx.Value(CallerKey).(*model.Account); ok {
		return caller
	}
	return nil
}

// TokenFromContext retrieves the session token the caller authenticated with.
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(TokenKey).(string); ok {
		return token
	}
	return ""
}
