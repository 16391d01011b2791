package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tahsin/salamilink/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// IdentityIDKey is the context key for the session identity ID.
	IdentityIDKey contextKey = "identity_id"
	// IdentityKindKey is the context key for the session identity kind.
	IdentityKindKey contextKey = "identity_kind"
)

// GetIdentityID extracts the identity ID from the context.
// Returns empty string if the request carries no valid session.
func GetIdentityID(ctx context.Context) string {
	id, _ := ctx.Value(IdentityIDKey).(string)
	return id
}

// GetIdentityKind extracts the identity kind ("anonymous"/"permanent") from
// the context. Returns empty string if the request carries no valid session.
func GetIdentityKind(ctx context.Context) string {
	kind, _ := ctx.Value(IdentityKindKey).(string)
	return kind
}

// OptionalIdentity validates the session token if present but lets requests
// through without one. Invoice reads and the paid transition must work for
// unauthenticated visitors; invoice creation attributes ownership only when
// a session resolves.
func OptionalIdentity(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := claimsFromRequest(jwtManager, r); err == nil {
				r = r.WithContext(withIdentity(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity rejects requests without a valid session token with 401.
func RequireIdentity(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(jwtManager, r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"authorization token required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims)))
		})
	}
}

func withIdentity(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, IdentityIDKey, claims.IdentityID)
	return context.WithValue(ctx, IdentityKindKey, claims.Kind)
}

func claimsFromRequest(jwtManager *auth.JWTManager, r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, auth.ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}

	return jwtManager.Validate(parts[1])
}
