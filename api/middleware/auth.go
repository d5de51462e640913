package middleware

import (
	"context"
	"net/http"
	"strings"

	"pq-messenger/auth"
	"pq-messenger/errors"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticate resolves the bearer token issued at login into a verified
// username. A request without a token passes through anonymously unless
// required is set. A token that fails validation is always rejected.
//
// EventSource cannot set headers, so the token is also accepted from the
// access_token query parameter.
func Authenticate(tokens *auth.TokenIssuer, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				if required {
					jsonError(w, http.StatusUnauthorized, errors.ErrUnauthenticated.Error())
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity returns the verified username of the caller, if any.
func Identity(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(identityKey).(string)
	return username, ok && username != ""
}

// WithIdentity is used by tests and in-process callers.
func WithIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, identityKey, username)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("access_token")
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
