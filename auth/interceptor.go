package auth

import (
	"context"
	"dm-lab/errors"
	"net/http"
	"strings"
)

type contextKey string

const identityKey contextKey = "identity"

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware handles JWT validation for incoming HTTP calls and injects the
// caller identity into the request context. Browsers cannot set headers on
// a websocket handshake, so the token is also accepted as ?token=.
func Middleware(issuer *TokenIssuer, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				onError(w, r, errors.ErrMissingToken)
				return
			}
			identity, err := issuer.ValidateToken(tokenStr)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// bearerToken expects the standard "Bearer <token>" format.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
