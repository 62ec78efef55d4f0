package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gatehouse/gatehouse/internal/api/response"
	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/session"
)

const identityKey contextKey = "identity"
const sessionTokenKey contextKey = "sessionToken"

// Session is middleware that extracts the Authorization bearer token and
// resolves it to an Identity via the session binding. Requests without a
// valid session are rejected with 401; the cause (bad signature, expired,
// revoked) is never leaked.
func Session(binding session.Binding) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			token := bearerToken(r)
			if token == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			identity, err := binding.Lookup(r.Context(), token)
			if err != nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			ctx = context.WithValue(ctx, sessionTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession resolves a bearer token when present but lets anonymous
// requests through. Used by anonymous-tolerant endpoints such as the menu,
// where the gate treats a missing identity as deny-silently.
func OptionalSession(binding session.Binding) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := binding.Lookup(r.Context(), token)
			if err != nil {
				// invalid token on an anonymous-tolerant route: proceed anonymous
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			ctx = context.WithValue(ctx, sessionTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity retrieves the authenticated Identity from the request context.
// Returns nil for anonymous requests.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}

// GetSessionToken retrieves the raw session token from the request context.
func GetSessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(sessionTokenKey).(string); ok {
		return token
	}
	return ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
