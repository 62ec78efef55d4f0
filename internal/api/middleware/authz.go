package middleware

import (
	"errors"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/access"
	"github.com/gatehouse/gatehouse/internal/api/response"
)

// RequirePermission returns middleware that hard-gates an operation on the
// given permission. A missing identity yields 401, a resolved identity
// lacking the permission yields 403. This is the operation-level denial,
// distinct from the silent false the gate returns for UI visibility.
func RequirePermission(gate *access.Gate, perm access.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			err := gate.Require(r.Context(), identity, perm)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, access.ErrNotAuthenticated):
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
			case errors.Is(err, access.ErrPermissionDenied):
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
			default:
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Permission check failed", requestID)
			}
		})
	}
}

// RequireSuperuser returns middleware that rejects non-superuser identities with 403.
func RequireSuperuser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
				return
			}

			if !identity.IsSuperuser {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Superuser access required", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
