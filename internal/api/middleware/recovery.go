package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gatehouse/gatehouse/internal/api/response"
)

// Recovery turns a handler panic into a 500 envelope instead of a dropped
// connection. The panic value and route are logged with the request ID.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				requestID := GetRequestID(r.Context())
				slog.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"requestId", requestID)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
