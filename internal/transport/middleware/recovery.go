package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// ExceptionRecorder receives unhandled failures for the audit trail.
type ExceptionRecorder interface {
	RecordException(ctx context.Context, method, uri string, code, message string)
}

// RecoveryMiddleware provides panic recovery with detailed logging. Every
// recovered panic is also written to the audit trail when a recorder is
// configured; the response never carries internal detail.
func RecoveryMiddleware(logger *slog.Logger, recorder ExceptionRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					if recorder != nil {
						recorder.RecordException(r.Context(), r.Method, r.URL.RequestURI(),
							"PANIC", fmt.Sprintf("%v", err))
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprint(w, `{"error": "Internal server error"}`)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
