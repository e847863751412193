package middleware

import (
	"log/slog"
	"net/http"

	"tablecli/internal/infrastructure"
	"tablecli/internal/security"
)

// BasicAuth gates requests behind HTTP Basic credentials checked by a
// security.Verifier. The verifier decides allow or deny; no session or
// token is issued.
func BasicAuth(verifier security.Verifier, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			username, password, ok := r.BasicAuth()
			if !ok || !verifier.Verify(ctx, username, password) {
				logger.WarnContext(ctx, "request denied",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)

				w.Header().Set("WWW-Authenticate", `Basic realm="tablecli"`)
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusUnauthorized)

				traceID := infrastructure.GetTraceID(ctx)
				response := `{"type":"/errors/unauthorized","title":"Unauthorized","status":401,"detail":"Valid credentials are required","trace_id":"` + traceID + `"}`
				w.Write([]byte(response))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeaders applies a conservative set of security headers
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
