package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"enroll/pkg/requestcontext"
)

// IdempotencyKeyHeader is the header callers must supply on registration.
const IdempotencyKeyHeader = "Idempotency-Key"

// RequireIdempotencyKey enforces the caller precondition: the Idempotency-Key
// header must be present and non-blank before the service is invoked. The key
// is injected into the context as an opaque string; deduplication happens in
// the replay store, not here.
func RequireIdempotencyKey(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if key == "" {
				logger.WarnContext(r.Context(), "missing idempotency key",
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":"VALIDATION_FAILED","fields":{"idempotencyKey":"Idempotency-Key header is required"}}}`))
				return
			}
			ctx := requestcontext.WithIdempotencyKey(r.Context(), key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
