package testutil

import (
	"net/http"
	"time"

	"enroll/pkg/requestcontext"
)

// WithRequestID stamps a request ID onto the request context, simulating the
// request ID middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithIdempotencyKey stamps an idempotency key onto the request context,
// simulating the idempotency middleware.
func WithIdempotencyKey(req *http.Request, key string) *http.Request {
	return req.WithContext(requestcontext.WithIdempotencyKey(req.Context(), key))
}

// WithRequestTime pins the request time, so age and timestamp assertions are
// deterministic.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
