package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enroll/pkg/requestcontext"
	"enroll/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireIdempotencyKey(t *testing.T) {
	var gotKey string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = requestcontext.IdempotencyKey(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	wrapped := RequireIdempotencyKey(discardLogger())(next)

	t.Run("missing header rejected", func(t *testing.T) {
		gotKey = ""
		req := testutil.NewRequest(t, http.MethodPost, "/register")

		rr := testutil.DoRequest(wrapped, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t,
			`{"error":{"code":"VALIDATION_FAILED","fields":{"idempotencyKey":"Idempotency-Key header is required"}}}`,
			rr.Body.String(),
		)
		assert.Empty(t, gotKey)
	})

	t.Run("blank header rejected", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/register")
		req.Header.Set(IdempotencyKeyHeader, "   ")

		rr := testutil.DoRequest(wrapped, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("key injected into context", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/register")
		req.Header.Set(IdempotencyKeyHeader, "key-123")

		rr := testutil.DoRequest(wrapped, req)

		require.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "key-123", gotKey)
	})
}

func TestRequestID(t *testing.T) {
	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
	})
	wrapped := RequestID(next)

	t.Run("generates when absent", func(t *testing.T) {
		rr := testutil.DoRequest(wrapped, testutil.NewRequest(t, http.MethodGet, "/"))

		assert.NotEmpty(t, gotID)
		assert.Equal(t, gotID, rr.Header().Get("X-Request-ID"))
	})

	t.Run("honors incoming header", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		req.Header.Set("X-Request-ID", "req-42")

		rr := testutil.DoRequest(wrapped, req)

		assert.Equal(t, "req-42", gotID)
		assert.Equal(t, "req-42", rr.Header().Get("X-Request-ID"))
	})
}
