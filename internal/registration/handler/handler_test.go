package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enroll/internal/platform/middleware"
	"enroll/internal/registration/handler"
	"enroll/internal/registration/models"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/testutil"
)

type stubService struct {
	result *models.RegistrationResult
	err    error

	calls  int
	gotReq models.RegisterRequest
	gotKey string
}

func (s *stubService) Register(_ context.Context, req models.RegisterRequest, idempotencyKey string) (*models.RegistrationResult, error) {
	s.calls++
	s.gotReq = req
	s.gotKey = idempotencyKey
	return s.result, s.err
}

func newRouter(svc *stubService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.New(svc, logger, nil)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func registerRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/register", body)
	req.Header.Set(middleware.IdempotencyKeyHeader, "11111111-1111-1111-1111-111111111111")
	return req
}

func validPayload() models.RegisterRequest {
	return models.RegisterRequest{
		FullName:        "Dana Smith",
		Username:        "dana.smith",
		Email:           "dana@example.com",
		Phone:           "+14155550100",
		Password:        "Pa$w0rd2025!",
		ConfirmPassword: "Pa$w0rd2025!",
		DOB:             "1995-05-10",
		AcceptTerms:     true,
	}
}

func TestHandleRegister_Success(t *testing.T) {
	svc := &stubService{result: &models.RegistrationResult{
		UserID: "usr_aabbccddee",
		Status: "pending_verification",
		Verification: models.VerificationInfo{
			Channel: models.VerificationChannelEmail,
			SentAt:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		},
	}}

	rr := testutil.DoRequest(newRouter(svc), registerRequest(t, validPayload()))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	assert.JSONEq(t, testutil.MustMarshal(t, svc.result), rr.Body.String())
	result := testutil.UnmarshalResponse[models.RegistrationResult](t, rr)
	assert.Equal(t, "usr_aabbccddee", result.UserID)
	assert.Equal(t, "pending_verification", result.Status)
	assert.Equal(t, "email", result.Verification.Channel)

	require.Equal(t, 1, svc.calls)
	assert.Equal(t, "dana.smith", svc.gotReq.Username)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", svc.gotKey)
}

func TestHandleRegister_MissingIdempotencyKey(t *testing.T) {
	svc := &stubService{}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/v1/register", validPayload())
	rr := testutil.DoRequest(newRouter(svc), req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "VALIDATION_FAILED")
	testutil.AssertFieldError(t, rr, "idempotencyKey", "Idempotency-Key header is required")
	assert.Zero(t, svc.calls)
}

func TestHandleRegister_MalformedBody(t *testing.T) {
	svc := &stubService{}

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/v1/register", "{not json")
	req.Header.Set(middleware.IdempotencyKeyHeader, "11111111-1111-1111-1111-111111111111")
	rr := testutil.DoRequest(newRouter(svc), req)

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "BAD_REQUEST")
	assert.Zero(t, svc.calls)
}

func TestHandleRegister_UnsupportedMediaType(t *testing.T) {
	svc := &stubService{}

	req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/v1/register", "<xml/>")
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set(middleware.IdempotencyKeyHeader, "11111111-1111-1111-1111-111111111111")
	rr := testutil.DoRequest(newRouter(svc), req)

	testutil.AssertStatus(t, rr, http.StatusUnsupportedMediaType)
	assert.Zero(t, svc.calls)
}

func TestHandleRegister_ValidationFailure(t *testing.T) {
	svc := &stubService{err: dErrors.NewValidation(map[string]string{
		"password": "Password must be 8-64 chars incl. upper/lower/digit/special",
		"dob":      "You must be at least 13 years old to register",
	})}

	rr := testutil.DoRequest(newRouter(svc), registerRequest(t, validPayload()))

	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "VALIDATION_FAILED")
	errBody := testutil.UnmarshalErrorResponse(t, rr)
	assert.Len(t, errBody.Fields, 2)
	assert.Empty(t, errBody.Message)
}

func TestHandleRegister_Conflict(t *testing.T) {
	svc := &stubService{err: dErrors.NewConflict(map[string]string{
		"username": "Username already exists",
		"email":    "Email already registered",
	})}

	rr := testutil.DoRequest(newRouter(svc), registerRequest(t, validPayload()))

	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "USER_EXISTS")
	testutil.AssertFieldError(t, rr, "username", "Username already exists")
	testutil.AssertFieldError(t, rr, "email", "Email already registered")
}

func TestHandleRegister_InternalErrorIsOpaque(t *testing.T) {
	svc := &stubService{err: dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "user persistence failed")}

	rr := testutil.DoRequest(newRouter(svc), registerRequest(t, validPayload()))

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	assert.NotContains(t, rr.Body.String(), "pq:")
	errBody := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "INTERNAL_ERROR", errBody.Code)
	assert.Equal(t, "An unexpected error occurred", errBody.Message)
}

func TestHandleRegister_SetsRequestIDHeader(t *testing.T) {
	svc := &stubService{result: &models.RegistrationResult{UserID: "usr_aabbccddee"}}

	rr := testutil.DoRequest(newRouter(svc), registerRequest(t, validPayload()))

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}
