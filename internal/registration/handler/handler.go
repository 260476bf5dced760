package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"enroll/internal/platform/metrics"
	"enroll/internal/platform/middleware"
	"enroll/internal/registration/models"
	"enroll/internal/transport/http/shared"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/requestcontext"
)

// Service defines the interface for registration operations.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest, idempotencyKey string) (*models.RegistrationResult, error)
}

// Handler handles registration endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
	metrics *metrics.Metrics
}

// New creates a new registration Handler.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		metrics: metrics,
	}
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	reg := chi.NewRouter()
	reg.Use(middleware.Recovery(h.logger))
	reg.Use(middleware.RequestID)
	reg.Use(middleware.Logger(h.logger))
	reg.Use(middleware.Timeout(30 * time.Second))
	reg.Use(middleware.ContentTypeJSON)
	reg.Use(middleware.LatencyMiddleware(h.metrics))
	reg.With(middleware.RequireIdempotencyKey(h.logger)).
		Post("/register", h.handleRegister)

	r.Mount("/api/v1", reg)
}

// handleRegister decodes the payload and runs the registration pipeline.
// The Idempotency-Key precondition is enforced by middleware before this
// handler runs.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid registration payload",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Register(ctx, req, requestcontext.IdempotencyKey(ctx))
	if err != nil {
		switch {
		case dErrors.HasCode(err, dErrors.CodeValidation),
			dErrors.HasCode(err, dErrors.CodeConflict),
			dErrors.HasCode(err, dErrors.CodeBadRequest):
			h.logger.WarnContext(ctx, "registration rejected",
				"request_id", requestID,
				"username", req.Username,
			)
			shared.WriteError(w, err)
		default:
			h.logger.ErrorContext(ctx, "registration failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "registration failed"))
		}
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementUsersCreated()
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}
