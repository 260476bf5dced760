// Package service orchestrates the registration workflow. It is the only
// component that knows the full pipeline; validation, hashing and storage
// stay behind the interfaces below.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"enroll/internal/audit"
	regmetrics "enroll/internal/registration/metrics"
	"enroll/internal/registration/models"
	"enroll/internal/registration/store"
	"enroll/internal/registration/validation"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/sentinel"
	"enroll/pkg/requestcontext"
)

// UserStore is the slice of the user store the service needs.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// ReplayStore maps idempotency keys to previously computed results.
type ReplayStore interface {
	Get(ctx context.Context, key string) (*models.RegistrationResult, error)
	Put(ctx context.Context, key string, result *models.RegistrationResult, ttl time.Duration) error
}

// Hasher is the one-way credential transform.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

// VerificationSender requests delivery of a verification message.
type VerificationSender interface {
	Send(ctx context.Context, userID, channel string) (time.Time, error)
}

// AuditPublisher records registration events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Pipeline stages, used for rejection metrics.
const (
	stageFieldValidation = "field_validation"
	stageUniqueness      = "uniqueness"
	stageDatePolicy      = "date_policy"
)

// Service runs the registration pipeline.
type Service struct {
	users     UserStore
	hasher    Hasher
	replay    ReplayStore
	replayTTL time.Duration
	sender    VerificationSender
	auditor   AuditPublisher
	metrics   *regmetrics.Metrics
	logger    *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithReplayStore enables idempotency replay with the given TTL.
func WithReplayStore(replay ReplayStore, ttl time.Duration) Option {
	return func(s *Service) {
		s.replay = replay
		s.replayTTL = ttl
	}
}

// WithSender sets the verification dispatch collaborator.
func WithSender(sender VerificationSender) Option {
	return func(s *Service) { s.sender = sender }
}

// WithAuditPublisher sets the audit sink.
func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

// WithMetrics sets the feature metrics.
func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService constructs the registration service.
func NewService(users UserStore, hasher Hasher, opts ...Option) *Service {
	s := &Service{
		users:  users,
		hasher: hasher,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register runs the pipeline: replay lookup, field validation, uniqueness,
// date policy, credential hashing, persistence, response shaping. Any
// validation-class failure returns a DomainError carrying the merged
// field→message map and leaves no partial user behind. Infrastructure
// failures surface as CodeInternal without storage detail.
//
// The idempotency key must be non-blank; the transport enforces this before
// calling in, and the check here guards non-HTTP callers.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest, idempotencyKey string) (*models.RegistrationResult, error) {
	if strings.TrimSpace(idempotencyKey) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "idempotency key is required")
	}

	if result := s.lookupReplay(ctx, idempotencyKey); result != nil {
		return result, nil
	}

	if fields := validation.Validate(req); len(fields) > 0 {
		s.metrics.IncrementRejected(stageFieldValidation)
		return nil, dErrors.NewValidation(fields)
	}

	conflicts, err := s.checkUniqueness(ctx, req.Username, req.Email, req.Phone)
	if err != nil {
		s.logger.ErrorContext(ctx, "uniqueness check failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user lookup failed")
	}
	if len(conflicts) > 0 {
		s.metrics.IncrementRejected(stageUniqueness)
		return nil, dErrors.NewConflict(conflicts)
	}

	now := requestcontext.Now(ctx).UTC()
	dob, issue := validation.ParseDOB(req.DOB, now)
	if issue != validation.DOBOk {
		s.metrics.IncrementRejected(stageDatePolicy)
		return nil, dErrors.NewValidation(map[string]string{"dob": issue.Message()})
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "credential hashing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential hashing failed")
	}

	user := &models.User{
		ID:           models.NewUserID(),
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		DOB:          dob,
		Status:       models.StatusPendingVerification,
		AcceptTerms:  req.AcceptTerms,
		CreatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			// Lost the race despite the upfront check; report the same
			// field→message shape the check would have produced.
			s.metrics.IncrementRejected(stageUniqueness)
			return nil, dErrors.NewConflict(conflict.FieldMessages())
		}
		s.logger.ErrorContext(ctx, "user persistence failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user persistence failed")
	}

	sentAt := s.requestVerification(ctx, user.ID)

	s.emitRegistered(ctx, user.ID)
	s.metrics.IncrementRegistered()

	result := &models.RegistrationResult{
		UserID: user.ID,
		Status: string(user.Status),
		Verification: models.VerificationInfo{
			Channel: models.VerificationChannelEmail,
			SentAt:  sentAt,
		},
	}
	s.storeReplay(ctx, idempotencyKey, result)

	s.logger.InfoContext(ctx, "user registered",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
	)
	return result, nil
}

// lookupReplay returns a previously computed result for the key, or nil.
// Replay-store trouble degrades to processing the request normally.
func (s *Service) lookupReplay(ctx context.Context, key string) *models.RegistrationResult {
	if s.replay == nil {
		return nil
	}
	result, err := s.replay.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "idempotency lookup degraded",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		return nil
	}
	s.metrics.IncrementReplayed()
	s.logger.InfoContext(ctx, "registration replayed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", result.UserID,
	)
	return result
}

func (s *Service) storeReplay(ctx context.Context, key string, result *models.RegistrationResult) {
	if s.replay == nil {
		return
	}
	if err := s.replay.Put(ctx, key, result, s.replayTTL); err != nil {
		s.logger.WarnContext(ctx, "idempotency record failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

// requestVerification asks the sender to dispatch; dispatch is best-effort
// and never fails the registration.
func (s *Service) requestVerification(ctx context.Context, userID string) time.Time {
	if s.sender == nil {
		return requestcontext.Now(ctx).UTC()
	}
	sentAt, err := s.sender.Send(ctx, userID, models.VerificationChannelEmail)
	if err != nil {
		s.logger.WarnContext(ctx, "verification dispatch failed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err.Error(),
		)
		return requestcontext.Now(ctx).UTC()
	}
	return sentAt
}

func (s *Service) emitRegistered(ctx context.Context, userID string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Action:    audit.ActionUserRegistered,
		UserID:    userID,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}
