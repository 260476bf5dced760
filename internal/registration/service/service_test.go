package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"enroll/internal/audit"
	"enroll/internal/registration/models"
	"enroll/internal/registration/service"
	"enroll/internal/registration/store"
	regmocks "enroll/mocks/registration"
	dErrors "enroll/pkg/domain-errors"
	"enroll/pkg/platform/sentinel"
	"enroll/pkg/requestcontext"
)

const idemKey = "11111111-1111-1111-1111-111111111111"

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	ctx     context.Context
	users   *regmocks.MockUserStore
	replay  *regmocks.MockReplayStore
	hasher  *regmocks.MockHasher
	sender  *regmocks.MockVerificationSender
	auditor *regmocks.MockAuditPublisher
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
	s.users = regmocks.NewMockUserStore(s.ctrl)
	s.replay = regmocks.NewMockReplayStore(s.ctrl)
	s.hasher = regmocks.NewMockHasher(s.ctrl)
	s.sender = regmocks.NewMockVerificationSender(s.ctrl)
	s.auditor = regmocks.NewMockAuditPublisher(s.ctrl)
}

func (s *ServiceSuite) newService() *service.Service {
	return service.NewService(s.users, s.hasher,
		service.WithReplayStore(s.replay, 24*time.Hour),
		service.WithSender(s.sender),
		service.WithAuditPublisher(s.auditor),
	)
}

// newBareService has no replay store, sender or auditor wired, for tests
// that focus on the mandatory collaborators.
func (s *ServiceSuite) newBareService() *service.Service {
	return service.NewService(s.users, s.hasher)
}

func validRequest() models.RegisterRequest {
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

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, sentinel.ErrNotFound)
}

func (s *ServiceSuite) expectNoConflicts(req models.RegisterRequest) {
	s.users.EXPECT().FindByUsername(gomock.Any(), req.Username).Return(nil, notFound("user by username"))
	s.users.EXPECT().FindByEmail(gomock.Any(), req.Email).Return(nil, notFound("user by email"))
	s.users.EXPECT().FindByPhone(gomock.Any(), req.Phone).Return(nil, notFound("user by phone"))
}

func (s *ServiceSuite) TestRegisterSuccess() {
	req := validRequest()
	sentAt := fixedNow.Add(time.Second)

	s.replay.EXPECT().Get(gomock.Any(), idemKey).Return(nil, notFound("idempotency key"))
	s.expectNoConflicts(req)
	s.hasher.EXPECT().Hash(req.Password).Return("$2a$10$hashed", nil)

	var created *models.User
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user *models.User) error {
			created = user
			return nil
		})
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), models.VerificationChannelEmail).Return(sentAt, nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(audit.ActionUserRegistered, event.Action)
			return nil
		})
	s.replay.EXPECT().Put(gomock.Any(), idemKey, gomock.Any(), 24*time.Hour).Return(nil)

	result, err := s.newService().Register(s.ctx, req, idemKey)

	s.Require().NoError(err)
	s.Require().NotNil(result)
	s.True(strings.HasPrefix(result.UserID, "usr_"), "unexpected user ID %q", result.UserID)
	s.Len(result.UserID, 14)
	s.Equal("pending_verification", result.Status)
	s.Equal(models.VerificationChannelEmail, result.Verification.Channel)
	s.Equal(sentAt, result.Verification.SentAt)

	s.Require().NotNil(created)
	s.Equal(result.UserID, created.ID)
	s.Equal(req.Username, created.Username)
	s.Equal("$2a$10$hashed", created.PasswordHash)
	s.Equal(time.Date(1995, 5, 10, 0, 0, 0, 0, time.UTC), created.DOB)
	s.Equal(models.StatusPendingVerification, created.Status)
	s.Equal(fixedNow, created.CreatedAt)
	s.True(created.AcceptTerms)
}

func (s *ServiceSuite) TestRegisterBlankIdempotencyKey() {
	_, err := s.newService().Register(s.ctx, validRequest(), "   ")

	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestRegisterReplayHit() {
	stored := &models.RegistrationResult{
		UserID: "usr_aabbccddee",
		Status: "pending_verification",
		Verification: models.VerificationInfo{
			Channel: models.VerificationChannelEmail,
			SentAt:  fixedNow.Add(-time.Hour),
		},
	}
	s.replay.EXPECT().Get(gomock.Any(), idemKey).Return(stored, nil)

	result, err := s.newService().Register(s.ctx, validRequest(), idemKey)

	s.Require().NoError(err)
	s.Equal(stored, result)
}

func (s *ServiceSuite) TestRegisterReplayLookupDegrades() {
	req := validRequest()

	s.replay.EXPECT().Get(gomock.Any(), idemKey).Return(nil, errors.New("redis down"))
	s.expectNoConflicts(req)
	s.hasher.EXPECT().Hash(req.Password).Return("$2a$10$hashed", nil)
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), models.VerificationChannelEmail).Return(fixedNow, nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.replay.EXPECT().Put(gomock.Any(), idemKey, gomock.Any(), 24*time.Hour).Return(nil)

	result, err := s.newService().Register(s.ctx, req, idemKey)

	s.Require().NoError(err)
	s.NotNil(result)
}

func (s *ServiceSuite) TestRegisterValidationFailure() {
	req := validRequest()
	req.Password = "weak"
	req.ConfirmPassword = "other"
	req.AcceptTerms = false

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	fields := dErrors.FieldErrors(err)
	s.Equal("Password must be 8-64 chars incl. upper/lower/digit/special", fields["password"])
	s.Equal("Passwords do not match", fields["confirmPassword"])
	s.Equal("You must accept the terms and conditions", fields["acceptTerms"])
}

func (s *ServiceSuite) TestRegisterUniquenessConflictsMerged() {
	req := validRequest()
	taken := &models.User{ID: "usr_aabbccddee"}

	s.users.EXPECT().FindByUsername(gomock.Any(), req.Username).Return(taken, nil)
	s.users.EXPECT().FindByEmail(gomock.Any(), req.Email).Return(taken, nil)
	s.users.EXPECT().FindByPhone(gomock.Any(), req.Phone).Return(nil, notFound("user by phone"))

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(map[string]string{
		"username": "Username already exists",
		"email":    "Email already registered",
	}, dErrors.FieldErrors(err))
}

func (s *ServiceSuite) TestRegisterLookupInfrastructureFailure() {
	req := validRequest()

	s.users.EXPECT().FindByUsername(gomock.Any(), req.Username).Return(nil, errors.New("connection refused"))
	s.users.EXPECT().FindByEmail(gomock.Any(), req.Email).Return(nil, notFound("user by email")).AnyTimes()
	s.users.EXPECT().FindByPhone(gomock.Any(), req.Phone).Return(nil, notFound("user by phone")).AnyTimes()

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestRegisterUnderage() {
	req := validRequest()
	req.DOB = fixedNow.AddDate(-10, 0, 0).Format("2006-01-02")

	s.expectNoConflicts(req)

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(map[string]string{
		"dob": "You must be at least 13 years old to register",
	}, dErrors.FieldErrors(err))
}

func (s *ServiceSuite) TestRegisterFutureDOB() {
	req := validRequest()
	req.DOB = fixedNow.AddDate(0, 0, 1).Format("2006-01-02")

	s.expectNoConflicts(req)

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.Require().True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Equal(map[string]string{
		"dob": "Date of birth cannot be in the future",
	}, dErrors.FieldErrors(err))
}

func (s *ServiceSuite) TestRegisterHashFailure() {
	req := validRequest()

	s.expectNoConflicts(req)
	s.hasher.EXPECT().Hash(req.Password).Return("", errors.New("cost out of range"))

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestRegisterCreateLosesRace() {
	req := validRequest()

	s.expectNoConflicts(req)
	s.hasher.EXPECT().Hash(req.Password).Return("$2a$10$hashed", nil)
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(&store.ConflictError{Fields: []string{"email"}})

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.Require().True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(map[string]string{
		"email": "Email already registered",
	}, dErrors.FieldErrors(err))
}

func (s *ServiceSuite) TestRegisterCreateInfrastructureFailure() {
	req := validRequest()

	s.expectNoConflicts(req)
	s.hasher.EXPECT().Hash(req.Password).Return("$2a$10$hashed", nil)
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := s.newBareService().Register(s.ctx, req, idemKey)

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestRegisterSenderFailureDoesNotFailRegistration() {
	req := validRequest()

	s.replay.EXPECT().Get(gomock.Any(), idemKey).Return(nil, notFound("idempotency key"))
	s.expectNoConflicts(req)
	s.hasher.EXPECT().Hash(req.Password).Return("$2a$10$hashed", nil)
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), models.VerificationChannelEmail).
		Return(time.Time{}, errors.New("smtp unavailable"))
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.replay.EXPECT().Put(gomock.Any(), idemKey, gomock.Any(), 24*time.Hour).Return(nil)

	result, err := s.newService().Register(s.ctx, req, idemKey)

	s.Require().NoError(err)
	s.Equal(fixedNow, result.Verification.SentAt)
}

func (s *ServiceSuite) TestRegisterReplayPutFailureDoesNotFailRegistration() {
	req := validRequest()

	s.replay.EXPECT().Get(gomock.Any(), idemKey).Return(nil, notFound("idempotency key"))
	s.expectNoConflicts(req)
	s.hasher.EXPECT().Hash(req.Password).Return("$2a$10$hashed", nil)
	s.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), models.VerificationChannelEmail).Return(fixedNow, nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)
	s.replay.EXPECT().Put(gomock.Any(), idemKey, gomock.Any(), 24*time.Hour).
		Return(errors.New("redis down"))

	result, err := s.newService().Register(s.ctx, req, idemKey)

	s.Require().NoError(err)
	s.NotNil(result)
}
