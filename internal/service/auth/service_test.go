package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/auth"
)

type fakeUserRepo struct {
	repository.UserRepository
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		clone := *u
		r.users[u.ID] = &clone
	}
	return r
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, hospitalID uuid.UUID, phone string) (*model.User, error) {
	for _, u := range r.users {
		if u.HospitalID == hospitalID && u.Phone == phone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type fakeTokenRepo struct {
	repository.TokenRepository
	revoked     map[string]bool
	resetTokens map[string]uuid.UUID
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{
		revoked:     make(map[string]bool),
		resetTokens: make(map[string]uuid.UUID),
	}
}

func (r *fakeTokenRepo) IsTokenInvalidated(_ context.Context, token string) (bool, error) {
	return r.revoked[token], nil
}

func (r *fakeTokenRepo) InvalidateToken(_ context.Context, token string) error {
	r.revoked[token] = true
	return nil
}

func (r *fakeTokenRepo) StoreResetToken(_ context.Context, userID uuid.UUID, token string, _ time.Time) error {
	r.resetTokens[token] = userID
	return nil
}

func (r *fakeTokenRepo) ValidateResetToken(_ context.Context, token string) (uuid.UUID, error) {
	userID, ok := r.resetTokens[token]
	if !ok {
		return uuid.Nil, ErrInvalidOTP
	}
	return userID, nil
}

type fakeEmailService struct {
	resetTokens []string
}

func (s *fakeEmailService) SendVerification(_ context.Context, _, _ string) error { return nil }
func (s *fakeEmailService) SendPasswordReset(_ context.Context, _, token string) error {
	s.resetTokens = append(s.resetTokens, token)
	return nil
}
func (s *fakeEmailService) SendWelcome(_ context.Context, _, _ string) error { return nil }
func (s *fakeEmailService) SendAppointmentReminder(_ context.Context, _, _, _, _ string) error {
	return nil
}
func (s *fakeEmailService) SendInvoice(_ context.Context, _, _, _ string) error { return nil }
func (s *fakeEmailService) SendCustom(_ context.Context, _, _, _ string) error  { return nil }

type fakeSMSService struct {
	otpCodes []string
	otpTo    []string
}

func (s *fakeSMSService) Send(_ context.Context, _, _ string) error { return nil }
func (s *fakeSMSService) SendOTP(_ context.Context, to, code string) error {
	s.otpTo = append(s.otpTo, to)
	s.otpCodes = append(s.otpCodes, code)
	return nil
}
func (s *fakeSMSService) SendAppointmentReminder(_ context.Context, _, _, _ string) error {
	return nil
}

type fakeAuditRepo struct {
	repository.AuditRepository
}

func (r *fakeAuditRepo) Create(_ context.Context, _ *model.AuditLog) error { return nil }

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestService(users *fakeUserRepo, tokens *fakeTokenRepo, emailSvc *fakeEmailService, smsSvc *fakeSMSService) *Service {
	jwtSvc := auth.NewJWTService(auth.Config{Secret: "test-secret", RefreshSecret: "test-refresh"})
	return NewService(users, nil, jwtSvc, tokens, emailSvc, smsSvc, audit.NewService(&fakeAuditRepo{}))
}

func staffUser(t *testing.T, password string) *model.User {
	return &model.User{
		Base:       model.Base{ID: uuid.New()},
		HospitalID: uuid.New(),
		Name:       "Dr. Test",
		Email:      "doctor@example.com",
		Role:       model.RoleDoctor,
		Status:     model.UserStatusActive,

		PasswordHash: hashPassword(t, password),
	}
}

func TestLoginSuccess(t *testing.T) {
	users := newFakeUserRepo(staffUser(t, "s3cret-pass"))
	svc := newTestService(users, newFakeTokenRepo(), &fakeEmailService{}, &fakeSMSService{})

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo(staffUser(t, "s3cret-pass"))
	svc := newTestService(users, newFakeTokenRepo(), &fakeEmailService{}, &fakeSMSService{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	user := staffUser(t, "s3cret-pass")
	users := newFakeUserRepo(user)
	svc := newTestService(users, newFakeTokenRepo(), &fakeEmailService{}, &fakeSMSService{})

	req := &model.LoginRequest{Email: "doctor@example.com", Password: "wrong"}
	var err error
	for i := 0; i < maxLoginAttempts; i++ {
		_, err = svc.Login(context.Background(), req)
	}
	assert.ErrorIs(t, err, ErrAccountLocked)

	// Even the right password is rejected while the lockout holds.
	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@example.com",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginDisabledAccount(t *testing.T) {
	user := staffUser(t, "s3cret-pass")
	user.Status = model.UserStatusDisabled
	svc := newTestService(newFakeUserRepo(user), newFakeTokenRepo(), &fakeEmailService{}, &fakeSMSService{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@example.com",
		Password: "s3cret-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func portalUser(hospitalID uuid.UUID, phone string) *model.User {
	return &model.User{
		Base:       model.Base{ID: uuid.New()},
		HospitalID: hospitalID,
		Name:       "Portal Patient",
		Email:      "patient@example.com",
		Phone:      phone,
		Role:       model.RolePatient,
		Status:     model.UserStatusActive,
	}
}

func TestOTPRoundTrip(t *testing.T) {
	hospitalID := uuid.New()
	users := newFakeUserRepo(portalUser(hospitalID, "+2348012345678"))
	smsSvc := &fakeSMSService{}
	svc := newTestService(users, newFakeTokenRepo(), &fakeEmailService{}, smsSvc)

	require.NoError(t, svc.RequestOTP(context.Background(), hospitalID, "+2348012345678"))
	require.Len(t, smsSvc.otpCodes, 1)
	require.Len(t, smsSvc.otpCodes[0], 6)

	tokens, err := svc.VerifyOTP(context.Background(), hospitalID, "+2348012345678", smsSvc.otpCodes[0])
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	// A code is single use.
	_, err = svc.VerifyOTP(context.Background(), hospitalID, "+2348012345678", smsSvc.otpCodes[0])
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestOTPUnknownPhoneSilent(t *testing.T) {
	hospitalID := uuid.New()
	smsSvc := &fakeSMSService{}
	svc := newTestService(newFakeUserRepo(), newFakeTokenRepo(), &fakeEmailService{}, smsSvc)

	// Unknown numbers succeed without a text so the endpoint cannot be
	// used to probe for patients.
	require.NoError(t, svc.RequestOTP(context.Background(), hospitalID, "+2340000000000"))
	assert.Empty(t, smsSvc.otpCodes)
}

func TestOTPWrongGuessesDiscardCode(t *testing.T) {
	hospitalID := uuid.New()
	users := newFakeUserRepo(portalUser(hospitalID, "+2348012345678"))
	smsSvc := &fakeSMSService{}
	svc := newTestService(users, newFakeTokenRepo(), &fakeEmailService{}, smsSvc)

	require.NoError(t, svc.RequestOTP(context.Background(), hospitalID, "+2348012345678"))
	code := smsSvc.otpCodes[0]

	for i := 0; i < otpMaxVerifies; i++ {
		_, err := svc.VerifyOTP(context.Background(), hospitalID, "+2348012345678", "000000")
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}

	// The real code no longer works once the guess limit is reached.
	_, err := svc.VerifyOTP(context.Background(), hospitalID, "+2348012345678", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestPasswordResetUnlocksAccount(t *testing.T) {
	user := staffUser(t, "s3cret-pass")
	user.Status = model.UserStatusLocked
	user.LoginAttempts = maxLoginAttempts
	user.LastLoginAttempt = time.Now()

	users := newFakeUserRepo(user)
	tokens := newFakeTokenRepo()
	emailSvc := &fakeEmailService{}
	svc := newTestService(users, tokens, emailSvc, &fakeSMSService{})

	require.NoError(t, svc.ForgotPassword(context.Background(), "doctor@example.com"))
	require.Len(t, emailSvc.resetTokens, 1)

	require.NoError(t, svc.ResetPassword(context.Background(), emailSvc.resetTokens[0], "n3w-password"))

	got, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@example.com",
		Password: "n3w-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.AccessToken)
}

func TestForgotPasswordUnknownEmailSilent(t *testing.T) {
	emailSvc := &fakeEmailService{}
	svc := newTestService(newFakeUserRepo(), newFakeTokenRepo(), emailSvc, &fakeSMSService{})

	require.NoError(t, svc.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, emailSvc.resetTokens)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	user := staffUser(t, "s3cret-pass")
	users := newFakeUserRepo(user)
	tokens := newFakeTokenRepo()
	svc := newTestService(users, tokens, &fakeEmailService{}, &fakeSMSService{})

	issued, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "doctor@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), issued.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, svc.Logout(context.Background(), issued.AccessToken, issued.RefreshToken))

	_, err = svc.RefreshToken(context.Background(), issued.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
