package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/caretide/hospital-api/internal/email"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/internal/sms"
	"github.com/caretide/hospital-api/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked, please try again later")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrInvalidOTP         = errors.New("invalid or expired code")
)

const (
	resetTokenExpiry  = 1 * time.Hour
	verifyTokenExpiry = 24 * time.Hour
	maxLoginAttempts  = 5
	lockoutDuration   = 15 * time.Minute
	bcryptCost        = 12

	otpExpiry      = 5 * time.Minute
	otpMaxVerifies = 3
	totpIssuer     = "CareTide"
)

type Service struct {
	userRepo    repository.UserRepository
	patientRepo repository.PatientRepository
	jwtSvc      auth.JWTService
	tokenRepo   repository.TokenRepository
	emailSvc    email.Service
	smsSvc      sms.Service
	auditor     *audit.Service

	// otpCache keys are hospitalID:phone; entries expire on their own.
	otpCache *gocache.Cache
}

func NewService(userRepo repository.UserRepository, patientRepo repository.PatientRepository,
	jwtSvc auth.JWTService, tokenRepo repository.TokenRepository,
	emailSvc email.Service, smsSvc sms.Service, auditor *audit.Service) *Service {
	return &Service{
		userRepo:    userRepo,
		patientRepo: patientRepo,
		jwtSvc:      jwtSvc,
		tokenRepo:   tokenRepo,
		emailSvc:    emailSvc,
		smsSvc:      smsSvc,
		auditor:     auditor,
		otpCache:    gocache.New(otpExpiry, 2*otpExpiry),
	}
}

type otpEntry struct {
	code     string
	attempts int
}

// Login authenticates a staff account. Accounts lock for a cooldown
// after repeated failures; accounts with TOTP enabled must supply a
// valid code.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.Status == model.UserStatusDisabled {
		return nil, ErrInvalidCredentials
	}

	if user.Status == model.UserStatusLocked {
		if time.Since(user.LastLoginAttempt) < lockoutDuration {
			return nil, ErrAccountLocked
		}
		user.Status = model.UserStatusActive
		user.LoginAttempts = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.recordFailedAttempt(ctx, user)
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			return nil, ErrTOTPRequired
		}
		if !totp.Validate(req.TOTPCode, user.TOTPSecret) {
			return nil, s.recordFailedAttempt(ctx, user)
		}
	}

	user.LoginAttempts = 0
	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginAttempt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.auditor.Log(ctx, user.ID, user.HospitalID, model.AuditActionLogin, model.AuditEntityUser, user.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"email": user.Email},
	})

	return tokens, nil
}

func (s *Service) recordFailedAttempt(ctx context.Context, user *model.User) error {
	user.LoginAttempts++
	user.LastLoginAttempt = time.Now()
	if user.LoginAttempts >= maxLoginAttempts {
		user.Status = model.UserStatusLocked
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update login attempts: %w", err)
	}
	if user.Status == model.UserStatusLocked {
		return ErrAccountLocked
	}
	return ErrInvalidCredentials
}

// RequestOTP starts a portal login. The code is texted to the phone
// number when it belongs to a known portal account; unknown numbers get
// a silent success so the endpoint cannot be used to probe for patients.
func (s *Service) RequestOTP(ctx context.Context, hospitalID uuid.UUID, phone string) error {
	user, err := s.userRepo.GetByPhone(ctx, hospitalID, phone)
	if err != nil {
		return fmt.Errorf("failed to look up portal account: %w", err)
	}
	if user == nil || user.Role != model.RolePatient {
		return nil
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	s.otpCache.Set(otpKey(hospitalID, phone), &otpEntry{code: code}, gocache.DefaultExpiration)

	if err := s.smsSvc.SendOTP(ctx, phone, code); err != nil {
		log.Error().Err(err).Str("hospital_id", hospitalID.String()).Msg("failed to send otp sms")
		return fmt.Errorf("failed to send code")
	}
	return nil
}

// VerifyOTP exchanges a texted code for portal tokens. Codes survive a
// bounded number of wrong guesses before they are discarded.
func (s *Service) VerifyOTP(ctx context.Context, hospitalID uuid.UUID, phone, code string) (*model.TokenResponse, error) {
	key := otpKey(hospitalID, phone)
	cached, ok := s.otpCache.Get(key)
	if !ok {
		return nil, ErrInvalidOTP
	}
	entry := cached.(*otpEntry)

	if entry.code != code {
		entry.attempts++
		if entry.attempts >= otpMaxVerifies {
			s.otpCache.Delete(key)
		}
		return nil, ErrInvalidOTP
	}
	s.otpCache.Delete(key)

	user, err := s.userRepo.GetByPhone(ctx, hospitalID, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to look up portal account: %w", err)
	}
	if user == nil || user.Role != model.RolePatient {
		return nil, ErrInvalidOTP
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.auditor.Log(ctx, user.ID, user.HospitalID, model.AuditActionLogin, model.AuditEntityUser, user.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"method": "otp"},
	})
	return tokens, nil
}

// SetupTOTP generates a new TOTP secret for a staff account. The secret
// only takes effect once ConfirmTOTP sees a valid code.
func (s *Service) SetupTOTP(ctx context.Context, userID uuid.UUID) (*model.TOTPSetupResponse, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	user.TOTPSecret = key.Secret()
	user.TOTPEnabled = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store totp secret: %w", err)
	}

	return &model.TOTPSetupResponse{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// ConfirmTOTP enables TOTP after the user proves possession of the
// secret with one valid code.
func (s *Service) ConfirmTOTP(ctx context.Context, userID uuid.UUID, code string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || user.TOTPSecret == "" {
		return ErrInvalidCredentials
	}

	if !totp.Validate(code, user.TOTPSecret) {
		return ErrInvalidOTP
	}

	user.TOTPEnabled = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to enable totp: %w", err)
	}
	return nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	revoked, err := s.tokenRepo.IsTokenInvalidated(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, ErrInvalidCredentials
	}

	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokens(user)
}

func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.tokenRepo.InvalidateToken(ctx, accessToken); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}
	if refreshToken != "" {
		if err := s.tokenRepo.InvalidateToken(ctx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}
	return nil
}

// ForgotPassword always succeeds from the caller's point of view so the
// endpoint cannot confirm which emails exist.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil
	}

	token := uuid.New().String()
	if err := s.tokenRepo.StoreResetToken(ctx, user.ID, token, time.Now().Add(resetTokenExpiry)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, token); err != nil {
		log.Error().Err(err).Msg("failed to send password reset email")
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokenRepo.ValidateResetToken(ctx, token)
	if err != nil {
		return ErrInvalidOTP
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.LoginAttempts = 0
	if user.Status == model.UserStatusLocked {
		user.Status = model.UserStatusActive
	}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.tokenRepo.InvalidateToken(ctx, token); err != nil {
		log.Error().Err(err).Msg("failed to invalidate used reset token")
	}

	s.auditor.Log(ctx, user.ID, user.HospitalID, model.AuditActionUpdate, model.AuditEntityUser, user.ID, &audit.LogOptions{
		Metadata: map[string]interface{}{"event": "password_reset"},
	})
	return nil
}

func (s *Service) SendVerificationEmail(ctx context.Context, user *model.User) error {
	token := uuid.New().String()
	if err := s.tokenRepo.StoreVerificationToken(ctx, user.ID, token, time.Now().Add(verifyTokenExpiry)); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	return s.emailSvc.SendVerification(ctx, user.Email, token)
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokenRepo.ValidateVerificationToken(ctx, token)
	if err != nil {
		return ErrInvalidOTP
	}

	if err := s.userRepo.UpdateEmailVerified(ctx, userID, true); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}
	return s.tokenRepo.InvalidateVerificationToken(ctx, token)
}

func (s *Service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func otpKey(hospitalID uuid.UUID, phone string) string {
	return hospitalID.String() + ":" + phone
}

func generateOTP() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, 6)
	for i, b := range buf {
		code[i] = '0' + b%10
	}
	return string(code), nil
}
