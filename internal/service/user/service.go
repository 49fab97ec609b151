package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/caretide/hospital-api/internal/email"
	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

const bcryptCost = 12

type UserService interface {
	CreateUser(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateUserRequest) (*model.User, error)
	GetUser(ctx context.Context, hospitalID, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, hospitalID, actorID, id uuid.UUID) error
	ListUsers(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
	CreatePortalAccount(ctx context.Context, hospitalID, actorID, patientID uuid.UUID, password string) (*model.User, error)
}

type Service struct {
	repo        repository.UserRepository
	patientRepo repository.PatientRepository
	tokenRepo   repository.TokenRepository
	emailSvc    email.Service
	auditor     *audit.Service
}

func NewService(repo repository.UserRepository, patientRepo repository.PatientRepository,
	tokenRepo repository.TokenRepository, emailSvc email.Service, auditor *audit.Service) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		tokenRepo:   tokenRepo,
		emailSvc:    emailSvc,
		auditor:     auditor,
	}
}

func (s *Service) CreateUser(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateUserRequest) (*model.User, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if existing != nil {
		return nil, errors.Conflict("email is already in use", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, errors.Internal(err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID:   hospitalID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       model.UserStatusPending,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, errors.Internal(err)
	}

	s.sendVerification(ctx, user)
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionCreate, model.AuditEntityUser, user.ID, &audit.LogOptions{
		Metadata: map[string]string{"email": user.Email, "role": string(user.Role)},
	})
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, hospitalID, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if user == nil || user.HospitalID != hospitalID {
		return nil, errors.NotFound("user", nil)
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityUser, id, &audit.LogOptions{
		Changes: req,
	})
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, hospitalID, actorID, id uuid.UUID) error {
	if actorID == id {
		return errors.BadRequest("cannot delete your own account", nil)
	}
	if _, err := s.GetUser(ctx, hospitalID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionDelete, model.AuditEntityUser, id, nil)
	return nil
}

func (s *Service) ListUsers(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return users, nil
}

// CreatePortalAccount provisions a patient-facing login linked to an
// existing patient record.
func (s *Service) CreatePortalAccount(ctx context.Context, hospitalID, actorID, patientID uuid.UUID, password string) (*model.User, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}
	if patient.Email == "" && patient.Phone == "" {
		return nil, errors.BadRequest("patient has no email or phone for a portal account", nil)
	}

	if patient.Email != "" {
		existing, err := s.repo.GetByEmail(ctx, patient.Email)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if existing != nil {
			return nil, errors.Conflict("patient already has a portal account", nil)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, errors.Internal(err)
	}

	now := time.Now()
	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID:   hospitalID,
		PatientID:    &patientID,
		Name:         patient.FirstName + " " + patient.LastName,
		Email:        patient.Email,
		Phone:        patient.Phone,
		PasswordHash: string(hash),
		Role:         model.RolePatient,
		Status:       model.UserStatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, errors.Internal(err)
	}

	if user.Email != "" {
		if err := s.emailSvc.SendWelcome(ctx, user.Email, user.Name); err != nil {
			log.Error().Err(err).Msg("failed to send portal welcome email")
		}
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionCreate, model.AuditEntityUser, user.ID, &audit.LogOptions{
		Metadata: map[string]string{"kind": "portal", "patient_id": patientID.String()},
	})
	return user, nil
}

func (s *Service) sendVerification(ctx context.Context, user *model.User) {
	token := uuid.New().String()
	if err := s.tokenRepo.StoreVerificationToken(ctx, user.ID, token, time.Now().Add(24*time.Hour)); err != nil {
		log.Error().Err(err).Msg("failed to store verification token")
		return
	}
	if err := s.emailSvc.SendVerification(ctx, user.Email, token); err != nil {
		log.Error().Err(err).Msg("failed to send verification email")
	}
}
