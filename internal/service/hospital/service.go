package hospital

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

type HospitalService interface {
	CreateHospital(ctx context.Context, req *model.CreateHospitalRequest) (*model.Hospital, error)
	GetHospital(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*model.Hospital, error)
	UpdateHospital(ctx context.Context, id uuid.UUID, req *model.UpdateHospitalRequest) (*model.Hospital, error)
	DeactivateHospital(ctx context.Context, id uuid.UUID) error
	ListHospitals(ctx context.Context) ([]*model.Hospital, error)
	GetDashboardStats(ctx context.Context, hospitalID uuid.UUID) (*model.DashboardStats, error)
	GetSubscription(ctx context.Context, hospitalID uuid.UUID) (*model.Subscription, error)
	ChangePlan(ctx context.Context, hospitalID uuid.UUID, plan model.SubscriptionPlan) error
}

type Service struct {
	repo     repository.HospitalRepository
	userRepo repository.UserRepository
	auditor  *audit.Service
}

func NewService(repo repository.HospitalRepository, userRepo repository.UserRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		auditor:  auditor,
	}
}

var subdomainStrip = regexp.MustCompile(`[^a-z0-9-]+`)

// Subdomain derives the tenant slug from a hospital name. The result is
// lowercase and stable for a given name.
func Subdomain(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = subdomainStrip.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// CreateHospital provisions a tenant: the hospital row, its
// subscription and the initial admin account.
func (s *Service) CreateHospital(ctx context.Context, req *model.CreateHospitalRequest) (*model.Hospital, error) {
	subdomain := Subdomain(req.Name)
	if subdomain == "" {
		return nil, errors.BadRequest("hospital name yields an empty subdomain", nil)
	}

	existing, err := s.repo.GetBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if existing != nil {
		return nil, errors.Conflict(fmt.Sprintf("subdomain %q is already taken", subdomain), nil)
	}

	if admin, err := s.userRepo.GetByEmail(ctx, req.AdminEmail); err != nil {
		return nil, errors.Internal(err)
	} else if admin != nil {
		return nil, errors.Conflict("admin email is already in use", nil)
	}

	plan := req.Plan
	if plan == "" {
		plan = model.PlanBasic
	}

	now := time.Now()
	hospital := &model.Hospital{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Subdomain:   subdomain,
		AdminEmail:  req.AdminEmail,
		Phone:       req.Phone,
		Address:     req.Address,
		Website:     req.Website,
		Description: req.Description,
		Plan:        plan,
		Branches:    1,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, hospital); err != nil {
		return nil, errors.Internal(err)
	}

	sub := &model.Subscription{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID: hospital.ID,
		Plan:       plan,
		StartDate:  now,
		IsActive:   true,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, errors.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal(err)
	}

	admin := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID:   hospital.ID,
		Name:         hospital.Name + " Administrator",
		Email:        req.AdminEmail,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, admin.ID, hospital.ID, model.AuditActionCreate, model.AuditEntityHospital, hospital.ID, &audit.LogOptions{
		Changes: hospital,
	})

	return hospital, nil
}

func (s *Service) GetHospital(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	hospital, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if hospital == nil {
		return nil, errors.NotFound("hospital", nil)
	}
	return hospital, nil
}

func (s *Service) GetBySubdomain(ctx context.Context, subdomain string) (*model.Hospital, error) {
	hospital, err := s.repo.GetBySubdomain(ctx, strings.ToLower(subdomain))
	if err != nil {
		return nil, errors.Internal(err)
	}
	if hospital == nil {
		return nil, errors.NotFound("hospital", nil)
	}
	return hospital, nil
}

func (s *Service) UpdateHospital(ctx context.Context, id uuid.UUID, req *model.UpdateHospitalRequest) (*model.Hospital, error) {
	hospital, err := s.GetHospital(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		// The subdomain never changes after provisioning; renaming only
		// affects the display name.
		hospital.Name = *req.Name
	}
	if req.Phone != nil {
		hospital.Phone = *req.Phone
	}
	if req.Address != nil {
		hospital.Address = *req.Address
	}
	if req.Website != nil {
		hospital.Website = *req.Website
	}
	if req.Description != nil {
		hospital.Description = *req.Description
	}
	if req.Plan != nil {
		hospital.Plan = *req.Plan
	}
	if req.IsActive != nil {
		hospital.IsActive = *req.IsActive
	}
	hospital.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, hospital); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, uuid.Nil, hospital.ID, model.AuditActionUpdate, model.AuditEntityHospital, hospital.ID, &audit.LogOptions{
		Changes: req,
	})

	return hospital, nil
}

func (s *Service) DeactivateHospital(ctx context.Context, id uuid.UUID) error {
	hospital, err := s.GetHospital(ctx, id)
	if err != nil {
		return err
	}

	hospital.IsActive = false
	hospital.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, hospital); err != nil {
		return errors.Internal(err)
	}

	s.auditor.Log(ctx, uuid.Nil, hospital.ID, model.AuditActionDelete, model.AuditEntityHospital, hospital.ID, nil)
	return nil
}

func (s *Service) ListHospitals(ctx context.Context) ([]*model.Hospital, error) {
	hospitals, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return hospitals, nil
}

func (s *Service) GetDashboardStats(ctx context.Context, hospitalID uuid.UUID) (*model.DashboardStats, error) {
	stats, err := s.repo.GetDashboardStats(ctx, hospitalID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return stats, nil
}

func (s *Service) GetSubscription(ctx context.Context, hospitalID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, hospitalID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if sub == nil {
		return nil, errors.NotFound("subscription", nil)
	}
	return sub, nil
}

func (s *Service) ChangePlan(ctx context.Context, hospitalID uuid.UUID, plan model.SubscriptionPlan) error {
	sub, err := s.GetSubscription(ctx, hospitalID)
	if err != nil {
		return err
	}

	sub.Plan = plan
	sub.UpdatedAt = time.Now()
	if err := s.repo.UpdateSubscription(ctx, sub); err != nil {
		return errors.Internal(err)
	}

	hospital, err := s.GetHospital(ctx, hospitalID)
	if err != nil {
		return err
	}
	hospital.Plan = plan
	hospital.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, hospital); err != nil {
		return errors.Internal(err)
	}

	s.auditor.Log(ctx, uuid.Nil, hospitalID, model.AuditActionUpdate, model.AuditEntityHospital, hospitalID, &audit.LogOptions{
		Metadata: map[string]string{"plan": string(plan)},
	})
	return nil
}
