package referral

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

type ReferralService interface {
	CreateReferral(ctx context.Context, fromHospitalID, actorID uuid.UUID, req *model.CreateReferralRequest) (*model.Referral, error)
	GetReferral(ctx context.Context, hospitalID, id uuid.UUID) (*model.Referral, error)
	UpdateReferral(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdateReferralRequest) (*model.Referral, error)
	ListReferrals(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error)
}

type Service struct {
	repo         repository.ReferralRepository
	patientRepo  repository.PatientRepository
	hospitalRepo repository.HospitalRepository
	auditor      *audit.Service
}

func NewService(repo repository.ReferralRepository, patientRepo repository.PatientRepository,
	hospitalRepo repository.HospitalRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:         repo,
		patientRepo:  patientRepo,
		hospitalRepo: hospitalRepo,
		auditor:      auditor,
	}
}

// CreateReferral refers a patient from the caller's hospital to another
// active hospital in the network.
func (s *Service) CreateReferral(ctx context.Context, fromHospitalID, actorID uuid.UUID, req *model.CreateReferralRequest) (*model.Referral, error) {
	if req.ToHospitalID == fromHospitalID {
		return nil, errors.BadRequest("cannot refer a patient to the same hospital", nil)
	}

	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != fromHospitalID {
		return nil, errors.NotFound("patient", nil)
	}

	target, err := s.hospitalRepo.Get(ctx, req.ToHospitalID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if target == nil || !target.IsActive {
		return nil, errors.NotFound("destination hospital", nil)
	}

	now := time.Now()
	referral := &model.Referral{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:      req.PatientID,
		FromHospitalID: fromHospitalID,
		ToHospitalID:   req.ToHospitalID,
		ReferredBy:     actorID,
		Reason:         req.Reason,
		Status:         model.ReferralStatusPending,
		Notes:          req.Notes,
	}

	if err := s.repo.Create(ctx, referral); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, fromHospitalID, model.AuditActionCreate, model.AuditEntityReferral, referral.ID, &audit.LogOptions{
		Changes: referral,
	})
	return referral, nil
}

// GetReferral is visible to both ends of the referral.
func (s *Service) GetReferral(ctx context.Context, hospitalID, id uuid.UUID) (*model.Referral, error) {
	referral, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if referral == nil || (referral.FromHospitalID != hospitalID && referral.ToHospitalID != hospitalID) {
		return nil, errors.NotFound("referral", nil)
	}
	return referral, nil
}

// UpdateReferral transitions the status. Only the receiving hospital
// accepts or declines; only the receiving hospital completes.
func (s *Service) UpdateReferral(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdateReferralRequest) (*model.Referral, error) {
	referral, err := s.GetReferral(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := s.validateTransition(referral, hospitalID, *req.Status); err != nil {
			return nil, err
		}
		referral.Status = *req.Status
	}
	if req.Notes != nil {
		referral.Notes = *req.Notes
	}
	referral.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, referral); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityReferral, id, &audit.LogOptions{
		Changes: req,
	})
	return referral, nil
}

func (s *Service) validateTransition(referral *model.Referral, hospitalID uuid.UUID, next model.ReferralStatus) error {
	switch next {
	case model.ReferralStatusAccepted, model.ReferralStatusDeclined:
		if referral.Status != model.ReferralStatusPending {
			return errors.Conflict("referral is no longer pending", nil)
		}
		if referral.ToHospitalID != hospitalID {
			return errors.Forbidden("only the receiving hospital can accept or decline")
		}
	case model.ReferralStatusCompleted:
		if referral.Status != model.ReferralStatusAccepted {
			return errors.Conflict("only accepted referrals can be completed", nil)
		}
		if referral.ToHospitalID != hospitalID {
			return errors.Forbidden("only the receiving hospital can complete a referral")
		}
	case model.ReferralStatusPending:
		return errors.BadRequest("referral cannot return to pending", nil)
	}
	return nil
}

func (s *Service) ListReferrals(ctx context.Context, filters *model.ReferralFilters) ([]*model.Referral, error) {
	referrals, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return referrals, nil
}
