package patient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/mrn"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

type PatientService interface {
	CreatePatient(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, hospitalID, id uuid.UUID) (*model.Patient, error)
	GetByMRN(ctx context.Context, hospitalID uuid.UUID, mrn string) (*model.Patient, error)
	UpdatePatient(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, hospitalID, actorID, id uuid.UUID) error
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
}

type Service struct {
	repo       repository.PatientRepository
	outboxRepo repository.OutboxRepository
	mrnGen     *mrn.Generator
	auditor    *audit.Service
}

func NewService(repo repository.PatientRepository, outboxRepo repository.OutboxRepository, mrnGen *mrn.Generator, auditor *audit.Service) *Service {
	return &Service{
		repo:       repo,
		outboxRepo: outboxRepo,
		mrnGen:     mrnGen,
		auditor:    auditor,
	}
}

// CreatePatient registers a patient and assigns the MRN. MRN failure
// does not lose the registration; the identifier can be assigned by a
// later retry since the column starts NULL.
func (s *Service) CreatePatient(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	now := time.Now()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID:             hospitalID,
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		DateOfBirth:            req.DateOfBirth,
		Gender:                 req.Gender,
		BloodGroup:             req.BloodGroup,
		Phone:                  req.Phone,
		Email:                  req.Email,
		Address:                req.Address,
		EmergencyContactName:   req.EmergencyContactName,
		EmergencyContactNumber: req.EmergencyContactNumber,
		Status:                 model.PatientStatusActive,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, errors.Internal(err)
	}

	assigned, err := s.mrnGen.Assign(ctx, patient.ID)
	if err != nil {
		log.Error().Err(err).Str("patient_id", patient.ID.String()).Msg("mrn assignment failed")
		return nil, errors.Internal(err)
	}
	patient.MRN = &assigned

	s.publishEvent(ctx, model.EventPatientCreated, patient)
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionCreate, model.AuditEntityPatient, patient.ID, &audit.LogOptions{
		Changes: patient,
	})

	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, hospitalID, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}
	return patient, nil
}

func (s *Service) GetByMRN(ctx context.Context, hospitalID uuid.UUID, mrnValue string) (*model.Patient, error) {
	if !mrn.Valid(mrnValue) {
		return nil, errors.BadRequest("malformed medical record number", nil)
	}
	patient, err := s.repo.GetByMRN(ctx, hospitalID, mrnValue)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil {
		return nil, errors.NotFound("patient", nil)
	}
	return patient, nil
}

// UpdatePatient applies partial updates. The MRN is not part of the
// request shape and can never change here.
func (s *Service) UpdatePatient(ctx context.Context, hospitalID, actorID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, hospitalID, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = *req.BloodGroup
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.EmergencyContactName != nil {
		patient.EmergencyContactName = *req.EmergencyContactName
	}
	if req.EmergencyContactNumber != nil {
		patient.EmergencyContactNumber = *req.EmergencyContactNumber
	}
	if req.Status != nil {
		patient.Status = *req.Status
	}
	patient.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, errors.Internal(err)
	}

	s.publishEvent(ctx, model.EventPatientUpdated, patient)
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityPatient, patient.ID, &audit.LogOptions{
		Changes: req,
	})

	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, hospitalID, actorID, id uuid.UUID) error {
	if _, err := s.GetPatient(ctx, hospitalID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionDelete, model.AuditEntityPatient, id, nil)
	return nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return patients, nil
}

func (s *Service) publishEvent(ctx context.Context, eventType string, patient *model.Patient) {
	payload, err := json.Marshal(patient)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal patient event payload")
		return
	}

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to enqueue outbox event")
	}
}
