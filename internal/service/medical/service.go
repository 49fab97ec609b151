package medical

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

type MedicalRecordService interface {
	CreateRecord(ctx context.Context, hospitalID, patientID, recordedBy uuid.UUID, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error)
	GetRecord(ctx context.Context, hospitalID, id uuid.UUID) (*model.MedicalRecord, error)
	ListRecords(ctx context.Context, hospitalID, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error)
	DeleteRecord(ctx context.Context, hospitalID, actorID, id uuid.UUID) error
}

type Service struct {
	repo        repository.MedicalRecordRepository
	patientRepo repository.PatientRepository
	outboxRepo  repository.OutboxRepository
	auditor     *audit.Service
}

func NewService(repo repository.MedicalRecordRepository, patientRepo repository.PatientRepository, outboxRepo repository.OutboxRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		outboxRepo:  outboxRepo,
		auditor:     auditor,
	}
}

func (s *Service) CreateRecord(ctx context.Context, hospitalID, patientID, recordedBy uuid.UUID, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}

	now := time.Now()
	record := &model.MedicalRecord{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID:        hospitalID,
		PatientID:         patientID,
		Diagnosis:         req.Diagnosis,
		Treatment:         req.Treatment,
		Prescription:      req.Prescription,
		Notes:             req.Notes,
		Allergies:         req.Allergies,
		ChronicConditions: req.ChronicConditions,
		RecordedBy:        recordedBy,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, errors.Internal(err)
	}

	s.enqueueFHIRSync(ctx, record.ID)
	s.auditor.Log(ctx, recordedBy, hospitalID, model.AuditActionCreate, model.AuditEntityMedicalRecord, record.ID, nil)

	return record, nil
}

func (s *Service) GetRecord(ctx context.Context, hospitalID, id uuid.UUID) (*model.MedicalRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if record == nil || record.HospitalID != hospitalID {
		return nil, errors.NotFound("medical record", nil)
	}
	return record, nil
}

func (s *Service) ListRecords(ctx context.Context, hospitalID, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}

	records, err := s.repo.List(ctx, patientID, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return records, nil
}

func (s *Service) DeleteRecord(ctx context.Context, hospitalID, actorID, id uuid.UUID) error {
	if _, err := s.GetRecord(ctx, hospitalID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Internal(err)
	}
	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionDelete, model.AuditEntityMedicalRecord, id, nil)
	return nil
}

func (s *Service) enqueueFHIRSync(ctx context.Context, recordID uuid.UUID) {
	payload, err := json.Marshal(map[string]string{
		"entity_type": model.FHIREntityMedicalRecord,
		"entity_id":   recordID.String(),
	})
	if err != nil {
		return
	}
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventFHIRSync,
		Payload:   payload,
		Status:    string(model.OutboxStatusPending),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		log.Error().Err(err).Msg("failed to enqueue fhir sync event")
	}
}
