package fhir

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/pkg/logger"
)

// Syncer mirrors local entities to the FHIR server, creating the remote
// resource on first sight and updating it afterwards.
type Syncer struct {
	client      *Client
	links       repository.FHIRLinkRepository
	patientRepo repository.PatientRepository
	recordRepo  repository.MedicalRecordRepository
	logger      *logger.Logger
}

func NewSyncer(client *Client, links repository.FHIRLinkRepository, patientRepo repository.PatientRepository, recordRepo repository.MedicalRecordRepository, logger *logger.Logger) *Syncer {
	return &Syncer{
		client:      client,
		links:       links,
		patientRepo: patientRepo,
		recordRepo:  recordRepo,
		logger:      logger,
	}
}

// SyncPatient pushes the patient and stores the remote id.
func (s *Syncer) SyncPatient(ctx context.Context, patientID uuid.UUID) error {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to load patient %s: %w", patientID, err)
	}
	if patient == nil {
		return fmt.Errorf("patient %s not found", patientID)
	}

	resource := MapPatient(patient)

	link, err := s.links.Get(ctx, model.FHIREntityPatient, patientID)
	if err != nil {
		return fmt.Errorf("failed to load fhir link: %w", err)
	}

	if link != nil {
		if err := s.client.UpdateResource(ctx, "Patient", link.FHIRID, resource); err != nil {
			return err
		}
		return s.links.Upsert(ctx, &model.FHIRLink{
			EntityType: model.FHIREntityPatient,
			EntityID:   patientID,
			FHIRID:     link.FHIRID,
		})
	}

	fhirID, err := s.client.CreateResource(ctx, "Patient", resource)
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"patient_id": patientID.String(),
		"fhir_id":    fhirID,
	}).Info("patient linked to fhir resource")

	return s.links.Upsert(ctx, &model.FHIRLink{
		EntityType: model.FHIREntityPatient,
		EntityID:   patientID,
		FHIRID:     fhirID,
	})
}

// SyncMedicalRecord publishes a diagnosis as a Condition. The patient
// must already have been synced.
func (s *Syncer) SyncMedicalRecord(ctx context.Context, recordID uuid.UUID) error {
	rec, err := s.recordRepo.Get(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to load medical record %s: %w", recordID, err)
	}
	if rec == nil {
		return fmt.Errorf("medical record %s not found", recordID)
	}

	patientLink, err := s.links.Get(ctx, model.FHIREntityPatient, rec.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient fhir link: %w", err)
	}
	if patientLink == nil {
		if err := s.SyncPatient(ctx, rec.PatientID); err != nil {
			return err
		}
		patientLink, err = s.links.Get(ctx, model.FHIREntityPatient, rec.PatientID)
		if err != nil || patientLink == nil {
			return fmt.Errorf("patient fhir link missing after sync: %v", err)
		}
	}

	resource := MapCondition(rec, patientLink.FHIRID)

	link, err := s.links.Get(ctx, model.FHIREntityMedicalRecord, recordID)
	if err != nil {
		return fmt.Errorf("failed to load fhir link: %w", err)
	}
	if link != nil {
		return s.client.UpdateResource(ctx, "Condition", link.FHIRID, resource)
	}

	fhirID, err := s.client.CreateResource(ctx, "Condition", resource)
	if err != nil {
		return err
	}
	return s.links.Upsert(ctx, &model.FHIRLink{
		EntityType: model.FHIREntityMedicalRecord,
		EntityID:   recordID,
		FHIRID:     fhirID,
	})
}
