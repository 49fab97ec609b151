package maternity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
	"github.com/caretide/hospital-api/internal/service/audit"
	"github.com/caretide/hospital-api/pkg/errors"
)

// gestationDays is the standard 40-week term used to derive the
// estimated delivery date from the last menstrual period.
const gestationDays = 280

type MaternityService interface {
	CreateAntenatalRecord(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateAntenatalRecordRequest) (*model.AntenatalRecord, error)
	GetAntenatalRecord(ctx context.Context, hospitalID, id uuid.UUID) (*model.AntenatalRecord, error)
	ListAntenatalRecords(ctx context.Context, hospitalID, patientID uuid.UUID) ([]*model.AntenatalRecord, error)
	CloseAntenatalRecord(ctx context.Context, hospitalID, actorID, id uuid.UUID, status model.AntenatalStatus) error
	AddVisit(ctx context.Context, hospitalID, actorID, recordID uuid.UUID, req *model.CreateAntenatalVisitRequest) (*model.AntenatalVisit, error)
	CreateNeonatalRecord(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateNeonatalRecordRequest) (*model.NeonatalRecord, error)
	GetNeonatalRecord(ctx context.Context, hospitalID, id uuid.UUID) (*model.NeonatalRecord, error)
	ListNeonatalRecords(ctx context.Context, hospitalID, motherPatientID uuid.UUID) ([]*model.NeonatalRecord, error)
}

type Service struct {
	repo        repository.MaternityRepository
	patientRepo repository.PatientRepository
	auditor     *audit.Service
}

func NewService(repo repository.MaternityRepository, patientRepo repository.PatientRepository, auditor *audit.Service) *Service {
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		auditor:     auditor,
	}
}

// EDD derives the estimated delivery date from the last menstrual
// period using Naegele's rule.
func EDD(lmp time.Time) time.Time {
	return lmp.AddDate(0, 0, gestationDays)
}

// GestationalWeek returns the completed weeks of gestation at a given
// date. Dates before the LMP report week zero.
func GestationalWeek(lmp, at time.Time) int {
	days := int(at.Sub(lmp).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days / 7
}

func (s *Service) CreateAntenatalRecord(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateAntenatalRecordRequest) (*model.AntenatalRecord, error) {
	patient, err := s.patientRepo.Get(ctx, req.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}
	if req.LMP.After(time.Now()) {
		return nil, errors.BadRequest("last menstrual period cannot be in the future", nil)
	}

	existing, err := s.repo.ListAntenatal(ctx, req.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	for _, r := range existing {
		if r.Status == model.AntenatalStatusOngoing {
			return nil, errors.Conflict("patient already has an ongoing antenatal record", nil)
		}
	}

	riskLevel := req.RiskLevel
	if riskLevel == "" {
		riskLevel = "low"
	}

	now := time.Now()
	record := &model.AntenatalRecord{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID: hospitalID,
		PatientID:  req.PatientID,
		Gravida:    req.Gravida,
		Para:       req.Para,
		LMP:        req.LMP,
		EDD:        EDD(req.LMP),
		RiskLevel:  riskLevel,
		Status:     model.AntenatalStatusOngoing,
		Notes:      req.Notes,
	}

	if err := s.repo.CreateAntenatal(ctx, record); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionCreate, model.AuditEntityMedicalRecord, record.ID, &audit.LogOptions{
		Metadata: map[string]string{"kind": "antenatal"},
	})
	return record, nil
}

func (s *Service) GetAntenatalRecord(ctx context.Context, hospitalID, id uuid.UUID) (*model.AntenatalRecord, error) {
	record, err := s.repo.GetAntenatal(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if record == nil || record.HospitalID != hospitalID {
		return nil, errors.NotFound("antenatal record", nil)
	}

	visits, err := s.repo.ListVisits(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	record.Visits = visits
	return record, nil
}

func (s *Service) ListAntenatalRecords(ctx context.Context, hospitalID, patientID uuid.UUID) ([]*model.AntenatalRecord, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil || patient.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}

	records, err := s.repo.ListAntenatal(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return records, nil
}

func (s *Service) CloseAntenatalRecord(ctx context.Context, hospitalID, actorID, id uuid.UUID, status model.AntenatalStatus) error {
	if status != model.AntenatalStatusDelivered && status != model.AntenatalStatusClosed {
		return errors.BadRequest("invalid closing status", nil)
	}

	record, err := s.GetAntenatalRecord(ctx, hospitalID, id)
	if err != nil {
		return err
	}
	if record.Status != model.AntenatalStatusOngoing {
		return errors.Conflict("antenatal record is already closed", nil)
	}

	record.Status = status
	record.UpdatedAt = time.Now()
	if err := s.repo.UpdateAntenatal(ctx, record); err != nil {
		return errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionUpdate, model.AuditEntityMedicalRecord, id, &audit.LogOptions{
		Metadata: map[string]string{"kind": "antenatal", "status": string(status)},
	})
	return nil
}

// AddVisit appends an antenatal visit. The gestational week is derived
// from the record's LMP, not supplied by the caller.
func (s *Service) AddVisit(ctx context.Context, hospitalID, actorID, recordID uuid.UUID, req *model.CreateAntenatalVisitRequest) (*model.AntenatalVisit, error) {
	record, err := s.GetAntenatalRecord(ctx, hospitalID, recordID)
	if err != nil {
		return nil, err
	}
	if record.Status != model.AntenatalStatusOngoing {
		return nil, errors.Conflict("cannot add visits to a closed record", nil)
	}

	visit := &model.AntenatalVisit{
		ID:              uuid.New(),
		RecordID:        recordID,
		VisitDate:       req.VisitDate,
		GestationalWeek: GestationalWeek(record.LMP, req.VisitDate),
		BloodPressure:   req.BloodPressure,
		WeightKg:        req.WeightKg,
		FundalHeightCm:  req.FundalHeightCm,
		FetalHeartRate:  req.FetalHeartRate,
		Notes:           req.Notes,
		RecordedBy:      actorID,
	}

	if err := s.repo.AddVisit(ctx, visit); err != nil {
		return nil, errors.Internal(err)
	}
	return visit, nil
}

func (s *Service) CreateNeonatalRecord(ctx context.Context, hospitalID, actorID uuid.UUID, req *model.CreateNeonatalRecordRequest) (*model.NeonatalRecord, error) {
	mother, err := s.patientRepo.Get(ctx, req.MotherPatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if mother == nil || mother.HospitalID != hospitalID {
		return nil, errors.NotFound("mother patient", nil)
	}

	if req.InfantPatientID != nil {
		infant, err := s.patientRepo.Get(ctx, *req.InfantPatientID)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if infant == nil || infant.HospitalID != hospitalID {
			return nil, errors.NotFound("infant patient", nil)
		}
	}

	now := time.Now()
	record := &model.NeonatalRecord{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HospitalID:      hospitalID,
		MotherPatientID: req.MotherPatientID,
		InfantPatientID: req.InfantPatientID,
		BirthDate:       req.BirthDate,
		Sex:             req.Sex,
		BirthWeightG:    req.BirthWeightG,
		Apgar1Min:       req.Apgar1Min,
		Apgar5Min:       req.Apgar5Min,
		DeliveryMode:    req.DeliveryMode,
		Notes:           req.Notes,
	}

	if err := s.repo.CreateNeonatal(ctx, record); err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, actorID, hospitalID, model.AuditActionCreate, model.AuditEntityMedicalRecord, record.ID, &audit.LogOptions{
		Metadata: map[string]string{"kind": "neonatal"},
	})
	return record, nil
}

func (s *Service) GetNeonatalRecord(ctx context.Context, hospitalID, id uuid.UUID) (*model.NeonatalRecord, error) {
	record, err := s.repo.GetNeonatal(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if record == nil || record.HospitalID != hospitalID {
		return nil, errors.NotFound("neonatal record", nil)
	}
	return record, nil
}

func (s *Service) ListNeonatalRecords(ctx context.Context, hospitalID, motherPatientID uuid.UUID) ([]*model.NeonatalRecord, error) {
	mother, err := s.patientRepo.Get(ctx, motherPatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if mother == nil || mother.HospitalID != hospitalID {
		return nil, errors.NotFound("patient", nil)
	}

	records, err := s.repo.ListNeonatal(ctx, motherPatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return records, nil
}
