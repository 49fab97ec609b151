package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/caretide/hospital-api/internal/model"
	"github.com/caretide/hospital-api/internal/repository"
)

type maternityRepository struct {
	db *sqlx.DB
}

func NewMaternityRepository(db *sqlx.DB) repository.MaternityRepository {
	return &maternityRepository{db: db}
}

func (r *maternityRepository) CreateAntenatal(ctx context.Context, record *model.AntenatalRecord) error {
	query := `
		INSERT INTO antenatal_records (id, hospital_id, patient_id, gravida, para, lmp, edd, risk_level, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.HospitalID,
		record.PatientID,
		record.Gravida,
		record.Para,
		record.LMP,
		record.EDD,
		record.RiskLevel,
		record.Status,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create antenatal record: %w", err)
	}
	return nil
}

func (r *maternityRepository) GetAntenatal(ctx context.Context, id uuid.UUID) (*model.AntenatalRecord, error) {
	query := `SELECT * FROM antenatal_records WHERE id = $1 AND deleted_at IS NULL`
	var record model.AntenatalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get antenatal record: %w", err)
	}
	return &record, nil
}

func (r *maternityRepository) UpdateAntenatal(ctx context.Context, record *model.AntenatalRecord) error {
	query := `
		UPDATE antenatal_records
		SET gravida = $1, para = $2, lmp = $3, edd = $4, risk_level = $5, status = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`
	record.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.Gravida,
		record.Para,
		record.LMP,
		record.EDD,
		record.RiskLevel,
		record.Status,
		record.Notes,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update antenatal record: %w", err)
	}
	return nil
}

func (r *maternityRepository) ListAntenatal(ctx context.Context, patientID uuid.UUID) ([]*model.AntenatalRecord, error) {
	query := `SELECT * FROM antenatal_records WHERE patient_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`
	var records []*model.AntenatalRecord
	err := r.db.SelectContext(ctx, &records, query, patientID)
	return records, err
}

func (r *maternityRepository) AddVisit(ctx context.Context, visit *model.AntenatalVisit) error {
	query := `
		INSERT INTO antenatal_visits (id, record_id, visit_date, gestational_week, blood_pressure, weight_kg, fundal_height_cm, fetal_heart_rate, notes, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		visit.ID,
		visit.RecordID,
		visit.VisitDate,
		visit.GestationalWeek,
		visit.BloodPressure,
		visit.WeightKg,
		visit.FundalHeightCm,
		visit.FetalHeartRate,
		visit.Notes,
		visit.RecordedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to add antenatal visit: %w", err)
	}
	return nil
}

func (r *maternityRepository) ListVisits(ctx context.Context, recordID uuid.UUID) ([]*model.AntenatalVisit, error) {
	query := `SELECT * FROM antenatal_visits WHERE record_id = $1 ORDER BY visit_date`
	var visits []*model.AntenatalVisit
	err := r.db.SelectContext(ctx, &visits, query, recordID)
	return visits, err
}

func (r *maternityRepository) CreateNeonatal(ctx context.Context, record *model.NeonatalRecord) error {
	query := `
		INSERT INTO neonatal_records (id, hospital_id, mother_patient_id, infant_patient_id, birth_date, sex, birth_weight_g, apgar_1min, apgar_5min, delivery_mode, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.HospitalID,
		record.MotherPatientID,
		record.InfantPatientID,
		record.BirthDate,
		record.Sex,
		record.BirthWeightG,
		record.Apgar1Min,
		record.Apgar5Min,
		record.DeliveryMode,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create neonatal record: %w", err)
	}
	return nil
}

func (r *maternityRepository) GetNeonatal(ctx context.Context, id uuid.UUID) (*model.NeonatalRecord, error) {
	query := `SELECT * FROM neonatal_records WHERE id = $1 AND deleted_at IS NULL`
	var record model.NeonatalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get neonatal record: %w", err)
	}
	return &record, nil
}

func (r *maternityRepository) ListNeonatal(ctx context.Context, motherPatientID uuid.UUID) ([]*model.NeonatalRecord, error) {
	query := `SELECT * FROM neonatal_records WHERE mother_patient_id = $1 AND deleted_at IS NULL ORDER BY birth_date DESC`
	var records []*model.NeonatalRecord
	err := r.db.SelectContext(ctx, &records, query, motherPatientID)
	return records, err
}
