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

type medicalRecordRepository struct {
	db *sqlx.DB
}

func NewMedicalRecordRepository(db *sqlx.DB) repository.MedicalRecordRepository {
	return &medicalRecordRepository{db: db}
}

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (id, hospital_id, patient_id, diagnosis, treatment, prescription,
			notes, allergies, chronic_conditions, recorded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.HospitalID,
		record.PatientID,
		record.Diagnosis,
		record.Treatment,
		record.Prescription,
		record.Notes,
		record.Allergies,
		record.ChronicConditions,
		record.RecordedBy,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE id = $1 AND deleted_at IS NULL`
	var record model.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) List(ctx context.Context, patientID uuid.UUID, filters *model.RecordFilters) ([]*model.MedicalRecord, error) {
	query := `SELECT * FROM medical_records WHERE patient_id = $1 AND deleted_at IS NULL`
	args := []interface{}{patientID}

	if filters != nil {
		if !filters.StartDate.IsZero() {
			args = append(args, filters.StartDate)
			query += fmt.Sprintf(" AND created_at >= $%d", len(args))
		}
		if !filters.EndDate.IsZero() {
			args = append(args, filters.EndDate)
			query += fmt.Sprintf(" AND created_at <= $%d", len(args))
		}
	}

	query += " ORDER BY created_at DESC"

	var records []*model.MedicalRecord
	err := r.db.SelectContext(ctx, &records, query, args...)
	return records, err
}

func (r *medicalRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE medical_records SET deleted_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}
